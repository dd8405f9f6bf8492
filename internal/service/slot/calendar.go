package slot

import (
	"time"

	"github.com/opdbook/booking-api/internal/model"
)

// gridCells is a fixed six-week window, the way paper calendars print a
// month. The grid always starts on a Sunday.
const gridCells = 42

func isWorkingDay(workingDays []int, d time.Time) bool {
	if len(workingDays) == 0 {
		return true
	}
	for _, wd := range workingDays {
		if int(d.Weekday()) == wd {
			return true
		}
	}
	return false
}

// monthGrid lays out the 42-cell calendar for the month containing ref.
// A day is selectable only when it falls strictly after today and the clinic
// works that weekday; today itself is never bookable.
func monthGrid(ref, today time.Time, workingDays []int) []model.CalendarDay {
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
	start := first.AddDate(0, 0, -int(first.Weekday()))
	todayDate := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	grid := make([]model.CalendarDay, 0, gridCells)
	for i := 0; i < gridCells; i++ {
		d := start.AddDate(0, 0, i)
		grid = append(grid, model.CalendarDay{
			Date:         d.Format(model.DateLayout),
			Day:          d.Day(),
			CurrentMonth: d.Month() == ref.Month(),
			Today:        d.Equal(todayDate),
			Selectable:   d.After(todayDate) && isWorkingDay(workingDays, d),
		})
	}
	return grid
}
