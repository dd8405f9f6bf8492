package slot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthGridShape(t *testing.T) {
	today := time.Date(2025, time.March, 10, 15, 30, 0, 0, time.UTC)
	grid := monthGrid(today, today, nil)

	require.Len(t, grid, 42)

	// March 2025 starts on a Saturday, so the grid opens on February 23
	assert.Equal(t, "2025-02-23", grid[0].Date)
	assert.False(t, grid[0].CurrentMonth)
	assert.Equal(t, "2025-03-01", grid[6].Date)
	assert.True(t, grid[6].CurrentMonth)
}

func TestMonthGridSelectability(t *testing.T) {
	today := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	grid := monthGrid(today, today, nil)

	byDate := map[string]int{}
	for i, d := range grid {
		byDate[d.Date] = i
	}

	// past days and today itself are never bookable
	assert.False(t, grid[byDate["2025-03-09"]].Selectable)
	assert.False(t, grid[byDate["2025-03-10"]].Selectable)
	assert.True(t, grid[byDate["2025-03-10"]].Today)

	// everything strictly after today is open
	assert.True(t, grid[byDate["2025-03-11"]].Selectable)
	assert.True(t, grid[byDate["2025-03-31"]].Selectable)
}

func TestMonthGridRespectsWorkingDays(t *testing.T) {
	today := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	// closed on Sundays
	workingDays := []int{1, 2, 3, 4, 5, 6}
	grid := monthGrid(today, today, workingDays)

	for _, d := range grid {
		day, err := time.Parse("2006-01-02", d.Date)
		require.NoError(t, err)
		if day.Weekday() == time.Sunday {
			assert.False(t, d.Selectable, "sunday %s should not be selectable", d.Date)
		}
	}

	// a future Monday stays open
	for _, d := range grid {
		if d.Date == "2025-03-17" {
			assert.True(t, d.Selectable)
		}
	}
}

func TestMonthGridForFutureMonth(t *testing.T) {
	today := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	ref := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	grid := monthGrid(ref, today, nil)

	require.Len(t, grid, 42)
	for _, d := range grid {
		if d.CurrentMonth {
			assert.True(t, d.Selectable, "day %s in a future month should be selectable", d.Date)
		}
	}
}
