package model

// Slot is one bookable time on a given date.
type Slot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

// CalendarDay is one cell of the fixed 42-cell month grid.
type CalendarDay struct {
	Date         string `json:"date"`
	Day          int    `json:"day"`
	CurrentMonth bool   `json:"current_month"`
	Today        bool   `json:"today"`
	// Selectable is true only for days strictly after today; same-day
	// booking is disallowed.
	Selectable bool `json:"selectable"`
}
