package booking

import (
	"time"

	"github.com/wolfman30/hausservice-booking/internal/availability"
)

// DayStatus classifies a calendar cell. Every day has exactly one status.
type DayStatus string

const (
	DayPast             DayStatus = "past"
	DayTodayAvailable   DayStatus = "today-available"
	DayTodayUnavailable DayStatus = "today-unavailable"
	DayAvailable        DayStatus = "available"
	DayUnavailable      DayStatus = "unavailable"
)

// DayCell is one rendered day of the month grid.
type DayCell struct {
	Day         int       `json:"day"`
	Key         string    `json:"key"`
	Status      DayStatus `json:"status"`
	Selected    bool      `json:"selected"`
	Interactive bool      `json:"interactive"`
	AriaLabel   string    `json:"aria_label"`
}

// MonthGrid is the Monday-first grid for a single month.
type MonthGrid struct {
	Year    int        `json:"year"`
	Month   time.Month `json:"month"`
	Label   string     `json:"label"`
	Leading int        `json:"leading"` // blank cells before the 1st
	Days    []DayCell  `json:"days"`
}

// BuildMonthGrid classifies every day of year/month relative to today.
// selected may be the zero time when nothing is selected.
func BuildMonthGrid(year int, month time.Month, today time.Time, avail availability.Set, selected time.Time) MonthGrid {
	loc := today.Location()
	today = availability.StartOfDay(today)
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	daysInMonth := first.AddDate(0, 1, -1).Day()

	// Monday = 0 leading cells, Sunday = 6.
	leading := (int(first.Weekday()) + 6) % 7

	grid := MonthGrid{
		Year:    first.Year(),
		Month:   first.Month(),
		Label:   FormatMonthLabel(first.Year(), first.Month()),
		Leading: leading,
		Days:    make([]DayCell, 0, daysInMonth),
	}

	for day := 1; day <= daysInMonth; day++ {
		date := time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, loc)
		cell := DayCell{Day: day, Key: availability.Key(date)}
		available := avail.Has(date)

		switch {
		case date.Before(today):
			cell.Status = DayPast
		case availability.SameDay(date, today):
			if available {
				cell.Status = DayTodayAvailable
			} else {
				cell.Status = DayTodayUnavailable
			}
		case available:
			cell.Status = DayAvailable
			cell.AriaLabel = dayAriaLabel(date)
		default:
			cell.Status = DayUnavailable
		}

		cell.Interactive = cell.Status == DayAvailable || cell.Status == DayTodayAvailable
		if cell.Interactive && !selected.IsZero() && availability.SameDay(date, selected) {
			cell.Selected = true
		}
		grid.Days = append(grid.Days, cell)
	}
	return grid
}
