package booking

import (
	"fmt"
	"time"

	"github.com/goodsign/monday"
)

const displayLocale = monday.LocaleDeDE

// FormatDateDisplay renders a long German date, e.g. "Montag, 19. Oktober 2026".
func FormatDateDisplay(t time.Time) string {
	return monday.Format(t, "Monday, 2. January 2006", displayLocale)
}

// FormatMonthLabel renders the grid heading, e.g. "Oktober 2026".
func FormatMonthLabel(year int, month time.Month) string {
	return monday.Format(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC), "January 2006", displayLocale)
}

func dayAriaLabel(t time.Time) string {
	return fmt.Sprintf("Wählen Sie %d. %s", t.Day(), FormatMonthLabel(t.Year(), t.Month()))
}

func confirmationText(date time.Time, slots []SlotID) string {
	return fmt.Sprintf(
		"Vielen Dank! Termin(e) am %s für %s ausgewählt. Wir melden uns zur Bestätigung.",
		FormatDateDisplay(date), slotLabels(slots),
	)
}
