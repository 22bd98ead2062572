package leads

import (
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/wolfman30/hausservice-booking/internal/booking"
)

const calendarProductID = "-//hausservice-booking//Terminanfragen//DE"

// BuildCalendar renders leads that carry a requested date as all-day events
// so the office can subscribe to incoming appointment requests.
func BuildCalendar(leads []Lead) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(calendarProductID)
	cal.SetName("Terminanfragen")

	for _, lead := range leads {
		if lead.Date == nil {
			continue
		}
		day, err := time.Parse("2006-01-02", *lead.Date)
		if err != nil {
			continue
		}

		event := cal.AddEvent(lead.ID + "@hausservice-booking")
		event.SetDtStampTime(lead.CreatedAt)
		event.SetCreatedTime(lead.CreatedAt)
		event.SetAllDayStartAt(day)
		event.SetAllDayEndAt(day.AddDate(0, 0, 1))
		event.SetSummary(eventSummary(lead))
		event.SetDescription(eventDescription(lead))
	}
	return cal.Serialize()
}

func eventSummary(lead Lead) string {
	summary := "Terminanfrage " + lead.Name
	if len(lead.Slots) > 0 {
		summary += " (" + slotLabelList(lead.Slots) + ")"
	}
	return summary
}

func eventDescription(lead Lead) string {
	var b strings.Builder
	if lead.Phone != "" {
		fmt.Fprintf(&b, "Telefon: %s\n", lead.Phone)
	}
	if lead.Email != "" {
		fmt.Fprintf(&b, "E-Mail: %s\n", lead.Email)
	}
	if lead.Message != "" {
		fmt.Fprintf(&b, "Nachricht: %s\n", lead.Message)
	}
	if lead.Processed {
		b.WriteString("Status: bearbeitet\n")
	}
	return strings.TrimSpace(b.String())
}

func slotLabelList(slots []string) string {
	labels := make([]string, 0, len(slots))
	for _, raw := range slots {
		if id, ok := booking.ParseSlot(raw); ok {
			labels = append(labels, id.Label())
		}
	}
	return strings.Join(labels, ", ")
}
