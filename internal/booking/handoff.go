package booking

import (
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/wolfman30/hausservice-booking/internal/availability"
)

// HandoffURL encodes the selection for the contact view:
// <path>?date=YYYY-MM-DD&slots=<percent-encoded comma list>.
func HandoffURL(path string, date time.Time, slots []SlotID) string {
	if path == "" {
		path = DefaultHandoffPath
	}
	return path + "?date=" + availability.Key(date) + "&slots=" + url.QueryEscape(joinSlots(slots))
}

// Handoff is the selection carried to the contact view.
type Handoff struct {
	Date  string
	Slots []SlotID
}

// ParseHandoff reads date and slots from carried query parameters. Unknown
// slot ids are dropped; an empty list yields nil.
func ParseHandoff(values url.Values) Handoff {
	var h Handoff
	if date := strings.TrimSpace(values.Get("date")); date != "" {
		if _, err := time.Parse(availability.KeyLayout, date); err == nil {
			h.Date = date
		}
	}
	for _, raw := range strings.Split(values.Get("slots"), ",") {
		if id, ok := ParseSlot(raw); ok && !slices.Contains(h.Slots, id) {
			h.Slots = append(h.Slots, id)
		}
	}
	return h
}

// SlotStrings returns the slot ids as plain strings, or nil.
func (h Handoff) SlotStrings() []string {
	if len(h.Slots) == 0 {
		return nil
	}
	out := make([]string, len(h.Slots))
	for i, s := range h.Slots {
		out[i] = string(s)
	}
	return out
}
