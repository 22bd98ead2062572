package booking

import "strings"

// SlotID identifies one of the fixed half-day time windows.
type SlotID string

const (
	SlotMorning   SlotID = "7-11"
	SlotMidday    SlotID = "11-15"
	SlotAfternoon SlotID = "15-19"
)

// Slots lists every bookable time window in display order.
var Slots = []SlotID{SlotMorning, SlotMidday, SlotAfternoon}

// ParseSlot validates a raw slot identifier.
func ParseSlot(raw string) (SlotID, bool) {
	id := SlotID(strings.TrimSpace(raw))
	for _, s := range Slots {
		if s == id {
			return s, true
		}
	}
	return "", false
}

// Label renders the slot for customers, e.g. "7–11 Uhr".
func (s SlotID) Label() string {
	return strings.Replace(string(s), "-", "–", 1) + " Uhr"
}

func slotLabels(slots []SlotID) string {
	labels := make([]string, len(slots))
	for i, s := range slots {
		labels[i] = s.Label()
	}
	return strings.Join(labels, ", ")
}

func joinSlots(slots []SlotID) string {
	raw := make([]string, len(slots))
	for i, s := range slots {
		raw[i] = string(s)
	}
	return strings.Join(raw, ",")
}
