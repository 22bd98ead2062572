package booking

import (
	"slices"
	"time"
)

// Stage is the selector's position in the booking flow.
type Stage string

const (
	StageNoDateSelected Stage = "no-date"
	StageDateSelected   Stage = "date-selected"
	// StageSubmitting is terminal: the handoff has been scheduled.
	StageSubmitting Stage = "submitting"
)

// State is the serialisable selection state of one visitor.
type State struct {
	ViewedYear    int        `json:"viewed_year"`
	ViewedMonth   time.Month `json:"viewed_month"`
	SelectedDate  string     `json:"selected_date,omitempty"` // YYYY-MM-DD
	SelectedSlots []SlotID   `json:"selected_slots,omitempty"`
	Stage         Stage      `json:"stage"`
}

// HasDate reports whether a date is selected.
func (s State) HasDate() bool {
	return s.SelectedDate != ""
}

// Confirmable reports whether Confirm would be accepted.
func (s State) Confirmable() bool {
	return s.Stage == StageDateSelected && s.HasDate() && len(s.SelectedSlots) > 0
}

// HasSlot reports membership of id in the selected slots.
func (s State) HasSlot(id SlotID) bool {
	return slices.Contains(s.SelectedSlots, id)
}

func (s State) clone() State {
	s.SelectedSlots = slices.Clone(s.SelectedSlots)
	return s
}
