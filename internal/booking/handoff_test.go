package booking

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandoffURLDefaultsPath(t *testing.T) {
	got := HandoffURL("", day("2026-10-22"), []SlotID{SlotMorning, SlotMidday})
	assert.Equal(t, "/contact?date=2026-10-22&slots=7-11%2C11-15", got)
}

func TestParseHandoff(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantDate  string
		wantSlots []SlotID
	}{
		{"full", "date=2026-10-22&slots=7-11%2C15-19", "2026-10-22", []SlotID{SlotMorning, SlotAfternoon}},
		{"plain comma", "date=2026-10-22&slots=11-15,7-11", "2026-10-22", []SlotID{SlotMidday, SlotMorning}},
		{"unknown and duplicate slots", "slots=7-11,bogus,7-11", "", []SlotID{SlotMorning}},
		{"malformed date", "date=22.10.2026", "", nil},
		{"nothing carried", "", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			assert.NoError(t, err)
			h := ParseHandoff(values)
			assert.Equal(t, tt.wantDate, h.Date)
			assert.Equal(t, tt.wantSlots, h.Slots)
		})
	}
}

func TestHandoffSlotStrings(t *testing.T) {
	assert.Nil(t, Handoff{}.SlotStrings())
	assert.Equal(t, []string{"15-19"}, Handoff{Slots: []SlotID{SlotAfternoon}}.SlotStrings())
}

func TestSlotLabel(t *testing.T) {
	assert.Equal(t, "11–15 Uhr", SlotMidday.Label())
	_, ok := ParseSlot(" 15-19 ")
	assert.True(t, ok)
	_, ok = ParseSlot("15–19")
	assert.False(t, ok)
}
