package leads

import (
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCalendar(t *testing.T) {
	date := "2026-10-22"
	badDate := "22.10.2026"
	created := time.Date(2026, 10, 21, 9, 30, 0, 0, time.UTC)
	leads := []Lead{
		{
			ID:        "lead-1",
			Name:      "Anna Schmidt",
			Phone:     "0170 1234567",
			Message:   "Fenster putzen",
			Date:      &date,
			Slots:     []string{"7-11", "15-19"},
			CreatedAt: created,
		},
		{ID: "lead-2", Name: "Ohne Termin", CreatedAt: created},
		{ID: "lead-3", Name: "Kaputt", Date: &badDate, CreatedAt: created},
	}

	out := BuildCalendar(leads)

	cal, err := ical.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)

	events := cal.Events()
	require.Len(t, events, 1)

	event := events[0]
	assert.Equal(t, "lead-1@hausservice-booking", event.Id())

	start, err := event.GetAllDayStartAt()
	require.NoError(t, err)
	assert.Equal(t, date, start.Format("2006-01-02"))

	summary := event.GetProperty(ical.ComponentPropertySummary)
	require.NotNil(t, summary)
	assert.Equal(t, "Terminanfrage Anna Schmidt (7–11 Uhr, 15–19 Uhr)", summary.Value)

	description := event.GetProperty(ical.ComponentPropertyDescription)
	require.NotNil(t, description)
	assert.Contains(t, description.Value, "Telefon: 0170 1234567")
	assert.Contains(t, description.Value, "Nachricht: Fenster putzen")
}

func TestBuildCalendar_Empty(t *testing.T) {
	out := BuildCalendar(nil)

	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.NotContains(t, out, "BEGIN:VEVENT")
}

func TestEventSummaryWithoutSlots(t *testing.T) {
	assert.Equal(t, "Terminanfrage Jens", eventSummary(Lead{Name: "Jens"}))
}
