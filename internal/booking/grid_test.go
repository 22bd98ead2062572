package booking

import (
	"testing"
	"time"

	"github.com/wolfman30/hausservice-booking/internal/availability"
)

func cellByKey(t *testing.T, grid MonthGrid, key string) DayCell {
	t.Helper()
	for _, c := range grid.Days {
		if c.Key == key {
			return c
		}
	}
	t.Fatalf("no cell for %s", key)
	return DayCell{}
}

func TestBuildMonthGridStatuses(t *testing.T) {
	avail := testAvailability()
	grid := BuildMonthGrid(2026, time.October, testNow, avail, time.Time{})

	if grid.Label != "Oktober 2026" {
		t.Fatalf("unexpected label %q", grid.Label)
	}
	if len(grid.Days) != 31 {
		t.Fatalf("expected 31 days, got %d", len(grid.Days))
	}
	// 1 October 2026 is a Thursday.
	if grid.Leading != 3 {
		t.Fatalf("expected 3 leading blanks, got %d", grid.Leading)
	}

	cases := map[string]DayStatus{
		"2026-10-01": DayPast,
		"2026-10-20": DayPast,
		"2026-10-21": DayTodayAvailable,
		"2026-10-22": DayAvailable,
		"2026-10-24": DayUnavailable,
		"2026-10-27": DayUnavailable,
	}
	for key, want := range cases {
		if got := cellByKey(t, grid, key).Status; got != want {
			t.Errorf("%s: expected %s, got %s", key, want, got)
		}
	}
}

func TestBuildMonthGridTodayUnavailable(t *testing.T) {
	grid := BuildMonthGrid(2026, time.October, testNow, availability.NewSet("2026-10-22"), time.Time{})
	today := cellByKey(t, grid, "2026-10-21")
	if today.Status != DayTodayUnavailable || today.Interactive {
		t.Fatalf("unexpected today cell %+v", today)
	}
}

func TestBuildMonthGridInteractiveOnlyForBookableDays(t *testing.T) {
	grid := BuildMonthGrid(2026, time.October, testNow, testAvailability(), time.Time{})
	for _, c := range grid.Days {
		want := c.Status == DayAvailable || c.Status == DayTodayAvailable
		if c.Interactive != want {
			t.Errorf("%s (%s): interactive=%v", c.Key, c.Status, c.Interactive)
		}
		if c.Status == DayAvailable && c.AriaLabel == "" {
			t.Errorf("%s: expected aria label", c.Key)
		}
	}
	if got := cellByKey(t, grid, "2026-10-22").AriaLabel; got != "Wählen Sie 22. Oktober 2026" {
		t.Fatalf("unexpected aria label %q", got)
	}
}

func TestBuildMonthGridSelectedOverlay(t *testing.T) {
	avail := testAvailability()
	grid := BuildMonthGrid(2026, time.October, testNow, avail, day("2026-10-23"))
	if !cellByKey(t, grid, "2026-10-23").Selected {
		t.Fatalf("expected selected overlay")
	}

	// A past selection is never highlighted.
	grid = BuildMonthGrid(2026, time.October, testNow, avail, day("2026-10-20"))
	if cellByKey(t, grid, "2026-10-20").Selected {
		t.Fatalf("past day must not carry the selected flag")
	}
}

func TestBuildMonthGridMondayAndSundayStarts(t *testing.T) {
	// June 2026 starts on a Monday, November 2026 on a Sunday.
	if g := BuildMonthGrid(2026, time.June, testNow, availability.Set{}, time.Time{}); g.Leading != 0 {
		t.Fatalf("expected 0 leading blanks, got %d", g.Leading)
	}
	if g := BuildMonthGrid(2026, time.November, testNow, availability.Set{}, time.Time{}); g.Leading != 6 {
		t.Fatalf("expected 6 leading blanks, got %d", g.Leading)
	}
}

func TestBuildMonthGridFebruaryLeapYear(t *testing.T) {
	g := BuildMonthGrid(2028, time.February, testNow, availability.Set{}, time.Time{})
	if len(g.Days) != 29 {
		t.Fatalf("expected 29 days, got %d", len(g.Days))
	}
	for _, c := range g.Days {
		if c.Status != DayUnavailable {
			t.Fatalf("future day without availability should be unavailable, got %s", c.Status)
		}
	}
}
