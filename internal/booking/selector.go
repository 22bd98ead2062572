// Package booking implements the appointment calendar: month grid
// classification and the date/slot selection state machine that hands the
// visitor over to the contact form.
package booking

import (
	"slices"
	"time"

	"github.com/wolfman30/hausservice-booking/internal/availability"
)

const (
	// HandoffDelay is how long the confirmation stays visible before the
	// visitor is sent to the contact form.
	HandoffDelay = 2 * time.Second
	// MessageTTL is how long a banner message stays visible.
	MessageTTL = 5 * time.Second
	// DefaultHandoffPath is the contact view receiving the selection.
	DefaultHandoffPath = "/contact"
)

// Option customises a Selector.
type Option func(*Selector)

// WithClock overrides the time source. The clock's location defines "today".
func WithClock(now func() time.Time) Option {
	return func(s *Selector) {
		if now != nil {
			s.now = now
		}
	}
}

// WithScheduler overrides how delayed actions run.
func WithScheduler(sched Scheduler) Option {
	return func(s *Selector) {
		if sched != nil {
			s.sched = sched
		}
	}
}

// WithHandoffPath overrides the contact view path.
func WithHandoffPath(path string) Option {
	return func(s *Selector) {
		if path != "" {
			s.handoffPath = path
		}
	}
}

// Selector owns the viewed month, the selected day and its time slots.
// It is not safe for concurrent use; callers serialise events per visitor.
type Selector struct {
	avail       availability.Set
	view        View
	now         func() time.Time
	sched       Scheduler
	handoffPath string
	state       State
}

// NewSelector starts a selection on today's month and renders it.
func NewSelector(avail availability.Set, view View, opts ...Option) *Selector {
	s := newSelector(avail, view, opts)
	today := s.today()
	s.state = State{
		ViewedYear:  today.Year(),
		ViewedMonth: today.Month(),
		Stage:       StageNoDateSelected,
	}
	s.Render()
	return s
}

// Restore rebuilds a selector from persisted state and renders it.
func Restore(state State, avail availability.Set, view View, opts ...Option) *Selector {
	s := newSelector(avail, view, opts)
	s.state = state.clone()
	if s.state.ViewedYear == 0 || s.state.ViewedMonth < time.January || s.state.ViewedMonth > time.December {
		today := s.today()
		s.state.ViewedYear, s.state.ViewedMonth = today.Year(), today.Month()
	}
	switch {
	case s.state.Stage == StageSubmitting:
	case s.state.HasDate():
		s.state.Stage = StageDateSelected
	default:
		s.state.Stage = StageNoDateSelected
		s.state.SelectedSlots = nil
	}
	s.Render()
	return s
}

func newSelector(avail availability.Set, view View, opts []Option) *Selector {
	if view == nil {
		panic("booking: view required")
	}
	s := &Selector{
		avail:       avail,
		view:        view,
		now:         time.Now,
		sched:       TimerScheduler{},
		handoffPath: DefaultHandoffPath,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a copy of the current selection state.
func (s *Selector) State() State {
	return s.state.clone()
}

// SelectDate selects d when it is bookable, not in the past and inside the
// viewed month. It reports whether the selection changed.
func (s *Selector) SelectDate(d time.Time) bool {
	if s.state.Stage == StageSubmitting {
		return false
	}
	d = s.localDay(d)
	if !s.avail.Has(d) || d.Before(s.today()) {
		return false
	}
	if d.Year() != s.state.ViewedYear || d.Month() != s.state.ViewedMonth {
		return false
	}

	s.state.SelectedDate = availability.Key(d)
	s.state.SelectedSlots = nil
	s.state.Stage = StageDateSelected
	s.Render()
	return true
}

// SelectDateKey is SelectDate for a canonical YYYY-MM-DD key.
func (s *Selector) SelectDateKey(key string) bool {
	d, err := availability.ParseKey(key, s.location())
	if err != nil {
		return false
	}
	return s.SelectDate(d)
}

// ToggleSlot adds or removes id from the selected slots. It requires a
// selected date.
func (s *Selector) ToggleSlot(id SlotID) bool {
	if s.state.Stage != StageDateSelected || !s.state.HasDate() {
		return false
	}
	if _, ok := ParseSlot(string(id)); !ok {
		return false
	}

	if i := slices.Index(s.state.SelectedSlots, id); i >= 0 {
		s.state.SelectedSlots = slices.Delete(s.state.SelectedSlots, i, i+1)
	} else {
		s.state.SelectedSlots = append(s.state.SelectedSlots, id)
	}
	if len(s.state.SelectedSlots) == 0 {
		s.state.SelectedSlots = nil
	}

	s.view.UpdateSlots(true, slices.Clone(s.state.SelectedSlots))
	s.view.SetConfirmEnabled(s.state.Confirmable())
	return true
}

// NavigateMonth moves the viewed month by delta. Selection is untouched.
func (s *Selector) NavigateMonth(delta int) bool {
	if s.state.Stage == StageSubmitting || delta == 0 {
		return false
	}
	first := time.Date(s.state.ViewedYear, s.state.ViewedMonth+time.Month(delta), 1, 0, 0, 0, 0, s.location())
	s.state.ViewedYear, s.state.ViewedMonth = first.Year(), first.Month()
	s.view.RenderMonth(s.grid())
	return true
}

// Confirm shows the confirmation and schedules the handoff to the contact
// view. The selector becomes terminal; repeated calls are ignored.
func (s *Selector) Confirm() bool {
	if !s.state.Confirmable() {
		return false
	}
	date, err := availability.ParseKey(s.state.SelectedDate, s.location())
	if err != nil {
		return false
	}
	slots := slices.Clone(s.state.SelectedSlots)

	s.state.Stage = StageSubmitting
	s.view.SetConfirmEnabled(false)
	s.view.UpdateSlots(false, slices.Clone(slots))
	s.view.ShowMessage(Message{Kind: MessageSuccess, Text: confirmationText(date, slots)})
	s.sched.AfterFunc(MessageTTL, s.view.ClearMessage)

	target := HandoffURL(s.handoffPath, date, slots)
	s.sched.AfterFunc(HandoffDelay, func() {
		s.view.Navigate(target)
	})
	return true
}

// Render pushes the full current state to the view.
func (s *Selector) Render() {
	s.view.RenderMonth(s.grid())

	display := ""
	if s.state.HasDate() {
		if d, err := availability.ParseKey(s.state.SelectedDate, s.location()); err == nil {
			display = FormatDateDisplay(d)
		}
	}
	s.view.ShowSelectedDate(display)
	s.view.UpdateSlots(s.state.Stage == StageDateSelected, slices.Clone(s.state.SelectedSlots))
	s.view.SetConfirmEnabled(s.state.Confirmable())
}

func (s *Selector) grid() MonthGrid {
	var selected time.Time
	if s.state.HasDate() {
		selected, _ = availability.ParseKey(s.state.SelectedDate, s.location())
	}
	return BuildMonthGrid(s.state.ViewedYear, s.state.ViewedMonth, s.now(), s.avail, selected)
}

func (s *Selector) location() *time.Location {
	return s.now().Location()
}

func (s *Selector) today() time.Time {
	return availability.StartOfDay(s.now())
}

// localDay maps the calendar day of d onto midnight in the selector's zone.
func (s *Selector) localDay(d time.Time) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, s.location())
}
