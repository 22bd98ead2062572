package webcal

import (
	"time"

	"github.com/wolfman30/hausservice-booking/internal/booking"
)

// pageView records what the selector asked to show during one request so it
// can be rendered into a single response.
type pageView struct {
	Grid            booking.MonthGrid
	SelectedDisplay string
	SlotsEnabled    bool
	SelectedSlots   []booking.SlotID
	ConfirmEnabled  bool
	Message         *booking.Message
	// MessageTTL is how long the page keeps the message visible; zero
	// means until the next action.
	MessageTTL time.Duration
	// NavigateTo and NavigateAfter describe a pending handoff.
	NavigateTo    string
	NavigateAfter time.Duration

	deferring bool
	delay     time.Duration
}

var _ booking.View = (*pageView)(nil)

func (v *pageView) RenderMonth(grid booking.MonthGrid) { v.Grid = grid }

func (v *pageView) ShowSelectedDate(display string) { v.SelectedDisplay = display }

func (v *pageView) UpdateSlots(enabled bool, selected []booking.SlotID) {
	v.SlotsEnabled = enabled
	v.SelectedSlots = selected
}

func (v *pageView) SetConfirmEnabled(enabled bool) { v.ConfirmEnabled = enabled }

func (v *pageView) ShowMessage(msg booking.Message) {
	v.Message = &msg
	v.MessageTTL = 0
}

func (v *pageView) ClearMessage() {
	if v.deferring {
		v.MessageTTL = v.delay
		return
	}
	v.Message = nil
}

func (v *pageView) Navigate(target string) {
	v.NavigateTo = target
	if v.deferring {
		v.NavigateAfter = v.delay
	}
}

// deferredScheduler runs scheduled actions immediately against the page
// view in deferred mode, so the delay ends up in the rendered page rather
// than on a server timer.
type deferredScheduler struct {
	view *pageView
}

func (s deferredScheduler) AfterFunc(delay time.Duration, fn func()) {
	s.view.deferring, s.view.delay = true, delay
	defer func() { s.view.deferring, s.view.delay = false, 0 }()
	fn()
}
