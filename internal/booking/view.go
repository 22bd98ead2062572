package booking

import "time"

// View receives everything the selector wants shown. Implementations decide
// how (HTML page, test recorder); missing widgets are simply ignored.
type View interface {
	RenderMonth(grid MonthGrid)
	// ShowSelectedDate receives the display form of the selected date, or ""
	// when nothing is selected.
	ShowSelectedDate(display string)
	UpdateSlots(enabled bool, selected []SlotID)
	SetConfirmEnabled(enabled bool)
	ShowMessage(msg Message)
	ClearMessage()
	Navigate(target string)
}

// MessageKind distinguishes banner styles.
type MessageKind string

const MessageSuccess MessageKind = "success"

// Message is a transient banner above the calendar.
type Message struct {
	Kind MessageKind
	Text string
}

// Scheduler runs fn once after delay.
type Scheduler interface {
	AfterFunc(delay time.Duration, fn func())
}

// TimerScheduler schedules on real timers.
type TimerScheduler struct{}

// AfterFunc implements Scheduler.
func (TimerScheduler) AfterFunc(delay time.Duration, fn func()) {
	time.AfterFunc(delay, fn)
}
