package webcal

import (
	"slices"

	"github.com/wolfman30/hausservice-booking/internal/booking"
)

type pageMeta struct {
	Title          string
	RefreshURL     string
	RefreshSeconds int
}

type slotOption struct {
	ID       booking.SlotID
	Label    string
	Selected bool
}

type bookingPage struct {
	Meta          pageMeta
	View          *pageView
	Weekdays      []string
	Blanks        []struct{}
	Slots         []slotOption
	Terminal      bool
	DismissMillis int64
}

func newBookingPage(state booking.State, view *pageView) bookingPage {
	page := bookingPage{
		Meta:          pageMeta{Title: "Termin buchen"},
		View:          view,
		Weekdays:      weekdays,
		Blanks:        make([]struct{}, view.Grid.Leading),
		Slots:         slotOptions(view.SelectedSlots),
		Terminal:      state.Stage == booking.StageSubmitting,
		DismissMillis: view.MessageTTL.Milliseconds(),
	}
	if view.NavigateTo != "" {
		page.Meta.RefreshURL = view.NavigateTo
		page.Meta.RefreshSeconds = int(view.NavigateAfter.Seconds())
	}
	return page
}

func slotOptions(selected []booking.SlotID) []slotOption {
	out := make([]slotOption, 0, len(booking.Slots))
	for _, id := range booking.Slots {
		out = append(out, slotOption{ID: id, Label: id.Label(), Selected: slices.Contains(selected, id)})
	}
	return out
}

type contactPage struct {
	Meta           pageMeta
	Action         string
	Sent           bool
	SuccessMessage string
	Date           string
	DateDisplay    string
	Slots          string
	SlotLabels     string
}

// widgetResponse is the JSON form of a rendered widget for script clients.
type widgetResponse struct {
	Accepted        bool              `json:"accepted"`
	Stage           booking.Stage     `json:"stage"`
	Month           booking.MonthGrid `json:"month"`
	SelectedDate    string            `json:"selected_date,omitempty"`
	SelectedDisplay string            `json:"selected_display,omitempty"`
	SlotsEnabled    bool              `json:"slots_enabled"`
	SelectedSlots   []booking.SlotID  `json:"selected_slots"`
	ConfirmEnabled  bool              `json:"confirm_enabled"`
	Message         *widgetMessage    `json:"message,omitempty"`
	Navigate        *widgetNavigate   `json:"navigate,omitempty"`
}

type widgetMessage struct {
	Kind           booking.MessageKind `json:"kind"`
	Text           string              `json:"text"`
	DismissAfterMs int64               `json:"dismiss_after_ms,omitempty"`
}

type widgetNavigate struct {
	To      string `json:"to"`
	AfterMs int64  `json:"after_ms"`
}

func newWidgetResponse(state booking.State, view *pageView, accepted bool) widgetResponse {
	resp := widgetResponse{
		Accepted:        accepted,
		Stage:           state.Stage,
		Month:           view.Grid,
		SelectedDate:    state.SelectedDate,
		SelectedDisplay: view.SelectedDisplay,
		SlotsEnabled:    view.SlotsEnabled,
		SelectedSlots:   view.SelectedSlots,
		ConfirmEnabled:  view.ConfirmEnabled,
	}
	if resp.SelectedSlots == nil {
		resp.SelectedSlots = []booking.SlotID{}
	}
	if view.Message != nil {
		resp.Message = &widgetMessage{
			Kind:           view.Message.Kind,
			Text:           view.Message.Text,
			DismissAfterMs: view.MessageTTL.Milliseconds(),
		}
	}
	if view.NavigateTo != "" {
		resp.Navigate = &widgetNavigate{To: view.NavigateTo, AfterMs: view.NavigateAfter.Milliseconds()}
	}
	return resp
}
