// Package webcal serves the booking calendar as server-rendered pages. Each
// visitor's selection lives in a session so every button press is a plain
// form post replayed through booking.Selector.
package webcal

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/hausservice-booking/internal/availability"
	"github.com/wolfman30/hausservice-booking/internal/booking"
	"github.com/wolfman30/hausservice-booking/internal/leads"
	"github.com/wolfman30/hausservice-booking/internal/observability/metrics"
	"github.com/wolfman30/hausservice-booking/pkg/logging"
)

// SessionCookie carries the booking session id.
const SessionCookie = "booking_session"

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

var weekdays = []string{"Mo", "Di", "Mi", "Do", "Fr", "Sa", "So"}

// Config wires a Handler.
type Config struct {
	Store         SessionStore
	Location      *time.Location
	HandoffPath   string
	SessionTTL    time.Duration
	SecureCookies bool
	LeadAction    string
	Metrics       *metrics.BookingMetrics
	Logger        *logging.Logger
	Clock         func() time.Time
}

// Handler serves the booking widget and the contact page it hands off to.
type Handler struct {
	store       SessionStore
	loc         *time.Location
	handoffPath string
	sessionTTL  time.Duration
	secure      bool
	leadAction  string
	metrics     *metrics.BookingMetrics
	logger      *logging.Logger
	now         func() time.Time
	newSeed     func() uint64
}

// NewHandler creates the widget handler.
func NewHandler(cfg Config) *Handler {
	if cfg.Store == nil {
		panic("webcal: session store required")
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.HandoffPath == "" {
		cfg.HandoffPath = booking.DefaultHandoffPath
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if cfg.LeadAction == "" {
		cfg.LeadAction = "/leads/contact"
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Handler{
		store:       cfg.Store,
		loc:         cfg.Location,
		handoffPath: cfg.HandoffPath,
		sessionTTL:  cfg.SessionTTL,
		secure:      cfg.SecureCookies,
		leadAction:  cfg.LeadAction,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger,
		now:         cfg.Clock,
		newSeed:     rand.Uint64,
	}
}

// ShowCalendar handles GET /booking. A finished selection starts over.
func (h *Handler) ShowCalendar(w http.ResponseWriter, r *http.Request) {
	sess := h.session(r.Context(), r)
	if sess.State.Stage == booking.StageSubmitting {
		sess.State = booking.State{}
	}

	view := &pageView{}
	sel := h.selector(sess, view)
	h.finish(w, r, sess, sel, view, true)
}

// SelectDate handles POST /booking/date.
func (h *Handler) SelectDate(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, "select_date", func(sel *booking.Selector) bool {
		return sel.SelectDateKey(r.PostForm.Get("date"))
	})
}

// ToggleSlot handles POST /booking/slot.
func (h *Handler) ToggleSlot(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, "toggle_slot", func(sel *booking.Selector) bool {
		id, ok := booking.ParseSlot(r.PostForm.Get("slot"))
		return ok && sel.ToggleSlot(id)
	})
}

// NavigateMonth handles POST /booking/month with delta -1 or 1.
func (h *Handler) NavigateMonth(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, "navigate_month", func(sel *booking.Selector) bool {
		delta, err := strconv.Atoi(r.PostForm.Get("delta"))
		if err != nil || (delta != -1 && delta != 1) {
			return false
		}
		return sel.NavigateMonth(delta)
	})
}

// Confirm handles POST /booking/confirm.
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, "confirm", func(sel *booking.Selector) bool {
		if !sel.Confirm() {
			return false
		}
		h.metrics.ObserveHandoff()
		return true
	})
}

func (h *Handler) apply(w http.ResponseWriter, r *http.Request, action string, op func(*booking.Selector) bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	sess := h.session(r.Context(), r)
	view := &pageView{}
	sel := h.selector(sess, view)

	accepted := op(sel)
	h.metrics.ObserveTransition(action, accepted)
	if !accepted {
		h.logger.Debug("booking action ignored", "action", action, "session", sess.ID, "stage", sel.State().Stage)
	}
	h.finish(w, r, sess, sel, view, accepted)
}

func (h *Handler) finish(w http.ResponseWriter, r *http.Request, sess *Session, sel *booking.Selector, view *pageView, accepted bool) {
	sess.State = sel.State()
	if err := h.store.Save(r.Context(), sess); err != nil {
		h.logger.Error("failed to save booking session", "session", sess.ID, "error", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.ID,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, newWidgetResponse(sess.State, view, accepted))
		return
	}
	h.render(w, "booking.html", newBookingPage(sess.State, view))
}

// session returns the visitor's session, or a fresh one when none exists,
// it cannot be read, or it was generated on an earlier day.
func (h *Handler) session(ctx context.Context, r *http.Request) *Session {
	today := availability.Key(h.now().In(h.loc))

	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		sess, err := h.store.Load(ctx, cookie.Value)
		switch {
		case err == nil && sess.Reference == today:
			return sess
		case err == nil, errors.Is(err, ErrSessionNotFound):
		default:
			h.logger.Warn("failed to load booking session", "session", cookie.Value, "error", err)
		}
	}

	return &Session{
		ID:        uuid.NewString(),
		Seed:      h.newSeed(),
		Reference: today,
	}
}

func (h *Handler) selector(sess *Session, view *pageView) *booking.Selector {
	clock := func() time.Time { return h.now().In(h.loc) }
	ref, err := availability.ParseKey(sess.Reference, h.loc)
	if err != nil {
		ref = clock()
	}
	avail := availability.NewGenerator(availability.NewSeededSource(sess.Seed)).Generate(ref)

	opts := []booking.Option{
		booking.WithClock(clock),
		booking.WithScheduler(deferredScheduler{view: view}),
		booking.WithHandoffPath(h.handoffPath),
	}
	if sess.State.Stage == "" {
		return booking.NewSelector(avail, view, opts...)
	}
	return booking.Restore(sess.State, avail, view, opts...)
}

// ShowContact handles GET /contact. Date and slots carried from the
// calendar are shown and posted along with the form.
func (h *Handler) ShowContact(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	handoff := booking.ParseHandoff(query)

	page := contactPage{
		Meta:           pageMeta{Title: "Kontakt"},
		Action:         h.leadAction,
		Sent:           query.Get("sent") != "",
		SuccessMessage: leads.SuccessMessage,
		Slots:          strings.Join(handoff.SlotStrings(), ","),
	}
	if handoff.Date != "" {
		if date, err := availability.ParseKey(handoff.Date, h.loc); err == nil {
			page.Date = handoff.Date
			page.DateDisplay = booking.FormatDateDisplay(date)
			page.Action = booking.HandoffURL(h.leadAction, date, handoff.Slots)
		}
	}
	labels := make([]string, 0, len(handoff.Slots))
	for _, id := range handoff.Slots {
		labels = append(labels, id.Label())
	}
	page.SlotLabels = strings.Join(labels, ", ")

	h.render(w, "contact.html", page)
}

// StaticHandler serves the embedded stylesheet under /static/.
func StaticHandler() http.Handler {
	return http.FileServerFS(staticFS)
}

func (h *Handler) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("failed to render page", "template", name, "error", err)
	}
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
