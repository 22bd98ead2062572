package leads

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"github.com/wolfman30/hausservice-booking/pkg/logging"
)

// Submitter stores contact submissions.
type Submitter interface {
	Submit(ctx context.Context, form ContactForm, carried url.Values) (*Lead, Outcome, error)
}

// Handler handles HTTP requests for leads
type Handler struct {
	submitter       Submitter
	lister          Lister
	successRedirect string
	logger          *logging.Logger
}

// NewHandler creates a new leads handler. lister may be nil when no admin
// listing is exposed. Form posts are redirected to successRedirect when set.
func NewHandler(submitter Submitter, lister Lister, successRedirect string, logger *logging.Logger) *Handler {
	if submitter == nil {
		panic("leads: submitter required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		submitter:       submitter,
		lister:          lister,
		successRedirect: successRedirect,
		logger:          logger,
	}
}

// SubmitResponse is returned for JSON submissions.
type SubmitResponse struct {
	Status  string `json:"status"`
	ID      string `json:"id"`
	Message string `json:"message"`
}

// CreateContactLead handles POST /leads/contact. The calendar selection is
// carried in the query string (date, slots) or as hidden form fields.
func (h *Handler) CreateContactLead(w http.ResponseWriter, r *http.Request) {
	form, carried, isJSON, err := decodeSubmission(r)
	if err != nil {
		h.logger.Error("failed to decode request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	lead, outcome, err := h.submitter.Submit(r.Context(), form, carried)
	if err != nil {
		if errors.Is(err, ErrInvalidName) || errors.Is(err, ErrMissingContact) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to submit lead", "error", err)
		http.Error(w, "submission failed", http.StatusInternalServerError)
		return
	}

	h.logger.Info("lead submitted", "id", lead.ID, "sink", outcome.Sink, "has_date", lead.Date != nil)

	if !isJSON && h.successRedirect != "" {
		http.Redirect(w, r, h.successRedirect, http.StatusSeeOther)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(SubmitResponse{
		Status:  "success",
		ID:      lead.ID,
		Message: outcome.Message,
	})
}

func decodeSubmission(r *http.Request) (ContactForm, url.Values, bool, error) {
	carried := url.Values{}
	query := r.URL.Query()

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var body struct {
			ContactForm
			Date  string `json:"date"`
			Slots string `json:"slots"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return ContactForm{}, nil, true, err
		}
		carried.Set("date", firstNonEmpty(query.Get("date"), body.Date))
		carried.Set("slots", firstNonEmpty(query.Get("slots"), body.Slots))
		return body.ContactForm, carried, true, nil
	}

	if err := r.ParseForm(); err != nil {
		return ContactForm{}, nil, false, err
	}
	form := ContactForm{
		Name:    r.PostForm.Get("name"),
		Email:   r.PostForm.Get("email"),
		Phone:   r.PostForm.Get("phone"),
		Message: r.PostForm.Get("message"),
	}
	carried.Set("date", firstNonEmpty(query.Get("date"), r.PostForm.Get("date")))
	carried.Set("slots", firstNonEmpty(query.Get("slots"), r.PostForm.Get("slots")))
	return form, carried, false, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// ListLeadsResponse is the response for listing leads
type ListLeadsResponse struct {
	Leads  []Lead `json:"leads"`
	Count  int    `json:"count"`
	Total  int    `json:"total"`
	Offset int    `json:"offset"`
	Limit  int    `json:"limit"`
}

// ListLeads handles GET /admin/leads requests
func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	if h.lister == nil {
		http.Error(w, "lead listing unavailable", http.StatusNotFound)
		return
	}

	limit, offset := 50, 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if v, err := strconv.Atoi(limitStr); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if v, err := strconv.Atoi(offsetStr); err == nil && v >= 0 {
			offset = v
		}
	}

	all, err := h.lister.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list leads", "error", err)
		http.Error(w, "failed to list leads", http.StatusInternalServerError)
		return
	}

	page := []Lead{}
	if offset < len(all) {
		end := min(offset+limit, len(all))
		page = all[offset:end]
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ListLeadsResponse{
		Leads:  page,
		Count:  len(page),
		Total:  len(all),
		Offset: offset,
		Limit:  limit,
	})
}

// CalendarFeed handles GET /admin/leads.ics requests
func (h *Handler) CalendarFeed(w http.ResponseWriter, r *http.Request) {
	if h.lister == nil {
		http.Error(w, "lead listing unavailable", http.StatusNotFound)
		return
	}
	all, err := h.lister.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list leads for calendar", "error", err)
		http.Error(w, "failed to list leads", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Write([]byte(BuildCalendar(all)))
}
