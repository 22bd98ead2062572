package consent

import (
	"encoding/json"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/wolfman30/hausservice-booking/pkg/logging"
)

// Handler serves the consent banner endpoints.
type Handler struct {
	secure bool
	now    func() time.Time
	logger *logging.Logger
}

// NewHandler creates a consent handler. secure marks the cookie Secure.
func NewHandler(secure bool, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{secure: secure, now: time.Now, logger: logger}
}

// ChoiceRequest is the body accepted by POST /consent. Choice, when set to
// "all" or "necessary", overrides the individual flags.
type ChoiceRequest struct {
	Choice     string `json:"choice,omitempty"`
	Statistics bool   `json:"statistics"`
	Marketing  bool   `json:"marketing"`
}

// GetConsent handles GET /consent.
func (h *Handler) GetConsent(w http.ResponseWriter, r *http.Request) {
	rec, err := FromRequest(r)
	if err != nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// SaveConsent handles POST /consent.
func (h *Handler) SaveConsent(w http.ResponseWriter, r *http.Request) {
	req, err := decodeChoice(r)
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	now := h.now()
	var rec Record
	switch req.Choice {
	case "all":
		rec = AcceptAll(now)
	case "necessary":
		rec = NecessaryOnly(now)
	case "":
		rec = NewRecord(req.Statistics, req.Marketing, now)
	default:
		http.Error(w, "unknown consent choice", http.StatusBadRequest)
		return
	}

	if err := Write(w, rec, h.secure); err != nil {
		h.logger.Error("failed to write consent cookie", "error", err)
		http.Error(w, "failed to store consent", http.StatusInternalServerError)
		return
	}

	if back := r.PostForm.Get("redirect"); back != "" && isLocalPath(back) {
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func decodeChoice(r *http.Request) (ChoiceRequest, error) {
	var req ChoiceRequest
	if isJSON(r) {
		err := json.NewDecoder(r.Body).Decode(&req)
		return req, err
	}
	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.Choice = r.PostForm.Get("choice")
	req.Statistics, _ = strconv.ParseBool(r.PostForm.Get("statistics"))
	req.Marketing, _ = strconv.ParseBool(r.PostForm.Get("marketing"))
	return req, nil
}

func isJSON(r *http.Request) bool {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return mediaType == "application/json"
}

func isLocalPath(p string) bool {
	return len(p) > 0 && p[0] == '/' && (len(p) == 1 || (p[1] != '/' && p[1] != '\\'))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
