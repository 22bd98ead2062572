package consent

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler() *Handler {
	h := NewHandler(true, nil)
	h.now = func() time.Time { return time.Date(2026, 10, 21, 9, 30, 0, 0, time.UTC) }
	return h
}

func consentCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie set", CookieName)
	return nil
}

func TestSaveConsent_JSONFlags(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/consent", strings.NewReader(`{"statistics":true,"marketing":false}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.SaveConsent(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var rec Record
	require.NoError(t, json.NewDecoder(w.Body).Decode(&rec))
	assert.True(t, rec.Necessary)
	assert.True(t, rec.Statistics)
	assert.False(t, rec.Marketing)

	cookie := consentCookie(t, w)
	assert.True(t, cookie.Secure)
	stored, err := Decode(cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, rec, stored)
}

func TestSaveConsent_Choices(t *testing.T) {
	tests := []struct {
		choice    string
		wantStats bool
		wantMkt   bool
	}{
		{choice: "all", wantStats: true, wantMkt: true},
		{choice: "necessary"},
	}
	for _, tt := range tests {
		t.Run(tt.choice, func(t *testing.T) {
			h := newTestHandler()
			req := httptest.NewRequest(http.MethodPost, "/consent", strings.NewReader(`{"choice":"`+tt.choice+`","statistics":true}`))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			h.SaveConsent(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			stored, err := Decode(consentCookie(t, w).Value)
			require.NoError(t, err)
			assert.True(t, stored.Necessary)
			assert.Equal(t, tt.wantStats, stored.Statistics)
			assert.Equal(t, tt.wantMkt, stored.Marketing)
		})
	}
}

func TestSaveConsent_UnknownChoice(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/consent", strings.NewReader(`{"choice":"some"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.SaveConsent(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSaveConsent_FormRedirect(t *testing.T) {
	h := newTestHandler()
	form := url.Values{"choice": {"all"}, "redirect": {"/booking"}}
	req := httptest.NewRequest(http.MethodPost, "/consent", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	h.SaveConsent(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/booking", w.Header().Get("Location"))
	consentCookie(t, w)
}

func TestSaveConsent_IgnoresOffsiteRedirect(t *testing.T) {
	h := newTestHandler()
	form := url.Values{"choice": {"necessary"}, "redirect": {"//evil.example"}}
	req := httptest.NewRequest(http.MethodPost, "/consent", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	h.SaveConsent(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetConsent(t *testing.T) {
	h := newTestHandler()

	w := httptest.NewRecorder()
	h.GetConsent(w, httptest.NewRequest(http.MethodGet, "/consent", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	value, err := NecessaryOnly(h.now()).Encode()
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/consent", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: value})
	w = httptest.NewRecorder()
	h.GetConsent(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var rec Record
	require.NoError(t, json.NewDecoder(w.Body).Decode(&rec))
	assert.True(t, rec.Necessary)
	assert.False(t, rec.Statistics)
}
