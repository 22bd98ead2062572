// Package consent stores the visitor's cookie consent choice in a cookie.
package consent

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// CookieName is the fixed key the consent record is stored under.
const CookieName = "cookie_consent"

const cookieMaxAge = 365 * 24 * time.Hour

// ErrNoConsent is returned when the visitor has not chosen yet.
var ErrNoConsent = errors.New("consent: no consent recorded")

// Record is the persisted consent choice. Necessary cookies cannot be
// declined.
type Record struct {
	Necessary  bool      `json:"necessary"`
	Statistics bool      `json:"statistics"`
	Marketing  bool      `json:"marketing"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewRecord builds a record stamped at now.
func NewRecord(statistics, marketing bool, now time.Time) Record {
	return Record{
		Necessary:  true,
		Statistics: statistics,
		Marketing:  marketing,
		Timestamp:  now.UTC(),
	}
}

// AcceptAll grants every category.
func AcceptAll(now time.Time) Record { return NewRecord(true, true, now) }

// NecessaryOnly declines everything optional.
func NecessaryOnly(now time.Time) Record { return NewRecord(false, false, now) }

// Encode serialises the record for a cookie value.
func (r Record) Encode() (string, error) {
	r.Necessary = true
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("consent: encode: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// Decode parses a cookie value written by Encode.
func Decode(value string) (Record, error) {
	data, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return Record{}, fmt.Errorf("consent: decode: %w", err)
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, fmt.Errorf("consent: decode: %w", err)
	}
	r.Necessary = true
	return r, nil
}

// FromRequest reads the consent cookie. A missing or unreadable cookie
// yields ErrNoConsent so the banner is shown again.
func FromRequest(r *http.Request) (Record, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return Record{}, ErrNoConsent
	}
	rec, err := Decode(cookie.Value)
	if err != nil {
		return Record{}, ErrNoConsent
	}
	return rec, nil
}

// Write stores rec on the response.
func Write(w http.ResponseWriter, rec Record, secure bool) error {
	value, err := rec.Encode()
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(cookieMaxAge.Seconds()),
		HttpOnly: false,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
