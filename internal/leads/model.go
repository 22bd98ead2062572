package leads

import (
	"strings"
	"time"
)

// TypeContact discriminates contact/booking requests from other records in
// a shared remote store.
const TypeContact = "contact"

// Lead is a submitted contact or booking inquiry awaiting follow-up. It is
// never modified after creation; an admin surface flips Processed.
type Lead struct {
	ID        string    `json:"id" dynamodbav:"id"`
	Type      string    `json:"type" dynamodbav:"type"`
	Name      string    `json:"name" dynamodbav:"name"`
	Email     string    `json:"email" dynamodbav:"email"`
	Phone     string    `json:"phone" dynamodbav:"phone"`
	Message   string    `json:"message" dynamodbav:"message"`
	Date      *string   `json:"date" dynamodbav:"date,omitempty"`
	Slots     []string  `json:"slots" dynamodbav:"slots,omitempty"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
	Processed bool      `json:"processed" dynamodbav:"processed"`
}

// ContactForm carries the raw contact form fields.
type ContactForm struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// Trimmed returns the form with surrounding whitespace removed.
func (f ContactForm) Trimmed() ContactForm {
	return ContactForm{
		Name:    strings.TrimSpace(f.Name),
		Email:   strings.TrimSpace(f.Email),
		Phone:   strings.TrimSpace(f.Phone),
		Message: strings.TrimSpace(f.Message),
	}
}

// Validate performs presence checks only.
func (f ContactForm) Validate() error {
	if f.Name == "" {
		return ErrInvalidName
	}
	if f.Email == "" && f.Phone == "" {
		return ErrMissingContact
	}
	return nil
}
