package notify

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/wolfman30/hausservice-booking/internal/booking"
	"github.com/wolfman30/hausservice-booking/internal/leads"
	"github.com/wolfman30/hausservice-booking/pkg/logging"
)

// LeadNotifier emails the office whenever a lead is stored.
type LeadNotifier struct {
	sender      EmailSender
	officeEmail string
	loc         *time.Location
	logger      *logging.Logger
}

// NewLeadNotifier builds a notifier that mails officeEmail. loc controls how
// the received timestamp is rendered; nil means UTC.
func NewLeadNotifier(sender EmailSender, officeEmail string, loc *time.Location, logger *logging.Logger) *LeadNotifier {
	if sender == nil {
		panic("notify: email sender required")
	}
	if officeEmail == "" {
		panic("notify: office email required")
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &LeadNotifier{sender: sender, officeEmail: officeEmail, loc: loc, logger: logger}
}

// NotifyLead implements leads.Notifier.
func (n *LeadNotifier) NotifyLead(ctx context.Context, lead *leads.Lead) error {
	if lead == nil {
		return leads.ErrNilLead
	}
	msg := EmailMessage{
		To:      n.officeEmail,
		Subject: LeadSubject(lead),
		Body:    FormatLeadSummary(lead, n.loc),
		HTML:    FormatLeadSummaryHTML(lead, n.loc),
		// The office answers the customer straight from the notification.
		ReplyTo:     lead.Email,
		ReplyToName: lead.Name,
		Categories:  []string{"lead"},
	}
	if err := n.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: lead %s: %w", lead.ID, err)
	}
	n.logger.Debug("office notified about lead", "lead_id", lead.ID)
	return nil
}

// LeadSubject is the email subject for a new lead.
func LeadSubject(lead *leads.Lead) string {
	if lead.Date != nil {
		return fmt.Sprintf("Neue Terminanfrage von %s für %s", lead.Name, displayDate(*lead.Date))
	}
	return "Neue Kontaktanfrage von " + lead.Name
}

// FormatLeadSummary generates a plain-text lead summary.
func FormatLeadSummary(lead *leads.Lead, loc *time.Location) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Name: %s\n", lead.Name)
	fmt.Fprintf(&b, "Telefon: %s\n", valueOrDash(lead.Phone))
	fmt.Fprintf(&b, "E-Mail: %s\n", valueOrDash(lead.Email))
	if appointment := appointmentString(lead); appointment != "" {
		fmt.Fprintf(&b, "Wunschtermin: %s\n", appointment)
	}
	if lead.Message != "" {
		fmt.Fprintf(&b, "Nachricht: %s\n", lead.Message)
	}
	fmt.Fprintf(&b, "Eingegangen: %s\n", receivedAt(lead, loc))

	return b.String()
}

// FormatLeadSummaryHTML generates an HTML-formatted lead summary for email.
func FormatLeadSummaryHTML(lead *leads.Lead, loc *time.Location) string {
	row := func(label, value string) string {
		return fmt.Sprintf(`<tr><td style="padding:6px 12px;font-weight:bold;">%s</td><td style="padding:6px 12px;">%s</td></tr>`,
			label, html.EscapeString(value))
	}

	var rows strings.Builder
	rows.WriteString(row("Name", lead.Name))
	if lead.Phone != "" {
		fmt.Fprintf(&rows, `<tr><td style="padding:6px 12px;font-weight:bold;">Telefon</td><td style="padding:6px 12px;"><a href="tel:%s">%s</a></td></tr>`,
			html.EscapeString(lead.Phone), html.EscapeString(lead.Phone))
	}
	if lead.Email != "" {
		rows.WriteString(row("E-Mail", lead.Email))
	}
	if appointment := appointmentString(lead); appointment != "" {
		rows.WriteString(row("Wunschtermin", appointment))
	}
	if lead.Message != "" {
		rows.WriteString(row("Nachricht", lead.Message))
	}
	rows.WriteString(row("Eingegangen", receivedAt(lead, loc)))

	return fmt.Sprintf(`<div style="font-family:sans-serif;max-width:600px;">
<h2 style="color:#333;">Neue Anfrage über die Website</h2>
<table style="border-collapse:collapse;width:100%%;">
%s
</table>
<p style="color:#666;font-size:12px;">Bitte melden Sie sich zur Bestätigung beim Kunden.</p>
</div>`, rows.String())
}

func appointmentString(lead *leads.Lead) string {
	if lead.Date == nil {
		return ""
	}
	parts := []string{displayDate(*lead.Date)}
	var labels []string
	for _, raw := range lead.Slots {
		if id, ok := booking.ParseSlot(raw); ok {
			labels = append(labels, id.Label())
		}
	}
	if len(labels) > 0 {
		parts = append(parts, strings.Join(labels, ", "))
	}
	return strings.Join(parts, ", ")
}

func displayDate(key string) string {
	t, err := time.Parse("2006-01-02", key)
	if err != nil {
		return key
	}
	return booking.FormatDateDisplay(t)
}

func receivedAt(lead *leads.Lead, loc *time.Location) string {
	if lead.CreatedAt.IsZero() {
		return "-"
	}
	if loc == nil {
		loc = time.UTC
	}
	return lead.CreatedAt.In(loc).Format("02.01.2006 15:04")
}

func valueOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
