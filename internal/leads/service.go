package leads

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/hausservice-booking/internal/booking"
	"github.com/wolfman30/hausservice-booking/internal/observability/metrics"
	"github.com/wolfman30/hausservice-booking/pkg/logging"
)

// SuccessMessage is shown after every accepted submission.
const SuccessMessage = "Vielen Dank! Ihre Nachricht wurde gesendet. Wir werden uns in Kürze bei Ihnen melden."

const (
	defaultRemoteTimeout = 5 * time.Second
	defaultNotifyTimeout = 15 * time.Second
)

// Notifier is told about stored leads in the background. Failures are
// logged only.
type Notifier interface {
	NotifyLead(ctx context.Context, lead *Lead) error
}

// Outcome describes an accepted submission. Sink is "" when no store took
// the lead; the visitor still sees SuccessMessage.
type Outcome struct {
	Sink    string `json:"-"`
	Message string `json:"message"`
}

// ServiceOption customises a Service.
type ServiceOption func(*Service)

// WithRemote sets the remote sink tried before the local list.
func WithRemote(sink Sink) ServiceOption {
	return func(s *Service) { s.remote = sink }
}

// WithNotifier sets the office notifier.
func WithNotifier(n Notifier) ServiceOption {
	return func(s *Service) { s.notifier = n }
}

// WithMetrics sets the lead metrics.
func WithMetrics(m *metrics.LeadMetrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRemoteTimeout bounds the remote insert.
func WithRemoteTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.remoteTimeout = d
		}
	}
}

// WithNotifyTimeout bounds each background notification.
func WithNotifyTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.notifyTimeout = d
		}
	}
}

// Service stores contact submissions: one remote attempt, then the local list.
type Service struct {
	remote        Sink
	local         Sink
	notifier      Notifier
	metrics       *metrics.LeadMetrics
	logger        *logging.Logger
	tracer        trace.Tracer
	now           func() time.Time
	remoteTimeout time.Duration
	notifyTimeout time.Duration
	pending       sync.WaitGroup
}

// NewService builds a submission service around the local fallback sink.
func NewService(local Sink, logger *logging.Logger, opts ...ServiceOption) *Service {
	if local == nil {
		panic("leads: local sink required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	s := &Service{
		local:         local,
		logger:        logger,
		tracer:        otel.Tracer("hausservice.internal.leads"),
		now:           time.Now,
		remoteTimeout: defaultRemoteTimeout,
		notifyTimeout: defaultNotifyTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit trims and checks form, attaches the date/slots carried from the
// booking calendar, and stores the lead. Only validation errors are
// returned; storage failures are absorbed.
func (s *Service) Submit(ctx context.Context, form ContactForm, carried url.Values) (*Lead, Outcome, error) {
	ctx, span := s.tracer.Start(ctx, "leads.submit")
	defer span.End()

	form = form.Trimmed()
	if err := form.Validate(); err != nil {
		span.RecordError(err)
		return nil, Outcome{}, err
	}

	handoff := booking.ParseHandoff(carried)
	lead := &Lead{
		ID:        uuid.NewString(),
		Type:      TypeContact,
		Name:      form.Name,
		Email:     form.Email,
		Phone:     form.Phone,
		Message:   form.Message,
		Slots:     handoff.SlotStrings(),
		CreatedAt: s.now().UTC(),
	}
	if handoff.Date != "" {
		date := handoff.Date
		lead.Date = &date
	}

	stored := s.store(ctx, lead)
	span.SetAttributes(
		attribute.String("hausservice.lead_id", lead.ID),
		attribute.String("hausservice.sink", stored),
	)
	if stored != "" {
		s.metrics.ObserveSubmission(stored)
		s.notify(ctx, lead)
	}
	return lead, Outcome{Sink: stored, Message: SuccessMessage}, nil
}

func (s *Service) store(ctx context.Context, lead *Lead) string {
	if s.remote != nil {
		remoteCtx, cancel := context.WithTimeout(ctx, s.remoteTimeout)
		err := s.appendTo(remoteCtx, s.remote, lead)
		cancel()
		if err == nil {
			return s.remote.Name()
		}
		s.logger.Warn("remote lead sink failed, using local list",
			"sink", s.remote.Name(),
			"lead_id", lead.ID,
			"error", err,
		)
	}

	if err := s.appendTo(ctx, s.local, lead); err != nil {
		s.logger.Error("local lead sink failed",
			"sink", s.local.Name(),
			"lead_id", lead.ID,
			"error", err,
		)
		return ""
	}
	return s.local.Name()
}

func (s *Service) appendTo(ctx context.Context, sink Sink, lead *Lead) error {
	ctx, span := s.tracer.Start(ctx, "leads.append")
	defer span.End()
	span.SetAttributes(attribute.String("hausservice.sink", sink.Name()))

	start := time.Now()
	err := sink.Append(ctx, lead)
	s.metrics.ObserveSinkLatency(sink.Name(), time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveSinkFailure(sink.Name())
		return err
	}
	return nil
}

// notify runs the notifier detached from the request so the visitor's
// response never waits on the mail provider.
func (s *Service) notify(ctx context.Context, lead *Lead) {
	if s.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		defer cancel()
		if err := s.notifier.NotifyLead(ctx, lead); err != nil {
			s.logger.Warn("lead notification failed", "lead_id", lead.ID, "error", err)
		}
	}()
}

// Wait blocks until background notifications have finished.
func (s *Service) Wait() {
	s.pending.Wait()
}
