package webcal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/hausservice-booking/internal/booking"
)

// DefaultSessionTTL bounds how long an idle booking session is kept.
const DefaultSessionTTL = 24 * time.Hour

// ErrSessionNotFound is returned when no session exists for an id.
var ErrSessionNotFound = errors.New("webcal: session not found")

// Session is one visitor's booking widget. Seed and Reference reproduce the
// availability set generated on the first page load.
type Session struct {
	ID        string        `json:"id"`
	Seed      uint64        `json:"seed"`
	Reference string        `json:"reference"` // YYYY-MM-DD
	State     booking.State `json:"state"`
}

// SessionStore persists booking sessions.
type SessionStore interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, session *Session) error
}

// RedisSessionStore keeps sessions as JSON under booking_session:<id>.
type RedisSessionStore struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

// NewRedisSessionStore creates a Redis-backed store.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	if client == nil {
		panic("webcal: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisSessionStore{
		redis:  client,
		ttl:    ttl,
		tracer: otel.Tracer("hausservice.internal.webcal.session"),
	}
}

// Save implements SessionStore and refreshes the TTL.
func (s *RedisSessionStore) Save(ctx context.Context, session *Session) error {
	ctx, span := s.tracer.Start(ctx, "webcal.save_session")
	defer span.End()

	data, err := json.Marshal(session)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("webcal: failed to marshal session: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(session.ID), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("webcal: failed to persist session: %w", err)
	}
	return nil
}

// Load implements SessionStore.
func (s *RedisSessionStore) Load(ctx context.Context, id string) (*Session, error) {
	ctx, span := s.tracer.Start(ctx, "webcal.load_session")
	defer span.End()

	data, err := s.redis.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("webcal: failed to load session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("webcal: failed to decode session: %w", err)
	}
	return &session, nil
}

func sessionKey(id string) string {
	return fmt.Sprintf("booking_session:%s", id)
}

const memorySweepInterval = time.Minute

// MemorySessionStore keeps sessions in process, for development and tests.
// Expired sessions are swept at most once per sweep interval on Save and
// Load, and by Run when it is started.
type MemorySessionStore struct {
	mu        sync.Mutex
	sessions  map[string]memorySession
	ttl       time.Duration
	now       func() time.Time
	nextSweep time.Time
}

type memorySession struct {
	data    []byte
	expires time.Time
}

// NewMemorySessionStore creates an in-memory store.
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &MemorySessionStore{
		sessions: make(map[string]memorySession),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Save implements SessionStore.
func (m *MemorySessionStore) Save(_ context.Context, session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("webcal: failed to marshal session: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	m.maybeSweepLocked(now)
	m.sessions[session.ID] = memorySession{data: data, expires: now.Add(m.ttl)}
	return nil
}

// Load implements SessionStore.
func (m *MemorySessionStore) Load(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	now := m.now()
	m.maybeSweepLocked(now)
	entry, ok := m.sessions[id]
	if ok && now.After(entry.expires) {
		delete(m.sessions, id)
		ok = false
	}
	m.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	var session Session
	if err := json.Unmarshal(entry.data, &session); err != nil {
		return nil, fmt.Errorf("webcal: failed to decode session: %w", err)
	}
	return &session, nil
}

// Len reports how many sessions are held, expired or not.
func (m *MemorySessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Prune drops expired sessions and returns how many were removed.
func (m *MemorySessionStore) Prune() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sweepLocked(m.now())
}

// Run prunes expired sessions every interval until ctx is done.
func (m *MemorySessionStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Prune()
		}
	}
}

func (m *MemorySessionStore) maybeSweepLocked(now time.Time) {
	if now.Before(m.nextSweep) {
		return
	}
	m.sweepLocked(now)
}

func (m *MemorySessionStore) sweepLocked(now time.Time) int {
	removed := 0
	for id, entry := range m.sessions {
		if now.After(entry.expires) {
			delete(m.sessions, id)
			removed++
		}
	}
	m.nextSweep = now.Add(min(m.ttl, memorySweepInterval))
	return removed
}
