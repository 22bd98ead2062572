package leads

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/wolfman30/hausservice-booking/pkg/logging"
)

// LocalListKey is the fixed key holding the JSON-encoded lead list.
const LocalListKey = "leads:requests"

// LocalSink appends leads to a JSON array stored under a single key. The
// read-modify-write is serialised within the process but not across
// processes; concurrent writers elsewhere may lose an entry.
type LocalSink struct {
	mu     sync.Mutex
	store  ListStore
	key    string
	logger *logging.Logger
}

// NewLocalSink creates a sink over store using LocalListKey.
func NewLocalSink(store ListStore, logger *logging.Logger) *LocalSink {
	if store == nil {
		panic("leads: list store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &LocalSink{store: store, key: LocalListKey, logger: logger}
}

// Name implements Sink.
func (s *LocalSink) Name() string { return "local" }

// Append adds lead to the end of the stored list. A malformed stored value
// is discarded and replaced.
func (s *LocalSink) Append(ctx context.Context, lead *Lead) error {
	if lead == nil {
		return ErrNilLead
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx)
	if err != nil {
		return err
	}
	list = append(list, *lead)

	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("leads: encode local list: %w", err)
	}
	if err := s.store.Set(ctx, s.key, string(data)); err != nil {
		return fmt.Errorf("leads: write local list: %w", err)
	}
	return nil
}

// List implements Lister.
func (s *LocalSink) List(ctx context.Context) ([]Lead, error) {
	return s.load(ctx)
}

func (s *LocalSink) load(ctx context.Context) ([]Lead, error) {
	raw, ok, err := s.store.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("leads: read local list: %w", err)
	}
	if !ok || raw == "" {
		return []Lead{}, nil
	}
	var list []Lead
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		s.logger.Warn("leads: discarding malformed local list", "key", s.key, "error", err)
		return []Lead{}, nil
	}
	if list == nil {
		list = []Lead{}
	}
	return list, nil
}
