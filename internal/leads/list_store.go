package leads

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// ListStore is a string key-value store holding the local lead list.
type ListStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// MemoryListStore keeps values in process memory.
type MemoryListStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryListStore creates an empty in-memory store.
func NewMemoryListStore() *MemoryListStore {
	return &MemoryListStore{data: make(map[string]string)}
}

func (m *MemoryListStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryListStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	m.data[key] = value
	m.mu.Unlock()
	return nil
}

// RedisListStore keeps values as plain Redis strings without expiry.
type RedisListStore struct {
	client *redis.Client
}

// NewRedisListStore wraps a Redis client.
func NewRedisListStore(client *redis.Client) *RedisListStore {
	if client == nil {
		panic("leads: redis client required")
	}
	return &RedisListStore{client: client}
}

func (r *RedisListStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("leads: redis get: %w", err)
	}
	return v, true, nil
}

func (r *RedisListStore) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("leads: redis set: %w", err)
	}
	return nil
}
