// Package localstate provides typed, JSON-encoded client state over a key-value backend.
package localstate

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Prefix namespaces every key written by the client.
const Prefix = "typrr:"

// Well-known keys.
const (
	KeyHistory      = Prefix + "history"
	KeyAchievements = Prefix + "achievements"
	KeyXP           = Prefix + "xp"
	KeyStreak       = Prefix + "streak"
	KeyPrefs        = Prefix + "prefs"
	KeyCredential   = Prefix + "credential"
)

// DailyKey returns the key of the per-day counter for day (YYYY-MM-DD).
func DailyKey(day string) string {
	return Prefix + "daily:" + day
}

// Backend stores opaque values by key.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Store reads and writes one value of type T.
type Store[T any] interface {
	// Load returns the stored value, or the default when missing or unreadable.
	Load(ctx context.Context) T
	Save(ctx context.Context, value T) error
}

// JSON is a Store that encodes values as JSON under a single key.
type JSON[T any] struct {
	backend Backend
	key     string
	def     func() T
}

// NewJSON returns a JSON store for key. def builds the fallback value.
func NewJSON[T any](backend Backend, key string, def func() T) *JSON[T] {
	if def == nil {
		def = func() T {
			var zero T
			return zero
		}
	}
	return &JSON[T]{backend: backend, key: key, def: def}
}

// Key returns the backend key.
func (s *JSON[T]) Key() string { return s.key }

// Load implements Store.
func (s *JSON[T]) Load(ctx context.Context) T {
	raw, ok, err := s.backend.Get(ctx, s.key)
	if err != nil {
		logErrf("failed to read %s: %v\n", s.key, err)
		return s.def()
	}
	if !ok || len(raw) == 0 {
		return s.def()
	}
	value := s.def()
	if err := json.Unmarshal(raw, &value); err != nil {
		logErrf("failed to decode %s: %v\n", s.key, err)
		return s.def()
	}
	return value
}

// Save implements Store.
func (s *JSON[T]) Save(ctx context.Context, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", s.key, err)
	}
	if err := s.backend.Put(ctx, s.key, raw); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.key, err)
	}
	return nil
}

// Clear removes the stored value.
func (s *JSON[T]) Clear(ctx context.Context) error {
	return s.backend.Delete(ctx, s.key)
}

// Memory is an in-process Backend.
type Memory struct {
	mu     sync.Mutex
	values map[string][]byte
}

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{values: map[string][]byte{}}
}

// Get implements Backend.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Put implements Backend.
func (m *Memory) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = append([]byte(nil), value...)
	return nil
}

// Delete implements Backend.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
