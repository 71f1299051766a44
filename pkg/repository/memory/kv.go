package memory

import (
	"context"
	"sync"
	"time"

	"github.com/secmon-lab/leetwatch/pkg/domain/interfaces"
)

type kvEntry struct {
	value     string
	expiresAt time.Time
}

// KeyValueStore is a process-local KeyValueStore
type KeyValueStore struct {
	mu      sync.RWMutex
	entries map[string]kvEntry
}

var _ interfaces.KeyValueStore = &KeyValueStore{}

func NewKeyValueStore() *KeyValueStore {
	return &KeyValueStore{
		entries: make(map[string]kvEntry),
	}
}

func (s *KeyValueStore) Get(ctx context.Context, key string, now time.Time) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok {
		return "", false, nil
	}
	if !e.expiresAt.IsZero() && !e.expiresAt.After(now) {
		return "", false, nil
	}
	return e.value, true, nil
}

func (s *KeyValueStore) Put(ctx context.Context, key, value string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = kvEntry{value: value, expiresAt: expiresAt}
	return nil
}

func (s *KeyValueStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

func (s *KeyValueStore) Close() error {
	return nil
}
