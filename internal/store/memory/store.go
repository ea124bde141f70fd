package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"enterprise-portal/internal/store"
)

type entry struct {
	value   []byte
	written time.Time
}

type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(opts ...Option) *Store {
	s := &Store{entries: make(map[string]entry), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return append([]byte(nil), e.value...), nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{value: append([]byte(nil), value...), written: s.now()}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *Store) Prune(ctx context.Context, prefix string, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key, e := range s.entries {
		if strings.HasPrefix(key, prefix) && e.written.Before(before) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed, nil
}
