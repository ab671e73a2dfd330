package weathercache

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/trailfinder/internal/domain/weather"
)

type entry struct {
	report    weather.Report
	expiresAt time.Time
}

// MemoryStore is an in-process weather.Cache for tests/dev.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]entry), now: time.Now}
}

// Get implements weather.Cache.
func (s *MemoryStore) Get(_ context.Context, key string) (weather.Report, bool, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return weather.Report{}, false, nil
	}
	if !e.expiresAt.IsZero() && e.expiresAt.Before(s.now()) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return weather.Report{}, false, nil
	}
	return e.report, true, nil
}

// Set implements weather.Cache.
func (s *MemoryStore) Set(_ context.Context, key string, report weather.Report, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp := time.Time{}
	if ttl > 0 {
		exp = s.now().Add(ttl)
	}
	s.entries[key] = entry{report: report, expiresAt: exp}
	return nil
}

var _ weather.Cache = (*MemoryStore)(nil)
