// Package session keeps the live booking flows in memory, keyed by session id.
package session

import (
	"context"
	"sync"
	"time"

	models "github.com/chrisdamba/skybooker/internal"
	"github.com/chrisdamba/skybooker/internal/flow"
	"github.com/chrisdamba/skybooker/pkg/logger"
	"github.com/google/uuid"
)

type entry struct {
	machine  *flow.Machine
	lastSeen time.Time
}

type Store struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*entry
	now     func() time.Time
	log     logger.Logger
	onSweep func(evicted, remaining int)
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		s.log = l
	}
}

// WithSweepHook is called after every janitor sweep.
func WithSweepHook(hook func(evicted, remaining int)) Option {
	return func(s *Store) {
		s.onSweep = hook
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		entries: make(map[uuid.UUID]*entry),
		now:     time.Now,
		log:     logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Create(m *flow.Machine) uuid.UUID {
	id := uuid.New()
	s.mu.Lock()
	s.entries[id] = &entry{machine: m, lastSeen: s.now()}
	s.mu.Unlock()
	return id
}

// Get returns the session's machine and marks it as recently used.
func (s *Store) Get(id uuid.UUID) (*flow.Machine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, models.ErrSessionNotFound
	}
	e.lastSeen = s.now()
	return e.machine, nil
}

func (s *Store) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return models.ErrSessionNotFound
	}
	delete(s.entries, id)
	return nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Sweep evicts sessions idle for longer than ttl and returns how many went.
// Sessions with a search or payment in flight are kept.
func (s *Store) Sweep(ttl time.Duration) int {
	cutoff := s.now().Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for id, e := range s.entries {
		if e.lastSeen.Before(cutoff) && !e.machine.Loading() {
			delete(s.entries, id)
			evicted++
		}
	}
	return evicted
}

// Run sweeps every interval until ctx is done.
func (s *Store) Run(ctx context.Context, ttl, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n := s.Sweep(ttl)
			remaining := s.Len()
			if n > 0 {
				s.log.Info("evicted idle sessions", "count", n, "remaining", remaining)
			}
			if s.onSweep != nil {
				s.onSweep(n, remaining)
			}
		}
	}
}
