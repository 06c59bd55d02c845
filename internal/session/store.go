// Package session keeps per-caller values keyed by the caller's session id.
package session

import (
	"sync"
	"time"

	"cfuaa/pkg/logging"
)

// DefaultCleanupInterval is how often expired entries are swept.
const DefaultCleanupInterval = time.Minute

type entry[T any] struct {
	value     T
	createdAt time.Time
}

// Store is a concurrency-safe map from session id to value. Entries older
// than the TTL are treated as absent and swept by a background goroutine
// until Stop is called.
type Store[T any] struct {
	name string
	ttl  time.Duration
	now  func() time.Time

	mu      sync.RWMutex
	entries map[string]entry[T]

	stopOnce    sync.Once
	stopCleanup chan struct{}
}

// Option configures a Store.
type Option func(*options)

type options struct {
	cleanupInterval time.Duration
	now             func() time.Time
}

// WithCleanupInterval overrides DefaultCleanupInterval.
func WithCleanupInterval(d time.Duration) Option {
	return func(o *options) { o.cleanupInterval = d }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New creates a Store and starts its cleanup loop. name only appears in logs.
func New[T any](name string, ttl time.Duration, opts ...Option) *Store[T] {
	o := options{cleanupInterval: DefaultCleanupInterval, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Store[T]{
		name:        name,
		ttl:         ttl,
		now:         o.now,
		entries:     make(map[string]entry[T]),
		stopCleanup: make(chan struct{}),
	}
	if o.cleanupInterval > 0 {
		go s.cleanupLoop(o.cleanupInterval)
	}
	return s
}

// Put stores value under id, replacing any previous value.
func (s *Store[T]) Put(id string, value T) {
	s.mu.Lock()
	s.entries[id] = entry[T]{value: value, createdAt: s.now()}
	s.mu.Unlock()
}

// Get returns the live value for id.
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()

	if !ok || s.expired(e) {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Take removes the value for id and returns it if it was still live.
// At most one caller can take a given value.
func (s *Store[T]) Take(id string) (T, bool) {
	s.mu.Lock()
	e, ok := s.entries[id]
	delete(s.entries, id)
	s.mu.Unlock()

	if !ok {
		var zero T
		return zero, false
	}
	if s.expired(e) {
		logging.Debug("Session", "%s entry for session %s expired after %v",
			s.name, logging.TruncateSessionID(id), s.now().Sub(e.createdAt))
		var zero T
		return zero, false
	}
	return e.value, true
}

// Delete removes the value for id.
func (s *Store[T]) Delete(id string) {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
}

// Len returns the number of stored entries, expired ones included.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Stop ends the cleanup loop. It is safe to call more than once.
func (s *Store[T]) Stop() {
	s.stopOnce.Do(func() { close(s.stopCleanup) })
}

func (s *Store[T]) expired(e entry[T]) bool {
	return s.ttl > 0 && s.now().Sub(e.createdAt) > s.ttl
}

func (s *Store[T]) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCleanup:
			return
		}
	}
}

func (s *Store[T]) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for id, e := range s.entries {
		if s.expired(e) {
			delete(s.entries, id)
			count++
		}
	}
	if count > 0 {
		logging.Debug("Session", "Cleaned up %d expired %s entries", count, s.name)
	}
}
