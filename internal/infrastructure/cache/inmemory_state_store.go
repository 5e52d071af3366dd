package cache

import (
	"context"
	"sync"
	"time"

	appentitlement "github.com/friendaudit/backend/internal/application/entitlement"
)

type stateEntry struct {
	state     appentitlement.State
	expiresAt time.Time
}

// InMemoryStateStore implements appentitlement.StateStore in process memory.
// State is not shared across instances.
type InMemoryStateStore struct {
	mu      sync.RWMutex
	entries map[string]stateEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewInMemoryStateStore creates an in-memory store; ttl <= 0 never expires
func NewInMemoryStateStore(ttl time.Duration) *InMemoryStateStore {
	return &InMemoryStateStore{
		entries: make(map[string]stateEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the stored state of userID if it has not expired
func (s *InMemoryStateStore) Get(_ context.Context, userID string) (appentitlement.State, bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[userID]
	s.mu.RUnlock()

	if !ok {
		return appentitlement.State{}, false, nil
	}
	if s.expired(entry) {
		s.evict(userID)
		return appentitlement.State{}, false, nil
	}
	return entry.state, true, nil
}

// evict deletes userID if its entry is still expired under the write lock
func (s *InMemoryStateStore) evict(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.entries[userID]; ok && s.expired(entry) {
		delete(s.entries, userID)
	}
}

// Put stores state, replacing any previous value
func (s *InMemoryStateStore) Put(_ context.Context, state appentitlement.State) error {
	entry := stateEntry{state: state}
	if s.ttl > 0 {
		entry.expiresAt = s.now().Add(s.ttl)
	}

	s.mu.Lock()
	s.entries[state.UserID] = entry
	s.mu.Unlock()
	return nil
}

// Delete drops the stored state of userID
func (s *InMemoryStateStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	delete(s.entries, userID)
	s.mu.Unlock()
	return nil
}

// Purge removes expired entries and returns how many were dropped
func (s *InMemoryStateStore) Purge() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for userID, entry := range s.entries {
		if s.expired(entry) {
			delete(s.entries, userID)
			removed++
		}
	}
	return removed
}

// StartJanitor purges expired entries every interval until the returned
// stop func is called. A non-positive interval starts nothing.
func (s *InMemoryStateStore) StartJanitor(interval time.Duration) (stop func()) {
	if interval <= 0 {
		return func() {}
	}
	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Purge()
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			<-finished
		})
	}
}

// Len returns the number of stored entries, expired ones included
func (s *InMemoryStateStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *InMemoryStateStore) expired(e stateEntry) bool {
	return !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt)
}

var _ appentitlement.StateStore = (*InMemoryStateStore)(nil)
