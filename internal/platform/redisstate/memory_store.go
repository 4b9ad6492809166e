package redisstate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memoryEntry pairs a session with its absolute expiry instant.
type memoryEntry struct {
	session   Session
	expiresAt time.Time
}

// MemoryStore is an in-process SessionStore used when no Redis is
// configured, and in tests. Expiry is evaluated lazily on read against an
// injectable clock so tests can advance time deterministically.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[uuid.UUID]memoryEntry
	now     func() time.Time
}

var _ SessionStore = (*MemoryStore)(nil)

// NewMemoryStore creates a MemoryStore using the wall clock.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(time.Now)
}

// NewMemoryStoreWithClock creates a MemoryStore with a caller-supplied
// clock.
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	return &MemoryStore{
		entries: make(map[uuid.UUID]memoryEntry),
		now:     now,
	}
}

// Put implements SessionStore.Put.
func (s *MemoryStore) Put(_ context.Context, session Session, ttl time.Duration) error {
	if session.BatchID == uuid.Nil {
		return fmt.Errorf("session batch ID cannot be nil")
	}
	if ttl <= 0 {
		return fmt.Errorf("session TTL must be positive, got %s", ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[session.BatchID] = memoryEntry{
		session:   session,
		expiresAt: s.now().Add(ttl),
	}
	return nil
}

// Get implements SessionStore.Get.
func (s *MemoryStore) Get(_ context.Context, batchID uuid.UUID) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[batchID]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.entries, batchID)
		return Session{}, ErrSessionNotFound
	}
	return entry.session, nil
}

// Delete implements SessionStore.Delete.
func (s *MemoryStore) Delete(_ context.Context, batchID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, batchID)
	return nil
}
