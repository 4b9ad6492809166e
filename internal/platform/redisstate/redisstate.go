// Package redisstate provides the TTL-backed session store for in-flight
// generation batches. Session entries are ephemeral: the progress path reads
// them to resolve batch metadata while a batch is live, deletes them once
// the verdict settles, and lets the TTL reclaim whatever a crashed server
// left behind.
package redisstate

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound indicates no session exists for the key, either because
// it was never written or because its TTL elapsed.
var ErrSessionNotFound = errors.New("session not found")

// Session is the ephemeral record written when a batch starts.
type Session struct {
	BatchID   uuid.UUID `json:"batch_id"`
	ProjectID uuid.UUID `json:"project_id"`
	UserID    uuid.UUID `json:"user_id"`
	Kind      string    `json:"kind"`
	UnitCount int       `json:"unit_count"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionStore persists batch sessions with a bounded lifetime.
//
// Version: 1.0
type SessionStore interface {
	// Put writes the session under its batch ID with the given TTL,
	// replacing any existing entry.
	Put(ctx context.Context, session Session, ttl time.Duration) error

	// Get retrieves the session for a batch. Returns ErrSessionNotFound if
	// the entry is absent or expired.
	Get(ctx context.Context, batchID uuid.UUID) (Session, error)

	// Delete removes the session. Deleting an absent session is not an
	// error.
	Delete(ctx context.Context, batchID uuid.UUID) error
}
