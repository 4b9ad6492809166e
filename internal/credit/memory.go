package credit

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/logoforge-api/internal/domain"
)

// MemoryLedger is an in-memory Ledger used by tests. It applies the same
// idempotency semantics as the postgres backend so tests exercise the real
// contract.
type MemoryLedger struct {
	mu       sync.Mutex
	balances map[uuid.UUID]int
	applied  map[string]struct{}
}

// NewMemoryLedger creates an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		balances: make(map[uuid.UUID]int),
		applied:  make(map[string]struct{}),
	}
}

var _ Ledger = (*MemoryLedger)(nil)

// Credit seeds a user's balance. Test setup only.
func (l *MemoryLedger) Credit(userID uuid.UUID, amount int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[userID] += amount
}

// Reserve implements Ledger.Reserve.
func (l *MemoryLedger) Reserve(
	ctx context.Context,
	reservation *domain.CreditReservation,
) (bool, error) {
	if err := reservation.Validate(); err != nil {
		return false, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key := idempotencyKey(reservation, "reserve")
	if _, ok := l.applied[key]; ok {
		return true, nil
	}

	if l.balances[reservation.UserID] < reservation.Amount {
		return false, nil
	}

	l.balances[reservation.UserID] -= reservation.Amount
	l.applied[key] = struct{}{}
	return true, nil
}

// Refund implements Ledger.Refund.
func (l *MemoryLedger) Refund(
	ctx context.Context,
	reservation *domain.CreditReservation,
) (bool, error) {
	if err := reservation.Validate(); err != nil {
		return false, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key := idempotencyKey(reservation, "refund")
	if _, ok := l.applied[key]; ok {
		return false, nil
	}

	l.balances[reservation.UserID] += reservation.Amount
	l.applied[key] = struct{}{}
	return true, nil
}

// Balance implements Ledger.Balance.
func (l *MemoryLedger) Balance(ctx context.Context, userID uuid.UUID) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[userID], nil
}

// idempotencyKey derives the dedup key for a reservation operation.
func idempotencyKey(r *domain.CreditReservation, direction string) string {
	linked := uuid.Nil
	if r.LinkedUnitID != nil {
		linked = *r.LinkedUnitID
	}
	return fmt.Sprintf("%s|%s|%s|%s", r.UserID, r.Reason, linked, direction)
}
