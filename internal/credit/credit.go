// Package credit defines the credit ledger contract used to gate paid
// generation flows, plus the non-persistent implementations. The postgres
// implementation lives in internal/platform/postgres; the backend is chosen
// by configuration so every caller exercises the same contract regardless
// of which one is wired in.
package credit

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/phrazzld/logoforge-api/internal/domain"
)

// Common errors returned by ledger implementations.
var (
	// ErrInsufficientCredits is returned by callers that require a
	// successful reservation when Reserve reports the balance is too low.
	ErrInsufficientCredits = errors.New("insufficient credits")

	// ErrLedgerUnavailable is returned when the ledger backend cannot be
	// reached or the operation cannot be completed atomically.
	ErrLedgerUnavailable = errors.New("credit ledger unavailable")
)

// Ledger provides atomic credit operations against a per-user balance.
//
// Reserve and Refund are idempotent per the reservation's
// (UserID, Reason, LinkedUnitID) key: applying the same reservation twice
// mutates the balance once. A reservation is closed exactly once, either
// consumed (generation started) or refunded (setup failed first).
// Version: 1.0
type Ledger interface {
	// Reserve atomically checks that the user's balance covers the
	// reservation amount and deducts it. Returns false with no mutation if
	// the balance is insufficient. Returns true without a second deduction
	// if the same reservation was already applied.
	Reserve(ctx context.Context, reservation *domain.CreditReservation) (bool, error)

	// Refund atomically credits the reservation amount back. Returns true
	// only the first time a given reservation is refunded; later calls
	// return false with no mutation, so a double refund is impossible.
	Refund(ctx context.Context, reservation *domain.CreditReservation) (bool, error)

	// Balance returns the user's current credit balance.
	Balance(ctx context.Context, userID uuid.UUID) (int, error)
}
