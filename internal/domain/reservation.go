package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for CreditReservation
var (
	ErrEmptyReservationUser   = errors.New("reservation user ID cannot be empty")
	ErrEmptyReservationReason = errors.New("reservation reason cannot be empty")
	ErrInvalidReservationAmt  = errors.New("reservation amount must be positive")
)

// CreditReservation is a credit hold taken before generation work begins.
// A reservation is closed exactly once: either consumed (work started) or
// refunded (setup failed before any unit reached generating).
//
// The triple (UserID, Reason, LinkedUnitID) is the idempotency key for both
// the reserve and the refund, so retrying a refund can never credit the
// user twice.
type CreditReservation struct {
	UserID       uuid.UUID  `json:"user_id"`
	Amount       int        `json:"amount"`
	Reason       string     `json:"reason"`
	LinkedUnitID *uuid.UUID `json:"linked_unit_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// NewCreditReservation creates a reservation for the given user and amount.
// Returns an error if validation fails.
func NewCreditReservation(
	userID uuid.UUID,
	amount int,
	reason string,
	linkedUnitID *uuid.UUID,
) (*CreditReservation, error) {
	reservation := &CreditReservation{
		UserID:       userID,
		Amount:       amount,
		Reason:       reason,
		LinkedUnitID: linkedUnitID,
		CreatedAt:    time.Now().UTC(),
	}

	if err := reservation.Validate(); err != nil {
		return nil, err
	}

	return reservation, nil
}

// Validate checks if the CreditReservation has valid data.
func (r *CreditReservation) Validate() error {
	if r.UserID == uuid.Nil {
		return ErrEmptyReservationUser
	}

	if r.Amount <= 0 {
		return ErrInvalidReservationAmt
	}

	if r.Reason == "" {
		return ErrEmptyReservationReason
	}

	return nil
}
