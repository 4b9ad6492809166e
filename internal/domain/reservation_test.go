package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewCreditReservation(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	unitID := uuid.New()

	reservation, err := NewCreditReservation(userID, 5, "refinement", &unitID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if reservation.UserID != userID {
		t.Errorf("Expected user ID %s, got %s", userID, reservation.UserID)
	}

	if reservation.Amount != 5 {
		t.Errorf("Expected amount 5, got %d", reservation.Amount)
	}

	if reservation.LinkedUnitID == nil || *reservation.LinkedUnitID != unitID {
		t.Errorf("Expected linked unit ID %s, got %v", unitID, reservation.LinkedUnitID)
	}

	if _, err := NewCreditReservation(uuid.Nil, 5, "refinement", nil); err != ErrEmptyReservationUser {
		t.Errorf("Expected error %v, got %v", ErrEmptyReservationUser, err)
	}

	if _, err := NewCreditReservation(userID, 0, "refinement", nil); err != ErrInvalidReservationAmt {
		t.Errorf("Expected error %v, got %v", ErrInvalidReservationAmt, err)
	}

	if _, err := NewCreditReservation(userID, -3, "refinement", nil); err != ErrInvalidReservationAmt {
		t.Errorf("Expected error %v, got %v", ErrInvalidReservationAmt, err)
	}

	if _, err := NewCreditReservation(userID, 5, "", nil); err != ErrEmptyReservationReason {
		t.Errorf("Expected error %v, got %v", ErrEmptyReservationReason, err)
	}
}
