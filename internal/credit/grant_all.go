package credit

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/logoforge-api/internal/domain"
)

// GrantAllLedger is a placeholder ledger that approves every operation and
// records nothing. It exists for environments without billing (local
// development, demos) and is selected with the "grant-all" credits backend.
// It honors the Ledger contract shape but keeps no balance, so Balance
// always reports zero.
type GrantAllLedger struct {
	logger *slog.Logger
}

// NewGrantAllLedger creates a ledger that approves everything.
func NewGrantAllLedger(logger *slog.Logger) *GrantAllLedger {
	if logger == nil {
		logger = slog.Default()
	}
	return &GrantAllLedger{
		logger: logger.With(slog.String("component", "grant_all_ledger")),
	}
}

var _ Ledger = (*GrantAllLedger)(nil)

// Reserve always approves.
func (l *GrantAllLedger) Reserve(
	ctx context.Context,
	reservation *domain.CreditReservation,
) (bool, error) {
	if err := reservation.Validate(); err != nil {
		return false, err
	}

	l.logger.Debug("grant-all ledger approving reservation",
		slog.String("user_id", reservation.UserID.String()),
		slog.Int("amount", reservation.Amount),
		slog.String("reason", reservation.Reason))
	return true, nil
}

// Refund always reports success.
func (l *GrantAllLedger) Refund(
	ctx context.Context,
	reservation *domain.CreditReservation,
) (bool, error) {
	if err := reservation.Validate(); err != nil {
		return false, err
	}

	l.logger.Debug("grant-all ledger approving refund",
		slog.String("user_id", reservation.UserID.String()),
		slog.Int("amount", reservation.Amount),
		slog.String("reason", reservation.Reason))
	return true, nil
}

// Balance reports zero; the grant-all backend keeps no balances.
func (l *GrantAllLedger) Balance(ctx context.Context, userID uuid.UUID) (int, error) {
	return 0, nil
}
