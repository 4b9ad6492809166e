package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/logoforge-api/internal/credit"
	"github.com/phrazzld/logoforge-api/internal/domain"
	"github.com/phrazzld/logoforge-api/internal/platform/logger"
	"github.com/phrazzld/logoforge-api/internal/store"
)

// Ledger transaction directions recorded in the audit table.
const (
	directionReserve = "reserve"
	directionRefund  = "refund"
)

// PostgresLedger implements the credit.Ledger interface on PostgreSQL.
//
// Idempotency comes from a unique index on (user_id, reason,
// linked_unit_id, direction) in credit_transactions: a repeated reserve or
// refund inserts nothing and so moves no balance. The balance check and
// deduction happen in one conditional UPDATE, so there is no window where
// two reservations both pass the check.
type PostgresLedger struct {
	conn   *sql.DB
	logger *slog.Logger
}

// NewPostgresLedger creates a new PostgreSQL credit ledger.
func NewPostgresLedger(conn *sql.DB, logger *slog.Logger) *PostgresLedger {
	if conn == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresLedger{
		conn:   conn,
		logger: logger.With(slog.String("component", "credit_ledger")),
	}
}

// Ensure PostgresLedger implements credit.Ledger interface
var _ credit.Ledger = (*PostgresLedger)(nil)

// Reserve implements credit.Ledger.Reserve.
func (l *PostgresLedger) Reserve(ctx context.Context, reservation *domain.CreditReservation) (bool, error) {
	if err := reservation.Validate(); err != nil {
		return false, err
	}

	log := logger.FromContextOrDefault(ctx, l.logger)
	approved := false

	err := store.RunInTransaction(ctx, l.conn, func(ctx context.Context, tx *sql.Tx) error {
		inserted, err := l.insertTransaction(ctx, tx, reservation, directionReserve)
		if err != nil {
			return err
		}
		if !inserted {
			// Same reservation already applied; approve without moving
			// balance again.
			log.Debug("duplicate reservation ignored",
				slog.String("user_id", reservation.UserID.String()),
				slog.String("reason", reservation.Reason))
			approved = true
			return nil
		}

		// Check and deduct in one statement.
		result, err := tx.ExecContext(ctx, `
			UPDATE user_credits
			SET balance = balance - $2, updated_at = $3
			WHERE user_id = $1 AND balance >= $2
		`, reservation.UserID, reservation.Amount, time.Now().UTC())
		if err != nil {
			return err
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			// Insufficient balance: abort so the audit row is rolled back
			// with the reservation.
			return errInsufficientBalance
		}

		approved = true
		return nil
	})
	if err != nil {
		if err == errInsufficientBalance {
			return false, nil
		}
		log.Error("credit reservation failed",
			slog.String("error", err.Error()),
			slog.String("user_id", reservation.UserID.String()))
		return false, mapLedgerError(err)
	}

	return approved, nil
}

// Refund implements credit.Ledger.Refund. Refunding a key that was already
// refunded inserts nothing and returns false.
func (l *PostgresLedger) Refund(ctx context.Context, reservation *domain.CreditReservation) (bool, error) {
	if err := reservation.Validate(); err != nil {
		return false, err
	}

	log := logger.FromContextOrDefault(ctx, l.logger)
	refunded := false

	err := store.RunInTransaction(ctx, l.conn, func(ctx context.Context, tx *sql.Tx) error {
		inserted, err := l.insertTransaction(ctx, tx, reservation, directionRefund)
		if err != nil {
			return err
		}
		if !inserted {
			return nil
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE user_credits
			SET balance = balance + $2, updated_at = $3
			WHERE user_id = $1
		`, reservation.UserID, reservation.Amount, time.Now().UTC())
		if err != nil {
			return err
		}

		refunded = true
		return nil
	})
	if err != nil {
		log.Error("credit refund failed",
			slog.String("error", err.Error()),
			slog.String("user_id", reservation.UserID.String()))
		return false, mapLedgerError(err)
	}

	if refunded {
		log.Info("reservation refunded",
			slog.String("user_id", reservation.UserID.String()),
			slog.Int("amount", reservation.Amount))
	}
	return refunded, nil
}

// Balance implements credit.Ledger.Balance.
func (l *PostgresLedger) Balance(ctx context.Context, userID uuid.UUID) (int, error) {
	var balance int
	err := l.conn.QueryRowContext(ctx, `
		SELECT COALESCE(
			(SELECT balance FROM user_credits WHERE user_id = $1), 0)
	`, userID).Scan(&balance)
	if err != nil {
		return 0, mapLedgerError(err)
	}
	return balance, nil
}

// insertTransaction writes the audit row for one ledger operation. Returns
// false when the idempotency key already exists.
func (l *PostgresLedger) insertTransaction(
	ctx context.Context,
	tx *sql.Tx,
	reservation *domain.CreditReservation,
	direction string,
) (bool, error) {
	// The linked unit column is NOT NULL so the unique index dedups
	// reliably; reservations with no linked unit use the zero UUID.
	linkedUnitID := uuid.Nil
	if reservation.LinkedUnitID != nil {
		linkedUnitID = *reservation.LinkedUnitID
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO credit_transactions
			(id, user_id, amount, direction, reason, linked_unit_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, reason, linked_unit_id, direction) DO NOTHING
	`,
		uuid.New(),
		reservation.UserID,
		reservation.Amount,
		direction,
		reservation.Reason,
		linkedUnitID,
		time.Now().UTC(),
	)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// errInsufficientBalance aborts a reserve transaction when the conditional
// deduct matches no row. Internal control flow only.
var errInsufficientBalance = sentinelError("insufficient balance")

type sentinelError string

func (e sentinelError) Error() string { return string(e) }

// mapLedgerError folds database failures into the ledger's unavailable
// sentinel so callers treat them as retryable infrastructure problems.
func mapLedgerError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", credit.ErrLedgerUnavailable, err)
}
