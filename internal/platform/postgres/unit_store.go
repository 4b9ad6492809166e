package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phrazzld/logoforge-api/internal/domain"
	"github.com/phrazzld/logoforge-api/internal/platform/logger"
	"github.com/phrazzld/logoforge-api/internal/store"
)

// PostgresUnitStore implements the store.UnitStore interface using a
// PostgreSQL database as the storage backend.
type PostgresUnitStore struct {
	db     store.DBTX
	conn   *sql.DB
	logger *slog.Logger
}

// NewPostgresUnitStore creates a new PostgreSQL implementation of the
// UnitStore interface. The connection pool is initialized and managed by
// the caller. If logger is nil, a default logger is used.
func NewPostgresUnitStore(conn *sql.DB, logger *slog.Logger) *PostgresUnitStore {
	if conn == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUnitStore{
		db:     conn,
		conn:   conn,
		logger: logger.With(slog.String("component", "unit_store")),
	}
}

// Ensure PostgresUnitStore implements store.UnitStore interface
var _ store.UnitStore = (*PostgresUnitStore)(nil)

// DB returns the underlying connection pool, so callers can open
// transactions spanning several stores.
func (s *PostgresUnitStore) DB() *sql.DB {
	return s.conn
}

// WithTx implements store.UnitStore.WithTx
func (s *PostgresUnitStore) WithTx(tx *sql.Tx) store.UnitStore {
	return &PostgresUnitStore{
		db:     tx,
		conn:   s.conn,
		logger: s.logger,
	}
}

// Create implements store.UnitStore.Create
func (s *PostgresUnitStore) Create(ctx context.Context, unit *domain.GenerationUnit) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := unit.Validate(); err != nil {
		log.Warn("unit validation failed during create",
			slog.String("error", err.Error()),
			slog.String("unit_id", unit.ID.String()))
		return err
	}

	query := `
		INSERT INTO generation_units
			(id, batch_id, project_id, parent_unit_id, kind, status, prompt,
			 result_url, error_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		unit.ID,
		unit.BatchID,
		unit.ProjectID,
		unit.ParentUnitID,
		unit.Kind,
		unit.Status,
		unit.Prompt,
		unit.ResultURL,
		unit.ErrorReason,
		unit.CreatedAt,
		unit.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create generation unit",
			slog.String("error", err.Error()),
			slog.String("unit_id", unit.ID.String()),
			slog.String("batch_id", unit.BatchID.String()))
		return MapError(err)
	}

	log.Debug("generation unit created",
		slog.String("unit_id", unit.ID.String()),
		slog.String("batch_id", unit.BatchID.String()),
		slog.String("kind", string(unit.Kind)))
	return nil
}

// CreateBatch implements store.UnitStore.CreateBatch. Run it through
// WithTx so the batch is created whole or not at all.
func (s *PostgresUnitStore) CreateBatch(ctx context.Context, units []*domain.GenerationUnit) error {
	for _, unit := range units {
		if err := s.Create(ctx, unit); err != nil {
			return err
		}
	}
	return nil
}

// GetByID implements store.UnitStore.GetByID
func (s *PostgresUnitStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.GenerationUnit, error) {
	query := `
		SELECT id, batch_id, project_id, parent_unit_id, kind, status, prompt,
		       result_url, error_reason, created_at, updated_at
		FROM generation_units
		WHERE id = $1
	`
	unit, err := scanUnit(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUnitNotFound
		}
		return nil, MapError(err)
	}
	return unit, nil
}

// FindByBatch implements store.UnitStore.FindByBatch
func (s *PostgresUnitStore) FindByBatch(ctx context.Context, batchID uuid.UUID) ([]*domain.GenerationUnit, error) {
	query := `
		SELECT id, batch_id, project_id, parent_unit_id, kind, status, prompt,
		       result_url, error_reason, created_at, updated_at
		FROM generation_units
		WHERE batch_id = $1
		ORDER BY created_at, id
	`
	return s.queryUnits(ctx, query, batchID)
}

// FindByParent implements store.UnitStore.FindByParent
func (s *PostgresUnitStore) FindByParent(ctx context.Context, parentID uuid.UUID) ([]*domain.GenerationUnit, error) {
	query := `
		SELECT id, batch_id, project_id, parent_unit_id, kind, status, prompt,
		       result_url, error_reason, created_at, updated_at
		FROM generation_units
		WHERE parent_unit_id = $1
		ORDER BY created_at, id
	`
	return s.queryUnits(ctx, query, parentID)
}

// Update implements store.UnitStore.Update
func (s *PostgresUnitStore) Update(ctx context.Context, unit *domain.GenerationUnit) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := unit.Validate(); err != nil {
		log.Warn("unit validation failed during update",
			slog.String("error", err.Error()),
			slog.String("unit_id", unit.ID.String()))
		return err
	}

	query := `
		UPDATE generation_units
		SET status = $2, prompt = $3, result_url = $4, error_reason = $5,
		    updated_at = $6
		WHERE id = $1
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		unit.ID,
		unit.Status,
		unit.Prompt,
		unit.ResultURL,
		unit.ErrorReason,
		unit.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to update generation unit",
			slog.String("error", err.Error()),
			slog.String("unit_id", unit.ID.String()))
		return MapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if rows == 0 {
		return store.ErrUnitNotFound
	}
	return nil
}

// queryUnits runs a multi-row unit query and scans the results.
func (s *PostgresUnitStore) queryUnits(ctx context.Context, query string, arg any) ([]*domain.GenerationUnit, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	units := make([]*domain.GenerationUnit, 0)
	for rows.Next() {
		unit, err := scanUnit(rows)
		if err != nil {
			return nil, MapError(err)
		}
		units = append(units, unit)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return units, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanUnit scans one generation unit row.
func scanUnit(row rowScanner) (*domain.GenerationUnit, error) {
	var unit domain.GenerationUnit
	var parentID uuid.NullUUID
	err := row.Scan(
		&unit.ID,
		&unit.BatchID,
		&unit.ProjectID,
		&parentID,
		&unit.Kind,
		&unit.Status,
		&unit.Prompt,
		&unit.ResultURL,
		&unit.ErrorReason,
		&unit.CreatedAt,
		&unit.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if parentID.Valid {
		id := parentID.UUID
		unit.ParentUnitID = &id
	}
	return &unit, nil
}
