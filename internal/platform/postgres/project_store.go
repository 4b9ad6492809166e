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

// PostgresProjectStore implements the store.ProjectStore interface using a
// PostgreSQL database as the storage backend.
type PostgresProjectStore struct {
	db     store.DBTX
	conn   *sql.DB
	logger *slog.Logger
}

// NewPostgresProjectStore creates a new PostgreSQL implementation of the
// ProjectStore interface.
func NewPostgresProjectStore(conn *sql.DB, logger *slog.Logger) *PostgresProjectStore {
	if conn == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresProjectStore{
		db:     conn,
		conn:   conn,
		logger: logger.With(slog.String("component", "project_store")),
	}
}

// Ensure PostgresProjectStore implements store.ProjectStore interface
var _ store.ProjectStore = (*PostgresProjectStore)(nil)

// DB returns the underlying connection pool.
func (s *PostgresProjectStore) DB() *sql.DB {
	return s.conn
}

// WithTx implements store.ProjectStore.WithTx
func (s *PostgresProjectStore) WithTx(tx *sql.Tx) store.ProjectStore {
	return &PostgresProjectStore{
		db:     tx,
		conn:   s.conn,
		logger: s.logger,
	}
}

// Create implements store.ProjectStore.Create
func (s *PostgresProjectStore) Create(ctx context.Context, project *domain.Project) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := project.Validate(); err != nil {
		log.Warn("project validation failed during create",
			slog.String("error", err.Error()),
			slog.String("project_id", project.ID.String()))
		return err
	}

	query := `
		INSERT INTO projects
			(id, user_id, name, company_name, industry, description,
			 inspiration_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		project.ID,
		project.UserID,
		project.Name,
		project.Brief.CompanyName,
		project.Brief.Industry,
		project.Brief.Description,
		project.Brief.InspirationURL,
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create project",
			slog.String("error", err.Error()),
			slog.String("project_id", project.ID.String()),
			slog.String("user_id", project.UserID.String()))
		return MapError(err)
	}

	log.Info("project created",
		slog.String("project_id", project.ID.String()),
		slog.String("user_id", project.UserID.String()))
	return nil
}

// GetByID implements store.ProjectStore.GetByID
func (s *PostgresProjectStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	query := `
		SELECT id, user_id, name, company_name, industry, description,
		       inspiration_url, created_at, updated_at
		FROM projects
		WHERE id = $1
	`
	var project domain.Project
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&project.ID,
		&project.UserID,
		&project.Name,
		&project.Brief.CompanyName,
		&project.Brief.Industry,
		&project.Brief.Description,
		&project.Brief.InspirationURL,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrProjectNotFound
		}
		return nil, MapError(err)
	}
	return &project, nil
}
