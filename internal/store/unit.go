package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/logoforge-api/internal/domain"
)

// UnitStore defines the interface for generation unit persistence.
// Version: 1.0
type UnitStore interface {
	// Create saves a new generation unit to the store.
	// It handles domain validation internally.
	// Returns validation errors from the domain GenerationUnit if data is
	// invalid.
	Create(ctx context.Context, unit *domain.GenerationUnit) error

	// CreateBatch saves a set of units in one operation. Callers run it
	// inside a transaction (via WithTx) so a batch is created whole or not
	// at all.
	CreateBatch(ctx context.Context, units []*domain.GenerationUnit) error

	// GetByID retrieves a unit by its unique ID.
	// Returns ErrUnitNotFound if the unit does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.GenerationUnit, error)

	// FindByBatch retrieves all units sharing the given batch ID, in
	// creation order. Returns an empty slice if none match.
	FindByBatch(ctx context.Context, batchID uuid.UUID) ([]*domain.GenerationUnit, error)

	// FindByParent retrieves all units derived from the given parent unit.
	FindByParent(ctx context.Context, parentID uuid.UUID) ([]*domain.GenerationUnit, error)

	// Update saves changes to an existing unit.
	// Returns ErrUnitNotFound if the unit does not exist.
	// Returns validation errors if the unit data is invalid.
	Update(ctx context.Context, unit *domain.GenerationUnit) error

	// WithTx returns a new UnitStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) UnitStore
}

// ProjectStore defines the interface for project persistence.
// Version: 1.0
type ProjectStore interface {
	// Create saves a new project to the store.
	Create(ctx context.Context, project *domain.Project) error

	// GetByID retrieves a project by its unique ID.
	// Returns ErrProjectNotFound if the project does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error)

	// WithTx returns a new ProjectStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) ProjectStore
}
