package service

import (
	"database/sql"

	"github.com/phrazzld/logoforge-api/internal/store"
)

// UnitRepository defines the repository interface for the service layer.
// It is aligned with store.UnitStore and adds access to the underlying
// database handle for transactional operations.
type UnitRepository interface {
	store.UnitStore

	// DB returns the underlying database connection
	DB() *sql.DB
}

// ProjectRepository defines the repository interface for the service layer.
// It is aligned with store.ProjectStore.
type ProjectRepository interface {
	store.ProjectStore

	// DB returns the underlying database connection
	DB() *sql.DB
}
