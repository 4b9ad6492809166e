package service_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/logoforge-api/internal/domain"
	"github.com/phrazzld/logoforge-api/internal/events"
	"github.com/phrazzld/logoforge-api/internal/promptgen"
	"github.com/phrazzld/logoforge-api/internal/service"
	"github.com/phrazzld/logoforge-api/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubDriver backs a *sql.DB whose transactions begin, commit, and roll
// back without a real database, so transactional service paths run in
// unit tests.
type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) { return stubConn{}, nil }

type stubConn struct{}

func (stubConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not implemented") }
func (stubConn) Close() error                        { return nil }
func (stubConn) Begin() (driver.Tx, error)           { return stubTx{}, nil }

type stubTx struct{}

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

var stubDBOnce sync.Once

func stubDB(t *testing.T) *sql.DB {
	t.Helper()
	stubDBOnce.Do(func() { sql.Register("stubtx", stubDriver{}) })
	db, err := sql.Open("stubtx", "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// fakeUnitRepo is an in-memory UnitRepository.
type fakeUnitRepo struct {
	mu          sync.Mutex
	units       map[uuid.UUID]domain.GenerationUnit
	db          *sql.DB
	failCreates bool
}

var _ service.UnitRepository = (*fakeUnitRepo)(nil)

func newFakeUnitRepo(t *testing.T) *fakeUnitRepo {
	return &fakeUnitRepo{
		units: make(map[uuid.UUID]domain.GenerationUnit),
		db:    stubDB(t),
	}
}

func (r *fakeUnitRepo) Create(_ context.Context, unit *domain.GenerationUnit) error {
	if r.failCreates {
		return errors.New("simulated create failure")
	}
	if err := unit.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.units[unit.ID] = *unit
	return nil
}

func (r *fakeUnitRepo) CreateBatch(ctx context.Context, units []*domain.GenerationUnit) error {
	for _, unit := range units {
		if err := r.Create(ctx, unit); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeUnitRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.GenerationUnit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	unit, ok := r.units[id]
	if !ok {
		return nil, store.ErrUnitNotFound
	}
	copied := unit
	return &copied, nil
}

func (r *fakeUnitRepo) FindByBatch(_ context.Context, batchID uuid.UUID) ([]*domain.GenerationUnit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.GenerationUnit
	for _, unit := range r.units {
		if unit.BatchID == batchID {
			copied := unit
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeUnitRepo) FindByParent(_ context.Context, parentID uuid.UUID) ([]*domain.GenerationUnit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.GenerationUnit
	for _, unit := range r.units {
		if unit.ParentUnitID != nil && *unit.ParentUnitID == parentID {
			copied := unit
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeUnitRepo) Update(_ context.Context, unit *domain.GenerationUnit) error {
	if err := unit.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.units[unit.ID]; !ok {
		return store.ErrUnitNotFound
	}
	r.units[unit.ID] = *unit
	return nil
}

func (r *fakeUnitRepo) WithTx(_ *sql.Tx) store.UnitStore { return r }
func (r *fakeUnitRepo) DB() *sql.DB                      { return r.db }

// fakeProjectRepo is an in-memory ProjectRepository.
type fakeProjectRepo struct {
	mu       sync.Mutex
	projects map[uuid.UUID]domain.Project
	db       *sql.DB
}

var _ service.ProjectRepository = (*fakeProjectRepo)(nil)

func newFakeProjectRepo(t *testing.T) *fakeProjectRepo {
	return &fakeProjectRepo{
		projects: make(map[uuid.UUID]domain.Project),
		db:       stubDB(t),
	}
}

func (r *fakeProjectRepo) Create(_ context.Context, project *domain.Project) error {
	if err := project.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.projects[project.ID] = *project
	return nil
}

func (r *fakeProjectRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	project, ok := r.projects[id]
	if !ok {
		return nil, store.ErrProjectNotFound
	}
	copied := project
	return &copied, nil
}

func (r *fakeProjectRepo) WithTx(_ *sql.Tx) store.ProjectStore { return r }
func (r *fakeProjectRepo) DB() *sql.DB                         { return r.db }

// fakeEmitter records emitted events and can be scripted to fail.
type fakeEmitter struct {
	mu     sync.Mutex
	events []*events.BatchRequestEvent
	err    error
}

func (e *fakeEmitter) EmitEvent(_ context.Context, event *events.BatchRequestEvent) error {
	if e.err != nil {
		return e.err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
	return nil
}

func (e *fakeEmitter) emitted() []*events.BatchRequestEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*events.BatchRequestEvent(nil), e.events...)
}

// failingProducer always errors, forcing the deterministic fallback.
type failingProducer struct{}

var _ promptgen.Producer = (*failingProducer)(nil)

func (failingProducer) PortfolioPrompts(context.Context, domain.Brief) ([]string, error) {
	return nil, errors.New("llm unavailable")
}

func (failingProducer) VariationPrompts(context.Context, string, string) ([]string, error) {
	return nil, errors.New("llm unavailable")
}

// testBrief returns a valid brief.
func testBrief() domain.Brief {
	return domain.Brief{
		CompanyName: "Nimbus Labs",
		Industry:    "weather analytics",
		Description: "forecasting for agriculture",
	}
}

// seedCompletedUnit stores a completed concept unit and returns it.
func seedCompletedUnit(t *testing.T, repo *fakeUnitRepo, projectID uuid.UUID) *domain.GenerationUnit {
	t.Helper()
	unit, err := domain.NewGenerationUnit(uuid.New(), projectID, domain.UnitKindConcept, "minimalist cloud mark")
	require.NoError(t, err)
	require.NoError(t, unit.MarkGenerating())
	require.NoError(t, unit.MarkCompleted("https://cdn.example.com/source.png"))
	require.NoError(t, repo.Create(context.Background(), unit))
	return unit
}
