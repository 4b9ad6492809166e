package batch

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/logoforge-api/internal/domain"
	"github.com/phrazzld/logoforge-api/internal/generator"
	"github.com/phrazzld/logoforge-api/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memUnitStore is an in-memory UnitStore for pipeline tests.
type memUnitStore struct {
	mu    sync.Mutex
	units map[uuid.UUID]domain.GenerationUnit
}

var _ store.UnitStore = (*memUnitStore)(nil)

func newMemUnitStore() *memUnitStore {
	return &memUnitStore{units: make(map[uuid.UUID]domain.GenerationUnit)}
}

func (s *memUnitStore) Create(_ context.Context, unit *domain.GenerationUnit) error {
	if err := unit.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.units[unit.ID]; exists {
		return store.ErrDuplicate
	}
	s.units[unit.ID] = *unit
	return nil
}

func (s *memUnitStore) CreateBatch(ctx context.Context, units []*domain.GenerationUnit) error {
	for _, unit := range units {
		if err := s.Create(ctx, unit); err != nil {
			return err
		}
	}
	return nil
}

func (s *memUnitStore) GetByID(_ context.Context, id uuid.UUID) (*domain.GenerationUnit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	unit, ok := s.units[id]
	if !ok {
		return nil, store.ErrUnitNotFound
	}
	copied := unit
	return &copied, nil
}

func (s *memUnitStore) FindByBatch(_ context.Context, batchID uuid.UUID) ([]*domain.GenerationUnit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.GenerationUnit
	for _, unit := range s.units {
		if unit.BatchID == batchID {
			copied := unit
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *memUnitStore) FindByParent(_ context.Context, parentID uuid.UUID) ([]*domain.GenerationUnit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.GenerationUnit
	for _, unit := range s.units {
		if unit.ParentUnitID != nil && *unit.ParentUnitID == parentID {
			copied := unit
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *memUnitStore) Update(_ context.Context, unit *domain.GenerationUnit) error {
	if err := unit.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.units[unit.ID]; !ok {
		return store.ErrUnitNotFound
	}
	s.units[unit.ID] = *unit
	return nil
}

func (s *memUnitStore) WithTx(_ *sql.Tx) store.UnitStore { return s }

// fakeGenerator scripts Submit and Await behavior per test.
type fakeGenerator struct {
	mu         sync.Mutex
	submitFn   func(req generator.Request) (generator.JobHandle, error)
	awaitFn    func(ctx context.Context, handle generator.JobHandle) (generator.Result, error)
	inFlight   int
	maxInFlight int
	submits    int
}

var _ generator.Client = (*fakeGenerator)(nil)

func (g *fakeGenerator) Submit(_ context.Context, req generator.Request) (generator.JobHandle, error) {
	g.mu.Lock()
	g.submits++
	g.inFlight++
	if g.inFlight > g.maxInFlight {
		g.maxInFlight = g.inFlight
	}
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		g.inFlight--
		g.mu.Unlock()
	}()

	if g.submitFn != nil {
		return g.submitFn(req)
	}
	return generator.JobHandle{RequestID: uuid.NewString()}, nil
}

func (g *fakeGenerator) Await(ctx context.Context, handle generator.JobHandle) (generator.Result, error) {
	if g.awaitFn != nil {
		return g.awaitFn(ctx, handle)
	}
	return generator.Success("https://remote.example.com/" + handle.RequestID + ".png"), nil
}

// fakeDownloader returns fixed bytes for any artifact URL.
type fakeDownloader struct {
	err error
}

var _ generator.Downloader = (*fakeDownloader)(nil)

func (d *fakeDownloader) Download(_ context.Context, url string) ([]byte, error) {
	if d.err != nil {
		return nil, d.err
	}
	return []byte("artifact:" + url), nil
}

// fakeUploader records uploads and derives durable URLs from object paths.
type fakeUploader struct {
	mu      sync.Mutex
	uploads int
	err     error
}

func (u *fakeUploader) Upload(_ context.Context, objectPath, _ string, _ []byte) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	u.mu.Lock()
	u.uploads++
	u.mu.Unlock()
	return "https://cdn.example.com/" + objectPath, nil
}

// seedBatch creates n pending concept units sharing one batch ID and
// returns the batch ID, the units, and matching submitter requests.
func seedBatch(t *testing.T, units *memUnitStore, n int) (uuid.UUID, []*domain.GenerationUnit, []Request) {
	t.Helper()
	batchID := uuid.New()
	projectID := uuid.New()

	created := make([]*domain.GenerationUnit, 0, n)
	requests := make([]Request, 0, n)
	for i := 0; i < n; i++ {
		unit, err := domain.NewGenerationUnit(batchID, projectID, domain.UnitKindConcept,
			fmt.Sprintf("concept prompt %d", i))
		require.NoError(t, err)
		require.NoError(t, units.Create(context.Background(), unit))
		created = append(created, unit)
		requests = append(requests, Request{UnitID: unit.ID, Prompt: unit.Prompt})
	}
	return batchID, created, requests
}
