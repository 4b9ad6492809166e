package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/logoforge-api/internal/batch"
	"github.com/phrazzld/logoforge-api/internal/domain"
	"github.com/phrazzld/logoforge-api/internal/events"
	"github.com/phrazzld/logoforge-api/internal/platform/redisstate"
	"github.com/phrazzld/logoforge-api/internal/service"
)

const kitThreshold = 3

func newProgress(t *testing.T, units *fakeUnitRepo) service.ProgressService {
	t.Helper()
	return newProgressWithSessions(t, units, redisstate.NewMemoryStore())
}

func newProgressWithSessions(t *testing.T, units *fakeUnitRepo, sessions redisstate.SessionStore) service.ProgressService {
	t.Helper()
	svc, err := service.NewProgressService(units, sessions, kitThreshold, testLogger())
	require.NoError(t, err)
	return svc
}

func putSession(t *testing.T, sessions redisstate.SessionStore, batchID uuid.UUID, kind string, count int) {
	t.Helper()
	require.NoError(t, sessions.Put(context.Background(), redisstate.Session{
		BatchID:   batchID,
		ProjectID: uuid.New(),
		UserID:    uuid.New(),
		Kind:      kind,
		UnitCount: count,
		CreatedAt: time.Now().UTC(),
	}, time.Minute))
}

// seedProgressBatch creates a batch with the given counts of completed,
// failed, and pending units.
func seedProgressBatch(t *testing.T, units *fakeUnitRepo, kind domain.UnitKind, completed, failed, pending int) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	batchID := uuid.New()
	projectID := uuid.New()

	newUnit := func(i int) *domain.GenerationUnit {
		unit, err := domain.NewGenerationUnit(batchID, projectID, kind, fmt.Sprintf("prompt %d", i))
		require.NoError(t, err)
		return unit
	}

	n := 0
	for i := 0; i < completed; i++ {
		unit := newUnit(n)
		require.NoError(t, unit.MarkGenerating())
		require.NoError(t, unit.MarkCompleted(fmt.Sprintf("https://cdn.example.com/%d.png", n)))
		require.NoError(t, units.Create(ctx, unit))
		n++
	}
	for i := 0; i < failed; i++ {
		unit := newUnit(n)
		require.NoError(t, unit.MarkGenerating())
		require.NoError(t, unit.MarkFailed("generation failed"))
		require.NoError(t, units.Create(ctx, unit))
		n++
	}
	for i := 0; i < pending; i++ {
		require.NoError(t, units.Create(ctx, newUnit(n)))
		n++
	}
	return batchID
}

func TestGetProgressInFlight(t *testing.T) {
	t.Parallel()

	units := newFakeUnitRepo(t)
	svc := newProgress(t, units)
	batchID := seedProgressBatch(t, units, domain.UnitKindConcept, 4, 1, 10)

	progress, err := svc.GetProgress(context.Background(), batchID)
	require.NoError(t, err)
	assert.Equal(t, batch.VerdictInProgress, progress.Status)
	assert.Equal(t, 4, progress.Completed)
	assert.Equal(t, 1, progress.Failed)
	assert.Equal(t, 15, progress.Total)
	assert.InDelta(t, 26.7, progress.Percentage, 0.1)
	assert.Len(t, progress.Units, 15)
}

func TestGetProgressPortfolioSucceedsOnAnyTerminalMix(t *testing.T) {
	t.Parallel()

	units := newFakeUnitRepo(t)
	svc := newProgress(t, units)

	// No threshold for concept batches: all terminal means done, even with
	// a single success.
	batchID := seedProgressBatch(t, units, domain.UnitKindConcept, 1, 14, 0)

	progress, err := svc.GetProgress(context.Background(), batchID)
	require.NoError(t, err)
	assert.Equal(t, batch.VerdictSucceeded, progress.Status)
	// Terminal verdict, but only the completed share counts toward the
	// percentage.
	assert.InDelta(t, 6.7, progress.Percentage, 0.1)
}

func TestGetProgressPercentageIgnoresFailures(t *testing.T) {
	t.Parallel()

	units := newFakeUnitRepo(t)
	svc := newProgress(t, units)

	// 1 completed + 4 failed of 5: every unit is terminal, yet the batch
	// delivered one asset in five.
	batchID := seedProgressBatch(t, units, domain.UnitKindConcept, 1, 4, 0)

	progress, err := svc.GetProgress(context.Background(), batchID)
	require.NoError(t, err)
	assert.Equal(t, 1, progress.Completed)
	assert.Equal(t, 4, progress.Failed)
	assert.Equal(t, 5, progress.Total)
	assert.InDelta(t, 20.0, progress.Percentage, 0.01)
}

func TestGetProgressKitThresholdVerdicts(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		completed int
		failed    int
		want      batch.Verdict
	}{
		{"meets threshold", 3, 2, batch.VerdictSucceeded},
		{"exceeds threshold", 5, 0, batch.VerdictSucceeded},
		{"below threshold", 2, 3, batch.VerdictFailed},
		{"all failed", 0, 5, batch.VerdictFailed},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			units := newFakeUnitRepo(t)
			svc := newProgress(t, units)
			batchID := seedProgressBatch(t, units, domain.UnitKindBrandKitComponent, tc.completed, tc.failed, 0)

			progress, err := svc.GetProgress(context.Background(), batchID)
			require.NoError(t, err)
			assert.Equal(t, tc.want, progress.Status)
		})
	}
}

func TestGetProgressResolvesKindFromSession(t *testing.T) {
	t.Parallel()

	units := newFakeUnitRepo(t)
	sessions := redisstate.NewMemoryStore()
	svc := newProgressWithSessions(t, units, sessions)

	batchID := seedProgressBatch(t, units, domain.UnitKindConcept, 2, 3, 0)
	putSession(t, sessions, batchID, events.EventTypeBrandKit, 5)

	progress, err := svc.GetProgress(context.Background(), batchID)
	require.NoError(t, err)
	// The session records a brand kit batch, so the success threshold
	// applies even though the rows alone would read as a portfolio.
	assert.Equal(t, batch.VerdictFailed, progress.Status)
}

func TestGetProgressRetiresSessionOnTerminalVerdict(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	units := newFakeUnitRepo(t)
	sessions := redisstate.NewMemoryStore()
	svc := newProgressWithSessions(t, units, sessions)

	inFlight := seedProgressBatch(t, units, domain.UnitKindConcept, 1, 0, 4)
	putSession(t, sessions, inFlight, events.EventTypePortfolio, 5)
	settled := seedProgressBatch(t, units, domain.UnitKindConcept, 5, 0, 0)
	putSession(t, sessions, settled, events.EventTypePortfolio, 5)

	_, err := svc.GetProgress(ctx, inFlight)
	require.NoError(t, err)
	_, err = svc.GetProgress(ctx, settled)
	require.NoError(t, err)

	// The in-flight session survives; the settled one is gone.
	_, err = sessions.Get(ctx, inFlight)
	require.NoError(t, err)
	_, err = sessions.Get(ctx, settled)
	assert.ErrorIs(t, err, redisstate.ErrSessionNotFound)
}

func TestGetProgressUnitDetails(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	units := newFakeUnitRepo(t)
	svc := newProgress(t, units)

	batchID := uuid.New()
	completed, err := domain.NewGenerationUnit(batchID, uuid.New(), domain.UnitKindConcept, "done")
	require.NoError(t, err)
	require.NoError(t, completed.MarkGenerating())
	require.NoError(t, completed.MarkCompleted("https://cdn.example.com/a.png"))
	require.NoError(t, units.Create(ctx, completed))

	failed, err := domain.NewGenerationUnit(batchID, completed.ProjectID, domain.UnitKindConcept, "broken")
	require.NoError(t, err)
	require.NoError(t, failed.MarkGenerating())
	require.NoError(t, failed.MarkFailed("content rejected"))
	require.NoError(t, units.Create(ctx, failed))

	progress, err := svc.GetProgress(ctx, batchID)
	require.NoError(t, err)
	require.Len(t, progress.Units, 2)

	byID := make(map[uuid.UUID]service.UnitProgress, 2)
	for _, u := range progress.Units {
		byID[u.UnitID] = u
	}
	assert.Equal(t, "https://cdn.example.com/a.png", byID[completed.ID].ResultURL)
	assert.Empty(t, byID[completed.ID].ErrorReason)
	assert.Equal(t, "content rejected", byID[failed.ID].ErrorReason)
	assert.Empty(t, byID[failed.ID].ResultURL)
}

func TestGetProgressBatchNotFound(t *testing.T) {
	t.Parallel()

	svc := newProgress(t, newFakeUnitRepo(t))

	_, err := svc.GetProgress(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrBatchNotFound)
}
