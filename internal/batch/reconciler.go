package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/logoforge-api/internal/generator"
	"github.com/phrazzld/logoforge-api/internal/redact"
	"github.com/phrazzld/logoforge-api/internal/storage"
	"github.com/phrazzld/logoforge-api/internal/store"
)

// storageFailureReason is the user-visible reason recorded when a generated
// artifact could not be persisted.
const storageFailureReason = "storage upload failed"

// emptyResultReason is recorded when the generator resolved but produced
// nothing.
const emptyResultReason = "empty result"

// Reconciler awaits outstanding generation jobs, transfers successful
// artifacts to durable storage, records each unit's terminal state, and
// derives the batch verdict.
type Reconciler struct {
	units      store.UnitStore
	client     generator.Client
	downloader generator.Downloader
	uploader   storage.Uploader
	timeout    time.Duration
	logger     *slog.Logger
}

// NewReconciler creates a Reconciler. timeout bounds each individual await;
// one stuck job never blocks its siblings.
func NewReconciler(
	units store.UnitStore,
	client generator.Client,
	downloader generator.Downloader,
	uploader storage.Uploader,
	timeout time.Duration,
	logger *slog.Logger,
) (*Reconciler, error) {
	if units == nil {
		return nil, errors.New("unit store cannot be nil")
	}
	if client == nil {
		return nil, errors.New("generator client cannot be nil")
	}
	if downloader == nil {
		return nil, errors.New("downloader cannot be nil")
	}
	if uploader == nil {
		return nil, errors.New("uploader cannot be nil")
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("generation timeout must be positive, got %s", timeout)
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &Reconciler{
		units:      units,
		client:     client,
		downloader: downloader,
		uploader:   uploader,
		timeout:    timeout,
		logger:     logger.With(slog.String("component", "batch_reconciler")),
	}, nil
}

// AwaitAndReconcile waits on every submitted job concurrently and without a
// cap, records each outcome on its unit, then recomputes the batch verdict
// from current unit rows. Per-unit errors are recorded, never raised; the
// returned error covers only batch-level bookkeeping failures.
func (r *Reconciler) AwaitAndReconcile(ctx context.Context, batchID uuid.UUID, submitted []Submitted, policy Policy) (Outcome, error) {
	var wg sync.WaitGroup
	for _, sub := range submitted {
		wg.Add(1)
		go func(sub Submitted) {
			defer wg.Done()
			r.reconcileOne(ctx, sub)
		}(sub)
	}
	wg.Wait()

	units, err := r.units.FindByBatch(ctx, batchID)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to load batch units for verdict: %w", err)
	}

	outcome := ComputeOutcome(batchID, units, policy)
	r.logger.InfoContext(ctx, "batch reconciled",
		slog.String("batch_id", batchID.String()),
		slog.Int("total", outcome.Total),
		slog.Int("completed", outcome.Completed),
		slog.Int("failed", outcome.Failed),
		slog.String("verdict", string(outcome.Verdict)))

	return outcome, nil
}

// reconcileOne awaits a single job under the per-unit timeout and records
// its terminal state. Results are matched back to units by explicit unit
// ID, never by position; completion order is unordered.
func (r *Reconciler) reconcileOne(ctx context.Context, sub Submitted) {
	awaitCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.client.Await(awaitCtx, sub.Handle)
	if err != nil {
		reason := redact.Error(err)
		if errors.Is(awaitCtx.Err(), context.DeadlineExceeded) {
			reason = fmt.Sprintf("generation timed out after %s", r.timeout)
		}
		r.failUnit(ctx, sub.UnitID, reason)
		return
	}

	switch result.Kind {
	case generator.ResultSuccess:
		r.completeUnit(ctx, sub.UnitID, result.ArtifactURL)
	case generator.ResultEmpty:
		r.failUnit(ctx, sub.UnitID, emptyResultReason)
	case generator.ResultFailure:
		r.failUnit(ctx, sub.UnitID, redact.String(result.Reason))
	default:
		r.failUnit(ctx, sub.UnitID, fmt.Sprintf("unknown result kind %q", result.Kind))
	}
}

// completeUnit transfers the artifact to durable storage and marks the unit
// Completed with the durable URL. A generation success whose artifact
// cannot be stored is a failed unit.
func (r *Reconciler) completeUnit(ctx context.Context, unitID uuid.UUID, artifactURL string) {
	unit, err := r.units.GetByID(ctx, unitID)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to load unit for completion",
			slog.String("unit_id", unitID.String()),
			slog.String("error", err.Error()))
		return
	}

	data, err := r.downloader.Download(ctx, artifactURL)
	if err != nil {
		r.logger.WarnContext(ctx, "artifact download failed",
			slog.String("unit_id", unitID.String()),
			slog.String("error", err.Error()))
		r.failUnit(ctx, unitID, storageFailureReason)
		return
	}

	objectPath := fmt.Sprintf("%s/%s/%s.png", unit.ProjectID, unit.BatchID, unit.ID)
	durableURL, err := r.uploader.Upload(ctx, objectPath, "image/png", data)
	if err != nil {
		r.logger.WarnContext(ctx, "artifact upload failed",
			slog.String("unit_id", unitID.String()),
			slog.String("error", err.Error()))
		r.failUnit(ctx, unitID, storageFailureReason)
		return
	}

	if err := unit.MarkCompleted(durableURL); err != nil {
		r.logger.ErrorContext(ctx, "unit cannot transition to completed",
			slog.String("unit_id", unitID.String()),
			slog.String("error", err.Error()))
		return
	}
	if err := r.units.Update(ctx, unit); err != nil {
		r.logger.ErrorContext(ctx, "failed to persist completed status",
			slog.String("unit_id", unitID.String()),
			slog.String("error", err.Error()))
		return
	}

	r.logger.InfoContext(ctx, "unit completed",
		slog.String("unit_id", unitID.String()),
		slog.String("result_url", durableURL))
}

// failUnit marks a unit Failed with the given reason. Best effort: write
// failures are logged so sibling reconciliation proceeds.
func (r *Reconciler) failUnit(ctx context.Context, unitID uuid.UUID, reason string) {
	unit, err := r.units.GetByID(ctx, unitID)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to load unit for failure record",
			slog.String("unit_id", unitID.String()),
			slog.String("error", err.Error()))
		return
	}

	if err := unit.MarkFailed(reason); err != nil {
		r.logger.ErrorContext(ctx, "unit cannot transition to failed",
			slog.String("unit_id", unitID.String()),
			slog.String("error", err.Error()))
		return
	}
	if err := r.units.Update(ctx, unit); err != nil {
		r.logger.ErrorContext(ctx, "failed to persist failed status",
			slog.String("unit_id", unitID.String()),
			slog.String("error", err.Error()))
		return
	}

	r.logger.WarnContext(ctx, "unit failed",
		slog.String("unit_id", unitID.String()),
		slog.String("reason", reason))
}
