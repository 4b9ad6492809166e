package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/phrazzld/logoforge-api/internal/generator"
	"github.com/phrazzld/logoforge-api/internal/redact"
	"github.com/phrazzld/logoforge-api/internal/store"
)

// ErrSubmitFailed indicates a submission failed before a job handle was
// obtained. The owning unit is marked Failed directly; the error never
// propagates past the submitter.
var ErrSubmitFailed = errors.New("job submission failed")

// Request is one unit's generation request. The caller has already created
// the corresponding unit row with status Pending.
type Request struct {
	UnitID         uuid.UUID
	Prompt         string
	SourceImageURL string
}

// Submitted pairs a unit with the job handle obtained for it.
type Submitted struct {
	UnitID uuid.UUID
	Handle generator.JobHandle
}

// Submitter fans generation requests out to the generator under a bounded
// concurrency cap. Excess requests queue behind the cap rather than being
// rejected.
type Submitter struct {
	units  store.UnitStore
	client generator.Client
	sem    *semaphore.Weighted
	logger *slog.Logger
}

// NewSubmitter creates a Submitter with the given submission cap.
func NewSubmitter(units store.UnitStore, client generator.Client, maxConcurrent int, logger *slog.Logger) (*Submitter, error) {
	if units == nil {
		return nil, errors.New("unit store cannot be nil")
	}
	if client == nil {
		return nil, errors.New("generator client cannot be nil")
	}
	if maxConcurrent <= 0 {
		return nil, fmt.Errorf("max concurrent submissions must be positive, got %d", maxConcurrent)
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &Submitter{
		units:  units,
		client: client,
		sem:    semaphore.NewWeighted(int64(maxConcurrent)),
		logger: logger.With(slog.String("component", "batch_submitter")),
	}, nil
}

// SubmitAll submits every request, marking each unit Generating before its
// outbound call so a crash mid-submission never leaves a unit stuck at
// Pending while work is in flight. Units whose submission fails are marked
// Failed immediately and excluded from the returned slice. Submission order
// follows request order; the returned handles preserve it.
//
// SubmitAll itself only errors when the context ends before all requests
// are dispatched.
func (s *Submitter) SubmitAll(ctx context.Context, requests []Request) ([]Submitted, error) {
	results := make([]*Submitted, len(requests))
	var wg sync.WaitGroup

	for i, req := range requests {
		// Acquiring in the loop, not the goroutine, preserves submission
		// order under the cap.
		if err := s.sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return collect(results), fmt.Errorf("submission dispatch interrupted: %w", err)
		}

		wg.Add(1)
		go func(i int, req Request) {
			defer wg.Done()
			defer s.sem.Release(1)

			if submitted := s.submitOne(ctx, req); submitted != nil {
				results[i] = submitted
			}
		}(i, req)
	}

	wg.Wait()
	return collect(results), nil
}

// submitOne transitions the unit to Generating, performs the outbound
// submission, and on failure records the redacted reason on the unit.
// Returns nil when no handle was obtained.
func (s *Submitter) submitOne(ctx context.Context, req Request) *Submitted {
	unit, err := s.units.GetByID(ctx, req.UnitID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load unit for submission",
			slog.String("unit_id", req.UnitID.String()),
			slog.String("error", err.Error()))
		return nil
	}

	// Write-before-submit.
	if err := unit.MarkGenerating(); err != nil {
		s.logger.ErrorContext(ctx, "unit cannot transition to generating",
			slog.String("unit_id", unit.ID.String()),
			slog.String("status", string(unit.Status)),
			slog.String("error", err.Error()))
		return nil
	}
	if err := s.units.Update(ctx, unit); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist generating status",
			slog.String("unit_id", unit.ID.String()),
			slog.String("error", err.Error()))
		return nil
	}

	handle, err := s.client.Submit(ctx, generator.Request{
		Prompt:         req.Prompt,
		SourceImageURL: req.SourceImageURL,
	})
	if err != nil {
		s.failUnit(ctx, unit.ID, fmt.Errorf("%w: %v", ErrSubmitFailed, err))
		return nil
	}

	s.logger.InfoContext(ctx, "unit submitted",
		slog.String("unit_id", unit.ID.String()),
		slog.String("request_id", handle.RequestID))

	return &Submitted{UnitID: unit.ID, Handle: handle}
}

// failUnit marks a unit Failed with a redacted reason. Best effort: a write
// failure here is logged, not propagated, so sibling submissions proceed.
func (s *Submitter) failUnit(ctx context.Context, unitID uuid.UUID, cause error) {
	unit, err := s.units.GetByID(ctx, unitID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load unit for failure record",
			slog.String("unit_id", unitID.String()),
			slog.String("error", err.Error()))
		return
	}

	if err := unit.MarkFailed(redact.Error(cause)); err != nil {
		s.logger.ErrorContext(ctx, "unit cannot transition to failed",
			slog.String("unit_id", unitID.String()),
			slog.String("error", err.Error()))
		return
	}
	if err := s.units.Update(ctx, unit); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist failed status",
			slog.String("unit_id", unitID.String()),
			slog.String("error", err.Error()))
		return
	}

	s.logger.WarnContext(ctx, "unit failed at submission",
		slog.String("unit_id", unitID.String()),
		slog.String("reason", redact.Error(cause)))
}

// collect compacts the positional results, dropping failed slots while
// preserving request order.
func collect(results []*Submitted) []Submitted {
	out := make([]Submitted, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}
