package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Registry errors.
var (
	// ErrJobExists indicates a job is already registered for the batch ID.
	ErrJobExists = errors.New("job already registered for batch")

	// ErrJobNotFound indicates no job is registered for the batch ID.
	ErrJobNotFound = errors.New("no job registered for batch")
)

// JobFunc is the body of a supervised batch run.
type JobFunc func(ctx context.Context) (Outcome, error)

// Job is one supervised batch run. It can be awaited for its outcome and
// cancelled; the zero outcome plus a non-nil error means the run never
// produced a verdict.
type Job struct {
	BatchID uuid.UUID

	cancel  context.CancelFunc
	done    chan struct{}
	outcome Outcome
	err     error
}

// Await blocks until the job finishes or the given context ends.
func (j *Job) Await(ctx context.Context) (Outcome, error) {
	select {
	case <-j.done:
		return j.outcome, j.err
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

// Done reports whether the job has finished without blocking.
func (j *Job) Done() bool {
	select {
	case <-j.done:
		return true
	default:
		return false
	}
}

// Registry supervises background batch runs, keyed by batch ID. Unlike a
// detached goroutine, a registered job carries a handle that can be
// queried, cancelled, and awaited, and Shutdown drains all in-flight runs
// before process exit.
type Registry struct {
	mu     sync.Mutex
	jobs   map[uuid.UUID]*Job
	wg     sync.WaitGroup
	closed bool
	logger *slog.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		jobs:   make(map[uuid.UUID]*Job),
		logger: logger.With(slog.String("component", "batch_registry")),
	}
}

// Start launches fn in a supervised goroutine keyed by batchID. The job's
// context is detached from the caller's cancellation (the triggering HTTP
// request does not own the batch's lifetime) but inherits its values for
// tracing. Returns ErrJobExists if the batch already has a live job.
func (r *Registry) Start(ctx context.Context, batchID uuid.UUID, fn JobFunc) (*Job, error) {
	if batchID == uuid.Nil {
		return nil, errors.New("batch ID cannot be nil")
	}
	if fn == nil {
		return nil, errors.New("job function cannot be nil")
	}

	jobCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	job := &Job{
		BatchID: batchID,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		cancel()
		return nil, errors.New("registry is shut down")
	}
	if existing, ok := r.jobs[batchID]; ok && !existing.Done() {
		r.mu.Unlock()
		cancel()
		return nil, fmt.Errorf("%w: %s", ErrJobExists, batchID)
	}
	r.jobs[batchID] = job
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		defer cancel()
		defer close(job.done)

		defer func() {
			if p := recover(); p != nil {
				job.err = fmt.Errorf("batch job panicked: %v", p)
				r.logger.ErrorContext(jobCtx, "batch job panicked",
					slog.String("batch_id", batchID.String()),
					slog.Any("panic", p))
			}
		}()

		r.logger.InfoContext(jobCtx, "batch job started",
			slog.String("batch_id", batchID.String()))

		job.outcome, job.err = fn(jobCtx)

		if job.err != nil {
			r.logger.ErrorContext(jobCtx, "batch job finished with error",
				slog.String("batch_id", batchID.String()),
				slog.String("error", job.err.Error()))
			return
		}
		r.logger.InfoContext(jobCtx, "batch job finished",
			slog.String("batch_id", batchID.String()),
			slog.String("verdict", string(job.outcome.Verdict)))
	}()

	return job, nil
}

// Get returns the job registered for a batch.
func (r *Registry) Get(batchID uuid.UUID) (*Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[batchID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, batchID)
	}
	return job, nil
}

// Cancel cancels the job registered for a batch. The job still runs to its
// next context check and records whatever state it reached.
func (r *Registry) Cancel(batchID uuid.UUID) error {
	job, err := r.Get(batchID)
	if err != nil {
		return err
	}
	job.cancel()
	return nil
}

// Shutdown stops accepting new jobs, cancels the in-flight ones, and waits
// for them to drain or the context to end.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	for _, job := range r.jobs {
		job.cancel()
	}
	r.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("registry shutdown interrupted: %w", ctx.Err())
	}
}
