package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phrazzld/logoforge-api/internal/batch"
	"github.com/phrazzld/logoforge-api/internal/domain"
	"github.com/phrazzld/logoforge-api/internal/events"
	"github.com/phrazzld/logoforge-api/internal/platform/redisstate"
)

// UnitProgress is the per-unit view inside a progress snapshot.
type UnitProgress struct {
	UnitID      uuid.UUID         `json:"unit_id"`
	Kind        domain.UnitKind   `json:"kind"`
	Status      domain.UnitStatus `json:"status"`
	ResultURL   string            `json:"result_url,omitempty"`
	ErrorReason string            `json:"error_reason,omitempty"`
}

// Progress is a point-in-time snapshot of a batch, computed fresh from the
// unit store on every call. There is no progress cache to go stale.
type Progress struct {
	BatchID    uuid.UUID      `json:"batch_id"`
	Status     batch.Verdict  `json:"status"`
	Completed  int            `json:"completed"`
	Failed     int            `json:"failed"`
	Total      int            `json:"total"`
	Percentage float64        `json:"percentage"`
	Units      []UnitProgress `json:"units"`
}

// ProgressService reports live batch progress.
type ProgressService interface {
	// GetProgress computes the batch's current progress from unit rows.
	// Returns ErrBatchNotFound if no units exist for the batch.
	GetProgress(ctx context.Context, batchID uuid.UUID) (*Progress, error)
}

// progressServiceImpl implements the ProgressService interface.
type progressServiceImpl struct {
	unitRepo     UnitRepository
	sessions     redisstate.SessionStore
	kitThreshold int
	logger       *slog.Logger
}

// NewProgressService creates a new ProgressService. sessions is consulted
// for batch metadata while a generation session is live. kitThreshold is
// the brand kit success threshold used to derive verdicts for kit batches;
// other batch kinds carry no threshold.
func NewProgressService(unitRepo UnitRepository, sessions redisstate.SessionStore, kitThreshold int, logger *slog.Logger) (ProgressService, error) {
	if unitRepo == nil {
		return nil, errors.New("unitRepo cannot be nil")
	}
	if sessions == nil {
		return nil, errors.New("sessions cannot be nil")
	}
	if kitThreshold <= 0 {
		return nil, errors.New("kit threshold must be positive")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &progressServiceImpl{
		unitRepo:     unitRepo,
		sessions:     sessions,
		kitThreshold: kitThreshold,
		logger:       logger.With("component", "progress_service"),
	}, nil
}

// GetProgress implements ProgressService.
func (s *progressServiceImpl) GetProgress(ctx context.Context, batchID uuid.UUID) (*Progress, error) {
	units, err := s.unitRepo.FindByBatch(ctx, batchID)
	if err != nil {
		return nil, newOrchestrationError("get_progress", "failed to load batch units", err)
	}
	if len(units) == 0 {
		return nil, ErrBatchNotFound
	}

	outcome := batch.ComputeOutcome(batchID, units, s.resolvePolicy(ctx, batchID, units))

	progress := &Progress{
		BatchID:   batchID,
		Status:    outcome.Verdict,
		Completed: outcome.Completed,
		Failed:    outcome.Failed,
		Total:     outcome.Total,
		Units:     make([]UnitProgress, 0, len(units)),
	}
	// Percentage reports delivered work, not settled work: failed units
	// never count toward it, so a fully-terminal batch with failures
	// stays below 100.
	if outcome.Total > 0 {
		progress.Percentage = float64(outcome.Completed) / float64(outcome.Total) * 100
	}

	for _, unit := range units {
		progress.Units = append(progress.Units, UnitProgress{
			UnitID:      unit.ID,
			Kind:        unit.Kind,
			Status:      unit.Status,
			ResultURL:   unit.ResultURL,
			ErrorReason: unit.ErrorReason,
		})
	}

	if outcome.Verdict != batch.VerdictInProgress {
		// The batch is settled; the session has nothing left to resolve.
		if err := s.sessions.Delete(ctx, batchID); err != nil {
			s.logger.Warn("failed to delete generation session",
				"error", err,
				"batch_id", batchID)
		}
	}

	return progress, nil
}

// resolvePolicy derives the verdict policy for the batch. The live session
// carries the batch kind and is preferred; once it has expired the policy
// falls back to the stored unit rows. Brand kit batches carry the
// configured success threshold; portfolios and refinements treat any
// all-terminal state as done.
func (s *progressServiceImpl) resolvePolicy(ctx context.Context, batchID uuid.UUID, units []*domain.GenerationUnit) batch.Policy {
	session, err := s.sessions.Get(ctx, batchID)
	if err == nil {
		if session.Kind == events.EventTypeBrandKit {
			return batch.Policy{SuccessThreshold: s.kitThreshold}
		}
		return batch.Policy{}
	}
	if !errors.Is(err, redisstate.ErrSessionNotFound) {
		s.logger.Warn("failed to read generation session",
			"error", err,
			"batch_id", batchID)
	}
	if units[0].Kind == domain.UnitKindBrandKitComponent {
		return batch.Policy{SuccessThreshold: s.kitThreshold}
	}
	return batch.Policy{}
}
