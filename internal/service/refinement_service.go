package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/logoforge-api/internal/credit"
	"github.com/phrazzld/logoforge-api/internal/domain"
	"github.com/phrazzld/logoforge-api/internal/events"
	"github.com/phrazzld/logoforge-api/internal/platform/redisstate"
	"github.com/phrazzld/logoforge-api/internal/promptgen"
	"github.com/phrazzld/logoforge-api/internal/store"
)

// refinementReason is the ledger reason for refinement reservations. The
// idempotency key is (user, reason, source unit), so a retried refund for
// the same refinement can never credit twice.
const refinementReason = "refinement"

// setupFailedReason marks variant units stranded by a setup failure after
// their batch rows were created.
const setupFailedReason = "setup failed"

// RefinementService runs the credit-gated refinement flow: one source logo
// plus an optional instruction fans out to exactly five variants.
type RefinementService interface {
	// RefineUnit reserves credits, creates five child units under a new
	// batch, and starts the background run. Returns the new batch ID.
	//
	// Credit policy: on any failure before generation starts the
	// reservation is refunded exactly once and ErrSetup (or the ledger
	// error) is returned. Once any variant reaches Generating the
	// reservation is consumed; individual variant failures are never
	// auto-refunded.
	RefineUnit(ctx context.Context, userID, sourceUnitID uuid.UUID, instruction string) (uuid.UUID, error)
}

// refinementServiceImpl implements the RefinementService interface.
type refinementServiceImpl struct {
	unitRepo   UnitRepository
	ledger     credit.Ledger
	producer   promptgen.Producer
	fallback   promptgen.Producer
	sessions   redisstate.SessionStore
	emitter    events.EventEmitter
	cost       int
	sessionTTL time.Duration
	logger     *slog.Logger
}

// NewRefinementService creates a new RefinementService. producer may be
// nil; the deterministic fallback catalog then supplies every variation
// prompt.
func NewRefinementService(
	unitRepo UnitRepository,
	ledger credit.Ledger,
	producer promptgen.Producer,
	sessions redisstate.SessionStore,
	emitter events.EventEmitter,
	cost int,
	sessionTTL time.Duration,
	logger *slog.Logger,
) (RefinementService, error) {
	if unitRepo == nil {
		return nil, errors.New("unitRepo cannot be nil")
	}
	if ledger == nil {
		return nil, errors.New("ledger cannot be nil")
	}
	if sessions == nil {
		return nil, errors.New("sessions cannot be nil")
	}
	if emitter == nil {
		return nil, errors.New("emitter cannot be nil")
	}
	if cost <= 0 {
		return nil, errors.New("refinement cost must be positive")
	}
	if sessionTTL <= 0 {
		return nil, errors.New("session TTL must be positive")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &refinementServiceImpl{
		unitRepo:   unitRepo,
		ledger:     ledger,
		producer:   producer,
		fallback:   promptgen.NewFallbackProducer(),
		sessions:   sessions,
		emitter:    emitter,
		cost:       cost,
		sessionTTL: sessionTTL,
		logger:     logger.With("component", "refinement_service"),
	}, nil
}

// RefineUnit implements RefinementService.
func (s *refinementServiceImpl) RefineUnit(ctx context.Context, userID, sourceUnitID uuid.UUID, instruction string) (uuid.UUID, error) {
	source, err := s.unitRepo.GetByID(ctx, sourceUnitID)
	if err != nil {
		if errors.Is(err, store.ErrUnitNotFound) {
			return uuid.Nil, ErrUnitNotFound
		}
		return uuid.Nil, newOrchestrationError("refine_unit", "failed to load source unit", err)
	}
	if source.Status != domain.UnitStatusCompleted || source.ResultURL == "" {
		return uuid.Nil, ErrSourceNotReady
	}

	// Reservation happens before any unit is created.
	reservation, err := domain.NewCreditReservation(userID, s.cost, refinementReason, &sourceUnitID)
	if err != nil {
		return uuid.Nil, newOrchestrationError("refine_unit", "invalid reservation", err)
	}

	approved, err := s.ledger.Reserve(ctx, reservation)
	if err != nil {
		s.logger.Error("credit reservation failed",
			"error", err,
			"user_id", userID,
			"source_unit_id", sourceUnitID)
		return uuid.Nil, err
	}
	if !approved {
		return uuid.Nil, credit.ErrInsufficientCredits
	}

	batchID, err := s.setupVariants(ctx, source, instruction)
	if err != nil {
		s.refundSetupFailure(ctx, reservation)
		return uuid.Nil, err
	}

	s.logger.Info("refinement batch started",
		"source_unit_id", sourceUnitID,
		"batch_id", batchID,
		"user_id", userID)

	return batchID, nil
}

// setupVariants performs every pre-generation step after the reservation:
// prompt production, child unit creation, session write, event dispatch.
// Any error here means no unit has reached Generating yet, so the caller
// refunds.
func (s *refinementServiceImpl) setupVariants(ctx context.Context, source *domain.GenerationUnit, instruction string) (uuid.UUID, error) {
	prompts := variationPrompts(ctx, s.producer, s.fallback, source.Prompt, instruction, s.logger)
	if len(prompts) != promptgen.VariationCount {
		return uuid.Nil, newOrchestrationError("refine_unit", "variation prompt production failed", ErrSetup)
	}

	batchID := uuid.New()
	units := make([]*domain.GenerationUnit, 0, len(prompts))
	for _, prompt := range prompts {
		unit, err := domain.NewChildUnit(source, batchID, domain.UnitKindRefinementVariant, prompt)
		if err != nil {
			return uuid.Nil, newOrchestrationError("refine_unit", "invalid variant unit", err)
		}
		units = append(units, unit)
	}

	err := store.RunInTransaction(ctx, s.unitRepo.DB(), func(ctx context.Context, tx *sql.Tx) error {
		return s.unitRepo.WithTx(tx).CreateBatch(ctx, units)
	})
	if err != nil {
		s.logger.Error("failed to create variant units",
			"error", err,
			"source_unit_id", source.ID,
			"batch_id", batchID)
		return uuid.Nil, newOrchestrationError("refine_unit", "failed to create variant units", ErrSetup)
	}

	session := redisstate.Session{
		BatchID:   batchID,
		ProjectID: source.ProjectID,
		Kind:      events.EventTypeRefinement,
		UnitCount: len(units),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.sessions.Put(ctx, session, s.sessionTTL); err != nil {
		s.logger.Warn("failed to write generation session",
			"error", err,
			"batch_id", batchID)
	}

	event, err := events.NewBatchRequestEvent(events.EventTypeRefinement, RefinementPayload{
		BatchID:        batchID,
		SourceUnitID:   source.ID,
		SourceImageURL: source.ResultURL,
	})
	if err != nil {
		s.failStrandedUnits(ctx, units)
		return uuid.Nil, newOrchestrationError("refine_unit", "failed to create event", ErrSetup)
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		s.logger.Error("failed to emit refinement event",
			"error", err,
			"batch_id", batchID,
			"event_id", event.ID)
		s.failStrandedUnits(ctx, units)
		return uuid.Nil, newOrchestrationError("refine_unit", "failed to emit event", ErrSetup)
	}

	return batchID, nil
}

// failStrandedUnits closes out variant units whose batch job will never be
// dispatched. Without this a setup failure after unit creation would leave
// the variants Pending forever.
func (s *refinementServiceImpl) failStrandedUnits(ctx context.Context, units []*domain.GenerationUnit) {
	for _, unit := range units {
		if err := unit.MarkFailed(setupFailedReason); err != nil {
			continue
		}
		if err := s.unitRepo.Update(ctx, unit); err != nil {
			s.logger.Error("failed to close out stranded variant unit",
				"error", err,
				"unit_id", unit.ID,
				"batch_id", unit.BatchID)
		}
	}
}

// refundSetupFailure returns the full reserved amount after a setup
// failure. The ledger's idempotency key makes a repeated refund a no-op,
// so a crash between failure and refund cannot double-credit on retry.
func (s *refinementServiceImpl) refundSetupFailure(ctx context.Context, reservation *domain.CreditReservation) {
	refunded, err := s.ledger.Refund(ctx, reservation)
	if err != nil {
		s.logger.Error("failed to refund reservation after setup failure",
			"error", err,
			"user_id", reservation.UserID,
			"amount", reservation.Amount)
		return
	}
	if refunded {
		s.logger.Info("reservation refunded after setup failure",
			"user_id", reservation.UserID,
			"amount", reservation.Amount)
	}
}
