package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/logoforge-api/internal/domain"
	"github.com/phrazzld/logoforge-api/internal/events"
	"github.com/phrazzld/logoforge-api/internal/platform/redisstate"
	"github.com/phrazzld/logoforge-api/internal/promptgen"
	"github.com/phrazzld/logoforge-api/internal/store"
)

// OrchestratorService starts portfolio generation batches.
type OrchestratorService interface {
	// CreateProjectAndStartPortfolio creates a project from a brief and
	// immediately starts its 15-concept portfolio batch. The returned
	// batch ID identifies the background run; the caller is never blocked
	// on generation.
	CreateProjectAndStartPortfolio(
		ctx context.Context,
		userID uuid.UUID,
		name string,
		brief domain.Brief,
	) (*domain.Project, uuid.UUID, error)

	// StartPortfolio starts a portfolio batch for an existing project.
	StartPortfolio(ctx context.Context, projectID uuid.UUID) (uuid.UUID, error)

	// GetProject retrieves a project by ID.
	GetProject(ctx context.Context, projectID uuid.UUID) (*domain.Project, error)
}

// orchestratorServiceImpl implements the OrchestratorService interface.
type orchestratorServiceImpl struct {
	projectRepo ProjectRepository
	unitRepo    UnitRepository
	producer    promptgen.Producer
	fallback    promptgen.Producer
	sessions    redisstate.SessionStore
	emitter     events.EventEmitter
	sessionTTL  time.Duration
	logger      *slog.Logger
}

// NewOrchestratorService creates a new OrchestratorService. producer may be
// nil, in which case the deterministic fallback catalog is used for every
// batch.
func NewOrchestratorService(
	projectRepo ProjectRepository,
	unitRepo UnitRepository,
	producer promptgen.Producer,
	sessions redisstate.SessionStore,
	emitter events.EventEmitter,
	sessionTTL time.Duration,
	logger *slog.Logger,
) (OrchestratorService, error) {
	if projectRepo == nil {
		return nil, errors.New("projectRepo cannot be nil")
	}
	if unitRepo == nil {
		return nil, errors.New("unitRepo cannot be nil")
	}
	if sessions == nil {
		return nil, errors.New("sessions cannot be nil")
	}
	if emitter == nil {
		return nil, errors.New("emitter cannot be nil")
	}
	if sessionTTL <= 0 {
		return nil, errors.New("session TTL must be positive")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &orchestratorServiceImpl{
		projectRepo: projectRepo,
		unitRepo:    unitRepo,
		producer:    producer,
		fallback:    promptgen.NewFallbackProducer(),
		sessions:    sessions,
		emitter:     emitter,
		sessionTTL:  sessionTTL,
		logger:      logger.With("component", "orchestrator_service"),
	}, nil
}

// CreateProjectAndStartPortfolio implements OrchestratorService.
func (s *orchestratorServiceImpl) CreateProjectAndStartPortfolio(
	ctx context.Context,
	userID uuid.UUID,
	name string,
	brief domain.Brief,
) (*domain.Project, uuid.UUID, error) {
	project, err := domain.NewProject(userID, name, brief)
	if err != nil {
		return nil, uuid.Nil, newOrchestrationError("create_project", "invalid project", err)
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		s.logger.Error("failed to create project",
			"error", err,
			"user_id", userID)
		return nil, uuid.Nil, newOrchestrationError("create_project", "failed to save project", err)
	}

	batchID, err := s.StartPortfolio(ctx, project.ID)
	if err != nil {
		return nil, uuid.Nil, err
	}
	return project, batchID, nil
}

// StartPortfolio implements OrchestratorService. It creates the batch's
// pending unit rows in one transaction, records the generation session,
// and emits the portfolio event; the batch itself runs in the background
// under the registry.
func (s *orchestratorServiceImpl) StartPortfolio(ctx context.Context, projectID uuid.UUID) (uuid.UUID, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrProjectNotFound) {
			return uuid.Nil, ErrProjectNotFound
		}
		return uuid.Nil, newOrchestrationError("start_portfolio", "failed to load project", err)
	}

	prompts := portfolioPrompts(ctx, s.producer, s.fallback, project.Brief, s.logger)
	if len(prompts) == 0 {
		return uuid.Nil, newOrchestrationError("start_portfolio", "no prompts produced", ErrSetup)
	}

	batchID := uuid.New()
	units := make([]*domain.GenerationUnit, 0, len(prompts))
	for _, prompt := range prompts {
		unit, err := domain.NewGenerationUnit(batchID, project.ID, domain.UnitKindConcept, prompt)
		if err != nil {
			return uuid.Nil, newOrchestrationError("start_portfolio", "invalid unit", err)
		}
		units = append(units, unit)
	}

	// A batch is created whole or not at all.
	err = store.RunInTransaction(ctx, s.unitRepo.DB(), func(ctx context.Context, tx *sql.Tx) error {
		return s.unitRepo.WithTx(tx).CreateBatch(ctx, units)
	})
	if err != nil {
		s.logger.Error("failed to create portfolio units",
			"error", err,
			"project_id", project.ID,
			"batch_id", batchID)
		return uuid.Nil, newOrchestrationError("start_portfolio", "failed to create units", err)
	}

	session := redisstate.Session{
		BatchID:   batchID,
		ProjectID: project.ID,
		UserID:    project.UserID,
		Kind:      events.EventTypePortfolio,
		UnitCount: len(units),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.sessions.Put(ctx, session, s.sessionTTL); err != nil {
		// Progress resolution degrades but the batch is intact; log and
		// continue.
		s.logger.Warn("failed to write generation session",
			"error", err,
			"batch_id", batchID)
	}

	event, err := events.NewBatchRequestEvent(events.EventTypePortfolio, PortfolioPayload{
		BatchID:   batchID,
		ProjectID: project.ID,
	})
	if err != nil {
		return uuid.Nil, newOrchestrationError("start_portfolio", "failed to create event", err)
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		s.logger.Error("failed to emit portfolio event",
			"error", err,
			"batch_id", batchID,
			"event_id", event.ID)
		return uuid.Nil, newOrchestrationError("start_portfolio", "failed to emit event", err)
	}

	s.logger.Info("portfolio batch started",
		"project_id", project.ID,
		"batch_id", batchID,
		"unit_count", len(units))

	return batchID, nil
}

// GetProject implements OrchestratorService.
func (s *orchestratorServiceImpl) GetProject(ctx context.Context, projectID uuid.UUID) (*domain.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrProjectNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, newOrchestrationError("get_project", "failed to load project", err)
	}
	return project, nil
}
