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

// BrandKitService assembles a full brand kit from one completed logo:
// business cards, website mockup, social headers, t-shirt mockup, and an
// animated logo, generated as a five-unit batch with a success threshold.
type BrandKitService interface {
	// CreateKit creates the five component units under a new batch and
	// starts the background run. Returns the new batch ID and the ordered
	// component list.
	CreateKit(ctx context.Context, userID, sourceUnitID uuid.UUID) (uuid.UUID, []promptgen.KitComponent, error)
}

// brandKitServiceImpl implements the BrandKitService interface.
type brandKitServiceImpl struct {
	unitRepo    UnitRepository
	projectRepo ProjectRepository
	sessions    redisstate.SessionStore
	emitter     events.EventEmitter
	sessionTTL  time.Duration
	logger      *slog.Logger
}

// NewBrandKitService creates a new BrandKitService.
func NewBrandKitService(
	unitRepo UnitRepository,
	projectRepo ProjectRepository,
	sessions redisstate.SessionStore,
	emitter events.EventEmitter,
	sessionTTL time.Duration,
	logger *slog.Logger,
) (BrandKitService, error) {
	if unitRepo == nil {
		return nil, errors.New("unitRepo cannot be nil")
	}
	if projectRepo == nil {
		return nil, errors.New("projectRepo cannot be nil")
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

	return &brandKitServiceImpl{
		unitRepo:    unitRepo,
		projectRepo: projectRepo,
		sessions:    sessions,
		emitter:     emitter,
		sessionTTL:  sessionTTL,
		logger:      logger.With("component", "brand_kit_service"),
	}, nil
}

// CreateKit implements BrandKitService.
func (s *brandKitServiceImpl) CreateKit(ctx context.Context, userID, sourceUnitID uuid.UUID) (uuid.UUID, []promptgen.KitComponent, error) {
	source, err := s.unitRepo.GetByID(ctx, sourceUnitID)
	if err != nil {
		if errors.Is(err, store.ErrUnitNotFound) {
			return uuid.Nil, nil, ErrUnitNotFound
		}
		return uuid.Nil, nil, newOrchestrationError("create_kit", "failed to load source unit", err)
	}
	if source.Status != domain.UnitStatusCompleted || source.ResultURL == "" {
		return uuid.Nil, nil, ErrSourceNotReady
	}

	project, err := s.projectRepo.GetByID(ctx, source.ProjectID)
	if err != nil {
		if errors.Is(err, store.ErrProjectNotFound) {
			return uuid.Nil, nil, ErrProjectNotFound
		}
		return uuid.Nil, nil, newOrchestrationError("create_kit", "failed to load project", err)
	}

	components := promptgen.KitComponents()
	batchID := uuid.New()
	units := make([]*domain.GenerationUnit, 0, len(components))
	for _, component := range components {
		prompt, err := promptgen.KitPrompt(component, source.Prompt, project.Brief.CompanyName)
		if err != nil {
			return uuid.Nil, nil, newOrchestrationError("create_kit", "failed to build component prompt", err)
		}
		unit, err := domain.NewChildUnit(source, batchID, domain.UnitKindBrandKitComponent, prompt)
		if err != nil {
			return uuid.Nil, nil, newOrchestrationError("create_kit", "invalid component unit", err)
		}
		units = append(units, unit)
	}

	err = store.RunInTransaction(ctx, s.unitRepo.DB(), func(ctx context.Context, tx *sql.Tx) error {
		return s.unitRepo.WithTx(tx).CreateBatch(ctx, units)
	})
	if err != nil {
		s.logger.Error("failed to create brand kit units",
			"error", err,
			"source_unit_id", sourceUnitID,
			"batch_id", batchID)
		return uuid.Nil, nil, newOrchestrationError("create_kit", "failed to create component units", ErrSetup)
	}

	session := redisstate.Session{
		BatchID:   batchID,
		ProjectID: project.ID,
		UserID:    userID,
		Kind:      events.EventTypeBrandKit,
		UnitCount: len(units),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.sessions.Put(ctx, session, s.sessionTTL); err != nil {
		s.logger.Warn("failed to write generation session",
			"error", err,
			"batch_id", batchID)
	}

	event, err := events.NewBatchRequestEvent(events.EventTypeBrandKit, BrandKitPayload{
		BatchID:        batchID,
		SourceUnitID:   source.ID,
		SourceImageURL: source.ResultURL,
	})
	if err != nil {
		return uuid.Nil, nil, newOrchestrationError("create_kit", "failed to create event", ErrSetup)
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		s.logger.Error("failed to emit brand kit event",
			"error", err,
			"batch_id", batchID,
			"event_id", event.ID)
		return uuid.Nil, nil, newOrchestrationError("create_kit", "failed to emit event", ErrSetup)
	}

	s.logger.Info("brand kit batch started",
		"source_unit_id", sourceUnitID,
		"batch_id", batchID,
		"user_id", userID)

	return batchID, components, nil
}
