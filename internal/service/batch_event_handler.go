package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phrazzld/logoforge-api/internal/batch"
	"github.com/phrazzld/logoforge-api/internal/domain"
	"github.com/phrazzld/logoforge-api/internal/events"
	"github.com/phrazzld/logoforge-api/internal/store"
)

// BatchEventHandler implements the events.EventHandler interface. It turns
// emitted batch requests into supervised registry jobs running the
// submit/reconcile pipeline, keeping the API-facing services free of
// pipeline dependencies.
type BatchEventHandler struct {
	units        store.UnitStore
	submitter    *batch.Submitter
	reconciler   *batch.Reconciler
	registry     *batch.Registry
	kitThreshold int
	logger       *slog.Logger
}

// NewBatchEventHandler creates a new BatchEventHandler.
func NewBatchEventHandler(
	units store.UnitStore,
	submitter *batch.Submitter,
	reconciler *batch.Reconciler,
	registry *batch.Registry,
	kitThreshold int,
	logger *slog.Logger,
) (*BatchEventHandler, error) {
	if units == nil {
		return nil, errors.New("unit store cannot be nil")
	}
	if submitter == nil {
		return nil, errors.New("submitter cannot be nil")
	}
	if reconciler == nil {
		return nil, errors.New("reconciler cannot be nil")
	}
	if registry == nil {
		return nil, errors.New("registry cannot be nil")
	}
	if kitThreshold <= 0 {
		return nil, errors.New("kit threshold must be positive")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &BatchEventHandler{
		units:        units,
		submitter:    submitter,
		reconciler:   reconciler,
		registry:     registry,
		kitThreshold: kitThreshold,
		logger:       logger.With("component", "batch_event_handler"),
	}, nil
}

// HandleEvent processes a batch request by registering a supervised job
// that runs the full submit/reconcile pipeline for the batch's pending
// units.
func (h *BatchEventHandler) HandleEvent(ctx context.Context, event *events.BatchRequestEvent) error {
	var batchID uuid.UUID
	var sourceImageURL string
	var policy batch.Policy

	switch event.Type {
	case events.EventTypePortfolio:
		var payload PortfolioPayload
		if err := event.UnmarshalPayload(&payload); err != nil {
			return fmt.Errorf("failed to unmarshal portfolio payload: %w", err)
		}
		batchID = payload.BatchID

	case events.EventTypeBrandKit:
		var payload BrandKitPayload
		if err := event.UnmarshalPayload(&payload); err != nil {
			return fmt.Errorf("failed to unmarshal brand kit payload: %w", err)
		}
		batchID = payload.BatchID
		sourceImageURL = payload.SourceImageURL
		policy = batch.Policy{SuccessThreshold: h.kitThreshold}

	case events.EventTypeRefinement:
		var payload RefinementPayload
		if err := event.UnmarshalPayload(&payload); err != nil {
			return fmt.Errorf("failed to unmarshal refinement payload: %w", err)
		}
		batchID = payload.BatchID
		sourceImageURL = payload.SourceImageURL

	default:
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	if batchID == uuid.Nil {
		return fmt.Errorf("event %s carries no batch ID", event.ID)
	}

	requests, err := h.pendingRequests(ctx, batchID, sourceImageURL)
	if err != nil {
		return err
	}
	if len(requests) == 0 {
		h.logger.Warn("batch has no pending units, nothing to run",
			"batch_id", batchID,
			"event_id", event.ID)
		return nil
	}

	_, err = h.registry.Start(ctx, batchID, func(jobCtx context.Context) (batch.Outcome, error) {
		submitted, err := h.submitter.SubmitAll(jobCtx, requests)
		if err != nil {
			return batch.Outcome{}, fmt.Errorf("batch %s submission interrupted: %w", batchID, err)
		}
		return h.reconciler.AwaitAndReconcile(jobCtx, batchID, submitted, policy)
	})
	if err != nil {
		return fmt.Errorf("failed to register batch job: %w", err)
	}

	h.logger.Info("batch job registered",
		"batch_id", batchID,
		"event_type", event.Type,
		"unit_count", len(requests))

	return nil
}

// pendingRequests builds submitter requests from the batch's pending
// units, preserving creation order.
func (h *BatchEventHandler) pendingRequests(ctx context.Context, batchID uuid.UUID, sourceImageURL string) ([]batch.Request, error) {
	units, err := h.units.FindByBatch(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load units for batch %s: %w", batchID, err)
	}

	requests := make([]batch.Request, 0, len(units))
	for _, unit := range units {
		if unit.Status != domain.UnitStatusPending {
			continue
		}
		requests = append(requests, batch.Request{
			UnitID:         unit.ID,
			Prompt:         unit.Prompt,
			SourceImageURL: sourceImageURL,
		})
	}
	return requests, nil
}
