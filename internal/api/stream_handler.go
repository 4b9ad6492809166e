package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/logoforge-api/internal/api/shared"
	"github.com/phrazzld/logoforge-api/internal/batch"
	"github.com/phrazzld/logoforge-api/internal/domain"
	"github.com/phrazzld/logoforge-api/internal/service"
)

// Stream event types, one per NDJSON line.
const (
	StreamEventConnection  = "connection"
	StreamEventProgress    = "progress"
	StreamEventAssetUpdate = "asset_update"
	StreamEventHeartbeat   = "heartbeat"
	StreamEventError       = "error"
	StreamEventComplete    = "complete"
	StreamEventTimeout     = "timeout"
)

// StreamEvent is the envelope for every NDJSON line.
type StreamEvent struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// AssetUpdate is the data payload of an asset_update event, emitted once
// per unit status change.
type AssetUpdate struct {
	UnitID      string `json:"unit_id"`
	Kind        string `json:"kind"`
	Status      string `json:"status"`
	ResultURL   string `json:"result_url,omitempty"`
	ErrorReason string `json:"error_reason,omitempty"`
}

// StreamHandler streams live batch progress as NDJSON. Each poll reads a
// fresh snapshot; unchanged snapshots produce no output beyond heartbeats.
type StreamHandler struct {
	progress          service.ProgressService
	pollInterval      time.Duration
	heartbeatInterval time.Duration
	maxDuration       time.Duration
	logger            *slog.Logger
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(
	progress service.ProgressService,
	pollInterval time.Duration,
	heartbeatInterval time.Duration,
	maxDuration time.Duration,
	logger *slog.Logger,
) (*StreamHandler, error) {
	if progress == nil {
		return nil, errors.New("progress service cannot be nil")
	}
	if pollInterval <= 0 {
		return nil, errors.New("poll interval must be positive")
	}
	if heartbeatInterval <= 0 {
		return nil, errors.New("heartbeat interval must be positive")
	}
	if maxDuration <= 0 {
		return nil, errors.New("max stream duration must be positive")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &StreamHandler{
		progress:          progress,
		pollInterval:      pollInterval,
		heartbeatInterval: heartbeatInterval,
		maxDuration:       maxDuration,
		logger:            logger.With("component", "stream_handler"),
	}, nil
}

// progressKey is the dedup key for progress events. Two consecutive
// snapshots with the same key produce one event.
type progressKey struct {
	status    batch.Verdict
	completed int
	total     int
}

// Stream handles GET /api/batches/{id}/stream requests.
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	_, batchID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	// Resolve the batch before committing to a stream so a missing batch
	// still gets a regular 404.
	snapshot, err := h.progress.GetProgress(r.Context(), batchID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load batch progress")
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	s := &streamSession{
		handler:    h,
		batchID:    batchID,
		w:          w,
		flusher:    flusher,
		encoder:    json.NewEncoder(w),
		unitStates: make(map[uuid.UUID]domain.UnitStatus),
		lastWrite:  time.Now(),
	}
	s.run(r, snapshot)
}

// streamSession carries the per-connection dedup state.
type streamSession struct {
	handler    *StreamHandler
	batchID    uuid.UUID
	w          http.ResponseWriter
	flusher    http.Flusher
	encoder    *json.Encoder
	lastKey    progressKey
	hasLastKey bool
	unitStates map[uuid.UUID]domain.UnitStatus
	lastWrite  time.Time
}

func (s *streamSession) run(r *http.Request, initial *service.Progress) {
	ctx := r.Context()
	h := s.handler

	s.emit(StreamEventConnection, map[string]string{"batch_id": s.batchID.String()})
	if done := s.emitSnapshot(initial); done {
		return
	}

	poll := time.NewTicker(h.pollInterval)
	defer poll.Stop()
	deadline := time.NewTimer(h.maxDuration)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.Debug("stream client disconnected", "batch_id", s.batchID)
			return

		case <-deadline.C:
			s.emit(StreamEventTimeout, map[string]string{
				"reason": "stream exceeded maximum duration",
			})
			return

		case <-poll.C:
			snapshot, err := h.progress.GetProgress(ctx, s.batchID)
			if err != nil {
				h.logger.Error("failed to poll batch progress",
					"error", err,
					"batch_id", s.batchID)
				s.emit(StreamEventError, map[string]string{
					"message": GetSafeErrorMessage(err),
				})
				return
			}
			if done := s.emitSnapshot(snapshot); done {
				return
			}
			if time.Since(s.lastWrite) >= h.heartbeatInterval {
				s.emit(StreamEventHeartbeat, nil)
			}
		}
	}
}

// emitSnapshot writes the asset updates and deduped progress event for one
// snapshot. Returns true when the batch is terminal and a complete event
// has been written.
func (s *streamSession) emitSnapshot(snapshot *service.Progress) bool {
	for _, unit := range snapshot.Units {
		if s.unitStates[unit.UnitID] == unit.Status {
			continue
		}
		s.unitStates[unit.UnitID] = unit.Status
		s.emit(StreamEventAssetUpdate, AssetUpdate{
			UnitID:      unit.UnitID.String(),
			Kind:        string(unit.Kind),
			Status:      string(unit.Status),
			ResultURL:   unit.ResultURL,
			ErrorReason: unit.ErrorReason,
		})
	}

	key := progressKey{
		status:    snapshot.Status,
		completed: snapshot.Completed,
		total:     snapshot.Total,
	}
	if !s.hasLastKey || key != s.lastKey {
		s.lastKey = key
		s.hasLastKey = true
		s.emit(StreamEventProgress, snapshot)
	}

	if snapshot.Status != batch.VerdictInProgress {
		s.emit(StreamEventComplete, snapshot)
		return true
	}
	return false
}

// emit writes one NDJSON line and flushes it.
func (s *streamSession) emit(eventType string, data interface{}) {
	event := StreamEvent{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
	if err := s.encoder.Encode(event); err != nil {
		s.handler.logger.Debug("failed to write stream event",
			"error", err,
			"event_type", eventType,
			"batch_id", s.batchID)
		return
	}
	s.flusher.Flush()
	s.lastWrite = time.Now()
}
