package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/logoforge-api/internal/api/shared"
	"github.com/phrazzld/logoforge-api/internal/service"
)

// ProgressHandler handles batch progress HTTP requests.
type ProgressHandler struct {
	progress service.ProgressService
	logger   *slog.Logger
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(progress service.ProgressService, logger *slog.Logger) *ProgressHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgressHandler{
		progress: progress,
		logger:   logger.With("component", "progress_handler"),
	}
}

// GetProgress handles GET /api/batches/{id}/progress requests. The snapshot
// is computed fresh from unit rows on every call.
func (h *ProgressHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	_, batchID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	progress, err := h.progress.GetProgress(r.Context(), batchID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load batch progress")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, progress)
}
