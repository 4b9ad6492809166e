package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/logoforge-api/internal/api/shared"
	"github.com/phrazzld/logoforge-api/internal/service"
)

// RefinementHandler handles refinement HTTP requests.
type RefinementHandler struct {
	refinements service.RefinementService
	logger      *slog.Logger
}

// NewRefinementHandler creates a new RefinementHandler.
func NewRefinementHandler(refinements service.RefinementService, logger *slog.Logger) *RefinementHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RefinementHandler{
		refinements: refinements,
		logger:      logger.With("component", "refinement_handler"),
	}
}

// RefineUnit handles POST /api/units/{id}/refinements requests. Credits are
// reserved synchronously; the variant batch itself runs in the background.
func (h *RefinementHandler) RefineUnit(w http.ResponseWriter, r *http.Request) {
	userID, unitID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req RefineRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	batchID, err := h.refinements.RefineUnit(r.Context(), userID, unitID, req.Instruction)
	if err != nil {
		h.logger.Warn("refinement request rejected",
			"error", err,
			"user_id", userID,
			"unit_id", unitID)
		HandleAPIError(w, r, err, "Failed to start refinement")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, acceptedBatch(batchID))
}
