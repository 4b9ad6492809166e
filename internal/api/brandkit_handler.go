package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/logoforge-api/internal/api/shared"
	"github.com/phrazzld/logoforge-api/internal/service"
)

// BrandKitHandler handles brand kit HTTP requests.
type BrandKitHandler struct {
	kits   service.BrandKitService
	logger *slog.Logger
}

// NewBrandKitHandler creates a new BrandKitHandler.
func NewBrandKitHandler(kits service.BrandKitService, logger *slog.Logger) *BrandKitHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BrandKitHandler{
		kits:   kits,
		logger: logger.With("component", "brand_kit_handler"),
	}
}

// CreateKit handles POST /api/units/{id}/brand-kit requests. The component
// batch runs in the background; the response lists which components were
// queued.
func (h *BrandKitHandler) CreateKit(w http.ResponseWriter, r *http.Request) {
	userID, unitID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	batchID, components, err := h.kits.CreateKit(r.Context(), userID, unitID)
	if err != nil {
		h.logger.Warn("brand kit request rejected",
			"error", err,
			"user_id", userID,
			"unit_id", unitID)
		HandleAPIError(w, r, err, "Failed to start brand kit generation")
		return
	}

	names := make([]string, 0, len(components))
	for _, component := range components {
		names = append(names, string(component))
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, BrandKitResponse{
		BatchID:    batchID.String(),
		Components: names,
		Status:     "accepted",
	})
}
