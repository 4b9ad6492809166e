package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/logoforge-api/internal/api/shared"
	"github.com/phrazzld/logoforge-api/internal/domain"
	"github.com/phrazzld/logoforge-api/internal/service"
)

// ProjectHandler handles project-related HTTP requests.
type ProjectHandler struct {
	orchestrator service.OrchestratorService
	logger       *slog.Logger
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(orchestrator service.OrchestratorService, logger *slog.Logger) *ProjectHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProjectHandler{
		orchestrator: orchestrator,
		logger:       logger.With("component", "project_handler"),
	}
}

// CreateProject handles POST /api/projects requests. The project's
// 15-concept portfolio batch starts in the background, so the response is
// 202 Accepted.
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req CreateProjectRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	brief := domain.Brief{
		CompanyName:    req.CompanyName,
		Industry:       req.Industry,
		Description:    req.Description,
		InspirationURL: req.InspirationURL,
	}

	project, batchID, err := h.orchestrator.CreateProjectAndStartPortfolio(r.Context(), userID, req.Name, brief)
	if err != nil {
		h.logger.Error("failed to create project",
			"error", err,
			"user_id", userID)
		HandleAPIError(w, r, err, "Failed to create project")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, CreateProjectResponse{
		Project: projectToResponse(project),
		BatchID: batchID.String(),
		Status:  "accepted",
	})
}

// GetProject handles GET /api/projects/{id} requests.
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	_, projectID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	project, err := h.orchestrator.GetProject(r.Context(), projectID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load project")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, projectToResponse(project))
}
