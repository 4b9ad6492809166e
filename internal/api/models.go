package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/logoforge-api/internal/domain"
)

// Common request/response structures

// CreateProjectRequest defines the payload for the project creation
// endpoint. Creating a project immediately starts its concept portfolio.
type CreateProjectRequest struct {
	Name           string `json:"name"            validate:"required,min=1,max=200"`
	CompanyName    string `json:"company_name"    validate:"required,min=1,max=200"`
	Industry       string `json:"industry"        validate:"required,min=1,max=200"`
	Description    string `json:"description"     validate:"max=2000"`
	InspirationURL string `json:"inspiration_url" validate:"omitempty,url"`
}

// ProjectResponse represents a project in API responses.
type ProjectResponse struct {
	ID        string       `json:"id"`
	UserID    string       `json:"user_id"`
	Name      string       `json:"name"`
	Brief     domain.Brief `json:"brief"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// BatchAcceptedResponse is returned when a generation batch has been
// registered; the batch runs in the background and the client follows it
// through the progress or stream endpoints.
type BatchAcceptedResponse struct {
	BatchID string `json:"batch_id"`
	Status  string `json:"status"`
}

// CreateProjectResponse pairs the created project with its portfolio batch.
type CreateProjectResponse struct {
	Project ProjectResponse `json:"project"`
	BatchID string          `json:"batch_id"`
	Status  string          `json:"status"`
}

// RefineRequest defines the payload for the unit refinement endpoint.
type RefineRequest struct {
	Instruction string `json:"instruction" validate:"max=1000"`
}

// BrandKitResponse is returned when a brand kit batch has been registered.
type BrandKitResponse struct {
	BatchID    string   `json:"batch_id"`
	Components []string `json:"components"`
	Status     string   `json:"status"`
}

// projectToResponse converts a domain.Project to its API representation.
func projectToResponse(project *domain.Project) ProjectResponse {
	return ProjectResponse{
		ID:        project.ID.String(),
		UserID:    project.UserID.String(),
		Name:      project.Name,
		Brief:     project.Brief,
		CreatedAt: project.CreatedAt,
		UpdatedAt: project.UpdatedAt,
	}
}

// acceptedBatch builds the standard accepted-batch body.
func acceptedBatch(batchID uuid.UUID) BatchAcceptedResponse {
	return BatchAcceptedResponse{
		BatchID: batchID.String(),
		Status:  "accepted",
	}
}
