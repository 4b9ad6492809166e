package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Project
var (
	ErrEmptyProjectID      = errors.New("project ID cannot be empty")
	ErrEmptyProjectUserID  = errors.New("project user ID cannot be empty")
	ErrEmptyCompanyName    = errors.New("project company name cannot be empty")
	ErrEmptyProjectBriefIn = errors.New("project industry cannot be empty")
)

// Brief holds the creative brief a user submits when opening a project.
// The prompt producer turns it into concrete generation prompts.
type Brief struct {
	CompanyName    string `json:"company_name"`
	Industry       string `json:"industry"`
	Description    string `json:"description,omitempty"`
	InspirationURL string `json:"inspiration_url,omitempty"`
}

// Project groups the generation units created for one creative brief.
type Project struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Brief     Brief     `json:"brief"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewProject creates a new Project owned by the given user.
// Returns an error if validation fails.
func NewProject(userID uuid.UUID, name string, brief Brief) (*Project, error) {
	project := &Project{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		Brief:     brief,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := project.Validate(); err != nil {
		return nil, err
	}

	return project, nil
}

// Validate checks if the Project has valid data.
func (p *Project) Validate() error {
	if p.ID == uuid.Nil {
		return ErrEmptyProjectID
	}

	if p.UserID == uuid.Nil {
		return ErrEmptyProjectUserID
	}

	if p.Brief.CompanyName == "" {
		return ErrEmptyCompanyName
	}

	if p.Brief.Industry == "" {
		return ErrEmptyProjectBriefIn
	}

	return nil
}
