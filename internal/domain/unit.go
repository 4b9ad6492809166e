package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// UnitStatus represents the generation state of a unit
type UnitStatus string

// Possible unit status values
const (
	UnitStatusPending    UnitStatus = "pending"
	UnitStatusGenerating UnitStatus = "generating"
	UnitStatusCompleted  UnitStatus = "completed"
	UnitStatusFailed     UnitStatus = "failed"
)

// UnitKind identifies what a generation unit produces
type UnitKind string

// Possible unit kind values
const (
	UnitKindConcept           UnitKind = "concept"
	UnitKindBrandKitComponent UnitKind = "brand_kit_component"
	UnitKindRefinementVariant UnitKind = "refinement_variant"
)

// Common validation errors for GenerationUnit
var (
	ErrEmptyUnitID        = errors.New("unit ID cannot be empty")
	ErrEmptyUnitBatchID   = errors.New("unit batch ID cannot be empty")
	ErrEmptyUnitPrompt    = errors.New("unit prompt cannot be empty")
	ErrInvalidUnitStatus  = errors.New("invalid unit status")
	ErrInvalidUnitKind    = errors.New("invalid unit kind")
	ErrTerminalTransition = errors.New("unit status is terminal and cannot change")
	ErrMissingResultURL   = errors.New("completed unit must carry a result URL")
	ErrMissingErrorReason = errors.New("failed unit must carry an error reason")
	ErrUnexpectedResult   = errors.New("result URL is only valid on completed units")
	ErrUnexpectedError    = errors.New("error reason is only valid on failed units")
)

// GenerationUnit is one trackable request/response pair inside a batch:
// a single logo concept, brand kit component, or refinement variant.
// Status transitions are monotone; once a unit reaches a terminal state
// (completed or failed) it never changes again.
type GenerationUnit struct {
	ID           uuid.UUID  `json:"id"`
	BatchID      uuid.UUID  `json:"batch_id"`
	ProjectID    uuid.UUID  `json:"project_id"`
	ParentUnitID *uuid.UUID `json:"parent_unit_id,omitempty"`
	Kind         UnitKind   `json:"kind"`
	Status       UnitStatus `json:"status"`
	Prompt       string     `json:"prompt"`
	ResultURL    string     `json:"result_url,omitempty"`
	ErrorReason  string     `json:"error_reason,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// NewGenerationUnit creates a pending unit for the given batch and prompt.
// It generates a new UUID for the unit ID and sets creation timestamps.
// Returns an error if validation fails.
func NewGenerationUnit(
	batchID, projectID uuid.UUID,
	kind UnitKind,
	prompt string,
) (*GenerationUnit, error) {
	unit := &GenerationUnit{
		ID:        uuid.New(),
		BatchID:   batchID,
		ProjectID: projectID,
		Kind:      kind,
		Status:    UnitStatusPending,
		Prompt:    prompt,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := unit.Validate(); err != nil {
		return nil, err
	}

	return unit, nil
}

// NewChildUnit creates a pending unit derived from a parent unit, used for
// refinement variants. The child carries its own batch ID so sibling
// variants reconcile together, separate from the parent's original batch.
func NewChildUnit(
	parent *GenerationUnit,
	batchID uuid.UUID,
	kind UnitKind,
	prompt string,
) (*GenerationUnit, error) {
	unit, err := NewGenerationUnit(batchID, parent.ProjectID, kind, prompt)
	if err != nil {
		return nil, err
	}

	parentID := parent.ID
	unit.ParentUnitID = &parentID
	return unit, nil
}

// Validate checks if the GenerationUnit has valid data, including the
// result/error mutual-exclusivity invariant: ResultURL is set iff the unit
// is completed, ErrorReason is set iff the unit is failed.
func (u *GenerationUnit) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUnitID
	}

	if u.BatchID == uuid.Nil {
		return ErrEmptyUnitBatchID
	}

	if u.Prompt == "" {
		return ErrEmptyUnitPrompt
	}

	if !isValidUnitKind(u.Kind) {
		return ErrInvalidUnitKind
	}

	if !isValidUnitStatus(u.Status) {
		return ErrInvalidUnitStatus
	}

	switch u.Status {
	case UnitStatusCompleted:
		if u.ResultURL == "" {
			return ErrMissingResultURL
		}
		if u.ErrorReason != "" {
			return ErrUnexpectedError
		}
	case UnitStatusFailed:
		if u.ErrorReason == "" {
			return ErrMissingErrorReason
		}
		if u.ResultURL != "" {
			return ErrUnexpectedResult
		}
	default:
		if u.ResultURL != "" {
			return ErrUnexpectedResult
		}
		if u.ErrorReason != "" {
			return ErrUnexpectedError
		}
	}

	return nil
}

// IsTerminal reports whether the unit has reached a final state.
func (u *GenerationUnit) IsTerminal() bool {
	return u.Status == UnitStatusCompleted || u.Status == UnitStatusFailed
}

// MarkGenerating transitions the unit from pending to generating.
// Returns ErrTerminalTransition if the unit is already terminal.
func (u *GenerationUnit) MarkGenerating() error {
	if u.IsTerminal() {
		return ErrTerminalTransition
	}

	u.Status = UnitStatusGenerating
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkCompleted transitions the unit to completed with the given result URL.
// Returns ErrTerminalTransition if the unit is already terminal, or
// ErrMissingResultURL if the URL is empty.
func (u *GenerationUnit) MarkCompleted(resultURL string) error {
	if u.IsTerminal() {
		return ErrTerminalTransition
	}

	if resultURL == "" {
		return ErrMissingResultURL
	}

	u.Status = UnitStatusCompleted
	u.ResultURL = resultURL
	u.ErrorReason = ""
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkFailed transitions the unit to failed with the given reason.
// Returns ErrTerminalTransition if the unit is already terminal, or
// ErrMissingErrorReason if the reason is empty.
func (u *GenerationUnit) MarkFailed(reason string) error {
	if u.IsTerminal() {
		return ErrTerminalTransition
	}

	if reason == "" {
		return ErrMissingErrorReason
	}

	u.Status = UnitStatusFailed
	u.ErrorReason = reason
	u.ResultURL = ""
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// isValidUnitStatus checks if the given status is a valid UnitStatus.
func isValidUnitStatus(status UnitStatus) bool {
	switch status {
	case UnitStatusPending, UnitStatusGenerating, UnitStatusCompleted, UnitStatusFailed:
		return true
	default:
		return false
	}
}

// isValidUnitKind checks if the given kind is a valid UnitKind.
func isValidUnitKind(kind UnitKind) bool {
	switch kind {
	case UnitKindConcept, UnitKindBrandKitComponent, UnitKindRefinementVariant:
		return true
	default:
		return false
	}
}
