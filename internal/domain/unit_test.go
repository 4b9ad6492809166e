package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewGenerationUnit(t *testing.T) {
	t.Parallel()

	batchID := uuid.New()
	projectID := uuid.New()
	prompt := "minimalist fox logo, geometric, orange and charcoal"

	unit, err := NewGenerationUnit(batchID, projectID, UnitKindConcept, prompt)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if unit.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if unit.BatchID != batchID {
		t.Errorf("Expected batch ID %s, got %s", batchID, unit.BatchID)
	}

	if unit.Status != UnitStatusPending {
		t.Errorf("Expected status %s, got %s", UnitStatusPending, unit.Status)
	}

	if unit.ParentUnitID != nil {
		t.Error("Expected nil parent unit ID for a top-level unit")
	}

	if unit.CreatedAt.IsZero() || unit.UpdatedAt.IsZero() {
		t.Error("Expected non-zero timestamps")
	}

	// Empty prompt is rejected
	if _, err := NewGenerationUnit(batchID, projectID, UnitKindConcept, ""); err != ErrEmptyUnitPrompt {
		t.Errorf("Expected error %v, got %v", ErrEmptyUnitPrompt, err)
	}

	// Nil batch ID is rejected
	if _, err := NewGenerationUnit(uuid.Nil, projectID, UnitKindConcept, prompt); err != ErrEmptyUnitBatchID {
		t.Errorf("Expected error %v, got %v", ErrEmptyUnitBatchID, err)
	}

	// Bogus kind is rejected
	if _, err := NewGenerationUnit(batchID, projectID, UnitKind("poster"), prompt); err != ErrInvalidUnitKind {
		t.Errorf("Expected error %v, got %v", ErrInvalidUnitKind, err)
	}
}

func TestNewChildUnit(t *testing.T) {
	t.Parallel()

	parent, err := NewGenerationUnit(uuid.New(), uuid.New(), UnitKindConcept, "wordmark logo")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	childBatch := uuid.New()
	child, err := NewChildUnit(parent, childBatch, UnitKindRefinementVariant, "wordmark logo, bolder")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if child.ParentUnitID == nil || *child.ParentUnitID != parent.ID {
		t.Errorf("Expected parent unit ID %s, got %v", parent.ID, child.ParentUnitID)
	}

	if child.BatchID != childBatch {
		t.Errorf("Expected child batch ID %s, got %s", childBatch, child.BatchID)
	}

	if child.ProjectID != parent.ProjectID {
		t.Errorf("Expected child to inherit project ID %s, got %s", parent.ProjectID, child.ProjectID)
	}
}

func TestGenerationUnitTransitions(t *testing.T) {
	t.Parallel()

	newUnit := func(t *testing.T) *GenerationUnit {
		t.Helper()
		unit, err := NewGenerationUnit(uuid.New(), uuid.New(), UnitKindConcept, "abstract mark")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		return unit
	}

	t.Run("pending to generating to completed", func(t *testing.T) {
		t.Parallel()
		unit := newUnit(t)

		if err := unit.MarkGenerating(); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if unit.Status != UnitStatusGenerating {
			t.Errorf("Expected status %s, got %s", UnitStatusGenerating, unit.Status)
		}

		if err := unit.MarkCompleted("https://cdn.example.com/logo.png"); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if unit.Status != UnitStatusCompleted {
			t.Errorf("Expected status %s, got %s", UnitStatusCompleted, unit.Status)
		}
		if unit.ResultURL == "" || unit.ErrorReason != "" {
			t.Error("Completed unit must carry a result URL and no error reason")
		}
		if err := unit.Validate(); err != nil {
			t.Errorf("Expected completed unit to validate, got %v", err)
		}
	})

	t.Run("terminal states are final", func(t *testing.T) {
		t.Parallel()
		unit := newUnit(t)

		if err := unit.MarkFailed("generator timeout"); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		if err := unit.MarkGenerating(); err != ErrTerminalTransition {
			t.Errorf("Expected error %v, got %v", ErrTerminalTransition, err)
		}
		if err := unit.MarkCompleted("https://cdn.example.com/logo.png"); err != ErrTerminalTransition {
			t.Errorf("Expected error %v, got %v", ErrTerminalTransition, err)
		}
		if err := unit.MarkFailed("another reason"); err != ErrTerminalTransition {
			t.Errorf("Expected error %v, got %v", ErrTerminalTransition, err)
		}
	})

	t.Run("failed unit carries reason and no URL", func(t *testing.T) {
		t.Parallel()
		unit := newUnit(t)

		if err := unit.MarkFailed(""); err != ErrMissingErrorReason {
			t.Errorf("Expected error %v, got %v", ErrMissingErrorReason, err)
		}

		if err := unit.MarkFailed("no images in result"); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if unit.ResultURL != "" || unit.ErrorReason == "" {
			t.Error("Failed unit must carry an error reason and no result URL")
		}
		if err := unit.Validate(); err != nil {
			t.Errorf("Expected failed unit to validate, got %v", err)
		}
	})
}

func TestGenerationUnitValidateExclusivity(t *testing.T) {
	t.Parallel()

	base := GenerationUnit{
		ID:      uuid.New(),
		BatchID: uuid.New(),
		Kind:    UnitKindConcept,
		Prompt:  "lettermark logo",
	}

	cases := []struct {
		name    string
		mutate  func(*GenerationUnit)
		wantErr error
	}{
		{
			name: "completed without URL",
			mutate: func(u *GenerationUnit) {
				u.Status = UnitStatusCompleted
			},
			wantErr: ErrMissingResultURL,
		},
		{
			name: "completed with error reason",
			mutate: func(u *GenerationUnit) {
				u.Status = UnitStatusCompleted
				u.ResultURL = "https://cdn.example.com/a.png"
				u.ErrorReason = "leftover"
			},
			wantErr: ErrUnexpectedError,
		},
		{
			name: "failed without reason",
			mutate: func(u *GenerationUnit) {
				u.Status = UnitStatusFailed
			},
			wantErr: ErrMissingErrorReason,
		},
		{
			name: "pending with result URL",
			mutate: func(u *GenerationUnit) {
				u.Status = UnitStatusPending
				u.ResultURL = "https://cdn.example.com/a.png"
			},
			wantErr: ErrUnexpectedResult,
		},
		{
			name: "generating with error reason",
			mutate: func(u *GenerationUnit) {
				u.Status = UnitStatusGenerating
				u.ErrorReason = "early"
			},
			wantErr: ErrUnexpectedError,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			unit := base
			tc.mutate(&unit)
			if err := unit.Validate(); err != tc.wantErr {
				t.Errorf("Expected error %v, got %v", tc.wantErr, err)
			}
		})
	}
}
