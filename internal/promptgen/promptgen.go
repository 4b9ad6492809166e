// Package promptgen defines the boundary for producing generation prompts
// from a project brief, plus the deterministic fallback catalog used when
// the LLM-backed producer is unavailable or fails.
package promptgen

import (
	"context"

	"github.com/phrazzld/logoforge-api/internal/domain"
)

const (
	// PortfolioSize is the number of concept prompts produced per project.
	PortfolioSize = 15

	// VariationCount is the number of variation prompts produced per
	// refinement. Always five, regardless of user input.
	VariationCount = 5
)

// Producer turns briefs and refinement instructions into generation
// prompts. Implementations may call out to an LLM; callers must tolerate
// failure and fall back to the deterministic catalog.
//
// Version: 1.0
type Producer interface {
	// PortfolioPrompts returns exactly PortfolioSize concept prompts for
	// the brief.
	PortfolioPrompts(ctx context.Context, brief domain.Brief) ([]string, error)

	// VariationPrompts returns exactly VariationCount refinement prompts
	// derived from the original prompt and the user's instruction.
	// Instruction may be empty.
	VariationPrompts(ctx context.Context, originalPrompt, instruction string) ([]string, error)
}
