package service

import (
	"context"
	"log/slog"

	"github.com/phrazzld/logoforge-api/internal/domain"
	"github.com/phrazzld/logoforge-api/internal/promptgen"
)

// portfolioPrompts asks the configured producer for concept prompts and
// falls back to the deterministic catalog on any failure. Prompt
// production never blocks a flow.
func portfolioPrompts(ctx context.Context, producer promptgen.Producer, fallback promptgen.Producer, brief domain.Brief, logger *slog.Logger) []string {
	if producer != nil {
		prompts, err := producer.PortfolioPrompts(ctx, brief)
		if err == nil {
			return prompts
		}
		logger.WarnContext(ctx, "prompt producer failed, using fallback catalog",
			slog.String("error", err.Error()))
	}

	prompts, err := fallback.PortfolioPrompts(ctx, brief)
	if err != nil {
		// The deterministic catalog cannot fail; guard anyway.
		logger.ErrorContext(ctx, "fallback prompt catalog failed",
			slog.String("error", err.Error()))
		return nil
	}
	return prompts
}

// variationPrompts mirrors portfolioPrompts for the refinement flow.
func variationPrompts(ctx context.Context, producer promptgen.Producer, fallback promptgen.Producer, originalPrompt, instruction string, logger *slog.Logger) []string {
	if producer != nil {
		prompts, err := producer.VariationPrompts(ctx, originalPrompt, instruction)
		if err == nil {
			return prompts
		}
		logger.WarnContext(ctx, "prompt producer failed, using fallback catalog",
			slog.String("error", err.Error()))
	}

	prompts, err := fallback.VariationPrompts(ctx, originalPrompt, instruction)
	if err != nil {
		logger.ErrorContext(ctx, "fallback prompt catalog failed",
			slog.String("error", err.Error()))
		return nil
	}
	return prompts
}
