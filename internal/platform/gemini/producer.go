package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/phrazzld/logoforge-api/internal/config"
	"github.com/phrazzld/logoforge-api/internal/domain"
	"github.com/phrazzld/logoforge-api/internal/promptgen"
)

// promptListResponse is the JSON structure the model is instructed to
// return for both portfolio and variation requests.
type promptListResponse struct {
	Prompts []string `json:"prompts"`
}

// PromptProducer implements promptgen.Producer against the Gemini API.
type PromptProducer struct {
	logger *slog.Logger
	config config.LLMConfig
	client *genai.Client
	model  string
}

var _ promptgen.Producer = (*PromptProducer)(nil)

// NewPromptProducer creates a PromptProducer from LLM configuration.
func NewPromptProducer(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*PromptProducer, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create gemini client: %v", ErrInvalidConfig, err)
	}

	return &PromptProducer{
		logger: logger.With(slog.String("component", "gemini_producer")),
		config: cfg,
		client: client,
		model:  cfg.ModelName,
	}, nil
}

// PortfolioPrompts implements promptgen.Producer.PortfolioPrompts.
func (p *PromptProducer) PortfolioPrompts(ctx context.Context, brief domain.Brief) ([]string, error) {
	if brief.CompanyName == "" {
		return nil, ErrEmptyBrief
	}

	prompt := buildPortfolioMetaPrompt(brief)
	return p.callWithRetry(ctx, prompt, promptgen.PortfolioSize)
}

// VariationPrompts implements promptgen.Producer.VariationPrompts.
func (p *PromptProducer) VariationPrompts(ctx context.Context, originalPrompt, instruction string) ([]string, error) {
	if originalPrompt == "" {
		return nil, ErrEmptyPrompt
	}

	prompt := buildVariationMetaPrompt(originalPrompt, instruction)
	return p.callWithRetry(ctx, prompt, promptgen.VariationCount)
}

// callWithRetry sends the meta-prompt to the Gemini API, retrying transient
// failures with exponential backoff and jitter. Permanent failures (safety
// blocks, malformed or short responses) return immediately.
func (p *PromptProducer) callWithRetry(ctx context.Context, prompt string, expected int) ([]string, error) {
	maxRetries := p.config.MaxRetries
	if maxRetries < 0 {
		p.logger.WarnContext(ctx, "invalid max retries value, using default", slog.Int("max_retries", 3))
		maxRetries = 3
	}
	baseDelaySeconds := p.config.RetryDelaySeconds
	if baseDelaySeconds < 1 {
		baseDelaySeconds = 2
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		attemptNum := attempt + 1
		p.logger.InfoContext(ctx, "calling gemini API",
			slog.Int("attempt", attemptNum),
			slog.Int("max_attempts", maxRetries+1))

		prompts, err := p.callOnce(ctx, prompt, expected)
		if err == nil {
			p.logger.InfoContext(ctx, "gemini API call successful",
				slog.Int("attempt", attemptNum),
				slog.Int("prompt_count", len(prompts)))
			return prompts, nil
		}
		lastErr = err

		if errors.Is(err, ErrContentBlocked) || errors.Is(err, ErrInvalidResponse) {
			p.logger.WarnContext(ctx, "permanent error from gemini, not retrying",
				slog.String("error", err.Error()))
			return nil, err
		}

		p.logger.ErrorContext(ctx, "gemini API call failed",
			slog.Int("attempt", attemptNum),
			slog.String("error", err.Error()))

		if attempt >= maxRetries {
			break
		}

		// delay = baseDelay * 2^attempt * (0.5 + rand(0, 0.5))
		backoffSeconds := float64(baseDelaySeconds) * math.Pow(2, float64(attempt))
		jitterFactor := 0.5 + rng.Float64()*0.5
		delay := time.Duration(backoffSeconds * jitterFactor * float64(time.Second))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrTransientFailure, ctx.Err())
		}
	}

	return nil, fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
		ErrTransientFailure, maxRetries, lastErr)
}

// callOnce performs a single generation request and parses its JSON output.
func (p *PromptProducer) callOnce(ctx context.Context, prompt string, expected int) ([]string, error) {
	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransientFailure, err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("%w: no content generated", ErrInvalidResponse)
	}
	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return nil, ErrContentBlocked
	}

	return parsePromptList(resp.Text(), expected)
}

// parsePromptList decodes the model's JSON output and enforces the expected
// prompt count. Surplus prompts are truncated; a shortfall is a permanent
// error so the caller falls back to the deterministic catalog.
func parsePromptList(text string, expected int) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty response text", ErrInvalidResponse)
	}

	var parsed promptListResponse
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v", ErrInvalidResponse, err)
	}

	prompts := make([]string, 0, expected)
	for _, candidate := range parsed.Prompts {
		candidate = strings.TrimSpace(candidate)
		if candidate != "" {
			prompts = append(prompts, candidate)
		}
	}

	if len(prompts) < expected {
		return nil, fmt.Errorf("%w: got %d prompts, need %d", ErrInvalidResponse, len(prompts), expected)
	}
	return prompts[:expected], nil
}

// buildPortfolioMetaPrompt asks the model for a portfolio of distinct brand
// concepts across three stylistic families.
func buildPortfolioMetaPrompt(brief domain.Brief) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are the creative direction engine of a design agency. ")
	fmt.Fprintf(&b, "Create a portfolio of exactly %d distinct logo generation prompts for the following client.\n\n", promptgen.PortfolioSize)
	fmt.Fprintf(&b, "Company: %s\n", brief.CompanyName)
	if brief.Industry != "" {
		fmt.Fprintf(&b, "Industry: %s\n", brief.Industry)
	}
	if brief.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", brief.Description)
	}
	b.WriteString("\nSpread the prompts across three stylistic families: ")
	b.WriteString("photorealistic material studies, retro graphic design movements, and minimalist geometric construction. ")
	b.WriteString("Each prompt must be a complete, self-contained image generation prompt that names the company. ")
	fmt.Fprintf(&b, "Respond with JSON only: {\"prompts\": [/* exactly %d strings */]}", promptgen.PortfolioSize)
	return b.String()
}

// buildVariationMetaPrompt asks the model for refinement variations of an
// existing logo prompt.
func buildVariationMetaPrompt(originalPrompt, instruction string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are refining a logo. The original generation prompt was:\n\n%s\n\n", originalPrompt)
	if instruction != "" {
		fmt.Fprintf(&b, "The client asked for: %s\n\n", instruction)
	}
	fmt.Fprintf(&b, "Produce exactly %d variation prompts, each applying a different design principle ", promptgen.VariationCount)
	b.WriteString("(minimalism, bold contrast, organic form, technical precision, dynamic movement) ")
	b.WriteString("while preserving the original concept. ")
	fmt.Fprintf(&b, "Respond with JSON only: {\"prompts\": [/* exactly %d strings */]}", promptgen.VariationCount)
	return b.String()
}
