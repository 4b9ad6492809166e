package falqueue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/phrazzld/logoforge-api/internal/config"
	"github.com/phrazzld/logoforge-api/internal/generator"
)

// How often Await polls the queue for a job's status.
const defaultPollInterval = 2 * time.Second

// Client implements generator.Client against a fal.ai-style async queue:
// a submission returns a request ID immediately, and the result is polled
// until the job resolves.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       string
	model        string
	imageSize    int
	maxRetries   int
	baseDelay    time.Duration
	pollInterval time.Duration
	logger       *slog.Logger
}

// NewClient creates a queue client from the generator configuration.
func NewClient(cfg config.GeneratorConfig, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: base URL cannot be empty", generator.ErrInvalidConfig)
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: API key cannot be empty", generator.ErrInvalidConfig)
	}

	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: model cannot be empty", generator.ErrInvalidConfig)
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		logger.Warn("invalid max retries value, using default", "max_retries", 3)
		maxRetries = 3
	}

	baseDelaySeconds := cfg.RetryDelaySeconds
	if baseDelaySeconds < 1 {
		logger.Warn("invalid retry delay value, using default", "base_delay_seconds", 2)
		baseDelaySeconds = 2
	}

	imageSize := cfg.ImageSize
	if imageSize <= 0 {
		imageSize = 1024
	}

	return &Client{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:       cfg.APIKey,
		model:        cfg.Model,
		imageSize:    imageSize,
		maxRetries:   maxRetries,
		baseDelay:    time.Duration(baseDelaySeconds) * time.Second,
		pollInterval: defaultPollInterval,
		logger:       logger.With(slog.String("component", "falqueue_client")),
	}, nil
}

var _ generator.Client = (*Client)(nil)
var _ generator.Downloader = (*Client)(nil)

// submitPayload is the queue's submission request body.
type submitPayload struct {
	Prompt              string    `json:"prompt"`
	ImageURL            string    `json:"image_url,omitempty"`
	ImageSize           imageSize `json:"image_size"`
	NumImages           int       `json:"num_images"`
	EnableSafetyChecker bool      `json:"enable_safety_checker"`
	SyncMode            bool      `json:"sync_mode"`
}

type imageSize struct {
	Height int `json:"height"`
	Width  int `json:"width"`
}

// submitResponse is the queue's submission acknowledgement.
type submitResponse struct {
	RequestID   string `json:"request_id"`
	StatusURL   string `json:"status_url"`
	ResponseURL string `json:"response_url"`
}

// statusResponse is one poll of the job's status endpoint.
type statusResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// resultResponse is the resolved job's payload.
type resultResponse struct {
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
}

// Submit implements generator.Client.Submit. Transient failures (network
// errors, 408/429, 5xx) are retried up to the configured maximum with
// exponential backoff and jitter; other HTTP errors surface immediately as
// permanent.
func (c *Client) Submit(ctx context.Context, req generator.Request) (generator.JobHandle, error) {
	if req.Prompt == "" {
		return generator.JobHandle{}, fmt.Errorf("%w: prompt cannot be empty", generator.ErrPermanent)
	}

	size := req.Size
	if size <= 0 {
		size = c.imageSize
	}

	payload := submitPayload{
		Prompt:              req.Prompt,
		ImageURL:            req.SourceImageURL,
		ImageSize:           imageSize{Height: size, Width: size},
		NumImages:           1,
		EnableSafetyChecker: true,
		SyncMode:            false,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return generator.JobHandle{}, fmt.Errorf("failed to marshal submit payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/requests", c.baseURL, c.model)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := c.backoff(ctx, attempt); err != nil {
				return generator.JobHandle{}, err
			}
		}

		handle, err := c.submitOnce(ctx, url, body)
		if err == nil {
			c.logger.InfoContext(ctx, "generation job submitted",
				slog.String("request_id", handle.RequestID),
				slog.Int("attempt", attempt+1))
			return handle, nil
		}

		lastErr = err
		if errors.Is(err, generator.ErrPermanent) {
			return generator.JobHandle{}, err
		}

		c.logger.WarnContext(ctx, "submission attempt failed",
			slog.Int("attempt", attempt+1),
			slog.Int("max_attempts", c.maxRetries+1),
			slog.String("error", err.Error()))
	}

	return generator.JobHandle{}, fmt.Errorf("submission failed after %d attempts: %w",
		c.maxRetries+1, lastErr)
}

// submitOnce performs a single submission attempt.
func (c *Client) submitOnce(ctx context.Context, url string, body []byte) (generator.JobHandle, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return generator.JobHandle{}, fmt.Errorf("%w: %v", generator.ErrPermanent, err)
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return generator.JobHandle{}, fmt.Errorf("%w: %v", generator.ErrTransient, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return generator.JobHandle{}, classifyHTTPStatus(resp.StatusCode)
	}

	var ack submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return generator.JobHandle{}, fmt.Errorf("%w: malformed submit response: %v",
			generator.ErrPermanent, err)
	}

	if ack.RequestID == "" {
		return generator.JobHandle{}, fmt.Errorf("%w: submit response missing request ID",
			generator.ErrPermanent)
	}

	if ack.StatusURL == "" {
		ack.StatusURL = fmt.Sprintf("%s/%s/requests/%s/status", c.baseURL, c.model, ack.RequestID)
	}
	if ack.ResponseURL == "" {
		ack.ResponseURL = fmt.Sprintf("%s/%s/requests/%s", c.baseURL, c.model, ack.RequestID)
	}

	return generator.JobHandle{
		RequestID:   ack.RequestID,
		StatusURL:   ack.StatusURL,
		ResponseURL: ack.ResponseURL,
	}, nil
}

// Await implements generator.Client.Await. It polls the job's status until
// the queue reports a terminal state or the context ends. Remote failures
// resolve to a Failure result, not an error; err is reserved for transport
// problems and cancellation.
func (c *Client) Await(ctx context.Context, handle generator.JobHandle) (generator.Result, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		status, err := c.pollStatus(ctx, handle)
		if err != nil {
			return generator.Result{}, err
		}

		switch strings.ToUpper(status.Status) {
		case "COMPLETED":
			return c.fetchResult(ctx, handle)
		case "ERROR", "FAILED":
			reason := status.Error
			if reason == "" {
				reason = "generation failed"
			}
			return generator.Failure(reason), nil
		}

		select {
		case <-ctx.Done():
			return generator.Result{}, fmt.Errorf("%w: %v", generator.ErrTransient, ctx.Err())
		case <-ticker.C:
		}
	}
}

// pollStatus performs one status poll.
func (c *Client) pollStatus(ctx context.Context, handle generator.JobHandle) (*statusResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, handle.StatusURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", generator.ErrPermanent, err)
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", generator.ErrTransient, ctx.Err())
		}
		return nil, fmt.Errorf("%w: %v", generator.ErrTransient, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyHTTPStatus(resp.StatusCode)
	}

	var status statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("%w: malformed status response: %v", generator.ErrPermanent, err)
	}

	return &status, nil
}

// fetchResult retrieves the resolved job's artifact list.
func (c *Client) fetchResult(ctx context.Context, handle generator.JobHandle) (generator.Result, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, handle.ResponseURL, nil)
	if err != nil {
		return generator.Result{}, fmt.Errorf("%w: %v", generator.ErrPermanent, err)
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return generator.Result{}, fmt.Errorf("%w: %v", generator.ErrTransient, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return generator.Result{}, classifyHTTPStatus(resp.StatusCode)
	}

	var result resultResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return generator.Result{}, fmt.Errorf("%w: malformed result response: %v",
			generator.ErrPermanent, err)
	}

	if len(result.Images) == 0 || result.Images[0].URL == "" {
		return generator.Empty(), nil
	}

	return generator.Success(result.Images[0].URL), nil
}

// Download implements generator.Downloader.Download.
func (c *Client) Download(ctx context.Context, url string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", generator.ErrPermanent, err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", generator.ErrTransient, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyHTTPStatus(resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading artifact body: %v", generator.ErrTransient, err)
	}

	return data, nil
}

// backoff sleeps for an exponentially growing delay with jitter, honoring
// context cancellation.
func (c *Client) backoff(ctx context.Context, attempt int) error {
	delay := float64(c.baseDelay) * math.Pow(2, float64(attempt-1))
	jitter := 1 + (rand.Float64()*0.5 - 0.25)
	wait := time.Duration(delay * jitter)

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", generator.ErrTransient, ctx.Err())
	case <-timer.C:
		return nil
	}
}

// setHeaders attaches auth and content headers to a queue request.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Key "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
}

// classifyHTTPStatus maps an HTTP error status to the transient/permanent
// taxonomy. 408 and 429 are retryable, as is any 5xx; everything else in
// the error range is permanent.
func classifyHTTPStatus(code int) error {
	if code == http.StatusRequestTimeout || code == http.StatusTooManyRequests || code >= 500 {
		return fmt.Errorf("%w: HTTP %d", generator.ErrTransient, code)
	}
	return fmt.Errorf("%w: HTTP %d", generator.ErrPermanent, code)
}
