package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/phrazzld/logoforge-api/internal/config"
)

// defaultUploadTimeout bounds a single object upload.
const defaultUploadTimeout = 60 * time.Second

// BucketClient uploads artifacts to a Supabase-compatible storage bucket
// over its REST object API.
type BucketClient struct {
	endpoint   string
	bucket     string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ Uploader = (*BucketClient)(nil)

// NewBucketClient creates a BucketClient from configuration.
func NewBucketClient(cfg config.StorageConfig, logger *slog.Logger) (*BucketClient, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: endpoint is required", ErrInvalidConfig)
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: bucket is required", ErrInvalidConfig)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: API key is required", ErrInvalidConfig)
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	return &BucketClient{
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		bucket:     cfg.Bucket,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: defaultUploadTimeout},
		logger:     logger.With(slog.String("component", "storage")),
	}, nil
}

// Upload implements Uploader. The object is written with upsert semantics so
// a retried transfer of the same unit overwrites rather than conflicts.
func (c *BucketClient) Upload(ctx context.Context, objectPath string, contentType string, data []byte) (string, error) {
	if objectPath == "" {
		return "", fmt.Errorf("%w: object path cannot be empty", ErrUploadFailed)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: artifact is empty", ErrUploadFailed)
	}

	objectPath = strings.TrimLeft(objectPath, "/")
	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.endpoint, c.bucket, objectPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("%w: HTTP %d", ErrUploadFailed, resp.StatusCode)
	}

	publicURL := c.PublicURL(objectPath)
	c.logger.InfoContext(ctx, "artifact uploaded",
		slog.String("object_path", objectPath),
		slog.Int("size_bytes", len(data)))

	return publicURL, nil
}

// PublicURL derives the public address of a stored object.
func (c *BucketClient) PublicURL(objectPath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s",
		c.endpoint, c.bucket, strings.TrimLeft(objectPath, "/"))
}
