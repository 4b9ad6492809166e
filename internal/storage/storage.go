// Package storage defines the boundary for persisting generated artifacts
// to durable object storage and deriving their public URLs.
package storage

import (
	"context"
	"errors"
)

// ErrUploadFailed indicates the artifact could not be persisted. Callers
// treat the owning unit as failed; a successful generation whose artifact
// cannot be stored is not a success.
var ErrUploadFailed = errors.New("artifact upload failed")

// ErrInvalidConfig indicates the storage client configuration is incomplete.
var ErrInvalidConfig = errors.New("invalid storage configuration")

// Uploader persists artifact bytes and returns a durable, publicly
// addressable URL for the stored object.
//
// Version: 1.0
type Uploader interface {
	// Upload writes data under the given object path and returns the public
	// URL of the stored object. Errors wrap ErrUploadFailed.
	Upload(ctx context.Context, objectPath string, contentType string, data []byte) (string, error)
}
