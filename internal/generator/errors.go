package generator

import "errors"

// Common errors returned by generator clients
var (
	// ErrTransient is returned for temporary failures (timeouts, rate
	// limits, 5xx responses) that might resolve on retry.
	ErrTransient = errors.New("transient generator error")

	// ErrPermanent is returned for failures that will not resolve on retry
	// (invalid request, content rejected).
	ErrPermanent = errors.New("permanent generator error")

	// ErrInvalidConfig is returned when the client configuration is
	// invalid.
	ErrInvalidConfig = errors.New("invalid generator configuration")
)
