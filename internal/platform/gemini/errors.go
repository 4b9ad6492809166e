package gemini

import "errors"

var (
	// ErrInvalidConfig indicates the producer configuration is incomplete.
	ErrInvalidConfig = errors.New("invalid gemini configuration")

	// ErrEmptyBrief indicates the project brief has no company name to
	// build prompts from.
	ErrEmptyBrief = errors.New("brief has no company name")

	// ErrEmptyPrompt indicates a refinement was requested without an
	// original prompt.
	ErrEmptyPrompt = errors.New("original prompt cannot be empty")

	// ErrContentBlocked indicates the model refused the request on safety
	// grounds. Not retryable.
	ErrContentBlocked = errors.New("content blocked by safety filters")

	// ErrInvalidResponse indicates the model's output could not be parsed
	// into the expected prompt list. Not retryable.
	ErrInvalidResponse = errors.New("invalid response from gemini")

	// ErrTransientFailure indicates a retryable API failure that exhausted
	// its retries.
	ErrTransientFailure = errors.New("transient gemini failure")
)
