package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/logoforge-api/internal/api/shared"
	"github.com/phrazzld/logoforge-api/internal/batch"
	"github.com/phrazzld/logoforge-api/internal/credit"
	"github.com/phrazzld/logoforge-api/internal/service"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, service.ErrProjectNotFound),
		errors.Is(err, service.ErrUnitNotFound),
		errors.Is(err, service.ErrBatchNotFound),
		errors.Is(err, batch.ErrJobNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, service.ErrSourceNotReady),
		errors.Is(err, batch.ErrJobExists):
		return http.StatusConflict

	// Payment errors
	case errors.Is(err, credit.ErrInsufficientCredits):
		return http.StatusPaymentRequired

	// Upstream dependency errors
	case errors.Is(err, credit.ErrLedgerUnavailable):
		return http.StatusServiceUnavailable

	// Default: internal server error (includes ErrSetup)
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-facing message for the
// error. Raw error strings never reach the client.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, service.ErrProjectNotFound):
		return "Project not found"

	case errors.Is(err, service.ErrUnitNotFound):
		return "Generation unit not found"

	case errors.Is(err, service.ErrBatchNotFound), errors.Is(err, batch.ErrJobNotFound):
		return "Batch not found"

	case errors.Is(err, service.ErrSourceNotReady):
		return "Source unit has not finished generating"

	case errors.Is(err, batch.ErrJobExists):
		return "Batch is already running"

	case errors.Is(err, credit.ErrInsufficientCredits):
		return "Insufficient credits"

	case errors.Is(err, credit.ErrLedgerUnavailable):
		return "Credit service temporarily unavailable"

	case errors.Is(err, service.ErrSetup):
		return "Batch setup failed"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError maps the error to a status code and safe message and
// writes the response. fallbackMessage overrides the derived message when
// non-empty and the error is unrecognized.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallbackMessage string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if fallbackMessage != "" && status == http.StatusInternalServerError && !errors.Is(err, service.ErrSetup) {
		message = fallbackMessage
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}
