// Package service provides application-level services for the generation
// flows: portfolio orchestration, brand kit assembly, refinement, and
// progress reporting.
//
// Services own the request-scoped half of each flow (validation, credit
// reservation, unit creation, session writes) and hand the long-running
// half to the batch registry through emitted events. Error handling
// follows a standard approach:
//  1. Service methods return sentinel errors for expected error conditions
//  2. Unexpected errors are wrapped in OrchestrationError
//  3. Callers use errors.Is/errors.As to check for specific conditions
//  4. The API layer maps service errors to appropriate HTTP status codes
package service
