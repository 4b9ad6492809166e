// Package batch implements the batch generation pipeline: fanning out
// generation requests to the external generator under a concurrency cap,
// awaiting each job independently, reconciling results into unit records,
// and deriving a batch verdict from a success-threshold policy.
//
// The pipeline has two phases with different concurrency characteristics.
// Submission consumes remote quota and is bounded by a weighted semaphore;
// awaiting consumes nothing remote and runs unbounded, one goroutine per
// outstanding job. Background runs are supervised through the Registry so
// callers can query, cancel, and await them.
package batch
