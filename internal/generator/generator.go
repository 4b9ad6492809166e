package generator

import (
	"context"
)

// Request describes one image generation job.
type Request struct {
	// Prompt is the full text prompt for the generator.
	Prompt string

	// SourceImageURL, when set, switches the job to image-to-image mode
	// (used for refinement variants that edit an existing logo).
	SourceImageURL string

	// Size is the square output dimension in pixels.
	Size int
}

// JobHandle identifies a submitted job on the remote queue.
type JobHandle struct {
	// RequestID is the queue's identifier for the job.
	RequestID string

	// StatusURL and ResponseURL are the queue's polling endpoints for this
	// job. Opaque to callers; only the client that issued the handle
	// interprets them.
	StatusURL   string
	ResponseURL string
}

// ResultKind discriminates the closed set of generation outcomes.
type ResultKind int

// The three possible outcomes of an awaited job. Consumers switch over the
// kind exhaustively; there is no fourth case.
const (
	// ResultSuccess means the job produced an artifact at ArtifactURL.
	ResultSuccess ResultKind = iota

	// ResultEmpty means the job finished but produced no artifact.
	ResultEmpty

	// ResultFailure means the job resolved to a failure; Reason carries the
	// remote error text.
	ResultFailure
)

// Result is the tagged outcome of an awaited generation job.
type Result struct {
	Kind        ResultKind
	ArtifactURL string
	Reason      string
}

// Success builds a successful result carrying the artifact URL.
func Success(artifactURL string) Result {
	return Result{Kind: ResultSuccess, ArtifactURL: artifactURL}
}

// Empty builds a result for a job that finished without an artifact.
func Empty() Result {
	return Result{Kind: ResultEmpty}
}

// Failure builds a failed result carrying the remote reason.
func Failure(reason string) Result {
	return Result{Kind: ResultFailure, Reason: reason}
}

// Client wraps a remote, queue-based generation API. Both operations can be
// slow (seconds to minutes); callers bound them with contexts.
//
// Submit is the only rate-limited operation: the batch submitter caps how
// many submissions run at once. Awaiting consumes no remote quota and runs
// unbounded.
// Version: 1.0
type Client interface {
	// Submit enqueues a generation job and returns a handle for awaiting
	// it. Implementations retry transient submission failures internally up
	// to a small fixed attempt count with exponential backoff before
	// surfacing an error.
	Submit(ctx context.Context, req Request) (JobHandle, error)

	// Await blocks until the job behind the handle resolves, the context is
	// cancelled, or the context deadline passes. A resolved job always
	// yields a Result; err is reserved for transport-level failures and
	// cancellation.
	Await(ctx context.Context, handle JobHandle) (Result, error)
}

// Downloader fetches a produced artifact's bytes so they can be copied to
// durable storage. Separated from Client so tests can fake the transfer
// without faking the queue.
type Downloader interface {
	// Download fetches the artifact at the given URL.
	Download(ctx context.Context, url string) ([]byte, error)
}
