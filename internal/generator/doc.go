// Package generator defines the boundary to the remote image generation
// queue: submitting jobs, awaiting their tagged results, and downloading
// produced artifacts. Concrete clients live under internal/platform.
package generator
