// Package gemini implements the promptgen.Producer interface using Google's
// Gemini API. It asks the model for structured JSON prompt lists and applies
// exponential backoff with jitter for transient API failures. Permanent
// failures (safety blocks, malformed responses) surface immediately so the
// caller can fall back to the deterministic catalog.
package gemini
