package model

import "errors"

// Error taxonomy of the catalog core. Per-source errors (ErrRateLimited,
// ErrSourceUnavailable) stay inside the aggregator; ErrStoreFailure is the
// only fatal read-path error.
var (
	// ErrRateLimited means the per-source request budget is exhausted.
	// The call fails fast without reaching the upstream.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrSourceUnavailable means retries against one upstream are exhausted;
	// the source contributes zero results to the search.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrStoreFailure means the durable store is unreachable on a read path
	// with no adapter-fresh fallback.
	ErrStoreFailure = errors.New("job store failure")

	// ErrEmbeddingUnavailable means the embedding provider is down;
	// recommendations degrade to keyword-only ranking.
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")

	// ErrValidation rejects a malformed query before any adapter call.
	ErrValidation = errors.New("invalid query")

	// ErrNotFound is returned by store lookups for unknown jobs.
	ErrNotFound = errors.New("not found")
)
