package search

import "errors"

// Client-visible error categories. Everything else that goes wrong upstream
// (embedding, vector index, rerank model) stays wrapped and is surfaced to
// callers as one generic failure, so provider internals never leak.
var (
	// ErrRateLimited means the client exceeded its quota. No retry by the
	// server; the pipeline short-circuits before any cache or model work.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrInvalidQuery means the query is missing or empty after
	// normalization.
	ErrInvalidQuery = errors.New("query must not be empty")

	// ErrNoMatches means the vector index returned no candidates, usually
	// because the collection has not been built yet.
	ErrNoMatches = errors.New("no matching emojis")
)
