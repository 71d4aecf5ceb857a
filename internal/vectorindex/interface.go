// Package vectorindex provides nearest-neighbor lookup over pre-computed
// emoji embeddings. Two backends are supported: an external Qdrant server
// over gRPC and an embedded chromem-go snapshot for local use.
//
// The index never embeds text itself. Queries arrive as vectors from the
// embeddings provider, and the offline build upserts pre-computed points, so
// both sides are pinned to one embedding space by construction.
package vectorindex

import (
	"context"
	"errors"
)

// Sentinel errors for index operations.
var (
	// ErrInvalidConfig indicates invalid index configuration.
	ErrInvalidConfig = errors.New("invalid vector index configuration")

	// ErrCollectionNotFound is returned when the emoji collection has not
	// been built yet.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrEmptyQuery indicates an empty query vector.
	ErrEmptyQuery = errors.New("empty query vector")
)

// Match is a single nearest-neighbor hit.
type Match struct {
	// ID is the emoji glyph stored at index-build time.
	ID string

	// Score is the similarity score, higher is closer.
	Score float32
}

// Point is a pre-embedded document for the offline index build.
type Point struct {
	// ID is the emoji glyph.
	ID string

	// Content is the embedded text (glyph plus joined keywords). Stored for
	// inspection; never used at query time.
	Content string

	// Vector is the pre-computed embedding.
	Vector []float32
}

// Index is the nearest-neighbor lookup contract.
type Index interface {
	// Query returns up to topK matches for the vector, ordered by
	// descending similarity.
	Query(ctx context.Context, vector []float32, topK int) ([]Match, error)

	// Upsert writes pre-embedded points. Repeated upserts with the same IDs
	// overwrite.
	Upsert(ctx context.Context, points []Point) error

	// EnsureCollection creates the emoji collection if it does not exist.
	// vectorSize must match the embedding model's output dimension.
	EnsureCollection(ctx context.Context, vectorSize int) error

	// Close releases backend resources.
	Close() error
}
