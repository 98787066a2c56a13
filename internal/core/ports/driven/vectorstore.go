package driven

import (
	"context"

	"github.com/custodia-labs/lexsearch/internal/core/domain"
)

// Point is a vector plus its payload, keyed by a UUID string ID.
type Point struct {
	ID      string
	Vector  []float32
	Payload map[string]any
}

// ScoredPoint is a similarity search result.
type ScoredPoint struct {
	// ID is the matched point.
	ID string

	// Score is the cosine similarity score.
	Score float64

	// Payload is the stored payload of the matched point.
	Payload map[string]any
}

// VectorStore persists embedded chunks and serves filtered similarity
// search over them.
//
// Implementations may include:
//   - Qdrant (REST API)
//   - In-memory brute force (tests)
type VectorStore interface {
	// EnsureCollection creates the backing collection with the given
	// vector dimensionality if it does not already exist. Idempotent.
	EnsureCollection(ctx context.Context, dims int) error

	// Upsert writes points, replacing any existing point with the same ID.
	Upsert(ctx context.Context, points []Point) error

	// Search finds the limit nearest points to the query vector. A nil or
	// empty filter searches the whole collection; otherwise every
	// condition in the filter must hold on the point payload.
	Search(ctx context.Context, vector []float32, filter *domain.Filter, limit int) ([]ScoredPoint, error)

	// Count returns the exact number of stored points.
	Count(ctx context.Context) (uint64, error)

	// Close releases resources.
	Close() error
}
