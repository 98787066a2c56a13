// Package memory provides an in-memory vector store using brute-force
// cosine similarity. Intended for tests and small local deployments.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/lexsearch/internal/core/domain"
	"github.com/custodia-labs/lexsearch/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store is an in-memory vector store. Safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	dims  int
	order []string
	byID  map[string]driven.Point
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{byID: make(map[string]driven.Point)}
}

// EnsureCollection fixes the vector dimensionality. Idempotent for the
// same dimensionality; a different one is rejected once points exist.
func (s *Store) EnsureCollection(_ context.Context, dims int) error {
	if dims <= 0 {
		return fmt.Errorf("invalid dimension %d", dims)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dims != 0 && s.dims != dims && len(s.byID) > 0 {
		return fmt.Errorf("collection already has dimension %d", s.dims)
	}
	s.dims = dims
	return nil
}

// Upsert stores points, overwriting any existing point with the same ID.
// Insertion order is preserved for first-seen IDs so ties keep a stable
// store-native order.
func (s *Store) Upsert(_ context.Context, points []driven.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range points {
		if s.dims != 0 && len(p.Vector) != s.dims {
			return fmt.Errorf("vector dimension mismatch: got %d, want %d", len(p.Vector), s.dims)
		}
		if _, exists := s.byID[p.ID]; !exists {
			s.order = append(s.order, p.ID)
		}
		s.byID[p.ID] = p
	}
	return nil
}

// Search scores every stored point against the query vector with cosine
// similarity, applies the filter and returns the top limit hits.
func (s *Store) Search(
	_ context.Context, vector []float32, filter *domain.Filter, limit int,
) ([]driven.ScoredPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 5
	}

	scored := make([]driven.ScoredPoint, 0, len(s.order))
	for _, id := range s.order {
		p := s.byID[id]
		if !matches(p.Payload, filter) {
			continue
		}
		scored = append(scored, driven.ScoredPoint{
			ID:      p.ID,
			Score:   cosine(vector, p.Vector),
			Payload: p.Payload,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

// Count returns the number of stored points.
func (s *Store) Count(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.byID)), nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

func matches(payload map[string]any, filter *domain.Filter) bool {
	if filter == nil || filter.IsEmpty() {
		return true
	}
	for _, cond := range filter.Must {
		v, ok := payload[cond.Key]
		if !ok {
			return false
		}
		str, ok := v.(string)
		if !ok || str != cond.Value {
			return false
		}
	}
	return true
}

func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
