package driving

import (
	"context"

	"github.com/custodia-labs/lexsearch/internal/core/domain"
)

// Retriever answers similarity queries over the stored chunks.
type Retriever interface {
	// Search classifies the query, applies the derived metadata filter
	// and returns the best-matching chunks. If a filtered search comes
	// back empty the query is retried once without the filter.
	Search(ctx context.Context, query string, limit int) ([]domain.RetrievedChunk, error)

	// SearchWithFilter runs a similarity search restricted by an explicit
	// caller-provided filter, with no classification and no fallback.
	// An empty filter is rejected with domain.ErrInvalidInput.
	SearchWithFilter(ctx context.Context, query string, filter domain.Filter, limit int) ([]domain.RetrievedChunk, error)
}
