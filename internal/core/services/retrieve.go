package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/lexsearch/internal/core/domain"
	"github.com/custodia-labs/lexsearch/internal/core/ports/driven"
	"github.com/custodia-labs/lexsearch/internal/core/ports/driving"
	"github.com/custodia-labs/lexsearch/internal/logger"
)

// Ensure HybridRetriever implements the interface.
var _ driving.Retriever = (*HybridRetriever)(nil)

// DefaultMaxResults bounds a search when the caller passes no limit.
const DefaultMaxResults = 5

// HybridRetriever serves similarity queries, narrowing them with metadata
// filters derived from the query classification and falling back to an
// unrestricted search when a filter matches nothing.
type HybridRetriever struct {
	embedder driven.EmbeddingService
	store    driven.VectorStore
	analyzer *domain.Analyzer
}

// NewHybridRetriever creates the retriever.
func NewHybridRetriever(
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	analyzer *domain.Analyzer,
) *HybridRetriever {
	return &HybridRetriever{
		embedder: embedder,
		store:    store,
		analyzer: analyzer,
	}
}

// Search classifies the query, runs a filtered similarity search and
// retries once without the filter when a non-empty filter matched nothing.
func (r *HybridRetriever) Search(
	ctx context.Context, query string, limit int,
) ([]domain.RetrievedChunk, error) {
	logger.Section("Hybrid Search")
	logger.Debug("Query: %q", query)

	if limit <= 0 {
		limit = DefaultMaxResults
	}

	if err := r.ensureNotEmpty(ctx); err != nil {
		return nil, err
	}

	classification := r.analyzer.Classify(query)
	filter := buildFilter(classification)
	logger.Debug("Intent: %s, filter conditions: %d", classification.Intent, len(filter.Must))

	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := r.search(ctx, vector, &filter, limit)
	if err != nil {
		return nil, err
	}

	// A filter that matches nothing degrades to a plain semantic search
	// over the whole collection. This fires at most once.
	if len(hits) == 0 && !filter.IsEmpty() {
		logger.Debug("Filtered search empty, retrying unrestricted")
		hits, err = r.search(ctx, vector, nil, limit)
		if err != nil {
			return nil, err
		}
	}

	logger.Debug("Results: %d", len(hits))
	return hits, nil
}

// SearchWithFilter runs a similarity search restricted by an explicit
// filter. No classification, no fallback. Filter keys named
// numero_documento are rewritten to numero_normalizado with the value
// normalised, so callers can filter by the number as written.
func (r *HybridRetriever) SearchWithFilter(
	ctx context.Context, query string, filter domain.Filter, limit int,
) ([]domain.RetrievedChunk, error) {
	logger.Section("Filtered Search")

	if filter.IsEmpty() {
		return nil, fmt.Errorf("%w: at least one filter condition is required", domain.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = DefaultMaxResults
	}

	if err := r.ensureNotEmpty(ctx); err != nil {
		return nil, err
	}

	rewritten := domain.Filter{Must: make([]domain.Condition, len(filter.Must))}
	for i, cond := range filter.Must {
		if cond.Key == domain.KeyNumeroDocumento {
			cond.Key = domain.KeyNumeroNormalizado
			cond.Value = domain.NormalizeNumber(cond.Value)
		}
		rewritten.Must[i] = cond
	}

	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	return r.search(ctx, vector, &rewritten, limit)
}

func (r *HybridRetriever) ensureNotEmpty(ctx context.Context) error {
	count, err := r.store.Count(ctx)
	if err != nil {
		return fmt.Errorf("count collection: %w", err)
	}
	if count == 0 {
		return domain.ErrEmptyCollection
	}
	return nil
}

func (r *HybridRetriever) search(
	ctx context.Context, vector []float32, filter *domain.Filter, limit int,
) ([]domain.RetrievedChunk, error) {
	points, err := r.store.Search(ctx, vector, filter, limit)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	hits := make([]domain.RetrievedChunk, 0, len(points))
	for _, pt := range points {
		text, _ := pt.Payload[domain.KeyTexto].(string)
		articulo, _ := pt.Payload[domain.KeyArticulo].(string)
		hits = append(hits, domain.RetrievedChunk{
			ID:       pt.ID,
			Score:    pt.Score,
			Text:     text,
			Metadata: domain.MetadataFromPayload(pt.Payload),
			Articulo: articulo,
		})
	}
	return hits, nil
}

// buildFilter translates a query classification into payload conditions.
func buildFilter(c domain.Classification) domain.Filter {
	var f domain.Filter
	switch c.Intent {
	case domain.IntentLegalCitation:
		if c.Number != "" {
			f = f.And(domain.KeyNumeroNormalizado, c.Number)
		}
		if c.Article != "" {
			f = f.And(domain.KeyArticulo, c.Article)
		}
	case domain.IntentContextTopic:
		f = f.And(domain.KeyTipoDocumento, domain.TypeContext)
		f = f.And(domain.KeySubtema, c.Topic)
	}
	return f
}
