// Package qdrant provides a vector store backed by the Qdrant REST API.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/custodia-labs/lexsearch/internal/core/domain"
	"github.com/custodia-labs/lexsearch/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// DefaultTimeout is the default HTTP timeout for Qdrant calls.
const DefaultTimeout = 30 * time.Second

// Config holds Qdrant connection settings.
type Config struct {
	// URL is the base URL ("http://localhost:6333").
	URL string

	// APIKey is sent in the api-key header when set.
	APIKey string

	// Collection is the collection name.
	Collection string

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration
}

// Store is a REST client for one Qdrant collection. It uses cosine
// distance and upserts with wait=true so points are searchable as soon as
// the call returns.
type Store struct {
	cfg    Config
	client *http.Client
}

// NewStore creates a Qdrant store client.
func NewStore(cfg Config) *Store {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Store{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// EnsureCollection creates the collection with cosine distance if it does
// not exist yet. Idempotent.
func (s *Store) EnsureCollection(ctx context.Context, dims int) error {
	if dims <= 0 {
		return fmt.Errorf("invalid dimension %d", dims)
	}

	status, err := s.do(ctx, http.MethodGet, s.collectionURL(""), nil, nil)
	if err != nil {
		return fmt.Errorf("check collection: %w", err)
	}
	if status == http.StatusOK {
		return nil
	}
	if status != http.StatusNotFound {
		return fmt.Errorf("check collection: unexpected status %d", status)
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     dims,
			"distance": "Cosine",
		},
	}
	status, err = s.do(ctx, http.MethodPut, s.collectionURL(""), body, nil)
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	if status >= 300 {
		return fmt.Errorf("create collection: unexpected status %d", status)
	}
	return nil
}

// Upsert writes points with wait=true so a successful return means the
// points are searchable.
func (s *Store) Upsert(ctx context.Context, points []driven.Point) error {
	if len(points) == 0 {
		return nil
	}

	wire := make([]map[string]any, len(points))
	for i, p := range points {
		wire[i] = map[string]any{
			"id":      p.ID,
			"vector":  p.Vector,
			"payload": p.Payload,
		}
	}

	status, err := s.do(ctx, http.MethodPut, s.collectionURL("/points?wait=true"), map[string]any{"points": wire}, nil)
	if err != nil {
		return fmt.Errorf("upsert points: %w", err)
	}
	if status >= 300 {
		return fmt.Errorf("upsert points: unexpected status %d", status)
	}
	return nil
}

// Search runs a filtered nearest-neighbour query.
func (s *Store) Search(
	ctx context.Context, vector []float32, filter *domain.Filter, limit int,
) ([]driven.ScoredPoint, error) {
	req := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}
	if f := filterJSON(filter); f != nil {
		req["filter"] = f
	}

	var resp struct {
		Result []struct {
			ID      any            `json:"id"`
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	status, err := s.do(ctx, http.MethodPost, s.collectionURL("/points/search"), req, &resp)
	if err != nil {
		return nil, fmt.Errorf("search points: %w", err)
	}
	if status >= 300 {
		return nil, fmt.Errorf("search points: unexpected status %d", status)
	}

	hits := make([]driven.ScoredPoint, 0, len(resp.Result))
	for _, r := range resp.Result {
		hits = append(hits, driven.ScoredPoint{
			ID:      fmt.Sprintf("%v", r.ID),
			Score:   r.Score,
			Payload: r.Payload,
		})
	}
	return hits, nil
}

// Count returns the exact point count.
func (s *Store) Count(ctx context.Context) (uint64, error) {
	var resp struct {
		Result struct {
			Count uint64 `json:"count"`
		} `json:"result"`
	}
	status, err := s.do(ctx, http.MethodPost, s.collectionURL("/points/count"), map[string]any{"exact": true}, &resp)
	if err != nil {
		return 0, fmt.Errorf("count points: %w", err)
	}
	if status >= 300 {
		return 0, fmt.Errorf("count points: unexpected status %d", status)
	}
	return resp.Result.Count, nil
}

// Close is a no-op; the underlying HTTP client needs no teardown.
func (s *Store) Close() error {
	return nil
}

func (s *Store) collectionURL(suffix string) string {
	return fmt.Sprintf("%s/collections/%s%s", s.cfg.URL, s.cfg.Collection, suffix)
}

// do sends one JSON request and optionally decodes the response body.
// It returns the HTTP status so callers can branch on 404 without
// treating it as a transport failure.
func (s *Store) do(ctx context.Context, method, url string, body, out any) (int, error) {
	var payload *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(data)
	} else {
		payload = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, payload)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.APIKey != "" {
		req.Header.Set("api-key", s.cfg.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// filterJSON translates the domain filter into Qdrant's must/match
// grammar. A nil or empty filter yields nil.
func filterJSON(filter *domain.Filter) map[string]any {
	if filter == nil || filter.IsEmpty() {
		return nil
	}
	must := make([]map[string]any, len(filter.Must))
	for i, cond := range filter.Must {
		must[i] = map[string]any{
			"key":   cond.Key,
			"match": map[string]any{"value": cond.Value},
		}
	}
	return map[string]any{"must": must}
}
