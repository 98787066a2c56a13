package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexsearch/internal/core/domain"
	"github.com/custodia-labs/lexsearch/internal/core/ports/driven"
	"github.com/custodia-labs/lexsearch/internal/core/ports/driving"
)

type stubIngestor struct {
	summary  driving.IngestSummary
	err      error
	lastKind domain.DocumentKind
	lastPath string
}

func (s *stubIngestor) Ingest(_ context.Context, path string, kind domain.DocumentKind) (driving.IngestSummary, error) {
	s.lastPath = path
	s.lastKind = kind
	return s.summary, s.err
}

type stubRetriever struct {
	hits       []domain.RetrievedChunk
	err        error
	lastFilter domain.Filter
}

func (s *stubRetriever) Search(_ context.Context, _ string, _ int) ([]domain.RetrievedChunk, error) {
	return s.hits, s.err
}

func (s *stubRetriever) SearchWithFilter(_ context.Context, _ string, filter domain.Filter, _ int) ([]domain.RetrievedChunk, error) {
	s.lastFilter = filter
	return s.hits, s.err
}

type stubAnswerer struct {
	answer domain.Answer
	err    error
}

func (s *stubAnswerer) Ask(_ context.Context, _ string) (domain.Answer, error) {
	return s.answer, s.err
}

type stubStore struct {
	count uint64
}

func (s *stubStore) EnsureCollection(context.Context, int) error  { return nil }
func (s *stubStore) Upsert(context.Context, []driven.Point) error { return nil }
func (s *stubStore) Count(context.Context) (uint64, error)        { return s.count, nil }
func (s *stubStore) Close() error                                 { return nil }
func (s *stubStore) Search(context.Context, []float32, *domain.Filter, int) ([]driven.ScoredPoint, error) {
	return nil, nil
}

func newTestServer(t *testing.T, ing *stubIngestor, ret *stubRetriever, ans *stubAnswerer) http.Handler {
	t.Helper()
	srv := NewServer(Config{UploadDir: t.TempDir()}, ing, ret, ans, &stubStore{count: 2})
	return srv.Handler()
}

func multipartZip(t *testing.T, filename string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte("PK\x03\x04fake"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestHandleHealth(t *testing.T) {
	h := newTestServer(t, &stubIngestor{}, &stubRetriever{}, &stubAnswerer{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandleUpload(t *testing.T) {
	ing := &stubIngestor{summary: driving.IngestSummary{BatchID: "batch-1", FilesAttempted: 3}}
	h := newTestServer(t, ing, &stubRetriever{}, &stubAnswerer{})

	body, contentType := multipartZip(t, "leyes.zip")
	req := httptest.NewRequest(http.MethodPost, "/documents/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp uploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "batch-1", resp.BatchID)
	assert.Equal(t, 3, resp.FilesAttempted)
	assert.Equal(t, uint64(2), resp.CollectionCount)
	assert.Contains(t, resp.Message, "leyes.zip")
	assert.Equal(t, domain.KindLegal, ing.lastKind)
	assert.Contains(t, ing.lastPath, "leyes.zip")
}

func TestHandleUploadContextFlag(t *testing.T) {
	ing := &stubIngestor{summary: driving.IngestSummary{BatchID: "batch-2", FilesAttempted: 1}}
	h := newTestServer(t, ing, &stubRetriever{}, &stubAnswerer{})

	body, contentType := multipartZip(t, "contexto.zip")
	req := httptest.NewRequest(http.MethodPost, "/documents/upload?context=true", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.KindContext, ing.lastKind)
}

func TestHandleUploadInvalidArchive(t *testing.T) {
	ing := &stubIngestor{err: domain.ErrInvalidArchive}
	h := newTestServer(t, ing, &stubRetriever{}, &stubAnswerer{})

	body, contentType := multipartZip(t, "roto.zip")
	req := httptest.NewRequest(http.MethodPost, "/documents/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleUploadMissingFile(t *testing.T) {
	h := newTestServer(t, &stubIngestor{}, &stubRetriever{}, &stubAnswerer{})

	req := httptest.NewRequest(http.MethodPost, "/documents/upload", strings.NewReader("no multipart"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSearch(t *testing.T) {
	ret := &stubRetriever{hits: []domain.RetrievedChunk{{
		Score:    0.87,
		Text:     "Artículo 2º: El presente convenio entrará en vigencia.",
		Articulo: "2",
		Metadata: domain.DocumentMetadata{
			TipoDocumento:     "Ley",
			NumeroDocumento:   "7.675/11",
			NumeroNormalizado: "767511",
			NombreArchivo:     "ley_7675.pdf",
		},
	}}}
	h := newTestServer(t, &stubIngestor{}, ret, &stubAnswerer{})

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"question":"¿Qué dice el artículo 2?"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp searchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "767511", resp.Results[0].NumeroNormalizado)
	assert.Equal(t, "2", resp.Results[0].Articulo)
}

func TestHandleSearchEmptyCollection(t *testing.T) {
	ret := &stubRetriever{err: domain.ErrEmptyCollection}
	h := newTestServer(t, &stubIngestor{}, ret, &stubAnswerer{})

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"question":"consulta"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleSearchMissingQuestion(t *testing.T) {
	h := newTestServer(t, &stubIngestor{}, &stubRetriever{}, &stubAnswerer{})

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleFilteredSearch(t *testing.T) {
	ret := &stubRetriever{hits: []domain.RetrievedChunk{{Text: "Artículo 1º", Articulo: "1"}}}
	h := newTestServer(t, &stubIngestor{}, ret, &stubAnswerer{})

	body := `{"question":"convenio","filters":{"numero_documento":"7.675/11","articulo":"1"}}`
	req := httptest.NewRequest(http.MethodPost, "/chat/filter", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, ret.lastFilter.Must, 2)
	keys := map[string]string{}
	for _, c := range ret.lastFilter.Must {
		keys[c.Key] = c.Value
	}
	assert.Equal(t, "7.675/11", keys[domain.KeyNumeroDocumento])
	assert.Equal(t, "1", keys[domain.KeyArticulo])
}

func TestHandleFilteredSearchEmptyFilter(t *testing.T) {
	ret := &stubRetriever{err: domain.ErrInvalidInput}
	h := newTestServer(t, &stubIngestor{}, ret, &stubAnswerer{})

	req := httptest.NewRequest(http.MethodPost, "/chat/filter", strings.NewReader(`{"question":"consulta"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAsk(t *testing.T) {
	ans := &stubAnswerer{answer: domain.Answer{
		Text: "El convenio entra en vigencia con su publicación.",
		Sources: []domain.SourceRef{{
			TipoDocumento:   "Ley",
			NumeroDocumento: "7.675/11",
			Articulo:        "2",
			NombreArchivo:   "ley_7675.pdf",
		}},
	}}
	h := newTestServer(t, &stubIngestor{}, &stubRetriever{}, ans)

	req := httptest.NewRequest(http.MethodPost, "/chat/ask", strings.NewReader(`{"question":"¿Cuándo entra en vigencia?"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp askResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "El convenio entra en vigencia con su publicación.", resp.Answer)
	require.Len(t, resp.Sources, 1)
	assert.Equal(t, "ley_7675.pdf", resp.Sources[0].NombreArchivo)
}
