package services

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexsearch/internal/adapters/driven/vectorstore/memory"
	"github.com/custodia-labs/lexsearch/internal/core/domain"
	"github.com/custodia-labs/lexsearch/internal/core/ports/driven"
)

// stubExtractor returns canned text per base filename.
type stubExtractor struct {
	texts map[string]string
	errs  map[string]error
}

func (s *stubExtractor) Extract(_ context.Context, path string) (string, error) {
	name := filepath.Base(path)
	if err := s.errs[name]; err != nil {
		return "", err
	}
	return s.texts[name], nil
}

// stubEmbedder derives a deterministic 3-dimensional vector from vowel
// counts so similar texts get similar vectors.
type stubEmbedder struct {
	err error
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	v := []float32{1, 0, 0}
	for _, r := range strings.ToLower(text) {
		switch r {
		case 'a', 'á':
			v[0]++
		case 'e', 'é':
			v[1]++
		case 'o', 'ó':
			v[2]++
		}
	}
	return v, nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := s.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (s *stubEmbedder) Dimensions() int            { return 3 }
func (s *stubEmbedder) ModelName() string          { return "stub-embed" }
func (s *stubEmbedder) Ping(context.Context) error { return nil }
func (s *stubEmbedder) Close() error               { return nil }

// memoryIngestLog collects records in memory.
type memoryIngestLog struct {
	records []driven.FileRecord
}

func (l *memoryIngestLog) Record(_ context.Context, rec driven.FileRecord) error {
	l.records = append(l.records, rec)
	return nil
}

func (l *memoryIngestLog) ListBatch(_ context.Context, batchID string) ([]driven.FileRecord, error) {
	var out []driven.FileRecord
	for _, rec := range l.records {
		if rec.BatchID == batchID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (l *memoryIngestLog) Close() error { return nil }

const leyText = "LEY N° 7.675/11\nPublicado el día 12/03/2011\n\n" +
	"Artículo 1º: Apruébase el convenio marco de cooperación celebrado entre los organismos provinciales competentes.\n\n" +
	"Artículo 2º: El presente convenio entrará en vigencia a partir de su publicación en el Boletín Oficial de la provincia."

const misionText = "La misión de la Dirección General de Rentas es administrar el sistema tributario provincial " +
	"con eficiencia y transparencia, asistiendo al contribuyente en el cumplimiento de sus obligaciones."

// buildZip writes a ZIP with the given entries to a temp path.
func buildZip(t *testing.T, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, body := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func newPipeline(t *testing.T, extractor driven.TextExtractor, store driven.VectorStore, opts ...PipelineOption) *IngestionPipeline {
	t.Helper()
	analyzer, err := domain.NewAnalyzer(domain.DefaultTopicRules())
	require.NoError(t, err)
	return NewIngestionPipeline(extractor, &stubEmbedder{}, store, analyzer, opts...)
}

func newRetriever(t *testing.T, store driven.VectorStore) *HybridRetriever {
	t.Helper()
	analyzer, err := domain.NewAnalyzer(domain.DefaultTopicRules())
	require.NoError(t, err)
	return NewHybridRetriever(&stubEmbedder{}, store, analyzer)
}

// ingestLegalFixture ingests the scenario-A law into a fresh memory store.
func ingestLegalFixture(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	ext := &stubExtractor{texts: map[string]string{"ley_7675.pdf": leyText}}
	p := newPipeline(t, ext, store)

	archive := buildZip(t, map[string]string{"ley_7675.pdf": "%PDF-fake"})
	summary, err := p.Ingest(context.Background(), archive, domain.KindLegal)
	require.NoError(t, err)
	require.Equal(t, 1, summary.FilesAttempted)
	return store
}

func TestIngestLegalDocument(t *testing.T) {
	store := ingestLegalFixture(t)
	ctx := context.Background()

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)

	hits, err := store.Search(ctx, []float32{1, 0, 0}, nil, 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	articles := map[string]bool{}
	for _, h := range hits {
		assert.Equal(t, "767511", h.Payload[domain.KeyNumeroNormalizado])
		assert.Equal(t, "Ley", h.Payload[domain.KeyTipoDocumento])
		assert.Equal(t, "ley_7675.pdf", h.Payload[domain.KeyNombreArchivo])
		articulo, _ := h.Payload[domain.KeyArticulo].(string)
		articles[articulo] = true
	}
	assert.Equal(t, map[string]bool{"1": true, "2": true}, articles)
}

func TestIngestIsIdempotent(t *testing.T) {
	store := memory.NewStore()
	ext := &stubExtractor{texts: map[string]string{"ley_7675.pdf": leyText}}
	p := newPipeline(t, ext, store)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		archive := buildZip(t, map[string]string{"ley_7675.pdf": "%PDF-fake"})
		_, err := p.Ingest(ctx, archive, domain.KindLegal)
		require.NoError(t, err)
	}

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count, "re-ingestion must overwrite, not duplicate")
}

func TestIngestContextDocument(t *testing.T) {
	store := memory.NewStore()
	ext := &stubExtractor{texts: map[string]string{"Mision_DGR.pdf": misionText}}
	p := newPipeline(t, ext, store)
	ctx := context.Background()

	archive := buildZip(t, map[string]string{"Mision_DGR.pdf": "%PDF-fake"})
	summary, err := p.Ingest(ctx, archive, domain.KindContext)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.FilesAttempted)

	hits, err := store.Search(ctx, []float32{1, 0, 0}, nil, 10)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	for _, h := range hits {
		assert.Equal(t, domain.TypeContext, h.Payload[domain.KeyTipoDocumento])
		assert.Equal(t, "DGR", h.Payload[domain.KeySubtema])
		assert.NotContains(t, h.Payload, domain.KeyNumeroDocumento)
	}
}

func TestIngestInvalidArchive(t *testing.T) {
	store := memory.NewStore()
	p := newPipeline(t, &stubExtractor{}, store)

	path := filepath.Join(t.TempDir(), "not_a_zip.zip")
	require.NoError(t, os.WriteFile(path, []byte("this is not a zip"), 0o600))

	_, err := p.Ingest(context.Background(), path, domain.KindLegal)
	require.ErrorIs(t, err, domain.ErrInvalidArchive)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "archive must be removed on all exit paths")
}

func TestIngestSkipsFailingFile(t *testing.T) {
	store := memory.NewStore()
	ext := &stubExtractor{
		texts: map[string]string{"ley_7675.pdf": leyText, "vacio.pdf": "   "},
		errs:  map[string]error{"roto.pdf": errors.New("corrupt xref table")},
	}
	log := &memoryIngestLog{}
	p := newPipeline(t, ext, store, WithIngestionLog(log))
	ctx := context.Background()

	archive := buildZip(t, map[string]string{
		"ley_7675.pdf": "%PDF-fake",
		"vacio.pdf":    "%PDF-fake",
		"roto.pdf":     "%PDF-fake",
		"notas.txt":    "ignored",
	})
	summary, err := p.Ingest(ctx, archive, domain.KindLegal)
	require.NoError(t, err, "file-level failures must not abort the batch")
	assert.Equal(t, 3, summary.FilesAttempted)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)

	byStatus := map[driven.FileStatus]int{}
	records, err := log.ListBatch(ctx, summary.BatchID)
	require.NoError(t, err)
	for _, rec := range records {
		byStatus[rec.Status]++
	}
	assert.Equal(t, 1, byStatus[driven.FileIndexed])
	assert.Equal(t, 1, byStatus[driven.FileSkipped])
	assert.Equal(t, 1, byStatus[driven.FileFailed])
}

func TestSearchByCitationFilters(t *testing.T) {
	store := ingestLegalFixture(t)
	r := newRetriever(t, store)

	hits, err := r.Search(context.Background(), "¿Qué dice el artículo 2 de la ley 7675/11?", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "2", hits[0].Articulo)
	assert.Equal(t, "767511", hits[0].Metadata.NumeroNormalizado)
	assert.Contains(t, hits[0].Text, "Artículo 2º")
}

func TestSearchFallbackOnNoFilterMatch(t *testing.T) {
	store := ingestLegalFixture(t)
	r := newRetriever(t, store)

	hits, err := r.Search(context.Background(), "artículo 99 de la ley 7675/11", 5)
	require.NoError(t, err, "fallback must not surface an error")
	assert.NotEmpty(t, hits, "fallback must return the unrestricted result set")
}

func TestSearchContextTopic(t *testing.T) {
	store := memory.NewStore()
	ext := &stubExtractor{texts: map[string]string{
		"ley_7675.pdf": leyText,
		"Mision.pdf":   misionText,
	}}
	p := newPipeline(t, ext, store)
	ctx := context.Background()

	legal := buildZip(t, map[string]string{"ley_7675.pdf": "%PDF-fake"})
	_, err := p.Ingest(ctx, legal, domain.KindLegal)
	require.NoError(t, err)

	contextual := buildZip(t, map[string]string{"Mision.pdf": "%PDF-fake"})
	_, err = p.Ingest(ctx, contextual, domain.KindContext)
	require.NoError(t, err)

	r := newRetriever(t, store)
	hits, err := r.Search(ctx, "¿cuál es la misión de la DGR?", 5)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	for _, h := range hits {
		assert.Equal(t, domain.TypeContext, h.Metadata.TipoDocumento)
		assert.Equal(t, "Mision", h.Metadata.Subtema)
	}
}

func TestSearchEmptyCollection(t *testing.T) {
	r := newRetriever(t, memory.NewStore())

	_, err := r.Search(context.Background(), "cualquier consulta", 5)
	assert.ErrorIs(t, err, domain.ErrEmptyCollection)
}

func TestSearchWithFilterRewritesDocumentNumber(t *testing.T) {
	store := ingestLegalFixture(t)
	r := newRetriever(t, store)

	f := domain.Filter{}.And(domain.KeyNumeroDocumento, "7.675/11").And(domain.KeyArticulo, "1")
	hits, err := r.SearchWithFilter(context.Background(), "convenio", f, 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "1", hits[0].Articulo)
}

func TestSearchWithFilterRejectsEmpty(t *testing.T) {
	store := ingestLegalFixture(t)
	r := newRetriever(t, store)

	_, err := r.SearchWithFilter(context.Background(), "consulta", domain.Filter{}, 5)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSearchWithFilterNoFallback(t *testing.T) {
	store := ingestLegalFixture(t)
	r := newRetriever(t, store)

	f := domain.Filter{}.And(domain.KeyArticulo, "99")
	hits, err := r.SearchWithFilter(context.Background(), "consulta", f, 5)
	require.NoError(t, err)
	assert.Empty(t, hits, "explicit filters must not fall back")
}

func TestSearchEmbedderFailurePropagates(t *testing.T) {
	store := ingestLegalFixture(t)
	analyzer, err := domain.NewAnalyzer(domain.DefaultTopicRules())
	require.NoError(t, err)
	r := NewHybridRetriever(&stubEmbedder{err: errors.New("connection refused")}, store, analyzer)

	_, err = r.Search(context.Background(), "consulta", 5)
	assert.Error(t, err)
}
