// Package services implements the driving ports: the ingestion pipeline,
// the hybrid retriever and the answer service.
package services

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/lexsearch/internal/chunker"
	"github.com/custodia-labs/lexsearch/internal/core/domain"
	"github.com/custodia-labs/lexsearch/internal/core/ports/driven"
	"github.com/custodia-labs/lexsearch/internal/core/ports/driving"
	"github.com/custodia-labs/lexsearch/internal/logger"
)

// Ensure IngestionPipeline implements the interface.
var _ driving.Ingestor = (*IngestionPipeline)(nil)

// IngestionPipeline turns uploaded ZIP archives of PDFs into embedded,
// filterable chunks in the vector store.
type IngestionPipeline struct {
	extractor driven.TextExtractor
	embedder  driven.EmbeddingService
	store     driven.VectorStore
	ingestLog driven.IngestionLog
	analyzer  *domain.Analyzer
	articles  *chunker.ArticleSplitter
	windows   *chunker.WindowSplitter
	limiter   *rate.Limiter
}

// PipelineOption configures an IngestionPipeline.
type PipelineOption func(*IngestionPipeline)

// WithIngestionLog records per-file outcomes to the given log.
func WithIngestionLog(log driven.IngestionLog) PipelineOption {
	return func(p *IngestionPipeline) {
		p.ingestLog = log
	}
}

// WithEmbedRateLimit caps embedding requests at n per second. Zero or
// negative disables the limit.
func WithEmbedRateLimit(n float64) PipelineOption {
	return func(p *IngestionPipeline) {
		if n > 0 {
			p.limiter = rate.NewLimiter(rate.Limit(n), 1)
		}
	}
}

// WithArticleSplitter replaces the default legal-document splitter.
func WithArticleSplitter(s *chunker.ArticleSplitter) PipelineOption {
	return func(p *IngestionPipeline) {
		p.articles = s
	}
}

// WithWindowSplitter replaces the default context-document splitter.
func WithWindowSplitter(s *chunker.WindowSplitter) PipelineOption {
	return func(p *IngestionPipeline) {
		p.windows = s
	}
}

// NewIngestionPipeline creates the pipeline. The analyzer supplies the
// topic vocabulary used to tag context documents by filename.
func NewIngestionPipeline(
	extractor driven.TextExtractor,
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	analyzer *domain.Analyzer,
	opts ...PipelineOption,
) *IngestionPipeline {
	p := &IngestionPipeline{
		extractor: extractor,
		embedder:  embedder,
		store:     store,
		analyzer:  analyzer,
		articles:  chunker.NewArticleSplitter(),
		windows:   chunker.NewWindowSplitter(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Ingest expands the archive, processes every PDF inside it and removes
// both the archive and the scratch directory on all exit paths. File-level
// failures are logged and skipped; only an invalid archive aborts the run.
func (p *IngestionPipeline) Ingest(
	ctx context.Context, archivePath string, kind domain.DocumentKind,
) (driving.IngestSummary, error) {
	defer os.Remove(archivePath)

	logger.Section("Ingestion")
	logger.Info("Archive: %s, kind: %s", archivePath, kind)

	// Scratch space is unique per call so concurrent ingestions never
	// share extraction paths.
	scratch, err := os.MkdirTemp("", "lexsearch-ingest-*")
	if err != nil {
		return driving.IngestSummary{}, fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	pdfPaths, err := extractPDFs(archivePath, scratch)
	if err != nil {
		return driving.IngestSummary{}, err
	}

	summary := driving.IngestSummary{
		BatchID:        uuid.New().String(),
		FilesAttempted: len(pdfPaths),
	}
	logger.Info("Batch %s: %d PDF files found", summary.BatchID, len(pdfPaths))

	for _, path := range pdfPaths {
		filename := filepath.Base(path)
		chunks, err := p.processFile(ctx, path, filename, kind)

		rec := driven.FileRecord{
			BatchID:   summary.BatchID,
			Filename:  filename,
			Status:    driven.FileIndexed,
			Chunks:    chunks,
			CreatedAt: time.Now().UTC(),
		}
		switch {
		case err != nil:
			rec.Status = driven.FileFailed
			rec.Detail = err.Error()
			logger.Warn("File %s failed: %v", filename, err)
		case chunks == 0:
			rec.Status = driven.FileSkipped
			rec.Detail = "no extractable text"
			logger.Warn("File %s skipped: no extractable text", filename)
		default:
			logger.Info("File %s indexed: %d chunks", filename, chunks)
		}

		if p.ingestLog != nil {
			if logErr := p.ingestLog.Record(ctx, rec); logErr != nil {
				logger.Warn("Ingestion log write failed: %v", logErr)
			}
		}
	}

	return summary, nil
}

// processFile extracts, chunks, embeds and stores one PDF. It returns the
// number of chunks stored; zero with a nil error means the file had no
// usable text and was skipped.
func (p *IngestionPipeline) processFile(
	ctx context.Context, path, filename string, kind domain.DocumentKind,
) (int, error) {
	text, err := p.extractor.Extract(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("extract text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return 0, nil
	}

	md, pieces := p.split(text, filename, kind)
	if len(pieces) == 0 {
		return 0, nil
	}

	texts := make([]string, len(pieces))
	for i, piece := range pieces {
		texts[i] = piece.Text
	}

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return 0, fmt.Errorf("embedding rate limit: %w", err)
		}
	}
	vectors, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(pieces) {
		return 0, fmt.Errorf("embedding count mismatch: %d texts, %d vectors", len(pieces), len(vectors))
	}

	points := make([]driven.Point, len(pieces))
	for i, piece := range pieces {
		c := domain.Chunk{
			ID:       domain.ChunkID(filename, piece.Articulo, piece.Index),
			Content:  piece.Text,
			Articulo: piece.Articulo,
			Position: piece.Index,
			Metadata: md,
		}
		points[i] = driven.Point{
			ID:      c.ID,
			Vector:  vectors[i],
			Payload: c.Payload(),
		}
	}

	if err := p.store.Upsert(ctx, points); err != nil {
		return 0, fmt.Errorf("store chunks: %w", err)
	}
	return len(points), nil
}

// split derives the document metadata and runs the kind-appropriate
// splitter.
func (p *IngestionPipeline) split(
	text, filename string, kind domain.DocumentKind,
) (domain.DocumentMetadata, []chunker.Piece) {
	if kind == domain.KindContext {
		md := domain.DocumentMetadata{
			TipoDocumento: domain.TypeContext,
			NombreArchivo: filename,
			Subtema:       p.analyzer.SubtemaForFilename(filename),
		}
		return md, p.windows.Split(text)
	}

	md := domain.ExtractMetadata(text)
	md.NombreArchivo = filename
	return md, p.articles.Split(text)
}

// extractPDFs unpacks every PDF entry of the archive into dir and returns
// their paths. Entry paths are flattened to their base name; non-PDF
// entries are ignored.
func extractPDFs(archivePath, dir string) ([]string, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArchive, err)
	}
	defer r.Close()

	var paths []string
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := filepath.Base(f.Name)
		if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
			continue
		}

		dst := filepath.Join(dir, name)
		if err := copyZipEntry(f, dst); err != nil {
			return nil, fmt.Errorf("extract %s: %w", name, err)
		}
		paths = append(paths, dst)
	}
	return paths, nil
}

func copyZipEntry(f *zip.File, dst string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
