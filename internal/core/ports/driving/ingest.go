package driving

import (
	"context"

	"github.com/custodia-labs/lexsearch/internal/core/domain"
)

// IngestSummary reports what one ingestion run did.
type IngestSummary struct {
	// BatchID identifies the run in the ingestion log.
	BatchID string

	// FilesAttempted is the number of PDF files found in the archive,
	// whether or not they indexed cleanly.
	FilesAttempted int
}

// Ingestor processes an uploaded ZIP archive of PDF documents into the
// vector store.
type Ingestor interface {
	// Ingest expands the archive at archivePath, extracts, chunks and
	// embeds every PDF inside it, and stores the resulting points. The
	// kind selects the chunking strategy. Individual file failures are
	// logged and skipped; only archive-level failures return an error.
	// The archive file is removed when ingestion finishes.
	Ingest(ctx context.Context, archivePath string, kind domain.DocumentKind) (IngestSummary, error)
}
