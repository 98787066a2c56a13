package driven

import (
	"context"
	"time"
)

// FileStatus is the terminal state of one file within an ingestion batch.
type FileStatus string

const (
	// FileIndexed means the file produced chunks that were stored.
	FileIndexed FileStatus = "indexed"

	// FileSkipped means the file yielded no usable text and was passed
	// over without failing the batch.
	FileSkipped FileStatus = "skipped"

	// FileFailed means extraction, embedding or storage errored for the
	// file. The batch continues with the remaining files.
	FileFailed FileStatus = "failed"
)

// FileRecord is the audit entry for one file in one ingestion batch.
type FileRecord struct {
	BatchID   string
	Filename  string
	Status    FileStatus
	Chunks    int
	Detail    string
	CreatedAt time.Time
}

// IngestionLog records the per-file outcome of ingestion batches so that
// operators can audit what a given upload actually indexed.
type IngestionLog interface {
	// Record appends one file outcome.
	Record(ctx context.Context, rec FileRecord) error

	// ListBatch returns the records of a batch in insertion order.
	ListBatch(ctx context.Context, batchID string) ([]FileRecord, error)

	// Close releases resources.
	Close() error
}
