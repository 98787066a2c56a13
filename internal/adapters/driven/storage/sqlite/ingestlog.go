package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/lexsearch/internal/core/ports/driven"
)

// Ensure IngestionLog implements the interface.
var _ driven.IngestionLog = (*IngestionLog)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS ingestion_files (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	batch_id   TEXT NOT NULL,
	filename   TEXT NOT NULL,
	status     TEXT NOT NULL,
	chunks     INTEGER NOT NULL DEFAULT 0,
	detail     TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_ingestion_files_batch ON ingestion_files(batch_id);
`

// IngestionLog records per-file ingestion outcomes in SQLite.
type IngestionLog struct {
	db *sql.DB
}

// NewIngestionLog opens (or creates) the log database at path. Parent
// directories are created as needed.
func NewIngestionLog(path string) (*IngestionLog, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	// WAL mode for concurrent readers during ingestion writes.
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &IngestionLog{db: db}, nil
}

// Record appends one file outcome.
func (l *IngestionLog) Record(ctx context.Context, rec driven.FileRecord) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := l.db.ExecContext(ctx,
		`INSERT INTO ingestion_files (batch_id, filename, status, chunks, detail, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.BatchID, rec.Filename, string(rec.Status), rec.Chunks, rec.Detail,
		createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("recording file outcome: %w", err)
	}
	return nil
}

// ListBatch returns the records of a batch in insertion order.
func (l *IngestionLog) ListBatch(ctx context.Context, batchID string) ([]driven.FileRecord, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT batch_id, filename, status, chunks, detail, created_at
		 FROM ingestion_files WHERE batch_id = ? ORDER BY id`,
		batchID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing batch: %w", err)
	}
	defer rows.Close()

	var records []driven.FileRecord
	for rows.Next() {
		var rec driven.FileRecord
		var status, createdAt string
		if err := rows.Scan(&rec.BatchID, &rec.Filename, &status, &rec.Chunks, &rec.Detail, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		rec.Status = driven.FileStatus(status)
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			rec.CreatedAt = ts
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close closes the database connection.
func (l *IngestionLog) Close() error {
	return l.db.Close()
}
