// Package pdf extracts plain text from PDF files.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/lexsearch/internal/core/ports/driven"
	"github.com/custodia-labs/lexsearch/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor reads PDF files from disk and returns their plain text.
type Extractor struct{}

// NewExtractor creates a PDF text extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the plain text of the PDF at path. A document whose text
// layer cannot be decoded yields an empty string rather than an error, so
// scanned or malformed PDFs are skipped instead of failing a batch.
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	content, err := reader.GetPlainText()
	if err != nil {
		logger.Warn("No text layer in %s: %v", path, err)
		return "", nil
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, content); err != nil {
		logger.Warn("Reading text of %s failed: %v", path, err)
		return "", nil
	}
	return buf.String(), nil
}
