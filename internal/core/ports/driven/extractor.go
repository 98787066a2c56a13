// Package driven defines the secondary ports: interfaces the core services
// depend on, implemented by infrastructure adapters.
package driven

import "context"

// TextExtractor pulls plain text out of a document file on disk.
type TextExtractor interface {
	// Extract returns the full plain text of the file at path. An
	// unreadable or empty document yields an empty string, not an error;
	// errors are reserved for I/O failures.
	Extract(ctx context.Context, path string) (string, error)
}
