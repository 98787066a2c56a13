package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidArchive indicates an uploaded file is not a well-formed
	// ZIP archive. Surfaced to the caller; the batch is aborted.
	ErrInvalidArchive = errors.New("invalid archive")

	// ErrEmptyCollection indicates the vector store holds zero chunks.
	// Distinct from a valid query that matches nothing, which returns an
	// empty result set.
	ErrEmptyCollection = errors.New("collection is empty")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured or unreachable. Nothing can be ingested or retrieved
	// without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Retrieval still works; answer generation degrades to an apology.
	ErrLLMUnavailable = errors.New("LLM service unavailable")
)
