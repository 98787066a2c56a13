package domain

// Condition is a single field-equality condition over chunk payload fields.
type Condition struct {
	// Key is the payload key (numero_normalizado, articulo,
	// tipo_documento, subtema).
	Key string

	// Value is the exact value to match.
	Value string
}

// Filter is a retrieval-time conjunction of equality conditions. An empty
// filter means unrestricted semantic search.
type Filter struct {
	Must []Condition
}

// IsEmpty reports whether the filter restricts nothing.
func (f Filter) IsEmpty() bool {
	return len(f.Must) == 0
}

// And appends an equality condition and returns the filter.
func (f Filter) And(key, value string) Filter {
	f.Must = append(f.Must, Condition{Key: key, Value: value})
	return f
}

// RetrievedChunk is a single retrieval hit: the chunk text with its stored
// metadata and the similarity score reported by the vector store.
type RetrievedChunk struct {
	// ID is the stored chunk identifier.
	ID string

	// Score is the cosine similarity reported by the store.
	Score float64

	// Text is the chunk content (the "texto" payload field).
	Text string

	// Metadata is the chunk's document metadata.
	Metadata DocumentMetadata

	// Articulo is the chunk-local article label.
	Articulo string
}

// Answer is a generated response with the metadata of the chunks it was
// grounded on.
type Answer struct {
	// Text is the generated answer (or a fixed degradation message).
	Text string

	// Sources lists the metadata of the retrieved chunks, in rank order.
	Sources []SourceRef
}

// SourceRef identifies one retrieved chunk in an answer's source list.
type SourceRef struct {
	TipoDocumento   string
	NumeroDocumento string
	Articulo        string
	NombreArchivo   string
}
