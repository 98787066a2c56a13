// Package domain holds the core entities of the legal-document retrieval
// pipeline: documents, chunks, metadata, retrieval filters and the query
// classifier. It has no dependencies on adapters or infrastructure.
package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// DocumentKind selects the processing strategy for an uploaded document.
type DocumentKind string

const (
	// KindLegal marks laws, decrees and resolutions. Legal documents are
	// chunked at article boundaries.
	KindLegal DocumentKind = "legal"

	// KindContext marks informational documents (organisational,
	// procedural). Context documents are chunked by size with overlap.
	KindContext DocumentKind = "context"
)

// Sentinel metadata values used when a field cannot be extracted.
const (
	TypeUnknown = "Desconocido"
	TypeContext = "Contexto"
	NoNumber    = "S/N"
	NoDate      = "S/F"
	NoIssuer    = "No especificado"
)

// Payload keys form the wire contract with the vector store. Any storage
// backend must round-trip these exact keys.
const (
	KeyTipoDocumento     = "tipo_documento"
	KeyNumeroDocumento   = "numero_documento"
	KeyNumeroNormalizado = "numero_normalizado"
	KeyFechaPublicacion  = "fecha_publicacion"
	KeyOrganismoEmisor   = "organismo_emisor"
	KeyNombreArchivo     = "nombre_archivo"
	KeyArticulo          = "articulo"
	KeySubtema           = "subtema"
	KeyTexto             = "texto"
)

// DocumentMetadata describes a single uploaded document. It is extracted
// once per document and copied onto every chunk derived from it.
type DocumentMetadata struct {
	// TipoDocumento is Ley, Decreto, Resolucion, Contexto or Desconocido.
	TipoDocumento string

	// NumeroDocumento is the document number as written in the text,
	// separators included ("7.675/11"). NoNumber when absent.
	NumeroDocumento string

	// NumeroNormalizado is NumeroDocumento with separators stripped
	// ("767511"). Empty when no number was found.
	NumeroNormalizado string

	// FechaPublicacion is the publication date as written. NoDate when
	// absent.
	FechaPublicacion string

	// OrganismoEmisor is the issuing body. NoIssuer when absent.
	OrganismoEmisor string

	// NombreArchivo is the source filename within the ingestion batch.
	NombreArchivo string

	// Subtema is the topic tag for context documents. Empty otherwise.
	Subtema string
}

// Chunk is the unit of retrievable text. Chunks are immutable once stored;
// re-ingesting a file replaces them wholesale via deterministic IDs.
type Chunk struct {
	// ID is derived from (filename, article label, split position) so that
	// re-ingestion of an unchanged file upserts over the same points.
	ID string

	// Content is the chunk text.
	Content string

	// Articulo is the article number ("2") or a synthetic label
	// ("parrafo_3") when the chunk has no article marker.
	Articulo string

	// Position is the chunk's position in the original split sequence.
	Position int

	// Metadata is a copy of the parent document's metadata.
	Metadata DocumentMetadata
}

// ChunkID derives a deterministic chunk identifier from the source filename,
// the article label and the chunk's position in the split sequence. The
// uuid-v5 form satisfies vector store backends that require UUID point IDs,
// and identical inputs always produce identical IDs.
func ChunkID(filename, label string, position int) string {
	key := fmt.Sprintf("%s_%s_%d", filename, label, position)
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte(key)).String()
}

// Payload builds the storage payload for the chunk. Optional fields are
// omitted when empty; legal-only fields are omitted on context chunks.
func (c *Chunk) Payload() map[string]any {
	p := map[string]any{
		KeyTipoDocumento: c.Metadata.TipoDocumento,
		KeyNombreArchivo: c.Metadata.NombreArchivo,
		KeyArticulo:      c.Articulo,
		KeyTexto:         c.Content,
	}
	if c.Metadata.TipoDocumento != TypeContext {
		p[KeyNumeroDocumento] = c.Metadata.NumeroDocumento
		p[KeyFechaPublicacion] = c.Metadata.FechaPublicacion
		p[KeyOrganismoEmisor] = c.Metadata.OrganismoEmisor
	}
	if c.Metadata.NumeroNormalizado != "" {
		p[KeyNumeroNormalizado] = c.Metadata.NumeroNormalizado
	}
	if c.Metadata.Subtema != "" {
		p[KeySubtema] = c.Metadata.Subtema
	}
	return p
}

// MetadataFromPayload reconstructs document metadata from a stored payload.
// Unknown or missing keys yield zero values.
func MetadataFromPayload(payload map[string]any) DocumentMetadata {
	return DocumentMetadata{
		TipoDocumento:     payloadString(payload, KeyTipoDocumento),
		NumeroDocumento:   payloadString(payload, KeyNumeroDocumento),
		NumeroNormalizado: payloadString(payload, KeyNumeroNormalizado),
		FechaPublicacion:  payloadString(payload, KeyFechaPublicacion),
		OrganismoEmisor:   payloadString(payload, KeyOrganismoEmisor),
		NombreArchivo:     payloadString(payload, KeyNombreArchivo),
		Subtema:           payloadString(payload, KeySubtema),
	}
}

func payloadString(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}
