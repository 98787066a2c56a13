package domain

import (
	"regexp"
	"strings"
)

// Patterns for metadata extraction from the raw document text.
var (
	// Document type and number: "LEY", "DECRETO" or "RESOLUCION" followed
	// by anything up to a number token of at least 4 characters drawn from
	// digits and the separators '.', '-', '/'.
	docHeaderPattern = regexp.MustCompile(`(?i)(LEY|DECRETO|RESOLUCION)\s*.*?\s*([\d.\-/]{4,})`)

	// Publication date: the remainder of the line after "Publicado el día".
	pubDatePattern = regexp.MustCompile(`(?i)Publicado el día\s*(.*)`)

	// Issuing body: "Ministerio de" followed by word characters and
	// spaces, bounded to the line it appears on.
	issuerPattern = regexp.MustCompile(`(?i)Ministerio de ([\p{L}\d_ \t]+)`)
)

// ExtractMetadata derives document metadata from raw legal text. Absence of
// a pattern is not an error; the field keeps its sentinel default. The
// function is pure and deterministic.
func ExtractMetadata(text string) DocumentMetadata {
	md := DocumentMetadata{
		TipoDocumento:    TypeUnknown,
		NumeroDocumento:  NoNumber,
		FechaPublicacion: NoDate,
		OrganismoEmisor:  NoIssuer,
	}

	if m := docHeaderPattern.FindStringSubmatch(text); m != nil {
		md.TipoDocumento = capitalize(m[1])
		md.NumeroDocumento = strings.TrimSpace(m[2])
		md.NumeroNormalizado = NormalizeNumber(md.NumeroDocumento)
	}

	if m := pubDatePattern.FindStringSubmatch(text); m != nil {
		md.FechaPublicacion = strings.TrimSpace(m[1])
	}

	if m := issuerPattern.FindStringSubmatch(text); m != nil {
		md.OrganismoEmisor = "Ministerio de " + strings.TrimSpace(m[1])
	}

	return md
}

// capitalize upper-cases the first letter and lower-cases the rest, so the
// matched "LEY" token becomes the canonical "Ley" type value.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
