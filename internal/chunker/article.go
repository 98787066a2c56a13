// Package chunker splits extracted document text into retrievable pieces.
// Legal documents are split at article boundaries; informational documents
// are split into fixed-size windows with overlap.
package chunker

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultMinPieceLen is the minimum number of characters a piece must have
// to survive the article split. Shorter fragments (headers, stray
// preambles) are discarded.
const DefaultMinPieceLen = 50

// Piece is one chunk of text produced by a splitter, before embedding.
type Piece struct {
	// Text is the piece content, whitespace-trimmed.
	Text string

	// Articulo is the article number found in the piece, or a synthetic
	// "parrafo_<i>" label when the piece carries no article marker.
	Articulo string

	// Index is the piece's position in the original split sequence. It
	// stays stable when neighbouring fragments are discarded, so derived
	// chunk IDs do not shift as the filter threshold changes.
	Index int
}

var (
	// articleMarker locates article headings. The split happens at the
	// start of each match so the heading stays with the text it opens.
	articleMarker = regexp.MustCompile(`(?i)Artículo\s*[\dºª]+\b`)

	// articleNumber extracts the plain article number from a piece.
	articleNumber = regexp.MustCompile(`(?i)Artículo\s*(\d+)`)
)

// ArticleSplitter splits structured legal text at article boundaries.
type ArticleSplitter struct {
	minLen int
}

// ArticleOption configures an ArticleSplitter.
type ArticleOption func(*ArticleSplitter)

// WithMinPieceLen sets the minimum surviving piece length in characters.
func WithMinPieceLen(n int) ArticleOption {
	return func(s *ArticleSplitter) {
		if n >= 0 {
			s.minLen = n
		}
	}
}

// NewArticleSplitter creates an article splitter with the given options.
func NewArticleSplitter(opts ...ArticleOption) *ArticleSplitter {
	s := &ArticleSplitter{minLen: DefaultMinPieceLen}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Split divides text at each article heading. Pieces at or under the
// minimum length are discarded. When nothing survives, the whole document
// becomes a single piece so the file still indexes.
func (s *ArticleSplitter) Split(text string) []Piece {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	segments := splitAtMarkers(text)

	pieces := make([]Piece, 0, len(segments))
	for i, seg := range segments {
		trimmed := strings.TrimSpace(seg)
		if trimmed == "" || len([]rune(trimmed)) <= s.minLen {
			continue
		}
		pieces = append(pieces, Piece{
			Text:     trimmed,
			Articulo: labelFor(trimmed, i),
			Index:    i,
		})
	}

	if len(pieces) == 0 {
		whole := strings.TrimSpace(text)
		return []Piece{{Text: whole, Articulo: labelFor(whole, 0), Index: 0}}
	}
	return pieces
}

// splitAtMarkers cuts text at the start index of each article heading,
// keeping the heading attached to the segment it opens. The leading
// segment before the first heading is kept too, mirroring a lookahead
// split.
func splitAtMarkers(text string) []string {
	locs := articleMarker.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []string{text}
	}

	// One segment per boundary gap, plus the tail. A document that opens
	// with a heading yields an empty leading segment, which keeps piece
	// indices aligned with the boundary sequence.
	segments := make([]string, 0, len(locs)+1)
	prev := 0
	for _, loc := range locs {
		segments = append(segments, text[prev:loc[0]])
		prev = loc[0]
	}
	segments = append(segments, text[prev:])
	return segments
}

// labelFor returns the article number found in the piece, or a synthetic
// paragraph label built from the piece's original split index.
func labelFor(text string, index int) string {
	if m := articleNumber.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return "parrafo_" + strconv.Itoa(index)
}
