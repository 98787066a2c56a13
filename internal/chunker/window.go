package chunker

import (
	"strconv"
	"strings"
)

// DefaultWindowSize is the target window size in characters.
const DefaultWindowSize = 1200

// DefaultWindowOverlap is the number of trailing characters carried into
// the next window.
const DefaultWindowOverlap = 200

// continuationMark separates carried-over text from the paragraph that
// opens a new window.
const continuationMark = " ... "

// WindowSplitter splits unstructured text into size-bounded windows,
// breaking at paragraph boundaries where possible and carrying a tail of
// the previous window forward for context.
type WindowSplitter struct {
	size    int
	overlap int
}

// WindowOption configures a WindowSplitter.
type WindowOption func(*WindowSplitter)

// WithWindowSize sets the target window size in characters.
func WithWindowSize(n int) WindowOption {
	return func(s *WindowSplitter) {
		if n > 0 {
			s.size = n
		}
	}
}

// WithWindowOverlap sets the carried-over tail length in characters.
func WithWindowOverlap(n int) WindowOption {
	return func(s *WindowSplitter) {
		if n >= 0 {
			s.overlap = n
		}
	}
}

// NewWindowSplitter creates a window splitter with the given options.
func NewWindowSplitter(opts ...WindowOption) *WindowSplitter {
	s := &WindowSplitter{
		size:    DefaultWindowSize,
		overlap: DefaultWindowOverlap,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.overlap >= s.size {
		s.overlap = s.size / 4
	}
	return s
}

// Split divides text into windows of roughly the configured size. Each
// piece gets a synthetic "parrafo_<i>" label; window pieces never carry an
// article number.
func (s *WindowSplitter) Split(text string) []Piece {
	if text == "" {
		return nil
	}

	var windows []string
	var current string

	for _, paragraph := range strings.Split(text, "\n\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}

		if current != "" && runeLen(current)+runeLen(paragraph)+1 > s.size {
			windows = append(windows, current)
			current = tail(current, s.overlap) + continuationMark + paragraph
		} else if current != "" {
			current += "\n\n" + paragraph
		} else {
			current = paragraph
		}
	}
	if current != "" {
		windows = append(windows, current)
	}

	pieces := make([]Piece, 0, len(windows))
	for i, w := range windows {
		pieces = append(pieces, Piece{
			Text:     w,
			Articulo: "parrafo_" + strconv.Itoa(i),
			Index:    i,
		})
	}
	return pieces
}

func runeLen(s string) int {
	return len([]rune(s))
}

// tail returns the last n characters of s.
func tail(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}
