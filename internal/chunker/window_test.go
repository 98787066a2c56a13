package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowSplitShortText(t *testing.T) {
	s := NewWindowSplitter()
	pieces := s.Split("La misión del organismo es asistir al contribuyente.")

	require.Len(t, pieces, 1)
	assert.Equal(t, "La misión del organismo es asistir al contribuyente.", pieces[0].Text)
	assert.Equal(t, "parrafo_0", pieces[0].Articulo)
	assert.Equal(t, 0, pieces[0].Index)
}

func TestWindowSplitJoinsParagraphsUpToSize(t *testing.T) {
	s := NewWindowSplitter(WithWindowSize(100), WithWindowOverlap(20))
	pieces := s.Split("primer párrafo corto\n\nsegundo párrafo corto")

	require.Len(t, pieces, 1)
	assert.Equal(t, "primer párrafo corto\n\nsegundo párrafo corto", pieces[0].Text)
}

func TestWindowSplitOverlapCarriesTail(t *testing.T) {
	a := strings.Repeat("a", 90)
	b := strings.Repeat("b", 90)

	s := NewWindowSplitter(WithWindowSize(100), WithWindowOverlap(20))
	pieces := s.Split(a + "\n\n" + b)

	require.Len(t, pieces, 2)
	assert.Equal(t, a, pieces[0].Text)

	// The second window opens with the tail of the first plus the
	// continuation mark.
	assert.Equal(t, strings.Repeat("a", 20)+" ... "+b, pieces[1].Text)
	assert.Equal(t, "parrafo_1", pieces[1].Articulo)
	assert.Equal(t, 1, pieces[1].Index)
}

func TestWindowSplitSkipsBlankParagraphs(t *testing.T) {
	s := NewWindowSplitter()
	pieces := s.Split("uno\n\n   \n\ndos")

	require.Len(t, pieces, 1)
	assert.Equal(t, "uno\n\ndos", pieces[0].Text)
}

func TestWindowSplitEmpty(t *testing.T) {
	s := NewWindowSplitter()
	assert.Nil(t, s.Split(""))
	assert.Empty(t, s.Split("\n\n\n\n"))
}

func TestWindowSplitOverlapClamped(t *testing.T) {
	// An overlap at or above the window size would never converge; the
	// constructor clamps it.
	s := NewWindowSplitter(WithWindowSize(100), WithWindowOverlap(100))
	assert.Equal(t, 25, s.overlap)
}
