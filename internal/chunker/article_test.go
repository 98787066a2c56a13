package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legalText = `LEY Nº 7.675/11

Artículo 1º: Apruébase el convenio marco de cooperación celebrado entre el
Ministerio de Economía y la Dirección General de Rentas de la provincia.

Artículo 2º: El presente convenio entrará en vigencia a partir de su
publicación en el Boletín Oficial de la provincia, y regirá por dos años.
`

func TestArticleSplit(t *testing.T) {
	s := NewArticleSplitter()
	pieces := s.Split(legalText)

	require.Len(t, pieces, 2)

	assert.Equal(t, "1", pieces[0].Articulo)
	assert.True(t, strings.HasPrefix(pieces[0].Text, "Artículo 1º"))

	assert.Equal(t, "2", pieces[1].Articulo)
	assert.True(t, strings.HasPrefix(pieces[1].Text, "Artículo 2º"))

	// The short header fragment before Artículo 1 was discarded, so the
	// surviving pieces keep their original split indices.
	assert.Equal(t, 1, pieces[0].Index)
	assert.Equal(t, 2, pieces[1].Index)
}

func TestArticleSplitKeepsLongPreamble(t *testing.T) {
	preamble := strings.Repeat("Considerando la situación fiscal vigente. ", 3)
	text := preamble + "\n\nArtículo 1º: " + strings.Repeat("contenido normativo ", 5)

	s := NewArticleSplitter()
	pieces := s.Split(text)

	require.Len(t, pieces, 2)
	assert.Equal(t, "parrafo_0", pieces[0].Articulo)
	assert.Equal(t, 0, pieces[0].Index)
	assert.Equal(t, "1", pieces[1].Articulo)
}

func TestArticleSplitFallbackSingleChunk(t *testing.T) {
	// No article markers at all: the whole document becomes one piece.
	text := "Comunicado breve sobre horarios de atención al público en la sede central."

	s := NewArticleSplitter()
	pieces := s.Split(text)

	require.Len(t, pieces, 1)
	assert.Equal(t, strings.TrimSpace(text), pieces[0].Text)
	assert.Equal(t, "parrafo_0", pieces[0].Articulo)
	assert.Equal(t, 0, pieces[0].Index)
}

func TestArticleSplitFallbackWhenAllPiecesTooShort(t *testing.T) {
	text := "Artículo 1º: ok.\n\nArtículo 2º: bien."

	s := NewArticleSplitter()
	pieces := s.Split(text)

	require.Len(t, pieces, 1)
	assert.Equal(t, "1", pieces[0].Articulo)
}

func TestArticleSplitEmpty(t *testing.T) {
	s := NewArticleSplitter()
	assert.Nil(t, s.Split(""))
	assert.Nil(t, s.Split("   \n\n  "))
}

func TestArticleSplitMinLenOption(t *testing.T) {
	text := "Artículo 1º: breve.\n\nArtículo 2º: también breve."

	s := NewArticleSplitter(WithMinPieceLen(5))
	pieces := s.Split(text)

	require.Len(t, pieces, 2)
	assert.Equal(t, "1", pieces[0].Articulo)
	assert.Equal(t, "2", pieces[1].Articulo)
}

func TestArticleSplitCoversAllKeptText(t *testing.T) {
	s := NewArticleSplitter()
	pieces := s.Split(legalText)

	joined := ""
	for _, p := range pieces {
		joined += p.Text
	}
	assert.Contains(t, joined, "convenio marco de cooperación")
	assert.Contains(t, joined, "Boletín Oficial")
}
