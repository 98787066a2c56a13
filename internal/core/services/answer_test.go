package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexsearch/internal/core/domain"
	"github.com/custodia-labs/lexsearch/internal/core/ports/driven"
)

type stubRetriever struct {
	hits []domain.RetrievedChunk
	err  error
}

func (s *stubRetriever) Search(_ context.Context, _ string, _ int) ([]domain.RetrievedChunk, error) {
	return s.hits, s.err
}

func (s *stubRetriever) SearchWithFilter(_ context.Context, _ string, _ domain.Filter, _ int) ([]domain.RetrievedChunk, error) {
	return s.hits, s.err
}

type stubLLM struct {
	reply   string
	err     error
	prompts []string
}

func (s *stubLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func (s *stubLLM) ModelName() string          { return "stub-llm" }
func (s *stubLLM) Ping(context.Context) error { return nil }
func (s *stubLLM) Close() error               { return nil }

func legalHits() []domain.RetrievedChunk {
	return []domain.RetrievedChunk{
		{
			ID:       "chunk-1",
			Score:    0.91,
			Text:     "Artículo 2º: El presente convenio entrará en vigencia.",
			Articulo: "2",
			Metadata: domain.DocumentMetadata{
				TipoDocumento:     "Ley",
				NumeroDocumento:   "7.675/11",
				NumeroNormalizado: "767511",
				FechaPublicacion:  "12/03/2011",
				OrganismoEmisor:   domain.NoIssuer,
				NombreArchivo:     "ley_7675.pdf",
			},
		},
	}
}

func TestAskBuildsGroundedPrompt(t *testing.T) {
	llm := &stubLLM{reply: "  El convenio entra en vigencia con su publicación.  "}
	svc := NewAnswerService(&stubRetriever{hits: legalHits()}, llm)

	answer, err := svc.Ask(context.Background(), "¿Cuándo entra en vigencia el convenio?")
	require.NoError(t, err)
	assert.Equal(t, "El convenio entra en vigencia con su publicación.", answer.Text)
	require.Len(t, answer.Sources, 1)
	assert.Equal(t, "ley_7675.pdf", answer.Sources[0].NombreArchivo)
	assert.Equal(t, "2", answer.Sources[0].Articulo)

	require.Len(t, llm.prompts, 1)
	prompt := llm.prompts[0]
	assert.Contains(t, prompt, "¿Cuándo entra en vigencia el convenio?")
	assert.Contains(t, prompt, "Fuente: Ley 7.675/11")
	assert.Contains(t, prompt, "Publicación: 12/03/2011")
	assert.Contains(t, prompt, "Artículo: 2")
	assert.Contains(t, prompt, "Artículo 2º: El presente convenio")
}

func TestAskNoRelevantContext(t *testing.T) {
	llm := &stubLLM{reply: "should never be called"}
	svc := NewAnswerService(&stubRetriever{}, llm)

	answer, err := svc.Ask(context.Background(), "¿Qué dice la ley 9999?")
	require.NoError(t, err)
	assert.Equal(t, noContextAnswer, answer.Text)
	assert.Empty(t, answer.Sources)
	assert.Empty(t, llm.prompts, "the model must not be invoked without context")
}

func TestAskLLMFailureDegrades(t *testing.T) {
	llm := &stubLLM{err: errors.New("rate limited")}
	svc := NewAnswerService(&stubRetriever{hits: legalHits()}, llm)

	answer, err := svc.Ask(context.Background(), "¿Cuándo entra en vigencia?")
	require.NoError(t, err, "model failures must degrade, not error")
	assert.Equal(t, apologyAnswer, answer.Text)
	assert.Len(t, answer.Sources, 1, "sources survive a generation failure")
}

func TestAskWithoutModel(t *testing.T) {
	svc := NewAnswerService(&stubRetriever{hits: legalHits()}, nil)

	answer, err := svc.Ask(context.Background(), "¿Cuándo entra en vigencia?")
	require.NoError(t, err)
	assert.Equal(t, apologyAnswer, answer.Text)
	assert.Len(t, answer.Sources, 1)
}

func TestAskRetrievalErrorPropagates(t *testing.T) {
	svc := NewAnswerService(&stubRetriever{err: domain.ErrEmptyCollection}, &stubLLM{})

	_, err := svc.Ask(context.Background(), "consulta")
	assert.ErrorIs(t, err, domain.ErrEmptyCollection)
}

func TestFormatContextSeparatesChunks(t *testing.T) {
	hits := append(legalHits(), domain.RetrievedChunk{
		Text:     "Artículo 1º: Apruébase el convenio marco.",
		Articulo: "1",
		Metadata: domain.DocumentMetadata{
			TipoDocumento:   "Ley",
			NumeroDocumento: "7.675/11",
			NombreArchivo:   "ley_7675.pdf",
		},
	})

	block := formatContext(hits)
	assert.Equal(t, 2, strings.Count(block, "Contenido:"))
	assert.Contains(t, block, "---")
}
