package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/lexsearch/internal/core/domain"
	"github.com/custodia-labs/lexsearch/internal/core/ports/driven"
	"github.com/custodia-labs/lexsearch/internal/core/ports/driving"
	"github.com/custodia-labs/lexsearch/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.Answerer = (*AnswerService)(nil)

// User-facing degradation messages. Generation failures never propagate as
// errors; the user gets a fixed Spanish apology instead.
const (
	noContextAnswer = "Lo siento, no pude encontrar información relevante en mi base de datos para responder a tu pregunta."
	apologyAnswer   = "Hubo un error al generar la respuesta. Por favor, intenta de nuevo más tarde."
)

// answerPromptTemplate grounds the model strictly on the retrieved context.
const answerPromptTemplate = "Eres un asistente experto de la Dirección General de Rentas de Salta, Argentina. Tu tarea es responder la pregunta del usuario basándote estricta y únicamente en el contexto proporcionado.\n" +
	"Si la respuesta no se encuentra en el contexto, di explícitamente: 'Basado en la información proporcionada, no puedo responder a esa pregunta.'\n" +
	"Sé conciso y responde en el mismo idioma que la pregunta.\n" +
	"**Contexto Proporcionado:**\n'''\n%s\n'''\n\n" +
	"**Pregunta del Usuario:**\n%s\n\n" +
	"**Respuesta:**"

// AnswerService runs the full question/answer flow: retrieve, build a
// source-annotated prompt, generate.
type AnswerService struct {
	retriever  driving.Retriever
	llm        driven.LLMService
	maxResults int
}

// AnswerOption configures an AnswerService.
type AnswerOption func(*AnswerService)

// WithAnswerMaxResults sets how many chunks are retrieved per question.
func WithAnswerMaxResults(n int) AnswerOption {
	return func(s *AnswerService) {
		if n > 0 {
			s.maxResults = n
		}
	}
}

// NewAnswerService creates the answer service. The llm parameter may be
// nil, in which case every question degrades to the apology answer.
func NewAnswerService(retriever driving.Retriever, llm driven.LLMService, opts ...AnswerOption) *AnswerService {
	s := &AnswerService{
		retriever:  retriever,
		llm:        llm,
		maxResults: DefaultMaxResults,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ask retrieves context for the question and generates a grounded answer.
// Retrieval errors propagate; generation errors degrade to a fixed apology
// so the caller always has something to show the user.
func (s *AnswerService) Ask(ctx context.Context, question string) (domain.Answer, error) {
	logger.Section("Answer Generation")
	logger.Debug("Question: %q", question)

	hits, err := s.retriever.Search(ctx, question, s.maxResults)
	if err != nil {
		return domain.Answer{}, err
	}
	if len(hits) == 0 {
		return domain.Answer{Text: noContextAnswer}, nil
	}

	sources := make([]domain.SourceRef, len(hits))
	for i, hit := range hits {
		sources[i] = domain.SourceRef{
			TipoDocumento:   hit.Metadata.TipoDocumento,
			NumeroDocumento: hit.Metadata.NumeroDocumento,
			Articulo:        hit.Articulo,
			NombreArchivo:   hit.Metadata.NombreArchivo,
		}
	}

	if s.llm == nil {
		logger.Warn("No LLM configured, returning apology")
		return domain.Answer{Text: apologyAnswer, Sources: sources}, nil
	}

	prompt := fmt.Sprintf(answerPromptTemplate, formatContext(hits), question)
	text, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   2048,
		Temperature: 0.2,
	})
	if err != nil {
		logger.Warn("Generation failed: %v", err)
		return domain.Answer{Text: apologyAnswer, Sources: sources}, nil
	}

	return domain.Answer{Text: strings.TrimSpace(text), Sources: sources}, nil
}

// formatContext renders the retrieved chunks as source-annotated blocks so
// the model can cite what it read.
func formatContext(hits []domain.RetrievedChunk) string {
	blocks := make([]string, len(hits))
	for i, hit := range hits {
		blocks[i] = fmt.Sprintf(
			"---\nFuente: %s %s\nPublicación: %s\nArtículo: %s\nContenido: %s\n---",
			hit.Metadata.TipoDocumento,
			hit.Metadata.NumeroDocumento,
			hit.Metadata.FechaPublicacion,
			hit.Articulo,
			hit.Text,
		)
	}
	return strings.Join(blocks, "\n\n")
}
