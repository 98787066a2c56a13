// Package ai provides factory functions for creating AI service adapters.
// Provider selection is configuration-driven: exactly one embedding and one
// LLM implementation is constructed at startup.
package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	ollamaembed "github.com/custodia-labs/lexsearch/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/lexsearch/internal/adapters/driven/embedding/openai"
	geminillm "github.com/custodia-labs/lexsearch/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/custodia-labs/lexsearch/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/lexsearch/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/lexsearch/internal/config"
	"github.com/custodia-labs/lexsearch/internal/core/domain"
	"github.com/custodia-labs/lexsearch/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateEmbeddingService constructs the configured embedding provider.
func CreateEmbeddingService(cfg config.EmbeddingConfig) (driven.EmbeddingService, error) {
	switch strings.ToLower(cfg.Provider) {
	case config.ProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
		})
	case config.ProviderOllama, "":
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}

// CreateLLMService constructs the configured LLM provider.
func CreateLLMService(cfg config.LLMConfig) (driven.LLMService, error) {
	switch strings.ToLower(cfg.Provider) {
	case config.ProviderGemini:
		return geminillm.NewLLMService(geminillm.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
	case config.ProviderOpenAI:
		return openaillm.NewLLMService(openaillm.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
	case config.ProviderOllama, "":
		return ollamallm.NewLLMService(ollamallm.Config{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

// CreateAndValidateEmbeddingService constructs the embedding provider and
// validates connectivity with a lightweight ping. Ingestion and retrieval
// cannot work without it, so failures are fatal.
func CreateAndValidateEmbeddingService(cfg config.EmbeddingConfig) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrEmbeddingUnavailable, err)
	}
	return svc, nil
}

// CreateAndValidateLLMService constructs the LLM provider and validates
// connectivity. A nil service with a nil error means answer generation is
// disabled and degrades to the fixed apology.
func CreateAndValidateLLMService(cfg config.LLMConfig) (driven.LLMService, error) {
	svc, err := CreateLLMService(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrLLMUnavailable, err)
	}
	return svc, nil
}
