package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexsearch/internal/config"
)

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.EmbeddingConfig
		wantErr bool
	}{
		{
			name: "ollama provider",
			cfg: config.EmbeddingConfig{
				Provider: config.ProviderOllama,
				Model:    "nomic-embed-text",
			},
		},
		{
			name: "empty provider defaults to ollama",
			cfg:  config.EmbeddingConfig{},
		},
		{
			name: "openai provider",
			cfg: config.EmbeddingConfig{
				Provider: config.ProviderOpenAI,
				APIKey:   "sk-test",
			},
		},
		{
			name: "openai without key fails",
			cfg: config.EmbeddingConfig{
				Provider: config.ProviderOpenAI,
			},
			wantErr: true,
		},
		{
			name: "unknown provider fails",
			cfg: config.EmbeddingConfig{
				Provider: "vertex",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, svc)
			svc.Close()
		})
	}
}

func TestCreateLLMService(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LLMConfig
		wantErr bool
	}{
		{
			name: "ollama provider",
			cfg: config.LLMConfig{
				Provider: config.ProviderOllama,
				Model:    "llama3.2",
			},
		},
		{
			name: "gemini provider",
			cfg: config.LLMConfig{
				Provider: config.ProviderGemini,
				APIKey:   "g-test",
			},
		},
		{
			name: "gemini without key fails",
			cfg: config.LLMConfig{
				Provider: config.ProviderGemini,
			},
			wantErr: true,
		},
		{
			name: "openai provider",
			cfg: config.LLMConfig{
				Provider: config.ProviderOpenAI,
				APIKey:   "sk-test",
			},
		},
		{
			name: "openai without key fails",
			cfg: config.LLMConfig{
				Provider: config.ProviderOpenAI,
			},
			wantErr: true,
		},
		{
			name: "unknown provider fails",
			cfg: config.LLMConfig{
				Provider: "bedrock",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, svc)
			svc.Close()
		})
	}
}
