// Package config loads the lexsearch configuration from a TOML file, an
// optional .env file and environment variables, in that order of
// precedence (environment wins).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/lexsearch/internal/core/domain"
)

// Provider names accepted for embedding and LLM selection.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
)

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Qdrant    QdrantConfig    `toml:"qdrant"`
	Embedding EmbeddingConfig `toml:"embedding"`
	LLM       LLMConfig       `toml:"llm"`
	Ingestion IngestionConfig `toml:"ingestion"`
	Telegram  TelegramConfig  `toml:"telegram"`
	Topics    []TopicConfig   `toml:"topics"`

	// DataDir holds uploads and the ingestion log database.
	DataDir string `toml:"data_dir"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	// Addr is the listen address (default: ":8000").
	Addr string `toml:"addr"`
}

// QdrantConfig configures the vector store. An empty URL selects the
// in-memory store instead.
type QdrantConfig struct {
	URL        string `toml:"url"`
	APIKey     string `toml:"api_key"`
	Collection string `toml:"collection"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	// Provider is "openai" or "ollama" (default: "ollama").
	Provider string `toml:"provider"`

	APIKey     string `toml:"api_key"`
	BaseURL    string `toml:"base_url"`
	Model      string `toml:"model"`
	Dimensions int    `toml:"dimensions"`

	// RatePerSecond caps embedding requests during ingestion. Zero
	// disables the limit.
	RatePerSecond float64 `toml:"rate_per_second"`
}

// LLMConfig selects and configures the answer-generation provider.
type LLMConfig struct {
	// Provider is "gemini", "openai" or "ollama" (default: "ollama").
	Provider string `toml:"provider"`

	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
}

// IngestionConfig tunes the chunkers.
type IngestionConfig struct {
	// MinPieceLen is the minimum surviving article-piece length.
	MinPieceLen int `toml:"min_piece_len"`

	// WindowSize is the context-document window size in characters.
	WindowSize int `toml:"window_size"`

	// WindowOverlap is the carried-over tail length in characters.
	WindowOverlap int `toml:"window_overlap"`
}

// TelegramConfig configures the optional Telegram webhook transport.
type TelegramConfig struct {
	// BotToken enables the webhook endpoint when set.
	BotToken string `toml:"bot_token"`
}

// TopicConfig is one topic rule of the query classifier vocabulary.
type TopicConfig struct {
	Tag     string `toml:"tag"`
	Pattern string `toml:"pattern"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{Addr: ":8000"},
		Qdrant: QdrantConfig{Collection: "documentos_legales"},
		Embedding: EmbeddingConfig{
			Provider: ProviderOllama,
		},
		LLM: LLMConfig{
			Provider: ProviderOllama,
		},
		Ingestion: IngestionConfig{
			MinPieceLen:   50,
			WindowSize:    1200,
			WindowOverlap: 200,
		},
		DataDir: "data",
	}
}

// Load reads the configuration. The TOML file at path is optional; a
// missing file yields the defaults. envFile, when non-empty, is loaded
// into the process environment first (existing variables win, matching
// godotenv semantics). Environment variables override file values.
func Load(path, envFile string) (Config, error) {
	if envFile != "" {
		// Missing .env files are fine; only parse errors are fatal.
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Defaults plus environment.
		case err != nil:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// TopicRules converts the configured topics into analyzer rules, falling
// back to the built-in vocabulary when none are configured.
func (c Config) TopicRules() []domain.TopicRule {
	if len(c.Topics) == 0 {
		return domain.DefaultTopicRules()
	}
	rules := make([]domain.TopicRule, len(c.Topics))
	for i, t := range c.Topics {
		rules[i] = domain.TopicRule{Tag: t.Tag, Pattern: t.Pattern}
	}
	return rules
}

// UploadDir is where uploaded archives are staged before ingestion.
func (c Config) UploadDir() string {
	return filepath.Join(c.DataDir, "uploads")
}

// IngestLogPath is the SQLite database recording per-file ingestion
// outcomes.
func (c Config) IngestLogPath() string {
	return filepath.Join(c.DataDir, "ingestion.db")
}

// applyEnv overrides file values with environment variables.
func applyEnv(cfg *Config) {
	setString(&cfg.Server.Addr, "LEXSEARCH_ADDR")
	setString(&cfg.DataDir, "LEXSEARCH_DATA_DIR")

	setString(&cfg.Qdrant.URL, "QDRANT_URL")
	setString(&cfg.Qdrant.APIKey, "QDRANT_API_KEY")
	setString(&cfg.Qdrant.Collection, "QDRANT_COLLECTION")

	setString(&cfg.Embedding.Provider, "EMBEDDING_PROVIDER")
	setString(&cfg.Embedding.APIKey, "OPENAI_API_KEY")
	setString(&cfg.Embedding.Model, "EMBEDDING_MODEL")
	if v := os.Getenv("EMBEDDING_DIMENSIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Embedding.Dimensions = n
		}
	}

	setString(&cfg.LLM.Provider, "LLM_PROVIDER")
	switch cfg.LLM.Provider {
	case ProviderOpenAI:
		setString(&cfg.LLM.APIKey, "OPENAI_API_KEY")
	case ProviderOllama:
		setString(&cfg.LLM.Model, "OLLAMA_MODEL")
		setString(&cfg.LLM.BaseURL, "OLLAMA_HOST")
	default:
		setString(&cfg.LLM.APIKey, "GOOGLE_API_KEY")
	}

	setString(&cfg.Telegram.BotToken, "TELEGRAM_BOT_TOKEN")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
