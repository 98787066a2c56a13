package cli

import (
	"context"
	"fmt"

	"github.com/custodia-labs/lexsearch/internal/adapters/driven/ai"
	pdfextractor "github.com/custodia-labs/lexsearch/internal/adapters/driven/extractor/pdf"
	"github.com/custodia-labs/lexsearch/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/lexsearch/internal/adapters/driven/vectorstore/memory"
	"github.com/custodia-labs/lexsearch/internal/adapters/driven/vectorstore/qdrant"
	"github.com/custodia-labs/lexsearch/internal/chunker"
	"github.com/custodia-labs/lexsearch/internal/config"
	"github.com/custodia-labs/lexsearch/internal/core/domain"
	"github.com/custodia-labs/lexsearch/internal/core/ports/driven"
	"github.com/custodia-labs/lexsearch/internal/core/services"
	"github.com/custodia-labs/lexsearch/internal/logger"
)

// app holds the wired service graph for one command invocation.
type app struct {
	cfg      config.Config
	analyzer *domain.Analyzer
	embedder driven.EmbeddingService
	llm      driven.LLMService
	store    driven.VectorStore
	log      driven.IngestionLog

	pipeline  *services.IngestionPipeline
	retriever *services.HybridRetriever
	answerer  *services.AnswerService
}

// appOptions selects which parts of the graph a command needs.
type appOptions struct {
	// withLLM validates and wires the answer model. Commands that only
	// ingest or search skip it.
	withLLM bool
}

// newApp loads configuration and wires the service graph bottom-up. The
// embedding provider must be reachable; the LLM is allowed to fail since
// answer generation degrades gracefully without it.
func newApp(ctx context.Context, opts appOptions) (*app, error) {
	cfg, err := config.Load(configPath, envFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	analyzer, err := domain.NewAnalyzer(cfg.TopicRules())
	if err != nil {
		return nil, fmt.Errorf("invalid topic rules: %w", err)
	}

	embedder, err := ai.CreateAndValidateEmbeddingService(cfg.Embedding)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, analyzer: analyzer, embedder: embedder}

	if opts.withLLM {
		llm, err := ai.CreateAndValidateLLMService(cfg.LLM)
		if err != nil {
			logger.Warn("LLM unavailable, answers will degrade: %v", err)
		} else {
			a.llm = llm
		}
	}

	if cfg.Qdrant.URL != "" {
		a.store = qdrant.NewStore(qdrant.Config{
			URL:        cfg.Qdrant.URL,
			APIKey:     cfg.Qdrant.APIKey,
			Collection: cfg.Qdrant.Collection,
		})
	} else {
		logger.Warn("No Qdrant URL configured, using the in-memory store")
		a.store = memory.NewStore()
	}
	if err := a.store.EnsureCollection(ctx, embedder.Dimensions()); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to prepare collection: %w", err)
	}

	ingestLog, err := sqlite.NewIngestionLog(cfg.IngestLogPath())
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open ingestion log: %w", err)
	}
	a.log = ingestLog

	a.pipeline = services.NewIngestionPipeline(
		pdfextractor.NewExtractor(),
		embedder,
		a.store,
		analyzer,
		services.WithIngestionLog(ingestLog),
		services.WithEmbedRateLimit(cfg.Embedding.RatePerSecond),
		services.WithArticleSplitter(chunker.NewArticleSplitter(
			chunker.WithMinPieceLen(cfg.Ingestion.MinPieceLen),
		)),
		services.WithWindowSplitter(chunker.NewWindowSplitter(
			chunker.WithWindowSize(cfg.Ingestion.WindowSize),
			chunker.WithWindowOverlap(cfg.Ingestion.WindowOverlap),
		)),
	)
	a.retriever = services.NewHybridRetriever(embedder, a.store, analyzer)
	a.answerer = services.NewAnswerService(a.retriever, a.llm)

	return a, nil
}

// Close releases every wired resource. Safe on a partially built app.
func (a *app) Close() {
	if a.log != nil {
		if err := a.log.Close(); err != nil {
			logger.Warn("Failed to close ingestion log: %v", err)
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			logger.Warn("Failed to close vector store: %v", err)
		}
	}
	if a.llm != nil {
		if err := a.llm.Close(); err != nil {
			logger.Warn("Failed to close LLM client: %v", err)
		}
	}
	if a.embedder != nil {
		if err := a.embedder.Close(); err != nil {
			logger.Warn("Failed to close embedding client: %v", err)
		}
	}
}

// watchTopics hot-reloads the topic vocabulary when the configuration
// file changes. Returns a no-op stop function when watching fails.
func (a *app) watchTopics() func() {
	watcher, err := config.NewWatcher(configPath, func() error {
		cfg, err := config.Load(configPath, envFile)
		if err != nil {
			return err
		}
		if err := a.analyzer.SetRules(cfg.TopicRules()); err != nil {
			return err
		}
		logger.Info("Topic vocabulary reloaded")
		return nil
	})
	if err != nil {
		logger.Warn("Configuration watcher unavailable: %v", err)
		return func() {}
	}
	watcher.Start()
	return watcher.Stop
}
