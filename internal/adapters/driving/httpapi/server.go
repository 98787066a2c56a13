// Package httpapi exposes the ingestion and retrieval services over a
// JSON HTTP API.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/custodia-labs/lexsearch/internal/core/ports/driven"
	"github.com/custodia-labs/lexsearch/internal/core/ports/driving"
	"github.com/custodia-labs/lexsearch/internal/logger"
)

// Config holds the HTTP server settings.
type Config struct {
	// Addr is the listen address, e.g. ":8000".
	Addr string

	// UploadDir is where uploaded archives are spooled before ingestion.
	UploadDir string

	// ReadTimeout and WriteTimeout bound each request. Uploads can be
	// large, so the defaults are generous.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server routes HTTP requests to the driving ports.
type Server struct {
	cfg       Config
	ingestor  driving.Ingestor
	retriever driving.Retriever
	answerer  driving.Answerer
	store     driven.VectorStore
	server    *http.Server
	extra     []route
}

type route struct {
	pattern string
	handler http.Handler
}

// NewServer creates the server. The vector store is only used to report
// collection counts after an upload.
func NewServer(
	cfg Config,
	ingestor driving.Ingestor,
	retriever driving.Retriever,
	answerer driving.Answerer,
	store driven.VectorStore,
) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8000"
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 5 * time.Minute
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 5 * time.Minute
	}
	return &Server{
		cfg:       cfg,
		ingestor:  ingestor,
		retriever: retriever,
		answerer:  answerer,
		store:     store,
	}
}

// Mount attaches an additional handler, e.g. the Telegram webhook, to the
// server's route table. Must be called before Start.
func (s *Server) Mount(pattern string, h http.Handler) {
	s.extra = append(s.extra, route{pattern: pattern, handler: h})
}

// Handler builds the route table. Exposed separately so tests can drive
// the mux without a listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleHealth)
	mux.HandleFunc("POST /documents/upload", s.handleUpload)
	mux.HandleFunc("POST /chat", s.handleSearch)
	mux.HandleFunc("POST /chat/ask", s.handleAsk)
	mux.HandleFunc("POST /chat/filter", s.handleFilteredSearch)
	for _, r := range s.extra {
		mux.Handle(r.pattern, r.handler)
	}
	return mux
}

// Start runs the server until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP API listening on %s", s.cfg.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	}
}
