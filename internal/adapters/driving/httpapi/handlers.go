package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/custodia-labs/lexsearch/internal/core/domain"
	"github.com/custodia-labs/lexsearch/internal/core/services"
	"github.com/custodia-labs/lexsearch/internal/logger"
)

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type uploadResponse struct {
	Message         string `json:"message"`
	BatchID         string `json:"batch_id"`
	FilesAttempted  int    `json:"files_attempted"`
	CollectionCount uint64 `json:"collection_count"`
}

type searchRequest struct {
	Question   string            `json:"question"`
	MaxResults int               `json:"max_results"`
	Filters    map[string]string `json:"filters"`
}

type chunkResponse struct {
	Score             float64 `json:"score"`
	Text              string  `json:"texto"`
	TipoDocumento     string  `json:"tipo_documento"`
	NumeroDocumento   string  `json:"numero_documento"`
	NumeroNormalizado string  `json:"numero_normalizado,omitempty"`
	FechaPublicacion  string  `json:"fecha_publicacion"`
	Articulo          string  `json:"articulo"`
	NombreArchivo     string  `json:"nombre_archivo"`
	Subtema           string  `json:"subtema,omitempty"`
}

type searchResponse struct {
	Results []chunkResponse `json:"results"`
}

type askResponse struct {
	Answer  string           `json:"answer"`
	Sources []sourceResponse `json:"sources"`
}

type sourceResponse struct {
	TipoDocumento   string `json:"tipo_documento"`
	NumeroDocumento string `json:"numero_documento"`
	Articulo        string `json:"articulo"`
	NombreArchivo   string `json:"nombre_archivo"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// handleUpload spools the multipart archive to disk and runs ingestion.
// The ?context=true query flag marks the batch as context documents.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("missing multipart field %q: %w", "file", err))
		return
	}
	defer file.Close()

	kind := domain.KindLegal
	if r.URL.Query().Get("context") == "true" {
		kind = domain.KindContext
	}

	path, err := s.spool(file, header.Filename)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	summary, err := s.ingestor.Ingest(r.Context(), path, kind)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	count, err := s.store.Count(r.Context())
	if err != nil {
		logger.Warn("Collection count unavailable: %v", err)
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		Message:         fmt.Sprintf("Archivo %s procesado correctamente.", header.Filename),
		BatchID:         summary.BatchID,
		FilesAttempted:  summary.FilesAttempted,
		CollectionCount: count,
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSearch(w, r)
	if !ok {
		return
	}

	hits, err := s.retriever.Search(r.Context(), req.Question, maxResults(req))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, toSearchResponse(hits))
}

func (s *Server) handleFilteredSearch(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSearch(w, r)
	if !ok {
		return
	}

	var filter domain.Filter
	for key, value := range req.Filters {
		filter = filter.And(key, value)
	}

	hits, err := s.retriever.SearchWithFilter(r.Context(), req.Question, filter, maxResults(req))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, toSearchResponse(hits))
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSearch(w, r)
	if !ok {
		return
	}

	answer, err := s.answerer.Ask(r.Context(), req.Question)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	resp := askResponse{Answer: answer.Text, Sources: make([]sourceResponse, len(answer.Sources))}
	for i, src := range answer.Sources {
		resp.Sources[i] = sourceResponse{
			TipoDocumento:   src.TipoDocumento,
			NumeroDocumento: src.NumeroDocumento,
			Articulo:        src.Articulo,
			NombreArchivo:   src.NombreArchivo,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// spool copies the uploaded archive into the upload directory under a
// unique name so concurrent uploads never collide.
func (s *Server) spool(src io.Reader, filename string) (string, error) {
	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}
	path := filepath.Join(s.cfg.UploadDir, uuid.New().String()+"_"+filepath.Base(filename))
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to spool upload: %w", err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to spool upload: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to spool upload: %w", err)
	}
	return path, nil
}

func decodeSearch(w http.ResponseWriter, r *http.Request) (searchRequest, bool) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return req, false
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, errors.New("question is required"))
		return req, false
	}
	return req, true
}

func maxResults(req searchRequest) int {
	if req.MaxResults > 0 {
		return req.MaxResults
	}
	return services.DefaultMaxResults
}

func toSearchResponse(hits []domain.RetrievedChunk) searchResponse {
	resp := searchResponse{Results: make([]chunkResponse, len(hits))}
	for i, hit := range hits {
		resp.Results[i] = chunkResponse{
			Score:             hit.Score,
			Text:              hit.Text,
			TipoDocumento:     hit.Metadata.TipoDocumento,
			NumeroDocumento:   hit.Metadata.NumeroDocumento,
			NumeroNormalizado: hit.Metadata.NumeroNormalizado,
			FechaPublicacion:  hit.Metadata.FechaPublicacion,
			Articulo:          hit.Articulo,
			NombreArchivo:     hit.Metadata.NombreArchivo,
			Subtema:           hit.Metadata.Subtema,
		}
	}
	return resp
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidArchive), errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrEmptyCollection), errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEmbeddingUnavailable), errors.Is(err, domain.ErrLLMUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	logger.Debug("Request failed (%d): %v", status, err)
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
