package httpadapter

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mkuzmin/docanalyst/internal/core/ports"
	"github.com/mkuzmin/docanalyst/internal/observability/metrics"
)

// 32 MiB of multipart form data held in memory before spilling to disk.
const maxMultipartMemory = 32 << 20

type Config struct {
	ServiceName       string
	Collection        string
	RateLimitRPS      float64
	RateLimitBurst    int
	MaxConcurrent     int
	BackpressureWait  time.Duration
	VectorIndexTarget string
}

type Router struct {
	ingestor  ports.DocumentIngestor
	answerer  ports.QuestionAnswerer
	documents ports.DocumentReader
	chunks    ports.ChunkRemover
	index     ports.VectorIndex
	metrics   *metrics.HTTPServerMetrics
	cfg       Config
}

func NewRouter(
	ingestor ports.DocumentIngestor,
	answerer ports.QuestionAnswerer,
	documents ports.DocumentReader,
	chunks ports.ChunkRemover,
	index ports.VectorIndex,
	serverMetrics *metrics.HTTPServerMetrics,
	cfg Config,
) *Router {
	return &Router{
		ingestor:  ingestor,
		answerer:  answerer,
		documents: documents,
		chunks:    chunks,
		index:     index,
		metrics:   serverMetrics,
		cfg:       cfg,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/documents", rt.uploadDocument)
	mux.HandleFunc("/v1/documents/", rt.getDocumentByID)
	mux.HandleFunc("/v1/rag/query", rt.queryRAG)
	mux.HandleFunc("/v1/chunks/", rt.deleteChunk)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.cfg.MaxConcurrent > 0 {
		handler = backpressureMiddleware(handler, rt.cfg.MaxConcurrent, rt.cfg.BackpressureWait)
	}
	if rt.cfg.RateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.cfg.RateLimitRPS, rt.cfg.RateLimitBurst)
	}
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.cfg.ServiceName, handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	httpStatus := http.StatusOK
	if err := rt.index.Ping(r.Context(), rt.cfg.Collection); err != nil {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, map[string]string{
		"status":     status,
		"collection": rt.cfg.Collection,
		"qdrant_url": rt.cfg.VectorIndexTarget,
	})
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart form is required"})
		return
	}
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	chunkSize := 0
	if raw := strings.TrimSpace(r.FormValue("chunk_size")); raw != "" {
		chunkSize, err = strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "chunk_size must be an integer"})
			return
		}
	}

	start := time.Now()
	result, err := rt.ingestor.Ingest(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
		strings.TrimSpace(r.FormValue("collection")),
		chunkSize,
	)
	if rt.metrics != nil {
		chunkCount := 0
		if result != nil {
			chunkCount = len(result.ChunkIDs)
		}
		rt.metrics.RecordIngestion(rt.cfg.ServiceName, chunkCount, time.Since(start), err)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func (rt *Router) getDocumentByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	doc, err := rt.documents.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) queryRAG(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Question   string `json:"question"`
		Collection string `json:"collection"`
		TopK       int    `json:"top_k"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is required"})
		return
	}
	if req.TopK < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "top_k must not be negative"})
		return
	}

	start := time.Now()
	answer, err := rt.answerer.Answer(r.Context(), req.Question, req.Collection, req.TopK)
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordRAGObservation(rt.cfg.ServiceName, "/v1/rag/query", len(answer.Sources), time.Since(start))
	}

	writeJSON(w, http.StatusOK, answer)
}

func (rt *Router) deleteChunk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/chunks/")
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "chunk id is required"})
		return
	}

	accepted, err := rt.chunks.Remove(r.Context(), r.URL.Query().Get("collection"), id)
	if err != nil {
		writeError(w, err)
		return
	}
	// accepted=false only when the collection itself does not exist; the
	// index acknowledges deletes of ids it never stored.
	writeJSON(w, http.StatusOK, map[string]any{
		"chunk_id": id,
		"accepted": accepted,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}
