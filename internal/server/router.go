package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/propdocs/extractor/internal/async"
	"github.com/propdocs/extractor/internal/common"
	"github.com/propdocs/extractor/internal/export"
	"github.com/propdocs/extractor/internal/observability/metrics"
	"github.com/propdocs/extractor/internal/pipeline"
	"github.com/propdocs/extractor/internal/repository"
)

// Server wires the HTTP API over the document store and extraction pipeline.
type Server struct {
	logger    *slog.Logger
	docsRepo  repository.DocumentRepository
	queue     async.Queue
	processor *pipeline.Processor
	exporter  *export.Service
	metrics   *metrics.PipelineMetrics
	health    func(ctx context.Context) error
}

func New(
	logger *slog.Logger,
	docsRepo repository.DocumentRepository,
	queue async.Queue,
	proc *pipeline.Processor,
	exporter *export.Service,
	m *metrics.PipelineMetrics,
	health func(ctx context.Context) error,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		logger:    logger,
		docsRepo:  docsRepo,
		queue:     queue,
		processor: proc,
		exporter:  exporter,
		metrics:   m,
		health:    health,
	}
}

func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	if s.metrics != nil {
		r.Use(func(next http.Handler) http.Handler {
			return s.metrics.Middleware("propdocs", next)
		})
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/documents", s.handleSubmitDocument)
		r.Get("/documents", s.handleListDocuments)
		r.Get("/documents/{documentID}", s.handleGetDocument)
		r.Get("/exports/results.xlsx", s.handleExportResults)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health(r.Context()); err != nil {
			s.writeError(w, http.StatusServiceUnavailable, "store unavailable")
			return
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rec, r)

		attrs := []any{
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.statusCode,
			"duration_ms", float64(time.Since(start).Microseconds()) / 1000.0,
		}
		switch {
		case rec.statusCode >= 500:
			s.logger.Error("http.request", attrs...)
		case rec.statusCode >= 400:
			s.logger.Warn("http.request", attrs...)
		default:
			s.logger.Info("http.request", attrs...)
		}
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("http.encode.failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// writeMappedError translates repository/domain sentinels into HTTP statuses.
func (s *Server) writeMappedError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "document not found")
	case errors.Is(err, common.ErrInvalidInput), errors.Is(err, common.ErrValidation):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrDatabase):
		s.logger.Error("http.store", "err", err)
		s.writeError(w, http.StatusServiceUnavailable, "store unavailable")
	default:
		s.logger.Error("http.internal", "err", err)
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}
