package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/propdocs/extractor/internal/async"
	"github.com/propdocs/extractor/internal/entity"
	"github.com/propdocs/extractor/internal/extract"
	"github.com/propdocs/extractor/internal/repository"
)

type submitDocumentRequest struct {
	SourceName string  `json:"source_name"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Async      bool    `json:"async,omitempty"`
}

// handleSubmitDocument accepts recognized text plus the OCR confidence score
// and either runs extraction inline or hands the stored document to the
// worker queue.
func (s *Server) handleSubmitDocument(w http.ResponseWriter, r *http.Request) {
	var req submitDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Confidence < 0 || req.Confidence > 100 {
		s.writeError(w, http.StatusBadRequest, "confidence must be in [0,100]")
		return
	}
	if req.SourceName == "" {
		req.SourceName = "untitled"
	}

	doc := &entity.Document{
		ID:           uuid.New(),
		SourceName:   req.SourceName,
		RawText:      req.Text,
		Confidence:   req.Confidence,
		Status:       extract.OutcomePending,
		DocumentType: extract.TypeUnknown,
		SubmittedAt:  time.Now().UTC(),
	}
	if err := s.docsRepo.Create(r.Context(), doc); err != nil {
		s.writeMappedError(w, err)
		return
	}

	if req.Async {
		_ = s.queue.Enqueue(r.Context(), async.Job{DocumentID: doc.ID, SubmittedAt: doc.SubmittedAt})
		s.writeJSON(w, http.StatusAccepted, doc)
		return
	}

	if err := s.processor.ProcessDocument(r.Context(), doc.ID); err != nil {
		s.writeMappedError(w, err)
		return
	}
	processed, err := s.docsRepo.GetByID(r.Context(), doc.ID)
	if err != nil {
		s.writeMappedError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, processed)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "documentID"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "document id must be a UUID")
		return
	}
	doc, err := s.docsRepo.GetByID(r.Context(), id)
	if err != nil {
		s.writeMappedError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	filter := repository.ListFilter{Limit: 100}
	if v := strings.TrimSpace(r.URL.Query().Get("status")); v != "" {
		filter.Status = extract.Outcome(strings.ToUpper(v))
	}
	if v := strings.TrimSpace(r.URL.Query().Get("type")); v != "" {
		filter.DocumentType = extract.DocumentType(strings.ToUpper(v))
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		filter.Limit = n
	}

	docs, err := s.docsRepo.List(r.Context(), filter)
	if err != nil {
		s.writeMappedError(w, err)
		return
	}
	if docs == nil {
		docs = []*entity.Document{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (s *Server) handleExportResults(w http.ResponseWriter, r *http.Request) {
	var from, to *time.Time
	parseDate := func(s string) (*time.Time, bool) {
		if s == "" {
			return nil, true
		}
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return nil, false
		}
		return &t, true
	}

	from, ok := parseDate(r.URL.Query().Get("from"))
	if !ok {
		s.writeError(w, http.StatusBadRequest, "from must be YYYY-MM-DD")
		return
	}
	to, ok = parseDate(r.URL.Query().Get("to"))
	if !ok {
		s.writeError(w, http.StatusBadRequest, "to must be YYYY-MM-DD")
		return
	}
	docType := extract.DocumentType(strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("type"))))

	data, err := s.exporter.ExportResultsXLSX(r.Context(), from, to, docType)
	if err != nil {
		s.writeMappedError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="extraction-results.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
