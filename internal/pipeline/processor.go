package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/propdocs/extractor/internal/extract"
	"github.com/propdocs/extractor/internal/observability/metrics"
	"github.com/propdocs/extractor/internal/repository"
)

// Extractor is the extraction stage as the processor sees it;
// *extract.Pipeline is the production implementation.
type Extractor interface {
	Process(raw extract.RawRecognitionResult) extract.ExtractionResult
}

// Processor coordinates one stored document through the extraction pipeline
// and persists the outcome. It is the bridge between the pure in-process
// pipeline and the document store; failures stay scoped to the one document.
type Processor struct {
	Logger   *slog.Logger
	Repo     repository.DocumentRepository
	Pipeline Extractor
	Metrics  *metrics.PipelineMetrics
}

func NewProcessor(logger *slog.Logger, repo repository.DocumentRepository, p Extractor, m *metrics.PipelineMetrics) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Logger: logger, Repo: repo, Pipeline: p, Metrics: m}
}

// ProcessDocument loads a document, runs extraction, and records the result.
// The returned error covers store access only; an extraction failure is a
// FAILED row, not an error.
func (p *Processor) ProcessDocument(ctx context.Context, docID uuid.UUID) error {
	doc, err := p.Repo.GetByID(ctx, docID)
	if err != nil {
		p.Logger.Error("processor.load.failed", "document_id", docID, "err", err)
		return fmt.Errorf("load document: %w", err)
	}
	if err := p.Repo.MarkProcessing(ctx, docID); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}

	res := p.Pipeline.Process(extract.RawRecognitionResult{
		Text:       doc.RawText,
		Confidence: doc.Confidence,
	})

	if res.Outcome == extract.OutcomeFailed {
		p.observe(res)
		// the diagnostic rides in the failed result's raw text slot
		return p.Repo.FinishFailure(ctx, docID, res.RawText)
	}

	fieldsJSON, err := json.Marshal(res.Fields)
	if err != nil {
		p.observe(failedFrom(res))
		return p.Repo.FinishFailure(ctx, docID, fmt.Sprintf("encode fields: %v", err))
	}
	if err := extract.ValidateFieldsJSON(res.DocumentType, fieldsJSON); err != nil {
		p.Logger.Error("processor.validate.failed", "document_id", docID, "err", err)
		p.observe(failedFrom(res))
		return p.Repo.FinishFailure(ctx, docID, fmt.Sprintf("fields validation: %v", err))
	}

	if err := p.Repo.FinishSuccess(ctx, docID, res.DocumentType, fieldsJSON); err != nil {
		return err
	}
	p.observe(res)
	p.Logger.Info("processor.extract.ok",
		"document_id", docID,
		"document_type", string(res.DocumentType),
		"fields", len(res.Fields),
		"confidence", res.Confidence,
	)
	return nil
}

func (p *Processor) observe(res extract.ExtractionResult) {
	if p.Metrics == nil {
		return
	}
	p.Metrics.RecordDocument(string(res.DocumentType), string(res.Outcome), len(res.Fields))
}

func failedFrom(res extract.ExtractionResult) extract.ExtractionResult {
	res.Outcome = extract.OutcomeFailed
	return res
}
