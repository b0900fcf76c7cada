package extract

import (
	"fmt"
	"log/slog"
)

// Pipeline runs the full extraction sequence for one document:
// normalize -> classify -> common extractors -> type extractors -> assemble.
// It holds no per-document state, so a single Pipeline is safe to share
// across goroutines; the rule tables it reads are fixed at startup.
type Pipeline struct {
	logger *slog.Logger

	// stage hooks; production pipelines always use Classify and applyRules,
	// tests swap them to exercise the failure path
	classify func(string) DocumentType
	apply    func([]FieldRule, string, FieldSet) FieldSet
}

func NewPipeline(logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{logger: logger, classify: Classify, apply: applyRules}
}

// Process turns one recognition result into an ExtractionResult. A single
// attempt per call: retries, if any, are the caller's concern. Faults during
// classification or extraction are contained to this document's result; the
// returned value is FAILED with empty fields and a diagnostic placeholder as
// raw text, and no error escapes.
func (p *Pipeline) Process(raw RawRecognitionResult) (res ExtractionResult) {
	res = ExtractionResult{
		RawText:    raw.Text,
		Confidence: raw.Confidence,
		Outcome:    OutcomeProcessing,
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("pipeline.failed", "panic", fmt.Sprint(r))
			res = failedResult(raw.Confidence, fmt.Sprintf("extraction failed: %v", r))
		}
	}()

	normalized := Normalize(raw.Text)
	docType := p.classify(normalized)

	fields := p.apply(CommonExtractors(), raw.Text, nil)
	fields = p.apply(ExtractorsFor(docType), raw.Text, fields)

	res = assemble(docType, fields, raw)
	p.logger.Info("pipeline.ok",
		"document_type", string(res.DocumentType),
		"fields", len(res.Fields),
		"confidence", res.Confidence,
	)
	return res
}

// assemble builds the terminal COMPLETED result. Confidence is the upstream
// OCR score copied verbatim; extraction never revises it.
func assemble(docType DocumentType, fields FieldSet, raw RawRecognitionResult) ExtractionResult {
	return ExtractionResult{
		DocumentType: docType,
		Fields:       fields,
		RawText:      raw.Text,
		Confidence:   raw.Confidence,
		Outcome:      OutcomeCompleted,
	}
}

// failedResult builds the terminal FAILED result. Fields are cleared and the
// raw text slot carries the diagnostic; the caller still holds the original
// recognized text.
func failedResult(confidence float64, diagnostic string) ExtractionResult {
	return ExtractionResult{
		DocumentType: TypeUnknown,
		Fields:       nil,
		RawText:      diagnostic,
		Confidence:   confidence,
		Outcome:      OutcomeFailed,
	}
}
