package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/propdocs/extractor/internal/extract"
)

// Document represents a submitted document for data transfer between layers.
// RawText and Confidence come from the upstream OCR collaborator; the
// remaining extraction columns are filled once the pipeline finishes.
type Document struct {
	ID           uuid.UUID            `json:"id"`
	SourceName   string               `json:"source_name"`
	RawText      string               `json:"raw_text"`
	Confidence   float64              `json:"confidence"`
	Status       extract.Outcome      `json:"status"`
	DocumentType extract.DocumentType `json:"document_type"`
	Fields       json.RawMessage      `json:"fields,omitempty"`
	ErrorMessage *string              `json:"error_message,omitempty"`
	SubmittedAt  time.Time            `json:"submitted_at"`
	ProcessedAt  *time.Time           `json:"processed_at,omitempty"`
}
