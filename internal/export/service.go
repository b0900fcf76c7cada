package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/propdocs/extractor/internal/extract"
	"github.com/propdocs/extractor/internal/repository"
)

// Service is a tiny façade over the document repository that produces XLSX
// bytes for exports.
type Service struct {
	docsRepo  repository.DocumentRepository
	sheetName string
	logger    *slog.Logger
}

func NewService(docsRepo repository.DocumentRepository, sheetName string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if sheetName == "" {
		sheetName = "Extractions"
	}
	return &Service{docsRepo: docsRepo, sheetName: sheetName, logger: logger}
}

// ExportResultsXLSX returns an XLSX workbook (as bytes) of completed
// extractions in the given date window.
// If only from is provided -> from..today (inclusive).
// If only to is provided   -> beginning..to (inclusive).
// If neither is provided   -> all completed documents.
func (s *Service) ExportResultsXLSX(ctx context.Context, from, to *time.Time, docType extract.DocumentType) ([]byte, error) {
	start := time.Now()

	// Normalize dates (date-only, UTC)
	var fromDate, toDate *time.Time
	if from != nil {
		f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
		fromDate = &f
	}
	if to != nil {
		t := time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, 0, time.UTC)
		toDate = &t
	}
	if fromDate != nil && toDate == nil {
		today := time.Now().UTC()
		t := time.Date(today.Year(), today.Month(), today.Day(), 23, 59, 59, 0, time.UTC)
		toDate = &t
	}

	docs, err := s.docsRepo.List(ctx, repository.ListFilter{
		Status:       extract.OutcomeCompleted,
		DocumentType: docType,
		From:         fromDate,
		To:           toDate,
	})
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}

	f := excelize.NewFile()
	sheet := s.sheetName
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Submitted",
		"Source",
		"Document Type",
		"Confidence",
		"Property Address",
		"Date",
		"Amount",
		"All Fields",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, d := range docs {
		var fields extract.FieldSet
		if len(d.Fields) > 0 {
			if err := json.Unmarshal(d.Fields, &fields); err != nil {
				s.logger.Warn("export.fields.unreadable", "document_id", d.ID, "err", err)
			}
		}

		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, d.SubmittedAt.UTC().Format("2006-01-02"))
		write(2, d.SourceName)
		write(3, string(d.DocumentType))
		write(4, d.Confidence)

		addr, _ := fields.Get(extract.FieldPropertyAddress)
		write(5, addr)
		date, _ := fields.Get(extract.FieldDate)
		write(6, date)
		amount, _ := fields.Get(extract.FieldAmount)
		write(7, amount)

		write(8, truncate(string(d.Fields), 200))

		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 12) // date
	_ = f.SetColWidth(sheet, "B", "B", 28) // source
	_ = f.SetColWidth(sheet, "C", "C", 24) // type
	_ = f.SetColWidth(sheet, "E", "E", 42) // address
	_ = f.SetColWidth(sheet, "H", "H", 60) // raw fields

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(docs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// truncate caps a cell at n runes; field values carry user text, so the cut
// must not split a multi-byte character.
func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return string(r[:1])
	}
	return string(r[:n-1]) + "…"
}
