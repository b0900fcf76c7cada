package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/propdocs/extractor/internal/common"
	"github.com/propdocs/extractor/internal/entity"
	"github.com/propdocs/extractor/internal/extract"
)

// ListFilter narrows List results. Zero values mean "no constraint".
type ListFilter struct {
	Status       extract.Outcome
	DocumentType extract.DocumentType
	From         *time.Time
	To           *time.Time
	Limit        int
}

type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Document, error)
	List(ctx context.Context, filter ListFilter) ([]*entity.Document, error)
	MarkProcessing(ctx context.Context, id uuid.UUID) error
	FinishSuccess(ctx context.Context, id uuid.UUID, docType extract.DocumentType, fields []byte) error
	FinishFailure(ctx context.Context, id uuid.UUID, message string) error
}

type documentRepo struct {
	store *Store
	log   *slog.Logger
}

func NewDocumentRepository(store *Store, log *slog.Logger) DocumentRepository {
	if log == nil {
		log = slog.Default()
	}
	return &documentRepo{store: store, log: log}
}

const documentColumns = `id, source_name, raw_text, confidence, status, document_type, fields, error_message, submitted_at, processed_at`

// dbError tags a store failure so callers can match common.ErrDatabase
// without knowing the driver.
func dbError(op string, err error) error {
	return common.WrapError(fmt.Errorf("%w: %w", common.ErrDatabase, err), op)
}

func (r *documentRepo) Create(ctx context.Context, doc *entity.Document) error {
	query := r.store.rebind(`
INSERT INTO documents (` + documentColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.store.DB.ExecContext(ctx, query,
		doc.ID.String(), doc.SourceName, doc.RawText, doc.Confidence,
		string(doc.Status), string(doc.DocumentType), nullableBytes(doc.Fields),
		doc.ErrorMessage, doc.SubmittedAt, doc.ProcessedAt,
	)
	if err != nil {
		r.log.Error("document create failed", "document_id", doc.ID, "err", err)
		return dbError("insert document", err)
	}
	r.log.Info("document created", "document_id", doc.ID, "source", doc.SourceName)
	return nil
}

func (r *documentRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	query := r.store.rebind(`SELECT ` + documentColumns + ` FROM documents WHERE id = ?`)
	doc, err := scanDocument(r.store.DB.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		r.log.Error("document lookup failed", "document_id", id, "err", err)
		return nil, dbError("select document", err)
	}
	return doc, nil
}

func (r *documentRepo) List(ctx context.Context, filter ListFilter) ([]*entity.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE 1=1`
	var args []any
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.DocumentType != "" {
		query += ` AND document_type = ?`
		args = append(args, string(filter.DocumentType))
	}
	if filter.From != nil {
		query += ` AND submitted_at >= ?`
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		query += ` AND submitted_at <= ?`
		args = append(args, *filter.To)
	}
	query += ` ORDER BY submitted_at`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := r.store.DB.QueryContext(ctx, r.store.rebind(query), args...)
	if err != nil {
		r.log.Error("document list failed", "err", err)
		return nil, dbError("select documents", err)
	}
	defer rows.Close()

	var out []*entity.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, dbError("scan document", err)
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("iterate documents", err)
	}
	return out, nil
}

func (r *documentRepo) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	query := r.store.rebind(`UPDATE documents SET status = ? WHERE id = ?`)
	if _, err := r.store.DB.ExecContext(ctx, query, string(extract.OutcomeProcessing), id.String()); err != nil {
		r.log.Error("document mark processing failed", "document_id", id, "err", err)
		return dbError("update document status", err)
	}
	return nil
}

func (r *documentRepo) FinishSuccess(ctx context.Context, id uuid.UUID, docType extract.DocumentType, fields []byte) error {
	query := r.store.rebind(`
UPDATE documents
SET status = ?, document_type = ?, fields = ?, error_message = NULL, processed_at = ?
WHERE id = ?`)
	_, err := r.store.DB.ExecContext(ctx, query,
		string(extract.OutcomeCompleted), string(docType), nullableBytes(fields), time.Now().UTC(), id.String())
	if err != nil {
		r.log.Error("document finish(COMPLETED) failed", "document_id", id, "err", err)
		return dbError("finish document", err)
	}
	r.log.Info("document finished (COMPLETED)", "document_id", id, "document_type", string(docType))
	return nil
}

func (r *documentRepo) FinishFailure(ctx context.Context, id uuid.UUID, message string) error {
	query := r.store.rebind(`
UPDATE documents
SET status = ?, fields = NULL, error_message = ?, processed_at = ?
WHERE id = ?`)
	_, err := r.store.DB.ExecContext(ctx, query,
		string(extract.OutcomeFailed), message, time.Now().UTC(), id.String())
	if err != nil {
		r.log.Error("document finish(FAILED) failed", "document_id", id, "err", err)
		return dbError("finish document", err)
	}
	r.log.Warn("document finished (FAILED)", "document_id", id, "error", message)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*entity.Document, error) {
	var (
		doc      entity.Document
		id       string
		status   string
		docType  string
		fields   sql.NullString
		errMsg   sql.NullString
		procTime sql.NullTime
	)
	err := row.Scan(&id, &doc.SourceName, &doc.RawText, &doc.Confidence,
		&status, &docType, &fields, &errMsg, &doc.SubmittedAt, &procTime)
	if err != nil {
		return nil, err
	}
	doc.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse document id %q: %w", id, err)
	}
	doc.Status = extract.Outcome(status)
	doc.DocumentType = extract.DocumentType(docType)
	if fields.Valid {
		doc.Fields = []byte(fields.String)
	}
	if errMsg.Valid {
		doc.ErrorMessage = &errMsg.String
	}
	if procTime.Valid {
		doc.ProcessedAt = &procTime.Time
	}
	return &doc, nil
}

func nullableBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
