package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propdocs/extractor/internal/common"
	"github.com/propdocs/extractor/internal/entity"
	"github.com/propdocs/extractor/internal/extract"
)

func newRepoWithMock(t *testing.T) (DocumentRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	store := &Store{DB: db, driver: "sqlite"}
	return NewDocumentRepository(store, nil), mock, func() { _ = db.Close() }
}

func TestCreateInsertsDocument(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	doc := &entity.Document{
		ID:           uuid.New(),
		SourceName:   "lease.txt",
		RawText:      "LEASE AGREEMENT",
		Confidence:   88.0,
		Status:       extract.OutcomePending,
		DocumentType: extract.TypeUnknown,
		SubmittedAt:  time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO documents").
		WithArgs(doc.ID.String(), doc.SourceName, doc.RawText, doc.Confidence,
			string(extract.OutcomePending), string(extract.TypeUnknown),
			nil, nil, doc.SubmittedAt, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Create(context.Background(), doc))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDMapsNotFound(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	id := uuid.New()
	mock.ExpectQuery("SELECT id, source_name, raw_text").
		WithArgs(id.String()).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), id)
	assert.True(t, errors.Is(err, common.ErrNotFound), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Driver faults other than "no rows" surface as common.ErrDatabase so the
// HTTP layer can map them without inspecting driver error types.
func TestGetByIDTagsDriverErrors(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	id := uuid.New()
	mock.ExpectQuery("SELECT id, source_name, raw_text").
		WithArgs(id.String()).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.GetByID(context.Background(), id)
	assert.True(t, errors.Is(err, common.ErrDatabase), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDScansDocument(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	id := uuid.New()
	submitted := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "source_name", "raw_text", "confidence", "status",
		"document_type", "fields", "error_message", "submitted_at", "processed_at",
	}).AddRow(id.String(), "rates.txt", "Rates Notice", 73.2,
		string(extract.OutcomeCompleted), string(extract.TypeRatesNotice),
		`{"councilName":"Example City Council"}`, nil, submitted, submitted)

	mock.ExpectQuery("SELECT id, source_name, raw_text").
		WithArgs(id.String()).
		WillReturnRows(rows)

	doc, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, doc.ID)
	assert.Equal(t, extract.OutcomeCompleted, doc.Status)
	assert.Equal(t, extract.TypeRatesNotice, doc.DocumentType)
	assert.JSONEq(t, `{"councilName":"Example City Council"}`, string(doc.Fields))
	require.NotNil(t, doc.ProcessedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFinishSuccessUpdatesExtractionColumns(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	id := uuid.New()
	mock.ExpectExec("UPDATE documents").
		WithArgs(string(extract.OutcomeCompleted), string(extract.TypeLeaseAgreement),
			`{"tenantName":"Jane Smith"}`, sqlmock.AnyArg(), id.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.FinishSuccess(context.Background(), id, extract.TypeLeaseAgreement, []byte(`{"tenantName":"Jane Smith"}`))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFinishFailureClearsFields(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	id := uuid.New()
	mock.ExpectExec("UPDATE documents").
		WithArgs(string(extract.OutcomeFailed), "extraction failed: boom", sqlmock.AnyArg(), id.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.FinishFailure(context.Background(), id, "extraction failed: boom")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAppliesFilter(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	rows := sqlmock.NewRows([]string{
		"id", "source_name", "raw_text", "confidence", "status",
		"document_type", "fields", "error_message", "submitted_at", "processed_at",
	})
	mock.ExpectQuery("SELECT id, source_name, raw_text").
		WithArgs(string(extract.OutcomeCompleted), string(extract.TypeRatesNotice), 10).
		WillReturnRows(rows)

	docs, err := repo.List(context.Background(), ListFilter{
		Status:       extract.OutcomeCompleted,
		DocumentType: extract.TypeRatesNotice,
		Limit:        10,
	})
	require.NoError(t, err)
	assert.Empty(t, docs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRebindRewritesPlaceholdersForPgx(t *testing.T) {
	s := &Store{driver: "pgx"}
	assert.Equal(t, "UPDATE documents SET status = $1 WHERE id = $2",
		s.rebind("UPDATE documents SET status = ? WHERE id = ?"))

	s = &Store{driver: "sqlite"}
	assert.Equal(t, "UPDATE documents SET status = ? WHERE id = ?",
		s.rebind("UPDATE documents SET status = ? WHERE id = ?"))
}
