package async

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propdocs/extractor/internal/common"
	"github.com/propdocs/extractor/internal/entity"
	"github.com/propdocs/extractor/internal/extract"
	"github.com/propdocs/extractor/internal/pipeline"
	"github.com/propdocs/extractor/internal/repository"
)

type syncRepoFake struct {
	mu   sync.Mutex
	docs map[uuid.UUID]*entity.Document
}

func newSyncRepoFake() *syncRepoFake {
	return &syncRepoFake{docs: map[uuid.UUID]*entity.Document{}}
}

func (f *syncRepoFake) Create(_ context.Context, doc *entity.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *doc
	f.docs[doc.ID] = &cp
	return nil
}

func (f *syncRepoFake) GetByID(_ context.Context, id uuid.UUID) (*entity.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *doc
	return &cp, nil
}

func (f *syncRepoFake) List(context.Context, repository.ListFilter) ([]*entity.Document, error) {
	return nil, nil
}

func (f *syncRepoFake) MarkProcessing(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[id].Status = extract.OutcomeProcessing
	return nil
}

func (f *syncRepoFake) FinishSuccess(_ context.Context, id uuid.UUID, docType extract.DocumentType, fields []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc := f.docs[id]
	doc.Status = extract.OutcomeCompleted
	doc.DocumentType = docType
	doc.Fields = fields
	return nil
}

func (f *syncRepoFake) FinishFailure(_ context.Context, id uuid.UUID, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc := f.docs[id]
	doc.Status = extract.OutcomeFailed
	doc.ErrorMessage = &message
	return nil
}

func TestProcessorQueueDrainsOnShutdown(t *testing.T) {
	repo := newSyncRepoFake()
	proc := pipeline.NewProcessor(nil, repo, extract.NewPipeline(nil), nil)

	var ids []uuid.UUID
	texts := []string{
		"LEASE AGREEMENT\nTenant: Jane Smith",
		"Rates Notice\nCouncil: Example City Council",
		"Random unrelated memo",
	}
	for _, text := range texts {
		doc := &entity.Document{
			ID:          uuid.New(),
			SourceName:  "doc.txt",
			RawText:     text,
			Confidence:  75,
			Status:      extract.OutcomePending,
			SubmittedAt: time.Now().UTC(),
		}
		require.NoError(t, repo.Create(context.Background(), doc))
		ids = append(ids, doc.ID)
	}

	q := NewProcessorQueue(proc, nil, WithWorkers(2), WithQueueSize(8))
	for _, id := range ids {
		require.NoError(t, q.Enqueue(context.Background(), Job{DocumentID: id, SubmittedAt: time.Now()}))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	for _, id := range ids {
		doc, err := repo.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, extract.OutcomeCompleted, doc.Status, "document %s", id)
	}
}

func TestEnqueueAfterShutdownIsNoop(t *testing.T) {
	repo := newSyncRepoFake()
	proc := pipeline.NewProcessor(nil, repo, extract.NewPipeline(nil), nil)

	q := NewProcessorQueue(proc, nil, WithWorkers(1))
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	q.Shutdown(ctx)

	assert.NoError(t, q.Enqueue(context.Background(), Job{DocumentID: uuid.New()}))
	// Shutdown twice is safe
	q.Shutdown(ctx)
}
