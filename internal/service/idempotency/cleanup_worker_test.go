package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/jms/internal/domain"
)

func TestCleanupWorker_DeleteExpired_Batches(t *testing.T) {
	t.Parallel()

	// Два полных batch и один неполный.
	repo := &stubIdempotencyRepo{deleteResults: []int{2, 2, 1}}

	worker := NewCleanupWorker(repo, WithBatchSize(2))

	deleted, err := worker.DeleteExpired(context.Background(), time.Now().UTC())
	if err != nil {
		t.Fatalf("delete expired failed: %v", err)
	}
	if deleted != 5 {
		t.Fatalf("expected 5 deleted, got %d", deleted)
	}
	if got := len(repo.deleteCalls); got != 3 {
		t.Fatalf("expected 3 delete calls, got %d", got)
	}
	for _, limit := range repo.deleteCalls {
		if limit != 2 {
			t.Fatalf("expected batch size 2, got %d", limit)
		}
	}
}

func TestCleanupWorker_DeleteExpired_StopsOnEmptyBatch(t *testing.T) {
	t.Parallel()

	repo := &stubIdempotencyRepo{deleteResults: []int{0}}

	worker := NewCleanupWorker(repo, WithBatchSize(10))

	deleted, err := worker.DeleteExpired(context.Background(), time.Now().UTC())
	if err != nil {
		t.Fatalf("delete expired failed: %v", err)
	}
	if deleted != 0 {
		t.Fatalf("expected 0 deleted, got %d", deleted)
	}
	if got := len(repo.deleteCalls); got != 1 {
		t.Fatalf("expected 1 delete call, got %d", got)
	}
}

func TestCleanupWorker_DeleteExpired_ReturnsRepoError(t *testing.T) {
	t.Parallel()

	repo := &stubIdempotencyRepo{deleteErr: errors.New("storage down")}

	worker := NewCleanupWorker(repo, WithBatchSize(10))

	if _, err := worker.DeleteExpired(context.Background(), time.Now().UTC()); err == nil {
		t.Fatal("expected repo error")
	}
}

func TestCleanupWorker_DeleteExpired_StopsOnCanceledContext(t *testing.T) {
	t.Parallel()

	repo := &stubIdempotencyRepo{deleteResults: []int{2, 2, 2}}

	worker := NewCleanupWorker(repo, WithBatchSize(2))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := worker.DeleteExpired(ctx, time.Now().UTC())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if got := len(repo.deleteCalls); got != 0 {
		t.Fatalf("expected 0 delete calls, got %d", got)
	}
}

func TestCleanupWorker_Run_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	repo := &stubIdempotencyRepo{}

	worker := NewCleanupWorker(
		repo,
		WithInterval(5*time.Millisecond),
		WithBatchSize(10),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		worker.Run(ctx)
	}()

	time.Sleep(15 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("cleanup worker did not stop on context cancel")
	}
}

type stubIdempotencyRepo struct {
	deleteResults []int
	deleteCalls   []int
	deleteErr     error
}

func (s *stubIdempotencyRepo) CreateProcessing(key, requestHash string, ttlAt time.Time) (domain.IdempotencyRecord, error) {
	return domain.IdempotencyRecord{Key: key, RequestHash: requestHash, TTLAt: ttlAt}, nil
}

func (s *stubIdempotencyRepo) Get(key string) (domain.IdempotencyRecord, error) {
	return domain.IdempotencyRecord{}, domain.NewNotFound("idempotency_key", key)
}

func (s *stubIdempotencyRepo) MarkDone(key string, responseBody []byte, httpStatus int) error {
	return nil
}

func (s *stubIdempotencyRepo) MarkFailed(key string, responseBody []byte, httpStatus int) error {
	return nil
}

func (s *stubIdempotencyRepo) DeleteExpired(before time.Time, limit int) (int, error) {
	if s.deleteErr != nil {
		return 0, s.deleteErr
	}
	s.deleteCalls = append(s.deleteCalls, limit)
	if len(s.deleteResults) == 0 {
		return 0, nil
	}
	deleted := s.deleteResults[0]
	s.deleteResults = s.deleteResults[1:]
	return deleted, nil
}

var _ domain.IdempotencyRepository = (*stubIdempotencyRepo)(nil)
