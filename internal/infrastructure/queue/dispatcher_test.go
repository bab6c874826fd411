package queue

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/robark/destiny-matrix/internal/core/domain"
)

type stubRepo struct {
	mu      sync.Mutex
	records []domain.AnalysisRecord
	err     error
	block   chan struct{}
}

func (r *stubRepo) Insert(_ context.Context, rec *domain.AnalysisRecord) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.records = append(r.records, *rec)
	return nil
}

func (r *stubRepo) snapshot() []domain.AnalysisRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.AnalysisRecord(nil), r.records...)
}

func TestDispatcher_PreservesPerUserOrder(t *testing.T) {
	repo := &stubRepo{}
	d := NewDispatcher(4, repo, zerolog.Nop())
	d.Start(context.Background())

	for i := 0; i < 50; i++ {
		d.Enqueue(domain.AnalysisRecord{UserID: "u-" + strconv.Itoa(i%3), RequestID: strconv.Itoa(i)})
	}
	d.Close()

	got := repo.snapshot()
	if len(got) != 50 {
		t.Fatalf("expected 50 records, got %d", len(got))
	}

	last := map[string]int{}
	for _, rec := range got {
		n, _ := strconv.Atoi(rec.RequestID)
		if prev, ok := last[rec.UserID]; ok && n < prev {
			t.Fatalf("records for %s out of order: %d after %d", rec.UserID, n, prev)
		}
		last[rec.UserID] = n
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(8, &stubRepo{}, zerolog.Nop())
	first := d.shardIndex("user-42")
	for i := 0; i < 10; i++ {
		if d.shardIndex("user-42") != first {
			t.Fatalf("shard index must be deterministic")
		}
	}
	if first < 0 || first >= 8 {
		t.Fatalf("shard index out of range: %d", first)
	}
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	repo := &stubRepo{block: make(chan struct{})}
	d := newDispatcher(1, 1, repo, zerolog.Nop())
	d.Start(context.Background())

	// First record is picked up by the worker and blocks in Insert, the
	// second fills the buffer, the rest are dropped.
	d.Enqueue(domain.AnalysisRecord{UserID: "u", RequestID: "1"})
	for len(d.workers[0]) != 0 {
		time.Sleep(time.Millisecond)
	}
	d.Enqueue(domain.AnalysisRecord{UserID: "u", RequestID: "2"})
	d.Enqueue(domain.AnalysisRecord{UserID: "u", RequestID: "3"})
	d.Enqueue(domain.AnalysisRecord{UserID: "u", RequestID: "4"})

	close(repo.block)
	d.Close()

	if got := len(repo.snapshot()); got != 2 {
		t.Fatalf("expected 2 persisted records, got %d", got)
	}
}

func TestDispatcher_InsertErrorsDoNotStopWorker(t *testing.T) {
	repo := &stubRepo{err: errors.New("mongo down")}
	d := NewDispatcher(1, repo, zerolog.Nop())
	d.Start(context.Background())

	d.Enqueue(domain.AnalysisRecord{UserID: "u"})
	d.Enqueue(domain.AnalysisRecord{UserID: "u"})
	d.Close()

	if len(repo.snapshot()) != 0 {
		t.Fatalf("no records should be stored when inserts fail")
	}
}

func TestDispatcher_EnqueueAfterClose(t *testing.T) {
	d := NewDispatcher(1, &stubRepo{}, zerolog.Nop())
	d.Start(context.Background())
	d.Close()
	d.Close()

	d.Enqueue(domain.AnalysisRecord{UserID: "u"})
}
