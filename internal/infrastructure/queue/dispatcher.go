package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/robark/destiny-matrix/internal/api/metrics"
	"github.com/robark/destiny-matrix/internal/core/domain"
	"github.com/robark/destiny-matrix/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	writeTimeout   = 5 * time.Second
)

// Dispatcher writes analysis journal records in the background. Records are
// routed to a fixed set of workers by hashing the user id, so one user's
// records are persisted in the order they were produced.
type Dispatcher struct {
	workers []chan domain.AnalysisRecord
	repo    ports.AnalysisRepository
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, repo ports.AnalysisRepository, log zerolog.Logger) *Dispatcher {
	return newDispatcher(numWorkers, channelBuffer, repo, log)
}

func newDispatcher(numWorkers, buffer int, repo ports.AnalysisRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.AnalysisRecord, numWorkers),
		repo:    repo,
		log:     log.With().Str("component", "journal").Logger(),
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AnalysisRecord, buffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled or
// after Close has drained their channel.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands a record to the worker responsible for its user. It never
// blocks: when that worker's channel is full the record is dropped.
func (d *Dispatcher) Enqueue(record domain.AnalysisRecord) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		metrics.JournalErrorsTotal.WithLabelValues("closed").Inc()
		return
	}

	idx := d.shardIndex(record.UserID)
	select {
	case d.workers[idx] <- record:
		metrics.JournalQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.JournalErrorsTotal.WithLabelValues("queue_full").Inc()
		d.log.Warn().
			Str("request_id", record.RequestID).
			Int("worker_id", idx).
			Msg("journal queue full, record dropped")
	}
}

// Close stops accepting records and waits until queued ones are written.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, ch := range d.workers {
		close(ch)
	}
	d.mu.Unlock()

	d.wg.Wait()
}

// shardIndex maps a user id deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AnalysisRecord) {
	defer d.wg.Done()
	label := strconv.Itoa(id)

	for {
		select {
		case <-ctx.Done():
			return
		case rec, ok := <-ch:
			if !ok {
				return
			}
			metrics.JournalQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.write(ctx, id, &rec)
		}
	}
}

func (d *Dispatcher) write(ctx context.Context, id int, rec *domain.AnalysisRecord) {
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if err := d.repo.Insert(wctx, rec); err != nil {
		metrics.JournalErrorsTotal.WithLabelValues("insert_failed").Inc()
		d.log.Error().Err(err).
			Str("request_id", rec.RequestID).
			Str("order_id", rec.OrderID).
			Int("worker_id", id).
			Msg("journal write failed")
	}
}
