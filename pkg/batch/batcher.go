package batch

import (
	"context"
	"sync"
	"time"
)

// Operation is one unit of batched work.
type Operation interface {
	Execute(ctx context.Context) error
}

// Processor executes a drained batch in one shot.
type Processor interface {
	ProcessBatch(ctx context.Context, operations []Operation) error
}

// Batcher accumulates operations and hands them to its processor either
// when the batch fills or when the flush interval elapses, whichever
// comes first. Stop drains whatever is still pending.
type Batcher struct {
	batchSize     int
	batchInterval time.Duration
	processor     Processor

	mu      sync.Mutex
	pending []Operation

	flushChan chan struct{}
	stopChan  chan struct{}
	stopOnce  sync.Once
}

func NewBatcher(batchSize int, batchInterval time.Duration, processor Processor) *Batcher {
	b := &Batcher{
		batchSize:     batchSize,
		batchInterval: batchInterval,
		processor:     processor,
		pending:       make([]Operation, 0, batchSize),
		flushChan:     make(chan struct{}, 1),
		stopChan:      make(chan struct{}),
	}

	go b.run()

	return b
}

// Add enqueues an operation, triggering a flush when the batch is full.
func (b *Batcher) Add(op Operation) error {
	b.mu.Lock()
	b.pending = append(b.pending, op)
	full := len(b.pending) >= b.batchSize
	b.mu.Unlock()

	if full {
		select {
		case b.flushChan <- struct{}{}:
		default:
		}
	}

	return nil
}

// Flush drains and processes all pending operations immediately.
func (b *Batcher) Flush(ctx context.Context) error {
	b.mu.Lock()
	if len(b.pending) == 0 {
		b.mu.Unlock()
		return nil
	}

	ops := b.pending
	b.pending = make([]Operation, 0, b.batchSize)
	b.mu.Unlock()

	return b.processor.ProcessBatch(ctx, ops)
}

// Stop stops the background flusher, draining remaining operations.
// Safe to call more than once.
func (b *Batcher) Stop() {
	b.stopOnce.Do(func() {
		close(b.stopChan)
	})
}

// PendingCount reports the number of queued operations.
func (b *Batcher) PendingCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

func (b *Batcher) run() {
	ticker := time.NewTicker(b.batchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = b.Flush(context.Background())
		case <-b.flushChan:
			_ = b.Flush(context.Background())
		case <-b.stopChan:
			_ = b.Flush(context.Background())
			return
		}
	}
}
