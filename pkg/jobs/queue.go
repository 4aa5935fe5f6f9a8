// Package jobs runs fire-and-forget work on a bounded worker pool.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// ErrQueueFull is returned when the buffer has no room left.
var ErrQueueFull = errors.New("queue full")

// ErrQueueClosed is returned for items enqueued before Start or after Stop.
var ErrQueueClosed = errors.New("queue closed")

// Handler processes one item.
type Handler[T any] func(context.Context, T) error

// QueueConfig configures worker pool behaviour.
type QueueConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

// Queue dispatches items to a fixed number of workers. Failed items are
// retried in place with a linear backoff.
type Queue[T any] struct {
	name    string
	handler Handler[T]

	workers    int
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger

	items   chan T
	dropped atomic.Int64
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.RWMutex
	started bool
	closed  bool
}

// NewQueue builds a new queue with the provided handler.
func NewQueue[T any](name string, handler Handler[T], cfg QueueConfig) *Queue[T] {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 64
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 200 * time.Millisecond
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Queue[T]{
		name:       name,
		handler:    handler,
		workers:    cfg.Workers,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     cfg.Logger,
		items:      make(chan T, cfg.BufferSize),
	}
}

// Start begins worker consumption. Safe to call once.
func (q *Queue[T]) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started || q.closed {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	q.started = true
	q.logger.Info("queue started", zap.String("queue", q.name), zap.Int("workers", q.workers))
}

// Enqueue hands item to the workers without blocking.
func (q *Queue[T]) Enqueue(item T) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if !q.started || q.closed {
		return fmt.Errorf("queue %s: %w", q.name, ErrQueueClosed)
	}
	select {
	case q.items <- item:
		return nil
	default:
		return fmt.Errorf("queue %s: %w", q.name, ErrQueueFull)
	}
}

// Stop refuses new items and waits for the buffered ones to be processed.
// When ctx ends first, in-flight work is cancelled and the rest is dropped.
func (q *Queue[T]) Stop(ctx context.Context) error {
	q.mu.Lock()
	if !q.started || q.closed {
		q.closed = true
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.items)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.cancel()
		q.logger.Info("queue stopped", zap.String("queue", q.name))
		return nil
	case <-ctx.Done():
		q.cancel()
		<-done
		q.logger.Warn("queue stopped before draining", zap.String("queue", q.name), zap.Int64("dropped", q.dropped.Load()))
		return ctx.Err()
	}
}

// Dropped reports how many queued items were discarded because the queue was
// cancelled before they could run.
func (q *Queue[T]) Dropped() int64 {
	return q.dropped.Load()
}

func (q *Queue[T]) worker() {
	defer q.wg.Done()
	for item := range q.items {
		if q.ctx.Err() != nil {
			q.dropped.Add(1)
			continue
		}
		q.process(item)
	}
}

func (q *Queue[T]) process(item T) {
	var err error
	for attempt := 0; attempt <= q.maxRetries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(time.Duration(attempt) * q.retryDelay)
			select {
			case <-q.ctx.Done():
				timer.Stop()
				q.logger.Warn("job abandoned", zap.String("queue", q.name), zap.Error(err))
				return
			case <-timer.C:
			}
		}
		if err = q.handler(q.ctx, item); err == nil {
			return
		}
		q.logger.Warn("job failed", zap.String("queue", q.name), zap.Int("attempt", attempt+1), zap.Error(err))
	}
	q.logger.Error("job exceeded retries", zap.String("queue", q.name), zap.Int("max_retries", q.maxRetries), zap.Error(err))
}
