package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/admin-dashboard-api/internal/models"
	"github.com/noah-isme/admin-dashboard-api/pkg/jobs"
)

// AuditWriterConfig sizes the background audit queue.
type AuditWriterConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
}

// AsyncAuditWriter takes audit inserts off the request path. Reads go
// straight to the store.
type AsyncAuditWriter struct {
	store  auditStore
	queue  *jobs.Queue[*models.AuditLog]
	logger *zap.Logger
}

// NewAsyncAuditWriter wraps store with a retrying worker queue. Call Start
// before use and Stop during shutdown to flush pending entries.
func NewAsyncAuditWriter(store auditStore, cfg AuditWriterConfig, logger *zap.Logger) *AsyncAuditWriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &AsyncAuditWriter{store: store, logger: logger}
	w.queue = jobs.NewQueue("audit", w.persist, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: cfg.MaxRetries,
		Logger:     logger,
	})
	return w
}

// Start launches the workers.
func (w *AsyncAuditWriter) Start(ctx context.Context) {
	w.queue.Start(ctx)
}

// Stop drains queued entries until ctx expires.
func (w *AsyncAuditWriter) Stop(ctx context.Context) error {
	return w.queue.Stop(ctx)
}

// CreateAuditLog enqueues a copy of entry. When the queue cannot accept it
// the entry is written synchronously so it is not lost.
func (w *AsyncAuditWriter) CreateAuditLog(ctx context.Context, entry *models.AuditLog) error {
	if entry == nil {
		return nil
	}
	clone := *entry
	if err := w.queue.Enqueue(&clone); err != nil {
		w.logger.Warn("audit queue rejected entry, writing inline", zap.String("action", entry.Action), zap.Error(err))
		return w.store.CreateAuditLog(ctx, entry)
	}
	return nil
}

// ListByResource reads the trail from the underlying store.
func (w *AsyncAuditWriter) ListByResource(ctx context.Context, resource, resourceID string, limit int) ([]models.AuditLog, error) {
	return w.store.ListByResource(ctx, resource, resourceID, limit)
}

func (w *AsyncAuditWriter) persist(ctx context.Context, entry *models.AuditLog) error {
	return w.store.CreateAuditLog(ctx, entry)
}
