package service

import (
	"context"
	"sync"
	"time"

	"github.com/noah-isme/admin-dashboard-api/internal/dto"
	appErrors "github.com/noah-isme/admin-dashboard-api/pkg/errors"
)

type aggregateFunc func(ctx context.Context) (*dto.AdminDashboardResponse, error)

// DashboardLoader serialises dashboard loads per session. Starting a load
// cancels the previous in-flight load of the same session, and only the most
// recent load may publish its view model.
type DashboardLoader struct {
	mu       sync.Mutex
	sessions map[string]*loaderSession
	closed   bool
	now      func() time.Time
}

type loaderSession struct {
	generation   uint64
	cancel       context.CancelFunc
	loading      bool
	published    *dto.AdminDashboardResponse
	publishedAt  time.Time
	lastActivity time.Time
}

// NewDashboardLoader constructs an empty loader.
func NewDashboardLoader() *DashboardLoader {
	return &DashboardLoader{sessions: make(map[string]*loaderSession), now: time.Now}
}

// Run executes aggregate for the session key. The context handed to aggregate
// is cancelled when ctx ends, when a newer Run for key starts, or when the
// loader is closed. onPublish, if set, runs under the loader lock right after
// the view model is published and must not block for long.
func (l *DashboardLoader) Run(ctx context.Context, key string, aggregate aggregateFunc, onPublish func(*dto.AdminDashboardResponse)) (*dto.AdminDashboardResponse, error) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil, appErrors.Clone(appErrors.ErrUnavailable, "dashboard loader stopped")
	}
	sess := l.sessions[key]
	if sess == nil {
		sess = &loaderSession{}
		l.sessions[key] = sess
	}
	if sess.cancel != nil {
		sess.cancel()
	}
	sess.generation++
	generation := sess.generation
	runCtx, cancel := context.WithCancel(ctx)
	sess.cancel = cancel
	sess.loading = true
	sess.lastActivity = l.now()
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		if sess.generation == generation {
			sess.loading = false
			sess.cancel = nil
		}
		l.mu.Unlock()
		cancel()
	}()

	result, err := aggregate(runCtx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if sess.generation != generation || l.closed || runCtx.Err() != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if l.closed {
			return nil, appErrors.Clone(appErrors.ErrUnavailable, "dashboard loader stopped")
		}
		return nil, appErrors.Clone(appErrors.ErrSuperseded, "")
	}
	if err != nil {
		return nil, err
	}
	if result == nil {
		result = dto.EmptyAdminDashboard()
	}
	sess.published = result
	sess.publishedAt = l.now()
	sess.lastActivity = sess.publishedAt
	if onPublish != nil {
		onPublish(result)
	}
	return result, nil
}

// Snapshot returns the last published view model of key and whether a load is in flight.
func (l *DashboardLoader) Snapshot(key string) (dto.DashboardSnapshot, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	sess, ok := l.sessions[key]
	if !ok {
		return dto.DashboardSnapshot{}, false
	}
	snapshot := dto.DashboardSnapshot{Dashboard: sess.published, Loading: sess.loading}
	if !sess.publishedAt.IsZero() {
		at := sess.publishedAt.UTC()
		snapshot.PublishedAt = &at
	}
	return snapshot, true
}

// Prune drops idle sessions whose last activity is older than maxIdle and returns how many were removed.
func (l *DashboardLoader) Prune(maxIdle time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.now().Add(-maxIdle)
	removed := 0
	for key, sess := range l.sessions {
		if sess.loading || sess.lastActivity.After(cutoff) {
			continue
		}
		delete(l.sessions, key)
		removed++
	}
	return removed
}

// Close cancels every in-flight load; later Runs fail.
func (l *DashboardLoader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	for _, sess := range l.sessions {
		if sess.cancel != nil {
			sess.cancel()
		}
	}
}
