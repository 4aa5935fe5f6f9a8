package service

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServiceCacheRatio(t *testing.T) {
	metrics := NewMetricsService()
	metrics.RecordCacheOperation(true, time.Millisecond)
	metrics.RecordCacheOperation(true, time.Millisecond)
	metrics.RecordCacheOperation(false, time.Millisecond)
	metrics.RecordCacheOperation(true, time.Millisecond)

	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.cacheHits))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.cacheMisses))
	assert.Equal(t, 0.75, testutil.ToFloat64(metrics.cacheHitRatio))
}

func TestMetricsServiceUpstreamLabels(t *testing.T) {
	metrics := NewMetricsService()
	metrics.ObserveUpstreamRequest("payments", http.StatusOK, 10*time.Millisecond)
	metrics.ObserveUpstreamRequest("payments", 0, 10*time.Millisecond)

	assert.Equal(t, 2, testutil.CollectAndCount(metrics.upstreamDuration))
}

func TestMetricsServiceHandlerExposesCollectors(t *testing.T) {
	metrics := NewMetricsService()
	metrics.ObserveHTTPRequest(http.MethodGet, "/health", http.StatusOK, time.Millisecond)
	metrics.RecordDashboardFetchFailure("students")

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `http_requests_total{method="GET",path="/health",status="200"} 1`))
	assert.True(t, strings.Contains(body, `dashboard_fetch_failures_total{source="students"} 1`))
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var metrics *MetricsService
	assert.NotPanics(t, func() {
		metrics.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
		metrics.RecordCacheOperation(true, time.Millisecond)
		metrics.RecordDashboardFetchFailure("payments")
		metrics.ObserveCacheWrite(time.Millisecond)
	})

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
