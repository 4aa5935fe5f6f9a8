package financeapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/admin-dashboard-api/pkg/middleware/requestid"
)

type recordingObserver struct {
	mu    sync.Mutex
	calls map[string]int
}

func (o *recordingObserver) ObserveUpstreamRequest(endpoint string, status int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.calls == nil {
		o.calls = map[string]int{}
	}
	o.calls[endpoint] = status
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *recordingObserver) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	observer := &recordingObserver{}
	client, err := NewClient(Options{BaseURL: srv.URL + "/api/", Timeout: 2 * time.Second, Observer: observer})
	require.NoError(t, err)
	return client, observer
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestNewClientValidatesBaseURL(t *testing.T) {
	_, err := NewClient(Options{})
	assert.Error(t, err)
	_, err = NewClient(Options{BaseURL: "ftp://finance"})
	assert.Error(t, err)
}

func TestPaymentsForwardsIdentityAndQuery(t *testing.T) {
	var gotAuth, gotReqID, gotQuery, gotPath string
	client, observer := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get(requestid.HeaderKey)
		gotQuery = r.URL.RawQuery
		gotPath = r.URL.Path
		writeJSON(w, http.StatusOK, `{"data":{"payments":[{"id":"p1","amount":10,"currency":"USD","status":"PENDING","provider":"MANUAL_WHATSAPP"}],"meta":{"total":1,"page":1,"limit":20,"totalPages":1}}}`)
	})

	ctx := WithBearerToken(requestid.WithContext(context.Background(), "req-1"), "tok")
	page, err := client.Payments(ctx, PaymentsQuery{Limit: 20, Status: "PENDING"})
	require.NoError(t, err)
	require.Len(t, page.Payments, 1)
	assert.Equal(t, "p1", page.Payments[0].ID.String())
	assert.Equal(t, 1, page.Meta.Total)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "req-1", gotReqID)
	assert.Equal(t, "/api/instructor/payments", gotPath)
	assert.Equal(t, "limit=20&status=PENDING", gotQuery)
	assert.Equal(t, http.StatusOK, observer.calls["payments"])
}

func TestStudentsHandlesBothShapes(t *testing.T) {
	bodies := []string{
		`{"data":[{"id":"s1"},{"id":"s2"}]}`,
		`{"data":{"data":[{"id":"s1"},{"id":"s2"}],"meta":{"total":2,"page":1,"limit":5,"totalPages":1}}}`,
		`{"data":[{"id":"s1"},{"id":"s2"}],"meta":{"total":2,"page":1,"limit":5,"totalPages":1}}`,
		`[{"id":"s1"},{"id":"s2"}]`,
	}
	for _, body := range bodies {
		body := body
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "5", r.URL.Query().Get("limit"))
			writeJSON(w, http.StatusOK, body)
		})
		page, err := client.Students(context.Background(), StudentsQuery{Limit: 5})
		require.NoError(t, err, body)
		require.Len(t, page.Students, 2, body)
		assert.Equal(t, "s2", page.Students[1].ID.String())
	}
}

func TestStudentsRejectsUnknownShape(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":{"unexpected":true}}`)
	})
	_, err := client.Students(context.Background(), StudentsQuery{Limit: 5})
	assert.ErrorIs(t, err, ErrUnexpectedShape)
}

func TestAPIErrorDecoding(t *testing.T) {
	client, observer := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, `{"error":{"code":"FORBIDDEN","message":"admins only"}}`)
	})
	_, err := client.RevenueSummary(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, "FORBIDDEN", apiErr.Code)
	assert.Equal(t, "admins only", apiErr.Message)
	assert.Equal(t, "revenue_summary", apiErr.Endpoint)
	assert.Equal(t, http.StatusForbidden, observer.calls["revenue_summary"])
}

func TestRevenueSummaryAndTimeseries(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/admin/revenue/summary":
			writeJSON(w, http.StatusOK, `{"data":{"total":1250.5,"outstanding":80,"byCourse":[{"courseId":"c1","title":"Go","amount":1250.5,"count":5}]}}`)
		case "/api/admin/revenue/timeseries":
			assert.Equal(t, "14", r.URL.Query().Get("days"))
			writeJSON(w, http.StatusOK, `{"data":{"series":[{"date":"2024-05-01","amount":100}]}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	summary, err := client.RevenueSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1250.5, summary.Total)
	require.Len(t, summary.ByCourse, 1)
	assert.Equal(t, 5, summary.ByCourse[0].Count)

	series, err := client.RevenueTimeseries(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, series.Series, 1)
	assert.Equal(t, "2024-05-01", series.Series[0].Date)
}

func TestPendingPurchasesAndMarkPaid(t *testing.T) {
	var markBody map[string]interface{}
	var markPath string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/admin/purchases/pending":
			writeJSON(w, http.StatusOK, `{"data":[{"id":"p9","enrollmentId":"enr 1","status":"PENDING","provider":"MANUAL_WHATSAPP"}]}`)
		case r.Method == http.MethodPost:
			markPath = r.URL.EscapedPath()
			markBody = map[string]interface{}{}
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&markBody))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			writeJSON(w, http.StatusOK, `{"data":{"message":"marked","enrollment":{"id":"enr 1","status":"ACTIVE"}}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	pending, err := client.PendingPurchases(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "enr 1", pending[0].EnrollmentID)

	amount := 25.0
	result, err := client.MarkPaid(context.Background(), "enr 1", &amount)
	require.NoError(t, err)
	assert.Equal(t, "marked", result.Message)
	assert.JSONEq(t, `{"id":"enr 1","status":"ACTIVE"}`, string(result.Enrollment))
	assert.Equal(t, "/api/admin/purchases/enr%201/mark-paid", markPath)
	assert.Equal(t, 25.0, markBody["amount"])

	_, err = client.MarkPaid(context.Background(), "enr 1", nil)
	require.NoError(t, err)
	_, hasAmount := markBody["amount"]
	assert.False(t, hasAmount)

	_, err = client.MarkPaid(context.Background(), "  ", nil)
	assert.Error(t, err)
}

func TestRequestAbortedWhenContextCancelled(t *testing.T) {
	release := make(chan struct{})
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := client.RevenueSummary(ctx)
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("request was not aborted")
	}
}

func TestPaymentsWarnsAboutSkippedRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":{"payments":[{"id":"p1","amount":"12.50"},{"id":"p2","amount":{}}]}}`)
	}))
	t.Cleanup(srv.Close)
	core, logs := observer.New(zap.WarnLevel)
	client, err := NewClient(Options{BaseURL: srv.URL + "/api", Logger: zap.New(core)})
	require.NoError(t, err)

	page, err := client.Payments(context.Background(), PaymentsQuery{Limit: 20})
	require.NoError(t, err)
	require.Len(t, page.Payments, 1)
	assert.Equal(t, 12.5, page.Payments[0].Amount.Float64())

	entries := logs.FilterMessage("skipping malformed record").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "payments", entries[0].ContextMap()["endpoint"])
	assert.Equal(t, int64(1), entries[0].ContextMap()["index"])
}
