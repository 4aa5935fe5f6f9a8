package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/admin-dashboard-api/internal/dto"
	"github.com/noah-isme/admin-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/admin-dashboard-api/pkg/errors"
	"github.com/noah-isme/admin-dashboard-api/pkg/financeapi"
)

type fakeFinanceGateway struct {
	page       *financeapi.PaymentsPage
	pending    []models.PaymentRecord
	markResult *models.MarkPaidResult
	series     *models.RevenueTimeseries
	err        error

	lastQuery  financeapi.PaymentsQuery
	lastMarkID string
	lastAmount *float64
	lastDays   int
	markCalls  int
}

func (f *fakeFinanceGateway) Payments(_ context.Context, q financeapi.PaymentsQuery) (*financeapi.PaymentsPage, error) {
	f.lastQuery = q
	return f.page, f.err
}

func (f *fakeFinanceGateway) PendingPurchases(context.Context) ([]models.PaymentRecord, error) {
	return f.pending, f.err
}

func (f *fakeFinanceGateway) MarkPaid(_ context.Context, enrollmentID string, amount *float64) (*models.MarkPaidResult, error) {
	f.markCalls++
	f.lastMarkID = enrollmentID
	f.lastAmount = amount
	return f.markResult, f.err
}

func (f *fakeFinanceGateway) RevenueTimeseries(_ context.Context, days int) (*models.RevenueTimeseries, error) {
	f.lastDays = days
	return f.series, f.err
}

type fakeAuditStore struct {
	entries   []*models.AuditLog
	err       error
	lastLimit int
}

func (f *fakeAuditStore) CreateAuditLog(_ context.Context, log *models.AuditLog) error {
	f.entries = append(f.entries, log)
	return f.err
}

func (f *fakeAuditStore) ListByResource(_ context.Context, resource, resourceID string, limit int) ([]models.AuditLog, error) {
	f.lastLimit = limit
	var out []models.AuditLog
	for _, e := range f.entries {
		if e.Resource == resource && e.ResourceID != nil && *e.ResourceID == resourceID {
			out = append(out, *e)
		}
	}
	return out, f.err
}

type fakeInvalidator struct{ calls int }

func (f *fakeInvalidator) InvalidateAll(context.Context) { f.calls++ }

func floatPtr(v float64) *float64 { return &v }

func TestFinanceServiceMarkPaid(t *testing.T) {
	gateway := &fakeFinanceGateway{markResult: &models.MarkPaidResult{Message: "ok", Enrollment: json.RawMessage(`{"id":"enr-1"}`)}}
	audit := &fakeAuditStore{}
	invalidator := &fakeInvalidator{}
	svc := NewFinanceService(FinanceServiceParams{Finance: gateway, Audit: audit, Dashboard: invalidator})

	result, err := svc.MarkPaid(context.Background(), " enr-1 ", dto.MarkPaidRequest{Amount: floatPtr(150)}, AuditContext{
		Actor:     adminIdentity(),
		IPAddress: "10.0.0.1",
		UserAgent: "test",
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Message)
	assert.Equal(t, "enr-1", gateway.lastMarkID)
	require.NotNil(t, gateway.lastAmount)
	assert.Equal(t, 150.0, *gateway.lastAmount)
	assert.Equal(t, 1, invalidator.calls)

	require.Len(t, audit.entries, 1)
	entry := audit.entries[0]
	assert.Equal(t, models.AuditActionMarkPaid, entry.Action)
	assert.Equal(t, "enrollment", entry.Resource)
	require.NotNil(t, entry.ResourceID)
	assert.Equal(t, "enr-1", *entry.ResourceID)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, "admin-1", *entry.UserID)
	assert.Equal(t, "10.0.0.1", entry.IPAddress)
	assert.Contains(t, string(entry.NewValues), `"amount":150`)

	trail, err := svc.AuditTrail(context.Background(), "enr-1", dto.AuditTrailRequest{})
	require.NoError(t, err)
	assert.Len(t, trail, 1)
}

func TestFinanceServiceAuditTrailLimit(t *testing.T) {
	audit := &fakeAuditStore{}
	svc := NewFinanceService(FinanceServiceParams{Finance: &fakeFinanceGateway{}, Audit: audit})

	_, err := svc.AuditTrail(context.Background(), "enr-1", dto.AuditTrailRequest{})
	require.NoError(t, err)
	assert.Equal(t, 20, audit.lastLimit)

	_, err = svc.AuditTrail(context.Background(), "enr-1", dto.AuditTrailRequest{Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, 50, audit.lastLimit)

	audit.lastLimit = 0
	_, err = svc.AuditTrail(context.Background(), "enr-1", dto.AuditTrailRequest{Limit: 101})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Zero(t, audit.lastLimit)
}

func TestFinanceServiceMarkPaidValidation(t *testing.T) {
	gateway := &fakeFinanceGateway{}
	svc := NewFinanceService(FinanceServiceParams{Finance: gateway})

	_, err := svc.MarkPaid(context.Background(), "", dto.MarkPaidRequest{}, AuditContext{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.MarkPaid(context.Background(), "enr-1", dto.MarkPaidRequest{Amount: floatPtr(-1)}, AuditContext{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Zero(t, gateway.markCalls)
}

func TestFinanceServiceMarkPaidAuditFailureIsNotFatal(t *testing.T) {
	gateway := &fakeFinanceGateway{markResult: &models.MarkPaidResult{Message: "ok"}}
	svc := NewFinanceService(FinanceServiceParams{Finance: gateway, Audit: &fakeAuditStore{err: errors.New("db down")}})

	result, err := svc.MarkPaid(context.Background(), "enr-1", dto.MarkPaidRequest{}, AuditContext{Actor: adminIdentity()})
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Message)
	assert.Nil(t, gateway.lastAmount)
}

func TestFinanceServiceUpstreamErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want *appErrors.Error
	}{
		{"validation", &financeapi.APIError{Status: http.StatusBadRequest, Message: "amount too high"}, appErrors.ErrValidation},
		{"not found", &financeapi.APIError{Status: http.StatusNotFound}, appErrors.ErrNotFound},
		{"conflict", &financeapi.APIError{Status: http.StatusConflict}, appErrors.ErrConflict},
		{"server", &financeapi.APIError{Status: http.StatusInternalServerError}, appErrors.ErrUpstream},
		{"unauthorized upstream", &financeapi.APIError{Status: http.StatusUnauthorized}, appErrors.ErrUpstream},
		{"transport", errors.New("dial tcp: refused"), appErrors.ErrUpstream},
		{"shape", financeapi.ErrUnexpectedShape, appErrors.ErrUpstream},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewFinanceService(FinanceServiceParams{Finance: &fakeFinanceGateway{err: tc.err}})
			_, err := svc.MarkPaid(context.Background(), "enr-1", dto.MarkPaidRequest{}, AuditContext{})
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
			assert.ErrorIs(t, err, tc.err)
		})
	}

	svc := NewFinanceService(FinanceServiceParams{Finance: &fakeFinanceGateway{err: &financeapi.APIError{Status: http.StatusBadRequest, Message: "amount too high"}}})
	_, err := svc.MarkPaid(context.Background(), "enr-1", dto.MarkPaidRequest{}, AuditContext{})
	assert.Equal(t, "amount too high", appErrors.FromError(err).Message)
}

func TestFinanceServicePendingPurchases(t *testing.T) {
	svc := NewFinanceService(FinanceServiceParams{Finance: &fakeFinanceGateway{}})
	items, err := svc.PendingPurchases(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestFinanceServiceRevenueTimeseries(t *testing.T) {
	gateway := &fakeFinanceGateway{series: &models.RevenueTimeseries{}}
	svc := NewFinanceService(FinanceServiceParams{Finance: gateway})

	series, err := svc.RevenueTimeseries(context.Background(), dto.RevenueTimeseriesRequest{})
	require.NoError(t, err)
	assert.Equal(t, 14, gateway.lastDays)
	assert.NotNil(t, series.Series)

	_, err = svc.RevenueTimeseries(context.Background(), dto.RevenueTimeseriesRequest{Days: 30})
	require.NoError(t, err)
	assert.Equal(t, 30, gateway.lastDays)

	_, err = svc.RevenueTimeseries(context.Background(), dto.RevenueTimeseriesRequest{Days: 400})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestFinanceServicePayments(t *testing.T) {
	gateway := &fakeFinanceGateway{page: &financeapi.PaymentsPage{
		Payments: samplePayments().Payments,
		Meta:     &models.PageMeta{Total: 42, Page: 2, Limit: 2, TotalPages: 21},
	}}
	svc := NewFinanceService(FinanceServiceParams{Finance: gateway})

	items, pagination, err := svc.Payments(context.Background(), dto.PaymentsListRequest{Page: 2, Limit: 2, Status: "PENDING"})
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 42, pagination.TotalCount)
	assert.Equal(t, 21, pagination.TotalPages)
	assert.Equal(t, models.PaymentStatusPending, gateway.lastQuery.Status)

	_, _, err = svc.Payments(context.Background(), dto.PaymentsListRequest{Status: "UNKNOWN"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestFinanceServicePaymentsWithoutMeta(t *testing.T) {
	gateway := &fakeFinanceGateway{page: &financeapi.PaymentsPage{Payments: samplePayments().Payments}}
	svc := NewFinanceService(FinanceServiceParams{Finance: gateway})

	_, pagination, err := svc.Payments(context.Background(), dto.PaymentsListRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 2, pagination.TotalCount)
}

func TestFinanceServiceExportPayments(t *testing.T) {
	gateway := &fakeFinanceGateway{page: samplePayments()}
	svc := NewFinanceService(FinanceServiceParams{Finance: gateway, ExportLimit: 50})
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC) }

	file, err := svc.ExportPayments(context.Background(), dto.PaymentsExportRequest{})
	require.NoError(t, err)
	assert.Equal(t, "payments-20240301-083000.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.Equal(t, 50, gateway.lastQuery.Limit)
	lines := strings.Split(strings.TrimSpace(string(file.Content)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(paymentExportHeaders, ","), lines[0])
	assert.Contains(t, lines[1], "pay-1")
	assert.Contains(t, lines[1], "120.00")

	pdf, err := svc.ExportPayments(context.Background(), dto.PaymentsExportRequest{Format: "pdf", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", pdf.ContentType)
	assert.True(t, bytes.HasPrefix(pdf.Content, []byte("%PDF")))
	assert.Equal(t, 10, gateway.lastQuery.Limit)

	_, err = svc.ExportPayments(context.Background(), dto.PaymentsExportRequest{Format: "xlsx"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}
