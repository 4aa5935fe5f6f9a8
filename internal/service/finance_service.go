package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/admin-dashboard-api/internal/dto"
	"github.com/noah-isme/admin-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/admin-dashboard-api/pkg/errors"
	"github.com/noah-isme/admin-dashboard-api/pkg/export"
	"github.com/noah-isme/admin-dashboard-api/pkg/financeapi"
	"github.com/noah-isme/admin-dashboard-api/pkg/validation"
)

const (
	defaultAuditTrailLimit  = 20
	auditResourceEnrollment = "enrollment"

	defaultPaymentsPageSize = 20
	maxExportLimit          = 500
)

type financeGateway interface {
	Payments(ctx context.Context, q financeapi.PaymentsQuery) (*financeapi.PaymentsPage, error)
	PendingPurchases(ctx context.Context) ([]models.PaymentRecord, error)
	MarkPaid(ctx context.Context, enrollmentID string, amount *float64) (*models.MarkPaidResult, error)
	RevenueTimeseries(ctx context.Context, days int) (*models.RevenueTimeseries, error)
}

type auditStore interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
	ListByResource(ctx context.Context, resource, resourceID string, limit int) ([]models.AuditLog, error)
}

type dashboardInvalidator interface {
	InvalidateAll(ctx context.Context)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
}

// AuditContext carries request details recorded alongside admin actions.
type AuditContext struct {
	Actor     *models.JWTClaims
	IPAddress string
	UserAgent string
}

// FinanceServiceParams groups constructor dependencies.
type FinanceServiceParams struct {
	Finance     financeGateway
	Audit       auditStore
	Dashboard   dashboardInvalidator
	Validator   *validation.Validator
	CSV         datasetRenderer
	PDF         datasetRenderer
	Logger      *zap.Logger
	ExportLimit int
}

// FinanceService exposes finance API operations to admins with validation and auditing.
type FinanceService struct {
	finance     financeGateway
	audit       auditStore
	dashboard   dashboardInvalidator
	validator   *validation.Validator
	csv         datasetRenderer
	pdf         datasetRenderer
	logger      *zap.Logger
	exportLimit int
	now         func() time.Time
}

// NewFinanceService constructs a FinanceService.
func NewFinanceService(params FinanceServiceParams) *FinanceService {
	svc := &FinanceService{
		finance:     params.Finance,
		audit:       params.Audit,
		dashboard:   params.Dashboard,
		validator:   params.Validator,
		csv:         params.CSV,
		pdf:         params.PDF,
		logger:      params.Logger,
		exportLimit: params.ExportLimit,
		now:         time.Now,
	}
	if svc.validator == nil {
		svc.validator = validation.New()
	}
	if svc.csv == nil {
		svc.csv = export.NewCSVExporter()
	}
	if svc.pdf == nil {
		svc.pdf = export.NewPDFExporter()
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	if svc.exportLimit <= 0 || svc.exportLimit > maxExportLimit {
		svc.exportLimit = 100
	}
	return svc
}

// PendingPurchases lists manual purchases awaiting confirmation.
func (s *FinanceService) PendingPurchases(ctx context.Context) ([]models.PaymentRecord, error) {
	items, err := s.finance.PendingPurchases(ctx)
	if err != nil {
		return nil, upstreamError(err, "failed to load pending purchases")
	}
	if items == nil {
		items = []models.PaymentRecord{}
	}
	return items, nil
}

// MarkPaid confirms a manual payment, records it in the audit trail and drops cached dashboards.
func (s *FinanceService) MarkPaid(ctx context.Context, enrollmentID string, req dto.MarkPaidRequest, audit AuditContext) (*models.MarkPaidResult, error) {
	enrollmentID = strings.TrimSpace(enrollmentID)
	if enrollmentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "enrollment id is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	result, err := s.finance.MarkPaid(ctx, enrollmentID, req.Amount)
	if err != nil {
		return nil, upstreamError(err, "failed to mark enrollment as paid")
	}
	if result == nil {
		result = &models.MarkPaidResult{}
	}

	s.record(ctx, audit, models.AuditActionMarkPaid, auditResourceEnrollment, enrollmentID, map[string]interface{}{
		"amount":     req.Amount,
		"message":    result.Message,
		"enrollment": result.Enrollment,
	})
	if s.dashboard != nil {
		s.dashboard.InvalidateAll(ctx)
	}
	s.logger.Info("enrollment marked as paid", zap.String("enrollment_id", enrollmentID), zap.String("actor_id", actorID(audit.Actor)))
	return result, nil
}

// AuditTrail returns the recorded admin actions for an enrollment.
func (s *FinanceService) AuditTrail(ctx context.Context, enrollmentID string, req dto.AuditTrailRequest) ([]models.AuditLog, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	if s.audit == nil {
		return []models.AuditLog{}, nil
	}
	limit := req.Limit
	if limit == 0 {
		limit = defaultAuditTrailLimit
	}
	logs, err := s.audit.ListByResource(ctx, auditResourceEnrollment, enrollmentID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load audit trail")
	}
	if logs == nil {
		logs = []models.AuditLog{}
	}
	return logs, nil
}

// RevenueTimeseries returns daily revenue for the last days days.
func (s *FinanceService) RevenueTimeseries(ctx context.Context, req dto.RevenueTimeseriesRequest) (*models.RevenueTimeseries, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	days := req.Days
	if days == 0 {
		days = financeapi.DefaultTimeseriesDays
	}
	series, err := s.finance.RevenueTimeseries(ctx, days)
	if err != nil {
		return nil, upstreamError(err, "failed to load revenue timeseries")
	}
	if series == nil {
		series = &models.RevenueTimeseries{}
	}
	if series.Series == nil {
		series.Series = []models.RevenuePoint{}
	}
	return series, nil
}

// Payments lists payments with pagination metadata.
func (s *FinanceService) Payments(ctx context.Context, req dto.PaymentsListRequest) ([]models.PaymentRecord, *models.Pagination, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, err
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.Limit == 0 {
		req.Limit = defaultPaymentsPageSize
	}
	page, err := s.finance.Payments(ctx, financeapi.PaymentsQuery{Page: req.Page, Limit: req.Limit, Status: models.PaymentStatus(req.Status)})
	if err != nil {
		return nil, nil, upstreamError(err, "failed to load payments")
	}
	if page == nil {
		page = &financeapi.PaymentsPage{}
	}
	items := page.Payments
	if items == nil {
		items = []models.PaymentRecord{}
	}
	pagination := &models.Pagination{Page: req.Page, PageSize: req.Limit, TotalCount: len(items), TotalPages: 1}
	if page.Meta != nil {
		pagination.TotalCount = page.Meta.Total
		pagination.TotalPages = page.Meta.TotalPages
		if page.Meta.Page > 0 {
			pagination.Page = page.Meta.Page
		}
		if page.Meta.Limit > 0 {
			pagination.PageSize = page.Meta.Limit
		}
	}
	return items, pagination, nil
}

// ExportPayments renders recent payments as CSV or PDF.
func (s *FinanceService) ExportPayments(ctx context.Context, req dto.PaymentsExportRequest) (*dto.ExportFile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	format := strings.ToLower(req.Format)
	if format == "" {
		format = "csv"
	}
	renderer := s.csv
	if format == "pdf" {
		renderer = s.pdf
	}
	limit := req.Limit
	if limit == 0 {
		limit = s.exportLimit
	}

	page, err := s.finance.Payments(ctx, financeapi.PaymentsQuery{Limit: limit, Status: models.PaymentStatus(req.Status)})
	if err != nil {
		return nil, upstreamError(err, "failed to load payments for export")
	}
	if page == nil {
		page = &financeapi.PaymentsPage{}
	}

	generatedAt := s.now().UTC()
	dataset := paymentsDataset(page.Payments, generatedAt)
	content, err := renderer.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	return &dto.ExportFile{
		Filename:    fmt.Sprintf("payments-%s.%s", generatedAt.Format("20060102-150405"), format),
		ContentType: renderer.ContentType(),
		Content:     content,
	}, nil
}

var paymentExportHeaders = []string{"ID", "Date", "Student", "Email", "Course", "Amount", "Currency", "Status", "Provider"}

func paymentsDataset(payments []models.PaymentRecord, generatedAt time.Time) export.Dataset {
	rows := make([]map[string]string, 0, len(payments))
	for _, p := range payments {
		rows = append(rows, map[string]string{
			"ID":       p.ID.String(),
			"Date":     formatExportDate(p.CreatedAt),
			"Student":  p.User.FullName(),
			"Email":    p.User.Email,
			"Course":   p.Course.Title,
			"Amount":   strconv.FormatFloat(p.Amount.Float64(), 'f', 2, 64),
			"Currency": p.Currency,
			"Status":   string(p.Status),
			"Provider": string(p.Provider),
		})
	}
	return export.Dataset{
		Title:   "Payments",
		Headers: paymentExportHeaders,
		Rows:    rows,
		Footer:  "Generated " + generatedAt.Format(time.RFC3339),
	}
}

func formatExportDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04")
}

// record writes an audit entry. Audit failures are logged and never fail the action.
func (s *FinanceService) record(ctx context.Context, audit AuditContext, action, resource, resourceID string, values map[string]interface{}) {
	if s.audit == nil {
		return
	}
	payload, err := json.Marshal(values)
	if err != nil {
		s.logger.Warn("audit payload encode failed", zap.String("action", action), zap.Error(err))
		return
	}
	entry := &models.AuditLog{
		Action:    action,
		Resource:  resource,
		NewValues: payload,
		IPAddress: audit.IPAddress,
		UserAgent: audit.UserAgent,
	}
	if id := actorID(audit.Actor); id != "" {
		entry.UserID = &id
	}
	if resourceID != "" {
		entry.ResourceID = &resourceID
	}
	if err := s.audit.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Error("audit log write failed", zap.String("action", action), zap.String("resource_id", resourceID), zap.Error(err))
	}
}

func actorID(claims *models.JWTClaims) string {
	if claims == nil {
		return ""
	}
	return claims.UserID
}

// upstreamError maps finance API failures onto typed errors. Client errors the
// caller can act on keep their meaning; everything else becomes a bad gateway.
func upstreamError(err error, message string) error {
	if err == nil {
		return nil
	}
	var apiErr *financeapi.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = message
		}
		switch apiErr.Status {
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, msg)
		case http.StatusNotFound:
			return appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, msg)
		case http.StatusConflict:
			return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, msg)
		}
	}
	return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, message)
}
