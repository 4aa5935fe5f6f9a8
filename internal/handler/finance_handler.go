package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/admin-dashboard-api/internal/dto"
	"github.com/noah-isme/admin-dashboard-api/internal/middleware"
	"github.com/noah-isme/admin-dashboard-api/internal/models"
	"github.com/noah-isme/admin-dashboard-api/internal/service"
	appErrors "github.com/noah-isme/admin-dashboard-api/pkg/errors"
	"github.com/noah-isme/admin-dashboard-api/pkg/response"
)

type financeService interface {
	PendingPurchases(ctx context.Context) ([]models.PaymentRecord, error)
	MarkPaid(ctx context.Context, enrollmentID string, req dto.MarkPaidRequest, audit service.AuditContext) (*models.MarkPaidResult, error)
	AuditTrail(ctx context.Context, enrollmentID string, req dto.AuditTrailRequest) ([]models.AuditLog, error)
	RevenueTimeseries(ctx context.Context, req dto.RevenueTimeseriesRequest) (*models.RevenueTimeseries, error)
	Payments(ctx context.Context, req dto.PaymentsListRequest) ([]models.PaymentRecord, *models.Pagination, error)
	ExportPayments(ctx context.Context, req dto.PaymentsExportRequest) (*dto.ExportFile, error)
}

// FinanceHandler exposes finance API operations to the admin panel.
type FinanceHandler struct {
	service financeService
}

// NewFinanceHandler constructs the handler.
func NewFinanceHandler(service financeService) *FinanceHandler {
	return &FinanceHandler{service: service}
}

// PendingPurchases godoc
// @Summary Pending manual purchases
// @Tags Finance
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=[]models.PaymentRecord}
// @Failure 502 {object} response.Envelope
// @Router /admin/purchases/pending [get]
func (h *FinanceHandler) PendingPurchases(c *gin.Context) {
	items, err := h.service.PendingPurchases(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil, middleware.ResponseMeta(c))
}

// MarkPaid godoc
// @Summary Mark a manual purchase as paid
// @Tags Finance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param enrollmentId path string true "Enrollment ID"
// @Param payload body dto.MarkPaidRequest false "Received amount"
// @Success 200 {object} response.Envelope{data=models.MarkPaidResult}
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /admin/purchases/{enrollmentId}/mark-paid [post]
func (h *FinanceHandler) MarkPaid(c *gin.Context) {
	var req dto.MarkPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	result, err := h.service.MarkPaid(c.Request.Context(), c.Param("enrollmentId"), req, service.AuditContext{
		Actor:     claimsFromContext(c),
		IPAddress: c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// AuditTrail godoc
// @Summary Admin actions recorded for an enrollment
// @Tags Finance
// @Produce json
// @Security BearerAuth
// @Param enrollmentId path string true "Enrollment ID"
// @Param limit query int false "Entries to return (1-100, default 20)"
// @Success 200 {object} response.Envelope{data=[]models.AuditLog}
// @Failure 400 {object} response.Envelope
// @Router /admin/purchases/{enrollmentId}/audit [get]
func (h *FinanceHandler) AuditTrail(c *gin.Context) {
	var req dto.AuditTrailRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "limit must be a number"))
		return
	}
	logs, err := h.service.AuditTrail(c.Request.Context(), c.Param("enrollmentId"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs, nil)
}

// RevenueTimeseries godoc
// @Summary Daily revenue
// @Tags Finance
// @Produce json
// @Security BearerAuth
// @Param days query int false "Window in days (1-365, default 14)"
// @Success 200 {object} response.Envelope{data=models.RevenueTimeseries}
// @Failure 400 {object} response.Envelope
// @Router /admin/revenue/timeseries [get]
func (h *FinanceHandler) RevenueTimeseries(c *gin.Context) {
	var req dto.RevenueTimeseriesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "days must be a number"))
		return
	}
	series, err := h.service.RevenueTimeseries(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, series, nil, middleware.ResponseMeta(c))
}

// Payments godoc
// @Summary List payments
// @Tags Finance
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Page size (max 100)"
// @Param status query string false "COMPLETED, PENDING, FAILED or REFUNDED"
// @Success 200 {object} response.Envelope{data=[]models.PaymentRecord}
// @Router /admin/payments [get]
func (h *FinanceHandler) Payments(c *gin.Context) {
	var req dto.PaymentsListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters"))
		return
	}
	items, pagination, err := h.service.Payments(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination, middleware.ResponseMeta(c))
}

// ExportPayments godoc
// @Summary Download payments
// @Tags Finance
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string false "csv (default) or pdf"
// @Param limit query int false "Rows (max 500)"
// @Param status query string false "Payment status filter"
// @Success 200 {file} file
// @Router /admin/payments/export [get]
func (h *FinanceHandler) ExportPayments(c *gin.Context) {
	var req dto.PaymentsExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters"))
		return
	}
	file, err := h.service.ExportPayments(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Content)
}
