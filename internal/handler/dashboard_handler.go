package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/admin-dashboard-api/internal/dto"
	"github.com/noah-isme/admin-dashboard-api/internal/middleware"
	"github.com/noah-isme/admin-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/admin-dashboard-api/pkg/errors"
	"github.com/noah-isme/admin-dashboard-api/pkg/response"
)

type dashboardService interface {
	Admin(ctx context.Context, claims *models.JWTClaims, refresh bool) (*dto.AdminDashboardResponse, bool, error)
	Snapshot(claims *models.JWTClaims) (*dto.DashboardSnapshot, error)
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Admin godoc
// @Summary Admin dashboard data
// @Description Recent payments, recent students and total revenue. Sections whose upstream request failed are returned empty.
// @Tags Dashboard
// @Produce json
// @Param locale path string true "UI locale"
// @Param refresh query bool false "Skip the cached dashboard"
// @Success 200 {object} response.Envelope{data=dto.AdminDashboardResponse}
// @Failure 302 "Redirect to /{locale}/login"
// @Failure 409 {object} response.Envelope
// @Router /{locale}/admin/dashboard [get]
func (h *DashboardHandler) Admin(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	refresh, _ := strconv.ParseBool(c.Query("refresh"))
	summary, cacheHit, err := h.service.Admin(c.Request.Context(), claimsFromContext(c), refresh)
	if err != nil {
		writeError(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, summary, nil, middleware.ResponseMeta(c))
}

// Snapshot godoc
// @Summary Last published admin dashboard
// @Description Returns the dashboard last published for the caller's session and whether a load is running, without fetching.
// @Tags Dashboard
// @Produce json
// @Param locale path string true "UI locale"
// @Success 200 {object} response.Envelope{data=dto.DashboardSnapshot}
// @Failure 404 {object} response.Envelope
// @Router /{locale}/admin/dashboard/snapshot [get]
func (h *DashboardHandler) Snapshot(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	snapshot, err := h.service.Snapshot(claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshot, nil)
}
