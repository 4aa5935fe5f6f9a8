package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"

	"github.com/noah-isme/admin-dashboard-api/internal/dto"
	"github.com/noah-isme/admin-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/admin-dashboard-api/pkg/errors"
	"github.com/noah-isme/admin-dashboard-api/pkg/financeapi"
)

const (
	dashboardCachePrefix = "dash:finance:"

	sourcePayments      = "payments"
	sourceStudents      = "students"
	sourceRevenue       = "revenue_summary"
	sourceRevenueSeries = "revenue_timeseries"
)

var (
	errAggregationFailed   = errors.New("dashboard aggregation failed")
	errFinanceUnavailable  = errors.New("finance client not configured")
	errStudentsUnavailable = errors.New("students client not configured")
)

type dashboardFinanceReader interface {
	Payments(ctx context.Context, q financeapi.PaymentsQuery) (*financeapi.PaymentsPage, error)
	RevenueSummary(ctx context.Context) (*models.RevenueSummary, error)
	RevenueTimeseries(ctx context.Context, days int) (*models.RevenueTimeseries, error)
}

type dashboardStudentLister interface {
	Students(ctx context.Context, q financeapi.StudentsQuery) (*financeapi.StudentPage, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL          time.Duration
	PaymentsLimit     int
	StudentsLimit     int
	RevenueSeriesDays int
	AdminPanelRoles   []models.UserRole
}

// DashboardService composes the admin dashboard from the finance API.
type DashboardService struct {
	finance  dashboardFinanceReader
	students dashboardStudentLister
	loader   *DashboardLoader
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
	cfg      DashboardServiceConfig
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Finance  dashboardFinanceReader
	Students dashboardStudentLister
	Loader   *DashboardLoader
	Cache    *CacheService
	Metrics  *MetricsService
	Logger   *zap.Logger
	Config   DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 30 * time.Second
	}
	if cfg.PaymentsLimit <= 0 {
		cfg.PaymentsLimit = 20
	}
	if cfg.StudentsLimit <= 0 {
		cfg.StudentsLimit = 5
	}
	if len(cfg.AdminPanelRoles) == 0 {
		cfg.AdminPanelRoles = models.ParseRoles(nil)
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	loader := params.Loader
	if loader == nil {
		loader = NewDashboardLoader()
	}
	return &DashboardService{
		finance:  params.Finance,
		students: params.Students,
		loader:   loader,
		cache:    params.Cache,
		metrics:  params.Metrics,
		logger:   logger,
		cfg:      cfg,
	}
}

// Admin returns the admin dashboard for the caller and indicates cache utilisation.
// refresh skips the cache lookup but still publishes the fresh result.
func (s *DashboardService) Admin(ctx context.Context, claims *models.JWTClaims, refresh bool) (*dto.AdminDashboardResponse, bool, error) {
	key, err := s.authorize(claims)
	if err != nil {
		return nil, false, err
	}
	cacheKey := dashboardCachePrefix + key
	if !refresh {
		if summary, hit := s.tryCache(ctx, cacheKey); hit {
			return summary, true, nil
		}
	}

	summary, err := s.loader.Run(ctx, key, s.aggregate, func(published *dto.AdminDashboardResponse) {
		s.persistCache(ctx, cacheKey, published)
	})
	if err != nil {
		if errors.Is(err, errAggregationFailed) {
			return dto.EmptyAdminDashboard(), false, nil
		}
		return nil, false, err
	}
	return summary, false, nil
}

// Snapshot returns the last dashboard published for the caller's session without fetching.
func (s *DashboardService) Snapshot(claims *models.JWTClaims) (*dto.DashboardSnapshot, error) {
	key, err := s.authorize(claims)
	if err != nil {
		return nil, err
	}
	snapshot, ok := s.loader.Snapshot(key)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "dashboard not loaded yet")
	}
	return &snapshot, nil
}

// InvalidateAll drops every cached dashboard, e.g. after a payment changed.
func (s *DashboardService) InvalidateAll(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Invalidate(ctx, dashboardCachePrefix+"*")
}

func (s *DashboardService) authorize(claims *models.JWTClaims) (string, error) {
	if claims == nil || claims.UserID == "" {
		return "", appErrors.ErrUnauthorized
	}
	if !models.IsAdminPanelRole(claims.Role, s.cfg.AdminPanelRoles) {
		return "", appErrors.Clone(appErrors.ErrForbidden, "admin panel role required")
	}
	return claims.SessionKey(), nil
}

func (s *DashboardService) tryCache(ctx context.Context, key string) (*dto.AdminDashboardResponse, bool) {
	if s.cache == nil {
		return nil, false
	}
	var cached dto.AdminDashboardResponse
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil || !hit {
		return nil, false
	}
	return &cached, true
}

func (s *DashboardService) persistCache(ctx context.Context, key string, value *dto.AdminDashboardResponse) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// aggregate fans out to the finance API and waits for every request to
// settle. Each failed request degrades to its empty value.
func (s *DashboardService) aggregate(ctx context.Context) (*dto.AdminDashboardResponse, error) {
	var (
		payments    *financeapi.PaymentsPage
		students    *financeapi.StudentPage
		revenue     *models.RevenueSummary
		series      *models.RevenueTimeseries
		paymentsErr error
		studentsErr error
		revenueErr  error
		seriesErr   error
	)

	wg := conc.NewWaitGroup()
	wg.Go(func() {
		if s.finance == nil {
			paymentsErr = errFinanceUnavailable
			return
		}
		payments, paymentsErr = s.finance.Payments(ctx, financeapi.PaymentsQuery{Limit: s.cfg.PaymentsLimit})
	})
	wg.Go(func() {
		if s.students == nil {
			studentsErr = errStudentsUnavailable
			return
		}
		students, studentsErr = s.students.Students(ctx, financeapi.StudentsQuery{Limit: s.cfg.StudentsLimit})
	})
	wg.Go(func() {
		if s.finance == nil {
			revenueErr = errFinanceUnavailable
			return
		}
		revenue, revenueErr = s.finance.RevenueSummary(ctx)
	})
	if s.cfg.RevenueSeriesDays > 0 {
		wg.Go(func() {
			if s.finance == nil {
				seriesErr = errFinanceUnavailable
				return
			}
			series, seriesErr = s.finance.RevenueTimeseries(ctx, s.cfg.RevenueSeriesDays)
		})
	}
	if recovered := wg.WaitAndRecover(); recovered != nil {
		s.logger.Error("dashboard data fetch failed",
			zap.Error(recovered.AsError()),
			zap.ByteString("stack", recovered.Stack),
		)
		return nil, errAggregationFailed
	}

	summary := dto.EmptyAdminDashboard()
	if s.settled(ctx, sourcePayments, paymentsErr) && payments != nil && payments.Payments != nil {
		summary.Payments = payments.Payments
	}
	if s.settled(ctx, sourceStudents, studentsErr) && students != nil && students.Students != nil {
		summary.Students = students.Students
	}
	if s.settled(ctx, sourceRevenue, revenueErr) && revenue != nil {
		summary.TotalRevenue = revenue.Total
	}
	if s.cfg.RevenueSeriesDays > 0 && s.settled(ctx, sourceRevenueSeries, seriesErr) && series != nil && series.Series != nil {
		summary.RevenueSeries = series.Series
	}
	return summary, nil
}

// settled reports whether a sub-request succeeded, logging the failure otherwise.
func (s *DashboardService) settled(ctx context.Context, source string, err error) bool {
	if err == nil {
		return true
	}
	if ctx.Err() != nil {
		s.logger.Debug("dashboard request abandoned", zap.String("source", source), zap.Error(err))
		return false
	}
	s.metrics.RecordDashboardFetchFailure(source)
	s.logger.Warn(fmt.Sprintf("dashboard %s request failed, using fallback", source),
		zap.String("source", source),
		zap.Error(err),
	)
	return false
}
