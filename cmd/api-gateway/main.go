package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/admin-dashboard-api/api/swagger"
	"github.com/noah-isme/admin-dashboard-api/internal/handler"
	"github.com/noah-isme/admin-dashboard-api/internal/middleware"
	"github.com/noah-isme/admin-dashboard-api/internal/models"
	"github.com/noah-isme/admin-dashboard-api/internal/repository"
	"github.com/noah-isme/admin-dashboard-api/internal/service"
	"github.com/noah-isme/admin-dashboard-api/pkg/cache"
	"github.com/noah-isme/admin-dashboard-api/pkg/config"
	"github.com/noah-isme/admin-dashboard-api/pkg/database"
	"github.com/noah-isme/admin-dashboard-api/pkg/financeapi"
	"github.com/noah-isme/admin-dashboard-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/admin-dashboard-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/admin-dashboard-api/pkg/middleware/requestid"
	"github.com/noah-isme/admin-dashboard-api/pkg/validation"
)

const (
	sessionPruneInterval = time.Minute
	sessionMaxIdle       = 15 * time.Minute
)

// @title Admin Dashboard API
// @version 1.0.0
// @description Backend for the admin dashboard: aggregated finance view model and finance API helpers.
// @BasePath /
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()
	checks := map[string]handler.Pinger{}

	financeClient, err := financeapi.NewClient(financeapi.Options{
		BaseURL:  cfg.FinanceAPI.BaseURL,
		Timeout:  cfg.FinanceAPI.Timeout,
		Observer: metrics,
		Logger:   logr.Named("financeapi"),
	})
	if err != nil {
		logr.Fatal("invalid finance API configuration", zap.Error(err))
	}

	var cacheRepo service.CacheRepository
	var redisClient *redis.Client
	if cfg.Dashboard.CacheEnabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, dashboard cache disabled", zap.Error(err))
		} else {
			repo := repository.NewCacheRepository(redisClient, logr)
			cacheRepo = repo
			checks["redis"] = repo
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, cacheRepo != nil)

	var db *sqlx.DB
	var auditStore *service.AsyncAuditWriter
	var auditWriter middleware.AuditWriter
	if cfg.Audit.Enabled {
		db, err = database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			logr.Fatal("failed to connect audit database", zap.Error(err))
		}
		if err := database.EnsureAuditSchema(ctx, db); err != nil {
			logr.Fatal("failed to prepare audit schema", zap.Error(err))
		}
		auditStore = service.NewAsyncAuditWriter(repository.NewAuditRepository(db), service.AuditWriterConfig{
			Workers:    cfg.Audit.Workers,
			BufferSize: cfg.Audit.BufferSize,
			MaxRetries: cfg.Audit.MaxRetries,
		}, logr.Named("audit"))
		auditStore.Start(context.Background())
		auditWriter = auditStore
		checks["postgres"] = handler.PingFunc(db.PingContext)
	}

	roles := models.ParseRoles(cfg.AdminPanel.Roles)
	tokens := service.NewTokenService(service.TokenConfig{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
	})

	loader := service.NewDashboardLoader()
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Finance:  financeClient,
		Students: financeClient,
		Loader:   loader,
		Cache:    cacheSvc,
		Metrics:  metrics,
		Logger:   logr.Named("dashboard"),
		Config: service.DashboardServiceConfig{
			CacheTTL:          cfg.Dashboard.CacheTTL,
			PaymentsLimit:     cfg.Dashboard.PaymentsLimit,
			StudentsLimit:     cfg.Dashboard.StudentsLimit,
			RevenueSeriesDays: cfg.Dashboard.RevenueSeriesDays,
			AdminPanelRoles:   roles,
		},
	})

	financeParams := service.FinanceServiceParams{
		Finance:     financeClient,
		Dashboard:   dashboardSvc,
		Validator:   validation.New(),
		Logger:      logr.Named("finance"),
		ExportLimit: cfg.Dashboard.ExportDefaultLimit,
	}
	if auditStore != nil {
		financeParams.Audit = auditStore
	}
	financeSvc := service.NewFinanceService(financeParams)

	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	financeHandler := handler.NewFinanceHandler(financeSvc)
	metricsHandler := handler.NewMetricsHandler(metrics, checks)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	panel := r.Group("/:locale/admin", middleware.AdminPanelGuard(tokens, roles, cfg.AdminPanel.DefaultLocale))
	panel.GET("/dashboard", dashboardHandler.Admin)
	panel.GET("/dashboard/snapshot", dashboardHandler.Snapshot)

	api := r.Group(cfg.APIPrefix+"/admin", middleware.JWT(tokens), middleware.RequireRoles(roles...))
	api.GET("/purchases/pending", financeHandler.PendingPurchases)
	api.POST("/purchases/:enrollmentId/mark-paid", financeHandler.MarkPaid)
	api.GET("/purchases/:enrollmentId/audit", financeHandler.AuditTrail)
	api.GET("/revenue/timeseries", financeHandler.RevenueTimeseries)
	api.GET("/payments", financeHandler.Payments)
	api.GET("/payments/export", middleware.Audit(auditWriter, logr, models.AuditActionExport, "payments"), financeHandler.ExportPayments)

	go pruneSessions(ctx, loader, logr)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	loader.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("http server shutdown failed", zap.Error(err))
	}
	if auditStore != nil {
		if err := auditStore.Stop(shutdownCtx); err != nil {
			logr.Warn("audit queue not fully flushed", zap.Error(err))
		}
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if db != nil {
		_ = db.Close()
	}
	logr.Info("shutdown complete")
}

func pruneSessions(ctx context.Context, loader *service.DashboardLoader, logr *zap.Logger) {
	ticker := time.NewTicker(sessionPruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := loader.Prune(sessionMaxIdle); removed > 0 {
				logr.Debug("pruned idle dashboard sessions", zap.Int("count", removed))
			}
		}
	}
}
