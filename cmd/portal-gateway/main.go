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
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/faculty-report-portal/api/swagger"
	"github.com/noah-isme/faculty-report-portal/internal/gateway"
	"github.com/noah-isme/faculty-report-portal/internal/handler"
	internalmiddleware "github.com/noah-isme/faculty-report-portal/internal/middleware"
	"github.com/noah-isme/faculty-report-portal/internal/models"
	"github.com/noah-isme/faculty-report-portal/internal/repository"
	"github.com/noah-isme/faculty-report-portal/internal/service"
	"github.com/noah-isme/faculty-report-portal/pkg/cache"
	"github.com/noah-isme/faculty-report-portal/pkg/config"
	"github.com/noah-isme/faculty-report-portal/pkg/database"
	"github.com/noah-isme/faculty-report-portal/pkg/jobs"
	"github.com/noah-isme/faculty-report-portal/pkg/logger"
	corsmiddleware "github.com/noah-isme/faculty-report-portal/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/faculty-report-portal/pkg/middleware/requestid"
	"github.com/noah-isme/faculty-report-portal/pkg/retry"
	"github.com/noah-isme/faculty-report-portal/pkg/storage"
)

// @title Faculty Report Portal API
// @version 1.0.0
// @description Session-aware gateway serving role views, dashboards and exports over the faculty API
// @BasePath /portal/v1
// @schemes http
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

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("redis unavailable", "error", err)
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database unavailable", "error", err)
	}
	if db != nil {
		defer db.Close() //nolint:errcheck
	}

	metrics := service.NewMetricsService()
	validate := validator.New()

	client := gateway.New(gateway.Config{
		BaseURL:      cfg.Upstream.BaseURL,
		ReadTimeout:  cfg.Upstream.ReadTimeout,
		WriteTimeout: cfg.Upstream.WriteTimeout,
		Retry: retry.Policy{
			MaxAttempts: cfg.Retry.MaxAttempts,
			BaseDelay:   cfg.Retry.BaseDelay,
			MaxDelay:    cfg.Retry.MaxDelay,
			Jitter:      retry.DefaultPolicy().Jitter,
		},
		Observer: metrics,
		Logger:   logr.Named("gateway"),
	})

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.CacheEnabled && cacheRepo.Enabled())
	sessions := service.NewSessionService(client, repository.NewSessionRepository(cacheRepo, logr), validate, logr, service.SessionConfig{TTL: cfg.Session.TTL})

	views := service.NewViewService(service.ViewServiceParams{
		Gateway:  client,
		Sessions: sessions,
		Validate: validate,
		Cache:    cacheSvc,
		Metrics:  metrics,
		Logger:   logr.Named("views"),
		Config: service.ViewServiceConfig{
			AlertTTL:         cfg.Views.AlertTTL,
			SubmissionTarget: cfg.Analytics.SubmissionTarget,
			TrendWeeks:       cfg.Analytics.TrendWeeks,
		},
	})
	sessions.OnSessionEnd(views.CloseSession)

	dashboards := service.NewDashboardService(service.DashboardServiceParams{
		Gateway:  client,
		Sessions: sessions,
		Cache:    cacheSvc,
		Metrics:  metrics,
		Logger:   logr.Named("dashboard"),
		Config:   service.DashboardServiceConfig{CacheTTL: cfg.Dashboard.CacheTTL},
	})

	exports, exportQueue, err := buildExports(cfg, db, views, metrics, logr)
	if err != nil {
		logr.Sugar().Fatalw("export pipeline unavailable", "error", err)
	}
	exportQueue.Start(ctx)
	defer exportQueue.Stop()
	go exports.StartCleanup(ctx)

	checks := map[string]handler.Pinger{
		"upstream": client,
		"redis":    cacheRepo,
	}
	if db != nil {
		checks["database"] = handler.PingFunc(db.PingContext)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))
	r.Use(internalmiddleware.WithResponseMeta())

	metricsHandler := handler.NewMetricsHandler(metrics, checks)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerRoutes(r.Group(cfg.APIPrefix), sessions, views, dashboards, exports)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "upstream", cfg.Upstream.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}

func buildExports(cfg *config.Config, db *sqlx.DB, views *service.ViewService, metrics *service.MetricsService, logr *zap.Logger) (*service.ExportService, *jobs.Queue, error) {
	store, err := storage.NewArtifactStore(cfg.Exports.StorageDir)
	if err != nil {
		return nil, nil, err
	}

	var repo service.ExportJobStore
	if db != nil {
		repo = repository.NewExportJobRepository(db)
	} else {
		logr.Warn("database disabled; export jobs are kept in memory")
		repo = repository.NewMemoryExportJobRepository()
	}

	exports := service.NewExportService(service.ExportServiceParams{
		Views:   views,
		Repo:    repo,
		Store:   store,
		Signer:  storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL),
		Metrics: metrics,
		Logger:  logr.Named("exports"),
		Config: service.ExportConfig{
			APIPrefix:        cfg.APIPrefix,
			ResultTTL:        cfg.Exports.SignedURLTTL,
			CleanupInterval:  cfg.Exports.CleanupInterval,
			SubmissionTarget: cfg.Analytics.SubmissionTarget,
			TrendWeeks:       cfg.Analytics.TrendWeeks,
		},
	})

	worker := service.NewExportWorker(repo, exports, logr.Named("export-worker"))
	queue := jobs.NewQueue("exports", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: cfg.Exports.WorkerRetries,
		Backoff:    retry.DefaultPolicy(),
		DeadLetter: worker.DeadLetter,
		Logger:     logr.Named("export-queue"),
	})
	exports.SetQueue(queue)
	return exports, queue, nil
}

func registerRoutes(api *gin.RouterGroup, sessions *service.SessionService, views *service.ViewService, dashboards *service.DashboardService, exports *service.ExportService) {
	authHandler := handler.NewAuthHandler(sessions)
	dashboardHandler := handler.NewDashboardHandler(dashboards)
	viewHandler := handler.NewViewHandler(views)
	mutationHandler := handler.NewMutationHandler(views)
	exportHandler := handler.NewExportHandler(exports)

	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/register", authHandler.Register)
	api.GET("/public/stats", dashboardHandler.Public)
	api.GET("/exports/download/:token", exportHandler.Download)

	secured := api.Group("", internalmiddleware.Session(sessions))
	secured.POST("/auth/logout", authHandler.Logout)
	secured.GET("/auth/me", authHandler.Me)
	secured.GET("/dashboard", internalmiddleware.RequireRoles(models.RolePRL, models.RoleProgramLeader, models.RoleFMG), dashboardHandler.Dashboard)
	secured.GET("/exports/jobs/:id", exportHandler.GetJob)

	view := secured.Group("/views/:kind", internalmiddleware.RequireViewKind())
	view.GET("", viewHandler.Snapshot)
	view.GET("/reports", viewHandler.Reports)
	view.GET("/analytics", viewHandler.Analytics)
	view.POST("/notifications/:id/read", viewHandler.MarkNotificationRead)
	view.DELETE("/alerts/:id", viewHandler.DismissAlert)

	view.POST("/reports", mutationHandler.SubmitReport)
	view.POST("/reports/bulk-review", mutationHandler.BulkReview)
	view.PUT("/reports/:id", mutationHandler.UpdateReport)
	view.DELETE("/reports/:id", mutationHandler.DeleteReport)
	view.PUT("/reports/:id/review", mutationHandler.ReviewReport)
	view.POST("/ratings", mutationHandler.AddRating)
	view.POST("/classes", mutationHandler.ScheduleClass)
	view.DELETE("/classes/:id", mutationHandler.DeleteClass)
	view.POST("/courses", mutationHandler.AddCourse)
	view.PUT("/courses/:id", mutationHandler.UpdateCourse)
	view.DELETE("/courses/:id", mutationHandler.DeleteCourse)
	view.POST("/lectures", mutationHandler.AddLecture)

	view.GET("/export/:dataset", exportHandler.Export)
	view.POST("/export-jobs", exportHandler.CreateJob)
}
