package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-attendance-scoring/api/swagger"
	"github.com/noah-isme/sma-attendance-scoring/internal/handler"
	internalmiddleware "github.com/noah-isme/sma-attendance-scoring/internal/middleware"
	"github.com/noah-isme/sma-attendance-scoring/internal/models"
	"github.com/noah-isme/sma-attendance-scoring/internal/repository"
	"github.com/noah-isme/sma-attendance-scoring/internal/scoring"
	"github.com/noah-isme/sma-attendance-scoring/internal/service"
	"github.com/noah-isme/sma-attendance-scoring/pkg/cache"
	"github.com/noah-isme/sma-attendance-scoring/pkg/config"
	"github.com/noah-isme/sma-attendance-scoring/pkg/database"
	"github.com/noah-isme/sma-attendance-scoring/pkg/jobs"
	"github.com/noah-isme/sma-attendance-scoring/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-attendance-scoring/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-attendance-scoring/pkg/middleware/requestid"
	"github.com/noah-isme/sma-attendance-scoring/pkg/storage"
)

// @title Attendance Scoring API
// @version 1.0.0
// @description Attendance scoring and analytics for course sessions
// @BasePath /api/v1
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient := connectRedis(ctx, cfg, logr)
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, "scoring", logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Scoring.CacheTTL, logr, cfg.Scoring.CacheEnabled && cacheRepo != nil)

	policySvc := service.NewPolicyService(repository.NewScoringPolicyRepository(db), cacheSvc, validate, logr)
	scoringSvc := service.NewScoringService(
		repository.NewAttendanceRecordRepository(db),
		policySvc,
		scoring.NewEngine(cfg.Scoring.Workers),
		cacheSvc,
		metricsSvc,
		logr,
		service.ScoringServiceConfig{CacheTTL: cfg.Scoring.CacheTTL},
	)

	// With exports switched off the routes stay registered and RequireFeature answers them.
	exportHandler := handler.NewExportHandler(nil)
	if cfg.Exports.Enabled {
		exportJobs, queue := buildExports(ctx, cfg, db, scoringSvc, metricsSvc, validate, logr)
		defer queue.Stop()
		exportHandler = handler.NewExportHandler(exportJobs)
	}

	checks := map[string]handler.ReadinessCheck{
		"database": db.PingContext,
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	metricsHandler := handler.NewMetricsHandler(metricsSvc, checks)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))
	r.Use(internalmiddleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	// The signed token authorises the download on its own.
	api.GET("/export/:token", internalmiddleware.RequireFeature(cfg.Exports.Enabled, "exports"), exportHandler.Download)

	secured := api.Group("")
	if cfg.Auth.Enabled {
		secured.Use(internalmiddleware.JWT(service.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.Leeway)))
	} else {
		logr.Warn("token verification disabled; requests run as a static administrator")
		secured.Use(internalmiddleware.StaticIdentity(models.JWTClaims{UserID: "local-admin", Role: models.RoleSuperAdmin}))
	}
	registerRoutes(secured, cfg, scoringSvc, policySvc, exportHandler, metricsHandler)

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
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

func connectRedis(ctx context.Context, cfg *config.Config, logr *zap.Logger) *redis.Client {
	if !cfg.Scoring.CacheEnabled {
		return nil
	}
	client, err := cache.NewRedis(ctx, cfg.Redis, 3*time.Second)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, evaluation cache disabled", "error", err)
		return nil
	}
	return client
}

func buildExports(ctx context.Context, cfg *config.Config, db *sqlx.DB, scoringSvc *service.ScoringService, metricsSvc *service.MetricsService, validate *validator.Validate, logr *zap.Logger) (*service.ExportJobService, *jobs.Queue) {
	files, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("export storage unavailable", "dir", cfg.Exports.StorageDir, "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	exporter := service.NewExportService(scoringSvc, files, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.SignedURLTTL,
	}, logr, nil, nil)

	repo := repository.NewExportJobRepository(db)
	worker := service.NewExportWorker(repo, exporter, metricsSvc, cfg.Exports.WorkerRetries, logr)
	queue := jobs.NewQueue("exports", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: cfg.Exports.WorkerRetries,
		RetryDelay: 2 * time.Second,
		Logger:     logr,
	})
	queue.Start(ctx)

	exportJobs := service.NewExportJobService(repo, queue, exporter, validate, metricsSvc, logr, service.ExportJobServiceConfig{
		ResultTTL:       cfg.Exports.SignedURLTTL,
		CleanupInterval: cfg.Exports.CleanupInterval,
	})
	exportJobs.RecoverPendingJobs(ctx)
	exportJobs.StartCleanup(ctx)
	return exportJobs, queue
}

func registerRoutes(api *gin.RouterGroup, cfg *config.Config, scoringSvc *service.ScoringService, policySvc *service.PolicyService, exportHandler *handler.ExportHandler, metricsHandler *handler.MetricsHandler) {
	admins := internalmiddleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin)

	scoringHandler := handler.NewScoringHandler(scoringSvc)
	courses := api.Group("/scoring/courses/:courseId")
	courses.GET("/scorecards", scoringHandler.Scorecards)
	courses.GET("/scorecards/:studentId", scoringHandler.Scorecard)
	courses.GET("/dates", scoringHandler.Dates)
	courses.GET("/hosts", scoringHandler.Hosts)
	courses.POST("/preview", scoringHandler.Preview)

	policyHandler := handler.NewPolicyHandler(policySvc)
	policy := api.Group("/scoring/policy", internalmiddleware.RequireFeature(cfg.Policy.Enabled, "policy api"))
	policy.GET("", policyHandler.Get)
	policy.PUT("", admins, policyHandler.Update)

	exports := api.Group("/exports", internalmiddleware.RequireFeature(cfg.Exports.Enabled, "exports"))
	exports.POST("", exportHandler.Create)
	exports.GET("/:id", exportHandler.Status)

	api.GET("/metrics/system", admins, metricsHandler.System)
}
