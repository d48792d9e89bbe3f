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
	"go.uber.org/multierr"
	"go.uber.org/zap"

	_ "github.com/noah-isme/ai-saathi-api/api/swagger"
	"github.com/noah-isme/ai-saathi-api/internal/handler"
	"github.com/noah-isme/ai-saathi-api/internal/middleware"
	"github.com/noah-isme/ai-saathi-api/internal/repository"
	"github.com/noah-isme/ai-saathi-api/internal/service"
	"github.com/noah-isme/ai-saathi-api/pkg/cache"
	"github.com/noah-isme/ai-saathi-api/pkg/config"
	"github.com/noah-isme/ai-saathi-api/pkg/database"
	"github.com/noah-isme/ai-saathi-api/pkg/jobs"
	"github.com/noah-isme/ai-saathi-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/ai-saathi-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/ai-saathi-api/pkg/middleware/requestid"
	"github.com/noah-isme/ai-saathi-api/pkg/storage"
)

// @title AI Saathi API
// @version 1.0.0
// @description Teacher dashboard backend: student profiles, AI agent workflows, translations and exports
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 15 * time.Second

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	if cfg.Database.AutoMigrate {
		if err := database.EnsureSchema(ctx, db); err != nil {
			logr.Fatal("failed to apply schema", zap.Error(err))
		}
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, response cache disabled", zap.Error(err))
		redisClient = nil
	}

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(
		repository.NewCacheRepository(redisClient, logr),
		metricsSvc,
		cfg.Cache.DefaultTTL,
		logr,
		cfg.Cache.Enabled && redisClient != nil,
	)
	agentSvc := service.NewAgentService(service.AgentServiceConfig{
		BaseURL: cfg.Agents.ServiceURL,
		Timeout: cfg.Agents.Timeout,
	}, metricsSvc, logr)
	if agentSvc.Demo() {
		logr.Info("AGENT_SERVICE_URL not set, agents answer with demo content")
	}
	translationSvc := service.NewTranslationService(service.DefaultCatalog(), agentSvc, cacheSvc, logr, service.TranslationServiceConfig{
		DefaultLanguage: cfg.I18n.DefaultLanguage,
		DynamicCacheTTL: cfg.I18n.DynamicCacheTTL,
	})

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentProfileRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	workflowRepo := repository.NewWorkflowRepository(db)

	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
		SingleSession:      cfg.JWT.SingleSession,
	})
	activitySvc := service.NewActivityService(activityRepo, translationSvc, logr)
	studentSvc := service.NewStudentProfileService(service.StudentProfileServiceParams{
		Repo:       studentRepo,
		Validator:  service.NewStudentValidator(),
		Cache:      cacheSvc,
		Activities: activitySvc,
		Audit:      userRepo,
		Translator: translationSvc,
		Logger:     logr,
		CacheTTL:   cfg.Cache.StudentTTL,
	})
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Students:   studentRepo,
		Activities: activitySvc,
		Translator: translationSvc,
		Cache:      cacheSvc,
		Logger:     logr,
		Config: service.DashboardServiceConfig{
			CacheTTL:            cfg.Dashboard.CacheTTL,
			RecentActivityLimit: cfg.Dashboard.RecentActivityLimit,
		},
	})
	workflowSvc := service.NewWorkflowService(service.WorkflowServiceParams{
		Repo:       workflowRepo,
		Agents:     agentSvc,
		Activities: activitySvc,
		Translator: translationSvc,
		Cache:      cacheSvc,
		Metrics:    metricsSvc,
		Logger:     logr,
	})

	files, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare export storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	exportSvc := service.NewExportService(studentSvc, files, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.SignedURLTTL,
	}, logr)

	queue := jobs.NewQueue("workflows", workflowSvc.HandleJob, jobs.QueueConfig{
		Workers:    cfg.Agents.WorkerConcurrency,
		MaxRetries: cfg.Agents.WorkerRetries,
		RetryDelay: cfg.Agents.RetryDelay,
		Logger:     logr,
		OnGiveUp:   workflowSvc.GiveUp,
	})
	workflowSvc.AttachQueue(queue)
	queue.Start(ctx)

	go runExportCleanup(ctx, exportSvc, cfg.Exports.CleanupInterval, cfg.Exports.SignedURLTTL, logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	registerRoutes(r, routeDeps{
		APIPrefix: cfg.APIPrefix,
		Docs:      cfg.Env != config.EnvProduction,
		Logger:    logr,
		Tokens:    authSvc,
		Languages: translationSvc,
		Audit:     userRepo,
		Auth:      handler.NewAuthHandler(authSvc),
		Students:  handler.NewStudentHandler(studentSvc, exportSvc),
		Dashboard: handler.NewDashboardHandler(dashboardSvc),
		Workflows: handler.NewWorkflowHandler(workflowSvc, agentSvc),
		I18n:      handler.NewI18nHandler(translationSvc),
		Exports:   handler.NewExportHandler(exportSvc),
		Metrics:   handler.NewMetricsHandler(metricsSvc, queue, readinessChecks(db, redisClient)),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err = srv.Shutdown(shutdownCtx)
	queue.Stop()
	err = multierr.Combine(err, db.Close(), closeRedis(redisClient))
	if err != nil {
		logr.Error("shutdown finished with errors", zap.Error(err))
	}
}

func readinessChecks(db *sqlx.DB, client *redis.Client) map[string]handler.ReadinessCheck {
	checks := map[string]handler.ReadinessCheck{
		"database": db.PingContext,
	}
	if client != nil {
		checks["redis"] = func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}
	}
	return checks
}

func closeRedis(client *redis.Client) error {
	if client == nil {
		return nil
	}
	return client.Close()
}

func runExportCleanup(ctx context.Context, exports *service.ExportService, interval, ttl time.Duration, logr *zap.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := exports.Cleanup(ttl)
			if err != nil {
				logr.Warn("export cleanup failed", zap.Error(err))
				continue
			}
			if len(removed) > 0 {
				logr.Info("expired exports removed", zap.Int("count", len(removed)))
			}
		}
	}
}
