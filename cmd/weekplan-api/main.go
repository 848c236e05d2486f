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
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/weekplan-api/internal/handler"
	"github.com/noah-isme/weekplan-api/internal/repository"
	"github.com/noah-isme/weekplan-api/internal/service"
	"github.com/noah-isme/weekplan-api/pkg/cache"
	"github.com/noah-isme/weekplan-api/pkg/config"
	"github.com/noah-isme/weekplan-api/pkg/database"
	"github.com/noah-isme/weekplan-api/pkg/logger"
)

// @title Weekplan API
// @version 1.0.0
// @description Weekly schedule synthesis, optimization and course analysis.
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	var db *sqlx.DB
	if cfg.Courses.StoreEnabled {
		conn, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer conn.Close()
		if err := database.Migrate(ctx, conn); err != nil {
			return err
		}
		db = conn
	}

	var redisClient *redis.Client
	if cfg.Analysis.CacheEnabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			// Analysis still works uncached.
			logr.Warn("redis unavailable, analysis cache disabled", zap.Error(err))
		} else {
			redisClient = client
		}
	}

	app := buildServices(cfg, db, redisClient, logr)
	defer func() {
		if err := app.cacheRepo.Close(); err != nil {
			logr.Warn("close redis", zap.Error(err))
		}
	}()
	app.jobs.Start(ctx)
	defer app.jobs.Stop()

	router := newRouter(cfg, app, logr)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// services holds every wired component the router mounts.
type services struct {
	metrics     *service.MetricsService
	tokens      *service.TokenService
	planner     *service.PlannerService
	jobs        *service.OptimizeJobService
	academic    *service.AcademicService
	preferences *service.PreferenceService
	courses     *service.CourseService
	cacheRepo   *repository.CacheRepository
	checks      map[string]handler.Pinger
}

func buildServices(cfg *config.Config, db *sqlx.DB, redisClient *redis.Client, logr *zap.Logger) *services {
	validate := validator.New()
	metrics := service.NewMetricsService()
	app := &services{
		metrics: metrics,
		tokens:  service.NewTokenService(service.TokenConfig{Secret: cfg.JWT.Secret, Expiry: cfg.JWT.Expiration}),
		checks:  map[string]handler.Pinger{},
	}

	var cacheRepo *repository.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
		app.checks["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	} else {
		cacheRepo = repository.NewCacheRepository(nil, logr)
	}
	app.cacheRepo = cacheRepo
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Analysis.CacheTTL, logr, redisClient != nil)

	academicParams := service.AcademicServiceParams{
		Cache:     cacheSvc,
		Validator: validate,
		Metrics:   metrics,
		Logger:    logr,
	}
	plannerCfg := service.PlannerConfig{PlanTTL: cfg.Planner.PlanTTL, StoreSize: cfg.Planner.StoreSize}

	if db != nil {
		app.checks["postgres"] = db
		app.preferences = service.NewPreferenceService(repository.NewPreferenceRepository(db), validate, logr, cacheSvc)
		loc, err := time.LoadLocation(cfg.Courses.Timezone)
		if err != nil {
			logr.Warn("unknown course timezone, using UTC", zap.String("timezone", cfg.Courses.Timezone))
			loc = time.UTC
		}
		app.courses = service.NewCourseService(repository.NewCourseRepository(db), validate, logr, cfg.Courses.ICSMaxBytes, loc, cacheSvc)
		academicParams.Courses = app.courses
		academicParams.Preferences = app.preferences
		app.planner = service.NewPlannerService(app.preferences, validate, metrics, logr, plannerCfg)
	} else {
		app.planner = service.NewPlannerService(nil, validate, metrics, logr, plannerCfg)
	}

	app.academic = service.NewAcademicService(academicParams)
	app.jobs = service.NewOptimizeJobService(app.planner, metrics, logr, service.OptimizeJobConfig{
		Workers:   cfg.Optimizer.Workers,
		QueueSize: cfg.Optimizer.QueueSize,
	})
	return app
}
