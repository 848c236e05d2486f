package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/weekplan-api/api/swagger"
	"github.com/noah-isme/weekplan-api/internal/handler"
	"github.com/noah-isme/weekplan-api/internal/middleware"
	"github.com/noah-isme/weekplan-api/pkg/config"
	"github.com/noah-isme/weekplan-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/weekplan-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/weekplan-api/pkg/middleware/requestid"
)

func newRouter(cfg *config.Config, app *services, logr *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(app.metrics, "/health", "/ready", "/metrics"))
	r.Use(middleware.WithResponseMeta())

	metricsHandler := handler.NewMetricsHandler(app.metrics, app.planner, app.checks)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	r.GET("/metrics/summary", metricsHandler.Summary)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	optional := middleware.OptionalJWT(app.tokens)

	if cfg.Planner.Enabled {
		plans := handler.NewPlannerHandler(app.planner, app.jobs)
		group := api.Group("", optional)
		group.POST("/plans", plans.Create)
		group.GET("/plans/:id", plans.Get)
		group.POST("/plans/:id/optimize", plans.Optimize)
		group.POST("/plans/:id/suggestions", plans.Suggest)
		group.GET("/plans/:id/export", plans.Export)
		group.POST("/plans/:id/optimize-jobs", plans.SubmitOptimizeJob)
		group.GET("/optimize-jobs/:id", plans.OptimizeJobStatus)
	}

	academic := handler.NewAcademicHandler(app.academic)
	courses := api.Group("/courses", optional)
	courses.POST("/conflicts", academic.Conflicts)
	courses.POST("/workload", academic.Workload)
	courses.POST("/recommendations", academic.Recommendations)
	courses.POST("/feasibility", academic.Feasibility)

	if app.preferences != nil && app.courses != nil {
		me := api.Group("/me", middleware.JWT(app.tokens))
		prefs := handler.NewPreferenceHandler(app.preferences)
		me.GET("/preferences", prefs.Get)
		me.PUT("/preferences", prefs.Update)

		stored := handler.NewCourseHandler(app.courses)
		me.GET("/courses", stored.List)
		me.POST("/courses", stored.Upsert)
		me.DELETE("/courses/:id", stored.Delete)
		me.POST("/courses/import", stored.Import)
		me.GET("/courses/analysis", academic.StoredAnalysis)
	}

	return r
}
