package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/edupulse/edupulse-api/api/swagger"
	"github.com/edupulse/edupulse-api/internal/handler"
	"github.com/edupulse/edupulse-api/internal/middleware"
	"github.com/edupulse/edupulse-api/internal/repository"
	"github.com/edupulse/edupulse-api/internal/service"
	"github.com/edupulse/edupulse-api/pkg/cache"
	"github.com/edupulse/edupulse-api/pkg/config"
	"github.com/edupulse/edupulse-api/pkg/database"
	"github.com/edupulse/edupulse-api/pkg/logger"
	corsmiddleware "github.com/edupulse/edupulse-api/pkg/middleware/cors"
	reqidmiddleware "github.com/edupulse/edupulse-api/pkg/middleware/requestid"
)

// @title EduPulse Analytics API
// @version 0.1.0
// @description Student success prediction and academic integrity analytics
// @BasePath /
// @schemes http

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		cacheSvc = service.NewCacheService(nil, metricsSvc, cfg.Analytics.CacheTTL, logr, false)
	} else {
		defer redisClient.Close() //nolint:errcheck
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Analytics.CacheTTL, logr, true)
	}

	validate := validator.New()

	activityRepo := repository.NewActivityRepository(db)

	predictionSvc, err := service.NewPredictionService(activityRepo, cacheSvc, metricsSvc, service.DefaultScoringPolicy(), validate, logr, cfg.Analytics.CacheTTL)
	if err != nil {
		logr.Sugar().Fatalw("failed to init prediction service", "error", err)
	}
	integritySvc := service.NewIntegrityService(activityRepo, cacheSvc, metricsSvc, service.DefaultIntegrityPolicy(), validate, logr, cfg.Integrity.CacheTTL)
	exportSvc := service.NewExportService(validate, logr)

	refreshSvc := service.NewRefreshService(predictionSvc, integritySvc, cfg.Analytics.RefreshInterval, cfg.Analytics.DefaultWindowDays, logr)
	refreshSvc.Start(context.Background())
	defer refreshSvc.Stop()

	analyticsHandler := handler.NewAnalyticsHandler(predictionSvc, integritySvc, metricsSvc, cfg.Analytics.DefaultWindowDays)
	exportHandler := handler.NewExportHandler(predictionSvc, integritySvc, exportSvc, cfg.Analytics.DefaultWindowDays)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.WithResponseMeta())
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	analytics := api.Group("/analytics")
	analytics.GET("/predictions", analyticsHandler.Predictions)
	analytics.GET("/integrity", analyticsHandler.Integrity)
	analytics.GET("/system", analyticsHandler.System)

	if cfg.Exports.Enabled {
		exports := analytics.Group("/exports")
		exports.GET("/predictions", exportHandler.Predictions)
		exports.GET("/integrity", exportHandler.Integrity)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
