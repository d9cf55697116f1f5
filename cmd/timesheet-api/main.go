package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/workpulse/timesheet-api/api/swagger"
	"github.com/workpulse/timesheet-api/internal/handler"
	"github.com/workpulse/timesheet-api/internal/middleware"
	"github.com/workpulse/timesheet-api/internal/models"
	"github.com/workpulse/timesheet-api/internal/repository"
	"github.com/workpulse/timesheet-api/internal/service"
	"github.com/workpulse/timesheet-api/pkg/cache"
	"github.com/workpulse/timesheet-api/pkg/config"
	"github.com/workpulse/timesheet-api/pkg/database"
	"github.com/workpulse/timesheet-api/pkg/logger"
	corsmiddleware "github.com/workpulse/timesheet-api/pkg/middleware/cors"
	reqidmiddleware "github.com/workpulse/timesheet-api/pkg/middleware/requestid"
)

// @title WorkPulse Timesheet API
// @version 1.0.0
// @description Timesheet lifecycle and workforce analytics service
// @BasePath /api/v1
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
	defer db.Close()

	metricsService := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	cacheEnabled := cfg.Analytics.CacheEnabled
	if cacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, analytics caching disabled", "error", err)
			cacheEnabled = false
		} else {
			defer redisClient.Close()
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
		}
	}
	cacheService := service.NewCacheService(cacheRepo, metricsService, cfg.Analytics.CacheTTL, logr, cacheEnabled)

	userRepo := repository.NewUserRepository(db)
	timesheetRepo := repository.NewTimesheetRepository(db)

	authService := service.NewAuthService(userRepo, validator.New(), logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      "workpulse-timesheet-api",
	})
	visibilityService := service.NewVisibilityService(userRepo)
	timesheetService := service.NewTimesheetService(timesheetRepo, visibilityService, cacheService, logr)
	analyticsService := service.NewAnalyticsService(timesheetRepo, userRepo, visibilityService, cacheService, logr, cfg.Analytics.CacheTTL)
	exportService := service.NewExportService(timesheetRepo, userRepo, visibilityService, logr)

	authHandler := handler.NewAuthHandler(authService)
	timesheetHandler := handler.NewTimesheetHandler(timesheetService)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService)
	exportHandler := handler.NewExportHandler(exportService)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsService.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	protected := api.Group("")
	protected.Use(middleware.JWT(authService))

	reviewers := middleware.RequireRoles(models.RoleManager, models.RoleAdmin)

	timesheets := protected.Group("/timesheets")
	{
		timesheets.POST("", timesheetHandler.Save)
		timesheets.GET("/my", timesheetHandler.Mine)
		timesheets.GET("/week", timesheetHandler.Week)
		timesheets.GET("/pending", reviewers, timesheetHandler.Pending)
		timesheets.GET("/:id", timesheetHandler.Get)
		timesheets.PATCH("/:id/submit", timesheetHandler.Submit)
		timesheets.PATCH("/:id/review", reviewers, timesheetHandler.Review)
	}

	analytics := protected.Group("/analytics")
	{
		analytics.GET("/dashboard", analyticsHandler.Dashboard)
		analytics.GET("/trend", analyticsHandler.Trend)
		analytics.GET("/overworked", reviewers, analyticsHandler.Overworked)
	}

	exports := protected.Group("/exports")
	{
		exports.GET("/csv", exportHandler.CSV)
		exports.GET("/timesheets/:id/pdf", exportHandler.PDF)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
