package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/hubvisory/tanuki-api/api/swagger"
	"github.com/hubvisory/tanuki-api/internal/handler"
	"github.com/hubvisory/tanuki-api/internal/middleware"
	"github.com/hubvisory/tanuki-api/internal/models"
	"github.com/hubvisory/tanuki-api/internal/repository"
	"github.com/hubvisory/tanuki-api/internal/service"
	"github.com/hubvisory/tanuki-api/pkg/cache"
	"github.com/hubvisory/tanuki-api/pkg/config"
	"github.com/hubvisory/tanuki-api/pkg/database"
	"github.com/hubvisory/tanuki-api/pkg/logger"
	corsmiddleware "github.com/hubvisory/tanuki-api/pkg/middleware/cors"
	reqidmiddleware "github.com/hubvisory/tanuki-api/pkg/middleware/requestid"
)

// @title Tanuki API
// @version 1.0.0
// @description Consultant NPS feedback tracking for HR
// @BasePath /api
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
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	metricsService := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	cacheEnabled := cfg.Dashboard.CacheEnabled
	if cacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, dashboard cache disabled", zap.Error(err))
			cacheEnabled = false
		} else {
			defer redisClient.Close()
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
		}
	}
	cacheService := service.NewCacheService(cacheRepo, metricsService, cfg.Dashboard.CacheTTL, logr, cacheEnabled)

	validate := validator.New()

	employeeRepo := repository.NewEmployeeRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	clientRepo := repository.NewClientRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	userRepo := repository.NewUserRepository(db)

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	userService := service.NewUserService(userRepo, employeeRepo, logr)
	employeeService := service.NewEmployeeService(employeeRepo, logr)
	aggregationService := service.NewAggregationService(employeeRepo, cacheService, cfg.Dashboard.CacheTTL, logr)
	feedbackService := service.NewFeedbackService(feedbackRepo, cacheService, validate, logr)
	periodService := service.NewPeriodService(feedbackRepo, logr)
	clientService := service.NewClientService(clientRepo, accountRepo, validate, logr)
	accountService := service.NewAccountService(accountRepo, logr)
	exportService := service.NewExportService(employeeRepo, feedbackRepo, nil, cfg.Export.Delimiter, logr)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	employeeHandler := handler.NewEmployeeHandler(employeeService)
	aggregationHandler := handler.NewAggregationHandler(aggregationService)
	feedbackHandler := handler.NewFeedbackHandler(feedbackService)
	periodHandler := handler.NewPeriodHandler(periodService)
	clientHandler := handler.NewClientHandler(clientService)
	accountHandler := handler.NewAccountHandler(accountService)
	exportHandler := handler.NewExportHandler(exportService, validate)

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
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(authService))
	{
		authed.GET("/auth/me", authHandler.Me)
		authed.GET("/employees", employeeHandler.List)
		authed.GET("/employees/managers/aggregation", aggregationHandler.Managers)
		authed.GET("/feedbacks", feedbackHandler.List)
		authed.GET("/feedbacks/:id", feedbackHandler.Get)
		authed.POST("/feedbacks", feedbackHandler.Create)
		authed.PUT("/feedbacks/:id", feedbackHandler.Update)
		authed.DELETE("/feedbacks/:id", feedbackHandler.Delete)
		authed.GET("/clients", clientHandler.List)
		authed.GET("/accounts", accountHandler.List)
		authed.GET("/filters/periods", periodHandler.Options)
		authed.POST("/employees/export", exportHandler.Employees)
	}

	admin := authed.Group("")
	admin.Use(middleware.RequireRoles(models.RoleAdmin))
	{
		admin.POST("/users", userHandler.Provision)
		admin.POST("/clients", clientHandler.Create)
		admin.POST("/feedbacks/export", exportHandler.Feedbacks)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := r.Run(addr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}
