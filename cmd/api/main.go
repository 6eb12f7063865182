package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/civitas-app/civitas-api/api/swagger"
	"github.com/civitas-app/civitas-api/internal/handler"
	"github.com/civitas-app/civitas-api/internal/middleware"
	"github.com/civitas-app/civitas-api/internal/models"
	"github.com/civitas-app/civitas-api/internal/repository"
	"github.com/civitas-app/civitas-api/internal/service"
	"github.com/civitas-app/civitas-api/pkg/cache"
	"github.com/civitas-app/civitas-api/pkg/config"
	"github.com/civitas-app/civitas-api/pkg/database"
	"github.com/civitas-app/civitas-api/pkg/jobs"
	"github.com/civitas-app/civitas-api/pkg/logger"
	corsmiddleware "github.com/civitas-app/civitas-api/pkg/middleware/cors"
	reqidmiddleware "github.com/civitas-app/civitas-api/pkg/middleware/requestid"
	"github.com/civitas-app/civitas-api/pkg/storage"
)

// @title Civitas API
// @version 1.0.0
// @description Municipal report lifecycle and authorization service
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close() //nolint:errcheck

	photoStore, err := storage.NewLocalStorage(cfg.Photos.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init photo storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Photos.SignedURLSecret, cfg.Photos.SignedURLTTL)

	// Repositories.
	reportRepo := repository.NewReportRepository(db)
	referenceRepo := repository.NewReferenceRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	userRepo := repository.NewUserRepository(db)
	redisCache := repository.NewRedisCache(redisClient)
	telegramRepo := repository.NewTelegramRepository(redisClient)

	// Services.
	metricsSvc := service.NewMetricsService()
	notificationSvc := service.NewNotificationService(notificationRepo, logr)
	queue := notificationSvc.StartEmitter(ctx, jobs.QueueConfig{
		Workers:    cfg.Notifications.WorkerConcurrency,
		MaxRetries: cfg.Notifications.WorkerRetries,
		RetryDelay: cfg.Notifications.RetryDelay,
		Logger:     logr,
	})
	defer queue.Stop()

	categorySvc := service.NewCategoryService(categoryRepo, referenceRepo, redisCache, cfg.Routing.CacheTTL, logr)
	reportSvc := service.NewReportService(reportRepo, categorySvc, notificationSvc, metricsSvc, nil, logr)
	referenceSvc := service.NewReferenceService(referenceRepo, logr)
	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "civitas-api",
	})
	companySvc := service.NewCompanyService(companyRepo, nil, logr)
	telegramSvc := service.NewTelegramService(telegramRepo, userRepo, cfg.Telegram.LinkCodeTTL, logr)
	exportSvc := service.NewExportService(reportRepo, cfg.Exports.MaxRows, logr)

	// Handlers.
	reportHandler := handler.NewReportHandler(reportSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	categoryHandler := handler.NewCategoryHandler(categorySvc)
	referenceHandler := handler.NewReferenceHandler(referenceSvc)
	authHandler := handler.NewAuthHandler(authSvc)
	companyHandler := handler.NewCompanyHandler(companySvc)
	telegramHandler := handler.NewTelegramHandler(telegramSvc)
	photoHandler := handler.NewPhotoHandler(reportSvc, photoStore, signer, cfg.Photos.MaxFileSizeBytes)
	exportHandler := handler.NewExportHandler(exportSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Signed photo downloads are authenticated by the token itself.
	r.GET("/photos/:token", photoHandler.Download)

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
	}

	api.POST("/telegram/confirm", telegramHandler.ConfirmLink)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))
	{
		authed.GET("/reports", reportHandler.List)
		authed.GET("/reports/categories", reportHandler.Categories)
		authed.GET("/reports/mine", reportHandler.Mine)
		authed.POST("/reports", reportHandler.Submit)
		authed.GET("/reports/:id", reportHandler.Get)
		authed.GET("/reports/:id/transitions", reportHandler.AllowedTransitions)
		authed.POST("/reports/:id/transition",
			middleware.Audit(userRepo, "report.transition", "reports"),
			reportHandler.Transition)
		authed.POST("/reports/:id/photos", photoHandler.Upload)
		authed.GET("/reports/:id/photos", photoHandler.SignedURLs)

		authed.GET("/notifications", notificationHandler.List)
		authed.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		authed.POST("/notifications/:id/read", notificationHandler.MarkRead)
		authed.POST("/notifications/read-all", notificationHandler.MarkAllRead)

		authed.GET("/reference/roles", referenceHandler.Roles)
		authed.GET("/reference/positions", referenceHandler.Positions)
		authed.GET("/reference/departments", referenceHandler.Departments)
		authed.GET("/reference/position", referenceHandler.Position)

		authed.POST("/telegram/link-code", telegramHandler.GenerateLinkCode)

		staff := authed.Group("")
		staff.Use(middleware.RequireRoles(
			models.RoleAdministrator,
			models.RolePublicRelations,
			models.RoleTechnicalManager,
			models.RoleTechnicalAssistant,
		))
		{
			staff.GET("/companies", companyHandler.List)
			staff.GET("/companies/:id", companyHandler.Get)
		}

		admin := authed.Group("")
		admin.Use(middleware.RequireRoles(models.RoleAdministrator))
		{
			admin.GET("/categories/mappings", categoryHandler.ListMappings)
			admin.PUT("/categories/:category/mapping",
				middleware.Audit(userRepo, "category.map", "categories"),
				categoryHandler.SetMapping)
			admin.DELETE("/categories/:category/mapping",
				middleware.Audit(userRepo, "category.unmap", "categories"),
				categoryHandler.ClearMapping)

			admin.POST("/companies",
				middleware.Audit(userRepo, "company.create", "companies"),
				companyHandler.Create)
			admin.PUT("/companies/:id",
				middleware.Audit(userRepo, "company.update", "companies"),
				companyHandler.Update)

			if cfg.Exports.Enabled {
				admin.GET("/admin/reports/export", exportHandler.Export)
			}
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")
	if err := srv.Shutdown(context.Background()); err != nil {
		logr.Sugar().Errorw("shutdown failed", "error", err)
	}
}
