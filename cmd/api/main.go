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

	_ "github.com/asterheng/Team7/api/swagger"
	"github.com/asterheng/Team7/internal/handler"
	"github.com/asterheng/Team7/internal/middleware"
	"github.com/asterheng/Team7/internal/models"
	"github.com/asterheng/Team7/internal/repository"
	"github.com/asterheng/Team7/internal/service"
	"github.com/asterheng/Team7/pkg/cache"
	"github.com/asterheng/Team7/pkg/config"
	"github.com/asterheng/Team7/pkg/database"
	"github.com/asterheng/Team7/pkg/logger"
	corsmiddleware "github.com/asterheng/Team7/pkg/middleware/cors"
	reqidmiddleware "github.com/asterheng/Team7/pkg/middleware/requestid"
)

// @title Volunteer Coordination API
// @version 1.0.0
// @description Connects people in need with CSR volunteer companies
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
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	// Redis is optional. Without it the browse cache is simply disabled.
	var cacheRepo service.CacheRepository
	if cfg.Browse.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, browse cache disabled", zap.Error(err))
		} else {
			repo := repository.NewCacheRepository(redisClient, logr)
			defer repo.Close()
			cacheRepo = repo
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Browse.CacheTTL, logr, cfg.Browse.CacheEnabled && cacheRepo != nil)

	requestRepo := repository.NewRequestRepository(db)
	viewRepo := repository.NewViewRepository(db)
	shortlistRepo := repository.NewShortlistRepository(db)
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)

	validate := validator.New()

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	requestSvc := service.NewRequestService(requestRepo, cacheSvc, validate, logr)
	browseSvc := service.NewBrowseService(requestRepo, viewRepo, shortlistRepo, cacheSvc, cfg.Browse.CacheTTL, logr)
	userSvc := service.NewUserService(userRepo, profileRepo, validate, logr)
	profileSvc := service.NewProfileService(profileRepo, validate, logr)
	categorySvc := service.NewCategoryService(categoryRepo, validate, logr)
	exportSvc := service.NewExportService(requestRepo, shortlistRepo, logr, nil, nil)

	authHandler := handler.NewAuthHandler(authSvc)
	requestHandler := handler.NewRequestHandler(requestSvc)
	browseHandler := handler.NewBrowseHandler(browseSvc)
	userHandler := handler.NewUserHandler(userSvc)
	profileHandler := handler.NewProfileHandler(profileSvc)
	categoryHandler := handler.NewCategoryHandler(categorySvc)
	platformHandler := handler.NewPlatformHandler(requestSvc)
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
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)

		authed := auth.Group("")
		authed.Use(middleware.JWT(authSvc))
		authed.POST("/logout", authHandler.Logout)
		authed.POST("/change-password", authHandler.ChangePassword)
		authed.GET("/me", authHandler.Me)
	}

	requests := api.Group("/requests")
	requests.Use(middleware.JWT(authSvc), middleware.RequireRoles(models.RolePIN))
	{
		requests.POST("", requestHandler.Create)
		requests.GET("", requestHandler.ListActive)
		requests.GET("/history", requestHandler.History)
		requests.GET("/search", requestHandler.Search)
		requests.GET("/completed", requestHandler.SearchCompleted)
		if cfg.Exports.Enabled {
			requests.GET("/completed/export", exportHandler.CompletedRequests)
		}
		requests.GET("/:id/edit", requestHandler.GetForEdit)
		requests.PUT("/:id", requestHandler.Update)
		requests.POST("/:id/suspend", requestHandler.Suspend)
		requests.GET("/:id/views", requestHandler.ViewCount)
		requests.GET("/:id/shortlists", requestHandler.ShortlistCount)
	}

	browse := api.Group("/browse")
	browse.Use(middleware.JWT(authSvc), middleware.RequireRoles(models.RoleCSR))
	{
		browse.GET("/requests", browseHandler.Search)
		browse.GET("/requests/:id", browseHandler.Details)
		browse.POST("/requests/:id/shortlist", browseHandler.AddToShortlist)
		browse.DELETE("/requests/:id/shortlist", browseHandler.RemoveFromShortlist)
		browse.GET("/shortlist", browseHandler.Shortlist)
		browse.GET("/shortlist/:id", browseHandler.ShortlistedDetails)
		browse.GET("/history", browseHandler.CompletedHistory)
		browse.GET("/history/search", browseHandler.SearchCompleted)
		if cfg.Exports.Enabled {
			browse.GET("/history/export", exportHandler.CompletedServices)
		}
	}

	users := api.Group("/users")
	users.Use(middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin))
	{
		users.GET("", userHandler.List)
		users.POST("", userHandler.Create)
		users.GET("/:id", userHandler.Get)
		users.PUT("/:id", userHandler.Update)
		users.POST("/:id/suspend", userHandler.Suspend)
		users.POST("/:id/reinstate", userHandler.Reinstate)
	}

	profiles := api.Group("/profiles")
	profiles.Use(middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin))
	{
		profiles.GET("", profileHandler.List)
		profiles.POST("", profileHandler.Create)
		profiles.GET("/search", profileHandler.Search)
		profiles.GET("/:id", profileHandler.Get)
		profiles.PUT("/:id", profileHandler.Update)
		profiles.POST("/:id/suspend", profileHandler.Suspend)
		profiles.POST("/:id/reinstate", profileHandler.Reinstate)
	}

	categories := api.Group("/categories")
	categories.Use(middleware.JWT(authSvc), middleware.RequireRoles(models.RolePlatform))
	{
		categories.GET("", categoryHandler.List)
		categories.POST("", categoryHandler.Create)
		categories.GET("/:id", categoryHandler.Get)
		categories.PUT("/:id", categoryHandler.Update)
		categories.POST("/:id/suspend", categoryHandler.Suspend)
		categories.POST("/:id/reinstate", categoryHandler.Reinstate)
	}

	platform := api.Group("/platform")
	platform.Use(middleware.JWT(authSvc), middleware.RequireRoles(models.RolePlatform))
	{
		platform.POST("/requests/:id/complete", platformHandler.Complete)
		platform.DELETE("/requests/:id", platformHandler.Delete)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
