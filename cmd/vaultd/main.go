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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/mediavault/mediavault/api/swagger"
	"github.com/mediavault/mediavault/internal/handler"
	internalmiddleware "github.com/mediavault/mediavault/internal/middleware"
	"github.com/mediavault/mediavault/internal/repository"
	"github.com/mediavault/mediavault/internal/service"
	"github.com/mediavault/mediavault/pkg/cache"
	"github.com/mediavault/mediavault/pkg/config"
	"github.com/mediavault/mediavault/pkg/database"
	"github.com/mediavault/mediavault/pkg/logger"
	corsmiddleware "github.com/mediavault/mediavault/pkg/middleware/cors"
	reqidmiddleware "github.com/mediavault/mediavault/pkg/middleware/requestid"
)

// @title MediaVault API
// @version 0.1.0
// @description Content-addressed personal media repository daemon
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics := service.NewMetricsService()

	var queryCache *repository.CacheRepository
	if cfg.Query.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, query cache disabled", zap.Error(err))
		} else {
			queryCache = repository.NewCacheRepository(redisClient, logr)
			defer redisClient.Close() //nolint:errcheck
		}
	}

	buffers := service.NewBufferService(cfg.Buffer.TTL, cfg.Buffer.SweepInterval, metrics, logr)
	connection := service.NewConnectionService(logr)

	openVault := func(ctx context.Context, dsn string) (*service.VaultService, error) {
		if dsn == "" {
			dsn = database.DSN(cfg.Database)
		}
		pool, err := database.Open(dsn, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
		if err != nil {
			return nil, err
		}
		vault, err := service.OpenVault(ctx, pool, cfg.Storage, service.VaultOptions{
			Cache:         queryCache,
			QueryCacheTTL: cfg.Query.CacheTTL,
			Metrics:       metrics,
			Logger:        logr,
		})
		if err != nil {
			pool.Close() //nolint:errcheck
			return nil, err
		}
		return vault, nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Storage.AutoConnect {
		vault, err := openVault(ctx, "")
		if err != nil {
			logr.Warn("auto-connect failed, waiting for explicit connect", zap.Error(err))
		} else {
			connection.Swap(ctx, vault)
		}
	}

	go buffers.Run(ctx)

	router := buildRouter(cfg, logr, metrics, connection, buffers, openVault)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("shutdown incomplete", zap.Error(err))
	}
	if connection.Connected() {
		if err := connection.Disconnect(shutdownCtx); err != nil {
			logr.Warn("disconnect on shutdown failed", zap.Error(err))
		}
	}
}

func buildRouter(
	cfg *config.Config,
	logr *zap.Logger,
	metrics *service.MetricsService,
	connection *service.ConnectionService,
	buffers *service.BufferService,
	openVault handler.VaultOpener,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(reqidmiddleware.Middleware())
	router.Use(logger.GinMiddleware(logr))
	router.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	router.Use(internalmiddleware.Metrics(metrics))

	healthHandler := handler.NewHealthHandler(connection)
	fileHandler := handler.NewFileHandler(connection)
	contentHandler := handler.NewContentHandler(connection, buffers)
	thumbnailHandler := handler.NewThumbnailHandler(connection, buffers)
	tagHandler := handler.NewTagHandler(connection)
	connectionHandler := handler.NewConnectionHandler(connection, openVault)

	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	if cfg.Env != config.EnvProduction {
		router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := router.Group("/api/v1")
	{
		v1.POST("/files", fileHandler.Add)
		v1.POST("/files/path", fileHandler.AddFromPath)
		v1.GET("/files", fileHandler.List)
		v1.POST("/files/find", fileHandler.Find)
		v1.GET("/files/:id", fileHandler.Get)
		v1.PATCH("/files/:id/name", fileHandler.UpdateName)
		v1.PATCH("/files/:id/status", fileHandler.UpdateStatus)

		v1.GET("/content/:hash", contentHandler.Read)
		v1.GET("/content/:hash/tags", contentHandler.Tags)
		v1.POST("/content/:hash/tags", contentHandler.ChangeTags)
		v1.GET("/content/:hash/thumbnails", thumbnailHandler.List)
		v1.GET("/content/:hash/thumbnail", thumbnailHandler.Get)
		v1.POST("/content/:hash/thumbnail/:tier", thumbnailHandler.CreateTier)

		v1.GET("/tags", tagHandler.List)
		v1.POST("/tags", tagHandler.Create)
		v1.POST("/tags/files", tagHandler.ForFiles)

		v1.GET("/buffers/:key", contentHandler.ReadBuffer)

		v1.POST("/repo/connect", connectionHandler.Connect)
		v1.POST("/repo/disconnect", connectionHandler.Disconnect)
		v1.GET("/repo/status", connectionHandler.Status)
	}

	return router
}
