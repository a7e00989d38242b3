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

	"github.com/binay-das/cloudify/config"
	"github.com/binay-das/cloudify/database"
	"github.com/binay-das/cloudify/handlers"
	"github.com/binay-das/cloudify/logger"
	"github.com/binay-das/cloudify/metrics"
	"github.com/binay-das/cloudify/middleware"
	"github.com/binay-das/cloudify/repositories"
	"github.com/binay-das/cloudify/services"
	"github.com/binay-das/cloudify/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	configPath := "config.yaml"
	if p := os.Getenv("CLOUDIFY_CONFIG"); p != "" {
		configPath = p
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting cloudify service")

	if err := database.InitDatabase(&cfg.Database); err != nil {
		logger.Fatal("init database failed", zap.Error(err))
	}
	if err := database.Migrate(database.DB); err != nil {
		logger.Fatal("database migration failed", zap.Error(err))
	}
	logger.Info("database migration completed")

	if cfg.Redis.Host != "" {
		if err := database.InitRedis(&cfg.Redis); err != nil {
			logger.Fatal("init redis failed", zap.Error(err))
		}
	} else {
		logger.Warn("redis not configured, token revocation is process-local")
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal("init object store failed", zap.String("backend", cfg.Storage.Backend), zap.Error(err))
	}

	repoContainer := repositories.NewGormRepositories(database.DB, database.RedisClient).BuildContainer()
	serviceContainer := services.NewContainer(repoContainer, store, cfg)
	handlers.SetServices(serviceContainer)
	serviceContainer.Sweeper.Start(ctx)
	if cfg.Trash.RetentionDays > 0 {
		logger.Info("trash sweeper started", zap.Int("retention_days", cfg.Trash.RetentionDays))
	}

	oidcAuth, err := middleware.NewOIDCAuthenticator(ctx, cfg.OIDC, serviceContainer.Auth)
	if err != nil {
		logger.Fatal("init oidc failed", zap.String("issuer", cfg.OIDC.IssuerURL), zap.Error(err))
	}

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(middleware.Recovery(), middleware.RequestLogger(), metrics.Middleware(), middleware.CORSMiddleware())

	handlers.SetupRoutes(r, middleware.AuthMiddleware(middleware.AuthOptions{
		Secret:    cfg.JWT.Secret,
		Blocklist: repoContainer.Tokens,
		OIDC:      oidcAuth,
	}))
	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(metrics.Handler()))
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSec) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server start failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	if database.RedisClient != nil {
		_ = database.RedisClient.Close()
	}
}
