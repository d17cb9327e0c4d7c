package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/booomerangs/relay-api/cmd"
	"github.com/booomerangs/relay-api/internal/analytics"
	"github.com/booomerangs/relay-api/internal/config"
	"github.com/booomerangs/relay-api/internal/gateway"
	"github.com/booomerangs/relay-api/internal/platform/logger"
	"github.com/booomerangs/relay-api/internal/platform/otel"
	"github.com/booomerangs/relay-api/internal/provider"
	"github.com/booomerangs/relay-api/internal/server"
	"github.com/booomerangs/relay-api/internal/store/cache"
	"github.com/booomerangs/relay-api/internal/store/cache/memory"
	"github.com/booomerangs/relay-api/internal/store/cache/redis"
	"github.com/booomerangs/relay-api/internal/store/sqlite"

	// Register provider families.
	_ "github.com/booomerangs/relay-api/internal/provider/gradio"
	_ "github.com/booomerangs/relay-api/internal/provider/openaic"
)

func main() {
	logger.Initialize(logger.DefaultConfig())
	defer logger.Sync()
	log := logger.Get()

	go cmd.CheckForUpdates()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}

	shutdownTracer, err := otel.InitTracer("relay-api", log, os.Stdout)
	if err != nil {
		log.Fatal("Failed to init tracer", zap.Error(err))
	}

	repo, err := sqlite.NewSQLiteStorage(cfg.Store.DSN, log)
	if err != nil {
		log.Fatal("Failed to open store", zap.Error(err))
	}
	defer repo.Close()

	var cacheService cache.CacheService
	if cfg.Redis.Enabled {
		cacheService, err = redis.NewRedisCache(cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, falling back to memory cache", zap.Error(err))
			cacheService = memory.NewMemoryCache()
		}
	} else {
		cacheService = memory.NewMemoryCache()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ingestor := analytics.NewIngestor(log, repo)
	ingestor.Start(ctx)

	registry := gateway.BuildRegistry(cfg.Registry, provider.Catalog(), log)
	log.Info("Provider registry built",
		zap.Int("providers", registry.Len()),
		zap.Strings("names", registry.Names()))

	responder := gateway.NewResponder()
	service := gateway.NewService(log, registry, cfg.Dispatch, responder, ingestor, cacheService)

	srv := server.New(cfg, log, service)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Starting relay server", zap.String("port", cfg.Server.Port))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}

	ingestor.Stop()

	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Error("Tracer shutdown failed", zap.Error(err))
	}
}
