package main

import (
	"context"
	"log"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/VK-RED/clobby/internal/adapter/cache"
	"github.com/VK-RED/clobby/internal/adapter/feed"
	"github.com/VK-RED/clobby/internal/adapter/in_memory"
	"github.com/VK-RED/clobby/internal/adapter/pg"
	httpapi "github.com/VK-RED/clobby/internal/api/http"
	"github.com/VK-RED/clobby/internal/config"
	"github.com/VK-RED/clobby/internal/core"
	"github.com/VK-RED/clobby/internal/port"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	var repo port.Repository
	if cfg.Postgres.DSN != "" {
		pgRepo, err := pg.NewPgRepo(ctx, cfg.Postgres.DSN)
		if err != nil {
			logger.Fatal("failed to connect to Postgres", zap.Error(err))
		}
		defer pgRepo.Close()
		if err := pgRepo.Migrate(ctx); err != nil {
			logger.Fatal("failed to migrate", zap.Error(err))
		}
		repo = pgRepo
	} else {
		logger.Warn("no Postgres DSN configured, records are memory-only")
		repo = in_memory.NewMemoryRepo()
	}

	var depthCache port.Cache
	if cfg.Redis.Addr != "" {
		depthCache = cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
	} else {
		depthCache = in_memory.NewCache()
	}

	var fillFeed port.FillPublisher
	if len(cfg.FillFeed.Brokers) > 0 {
		kafkaFeed := feed.NewKafkaPublisher(cfg.FillFeed.Brokers, cfg.FillFeed.Topic)
		defer kafkaFeed.Close()
		fillFeed = kafkaFeed
	}

	custody := in_memory.NewVault()

	engine := core.NewEngine(repo, depthCache, custody, fillFeed, logger)
	if err := engine.LoadFromRepo(ctx); err != nil {
		logger.Fatal("failed to restore records", zap.Error(err))
	}

	server := httpapi.NewHTTPServer(engine)
	logger.Info("starting HTTP server", zap.String("addr", cfg.App.Addr))
	if err := server.Run(cfg.App.Addr); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	var lvl zapcore.Level
	if err := lvl.Set(level); err != nil {
		return nil, err
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
