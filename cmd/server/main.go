package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/brightpath/school-portal/internal/api"
	"github.com/brightpath/school-portal/internal/core/ports"
	"github.com/brightpath/school-portal/internal/infrastructure/config"
	"github.com/brightpath/school-portal/internal/infrastructure/db/memory"
	mongodb "github.com/brightpath/school-portal/internal/infrastructure/db/mongo"
	redisdb "github.com/brightpath/school-portal/internal/infrastructure/db/redis"
	"github.com/brightpath/school-portal/internal/infrastructure/queue"
	"github.com/brightpath/school-portal/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- MongoDB ---
	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("mongo index creation failed")
	}

	// --- Rate-limit counter backend ---
	var rdb *redis.Client
	var counterStore ports.CounterStore
	if cfg.RateLimit.Backend == "redis" {
		rdb, err = redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		defer func() { _ = rdb.Close() }()
		counterStore = redisdb.NewCounterStore(rdb)
	} else {
		memStore := memory.NewCounterStore(cfg.RateLimit.SweepInterval)
		defer memStore.Close()
		counterStore = memStore
	}

	// --- Audit trail ---
	dispatcher := queue.NewDispatcher(0, mongodb.NewAuditRepository(db), log)
	dispatcher.Start(ctx)

	e, err := api.NewRouter(db, rdb, dispatcher, counterStore, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("router initialisation failed")
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server start failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}
