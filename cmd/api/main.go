package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"easyshifthq-backend/internal/config"
	"easyshifthq-backend/internal/interfaces/router"
	"easyshifthq-backend/internal/observability/tracing"
	"easyshifthq-backend/internal/pkg/logging"

	"github.com/rs/zerolog/log"
)

const serviceName = "easyshifthq-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load")
	}
	logging.Setup(cfg.LogLevel, !cfg.IsProduction())

	shutdownTracing, err := tracing.Init(context.Background(), cfg.OTLPEndpoint, serviceName, cfg.Env)
	if err != nil {
		log.Fatal().Err(err).Msg("tracing init")
	}

	app, deps, err := router.CreateApp(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("app create")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := deps.Rdb.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	cancel()
	log.Info().Msg("database and redis connected")

	worker, err := deps.Worker.Start(cfg.OutboxInterval)
	if err != nil {
		log.Fatal().Err(err).Msg("notification worker")
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("server error")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("shutdown signal received")

	if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
	<-worker.Stop().Done()

	ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(ctx); err != nil {
		log.Error().Err(err).Msg("tracing shutdown")
	}
	if sqlDB, err := deps.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = deps.Rdb.Close()
	log.Info().Msg("server stopped")
}
