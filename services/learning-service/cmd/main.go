package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vasapolrittideah/elearning-api/services/learning-service/internal/app"
	"github.com/vasapolrittideah/elearning-api/services/learning-service/internal/config"
	"github.com/vasapolrittideah/elearning-api/shared/logger"
)

const serviceName = "learning-service"

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := logger.New(serviceName, "", "")
		bootLogger.Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.New(serviceName, cfg.Environment, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize app")
	}

	go func() {
		if err := application.Run(); err != nil {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	log.Info().
		Str("http_addr", cfg.HTTPAddr).
		Str("grpc_health_addr", cfg.GRPCHealthAddr).
		Msg("learning-service started")

	<-ctx.Done()

	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := application.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("graceful shutdown failed")
	}

	log.Info().Msg("learning-service stopped cleanly")
}
