package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/civicreach/backend/internal/cache"
	"github.com/civicreach/backend/internal/classify"
	"github.com/civicreach/backend/internal/config"
	"github.com/civicreach/backend/internal/db"
	httpapi "github.com/civicreach/backend/internal/http"
	"github.com/civicreach/backend/internal/routing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "civicreach-backend").Logger()

	ctx := context.Background()
	store, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect db")
	}
	defer store.Close()

	if err := store.RunMigrations(ctx, logger); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	var redis *cache.Redis
	if cfg.RedisAddr != "" {
		redis = cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, logger)
		defer redis.Close()
	}

	var classifier classify.Classifier
	if cfg.ClassifierURL == "" {
		classifier = classify.MockClassifier{ModelVersion: "mock-v1"}
		logger.Info().Msg("using mock classifier")
	} else {
		classifier = classify.HTTPClassifier{BaseURL: cfg.ClassifierURL}
	}

	configs := routing.NewConfigSource(store, redis, cfg.ConfigCacheTTL, logger)
	router := httpapi.Router(cfg, store, classifier, configs, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}
