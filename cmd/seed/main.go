package main

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/civicreach/backend/internal/config"
	"github.com/civicreach/backend/internal/db"
	"github.com/civicreach/backend/internal/routing"
)

// Seeds the routing configuration tables with the built-in defaults. Safe to
// run repeatedly; rows are merge-upserted.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	logger := log.With().Str("service", "civicreach-seed").Logger()

	ctx := context.Background()
	store, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect db")
	}
	defer store.Close()

	if err := store.RunMigrations(ctx, logger); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	configs := routing.NewConfigSource(store, nil, 0, logger)
	if err := configs.Initialize(ctx); err != nil {
		logger.Fatal().Err(err).Msg("seed finished with failures")
	}
	logger.Info().Msg("routing configuration seeded")
}
