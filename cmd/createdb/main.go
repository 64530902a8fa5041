package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/homebuddy-dev/homebuddy/internal/config"
	"github.com/homebuddy-dev/homebuddy/internal/logger"
	"github.com/homebuddy-dev/homebuddy/internal/pgclient"
)

// createdb creates the deployment database on a PostgreSQL server if it is missing
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format, nil)
	log := logger.GetLogger()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := pgclient.NewClient(cfg.Postgres.AdminURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid POSTGRES_ADMIN_URL")
	}
	defer client.Close()

	if err := client.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}

	if version, err := client.GetVersion(ctx); err == nil {
		log.Info().Str("version", version).Msg("Connected to PostgreSQL")
	}

	created, err := client.EnsureDatabase(ctx, cfg.Postgres.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create database")
	}

	if created {
		log.Info().Str("database", cfg.Postgres.Database).Msg("Database created")
	} else {
		log.Info().Str("database", cfg.Postgres.Database).Msg("Database already exists")
	}
}
