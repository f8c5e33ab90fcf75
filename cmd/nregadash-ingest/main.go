package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"nregadash/internal/amqp"
	"nregadash/internal/config"
	"nregadash/internal/ingest"
	applog "nregadash/internal/log"
	"nregadash/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     applog.DefaultConfig().Level,
		Component: applog.ComponentIngest,
	})
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.OpenDataAPIKey == "" {
		logger.Error("OPEN_DATA_API_KEY is required for ingestion")
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	var publisher ingest.RefreshPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, refresh announcements disabled", "error", err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
		}
	}

	client := ingest.NewOpenDataClient(ingest.ClientConfig{
		BaseURL:    cfg.OpenDataURL,
		APIKey:     cfg.OpenDataAPIKey,
		Limit:      cfg.FetchLimit,
		Retries:    cfg.FetchRetries,
		RetryDelay: cfg.FetchRetryDelay,
		Logger:     logger,
	})

	ingestor := ingest.NewIngestor(ingest.IngestorConfig{
		Fetcher:     client,
		Store:       repo,
		Publisher:   publisher,
		StateName:   cfg.StateFilter,
		Concurrency: cfg.FetchConcurrency,
		Logger:      logger,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("Starting ingestion",
		"state", cfg.StateFilter,
		"years", cfg.FinYears,
		"source", cfg.OpenDataURL)

	if err := ingestor.Run(ctx, cfg.FinYears); err != nil {
		logger.Error("Ingestion failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Ingestion completed", "years", cfg.FinYears)
}
