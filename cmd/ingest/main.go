package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"fitstream/exerciseservice/internal/app"
	"fitstream/exerciseservice/internal/catalog"
	"fitstream/exerciseservice/internal/domain"
	"fitstream/exerciseservice/internal/telemetry"
)

// ingest loads the merged live catalog into the exercise store. It runs once
// per INGEST_QUERIES entry, or once with an empty query.
func main() {
	cfg := app.LoadConfig()
	logger := app.NewLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if strings.TrimSpace(cfg.MongoURI) == "" {
		logger.Error("MONGO_URI is required for ingestion")
		os.Exit(1)
	}

	shutdownTracer, err := telemetry.Init(context.Background(), "exercise-ingest")
	if err != nil {
		logger.Warn("otel init failed", slog.String("error", err.Error()))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if code := run(ctx, cfg, logger); code != 0 {
		stop()
		os.Exit(code)
	}
}

func run(ctx context.Context, cfg app.Config, logger *slog.Logger) int {
	mongoClient, repo, err := app.ConnectStore(ctx, cfg)
	if err != nil {
		logger.Error("exercise store unavailable", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logger.Warn("mongo disconnect error", slog.String("error", err.Error()))
		}
	}()

	redisClient := app.ConnectRedis(ctx, cfg.RedisURL, logger)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	svc := catalog.NewService(app.BuildProviders(cfg), cfg.ProviderTimeout,
		catalog.WithMediaSources(app.BuildMediaSources(cfg, redisClient)...),
		catalog.WithEnrichment(cfg.EnrichMaxRecords, cfg.EnrichTimeout),
		catalog.WithProviderRateLimit(cfg.ProviderRPS),
	)

	queries := cfg.IngestQueries
	if len(queries) == 0 {
		queries = []string{""}
	}

	startedAt := time.Now()
	batches := make([][]domain.Exercise, 0, len(queries))
	for _, text := range queries {
		if ctx.Err() != nil {
			logger.Warn("ingestion interrupted")
			return 1
		}
		records, statuses := svc.Collect(ctx, domain.Query{Text: text, Enrich: true})
		logger.Info("ingest query collected",
			slog.String("query", text),
			slog.Int("records", len(records)),
			slog.Any("failedProviders", catalog.FailedProviders(statuses)),
		)
		batches = append(batches, records)
	}

	records := catalog.MergeBatches(batches)
	if len(records) == 0 {
		logger.Error("no exercises collected", slog.Int("queries", len(queries)))
		return 1
	}

	written, err := repo.UpsertMany(ctx, records)
	if err != nil {
		logger.Error("store upsert failed", slog.String("error", err.Error()))
		return 1
	}
	logger.Info("ingestion completed",
		slog.Int("collected", len(records)),
		slog.Int64("written", written),
		slog.Int64("elapsedMs", time.Since(startedAt).Milliseconds()),
	)
	return 0
}
