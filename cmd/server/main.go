package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"

	apihttp "fitstream/exerciseservice/internal/api/http"
	"fitstream/exerciseservice/internal/app"
	"fitstream/exerciseservice/internal/catalog"
	"fitstream/exerciseservice/internal/domain"
	"fitstream/exerciseservice/internal/metrics"
	"fitstream/exerciseservice/internal/providers/demo"
	"fitstream/exerciseservice/internal/telemetry"
)

func main() {
	cfg := app.LoadConfig()
	logger := app.NewLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	metrics.Register(prometheus.DefaultRegisterer)

	shutdownTracer, err := telemetry.Init(context.Background(), "exercise-catalog")
	if err != nil {
		logger.Warn("otel init failed", slog.String("error", err.Error()))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	logger.Info("configuration loaded",
		slog.String("service", "exercise-catalog"),
		slog.String("httpAddr", cfg.HTTPAddr),
		slog.String("logLevel", cfg.LogLevel),
		slog.String("sourceMode", cfg.SourceMode),
		slog.Bool("demoFallback", cfg.DemoFallback),
		slog.Duration("providerTimeout", cfg.ProviderTimeout),
		slog.Duration("enrichTimeout", cfg.EnrichTimeout),
		slog.Bool("hasExerciseDBKey", strings.TrimSpace(cfg.ExerciseDBAPIKey) != ""),
		slog.Bool("hasNinjasKey", strings.TrimSpace(cfg.NinjasAPIKey) != ""),
		slog.Bool("hasRedis", strings.TrimSpace(cfg.RedisURL) != ""),
		slog.Bool("hasMongo", strings.TrimSpace(cfg.MongoURI) != ""),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := app.ConnectRedis(rootCtx, cfg.RedisURL, logger)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	opts := []catalog.ServiceOption{
		catalog.WithDemoProvider(demo.NewProvider()),
		catalog.WithMediaSources(app.BuildMediaSources(cfg, redisClient)...),
		catalog.WithEnrichment(cfg.EnrichMaxRecords, cfg.EnrichTimeout),
		catalog.WithDefaultMode(domain.SourceMode(cfg.SourceMode)),
		catalog.WithDemoFallback(cfg.DemoFallback),
		catalog.WithProviderRateLimit(cfg.ProviderRPS),
	}
	if strings.TrimSpace(cfg.MongoURI) != "" {
		mongoClient, repo, err := app.ConnectStore(rootCtx, cfg)
		if err != nil {
			// Store mode answers 503 until the store is reachable on restart.
			logger.Warn("exercise store disabled", slog.String("error", err.Error()))
		} else {
			logger.Info("exercise store connected",
				slog.String("db", cfg.MongoDB),
				slog.String("collection", cfg.MongoCollection),
			)
			opts = append(opts, catalog.WithStore(repo))
			defer func() {
				if err := mongoClient.Disconnect(context.Background()); err != nil {
					logger.Warn("mongo disconnect error", slog.String("error", err.Error()))
				}
			}()
		}
	}

	catalogService := catalog.NewService(app.BuildProviders(cfg), cfg.ProviderTimeout, opts...)

	handler := apihttp.NewServer(catalogService,
		apihttp.WithLogger(logger),
		apihttp.WithMediaHosts(cfg.MediaProxyHosts...),
	).Handler()
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.ProviderTimeout*3 + cfg.EnrichTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	logger.Info("exercise catalog service started",
		slog.String("addr", cfg.HTTPAddr),
		slog.Bool("store", catalogService.HasStore()),
	)

	select {
	case <-rootCtx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown error", slog.String("error", err.Error()))
	}
	logger.Info("exercise catalog service stopped")
}
