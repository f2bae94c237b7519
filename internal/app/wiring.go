package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"fitstream/exerciseservice/internal/catalog"
	"fitstream/exerciseservice/internal/enrichment"
	"fitstream/exerciseservice/internal/providers/exercisedb"
	"fitstream/exerciseservice/internal/providers/ninjas"
	"fitstream/exerciseservice/internal/providers/wger"
	mongorepo "fitstream/exerciseservice/internal/store/mongo"
)

func NewLogger(levelRaw, formatRaw string) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: parseLogLevel(levelRaw)}
	if strings.ToLower(strings.TrimSpace(formatRaw)) == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, handlerOpts))
}

func parseLogLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newTracedClient keeps a client-level timeout above the per-attempt
// timeout the catalog applies.
func newTracedClient(timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	return &http.Client{
		Timeout:   timeout + 2*time.Second,
		Transport: otelhttp.NewTransport(transport),
	}
}

// BuildProviders returns the live catalogs in merge precedence order.
func BuildProviders(cfg Config) []catalog.Provider {
	return []catalog.Provider{
		wger.NewProvider(wger.Config{
			Endpoint:       cfg.WgerEndpoint,
			SearchEndpoint: cfg.WgerSearchEndpoint,
			UserAgent:      cfg.UserAgent,
			Client:         newTracedClient(cfg.ProviderTimeout),
		}),
		exercisedb.NewProvider(exercisedb.Config{
			Endpoint: cfg.ExerciseDBEndpoint,
			APIKey:   cfg.ExerciseDBAPIKey,
			Client:   newTracedClient(cfg.ProviderTimeout),
		}),
		ninjas.NewProvider(ninjas.Config{
			Endpoint: cfg.NinjasEndpoint,
			APIKey:   cfg.NinjasAPIKey,
			Client:   newTracedClient(cfg.ProviderTimeout),
		}),
	}
}

// BuildMediaSources wraps every media client in the Redis cache when one is
// available.
func BuildMediaSources(cfg Config, redisClient *redis.Client) []catalog.MediaSource {
	client := newTracedClient(cfg.EnrichTimeout)
	clients := []enrichment.Source{
		enrichment.NewYouTube(enrichment.Config{APIKey: cfg.YouTubeAPIKey, Client: client}),
		enrichment.NewGiphy(enrichment.Config{APIKey: cfg.GiphyAPIKey, Client: client}),
		enrichment.NewPexels(enrichment.Config{APIKey: cfg.PexelsAPIKey, Client: client}),
	}
	sources := make([]catalog.MediaSource, 0, len(clients))
	for _, source := range clients {
		sources = append(sources, enrichment.NewCachedSource(source, redisClient, cfg.EnrichCacheTTL))
	}
	return sources
}

// ConnectRedis returns nil when Redis is not configured or not reachable;
// callers then run without the media cache.
func ConnectRedis(ctx context.Context, rawURL string, logger *slog.Logger) *redis.Client {
	redisURL := strings.TrimSpace(rawURL)
	if redisURL == "" {
		return nil
	}
	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.Warn("media cache disabled: invalid redis url", slog.String("error", err.Error()))
		return nil
	}
	client := redis.NewClient(redisOpts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("media cache disabled: redis unavailable", slog.String("error", err.Error()))
		_ = client.Close()
		return nil
	}
	logger.Info("redis connected", slog.String("addr", redisOpts.Addr))
	return client
}

// ConnectStore opens the exercise collection with tracing enabled and makes
// sure its indexes exist.
func ConnectStore(ctx context.Context, cfg Config) (*mongo.Client, *mongorepo.Repository, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongorepo.Connect(connectCtx, cfg.MongoURI, options.Client().SetMonitor(otelmongo.NewMonitor()))
	if err != nil {
		return nil, nil, err
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}
	repo := mongorepo.NewRepository(client, cfg.MongoDB, cfg.MongoCollection)
	if err := repo.EnsureIndexes(connectCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}
	return client, repo, nil
}
