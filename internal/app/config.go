package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type Config struct {
	HTTPAddr  string
	LogLevel  string
	LogFormat string
	UserAgent string

	ProviderTimeout  time.Duration
	EnrichTimeout    time.Duration
	EnrichMaxRecords int
	SourceMode       string
	DemoFallback     bool
	ProviderRPS      float64

	WgerEndpoint       string
	WgerSearchEndpoint string
	ExerciseDBEndpoint string
	ExerciseDBAPIKey   string
	NinjasEndpoint     string
	NinjasAPIKey       string

	YouTubeAPIKey string
	GiphyAPIKey   string
	PexelsAPIKey  string

	RedisURL        string
	EnrichCacheTTL  time.Duration
	MediaProxyHosts []string

	MongoURI        string
	MongoDB         string
	MongoCollection string

	IngestQueries []string
}

func LoadConfig() Config {
	return Config{
		HTTPAddr:  getEnv("HTTP_ADDR", ":8080"),
		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "text")),
		UserAgent: getEnv("CATALOG_USER_AGENT", "fitstream-catalog/1.0"),

		ProviderTimeout:  time.Duration(getEnvInt("CATALOG_PROVIDER_TIMEOUT_SECONDS", 8)) * time.Second,
		EnrichTimeout:    time.Duration(getEnvInt("CATALOG_ENRICH_TIMEOUT_SECONDS", 5)) * time.Second,
		EnrichMaxRecords: getEnvInt("CATALOG_ENRICH_MAX_RECORDS", 12),
		SourceMode:       strings.ToLower(getEnv("CATALOG_SOURCE_MODE", "live")),
		DemoFallback:     getEnvBool("CATALOG_DEMO_FALLBACK", true),
		ProviderRPS:      getEnvFloat("CATALOG_PROVIDER_RPS", 0),

		WgerEndpoint:       getEnv("WGER_ENDPOINT", "https://wger.de/api/v2/exerciseinfo/"),
		WgerSearchEndpoint: getEnv("WGER_SEARCH_ENDPOINT", "https://wger.de/api/v2/exercise/search/"),
		ExerciseDBEndpoint: getEnv("EXERCISEDB_ENDPOINT", "https://exercisedb.p.rapidapi.com"),
		ExerciseDBAPIKey:   strings.TrimSpace(os.Getenv("EXERCISEDB_API_KEY")),
		NinjasEndpoint:     getEnv("NINJAS_ENDPOINT", "https://api.api-ninjas.com/v1/exercises"),
		NinjasAPIKey:       strings.TrimSpace(os.Getenv("NINJAS_API_KEY")),

		YouTubeAPIKey: strings.TrimSpace(os.Getenv("YOUTUBE_API_KEY")),
		GiphyAPIKey:   strings.TrimSpace(os.Getenv("GIPHY_API_KEY")),
		PexelsAPIKey:  strings.TrimSpace(os.Getenv("PEXELS_API_KEY")),

		RedisURL:        getEnv("REDIS_URL", ""),
		EnrichCacheTTL:  time.Duration(getEnvInt("ENRICH_CACHE_TTL_HOURS", 72)) * time.Hour,
		MediaProxyHosts: getEnvList("MEDIA_PROXY_HOSTS"),

		MongoURI:        getEnv("MONGO_URI", ""),
		MongoDB:         getEnv("MONGO_DB", "fitstream"),
		MongoCollection: getEnv("MONGO_COLLECTION", "exercises"),

		IngestQueries: getEnvList("INGEST_QUERIES"),
	}
}

// Validate reports settings the service cannot run with.
func (c *Config) Validate() error {
	storeMode := c.SourceMode == "mongo" || c.SourceMode == "store"
	return validation.ValidateStruct(c,
		validation.Field(&c.HTTPAddr, validation.Required),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "warning", "error")),
		validation.Field(&c.LogFormat, validation.In("text", "json")),
		validation.Field(&c.SourceMode, validation.Required, validation.In("live", "hybrid", "demo", "mongo", "store")),
		validation.Field(&c.ProviderTimeout, validation.Min(time.Second), validation.Max(time.Minute)),
		validation.Field(&c.EnrichTimeout, validation.Min(time.Second), validation.Max(time.Minute)),
		validation.Field(&c.EnrichMaxRecords, validation.Min(1), validation.Max(96)),
		validation.Field(&c.ProviderRPS, validation.Min(0.0)),
		validation.Field(&c.MongoURI, validation.When(storeMode, validation.Required.Error("is required when CATALOG_SOURCE_MODE serves from the store"))),
		validation.Field(&c.MongoDB, validation.When(c.MongoURI != "", validation.Required)),
		validation.Field(&c.MongoCollection, validation.When(c.MongoURI != "", validation.Required)),
	)
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

// getEnvList splits a comma separated value, dropping blanks.
func getEnvList(key string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if value := strings.TrimSpace(part); value != "" {
			out = append(out, value)
		}
	}
	return out
}
