package enrichment

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"fitstream/exerciseservice/internal/domain"
	"fitstream/exerciseservice/internal/metrics"
)

const (
	cacheKeyPrefix  = "catalog:media:"
	defaultCacheTTL = 72 * time.Hour
)

// Source is a media lookup by exercise name.
type Source interface {
	Name() string
	Enabled() bool
	Search(ctx context.Context, exercise string) ([]domain.MediaItem, error)
}

// CachedSource memoizes a Source in Redis. Empty results are cached too so
// names with no media are not looked up on every search. Redis failures fall
// through to the wrapped source.
type CachedSource struct {
	next  Source
	redis *redis.Client
	ttl   time.Duration
}

func NewCachedSource(next Source, client *redis.Client, ttl time.Duration) *CachedSource {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &CachedSource{next: next, redis: client, ttl: ttl}
}

func (c *CachedSource) Name() string {
	return c.next.Name()
}

func (c *CachedSource) Enabled() bool {
	return c.next.Enabled()
}

func (c *CachedSource) Search(ctx context.Context, exercise string) ([]domain.MediaItem, error) {
	if c.redis == nil {
		return c.next.Search(ctx, exercise)
	}
	key := cacheKey(c.next.Name(), exercise)

	data, err := c.redis.Get(ctx, key).Bytes()
	if err == nil {
		var items []domain.MediaItem
		if json.Unmarshal(data, &items) == nil {
			metrics.EnrichmentCacheHitsTotal.Inc()
			return items, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		slog.Debug("media cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	metrics.EnrichmentCacheMissesTotal.Inc()

	items, err := c.next.Search(ctx, exercise)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.MediaItem{}
	}
	if data, err := json.Marshal(items); err == nil {
		if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
			slog.Debug("media cache write failed", slog.String("key", key), slog.String("error", err.Error()))
		}
	}
	return items, nil
}

func cacheKey(source, exercise string) string {
	return cacheKeyPrefix + strings.ToLower(source) + ":" + strings.Join(strings.Fields(strings.ToLower(exercise)), " ")
}
