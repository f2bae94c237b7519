package catalog

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"fitstream/exerciseservice/internal/domain"
)

var (
	ErrNoStore          = errors.New("no exercise store configured")
	ErrStoreUnavailable = errors.New("exercise store unavailable")
)

const (
	defaultProviderTimeout = 8 * time.Second
	defaultEnrichTimeout   = 5 * time.Second
	defaultEnrichCap       = 12
	maxConcurrentProviders = 8
)

// Provider fetches one upstream catalog and normalizes it into canonical
// records. A provider without credentials returns an empty pool and no error.
type Provider interface {
	Name() string
	Info() domain.ProviderInfo
	Fetch(ctx context.Context, query domain.Query) ([]domain.Exercise, error)
}

// MediaSource looks up media for an exercise by name.
type MediaSource interface {
	Name() string
	Enabled() bool
	Search(ctx context.Context, exerciseName string) ([]domain.MediaItem, error)
}

// ExerciseStore is the persisted-store query capability.
type ExerciseStore interface {
	Count(ctx context.Context, filter domain.StoreFilter) (int64, error)
	Find(ctx context.Context, filter domain.StoreFilter, page domain.StorePage) ([]domain.Exercise, error)
}

type Service struct {
	providers     []Provider
	demo          Provider
	sources       []MediaSource
	store         ExerciseStore
	timeout       time.Duration
	enrichTimeout time.Duration
	enrichCap     int
	defaultMode   domain.SourceMode
	demoFallback  bool
	retry         RetryConfig
	limitRPS      float64
	limiterMu     sync.Mutex
	limiters      map[string]*rate.Limiter
	healthMu      sync.Mutex
	health        map[string]*providerHealth
}

type ServiceOption func(*Service)

// WithDemoProvider sets the built-in fixed pool used by demo and hybrid
// modes and as the live fallback.
func WithDemoProvider(provider Provider) ServiceOption {
	return func(s *Service) {
		s.demo = provider
	}
}

func WithMediaSources(sources ...MediaSource) ServiceOption {
	return func(s *Service) {
		for _, source := range sources {
			if source != nil {
				s.sources = append(s.sources, source)
			}
		}
	}
}

func WithStore(store ExerciseStore) ServiceOption {
	return func(s *Service) {
		s.store = store
	}
}

func WithEnrichment(maxRecords int, timeout time.Duration) ServiceOption {
	return func(s *Service) {
		if maxRecords > 0 {
			s.enrichCap = maxRecords
		}
		if timeout > 0 {
			s.enrichTimeout = timeout
		}
	}
}

func WithDefaultMode(mode domain.SourceMode) ServiceOption {
	return func(s *Service) {
		s.defaultMode = domain.ParseSourceMode(string(mode), domain.SourceLive)
	}
}

func WithDemoFallback(enabled bool) ServiceOption {
	return func(s *Service) {
		s.demoFallback = enabled
	}
}

func WithRetryConfig(cfg RetryConfig) ServiceOption {
	return func(s *Service) {
		s.retry = cfg
	}
}

// WithProviderRateLimit caps outbound requests per provider. Zero disables.
func WithProviderRateLimit(rps float64) ServiceOption {
	return func(s *Service) {
		s.limitRPS = rps
	}
}

// NewService registers live providers in the given order. Pool order, and so
// merge precedence, follows registration order.
func NewService(providers []Provider, timeout time.Duration, opts ...ServiceOption) *Service {
	registry := make([]Provider, 0, len(providers))
	seen := make(map[string]struct{}, len(providers))
	for _, provider := range providers {
		if provider == nil {
			continue
		}
		name := providerKey(provider)
		if name == "" {
			continue
		}
		if _, exists := seen[name]; exists {
			continue
		}
		seen[name] = struct{}{}
		registry = append(registry, provider)
	}

	if timeout <= 0 {
		timeout = defaultProviderTimeout
	}

	svc := &Service{
		providers:     registry,
		timeout:       timeout,
		enrichTimeout: defaultEnrichTimeout,
		enrichCap:     defaultEnrichCap,
		defaultMode:   domain.SourceLive,
		demoFallback:  true,
		retry:         DefaultRetryConfig(),
		limiters:      make(map[string]*rate.Limiter),
		health:        make(map[string]*providerHealth),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func providerKey(provider Provider) string {
	return strings.ToLower(strings.TrimSpace(provider.Name()))
}

// Providers lists live providers in registration order, then the demo pool.
func (s *Service) Providers() []domain.ProviderInfo {
	all := s.allProviders()
	if len(all) == 0 {
		return nil
	}
	items := make([]domain.ProviderInfo, 0, len(all))
	for _, provider := range all {
		info := provider.Info()
		info.Name = strings.ToLower(strings.TrimSpace(info.Name))
		if info.Name == "" {
			info.Name = providerKey(provider)
		}
		if info.Label == "" {
			info.Label = info.Name
		}
		items = append(items, info)
	}
	return items
}

// HasStore reports whether the store-backed mode can be served.
func (s *Service) HasStore() bool {
	return s.store != nil
}

func (s *Service) allProviders() []Provider {
	all := make([]Provider, 0, len(s.providers)+1)
	all = append(all, s.providers...)
	if s.demo != nil {
		all = append(all, s.demo)
	}
	return all
}

func (s *Service) waitProviderRateLimit(ctx context.Context, name string) error {
	if s.limitRPS <= 0 {
		return nil
	}
	s.limiterMu.Lock()
	limiter := s.limiters[name]
	if limiter == nil {
		burst := int(s.limitRPS)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(s.limitRPS), burst)
		s.limiters[name] = limiter
	}
	s.limiterMu.Unlock()

	if err := limiter.Wait(ctx); err != nil {
		slog.Debug("provider rate limit wait aborted", slog.String("provider", name), slog.String("error", err.Error()))
		return err
	}
	return nil
}
