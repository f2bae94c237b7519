package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"fitstream/exerciseservice/internal/domain"
	"fitstream/exerciseservice/internal/metrics"
)

// Search answers a query from the path its mode selects. Only the store path
// can fail; upstream failures narrow the live result instead.
func (s *Service) Search(ctx context.Context, query domain.Query) (domain.PagedResult, error) {
	query = domain.NormalizeQuery(query, s.defaultMode)
	startedAt := time.Now()

	var (
		result domain.PagedResult
		err    error
	)
	switch query.Mode {
	case domain.SourceStore:
		result, err = s.searchStore(ctx, query)
	case domain.SourceDemo:
		result = s.searchDemo(ctx, query)
	default:
		result = s.searchLive(ctx, query)
	}
	if err != nil {
		slog.Error("catalog search failed",
			slog.String("mode", string(query.Mode)),
			slog.String("error", err.Error()),
		)
		return domain.PagedResult{}, err
	}

	metrics.SearchesTotal.WithLabelValues(result.Note).Inc()
	failed := 0
	for _, status := range result.Providers {
		if !status.OK {
			failed++
		}
	}
	slog.Info("catalog search completed",
		slog.String("query", query.Text),
		slog.String("note", result.Note),
		slog.Int("total", result.Total),
		slog.Int("providers", len(result.Providers)),
		slog.Int("failed", failed),
		slog.Int64("elapsedMs", time.Since(startedAt).Milliseconds()),
	)
	return result, nil
}

func (s *Service) searchLive(ctx context.Context, query domain.Query) domain.PagedResult {
	pools, statuses := s.fetchPools(ctx, s.providers, query)
	note := string(domain.SourceLive)

	switch {
	case query.Mode == domain.SourceHybrid:
		note = string(domain.SourceHybrid)
		if s.demo != nil {
			demoPools, demoStatuses := s.fetchPools(ctx, []Provider{s.demo}, query)
			pools = append(pools, demoPools...)
			statuses = append(statuses, demoStatuses...)
		}
	case allEmpty(pools) && s.demoFallback && s.demo != nil:
		note = string(domain.SourceDemo)
		demoPools, demoStatuses := s.fetchPools(ctx, []Provider{s.demo}, query)
		pools = demoPools
		statuses = append(statuses, demoStatuses...)
	}

	merged := Merge(pools)
	if query.Enrich {
		merged = s.enrich(ctx, merged)
	}
	result := BuildPage(merged, query, note)
	result.Providers = statuses
	return result
}

func (s *Service) searchDemo(ctx context.Context, query domain.Query) domain.PagedResult {
	var (
		pools    [][]domain.Exercise
		statuses []domain.ProviderStatus
	)
	if s.demo != nil {
		pools, statuses = s.fetchPools(ctx, []Provider{s.demo}, query)
	}
	merged := Merge(pools)
	if query.Enrich {
		merged = s.enrich(ctx, merged)
	}
	result := BuildPage(merged, query, string(domain.SourceDemo))
	result.Providers = statuses
	return result
}

func allEmpty(pools [][]domain.Exercise) bool {
	for _, pool := range pools {
		if len(pool) > 0 {
			return false
		}
	}
	return true
}

// fetchPools queries every provider concurrently and waits for all of them.
// pools[i] belongs to providers[i]; a failed provider leaves an empty pool.
func (s *Service) fetchPools(ctx context.Context, providers []Provider, query domain.Query) ([][]domain.Exercise, []domain.ProviderStatus) {
	pools := make([][]domain.Exercise, len(providers))
	statuses := make([]domain.ProviderStatus, len(providers))

	sem := semaphore.NewWeighted(maxConcurrentProviders)
	var wg sync.WaitGroup
	for i, provider := range providers {
		wg.Add(1)
		go func(index int, current Provider) {
			defer wg.Done()

			name := providerKey(current)
			if err := sem.Acquire(ctx, 1); err != nil {
				statuses[index] = domain.ProviderStatus{Name: name, Error: "context cancelled"}
				return
			}
			defer sem.Release(1)

			if !current.Info().Enabled {
				// Missing credentials: empty pool, no call.
				statuses[index] = domain.ProviderStatus{Name: name, OK: true}
				return
			}

			items, err := s.fetchProvider(ctx, current, name, query)
			pools[index] = items
			status := domain.ProviderStatus{Name: name, OK: err == nil, Count: len(items)}
			if err != nil {
				status.Error = err.Error()
				slog.Warn("exercise provider failed",
					slog.String("provider", name),
					slog.String("error", err.Error()),
				)
			}
			statuses[index] = status
		}(i, provider)
	}
	wg.Wait()
	return pools, statuses
}

// fetchProvider runs one provider under its own per-attempt timeout with a
// bounded retry. Errors yield a nil pool.
func (s *Service) fetchProvider(ctx context.Context, provider Provider, name string, query domain.Query) ([]domain.Exercise, error) {
	startedAt := time.Now()
	var items []domain.Exercise
	err := RetryWithBackoff(ctx, s.retry, func() error {
		if err := s.waitProviderRateLimit(ctx, name); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
		attemptCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		var err error
		items, err = provider.Fetch(attemptCtx, query)
		return err
	})
	if err != nil {
		items = nil
	}
	s.recordProviderResult(name, len(items), err, time.Since(startedAt), time.Now())
	return tagRecords(items, name), err
}

// tagRecords makes sure every record carries its provider tag.
func tagRecords(items []domain.Exercise, name string) []domain.Exercise {
	for i := range items {
		if strings.TrimSpace(items[i].ProviderHint) == "" {
			items[i].ProviderHint = name
		}
		if len(items[i].Sources) == 0 {
			items[i].Sources = []string{name}
		}
	}
	return items
}
