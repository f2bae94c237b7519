package catalog

import (
	"context"
	"log/slog"
	"strings"

	"fitstream/exerciseservice/internal/domain"
)

// Collect gathers the merged live catalog for one upstream query, without
// filtering or paging, for loading into the store. The demo pool is never
// included. Enrichment runs when the query asks for it.
func (s *Service) Collect(ctx context.Context, query domain.Query) ([]domain.Exercise, []domain.ProviderStatus) {
	query = domain.NormalizeQuery(query, domain.SourceLive)
	pools, statuses := s.fetchPools(ctx, s.providers, query)
	merged := Merge(pools)
	if query.Enrich {
		merged = s.enrich(ctx, merged)
	}
	slog.Info("catalog collect completed",
		slog.String("query", query.Text),
		slog.Int("records", len(merged)),
		slog.Int("providers", len(statuses)),
	)
	return merged, statuses
}

// MergeBatches folds several collected batches into one set, first batch
// taking precedence.
func MergeBatches(batches [][]domain.Exercise) []domain.Exercise {
	nonEmpty := make([][]domain.Exercise, 0, len(batches))
	for _, batch := range batches {
		if len(batch) > 0 {
			nonEmpty = append(nonEmpty, batch)
		}
	}
	return Merge(nonEmpty)
}

// FailedProviders names every provider whose status is not OK.
func FailedProviders(statuses []domain.ProviderStatus) []string {
	failed := make([]string, 0, len(statuses))
	for _, status := range statuses {
		if !status.OK {
			failed = append(failed, strings.ToLower(status.Name))
		}
	}
	return failed
}
