package catalog

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"fitstream/exerciseservice/internal/domain"
	"fitstream/exerciseservice/internal/metrics"
)

// maxConcurrentEnrich bounds how many records are enriched at once.
const maxConcurrentEnrich = 4

// Enrich attaches media to at most maxRecords records that have none,
// querying every source concurrently for each selected record. Source
// failures are logged and treated as empty results. The input slice is not
// modified.
func Enrich(ctx context.Context, records []domain.Exercise, sources []MediaSource, maxRecords int, timeout time.Duration) []domain.Exercise {
	active := make([]MediaSource, 0, len(sources))
	for _, source := range sources {
		if source != nil && source.Enabled() {
			active = append(active, source)
		}
	}
	if len(records) == 0 || len(active) == 0 || maxRecords <= 0 {
		return records
	}

	out := make([]domain.Exercise, len(records))
	copy(out, records)

	selected := make([]int, 0, maxRecords)
	for i, record := range out {
		if len(selected) >= maxRecords {
			break
		}
		if len(record.Media) == 0 {
			selected = append(selected, i)
		}
	}
	if len(selected) == 0 {
		return out
	}

	var group errgroup.Group
	group.SetLimit(maxConcurrentEnrich)
	for _, idx := range selected {
		group.Go(func() error {
			out[idx] = enrichRecord(ctx, out[idx], active, timeout)
			return nil
		})
	}
	_ = group.Wait()

	return out
}

func enrichRecord(ctx context.Context, record domain.Exercise, sources []MediaSource, timeout time.Duration) domain.Exercise {
	results := make([][]domain.MediaItem, len(sources))
	var wg sync.WaitGroup
	for i, source := range sources {
		wg.Add(1)
		go func(index int, current MediaSource) {
			defer wg.Done()
			results[index] = searchMedia(ctx, current, record.Name, timeout)
		}(i, source)
	}
	wg.Wait()

	// Results are folded in source order so the outcome is deterministic.
	for i, items := range results {
		before := len(record.Media)
		record.Media = domain.UnionMedia(record.Media, items)
		if len(record.Media) > before {
			record.Sources = domain.UnionFold(record.Sources, []string{strings.ToLower(sources[i].Name())})
		}
	}
	return record
}

func searchMedia(ctx context.Context, source MediaSource, name string, timeout time.Duration) []domain.MediaItem {
	searchCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		searchCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	sourceName := strings.ToLower(source.Name())
	items, err := source.Search(searchCtx, name)
	outcome := classifyOutcome(err)
	metrics.EnrichmentRequestsTotal.WithLabelValues(sourceName, string(outcome)).Inc()
	if err != nil {
		slog.Debug("media enrichment failed",
			slog.String("source", sourceName),
			slog.String("exercise", name),
			slog.String("error", err.Error()),
		)
		return nil
	}
	return items
}

func (s *Service) enrich(ctx context.Context, records []domain.Exercise) []domain.Exercise {
	return Enrich(ctx, records, s.sources, s.enrichCap, s.enrichTimeout)
}
