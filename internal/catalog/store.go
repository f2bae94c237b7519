package catalog

import (
	"context"
	"fmt"
	"strings"

	"fitstream/exerciseservice/internal/domain"
)

// StoreFilterFor translates a query into the filter a store applies. Display
// difficulty labels become the internal enum here.
func StoreFilterFor(query domain.Query) domain.StoreFilter {
	return domain.StoreFilter{
		Text:       strings.TrimSpace(query.Text),
		Category:   strings.TrimSpace(query.Category),
		Muscle:     strings.TrimSpace(query.Muscle),
		Equipment:  strings.TrimSpace(query.Equipment),
		Difficulty: difficultyFilterValue(query.Difficulty),
		Providers:  query.Providers,
	}
}

// searchStore serves a query from the persisted store: a count for the total,
// then one sorted window. Facets cover the fetched window only.
func (s *Service) searchStore(ctx context.Context, query domain.Query) (domain.PagedResult, error) {
	if s.store == nil {
		return domain.PagedResult{}, ErrNoStore
	}
	filter := StoreFilterFor(query)

	total, err := s.store.Count(ctx, filter)
	if err != nil {
		return domain.PagedResult{}, fmt.Errorf("%w: count: %v", ErrStoreUnavailable, err)
	}

	limit := domain.ClampLimit(query.Limit)
	pages := domain.PageCount(int(total), limit)
	page := domain.ClampPage(query.Page, pages)

	items, err := s.store.Find(ctx, filter, domain.StorePage{
		Sort:  query.Sort,
		Skip:  int64((page - 1) * limit),
		Limit: int64(limit),
	})
	if err != nil {
		return domain.PagedResult{}, fmt.Errorf("%w: find: %v", ErrStoreUnavailable, err)
	}

	return domain.PagedResult{
		Items:  items,
		Total:  int(total),
		Page:   page,
		Pages:  pages,
		Limit:  limit,
		Facets: ComputeFacets(items),
		Note:   string(domain.SourceStore),
	}, nil
}
