package catalog

import (
	"strings"

	"fitstream/exerciseservice/internal/domain"
	"fitstream/exerciseservice/internal/providers/common"
)

// ComputeFacets counts records per category, difficulty, muscle and source.
// Each record adds exactly one category and one difficulty count.
func ComputeFacets(records []domain.Exercise) domain.Facets {
	facets := domain.Facets{
		Category:   make(map[string]int),
		Difficulty: make(map[string]int),
		Muscle:     make(map[string]int),
		Provider:   make(map[string]int),
	}
	for _, record := range records {
		category := strings.TrimSpace(record.Category)
		if category == "" {
			category = common.CategoryOther
		}
		facets.Category[category]++
		facets.Difficulty[string(record.Difficulty)]++
		for _, muscle := range record.PrimaryMuscles {
			facets.Muscle[muscle]++
		}
		for _, source := range record.Sources {
			facets.Provider[source]++
		}
	}
	return facets
}
