package catalog

import (
	"sort"
	"strings"

	"fitstream/exerciseservice/internal/domain"
)

// Filter applies, in order: free text, category, muscle, equipment,
// difficulty and the provider set. It never mutates records.
func Filter(records []domain.Exercise, query domain.Query) []domain.Exercise {
	text := strings.ToLower(strings.TrimSpace(query.Text))
	category := strings.ToLower(strings.TrimSpace(query.Category))
	muscle := strings.ToLower(strings.TrimSpace(query.Muscle))
	equipment := strings.ToLower(strings.TrimSpace(query.Equipment))
	difficulty := difficultyFilterValue(query.Difficulty)
	providers := make(map[string]struct{}, len(query.Providers))
	for _, name := range query.Providers {
		if name = strings.ToLower(strings.TrimSpace(name)); name != "" {
			providers[name] = struct{}{}
		}
	}

	out := make([]domain.Exercise, 0, len(records))
	for _, record := range records {
		if text != "" && !matchesText(record, text) {
			continue
		}
		if category != "" && !matchesLoose(record.Category, category) {
			continue
		}
		if muscle != "" && !anyMatchesLoose(record.PrimaryMuscles, muscle) {
			continue
		}
		if equipment != "" && !anyMatchesLoose(record.Equipment, equipment) {
			continue
		}
		if difficulty != "" && string(record.Difficulty) != difficulty {
			continue
		}
		if len(providers) > 0 && !matchesProviders(record, providers) {
			continue
		}
		out = append(out, record)
	}
	return out
}

// difficultyFilterValue resolves a requested difficulty (enum or display
// label) to the exact value records must carry. Unrecognized input is kept
// as-is, so it matches nothing.
func difficultyFilterValue(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return ""
	}
	if resolved := DifficultyFromLabel(value); resolved != domain.DifficultyUnknown {
		return string(resolved)
	}
	return strings.ToLower(value)
}

// matchesText reports whether any single field contains text, the way the
// store's per-field $or does. text is already lowercase.
func matchesText(record domain.Exercise, text string) bool {
	if containsFold(record.Name, text) || containsFold(record.Description, text) || containsFold(record.Category, text) {
		return true
	}
	for _, values := range [][]string{record.PrimaryMuscles, record.Equipment} {
		for _, value := range values {
			if containsFold(value, text) {
				return true
			}
		}
	}
	return false
}

func containsFold(value, want string) bool {
	return strings.Contains(strings.ToLower(value), want)
}

// matchesLoose is an exact-or-substring match; want is already lowercase.
func matchesLoose(value, want string) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	return value == want || strings.Contains(value, want)
}

func anyMatchesLoose(values []string, want string) bool {
	for _, value := range values {
		if matchesLoose(value, want) {
			return true
		}
	}
	return false
}

func matchesProviders(record domain.Exercise, providers map[string]struct{}) bool {
	for _, source := range record.Sources {
		if _, ok := providers[strings.ToLower(source)]; ok {
			return true
		}
	}
	_, ok := providers[strings.ToLower(strings.TrimSpace(record.ProviderHint))]
	return ok
}

// Sort orders records in place by key. All orderings are stable, so equal
// records keep their input order and repeated sorts are identical.
func Sort(records []domain.Exercise, key domain.SortKey, text string) {
	switch key {
	case domain.SortNameAsc:
		sort.SliceStable(records, func(i, j int) bool {
			return compareNames(records[i].Name, records[j].Name) < 0
		})
	case domain.SortNameDesc:
		sort.SliceStable(records, func(i, j int) bool {
			return compareNames(records[i].Name, records[j].Name) > 0
		})
	case domain.SortDifficulty:
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].Difficulty.Weight() < records[j].Difficulty.Weight()
		})
	case domain.SortMediaRich:
		sort.SliceStable(records, func(i, j int) bool {
			return len(records[i].Media) > len(records[j].Media)
		})
	default:
		needle := strings.ToLower(strings.TrimSpace(text))
		if needle == "" {
			return
		}
		sort.SliceStable(records, func(i, j int) bool {
			return compareRelevance(records[i], records[j], needle) < 0
		})
	}
}

// compareRelevance ranks name hits, then description hits, then name.
func compareRelevance(left, right domain.Exercise, needle string) int {
	if c := compareBool(nameHit(left, needle), nameHit(right, needle)); c != 0 {
		return c
	}
	if c := compareBool(descriptionHit(left, needle), descriptionHit(right, needle)); c != 0 {
		return c
	}
	return compareNames(left.Name, right.Name)
}

func nameHit(record domain.Exercise, needle string) bool {
	return strings.Contains(strings.ToLower(record.Name), needle)
}

func descriptionHit(record domain.Exercise, needle string) bool {
	return strings.Contains(strings.ToLower(record.Description), needle)
}

// compareBool puts true first.
func compareBool(left, right bool) int {
	switch {
	case left == right:
		return 0
	case left:
		return -1
	default:
		return 1
	}
}

// compareNames is case-insensitive, falling back to a byte comparison so the
// order is total.
func compareNames(left, right string) int {
	if c := strings.Compare(strings.ToLower(left), strings.ToLower(right)); c != 0 {
		return c
	}
	return strings.Compare(left, right)
}

// Paginate returns the page slice. page and limit must already be clamped.
func Paginate(records []domain.Exercise, page, limit int) []domain.Exercise {
	if limit <= 0 {
		return nil
	}
	start := (page - 1) * limit
	if start < 0 {
		start = 0
	}
	if start > len(records) {
		start = len(records)
	}
	end := start + limit
	if end > len(records) {
		end = len(records)
	}
	out := make([]domain.Exercise, 0, end-start)
	return append(out, records[start:end]...)
}

// BuildPage runs filter, sort, page clamping, facets and pagination over a
// merged set.
func BuildPage(records []domain.Exercise, query domain.Query, note string) domain.PagedResult {
	filtered := Filter(records, query)
	Sort(filtered, query.Sort, query.Text)

	limit := domain.ClampLimit(query.Limit)
	total := len(filtered)
	pages := domain.PageCount(total, limit)
	page := domain.ClampPage(query.Page, pages)

	return domain.PagedResult{
		Items:  Paginate(filtered, page, limit),
		Total:  total,
		Page:   page,
		Pages:  pages,
		Limit:  limit,
		Facets: ComputeFacets(filtered),
		Note:   note,
	}
}
