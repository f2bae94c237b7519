package domain

import (
	"strings"
)

const (
	MinLimit     = 6
	MaxLimit     = 96
	DefaultLimit = 24
)

type SortKey string

const (
	SortRelevance  SortKey = "relevance"
	SortNameAsc    SortKey = "name_asc"
	SortNameDesc   SortKey = "name_desc"
	SortDifficulty SortKey = "difficulty"
	SortMediaRich  SortKey = "media_rich"
)

// SourceMode selects which data path serves a request.
type SourceMode string

const (
	SourceLive   SourceMode = "live"
	SourceHybrid SourceMode = "hybrid"
	SourceDemo   SourceMode = "demo"
	SourceStore  SourceMode = "mongo"
)

type Query struct {
	Text       string
	Category   string
	Muscle     string
	Equipment  string
	Difficulty string
	Page       int
	Limit      int
	Sort       SortKey
	Providers  []string
	Enrich     bool
	Mode       SourceMode
}

// HasText reports whether a free-text query is present.
func (q Query) HasText() bool {
	return strings.TrimSpace(q.Text) != ""
}

func NormalizeSortKey(raw string) SortKey {
	switch SortKey(strings.ToLower(strings.TrimSpace(raw))) {
	case SortNameAsc:
		return SortNameAsc
	case SortNameDesc:
		return SortNameDesc
	case SortDifficulty:
		return SortDifficulty
	case SortMediaRich:
		return SortMediaRich
	default:
		return SortRelevance
	}
}

// ParseSourceMode returns the mode named by raw, or fallback when raw is
// empty or unknown. "store" is accepted as an alias of "mongo".
func ParseSourceMode(raw string, fallback SourceMode) SourceMode {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "live":
		return SourceLive
	case "hybrid":
		return SourceHybrid
	case "demo":
		return SourceDemo
	case "mongo", "store":
		return SourceStore
	default:
		return fallback
	}
}

// ParseDifficulty maps an enum value (any case) to a Difficulty. Anything
// else is unknown.
func ParseDifficulty(raw string) Difficulty {
	switch Difficulty(strings.ToLower(strings.TrimSpace(raw))) {
	case DifficultyBeginner:
		return DifficultyBeginner
	case DifficultyIntermediate:
		return DifficultyIntermediate
	case DifficultyAdvanced:
		return DifficultyAdvanced
	default:
		return DifficultyUnknown
	}
}

// ClampLimit maps 0 to DefaultLimit and anything else into [MinLimit, MaxLimit].
func ClampLimit(limit int) int {
	if limit == 0 {
		return DefaultLimit
	}
	if limit < MinLimit {
		return MinLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// PageCount returns max(1, ceil(total/limit)).
func PageCount(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 1
	}
	return (total + limit - 1) / limit
}

// ClampPage moves page into [1, pages].
func ClampPage(page, pages int) int {
	if pages < 1 {
		pages = 1
	}
	if page < 1 {
		return 1
	}
	if page > pages {
		return pages
	}
	return page
}

// NormalizeQuery trims every field, clamps the limit, floors the page at 1,
// resolves the sort key and mode, and lowercases the provider set. The page
// upper bound depends on the result total and is clamped later.
func NormalizeQuery(q Query, fallbackMode SourceMode) Query {
	q.Text = strings.TrimSpace(q.Text)
	q.Category = strings.TrimSpace(q.Category)
	q.Muscle = strings.TrimSpace(q.Muscle)
	q.Equipment = strings.TrimSpace(q.Equipment)
	q.Difficulty = strings.TrimSpace(q.Difficulty)
	q.Limit = ClampLimit(q.Limit)
	if q.Page < 1 {
		q.Page = 1
	}
	q.Sort = NormalizeSortKey(string(q.Sort))
	q.Mode = ParseSourceMode(string(q.Mode), fallbackMode)

	providers := make([]string, 0, len(q.Providers))
	seen := make(map[string]struct{}, len(q.Providers))
	for _, raw := range q.Providers {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		providers = append(providers, name)
	}
	q.Providers = providers
	return q
}
