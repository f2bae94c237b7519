package catalog

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"fitstream/exerciseservice/internal/domain"
)

const fallbackSource = "live"

// MergeKey is the dedup identity of a record: its folded name and category.
// Punctuation and whitespace runs in the name collapse to one space, so
// "Push-Up" and "push up" share a key.
func MergeKey(record domain.Exercise) string {
	return normalizeName(record.Name) + "|" + strings.ToLower(strings.TrimSpace(record.Category))
}

func normalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	space := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space && b.Len() > 0 {
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// Merge folds the pools, in order, into one deduplicated set. The set of keys
// produced does not depend on pool order, but scalar ties are won by the
// first record seen. A record without a category joins the first entry with
// the same name, and an uncategorized entry adopts the category of the first
// categorized record that joins it.
func Merge(pools [][]domain.Exercise) []domain.Exercise {
	size := 0
	for _, pool := range pools {
		size += len(pool)
	}
	merged := make([]domain.Exercise, 0, size)
	byKey := make(map[string]int, size)
	byName := make(map[string][]int, size)

	for _, pool := range pools {
		for _, record := range pool {
			if strings.TrimSpace(record.Name) == "" {
				continue
			}
			name := normalizeName(record.Name)
			key := MergeKey(record)
			category := strings.TrimSpace(record.Category)

			idx, found := byKey[key]
			if !found {
				idx, found = matchByName(merged, byName[name], category)
			}
			if !found {
				byKey[key] = len(merged)
				byName[name] = append(byName[name], len(merged))
				merged = append(merged, seedRecord(record))
				continue
			}

			before := MergeKey(merged[idx])
			merged[idx] = mergeRecords(merged[idx], record)
			if after := MergeKey(merged[idx]); after != before {
				delete(byKey, before)
				byKey[after] = idx
			}
		}
	}
	return merged
}

// matchByName finds the entry a record joins when its exact key is absent:
// an uncategorized record joins the first entry with its name, and a
// categorized record joins the first uncategorized entry with its name.
func matchByName(merged []domain.Exercise, candidates []int, category string) (int, bool) {
	for _, idx := range candidates {
		if category == "" || strings.TrimSpace(merged[idx].Category) == "" {
			return idx, true
		}
	}
	return 0, false
}

func seedRecord(record domain.Exercise) domain.Exercise {
	record.Name = strings.TrimSpace(record.Name)
	record.Category = strings.TrimSpace(record.Category)
	record.PrimaryMuscles = domain.UnionFold(record.PrimaryMuscles)
	record.Equipment = domain.UnionFold(record.Equipment)
	record.Media = domain.UnionMedia(record.Media)
	record.ProviderHint = strings.TrimSpace(record.ProviderHint)
	record.Sources = normalizeSources(record.Sources, record.ProviderHint)
	if record.ProviderHint == "" {
		record.ProviderHint = record.Sources[0]
	}
	return record
}

func mergeRecords(existing, incoming domain.Exercise) domain.Exercise {
	if runeLen(incoming.Name) > runeLen(existing.Name) {
		existing.Name = strings.TrimSpace(incoming.Name)
	}
	if runeLen(incoming.Description) > runeLen(existing.Description) {
		existing.Description = strings.TrimSpace(incoming.Description)
	}
	if existing.Category == "" {
		existing.Category = strings.TrimSpace(incoming.Category)
	}
	existing.PrimaryMuscles = domain.UnionFold(existing.PrimaryMuscles, incoming.PrimaryMuscles)
	existing.Equipment = domain.UnionFold(existing.Equipment, incoming.Equipment)
	if existing.Difficulty == domain.DifficultyUnknown {
		existing.Difficulty = incoming.Difficulty
	}
	existing.Media = domain.UnionMedia(existing.Media, incoming.Media)
	existing.Sources = normalizeSources(
		existing.Sources,
		existing.ProviderHint,
		normalizeSources(incoming.Sources, incoming.ProviderHint)...,
	)
	if existing.ProviderHint == "" {
		existing.ProviderHint = strings.TrimSpace(incoming.ProviderHint)
	}
	return existing
}

// normalizeSources unions the lists with hint into a lowercase tag set that
// is never empty.
func normalizeSources(sources []string, hint string, extra ...string) []string {
	tags := make([]string, 0, len(sources)+len(extra)+1)
	for _, tag := range sources {
		tags = append(tags, strings.ToLower(tag))
	}
	tags = append(tags, strings.ToLower(hint))
	for _, tag := range extra {
		tags = append(tags, strings.ToLower(tag))
	}
	out := domain.UnionFold(tags)
	if len(out) == 0 {
		return []string{fallbackSource}
	}
	return out
}

func runeLen(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}
