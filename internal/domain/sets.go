package domain

import (
	"strings"

	"golang.org/x/text/cases"
)

// FoldKey returns the case-insensitive comparison key for s.
func FoldKey(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// UnionFold concatenates the lists, dropping blanks and case-insensitive
// duplicates. The first spelling seen is kept.
func UnionFold(lists ...[]string) []string {
	size := 0
	for _, list := range lists {
		size += len(list)
	}
	if size == 0 {
		return nil
	}
	caser := cases.Fold()
	seen := make(map[string]struct{}, size)
	out := make([]string, 0, size)
	for _, list := range lists {
		for _, item := range list {
			trimmed := strings.TrimSpace(item)
			if trimmed == "" {
				continue
			}
			key := caser.String(trimmed)
			if _, exists := seen[key]; exists {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ContainsFold reports whether list holds value, ignoring case.
func ContainsFold(list []string, value string) bool {
	key := FoldKey(value)
	for _, item := range list {
		if FoldKey(item) == key {
			return true
		}
	}
	return false
}

// UnionMedia appends next to base, skipping URLs already present, and caps
// the result at MaxMediaPerRecord. Earlier items win when truncating.
func UnionMedia(base []MediaItem, next ...[]MediaItem) []MediaItem {
	out := make([]MediaItem, 0, MaxMediaPerRecord)
	seen := make(map[string]struct{}, MaxMediaPerRecord)
	add := func(items []MediaItem) {
		for _, item := range items {
			if len(out) >= MaxMediaPerRecord {
				return
			}
			url := strings.TrimSpace(item.URL)
			if url == "" {
				continue
			}
			if _, exists := seen[url]; exists {
				continue
			}
			seen[url] = struct{}{}
			item.URL = url
			out = append(out, item)
		}
	}
	add(base)
	for _, items := range next {
		add(items)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
