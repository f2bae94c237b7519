package domain

import (
	"reflect"
	"testing"
)

func TestNormalizeSortKey(t *testing.T) {
	cases := []struct {
		input string
		want  SortKey
	}{
		{"", SortRelevance},
		{"relevance", SortRelevance},
		{"NAME_ASC", SortNameAsc},
		{" name_desc ", SortNameDesc},
		{"difficulty", SortDifficulty},
		{"media_rich", SortMediaRich},
		{"popularity", SortRelevance},
	}
	for _, tc := range cases {
		if got := NormalizeSortKey(tc.input); got != tc.want {
			t.Errorf("NormalizeSortKey(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestClampLimit(t *testing.T) {
	cases := []struct {
		input int
		want  int
	}{
		{0, DefaultLimit},
		{-3, MinLimit},
		{1, 6},
		{6, 6},
		{40, 40},
		{96, 96},
		{500, 96},
	}
	for _, tc := range cases {
		if got := ClampLimit(tc.input); got != tc.want {
			t.Errorf("ClampLimit(%d) = %d, want %d", tc.input, got, tc.want)
		}
	}
}

func TestPageCountAndClamp(t *testing.T) {
	if got := PageCount(25, 10); got != 3 {
		t.Fatalf("PageCount(25,10) = %d, want 3", got)
	}
	if got := PageCount(0, 10); got != 1 {
		t.Fatalf("PageCount(0,10) = %d, want 1", got)
	}
	if got := PageCount(30, 10); got != 3 {
		t.Fatalf("PageCount(30,10) = %d, want 3", got)
	}
	if got := ClampPage(9, 3); got != 3 {
		t.Fatalf("ClampPage(9,3) = %d, want 3", got)
	}
	if got := ClampPage(0, 3); got != 1 {
		t.Fatalf("ClampPage(0,3) = %d, want 1", got)
	}
	if got := ClampPage(2, 0); got != 1 {
		t.Fatalf("ClampPage(2,0) = %d, want 1", got)
	}
}

func TestParseSourceMode(t *testing.T) {
	if got := ParseSourceMode("store", SourceLive); got != SourceStore {
		t.Fatalf("expected store alias to map to mongo, got %q", got)
	}
	if got := ParseSourceMode("HYBRID", SourceLive); got != SourceHybrid {
		t.Fatalf("expected hybrid, got %q", got)
	}
	if got := ParseSourceMode("bogus", SourceDemo); got != SourceDemo {
		t.Fatalf("expected fallback demo, got %q", got)
	}
}

func TestNormalizeQuery(t *testing.T) {
	q := NormalizeQuery(Query{
		Text:      "  push ",
		Muscle:    " Chest ",
		Page:      -2,
		Limit:     200,
		Sort:      "nope",
		Providers: []string{"Wger", "wger", " ", "DEMO"},
	}, SourceLive)

	if q.Text != "push" || q.Muscle != "Chest" {
		t.Fatalf("expected trimmed text fields, got %#v", q)
	}
	if q.Page != 1 || q.Limit != MaxLimit {
		t.Fatalf("expected page=1 limit=%d, got page=%d limit=%d", MaxLimit, q.Page, q.Limit)
	}
	if q.Sort != SortRelevance {
		t.Fatalf("expected relevance sort, got %q", q.Sort)
	}
	if q.Mode != SourceLive {
		t.Fatalf("expected live mode, got %q", q.Mode)
	}
	if !reflect.DeepEqual(q.Providers, []string{"wger", "demo"}) {
		t.Fatalf("unexpected providers: %v", q.Providers)
	}
}

func TestDifficultyWeight(t *testing.T) {
	if DifficultyUnknown.Weight() != 0 || DifficultyBeginner.Weight() != 1 ||
		DifficultyIntermediate.Weight() != 2 || DifficultyAdvanced.Weight() != 3 {
		t.Fatal("unexpected difficulty weights")
	}
	if ParseDifficulty("Advanced") != DifficultyAdvanced {
		t.Fatal("expected case-insensitive enum parse")
	}
	if ParseDifficulty("expert") != DifficultyUnknown {
		t.Fatal("expected non-enum value to be unknown")
	}
}

func TestUnionFold(t *testing.T) {
	got := UnionFold([]string{"Quads", "glutes"}, []string{"quads", "Hamstrings", " "}, nil)
	want := []string{"Quads", "glutes", "Hamstrings"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("UnionFold = %v, want %v", got, want)
	}
	if UnionFold(nil, []string{""}) != nil {
		t.Fatal("expected nil for blank input")
	}
	if !ContainsFold([]string{"Barbell"}, "barbell") {
		t.Fatal("expected ContainsFold to ignore case")
	}
}

func TestUnionMediaCapsAndDedupes(t *testing.T) {
	base := []MediaItem{{URL: "a"}, {URL: "b"}}
	extra := make([]MediaItem, 0, 10)
	for _, url := range []string{"b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		extra = append(extra, MediaItem{URL: url})
	}
	got := UnionMedia(base, extra)
	if len(got) != MaxMediaPerRecord {
		t.Fatalf("expected %d items, got %d", MaxMediaPerRecord, len(got))
	}
	if got[0].URL != "a" || got[1].URL != "b" || got[2].URL != "c" {
		t.Fatalf("expected earlier items to keep priority, got %v", got)
	}
	if got[7].URL != "h" {
		t.Fatalf("expected truncation after h, got %q", got[7].URL)
	}
}
