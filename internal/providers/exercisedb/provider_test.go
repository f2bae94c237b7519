package exercisedb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"fitstream/exerciseservice/internal/domain"
)

func TestToExercise(t *testing.T) {
	record, ok := toExercise(apiExercise{
		ID:           "0025",
		Name:         "barbell bench press",
		BodyPart:     "chest",
		Target:       "pectorals",
		Equipment:    "barbell",
		GifURL:       "https://v2.exercisedb.io/image/0025.gif",
		Instructions: []string{"Lie flat on the bench.", "Lower the bar to your chest."},
		Difficulty:   "Intermediate",
	})
	if !ok {
		t.Fatal("expected valid record")
	}
	if record.ID != "exercisedb:0025" || record.Name != "Barbell Bench Press" {
		t.Fatalf("unexpected identity %q %q", record.ID, record.Name)
	}
	if record.Category != "chest" || record.Difficulty != domain.DifficultyIntermediate {
		t.Fatalf("unexpected category/difficulty %q %q", record.Category, record.Difficulty)
	}
	if record.Description != "Lie flat on the bench. Lower the bar to your chest." {
		t.Fatalf("expected instructions as description, got %q", record.Description)
	}
	if len(record.Media) != 1 || record.Media[0].Type != domain.MediaGIF {
		t.Fatalf("unexpected media %#v", record.Media)
	}
	if record.PrimaryMuscles[0] != "pectorals" || record.Equipment[0] != "barbell" {
		t.Fatalf("unexpected tags %v %v", record.PrimaryMuscles, record.Equipment)
	}
}

func TestToExerciseRejectsIncomplete(t *testing.T) {
	if _, ok := toExercise(apiExercise{ID: "1"}); ok {
		t.Fatal("expected record without name to be rejected")
	}
}

func TestBuildURLPrefersMostSelectiveLookup(t *testing.T) {
	provider := NewProvider(Config{Endpoint: "https://example.test/", APIKey: "k", Limit: 10})
	cases := []struct {
		query domain.Query
		want  string
	}{
		{domain.Query{Text: "Bench Press", Muscle: "chest"}, "https://example.test/exercises/name/bench%20press?limit=10"},
		{domain.Query{Muscle: "Glutes"}, "https://example.test/exercises/target/glutes?limit=10"},
		{domain.Query{Equipment: "kettlebell"}, "https://example.test/exercises/equipment/kettlebell?limit=10"},
		{domain.Query{}, "https://example.test/exercises?limit=10"},
	}
	for _, tc := range cases {
		got, err := provider.buildURL(tc.query)
		if err != nil {
			t.Fatalf("buildURL: %v", err)
		}
		if got != tc.want {
			t.Errorf("buildURL(%+v) = %q, want %q", tc.query, got, tc.want)
		}
	}
}

func TestFetchWithoutKeySkipsNetwork(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	provider := NewProvider(Config{Endpoint: server.URL, Client: server.Client()})
	records, err := provider.Fetch(context.Background(), domain.Query{})
	if err != nil || records != nil {
		t.Fatalf("expected silent empty pool, got %v %v", records, err)
	}
	if hits.Load() != 0 {
		t.Fatal("expected no network call without a key")
	}
	if provider.Info().Enabled {
		t.Fatal("expected provider to report disabled")
	}
}

func TestFetchSendsRapidAPIHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-RapidAPI-Key") != "secret" || r.Header.Get("X-RapidAPI-Host") == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`[{"id":"0001","name":"3/4 sit-up","bodyPart":"waist","target":"abs","equipment":"body weight","gifUrl":"https://img/0001.gif"}]`))
	}))
	defer server.Close()

	provider := NewProvider(Config{Endpoint: server.URL, APIKey: "secret", Client: server.Client()})
	records, err := provider.Fetch(context.Background(), domain.Query{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(records) != 1 || records[0].Category != "abs" {
		t.Fatalf("unexpected records %#v", records)
	}
}
