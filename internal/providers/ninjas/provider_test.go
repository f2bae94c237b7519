package ninjas

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"fitstream/exerciseservice/internal/domain"
)

func TestToExercise(t *testing.T) {
	record, ok := toExercise(apiExercise{
		Name:         "Incline Hammer Curls",
		Type:         "strength",
		Muscle:       "biceps",
		Equipment:    "dumbbell",
		Difficulty:   "beginner",
		Instructions: "Seat yourself on an incline bench.",
	})
	if !ok {
		t.Fatal("expected valid record")
	}
	if record.ID != "ninjas:incline-hammer-curls" {
		t.Fatalf("unexpected id %q", record.ID)
	}
	if record.Category != "arms" || record.Difficulty != domain.DifficultyBeginner {
		t.Fatalf("unexpected category/difficulty %q %q", record.Category, record.Difficulty)
	}
	if len(record.Media) != 0 {
		t.Fatal("expected no media")
	}
}

func TestToExerciseTypeFallbacks(t *testing.T) {
	record, _ := toExercise(apiExercise{Name: "Jumping Jacks", Type: "cardio", Muscle: "", Difficulty: "expert"})
	if record.Category != "cardio" || record.Difficulty != domain.DifficultyAdvanced {
		t.Fatalf("unexpected %q %q", record.Category, record.Difficulty)
	}
	record, _ = toExercise(apiExercise{Name: "Hip Opener", Type: "stretching"})
	if record.Category != "mobility" {
		t.Fatalf("expected mobility, got %q", record.Category)
	}
	record, _ = toExercise(apiExercise{Name: "Good Morning", Muscle: "lower_back"})
	if record.Category != "back" || record.PrimaryMuscles[0] != "lower back" {
		t.Fatalf("unexpected %q %v", record.Category, record.PrimaryMuscles)
	}
	if _, ok := toExercise(apiExercise{Name: "  "}); ok {
		t.Fatal("expected empty name to be rejected")
	}
}

func TestFetchBuildsQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if r.Header.Get("X-Api-Key") != "secret" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if query.Get("name") != "curl" || query.Get("muscle") != "lower_back" || query.Get("difficulty") != "expert" {
			http.Error(w, "unexpected query "+r.URL.RawQuery, http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`[{"name":"Reverse Curl","type":"strength","muscle":"lower_back","equipment":"barbell","difficulty":"expert","instructions":"Curl."}]`))
	}))
	defer server.Close()

	provider := NewProvider(Config{Endpoint: server.URL, APIKey: "secret", Client: server.Client()})
	records, err := provider.Fetch(context.Background(), domain.Query{Text: "curl", Muscle: "Lower Back", Difficulty: "advanced"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(records) != 1 || records[0].Name != "Reverse Curl" {
		t.Fatalf("unexpected records %#v", records)
	}
}

func TestFetchWithoutKey(t *testing.T) {
	provider := NewProvider(Config{Endpoint: "http://127.0.0.1:1"})
	records, err := provider.Fetch(context.Background(), domain.Query{})
	if err != nil || len(records) != 0 {
		t.Fatalf("expected silent empty pool, got %v %v", records, err)
	}
}
