package apihttp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fitstream/exerciseservice/internal/catalog"
	"fitstream/exerciseservice/internal/domain"
	"fitstream/exerciseservice/internal/providers/demo"
)

// stubProvider returns a fixed pool or a fixed error.
type stubProvider struct {
	name  string
	items []domain.Exercise
	err   error
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Info() domain.ProviderInfo {
	return domain.ProviderInfo{Name: p.name, Label: p.name, Kind: "catalog", Enabled: true}
}

func (p *stubProvider) Fetch(ctx context.Context, query domain.Query) ([]domain.Exercise, error) {
	_ = ctx
	_ = query
	if p.err != nil {
		return nil, p.err
	}
	return append([]domain.Exercise(nil), p.items...), nil
}

func newFlowHandler(providers ...catalog.Provider) http.Handler {
	service := catalog.NewService(providers, time.Second,
		catalog.WithDemoProvider(demo.NewProvider()),
		catalog.WithRetryConfig(catalog.RetryConfig{MaxAttempts: 1}),
	)
	return NewServer(service).Handler()
}

func TestE2ELiveMergesAcrossProviders(t *testing.T) {
	wger := &stubProvider{name: "wger", items: []domain.Exercise{{
		ID:             "wger:1",
		Name:           "Push-Up",
		PrimaryMuscles: []string{"Chest"},
		Media:          []domain.MediaItem{{Type: domain.MediaImage, URL: "https://wger.de/media/pushup.png", Source: "wger"}},
	}}}
	ninjas := &stubProvider{name: "ninjas", items: []domain.Exercise{{
		ID:          "ninjas:push-up",
		Name:        "push up",
		Category:    "chest",
		Description: "Lower the chest to the floor and press back up.",
		Difficulty:  domain.DifficultyBeginner,
	}}}
	broken := &stubProvider{name: "exercisedb", err: errors.New("upstream exploded")}

	rec := serve(t, newFlowHandler(wger, ninjas, broken), "/exercises?q=push&source=live")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodePublic(t, rec)
	if !body.OK || body.Note != "live" || body.Total != 1 || len(body.Items) != 1 {
		t.Fatalf("expected one merged record, got %+v", body)
	}
	item := body.Items[0]
	if item.Level != "Principiante" || item.Muscle != "Chest" || item.Provider != "wger" {
		t.Fatalf("unexpected merged item %+v", item)
	}
	if len(item.Images) != 1 || item.Description == "" {
		t.Fatalf("expected merged media and description, got %+v", item)
	}
	if body.Facets == nil || body.Facets.Category["chest"] != 1 {
		t.Fatalf("unexpected facets %+v", body.Facets)
	}
}

func TestE2EFallsBackToDemoPool(t *testing.T) {
	broken := &stubProvider{name: "wger", err: errors.New("down")}

	body := decodePublic(t, serve(t, newFlowHandler(broken), "/exercises"))
	if !body.OK || body.Note != "demo" || body.Total == 0 {
		t.Fatalf("expected demo fallback, got %+v", body)
	}
	for _, item := range body.Items {
		if item.Provider != "demo" {
			t.Fatalf("expected demo records only, got %+v", item)
		}
	}
}

func TestE2EDemoModeFiltersByLabel(t *testing.T) {
	body := decodePublic(t, serve(t, newFlowHandler(), "/exercises?source=demo&difficulty=Avanzado&sort=name_asc"))
	if !body.OK || body.Total != 2 {
		t.Fatalf("expected two advanced demo records, got %+v", body)
	}
	if body.Items[0].Name != "Deadlift" || body.Items[1].Name != "Pull-Up" {
		t.Fatalf("unexpected order %q %q", body.Items[0].Name, body.Items[1].Name)
	}
	for _, item := range body.Items {
		if item.Level != "Avanzado" || item.Images == nil {
			t.Fatalf("unexpected projection %+v", item)
		}
	}
}

func TestE2EPageIsClamped(t *testing.T) {
	body := decodePublic(t, serve(t, newFlowHandler(), "/exercises?source=demo&limit=6&page=99"))
	if body.Pages != 2 || body.Page != 2 || len(body.Items) != 6 {
		t.Fatalf("expected last page of two, got page=%d pages=%d items=%d", body.Page, body.Pages, len(body.Items))
	}
}

func TestE2EStoreModeWithoutStore(t *testing.T) {
	rec := serve(t, newFlowHandler(), "/exercises?source=store")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if body := decodePublic(t, rec); body.OK || body.Error == "" {
		t.Fatalf("expected failure body, got %+v", body)
	}
}

func TestE2EUnknownRouteIs404(t *testing.T) {
	rec := httptest.NewRecorder()
	newFlowHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/exercises/unknown", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
