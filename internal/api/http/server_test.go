package apihttp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fitstream/exerciseservice/internal/catalog"
	"fitstream/exerciseservice/internal/domain"
)

type fakeCatalogService struct {
	lastQuery domain.Query
	callCount int
	result    domain.PagedResult
	err       error
	store     bool
}

func (f *fakeCatalogService) Search(ctx context.Context, query domain.Query) (domain.PagedResult, error) {
	_ = ctx
	f.callCount++
	f.lastQuery = query
	if f.err != nil {
		return domain.PagedResult{}, f.err
	}
	return f.result, nil
}

func (f *fakeCatalogService) Providers() []domain.ProviderInfo {
	return []domain.ProviderInfo{
		{Name: "wger", Label: "wger Workout Manager", Kind: "catalog", Enabled: true},
		{Name: "demo", Label: "Built-in demo pool", Kind: "fallback", Enabled: true},
	}
}

func (f *fakeCatalogService) ProviderDiagnostics() []domain.ProviderDiagnostics {
	return []domain.ProviderDiagnostics{
		{Name: "wger", Label: "wger Workout Manager", Kind: "catalog", Enabled: true, LastLatencyMS: 120},
		{Name: "demo", Label: "Built-in demo pool", Kind: "fallback", Enabled: true},
	}
}

func (f *fakeCatalogService) HasStore() bool {
	return f.store
}

func serve(t *testing.T, handler http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodePublic(t *testing.T, rec *httptest.ResponseRecorder) domain.PublicResponse {
	t.Helper()
	var body domain.PublicResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
	}
	return body
}

// ---------------------------------------------------------------------------
// /exercises
// ---------------------------------------------------------------------------

func TestExercisesParsesQuery(t *testing.T) {
	service := &fakeCatalogService{}
	handler := NewServer(service).Handler()

	rec := serve(t, handler, "/exercises?q=%20push%20&category=Chest&muscle=chest&equipment=barbell&difficulty=Principiante&page=2&limit=12&sort=name_asc&providers=WGER,exercisedb,wger&source=store&enrich=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	query := service.lastQuery
	if query.Text != "push" || query.Category != "Chest" || query.Muscle != "chest" || query.Equipment != "barbell" {
		t.Fatalf("unexpected filters %+v", query)
	}
	if query.Difficulty != "Principiante" || query.Page != 2 || query.Limit != 12 {
		t.Fatalf("unexpected paging %+v", query)
	}
	if query.Sort != domain.SortNameAsc || !query.Enrich || query.Mode != "store" {
		t.Fatalf("unexpected options %+v", query)
	}
	if strings.Join(query.Providers, ",") != "wger,exercisedb" {
		t.Fatalf("unexpected providers %v", query.Providers)
	}
}

func TestExercisesLenientNumbers(t *testing.T) {
	service := &fakeCatalogService{}
	handler := NewServer(service).Handler()

	rec := serve(t, handler, "/exercises?page=abc&limit=-3&sort=bogus")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if service.lastQuery.Page != 0 || service.lastQuery.Limit != -3 || service.lastQuery.Sort != domain.SortRelevance {
		t.Fatalf("unexpected query %+v", service.lastQuery)
	}
}

func TestExercisesRejectsLongQuery(t *testing.T) {
	service := &fakeCatalogService{}
	handler := NewServer(service).Handler()

	rec := serve(t, handler, "/exercises?q="+strings.Repeat("a", maxQueryLength+1))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := decodePublic(t, rec)
	if body.OK || body.Error == "" || body.Items == nil {
		t.Fatalf("expected failure shape, got %+v", body)
	}
	if service.callCount != 0 {
		t.Fatal("expected service not to be called")
	}
}

func TestExercisesProjectsResult(t *testing.T) {
	service := &fakeCatalogService{result: domain.PagedResult{
		Items: []domain.Exercise{{
			ID:             "wger:1",
			Name:           "Push-Up",
			PrimaryMuscles: []string{"Chest"},
			Difficulty:     domain.DifficultyBeginner,
			ProviderHint:   "wger",
			Media: []domain.MediaItem{
				{Type: domain.MediaImage, URL: "https://img/pushup.png"},
				{Type: domain.MediaVideo, URL: "https://www.youtube.com/watch?v=abc123"},
			},
		}},
		Total: 1, Page: 1, Pages: 1, Limit: 24,
		Facets: catalog.ComputeFacets(nil),
		Note:   "live",
	}}
	handler := NewServer(service).Handler()

	rec := serve(t, handler, "/exercises")
	body := decodePublic(t, rec)
	if !body.OK || body.Total != 1 || body.Note != "live" || body.Facets == nil {
		t.Fatalf("unexpected envelope %+v", body)
	}
	item := body.Items[0]
	if item.Level != "Principiante" || item.Muscle != "Chest" || item.Provider != "wger" {
		t.Fatalf("unexpected item %+v", item)
	}
	if len(item.Images) != 1 || item.YoutubeID != "abc123" {
		t.Fatalf("unexpected media projection %+v", item)
	}
}

func TestExercisesStoreFailure(t *testing.T) {
	service := &fakeCatalogService{err: fmt.Errorf("%w: count: connection refused", catalog.ErrStoreUnavailable)}
	handler := NewServer(service).Handler()

	rec := serve(t, handler, "/exercises?source=mongo")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"items":[]`) {
		t.Fatalf("expected empty items array, got %s", rec.Body.String())
	}
	body := decodePublic(t, rec)
	if body.OK || !strings.Contains(body.Error, "store unavailable") {
		t.Fatalf("unexpected failure body %+v", body)
	}
}

func TestExercisesUnexpectedFailure(t *testing.T) {
	service := &fakeCatalogService{err: fmt.Errorf("boom")}
	rec := serve(t, NewServer(service).Handler(), "/exercises")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if body := decodePublic(t, rec); body.OK || body.Error != "search failed" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestExercisesMethodNotAllowed(t *testing.T) {
	handler := NewServer(&fakeCatalogService{}).Handler()
	req := httptest.NewRequest(http.MethodPost, "/exercises", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

// ---------------------------------------------------------------------------
// Providers and health
// ---------------------------------------------------------------------------

func TestProvidersEndpoint(t *testing.T) {
	rec := serve(t, NewServer(&fakeCatalogService{}).Handler(), "/exercises/providers")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Items []domain.ProviderInfo `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Items) != 2 || body.Items[1].Name != "demo" {
		t.Fatalf("unexpected providers %+v", body.Items)
	}
}

func TestProvidersHealthEndpoint(t *testing.T) {
	rec := serve(t, NewServer(&fakeCatalogService{}).Handler(), "/exercises/providers/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		CheckedAt string                       `json:"checkedAt"`
		Items     []domain.ProviderDiagnostics `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.CheckedAt == "" || len(body.Items) != 2 || body.Items[0].LastLatencyMS != 120 {
		t.Fatalf("unexpected diagnostics %+v", body)
	}
}

func TestHealthReportsStore(t *testing.T) {
	rec := serve(t, NewServer(&fakeCatalogService{store: true}).Handler(), "/health")
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" || body["store"] != true {
		t.Fatalf("unexpected health %v", body)
	}
}

func TestRateLimitRejectsBurst(t *testing.T) {
	handler := NewServer(&fakeCatalogService{}, WithRateLimit(0.001, 1)).Handler()
	if rec := serve(t, handler, "/exercises"); rec.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", rec.Code)
	}
	if rec := serve(t, handler, "/exercises"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec := serve(t, handler, "/health"); rec.Code != http.StatusOK {
		t.Fatalf("expected health to bypass the limiter, got %d", rec.Code)
	}
}

// ---------------------------------------------------------------------------
// Media proxy
// ---------------------------------------------------------------------------

func TestMediaProxyRejectsUnsafeTargets(t *testing.T) {
	handler := NewServer(&fakeCatalogService{}, WithMediaHosts("wger.de", "media.giphy.com")).Handler()
	cases := []struct {
		target  string
		message string
	}{
		{"/exercises/media", "missing url"},
		{"/exercises/media?url=ftp://wger.de/a.png", "unsupported url scheme"},
		{"/exercises/media?url=https://evil.example.com/a.png", "media host not allowed"},
		{"/exercises/media?url=https://wger.de.evil.example.com/a.png", "media host not allowed"},
	}
	for _, tc := range cases {
		rec := serve(t, handler, tc.target)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", tc.target, rec.Code)
			continue
		}
		if !strings.Contains(rec.Body.String(), tc.message) {
			t.Errorf("%s: expected %q in %s", tc.target, tc.message, rec.Body.String())
		}
	}
}

func TestMediaProxyBlocksPrivateAddresses(t *testing.T) {
	handler := NewServer(&fakeCatalogService{}).Handler()
	for _, target := range []string{
		"/exercises/media?url=http://127.0.0.1/a.png",
		"/exercises/media?url=http://10.0.0.5/a.png",
		"/exercises/media?url=http://redis/a.png",
	} {
		rec := serve(t, handler, target)
		if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "blocked url host") {
			t.Errorf("%s: expected blocked host, got %d %s", target, rec.Code, rec.Body.String())
		}
	}
}

func TestMediaHostAllowedMatchesSubdomains(t *testing.T) {
	server := NewServer(nil, WithMediaHosts(" WGER.de "))
	if !server.mediaHostAllowed("wger.de") || !server.mediaHostAllowed("cdn.wger.de") {
		t.Fatal("expected host and subdomain to be allowed")
	}
	if server.mediaHostAllowed("notwger.de") {
		t.Fatal("expected suffix without dot to be rejected")
	}
}

func TestParseCSV(t *testing.T) {
	got := parseCSV(" Wger , ,NINJAS,wger ")
	if strings.Join(got, ",") != "wger,ninjas" {
		t.Fatalf("unexpected %v", got)
	}
	if parseCSV("  ") != nil {
		t.Fatal("expected nil for blank input")
	}
}
