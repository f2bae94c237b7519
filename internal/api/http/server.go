package apihttp

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fitstream/exerciseservice/internal/catalog"
	"fitstream/exerciseservice/internal/domain"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type CatalogService interface {
	Search(ctx context.Context, query domain.Query) (domain.PagedResult, error)
	Providers() []domain.ProviderInfo
	ProviderDiagnostics() []domain.ProviderDiagnostics
	HasStore() bool
}

type Server struct {
	catalog    CatalogService
	logger     *slog.Logger
	mediaHosts []string
	rps        float64
	burst      int
}

const (
	maxQueryLength = 500
	defaultRPS     = 50
	defaultBurst   = 100
)

type ServerOption func(*Server)

func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMediaHosts restricts the media proxy to the given hosts and their
// subdomains. Without it any public host is allowed.
func WithMediaHosts(hosts ...string) ServerOption {
	return func(s *Server) {
		for _, host := range hosts {
			if host = strings.ToLower(strings.TrimSpace(host)); host != "" {
				s.mediaHosts = append(s.mediaHosts, host)
			}
		}
	}
}

func WithRateLimit(rps float64, burst int) ServerOption {
	return func(s *Server) {
		if rps > 0 && burst > 0 {
			s.rps = rps
			s.burst = burst
		}
	}
}

func NewServer(catalogService CatalogService, options ...ServerOption) *Server {
	server := &Server{
		catalog: catalogService,
		logger:  slog.Default(),
		rps:     defaultRPS,
		burst:   defaultBurst,
	}
	for _, option := range options {
		if option != nil {
			option(server)
		}
	}
	if server.logger == nil {
		server.logger = slog.Default()
	}
	return server
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/exercises/providers", s.handleProviders)
	mux.HandleFunc("/exercises/providers/health", s.handleProvidersHealth)
	mux.HandleFunc("/exercises/media", s.handleMediaProxy)
	mux.HandleFunc("/exercises", s.handleExercises)
	traced := otelhttp.NewHandler(loggingMiddleware(s.logger, mux), "exercise-catalog",
		otelhttp.WithFilter(func(r *http.Request) bool {
			p := r.URL.Path
			return p != "/metrics" && p != "/health"
		}),
	)
	return recoveryMiddleware(s.logger, rateLimitMiddleware(s.rps, s.burst, metricsMiddleware(traced)))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	store := false
	if s.catalog != nil {
		store = s.catalog.HasStore()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"store":     store,
		"timestamp": time.Now().UTC(),
	})
}

// handleExercises always answers in the public response shape. Only a
// failure of the active data source turns into ok:false.
func (s *Server) handleExercises(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/exercises" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.catalog == nil {
		writeFailure(w, http.StatusInternalServerError, "catalog service is not configured")
		return
	}

	query, err := parseQuery(r)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.catalog.Search(r.Context(), query)
	if err != nil {
		s.logger.Warn("exercise search failed",
			slog.String("query", truncate(query.Text, 80)),
			slog.String("source", string(query.Mode)),
			slog.String("error", err.Error()),
		)
		switch {
		case errors.Is(err, catalog.ErrNoStore), errors.Is(err, catalog.ErrStoreUnavailable):
			writeFailure(w, http.StatusServiceUnavailable, err.Error())
		default:
			writeFailure(w, http.StatusInternalServerError, "search failed")
		}
		return
	}

	failedProviders := make([]string, 0, len(result.Providers))
	for _, providerStatus := range result.Providers {
		if !providerStatus.OK {
			failedProviders = append(failedProviders, providerStatus.Name)
		}
	}
	if len(failedProviders) > 0 {
		s.logger.Warn("exercise providers partially failed",
			slog.String("query", truncate(query.Text, 80)),
			slog.Any("failedProviders", failedProviders),
		)
	}

	writeJSON(w, http.StatusOK, catalog.ProjectResult(result))
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/exercises/providers" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.catalog == nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "catalog service is not configured")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": s.catalog.Providers(),
	})
}

func (s *Server) handleProvidersHealth(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/exercises/providers/health" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.catalog == nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "catalog service is not configured")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"checkedAt": time.Now().UTC(),
		"items":     s.catalog.ProviderDiagnostics(),
	})
}

// parseQuery reads the request parameters. Numeric values are lenient:
// anything unparsable falls back to the default and is clamped downstream.
func parseQuery(r *http.Request) (domain.Query, error) {
	values := r.URL.Query()
	text := strings.TrimSpace(values.Get("q"))
	if len(text) > maxQueryLength {
		return domain.Query{}, errors.New("query too long (max 500 characters)")
	}

	query := domain.Query{
		Text:       text,
		Category:   strings.TrimSpace(values.Get("category")),
		Muscle:     strings.TrimSpace(values.Get("muscle")),
		Equipment:  strings.TrimSpace(values.Get("equipment")),
		Difficulty: strings.TrimSpace(values.Get("difficulty")),
		Page:       parseLenientInt(values.Get("page")),
		Limit:      parseLenientInt(values.Get("limit")),
		Sort:       domain.NormalizeSortKey(values.Get("sort")),
		Providers:  parseCSV(values.Get("providers")),
		Enrich:     parseOptionalBool(values.Get("enrich")),
		Mode:       domain.SourceMode(strings.TrimSpace(values.Get("source"))),
	}
	return query, nil
}

func parseCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		value := strings.ToLower(strings.TrimSpace(part))
		if value == "" {
			continue
		}
		if _, exists := seen[value]; exists {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}

func parseLenientInt(raw string) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return parsed
}

func parseOptionalBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

// writeFailure keeps the public response shape for failed searches.
func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, domain.PublicResponse{
		OK:    false,
		Items: []domain.PublicItem{},
		Error: message,
	})
}
