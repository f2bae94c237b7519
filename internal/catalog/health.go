package catalog

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"fitstream/exerciseservice/internal/domain"
	"fitstream/exerciseservice/internal/metrics"
)

type fetchOutcome string

const (
	outcomeOK      fetchOutcome = "ok"
	outcomeTimeout fetchOutcome = "timeout"
	outcomeError   fetchOutcome = "error"
)

func classifyOutcome(err error) fetchOutcome {
	if err == nil {
		return outcomeOK
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return outcomeTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return outcomeTimeout
	}
	return outcomeError
}

// providerHealth is what /exercises/providers/health reports for one
// provider. It is never consulted before a call.
type providerHealth struct {
	lastOutcome   fetchOutcome
	lastError     string
	lastSuccessAt time.Time
	lastFailureAt time.Time
	lastLatency   time.Duration
	lastCount     int
	totalRequests int64
	totalFailures int64
	timeoutCount  int64
}

func (h *providerHealth) observe(outcome fetchOutcome, count int, err error, latency time.Duration, now time.Time) {
	h.totalRequests++
	h.lastOutcome = outcome
	h.lastCount = count
	h.lastLatency = latency
	switch outcome {
	case outcomeOK:
		h.lastError = ""
		h.lastSuccessAt = now
		return
	case outcomeTimeout:
		h.timeoutCount++
	}
	h.totalFailures++
	h.lastFailureAt = now
	h.lastError = err.Error()
}

func (h *providerHealth) fill(item *domain.ProviderDiagnostics) {
	item.LastError = h.lastError
	item.LastSuccessAt = timeRef(h.lastSuccessAt)
	item.LastFailureAt = timeRef(h.lastFailureAt)
	item.LastLatencyMS = h.lastLatency.Milliseconds()
	item.LastTimeout = h.lastOutcome == outcomeTimeout
	item.LastCount = h.lastCount
	item.TotalRequests = h.totalRequests
	item.TotalFailures = h.totalFailures
	item.TimeoutCount = h.timeoutCount
}

func timeRef(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func (s *Service) recordProviderResult(providerName string, count int, err error, latency time.Duration, now time.Time) {
	name := strings.ToLower(strings.TrimSpace(providerName))
	if name == "" {
		return
	}
	outcome := classifyOutcome(err)

	metrics.ProviderRequestsTotal.WithLabelValues(name, string(outcome)).Inc()
	metrics.ProviderRequestDuration.WithLabelValues(name).Observe(latency.Seconds())
	available := 0.0
	if outcome == outcomeOK {
		available = 1
	}
	metrics.ProviderAvailable.WithLabelValues(name).Set(available)

	s.healthMu.Lock()
	defer s.healthMu.Unlock()
	state := s.health[name]
	if state == nil {
		state = &providerHealth{}
		s.health[name] = state
	}
	state.observe(outcome, count, err, latency, now)
}

// ProviderDiagnostics lists every registered provider, demo pool included,
// with the outcome of its most recent calls.
func (s *Service) ProviderDiagnostics() []domain.ProviderDiagnostics {
	infos := s.Providers()
	if len(infos) == 0 {
		return nil
	}

	s.healthMu.Lock()
	defer s.healthMu.Unlock()

	items := make([]domain.ProviderDiagnostics, 0, len(infos))
	for _, info := range infos {
		item := domain.ProviderDiagnostics{
			Name:    info.Name,
			Label:   info.Label,
			Kind:    info.Kind,
			Enabled: info.Enabled,
		}
		if state := s.health[info.Name]; state != nil {
			state.fill(&item)
		}
		items = append(items, item)
	}
	return items
}
