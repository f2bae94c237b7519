package apihttp

import (
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"fitstream/exerciseservice/internal/metrics"
)

// statusRecorder captures what the inner handler wrote.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func record(w http.ResponseWriter) *statusRecorder {
	if rec, ok := w.(*statusRecorder); ok {
		return rec
	}
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	n, err := rec.ResponseWriter.Write(b)
	rec.bytes += n
	return n, err
}

func isInfraPath(path string) bool {
	return path == "/health" || path == "/metrics"
}

func loggingMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := record(w)
		next.ServeHTTP(rec, r)

		attrs := []slog.Attr{
			slog.String("method", r.Method),
			slog.String("route", routeLabel(r.URL.Path)),
			slog.Int("status", rec.status),
			slog.Int("bytes", rec.bytes),
			slog.Int64("durationMs", time.Since(started).Milliseconds()),
			slog.String("clientIP", clientIP(r)),
		}
		values := r.URL.Query()
		if q := strings.TrimSpace(values.Get("q")); q != "" {
			attrs = append(attrs, slog.String("q", truncate(q, 80)))
		}
		if source := strings.TrimSpace(values.Get("source")); source != "" {
			attrs = append(attrs, slog.String("source", source))
		}
		logger.LogAttrs(r.Context(), requestLogLevel(r.URL.Path, rec.status), "http request", attrs...)
	})
}

func requestLogLevel(path string, status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	case isInfraPath(path), path == "/exercises/media":
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

func recoveryMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}
			metrics.HTTPPanicsTotal.Inc()
			logger.Error("panic recovered",
				slog.Any("error", recovered),
				slog.String("route", routeLabel(r.URL.Path)),
				slog.String("stack", string(debug.Stack())),
			)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		}()
		next.ServeHTTP(w, r)
	})
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}
		started := time.Now()
		rec := record(w)
		next.ServeHTTP(rec, r)
		route := routeLabel(r.URL.Path)
		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(started).Seconds())
	})
}

// routeLabel keeps metric label cardinality bounded.
func routeLabel(path string) string {
	switch path {
	case "/health", "/metrics", "/exercises", "/exercises/media",
		"/exercises/providers", "/exercises/providers/health":
		return path
	default:
		return "/other"
	}
}

// clientIP prefers the first valid forwarded address. Clients control those
// headers, so it is for logs only.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip.String()
		}
	}
	if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
		return ip.String()
	}
	return remoteHost(r)
}

// remoteHost is the peer address of the connection.
func remoteHost(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func truncate(value string, limit int) string {
	if limit <= 0 || len(value) <= limit {
		return value
	}
	if limit <= 3 {
		return value[:limit]
	}
	return value[:limit-3] + "..."
}

const (
	clientLimiterIdle = 10 * time.Minute
	clientLimiterMax  = 4096
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientLimiters hands out one token bucket per client address.
type clientLimiters struct {
	mu      sync.Mutex
	rps     rate.Limit
	burst   int
	clients map[string]*clientLimiter
}

func newClientLimiters(rps float64, burst int) *clientLimiters {
	return &clientLimiters{
		rps:     rate.Limit(rps),
		burst:   burst,
		clients: make(map[string]*clientLimiter),
	}
}

func (c *clientLimiters) allow(key string, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := c.clients[key]
	if entry == nil {
		if len(c.clients) >= clientLimiterMax {
			c.evictIdle(now)
		}
		entry = &clientLimiter{limiter: rate.NewLimiter(c.rps, c.burst)}
		c.clients[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

func (c *clientLimiters) evictIdle(now time.Time) {
	for key, entry := range c.clients {
		if now.Sub(entry.lastSeen) > clientLimiterIdle {
			delete(c.clients, key)
		}
	}
}

// rateLimitMiddleware answers 429 once a connection peer exceeds its bucket.
// Health and metrics are never limited.
func rateLimitMiddleware(rps float64, burst int, next http.Handler) http.Handler {
	limiters := newClientLimiters(rps, burst)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isInfraPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		if !limiters.allow(remoteHost(r), time.Now()) {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "rate_limited", "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}
