package enrichment

import (
	"net/http"
	"strings"
	"time"
)

const (
	defaultMaxResults = 2
	defaultTimeout    = 10 * time.Second
)

// Config is shared by every media source client.
type Config struct {
	APIKey     string
	BaseURL    string
	Client     *http.Client
	MaxResults int
}

func baseURLOr(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		value = fallback
	}
	return strings.TrimRight(value, "/")
}

func clientOr(client *http.Client) *http.Client {
	if client == nil {
		return &http.Client{Timeout: defaultTimeout}
	}
	return client
}

func resultsOr(n int) int {
	if n <= 0 {
		return defaultMaxResults
	}
	return n
}
