package domain

import "time"

// MaxMediaPerRecord caps the media list of a merged record.
const MaxMediaPerRecord = 8

type Difficulty string

const (
	DifficultyUnknown      Difficulty = ""
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Weight is the sort ordinal of a difficulty. Unknown sorts first.
func (d Difficulty) Weight() int {
	switch d {
	case DifficultyBeginner:
		return 1
	case DifficultyIntermediate:
		return 2
	case DifficultyAdvanced:
		return 3
	default:
		return 0
	}
}

type MediaType string

const (
	MediaImage   MediaType = "image"
	MediaGIF     MediaType = "gif"
	MediaVideo   MediaType = "video"
	MediaModel3D MediaType = "model3d"
)

// MediaItem is identified by URL within a record.
type MediaItem struct {
	Type        MediaType `json:"type" bson:"type"`
	URL         string    `json:"url" bson:"url"`
	Thumb       string    `json:"thumb,omitempty" bson:"thumb,omitempty"`
	Title       string    `json:"title,omitempty" bson:"title,omitempty"`
	Source      string    `json:"source" bson:"source"`
	Width       int       `json:"width,omitempty" bson:"width,omitempty"`
	Height      int       `json:"height,omitempty" bson:"height,omitempty"`
	DurationSec float64   `json:"durationSec,omitempty" bson:"durationSec,omitempty"`
}

// Exercise is the canonical record every provider adapter produces.
type Exercise struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Description    string      `json:"description,omitempty"`
	Category       string      `json:"category,omitempty"`
	PrimaryMuscles []string    `json:"primaryMuscles,omitempty"`
	Equipment      []string    `json:"equipment,omitempty"`
	Difficulty     Difficulty  `json:"difficulty,omitempty"`
	Media          []MediaItem `json:"media,omitempty"`
	Sources        []string    `json:"sources,omitempty"`
	ProviderHint   string      `json:"providerHint,omitempty"`
}

type ProviderInfo struct {
	Name    string `json:"name"`
	Label   string `json:"label"`
	Kind    string `json:"kind"`
	Enabled bool   `json:"enabled"`
}

type ProviderStatus struct {
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	Count int    `json:"count"`
	Error string `json:"error,omitempty"`
}

type ProviderDiagnostics struct {
	Name          string     `json:"name"`
	Label         string     `json:"label"`
	Kind          string     `json:"kind"`
	Enabled       bool       `json:"enabled"`
	LastError     string     `json:"lastError,omitempty"`
	LastSuccessAt *time.Time `json:"lastSuccessAt,omitempty"`
	LastFailureAt *time.Time `json:"lastFailureAt,omitempty"`
	LastLatencyMS int64      `json:"lastLatencyMs,omitempty"`
	LastTimeout   bool       `json:"lastTimeout,omitempty"`
	LastCount     int        `json:"lastCount"`
	TotalRequests int64      `json:"totalRequests,omitempty"`
	TotalFailures int64      `json:"totalFailures,omitempty"`
	TimeoutCount  int64      `json:"timeoutCount,omitempty"`
}

type Facets struct {
	Category   map[string]int `json:"category"`
	Difficulty map[string]int `json:"difficulty"`
	Muscle     map[string]int `json:"muscle"`
	Provider   map[string]int `json:"provider"`
}

// PagedResult is the engine's output before legacy projection.
type PagedResult struct {
	Items     []Exercise       `json:"items"`
	Total     int              `json:"total"`
	Page      int              `json:"page"`
	Pages     int              `json:"pages"`
	Limit     int              `json:"limit"`
	Facets    Facets           `json:"facets"`
	Note      string           `json:"note,omitempty"`
	Providers []ProviderStatus `json:"providers,omitempty"`
}

// PublicItem is the stable, back-compatible item shape returned to callers.
type PublicItem struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Muscle      string   `json:"muscle"`
	Level       string   `json:"level"`
	Provider    string   `json:"provider"`
	Images      []string `json:"images"`
	YoutubeID   string   `json:"youtubeId,omitempty"`
	VideoURL    string   `json:"videoUrl,omitempty"`
}

type PublicResponse struct {
	OK     bool         `json:"ok"`
	Items  []PublicItem `json:"items"`
	Total  int          `json:"total"`
	Page   int          `json:"page"`
	Pages  int          `json:"pages"`
	Facets *Facets      `json:"facets,omitempty"`
	Note   string       `json:"note,omitempty"`
	Error  string       `json:"error,omitempty"`
}
