package enrichment

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"fitstream/exerciseservice/internal/domain"
	"fitstream/exerciseservice/internal/providers/common"
)

const (
	youtubeName        = "youtube"
	youtubeDefaultBase = "https://www.googleapis.com/youtube/v3"
	youtubeWatchURL    = "https://www.youtube.com/watch?v="
)

// YouTube finds demonstration videos through the Data API search endpoint.
type YouTube struct {
	apiKey     string
	baseURL    string
	http       *http.Client
	maxResults int
}

type youtubeThumbnail struct {
	URL string `json:"url"`
}

type youtubeSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title      string                      `json:"title"`
			Thumbnails map[string]youtubeThumbnail `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

func NewYouTube(cfg Config) *YouTube {
	return &YouTube{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		baseURL:    baseURLOr(cfg.BaseURL, youtubeDefaultBase),
		http:       clientOr(cfg.Client),
		maxResults: resultsOr(cfg.MaxResults),
	}
}

func (y *YouTube) Name() string {
	return youtubeName
}

func (y *YouTube) Enabled() bool {
	return y.apiKey != ""
}

func (y *YouTube) Search(ctx context.Context, exercise string) ([]domain.MediaItem, error) {
	if !y.Enabled() || strings.TrimSpace(exercise) == "" {
		return nil, nil
	}
	params := url.Values{
		"part":       {"snippet"},
		"type":       {"video"},
		"maxResults": {fmt.Sprint(y.maxResults)},
		"q":          {strings.TrimSpace(exercise) + " exercise"},
		"key":        {y.apiKey},
	}

	var response youtubeSearchResponse
	if err := common.GetJSON(ctx, y.http, youtubeName, y.baseURL+"/search?"+params.Encode(), nil, &response); err != nil {
		return nil, err
	}

	items := make([]domain.MediaItem, 0, len(response.Items))
	for _, item := range response.Items {
		videoID := strings.TrimSpace(item.ID.VideoID)
		if videoID == "" {
			continue
		}
		items = append(items, domain.MediaItem{
			Type:   domain.MediaVideo,
			URL:    youtubeWatchURL + videoID,
			Thumb:  pickThumbnail(item.Snippet.Thumbnails),
			Title:  common.CleanHTMLText(item.Snippet.Title),
			Source: youtubeName,
		})
	}
	return items, nil
}

func pickThumbnail(thumbnails map[string]youtubeThumbnail) string {
	for _, size := range []string{"high", "medium", "default"} {
		if thumb, ok := thumbnails[size]; ok && thumb.URL != "" {
			return thumb.URL
		}
	}
	return ""
}
