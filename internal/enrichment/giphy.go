package enrichment

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"fitstream/exerciseservice/internal/domain"
	"fitstream/exerciseservice/internal/providers/common"
)

const (
	giphyName        = "giphy"
	giphyDefaultBase = "https://api.giphy.com/v1"
)

// Giphy finds short looping demonstrations.
type Giphy struct {
	apiKey     string
	baseURL    string
	http       *http.Client
	maxResults int
}

type giphyRendition struct {
	URL    string `json:"url"`
	Width  string `json:"width"`
	Height string `json:"height"`
}

type giphySearchResponse struct {
	Data []struct {
		ID     string `json:"id"`
		Title  string `json:"title"`
		Images struct {
			Original         giphyRendition `json:"original"`
			FixedHeightStill giphyRendition `json:"fixed_height_still"`
		} `json:"images"`
	} `json:"data"`
}

func NewGiphy(cfg Config) *Giphy {
	return &Giphy{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		baseURL:    baseURLOr(cfg.BaseURL, giphyDefaultBase),
		http:       clientOr(cfg.Client),
		maxResults: resultsOr(cfg.MaxResults),
	}
}

func (g *Giphy) Name() string {
	return giphyName
}

func (g *Giphy) Enabled() bool {
	return g.apiKey != ""
}

func (g *Giphy) Search(ctx context.Context, exercise string) ([]domain.MediaItem, error) {
	if !g.Enabled() || strings.TrimSpace(exercise) == "" {
		return nil, nil
	}
	params := url.Values{
		"api_key": {g.apiKey},
		"q":       {strings.TrimSpace(exercise) + " exercise"},
		"limit":   {fmt.Sprint(g.maxResults)},
		"rating":  {"g"},
	}

	var response giphySearchResponse
	if err := common.GetJSON(ctx, g.http, giphyName, g.baseURL+"/gifs/search?"+params.Encode(), nil, &response); err != nil {
		return nil, err
	}

	items := make([]domain.MediaItem, 0, len(response.Data))
	for _, gif := range response.Data {
		original := gif.Images.Original
		if strings.TrimSpace(original.URL) == "" {
			continue
		}
		items = append(items, domain.MediaItem{
			Type:   domain.MediaGIF,
			URL:    original.URL,
			Thumb:  gif.Images.FixedHeightStill.URL,
			Title:  strings.TrimSpace(gif.Title),
			Source: giphyName,
			Width:  atoiOrZero(original.Width),
			Height: atoiOrZero(original.Height),
		})
	}
	return items, nil
}

// Giphy encodes dimensions as strings.
func atoiOrZero(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
