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
	pexelsName        = "pexels"
	pexelsDefaultBase = "https://api.pexels.com/v1"
)

// Pexels finds still photos. The key goes in the Authorization header as is.
type Pexels struct {
	apiKey     string
	baseURL    string
	http       *http.Client
	maxResults int
}

type pexelsSearchResponse struct {
	Photos []struct {
		ID     int64  `json:"id"`
		Width  int    `json:"width"`
		Height int    `json:"height"`
		Alt    string `json:"alt"`
		Src    struct {
			Large string `json:"large"`
			Tiny  string `json:"tiny"`
		} `json:"src"`
	} `json:"photos"`
}

func NewPexels(cfg Config) *Pexels {
	return &Pexels{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		baseURL:    baseURLOr(cfg.BaseURL, pexelsDefaultBase),
		http:       clientOr(cfg.Client),
		maxResults: resultsOr(cfg.MaxResults),
	}
}

func (p *Pexels) Name() string {
	return pexelsName
}

func (p *Pexels) Enabled() bool {
	return p.apiKey != ""
}

func (p *Pexels) Search(ctx context.Context, exercise string) ([]domain.MediaItem, error) {
	if !p.Enabled() || strings.TrimSpace(exercise) == "" {
		return nil, nil
	}
	params := url.Values{
		"query":    {strings.TrimSpace(exercise) + " workout"},
		"per_page": {fmt.Sprint(p.maxResults)},
	}

	var response pexelsSearchResponse
	headers := map[string]string{"Authorization": p.apiKey}
	if err := common.GetJSON(ctx, p.http, pexelsName, p.baseURL+"/search?"+params.Encode(), headers, &response); err != nil {
		return nil, err
	}

	items := make([]domain.MediaItem, 0, len(response.Photos))
	for _, photo := range response.Photos {
		if strings.TrimSpace(photo.Src.Large) == "" {
			continue
		}
		items = append(items, domain.MediaItem{
			Type:   domain.MediaImage,
			URL:    photo.Src.Large,
			Thumb:  photo.Src.Tiny,
			Title:  strings.TrimSpace(photo.Alt),
			Source: pexelsName,
			Width:  photo.Width,
			Height: photo.Height,
		})
	}
	return items, nil
}
