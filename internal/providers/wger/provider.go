package wger

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"fitstream/exerciseservice/internal/domain"
	"fitstream/exerciseservice/internal/providers/common"
)

const (
	defaultEndpoint       = "https://wger.de/api/v2/exerciseinfo/"
	defaultSearchEndpoint = "https://wger.de/api/v2/exercise/search/"
	defaultUserAgent      = "fitstream-catalog/1.0"
	defaultLimit          = 100
	englishLanguage       = 2
	providerName          = "wger"

	// maxSearchDetails caps the per-exercise lookups one term search makes.
	maxSearchDetails    = 20
	searchDetailWorkers = 4
)

type Config struct {
	Endpoint       string
	SearchEndpoint string
	UserAgent      string
	Limit          int
	Client         *http.Client
}

// Provider reads the public wger exercise catalog. It needs no credentials.
type Provider struct {
	client         *http.Client
	endpoint       string
	searchEndpoint string
	userAgent      string
	limit          int
}

type exerciseInfoPage struct {
	Count   int            `json:"count"`
	Results []exerciseInfo `json:"results"`
}

type exerciseInfo struct {
	ID           int           `json:"id"`
	Category     namedRef      `json:"category"`
	Muscles      []muscleRef   `json:"muscles"`
	Equipment    []namedRef    `json:"equipment"`
	Images       []imageRef    `json:"images"`
	Videos       []videoRef    `json:"videos"`
	Translations []translation `json:"translations"`
}

type searchResponse struct {
	Suggestions []suggestion `json:"suggestions"`
}

type suggestion struct {
	Value string         `json:"value"`
	Data  suggestionData `json:"data"`
}

type suggestionData struct {
	ID       int    `json:"id"`
	BaseID   int    `json:"base_id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Image    string `json:"image"`
}

type namedRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type muscleRef struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	NameEN string `json:"name_en"`
}

type imageRef struct {
	Image  string `json:"image"`
	IsMain bool   `json:"is_main"`
}

type videoRef struct {
	Video  string `json:"video"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type translation struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Language    int    `json:"language"`
}

func NewProvider(cfg Config) *Provider {
	client := cfg.Client
	if client == nil {
		client = &http.Client{}
	}
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	searchEndpoint := strings.TrimSpace(cfg.SearchEndpoint)
	if searchEndpoint == "" {
		searchEndpoint = defaultSearchEndpoint
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	limit := cfg.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	return &Provider{
		client:         client,
		endpoint:       endpoint,
		searchEndpoint: searchEndpoint,
		userAgent:      userAgent,
		limit:          limit,
	}
}

func (p *Provider) Name() string {
	return providerName
}

func (p *Provider) Info() domain.ProviderInfo {
	return domain.ProviderInfo{
		Name:    p.Name(),
		Label:   "wger Workout Manager",
		Kind:    "catalog",
		Enabled: true,
	}
}

// Fetch runs a term search when the query has text and otherwise lists one
// page of exercise info. Muscle and equipment are narrowed downstream.
func (p *Provider) Fetch(ctx context.Context, query domain.Query) ([]domain.Exercise, error) {
	if text := strings.TrimSpace(query.Text); text != "" {
		return p.search(ctx, text)
	}
	return p.list(ctx)
}

func (p *Provider) list(ctx context.Context) ([]domain.Exercise, error) {
	uri, err := url.Parse(p.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}
	params := uri.Query()
	params.Set("language", strconv.Itoa(englishLanguage))
	params.Set("limit", strconv.Itoa(p.limit))
	uri.RawQuery = params.Encode()

	var page exerciseInfoPage
	if err := common.GetJSON(ctx, p.client, providerName, uri.String(), p.headers(), &page); err != nil {
		return nil, err
	}

	records := make([]domain.Exercise, 0, len(page.Results))
	for _, item := range page.Results {
		if record, ok := toExercise(item); ok {
			records = append(records, record)
		}
	}
	return records, nil
}

// search resolves each suggestion to its full exercise info. A suggestion
// whose lookup fails is kept with the name, category and image it carries.
func (p *Provider) search(ctx context.Context, text string) ([]domain.Exercise, error) {
	uri, err := url.Parse(p.searchEndpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid search endpoint: %w", err)
	}
	params := uri.Query()
	params.Set("term", text)
	params.Set("language", "en")
	uri.RawQuery = params.Encode()

	var resp searchResponse
	if err := common.GetJSON(ctx, p.client, providerName, uri.String(), p.headers(), &resp); err != nil {
		return nil, err
	}

	hits := dedupeSuggestions(resp.Suggestions)
	if len(hits) > maxSearchDetails {
		hits = hits[:maxSearchDetails]
	}
	records := make([]domain.Exercise, len(hits))
	found := make([]bool, len(hits))

	var group errgroup.Group
	group.SetLimit(searchDetailWorkers)
	for i, hit := range hits {
		group.Go(func() error {
			if record, ok := p.detail(ctx, hit.exerciseID()); ok {
				records[i], found[i] = record, true
				return nil
			}
			records[i], found[i] = suggestionRecord(hit, uri)
			return nil
		})
	}
	_ = group.Wait()

	out := make([]domain.Exercise, 0, len(records))
	for i, record := range records {
		if found[i] {
			out = append(out, record)
		}
	}
	return out, nil
}

func (p *Provider) detail(ctx context.Context, id int) (domain.Exercise, bool) {
	uri, err := url.Parse(p.endpoint)
	if err != nil {
		return domain.Exercise{}, false
	}
	uri = uri.JoinPath(strconv.Itoa(id))
	uri.Path += "/"

	var item exerciseInfo
	if err := common.GetJSON(ctx, p.client, providerName, uri.String(), p.headers(), &item); err != nil {
		return domain.Exercise{}, false
	}
	return toExercise(item)
}

func (p *Provider) headers() map[string]string {
	return map[string]string{"User-Agent": p.userAgent}
}

// exerciseID is the id exerciseinfo is keyed by.
func (d suggestionData) exerciseID() int {
	if d.BaseID != 0 {
		return d.BaseID
	}
	return d.ID
}

func dedupeSuggestions(items []suggestion) []suggestionData {
	out := make([]suggestionData, 0, len(items))
	seen := make(map[int]struct{}, len(items))
	for _, item := range items {
		id := item.Data.exerciseID()
		if id == 0 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if strings.TrimSpace(item.Data.Name) == "" {
			item.Data.Name = item.Value
		}
		out = append(out, item.Data)
	}
	return out
}

// suggestionRecord builds a thin record; image paths are relative to the
// search host.
func suggestionRecord(hit suggestionData, base *url.URL) (domain.Exercise, bool) {
	name := strings.TrimSpace(hit.Name)
	if name == "" {
		return domain.Exercise{}, false
	}
	var media []domain.MediaItem
	if image := strings.TrimSpace(hit.Image); image != "" {
		if ref, err := url.Parse(image); err == nil {
			resolved := base.ResolveReference(ref).String()
			media = []domain.MediaItem{{
				Type:   common.MediaTypeForURL(resolved),
				URL:    resolved,
				Source: providerName,
			}}
		}
	}
	return domain.Exercise{
		ID:           common.RecordID(providerName, strconv.Itoa(hit.exerciseID())),
		Name:         name,
		Category:     strings.ToLower(strings.TrimSpace(hit.Category)),
		Media:        media,
		Sources:      []string{providerName},
		ProviderHint: providerName,
	}, true
}

func toExercise(item exerciseInfo) (domain.Exercise, bool) {
	text, ok := pickTranslation(item.Translations)
	if !ok || item.ID == 0 {
		return domain.Exercise{}, false
	}

	muscles := make([]string, 0, len(item.Muscles))
	for _, muscle := range item.Muscles {
		muscles = append(muscles, muscleName(muscle))
	}
	equipment := make([]string, 0, len(item.Equipment))
	for _, ref := range item.Equipment {
		equipment = append(equipment, ref.Name)
	}

	category := strings.ToLower(strings.TrimSpace(item.Category.Name))
	if category == "" {
		category = common.InferCategory(muscles...)
	}

	return domain.Exercise{
		ID:             common.RecordID(providerName, strconv.Itoa(item.ID)),
		Name:           strings.TrimSpace(text.Name),
		Description:    common.CleanHTMLText(text.Description),
		Category:       category,
		PrimaryMuscles: domain.UnionFold(muscles),
		Equipment:      domain.UnionFold(equipment),
		Media:          collectMedia(item),
		Sources:        []string{providerName},
		ProviderHint:   providerName,
	}, true
}

// pickTranslation prefers English and falls back to the first named entry.
func pickTranslation(items []translation) (translation, bool) {
	var fallback *translation
	for i := range items {
		if strings.TrimSpace(items[i].Name) == "" {
			continue
		}
		if items[i].Language == englishLanguage {
			return items[i], true
		}
		if fallback == nil {
			fallback = &items[i]
		}
	}
	if fallback == nil {
		return translation{}, false
	}
	return *fallback, true
}

func muscleName(ref muscleRef) string {
	if name := strings.TrimSpace(ref.NameEN); name != "" {
		return name
	}
	return strings.TrimSpace(ref.Name)
}

// collectMedia lists the main image first, then other images, then videos.
func collectMedia(item exerciseInfo) []domain.MediaItem {
	media := make([]domain.MediaItem, 0, len(item.Images)+len(item.Videos))
	ordered := make([]imageRef, 0, len(item.Images))
	for _, image := range item.Images {
		if image.IsMain {
			ordered = append(ordered, image)
		}
	}
	for _, image := range item.Images {
		if !image.IsMain {
			ordered = append(ordered, image)
		}
	}
	for _, image := range ordered {
		if strings.TrimSpace(image.Image) == "" {
			continue
		}
		media = append(media, domain.MediaItem{
			Type:   common.MediaTypeForURL(image.Image),
			URL:    image.Image,
			Source: providerName,
		})
	}
	for _, video := range item.Videos {
		if strings.TrimSpace(video.Video) == "" {
			continue
		}
		media = append(media, domain.MediaItem{
			Type:   domain.MediaVideo,
			URL:    video.Video,
			Source: providerName,
			Width:  video.Width,
			Height: video.Height,
		})
	}
	return domain.UnionMedia(media)
}
