package exercisedb

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"fitstream/exerciseservice/internal/domain"
	"fitstream/exerciseservice/internal/providers/common"
)

const (
	defaultEndpoint = "https://exercisedb.p.rapidapi.com"
	defaultLimit    = 60
	providerName    = "exercisedb"
)

type Config struct {
	Endpoint string
	APIKey   string
	Limit    int
	Client   *http.Client
}

// Provider reads the ExerciseDB catalog, which tags every exercise with a
// body part, a target muscle and equipment. It requires a RapidAPI key.
type Provider struct {
	client   *http.Client
	endpoint string
	apiKey   string
	limit    int
}

type apiExercise struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	BodyPart     string   `json:"bodyPart"`
	Target       string   `json:"target"`
	Equipment    string   `json:"equipment"`
	GifURL       string   `json:"gifUrl"`
	Instructions []string `json:"instructions"`
	Description  string   `json:"description"`
	Difficulty   string   `json:"difficulty"`
	Category     string   `json:"category"`
}

func NewProvider(cfg Config) *Provider {
	client := cfg.Client
	if client == nil {
		client = &http.Client{}
	}
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	limit := cfg.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	return &Provider{
		client:   client,
		endpoint: endpoint,
		apiKey:   strings.TrimSpace(cfg.APIKey),
		limit:    limit,
	}
}

func (p *Provider) Name() string {
	return providerName
}

func (p *Provider) Info() domain.ProviderInfo {
	return domain.ProviderInfo{
		Name:    p.Name(),
		Label:   "ExerciseDB",
		Kind:    "catalog",
		Enabled: p.apiKey != "",
	}
}

func (p *Provider) Fetch(ctx context.Context, query domain.Query) ([]domain.Exercise, error) {
	if p.apiKey == "" {
		return nil, nil
	}
	uri, err := p.buildURL(query)
	if err != nil {
		return nil, err
	}

	headers := map[string]string{
		"X-RapidAPI-Key":  p.apiKey,
		"X-RapidAPI-Host": rapidHost(p.endpoint),
	}
	var items []apiExercise
	if err := common.GetJSON(ctx, p.client, providerName, uri, headers, &items); err != nil {
		return nil, err
	}

	records := make([]domain.Exercise, 0, len(items))
	for _, item := range items {
		if record, ok := toExercise(item); ok {
			records = append(records, record)
		}
	}
	return records, nil
}

// buildURL picks the single most selective lookup the API supports:
// name, then target muscle, then equipment, then the full listing.
func (p *Provider) buildURL(query domain.Query) (string, error) {
	path := "/exercises"
	switch {
	case strings.TrimSpace(query.Text) != "":
		path += "/name/" + url.PathEscape(strings.ToLower(strings.TrimSpace(query.Text)))
	case strings.TrimSpace(query.Muscle) != "":
		path += "/target/" + url.PathEscape(strings.ToLower(strings.TrimSpace(query.Muscle)))
	case strings.TrimSpace(query.Equipment) != "":
		path += "/equipment/" + url.PathEscape(strings.ToLower(strings.TrimSpace(query.Equipment)))
	}

	uri, err := url.Parse(p.endpoint + path)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint: %w", err)
	}
	params := uri.Query()
	params.Set("limit", strconv.Itoa(p.limit))
	uri.RawQuery = params.Encode()
	return uri.String(), nil
}

func rapidHost(endpoint string) string {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return ""
	}
	return parsed.Host
}

func toExercise(item apiExercise) (domain.Exercise, bool) {
	name := strings.TrimSpace(item.Name)
	id := strings.TrimSpace(item.ID)
	if name == "" || id == "" {
		return domain.Exercise{}, false
	}

	description := common.CleanHTMLText(item.Description)
	if description == "" && len(item.Instructions) > 0 {
		description = common.CleanHTMLText(strings.Join(item.Instructions, " "))
	}

	category := strings.ToLower(strings.TrimSpace(item.Category))
	if category == "" || category == "strength" {
		category = common.InferCategory(item.Target, item.BodyPart)
	}

	var media []domain.MediaItem
	if gif := strings.TrimSpace(item.GifURL); gif != "" {
		media = append(media, domain.MediaItem{
			Type:   domain.MediaGIF,
			URL:    gif,
			Title:  name,
			Source: providerName,
		})
	}

	return domain.Exercise{
		ID:             common.RecordID(providerName, id),
		Name:           titleCase(name),
		Description:    description,
		Category:       category,
		PrimaryMuscles: domain.UnionFold([]string{item.Target}),
		Equipment:      domain.UnionFold([]string{item.Equipment}),
		Difficulty:     common.ClassifyDifficulty(item.Difficulty),
		Media:          media,
		Sources:        []string{providerName},
		ProviderHint:   providerName,
	}, true
}

// titleCase capitalizes each word. ExerciseDB names are all lowercase.
func titleCase(value string) string {
	return cases.Title(language.English).String(value)
}
