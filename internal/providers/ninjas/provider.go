package ninjas

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
	defaultEndpoint = "https://api.api-ninjas.com/v1/exercises"
	providerName    = "ninjas"
)

type Config struct {
	Endpoint string
	APIKey   string
	Client   *http.Client
}

// Provider reads the API Ninjas exercise list: name, muscle, equipment and
// difficulty only, without media. It requires an API key.
type Provider struct {
	client   *http.Client
	endpoint string
	apiKey   string
}

type apiExercise struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	Muscle       string `json:"muscle"`
	Equipment    string `json:"equipment"`
	Difficulty   string `json:"difficulty"`
	Instructions string `json:"instructions"`
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
	return &Provider{
		client:   client,
		endpoint: endpoint,
		apiKey:   strings.TrimSpace(cfg.APIKey),
	}
}

func (p *Provider) Name() string {
	return providerName
}

func (p *Provider) Info() domain.ProviderInfo {
	return domain.ProviderInfo{
		Name:    p.Name(),
		Label:   "API Ninjas",
		Kind:    "catalog",
		Enabled: p.apiKey != "",
	}
}

func (p *Provider) Fetch(ctx context.Context, query domain.Query) ([]domain.Exercise, error) {
	if p.apiKey == "" {
		return nil, nil
	}
	uri, err := url.Parse(p.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}
	params := uri.Query()
	if text := strings.TrimSpace(query.Text); text != "" {
		params.Set("name", text)
	}
	if muscle := strings.TrimSpace(query.Muscle); muscle != "" {
		params.Set("muscle", strings.ToLower(strings.ReplaceAll(muscle, " ", "_")))
	}
	switch domain.ParseDifficulty(query.Difficulty) {
	case domain.DifficultyBeginner:
		params.Set("difficulty", "beginner")
	case domain.DifficultyIntermediate:
		params.Set("difficulty", "intermediate")
	case domain.DifficultyAdvanced:
		params.Set("difficulty", "expert")
	}
	uri.RawQuery = params.Encode()

	var items []apiExercise
	headers := map[string]string{"X-Api-Key": p.apiKey}
	if err := common.GetJSON(ctx, p.client, providerName, uri.String(), headers, &items); err != nil {
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

func toExercise(item apiExercise) (domain.Exercise, bool) {
	name := strings.TrimSpace(item.Name)
	slug := common.Slug(name)
	if slug == "" {
		return domain.Exercise{}, false
	}

	muscle := humanize(item.Muscle)
	category := common.InferCategory(item.Muscle)
	if category == common.CategoryOther && strings.EqualFold(item.Type, "cardio") {
		category = "cardio"
	}
	if category == common.CategoryOther && strings.EqualFold(item.Type, "stretching") {
		category = "mobility"
	}

	return domain.Exercise{
		ID:             common.RecordID(providerName, slug),
		Name:           name,
		Description:    common.CleanHTMLText(item.Instructions),
		Category:       category,
		PrimaryMuscles: domain.UnionFold([]string{muscle}),
		Equipment:      domain.UnionFold([]string{humanize(item.Equipment)}),
		Difficulty:     common.ClassifyDifficulty(item.Difficulty),
		Sources:        []string{providerName},
		ProviderHint:   providerName,
	}, true
}

// humanize turns API tokens such as "lower_back" into "lower back".
func humanize(token string) string {
	return strings.TrimSpace(strings.ReplaceAll(token, "_", " "))
}
