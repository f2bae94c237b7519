package catalog

import (
	"net/url"
	"strings"

	"fitstream/exerciseservice/internal/domain"
)

// Display labels for the public response. Nothing else in the pipeline
// hard-codes presentation strings.
var levelLabels = map[domain.Difficulty]string{
	domain.DifficultyBeginner:     "Principiante",
	domain.DifficultyIntermediate: "Intermedio",
	domain.DifficultyAdvanced:     "Avanzado",
}

// LevelLabel returns the display label for d, or "" when unknown.
func LevelLabel(d domain.Difficulty) string {
	return levelLabels[d]
}

// DifficultyFromLabel accepts an enum value or a display label in any case.
func DifficultyFromLabel(raw string) domain.Difficulty {
	if d := domain.ParseDifficulty(raw); d != domain.DifficultyUnknown {
		return d
	}
	value := strings.TrimSpace(raw)
	for d, label := range levelLabels {
		if strings.EqualFold(label, value) {
			return d
		}
	}
	return domain.DifficultyUnknown
}

// Project maps a record onto the stable public item shape.
func Project(record domain.Exercise) domain.PublicItem {
	item := domain.PublicItem{
		ID:          record.ID,
		Name:        record.Name,
		Description: record.Description,
		Level:       LevelLabel(record.Difficulty),
		Provider:    record.ProviderHint,
		Images:      []string{},
	}
	if len(record.PrimaryMuscles) > 0 {
		item.Muscle = record.PrimaryMuscles[0]
	} else {
		item.Muscle = record.Category
	}
	if item.Provider == "" && len(record.Sources) > 0 {
		item.Provider = record.Sources[0]
	}

	for _, media := range record.Media {
		switch media.Type {
		case domain.MediaImage, domain.MediaGIF:
			if len(item.Images) == 0 {
				item.Images = append(item.Images, media.URL)
			}
		case domain.MediaVideo:
			if item.VideoURL == "" {
				item.VideoURL = media.URL
				item.YoutubeID = YoutubeID(media.URL)
			}
		}
	}
	return item
}

// ProjectResult shapes a paged result for callers.
func ProjectResult(result domain.PagedResult) domain.PublicResponse {
	items := make([]domain.PublicItem, 0, len(result.Items))
	for _, record := range result.Items {
		items = append(items, Project(record))
	}
	facets := result.Facets
	return domain.PublicResponse{
		OK:     true,
		Items:  items,
		Total:  result.Total,
		Page:   result.Page,
		Pages:  result.Pages,
		Facets: &facets,
		Note:   result.Note,
	}
}

// YoutubeID extracts a video id from a v= query parameter or a youtu.be
// short link. Other URLs yield "".
func YoutubeID(raw string) string {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	if id := parsed.Query().Get("v"); id != "" {
		return id
	}
	host := strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
	if host == "youtu.be" {
		segment := strings.Trim(parsed.Path, "/")
		if idx := strings.Index(segment, "/"); idx >= 0 {
			segment = segment[:idx]
		}
		return segment
	}
	return ""
}
