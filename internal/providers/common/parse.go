package common

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"fitstream/exerciseservice/internal/domain"
)

var (
	tagPattern   = regexp.MustCompile(`<[^>]+>`)
	blockPattern = regexp.MustCompile(`(?i)</?(p|br|li|ul|ol|div)[^>]*>`)
)

func CleanHTMLText(raw string) string {
	value := strings.TrimSpace(raw)
	value = html.UnescapeString(value)
	value = blockPattern.ReplaceAllString(value, " ")
	value = tagPattern.ReplaceAllString(value, " ")
	value = strings.Join(strings.Fields(value), " ")
	return value
}

// ClassifyDifficulty maps free-form upstream level strings onto the
// difficulty enum. Unrecognized values are unknown.
func ClassifyDifficulty(raw string) domain.Difficulty {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return domain.DifficultyUnknown
	}
	switch {
	case containsAny(value, "beginner", "novice", "easy", "basic", "principiante"):
		return domain.DifficultyBeginner
	case containsAny(value, "intermediate", "medium", "moderate", "intermedio"):
		return domain.DifficultyIntermediate
	case containsAny(value, "advanced", "expert", "hard", "avanzado"):
		return domain.DifficultyAdvanced
	default:
		return domain.DifficultyUnknown
	}
}

// Slug lowercases raw and collapses every run of non-alphanumerics into a
// single dash.
func Slug(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(raw)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// RecordID builds the provider-prefixed record id.
func RecordID(provider, nativeID string) string {
	return provider + ":" + strings.TrimSpace(nativeID)
}

// MediaTypeForURL guesses the media type from a file extension.
func MediaTypeForURL(raw string) domain.MediaType {
	lower := strings.ToLower(raw)
	if idx := strings.IndexAny(lower, "?#"); idx >= 0 {
		lower = lower[:idx]
	}
	switch {
	case strings.HasSuffix(lower, ".gif"):
		return domain.MediaGIF
	case strings.HasSuffix(lower, ".mp4"), strings.HasSuffix(lower, ".webm"), strings.HasSuffix(lower, ".mov"):
		return domain.MediaVideo
	case strings.HasSuffix(lower, ".glb"), strings.HasSuffix(lower, ".gltf"):
		return domain.MediaModel3D
	default:
		return domain.MediaImage
	}
}

func containsAny(value string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(value, needle) {
			return true
		}
	}
	return false
}
