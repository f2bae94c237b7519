package demo

import (
	"context"

	"fitstream/exerciseservice/internal/domain"
)

const providerName = "demo"

// Provider serves a fixed built-in pool. It never fails and needs no network.
type Provider struct{}

func NewProvider() *Provider {
	return &Provider{}
}

func (p *Provider) Name() string {
	return providerName
}

func (p *Provider) Info() domain.ProviderInfo {
	return domain.ProviderInfo{
		Name:    providerName,
		Label:   "Built-in demo pool",
		Kind:    "fallback",
		Enabled: true,
	}
}

// Fetch returns a copy of the whole pool; filtering happens downstream.
func (p *Provider) Fetch(ctx context.Context, query domain.Query) ([]domain.Exercise, error) {
	out := make([]domain.Exercise, 0, len(pool))
	for _, item := range pool {
		record := item
		record.ID = "demo:" + item.ID
		record.PrimaryMuscles = append([]string(nil), item.PrimaryMuscles...)
		record.Equipment = append([]string(nil), item.Equipment...)
		record.Sources = []string{providerName}
		record.ProviderHint = providerName
		out = append(out, record)
	}
	return out, nil
}

var pool = []domain.Exercise{
	{
		ID:             "push-up",
		Name:           "Push-Up",
		Description:    "Start in a high plank with hands under the shoulders. Lower the chest to the floor and press back up.",
		Category:       "chest",
		PrimaryMuscles: []string{"Chest", "Triceps"},
		Difficulty:     domain.DifficultyBeginner,
	},
	{
		ID:             "plank",
		Name:           "Plank",
		Description:    "Hold a straight line from head to heels on the forearms, bracing the core.",
		Category:       "abs",
		PrimaryMuscles: []string{"Abdominals"},
		Difficulty:     domain.DifficultyBeginner,
	},
	{
		ID:             "bodyweight-squat",
		Name:           "Bodyweight Squat",
		Description:    "Sit the hips back and down until the thighs are parallel, then stand tall.",
		Category:       "legs",
		PrimaryMuscles: []string{"Quads", "Glutes"},
		Difficulty:     domain.DifficultyBeginner,
	},
	{
		ID:             "walking-lunge",
		Name:           "Walking Lunge",
		Description:    "Step forward into a lunge, lower the back knee, and drive through the front heel into the next step.",
		Category:       "legs",
		PrimaryMuscles: []string{"Quads", "Glutes", "Hamstrings"},
		Difficulty:     domain.DifficultyIntermediate,
	},
	{
		ID:             "pull-up",
		Name:           "Pull-Up",
		Description:    "Hang from a bar with an overhand grip and pull until the chin clears the bar.",
		Category:       "back",
		PrimaryMuscles: []string{"Lats", "Biceps"},
		Equipment:      []string{"Pull-up bar"},
		Difficulty:     domain.DifficultyAdvanced,
	},
	{
		ID:             "dumbbell-row",
		Name:           "Dumbbell Row",
		Description:    "Brace one hand on a bench and row the dumbbell toward the hip.",
		Category:       "back",
		PrimaryMuscles: []string{"Lats", "Middle back"},
		Equipment:      []string{"Dumbbell", "Bench"},
		Difficulty:     domain.DifficultyIntermediate,
	},
	{
		ID:             "overhead-press",
		Name:           "Overhead Press",
		Description:    "Press the bar from the front of the shoulders to lockout overhead.",
		Category:       "shoulders",
		PrimaryMuscles: []string{"Shoulders", "Triceps"},
		Equipment:      []string{"Barbell"},
		Difficulty:     domain.DifficultyIntermediate,
	},
	{
		ID:             "biceps-curl",
		Name:           "Biceps Curl",
		Description:    "Curl the dumbbells with elbows pinned to the sides.",
		Category:       "arms",
		PrimaryMuscles: []string{"Biceps"},
		Equipment:      []string{"Dumbbell"},
		Difficulty:     domain.DifficultyBeginner,
	},
	{
		ID:             "bench-dip",
		Name:           "Bench Dip",
		Description:    "With hands on a bench behind you, bend the elbows to lower the hips and press back up.",
		Category:       "arms",
		PrimaryMuscles: []string{"Triceps"},
		Equipment:      []string{"Bench"},
		Difficulty:     domain.DifficultyBeginner,
	},
	{
		ID:             "deadlift",
		Name:           "Deadlift",
		Description:    "Hinge at the hips with a flat back and lift the bar from the floor to standing.",
		Category:       "back",
		PrimaryMuscles: []string{"Hamstrings", "Glutes", "Lower back"},
		Equipment:      []string{"Barbell"},
		Difficulty:     domain.DifficultyAdvanced,
	},
	{
		ID:          "jumping-jacks",
		Name:        "Jumping Jacks",
		Description: "Jump the feet wide while raising the arms overhead, then return.",
		Category:    "cardio",
		Difficulty:  domain.DifficultyBeginner,
	},
	{
		ID:             "cat-cow",
		Name:           "Cat-Cow Stretch",
		Description:    "On all fours, alternate between rounding and arching the spine with the breath.",
		Category:       "mobility",
		PrimaryMuscles: []string{"Lower back"},
	},
}
