package common

import "strings"

const CategoryOther = "other"

type categoryRule struct {
	category string
	keywords []string
}

// Rules are checked in order; the first category with a matching keyword wins.
var categoryRules = []categoryRule{
	{"chest", []string{"chest", "pectoral", "pecs"}},
	{"back", []string{"back", "lats", "latissimus", "trapezius", "traps", "rhomboid", "lower_back", "middle_back"}},
	{"legs", []string{"quad", "hamstring", "glute", "calves", "calf", "adductor", "abductor", "leg", "thigh"}},
	{"shoulders", []string{"shoulder", "deltoid", "delts"}},
	{"arms", []string{"bicep", "tricep", "forearm", "brachialis", "arm"}},
	{"abs", []string{"abs", "abdominal", "core", "oblique", "waist"}},
	{"mobility", []string{"stretch", "mobility", "neck", "flexibility", "yoga"}},
	{"cardio", []string{"cardio", "cardiovascular", "conditioning", "plyometric"}},
}

// InferCategory classifies an exercise from its muscle (or body part)
// keywords. It returns CategoryOther when nothing matches.
func InferCategory(hints ...string) string {
	tokens := make([]string, 0, len(hints))
	for _, hint := range hints {
		value := strings.ToLower(strings.TrimSpace(hint))
		if value != "" {
			tokens = append(tokens, value)
		}
	}
	for _, rule := range categoryRules {
		for _, token := range tokens {
			for _, keyword := range rule.keywords {
				if strings.Contains(token, keyword) {
					return rule.category
				}
			}
		}
	}
	return CategoryOther
}
