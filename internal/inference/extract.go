package inference

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Payload is the union of the three reply shapes the model is prompted for.
// Pointer fields distinguish "absent" from zero.
type Payload struct {
	WorkoutType       *string  `json:"workout_type"`
	Minutes           *float64 `json:"minutes"`
	Calories          *float64 `json:"calories"`
	CaloriesPerMinute *float64 `json:"calories_per_minute"`
	Explanation       string   `json:"explanation"`
}

var (
	numberRe = regexp.MustCompile(`\d+(?:\.\d+)?`)

	// Calorie words the synthesis stage accepts, Russian and English.
	calorieKeywords = []string{"ккал", "калор", "kcal", "calor"}
)

// ExtractPayload reduces a possibly-noisy model reply to a Payload:
//  1. parse the whole reply as JSON;
//  2. parse the substring between the first '{' and the last '}';
//  3. if the text mentions calories, synthesize a payload from the first
//     numeric literal with the raw text as explanation.
//
// Returns ErrMalformed when all three stages fail.
func ExtractPayload(text string) (Payload, error) {
	var p Payload
	if err := json.Unmarshal([]byte(text), &p); err == nil {
		return p, nil
	}

	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		p = Payload{}
		if err := json.Unmarshal([]byte(text[start:end+1]), &p); err == nil {
			return p, nil
		}
	}

	if hasCalorieKeyword(text) {
		if m := numberRe.FindString(text); m != "" {
			n, err := strconv.ParseFloat(m, 64)
			if err == nil {
				return Payload{Calories: &n, Explanation: strings.TrimSpace(text)}, nil
			}
		}
	}

	return Payload{}, fmt.Errorf("%w: %q", ErrMalformed, truncate(text, 120))
}

func hasCalorieKeyword(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range calorieKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
