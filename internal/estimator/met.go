package estimator

import (
	"strings"

	edlib "github.com/hbollon/go-edlib"
)

// metValues maps known activity tokens to MET (metabolic equivalent of
// task) multipliers. Russian and English forms, including the inflections
// users actually type, share one table.
var metValues = map[string]float64{
	"ходьба":  3.5,
	"walking": 3.5,
	"walk":    3.5,

	"бег":     8.0,
	"бегать":  8.0,
	"бегал":   8.0,
	"побегал": 8.0,
	"running": 8.0,
	"run":     8.0,

	"плавание": 6.0,
	"плавать":  6.0,
	"плавал":   6.0,
	"поплавал": 6.0,
	"swimming": 6.0,
	"swim":     6.0,

	"велосипед": 7.0,
	"cycling":   7.0,
	"bike":      7.0,

	"йога": 2.5,
	"yoga": 2.5,

	"силовая":           5.0,
	"strength training": 5.0,
}

const (
	defaultMET       = 4.0
	similarityCutoff = 0.3
)

// closestActivity finds the known token most similar to the workout type.
// An exact (case-folded) hit wins outright; otherwise the highest
// Levenshtein similarity at or above the cutoff.
func closestActivity(workoutType string) (string, bool) {
	needle := strings.ToLower(strings.TrimSpace(workoutType))
	if _, ok := metValues[needle]; ok {
		return needle, true
	}

	var (
		best      string
		bestScore float32
	)
	for key := range metValues {
		score, err := edlib.StringsSimilarity(needle, key, edlib.Levenshtein)
		if err != nil {
			continue
		}
		if score > bestScore || (score == bestScore && key < best) {
			best, bestScore = key, score
		}
	}
	if bestScore >= similarityCutoff {
		return best, true
	}
	return "", false
}

// metCaloriesPerMinute is the standard MET burn formula.
func metCaloriesPerMinute(met, weightKG float64) float64 {
	return met * 3.5 * weightKG / 200
}
