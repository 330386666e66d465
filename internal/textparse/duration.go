// Package textparse pulls numeric quantities out of free-text workout
// descriptions. It is a best-effort heuristic used when structured
// extraction fails, not a parser.
package textparse

import (
	"regexp"
	"strconv"
	"strings"
)

// unitFamily ties a unit-word pattern to its minute conversion factor, so a
// match can never be converted with another family's factor.
type unitFamily struct {
	re       *regexp.Regexp
	toMinute float64
}

// Unit words cover Russian and English variants. Longer alternatives come
// first so the single-letter forms cannot shadow them.
var families = []unitFamily{
	{regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(?:минут[ыу]?|мин|minutes?|mins?)`), 1},
	{regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(?:часов|часа|час|ч|hours?|hrs?|h)`), 60},
	{regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(?:секунд[ыу]?|сек|с|seconds?|secs?|s)`), 1.0 / 60},
}

// DurationMinutes scans text case-insensitively for "<number> <unit>" pairs,
// converts every match to minutes and returns the sum. Multiple matches
// accumulate ("run 10 minutes then walk 1 hour" gives 70). The second return
// is false when no unit-bearing number was found.
func DurationMinutes(text string) (float64, bool) {
	lower := strings.ToLower(text)

	var total float64
	for _, f := range families {
		for _, m := range f.re.FindAllStringSubmatch(lower, -1) {
			v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
			if err != nil {
				continue
			}
			total += v * f.toMinute
		}
	}
	if total <= 0 {
		return 0, false
	}
	return total, true
}
