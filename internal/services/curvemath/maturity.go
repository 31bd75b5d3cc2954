package curvemath

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"YieldPull/internal/domain/models"
)

var maturityRe = regexp.MustCompile(`^(\d+)([WMY])$`)

// ToYears converts a maturity label to a year-fraction: "3M" -> 0.25,
// "1W" -> 1/52, "10Y" -> 10. Case and surrounding whitespace are ignored.
// Returns NaN for anything else; callers must exclude such labels from both
// known and target sets.
func ToYears(label string) float64 {
	m := maturityRe.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(label)))
	if m == nil {
		return math.NaN()
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return math.NaN()
	}
	switch m[2] {
	case "W":
		return n / 52
	case "M":
		return n / 12
	default:
		return n
	}
}

// KnownPoints extracts the observed, parseable points of a curve restricted
// to labels, sorted ascending by year-fraction. Unparseable labels are
// dropped. Labels that resolve to the same year-fraction ("12M" and "1Y")
// are merged into one knot holding their mean rate: estimators require
// strictly increasing knots, and a zero-width segment would poison the
// spline solve with divisions by zero.
func KnownPoints(curve models.YieldCurve, labels []string) []models.RatePoint {
	out := make([]models.RatePoint, 0, len(labels))
	for _, l := range labels {
		rate, ok := curve.Rate(l)
		if !ok {
			continue
		}
		yrs := ToYears(l)
		if math.IsNaN(yrs) {
			continue
		}
		out = append(out, models.RatePoint{Label: l, Years: yrs, Rate: rate})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Years < out[j].Years })

	merged := out[:0]
	dup := 1
	for _, p := range out {
		if n := len(merged); n > 0 && p.Years == merged[n-1].Years {
			dup++
			merged[n-1].Rate += (p.Rate - merged[n-1].Rate) / float64(dup)
			continue
		}
		merged = append(merged, p)
		dup = 1
	}
	return merged
}

// ResolveMaturitySet returns the union of parseable maturity labels across
// curves, deduplicated and sorted chronologically by year-fraction.
func ResolveMaturitySet(curves []models.YieldCurve) []string {
	seen := make(map[string]float64)
	for _, c := range curves {
		for l := range c.Rates {
			if _, ok := seen[l]; ok {
				continue
			}
			if yrs := ToYears(l); !math.IsNaN(yrs) {
				seen[l] = yrs
			}
		}
	}
	labels := make([]string, 0, len(seen))
	for l := range seen {
		labels = append(labels, l)
	}
	sort.SliceStable(labels, func(i, j int) bool { return seen[labels[i]] < seen[labels[j]] })
	return labels
}
