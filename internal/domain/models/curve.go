package models

// RatePoint is one known observation on a curve: a maturity label, its
// year-fraction, and the observed yield in percent (may be negative).
type RatePoint struct {
	Label string
	Years float64
	Rate  float64
}

// YieldCurve is one country's rate grid: every maturity label in the
// canonical set maps to a yield, or nil when not observed.
type YieldCurve struct {
	Country string
	Rates   map[string]*float64
}

// NewYieldCurve builds an empty curve with every label set to nil.
func NewYieldCurve(country string, labels []string) YieldCurve {
	rates := make(map[string]*float64, len(labels))
	for _, l := range labels {
		rates[l] = nil
	}
	return YieldCurve{Country: country, Rates: rates}
}

// Clone returns a deep copy; the engine never mutates its input.
func (c YieldCurve) Clone() YieldCurve {
	rates := make(map[string]*float64, len(c.Rates))
	for l, r := range c.Rates {
		if r == nil {
			rates[l] = nil
			continue
		}
		v := *r
		rates[l] = &v
	}
	return YieldCurve{Country: c.Country, Rates: rates}
}

// Rate returns the observed value for label, or (0, false) when missing.
func (c YieldCurve) Rate(label string) (float64, bool) {
	if r, ok := c.Rates[label]; ok && r != nil {
		return *r, true
	}
	return 0, false
}

// SetRate writes a value for label.
func (c YieldCurve) SetRate(label string, v float64) {
	c.Rates[label] = &v
}

// KnownCount returns the number of non-nil entries.
func (c YieldCurve) KnownCount() int {
	n := 0
	for _, r := range c.Rates {
		if r != nil {
			n++
		}
	}
	return n
}

// NelsonSiegelParams holds the four Nelson-Siegel term-structure parameters:
// level, slope, curvature and decay scale. Scratch values local to one fit.
type NelsonSiegelParams struct {
	Beta0  float64
	Beta1  float64
	Beta2  float64
	Lambda float64
}

// RateUpdate is one observed (country, maturity, rate) tick from the
// upstream feed. Timestamp is unix seconds.
type RateUpdate struct {
	Country   string
	Label     string
	Rate      float64
	Timestamp int64
}
