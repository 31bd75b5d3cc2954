package usecase

import (
	"math"
	"testing"

	"YieldPull/internal/domain/models"
	domrepo "YieldPull/internal/domain/repository"
)

func ptr(v float64) *float64 { return &v }

var allLabels = []string{"1Y", "2Y", "5Y", "7Y", "10Y", "20Y"}

func sparseCurve() models.YieldCurve {
	return models.YieldCurve{Country: "DE", Rates: map[string]*float64{
		"1Y":  ptr(2.00),
		"2Y":  nil,
		"5Y":  ptr(3.00),
		"7Y":  nil,
		"10Y": ptr(3.50),
		"20Y": nil,
	}}
}

func TestBootstrapLinearEndToEnd(t *testing.T) {
	b := NewCurveBootstrapper(nil)
	in := sparseCurve()
	out := b.Bootstrap(in, allLabels, domrepo.MethodLinear)

	want := map[string]float64{"1Y": 2.00, "2Y": 2.25, "5Y": 3.00, "7Y": 3.20, "10Y": 3.50}
	for label, w := range want {
		got, ok := out.Rate(label)
		if !ok {
			t.Fatalf("%s missing in output", label)
		}
		if math.Abs(got-w) > 1e-9 {
			t.Fatalf("%s = %v, want %v", label, got, w)
		}
	}
	if _, ok := out.Rate("20Y"); ok {
		t.Fatalf("20Y is beyond the known range and must stay null")
	}
}

func TestBootstrapPreservesKnownValues(t *testing.T) {
	b := NewCurveBootstrapper(nil)
	in := sparseCurve()
	for _, m := range []domrepo.Method{domrepo.MethodLinear, domrepo.MethodCubicSpline, domrepo.MethodNelsonSiegel} {
		out := b.Bootstrap(in, allLabels, m)
		for _, label := range []string{"1Y", "5Y", "10Y"} {
			want, _ := in.Rate(label)
			got, ok := out.Rate(label)
			if !ok || got != want {
				t.Fatalf("method %s: known %s changed from %v to %v", m, label, want, got)
			}
		}
	}
}

func TestBootstrapDoesNotMutateInput(t *testing.T) {
	b := NewCurveBootstrapper(nil)
	in := sparseCurve()
	_ = b.Bootstrap(in, allLabels, domrepo.MethodCubicSpline)
	if in.Rates["2Y"] != nil || in.Rates["7Y"] != nil || in.Rates["20Y"] != nil {
		t.Fatalf("input curve was mutated: %+v", in.Rates)
	}
}

func TestBootstrapInsufficientData(t *testing.T) {
	b := NewCurveBootstrapper(nil)
	in := models.YieldCurve{Country: "DE", Rates: map[string]*float64{
		"1Y": ptr(2.00), "5Y": nil, "10Y": nil,
	}}
	out := b.Bootstrap(in, []string{"1Y", "5Y", "10Y"}, domrepo.MethodLinear)
	for label, r := range in.Rates {
		got := out.Rates[label]
		if (r == nil) != (got == nil) {
			t.Fatalf("%s changed on insufficient data", label)
		}
		if r != nil && *got != *r {
			t.Fatalf("%s value changed on insufficient data", label)
		}
	}
}

func TestBootstrapNoExtrapolation(t *testing.T) {
	b := NewCurveBootstrapper(nil)
	in := models.YieldCurve{Country: "DE", Rates: map[string]*float64{
		"3M": nil, "1Y": ptr(2.00), "5Y": ptr(3.00), "10Y": ptr(3.50), "30Y": nil,
	}}
	labels := []string{"3M", "1Y", "5Y", "10Y", "30Y"}
	for _, m := range []domrepo.Method{domrepo.MethodLinear, domrepo.MethodCubicSpline, domrepo.MethodNelsonSiegel} {
		out := b.Bootstrap(in, labels, m)
		if _, ok := out.Rate("3M"); ok {
			t.Fatalf("method %s extrapolated below the known range", m)
		}
		if _, ok := out.Rate("30Y"); ok {
			t.Fatalf("method %s extrapolated above the known range", m)
		}
	}
}

func TestBootstrapSplineEqualsLinearAtTwoPoints(t *testing.T) {
	b := NewCurveBootstrapper(nil)
	in := models.YieldCurve{Country: "DE", Rates: map[string]*float64{
		"1Y": ptr(2.00), "2Y": nil, "5Y": nil, "10Y": ptr(3.50),
	}}
	labels := []string{"1Y", "2Y", "5Y", "10Y"}
	lin := b.Bootstrap(in, labels, domrepo.MethodLinear)
	spl := b.Bootstrap(in, labels, domrepo.MethodCubicSpline)
	for _, l := range labels {
		lv, lok := lin.Rate(l)
		sv, sok := spl.Rate(l)
		if lok != sok || (lok && lv != sv) {
			t.Fatalf("%s: linear %v/%v != spline %v/%v", l, lv, lok, sv, sok)
		}
	}
}

func TestBootstrapRoundsToTwoDecimals(t *testing.T) {
	b := NewCurveBootstrapper(nil)
	in := models.YieldCurve{Country: "DE", Rates: map[string]*float64{
		"1Y": ptr(2.00), "2Y": nil, "4Y": ptr(3.00),
	}}
	out := b.Bootstrap(in, []string{"1Y", "2Y", "4Y"}, domrepo.MethodLinear)
	got, ok := out.Rate("2Y")
	if !ok {
		t.Fatalf("2Y not filled")
	}
	// 2.00 + 1*(1.00/3) = 2.3333... -> 2.33
	if got != 2.33 {
		t.Fatalf("2Y = %v, want 2.33", got)
	}
}

func TestBootstrapSkipsUnparseableLabels(t *testing.T) {
	b := NewCurveBootstrapper(nil)
	in := models.YieldCurve{Country: "DE", Rates: map[string]*float64{
		"1Y": ptr(2.00), "abc": nil, "5Y": ptr(3.00),
	}}
	out := b.Bootstrap(in, []string{"1Y", "abc", "5Y"}, domrepo.MethodLinear)
	if _, ok := out.Rate("abc"); ok {
		t.Fatalf("unparseable label must stay null")
	}
}

func TestBootstrapAliasedMaturitiesStillFill(t *testing.T) {
	// "12M" and "1Y" resolve to the same year-fraction. The duplicate knot
	// must not poison the estimators; in-range gaps still get filled.
	b := NewCurveBootstrapper(nil)
	in := models.YieldCurve{Country: "DE", Rates: map[string]*float64{
		"12M": ptr(2.00),
		"1Y":  ptr(2.05),
		"2Y":  nil,
		"5Y":  ptr(3.00),
		"10Y": ptr(3.50),
	}}
	labels := []string{"12M", "1Y", "2Y", "5Y", "10Y"}
	for _, m := range []domrepo.Method{domrepo.MethodLinear, domrepo.MethodCubicSpline, domrepo.MethodNelsonSiegel} {
		out := b.Bootstrap(in, labels, m)
		got, ok := out.Rate("2Y")
		if !ok {
			t.Fatalf("method %s: 2Y left null", m)
		}
		if math.IsNaN(got) || got < 1.5 || got > 3.5 {
			t.Fatalf("method %s: 2Y = %v, outside plausible range", m, got)
		}
		for _, l := range []string{"12M", "1Y", "5Y", "10Y"} {
			want, _ := in.Rate(l)
			if v, ok := out.Rate(l); !ok || v != want {
				t.Fatalf("method %s: known %s changed from %v to %v", m, l, want, v)
			}
		}
	}
}

func TestBootstrapAllPreservesOrder(t *testing.T) {
	b := NewCurveBootstrapper(nil)
	curves := []models.YieldCurve{
		sparseCurve(),
		{Country: "US", Rates: map[string]*float64{"1Y": ptr(4.00), "2Y": nil, "5Y": ptr(4.40), "7Y": nil, "10Y": ptr(4.20), "20Y": nil}},
		{Country: "JP", Rates: map[string]*float64{"1Y": ptr(0.10), "2Y": nil, "5Y": nil, "7Y": nil, "10Y": nil, "20Y": nil}},
	}
	out := b.BootstrapAll(curves, allLabels, domrepo.MethodLinear)
	if len(out) != 3 {
		t.Fatalf("expected 3 results, got %d", len(out))
	}
	for i, c := range curves {
		if out[i].Country != c.Country {
			t.Fatalf("order not preserved: %s at %d", out[i].Country, i)
		}
	}
	// JP has one known point: unchanged
	if out[2].KnownCount() != 1 {
		t.Fatalf("JP curve should be untouched, got %d known", out[2].KnownCount())
	}
}

func TestInterpolatedLabels(t *testing.T) {
	b := NewCurveBootstrapper(nil)
	in := sparseCurve()
	out := b.Bootstrap(in, allLabels, domrepo.MethodLinear)
	got := InterpolatedLabels(in, out, allLabels)
	want := []string{"2Y", "7Y"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
