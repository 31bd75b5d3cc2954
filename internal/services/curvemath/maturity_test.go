package curvemath

import (
	"math"
	"testing"

	"YieldPull/internal/domain/models"
)

func TestToYears(t *testing.T) {
	cases := []struct {
		label string
		want  float64
	}{
		{"10Y", 10},
		{"1Y", 1},
		{"3M", 0.25},
		{"6M", 0.5},
		{"1W", 1.0 / 52},
		{" 2y ", 2},
		{"9m", 0.75},
	}
	for _, c := range cases {
		got := ToYears(c.label)
		if math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("ToYears(%q) = %v, want %v", c.label, got, c.want)
		}
	}
}

func TestToYearsInvalid(t *testing.T) {
	for _, label := range []string{"abc", "", "Y10", "10", "1.5Y", "-1Y", "10D", "1 Y"} {
		if got := ToYears(label); !math.IsNaN(got) {
			t.Fatalf("ToYears(%q) = %v, want NaN", label, got)
		}
	}
}

func ptr(v float64) *float64 { return &v }

func TestKnownPointsSorted(t *testing.T) {
	curve := models.YieldCurve{Country: "DE", Rates: map[string]*float64{
		"10Y": ptr(3.5),
		"3M":  ptr(1.1),
		"1Y":  ptr(2.0),
		"5Y":  nil,
		"??":  ptr(9.9), // unparseable, must be dropped
	}}
	pts := KnownPoints(curve, []string{"10Y", "3M", "1Y", "5Y", "??"})
	if len(pts) != 3 {
		t.Fatalf("expected 3 points, got %d", len(pts))
	}
	for i := 1; i < len(pts); i++ {
		if pts[i-1].Years > pts[i].Years {
			t.Fatalf("points not sorted: %v", pts)
		}
	}
	if pts[0].Label != "3M" || pts[2].Label != "10Y" {
		t.Fatalf("unexpected order: %v", pts)
	}
}

func TestKnownPointsMergesAliasedMaturities(t *testing.T) {
	// "12M" and "1Y" are the same knot; feeding both to an estimator would
	// create a zero-width segment.
	curve := models.YieldCurve{Country: "DE", Rates: map[string]*float64{
		"12M": ptr(2.00),
		"1Y":  ptr(2.06),
		"5Y":  ptr(3.0),
	}}
	pts := KnownPoints(curve, []string{"12M", "1Y", "5Y"})
	if len(pts) != 2 {
		t.Fatalf("expected merged knots, got %v", pts)
	}
	if pts[0].Years != 1 || math.Abs(pts[0].Rate-2.03) > 1e-9 {
		t.Fatalf("merged knot = %+v, want years 1 rate 2.03", pts[0])
	}
	for i := 1; i < len(pts); i++ {
		if pts[i].Years <= pts[i-1].Years {
			t.Fatalf("knots not strictly increasing: %v", pts)
		}
	}
}

func TestResolveMaturitySet(t *testing.T) {
	a := models.YieldCurve{Country: "DE", Rates: map[string]*float64{"1Y": nil, "10Y": nil, "3M": nil}}
	b := models.YieldCurve{Country: "US", Rates: map[string]*float64{"1Y": nil, "2Y": nil, "bogus": nil}}
	labels := ResolveMaturitySet([]models.YieldCurve{a, b})
	want := []string{"3M", "1Y", "2Y", "10Y"}
	if len(labels) != len(want) {
		t.Fatalf("got %v, want %v", labels, want)
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Fatalf("got %v, want %v", labels, want)
		}
	}
}
