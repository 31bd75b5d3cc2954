package curvemath

import (
	"math"
	"testing"

	"YieldPull/internal/domain/models"
)

func pts(pairs ...float64) []models.RatePoint {
	out := make([]models.RatePoint, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, models.RatePoint{Years: pairs[i], Rate: pairs[i+1]})
	}
	return out
}

func TestLerpAtKnots(t *testing.T) {
	xs := []float64{1, 5, 10}
	ys := []float64{2.0, 3.0, 3.5}
	for i, x := range xs {
		if got := Lerp(x, xs, ys); math.Abs(got-ys[i]) > 1e-9 {
			t.Fatalf("Lerp(%v) = %v, want %v", x, got, ys[i])
		}
	}
}

func TestLerpMidpoints(t *testing.T) {
	xs := []float64{1, 5, 10}
	ys := []float64{2.0, 3.0, 3.5}
	if got := Lerp(2, xs, ys); math.Abs(got-2.25) > 1e-9 {
		t.Fatalf("Lerp(2) = %v, want 2.25", got)
	}
	if got := Lerp(7, xs, ys); math.Abs(got-3.2) > 1e-9 {
		t.Fatalf("Lerp(7) = %v, want 3.2", got)
	}
}

func TestLinearEstimatorInsufficient(t *testing.T) {
	e := NewLinearEstimator()
	got := e.Estimate(pts(1, 2.0), []float64{1.5})
	if !math.IsNaN(got[0]) {
		t.Fatalf("expected NaN with one known point, got %v", got[0])
	}
}

func TestSplineInterpolatesKnots(t *testing.T) {
	// spline must reproduce its knots exactly
	e := NewCubicSplineEstimator()
	known := pts(0.25, 1.1, 1, 2.0, 5, 3.0, 10, 3.5)
	got := e.Estimate(known, []float64{0.25, 1, 5, 10})
	want := []float64{1.1, 2.0, 3.0, 3.5}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("knot %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSplineMatchesLinearAtTwoPoints(t *testing.T) {
	known := pts(1, 2.0, 10, 3.5)
	targets := []float64{2, 4, 7, 9}
	spline := NewCubicSplineEstimator().Estimate(known, targets)
	linear := NewLinearEstimator().Estimate(known, targets)
	for i := range targets {
		if math.Abs(spline[i]-linear[i]) > 1e-12 {
			t.Fatalf("target %v: spline %v != linear %v", targets[i], spline[i], linear[i])
		}
	}
}

func TestSplineRecoversLine(t *testing.T) {
	// a natural spline through collinear points is the line itself
	known := pts(1, 1.0, 2, 2.0, 3, 3.0, 4, 4.0)
	got := NewCubicSplineEstimator().Estimate(known, []float64{1.5, 2.5, 3.25})
	want := []float64{1.5, 2.5, 3.25}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("got %v, want %v", got[i], want[i])
		}
	}
}

func TestSplineSecondDerivativeSymmetry(t *testing.T) {
	// symmetric input, symmetric interpolant
	known := pts(0, 0.0, 1, 1.0, 2, 0.0)
	e := NewCubicSplineEstimator()
	got := e.Estimate(known, []float64{0.5, 1.5})
	if math.Abs(got[0]-got[1]) > 1e-9 {
		t.Fatalf("expected symmetric values, got %v and %v", got[0], got[1])
	}
}

func TestSplineInsufficientPoints(t *testing.T) {
	got := NewCubicSplineEstimator().Estimate(pts(1, 2.0), []float64{1})
	if !math.IsNaN(got[0]) {
		t.Fatalf("expected NaN, got %v", got[0])
	}
}
