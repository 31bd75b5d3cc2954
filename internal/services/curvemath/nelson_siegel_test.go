package curvemath

import (
	"math"
	"testing"

	"YieldPull/internal/domain/models"
)

func TestNelsonSiegelValueAtZero(t *testing.T) {
	p := models.NelsonSiegelParams{Beta0: 3, Beta1: -1, Beta2: 0.5, Lambda: 1.5}
	if got := NelsonSiegelValue(p, 0); math.Abs(got-2) > 1e-12 {
		t.Fatalf("y(0) = %v, want beta0+beta1 = 2", got)
	}
	// continuity near zero
	if got := NelsonSiegelValue(p, 1e-9); math.Abs(got-2) > 1e-6 {
		t.Fatalf("y(eps) = %v, expected close to 2", got)
	}
}

func TestNelsonSiegelLongEndLevel(t *testing.T) {
	p := models.NelsonSiegelParams{Beta0: 3, Beta1: -1, Beta2: 0.5, Lambda: 1.5}
	if got := NelsonSiegelValue(p, 1e6); math.Abs(got-3) > 1e-3 {
		t.Fatalf("y(inf) = %v, want beta0 = 3", got)
	}
}

func TestFitNelsonSiegelFallback(t *testing.T) {
	p := FitNelsonSiegel(pts(1, 2.0, 5, 3.0))
	if math.Abs(p.Beta0-2.5) > 1e-12 || p.Beta1 != 0 || p.Beta2 != 0 {
		t.Fatalf("unexpected fallback params: %+v", p)
	}
	if p.Lambda != 1.5 {
		t.Fatalf("fallback lambda = %v, want 1.5", p.Lambda)
	}
}

func TestFitNelsonSiegelBeatsFlatBaseline(t *testing.T) {
	// smooth monotonic synthetic curve
	known := pts(0.25, 0.8, 1, 1.4, 2, 1.9, 5, 2.6, 10, 3.1, 30, 3.4)

	mean := 0.0
	for _, p := range known {
		mean += p.Rate
	}
	mean /= float64(len(known))

	fitted := FitNelsonSiegel(known)
	var mseFit, mseFlat float64
	for _, p := range known {
		e := NelsonSiegelValue(fitted, p.Years) - p.Rate
		mseFit += e * e
		f := mean - p.Rate
		mseFlat += f * f
	}
	if !(mseFit < mseFlat) {
		t.Fatalf("fit MSE %v not below flat baseline %v", mseFit, mseFlat)
	}
}

func TestFitNelsonSiegelStepsWhenNearConverged(t *testing.T) {
	// Rates sit a hair off a flat curve, so the heuristic start is already
	// below the stopping tolerance. The fit must still apply the gradient
	// step it computed on that pass rather than returning the start values.
	known := pts(1, 4.005, 2, 3.995, 5, 4.005, 10, 3.995)

	short, long := known[0].Rate, known[len(known)-1].Rate
	mid := known[len(known)/2].Rate
	start := models.NelsonSiegelParams{
		Beta0:  long,
		Beta1:  short - long,
		Beta2:  2*mid - short - long,
		Lambda: 1.5,
	}

	fitted := FitNelsonSiegel(known)
	if fitted == start {
		t.Fatalf("fit returned the untouched starting point: %+v", fitted)
	}

	var sseFit, sseStart float64
	for _, p := range known {
		e := NelsonSiegelValue(fitted, p.Years) - p.Rate
		sseFit += e * e
		s := NelsonSiegelValue(start, p.Years) - p.Rate
		sseStart += s * s
	}
	if sseFit > sseStart {
		t.Fatalf("fit SSE %v worse than starting point %v", sseFit, sseStart)
	}
}

func TestFitNelsonSiegelLambdaFloor(t *testing.T) {
	// steep short end drags lambda down; the floor must hold
	known := pts(0.02, 5.0, 0.08, 1.0, 0.25, 0.5, 1, 0.4, 10, 0.4)
	p := FitNelsonSiegel(known)
	if p.Lambda < 0.1 {
		t.Fatalf("lambda %v below floor", p.Lambda)
	}
}

func TestNelsonSiegelEstimatorFinite(t *testing.T) {
	known := pts(1, 2.0, 5, 3.0, 10, 3.5)
	got := NewNelsonSiegelEstimator().Estimate(known, []float64{2, 7})
	for i, v := range got {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("target %d produced non-finite %v", i, v)
		}
	}
}
