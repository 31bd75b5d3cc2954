package curvemath

import (
	"math"

	"YieldPull/internal/domain/models"
	domsvc "YieldPull/internal/domain/service"
)

// naturalSpline holds knots and precomputed second derivatives M with the
// natural boundary condition M[0] = M[n-1] = 0.
type naturalSpline struct {
	xs []float64
	ys []float64
	m  []float64
}

// buildNaturalSpline solves the tridiagonal normal equations of a natural
// cubic spline with the Thomas algorithm. Requires n >= 3 knots with strictly
// increasing xs.
func buildNaturalSpline(xs, ys []float64) *naturalSpline {
	n := len(xs)
	h := make([]float64, n-1)
	for i := 0; i < n-1; i++ {
		h[i] = xs[i+1] - xs[i]
	}

	alpha := make([]float64, n)
	for i := 1; i < n-1; i++ {
		alpha[i] = 3*(ys[i+1]-ys[i])/h[i] - 3*(ys[i]-ys[i-1])/h[i-1]
	}

	// forward elimination
	l := make([]float64, n)
	mu := make([]float64, n)
	z := make([]float64, n)
	l[0] = 1
	for i := 1; i < n-1; i++ {
		l[i] = 2*(xs[i+1]-xs[i-1]) - h[i-1]*mu[i-1]
		mu[i] = h[i] / l[i]
		z[i] = (alpha[i] - h[i-1]*z[i-1]) / l[i]
	}
	l[n-1] = 1

	// back substitution
	m := make([]float64, n)
	for i := n - 2; i >= 1; i-- {
		m[i] = z[i] - mu[i]*m[i+1]
	}
	return &naturalSpline{xs: xs, ys: ys, m: m}
}

// eval evaluates the spline at x. Targets below the first knot use the first
// segment and targets above the last use the last one; the orchestrator only
// requests in-range targets, so the clamp is a guard, not a policy.
func (s *naturalSpline) eval(x float64) float64 {
	n := len(s.xs)
	i := n - 2
	for j := 0; j+1 < n; j++ {
		if x <= s.xs[j+1] {
			i = j
			break
		}
	}
	h := s.xs[i+1] - s.xs[i]
	if h == 0 {
		return s.ys[i]
	}
	a := (s.xs[i+1] - x) / h
	b := (x - s.xs[i]) / h
	return a*s.ys[i] + b*s.ys[i+1] +
		((a*a*a-a)*s.m[i]+(b*b*b-b)*s.m[i+1])*h*h/6
}

// CubicSplineEstimator fills gaps with a natural cubic spline over all known
// points. With exactly two points no curvature information exists and it
// degrades to linear interpolation.
type CubicSplineEstimator struct{}

func NewCubicSplineEstimator() *CubicSplineEstimator { return &CubicSplineEstimator{} }

func (e *CubicSplineEstimator) Name() string { return "cubic-spline" }

func (e *CubicSplineEstimator) Estimate(points []models.RatePoint, targets []float64) []float64 {
	out := make([]float64, len(targets))
	if len(points) < 2 {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}
	xs, ys := splitXY(points)
	if len(points) == 2 {
		for i, t := range targets {
			out[i] = Lerp(t, xs, ys)
		}
		return out
	}
	sp := buildNaturalSpline(xs, ys)
	for i, t := range targets {
		out[i] = sp.eval(t)
	}
	return out
}

var _ domsvc.CurveEstimator = (*CubicSplineEstimator)(nil)
