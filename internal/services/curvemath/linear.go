package curvemath

import (
	"math"

	"YieldPull/internal/domain/models"
	domsvc "YieldPull/internal/domain/service"
)

// Lerp linearly interpolates at x between the bracketing pair of (xs, ys).
// xs must be sorted ascending and x must lie within [xs[0], xs[len-1]];
// the orchestrator guarantees both. Returns NaN when no bracket exists.
func Lerp(x float64, xs, ys []float64) float64 {
	for i := 0; i+1 < len(xs); i++ {
		if xs[i] <= x && x <= xs[i+1] {
			h := xs[i+1] - xs[i]
			if h == 0 {
				return ys[i]
			}
			return ys[i] + (x-xs[i])*(ys[i+1]-ys[i])/h
		}
	}
	return math.NaN()
}

// LinearEstimator fills gaps by straight-line interpolation between the two
// known points bracketing each target.
type LinearEstimator struct{}

func NewLinearEstimator() *LinearEstimator { return &LinearEstimator{} }

func (e *LinearEstimator) Name() string { return "linear" }

func (e *LinearEstimator) Estimate(points []models.RatePoint, targets []float64) []float64 {
	out := make([]float64, len(targets))
	if len(points) < 2 {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}
	xs, ys := splitXY(points)
	for i, t := range targets {
		out[i] = Lerp(t, xs, ys)
	}
	return out
}

func splitXY(points []models.RatePoint) ([]float64, []float64) {
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.Years
		ys[i] = p.Rate
	}
	return xs, ys
}

var _ domsvc.CurveEstimator = (*LinearEstimator)(nil)
