package curvemath

import (
	"math"

	"YieldPull/internal/domain/models"
	domsvc "YieldPull/internal/domain/service"
)

const (
	nsMaxIters     = 500
	nsLearningRate = 0.01
	nsGradEps      = 1e-4
	nsMSETolerance = 1e-4
	nsLambdaFloor  = 0.1
	nsLambdaInit   = 1.5
)

// NelsonSiegelValue evaluates the Nelson-Siegel model
//
//	y(t) = b0 + b1*(1-exp(-t/l))/(t/l) + b2*((1-exp(-t/l))/(t/l) - exp(-t/l))
//
// at year-fraction tau. y(0) = b0 + b1 by continuity.
func NelsonSiegelValue(p models.NelsonSiegelParams, tau float64) float64 {
	if tau <= 0 {
		return p.Beta0 + p.Beta1
	}
	x := tau / p.Lambda
	decay := math.Exp(-x)
	loading := (1 - decay) / x
	return p.Beta0 + p.Beta1*loading + p.Beta2*(loading-decay)
}

// FitNelsonSiegel fits the four parameters to the known points by gradient
// descent with central finite-difference gradients. With fewer than three
// points it returns the flat-curve fallback (level = mean yield).
func FitNelsonSiegel(points []models.RatePoint) models.NelsonSiegelParams {
	if len(points) < 3 {
		mean := 0.0
		for _, p := range points {
			mean += p.Rate
		}
		if len(points) > 0 {
			mean /= float64(len(points))
		}
		return models.NelsonSiegelParams{Beta0: mean, Lambda: nsLambdaInit}
	}

	short := points[0].Rate
	long := points[len(points)-1].Rate
	mid := points[len(points)/2].Rate
	params := models.NelsonSiegelParams{
		Beta0:  long,
		Beta1:  short - long,
		Beta2:  2*mid - short - long,
		Lambda: nsLambdaInit,
	}

	n := float64(len(points))
	for iter := 0; iter < nsMaxIters; iter++ {
		var sse float64
		var grad [4]float64
		for _, pt := range points {
			e := NelsonSiegelValue(params, pt.Years) - pt.Rate
			sse += e * e
			for k := 0; k < 4; k++ {
				up := perturb(params, k, nsGradEps)
				dn := perturb(params, k, -nsGradEps)
				d := (NelsonSiegelValue(up, pt.Years) - NelsonSiegelValue(dn, pt.Years)) / (2 * nsGradEps)
				grad[k] += 2 * e * d
			}
		}
		params.Beta0 -= nsLearningRate * grad[0] / n
		params.Beta1 -= nsLearningRate * grad[1] / n
		params.Beta2 -= nsLearningRate * grad[2] / n
		params.Lambda -= nsLearningRate * grad[3] / n
		if params.Lambda < nsLambdaFloor {
			params.Lambda = nsLambdaFloor
		}
		if sse/n < nsMSETolerance {
			break
		}
	}
	return params
}

func perturb(p models.NelsonSiegelParams, k int, eps float64) models.NelsonSiegelParams {
	switch k {
	case 0:
		p.Beta0 += eps
	case 1:
		p.Beta1 += eps
	case 2:
		p.Beta2 += eps
	default:
		p.Lambda += eps
	}
	return p
}

// NelsonSiegelEstimator fits the parametric term structure to all known
// points and evaluates it at each target. The fitted curve could extrapolate,
// but the orchestrator restricts targets to the known range for consistency
// with the other estimators.
type NelsonSiegelEstimator struct{}

func NewNelsonSiegelEstimator() *NelsonSiegelEstimator { return &NelsonSiegelEstimator{} }

func (e *NelsonSiegelEstimator) Name() string { return "nelson-siegel" }

func (e *NelsonSiegelEstimator) Estimate(points []models.RatePoint, targets []float64) []float64 {
	out := make([]float64, len(targets))
	if len(points) < 2 {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}
	params := FitNelsonSiegel(points)
	for i, t := range targets {
		out[i] = NelsonSiegelValue(params, t)
	}
	return out
}

var _ domsvc.CurveEstimator = (*NelsonSiegelEstimator)(nil)
