package usecase

import (
	"math"
	"sync"

	"YieldPull/internal/domain/models"
	domrepo "YieldPull/internal/domain/repository"
	domsvc "YieldPull/internal/domain/service"
	"YieldPull/internal/services/curvemath"
)

// CurveBootstrapper fills the in-range gaps of a sparse yield curve using the
// selected estimator. Every call is a pure transformation: the input curve is
// never mutated and known values are never overwritten.
type CurveBootstrapper struct {
	linear  domsvc.CurveEstimator
	spline  domsvc.CurveEstimator
	ns      domsvc.CurveEstimator
	metrics domrepo.Metrics
}

func NewCurveBootstrapper(metrics domrepo.Metrics) *CurveBootstrapper {
	return &CurveBootstrapper{
		linear:  curvemath.NewLinearEstimator(),
		spline:  curvemath.NewCubicSplineEstimator(),
		ns:      curvemath.NewNelsonSiegelEstimator(),
		metrics: metrics,
	}
}

func (b *CurveBootstrapper) estimatorFor(method domrepo.Method) domsvc.CurveEstimator {
	switch method {
	case domrepo.MethodLinear:
		return b.linear
	case domrepo.MethodNelsonSiegel:
		return b.ns
	default:
		return b.spline
	}
}

// Bootstrap returns a copy of curve with every null label whose year-fraction
// lies within the known range filled in, rounded to 2 decimals. With fewer
// than 2 known points the input is returned unchanged (bootstrap skipped, not
// an error). Labels outside the known range or unparseable stay null.
func (b *CurveBootstrapper) Bootstrap(curve models.YieldCurve, labels []string, method domrepo.Method) models.YieldCurve {
	known := curvemath.KnownPoints(curve, labels)
	if len(known) < 2 {
		return curve.Clone()
	}

	minYears := known[0].Years
	maxYears := known[len(known)-1].Years

	targetLabels := make([]string, 0, len(labels))
	targetYears := make([]float64, 0, len(labels))
	for _, l := range labels {
		if _, ok := curve.Rate(l); ok {
			continue
		}
		yrs := curvemath.ToYears(l)
		if math.IsNaN(yrs) || yrs < minYears || yrs > maxYears {
			continue
		}
		targetLabels = append(targetLabels, l)
		targetYears = append(targetYears, yrs)
	}

	out := curve.Clone()
	if len(targetLabels) == 0 {
		return out
	}

	est := b.estimatorFor(method)
	values := est.Estimate(known, targetYears)

	filled := 0
	for i, l := range targetLabels {
		v := values[i]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out.SetRate(l, math.Round(v*100)/100)
		filled++
	}
	if b.metrics != nil {
		b.metrics.RecordBootstrap(est.Name(), curve.Country, filled)
	}
	return out
}

// BootstrapAll bootstraps every curve independently and returns results in
// input order. Curves share no state, so they run on separate goroutines.
func (b *CurveBootstrapper) BootstrapAll(curves []models.YieldCurve, labels []string, method domrepo.Method) []models.YieldCurve {
	out := make([]models.YieldCurve, len(curves))
	var wg sync.WaitGroup
	for i, c := range curves {
		wg.Add(1)
		go func(i int, c models.YieldCurve) {
			defer wg.Done()
			out[i] = b.Bootstrap(c, labels, method)
		}(i, c)
	}
	wg.Wait()
	return out
}

// InterpolatedLabels diffs a bootstrapped curve against its input and returns
// the labels that were filled in, in labels order.
func InterpolatedLabels(in, out models.YieldCurve, labels []string) []string {
	filled := make([]string, 0, 4)
	for _, l := range labels {
		if _, was := in.Rate(l); was {
			continue
		}
		if _, is := out.Rate(l); is {
			filled = append(filled, l)
		}
	}
	return filled
}
