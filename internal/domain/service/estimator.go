package service

import (
	"context"

	"YieldPull/internal/domain/models"
)

// CurveEstimator estimates yields at target year-fractions from known points.
// Implementations are pure: known points are sorted ascending by Years and the
// result slice matches targets positionally, NaN marking a failed estimate.
type CurveEstimator interface {
	Name() string
	Estimate(points []models.RatePoint, targets []float64) []float64
}

// CurveSource fetches sparse curves plus the canonical label set from the
// upstream rates service.
type CurveSource interface {
	FetchCurves(ctx context.Context) ([]models.YieldCurve, []string, error)
}

// FuturesSource fetches interest-rate futures quotes.
type FuturesSource interface {
	Quotes(ctx context.Context) ([]models.FutureQuote, error)
}
