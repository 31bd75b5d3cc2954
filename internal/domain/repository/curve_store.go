package repository

import (
	"context"
	"time"

	"YieldPull/internal/domain/models"
)

// CurveStore provides read-only access to stored rate observations for the
// bootstrap/read path.
type CurveStore interface {
	// LatestCurve reconstructs the most recent sparse curve for a country.
	LatestCurve(ctx context.Context, country string) (models.YieldCurve, error)
	// LatestCurves reconstructs the most recent sparse curve for every
	// tracked country.
	LatestCurves(ctx context.Context) ([]models.YieldCurve, error)
	// Countries lists countries with at least one stored observation.
	Countries(ctx context.Context) ([]string, error)
	// History returns stored updates for a country in a time range.
	History(ctx context.Context, country string, from, to time.Time, limit int) ([]*models.RateUpdate, error)
}
