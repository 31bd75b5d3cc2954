package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"YieldPull/internal/domain/models"
	domrepo "YieldPull/internal/domain/repository"
	pkgch "YieldPull/pkg/clickhouse"
	applogger "YieldPull/pkg/logger"
)

// CHCurveStore implements CurveStore backed by ClickHouse. Latest curves are
// reconstructed with argMax per (country, maturity).
type CHCurveStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHCurveStore(ch *pkgch.Client, table string) *CHCurveStore {
	return &CHCurveStore{db: ch.DB(), table: table}
}

// SetLogger injects a structured logger.
func (s *CHCurveStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHCurveStore) LatestCurve(ctx context.Context, country string) (models.YieldCurve, error) {
	start := time.Now()
	q := fmt.Sprintf(`
        SELECT maturity, argMax(rate, ts) AS rate
        FROM %s
        WHERE country = ?
        GROUP BY maturity
    `, s.table)
	rows, err := s.db.QueryContext(ctx, q, country)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse latest_curve query error",
				applogger.String("country", country),
				applogger.Error(err),
			)
		}
		return models.YieldCurve{}, fmt.Errorf("latest curve: %w", err)
	}
	defer rows.Close()

	curve := models.YieldCurve{Country: country, Rates: make(map[string]*float64)}
	for rows.Next() {
		var label string
		var rate float64
		if err := rows.Scan(&label, &rate); err != nil {
			return models.YieldCurve{}, fmt.Errorf("scan curve row: %w", err)
		}
		curve.SetRate(label, rate)
	}
	if err := rows.Err(); err != nil {
		return models.YieldCurve{}, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse latest_curve ok",
			applogger.String("country", country),
			applogger.Int("points", curve.KnownCount()),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return curve, nil
}

func (s *CHCurveStore) LatestCurves(ctx context.Context) ([]models.YieldCurve, error) {
	q := fmt.Sprintf(`
        SELECT country, maturity, argMax(rate, ts) AS rate
        FROM %s
        GROUP BY country, maturity
        ORDER BY country
    `, s.table)
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse latest_curves query error", applogger.Error(err))
		}
		return nil, fmt.Errorf("latest curves: %w", err)
	}
	defer rows.Close()

	byCountry := make(map[string]models.YieldCurve)
	order := make([]string, 0, 16)
	for rows.Next() {
		var country, label string
		var rate float64
		if err := rows.Scan(&country, &label, &rate); err != nil {
			return nil, fmt.Errorf("scan curve row: %w", err)
		}
		c, ok := byCountry[country]
		if !ok {
			c = models.YieldCurve{Country: country, Rates: make(map[string]*float64)}
			byCountry[country] = c
			order = append(order, country)
		}
		c.SetRate(label, rate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	out := make([]models.YieldCurve, 0, len(order))
	for _, country := range order {
		out = append(out, byCountry[country])
	}
	return out, nil
}

func (s *CHCurveStore) Countries(ctx context.Context) ([]string, error) {
	q := fmt.Sprintf("SELECT DISTINCT country FROM %s ORDER BY country", s.table)
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("countries: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan country: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *CHCurveStore) History(ctx context.Context, country string, from, to time.Time, limit int) ([]*models.RateUpdate, error) {
	start := time.Now()
	q := fmt.Sprintf(`
        SELECT country, maturity, ts, rate
        FROM %s
        WHERE country = ? AND ts >= ? AND ts <= ?
        ORDER BY ts DESC
        LIMIT ?
    `, s.table)
	rows, err := s.db.QueryContext(ctx, q, country, from, to, limit)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse history query error",
				applogger.String("country", country),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("history: %w", err)
	}
	defer rows.Close()

	tmp := make([]*models.RateUpdate, 0, limit)
	for rows.Next() {
		var u models.RateUpdate
		var ts time.Time
		if err := rows.Scan(&u.Country, &u.Label, &ts, &u.Rate); err != nil {
			return nil, fmt.Errorf("scan update: %w", err)
		}
		u.Timestamp = ts.Unix()
		tmp = append(tmp, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	// reverse to ASC
	for i, j := 0, len(tmp)-1; i < j; i, j = i+1, j-1 {
		tmp[i], tmp[j] = tmp[j], tmp[i]
	}
	if s.l != nil {
		s.l.Info("clickhouse history ok",
			applogger.String("country", country),
			applogger.Int("rows", len(tmp)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return tmp, nil
}

var _ domrepo.CurveStore = (*CHCurveStore)(nil)
