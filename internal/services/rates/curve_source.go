package rates

import (
	"context"
	"fmt"

	"YieldPull/internal/domain/models"
	domsvc "YieldPull/internal/domain/service"
	"YieldPull/pkg/config"
)

// HTTPCurveSource fetches the latest sparse curves from the upstream rates
// service. The upstream owns scraping and document parsing; this side only
// consumes its JSON snapshot.
type HTTPCurveSource struct{ base *HTTPServiceBase }

func NewHTTPCurveSource(cfg *config.Config) *HTTPCurveSource {
	return &HTTPCurveSource{base: NewHTTPServiceBase(cfg)}
}

type curvesResponse struct {
	Labels []string `json:"labels"`
	Curves []struct {
		Country string              `json:"country"`
		Rates   map[string]*float64 `json:"rates"`
	} `json:"curves"`
}

func (s *HTTPCurveSource) FetchCurves(ctx context.Context) ([]models.YieldCurve, []string, error) {
	var cr curvesResponse
	if err := s.base.GetJSONWithRetry(ctx, "/curves/latest", nil, &cr, 3); err != nil {
		return nil, nil, fmt.Errorf("get curves: %w", err)
	}
	out := make([]models.YieldCurve, 0, len(cr.Curves))
	for _, c := range cr.Curves {
		curve := models.NewYieldCurve(c.Country, cr.Labels)
		for l, r := range c.Rates {
			if r == nil {
				continue
			}
			if _, ok := curve.Rates[l]; ok {
				curve.SetRate(l, *r)
			}
		}
		out = append(out, curve)
	}
	return out, cr.Labels, nil
}

var _ domsvc.CurveSource = (*HTTPCurveSource)(nil)
