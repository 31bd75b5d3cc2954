package rates

import (
	"context"
	"fmt"

	"YieldPull/internal/domain/models"
	domsvc "YieldPull/internal/domain/service"
	"YieldPull/pkg/config"
)

// HTTPFuturesSource fetches interest-rate futures quotes from the upstream
// rates service.
type HTTPFuturesSource struct{ base *HTTPServiceBase }

func NewHTTPFuturesSource(cfg *config.Config) *HTTPFuturesSource {
	return &HTTPFuturesSource{base: NewHTTPServiceBase(cfg)}
}

type futuresResponse struct {
	Quotes []struct {
		Name   string  `json:"name"`
		Last   float64 `json:"last"`
		Change float64 `json:"change"`
		T      int64   `json:"t"`
	} `json:"quotes"`
}

func (s *HTTPFuturesSource) Quotes(ctx context.Context) ([]models.FutureQuote, error) {
	var fr futuresResponse
	if err := s.base.GetJSON(ctx, "/futures/latest", nil, &fr); err != nil {
		return nil, fmt.Errorf("get futures: %w", err)
	}
	out := make([]models.FutureQuote, 0, len(fr.Quotes))
	for _, q := range fr.Quotes {
		out = append(out, models.FutureQuote{
			Name:      q.Name,
			Last:      q.Last,
			Change:    q.Change,
			Timestamp: q.T,
		})
	}
	return out, nil
}

var _ domsvc.FuturesSource = (*HTTPFuturesSource)(nil)
