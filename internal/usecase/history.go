package usecase

import (
	"context"
	"fmt"
	"time"

	"YieldPull/internal/domain/models"
	domrepo "YieldPull/internal/domain/repository"
	xhttp "YieldPull/pkg/http"
)

// HistoryUseCase provides business logic for retrieving stored observations.
type HistoryUseCase struct {
	store domrepo.CurveStore
}

func NewHistoryUseCase(store domrepo.CurveStore) *HistoryUseCase {
	return &HistoryUseCase{store: store}
}

type GetHistoryParams struct {
	Country string
	From    time.Time
	To      time.Time
	Limit   int
}

type GetHistoryResult struct {
	Country string               `json:"country"`
	From    time.Time            `json:"from"`
	To      time.Time            `json:"to"`
	Count   int                  `json:"count"`
	Updates []*models.RateUpdate `json:"updates"`
}

func (uc *HistoryUseCase) GetHistory(ctx context.Context, p GetHistoryParams) (*GetHistoryResult, error) {
	if p.Country == "" {
		return nil, xhttp.BadRequestError("country required")
	}
	if p.To.IsZero() {
		p.To = time.Now()
	}
	if p.From.IsZero() {
		p.From = p.To.AddDate(0, -1, 0)
	}
	if p.From.After(p.To) {
		return nil, xhttp.BadRequestError("from must be <= to")
	}
	if p.Limit <= 0 {
		p.Limit = 500
	}
	if p.Limit > 10000 {
		p.Limit = 10000
	}

	updates, err := uc.store.History(ctx, p.Country, p.From, p.To, p.Limit)
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}

	return &GetHistoryResult{
		Country: p.Country,
		From:    p.From,
		To:      p.To,
		Count:   len(updates),
		Updates: updates,
	}, nil
}
