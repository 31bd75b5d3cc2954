package usecase

import (
	"context"
	"time"

	"YieldPull/internal/domain/models"
	domsvc "YieldPull/internal/domain/service"
	pkgcache "YieldPull/pkg/cache"
)

// FuturesUseCase serves interest-rate futures quotes with short-lived caching.
type FuturesUseCase struct {
	src   domsvc.FuturesSource
	cache pkgcache.Service
	ttl   time.Duration
}

func NewFuturesUseCase(src domsvc.FuturesSource) *FuturesUseCase {
	return &FuturesUseCase{src: src, ttl: 60 * time.Second}
}

// SetCache enables quote caching.
func (uc *FuturesUseCase) SetCache(c pkgcache.Service, ttl time.Duration) {
	uc.cache = c
	if ttl > 0 {
		uc.ttl = ttl
	}
}

func (uc *FuturesUseCase) Quotes(ctx context.Context) ([]models.FutureQuote, error) {
	const cacheKey = "futures:latest"
	if uc.cache != nil {
		var cached []models.FutureQuote
		if err := uc.cache.Get(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	quotes, err := uc.src.Quotes(ctx)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		_ = uc.cache.Set(ctx, cacheKey, quotes, uc.ttl)
	}
	return quotes, nil
}
