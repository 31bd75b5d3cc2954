package usecase

import (
	"context"
	"time"

	"YieldPull/internal/domain/models"
	domrepo "YieldPull/internal/domain/repository"
	domsvc "YieldPull/internal/domain/service"
	"YieldPull/internal/services/curvemath"
	pkgcache "YieldPull/pkg/cache"
	xhttp "YieldPull/pkg/http"
)

// CurveUseCase serves bootstrapped curves. It reads the latest sparse curve
// from storage (falling back to the upstream rates service when storage is
// empty), fills it with the requested estimator, and caches the result.
type CurveUseCase struct {
	store    domrepo.CurveStore
	source   domsvc.CurveSource
	boot     *CurveBootstrapper
	cache    pkgcache.Service
	curveTTL time.Duration
	timeout  time.Duration
}

func NewCurveUseCase(store domrepo.CurveStore, source domsvc.CurveSource, boot *CurveBootstrapper) *CurveUseCase {
	return &CurveUseCase{
		store:    store,
		source:   source,
		boot:     boot,
		curveTTL: 30 * time.Second,
		timeout:  10 * time.Second,
	}
}

// SetCache enables result caching.
func (uc *CurveUseCase) SetCache(c pkgcache.Service, ttl time.Duration) {
	uc.cache = c
	if ttl > 0 {
		uc.curveTTL = ttl
	}
}

// CurveResult is one bootstrapped curve plus which labels were filled in.
type CurveResult struct {
	Country      string              `json:"country"`
	Method       string              `json:"method"`
	Labels       []string            `json:"labels"`
	Rates        map[string]*float64 `json:"rates"`
	Interpolated []string            `json:"interpolated"`
}

type GetCurveParams struct {
	Country string
	Method  domrepo.Method
}

func (uc *CurveUseCase) GetCurve(ctx context.Context, p GetCurveParams) (*CurveResult, error) {
	if p.Country == "" {
		return nil, xhttp.BadRequestError("country required")
	}
	if !domrepo.IsValidMethod(p.Method) {
		p.Method = domrepo.DefaultMethod()
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	cacheKey := pkgcache.GenerateKeyWithParams("curve", p.Country, p.Method)
	if uc.cache != nil {
		var cached CurveResult
		if err := uc.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	sparse, labels, err := uc.loadCurve(ctx, p.Country)
	if err != nil {
		return nil, err
	}

	full := uc.boot.Bootstrap(sparse, labels, p.Method)
	res := &CurveResult{
		Country:      p.Country,
		Method:       string(p.Method),
		Labels:       labels,
		Rates:        full.Rates,
		Interpolated: InterpolatedLabels(sparse, full, labels),
	}

	if uc.cache != nil {
		_ = uc.cache.Set(ctx, cacheKey, res, uc.curveTTL)
	}
	return res, nil
}

// GetAllCurves bootstraps every tracked country with the same method. Curves
// are independent, so the bootstrapper fans out per country.
func (uc *CurveUseCase) GetAllCurves(ctx context.Context, method domrepo.Method) ([]CurveResult, error) {
	if !domrepo.IsValidMethod(method) {
		method = domrepo.DefaultMethod()
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	cacheKey := pkgcache.GenerateKey("curves", string(method))
	if uc.cache != nil {
		var cached []CurveResult
		if err := uc.cache.Get(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	curves, labels, err := uc.loadAllCurves(ctx)
	if err != nil {
		return nil, err
	}

	full := uc.boot.BootstrapAll(curves, labels, method)
	out := make([]CurveResult, len(curves))
	for i := range curves {
		out[i] = CurveResult{
			Country:      curves[i].Country,
			Method:       string(method),
			Labels:       labels,
			Rates:        full[i].Rates,
			Interpolated: InterpolatedLabels(curves[i], full[i], labels),
		}
	}

	if uc.cache != nil {
		_ = uc.cache.Set(ctx, cacheKey, out, uc.curveTTL)
	}
	return out, nil
}

// BootstrapSupplied fills a sparse curve supplied directly by the caller.
// Nothing is read from or written to storage.
func (uc *CurveUseCase) BootstrapSupplied(req *models.BootstrapRequest) *CurveResult {
	method := domrepo.NormalizeMethod(req.Method)

	sparse := models.NewYieldCurve(req.Country, req.Labels)
	for _, l := range req.Labels {
		if r, ok := req.Rates[l]; ok && r != nil {
			sparse.SetRate(l, *r)
		}
	}

	full := uc.boot.Bootstrap(sparse, req.Labels, method)
	return &CurveResult{
		Country:      req.Country,
		Method:       string(method),
		Labels:       req.Labels,
		Rates:        full.Rates,
		Interpolated: InterpolatedLabels(sparse, full, req.Labels),
	}
}

// Maturities returns the canonical maturity label set in chronological order.
func (uc *CurveUseCase) Maturities(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	_, labels, err := uc.loadAllCurves(ctx)
	return labels, err
}

// Warm drops cached curve results and recomputes the batch for method. Used
// by the periodic refresh job.
func (uc *CurveUseCase) Warm(ctx context.Context, method domrepo.Method) error {
	if uc.cache != nil {
		_ = uc.cache.Delete(ctx, pkgcache.GenerateKey("curves", string(method)))
		_ = uc.cache.DeleteByPattern(ctx, pkgcache.BuildPattern("curve:"))
	}
	_, err := uc.GetAllCurves(ctx, method)
	return err
}

func (uc *CurveUseCase) loadCurve(ctx context.Context, country string) (models.YieldCurve, []string, error) {
	if uc.store != nil {
		c, err := uc.store.LatestCurve(ctx, country)
		if err == nil && c.KnownCount() > 0 {
			return c, curvemath.ResolveMaturitySet([]models.YieldCurve{c}), nil
		}
		if err != nil && uc.source == nil {
			return models.YieldCurve{}, nil, err
		}
	}
	if uc.source != nil {
		curves, labels, err := uc.source.FetchCurves(ctx)
		if err != nil {
			return models.YieldCurve{}, nil, err
		}
		for _, c := range curves {
			if c.Country == country {
				return c, labels, nil
			}
		}
	}
	return models.YieldCurve{}, nil, xhttp.NotFoundErrorf("no curve data for %s", country)
}

func (uc *CurveUseCase) loadAllCurves(ctx context.Context) ([]models.YieldCurve, []string, error) {
	if uc.store != nil {
		curves, err := uc.store.LatestCurves(ctx)
		if err == nil && len(curves) > 0 {
			return curves, curvemath.ResolveMaturitySet(curves), nil
		}
		if err != nil && uc.source == nil {
			return nil, nil, err
		}
	}
	if uc.source != nil {
		return uc.source.FetchCurves(ctx)
	}
	return nil, nil, xhttp.NotFoundError("no curve data available")
}
