package api

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"YieldPull/internal/domain/models"
	icache "YieldPull/internal/service/cache"
	"YieldPull/internal/usecase"
)

func ptr(v float64) *float64 { return &v }

type staticStore struct{}

func (staticStore) LatestCurve(_ context.Context, country string) (models.YieldCurve, error) {
	return models.YieldCurve{Country: country, Rates: map[string]*float64{
		"1Y": ptr(2.00), "2Y": nil, "5Y": ptr(3.00), "10Y": ptr(3.50),
	}}, nil
}

func (s staticStore) LatestCurves(ctx context.Context) ([]models.YieldCurve, error) {
	c, _ := s.LatestCurve(ctx, "DE")
	return []models.YieldCurve{c}, nil
}

func (staticStore) Countries(context.Context) ([]string, error) { return []string{"DE"}, nil }

func (staticStore) History(context.Context, string, time.Time, time.Time, int) ([]*models.RateUpdate, error) {
	return nil, nil
}

func newTestHandler() *CurvesHandler {
	uc := usecase.NewCurveUseCase(staticStore{}, nil, usecase.NewCurveBootstrapper(nil))
	h := NewCurvesHandler(uc)
	h.SetCache(icache.NewTTLCache())
	return h
}

func TestCurveEndpointFillsGaps(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest("GET", "/api/curve?country=DE&method=linear", nil)
	rec := httptest.NewRecorder()
	h.Curve().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var res usecase.CurveResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if r := res.Rates["2Y"]; r == nil || *r != 2.25 {
		t.Fatalf("2Y not interpolated: %v", res.Rates)
	}
}

func TestCurveEndpointRequiresCountry(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest("GET", "/api/curve", nil)
	rec := httptest.NewRecorder()
	h.Curve().ServeHTTP(rec, req)

	if rec.Code != 400 {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}

func TestCurveEndpointServesFromCache(t *testing.T) {
	h := newTestHandler()

	first := httptest.NewRecorder()
	h.Curve().ServeHTTP(first, httptest.NewRequest("GET", "/api/curve?country=DE", nil))
	second := httptest.NewRecorder()
	h.Curve().ServeHTTP(second, httptest.NewRequest("GET", "/api/curve?country=DE", nil))

	if first.Code != 200 || second.Code != 200 {
		t.Fatalf("status %d / %d", first.Code, second.Code)
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("cached response differs")
	}
}

func TestMuxRoutes(t *testing.T) {
	h := newTestHandler()
	mux := h.Mux(0)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/api/curves?method=cubic-spline", nil))
	if rec.Code != 200 {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var res []usecase.CurveResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res) != 1 || res[0].Country != "DE" {
		t.Fatalf("unexpected result %+v", res)
	}
}
