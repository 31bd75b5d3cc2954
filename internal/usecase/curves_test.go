package usecase

import (
	"context"
	"testing"
	"time"

	"YieldPull/internal/domain/models"
	domrepo "YieldPull/internal/domain/repository"
)

type nopMetrics struct{}

func (nopMetrics) RecordUpdateRouted(string, string)      {}
func (nopMetrics) RecordError(string)                     {}
func (nopMetrics) RecordLastRate(string, string, float64) {}
func (nopMetrics) RecordLatency(string, float64)          {}
func (nopMetrics) RecordBootstrap(string, string, int)    {}

type fakeCurveStore struct {
	curves    []models.YieldCurve
	lastLimit int
	lastFrom  time.Time
	lastTo    time.Time
}

func (f *fakeCurveStore) LatestCurve(_ context.Context, country string) (models.YieldCurve, error) {
	for _, c := range f.curves {
		if c.Country == country {
			return c, nil
		}
	}
	return models.YieldCurve{Country: country, Rates: map[string]*float64{}}, nil
}

func (f *fakeCurveStore) LatestCurves(context.Context) ([]models.YieldCurve, error) {
	return f.curves, nil
}

func (f *fakeCurveStore) Countries(context.Context) ([]string, error) {
	out := make([]string, 0, len(f.curves))
	for _, c := range f.curves {
		out = append(out, c.Country)
	}
	return out, nil
}

func (f *fakeCurveStore) History(_ context.Context, country string, from, to time.Time, limit int) ([]*models.RateUpdate, error) {
	f.lastFrom, f.lastTo, f.lastLimit = from, to, limit
	return []*models.RateUpdate{{Country: country, Label: "10Y", Rate: 3.5, Timestamp: from.Unix()}}, nil
}

func newTestCurveUseCase() (*CurveUseCase, *fakeCurveStore) {
	store := &fakeCurveStore{curves: []models.YieldCurve{sparseCurve()}}
	uc := NewCurveUseCase(store, nil, NewCurveBootstrapper(nopMetrics{}))
	return uc, store
}

func TestGetCurveFillsGaps(t *testing.T) {
	uc, _ := newTestCurveUseCase()
	res, err := uc.GetCurve(context.Background(), GetCurveParams{Country: "DE", Method: domrepo.MethodLinear})
	if err != nil {
		t.Fatalf("GetCurve: %v", err)
	}
	if res.Country != "DE" || res.Method != "linear" {
		t.Fatalf("unexpected result meta: %+v", res)
	}
	if r := res.Rates["2Y"]; r == nil || *r != 2.25 {
		t.Fatalf("2Y not filled: %v", r)
	}
	if res.Rates["20Y"] != nil {
		t.Fatalf("20Y must stay null")
	}
	want := []string{"2Y", "7Y"}
	if len(res.Interpolated) != len(want) {
		t.Fatalf("interpolated %v, want %v", res.Interpolated, want)
	}
	for i := range want {
		if res.Interpolated[i] != want[i] {
			t.Fatalf("interpolated %v, want %v", res.Interpolated, want)
		}
	}
}

func TestGetCurveRequiresCountry(t *testing.T) {
	uc, _ := newTestCurveUseCase()
	if _, err := uc.GetCurve(context.Background(), GetCurveParams{}); err == nil {
		t.Fatalf("expected error for missing country")
	}
}

func TestGetCurveNormalizesBadMethod(t *testing.T) {
	uc, _ := newTestCurveUseCase()
	res, err := uc.GetCurve(context.Background(), GetCurveParams{Country: "DE", Method: "bogus"})
	if err != nil {
		t.Fatalf("GetCurve: %v", err)
	}
	if res.Method != string(domrepo.DefaultMethod()) {
		t.Fatalf("method %s, want default", res.Method)
	}
}

func TestGetAllCurvesSharedLabels(t *testing.T) {
	store := &fakeCurveStore{curves: []models.YieldCurve{
		sparseCurve(),
		{Country: "US", Rates: map[string]*float64{"1Y": ptr(4.00), "5Y": ptr(4.40), "10Y": ptr(4.20)}},
	}}
	uc := NewCurveUseCase(store, nil, NewCurveBootstrapper(nopMetrics{}))

	res, err := uc.GetAllCurves(context.Background(), domrepo.MethodLinear)
	if err != nil {
		t.Fatalf("GetAllCurves: %v", err)
	}
	if len(res) != 2 {
		t.Fatalf("expected 2 curves, got %d", len(res))
	}
	if res[0].Country != "DE" || res[1].Country != "US" {
		t.Fatalf("order not preserved: %s, %s", res[0].Country, res[1].Country)
	}
	// label set is the union across curves, chronological
	for _, r := range res {
		if len(r.Labels) != len(allLabels) {
			t.Fatalf("labels %v, want %v", r.Labels, allLabels)
		}
	}
}

func TestBootstrapSupplied(t *testing.T) {
	uc, _ := newTestCurveUseCase()
	res := uc.BootstrapSupplied(&models.BootstrapRequest{
		Country: "FR",
		Labels:  []string{"1Y", "2Y", "5Y"},
		Rates:   map[string]*float64{"1Y": ptr(2.00), "5Y": ptr(3.00)},
		Method:  "linear",
	})
	if r := res.Rates["2Y"]; r == nil || *r != 2.25 {
		t.Fatalf("2Y not filled: %v", r)
	}
	if len(res.Interpolated) != 1 || res.Interpolated[0] != "2Y" {
		t.Fatalf("interpolated %v, want [2Y]", res.Interpolated)
	}
}

func TestMaturitiesChronological(t *testing.T) {
	uc, _ := newTestCurveUseCase()
	labels, err := uc.Maturities(context.Background())
	if err != nil {
		t.Fatalf("Maturities: %v", err)
	}
	if len(labels) != len(allLabels) {
		t.Fatalf("labels %v, want %v", labels, allLabels)
	}
	for i := range allLabels {
		if labels[i] != allLabels[i] {
			t.Fatalf("labels %v, want %v", labels, allLabels)
		}
	}
}

func TestGetHistoryClampsLimit(t *testing.T) {
	store := &fakeCurveStore{}
	uc := NewHistoryUseCase(store)

	if _, err := uc.GetHistory(context.Background(), GetHistoryParams{Country: "DE", Limit: 50000}); err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if store.lastLimit != 10000 {
		t.Fatalf("limit %d, want 10000", store.lastLimit)
	}

	if _, err := uc.GetHistory(context.Background(), GetHistoryParams{Country: "DE"}); err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if store.lastLimit != 500 {
		t.Fatalf("default limit %d, want 500", store.lastLimit)
	}
	if store.lastFrom.After(store.lastTo) {
		t.Fatalf("default range inverted: %v > %v", store.lastFrom, store.lastTo)
	}
}

func TestGetHistoryRejectsInvertedRange(t *testing.T) {
	uc := NewHistoryUseCase(&fakeCurveStore{})
	now := time.Now()
	_, err := uc.GetHistory(context.Background(), GetHistoryParams{Country: "DE", From: now, To: now.Add(-time.Hour)})
	if err == nil {
		t.Fatalf("expected error for from > to")
	}
}
