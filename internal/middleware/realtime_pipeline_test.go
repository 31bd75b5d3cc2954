package middleware

import (
	"context"
	"math"
	"testing"
	"time"

	"YieldPull/internal/domain/models"
)

type nopMetrics struct{}

func (nopMetrics) RecordUpdateRouted(string, string)      {}
func (nopMetrics) RecordError(string)                     {}
func (nopMetrics) RecordLastRate(string, string, float64) {}
func (nopMetrics) RecordLatency(string, float64)          {}
func (nopMetrics) RecordBootstrap(string, string, int)    {}

type recordingProc struct {
	got []*models.RateUpdate
}

func (p *recordingProc) Process(_ context.Context, u *models.RateUpdate) error {
	p.got = append(p.got, u)
	return nil
}

func validRateUpdate() *models.RateUpdate {
	return &models.RateUpdate{Country: "DE", Label: "10Y", Rate: 3.5, Timestamp: time.Now().Unix()}
}

func TestPipelineForwardsValidUpdate(t *testing.T) {
	proc := &recordingProc{}
	p := NewRealtimePipeline(proc, nopMetrics{})

	if err := p.Process(context.Background(), validRateUpdate()); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(proc.got) != 1 {
		t.Fatalf("forwarded %d updates", len(proc.got))
	}
}

func TestPipelineRejectsInvalidUpdates(t *testing.T) {
	proc := &recordingProc{}
	p := NewRealtimePipeline(proc, nopMetrics{})

	cases := []*models.RateUpdate{
		nil,
		{Label: "10Y", Rate: 3.5, Timestamp: 1},  // no country
		{Country: "DE", Label: "10Y", Rate: 3.5}, // no timestamp
		{Country: "DE", Label: "soon", Rate: 3.5, Timestamp: 1}, // bad label
		{Country: "DE", Label: "10Y", Rate: math.NaN(), Timestamp: 1},
	}
	for i, u := range cases {
		if err := p.Process(context.Background(), u); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
	if len(proc.got) != 0 {
		t.Fatalf("invalid updates reached downstream")
	}
}

func TestPipelineThrottlesPerCountry(t *testing.T) {
	proc := &recordingProc{}
	p := NewRealtimePipeline(proc, nopMetrics{}, WithMaxRPS(1))

	// two rapid updates for the same country: second is throttled, not an error
	if err := p.Process(context.Background(), validRateUpdate()); err != nil {
		t.Fatalf("first: %v", err)
	}
	if err := p.Process(context.Background(), validRateUpdate()); err != nil {
		t.Fatalf("throttled update must be dropped silently: %v", err)
	}
	if len(proc.got) != 1 {
		t.Fatalf("forwarded %d updates, want 1", len(proc.got))
	}

	// a different country is not affected
	other := validRateUpdate()
	other.Country = "US"
	if err := p.Process(context.Background(), other); err != nil {
		t.Fatalf("other country: %v", err)
	}
	if len(proc.got) != 2 {
		t.Fatalf("forwarded %d updates, want 2", len(proc.got))
	}
}
