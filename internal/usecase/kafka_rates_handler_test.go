package usecase

import (
	"context"
	"testing"
	"time"

	"YieldPull/internal/domain/models"
)

type capturingStorage struct {
	stored []*models.RateUpdate
}

func (s *capturingStorage) Init(context.Context) error { return nil }
func (s *capturingStorage) Store(_ context.Context, u *models.RateUpdate) error {
	s.stored = append(s.stored, u)
	return nil
}
func (s *capturingStorage) StoreBatch(_ context.Context, us []*models.RateUpdate) error {
	s.stored = append(s.stored, us...)
	return nil
}
func (s *capturingStorage) Query(context.Context, string, time.Time, time.Time, int) ([]*models.RateUpdate, error) {
	return nil, nil
}
func (s *capturingStorage) Health(context.Context) error { return nil }
func (s *capturingStorage) Close() error                 { return nil }

func TestKafkaRatesHandlerStoresUpdate(t *testing.T) {
	storage := &capturingStorage{}
	h := NewKafkaRatesHandler("rates", storage, nopMetrics{})

	if h.Topic() != "rates" {
		t.Fatalf("topic %s", h.Topic())
	}

	msg := []byte(`{"country":"DE","l":"10Y","t":1700000000,"r":3.45}`)
	if err := h.Handle(context.Background(), msg); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(storage.stored) != 1 {
		t.Fatalf("stored %d updates", len(storage.stored))
	}
	u := storage.stored[0]
	if u.Country != "DE" || u.Label != "10Y" || u.Rate != 3.45 || u.Timestamp != 1700000000 {
		t.Fatalf("unexpected update %+v", u)
	}
}

func TestKafkaRatesHandlerFoldsMilliseconds(t *testing.T) {
	storage := &capturingStorage{}
	h := NewKafkaRatesHandler("rates", storage, nopMetrics{})

	msg := []byte(`{"country":"US","l":"2Y","t":1700000000000,"r":4.8}`)
	if err := h.Handle(context.Background(), msg); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if storage.stored[0].Timestamp != 1700000000 {
		t.Fatalf("timestamp %d, want seconds", storage.stored[0].Timestamp)
	}
}

func TestKafkaRatesHandlerRejectsGarbage(t *testing.T) {
	storage := &capturingStorage{}
	h := NewKafkaRatesHandler("rates", storage, nopMetrics{})

	if err := h.Handle(context.Background(), []byte("not json")); err == nil {
		t.Fatalf("expected unmarshal error")
	}
	if len(storage.stored) != 0 {
		t.Fatalf("garbage must not be stored")
	}
}
