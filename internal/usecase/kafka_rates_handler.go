package usecase

import (
	"context"
	"encoding/json"
	"time"

	"YieldPull/internal/domain/models"
	domrepo "YieldPull/internal/domain/repository"
	pkgkafka "YieldPull/pkg/kafka"
)

// KafkaRatesHandler consumes rate updates from Kafka and writes to storage.
type KafkaRatesHandler struct {
	topic   string
	storage domrepo.Storage
	metrics domrepo.Metrics
}

func NewKafkaRatesHandler(topic string, storage domrepo.Storage, metrics domrepo.Metrics) *KafkaRatesHandler {
	return &KafkaRatesHandler{topic: topic, storage: storage, metrics: metrics}
}

func (h *KafkaRatesHandler) Topic() string { return h.topic }

// incoming message schema: {country, l, t, r}
func (h *KafkaRatesHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		Country string  `json:"country"`
		L       string  `json:"l"`
		T       int64   `json:"t"`
		R       float64 `json:"r"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if m.T > 1e11 { // ms
		m.T = m.T / 1000
	}
	// E2E latency from event time to now (approx)
	h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(time.Unix(m.T, 0)).Seconds())

	start := time.Now()
	err := h.storage.Store(ctx, &models.RateUpdate{
		Country:   m.Country,
		Label:     m.L,
		Rate:      m.R,
		Timestamp: m.T,
	})
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordUpdateRouted("clickhouse", m.Country)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaRatesHandler)(nil)
