package usecase

import (
	"context"
	"fmt"
	"time"

	"YieldPull/internal/domain/models"
	drepo "YieldPull/internal/domain/repository"
)

// RateUpdateProcessor routes validated rate updates to the configured backend.
type RateUpdateProcessor struct {
	pub     drepo.Publisher
	store   drepo.Storage
	metrics drepo.Metrics
	backend string
	batchSz int
	batchTO time.Duration
}

// NewRateUpdateProcessor creates a new RateUpdateProcessor instance.
func NewRateUpdateProcessor(
	pub drepo.Publisher,
	store drepo.Storage,
	metrics drepo.Metrics,
	backend string,
	batchSz int,
	batchTO time.Duration,
) *RateUpdateProcessor {
	return &RateUpdateProcessor{
		pub:     pub,
		store:   store,
		metrics: metrics,
		backend: backend,
		batchSz: batchSz,
		batchTO: batchTO,
	}
}

// Process routes a single update to the configured backend.
func (p *RateUpdateProcessor) Process(ctx context.Context, u *models.RateUpdate) error {
	if u == nil {
		return fmt.Errorf("update is nil")
	}

	start := time.Now()
	var err error

	switch p.backend {
	case "kafka":
		err = p.pub.Publish(ctx, u)
	case "clickhouse":
		err = p.store.Store(ctx, u)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process")
		return fmt.Errorf("process update: %w", err)
	}

	p.metrics.RecordUpdateRouted(p.backend, u.Country)
	p.metrics.RecordLatency("process", time.Since(start).Seconds())

	return nil
}

// ProcessBatch routes multiple updates in a batch.
func (p *RateUpdateProcessor) ProcessBatch(ctx context.Context, updates []*models.RateUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	start := time.Now()
	var err error

	switch p.backend {
	case "kafka":
		err = p.pub.PublishBatch(ctx, updates)
	case "clickhouse":
		err = p.store.StoreBatch(ctx, updates)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process_batch")
		return fmt.Errorf("process batch: %w", err)
	}

	for _, u := range updates {
		p.metrics.RecordUpdateRouted(p.backend, u.Country)
	}
	p.metrics.RecordLatency("process_batch", time.Since(start).Seconds())

	return nil
}

// Close closes underlying resources if available.
func (p *RateUpdateProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.store != nil {
		_ = p.store.Close()
	}
}
