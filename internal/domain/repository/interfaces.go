package repository

import (
	"context"
	"time"

	"YieldPull/internal/domain/models"
)

// RateStream is a live source of sovereign rate updates, typically a
// WebSocket feed. Read stays valid across Reconnect calls.
type RateStream interface {
	Connect(ctx context.Context) error
	// Subscribe requests updates for the configured countries.
	Subscribe(ctx context.Context) error
	// Read returns the update and error channels. Both close when the
	// stream is closed for good.
	Read(ctx context.Context) (<-chan *models.RateUpdate, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Publisher hands accepted updates to a message broker.
type Publisher interface {
	Publish(ctx context.Context, u *models.RateUpdate) error
	PublishBatch(ctx context.Context, updates []*models.RateUpdate) error
	Close() error
}

// Storage persists rate updates and serves historical queries.
type Storage interface {
	// Init creates the schema if it does not exist.
	Init(ctx context.Context) error
	Store(ctx context.Context, u *models.RateUpdate) error
	StoreBatch(ctx context.Context, updates []*models.RateUpdate) error
	// Query returns updates for a country within [from, to], newest first,
	// capped at limit.
	Query(ctx context.Context, country string, from, to time.Time, limit int) ([]*models.RateUpdate, error)
	Health(ctx context.Context) error
	Close() error
}

// Metrics records operational counters and gauges. Implementations must be
// safe for concurrent use.
type Metrics interface {
	// RecordUpdateRouted counts an update delivered to a backend.
	RecordUpdateRouted(backend, country string)
	RecordError(kind string)
	// RecordLastRate tracks the most recent rate per country and tenor label.
	RecordLastRate(country, label string, rate float64)
	RecordLatency(op string, seconds float64)
	// RecordBootstrap counts a completed curve bootstrap and how many tenors
	// it filled.
	RecordBootstrap(method, country string, filled int)
}
