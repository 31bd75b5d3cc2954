package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"YieldPull/internal/domain/models"
	"YieldPull/internal/domain/repository"
	pkgkafka "YieldPull/pkg/kafka"
)

// ClickHouseStorage implements Storage for ClickHouse.
type ClickHouseStorage struct {
	db    *sql.DB
	table string
}

// NewClickHouseStorage creates ClickHouse storage.
func NewClickHouseStorage(db *sql.DB, table string) repository.Storage {
	return &ClickHouseStorage{db: db, table: table}
}

func (s *ClickHouseStorage) Init(ctx context.Context) error {
	return nil // Schema init in pkg
}

func (s *ClickHouseStorage) Store(ctx context.Context, u *models.RateUpdate) error {
	q := fmt.Sprintf("INSERT INTO %s (ts, country, maturity, rate, source, event_id, seq) VALUES (?, ?, ?, ?, ?, ?, ?)", s.table)
	// Simple idempotency placeholders: event_id and seq derived from key+timestamp
	eventID := fmt.Sprintf("%s-%s-%d", u.Country, u.Label, u.Timestamp)
	seq := uint64(u.Timestamp)
	_, err := s.db.ExecContext(ctx, q,
		time.Unix(u.Timestamp, 0),
		u.Country,
		u.Label,
		u.Rate,
		"ratefeed",
		eventID,
		seq,
	)
	return err
}

func (s *ClickHouseStorage) StoreBatch(ctx context.Context, updates []*models.RateUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	// Batch insert using VALUES multi-row to reduce round-trips.
	// Chunk size tuned to 2000 rows per batch.
	const chunkSize = 2000
	for start := 0; start < len(updates); start += chunkSize {
		end := start + chunkSize
		if end > len(updates) {
			end = len(updates)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*7)
		for _, u := range updates[start:end] {
			if u == nil || u.Country == "" || u.Timestamp == 0 {
				continue
			}
			eventID := fmt.Sprintf("%s-%s-%d", u.Country, u.Label, u.Timestamp)
			seq := uint64(u.Timestamp)
			values = append(values, "(?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				time.Unix(u.Timestamp, 0),
				u.Country,
				u.Label,
				u.Rate,
				"ratefeed",
				eventID,
				seq,
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (ts, country, maturity, rate, source, event_id, seq) VALUES %s", s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

func (s *ClickHouseStorage) Query(ctx context.Context, country string, from, to time.Time, limit int) ([]*models.RateUpdate, error) {
	q := fmt.Sprintf("SELECT country, maturity, ts, rate FROM %s WHERE country = ? AND ts >= ? AND ts <= ? ORDER BY ts DESC LIMIT ?", s.table)
	rows, err := s.db.QueryContext(ctx, q, country, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var updates []*models.RateUpdate
	for rows.Next() {
		var u models.RateUpdate
		var ts time.Time
		if err := rows.Scan(&u.Country, &u.Label, &ts, &u.Rate); err != nil {
			return nil, err
		}
		u.Timestamp = ts.Unix()
		updates = append(updates, &u)
	}
	return updates, rows.Err()
}

func (s *ClickHouseStorage) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseStorage) Close() error {
	return nil // Managed by pkg
}

// KafkaPublisher implements Publisher for Kafka.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, u *models.RateUpdate) error {
	return p.producer.Publish(ctx, p.topic, []byte(u.Country), map[string]interface{}{
		"country": u.Country,
		"l":       u.Label,
		"t":       u.Timestamp,
		"r":       u.Rate,
	})
}

func (p *KafkaPublisher) PublishBatch(ctx context.Context, updates []*models.RateUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(updates))
	for i, u := range updates {
		msgs[i] = pkgkafka.Message{
			Key: []byte(u.Country),
			Value: map[string]interface{}{
				"country": u.Country,
				"l":       u.Label,
				"t":       u.Timestamp,
				"r":       u.Rate,
			},
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
