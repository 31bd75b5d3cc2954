package logger

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"
)

// Publisher ships aggregated log batches to an external sink.
type Publisher interface {
	PublishMessage(ctx context.Context, topic string, payload interface{}) error
}

// CollectionConfig controls when the collector flushes.
type CollectionConfig struct {
	TimeInterval   time.Duration // flush at least this often
	CountThreshold int           // flush once this many distinct lines pend
	Topic          string
	Publisher      Publisher
}

// AggregatedLogEntry is one deduplicated log line with its occurrence window.
type AggregatedLogEntry struct {
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields"`
	Caller    string         `json:"caller"`
	Count     int            `json:"count"`
	FirstSeen time.Time      `json:"first_seen"`
	LastSeen  time.Time      `json:"last_seen"`
}

// LogCollector batches repeated error lines and ships them periodically, so a
// flapping dependency cannot flood the log sink. Lines are deduplicated by
// level, message and call site; the fields of the first occurrence are kept.
type LogCollector struct {
	cfg     *CollectionConfig
	mu      sync.Mutex
	pending map[uint64]*AggregatedLogEntry
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewLogCollector(cfg *CollectionConfig) *LogCollector {
	ctx, cancel := context.WithCancel(context.Background())
	c := &LogCollector{
		cfg:     cfg,
		pending: make(map[uint64]*AggregatedLogEntry),
		cancel:  cancel,
	}
	c.wg.Add(1)
	go c.run(ctx)
	return c
}

// Observe records one occurrence of a log line.
func (c *LogCollector) Observe(level, msg string, fields map[string]any, caller string) {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%s|%s", level, msg, caller)
	key := h.Sum64()
	now := time.Now()

	c.mu.Lock()
	if e, ok := c.pending[key]; ok {
		e.Count++
		e.LastSeen = now
	} else {
		c.pending[key] = &AggregatedLogEntry{
			Level:     level,
			Message:   msg,
			Fields:    fields,
			Caller:    caller,
			Count:     1,
			FirstSeen: now,
			LastSeen:  now,
		}
	}
	var batch []AggregatedLogEntry
	if len(c.pending) >= c.cfg.CountThreshold {
		batch = c.drain()
	}
	c.mu.Unlock()
	c.ship(batch)
}

// drain empties the pending map. Caller holds c.mu.
func (c *LogCollector) drain() []AggregatedLogEntry {
	if len(c.pending) == 0 {
		return nil
	}
	batch := make([]AggregatedLogEntry, 0, len(c.pending))
	for _, e := range c.pending {
		batch = append(batch, *e)
	}
	c.pending = make(map[uint64]*AggregatedLogEntry)
	return batch
}

func (c *LogCollector) ship(batch []AggregatedLogEntry) {
	if len(batch) == 0 {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := c.cfg.Publisher.PublishMessage(ctx, c.cfg.Topic, batch); err != nil {
			fmt.Printf("log collector flush failed: %v\n", err)
		}
	}()
}

func (c *LogCollector) run(ctx context.Context) {
	defer c.wg.Done()
	t := time.NewTicker(c.cfg.TimeInterval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			c.mu.Lock()
			batch := c.drain()
			c.mu.Unlock()
			c.ship(batch)
		case <-ctx.Done():
			c.mu.Lock()
			batch := c.drain()
			c.mu.Unlock()
			c.ship(batch)
			return
		}
	}
}

// Close flushes whatever is pending and stops the flusher.
func (c *LogCollector) Close() {
	c.cancel()
	c.wg.Wait()
}
