package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"YieldPull/pkg/logger"
)

// QueueMode restricts which sides of the queue a process runs.
type QueueMode int

const (
	ModeProducerConsumer QueueMode = iota
	ModeProducerOnly
)

// Option overrides queue defaults.
type Option func(*RedisQueue)

// WithKeyPrefix namespaces the queue's Redis keys.
func WithKeyPrefix(prefix string) Option {
	return func(q *RedisQueue) { q.prefix = prefix }
}

// RedisQueue is a Redis-list backed job queue. Failed messages are parked in
// a sorted set scored by their retry deadline and redelivered when due; once
// the retry limit is exhausted they land on a dead-letter list.
type RedisQueue struct {
	l      *logger.Logger
	cli    *redis.Client
	cfg    *QueueConfig
	mode   QueueMode
	prefix string

	mu   sync.RWMutex
	jobs map[string]Job

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewRedisQueue(l *logger.Logger, cfg *QueueConfig, cli *redis.Client, mode QueueMode, opts ...Option) *RedisQueue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 10 * time.Second
	}
	q := &RedisQueue{
		l:      l,
		cli:    cli,
		cfg:    cfg,
		mode:   mode,
		prefix: "yieldpull:queue",
		jobs:   make(map[string]Job),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// NewRedisPublisher returns a producer-only queue. It needs no Start: there
// are no workers, and Enqueue/PublishMessage work immediately.
func NewRedisPublisher(l *logger.Logger, cli *redis.Client, opts ...Option) *RedisQueue {
	return NewRedisQueue(l, &QueueConfig{}, cli, ModeProducerOnly, opts...)
}

func (q *RedisQueue) mainKey() string  { return q.prefix + ":messages" }
func (q *RedisQueue) retryKey() string { return q.prefix + ":retry" }
func (q *RedisQueue) deadKey() string  { return q.prefix + ":dlq" }

// RegisterJob binds a handler to its message type.
func (q *RedisQueue) RegisterJob(j Job) {
	if q.mode == ModeProducerOnly {
		q.l.Warn("job ignored on producer-only queue", logger.String("job", j.Name()))
		return
	}
	q.mu.Lock()
	q.jobs[j.Type()] = j
	q.mu.Unlock()
}

// Start verifies the connection and launches the worker pool.
func (q *RedisQueue) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	q.cancel = cancel

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := q.cli.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("queue redis ping: %w", err)
	}
	if q.mode == ModeProducerOnly {
		return nil
	}

	for i := 0; i < q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, i)
	}
	q.wg.Add(1)
	go q.redeliverLoop(ctx)
	q.l.Info("queue started", logger.Int("workers", q.cfg.Workers))
	return nil
}

// Stop cancels the workers and waits for them, bounded by ctx.
func (q *RedisQueue) Stop(ctx context.Context) error {
	if q.cancel != nil {
		q.cancel()
	}
	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Enqueue wraps the payload in an envelope and pushes it onto the main list.
// On a consuming queue the type must have a registered handler.
func (q *RedisQueue) Enqueue(ctx context.Context, msgType string, payload interface{}) error {
	if q.mode != ModeProducerOnly {
		q.mu.RLock()
		_, known := q.jobs[msgType]
		q.mu.RUnlock()
		if !known {
			return fmt.Errorf("no job registered for type %q", msgType)
		}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	now := time.Now()
	msg := Message{
		ID:        fmt.Sprintf("%s-%d", msgType, now.UnixNano()),
		Type:      msgType,
		Payload:   raw,
		Timestamp: now,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return q.cli.LPush(ctx, q.mainKey(), data).Err()
}

// PublishMessage pushes a payload onto a list named after the topic, under
// the queue's key prefix. This satisfies logger.Publisher.
func (q *RedisQueue) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", topic, err)
	}
	return q.cli.LPush(ctx, q.prefix+":"+topic, data).Err()
}

func (q *RedisQueue) worker(ctx context.Context, id int) {
	defer q.wg.Done()
	for {
		res, err := q.cli.BRPop(ctx, time.Second, q.mainKey()).Result()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if !errors.Is(err, redis.Nil) {
				q.l.Error("queue pop failed", logger.Error(err), logger.Int("worker", id))
				time.Sleep(time.Second)
			}
			continue
		}
		var msg Message
		if err := json.Unmarshal([]byte(res[1]), &msg); err != nil {
			q.l.Error("queue message undecodable", logger.Error(err))
			continue
		}
		q.dispatch(ctx, &msg)
	}
}

func (q *RedisQueue) dispatch(ctx context.Context, msg *Message) {
	q.mu.RLock()
	job, ok := q.jobs[msg.Type]
	q.mu.RUnlock()
	if !ok {
		q.l.Warn("no handler for message", logger.String("type", msg.Type))
		return
	}
	if err := job.Handle(ctx, msg.Payload); err != nil {
		q.requeue(ctx, msg, err)
	}
}

// requeue schedules a failed message for retry, or dead-letters it once its
// attempts are spent.
func (q *RedisQueue) requeue(ctx context.Context, msg *Message, cause error) {
	msg.Attempts++
	data, err := json.Marshal(msg)
	if err != nil {
		q.l.Error("requeue marshal failed", logger.Error(err))
		return
	}
	if msg.Attempts > q.cfg.RetryLimit {
		if err := q.cli.LPush(ctx, q.deadKey(), data).Err(); err != nil {
			q.l.Error("dead-letter push failed", logger.Error(err))
		}
		q.l.Error("message dead-lettered",
			logger.String("type", msg.Type),
			logger.Int("attempts", msg.Attempts),
			logger.Error(cause))
		return
	}
	due := time.Now().Add(q.cfg.RetryDelay)
	z := redis.Z{Score: float64(due.Unix()), Member: data}
	if err := q.cli.ZAdd(ctx, q.retryKey(), z).Err(); err != nil {
		q.l.Error("retry schedule failed", logger.Error(err))
		return
	}
	q.l.Warn("message scheduled for retry",
		logger.String("type", msg.Type),
		logger.Int("attempt", msg.Attempts),
		logger.Error(cause))
}

// redeliverLoop moves due retries back onto the main list.
func (q *RedisQueue) redeliverLoop(ctx context.Context) {
	defer q.wg.Done()
	t := time.NewTicker(5 * time.Second)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			q.redeliverDue(ctx)
		}
	}
}

func (q *RedisQueue) redeliverDue(ctx context.Context) {
	max := strconv.FormatInt(time.Now().Unix(), 10)
	due, err := q.cli.ZRangeByScore(ctx, q.retryKey(), &redis.ZRangeBy{Min: "-inf", Max: max}).Result()
	if err != nil {
		if ctx.Err() == nil {
			q.l.Error("retry scan failed", logger.Error(err))
		}
		return
	}
	for _, member := range due {
		// remove and repush atomically so a crash cannot duplicate the message
		pipe := q.cli.TxPipeline()
		pipe.ZRem(ctx, q.retryKey(), member)
		pipe.LPush(ctx, q.mainKey(), member)
		if _, err := pipe.Exec(ctx); err != nil {
			q.l.Error("retry redeliver failed", logger.Error(err))
		}
	}
}
