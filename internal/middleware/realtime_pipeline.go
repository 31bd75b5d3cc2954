package middleware

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"YieldPull/internal/domain/models"
	domrepo "YieldPull/internal/domain/repository"
	"YieldPull/internal/services/curvemath"
)

// Proc consumes validated rate updates downstream of the pipeline.
type Proc interface {
	Process(ctx context.Context, u *models.RateUpdate) error
}

// PipelineOption configures a RealtimePipeline.
type PipelineOption func(*RealtimePipeline)

// WithMaxRPS caps per-country update throughput.
func WithMaxRPS(rps int) PipelineOption {
	return func(p *RealtimePipeline) {
		if rps > 0 {
			p.minGap = time.Second / time.Duration(rps)
		}
	}
}

// WithBufferSize sets the retry buffer capacity for failed downstream sends.
func WithBufferSize(n int) PipelineOption {
	return func(p *RealtimePipeline) {
		if n > 0 {
			p.retry = make(chan *models.RateUpdate, n)
		}
	}
}

// WithTransform installs a hook applied to every update before validation
// of the transformed result and forwarding.
func WithTransform(fn func(*models.RateUpdate) *models.RateUpdate) PipelineOption {
	return func(p *RealtimePipeline) { p.transform = fn }
}

// RealtimePipeline sits between the feed and the processor: it validates
// incoming updates, throttles per country, and buffers updates the
// processor rejected so they can be retried with backoff.
type RealtimePipeline struct {
	next      Proc
	metrics   domrepo.Metrics
	transform func(*models.RateUpdate) *models.RateUpdate

	minGap time.Duration
	retry  chan *models.RateUpdate

	mu       sync.Mutex
	lastSeen map[string]time.Time
	started  bool
	stop     chan struct{}
	wg       sync.WaitGroup
}

func NewRealtimePipeline(next Proc, metrics domrepo.Metrics, opts ...PipelineOption) *RealtimePipeline {
	p := &RealtimePipeline{
		next:     next,
		metrics:  metrics,
		minGap:   time.Second / 20,
		retry:    make(chan *models.RateUpdate, 1000),
		lastSeen: make(map[string]time.Time),
		stop:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the retry drainer. Safe to call once.
func (p *RealtimePipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	p.wg.Add(1)
	go p.drainRetries(ctx)
}

func (p *RealtimePipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()

	close(p.stop)
	p.wg.Wait()
}

// Process validates, throttles and forwards one update. A throttled update
// is dropped without error; a downstream failure is buffered for retry and
// surfaced to the caller.
func (p *RealtimePipeline) Process(ctx context.Context, u *models.RateUpdate) error {
	if err := checkUpdate(u); err != nil {
		return err
	}
	if p.transform != nil {
		u = p.transform(u)
		if err := checkUpdate(u); err != nil {
			return fmt.Errorf("transform produced invalid update: %w", err)
		}
	}
	if p.throttled(u.Country) {
		p.metrics.RecordError("pipeline_throttle_" + u.Country)
		return nil
	}

	start := time.Now()
	if err := p.next.Process(ctx, u); err != nil {
		p.metrics.RecordError("pipeline_process")
		select {
		case p.retry <- u:
		default:
			p.metrics.RecordError("pipeline_buffer_full")
		}
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	p.metrics.RecordLatency("pipeline_process", time.Since(start).Seconds())
	return nil
}

// throttled reports whether the country's minimum inter-update gap has not
// yet elapsed, updating the last-seen time when the update is admitted.
func (p *RealtimePipeline) throttled(country string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	if last, ok := p.lastSeen[country]; ok && now.Sub(last) < p.minGap {
		return true
	}
	p.lastSeen[country] = now
	return false
}

// drainRetries replays buffered updates with exponential backoff. An update
// that keeps failing is requeued if there is room, otherwise dropped.
func (p *RealtimePipeline) drainRetries(ctx context.Context) {
	defer p.wg.Done()

	backoff := 50 * time.Millisecond
	const maxBackoff = 2 * time.Second

	for {
		select {
		case <-p.stop:
			return
		case <-ctx.Done():
			return
		case u := <-p.retry:
			if err := p.next.Process(ctx, u); err != nil {
				p.metrics.RecordError("pipeline_flush")
				select {
				case p.retry <- u:
				default:
					p.metrics.RecordError("pipeline_buffer_drop")
				}
				select {
				case <-time.After(backoff):
				case <-p.stop:
					return
				}
				if backoff *= 2; backoff > maxBackoff {
					backoff = maxBackoff
				}
				continue
			}
			backoff = 50 * time.Millisecond
			p.metrics.RecordLatency("pipeline_buffer_depth", float64(len(p.retry)))
		}
	}
}

func checkUpdate(u *models.RateUpdate) error {
	switch {
	case u == nil:
		return fmt.Errorf("nil update")
	case u.Country == "":
		return fmt.Errorf("update without country")
	case u.Timestamp <= 0:
		return fmt.Errorf("update without timestamp")
	case math.IsNaN(curvemath.ToYears(u.Label)):
		return fmt.Errorf("unparseable maturity label %q", u.Label)
	case math.IsNaN(u.Rate) || math.IsInf(u.Rate, 0):
		return fmt.Errorf("non-finite rate for %s %s", u.Country, u.Label)
	}
	return nil
}
