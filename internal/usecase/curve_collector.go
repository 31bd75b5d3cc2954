package usecase

import (
	"context"

	"YieldPull/internal/domain/models"
	drepo "YieldPull/internal/domain/repository"
	mid "YieldPull/internal/middleware"
)

// CurveCollector consumes the rate feed stream and pushes updates downstream.
type CurveCollector struct {
	stream  drepo.RateStream
	proc    *RateUpdateProcessor
	metrics drepo.Metrics
	pipe    *mid.RealtimePipeline
}

// NewCurveCollector creates a new CurveCollector instance.
func NewCurveCollector(stream drepo.RateStream, proc *RateUpdateProcessor, metrics drepo.Metrics, pipe *mid.RealtimePipeline) *CurveCollector {
	return &CurveCollector{stream: stream, proc: proc, metrics: metrics, pipe: pipe}
}

// IsConnected returns true if the rate feed stream is connected.
func (c *CurveCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *CurveCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	upCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, upCh, errCh)
	return nil
}

func (c *CurveCollector) consume(ctx context.Context, upCh <-chan *models.RateUpdate, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				c.metrics.RecordError("stream")
				_ = c.stream.Reconnect(ctx)
			}
		case u := <-upCh:
			if u == nil {
				continue
			}
			if c.pipe != nil {
				_ = c.pipe.Process(ctx, u)
			} else {
				_ = c.proc.Process(ctx, u)
			}
			c.metrics.RecordLastRate(u.Country, u.Label, u.Rate)
		}
	}
}

func (c *CurveCollector) Stop() error { return c.stream.Close() }

// Processor returns the underlying RateUpdateProcessor for lifecycle management.
func (c *CurveCollector) Processor() *RateUpdateProcessor { return c.proc }

// Shutdown stops pipeline and closes stream.
func (c *CurveCollector) Shutdown(ctx context.Context) error {
	if c.pipe != nil {
		c.pipe.Stop()
	}
	return c.stream.Close()
}
