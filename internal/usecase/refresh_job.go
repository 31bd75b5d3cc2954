package usecase

import (
	"context"

	domrepo "YieldPull/internal/domain/repository"
	"YieldPull/pkg/logger"
	"YieldPull/pkg/queue"
)

// RefreshJobType is the queue message type for periodic curve refresh.
const RefreshJobType = "curve.refresh"

// RefreshPayload selects which estimator's cache to rebuild.
type RefreshPayload struct {
	Method string `json:"method"`
}

// RefreshJob recomputes and re-caches bootstrapped curves off the request path.
type RefreshJob struct {
	curves *CurveUseCase
	l      *logger.Logger
}

func NewRefreshJob(curves *CurveUseCase, l *logger.Logger) *RefreshJob {
	return &RefreshJob{curves: curves, l: l}
}

func (j *RefreshJob) Name() string { return "curve-refresh" }

func (j *RefreshJob) Type() string { return RefreshJobType }

func (j *RefreshJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[RefreshPayload](payload)
	if err != nil {
		return err
	}
	method := domrepo.NormalizeMethod(p.Method)

	if err := j.curves.Warm(ctx, method); err != nil {
		if j.l != nil {
			j.l.Error("curve refresh failed",
				logger.String("method", string(method)),
				logger.Error(err))
		}
		return err
	}
	if j.l != nil {
		j.l.Info("curve cache refreshed", logger.String("method", string(method)))
	}
	return nil
}

var _ queue.Job = (*RefreshJob)(nil)
