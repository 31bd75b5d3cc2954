package server

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	domrepo "YieldPull/internal/domain/repository"
	domsvc "YieldPull/internal/domain/service"
	"YieldPull/internal/handler/api"
	"YieldPull/internal/repository"
	"YieldPull/internal/services/rates"
	"YieldPull/internal/usecase"
	pkgcache "YieldPull/pkg/cache"
	pkgch "YieldPull/pkg/clickhouse"
	"YieldPull/pkg/config"
	xhttp "YieldPull/pkg/http"
	pkgkafka "YieldPull/pkg/kafka"
	applogger "YieldPull/pkg/logger"
	pkgqueue "YieldPull/pkg/queue"
	"YieldPull/pkg/util"
)

// App owns the lifecycle of every long-running component: the feed
// collector, the optional Kafka consumer, the refresh queue and the HTTP
// read API.
type App struct {
	cfg         *config.Config
	l           *applogger.Logger
	collector   *usecase.CurveCollector
	consumer    *pkgkafka.Consumer
	kh          pkgkafka.MessageHandler
	chClient    *pkgch.Client
	metrics     domrepo.Metrics
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
	queue       *pkgqueue.RedisQueue
	refreshStop chan struct{}
	Proc        *usecase.RateUpdateProcessor
}

func New(
	cfg *config.Config,
	collector *usecase.CurveCollector,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	chClient *pkgch.Client,
	metrics domrepo.Metrics,
) *App {
	l, _ := applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stdout"})
	return &App{
		cfg:       cfg,
		l:         l,
		collector: collector,
		consumer:  consumer,
		kh:        kh,
		chClient:  chClient,
		metrics:   metrics,
	}
}

// SetHTTPHandler overrides the default read-API handler, mainly for wiring
// a prebuilt handler from DI.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.httpHandler = h }

// Run starts everything and blocks until SIGINT/SIGTERM, then shuts down.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := a.httpHandler
	if handler == nil && a.chClient != nil {
		handler = a.buildReadPath()
	}
	a.httpServer = xhttp.NewServer(handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	a.startCollector(ctx)
	a.startConsumer()
	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}

	waitForSignal()
	a.l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

func waitForSignal() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
}

// buildReadPath assembles the storage-backed curve API: ClickHouse store,
// optional upstream rates source, bootstrapper, caching and the periodic
// refresh queue.
func (a *App) buildReadPath() xhttp.Handler {
	store := repository.NewCHCurveStore(a.chClient, a.cfg.ClickHouse.Database+".rate_updates")
	store.SetLogger(a.l)

	var source domsvc.CurveSource
	if a.cfg.Rates.ServiceURL != "" {
		source = rates.NewHTTPCurveSource(a.cfg)
	}
	boot := usecase.NewCurveBootstrapper(a.metrics)
	curveUC := usecase.NewCurveUseCase(store, source, boot)
	historyUC := usecase.NewHistoryUseCase(store)

	cacheSvc := a.buildCache()
	if cacheSvc != nil {
		curveUC.SetCache(cacheSvc, a.cfg.Rates.CacheTTL.Curve)
	}

	ce := api.NewCurvesEchoHandler(a.l, curveUC, historyUC)
	if a.cfg.Rates.ServiceURL != "" {
		futuresUC := usecase.NewFuturesUseCase(rates.NewHTTPFuturesSource(a.cfg))
		if cacheSvc != nil {
			futuresUC.SetCache(cacheSvc, a.cfg.Rates.CacheTTL.Futures)
		}
		ce.SetFutures(futuresUC)
	}

	a.startRefreshQueue(curveUC)
	return ce
}

func (a *App) startCollector(ctx context.Context) {
	go func() {
		if err := a.collector.Start(ctx); err != nil {
			a.l.Error("collector error", applogger.Error(err))
		}
	}()
	a.l.Info("collector started", applogger.Strings("countries", a.cfg.Feed.Countries))
}

func (a *App) startConsumer() {
	if a.consumer == nil || a.kh == nil {
		return
	}
	a.consumer.RegisterHandler(a.kh)
	go func() {
		if err := a.consumer.Start(); err != nil {
			a.l.Error("kafka consumer error", applogger.Error(err))
		}
	}()
	a.l.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
}

// buildCache picks Redis (layered) when configured, memory otherwise.
func (a *App) buildCache() pkgcache.Service {
	if !a.cfg.Rates.Redis.Enabled {
		return pkgcache.NewMemoryCache()
	}
	rc, err := a.redisCache()
	if err != nil {
		a.l.Warn("redis cache unavailable, using memory", applogger.Error(err))
		return pkgcache.NewMemoryCache()
	}
	return pkgcache.NewLayeredCache(rc)
}

func (a *App) redisCache() (*pkgcache.RedisCache, error) {
	host, port := splitHostPort(a.cfg.Rates.Redis.Addr)
	return pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(host),
		pkgcache.WithRedisPort(port),
		pkgcache.WithRedisPassword(a.cfg.Rates.Redis.Password),
		pkgcache.WithRedisDB(a.cfg.Rates.Redis.DB),
	)
}

// startRefreshQueue wires the periodic cache warm-up through the Redis queue.
func (a *App) startRefreshQueue(curveUC *usecase.CurveUseCase) {
	if !a.cfg.Rates.Redis.Enabled || a.cfg.Bootstrap.RefreshInterval <= 0 {
		return
	}
	rc, err := a.redisCache()
	if err != nil {
		a.l.Warn("refresh queue disabled, redis unavailable", applogger.Error(err))
		return
	}

	workers := a.cfg.Bootstrap.QueueWorkers
	if workers <= 0 {
		workers = 1
	}
	q := pkgqueue.NewRedisQueue(a.l, &pkgqueue.QueueConfig{
		Workers:    workers,
		RetryLimit: 3,
		RetryDelay: 10 * time.Second,
	}, rc.Client(), pkgqueue.ModeProducerConsumer)
	q.RegisterJob(usecase.NewRefreshJob(curveUC, a.l))
	if err := q.Start(); err != nil {
		a.l.Warn("refresh queue start failed", applogger.Error(err))
		return
	}
	a.queue = q
	a.refreshStop = make(chan struct{})

	// Aggregate repeated error logs and ship them through a dedicated
	// producer-only queue.
	logPub := pkgqueue.NewRedisPublisher(a.l, rc.Client(), pkgqueue.WithKeyPrefix("yieldpull:logs"))
	a.l.AddCollector(&applogger.CollectionConfig{
		TimeInterval:   30 * time.Second,
		CountThreshold: 100,
		Topic:          "logs.error",
		Publisher:      logPub,
	})

	method := domrepo.NormalizeMethod(a.cfg.Bootstrap.DefaultMethod)
	go a.refreshLoop(q, method)
	a.l.Info("refresh queue started",
		applogger.String("method", string(method)),
		applogger.String("interval", a.cfg.Bootstrap.RefreshInterval.String()))
}

func (a *App) refreshLoop(q *pkgqueue.RedisQueue, method domrepo.Method) {
	ticker := time.NewTicker(a.cfg.Bootstrap.RefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-a.refreshStop:
			return
		case <-ticker.C:
			payload := usecase.RefreshPayload{Method: string(method)}
			if err := q.Enqueue(context.Background(), usecase.RefreshJobType, payload); err != nil {
				a.l.Warn("refresh enqueue failed", applogger.Error(err))
			}
		}
	}
}

func (a *App) shutdown(ctx context.Context) error {
	a.l.Info("shutting down...")

	if err := a.collector.Shutdown(ctx); err != nil {
		a.l.Warn("collector stop error", applogger.Error(err))
	}

	if a.refreshStop != nil {
		close(a.refreshStop)
	}
	if a.queue != nil {
		qCtx, qCancel := context.WithTimeout(ctx, 5*time.Second)
		if err := a.queue.Stop(qCtx); err != nil {
			a.l.Warn("refresh queue stop error", applogger.Error(err))
		}
		qCancel()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.l.Warn("clickhouse close error", applogger.Error(err))
		}
	}
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}
	if a.Proc != nil {
		a.Proc.Close()
	}

	a.l.Info("shutdown complete")
	return nil
}

func splitHostPort(addr string) (string, int) {
	host, portStr, found := strings.Cut(addr, ":")
	if !found {
		return addr, 6379
	}
	return host, util.ParseIntDefault(portStr, 6379)
}
