package di

import (
	"context"
	"fmt"
	"time"

	"YieldPull/internal/domain/repository"
	mid "YieldPull/internal/middleware"
	internalrepo "YieldPull/internal/repository"
	"YieldPull/internal/service/ratefeed"
	"YieldPull/internal/usecase"
	pkgch "YieldPull/pkg/clickhouse"
	"YieldPull/pkg/config"
	pkgkafka "YieldPull/pkg/kafka"
	"YieldPull/pkg/metrics"
	"YieldPull/pkg/server"

	"github.com/segmentio/kafka-go"
)

// rateUpdatesSchema is applied on startup; all statements are idempotent.
var rateUpdatesSchema = []string{
	"CREATE DATABASE IF NOT EXISTS yieldpull",
	"CREATE TABLE IF NOT EXISTS yieldpull.rate_updates (ts DateTime, country String, maturity String, rate Float64, source String, event_id String, seq UInt64) ENGINE=MergeTree ORDER BY (country, maturity, ts)",
}

func clickhouseOptions(c config.ClickHouseConfig) []pkgch.ClientOption {
	return []pkgch.ClientOption{
		pkgch.WithHost(c.Host),
		pkgch.WithPort(c.Port),
		pkgch.WithDatabase(c.Database),
		pkgch.WithCredentials(c.User, c.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(c.UseHTTP),
		pkgch.WithAsyncInsert(c.AsyncInsert, c.WaitForAsync),
		pkgch.WithTimeouts(c.DialTimeout, c.ReadTimeout, c.WriteTimeout),
		pkgch.WithMaxExecutionTime(c.MaxExecutionTime),
	}
}

// ProvideClickHouseClient opens the ClickHouse pool and applies the schema.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(clickhouseOptions(cfg.ClickHouse)...)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, rateUpdatesSchema); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

func producerOptions(k config.KafkaConfig) []pkgkafka.ProducerOption {
	p := k.Producer
	return []pkgkafka.ProducerOption{
		pkgkafka.WithBrokers(k.Brokers),
		pkgkafka.WithCompression(k.Compression),
		pkgkafka.WithRequiredAcks(k.RequiredAcks),
		pkgkafka.WithBatchSize(p.BatchSize),
		pkgkafka.WithBatchBytes(p.BatchBytes),
		pkgkafka.WithBatchTimeout(p.Linger),
		pkgkafka.WithTimeouts(p.WriteTimeout, p.ReadTimeout),
		pkgkafka.WithMaxAttempts(p.MaxAttempts),
		pkgkafka.WithAsync(p.Async),
		pkgkafka.WithHashByKey(true),
	}
}

// ProvideKafkaProducer creates the rates Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(producerOptions(cfg.Kafka)...)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

func consumerOptions(k config.KafkaConfig) []pkgkafka.ConsumerOption {
	c := k.Consumer
	return []pkgkafka.ConsumerOption{
		pkgkafka.WithConsumerBrokers(k.Brokers),
		pkgkafka.WithConsumerGroupID(c.GroupID),
		pkgkafka.WithConsumerWorkers(c.Workers),
		pkgkafka.WithConsumerBufferSize(c.BufferSize),
		pkgkafka.WithConsumerRetry(c.RetryMax, c.BackoffMin, c.BackoffMax),
		pkgkafka.WithConsumerDLQ(c.DLQTopic),
		pkgkafka.WithConsumerFetch(c.MinBytes, c.MaxBytes),
	}
}

// ProvideKafkaConsumer creates the rates Kafka consumer.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(consumerOptions(cfg.Kafka)...)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideMetrics creates the Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics { return metrics.New() }

// ProvideRateStorage backs the Storage interface with ClickHouse.
func ProvideRateStorage(chClient *pkgch.Client, cfg *config.Config) repository.Storage {
	table := cfg.ClickHouse.Database + ".rate_updates"
	return internalrepo.NewClickHouseStorage(chClient.DB(), table)
}

// ProvideRatePublisher backs the Publisher interface with Kafka.
func ProvideRatePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvideKafkaRatesHandler registers the handler for the rates topic.
func ProvideKafkaRatesHandler(store repository.Storage, metrics repository.Metrics, cfg *config.Config) *usecase.KafkaRatesHandler {
	return usecase.NewKafkaRatesHandler(cfg.Kafka.Topic, store, metrics)
}

// ProvideRateStream creates the rate feed WebSocket stream.
func ProvideRateStream(cfg *config.Config) repository.RateStream {
	f := cfg.Feed
	return ratefeed.New(f.APIKey, f.WebSocketURL, f.Countries, f.ReconnectDelay, f.PingInterval)
}

// ProvideRateUpdateProcessor creates the update processor use case.
func ProvideRateUpdateProcessor(
	pub repository.Publisher,
	store repository.Storage,
	metrics repository.Metrics,
	cfg *config.Config,
) *usecase.RateUpdateProcessor {
	b := cfg.Backend
	return usecase.NewRateUpdateProcessor(pub, store, metrics, b.Type, b.BatchSize, b.BatchTimeout)
}

// ProvideCurveCollector creates the collector with the validating,
// throttling pipeline between the WebSocket feed and the backend.
func ProvideCurveCollector(
	stream repository.RateStream,
	processor *usecase.RateUpdateProcessor,
	metrics repository.Metrics,
) *usecase.CurveCollector {
	pipe := mid.NewRealtimePipeline(processor, metrics,
		mid.WithMaxRPS(50),
		mid.WithBufferSize(2000),
	)
	return usecase.NewCurveCollector(stream, processor, metrics, pipe)
}

// consumerHooks builds the hook chain attached to the Kafka consumer:
// trace-id propagation from headers plus handle-latency and error metrics.
func consumerHooks(m repository.Metrics) *pkgkafka.HookChain {
	return pkgkafka.NewHookChain(
		pkgkafka.HookFuncs{
			Before: func(ctx context.Context, topic string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error) {
				ctx = pkgkafka.WithStartTime(ctx, time.Now())
				ctx = pkgkafka.WithTraceID(ctx, pkgkafka.ExtractTraceID(km))
				return ctx, km, data, nil
			},
			After: func(ctx context.Context, topic string, km kafka.Message, data []byte, err error) {
				if start, ok := ctx.Value(pkgkafka.CtxStartTime).(time.Time); ok {
					m.RecordLatency("kafka_handle_seconds", time.Since(start).Seconds())
				}
			},
			Err: func(ctx context.Context, topic string, km kafka.Message, data []byte, err error) {
				m.RecordError("kafka_consumer")
			},
		},
	)
}

// ProvideApp assembles the application server.
func ProvideApp(
	cfg *config.Config,
	collector *usecase.CurveCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaRatesHandler,
	chClient *pkgch.Client,
	metrics repository.Metrics,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(consumerHooks(metrics))
	}
	app := server.New(cfg, collector, consumer, kh, chClient, metrics)
	// attach the processor to the app for closing resources on shutdown
	if collector != nil {
		app.Proc = collector.Processor()
	}
	return app
}
