package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

// Config is the full application configuration, loaded from YAML with
// selected environment overrides on top.
type Config struct {
	Environment string           `yaml:"environment"`
	Server      ServerConfig     `yaml:"server"`
	Metrics     MetricsConfig    `yaml:"metrics"`
	Backend     BackendConfig    `yaml:"backend"`
	Kafka       KafkaConfig      `yaml:"kafka"`
	ClickHouse  ClickHouseConfig `yaml:"clickhouse"`
	Feed        FeedConfig       `yaml:"feed"`
	Rates       RatesConfig      `yaml:"rates"`
	Bootstrap   BootstrapConfig  `yaml:"bootstrap"`
}

type ServerConfig struct {
	Port            int           `yaml:"port" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path" default:"/metrics"`
}

// BackendConfig selects where accepted rate updates are routed.
type BackendConfig struct {
	Type         string        `yaml:"type"`
	BatchSize    int           `yaml:"batch_size" default:"100"`
	BatchTimeout time.Duration `yaml:"batch_timeout" default:"1s"`
}

type KafkaConfig struct {
	Brokers      []string            `yaml:"brokers"`
	Topic        string              `yaml:"topic"`
	RequiredAcks int                 `yaml:"required_acks" default:"-1"`
	Compression  string              `yaml:"compression" default:"gzip"`
	Producer     KafkaProducerConfig `yaml:"producer"`
	Consumer     KafkaConsumerConfig `yaml:"consumer"`
}

type KafkaProducerConfig struct {
	MaxAttempts  int           `yaml:"max_attempts" default:"3"`
	Linger       time.Duration `yaml:"linger" default:"1s"`
	BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
	BatchSize    int           `yaml:"batch_size" default:"100"`
	WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
	ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
	Async        bool          `yaml:"async"`
}

type KafkaConsumerConfig struct {
	GroupID    string        `yaml:"group_id" default:"yieldpull"`
	Workers    int           `yaml:"workers" default:"1"`
	BufferSize int           `yaml:"buffer_size" default:"10"`
	RetryMax   int           `yaml:"retry_max" default:"3"`
	BackoffMin time.Duration `yaml:"backoff_min" default:"50ms"`
	BackoffMax time.Duration `yaml:"backoff_max" default:"2s"`
	DLQTopic   string        `yaml:"dlq_topic"`
	MinBytes   int           `yaml:"min_bytes" default:"10000"`
	MaxBytes   int           `yaml:"max_bytes" default:"10000000"`
}

type ClickHouseConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port" default:"9000"`
	Database         string        `yaml:"database" default:"yieldpull"`
	User             string        `yaml:"user" default:"default"`
	Password         string        `yaml:"password"`
	UseHTTP          bool          `yaml:"use_http"`
	AsyncInsert      bool          `yaml:"async_insert"`
	WaitForAsync     bool          `yaml:"wait_for_async_insert"`
	DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
	ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
	WriteTimeout     time.Duration `yaml:"write_timeout" default:"10s"`
	MaxExecutionTime time.Duration `yaml:"max_execution_time"`
}

// FeedConfig points at the upstream sovereign-rate WebSocket feed.
type FeedConfig struct {
	APIKey         string        `yaml:"api_key"`
	WebSocketURL   string        `yaml:"websocket_url"`
	Countries      []string      `yaml:"countries"`
	ReconnectDelay time.Duration `yaml:"reconnect_delay" default:"3s"`
	PingInterval   time.Duration `yaml:"ping_interval" default:"30s"`
}

// RatesConfig configures the rates HTTP service client and response caching.
type RatesConfig struct {
	ServiceURL string        `yaml:"service_url"`
	Timeout    time.Duration `yaml:"timeout" default:"3s"`
	CacheTTL   CacheTTLs     `yaml:"cache_ttl"`
	Redis      RedisConfig   `yaml:"redis"`
}

type CacheTTLs struct {
	Curve   time.Duration `yaml:"curve" default:"15s"`
	Futures time.Duration `yaml:"futures" default:"30s"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr" default:"localhost:6379"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// BootstrapConfig controls the periodic curve bootstrap refresh.
type BootstrapConfig struct {
	DefaultMethod   string        `yaml:"default_method"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	QueueWorkers    int           `yaml:"queue_workers" default:"1"`
}

// Load reads, defaults, parses and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	c := &Config{}
	if err := defaults.Set(c); err != nil {
		return nil, fmt.Errorf("default config: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// envOverrides maps environment variables onto their config fields.
func (c *Config) envOverrides() map[string]func(string) {
	return map[string]func(string){
		"FEED_API_KEY":  func(v string) { c.Feed.APIKey = v },
		"COUNTRIES":     func(v string) { c.Feed.Countries = strings.Split(v, ",") },
		"BACKEND":       func(v string) { c.Backend.Type = v },
		"KAFKA_BROKERS": func(v string) { c.Kafka.Brokers = strings.Split(v, ",") },
		"KAFKA_TOPIC":   func(v string) { c.Kafka.Topic = v },
		"REDIS_ADDR":    func(v string) { c.Rates.Redis.Addr = v },
	}
}

// LoadWithEnv loads the file and applies environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	for name, apply := range c.envOverrides() {
		if v := os.Getenv(name); v != "" {
			apply(v)
		}
	}
	return c, nil
}

// Validate rejects configurations the application cannot run with.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Backend.Type {
	case "kafka", "clickhouse":
	case "":
		return fmt.Errorf("backend.type is required")
	default:
		return fmt.Errorf("backend.type must be 'kafka' or 'clickhouse', got '%s'", c.Backend.Type)
	}
	if len(c.Feed.Countries) == 0 {
		return fmt.Errorf("feed.countries cannot be empty")
	}
	if c.Feed.WebSocketURL == "" {
		return fmt.Errorf("feed.websocket_url is required")
	}
	switch c.Bootstrap.DefaultMethod {
	case "", "linear", "cubic-spline", "nelson-siegel":
	default:
		return fmt.Errorf("bootstrap.default_method must be linear, cubic-spline or nelson-siegel, got '%s'", c.Bootstrap.DefaultMethod)
	}
	return nil
}
