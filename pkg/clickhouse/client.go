package clickhouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	_ "github.com/ClickHouse/clickhouse-go/v2"
)

// Client manages the ClickHouse connection pool.
type Client struct {
	db *sql.DB
}

func defaultConfig() *ClientConfig {
	return &ClientConfig{
		pool: poolSettings{maxOpen: 10, maxIdle: 5, maxLifetime: 5 * time.Minute},
		timeouts: timeoutSettings{
			dial:  5 * time.Second,
			read:  10 * time.Second,
			write: 10 * time.Second,
		},
	}
}

// NewClient opens the pool and verifies the connection.
func NewClient(opts ...ClientOption) (*Client, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.conn.host == "" {
		return nil, errors.New("clickhouse: host is required")
	}

	db, err := sql.Open("clickhouse", cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("clickhouse open: %w", err)
	}
	cfg.pool.apply(db)

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("clickhouse ping: %w", err)
	}
	return &Client{db: db}, nil
}

func (p poolSettings) apply(db *sql.DB) {
	db.SetMaxOpenConns(p.maxOpen)
	db.SetMaxIdleConns(p.maxIdle)
	db.SetConnMaxLifetime(p.maxLifetime)
}

// DB exposes the pool for query layers.
func (c *Client) DB() *sql.DB { return c.db }

func (c *Client) Health(ctx context.Context) error { return c.db.PingContext(ctx) }

func (c *Client) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// InitSchema runs idempotent DDL statements in order.
func (c *Client) InitSchema(ctx context.Context, stmts []string) error {
	for _, stmt := range stmts {
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (cfg *ClientConfig) dsn() string {
	scheme := "clickhouse"
	if cfg.conn.useHTTP {
		scheme = "clickhouse+http"
	}
	u := url.URL{
		Scheme: scheme,
		User:   url.UserPassword(cfg.conn.user, cfg.conn.password),
		Host:   fmt.Sprintf("%s:%d", cfg.conn.host, cfg.conn.port),
		Path:   "/" + cfg.conn.database,
	}

	q := url.Values{}
	if d := cfg.timeouts.dial; d > 0 {
		q.Set("dial_timeout", d.String())
	}
	if d := cfg.timeouts.read; d > 0 {
		q.Set("read_timeout", d.String())
	}
	// write_timeout is deliberately not a DSN setting; some server versions
	// reject it. The pool's write timeout stays client-side.
	if d := cfg.timeouts.maxExecTime; d > 0 {
		q.Set("max_execution_time", strconv.Itoa(int(d.Seconds())))
	}
	if cfg.insert.async {
		q.Set("async_insert", "1")
		if cfg.insert.waitForAsync {
			q.Set("wait_for_async_insert", "1")
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}
