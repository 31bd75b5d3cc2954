package clickhouse

import "time"

// ClientOption configures Client.
type ClientOption func(*ClientConfig)

// ClientConfig holds ClickHouse connection settings, grouped by concern.
type ClientConfig struct {
	conn     connSettings
	pool     poolSettings
	timeouts timeoutSettings
	insert   insertSettings
}

type connSettings struct {
	host     string
	port     int
	database string
	user     string
	password string
	useHTTP  bool
}

type poolSettings struct {
	maxOpen     int
	maxIdle     int
	maxLifetime time.Duration
}

type timeoutSettings struct {
	dial        time.Duration
	read        time.Duration
	write       time.Duration
	maxExecTime time.Duration
}

type insertSettings struct {
	async        bool
	waitForAsync bool
}

func WithHost(host string) ClientOption {
	return func(c *ClientConfig) { c.conn.host = host }
}

func WithPort(port int) ClientOption {
	return func(c *ClientConfig) { c.conn.port = port }
}

func WithDatabase(database string) ClientOption {
	return func(c *ClientConfig) { c.conn.database = database }
}

func WithCredentials(user, password string) ClientOption {
	return func(c *ClientConfig) { c.conn.user, c.conn.password = user, password }
}

func WithMaxConnections(maxOpen, maxIdle int) ClientOption {
	return func(c *ClientConfig) { c.pool.maxOpen, c.pool.maxIdle = maxOpen, maxIdle }
}

func WithTimeouts(dial, read, write time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.timeouts.dial, c.timeouts.read, c.timeouts.write = dial, read, write
	}
}

// WithHTTP switches from the native protocol to HTTP.
func WithHTTP(useHTTP bool) ClientOption {
	return func(c *ClientConfig) { c.conn.useHTTP = useHTTP }
}

// WithAsyncInsert enables server-side async inserts and whether to wait for
// them to land.
func WithAsyncInsert(enabled, wait bool) ClientOption {
	return func(c *ClientConfig) { c.insert.async, c.insert.waitForAsync = enabled, wait }
}

// WithMaxExecutionTime caps per-query execution time.
func WithMaxExecutionTime(d time.Duration) ClientOption {
	return func(c *ClientConfig) { c.timeouts.maxExecTime = d }
}
