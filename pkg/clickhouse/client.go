// Package clickhouse wraps a database/sql pool over the ClickHouse driver
// with the option surface this service actually uses.
package clickhouse

import (
	"context"
	"database/sql"
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

// Option configures the client.
type Option func(*options)

type options struct {
	host         string
	port         int
	database     string
	user         string
	password     string
	maxOpenConns int
	maxIdleConns int
	connLifetime time.Duration
	dialTimeout  time.Duration
	readTimeout  time.Duration
	useHTTP      bool
	asyncInsert  bool
	waitForAsync bool
	maxExecTime  time.Duration
}

func WithAddress(host string, port int) Option {
	return func(o *options) {
		o.host = host
		o.port = port
	}
}

func WithDatabase(database string) Option {
	return func(o *options) { o.database = database }
}

func WithCredentials(user, password string) Option {
	return func(o *options) {
		o.user = user
		o.password = password
	}
}

func WithPool(maxOpen, maxIdle int, lifetime time.Duration) Option {
	return func(o *options) {
		o.maxOpenConns = maxOpen
		o.maxIdleConns = maxIdle
		o.connLifetime = lifetime
	}
}

func WithTimeouts(dial, read time.Duration) Option {
	return func(o *options) {
		o.dialTimeout = dial
		o.readTimeout = read
	}
}

// WithHTTP switches from the native protocol to HTTP.
func WithHTTP(useHTTP bool) Option {
	return func(o *options) { o.useHTTP = useHTTP }
}

// WithAsyncInsert enables server-side async inserts and whether writes wait
// for them.
func WithAsyncInsert(enabled, wait bool) Option {
	return func(o *options) {
		o.asyncInsert = enabled
		o.waitForAsync = wait
	}
}

func WithMaxExecutionTime(d time.Duration) Option {
	return func(o *options) { o.maxExecTime = d }
}

// NewClient opens the pool and verifies connectivity with a ping.
func NewClient(opts ...Option) (*Client, error) {
	o := &options{
		port:         9000,
		user:         "default",
		maxOpenConns: 10,
		maxIdleConns: 5,
		connLifetime: 5 * time.Minute,
		dialTimeout:  5 * time.Second,
		readTimeout:  10 * time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.host == "" {
		return nil, fmt.Errorf("clickhouse: host is required")
	}

	db, err := sql.Open("clickhouse", dsn(o))
	if err != nil {
		return nil, fmt.Errorf("clickhouse open: %w", err)
	}
	db.SetMaxOpenConns(o.maxOpenConns)
	db.SetMaxIdleConns(o.maxIdleConns)
	db.SetConnMaxLifetime(o.connLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), o.dialTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("clickhouse ping: %w", err)
	}
	return &Client{db: db}, nil
}

// DB exposes the pool for repository queries.
func (c *Client) DB() *sql.DB { return c.db }

func (c *Client) Health(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
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

func dsn(o *options) string {
	scheme := "clickhouse"
	if o.useHTTP {
		scheme = "clickhouse+http"
	}

	q := url.Values{}
	if o.dialTimeout > 0 {
		q.Set("dial_timeout", o.dialTimeout.String())
	}
	if o.readTimeout > 0 {
		q.Set("read_timeout", o.readTimeout.String())
	}
	if o.maxExecTime > 0 {
		q.Set("max_execution_time", strconv.Itoa(int(o.maxExecTime.Seconds())))
	}
	if o.asyncInsert {
		q.Set("async_insert", "1")
		if o.waitForAsync {
			q.Set("wait_for_async_insert", "1")
		}
	}

	u := url.URL{
		Scheme:   scheme,
		User:     url.UserPassword(o.user, o.password),
		Host:     fmt.Sprintf("%s:%d", o.host, o.port),
		Path:     "/" + o.database,
		RawQuery: q.Encode(),
	}
	return u.String()
}
