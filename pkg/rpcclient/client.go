package rpcclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/nspcc-dev/n3sdk/pkg/config"
	"github.com/nspcc-dev/n3sdk/pkg/neorpc"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Clock provides the current time, it's replaced in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Client represents the middleman for executing JSON RPC calls
// to remote NEO RPC nodes. Client is thread-safe and can be used from
// multiple goroutines.
//
// Every call goes through the response cache, the circuit breaker of the
// endpoint, the connection pool and the retry policy, in this order. When
// the primary endpoint is unavailable (its breaker is open or it fails at
// the transport level) fallback endpoints are tried in the order given.
type Client struct {
	endpoints []*endpoint
	opts      Options
	log       *zap.Logger
	clock     Clock

	pool    *connPool
	cache   *responseCache
	metrics *metrics

	closed  *atomic.Bool
	stopCtx func() bool

	latestReqID *atomic.Uint64
	// getNextRequestID returns an ID to be used for the subsequent request creation.
	// It is defined on Client, so that our testing code can override this method
	// for the sake of more predictable request IDs generation behavior.
	getNextRequestID func() uint64
}

type endpoint struct {
	url     string
	host    string
	breaker *breaker
}

// Options defines options for the RPC client. All values are optional,
// zero ones are replaced with defaults from the config package.
type Options struct {
	// Endpoints are fallback endpoints used when the primary one fails.
	Endpoints      []string
	DialTimeout    time.Duration
	RequestTimeout time.Duration

	Pool    PoolOptions
	Cache   CacheOptions
	Breaker BreakerOptions
	// Retry.MaxRetries of zero means the default, negative value disables
	// retries.
	Retry RetryOptions

	// Logger is used for retries, failovers and breaker transitions, nop
	// logger is used if not set.
	Logger *zap.Logger
	Clock  Clock
}

// CacheOptions configures the response cache.
type CacheOptions struct {
	Disabled   bool
	MaxEntries int
}

// New returns a new Client ready to use. The client is closed when the
// context is done.
func New(ctx context.Context, primary string, opts Options) (*Client, error) {
	opts.setDefaults()
	if opts.Pool.MinIdle > opts.Pool.MaxConnections {
		return nil, fmt.Errorf("MinIdle (%d) exceeds MaxConnections (%d)", opts.Pool.MinIdle, opts.Pool.MaxConnections)
	}
	if opts.Breaker.SuccessThreshold > opts.Breaker.HalfOpenMaxRequests {
		return nil, fmt.Errorf("SuccessThreshold (%d) exceeds HalfOpenMaxRequests (%d)",
			opts.Breaker.SuccessThreshold, opts.Breaker.HalfOpenMaxRequests)
	}

	c := &Client{
		opts:        opts,
		log:         opts.Logger,
		clock:       opts.Clock,
		metrics:     newMetrics(),
		closed:      atomic.NewBool(false),
		latestReqID: atomic.NewUint64(0),
	}
	c.getNextRequestID = c.getRequestID

	for _, e := range append([]string{primary}, opts.Endpoints...) {
		u, err := url.Parse(e)
		if err != nil {
			return nil, err
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return nil, fmt.Errorf("unsupported endpoint scheme: %q", e)
		}
		ep := &endpoint{url: u.String(), host: u.Host}
		ep.breaker = newBreaker(opts.Breaker, c.clock.Now, c.breakerLogger(ep.url))
		c.metrics.breakerState(ep.url, BreakerClosed)
		c.endpoints = append(c.endpoints, ep)
	}

	if !opts.Cache.Disabled {
		var err error
		c.cache, err = newResponseCache(opts.Cache.MaxEntries, c.clock.Now)
		if err != nil {
			return nil, err
		}
	}
	c.pool = newConnPool(opts.Pool, opts.DialTimeout, c.clock.Now, c.log)
	c.pool.Start()
	c.stopCtx = context.AfterFunc(ctx, c.Close)
	return c, nil
}

// NewFromConfig creates a client from the YAML configuration section, the
// logger may be nil.
func NewFromConfig(ctx context.Context, cfg config.RPCClient, log *zap.Logger) (*Client, error) {
	return New(ctx, cfg.Endpoint, OptionsFromConfig(cfg, log))
}

// OptionsFromConfig converts the configuration section into client options.
func OptionsFromConfig(cfg config.RPCClient, log *zap.Logger) Options {
	return Options{
		Endpoints:      cfg.Endpoints,
		DialTimeout:    cfg.DialTimeout,
		RequestTimeout: cfg.RequestTimeout,
		Pool: PoolOptions{
			MaxConnections:    cfg.Pool.MaxConnections,
			MinIdle:           cfg.Pool.MinIdle,
			MaxIdleTime:       cfg.Pool.MaxIdleTime,
			ConnectionTimeout: cfg.Pool.ConnectionTimeout,
		},
		Cache: CacheOptions{
			Disabled:   cfg.Cache.Disabled,
			MaxEntries: cfg.Cache.MaxEntries,
		},
		Breaker: BreakerOptions{
			Disabled:            cfg.Breaker.Disabled,
			FailureThreshold:    cfg.Breaker.FailureThreshold,
			Window:              cfg.Breaker.Window,
			Timeout:             cfg.Breaker.Timeout,
			HalfOpenMaxRequests: cfg.Breaker.HalfOpenMaxRequests,
			SuccessThreshold:    cfg.Breaker.SuccessThreshold,
		},
		Retry: RetryOptions{
			MaxRetries:    cfg.Retry.MaxRetries,
			RetryDelay:    cfg.Retry.RetryDelay,
			MaxRetryDelay: cfg.Retry.MaxRetryDelay,
		},
		Logger: log,
	}
}

func (o *Options) setDefaults() {
	if o.DialTimeout <= 0 {
		o.DialTimeout = config.DefaultDialTimeout
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = config.DefaultRequestTimeout
	}
	if o.Pool.MaxConnections <= 0 {
		o.Pool.MaxConnections = config.DefaultMaxConnections
	}
	if o.Pool.MinIdle < 0 {
		o.Pool.MinIdle = 0
	}
	if o.Pool.MaxIdleTime <= 0 {
		o.Pool.MaxIdleTime = config.DefaultMaxIdleTime
	}
	if o.Pool.ConnectionTimeout <= 0 {
		o.Pool.ConnectionTimeout = config.DefaultConnectionTimeout
	}
	if o.Cache.MaxEntries <= 0 {
		o.Cache.MaxEntries = config.DefaultCacheMaxEntries
	}
	if o.Breaker.FailureThreshold <= 0 {
		o.Breaker.FailureThreshold = config.DefaultFailureThreshold
	}
	if o.Breaker.Window <= 0 {
		o.Breaker.Window = config.DefaultBreakerWindow
	}
	if o.Breaker.Timeout <= 0 {
		o.Breaker.Timeout = config.DefaultBreakerTimeout
	}
	if o.Breaker.HalfOpenMaxRequests <= 0 {
		o.Breaker.HalfOpenMaxRequests = config.DefaultHalfOpenMaxRequests
	}
	if o.Breaker.SuccessThreshold <= 0 {
		o.Breaker.SuccessThreshold = min(config.DefaultSuccessThreshold, o.Breaker.HalfOpenMaxRequests)
	}
	if o.Retry.MaxRetries == 0 {
		o.Retry.MaxRetries = config.DefaultMaxRetries
	}
	if o.Retry.RetryDelay <= 0 {
		o.Retry.RetryDelay = config.DefaultRetryDelay
	}
	if o.Retry.MaxRetryDelay <= 0 {
		o.Retry.MaxRetryDelay = config.DefaultMaxRetryDelay
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Clock == nil {
		o.Clock = systemClock{}
	}
}

func (c *Client) getRequestID() uint64 {
	return c.latestReqID.Inc()
}

func (c *Client) breakerLogger(ep string) func(from, to BreakerState) {
	return func(from, to BreakerState) {
		c.metrics.breakerState(ep, to)
		c.log.Warn("circuit breaker state changed",
			zap.String("endpoint", ep),
			zap.Stringer("from", from),
			zap.Stringer("to", to))
	}
}

// Close stops the idle connection reaper and closes idle connections.
// Requests made after Close fail with ErrClosed.
func (c *Client) Close() {
	if !c.closed.CompareAndSwap(false, true) {
		return
	}
	if c.stopCtx != nil {
		c.stopCtx()
	}
	c.pool.Close()
	if c.cache != nil {
		c.cache.Purge()
	}
}

// Stats returns a snapshot of request counters.
func (c *Client) Stats() Stats {
	s := c.metrics.snapshot()
	s.Breakers = make(map[string]BreakerState, len(c.endpoints))
	for _, ep := range c.endpoints {
		s.Breakers[ep.url] = ep.breaker.State()
	}
	return s
}

// Collector returns the prometheus collector of client metrics. It's not
// registered anywhere, that's up to the caller.
func (c *Client) Collector() prometheus.Collector {
	return c.metrics
}

// Endpoint returns the primary endpoint.
func (c *Client) Endpoint() string {
	return c.endpoints[0].url
}

// Ping attempts to create a TCP connection to the primary endpoint and
// returns an error if there is any.
func (c *Client) Ping(ctx context.Context) error {
	d := net.Dialer{Timeout: c.opts.DialTimeout}
	conn, err := d.DialContext(ctx, "tcp", hostPort(c.endpoints[0]))
	if err != nil {
		return &TransportError{Endpoint: c.endpoints[0].url, Method: "ping", Dial: true, Err: err}
	}
	_ = conn.Close()
	return nil
}

func hostPort(ep *endpoint) string {
	u, _ := url.Parse(ep.url)
	if u.Port() != "" {
		return u.Host
	}
	if u.Scheme == "https" {
		return net.JoinHostPort(u.Hostname(), "443")
	}
	return net.JoinHostPort(u.Hostname(), "80")
}

// Health makes an uncached getblockcount request through the circuit
// breakers and returns its error, if any.
func (c *Client) Health(ctx context.Context) error {
	if c.closed.Load() {
		return ErrClosed
	}
	_, err := c.callEndpoints(ctx, "getblockcount", []any{})
	return err
}

// performRequest makes a JSON-RPC call and unmarshals its result into v.
func (c *Client) performRequest(ctx context.Context, method string, p []any, v any) error {
	if p == nil {
		p = []any{} // neo-project/neo-modules#742
	}
	if c.closed.Load() {
		return ErrClosed
	}

	var (
		key       string
		policy    cachePolicy
		cacheable bool
		gen       uint64
	)
	if c.cache != nil {
		policy, cacheable = policyFor(method, p)
		if cacheable {
			var err error
			key, err = cacheKey(method, p)
			if err != nil {
				return fmt.Errorf("%s: bad parameters: %w", method, err)
			}
			if res, ok := c.cache.Get(key); ok {
				c.metrics.cacheHit()
				return json.Unmarshal(res, v)
			}
			c.metrics.cacheMiss()
		}
		gen = c.cache.Generation()
		if writeMethods[method] {
			defer c.cache.Invalidate()
		}
	}

	start := c.clock.Now()
	var res json.RawMessage
	err := withRetries(ctx, method, c.opts.Retry, c.clock, func() error {
		var err error
		res, err = c.callEndpoints(ctx, method, p)
		return err
	}, func(err error, next time.Duration) {
		c.metrics.retry()
		c.log.Debug("retrying request",
			zap.String("method", method),
			zap.Duration("delay", next),
			zap.Error(err))
	})
	c.metrics.request(method, c.clock.Now().Sub(start), err)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(res, v); err != nil {
		return fmt.Errorf("%s: failed to decode result: %w", method, err)
	}
	if cacheable {
		c.cache.Add(key, res, policy, gen)
	}
	return nil
}

// callEndpoints makes a single attempt trying endpoints in order. It moves
// to the next endpoint when the breaker is open or the failure allows
// repeating the request.
func (c *Client) callEndpoints(ctx context.Context, method string, p []any) (json.RawMessage, error) {
	var lastErr error
	for i, ep := range c.endpoints {
		if i > 0 {
			c.log.Info("failing over to another endpoint",
				zap.String("endpoint", ep.url),
				zap.String("method", method),
				zap.Error(lastErr))
		}
		if err := ep.breaker.Allow(); err != nil {
			lastErr = fmt.Errorf("%s %s: %w", method, ep.url, err)
			continue
		}
		res, err := c.doRequest(ctx, ep, method, p)
		c.report(ctx, ep, err)
		if err == nil {
			return res, nil
		}
		lastErr = err
		if !retriable(method, err) {
			break
		}
	}
	return nil, lastErr
}

// report passes the request outcome to the endpoint breaker. Answers of
// the node (protocol errors included) are successes, local problems and
// caller cancellations are not counted.
func (c *Client) report(ctx context.Context, ep *endpoint, err error) {
	var rpcErr *neorpc.Error
	switch {
	case err == nil, errors.As(err, &rpcErr), errors.Is(err, errNoResult):
		ep.breaker.Success()
	case ctx.Err() != nil, errors.Is(err, ErrPoolTimeout), errors.Is(err, ErrClosed):
		ep.breaker.Release()
	default:
		ep.breaker.Failure()
	}
}

// doRequest makes a single HTTP request to the endpoint.
func (c *Client) doRequest(ctx context.Context, ep *endpoint, method string, p []any) (json.RawMessage, error) {
	conn, err := c.pool.Acquire(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, c.ctxError(ctx, method)
		}
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	defer c.pool.Release(conn)

	body, err := json.Marshal(neorpc.NewRequest(c.getNextRequestID(), method, p...))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to encode request: %w", method, err)
	}
	rctx, cancel := context.WithTimeout(ctx, c.opts.RequestTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(rctx, http.MethodPost, ep.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := conn.cli.Do(req)
	if err != nil {
		return nil, c.transportError(ctx, ep, method, err)
	}
	defer resp.Body.Close()

	// The node might send us a proper JSON anyway, so look there first and if
	// it parses, it has more relevant data than HTTP error code.
	raw := new(neorpc.Response)
	err = json.NewDecoder(resp.Body).Decode(raw)
	if err != nil {
		if rctx.Err() != nil {
			return nil, c.transportError(ctx, ep, method, rctx.Err())
		}
		if resp.StatusCode != http.StatusOK {
			err = fmt.Errorf("HTTP %d/%s", resp.StatusCode, http.StatusText(resp.StatusCode))
		} else {
			err = fmt.Errorf("JSON decoding: %w", err)
		}
		return nil, &TransportError{Endpoint: ep.url, Method: method, Err: err}
	}
	if raw.Error != nil {
		return nil, raw.Error
	}
	if raw.Result == nil {
		return nil, fmt.Errorf("%s: %w", method, errNoResult)
	}
	return raw.Result, nil
}

func (c *Client) ctxError(ctx context.Context, method string) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", method, ErrTimeout, ctx.Err())
	}
	return fmt.Errorf("%s: %w", method, ctx.Err())
}

// transportError converts an HTTP client error into the error taxonomy:
// caller cancellation, request timeout or a transport failure.
func (c *Client) transportError(ctx context.Context, ep *endpoint, method string, err error) error {
	if ctx.Err() != nil {
		return c.ctxError(ctx, method)
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return &TransportError{Endpoint: ep.url, Method: method, Dial: true, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s %s: no answer in %s", ErrTimeout, method, ep.url, c.opts.RequestTimeout)
	}
	return &TransportError{Endpoint: ep.url, Method: method, Err: err}
}
