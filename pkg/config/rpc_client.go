package config

import (
	"errors"
	"time"
)

// Default RPC client settings.
const (
	DefaultRequestTimeout = 30 * time.Second
	DefaultDialTimeout    = 5 * time.Second

	DefaultMaxConnections    = 10
	DefaultMinIdle           = 2
	DefaultMaxIdleTime       = 5 * time.Minute
	DefaultConnectionTimeout = 10 * time.Second

	DefaultCacheMaxEntries = 1000

	DefaultFailureThreshold    = 5
	DefaultBreakerWindow       = 60 * time.Second
	DefaultBreakerTimeout      = 30 * time.Second
	DefaultHalfOpenMaxRequests = 3
	DefaultSuccessThreshold    = 2

	DefaultMaxRetries    = 3
	DefaultRetryDelay    = 100 * time.Millisecond
	DefaultMaxRetryDelay = 10 * time.Second
)

type (
	// RPCClient is the RPC client configuration.
	RPCClient struct {
		// Endpoint is the primary node URL.
		Endpoint string `yaml:"Endpoint"`
		// Endpoints are fallback node URLs tried in order when the
		// primary one is unavailable.
		Endpoints      []string      `yaml:"Endpoints"`
		RequestTimeout time.Duration `yaml:"RequestTimeout"`
		DialTimeout    time.Duration `yaml:"DialTimeout"`
		Pool           Pool          `yaml:"Pool"`
		Cache          Cache         `yaml:"Cache"`
		Breaker        Breaker       `yaml:"Breaker"`
		Retry          Retry         `yaml:"Retry"`
	}

	// Pool is the connection pool configuration.
	Pool struct {
		MaxConnections    int           `yaml:"MaxConnections"`
		MinIdle           int           `yaml:"MinIdle"`
		MaxIdleTime       time.Duration `yaml:"MaxIdleTime"`
		ConnectionTimeout time.Duration `yaml:"ConnectionTimeout"`
	}

	// Cache is the response cache configuration.
	Cache struct {
		Disabled   bool `yaml:"Disabled"`
		MaxEntries int  `yaml:"MaxEntries"`
	}

	// Breaker is the per-endpoint circuit breaker configuration.
	Breaker struct {
		Disabled            bool          `yaml:"Disabled"`
		FailureThreshold    int           `yaml:"FailureThreshold"`
		Window              time.Duration `yaml:"Window"`
		Timeout             time.Duration `yaml:"Timeout"`
		HalfOpenMaxRequests int           `yaml:"HalfOpenMaxRequests"`
		SuccessThreshold    int           `yaml:"SuccessThreshold"`
	}

	// Retry is the retry policy configuration. MaxRetries is the number of
	// retries after the first attempt, -1 disables retries.
	Retry struct {
		MaxRetries    int           `yaml:"MaxRetries"`
		RetryDelay    time.Duration `yaml:"RetryDelay"`
		MaxRetryDelay time.Duration `yaml:"MaxRetryDelay"`
	}
)

// SetDefaults fills zero fields with default values.
func (r *RPCClient) SetDefaults() {
	if r.RequestTimeout == 0 {
		r.RequestTimeout = DefaultRequestTimeout
	}
	if r.DialTimeout == 0 {
		r.DialTimeout = DefaultDialTimeout
	}
	r.Pool.SetDefaults()
	r.Cache.SetDefaults()
	r.Breaker.SetDefaults()
	r.Retry.SetDefaults()
}

// Validate checks RPCClient for internal consistency.
func (r *RPCClient) Validate() error {
	if r.Endpoint == "" && len(r.Endpoints) == 0 {
		return errors.New("no endpoints")
	}
	if r.RequestTimeout < 0 || r.DialTimeout < 0 {
		return errors.New("negative timeout")
	}
	if err := r.Pool.Validate(); err != nil {
		return err
	}
	return r.Breaker.Validate()
}

// SetDefaults fills zero fields with default values.
func (p *Pool) SetDefaults() {
	if p.MaxConnections == 0 {
		p.MaxConnections = DefaultMaxConnections
	}
	if p.MinIdle == 0 {
		p.MinIdle = min(DefaultMinIdle, p.MaxConnections)
	}
	if p.MaxIdleTime == 0 {
		p.MaxIdleTime = DefaultMaxIdleTime
	}
	if p.ConnectionTimeout == 0 {
		p.ConnectionTimeout = DefaultConnectionTimeout
	}
}

// Validate checks Pool for internal consistency.
func (p *Pool) Validate() error {
	if p.MaxConnections < 1 {
		return errors.New("MaxConnections must be positive")
	}
	if p.MinIdle < 0 || p.MinIdle > p.MaxConnections {
		return errors.New("MinIdle must be in [0, MaxConnections]")
	}
	return nil
}

// SetDefaults fills zero fields with default values.
func (c *Cache) SetDefaults() {
	if c.MaxEntries == 0 {
		c.MaxEntries = DefaultCacheMaxEntries
	}
}

// SetDefaults fills zero fields with default values.
func (b *Breaker) SetDefaults() {
	if b.FailureThreshold == 0 {
		b.FailureThreshold = DefaultFailureThreshold
	}
	if b.Window == 0 {
		b.Window = DefaultBreakerWindow
	}
	if b.Timeout == 0 {
		b.Timeout = DefaultBreakerTimeout
	}
	if b.HalfOpenMaxRequests == 0 {
		b.HalfOpenMaxRequests = DefaultHalfOpenMaxRequests
	}
	if b.SuccessThreshold == 0 {
		b.SuccessThreshold = min(DefaultSuccessThreshold, b.HalfOpenMaxRequests)
	}
}

// Validate checks Breaker for internal consistency.
func (b *Breaker) Validate() error {
	if b.Disabled {
		return nil
	}
	if b.FailureThreshold < 1 || b.SuccessThreshold < 1 || b.HalfOpenMaxRequests < 1 {
		return errors.New("breaker thresholds must be positive")
	}
	if b.SuccessThreshold > b.HalfOpenMaxRequests {
		return errors.New("SuccessThreshold can't exceed HalfOpenMaxRequests")
	}
	return nil
}

// SetDefaults fills zero fields with default values.
func (r *Retry) SetDefaults() {
	if r.MaxRetries == 0 {
		r.MaxRetries = DefaultMaxRetries
	}
	if r.RetryDelay == 0 {
		r.RetryDelay = DefaultRetryDelay
	}
	if r.MaxRetryDelay == 0 {
		r.MaxRetryDelay = DefaultMaxRetryDelay
	}
}
