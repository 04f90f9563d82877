package rpcclient

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// PoolOptions configures the connection pool.
type PoolOptions struct {
	// MaxConnections limits the number of concurrent requests.
	MaxConnections int
	// MinIdle is the number of pooled clients never reaped for idleness.
	// They're allocated at start but dial lazily, the TCP connection is
	// established by the first request made with the client and then kept
	// alive by its transport up to MaxIdleTime.
	MinIdle int
	// MaxIdleTime is the time after which an unused connection is closed.
	MaxIdleTime time.Duration
	// ConnectionTimeout limits the time waiting for a free connection.
	ConnectionTimeout time.Duration
}

// conn is a single pooled HTTP connection. Its transport keeps at most one
// TCP connection per host.
type conn struct {
	cli      *http.Client
	tr       *http.Transport
	lastUsed time.Time
}

func (c *conn) close() {
	c.tr.CloseIdleConnections()
}

// connPool gates concurrent requests with a semaphore and keeps released
// connections for reuse.
type connPool struct {
	opts        PoolOptions
	dialTimeout time.Duration
	now         func() time.Time
	log         *zap.Logger

	sem *semaphore.Weighted

	lock    sync.Mutex
	idle    []*conn
	closed  bool
	started bool

	quit chan struct{}
	done chan struct{}
}

func newConnPool(opts PoolOptions, dialTimeout time.Duration, now func() time.Time, log *zap.Logger) *connPool {
	p := &connPool{
		opts:        opts,
		dialTimeout: dialTimeout,
		now:         now,
		log:         log,
		sem:         semaphore.NewWeighted(int64(opts.MaxConnections)),
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	for i := 0; i < opts.MinIdle; i++ {
		c := p.newConn()
		c.lastUsed = now()
		p.idle = append(p.idle, c)
	}
	return p
}

func (p *connPool) newConn() *conn {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   p.dialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConnsPerHost: 1,
		MaxConnsPerHost:     1,
		IdleConnTimeout:     p.opts.MaxIdleTime,
	}
	return &conn{
		cli: &http.Client{Transport: tr},
		tr:  tr,
	}
}

// Acquire waits for a free slot up to the connection timeout. The returned
// connection must be given back with Release.
func (p *connPool) Acquire(ctx context.Context) (*conn, error) {
	actx, cancel := context.WithTimeout(ctx, p.opts.ConnectionTimeout)
	defer cancel()
	if err := p.sem.Acquire(actx, 1); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, ErrPoolTimeout
	}

	p.lock.Lock()
	if p.closed {
		p.lock.Unlock()
		p.sem.Release(1)
		return nil, ErrClosed
	}
	var c *conn
	if n := len(p.idle); n > 0 {
		c = p.idle[n-1]
		p.idle = p.idle[:n-1]
	}
	p.lock.Unlock()

	if c == nil {
		c = p.newConn()
	}
	return c, nil
}

// Release puts the connection back to the idle list and frees the slot.
func (p *connPool) Release(c *conn) {
	c.lastUsed = p.now()
	p.lock.Lock()
	if p.closed {
		c.close()
	} else {
		p.idle = append(p.idle, c)
	}
	p.lock.Unlock()
	p.sem.Release(1)
}

// Idle returns the number of idle connections.
func (p *connPool) Idle() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return len(p.idle)
}

// reap closes connections idle for longer than MaxIdleTime keeping at
// least MinIdle of them. The idle list is ordered by release time.
func (p *connPool) reap() int {
	now := p.now()
	p.lock.Lock()
	var expired []*conn
	for len(p.idle) > p.opts.MinIdle && now.Sub(p.idle[0].lastUsed) > p.opts.MaxIdleTime {
		expired = append(expired, p.idle[0])
		p.idle = p.idle[1:]
	}
	p.lock.Unlock()

	for _, c := range expired {
		c.close()
	}
	return len(expired)
}

// Start launches the reaper.
func (p *connPool) Start() {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.started || p.closed {
		return
	}
	p.started = true
	go p.run()
}

func (p *connPool) run() {
	defer close(p.done)

	interval := p.opts.MaxIdleTime / 2
	if interval < time.Second {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-p.quit:
			return
		case <-t.C:
			if n := p.reap(); n > 0 {
				p.log.Debug("closed idle connections", zap.Int("count", n))
			}
		}
	}
}

// Close stops the reaper and closes idle connections, connections in use
// are closed on release.
func (p *connPool) Close() {
	p.lock.Lock()
	if p.closed {
		p.lock.Unlock()
		return
	}
	p.closed = true
	idle := p.idle
	p.idle = nil
	started := p.started
	p.lock.Unlock()

	close(p.quit)
	if started {
		<-p.done
	}
	for _, c := range idle {
		c.close()
	}
}
