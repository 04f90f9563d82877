package rpcclient

import (
	"context"
	"errors"
	"time"

	"github.com/nspcc-dev/n3sdk/pkg/neorpc"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/atomic"
)

// latencyAlpha is the smoothing factor of the average latency.
const latencyAlpha = 0.2

// Request outcomes used as metric labels.
const (
	outcomeSuccess       = "success"
	outcomeProtocolError = "protocol_error"
	outcomeTransport     = "transport_error"
	outcomeTimeout       = "timeout"
	outcomeCircuitOpen   = "circuit_open"
	outcomeCancelled     = "cancelled"
)

// Stats is a snapshot of client counters.
type Stats struct {
	Requests    uint64
	Successes   uint64
	Failures    uint64
	Retries     uint64
	CacheHits   uint64
	CacheMisses uint64
	// AverageLatency is an exponentially weighted moving average of
	// request durations.
	AverageLatency time.Duration
	// Breakers maps endpoints to their circuit breaker states.
	Breakers map[string]BreakerState
}

type metrics struct {
	requests    *atomic.Uint64
	successes   *atomic.Uint64
	failures    *atomic.Uint64
	retries     *atomic.Uint64
	cacheHits   *atomic.Uint64
	cacheMisses *atomic.Uint64
	samples     *atomic.Uint64
	avgLatency  *atomic.Float64

	requestsVec  *prometheus.CounterVec
	cacheVec     *prometheus.CounterVec
	breakerGauge *prometheus.GaugeVec
	durations    *prometheus.HistogramVec
}

func newMetrics() *metrics {
	return &metrics{
		requests:    atomic.NewUint64(0),
		successes:   atomic.NewUint64(0),
		failures:    atomic.NewUint64(0),
		retries:     atomic.NewUint64(0),
		cacheHits:   atomic.NewUint64(0),
		cacheMisses: atomic.NewUint64(0),
		samples:     atomic.NewUint64(0),
		avgLatency:  atomic.NewFloat64(0),

		requestsVec: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "n3sdk",
			Subsystem: "rpcclient",
			Name:      "requests_total",
			Help:      "Number of JSON-RPC requests by method and outcome",
		}, []string{"method", "outcome"}),
		cacheVec: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "n3sdk",
			Subsystem: "rpcclient",
			Name:      "cache_lookups_total",
			Help:      "Number of response cache lookups by result",
		}, []string{"result"}),
		breakerGauge: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "n3sdk",
			Subsystem: "rpcclient",
			Name:      "breaker_state",
			Help:      "Circuit breaker state per endpoint (0 closed, 1 open, 2 half-open)",
		}, []string{"endpoint"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "n3sdk",
			Subsystem: "rpcclient",
			Name:      "request_duration_seconds",
			Help:      "JSON-RPC request handling time",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
}

// Describe implements the prometheus.Collector interface.
func (m *metrics) Describe(ch chan<- *prometheus.Desc) {
	m.requestsVec.Describe(ch)
	m.cacheVec.Describe(ch)
	m.breakerGauge.Describe(ch)
	m.durations.Describe(ch)
}

// Collect implements the prometheus.Collector interface.
func (m *metrics) Collect(ch chan<- prometheus.Metric) {
	m.requestsVec.Collect(ch)
	m.cacheVec.Collect(ch)
	m.breakerGauge.Collect(ch)
	m.durations.Collect(ch)
}

func (m *metrics) cacheHit() {
	m.cacheHits.Inc()
	m.cacheVec.WithLabelValues("hit").Inc()
}

func (m *metrics) cacheMiss() {
	m.cacheMisses.Inc()
	m.cacheVec.WithLabelValues("miss").Inc()
}

func (m *metrics) retry() {
	m.retries.Inc()
}

func (m *metrics) breakerState(endpoint string, s BreakerState) {
	m.breakerGauge.WithLabelValues(endpoint).Set(float64(s))
}

// request records a finished request (one per call, retries excluded).
func (m *metrics) request(method string, d time.Duration, err error) {
	m.requests.Inc()
	outcome := outcomeOf(err)
	if err == nil {
		m.successes.Inc()
	} else {
		m.failures.Inc()
	}
	m.requestsVec.WithLabelValues(method, outcome).Inc()
	if outcome == outcomeCircuitOpen || outcome == outcomeCancelled {
		return
	}
	m.durations.WithLabelValues(method).Observe(d.Seconds())
	m.observeLatency(d)
}

func (m *metrics) observeLatency(d time.Duration) {
	x := float64(d)
	if m.samples.Inc() == 1 {
		m.avgLatency.Store(x)
		return
	}
	for {
		old := m.avgLatency.Load()
		if m.avgLatency.CompareAndSwap(old, old+latencyAlpha*(x-old)) {
			return
		}
	}
}

func (m *metrics) snapshot() Stats {
	return Stats{
		Requests:       m.requests.Load(),
		Successes:      m.successes.Load(),
		Failures:       m.failures.Load(),
		Retries:        m.retries.Load(),
		CacheHits:      m.cacheHits.Load(),
		CacheMisses:    m.cacheMisses.Load(),
		AverageLatency: time.Duration(m.avgLatency.Load()),
	}
}

func outcomeOf(err error) string {
	var rpcErr *neorpc.Error
	switch {
	case err == nil:
		return outcomeSuccess
	case errors.As(err, &rpcErr):
		return outcomeProtocolError
	case errors.Is(err, ErrCircuitOpen):
		return outcomeCircuitOpen
	case errors.Is(err, context.Canceled):
		return outcomeCancelled
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return outcomeTimeout
	default:
		return outcomeTransport
	}
}
