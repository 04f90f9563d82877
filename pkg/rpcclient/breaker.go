package rpcclient

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/atomic"
)

// BreakerState is the state of an endpoint circuit breaker.
type BreakerState int32

// Circuit breaker states.
const (
	// BreakerClosed lets all requests pass.
	BreakerClosed BreakerState = iota
	// BreakerOpen rejects all requests until the timeout elapses.
	BreakerOpen
	// BreakerHalfOpen lets a limited number of probes pass.
	BreakerHalfOpen
)

// String implements the fmt.Stringer interface.
func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return fmt.Sprintf("BreakerState(%d)", int32(s))
	}
}

// BreakerOptions configures per-endpoint circuit breakers.
type BreakerOptions struct {
	Disabled bool
	// FailureThreshold failures within Window open the circuit.
	FailureThreshold int
	Window           time.Duration
	// Timeout is the time the circuit stays open before probing.
	Timeout time.Duration
	// HalfOpenMaxRequests is the number of concurrent probes allowed in
	// the half-open state.
	HalfOpenMaxRequests int
	// SuccessThreshold consecutive successful probes close the circuit.
	SuccessThreshold int
}

// breaker is a circuit breaker of a single endpoint. Transitions are made
// under the mutex, the state itself is readable without locking.
type breaker struct {
	opts     BreakerOptions
	now      func() time.Time
	onChange func(from, to BreakerState)

	state *atomic.Int32

	lock      sync.Mutex
	failures  []time.Time
	openedAt  time.Time
	probes    int
	successes int
}

func newBreaker(opts BreakerOptions, now func() time.Time, onChange func(from, to BreakerState)) *breaker {
	return &breaker{
		opts:     opts,
		now:      now,
		onChange: onChange,
		state:    atomic.NewInt32(int32(BreakerClosed)),
	}
}

// State returns the current state.
func (b *breaker) State() BreakerState {
	return BreakerState(b.state.Load())
}

// setState must be called with the lock held.
func (b *breaker) setState(to BreakerState) {
	from := BreakerState(b.state.Swap(int32(to)))
	b.probes = 0
	b.successes = 0
	b.failures = b.failures[:0]
	if to == BreakerOpen {
		b.openedAt = b.now()
	}
	if from != to && b.onChange != nil {
		b.onChange(from, to)
	}
}

// Allow checks whether a request can be made. Every allowed request must be
// followed by exactly one of Success, Failure or Release.
func (b *breaker) Allow() error {
	if b.opts.Disabled {
		return nil
	}
	b.lock.Lock()
	defer b.lock.Unlock()

	if b.State() == BreakerOpen {
		if b.now().Sub(b.openedAt) < b.opts.Timeout {
			return ErrCircuitOpen
		}
		b.setState(BreakerHalfOpen)
	}
	if b.State() == BreakerHalfOpen {
		if b.probes >= b.opts.HalfOpenMaxRequests {
			return ErrCircuitOpen
		}
		b.probes++
	}
	return nil
}

// Success records a request answered by the node.
func (b *breaker) Success() {
	if b.opts.Disabled {
		return
	}
	b.lock.Lock()
	defer b.lock.Unlock()

	if b.State() != BreakerHalfOpen {
		return
	}
	if b.probes > 0 {
		b.probes--
	}
	b.successes++
	if b.successes >= b.opts.SuccessThreshold {
		b.setState(BreakerClosed)
	}
}

// Failure records a transport failure or a timeout.
func (b *breaker) Failure() {
	if b.opts.Disabled {
		return
	}
	b.lock.Lock()
	defer b.lock.Unlock()

	switch b.State() {
	case BreakerHalfOpen:
		b.setState(BreakerOpen)
	case BreakerClosed:
		now := b.now()
		b.failures = append(b.failures, now)
		var i int
		for i < len(b.failures) && now.Sub(b.failures[i]) >= b.opts.Window {
			i++
		}
		b.failures = b.failures[i:]
		if len(b.failures) >= b.opts.FailureThreshold {
			b.setState(BreakerOpen)
		}
	}
}

// Release returns a probe slot for a request that ended without a verdict
// (cancelled by the caller).
func (b *breaker) Release() {
	if b.opts.Disabled {
		return
	}
	b.lock.Lock()
	defer b.lock.Unlock()

	if b.State() == BreakerHalfOpen && b.probes > 0 {
		b.probes--
	}
}
