package rpcclient

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryOptions configures retries of failed requests.
type RetryOptions struct {
	// MaxRetries is the number of retries after the first failed attempt,
	// so a request is sent at most MaxRetries+1 times. Zero or negative
	// value disables retries.
	MaxRetries int
	// RetryDelay is the delay before the first retry, every next one is
	// twice as long (with ±20% jitter) up to MaxRetryDelay.
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
}

// Backoff parameters not exposed via options.
const (
	retryMultiplier    = 2
	retryRandomization = 0.2
)

// idempotentMethods are safe to repeat after any transport failure or
// timeout.
var idempotentMethods = map[string]bool{
	"calculatenetworkfee":  true,
	"getapplicationlog":    true,
	"getblock":             true,
	"getblockcount":        true,
	"getblockheader":       true,
	"getcontractstate":     true,
	"getnep17balances":     true,
	"getversion":           true,
	"invokecontractverify": true,
	"invokefunction":       true,
	"invokescript":         true,
}

// retriable tells whether the failed request can be repeated. Protocol
// errors and caller cancellations (deadlines included) are final.
// Non-idempotent methods (like sendrawtransaction) are only repeated when
// the connection was never established, so the node can't have seen the
// request.
func retriable(method string, err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var te *TransportError
	if errors.As(err, &te) {
		return idempotentMethods[method] || te.Dial
	}
	if errors.Is(err, ErrTimeout) && !errors.Is(err, ErrPoolTimeout) {
		return idempotentMethods[method]
	}
	return false
}

// newBackOff creates a backoff policy for a single request.
func newBackOff(ctx context.Context, opts RetryOptions, clock backoff.Clock) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = opts.RetryDelay
	eb.MaxInterval = opts.MaxRetryDelay
	eb.Multiplier = retryMultiplier
	eb.RandomizationFactor = retryRandomization
	eb.MaxElapsedTime = 0
	if clock != nil {
		eb.Clock = clock
	}
	eb.Reset()

	var b backoff.BackOff = eb
	if opts.MaxRetries > 0 {
		b = backoff.WithMaxRetries(eb, uint64(opts.MaxRetries))
	} else {
		b = &backoff.StopBackOff{}
	}
	return backoff.WithContext(b, ctx)
}

// withRetries runs the operation retrying retriable failures according to
// the options. notify is called before every retry.
func withRetries(ctx context.Context, method string, opts RetryOptions, clock backoff.Clock,
	op func() error, notify func(err error, next time.Duration)) error {
	return backoff.RetryNotify(func() error {
		err := op()
		if err != nil && !retriable(method, err) {
			return backoff.Permanent(err)
		}
		return err
	}, newBackOff(ctx, opts, clock), notify)
}
