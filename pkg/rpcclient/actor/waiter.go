package actor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nspcc-dev/n3sdk/pkg/core/state"
	"github.com/nspcc-dev/n3sdk/pkg/neorpc"
	"github.com/nspcc-dev/n3sdk/pkg/neorpc/result"
	"github.com/nspcc-dev/n3sdk/pkg/smartcontract/trigger"
	"github.com/nspcc-dev/n3sdk/pkg/util"
	"go.uber.org/zap"
)

// PollingWaiterRetryCount is the number of consecutive getblockcount
// failures PollingWaiter tolerates.
const PollingWaiterRetryCount = 3

var (
	// ErrTxNotAccepted means the chain went past ValidUntilBlock without the
	// transaction.
	ErrTxNotAccepted = errors.New("transaction was not accepted to chain")
	// ErrContextDone means the context ended before any result was known.
	ErrContextDone = errors.New("waiter context done")
	// ErrAwaitingNotSupported is returned by NullWaiter.
	ErrAwaitingNotSupported = errors.New("awaiting not supported")
)

// Waiter tracks sent transactions until they're persisted or expire.
type Waiter interface {
	// Wait returns the Application execution of the transaction once it's in
	// a block, or ErrTxNotAccepted after block vub is persisted without it.
	Wait(ctx context.Context, h util.Uint256, vub uint32) (*state.AppExecResult, error)
	// WaitAny is Wait for the first of several transactions sharing vub.
	WaitAny(ctx context.Context, vub uint32, hashes ...util.Uint256) (*state.AppExecResult, error)
}

// RPCPollingWaiter is the part of the RPC client PollingWaiter needs.
type RPCPollingWaiter interface {
	GetBlockCount(ctx context.Context) (uint32, error)
	GetApplicationLog(ctx context.Context, hash util.Uint256, trig *trigger.Type) (*result.ApplicationLog, error)
}

// NullWaiter is used for clients that can't poll, it never waits.
type NullWaiter struct{}

// NewNullWaiter returns a NullWaiter.
func NewNullWaiter() NullWaiter { return NullWaiter{} }

// Wait implements the Waiter interface.
func (NullWaiter) Wait(context.Context, util.Uint256, uint32) (*state.AppExecResult, error) {
	return nil, ErrAwaitingNotSupported
}

// WaitAny implements the Waiter interface.
func (NullWaiter) WaitAny(context.Context, uint32, ...util.Uint256) (*state.AppExecResult, error) {
	return nil, ErrAwaitingNotSupported
}

// PollingWaiter checks application logs of the awaited transactions every
// interval until one of them shows up or the height passes their
// ValidUntilBlock.
type PollingWaiter struct {
	rpc      RPCPollingWaiter
	interval time.Duration
	log      *zap.Logger
}

// newWaiter picks PollingWaiter when the client can poll. The default
// interval is half the block time.
func newWaiter(ra RPCActor, v *result.Version, opts Options) Waiter {
	rpc, ok := ra.(RPCPollingWaiter)
	if !ok {
		return NewNullWaiter()
	}
	interval := opts.PollInterval
	if interval == 0 {
		interval = time.Duration(v.Protocol.MillisecondsPerBlock) * time.Millisecond / 2
	}
	return NewPollingWaiter(rpc, interval, opts.Logger)
}

// NewPollingWaiter creates a PollingWaiter. Non-positive interval means one
// second, nil logger disables logging.
func NewPollingWaiter(rpc RPCPollingWaiter, interval time.Duration, log *zap.Logger) *PollingWaiter {
	if interval <= 0 {
		interval = time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &PollingWaiter{rpc: rpc, interval: interval, log: log}
}

// Wait implements the Waiter interface.
func (w *PollingWaiter) Wait(ctx context.Context, h util.Uint256, vub uint32) (*state.AppExecResult, error) {
	return w.WaitAny(ctx, vub, h)
}

// WaitAny implements the Waiter interface. "Unknown transaction" answers
// mean the transaction isn't there yet, other log errors are only logged.
// A transaction included at height vub is still found since logs are
// checked before the height.
func (w *PollingWaiter) WaitAny(ctx context.Context, vub uint32, hashes ...util.Uint256) (*state.AppExecResult, error) {
	var (
		height   uint32
		failures int
		ticker   = time.NewTicker(w.interval)
	)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ErrContextDone, ctx.Err())
		case <-ticker.C:
		}

		count, err := w.rpc.GetBlockCount(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %w", ErrContextDone, ctx.Err())
			}
			failures++
			w.log.Debug("block count poll failed", zap.Int("attempt", failures), zap.Error(err))
			if failures > PollingWaiterRetryCount {
				return nil, fmt.Errorf("block count: %w", err)
			}
			continue
		}
		failures = 0
		if count > 0 {
			height = max(height, count-1)
		}

		if aer := w.findAny(ctx, hashes); aer != nil {
			return aer, nil
		}
		if height >= vub {
			return nil, ErrTxNotAccepted
		}
	}
}

// findAny returns the Application execution of the first transaction
// already persisted.
func (w *PollingWaiter) findAny(ctx context.Context, hashes []util.Uint256) *state.AppExecResult {
	trig := trigger.Application
	for _, h := range hashes {
		log, err := w.rpc.GetApplicationLog(ctx, h, &trig)
		if err != nil {
			if !neorpc.IsUnknownTransaction(err) {
				w.log.Debug("application log poll failed", zap.String("tx", h.StringLE()), zap.Error(err))
			}
			continue
		}
		if len(log.Executions) != 0 {
			return &state.AppExecResult{Container: log.Container, Execution: log.Executions[0]}
		}
	}
	return nil
}
