/*
Package estimator calculates system and network fees for transactions.

System fee is the GAS consumed by a test invocation of the transaction
script. Network fee is either requested from the node (calculatenetworkfee)
or calculated locally for standard signature and multisignature witnesses.
*/
package estimator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/nspcc-dev/n3sdk/pkg/core/fee"
	"github.com/nspcc-dev/n3sdk/pkg/core/transaction"
	"github.com/nspcc-dev/n3sdk/pkg/neorpc/result"
	"golang.org/x/sync/errgroup"
)

// MaxBatchConcurrency is the number of test invocations Batch runs in
// parallel.
const MaxBatchConcurrency = 8

var (
	// ErrFault is matched by FaultError.
	ErrFault = errors.New("script execution faulted")
	// ErrNegativeMargin is returned for negative margins.
	ErrNegativeMargin = errors.New("negative margin")
	// ErrNonStandardWitness is returned from local network fee calculation
	// for witnesses that are not signature or multisignature contracts.
	ErrNonStandardWitness = errors.New("non-standard verification script")
)

// RPCEstimator is a set of RPC methods needed to estimate fees.
type RPCEstimator interface {
	InvokeScript(ctx context.Context, script []byte, signers []transaction.Signer) (*result.Invoke, error)
	CalculateNetworkFee(ctx context.Context, tx *transaction.Transaction) (int64, error)
}

// Options define the way fees are calculated. Zero FeePerByte and
// ExecFeeFactor are replaced with public network defaults.
type Options struct {
	FeePerByte    int64
	ExecFeeFactor int64
	// Local makes NetworkFee calculate the fee without the node. Only
	// standard witnesses are supported then.
	Local bool
}

// FaultError is returned when the test invocation ends in FAULT state.
type FaultError struct {
	Exception   string
	GasConsumed int64
}

// Error implements the error interface.
func (e *FaultError) Error() string {
	return fmt.Sprintf("%s: %s", ErrFault, e.Exception)
}

// Is allows to match FaultError against ErrFault.
func (e *FaultError) Is(target error) bool {
	return target == ErrFault
}

// Estimator estimates fees using the given RPC client.
type Estimator struct {
	client RPCEstimator
	opts   Options
}

// Request is a single script to estimate in a Batch.
type Request struct {
	Script  []byte
	Signers []transaction.Signer
	// Margin is an optional safety margin in percents.
	Margin int
}

// Result is the outcome of a single Batch request.
type Result struct {
	SystemFee int64
	Err       error
}

// New creates an Estimator.
func New(client RPCEstimator, opts Options) *Estimator {
	if opts.FeePerByte == 0 {
		opts.FeePerByte = fee.DefaultFeePerByte
	}
	if opts.ExecFeeFactor == 0 {
		opts.ExecFeeFactor = fee.DefaultExecFeeFactor
	}
	return &Estimator{client: client, opts: opts}
}

// Estimate returns the system fee needed to execute the script with the given
// signers. HALT with any stack (including an empty one) is a success, FAULT
// is returned as *FaultError.
func (e *Estimator) Estimate(ctx context.Context, script []byte, signers []transaction.Signer) (int64, error) {
	r, err := e.client.InvokeScript(ctx, script, signers)
	if err != nil {
		return 0, fmt.Errorf("test invocation failed: %w", err)
	}
	if !r.IsHalt() {
		return 0, &FaultError{Exception: r.FaultException, GasConsumed: r.GasConsumed}
	}
	return r.GasConsumed, nil
}

// EstimateWithMargin is Estimate with the result increased by the given
// percentage and rounded up.
func (e *Estimator) EstimateWithMargin(ctx context.Context, script []byte, signers []transaction.Signer, margin int) (int64, error) {
	if margin < 0 {
		return 0, ErrNegativeMargin
	}
	base, err := e.Estimate(ctx, script, signers)
	if err != nil {
		return 0, err
	}
	return ApplyMargin(base, margin)
}

// ApplyMargin returns ceil(base * (100 + margin) / 100).
func ApplyMargin(base int64, margin int) (int64, error) {
	if margin < 0 {
		return 0, ErrNegativeMargin
	}
	var (
		hundred = big.NewInt(100)
		num     = new(big.Int).Mul(big.NewInt(base), big.NewInt(100+int64(margin)))
		q, m    = new(big.Int).QuoRem(num, hundred, new(big.Int))
	)
	if m.Sign() > 0 {
		q.Add(q, big.NewInt(1))
	}
	if !q.IsInt64() {
		return 0, fmt.Errorf("fee overflow: %s", q)
	}
	return q.Int64(), nil
}

// NetworkFee returns the network fee for the transaction. Its witnesses are
// expected to carry verification scripts only, invocation scripts are not
// used and may be empty.
func (e *Estimator) NetworkFee(ctx context.Context, tx *transaction.Transaction) (int64, error) {
	if !e.opts.Local {
		return e.client.CalculateNetworkFee(ctx, tx)
	}
	var (
		cp      = *tx
		scripts = make([][]byte, 0, len(tx.Scripts))
	)
	cp.Scripts = nil
	cp.ResetCachedHash()
	size := cp.Size()
	for i := range tx.Scripts {
		_, wsize := fee.Calculate(e.opts.ExecFeeFactor, tx.Scripts[i].VerificationScript)
		if wsize == 0 {
			return 0, fmt.Errorf("witness %d: %w", i, ErrNonStandardWitness)
		}
		size += wsize
		scripts = append(scripts, tx.Scripts[i].VerificationScript)
	}
	return e.NetworkFeeForSize(size, scripts...), nil
}

// NetworkFeeForSize returns the network fee of a transaction of the given
// size (witnesses included) with the given verification scripts.
func (e *Estimator) NetworkFeeForSize(size int, verificationScripts ...[]byte) int64 {
	return fee.NetworkFee(e.opts.FeePerByte, e.opts.ExecFeeFactor, size, verificationScripts...)
}

// Batch estimates a set of scripts concurrently. Errors are stored in the
// corresponding results, a failing request doesn't affect others.
func (e *Estimator) Batch(ctx context.Context, reqs []Request) []Result {
	var (
		res = make([]Result, len(reqs))
		g   errgroup.Group
	)
	g.SetLimit(MaxBatchConcurrency)
	for i := range reqs {
		i := i
		g.Go(func() error {
			res[i].SystemFee, res[i].Err = e.EstimateWithMargin(ctx, reqs[i].Script, reqs[i].Signers, reqs[i].Margin)
			return nil
		})
	}
	_ = g.Wait()
	return res
}

// Accuracy returns the actual fee as a percentage of the estimated one.
func Accuracy(estimate, actual int64) float64 {
	if estimate == 0 {
		if actual == 0 {
			return 100
		}
		return math.Inf(1)
	}
	return float64(actual) / float64(estimate) * 100
}
