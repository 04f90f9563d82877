package actor

import (
	"context"
	"fmt"

	"github.com/nspcc-dev/n3sdk/pkg/core/transaction"
	"github.com/nspcc-dev/n3sdk/pkg/neorpc/result"
	"github.com/nspcc-dev/n3sdk/pkg/rpcclient/estimator"
	"github.com/nspcc-dev/n3sdk/pkg/util"
)

// TransactionCheckerModifier inspects the test invocation result along with
// the transaction made from it before the transaction is signed. Returning
// an error aborts the creation. A checker replaces the HALT check entirely,
// so a checker that ignores r.State lets FAULTing transactions through. The
// transaction may be adjusted the same way TransactionModifier does.
type TransactionCheckerModifier func(r *result.Invoke, t *transaction.Transaction) error

// TransactionModifier is called with the unsigned transaction. It may change
// Nonce, SystemFee, NetworkFee and ValidUntilBlock (raising fees is the usual
// case) and is then responsible for the result being valid. Other fields
// must not be changed. Returning an error aborts the creation.
type TransactionModifier func(t *transaction.Transaction) error

// DefaultModifier leaves the transaction as is.
func DefaultModifier(*transaction.Transaction) error { return nil }

// DefaultCheckerModifier accepts HALTed invocations only, FAULT is reported
// as *estimator.FaultError.
func DefaultCheckerModifier(r *result.Invoke, _ *transaction.Transaction) error {
	if r.IsHalt() {
		return nil
	}
	return &estimator.FaultError{Exception: r.FaultException, GasConsumed: r.GasConsumed}
}

// MakeCall test-invokes the contract method and returns a signed
// transaction making the same call. Actor's default attributes and checker
// are used.
func (a *Actor) MakeCall(ctx context.Context, contract util.Uint160, method string, params ...any) (*transaction.Transaction, error) {
	return a.MakeTunedCall(ctx, contract, method, nil, nil, params...)
}

// MakeTunedCall is MakeCall with explicit attributes and checker, nil
// values mean Actor's defaults.
func (a *Actor) MakeTunedCall(ctx context.Context, contract util.Uint160, method string, attrs []transaction.Attribute, txHook TransactionCheckerModifier, params ...any) (*transaction.Transaction, error) {
	r, err := a.Call(ctx, contract, method, params...)
	return a.makeChecked(ctx, r, err, attrs, txHook)
}

// MakeRun test-invokes the script and returns a signed transaction
// running it. Actor's default attributes and checker are used.
func (a *Actor) MakeRun(ctx context.Context, script []byte) (*transaction.Transaction, error) {
	return a.MakeTunedRun(ctx, script, nil, nil)
}

// MakeTunedRun is MakeRun with explicit attributes and checker, nil values
// mean Actor's defaults.
func (a *Actor) MakeTunedRun(ctx context.Context, script []byte, attrs []transaction.Attribute, txHook TransactionCheckerModifier) (*transaction.Transaction, error) {
	r, err := a.Run(ctx, script)
	return a.makeChecked(ctx, r, err, attrs, txHook)
}

func (a *Actor) makeChecked(ctx context.Context, r *result.Invoke, err error, attrs []transaction.Attribute, check TransactionCheckerModifier) (*transaction.Transaction, error) {
	if err != nil {
		return nil, fmt.Errorf("test invocation failed: %w", err)
	}
	if check == nil {
		check = a.opts.CheckerModifier
	}
	return a.MakeUncheckedRun(ctx, r.Script, r.GasConsumed, attrs, func(tx *transaction.Transaction) error {
		return check(r, tx)
	})
}

// MakeUncheckedRun returns a signed transaction running the script with
// the given system fee (the configured margin is added), no test invocation
// is made. Nil attrs and txHook mean Actor's defaults.
func (a *Actor) MakeUncheckedRun(ctx context.Context, script []byte, sysfee int64, attrs []transaction.Attribute, txHook TransactionModifier) (*transaction.Transaction, error) {
	if txHook == nil {
		txHook = a.opts.Modifier
	}
	return a.builderFor(script, sysfee, attrs).SetModifier(txHook).Sign(ctx, a.provider)
}

// MakeUnsignedCall is MakeCall returning the transaction unsigned with its
// fees calculated. The invocation must HALT, no modifier is applied.
func (a *Actor) MakeUnsignedCall(ctx context.Context, contract util.Uint160, method string, attrs []transaction.Attribute, params ...any) (*transaction.Transaction, error) {
	r, err := a.Call(ctx, contract, method, params...)
	return a.makeUnsigned(ctx, r, err, attrs)
}

// MakeUnsignedRun is MakeRun returning the transaction unsigned with its
// fees calculated. The invocation must HALT, no modifier is applied.
func (a *Actor) MakeUnsignedRun(ctx context.Context, script []byte, attrs []transaction.Attribute) (*transaction.Transaction, error) {
	r, err := a.Run(ctx, script)
	return a.makeUnsigned(ctx, r, err, attrs)
}

func (a *Actor) makeUnsigned(ctx context.Context, r *result.Invoke, err error, attrs []transaction.Attribute) (*transaction.Transaction, error) {
	if err != nil {
		return nil, fmt.Errorf("test invocation failed: %w", err)
	}
	if err := DefaultCheckerModifier(r, nil); err != nil {
		return nil, err
	}
	return a.MakeUnsignedUncheckedRun(ctx, r.Script, r.GasConsumed, attrs)
}

// MakeUnsignedUncheckedRun returns an unsigned transaction running the
// script with the given system fee, no test invocation is made. Signers,
// ValidUntilBlock and NetworkFee are filled in, the caller may still adjust
// Nonce, fees and ValidUntilBlock before signing.
func (a *Actor) MakeUnsignedUncheckedRun(ctx context.Context, script []byte, sysFee int64, attrs []transaction.Attribute) (*transaction.Transaction, error) {
	switch {
	case len(script) == 0:
		return nil, ErrNoScript
	case sysFee < 0:
		return nil, transaction.ErrNegativeSystemFee
	}
	return a.builderFor(script, sysFee, attrs).SetModifier(nil).Unsigned(ctx, a.provider)
}

func (a *Actor) builderFor(script []byte, sysfee int64, attrs []transaction.Attribute) *Builder {
	b := a.NewBuilder().SetScript(script).SetSystemFee(sysfee)
	if attrs != nil {
		b.SetAttributes(attrs...)
	}
	return b
}

// CalculateValidUntilBlock returns the expiration height for a transaction
// made now: the current height plus ValidUntilBlockIncrement, capped by the
// network maximum.
func (a *Actor) CalculateValidUntilBlock(ctx context.Context) (uint32, error) {
	height, err := currentHeight(ctx, a.client)
	if err != nil {
		return 0, err
	}
	return height + min(a.opts.ValidUntilBlockIncrement, a.NewBuilder().maxIncrement()), nil
}
