/*
Package nep17 contains RPC wrappers to work with NEP-17 contracts.

Safe methods are encapsulated into TokenReader structure while Token provides
various methods to perform the only NEP-17 state-changing call, Transfer.
*/
package nep17

import (
	"context"
	"errors"
	"math/big"

	"github.com/nspcc-dev/n3sdk/pkg/core/transaction"
	"github.com/nspcc-dev/n3sdk/pkg/rpcclient/neptoken"
	"github.com/nspcc-dev/n3sdk/pkg/smartcontract"
	"github.com/nspcc-dev/n3sdk/pkg/util"
)

// Invoker is used by TokenReader to call various safe methods.
type Invoker interface {
	neptoken.Invoker
}

// Actor is used by Token to create and send transactions.
type Actor interface {
	Invoker

	MakeRun(ctx context.Context, script []byte) (*transaction.Transaction, error)
	MakeUnsignedRun(ctx context.Context, script []byte, attrs []transaction.Attribute) (*transaction.Transaction, error)
	SendRun(ctx context.Context, script []byte) (util.Uint256, uint32, error)
}

// TokenReader represents safe (read-only) methods of NEP-17 token. It can be
// used to query various data.
type TokenReader struct {
	neptoken.Base
}

// Token provides full NEP-17 interface, both safe and state-changing methods.
type Token struct {
	TokenReader

	hash  util.Uint160
	actor Actor
}

// TransferParameters is a set of parameters for `transfer` method.
type TransferParameters struct {
	From   util.Uint160
	To     util.Uint160
	Amount *big.Int
	Data   any
}

// NewReader creates an instance of TokenReader for contract with the given
// hash using the given Invoker.
func NewReader(invoker Invoker, hash util.Uint160) *TokenReader {
	return &TokenReader{*neptoken.New(invoker, hash)}
}

// New creates an instance of Token for contract with the given hash
// using the given Actor.
func New(actor Actor, hash util.Uint160) *Token {
	return &Token{*NewReader(actor, hash), hash, actor}
}

// TransferScript returns a script calling `transfer` method of the given
// token contract followed by ASSERT, so the transaction fails if the
// transfer returns false. Data can be any value convertible to a contract
// parameter, nil is passed as Null.
func TransferScript(token, from, to util.Uint160, amount *big.Int, data any) ([]byte, error) {
	return MultiTransferScript(token, []TransferParameters{{From: from, To: to, Amount: amount, Data: data}})
}

// MultiTransferScript returns a script with several asserted `transfer`
// calls of the same token.
func MultiTransferScript(token util.Uint160, params []TransferParameters) ([]byte, error) {
	if len(params) == 0 {
		return nil, errors.New("at least one transfer parameter required")
	}
	b := smartcontract.NewBuilder()
	for i := range params {
		if params[i].Amount == nil || params[i].Amount.Sign() < 0 {
			return nil, errors.New("amount must be non-negative")
		}
		b.InvokeWithAssert(token, "transfer", params[i].From, params[i].To, params[i].Amount, params[i].Data)
	}
	return b.Script()
}

// Transfer creates and sends a transaction performing a `transfer` call
// using the given parameters and checking for this call result, failing the
// transaction if it's not true. The returned values are transaction hash, its
// ValidUntilBlock value and an error if any.
func (t *Token) Transfer(ctx context.Context, from, to util.Uint160, amount *big.Int, data any) (util.Uint256, uint32, error) {
	script, err := TransferScript(t.hash, from, to, amount, data)
	if err != nil {
		return util.Uint256{}, 0, err
	}
	return t.actor.SendRun(ctx, script)
}

// TransferTransaction creates a transaction that performs a `transfer` call
// using the given parameters and checks for this call result, failing the
// transaction if it's not true. This transaction is signed, but not sent to
// the network, instead it's returned to the caller.
func (t *Token) TransferTransaction(ctx context.Context, from, to util.Uint160, amount *big.Int, data any) (*transaction.Transaction, error) {
	script, err := TransferScript(t.hash, from, to, amount, data)
	if err != nil {
		return nil, err
	}
	return t.actor.MakeRun(ctx, script)
}

// TransferUnsigned creates a transaction that performs a `transfer` call
// using the given parameters and checks for this call result, failing the
// transaction if it's not true. This transaction is not signed and just
// returned to the caller.
func (t *Token) TransferUnsigned(ctx context.Context, from, to util.Uint160, amount *big.Int, data any) (*transaction.Transaction, error) {
	script, err := TransferScript(t.hash, from, to, amount, data)
	if err != nil {
		return nil, err
	}
	return t.actor.MakeUnsignedRun(ctx, script, nil)
}

// MultiTransfer creates and sends a transaction performing multiple
// `transfer` calls, each of them is checked the same way Transfer does.
func (t *Token) MultiTransfer(ctx context.Context, params []TransferParameters) (util.Uint256, uint32, error) {
	script, err := MultiTransferScript(t.hash, params)
	if err != nil {
		return util.Uint256{}, 0, err
	}
	return t.actor.SendRun(ctx, script)
}
