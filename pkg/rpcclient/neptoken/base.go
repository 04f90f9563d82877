/*
Package neptoken reads the methods NEP-17 and NEP-11 tokens have in common.
Everything here is a test invocation, nothing is sent to the chain.
*/
package neptoken

import (
	"context"
	"math/big"

	"github.com/nspcc-dev/n3sdk/pkg/neorpc/result"
	"github.com/nspcc-dev/n3sdk/pkg/rpcclient/unwrap"
	"github.com/nspcc-dev/n3sdk/pkg/util"
)

// MaxValidDecimals is log10(2^256), no VM integer needs more decimals.
const MaxValidDecimals = 77

// Invoker makes test calls for Base.
type Invoker interface {
	Call(ctx context.Context, contract util.Uint160, operation string, params ...any) (*result.Invoke, error)
}

// Base reads the common token methods of the contract.
type Base struct {
	invoker Invoker
	hash    util.Uint160
}

// New returns a reader for the token with the given hash.
func New(invoker Invoker, hash util.Uint160) *Base {
	return &Base{invoker: invoker, hash: hash}
}

// Hash returns the token contract hash.
func (b *Base) Hash() util.Uint160 {
	return b.hash
}

func (b *Base) call(ctx context.Context, method string, params ...any) (*result.Invoke, error) {
	return b.invoker.Call(ctx, b.hash, method, params...)
}

// Decimals returns the token precision. Values outside of the
// [0, MaxValidDecimals] range are an error whatever the contract says.
func (b *Base) Decimals(ctx context.Context) (int, error) {
	r, err := b.call(ctx, "decimals")
	d, err := unwrap.LimitedInt64(r, err, 0, MaxValidDecimals)
	return int(d), err
}

// Symbol returns the short token name, like "GAS".
func (b *Base) Symbol(ctx context.Context) (string, error) {
	return unwrap.PrintableASCIIString(b.call(ctx, "symbol"))
}

// TotalSupply returns the amount of tokens minted so far in token
// fractions.
func (b *Base) TotalSupply(ctx context.Context) (*big.Int, error) {
	return unwrap.BigInt(b.call(ctx, "totalSupply"))
}

// BalanceOf returns the balance of the account in token fractions (1 TOK
// of a 2-decimal token is 100).
func (b *Base) BalanceOf(ctx context.Context, account util.Uint160) (*big.Int, error) {
	return unwrap.BigInt(b.call(ctx, "balanceOf", account))
}
