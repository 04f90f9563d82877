package nep17

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/nspcc-dev/n3sdk/pkg/core/transaction"
	"github.com/nspcc-dev/n3sdk/pkg/neorpc/result"
	"github.com/nspcc-dev/n3sdk/pkg/smartcontract"
	"github.com/nspcc-dev/n3sdk/pkg/util"
	"github.com/nspcc-dev/n3sdk/pkg/vm/opcode"
	"github.com/nspcc-dev/n3sdk/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

// fakeActor records the last script and answers with preset values.
type fakeActor struct {
	err    error
	res    *result.Invoke
	tx     *transaction.Transaction
	txh    util.Uint256
	vub    uint32
	script []byte
}

func (f *fakeActor) Call(context.Context, util.Uint160, string, ...any) (*result.Invoke, error) {
	return f.res, f.err
}

func (f *fakeActor) MakeRun(_ context.Context, script []byte) (*transaction.Transaction, error) {
	f.script = script
	return f.tx, f.err
}

func (f *fakeActor) MakeUnsignedRun(_ context.Context, script []byte, _ []transaction.Attribute) (*transaction.Transaction, error) {
	f.script = script
	return f.tx, f.err
}

func (f *fakeActor) SendRun(_ context.Context, script []byte) (util.Uint256, uint32, error) {
	f.script = script
	return f.txh, f.vub, f.err
}

func halt(items ...any) *result.Invoke {
	stack := make([]stackitem.Item, len(items))
	for i := range items {
		stack[i] = stackitem.Make(items[i])
	}
	return &result.Invoke{State: "HALT", Stack: stack}
}

var (
	tokenHash = util.Uint160{1, 2, 3}
	alice     = util.Uint160{3, 2, 1}
	bob       = util.Uint160{4, 5, 6}
)

func TestReaderBalanceOf(t *testing.T) {
	ctx := context.Background()
	fa := &fakeActor{err: errors.New("connection refused")}
	tr := NewReader(fa, tokenHash)
	require.Equal(t, tokenHash, tr.Hash())

	_, err := tr.BalanceOf(ctx, alice)
	require.Error(t, err)

	fa.err, fa.res = nil, halt(100500)
	bal, err := tr.BalanceOf(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(100500), bal)

	fa.res = halt([]stackitem.Item{})
	_, err = tr.BalanceOf(ctx, alice)
	require.Error(t, err)
}

func TestReaderMetadata(t *testing.T) {
	ctx := context.Background()
	fa := new(fakeActor)
	tr := NewReader(fa, tokenHash)

	fa.res = halt("GAS")
	sym, err := tr.Symbol(ctx)
	require.NoError(t, err)
	require.Equal(t, "GAS", sym)

	fa.res = halt(8)
	dec, err := tr.Decimals(ctx)
	require.NoError(t, err)
	require.Equal(t, 8, dec)

	fa.res = halt(100)
	_, err = tr.Decimals(ctx)
	require.Error(t, err)

	fa.res = &result.Invoke{State: "FAULT", FaultException: "no method"}
	_, err = tr.TotalSupply(ctx)
	require.Error(t, err)
}

func TestTransferScript(t *testing.T) {
	token, from, to := tokenHash, bob, util.Uint160{7, 8, 9}

	script, err := TransferScript(token, from, to, big.NewInt(100), nil)
	require.NoError(t, err)
	require.Equal(t, byte(opcode.ASSERT), script[len(script)-1])

	b := smartcontract.NewBuilder()
	b.InvokeWithAssert(token, "transfer", from, to, big.NewInt(100), nil)
	expected, err := b.Script()
	require.NoError(t, err)
	require.Equal(t, expected, script)

	_, err = TransferScript(token, from, to, big.NewInt(-1), nil)
	require.Error(t, err)
	_, err = TransferScript(token, from, to, nil, nil)
	require.Error(t, err)
	_, err = TransferScript(token, from, to, big.NewInt(1), stackitem.NewMap())
	require.Error(t, err)

	_, err = MultiTransferScript(token, nil)
	require.Error(t, err)
	multi, err := MultiTransferScript(token, []TransferParameters{
		{From: from, To: to, Amount: big.NewInt(100)},
		{From: from, To: token, Amount: big.NewInt(1), Data: "memo"},
	})
	require.NoError(t, err)
	require.Less(t, len(script), len(multi))
	require.Equal(t, script, multi[:len(script)])
}

func TestTokenTransfer(t *testing.T) {
	ctx := context.Background()
	fa := &fakeActor{err: errors.New("connection refused")}
	tok := New(fa, tokenHash)
	one := big.NewInt(1)

	_, _, err := tok.Transfer(ctx, alice, bob, one, nil)
	require.Error(t, err)

	fa.err, fa.txh, fa.vub = nil, util.Uint256{1, 2, 3}, 42
	h, vub, err := tok.Transfer(ctx, alice, bob, one, nil)
	require.NoError(t, err)
	require.Equal(t, fa.txh, h)
	require.Equal(t, fa.vub, vub)
	expected, err := TransferScript(tokenHash, alice, bob, one, nil)
	require.NoError(t, err)
	require.Equal(t, expected, fa.script)

	_, _, err = tok.Transfer(ctx, alice, bob, one, stackitem.NewMap())
	require.Error(t, err)

	h, vub, err = tok.MultiTransfer(ctx, []TransferParameters{{From: alice, To: bob, Amount: one}})
	require.NoError(t, err)
	require.Equal(t, fa.txh, h)
	require.Equal(t, fa.vub, vub)
	require.Equal(t, expected, fa.script)

	_, _, err = tok.MultiTransfer(ctx, nil)
	require.Error(t, err)
}

func TestTokenTransferTransaction(t *testing.T) {
	ctx := context.Background()
	fa := new(fakeActor)
	tok := New(fa, tokenHash)
	one := big.NewInt(1)

	makers := map[string]func(context.Context, util.Uint160, util.Uint160, *big.Int, any) (*transaction.Transaction, error){
		"signed":   tok.TransferTransaction,
		"unsigned": tok.TransferUnsigned,
	}
	for name, mk := range makers {
		t.Run(name, func(t *testing.T) {
			fa.err = errors.New("connection refused")
			_, err := mk(ctx, alice, bob, one, nil)
			require.Error(t, err)

			fa.err, fa.tx = nil, &transaction.Transaction{Nonce: 100500, ValidUntilBlock: 42}
			tx, err := mk(ctx, alice, bob, one, nil)
			require.NoError(t, err)
			require.Same(t, fa.tx, tx)

			_, err = mk(ctx, alice, bob, one, stackitem.NewMap())
			require.Error(t, err)
		})
	}
}
