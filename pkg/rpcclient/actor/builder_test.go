package actor

import (
	"context"
	"errors"
	"testing"

	"github.com/nspcc-dev/n3sdk/pkg/config/netmode"
	"github.com/nspcc-dev/n3sdk/pkg/core/transaction"
	"github.com/nspcc-dev/n3sdk/pkg/crypto/keys"
	"github.com/nspcc-dev/n3sdk/pkg/neorpc/result"
	"github.com/nspcc-dev/n3sdk/pkg/rpcclient/estimator"
	"github.com/nspcc-dev/n3sdk/pkg/util"
	"github.com/nspcc-dev/n3sdk/pkg/wallet"
	"github.com/stretchr/testify/require"
)

func testBuilder(t *testing.T) (*fakeNode, *wallet.Account, *Builder) {
	client, acc := testRPCAndAccount(t)
	b := NewBuilder(client, Options{}).
		SetSigners(transaction.Signer{Account: acc.ScriptHash(), Scopes: transaction.CalledByEntry})
	return client, acc, b
}

func TestBuilderStates(t *testing.T) {
	ctx := context.Background()
	client, acc, b := testBuilder(t)
	wp := NewAccountProvider(acc)

	require.Equal(t, StateEmpty, b.State())
	_, err := b.Send(ctx)
	require.ErrorIs(t, err, ErrNotSigned)

	b.SetScript([]byte{1, 2, 3}).SetNonce(77)
	require.Equal(t, StateScripted, b.State())
	require.Nil(t, b.Transaction())

	tx, err := b.Sign(ctx, wp)
	require.NoError(t, err)
	require.Equal(t, StateSigned, b.State())
	require.Equal(t, tx, b.Transaction())
	require.Equal(t, uint32(77), tx.Nonce)
	require.Equal(t, int64(3), tx.SystemFee)
	require.Equal(t, int64(42), tx.NetworkFee)
	require.Equal(t, uint32(1009), tx.ValidUntilBlock)
	require.Equal(t, 1, len(tx.Scripts))
	require.Equal(t, acc.Contract.Script, tx.Scripts[0].VerificationScript)
	require.True(t, acc.PublicKey().VerifyHashable(tx.Scripts[0].InvocationScript[2:], uint32(netmode.UnitTestNet), tx))

	// Sending failure keeps the transaction signed.
	client.sendErr = errors.New("connection reset")
	_, err = b.Send(ctx)
	require.Error(t, err)
	require.Equal(t, StateSigned, b.State())

	client.sendErr = nil
	client.hash = util.Uint256{7, 7, 7}
	h, err := b.Send(ctx)
	require.NoError(t, err)
	require.Equal(t, client.hash, h)
	require.Equal(t, StateFinalized, b.State())
	require.Equal(t, []*transaction.Transaction{tx}, client.sent)

	// No modifications after signing.
	_, err = b.Sign(ctx, wp)
	require.ErrorIs(t, err, ErrAlreadySigned)
	b.SetNonce(1)
	require.ErrorIs(t, b.Err(), ErrAlreadySigned)
	_, err = b.Send(ctx)
	require.ErrorIs(t, err, ErrAlreadySigned)

	require.Equal(t, "Empty", StateEmpty.String())
	require.Equal(t, "Finalized", StateFinalized.String())
	require.Equal(t, "State(42)", State(42).String())
}

func TestBuilderStickyErrors(t *testing.T) {
	ctx := context.Background()
	_, acc, b := testBuilder(t)
	wp := NewAccountProvider(acc)

	b.SetScript(nil)
	require.ErrorIs(t, b.Err(), ErrNoScript)
	b.SetScript([]byte{1}).SetNonce(1)
	require.ErrorIs(t, b.Err(), ErrNoScript)
	require.Equal(t, StateEmpty, b.State())
	_, err := b.Sign(ctx, wp)
	require.ErrorIs(t, err, ErrNoScript)

	_, _, b = testBuilder(t)
	b.SetScript(make([]byte, MaxScriptSize+1))
	require.ErrorIs(t, b.Err(), ErrScriptTooLarge)

	_, _, b = testBuilder(t)
	b.SetScript(make([]byte, MaxScriptSize))
	require.NoError(t, b.Err())

	client, _ := testRPCAndAccount(t)
	b = NewBuilder(client, Options{MaxScriptSize: 16}).SetScript(make([]byte, 17))
	require.ErrorIs(t, b.Err(), ErrScriptTooLarge)
	b = NewBuilder(client, Options{MaxScriptSize: 16}).SetScript(make([]byte, 16))
	require.NoError(t, b.Err())
	b = NewBuilder(client, Options{MaxScriptSize: MaxScriptSize + 1}).SetScript(make([]byte, MaxScriptSize+1))
	require.ErrorIs(t, b.Err(), ErrScriptTooLarge)

	b = NewBuilder(client, Options{}).SetSigners()
	require.ErrorIs(t, b.Err(), ErrNoSigners)

	b = NewBuilder(client, Options{}).SetScript([]byte{1})
	_, err = b.Sign(ctx, wp)
	require.ErrorIs(t, err, ErrNoSigners)

	signer := transaction.Signer{Account: acc.ScriptHash(), Scopes: transaction.CalledByEntry}
	b = NewBuilder(client, Options{}).SetSigners(signer, signer)
	require.ErrorIs(t, b.Err(), transaction.ErrNonUniqueSigners)

	b = NewBuilder(client, Options{}).SetSigners(transaction.Signer{Account: acc.ScriptHash(), Scopes: transaction.CustomContracts})
	require.Error(t, b.Err())

	_, _, b = testBuilder(t)
	require.ErrorIs(t, b.SetSystemFee(-1).Err(), transaction.ErrNegativeSystemFee)
	_, _, b = testBuilder(t)
	require.Error(t, b.SetAdditionalSystemFee(-1).Err())
	_, _, b = testBuilder(t)
	require.Error(t, b.SetAdditionalNetworkFee(-1).Err())
}

func TestBuilderValidUntilBlock(t *testing.T) {
	ctx := context.Background()
	client, acc, _ := testBuilder(t)
	wp := NewAccountProvider(acc)
	signer := transaction.Signer{Account: acc.ScriptHash(), Scopes: transaction.CalledByEntry}
	newB := func() *Builder {
		return NewBuilder(client, Options{}).SetScript([]byte{1}).SetSigners(signer)
	}

	// Height is 9.
	for _, vub := range []uint32{0, 9, 9 + 5760 + 1} {
		_, err := newB().SetValidUntilBlock(vub).Sign(ctx, wp)
		require.ErrorIs(t, err, ErrInvalidValidUntilBlock, vub)
	}
	for _, vub := range []uint32{10, 9 + 5760} {
		tx, err := newB().SetValidUntilBlock(vub).Sign(ctx, wp)
		require.NoError(t, err, vub)
		require.Equal(t, vub, tx.ValidUntilBlock)
	}

	// Node limit takes precedence.
	client.version.Protocol.MaxValidUntilBlockIncrement = 100
	_, err := newB().SetValidUntilBlock(110).Sign(ctx, wp)
	require.ErrorIs(t, err, ErrInvalidValidUntilBlock)
	tx, err := newB().Sign(ctx, wp)
	require.NoError(t, err)
	require.Equal(t, uint32(109), tx.ValidUntilBlock)

	// Modifier can't break it.
	_, err = newB().SetModifier(func(tx *transaction.Transaction) error {
		tx.ValidUntilBlock = 5
		return nil
	}).Sign(ctx, wp)
	require.ErrorIs(t, err, ErrInvalidValidUntilBlock)

	client.bCount.Store(0)
	tx, err = newB().Sign(ctx, wp)
	require.NoError(t, err)
	require.Equal(t, uint32(100), tx.ValidUntilBlock)

	client.err = errors.New("bad")
	_, err = newB().Sign(ctx, wp)
	require.Error(t, err)
}

func TestBuilderFees(t *testing.T) {
	ctx := context.Background()
	client, acc, _ := testBuilder(t)
	wp := NewAccountProvider(acc)
	signer := transaction.Signer{Account: acc.ScriptHash(), Scopes: transaction.CalledByEntry}

	client.invRes = &result.Invoke{State: "HALT", GasConsumed: 1001}
	tx, err := NewBuilder(client, Options{SystemFeeMargin: 10}).
		SetScript([]byte{1}).
		SetSigners(signer).
		SetAdditionalSystemFee(5).
		SetAdditionalNetworkFee(8).
		Sign(ctx, wp)
	require.NoError(t, err)
	require.Equal(t, int64(1102+5), tx.SystemFee)
	require.Equal(t, int64(42+8), tx.NetworkFee)

	// Known system fee skips the test invocation.
	client.invRes = &result.Invoke{State: "FAULT", FaultException: "boom"}
	tx, err = NewBuilder(client, Options{}).SetScript([]byte{1}).SetSigners(signer).SetSystemFee(500).Sign(ctx, wp)
	require.NoError(t, err)
	require.Equal(t, int64(500), tx.SystemFee)

	_, err = NewBuilder(client, Options{}).SetScript([]byte{1}).SetSigners(signer).Sign(ctx, wp)
	require.ErrorIs(t, err, estimator.ErrFault)
	var fe *estimator.FaultError
	require.ErrorAs(t, err, &fe)
	require.Equal(t, "boom", fe.Exception)

	// Local network fee doesn't need the node.
	client.invRes = &result.Invoke{State: "HALT", GasConsumed: 1}
	tx, err = NewBuilder(client, Options{LocalNetworkFee: true}).SetScript([]byte{1}).SetSigners(signer).Sign(ctx, wp)
	require.NoError(t, err)
	require.Less(t, int64(42), tx.NetworkFee)
	est := estimator.New(client, estimator.Options{})
	require.Equal(t, est.NetworkFeeForSize(tx.Size(), acc.Contract.Script), tx.NetworkFee)
}

func TestBuilderBalance(t *testing.T) {
	ctx := context.Background()
	client, acc, _ := testBuilder(t)
	wp := NewAccountProvider(acc)
	signer := transaction.Signer{Account: acc.ScriptHash(), Scopes: transaction.CalledByEntry}
	newB := func(o Options) *Builder {
		return NewBuilder(client, o).SetScript([]byte{1}).SetSigners(signer)
	}

	client.balances = gasBalance("44")
	_, err := newB(Options{}).Sign(ctx, wp)
	var ife *InsufficientFundsError
	require.ErrorAs(t, err, &ife)
	require.Equal(t, int64(45), ife.Required)
	require.Equal(t, int64(44), ife.Available)

	client.balances = gasBalance("45")
	_, err = newB(Options{}).Sign(ctx, wp)
	require.NoError(t, err)

	// No GAS at all.
	client.balances = &result.NEP17Balances{}
	_, err = newB(Options{}).Sign(ctx, wp)
	require.ErrorAs(t, err, &ife)
	require.Equal(t, int64(0), ife.Available)

	_, err = newB(Options{SkipBalanceCheck: true}).Sign(ctx, wp)
	require.NoError(t, err)

	// Configured GAS hash is matched instead of the symbol.
	client.balances = gasBalance("100")
	_, err = newB(Options{GasToken: util.Uint160{1, 2, 3}}).Sign(ctx, wp)
	require.ErrorAs(t, err, &ife)

	client.balances = gasBalance("many")
	_, err = newB(Options{}).Sign(ctx, wp)
	require.Error(t, err)
}

func TestBuilderUnsigned(t *testing.T) {
	ctx := context.Background()
	_, acc, b := testBuilder(t)

	tx, err := b.SetScript([]byte{1}).Unsigned(ctx, NewAccountProvider(acc))
	require.NoError(t, err)
	require.Equal(t, StateScripted, b.State())
	require.Nil(t, b.Transaction())
	require.Equal(t, acc.Contract.Script, tx.Scripts[0].VerificationScript)
	require.Empty(t, tx.Scripts[0].InvocationScript)

	// The same builder can still sign.
	_, err = b.Sign(ctx, NewAccountProvider(acc))
	require.NoError(t, err)
}

func TestBuilderWitnessProviders(t *testing.T) {
	ctx := context.Background()
	client, acc, _ := testBuilder(t)
	other, err := wallet.NewAccount()
	require.NoError(t, err)

	// Unknown account.
	_, err = NewBuilder(client, Options{}).
		SetScript([]byte{1}).
		SetSigners(transaction.Signer{Account: other.ScriptHash()}).
		Sign(ctx, NewAccountProvider(acc))
	require.ErrorIs(t, err, ErrNoAccount)

	// Contract-based signer.
	contract := util.Uint160{1, 2, 3}
	tx, err := NewBuilder(client, Options{}).
		SetScript([]byte{1}).
		SetSigners(transaction.Signer{Account: contract, Scopes: transaction.None}).
		Sign(ctx, WitnessProviderFunc(func(ctx context.Context, net netmode.Magic, tx *transaction.Transaction, signer int) (transaction.Witness, error) {
			require.Equal(t, netmode.UnitTestNet, net)
			return transaction.Witness{InvocationScript: []byte{0x11}}, nil
		}))
	require.NoError(t, err)
	require.Equal(t, []byte{0x11}, tx.Scripts[0].InvocationScript)
	require.Empty(t, tx.Scripts[0].VerificationScript)

	// Contract witness can't be estimated locally.
	_, err = NewBuilder(client, Options{LocalNetworkFee: true}).
		SetScript([]byte{1}).
		SetSigners(transaction.Signer{Account: contract}).
		Sign(ctx, WitnessProviderFunc(func(context.Context, netmode.Magic, *transaction.Transaction, int) (transaction.Witness, error) {
			return transaction.Witness{}, nil
		}))
	require.ErrorIs(t, err, estimator.ErrNonStandardWitness)

	// Witness for another account.
	_, err = NewBuilder(client, Options{}).
		SetScript([]byte{1}).
		SetSigners(transaction.Signer{Account: contract}).
		Sign(ctx, WitnessProviderFunc(func(context.Context, netmode.Magic, *transaction.Transaction, int) (transaction.Witness, error) {
			return transaction.Witness{VerificationScript: other.Contract.Script}, nil
		}))
	require.ErrorIs(t, err, ErrWitnessMismatch)

	// Provider failure.
	_, err = NewBuilder(client, Options{}).
		SetScript([]byte{1}).
		SetSigners(transaction.Signer{Account: contract}).
		Sign(ctx, WitnessProviderFunc(func(context.Context, netmode.Magic, *transaction.Transaction, int) (transaction.Witness, error) {
			return transaction.Witness{}, errors.New("hsm is offline")
		}))
	require.Error(t, err)

	// Locked account.
	locked := &wallet.Account{Address: other.Address, Contract: other.Contract}
	_, err = NewBuilder(client, Options{}).
		SetScript([]byte{1}).
		SetSigners(transaction.Signer{Account: other.ScriptHash()}).
		Sign(ctx, NewAccountProvider(locked))
	require.ErrorIs(t, err, wallet.ErrLocked)
}

func TestBuilderMultisig(t *testing.T) {
	ctx := context.Background()
	client, _ := testRPCAndAccount(t)

	accs := make([]*wallet.Account, 3)
	pubs := make(keys.PublicKeys, 3)
	for i := range accs {
		var err error
		accs[i], err = wallet.NewAccount()
		require.NoError(t, err)
		pubs[i] = accs[i].PublicKey()
	}
	for i := range accs {
		require.NoError(t, accs[i].ConvertMultisig(2, pubs))
	}
	multi := accs[0].ScriptHash()
	signer := transaction.Signer{Account: multi, Scopes: transaction.CalledByEntry}

	tx, err := NewBuilder(client, Options{LocalNetworkFee: true}).
		SetScript([]byte{1}).
		SetSigners(signer).
		Sign(ctx, NewAccountProvider(accs...))
	require.NoError(t, err)
	require.Equal(t, accs[0].Contract.Script, tx.Scripts[0].VerificationScript)
	require.Equal(t, 2*66, len(tx.Scripts[0].InvocationScript))

	sorted := pubs.Sorted()
	for i := 0; i < 2; i++ {
		sig := tx.Scripts[0].InvocationScript[i*66+2 : (i+1)*66]
		require.True(t, sorted[i].VerifyHashable(sig, uint32(netmode.UnitTestNet), tx))
	}
	est := estimator.New(client, estimator.Options{})
	require.Equal(t, est.NetworkFeeForSize(tx.Size(), tx.Scripts[0].VerificationScript), tx.NetworkFee)

	_, err = NewBuilder(client, Options{}).
		SetScript([]byte{1}).
		SetSigners(signer).
		Sign(ctx, NewAccountProvider(accs[2]))
	require.ErrorIs(t, err, ErrNotEnoughSignatures)
}

func txSignerFor(acc *wallet.Account) transaction.Signer {
	return transaction.Signer{Account: acc.ScriptHash(), Scopes: transaction.CalledByEntry}
}
