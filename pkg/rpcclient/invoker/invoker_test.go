package invoker

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/nspcc-dev/n3sdk/pkg/core/transaction"
	"github.com/nspcc-dev/n3sdk/pkg/neorpc/result"
	"github.com/nspcc-dev/n3sdk/pkg/smartcontract"
	"github.com/nspcc-dev/n3sdk/pkg/util"
	"github.com/nspcc-dev/n3sdk/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

type rpcInv struct {
	resInv *result.Invoke
	resTrm bool
	resItm []stackitem.Item
	err    error

	params  []smartcontract.Parameter
	signers []transaction.Signer
}

func (r *rpcInv) InvokeContractVerify(_ context.Context, contract util.Uint160, params []smartcontract.Parameter, signers []transaction.Signer, witnesses ...transaction.Witness) (*result.Invoke, error) {
	r.params, r.signers = params, signers
	return r.resInv, r.err
}
func (r *rpcInv) InvokeFunction(_ context.Context, contract util.Uint160, operation string, params []smartcontract.Parameter, signers []transaction.Signer) (*result.Invoke, error) {
	r.params, r.signers = params, signers
	return r.resInv, r.err
}
func (r *rpcInv) InvokeScript(_ context.Context, script []byte, signers []transaction.Signer) (*result.Invoke, error) {
	r.signers = signers
	return r.resInv, r.err
}
func (r *rpcInv) TerminateSession(_ context.Context, sessionID uuid.UUID) (bool, error) {
	return r.resTrm, r.err
}
func (r *rpcInv) TraverseIterator(_ context.Context, sessionID, iteratorID uuid.UUID, maxItemsCount int) ([]stackitem.Item, error) {
	if r.err != nil {
		return nil, r.err
	}
	maxItemsCount = min(maxItemsCount, len(r.resItm))
	items := r.resItm[:maxItemsCount]
	r.resItm = r.resItm[maxItemsCount:]
	return items, nil
}

// noSessions only implements RPCInvoke.
type noSessions struct {
	RPCInvoke
}

func TestInvoker(t *testing.T) {
	ctx := context.Background()
	resExp := &result.Invoke{State: "HALT"}
	ri := &rpcInv{resInv: resExp, resTrm: true}
	signers := []transaction.Signer{{Account: util.Uint160{1, 2, 3}, Scopes: transaction.CalledByEntry}}
	inv := New(ri, signers)

	res, err := inv.Call(ctx, util.Uint160{}, "method")
	require.NoError(t, err)
	require.Equal(t, resExp, res)
	require.Empty(t, ri.params)
	require.Equal(t, signers, ri.signers)

	res, err = inv.Call(ctx, util.Uint160{}, "method", 42, "str")
	require.NoError(t, err)
	require.Equal(t, resExp, res)
	require.Equal(t, []smartcontract.Parameter{
		smartcontract.NewIntegerParameter(42),
		smartcontract.NewStringParameter("str"),
	}, ri.params)

	res, err = inv.Verify(ctx, util.Uint160{}, nil, "param")
	require.NoError(t, err)
	require.Equal(t, resExp, res)

	res, err = inv.Run(ctx, []byte{1})
	require.NoError(t, err)
	require.Equal(t, resExp, res)

	_, err = inv.Verify(ctx, util.Uint160{}, nil, make(chan struct{}))
	require.Error(t, err)

	_, err = inv.Call(ctx, util.Uint160{}, "method", make(chan struct{}))
	require.Error(t, err)

	ri.err = errors.New("boom")
	_, err = inv.Run(ctx, []byte{1})
	require.Error(t, err)
}

func TestInvokerTerminateSession(t *testing.T) {
	ctx := context.Background()
	ri := &rpcInv{}
	inv := New(ri, nil)

	ri.err = errors.New("")
	require.Error(t, inv.TerminateSession(ctx, uuid.UUID{}))
	ri.err = nil
	ri.resTrm = false
	require.Error(t, inv.TerminateSession(ctx, uuid.UUID{}))
	ri.resTrm = true
	require.NoError(t, inv.TerminateSession(ctx, uuid.UUID{}))

	inv = New(noSessions{ri}, nil)
	require.ErrorIs(t, inv.TerminateSession(ctx, uuid.UUID{}), ErrNoSessions)
}

func TestInvokerTraverseIterator(t *testing.T) {
	ctx := context.Background()
	ri := &rpcInv{}
	inv := New(ri, nil)

	for _, num := range []int{0, 1, 2} {
		res, err := inv.TraverseIterator(ctx, uuid.UUID{}, &result.Iterator{
			Values: []stackitem.Item{stackitem.Make(42)},
		}, num)
		require.NoError(t, err)
		require.Equal(t, []stackitem.Item{stackitem.Make(42)}, res)
	}

	// No session and no values.
	res, err := inv.TraverseIterator(ctx, uuid.UUID{}, &result.Iterator{}, 2)
	require.NoError(t, err)
	require.Empty(t, res)

	ri.err = errors.New("")
	_, err = inv.TraverseIterator(ctx, uuid.UUID{}, &result.Iterator{ID: &uuid.UUID{}}, 2)
	require.Error(t, err)

	ri.err = nil
	ri.resItm = []stackitem.Item{stackitem.Make(42)}
	res, err = inv.TraverseIterator(ctx, uuid.UUID{}, &result.Iterator{ID: &uuid.UUID{}}, 2)
	require.NoError(t, err)
	require.Equal(t, []stackitem.Item{stackitem.Make(42)}, res)

	inv = New(noSessions{ri}, nil)
	_, err = inv.TraverseIterator(ctx, uuid.UUID{}, &result.Iterator{ID: &uuid.UUID{}}, 2)
	require.ErrorIs(t, err, ErrNoSessions)
}

func TestInvokerTraverseExpandedSession(t *testing.T) {
	ctx := context.Background()
	mockClient := &rpcInv{
		resItm: []stackitem.Item{
			stackitem.Make(1),
			stackitem.Make(2),
			stackitem.Make(3),
		},
	}
	inv := New(mockClient, nil)

	sessionID := uuid.New()
	iteratorID := uuid.New()
	iter := &result.Iterator{
		ID:     &iteratorID,
		Values: []stackitem.Item{stackitem.Make(10), stackitem.Make(20)},
	}
	res, err := inv.TraverseIterator(ctx, sessionID, iter, 2)
	require.NoError(t, err)
	require.Equal(t, []stackitem.Item{stackitem.Make(10), stackitem.Make(20)}, res)

	res, err = inv.TraverseIterator(ctx, sessionID, iter, 2)
	require.NoError(t, err)
	require.Equal(t, []stackitem.Item{stackitem.Make(1), stackitem.Make(2)}, res)

	res, err = inv.TraverseIterator(ctx, sessionID, iter, 2)
	require.NoError(t, err)
	require.Equal(t, []stackitem.Item{stackitem.Make(3)}, res)

	mockClient.resItm = nil
	res, err = inv.TraverseIterator(ctx, sessionID, iter, 2)
	require.NoError(t, err)
	require.Empty(t, res)
}

func TestInvokerSigners(t *testing.T) {
	ri := &rpcInv{resInv: &result.Invoke{State: "HALT"}}
	inv := New(ri, nil)

	require.Nil(t, inv.Signers())

	s := []transaction.Signer{}
	inv = New(ri, s)
	require.Equal(t, s, inv.Signers())

	s = append(s, transaction.Signer{Account: util.Uint160{1, 2, 3}, Scopes: transaction.CalledByEntry})
	inv = New(ri, s)
	require.Equal(t, s, inv.Signers())
}
