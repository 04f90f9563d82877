package actor

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/nspcc-dev/n3sdk/pkg/config/netmode"
	"github.com/nspcc-dev/n3sdk/pkg/core/native/nativehashes"
	"github.com/nspcc-dev/n3sdk/pkg/core/transaction"
	"github.com/nspcc-dev/n3sdk/pkg/neorpc/result"
	"github.com/nspcc-dev/n3sdk/pkg/smartcontract"
	"github.com/nspcc-dev/n3sdk/pkg/smartcontract/trigger"
	"github.com/nspcc-dev/n3sdk/pkg/util"
	"github.com/nspcc-dev/n3sdk/pkg/vm/stackitem"
	"github.com/nspcc-dev/n3sdk/pkg/wallet"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

// fakeNode answers RPCActor and RPCPollingWaiter calls from its fields.
type fakeNode struct {
	err      error // returned by every call
	sendErr  error // returned by SendRawTransaction only
	invRes   *result.Invoke
	netFee   int64
	bCount   atomic.Uint32
	version  *result.Version
	hash     util.Uint256
	balances *result.NEP17Balances
	sent     []*transaction.Transaction

	mu     sync.RWMutex
	appLog *result.ApplicationLog
	logErr error
}

func (n *fakeNode) invoke() (*result.Invoke, error) { return n.invRes, n.err }

func (n *fakeNode) InvokeContractVerify(context.Context, util.Uint160, []smartcontract.Parameter, []transaction.Signer, ...transaction.Witness) (*result.Invoke, error) {
	return n.invoke()
}

func (n *fakeNode) InvokeFunction(context.Context, util.Uint160, string, []smartcontract.Parameter, []transaction.Signer) (*result.Invoke, error) {
	return n.invoke()
}

func (n *fakeNode) InvokeScript(context.Context, []byte, []transaction.Signer) (*result.Invoke, error) {
	return n.invoke()
}

func (n *fakeNode) CalculateNetworkFee(context.Context, *transaction.Transaction) (int64, error) {
	return n.netFee, n.err
}

func (n *fakeNode) GetBlockCount(ctx context.Context) (uint32, error) {
	if ctx.Err() != nil {
		return 0, ctx.Err()
	}
	return n.bCount.Load(), n.err
}

func (n *fakeNode) GetNEP17Balances(context.Context, util.Uint160) (*result.NEP17Balances, error) {
	return n.balances, n.err
}

func (n *fakeNode) GetVersion(context.Context) (*result.Version, error) {
	v := *n.version
	return &v, n.err
}

func (n *fakeNode) SendRawTransaction(_ context.Context, tx *transaction.Transaction) (util.Uint256, error) {
	if n.sendErr != nil {
		return tx.Hash(), n.sendErr
	}
	n.sent = append(n.sent, tx)
	return n.hash, n.err
}

func (n *fakeNode) TerminateSession(context.Context, uuid.UUID) (bool, error) { return false, nil }

func (n *fakeNode) TraverseIterator(context.Context, uuid.UUID, uuid.UUID, int) ([]stackitem.Item, error) {
	return nil, nil
}

func (n *fakeNode) GetApplicationLog(context.Context, util.Uint256, *trigger.Type) (*result.ApplicationLog, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	switch {
	case n.appLog != nil:
		return n.appLog, nil
	case n.logErr != nil:
		return nil, n.logErr
	default:
		return nil, errors.New("not found")
	}
}

func (n *fakeNode) setAppLog(l *result.ApplicationLog) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.appLog = l
}

// gasBalance reports 100 NEO and the given GAS amount.
func gasBalance(amount string) *result.NEP17Balances {
	return &result.NEP17Balances{Balances: []result.NEP17Balance{
		{Asset: nativehashes.Neo, Amount: "100", Symbol: "NEO"},
		{Asset: nativehashes.Gas, Amount: amount, Symbol: "GAS", Decimals: 8},
	}}
}

func testRPCAndAccount(t *testing.T) (*fakeNode, *wallet.Account) {
	node := &fakeNode{
		version: &result.Version{Protocol: result.Protocol{
			Network:              netmode.UnitTestNet,
			MillisecondsPerBlock: 1000,
			ValidatorsCount:      7,
		}},
		invRes:   &result.Invoke{State: "HALT", GasConsumed: 3, Script: []byte{1, 2, 3}},
		netFee:   42,
		balances: gasBalance("100000000000"),
	}
	node.bCount.Store(10)
	acc, err := wallet.NewAccount()
	require.NoError(t, err)
	return node, acc
}
