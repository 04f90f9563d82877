package rpcclient

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/nspcc-dev/n3sdk/pkg/core/state"
	"github.com/nspcc-dev/n3sdk/pkg/core/transaction"
	"github.com/nspcc-dev/n3sdk/pkg/neorpc"
	"github.com/nspcc-dev/n3sdk/pkg/neorpc/result"
	"github.com/nspcc-dev/n3sdk/pkg/smartcontract"
	"github.com/nspcc-dev/n3sdk/pkg/smartcontract/trigger"
	"github.com/nspcc-dev/n3sdk/pkg/util"
	"github.com/nspcc-dev/n3sdk/pkg/vm/stackitem"
)

// DefaultMaxIteratorResultItems is the number of iterator items requested
// by TraverseIterator when no limit is given.
const DefaultMaxIteratorResultItems = 100

// call performs the request and decodes its result into a new T.
func call[T any](ctx context.Context, c *Client, method string, params ...any) (*T, error) {
	res := new(T)
	if err := c.performRequest(ctx, method, params, res); err != nil {
		return nil, err
	}
	return res, nil
}

// CalculateNetworkFee asks the node for the network fee of tx. Witnesses of
// standard accounts need only verification scripts, contract signers may
// have empty witnesses.
func (c *Client) CalculateNetworkFee(ctx context.Context, tx *transaction.Transaction) (int64, error) {
	res, err := call[result.NetworkFee](ctx, c, "calculatenetworkfee", tx.Bytes())
	if err != nil {
		return 0, err
	}
	return res.Value, nil
}

// GetApplicationLog returns the execution results of the transaction or
// block, optionally only the ones for the given trigger.
func (c *Client) GetApplicationLog(ctx context.Context, hash util.Uint256, trig *trigger.Type) (*result.ApplicationLog, error) {
	params := []any{hash.StringLE()}
	if trig != nil {
		params = append(params, trig.String())
	}
	return call[result.ApplicationLog](ctx, c, "getapplicationlog", params...)
}

// GetBlockCount returns the number of blocks in the chain, that is the
// current height plus one.
func (c *Client) GetBlockCount(ctx context.Context) (uint32, error) {
	res, err := call[uint32](ctx, c, "getblockcount")
	if err != nil {
		return 0, err
	}
	return *res, nil
}

// GetContractStateByHash returns the deployed contract with the given hash.
func (c *Client) GetContractStateByHash(ctx context.Context, hash util.Uint160) (*state.Contract, error) {
	return call[state.Contract](ctx, c, "getcontractstate", hash.StringLE())
}

// GetNEP17Balances returns token balances of the account as tracked by the
// node.
func (c *Client) GetNEP17Balances(ctx context.Context, account util.Uint160) (*result.NEP17Balances, error) {
	return call[result.NEP17Balances](ctx, c, "getnep17balances", account.StringLE())
}

// GetVersion returns the node version and the network protocol settings.
func (c *Client) GetVersion(ctx context.Context) (*result.Version, error) {
	return call[result.Version](ctx, c, "getversion")
}

// InvokeScript runs the script on the node without persisting anything.
func (c *Client) InvokeScript(ctx context.Context, script []byte, signers []transaction.Signer) (*result.Invoke, error) {
	return c.invoke(ctx, "invokescript", []any{script}, signers, nil)
}

// InvokeFunction runs a single contract method on the node without
// persisting anything.
func (c *Client) InvokeFunction(ctx context.Context, contract util.Uint160, operation string, params []smartcontract.Parameter, signers []transaction.Signer) (*result.Invoke, error) {
	if params == nil {
		params = []smartcontract.Parameter{}
	}
	return c.invoke(ctx, "invokefunction", []any{contract.StringLE(), operation, params}, signers, nil)
}

// InvokeContractVerify runs the verify method of the contract with the
// Verification trigger. Witnesses, if given, must match signers one to one.
func (c *Client) InvokeContractVerify(ctx context.Context, contract util.Uint160, params []smartcontract.Parameter, signers []transaction.Signer, witnesses ...transaction.Witness) (*result.Invoke, error) {
	if params == nil {
		params = []smartcontract.Parameter{}
	}
	return c.invoke(ctx, "invokecontractverify", []any{contract.StringLE(), params}, signers, witnesses)
}

// invoke adds signers (with witnesses if any) to the parameters. Signers
// are omitted when there are none, such calls can be cached.
func (c *Client) invoke(ctx context.Context, method string, params []any, signers []transaction.Signer, witnesses []transaction.Witness) (*result.Invoke, error) {
	switch {
	case len(signers) == 0:
	case witnesses == nil:
		params = append(params, signers)
	case len(witnesses) != len(signers):
		return nil, fmt.Errorf("%s: %d witnesses for %d signers", method, len(witnesses), len(signers))
	default:
		sw := make([]neorpc.SignerWithWitness, len(signers))
		for i := range sw {
			sw[i] = neorpc.SignerWithWitness{Signer: signers[i], Witness: witnesses[i]}
		}
		params = append(params, sw)
	}
	return call[result.Invoke](ctx, c, method, params...)
}

// SendRawTransaction relays the transaction and returns its hash. On error
// the locally computed hash is returned. Cancelled requests are not
// repeated, such a transaction may still have reached the node.
func (c *Client) SendRawTransaction(ctx context.Context, tx *transaction.Transaction) (util.Uint256, error) {
	res, err := call[result.RelayResult](ctx, c, "sendrawtransaction", tx.Bytes())
	if err != nil {
		return tx.Hash(), err
	}
	return res.Hash, nil
}

// TraverseIterator fetches up to maxItemsCount values of the iterator
// (DefaultMaxIteratorResultItems if non-positive). An empty result means
// the iterator is exhausted or the session has expired.
func (c *Client) TraverseIterator(ctx context.Context, sessionID, iteratorID uuid.UUID, maxItemsCount int) ([]stackitem.Item, error) {
	if maxItemsCount <= 0 {
		maxItemsCount = DefaultMaxIteratorResultItems
	}
	raw, err := call[[]json.RawMessage](ctx, c, "traverseiterator", sessionID.String(), iteratorID.String(), maxItemsCount)
	if err != nil {
		return nil, err
	}
	items := make([]stackitem.Item, len(*raw))
	for i := range *raw {
		if items[i], err = stackitem.FromJSONWithTypes((*raw)[i]); err != nil {
			return nil, fmt.Errorf("iterator value #%d: %w", i, err)
		}
	}
	return items, nil
}

// TerminateSession closes the session, it returns false if the node doesn't
// know it.
func (c *Client) TerminateSession(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	res, err := call[bool](ctx, c, "terminatesession", sessionID.String())
	if err != nil {
		return false, err
	}
	return *res, nil
}
