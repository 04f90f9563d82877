/*
Package invoker provides a convenient wrapper to perform test calls via RPC client.

Invoker keeps a list of signers used for every invocation and converts regular
Go values into contract parameters. It never produces transactions and never
changes the state of the chain, results are returned as is for upper layers
(like unwrap or contract-specific packages) to interpret.
*/
package invoker

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/nspcc-dev/n3sdk/pkg/core/transaction"
	"github.com/nspcc-dev/n3sdk/pkg/neorpc/result"
	"github.com/nspcc-dev/n3sdk/pkg/smartcontract"
	"github.com/nspcc-dev/n3sdk/pkg/util"
	"github.com/nspcc-dev/n3sdk/pkg/vm/stackitem"
)

// ErrNoSessions is returned from session-related methods when the client
// doesn't implement RPCSessions.
var ErrNoSessions = errors.New("client doesn't support iterator sessions")

// RPCInvoke is a set of RPC methods needed to execute things at the current
// blockchain height.
type RPCInvoke interface {
	InvokeContractVerify(ctx context.Context, contract util.Uint160, params []smartcontract.Parameter, signers []transaction.Signer, witnesses ...transaction.Witness) (*result.Invoke, error)
	InvokeFunction(ctx context.Context, contract util.Uint160, operation string, params []smartcontract.Parameter, signers []transaction.Signer) (*result.Invoke, error)
	InvokeScript(ctx context.Context, script []byte, signers []transaction.Signer) (*result.Invoke, error)
}

// RPCSessions is a set of RPC methods needed to retrieve values from the
// session-based iterators.
type RPCSessions interface {
	TerminateSession(ctx context.Context, sessionID uuid.UUID) (bool, error)
	TraverseIterator(ctx context.Context, sessionID, iteratorID uuid.UUID, maxItemsCount int) ([]stackitem.Item, error)
}

// Invoker allows to test-execute things using RPC client. Its API simplifies
// reusing the same signers list for a series of invocations and at the
// same time uses regular Go types for call parameters. It doesn't do anything with
// the result of invocation, that's left for upper (contract) layer to deal with.
// Invoker does not produce any transactions and does not change the state of the
// chain.
type Invoker struct {
	client  RPCInvoke
	signers []transaction.Signer
}

// New creates an Invoker to test-execute things at the current blockchain height.
// Session-related methods work if the client also implements RPCSessions.
func New(client RPCInvoke, signers []transaction.Signer) *Invoker {
	return &Invoker{client, signers}
}

// Signers returns the set of current invoker signers which is mostly useful
// when working with upper-layer actors. Returned slice is not a copy and
// must not be modified.
func (v *Invoker) Signers() []transaction.Signer {
	return v.signers
}

// Call invokes a method of the contract with the given parameters (and
// Invoker-specific list of signers) and returns the result as is.
func (v *Invoker) Call(ctx context.Context, contract util.Uint160, operation string, params ...any) (*result.Invoke, error) {
	ps, err := smartcontract.NewParametersFromValues(params...)
	if err != nil {
		return nil, err
	}
	return v.client.InvokeFunction(ctx, contract, operation, ps, v.signers)
}

// Verify invokes contract's verify method in the verification context with
// Invoker-specific signers and given witnesses and parameters.
func (v *Invoker) Verify(ctx context.Context, contract util.Uint160, witnesses []transaction.Witness, params ...any) (*result.Invoke, error) {
	ps, err := smartcontract.NewParametersFromValues(params...)
	if err != nil {
		return nil, err
	}
	return v.client.InvokeContractVerify(ctx, contract, ps, v.signers, witnesses...)
}

// Run executes given bytecode with Invoker-specific list of signers.
func (v *Invoker) Run(ctx context.Context, script []byte) (*result.Invoke, error) {
	return v.client.InvokeScript(ctx, script, v.signers)
}

// TerminateSession closes the given session, returning an error if anything
// goes wrong. It's not strictly required to close the session (it'll expire on
// the server anyway), but it helps to release server resources earlier.
func (v *Invoker) TerminateSession(ctx context.Context, sessionID uuid.UUID) error {
	s, ok := v.client.(RPCSessions)
	if !ok {
		return ErrNoSessions
	}
	r, err := s.TerminateSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if !r {
		return errors.New("terminatesession returned false")
	}
	return nil
}

// TraverseIterator allows to retrieve the next batch of items from the given
// iterator in the given session (previously returned from Call or Run). It
// works both with session-backed iterators and expanded ones (which one you
// have depends on the RPC server). It can change the state of the iterator
// in the process. If num <= 0 then DefaultIteratorResultItems number of
// elements is requested. If result contains no elements, then either Iterator
// has no elements or session was expired and terminated by the server.
func (v *Invoker) TraverseIterator(ctx context.Context, sessionID uuid.UUID, iterator *result.Iterator, num int) ([]stackitem.Item, error) {
	if num <= 0 {
		num = DefaultIteratorResultItems
	}
	if len(iterator.Values) > 0 {
		num = min(num, len(iterator.Values))
		items := iterator.Values[:num]
		iterator.Values = iterator.Values[num:]
		return items, nil
	}
	if iterator.ID == nil {
		return nil, nil
	}
	s, ok := v.client.(RPCSessions)
	if !ok {
		return nil, ErrNoSessions
	}
	items, err := s.TraverseIterator(ctx, sessionID, *iterator.ID, num)
	if err != nil {
		return nil, fmt.Errorf("traverseiterator: %w", err)
	}
	return items, nil
}

// DefaultIteratorResultItems is the default number of results to
// request from the iterator. Typically it's the same as server's
// MaxIteratorResultItems, but different servers can have different
// settings.
const DefaultIteratorResultItems = 100
