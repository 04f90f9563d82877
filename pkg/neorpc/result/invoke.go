package result

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/nspcc-dev/n3sdk/pkg/core/state"
	"github.com/nspcc-dev/n3sdk/pkg/core/transaction"
	"github.com/nspcc-dev/n3sdk/pkg/vm/stackitem"
	"github.com/nspcc-dev/n3sdk/pkg/vm/vmstate"
)

// Invoke is the outcome of a test invocation (invokescript, invokefunction
// and invokecontractverify calls). Iterators found on the stack are
// represented as Interop items holding an Iterator value.
type Invoke struct {
	State          string
	GasConsumed    int64
	Script         []byte
	Stack          []stackitem.Item
	FaultException string
	Notifications  []state.NotificationEvent
	Transaction    *transaction.Transaction
	Session        uuid.UUID
}

// Iterator is an iterator returned by the node. ID is set when the node
// keeps sessions, Values holds the items the node expanded in place (if
// any), Truncated tells whether there are more of them.
type Iterator struct {
	ID        *uuid.UUID
	Values    []stackitem.Item
	Truncated bool
}

type invokeAux struct {
	State          string                    `json:"state"`
	GasConsumed    int64                     `json:"gasconsumed,string"`
	Script         []byte                    `json:"script"`
	Stack          []json.RawMessage         `json:"stack"`
	FaultException *string                   `json:"exception"`
	Notifications  []state.NotificationEvent `json:"notifications"`
	Transaction    []byte                    `json:"tx,omitempty"`
	Session        *uuid.UUID                `json:"session,omitempty"`
}

type iteratorAux struct {
	Type      string            `json:"type"`
	Interface string            `json:"interface,omitempty"`
	ID        *uuid.UUID        `json:"id,omitempty"`
	Values    []json.RawMessage `json:"iterator,omitempty"`
	Truncated bool              `json:"truncated,omitempty"`
}

// iteratorInterface is the interface name nodes use for iterators.
const iteratorInterface = "IIterator"

// IsHalt returns true when the script has finished normally.
func (r *Invoke) IsHalt() bool {
	st, err := vmstate.FromString(r.State)
	return err == nil && st == vmstate.Halt
}

// MarshalJSON implements the json.Marshaler interface.
func (r Invoke) MarshalJSON() ([]byte, error) {
	aux := invokeAux{
		State:         r.State,
		GasConsumed:   r.GasConsumed,
		Script:        r.Script,
		Stack:         make([]json.RawMessage, 0, len(r.Stack)),
		Notifications: r.Notifications,
	}
	for i, it := range r.Stack {
		var (
			data []byte
			err  error
		)
		if iter, ok := it.Value().(Iterator); ok && it.Type() == stackitem.InteropT {
			data, err = json.Marshal(iter)
		} else {
			data, err = stackitem.ToJSONWithTypes(it)
		}
		if err != nil {
			return nil, fmt.Errorf("stack item %d: %w", i, err)
		}
		aux.Stack = append(aux.Stack, data)
	}
	if r.FaultException != "" {
		aux.FaultException = &r.FaultException
	}
	if r.Transaction != nil {
		aux.Transaction = r.Transaction.Bytes()
	}
	if r.Session != (uuid.UUID{}) {
		aux.Session = &r.Session
	}
	return json.Marshal(aux)
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (r *Invoke) UnmarshalJSON(data []byte) error {
	var aux invokeAux
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = Invoke{
		State:         aux.State,
		GasConsumed:   aux.GasConsumed,
		Script:        aux.Script,
		Notifications: aux.Notifications,
	}
	if aux.FaultException != nil {
		r.FaultException = *aux.FaultException
	}
	if aux.Session != nil {
		r.Session = *aux.Session
	}
	if aux.Stack != nil {
		r.Stack = make([]stackitem.Item, len(aux.Stack))
		for i, raw := range aux.Stack {
			it, err := stackItemFromJSON(raw)
			if err != nil {
				return fmt.Errorf("stack item %d: %w", i, err)
			}
			r.Stack[i] = it
		}
	}
	if len(aux.Transaction) != 0 {
		tx, err := transaction.NewTransactionFromBytes(aux.Transaction)
		if err != nil {
			return fmt.Errorf("tx: %w", err)
		}
		r.Transaction = tx
	}
	return nil
}

// stackItemFromJSON decodes a typed stack item, iterators are wrapped
// into Interop items.
func stackItemFromJSON(raw json.RawMessage) (stackitem.Item, error) {
	it, err := stackitem.FromJSONWithTypes(raw)
	if err != nil || it.Type() != stackitem.InteropT {
		return it, err
	}
	var iter Iterator
	if err := json.Unmarshal(raw, &iter); err != nil {
		return nil, err
	}
	return stackitem.NewInterop(iter), nil
}

// MarshalJSON implements the json.Marshaler interface.
func (i Iterator) MarshalJSON() ([]byte, error) {
	aux := iteratorAux{
		Type:      stackitem.InteropT.String(),
		ID:        i.ID,
		Truncated: i.Truncated,
	}
	if i.ID != nil {
		aux.Interface = iteratorInterface
	}
	for _, v := range i.Values {
		data, err := stackitem.ToJSONWithTypes(v)
		if err != nil {
			return nil, err
		}
		aux.Values = append(aux.Values, data)
	}
	return json.Marshal(aux)
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (i *Iterator) UnmarshalJSON(data []byte) error {
	var aux iteratorAux
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Interface != "" && aux.Interface != iteratorInterface {
		return fmt.Errorf("unknown interop interface %q", aux.Interface)
	}
	*i = Iterator{ID: aux.ID, Truncated: aux.Truncated}
	if aux.Values != nil {
		i.Values = make([]stackitem.Item, len(aux.Values))
		for j, raw := range aux.Values {
			v, err := stackitem.FromJSONWithTypes(raw)
			if err != nil {
				return fmt.Errorf("iterator value %d: %w", j, err)
			}
			i.Values[j] = v
		}
	}
	return nil
}

// AppExecToInvocation converts an execution result (as returned by
// actor.Wait) into Invoke so that unwrap helpers can be applied to it. Only
// State, GasConsumed, Stack, FaultException and Notifications are set.
func AppExecToInvocation(aer *state.AppExecResult, err error) (*Invoke, error) {
	if err != nil {
		return nil, err
	}
	return &Invoke{
		State:          aer.VMState.String(),
		GasConsumed:    aer.GasConsumed,
		Stack:          aer.Stack,
		FaultException: aer.FaultException,
		Notifications:  aer.Events,
	}, nil
}
