package state

import (
	"encoding/json"
	"fmt"

	"github.com/nspcc-dev/n3sdk/pkg/smartcontract/trigger"
	"github.com/nspcc-dev/n3sdk/pkg/util"
	"github.com/nspcc-dev/n3sdk/pkg/vm/stackitem"
	"github.com/nspcc-dev/n3sdk/pkg/vm/vmstate"
)

// Execution is the outcome of a single script run: the final VM state, the
// resulting stack and the notifications emitted along the way.
type Execution struct {
	Trigger        trigger.Type
	VMState        vmstate.State
	GasConsumed    int64
	Stack          []stackitem.Item
	Events         []NotificationEvent
	FaultException string
}

// AppExecResult is an Execution bound to the transaction or block it was
// made for.
type AppExecResult struct {
	Container util.Uint256
	Execution
}

type executionJSON struct {
	Trigger        string              `json:"trigger"`
	VMState        string              `json:"vmstate"`
	GasConsumed    int64               `json:"gasconsumed,string"`
	Stack          []json.RawMessage   `json:"stack"`
	Events         []NotificationEvent `json:"notifications"`
	FaultException *string             `json:"exception"`
}

// MarshalJSON implements the json.Marshaler interface.
func (e Execution) MarshalJSON() ([]byte, error) {
	aux := executionJSON{
		Trigger:     e.Trigger.String(),
		VMState:     e.VMState.String(),
		GasConsumed: e.GasConsumed,
		Stack:       make([]json.RawMessage, 0, len(e.Stack)),
		Events:      e.Events,
	}
	for _, it := range e.Stack {
		aux.Stack = append(aux.Stack, itemJSON(it))
	}
	if aux.Events == nil {
		aux.Events = []NotificationEvent{}
	}
	if e.FaultException != "" {
		aux.FaultException = &e.FaultException
	}
	return json.Marshal(aux)
}

// UnmarshalJSON implements the json.Unmarshaler interface. A stack with an
// item the node failed to serialize is dropped entirely (Stack is nil then),
// the rest of the execution is decoded anyway.
func (e *Execution) UnmarshalJSON(data []byte) error {
	var aux executionJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	trig, err := trigger.FromString(aux.Trigger)
	if err != nil {
		return err
	}
	st, err := vmstate.FromString(aux.VMState)
	if err != nil {
		return err
	}
	*e = Execution{
		Trigger:     trig,
		VMState:     st,
		GasConsumed: aux.GasConsumed,
		Stack:       decodeStack(aux.Stack),
		Events:      aux.Events,
	}
	if aux.FaultException != nil {
		e.FaultException = *aux.FaultException
	}
	return nil
}

func decodeStack(raw []json.RawMessage) []stackitem.Item {
	if raw == nil {
		return nil
	}
	items := make([]stackitem.Item, len(raw))
	for i := range raw {
		it, err := stackitem.FromJSONWithTypes(raw[i])
		if err != nil {
			return nil
		}
		items[i] = it
	}
	return items
}

// MarshalJSON implements the json.Marshaler interface. The container hash is
// added to the fields of the execution.
func (aer *AppExecResult) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(aer.Execution)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	if fields["container"], err = json.Marshal(aer.Container); err != nil {
		return nil, fmt.Errorf("container: %w", err)
	}
	return json.Marshal(fields)
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (aer *AppExecResult) UnmarshalJSON(data []byte) error {
	var aux struct {
		Container util.Uint256 `json:"container"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if err := json.Unmarshal(data, &aer.Execution); err != nil {
		return err
	}
	aer.Container = aux.Container
	return nil
}
