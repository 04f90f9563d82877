package result

import (
	"encoding/json"
	"errors"

	"github.com/nspcc-dev/n3sdk/pkg/core/state"
	"github.com/nspcc-dev/n3sdk/pkg/smartcontract/trigger"
	"github.com/nspcc-dev/n3sdk/pkg/util"
)

// ApplicationLog represents the results of the script executions for a block
// or a transaction (getapplicationlog RPC call).
type ApplicationLog struct {
	Container     util.Uint256
	IsTransaction bool
	Executions    []state.Execution
}

type applicationLogAux struct {
	Transaction *util.Uint256     `json:"txid,omitempty"`
	Block       *util.Uint256     `json:"blockhash,omitempty"`
	Executions  []json.RawMessage `json:"executions"`
}

// MarshalJSON implements the json.Marshaler interface.
func (l ApplicationLog) MarshalJSON() ([]byte, error) {
	result := &applicationLogAux{
		Executions: make([]json.RawMessage, len(l.Executions)),
	}
	if l.IsTransaction {
		result.Transaction = &l.Container
	} else {
		result.Block = &l.Container
	}
	var err error
	for i := range result.Executions {
		result.Executions[i], err = json.Marshal(l.Executions[i])
		if err != nil {
			return nil, err
		}
	}
	return json.Marshal(result)
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (l *ApplicationLog) UnmarshalJSON(data []byte) error {
	aux := new(applicationLogAux)
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	switch {
	case aux.Transaction != nil:
		l.Container = *aux.Transaction
		l.IsTransaction = true
	case aux.Block != nil:
		l.Container = *aux.Block
	default:
		return errors.New("no block or transaction hash")
	}
	l.Executions = make([]state.Execution, len(aux.Executions))
	for i := range aux.Executions {
		err := json.Unmarshal(aux.Executions[i], &l.Executions[i])
		if err != nil {
			return err
		}
	}
	return nil
}

// ApplicationExecution returns the execution made with the Application
// trigger, transactions have exactly one of them.
func (l *ApplicationLog) ApplicationExecution() (*state.Execution, error) {
	for i := range l.Executions {
		if l.Executions[i].Trigger == trigger.Application {
			return &l.Executions[i], nil
		}
	}
	return nil, errors.New("no Application execution")
}

// ToAppExecResult converts the log of a transaction into the AppExecResult
// of its Application execution.
func (l *ApplicationLog) ToAppExecResult() (*state.AppExecResult, error) {
	e, err := l.ApplicationExecution()
	if err != nil {
		return nil, err
	}
	return &state.AppExecResult{
		Container: l.Container,
		Execution: *e,
	}, nil
}
