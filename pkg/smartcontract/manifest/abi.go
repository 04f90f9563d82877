package manifest

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/n3sdk/pkg/smartcontract"
)

const (
	// MethodVerify is a name for default verification method.
	MethodVerify = "verify"
	// MethodOnNEP17Payment is called by NEP-17 contracts on the receiver.
	MethodOnNEP17Payment = "onNEP17Payment"
)

type (
	// ABI describes methods and events a contract exposes.
	ABI struct {
		Methods []Method `json:"methods"`
		Events  []Event  `json:"events"`
	}

	// Method is a single ABI method, methods can be overloaded by the
	// number of parameters.
	Method struct {
		Name       string                  `json:"name"`
		Offset     int                     `json:"offset"`
		Parameters []Parameter             `json:"parameters"`
		ReturnType smartcontract.ParamType `json:"returntype"`
		Safe       bool                    `json:"safe"`
	}

	// Event is a notification a contract can emit.
	Event struct {
		Name       string      `json:"name"`
		Parameters []Parameter `json:"parameters"`
	}

	// Parameter is a named and typed method or event argument.
	Parameter struct {
		Name string                  `json:"name"`
		Type smartcontract.ParamType `json:"type"`
	}
)

// NewParameter returns a new parameter of the specified name and type.
func NewParameter(name string, typ smartcontract.ParamType) Parameter {
	return Parameter{Name: name, Type: typ}
}

// GetMethod returns the method with the specified name and number of
// parameters, paramCount of -1 matches any overload.
func (a *ABI) GetMethod(name string, paramCount int) *Method {
	for i, m := range a.Methods {
		if m.Name == name && (paramCount == -1 || len(m.Parameters) == paramCount) {
			return &a.Methods[i]
		}
	}
	return nil
}

// GetEvent returns the event with the specified name.
func (a *ABI) GetEvent(name string) *Event {
	for i, e := range a.Events {
		if e.Name == name {
			return &a.Events[i]
		}
	}
	return nil
}

type overload struct {
	name   string
	params int
}

// IsValid checks that every method and event is well-formed, methods are
// unique by name and arity, events are unique by name.
func (a *ABI) IsValid() error {
	if len(a.Methods) == 0 {
		return errors.New("no methods")
	}
	methods := make(map[overload]struct{}, len(a.Methods))
	for _, m := range a.Methods {
		key := overload{m.Name, len(m.Parameters)}
		if err := checkMember(m.Name, m.Parameters); err != nil {
			return fmt.Errorf("method %s/%d: %w", key.name, key.params, err)
		}
		if m.Offset < 0 {
			return fmt.Errorf("method %s/%d: negative offset", key.name, key.params)
		}
		if _, ok := methods[key]; ok {
			return fmt.Errorf("method %s/%d is defined twice", key.name, key.params)
		}
		methods[key] = struct{}{}
	}
	events := make(map[string]struct{}, len(a.Events))
	for _, e := range a.Events {
		if err := checkMember(e.Name, e.Parameters); err != nil {
			return fmt.Errorf("event %s: %w", e.Name, err)
		}
		if _, ok := events[e.Name]; ok {
			return fmt.Errorf("event %s is defined twice", e.Name)
		}
		events[e.Name] = struct{}{}
	}
	return nil
}

func checkMember(name string, params []Parameter) error {
	if name == "" {
		return errors.New("empty name")
	}
	names := make(map[string]struct{}, len(params))
	for _, p := range params {
		if p.Name == "" {
			return errors.New("nameless parameter")
		}
		if p.Type == smartcontract.VoidType {
			return fmt.Errorf("parameter %s is void", p.Name)
		}
		if _, err := smartcontract.ConvertToParamType(int(p.Type)); err != nil {
			return fmt.Errorf("parameter %s: %w", p.Name, err)
		}
		if _, ok := names[p.Name]; ok {
			return fmt.Errorf("parameter %s is repeated", p.Name)
		}
		names[p.Name] = struct{}{}
	}
	return nil
}
