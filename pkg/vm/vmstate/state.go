// Package vmstate contains the VM termination states reported by nodes.
package vmstate

import (
	"encoding/json"
	"errors"
	"strings"
)

// State of the VM. It's a set of flags stored in the integer number.
type State uint8

// Available States.
const (
	// Halt represents HALT VM state (finished normally).
	Halt State = 1 << iota
	// Fault represents FAULT VM state (finished with an error).
	Fault
	// Break represents BREAK VM state (running, debug mode).
	Break
	// None represents NONE VM state (not started yet).
	None State = 0
)

// ErrUnknownState is returned for unparseable state strings.
var ErrUnknownState = errors.New("unknown state")

// HasFlag checks for State flag presence.
func (s State) HasFlag(f State) bool {
	return s&f != 0
}

// String implements the fmt.Stringer interface.
func (s State) String() string {
	if s == None {
		return "NONE"
	}

	ss := make([]string, 0, 3)
	if s.HasFlag(Halt) {
		ss = append(ss, "HALT")
	}
	if s.HasFlag(Fault) {
		ss = append(ss, "FAULT")
	}
	if s.HasFlag(Break) {
		ss = append(ss, "BREAK")
	}
	return strings.Join(ss, ", ")
}

// FromString converts a string into the State.
func FromString(s string) (st State, err error) {
	if s = strings.TrimSpace(s); s == "NONE" {
		return None, nil
	}

	ss := strings.Split(s, ",")
	for _, state := range ss {
		switch state = strings.TrimSpace(state); state {
		case "HALT":
			st |= Halt
		case "FAULT":
			st |= Fault
		case "BREAK":
			st |= Break
		default:
			return 0, ErrUnknownState
		}
	}
	return
}

// MarshalJSON implements the json.Marshaler interface.
func (s State) MarshalJSON() (data []byte, err error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (s *State) UnmarshalJSON(data []byte) (err error) {
	var str string
	if err = json.Unmarshal(data, &str); err != nil {
		return err
	}
	*s, err = FromString(str)
	return err
}
