package state

import (
	"encoding/json"
	"fmt"

	"github.com/nspcc-dev/n3sdk/pkg/util"
	"github.com/nspcc-dev/n3sdk/pkg/vm/stackitem"
)

// NotificationEvent is a single notification emitted by the contract with the
// given hash during script execution. Item holds the event arguments.
type NotificationEvent struct {
	ScriptHash util.Uint160     `json:"contract"`
	Name       string           `json:"eventname"`
	Item       *stackitem.Array `json:"state"`
}

type eventJSON struct {
	ScriptHash util.Uint160    `json:"contract"`
	Name       string          `json:"eventname"`
	Item       json.RawMessage `json:"state"`
}

// itemJSON encodes an item the way nodes do, items that can't be serialized
// are replaced with an error string.
func itemJSON(it stackitem.Item) json.RawMessage {
	data, err := stackitem.ToJSONWithTypes(it)
	if err != nil {
		data, _ = json.Marshal("error: " + err.Error())
	}
	return data
}

// MarshalJSON implements the json.Marshaler interface.
func (ne NotificationEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(eventJSON{
		ScriptHash: ne.ScriptHash,
		Name:       ne.Name,
		Item:       itemJSON(ne.Item),
	})
}

// UnmarshalJSON implements the json.Unmarshaler interface. Some nodes report
// event arguments as a Struct, it's converted into an Array.
func (ne *NotificationEvent) UnmarshalJSON(data []byte) error {
	var aux eventJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	it, err := stackitem.FromJSONWithTypes(aux.Item)
	if err != nil {
		return fmt.Errorf("event %q state: %w", aux.Name, err)
	}
	var args *stackitem.Array
	switch v := it.(type) {
	case *stackitem.Array:
		args = v
	case *stackitem.Struct:
		args = stackitem.NewArray(v.Value().([]stackitem.Item))
	default:
		return fmt.Errorf("event %q state: %s is not an array", aux.Name, it.Type())
	}
	*ne = NotificationEvent{ScriptHash: aux.ScriptHash, Name: aux.Name, Item: args}
	return nil
}
