package transaction

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nspcc-dev/n3sdk/pkg/crypto/keys"
	"github.com/nspcc-dev/n3sdk/pkg/io"
	"github.com/nspcc-dev/n3sdk/pkg/util"
)

// WitnessConditionType encodes a type of witness condition.
type WitnessConditionType byte

const (
	// WitnessBoolean is a generic boolean condition.
	WitnessBoolean WitnessConditionType = 0x00
	// WitnessNot reverses another condition.
	WitnessNot WitnessConditionType = 0x01
	// WitnessAnd means that all conditions must be met.
	WitnessAnd WitnessConditionType = 0x02
	// WitnessOr means that any of conditions must be met.
	WitnessOr WitnessConditionType = 0x03
	// WitnessScriptHash matches executing contract's script hash.
	WitnessScriptHash WitnessConditionType = 0x18
	// WitnessGroup matches executing contract's group key.
	WitnessGroup WitnessConditionType = 0x19
	// WitnessCalledByEntry matches when current script is an entry script or is called by an entry script.
	WitnessCalledByEntry WitnessConditionType = 0x20
	// WitnessCalledByContract matches when current script is called by the specified contract.
	WitnessCalledByContract WitnessConditionType = 0x28
	// WitnessCalledByGroup matches when current script is called by contract belonging to the specified group.
	WitnessCalledByGroup WitnessConditionType = 0x29

	// MaxConditionNesting limits the maximum allowed level of condition nesting.
	MaxConditionNesting = 2
)

// ErrInvalidCondition is returned for malformed witness conditions.
var ErrInvalidCondition = errors.New("invalid witness condition")

// WitnessCondition is a condition of WitnessRule.
type WitnessCondition interface {
	// Type returns a type of this condition.
	Type() WitnessConditionType
	// EncodeBinary allows to serialize condition to its binary
	// representation (including type data).
	EncodeBinary(*io.BinWriter)
	// DecodeBinarySpecific decodes type-specific binary data from the given
	// reader (not including type data), maxDepth is the number of composite
	// levels still allowed.
	DecodeBinarySpecific(*io.BinReader, int)
	// MarshalJSON allows to serialize condition to its JSON representation.
	MarshalJSON() ([]byte, error)
}

type conditionAux struct {
	Expression  json.RawMessage   `json:"expression,omitempty"` // Can be either boolean or conditionAux.
	Expressions []json.RawMessage `json:"expressions,omitempty"`
	Group       *keys.PublicKey   `json:"group,omitempty"`
	Hash        *util.Uint160     `json:"hash,omitempty"`
	Type        string            `json:"type"`
}

type (
	// ConditionBoolean is a boolean condition type.
	ConditionBoolean bool
	// ConditionNot inverses the meaning of contained condition.
	ConditionNot struct {
		Condition WitnessCondition
	}
	// ConditionAnd is a set of conditions required to match.
	ConditionAnd []WitnessCondition
	// ConditionOr is a set of conditions one of which is required to match.
	ConditionOr []WitnessCondition
	// ConditionScriptHash is a condition matching executing script hash.
	ConditionScriptHash util.Uint160
	// ConditionGroup is a condition matching executing script group.
	ConditionGroup keys.PublicKey
	// ConditionCalledByEntry is a condition matching entry script or one directly called by it.
	ConditionCalledByEntry struct{}
	// ConditionCalledByContract is a condition matching calling script hash.
	ConditionCalledByContract util.Uint160
	// ConditionCalledByGroup is a condition matching calling script group.
	ConditionCalledByGroup keys.PublicKey
)

var conditionTypeNames = map[WitnessConditionType]string{
	WitnessBoolean:          "Boolean",
	WitnessNot:              "Not",
	WitnessAnd:              "And",
	WitnessOr:               "Or",
	WitnessScriptHash:       "ScriptHash",
	WitnessGroup:            "Group",
	WitnessCalledByEntry:    "CalledByEntry",
	WitnessCalledByContract: "CalledByContract",
	WitnessCalledByGroup:    "CalledByGroup",
}

// String implements the fmt.Stringer interface.
func (t WitnessConditionType) String() string {
	if s, ok := conditionTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("unknown(0x%02x)", byte(t))
}

func conditionTypeFromString(s string) (WitnessConditionType, bool) {
	for t, name := range conditionTypeNames {
		if name == s {
			return t, true
		}
	}
	return 0, false
}

// Type implements the WitnessCondition interface and returns condition type.
func (c *ConditionBoolean) Type() WitnessConditionType {
	return WitnessBoolean
}

// EncodeBinary implements the WitnessCondition interface.
func (c *ConditionBoolean) EncodeBinary(w *io.BinWriter) {
	w.WriteB(byte(c.Type()))
	w.WriteBool(bool(*c))
}

// DecodeBinarySpecific implements the WitnessCondition interface.
func (c *ConditionBoolean) DecodeBinarySpecific(r *io.BinReader, _ int) {
	*c = ConditionBoolean(r.ReadBool())
}

// MarshalJSON implements the json.Marshaler interface.
func (c *ConditionBoolean) MarshalJSON() ([]byte, error) {
	boolJSON, _ := json.Marshal(bool(*c))
	aux := conditionAux{
		Type:       c.Type().String(),
		Expression: json.RawMessage(boolJSON),
	}
	return json.Marshal(aux)
}

// Type implements the WitnessCondition interface and returns condition type.
func (c *ConditionNot) Type() WitnessConditionType {
	return WitnessNot
}

// EncodeBinary implements the WitnessCondition interface.
func (c *ConditionNot) EncodeBinary(w *io.BinWriter) {
	w.WriteB(byte(c.Type()))
	if c.Condition == nil {
		w.Err = fmt.Errorf("%w: empty Not", ErrInvalidCondition)
		return
	}
	c.Condition.EncodeBinary(w)
}

// DecodeBinarySpecific implements the WitnessCondition interface.
func (c *ConditionNot) DecodeBinarySpecific(r *io.BinReader, maxDepth int) {
	if maxDepth <= 0 {
		r.Err = fmt.Errorf("%w: too deep", ErrInvalidCondition)
		return
	}
	c.Condition = decodeBinaryCondition(r, maxDepth-1)
}

// MarshalJSON implements the json.Marshaler interface.
func (c *ConditionNot) MarshalJSON() ([]byte, error) {
	if c.Condition == nil {
		return nil, fmt.Errorf("%w: empty Not", ErrInvalidCondition)
	}
	condJSON, err := c.Condition.MarshalJSON()
	if err != nil {
		return nil, err
	}
	aux := conditionAux{
		Type:       c.Type().String(),
		Expression: json.RawMessage(condJSON),
	}
	return json.Marshal(aux)
}

// Type implements the WitnessCondition interface and returns condition type.
func (c *ConditionAnd) Type() WitnessConditionType {
	return WitnessAnd
}

func encodeManyConditions(w *io.BinWriter, cs []WitnessCondition) {
	w.WriteVarUint(uint64(len(cs)))
	for _, cond := range cs {
		cond.EncodeBinary(w)
	}
}

// EncodeBinary implements the WitnessCondition interface.
func (c *ConditionAnd) EncodeBinary(w *io.BinWriter) {
	w.WriteB(byte(c.Type()))
	encodeManyConditions(w, *c)
}

func decodeManyConditions(r *io.BinReader, maxDepth int) []WitnessCondition {
	if maxDepth <= 0 {
		r.Err = fmt.Errorf("%w: too deep", ErrInvalidCondition)
		return nil
	}
	l := r.ReadVarUint()
	if r.Err != nil {
		return nil
	}
	if l == 0 || l > maxSubitems {
		r.Err = fmt.Errorf("%w: %d subconditions", ErrInvalidCondition, l)
		return nil
	}
	cs := make([]WitnessCondition, l)
	for i := range cs {
		cs[i] = decodeBinaryCondition(r, maxDepth-1)
		if r.Err != nil {
			return nil
		}
	}
	return cs
}

// DecodeBinarySpecific implements the WitnessCondition interface.
func (c *ConditionAnd) DecodeBinarySpecific(r *io.BinReader, maxDepth int) {
	cs := decodeManyConditions(r, maxDepth)
	if r.Err != nil {
		return
	}
	*c = cs
}

func arrayToJSON(c WitnessCondition, a []WitnessCondition) ([]byte, error) {
	exprs := make([]json.RawMessage, len(a))
	for i := range a {
		b, err := a[i].MarshalJSON()
		if err != nil {
			return nil, err
		}
		exprs[i] = b
	}
	aux := conditionAux{
		Type:        c.Type().String(),
		Expressions: exprs,
	}
	return json.Marshal(aux)
}

// MarshalJSON implements the json.Marshaler interface.
func (c *ConditionAnd) MarshalJSON() ([]byte, error) {
	return arrayToJSON(c, []WitnessCondition(*c))
}

// Type implements the WitnessCondition interface and returns condition type.
func (c *ConditionOr) Type() WitnessConditionType {
	return WitnessOr
}

// EncodeBinary implements the WitnessCondition interface.
func (c *ConditionOr) EncodeBinary(w *io.BinWriter) {
	w.WriteB(byte(c.Type()))
	encodeManyConditions(w, *c)
}

// DecodeBinarySpecific implements the WitnessCondition interface.
func (c *ConditionOr) DecodeBinarySpecific(r *io.BinReader, maxDepth int) {
	cs := decodeManyConditions(r, maxDepth)
	if r.Err != nil {
		return
	}
	*c = cs
}

// MarshalJSON implements the json.Marshaler interface.
func (c *ConditionOr) MarshalJSON() ([]byte, error) {
	return arrayToJSON(c, []WitnessCondition(*c))
}

// Type implements the WitnessCondition interface and returns condition type.
func (c *ConditionScriptHash) Type() WitnessConditionType {
	return WitnessScriptHash
}

// EncodeBinary implements the WitnessCondition interface.
func (c *ConditionScriptHash) EncodeBinary(w *io.BinWriter) {
	w.WriteB(byte(c.Type()))
	w.WriteBytes(c[:])
}

// DecodeBinarySpecific implements the WitnessCondition interface.
func (c *ConditionScriptHash) DecodeBinarySpecific(r *io.BinReader, _ int) {
	r.ReadBytes(c[:])
}

// MarshalJSON implements the json.Marshaler interface.
func (c *ConditionScriptHash) MarshalJSON() ([]byte, error) {
	aux := conditionAux{
		Type: c.Type().String(),
		Hash: (*util.Uint160)(c),
	}
	return json.Marshal(aux)
}

// Type implements the WitnessCondition interface and returns condition type.
func (c *ConditionGroup) Type() WitnessConditionType {
	return WitnessGroup
}

// EncodeBinary implements the WitnessCondition interface.
func (c *ConditionGroup) EncodeBinary(w *io.BinWriter) {
	w.WriteB(byte(c.Type()))
	(*keys.PublicKey)(c).EncodeBinary(w)
}

// DecodeBinarySpecific implements the WitnessCondition interface.
func (c *ConditionGroup) DecodeBinarySpecific(r *io.BinReader, _ int) {
	(*keys.PublicKey)(c).DecodeBinary(r)
}

// MarshalJSON implements the json.Marshaler interface.
func (c *ConditionGroup) MarshalJSON() ([]byte, error) {
	aux := conditionAux{
		Type:  c.Type().String(),
		Group: (*keys.PublicKey)(c),
	}
	return json.Marshal(aux)
}

// Type implements the WitnessCondition interface and returns condition type.
func (c ConditionCalledByEntry) Type() WitnessConditionType {
	return WitnessCalledByEntry
}

// EncodeBinary implements the WitnessCondition interface.
func (c ConditionCalledByEntry) EncodeBinary(w *io.BinWriter) {
	w.WriteB(byte(c.Type()))
}

// DecodeBinarySpecific implements the WitnessCondition interface.
func (c ConditionCalledByEntry) DecodeBinarySpecific(_ *io.BinReader, _ int) {
}

// MarshalJSON implements the json.Marshaler interface.
func (c ConditionCalledByEntry) MarshalJSON() ([]byte, error) {
	aux := conditionAux{Type: c.Type().String()}
	return json.Marshal(aux)
}

// Type implements the WitnessCondition interface and returns condition type.
func (c *ConditionCalledByContract) Type() WitnessConditionType {
	return WitnessCalledByContract
}

// EncodeBinary implements the WitnessCondition interface.
func (c *ConditionCalledByContract) EncodeBinary(w *io.BinWriter) {
	w.WriteB(byte(c.Type()))
	w.WriteBytes(c[:])
}

// DecodeBinarySpecific implements the WitnessCondition interface.
func (c *ConditionCalledByContract) DecodeBinarySpecific(r *io.BinReader, _ int) {
	r.ReadBytes(c[:])
}

// MarshalJSON implements the json.Marshaler interface.
func (c *ConditionCalledByContract) MarshalJSON() ([]byte, error) {
	aux := conditionAux{
		Type: c.Type().String(),
		Hash: (*util.Uint160)(c),
	}
	return json.Marshal(aux)
}

// Type implements the WitnessCondition interface and returns condition type.
func (c *ConditionCalledByGroup) Type() WitnessConditionType {
	return WitnessCalledByGroup
}

// EncodeBinary implements the WitnessCondition interface.
func (c *ConditionCalledByGroup) EncodeBinary(w *io.BinWriter) {
	w.WriteB(byte(c.Type()))
	(*keys.PublicKey)(c).EncodeBinary(w)
}

// DecodeBinarySpecific implements the WitnessCondition interface.
func (c *ConditionCalledByGroup) DecodeBinarySpecific(r *io.BinReader, _ int) {
	(*keys.PublicKey)(c).DecodeBinary(r)
}

// MarshalJSON implements the json.Marshaler interface.
func (c *ConditionCalledByGroup) MarshalJSON() ([]byte, error) {
	aux := conditionAux{
		Type:  c.Type().String(),
		Group: (*keys.PublicKey)(c),
	}
	return json.Marshal(aux)
}

// DecodeBinaryCondition decodes and returns condition from the given binary stream.
func DecodeBinaryCondition(r *io.BinReader) WitnessCondition {
	return decodeBinaryCondition(r, MaxConditionNesting)
}

func decodeBinaryCondition(r *io.BinReader, maxDepth int) WitnessCondition {
	t := WitnessConditionType(r.ReadB())
	if r.Err != nil {
		return nil
	}
	var res WitnessCondition
	switch t {
	case WitnessBoolean:
		res = new(ConditionBoolean)
	case WitnessNot:
		res = new(ConditionNot)
	case WitnessAnd:
		res = new(ConditionAnd)
	case WitnessOr:
		res = new(ConditionOr)
	case WitnessScriptHash:
		res = new(ConditionScriptHash)
	case WitnessGroup:
		res = new(ConditionGroup)
	case WitnessCalledByEntry:
		res = ConditionCalledByEntry{}
	case WitnessCalledByContract:
		res = new(ConditionCalledByContract)
	case WitnessCalledByGroup:
		res = new(ConditionCalledByGroup)
	default:
		r.Err = fmt.Errorf("%w: unknown type %d", ErrInvalidCondition, t)
		return nil
	}
	res.DecodeBinarySpecific(r, maxDepth)
	if r.Err != nil {
		return nil
	}
	return res
}

func unmarshalArrayOfConditionJSONs(arr []json.RawMessage, maxDepth int) ([]WitnessCondition, error) {
	if maxDepth <= 0 {
		return nil, fmt.Errorf("%w: too deep", ErrInvalidCondition)
	}
	if len(arr) == 0 || len(arr) > maxSubitems {
		return nil, fmt.Errorf("%w: %d subconditions", ErrInvalidCondition, len(arr))
	}
	res := make([]WitnessCondition, len(arr))
	for i := range arr {
		v, err := unmarshalConditionJSON(arr[i], maxDepth-1)
		if err != nil {
			return nil, err
		}
		res[i] = v
	}
	return res, nil
}

// UnmarshalConditionJSON unmarshalls condition from the given JSON data.
func UnmarshalConditionJSON(data []byte) (WitnessCondition, error) {
	return unmarshalConditionJSON(data, MaxConditionNesting)
}

func unmarshalConditionJSON(data []byte, maxDepth int) (WitnessCondition, error) {
	aux := &conditionAux{}
	err := json.Unmarshal(data, aux)
	if err != nil {
		return nil, err
	}
	typ, ok := conditionTypeFromString(aux.Type)
	if !ok {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidCondition, aux.Type)
	}
	var res WitnessCondition
	switch typ {
	case WitnessBoolean:
		var v bool
		if err = json.Unmarshal(aux.Expression, &v); err != nil {
			return nil, err
		}
		res = (*ConditionBoolean)(&v)
	case WitnessNot:
		if maxDepth <= 0 {
			return nil, fmt.Errorf("%w: too deep", ErrInvalidCondition)
		}
		if len(aux.Expression) == 0 {
			return nil, fmt.Errorf("%w: empty Not", ErrInvalidCondition)
		}
		v, err := unmarshalConditionJSON(aux.Expression, maxDepth-1)
		if err != nil {
			return nil, err
		}
		res = &ConditionNot{Condition: v}
	case WitnessAnd:
		v, err := unmarshalArrayOfConditionJSONs(aux.Expressions, maxDepth)
		if err != nil {
			return nil, err
		}
		res = (*ConditionAnd)(&v)
	case WitnessOr:
		v, err := unmarshalArrayOfConditionJSONs(aux.Expressions, maxDepth)
		if err != nil {
			return nil, err
		}
		res = (*ConditionOr)(&v)
	case WitnessScriptHash, WitnessCalledByContract:
		if aux.Hash == nil {
			return nil, fmt.Errorf("%w: no hash", ErrInvalidCondition)
		}
		if typ == WitnessScriptHash {
			res = (*ConditionScriptHash)(aux.Hash)
		} else {
			res = (*ConditionCalledByContract)(aux.Hash)
		}
	case WitnessGroup, WitnessCalledByGroup:
		if aux.Group == nil {
			return nil, fmt.Errorf("%w: no group", ErrInvalidCondition)
		}
		if typ == WitnessGroup {
			res = (*ConditionGroup)(aux.Group)
		} else {
			res = (*ConditionCalledByGroup)(aux.Group)
		}
	case WitnessCalledByEntry:
		res = ConditionCalledByEntry{}
	}
	return res, nil
}

// validateCondition checks nesting depth, composite sizes and the presence
// of mandatory parts of the condition tree.
func validateCondition(c WitnessCondition, maxDepth int) error {
	switch v := c.(type) {
	case nil:
		return fmt.Errorf("%w: nil condition", ErrInvalidCondition)
	case *ConditionNot:
		if maxDepth <= 0 {
			return fmt.Errorf("%w: too deep", ErrInvalidCondition)
		}
		return validateCondition(v.Condition, maxDepth-1)
	case *ConditionAnd:
		return validateConditions(*v, maxDepth)
	case *ConditionOr:
		return validateConditions(*v, maxDepth)
	case *ConditionGroup:
		if (*keys.PublicKey)(v).IsInfinity() {
			return fmt.Errorf("%w: infinity group key", ErrInvalidCondition)
		}
	case *ConditionCalledByGroup:
		if (*keys.PublicKey)(v).IsInfinity() {
			return fmt.Errorf("%w: infinity group key", ErrInvalidCondition)
		}
	}
	return nil
}

func validateConditions(cs []WitnessCondition, maxDepth int) error {
	if maxDepth <= 0 {
		return fmt.Errorf("%w: too deep", ErrInvalidCondition)
	}
	if len(cs) == 0 || len(cs) > maxSubitems {
		return fmt.Errorf("%w: %d subconditions", ErrInvalidCondition, len(cs))
	}
	for _, c := range cs {
		if err := validateCondition(c, maxDepth-1); err != nil {
			return err
		}
	}
	return nil
}
