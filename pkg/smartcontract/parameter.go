package smartcontract

import (
	"bytes"
	"crypto/elliptic"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"unicode/utf8"

	"github.com/nspcc-dev/n3sdk/pkg/crypto/keys"
	"github.com/nspcc-dev/n3sdk/pkg/encoding/bigint"
	"github.com/nspcc-dev/n3sdk/pkg/util"
)

// ErrInvalidParameter is returned for parameters whose value doesn't match
// their type or can't be represented in the VM.
var ErrInvalidParameter = errors.New("invalid parameter")

// Parameter represents a smart contract parameter. Value holds:
//
//	BoolType -> bool
//	IntegerType -> *big.Int
//	ByteArrayType, SignatureType, PublicKeyType -> []byte
//	StringType -> string
//	Hash160Type -> util.Uint160
//	Hash256Type -> util.Uint256
//	ArrayType -> []Parameter
//	MapType -> []ParameterPair
//	AnyType, VoidType, InteropInterfaceType -> nil
type Parameter struct {
	// Type of the parameter.
	Type ParamType `json:"type"`
	// The actual value of the parameter.
	Value any `json:"value"`
}

// ParameterPair represents key-value pair, a slice of which is stored in
// MapType Parameter. The order of pairs is preserved.
type ParameterPair struct {
	Key   Parameter `json:"key"`
	Value Parameter `json:"value"`
}

// NewParameter returns a Parameter with nil Value of the given ParamType.
func NewParameter(t ParamType) Parameter {
	return Parameter{Type: t}
}

// NewAnyParameter returns a null parameter.
func NewAnyParameter() Parameter {
	return NewParameter(AnyType)
}

// NewBoolParameter returns a Boolean parameter.
func NewBoolParameter(b bool) Parameter {
	return Parameter{Type: BoolType, Value: b}
}

// NewIntegerParameter returns an Integer parameter.
func NewIntegerParameter(i int64) Parameter {
	return Parameter{Type: IntegerType, Value: big.NewInt(i)}
}

// NewBigIntegerParameter returns an Integer parameter holding a copy of i.
func NewBigIntegerParameter(i *big.Int) Parameter {
	var v *big.Int
	if i != nil {
		v = new(big.Int).Set(i)
	}
	return Parameter{Type: IntegerType, Value: v}
}

// NewByteArrayParameter returns a ByteArray parameter.
func NewByteArrayParameter(b []byte) Parameter {
	return Parameter{Type: ByteArrayType, Value: bytes.Clone(b)}
}

// NewStringParameter returns a String parameter.
func NewStringParameter(s string) Parameter {
	return Parameter{Type: StringType, Value: s}
}

// NewHash160Parameter returns a Hash160 parameter.
func NewHash160Parameter(u util.Uint160) Parameter {
	return Parameter{Type: Hash160Type, Value: u}
}

// NewHash256Parameter returns a Hash256 parameter.
func NewHash256Parameter(u util.Uint256) Parameter {
	return Parameter{Type: Hash256Type, Value: u}
}

// NewPublicKeyParameter returns a PublicKey parameter holding the compressed
// key.
func NewPublicKeyParameter(pub *keys.PublicKey) Parameter {
	return Parameter{Type: PublicKeyType, Value: pub.Bytes()}
}

// NewSignatureParameter returns a Signature parameter.
func NewSignatureParameter(sig []byte) Parameter {
	return Parameter{Type: SignatureType, Value: bytes.Clone(sig)}
}

// NewArrayParameter returns an Array parameter with the given items.
func NewArrayParameter(items ...Parameter) Parameter {
	if items == nil {
		items = []Parameter{}
	}
	return Parameter{Type: ArrayType, Value: items}
}

// NewMapParameter returns a Map parameter with the given pairs in the given
// order.
func NewMapParameter(pairs ...ParameterPair) Parameter {
	if pairs == nil {
		pairs = []ParameterPair{}
	}
	return Parameter{Type: MapType, Value: pairs}
}

// NewParameterFromValue converts the given Go value into a Parameter. Supported
// types are Parameter itself, bool, all integer types, *big.Int, string,
// []byte, util.Uint160, util.Uint256, *keys.PublicKey, keys.PublicKeys,
// []Parameter, []ParameterPair, nil and slices of any of these.
func NewParameterFromValue(value any) (Parameter, error) {
	var result = Parameter{Value: value}

	switch v := value.(type) {
	case Parameter:
		return v, nil
	case *Parameter:
		if v == nil {
			return NewAnyParameter(), nil
		}
		return *v, nil
	case []byte:
		result.Type = ByteArrayType
	case string:
		result.Type = StringType
	case bool:
		result.Type = BoolType
	case *big.Int:
		if v == nil {
			return NewAnyParameter(), nil
		}
		result.Type = IntegerType
	case big.Int:
		result = NewBigIntegerParameter(&v)
	case int8:
		result = NewIntegerParameter(int64(v))
	case byte:
		result = NewIntegerParameter(int64(v))
	case int16:
		result = NewIntegerParameter(int64(v))
	case uint16:
		result = NewIntegerParameter(int64(v))
	case int32:
		result = NewIntegerParameter(int64(v))
	case uint32:
		result = NewIntegerParameter(int64(v))
	case int:
		result = NewIntegerParameter(int64(v))
	case uint:
		result = NewBigIntegerParameter(new(big.Int).SetUint64(uint64(v)))
	case int64:
		result = NewIntegerParameter(v)
	case uint64:
		result = NewBigIntegerParameter(new(big.Int).SetUint64(v))
	case util.Uint160:
		result.Type = Hash160Type
	case *util.Uint160:
		if v == nil {
			return NewAnyParameter(), nil
		}
		return NewParameterFromValue(*v)
	case util.Uint256:
		result.Type = Hash256Type
	case *util.Uint256:
		if v == nil {
			return NewAnyParameter(), nil
		}
		return NewParameterFromValue(*v)
	case *keys.PublicKey:
		if v == nil {
			return NewAnyParameter(), nil
		}
		return NewPublicKeyParameter(v), nil
	case keys.PublicKey:
		return NewPublicKeyParameter(&v), nil
	case []Parameter:
		return NewArrayParameter(v...), nil
	case []ParameterPair:
		return NewMapParameter(v...), nil
	case nil:
		result.Type = AnyType
	default:
		rv := reflect.ValueOf(value)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return result, fmt.Errorf("%w: unsupported parameter %T", ErrInvalidParameter, value)
		}
		res := make([]Parameter, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			elem, err := NewParameterFromValue(rv.Index(i).Interface())
			if err != nil {
				return result, fmt.Errorf("array element %d: %w", i, err)
			}
			res = append(res, elem)
		}
		return NewArrayParameter(res...), nil
	}

	return result, nil
}

// NewParametersFromValues is similar to NewParameterFromValue except that it
// works with multiple values and returns a simple slice of Parameter.
func NewParametersFromValues(values ...any) ([]Parameter, error) {
	res := make([]Parameter, 0, len(values))
	for i := range values {
		elem, err := NewParameterFromValue(values[i])
		if err != nil {
			return nil, err
		}
		res = append(res, elem)
	}
	return res, nil
}

// Validate checks that Value holds data of the proper Go type and size for
// the Type of the parameter. Nested parameters are checked recursively.
func (p Parameter) Validate() error {
	return p.validate(0)
}

// maxNesting limits the depth of nested arrays and maps.
const maxNesting = 16

func (p Parameter) validate(depth int) error {
	if depth > maxNesting {
		return fmt.Errorf("%w: too deep nesting", ErrInvalidParameter)
	}
	var ok bool
	switch p.Type {
	case AnyType, VoidType, InteropInterfaceType:
		ok = p.Value == nil
	case BoolType:
		_, ok = p.Value.(bool)
	case IntegerType:
		var i *big.Int
		i, ok = p.Value.(*big.Int)
		if ok && (i == nil || len(bigint.ToBytes(i)) > bigint.MaxBytesLen) {
			return fmt.Errorf("%w: integer doesn't fit into 256 bits", ErrInvalidParameter)
		}
	case ByteArrayType:
		_, ok = p.Value.([]byte)
		ok = ok || p.Value == nil
	case SignatureType:
		var b []byte
		b, ok = p.Value.([]byte)
		if ok && len(b) != keys.SignatureLen {
			return fmt.Errorf("%w: signature must be %d bytes, got %d", ErrInvalidParameter, keys.SignatureLen, len(b))
		}
	case PublicKeyType:
		var b []byte
		b, ok = p.Value.([]byte)
		if ok {
			if len(b) != keys.PublicKeySize {
				return fmt.Errorf("%w: public key must be %d bytes, got %d", ErrInvalidParameter, keys.PublicKeySize, len(b))
			}
			if _, err := keys.NewPublicKeyFromBytes(b, elliptic.P256()); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidParameter, err)
			}
		}
	case StringType:
		var s string
		s, ok = p.Value.(string)
		if ok && !utf8.ValidString(s) {
			return fmt.Errorf("%w: string is not valid UTF-8", ErrInvalidParameter)
		}
	case Hash160Type:
		_, ok = p.Value.(util.Uint160)
	case Hash256Type:
		_, ok = p.Value.(util.Uint256)
	case ArrayType:
		var arr []Parameter
		arr, ok = p.Value.([]Parameter)
		for i := range arr {
			if err := arr[i].validate(depth + 1); err != nil {
				return err
			}
		}
	case MapType:
		var pairs []ParameterPair
		pairs, ok = p.Value.([]ParameterPair)
		for i := range pairs {
			if !pairs[i].Key.Type.isPrimitive() {
				return fmt.Errorf("%w: %s can't be a map key", ErrInvalidParameter, pairs[i].Key.Type)
			}
			if err := pairs[i].Key.validate(depth + 1); err != nil {
				return err
			}
			if err := pairs[i].Value.validate(depth + 1); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("%w: unknown type %d", ErrInvalidParameter, int(p.Type))
	}
	if !ok {
		return fmt.Errorf("%w: %T value for %s", ErrInvalidParameter, p.Value, p.Type)
	}
	return nil
}

func (pt ParamType) isPrimitive() bool {
	switch pt {
	case BoolType, IntegerType, ByteArrayType, StringType, Hash160Type,
		Hash256Type, PublicKeyType, SignatureType:
		return true
	}
	return false
}

type rawParameter struct {
	Type  ParamType       `json:"type"`
	Value json.RawMessage `json:"value,omitempty"`
}

// MarshalJSON implements the json.Marshaler interface. Integers are encoded
// as decimal strings, byte arrays and signatures use base64, public keys use
// hex and hashes use 0x-prefixed LE hex.
func (p Parameter) MarshalJSON() ([]byte, error) {
	if p.Value == nil {
		if err := p.Type.check(); err != nil {
			return nil, err
		}
		return json.Marshal(rawParameter{Type: p.Type})
	}
	val, err := p.marshalValue()
	if err != nil {
		return nil, err
	}
	return json.Marshal(rawParameter{Type: p.Type, Value: val})
}

func (p Parameter) marshalValue() (json.RawMessage, error) {
	var ok bool
	switch p.Type {
	case BoolType:
		_, ok = p.Value.(bool)
	case StringType:
		_, ok = p.Value.(string)
	case Hash160Type:
		_, ok = p.Value.(util.Uint160)
	case Hash256Type:
		_, ok = p.Value.(util.Uint256)
	case IntegerType:
		if n, isInt := p.Value.(*big.Int); isInt {
			return json.Marshal(n.String())
		}
	case PublicKeyType:
		if b, isBytes := p.Value.([]byte); isBytes {
			return json.Marshal(hex.EncodeToString(b))
		}
	case ByteArrayType, SignatureType:
		// []byte is base64 by default.
		_, ok = p.Value.([]byte)
	case ArrayType:
		var items []Parameter
		if items, ok = p.Value.([]Parameter); ok && items == nil {
			return json.RawMessage("[]"), nil
		}
	case MapType:
		var pairs []ParameterPair
		if pairs, ok = p.Value.([]ParameterPair); ok && pairs == nil {
			return json.RawMessage("[]"), nil
		}
	case InteropInterfaceType, AnyType, VoidType:
		return nil, nil
	default:
		return nil, fmt.Errorf("can't marshal %s", p.Type)
	}
	if !ok {
		return nil, fmt.Errorf("invalid %s value of type %T", p.Type, p.Value)
	}
	return json.Marshal(p.Value)
}

// UnmarshalJSON implements the json.Unmarshaler interface. Integers may come
// either as numbers or as strings.
func (p *Parameter) UnmarshalJSON(data []byte) error {
	var r rawParameter
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*p = Parameter{Type: r.Type}
	if len(r.Value) == 0 || bytes.Equal(r.Value, []byte("null")) {
		return nil
	}
	val, err := unmarshalValue(r.Type, r.Value)
	if err != nil {
		return fmt.Errorf("%s value: %w", r.Type, err)
	}
	p.Value = val
	return nil
}

// decodeInto is json.Unmarshal returning the decoded value.
func decodeInto[T any](raw json.RawMessage) (T, error) {
	var v T
	err := json.Unmarshal(raw, &v)
	return v, err
}

func unmarshalValue(t ParamType, raw json.RawMessage) (any, error) {
	switch t {
	case BoolType:
		return decodeInto[bool](raw)
	case StringType:
		return decodeInto[string](raw)
	case ByteArrayType, SignatureType:
		return decodeInto[[]byte](raw)
	case PublicKeyType:
		s, err := decodeInto[string](raw)
		if err != nil {
			return nil, err
		}
		return hex.DecodeString(s)
	case IntegerType:
		return unmarshalInteger(raw)
	case Hash160Type:
		return decodeInto[util.Uint160](raw)
	case Hash256Type:
		return decodeInto[util.Uint256](raw)
	case ArrayType:
		items, err := decodeInto[[]Parameter](raw)
		if items == nil {
			items = []Parameter{}
		}
		return items, err
	case MapType:
		pairs, err := decodeInto[[]ParameterPair](raw)
		if pairs == nil {
			pairs = []ParameterPair{}
		}
		return pairs, err
	case InteropInterfaceType, AnyType, VoidType:
		return nil, nil
	}
	return nil, fmt.Errorf("can't unmarshal %s", t)
}

func unmarshalInteger(raw json.RawMessage) (*big.Int, error) {
	if n, err := decodeInto[int64](raw); err == nil {
		return big.NewInt(n), nil
	}
	s, err := decodeInto[string](raw)
	if err != nil {
		return nil, err
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a decimal integer", ErrInvalidParameter, s)
	}
	if len(bigint.ToBytes(n)) > bigint.MaxBytesLen {
		return nil, fmt.Errorf("%w: integer doesn't fit into 256 bits", ErrInvalidParameter)
	}
	return n, nil
}
