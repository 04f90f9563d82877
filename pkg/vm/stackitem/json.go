package stackitem

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
)

// MaxJSONDepth is the maximum allowed nesting level of encoded/decoded JSON.
const MaxJSONDepth = 64

var (
	// ErrInvalidValue is returned when item value doesn't fit some constraints
	// during serialization or deserialization.
	ErrInvalidValue = errors.New("invalid value")
	// ErrTooDeep is returned when JSON encoder/decoder goes beyond MaxJSONDepth in
	// its processing.
	ErrTooDeep = errors.New("too deep")
	// ErrRecursive is returned for items referencing themselves.
	ErrRecursive = errors.New("recursive item")
	// ErrUnserializable is returned for items that can't be represented in JSON.
	ErrUnserializable = errors.New("unserializable")
)

// InteropDescriptor is the value of Interop items decoded from RPC results,
// nodes describe iterators this way.
type InteropDescriptor struct {
	Interface string `json:"interface,omitempty"`
	ID        string `json:"id,omitempty"`
}

// typedJSON is the typed item representation used by RPC nodes.
type typedJSON struct {
	Type      string          `json:"type"`
	Value     json.RawMessage `json:"value,omitempty"`
	Interface string          `json:"interface,omitempty"`
	ID        string          `json:"id,omitempty"`
}

type typedMapElement struct {
	Key   json.RawMessage `json:"key"`
	Value json.RawMessage `json:"value"`
}

// ToJSONWithTypes serializes any stackitem to JSON in a lossless way.
func ToJSONWithTypes(item Item) ([]byte, error) {
	e := encoder{seen: make(map[Item]struct{})}
	return e.encode(item, 0)
}

type encoder struct {
	seen map[Item]struct{}
}

// enter marks a compound item as being encoded, it fails for items that
// contain themselves.
func (e *encoder) enter(it Item) error {
	if _, ok := e.seen[it]; ok {
		return ErrRecursive
	}
	e.seen[it] = struct{}{}
	return nil
}

func (e *encoder) encode(item Item, depth int) ([]byte, error) {
	if depth > MaxJSONDepth {
		return nil, ErrTooDeep
	}
	if item == nil {
		return nil, fmt.Errorf("%w: nil", ErrUnserializable)
	}
	var (
		out   = typedJSON{Type: item.Type().String()}
		value any
	)
	switch it := item.(type) {
	case Null:
	case Bool:
		value = bool(it)
	case *BigInteger:
		value = it.Big().String()
	case *ByteArray, *Buffer:
		value = base64.StdEncoding.EncodeToString(it.Value().([]byte))
	case *Pointer:
		value = it.pos
	case *Interop:
		if d, ok := it.value.(InteropDescriptor); ok {
			out.Interface, out.ID = d.Interface, d.ID
		}
	case *Array, *Struct:
		if err := e.enter(it); err != nil {
			return nil, err
		}
		elems := it.Value().([]Item)
		arr := make([]json.RawMessage, len(elems))
		for i, elem := range elems {
			data, err := e.encode(elem, depth+1)
			if err != nil {
				return nil, err
			}
			arr[i] = data
		}
		delete(e.seen, it)
		value = arr
	case *Map:
		if err := e.enter(it); err != nil {
			return nil, err
		}
		arr := make([]typedMapElement, len(it.value))
		for i, kv := range it.value {
			k, err := e.encode(kv.Key, depth+1)
			if err != nil {
				return nil, err
			}
			v, err := e.encode(kv.Value, depth+1)
			if err != nil {
				return nil, err
			}
			arr[i] = typedMapElement{Key: k, Value: v}
		}
		delete(e.seen, it)
		value = arr
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnserializable, item)
	}
	if value != nil {
		data, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		out.Value = data
	}
	return json.Marshal(out)
}

// FromJSONWithTypes deserializes an item from typed-json representation.
func FromJSONWithTypes(data []byte) (Item, error) {
	return decode(data, 0)
}

func badValue(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalidValue, err)
}

// decodeValue unmarshals the item value into v.
func decodeValue[T any](raw json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, badValue(err)
	}
	return v, nil
}

func decode(data []byte, depth int) (Item, error) {
	if depth > MaxJSONDepth {
		return nil, ErrTooDeep
	}
	var raw typedJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	typ, err := FromString(raw.Type)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidType, raw.Type)
	}
	switch typ {
	case AnyT:
		return Null{}, nil
	case InteropT:
		if raw.Interface == "" && raw.ID == "" {
			return NewInterop(nil), nil
		}
		return NewInterop(InteropDescriptor{Interface: raw.Interface, ID: raw.ID}), nil
	case PointerT:
		pos, err := decodeValue[int](raw.Value)
		if err != nil {
			return nil, err
		}
		return NewPointer(pos), nil
	case BooleanT:
		b, err := decodeValue[bool](raw.Value)
		if err != nil {
			return nil, err
		}
		return Bool(b), nil
	case IntegerT:
		s, err := decodeValue[string](raw.Value)
		if err != nil {
			return nil, err
		}
		n, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return nil, badValue(fmt.Errorf("%q is not an integer", s))
		}
		if err := CheckIntegerSize(n); err != nil {
			return nil, err
		}
		return (*BigInteger)(n), nil
	case ByteArrayT, BufferT:
		b, err := decodeValue[[]byte](raw.Value)
		if err != nil {
			return nil, err
		}
		if b == nil {
			b = []byte{}
		}
		if typ == BufferT {
			return NewBuffer(b), nil
		}
		return NewByteArray(b), nil
	case ArrayT, StructT:
		arr, err := decodeValue[[]json.RawMessage](raw.Value)
		if err != nil {
			return nil, err
		}
		items := make([]Item, len(arr))
		for i, elem := range arr {
			if items[i], err = decode(elem, depth+1); err != nil {
				return nil, err
			}
		}
		if typ == StructT {
			return NewStruct(items), nil
		}
		return NewArray(items), nil
	case MapT:
		arr, err := decodeValue[[]typedMapElement](raw.Value)
		if err != nil {
			return nil, err
		}
		m := NewMap()
		for _, kv := range arr {
			k, err := decode(kv.Key, depth+1)
			if err != nil {
				return nil, err
			}
			if err := IsValidMapKey(k); err != nil {
				return nil, err
			}
			v, err := decode(kv.Value, depth+1)
			if err != nil {
				return nil, err
			}
			m.Add(k, v)
		}
		return m, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrInvalidType, typ)
}
