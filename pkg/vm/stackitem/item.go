// Package stackitem contains the read-only representation of VM stack items
// returned by test invocations and application logs.
package stackitem

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"unicode/utf8"

	"github.com/nspcc-dev/n3sdk/pkg/encoding/bigint"
	"github.com/nspcc-dev/n3sdk/pkg/util"
)

// MaxBigIntegerSizeBits is the maximum size of an integer in bits.
const MaxBigIntegerSizeBits = 32 * 8

// Item is a single stack item.
type Item interface {
	fmt.Stringer
	Value() any
	// TryBool converts the item to a boolean.
	TryBool() (bool, error)
	// TryBytes converts the item to bytes, byte strings and buffers return
	// their contents without copying.
	TryBytes() ([]byte, error)
	// TryInteger converts the item to an integer.
	TryInteger() (*big.Int, error)
	// Equals compares items the way the VM does: scalars by value, Struct
	// recursively, other compound items by reference.
	Equals(s Item) bool
	Type() Type
}

var (
	// ErrInvalidConversion is returned upon an attempt to make an incorrect
	// conversion between item types.
	ErrInvalidConversion = errors.New("invalid conversion")
	// ErrTooBig is returned when an integer doesn't fit into 256 bits.
	ErrTooBig = errors.New("too big")
)

type (
	// Null is the null item.
	Null struct{}
	// Bool is a boolean item.
	Bool bool
	// BigInteger is an integer item.
	BigInteger big.Int
	// ByteArray is an immutable byte string (ByteString).
	ByteArray []byte
	// Buffer is a mutable byte buffer.
	Buffer []byte
)

func convErr(from, to Type) error {
	return fmt.Errorf("%w: %s/%s", ErrInvalidConversion, from, to)
}

// Make converts a Go value into an item, it panics for unsupported types.
func Make(v any) Item {
	switch val := v.(type) {
	case nil:
		return Null{}
	case Item:
		return val
	case bool:
		return Bool(val)
	case int:
		return (*BigInteger)(big.NewInt(int64(val)))
	case int64:
		return (*BigInteger)(big.NewInt(val))
	case uint32:
		return (*BigInteger)(big.NewInt(int64(val)))
	case uint64:
		return (*BigInteger)(new(big.Int).SetUint64(val))
	case *big.Int:
		return NewBigInteger(val)
	case []byte:
		return NewByteArray(val)
	case string:
		return NewByteArray([]byte(val))
	case util.Uint160:
		return NewByteArray(val.BytesBE())
	case util.Uint256:
		return NewByteArray(val.BytesBE())
	case []Item:
		return NewArray(val)
	case []int:
		items := make([]Item, len(val))
		for i, n := range val {
			items[i] = Make(n)
		}
		return NewArray(items)
	case []any:
		items := make([]Item, len(val))
		for i, e := range val {
			items[i] = Make(e)
		}
		return NewArray(items)
	}
	panic(fmt.Sprintf("invalid stack item type: %v (%T)", v, v))
}

// ToString converts the item to a string, the contents must be valid UTF-8.
func ToString(item Item) (string, error) {
	bs, err := item.TryBytes()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(bs) {
		return "", errors.New("not a valid UTF-8")
	}
	return string(bs), nil
}

// CheckIntegerSize checks that the value size doesn't exceed the VM limit.
func CheckIntegerSize(value *big.Int) error {
	if len(bigint.ToBytes(value)) > MaxBigIntegerSizeBits/8 {
		return fmt.Errorf("%w: integer", ErrTooBig)
	}
	return nil
}

func (Null) String() string                { return AnyT.String() }
func (Null) Type() Type                    { return AnyT }
func (Null) Value() any                    { return nil }
func (Null) TryBool() (bool, error)        { return false, nil }
func (Null) TryBytes() ([]byte, error)     { return nil, convErr(AnyT, ByteArrayT) }
func (Null) TryInteger() (*big.Int, error) { return nil, convErr(AnyT, IntegerT) }

func (Null) Equals(s Item) bool {
	_, ok := s.(Null)
	return ok
}

// NewBool returns a new Bool object.
func NewBool(val bool) Bool { return Bool(val) }

func (i Bool) String() string         { return BooleanT.String() }
func (i Bool) Type() Type             { return BooleanT }
func (i Bool) Value() any             { return bool(i) }
func (i Bool) TryBool() (bool, error) { return bool(i), nil }

func (i Bool) Equals(s Item) bool {
	v, ok := s.(Bool)
	return ok && v == i
}

func (i Bool) TryBytes() ([]byte, error) {
	if i {
		return []byte{1}, nil
	}
	return []byte{0}, nil
}

func (i Bool) TryInteger() (*big.Int, error) {
	if i {
		return big.NewInt(1), nil
	}
	return big.NewInt(0), nil
}

// NewBigInteger returns an item holding a copy of value.
func NewBigInteger(value *big.Int) *BigInteger {
	return (*BigInteger)(new(big.Int).Set(value))
}

// Big returns the underlying integer.
func (i *BigInteger) Big() *big.Int { return (*big.Int)(i) }

func (i *BigInteger) String() string                { return "BigInteger" }
func (i *BigInteger) Type() Type                    { return IntegerT }
func (i *BigInteger) Value() any                    { return i.Big() }
func (i *BigInteger) TryBool() (bool, error)        { return i.Big().Sign() != 0, nil }
func (i *BigInteger) TryBytes() ([]byte, error)     { return bigint.ToBytes(i.Big()), nil }
func (i *BigInteger) TryInteger() (*big.Int, error) { return i.Big(), nil }

func (i *BigInteger) Equals(s Item) bool {
	v, ok := s.(*BigInteger)
	return ok && (i == v || i.Big().Cmp(v.Big()) == 0)
}

// NewByteArray returns a new ByteArray object.
func NewByteArray(b []byte) *ByteArray { return (*ByteArray)(&b) }

func (i *ByteArray) String() string            { return ByteArrayT.String() }
func (i *ByteArray) Type() Type                { return ByteArrayT }
func (i *ByteArray) Value() any                { return []byte(*i) }
func (i *ByteArray) TryBytes() ([]byte, error) { return *i, nil }

// TryBool returns true if any byte is non-zero, byte strings longer than an
// integer can't be converted.
func (i *ByteArray) TryBool() (bool, error) {
	if len(*i) > MaxBigIntegerSizeBits/8 {
		return false, fmt.Errorf("%w: too long to be a boolean", ErrTooBig)
	}
	for _, b := range *i {
		if b != 0 {
			return true, nil
		}
	}
	return false, nil
}

func (i *ByteArray) TryInteger() (*big.Int, error) {
	if len(*i) > MaxBigIntegerSizeBits/8 {
		return nil, fmt.Errorf("%w: integer", ErrTooBig)
	}
	return bigint.FromBytes(*i), nil
}

func (i *ByteArray) Equals(s Item) bool {
	v, ok := s.(*ByteArray)
	return ok && bytes.Equal(*i, *v)
}

// NewBuffer returns a new Buffer object.
func NewBuffer(b []byte) *Buffer { return (*Buffer)(&b) }

func (i *Buffer) String() string                { return BufferT.String() }
func (i *Buffer) Type() Type                    { return BufferT }
func (i *Buffer) Value() any                    { return []byte(*i) }
func (i *Buffer) TryBool() (bool, error)        { return true, nil }
func (i *Buffer) TryBytes() ([]byte, error)     { return *i, nil }
func (i *Buffer) TryInteger() (*big.Int, error) { return nil, convErr(BufferT, IntegerT) }
func (i *Buffer) Equals(s Item) bool            { return Item(i) == s }
