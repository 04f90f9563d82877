package stackitem

import (
	"fmt"
	"math/big"
)

// opaque implements conversions of items that are neither integers nor
// byte strings: they are always true and can't be converted to anything
// else.
type opaque Type

func (o opaque) Type() Type                    { return Type(o) }
func (o opaque) String() string                { return Type(o).String() }
func (o opaque) TryBool() (bool, error)        { return true, nil }
func (o opaque) TryBytes() ([]byte, error)     { return nil, convErr(Type(o), ByteArrayT) }
func (o opaque) TryInteger() (*big.Int, error) { return nil, convErr(Type(o), IntegerT) }

type (
	// Array is an array item, arrays are compared by reference.
	Array struct {
		opaque
		value []Item
	}

	// Struct is a struct item, structs are compared by value.
	Struct struct {
		opaque
		value []Item
	}

	// MapElement is a single key-value pair of a Map.
	MapElement struct {
		Key   Item
		Value Item
	}

	// Map is a map item, elements keep their insertion order.
	Map struct {
		opaque
		value []MapElement
	}

	// Interop is an interop item. Values returned by nodes are iterator
	// descriptors and are kept as is.
	Interop struct {
		opaque
		value any
	}

	// Pointer is an instruction pointer.
	Pointer struct {
		opaque
		pos int
	}
)

// NewArray returns a new Array object.
func NewArray(items []Item) *Array {
	return &Array{opaque: opaque(ArrayT), value: items}
}

// Value returns the []Item slice.
func (i *Array) Value() any { return i.value }

// Len returns the number of elements.
func (i *Array) Len() int { return len(i.value) }

// Equals implements the Item interface.
func (i *Array) Equals(s Item) bool { return Item(i) == s }

// NewStruct returns a new Struct object.
func NewStruct(items []Item) *Struct {
	return &Struct{opaque: opaque(StructT), value: items}
}

// Value returns the []Item slice.
func (i *Struct) Value() any { return i.value }

// Len returns the number of fields.
func (i *Struct) Len() int { return len(i.value) }

// Equals implements the Item interface.
func (i *Struct) Equals(s Item) bool {
	v, ok := s.(*Struct)
	if !ok || len(v.value) != len(i.value) {
		return false
	}
	if i == v {
		return true
	}
	for j, f := range i.value {
		if !f.Equals(v.value[j]) {
			return false
		}
	}
	return true
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return NewMapWithValue(nil)
}

// NewMapWithValue returns a Map with the given elements.
func NewMapWithValue(value []MapElement) *Map {
	if value == nil {
		value = []MapElement{}
	}
	return &Map{opaque: opaque(MapT), value: value}
}

// Value returns the []MapElement slice.
func (i *Map) Value() any { return i.value }

// Len returns the number of elements.
func (i *Map) Len() int { return len(i.value) }

// Equals implements the Item interface.
func (i *Map) Equals(s Item) bool { return Item(i) == s }

// Index returns the position of key in the map or -1.
func (i *Map) Index(key Item) int {
	for k, e := range i.value {
		if e.Key.Equals(key) {
			return k
		}
	}
	return -1
}

// Has checks if the map has the specified key.
func (i *Map) Has(key Item) bool { return i.Index(key) >= 0 }

// Add sets the value for the key, it panics if key can't be a map key.
func (i *Map) Add(key, value Item) {
	if err := IsValidMapKey(key); err != nil {
		panic(err)
	}
	if k := i.Index(key); k >= 0 {
		i.value[k].Value = value
		return
	}
	i.value = append(i.value, MapElement{Key: key, Value: value})
}

// IsValidMapKey checks whether the item can be used as a Map key, only
// Boolean, Integer and ByteString can.
func IsValidMapKey(key Item) error {
	switch key.(type) {
	case Bool, *BigInteger, *ByteArray:
		return nil
	case nil:
		return fmt.Errorf("%w: nil", ErrInvalidType)
	}
	return fmt.Errorf("%w: %s map key", ErrInvalidType, key.Type())
}

// NewInterop returns a new Interop object.
func NewInterop(value any) *Interop {
	return &Interop{opaque: opaque(InteropT), value: value}
}

// Value returns the wrapped value.
func (i *Interop) Value() any { return i.value }

// Equals implements the Item interface.
func (i *Interop) Equals(s Item) bool { return Item(i) == s }

// NewPointer returns a new pointer to the given position.
func NewPointer(pos int) *Pointer {
	return &Pointer{opaque: opaque(PointerT), pos: pos}
}

// Value returns the position.
func (p *Pointer) Value() any { return p.pos }

// Equals implements the Item interface.
func (p *Pointer) Equals(s Item) bool {
	v, ok := s.(*Pointer)
	return ok && v.pos == p.pos
}
