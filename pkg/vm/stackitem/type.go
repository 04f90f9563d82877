package stackitem

import "errors"

// Type represents type of the stack item.
type Type byte

// Stack item types, codes match the ones used by the VM.
const (
	AnyT       Type = 0x00
	PointerT   Type = 0x10
	BooleanT   Type = 0x20
	IntegerT   Type = 0x21
	ByteArrayT Type = 0x28
	BufferT    Type = 0x30
	ArrayT     Type = 0x40
	StructT    Type = 0x41
	MapT       Type = 0x48
	InteropT   Type = 0x60
	InvalidT   Type = 0xFF
)

// ErrInvalidType is returned for unknown item type names.
var ErrInvalidType = errors.New("invalid type")

var typeNames = map[Type]string{
	AnyT:       "Any",
	PointerT:   "Pointer",
	BooleanT:   "Boolean",
	IntegerT:   "Integer",
	ByteArrayT: "ByteString",
	BufferT:    "Buffer",
	ArrayT:     "Array",
	StructT:    "Struct",
	MapT:       "Map",
	InteropT:   "InteropInterface",
}

// String implements fmt.Stringer interface.
func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return "INVALID"
}

// IsValid checks if t is a well defined stack item type.
func (t Type) IsValid() bool {
	_, ok := typeNames[t]
	return ok
}

// FromString parses a type name as returned by String. Older node names
// "ByteArray" and "Interop" are accepted too.
func FromString(s string) (Type, error) {
	switch s {
	case "ByteArray":
		return ByteArrayT, nil
	case "Interop":
		return InteropT, nil
	}
	for t, name := range typeNames {
		if name == s {
			return t, nil
		}
	}
	return InvalidT, ErrInvalidType
}
