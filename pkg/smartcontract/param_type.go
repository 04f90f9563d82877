package smartcontract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nspcc-dev/n3sdk/pkg/io"
)

// ParamType is the type of a contract parameter as used in manifests and
// RPC calls.
type ParamType int

// Parameter types known to the network.
const (
	UnknownType          ParamType = -1
	AnyType              ParamType = 0x00
	BoolType             ParamType = 0x10
	IntegerType          ParamType = 0x11
	ByteArrayType        ParamType = 0x12
	StringType           ParamType = 0x13
	Hash160Type          ParamType = 0x14
	Hash256Type          ParamType = 0x15
	PublicKeyType        ParamType = 0x16
	SignatureType        ParamType = 0x17
	ArrayType            ParamType = 0x20
	MapType              ParamType = 0x22
	InteropInterfaceType ParamType = 0x30
	VoidType             ParamType = 0xff
)

// validParamTypes maps every known type to its canonical name.
var validParamTypes = map[ParamType]string{
	AnyType:              "Any",
	BoolType:             "Boolean",
	IntegerType:          "Integer",
	ByteArrayType:        "ByteArray",
	StringType:           "String",
	Hash160Type:          "Hash160",
	Hash256Type:          "Hash256",
	PublicKeyType:        "PublicKey",
	SignatureType:        "Signature",
	ArrayType:            "Array",
	MapType:              "Map",
	InteropInterfaceType: "InteropInterface",
	VoidType:             "Void",
}

// paramTypeAliases are the lowercase names accepted by ParseParamType in
// addition to the canonical ones.
var paramTypeAliases = map[string]ParamType{
	"bool":       BoolType,
	"int":        IntegerType,
	"bytes":      ByteArrayType,
	"bytestring": ByteArrayType,
	"key":        PublicKeyType,
	"struct":     ArrayType,
}

// String returns the canonical type name, it's empty for unknown types.
func (pt ParamType) String() string {
	return validParamTypes[pt]
}

// ParseParamType converts a type name into ParamType. It's case-insensitive
// and besides canonical names accepts bool, int, bytes, bytestring, key and
// struct (which is an Array).
func ParseParamType(typ string) (ParamType, error) {
	lower := strings.ToLower(typ)
	if pt, ok := paramTypeAliases[lower]; ok {
		return pt, nil
	}
	for pt, name := range validParamTypes {
		if strings.ToLower(name) == lower {
			return pt, nil
		}
	}
	return UnknownType, fmt.Errorf("%w: bad parameter type: %s", ErrInvalidParameter, typ)
}

// ConvertToParamType checks that val is a known type code.
func ConvertToParamType(val int) (ParamType, error) {
	if _, ok := validParamTypes[ParamType(val)]; ok {
		return ParamType(val), nil
	}
	return UnknownType, errors.New("unknown parameter type")
}

func (pt ParamType) check() error {
	if _, ok := validParamTypes[pt]; !ok {
		return fmt.Errorf("%w: unknown parameter type %d", ErrInvalidParameter, int(pt))
	}
	return nil
}

// MarshalJSON implements the json.Marshaler interface.
func (pt ParamType) MarshalJSON() ([]byte, error) {
	if err := pt.check(); err != nil {
		return nil, err
	}
	return json.Marshal(pt.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (pt *ParamType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	p, err := ParseParamType(s)
	if err == nil {
		*pt = p
	}
	return err
}

// MarshalYAML implements the YAML Marshaler interface.
func (pt ParamType) MarshalYAML() (any, error) {
	return pt.String(), nil
}

// UnmarshalYAML implements the YAML Unmarshaler interface.
func (pt *ParamType) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	p, err := ParseParamType(s)
	if err == nil {
		*pt = p
	}
	return err
}

// EncodeBinary implements the io.Serializable interface.
func (pt ParamType) EncodeBinary(w *io.BinWriter) {
	w.WriteB(byte(pt))
}

// DecodeBinary implements the io.Serializable interface.
func (pt *ParamType) DecodeBinary(r *io.BinReader) {
	*pt = ParamType(r.ReadB())
	if r.Err == nil {
		r.Err = pt.check()
	}
}
