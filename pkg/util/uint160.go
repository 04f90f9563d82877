package util

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Uint160Size is the size of Uint160 in bytes.
const Uint160Size = 20

// ErrInvalidHex is returned when a hex string has odd length or contains
// non-hex characters.
var ErrInvalidHex = errors.New("invalid hex")

// Uint160 is a 20 byte long unsigned integer. It's stored in big-endian form
// (the way RIPEMD-160 produces it and the way it's used in addresses), while
// the little-endian form is used for user-facing hex strings and the wire.
type Uint160 [Uint160Size]uint8

// Uint160DecodeStringLE attempts to decode the given string (in LE
// representation, with an optional 0x prefix) into an Uint160.
func Uint160DecodeStringLE(s string) (u Uint160, err error) {
	b, err := decodeFixedHex(s, Uint160Size)
	if err != nil {
		return u, err
	}
	return Uint160DecodeBytesLE(b)
}

// Uint160DecodeStringBE attempts to decode the given string (in BE
// representation) into an Uint160.
func Uint160DecodeStringBE(s string) (u Uint160, err error) {
	b, err := decodeFixedHex(s, Uint160Size)
	if err != nil {
		return u, err
	}
	return Uint160DecodeBytesBE(b)
}

// Uint160DecodeBytesBE attempts to decode the given bytes into an Uint160.
func Uint160DecodeBytesBE(b []byte) (u Uint160, err error) {
	if len(b) != Uint160Size {
		return u, fmt.Errorf("expected byte size of %d got %d", Uint160Size, len(b))
	}
	copy(u[:], b)
	return
}

// Uint160DecodeBytesLE attempts to decode the given bytes in little-endian
// into an Uint160.
func Uint160DecodeBytesLE(b []byte) (u Uint160, err error) {
	if len(b) != Uint160Size {
		return u, fmt.Errorf("expected byte size of %d got %d", Uint160Size, len(b))
	}
	for i := range b {
		u[Uint160Size-i-1] = b[i]
	}
	return
}

// BytesBE returns a big-endian byte representation of u.
func (u Uint160) BytesBE() []byte {
	return u[:]
}

// BytesLE returns a little-endian byte representation of u.
func (u Uint160) BytesLE() []byte {
	for i, j := 0, Uint160Size-1; i <= j; i, j = i+1, j-1 {
		u[i], u[j] = u[j], u[i]
	}
	return u[:]
}

// String implements the stringer interface.
func (u Uint160) String() string {
	return u.StringBE()
}

// StringBE returns string representations of u with big-endian byte order.
func (u Uint160) StringBE() string {
	return hex.EncodeToString(u.BytesBE())
}

// StringLE returns string representations of u with little-endian byte order.
func (u Uint160) StringLE() string {
	return hex.EncodeToString(u.BytesLE())
}

// Reverse returns reversed representation of u.
func (u Uint160) Reverse() (r Uint160) {
	for i := 0; i < Uint160Size; i++ {
		r[i] = u[Uint160Size-i-1]
	}
	return
}

// Equals returns true if both Uint160 values are the same.
func (u Uint160) Equals(other Uint160) bool {
	return u == other
}

// Less returns true if this value is less than the given value.
func (u Uint160) Less(other Uint160) bool {
	return bytes.Compare(u[:], other[:]) < 0
}

// UnmarshalJSON implements the json unmarshaller interface.
func (u *Uint160) UnmarshalJSON(data []byte) (err error) {
	var js string
	if err = json.Unmarshal(data, &js); err != nil {
		return err
	}
	*u, err = Uint160DecodeStringLE(js)
	return err
}

// MarshalJSON implements the json marshaller interface.
func (u Uint160) MarshalJSON() ([]byte, error) {
	r := make([]byte, 3+Uint160Size*2+1)
	copy(r, `"0x`)
	r[len(r)-1] = '"'
	hex.Encode(r[3:], u.BytesLE())
	return r, nil
}

// MarshalYAML implements the YAML Marshaler interface.
func (u Uint160) MarshalYAML() (any, error) {
	return "0x" + u.StringLE(), nil
}

// UnmarshalYAML implements the YAML Unmarshaler interface.
func (u *Uint160) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	err := unmarshal(&s)
	if err != nil {
		return err
	}
	*u, err = Uint160DecodeStringLE(s)
	return err
}

// DecodeHex decodes a hex string with an optional 0x prefix.
func DecodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("%w: odd length %d", ErrInvalidHex, len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHex, err)
	}
	return b, nil
}

func decodeFixedHex(s string, size int) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	if len(s) != size*2 {
		return nil, fmt.Errorf("expected string size of %d got %d", size*2, len(s))
	}
	return DecodeHex(s)
}
