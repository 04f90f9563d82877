// Package address converts script hashes to and from Neo N3 addresses.
package address

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/n3sdk/pkg/encoding/base58"
	"github.com/nspcc-dev/n3sdk/pkg/util"
)

const (
	// NEO2Prefix is the first byte of an address for NEO2.
	NEO2Prefix byte = 0x17
	// NEO3Prefix is the first byte of an address for NEO3.
	NEO3Prefix byte = 0x35
)

// ErrInvalidAddress is returned for strings that are not valid addresses
// (bad encoding, checksum, length or version byte).
var ErrInvalidAddress = errors.New("invalid address")

// Uint160ToString returns the "NEO address" from the given Uint160 using
// the N3 address version.
func Uint160ToString(u util.Uint160) string {
	return EncodeWithVersion(NEO3Prefix, u)
}

// StringToUint160 attempts to decode the given N3 address string into
// a Uint160.
func StringToUint160(s string) (util.Uint160, error) {
	return DecodeWithVersion(NEO3Prefix, s)
}

// EncodeWithVersion encodes u into an address using the given version byte.
func EncodeWithVersion(version byte, u util.Uint160) string {
	b := make([]byte, 0, 1+util.Uint160Size)
	b = append(b, version)
	b = append(b, u.BytesBE()...)
	return base58.CheckEncode(b)
}

// DecodeWithVersion decodes the address s checking its version byte.
func DecodeWithVersion(version byte, s string) (u util.Uint160, err error) {
	b, err := base58.CheckDecode(s)
	if err != nil {
		return u, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(b) != 1+util.Uint160Size {
		return u, fmt.Errorf("%w: wrong length %d", ErrInvalidAddress, len(b))
	}
	if b[0] != version {
		return u, fmt.Errorf("%w: wrong version byte 0x%02x", ErrInvalidAddress, b[0])
	}
	return util.Uint160DecodeBytesBE(b[1:])
}
