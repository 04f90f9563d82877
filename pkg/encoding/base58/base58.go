// Package base58 wraps the mr-tron/base58 encoder adding Base58Check
// (double SHA-256 checksummed) helpers.
package base58

import (
	"bytes"
	"crypto/sha256"
	"errors"

	"github.com/mr-tron/base58"
)

// ErrChecksum is returned when the decoded data checksum doesn't match.
var ErrChecksum = errors.New("checksum mismatch")

// CheckDecode implements base58-encoded string decoding with a hash-based
// checksum check.
func CheckDecode(s string) (b []byte, err error) {
	b, err = base58.Decode(s)
	if err != nil {
		return nil, err
	}

	if len(b) < 5 {
		return nil, errors.New("invalid base-58 check string: missing checksum")
	}

	if !bytes.Equal(checksum(b[:len(b)-4]), b[len(b)-4:]) {
		return nil, ErrChecksum
	}
	b = b[:len(b)-4]

	return b, nil
}

// CheckEncode encodes the given byte slice into a base58 string with a
// hash-based checksum appended to it.
func CheckEncode(b []byte) string {
	data := make([]byte, 0, len(b)+4)
	data = append(data, b...)
	data = append(data, checksum(b)...)
	return base58.Encode(data)
}

func checksum(b []byte) []byte {
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	return second[:4]
}
