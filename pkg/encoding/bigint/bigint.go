// Package bigint converts integers to and from the two's complement
// little-endian form used by the Neo VM.
package bigint

import (
	"math/big"
)

// MaxBytesLen is the maximum length of a serialized integer suitable for Neo VM.
const MaxBytesLen = 32 // 256-bit signed integer

var bigOne = big.NewInt(1)

// FromBytesUnsigned converts data in little-endian format to an unsigned integer.
func FromBytesUnsigned(data []byte) *big.Int {
	bs := reverse(data)
	return new(big.Int).SetBytes(bs)
}

// FromBytes converts data in little-endian two's complement format to
// an integer.
func FromBytes(data []byte) *big.Int {
	if len(data) == 0 {
		return big.NewInt(0)
	}
	n := new(big.Int).SetBytes(reverse(data))
	if data[len(data)-1]&0x80 != 0 {
		mod := new(big.Int).Lsh(bigOne, uint(len(data)*8))
		n.Sub(n, mod)
	}
	return n
}

// ToBytes converts an integer to a slice in little-endian two's complement
// format using the minimal number of bytes. Zero is an empty slice.
func ToBytes(n *big.Int) []byte {
	sign := n.Sign()
	if sign == 0 {
		return []byte{}
	}
	if sign > 0 {
		be := n.Bytes()
		if be[0]&0x80 != 0 {
			be = append([]byte{0}, be...)
		}
		return reverse(be)
	}
	// For negative n the minimal width is the smallest l with -2^(8l-1) <= n.
	l := (new(big.Int).Sub(new(big.Int).Neg(n), bigOne).BitLen())/8 + 1
	mod := new(big.Int).Lsh(bigOne, uint(l*8))
	be := new(big.Int).Add(mod, n).FillBytes(make([]byte, l))
	return reverse(be)
}

func reverse(b []byte) []byte {
	dest := make([]byte, len(b))
	for i, j := 0, len(b)-1; j >= 0; i, j = i+1, j-1 {
		dest[i] = b[j]
	}
	return dest
}
