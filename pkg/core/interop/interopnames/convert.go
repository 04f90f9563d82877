// Package interopnames lists the syscall names and converts them to the
// 4-byte identifiers used by the SYSCALL instruction.
package interopnames

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
)

var errNotFound = errors.New("interop not found")

// ToID returns an identificator of the method based on its name: the first
// four bytes of the SHA-256 of the name read as a little-endian integer.
func ToID(name []byte) uint32 {
	h := sha256.Sum256(name)
	return binary.LittleEndian.Uint32(h[:4])
}

// FromID returns the interop name by its id.
func FromID(id uint32) (string, error) {
	for i := range names {
		if id == ToID([]byte(names[i])) {
			return names[i], nil
		}
	}
	return "", errNotFound
}
