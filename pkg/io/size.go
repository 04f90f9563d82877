package io

// GetVarSize returns the number of bytes needed to encode the given value
// as a variable-length integer.
func GetVarSize(value uint64) int {
	switch {
	case value < 0xFD:
		return 1
	case value <= 0xFFFF:
		return 3
	case value <= 0xFFFFFFFF:
		return 5
	default:
		return 9
	}
}

// GetVarBytesSize returns the size of a length-prefixed byte slice.
func GetVarBytesSize(b []byte) int {
	return GetVarSize(uint64(len(b))) + len(b)
}
