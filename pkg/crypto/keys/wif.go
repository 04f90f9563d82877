package keys

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/n3sdk/pkg/encoding/base58"
)

// WIFVersion is the version byte of Neo WIF keys.
const WIFVersion = 0x80

// compressedFlag follows the scalar in WIFs of compressed keys.
const compressedFlag = 0x01

// ErrInvalidWIF is returned for WIF strings of wrong layout.
var ErrInvalidWIF = errors.New("invalid WIF")

// WIF is a decoded wallet import format string.
type WIF struct {
	// Version is the leading byte, WIFVersion by default.
	Version byte
	// Compressed is set for keys followed by the compression flag.
	Compressed bool
	// PrivateKey is the decoded key.
	PrivateKey *PrivateKey
	// S is the source string.
	S string
}

// WIFEncode makes a WIF string of the 32-byte key. Zero version means
// WIFVersion.
func WIFEncode(key []byte, version byte, compressed bool) (string, error) {
	if len(key) != privateKeySize {
		return "", fmt.Errorf("%w: key is %d bytes", ErrInvalidWIF, len(key))
	}
	if version == 0 {
		version = WIFVersion
	}
	buf := make([]byte, 0, 1+privateKeySize+1)
	buf = append(append(buf, version), key...)
	if compressed {
		buf = append(buf, compressedFlag)
	}
	defer clear(buf)
	return base58.CheckEncode(buf), nil
}

// WIFDecode parses the WIF string of the given version (zero means
// WIFVersion).
func WIFDecode(wif string, version byte) (*WIF, error) {
	b, err := base58.CheckDecode(wif)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidWIF, err)
	}
	defer clear(b)
	if version == 0 {
		version = WIFVersion
	}

	w := &WIF{Version: version, S: wif}
	switch len(b) {
	case 1 + privateKeySize:
	case 1 + privateKeySize + 1:
		if b[len(b)-1] != compressedFlag {
			return nil, fmt.Errorf("%w: compression flag %#x", ErrInvalidWIF, b[len(b)-1])
		}
		w.Compressed = true
	default:
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidWIF, len(b))
	}
	if b[0] != version {
		return nil, fmt.Errorf("%w: version %#x instead of %#x", ErrInvalidWIF, b[0], version)
	}
	if w.PrivateKey, err = NewPrivateKeyFromBytes(b[1 : 1+privateKeySize]); err != nil {
		return nil, err
	}
	return w, nil
}
