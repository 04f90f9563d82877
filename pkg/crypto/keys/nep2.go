package keys

import (
	"bytes"
	"crypto/aes"
	"errors"
	"fmt"

	"github.com/nspcc-dev/n3sdk/pkg/crypto/hash"
	"github.com/nspcc-dev/n3sdk/pkg/encoding/base58"
	"golang.org/x/crypto/scrypt"
	"golang.org/x/text/unicode/norm"
)

// NEP-2 standard implementation for encrypting and decrypting private keys.

// NEP-2 specified parameters used for cryptography.
const (
	n       = 16384
	r       = 8
	p       = 8
	keyLen  = 64
	nepFlag = 0xe0

	// MinScryptN is the lowest N accepted for encryption outside of the
	// insecure mode.
	MinScryptN = 1 << 10
)

var nepHeader = []byte{0x01, 0x42}

// ErrWeakScryptParams is returned by NEP2Encrypt for parameters below
// MinScryptN.
var ErrWeakScryptParams = errors.New("scrypt parameters are too weak")

// ScryptParams is a json-serializable container for scrypt KDF parameters.
type ScryptParams struct {
	N int `json:"n" yaml:"n"`
	R int `json:"r" yaml:"r"`
	P int `json:"p" yaml:"p"`
}

// NEP2ScryptParams returns scrypt parameters specified in the NEP-2.
func NEP2ScryptParams() ScryptParams {
	return ScryptParams{
		N: n,
		R: r,
		P: p,
	}
}

func (s ScryptParams) validate() error {
	if s.N <= 1 || s.N&(s.N-1) != 0 {
		return fmt.Errorf("scrypt N must be a power of two > 1, got %d", s.N)
	}
	if s.R <= 0 || s.P <= 0 {
		return fmt.Errorf("invalid scrypt r/p: %d/%d", s.R, s.P)
	}
	return nil
}

// NEP2Encrypt encrypts a the PrivateKey using the given passphrase
// under the NEP-2 standard. Parameters with N below MinScryptN are refused.
func NEP2Encrypt(priv *PrivateKey, passphrase string, params ScryptParams) (s string, err error) {
	if params.N < MinScryptN {
		return "", fmt.Errorf("%w: N=%d < %d", ErrWeakScryptParams, params.N, MinScryptN)
	}
	return nep2Encrypt(priv, passphrase, params)
}

// NEP2EncryptInsecure is the same as NEP2Encrypt, but accepts any valid
// scrypt parameters. It's intended for tests only, keys produced with weak
// parameters can be easily brute-forced.
func NEP2EncryptInsecure(priv *PrivateKey, passphrase string, params ScryptParams) (string, error) {
	return nep2Encrypt(priv, passphrase, params)
}

func nep2Encrypt(priv *PrivateKey, passphrase string, params ScryptParams) (s string, err error) {
	if err := params.validate(); err != nil {
		return "", err
	}
	address := priv.Address()

	addrHash := hash.Checksum([]byte(address))
	// Normalize the passphrase according to the NFC standard.
	phraseNorm := norm.NFC.Bytes([]byte(passphrase))
	derivedKey, err := scrypt.Key(phraseNorm, addrHash, params.N, params.R, params.P, keyLen)
	if err != nil {
		return s, err
	}
	defer clear(derivedKey)

	derivedKey1 := derivedKey[:32]
	derivedKey2 := derivedKey[32:]

	privBytes := priv.Bytes()
	defer clear(privBytes)
	xr := xor(privBytes, derivedKey1)
	defer clear(xr)

	encrypted, err := aesECBEncrypt(xr, derivedKey2)
	if err != nil {
		return s, err
	}

	buf := new(bytes.Buffer)
	buf.Write(nepHeader)
	buf.WriteByte(nepFlag)
	buf.Write(addrHash)
	buf.Write(encrypted)

	if buf.Len() != 39 {
		return s, fmt.Errorf("invalid buffer length: expecting 39 bytes got %d", buf.Len())
	}

	return base58.CheckEncode(buf.Bytes()), nil
}

// NEP2Decrypt decrypts an encrypted key using the given passphrase
// under the NEP-2 standard. Any valid scrypt parameters are accepted.
func NEP2Decrypt(key, passphrase string, params ScryptParams) (*PrivateKey, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	b, err := base58.CheckDecode(key)
	if err != nil {
		return nil, err
	}
	if err := validateNEP2Format(b); err != nil {
		return nil, err
	}

	addrHash := b[3:7]
	// Normalize the passphrase according to the NFC standard.
	phraseNorm := norm.NFC.Bytes([]byte(passphrase))
	derivedKey, err := scrypt.Key(phraseNorm, addrHash, params.N, params.R, params.P, keyLen)
	if err != nil {
		return nil, err
	}
	defer clear(derivedKey)

	derivedKey1 := derivedKey[:32]
	derivedKey2 := derivedKey[32:]
	encryptedBytes := b[7:]

	decrypted, err := aesECBDecrypt(encryptedBytes, derivedKey2)
	if err != nil {
		return nil, err
	}
	defer clear(decrypted)

	privBytes := xor(decrypted, derivedKey1)
	defer clear(privBytes)

	// Rebuild the private key.
	privKey, err := NewPrivateKeyFromBytes(privBytes)
	if err != nil {
		return nil, err
	}

	if !compareAddressHash(privKey, addrHash) {
		privKey.Destroy()
		return nil, errors.New("password mismatch")
	}

	return privKey, nil
}

func compareAddressHash(priv *PrivateKey, inhash []byte) bool {
	address := priv.Address()
	addrHash := hash.Checksum([]byte(address))
	return bytes.Equal(addrHash, inhash)
}

func validateNEP2Format(b []byte) error {
	if len(b) != 39 {
		return fmt.Errorf("invalid length: expecting 39 got %d", len(b))
	}
	if b[0] != 0x01 {
		return fmt.Errorf("invalid byte sequence: expecting 0x01 got 0x%02x", b[0])
	}
	if b[1] != 0x42 {
		return fmt.Errorf("invalid byte sequence: expecting 0x42 got 0x%02x", b[1])
	}
	if b[2] != 0xe0 {
		return fmt.Errorf("invalid byte sequence: expecting 0xe0 got 0x%02x", b[2])
	}
	return nil
}

func xor(a, b []byte) []byte {
	if len(a) != len(b) {
		panic("cannot XOR non equal length arrays")
	}
	dst := make([]byte, len(a))
	for i := 0; i < len(dst); i++ {
		dst[i] = a[i] ^ b[i]
	}
	return dst
}

// aesECBEncrypt encrypts full blocks of the given data with AES-256 in ECB
// mode (no padding, NEP-2 data is exactly two blocks).
func aesECBEncrypt(data, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(data)%aes.BlockSize != 0 {
		return nil, errors.New("data is not a multiple of the block size")
	}
	out := make([]byte, len(data))
	for i := 0; i < len(data); i += aes.BlockSize {
		block.Encrypt(out[i:i+aes.BlockSize], data[i:i+aes.BlockSize])
	}
	return out, nil
}

func aesECBDecrypt(data, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(data)%aes.BlockSize != 0 {
		return nil, errors.New("data is not a multiple of the block size")
	}
	out := make([]byte, len(data))
	for i := 0; i < len(data); i += aes.BlockSize {
		block.Decrypt(out[i:i+aes.BlockSize], data[i:i+aes.BlockSize])
	}
	return out, nil
}
