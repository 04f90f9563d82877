package keys

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/nspcc-dev/n3sdk/pkg/crypto/hash"
	"github.com/nspcc-dev/n3sdk/pkg/util"
	"github.com/nspcc-dev/rfc6979"
)

// privateKeySize is the length of the serialized scalar.
const privateKeySize = 32

// ErrInvalidKey is returned for malformed or out-of-range keys.
var ErrInvalidKey = errors.New("invalid key")

// PrivateKey is an ECDSA key able to sign Neo transactions. Keys are
// secp256r1 unless created with one of the Secp256k1 constructors.
type PrivateKey struct {
	ecdsa.PrivateKey
}

// NewPrivateKey generates a random secp256r1 key.
func NewPrivateKey() (*PrivateKey, error) {
	return generateKey(elliptic.P256())
}

// NewSecp256k1PrivateKey generates a random secp256k1 key.
func NewSecp256k1PrivateKey() (*PrivateKey, error) {
	return generateKey(secp256k1.S256())
}

func generateKey(c elliptic.Curve) (*PrivateKey, error) {
	k, err := ecdsa.GenerateKey(c, rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("key generation: %w", err)
	}
	return &PrivateKey{PrivateKey: *k}, nil
}

// NewPrivateKeyFromHex decodes a hex-encoded secp256r1 scalar.
func NewPrivateKeyFromHex(str string) (*PrivateKey, error) {
	b, err := util.DecodeHex(str)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	defer clear(b)
	return NewPrivateKeyFromBytes(b)
}

// NewPrivateKeyFromBytes makes a secp256r1 key from a 32-byte big-endian
// scalar in the [1, n-1] range.
func NewPrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	return keyFromScalar(elliptic.P256(), b)
}

// NewSecp256k1PrivateKeyFromBytes is NewPrivateKeyFromBytes for secp256k1.
func NewSecp256k1PrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	return keyFromScalar(secp256k1.S256(), b)
}

func keyFromScalar(c elliptic.Curve, b []byte) (*PrivateKey, error) {
	if len(b) != privateKeySize {
		return nil, fmt.Errorf("%w: %d bytes instead of %d", ErrInvalidKey, len(b), privateKeySize)
	}
	d := new(big.Int).SetBytes(b)
	if d.Sign() == 0 || d.Cmp(c.Params().N) >= 0 {
		return nil, fmt.Errorf("%w: scalar is out of range", ErrInvalidKey)
	}
	k := &PrivateKey{}
	k.Curve = c
	k.D = d
	k.X, k.Y = c.ScalarBaseMult(b)
	return k, nil
}

// NewPrivateKeyFromWIF decodes a compressed WIF key of WIFVersion.
func NewPrivateKeyFromWIF(wif string) (*PrivateKey, error) {
	w, err := WIFDecode(wif, WIFVersion)
	if err != nil {
		return nil, err
	}
	return w.PrivateKey, nil
}

// PublicKey returns the public part of the key.
func (p *PrivateKey) PublicKey() *PublicKey {
	pub := PublicKey(p.PrivateKey.PublicKey)
	return &pub
}

// WIF encodes the key in the compressed wallet import format.
func (p *PrivateKey) WIF() string {
	b := p.Bytes()
	defer clear(b)
	w, err := WIFEncode(b, WIFVersion, true)
	if err != nil {
		// Bytes always returns privateKeySize bytes.
		panic(err)
	}
	return w
}

// Destroy zeroes the scalar, the key is unusable after that.
func (p *PrivateKey) Destroy() {
	clear(p.D.Bits())
}

// Address returns the address of the standard single-signature account
// of the key.
func (p *PrivateKey) Address() string {
	return p.PublicKey().Address()
}

// GetScriptHash returns the hash of the key's verification script.
func (p *PrivateKey) GetScriptHash() util.Uint160 {
	return p.PublicKey().GetScriptHash()
}

// Sign signs SHA-256 of data.
func (p *PrivateKey) Sign(data []byte) []byte {
	return p.SignHash(sha256.Sum256(data))
}

// SignHash makes a deterministic (RFC 6979) signature of the digest in the
// 64-byte r||s form.
func (p *PrivateKey) SignHash(digest util.Uint256) []byte {
	r, s := rfc6979.SignECDSA(&p.PrivateKey, digest[:], sha256.New)
	size := (p.Curve.Params().P.BitLen() + 7) / 8
	sig := make([]byte, 2*size)
	r.FillBytes(sig[:size])
	s.FillBytes(sig[size:])
	return sig
}

// SignHashable signs the network-bound hash (see hash.NetSha256) of hh.
func (p *PrivateKey) SignHashable(net uint32, hh hash.Hashable) []byte {
	return p.SignHash(hash.NetSha256(net, hh))
}

// String implements the fmt.Stringer interface, it returns the hex scalar.
func (p *PrivateKey) String() string {
	return hex.EncodeToString(p.Bytes())
}

// Bytes returns the 32-byte big-endian scalar.
func (p *PrivateKey) Bytes() []byte {
	return p.D.FillBytes(make([]byte, privateKeySize))
}
