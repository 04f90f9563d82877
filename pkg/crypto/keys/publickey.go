package keys

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/nspcc-dev/n3sdk/pkg/crypto/hash"
	"github.com/nspcc-dev/n3sdk/pkg/encoding/address"
	"github.com/nspcc-dev/n3sdk/pkg/io"
	"github.com/nspcc-dev/n3sdk/pkg/util"
	"github.com/nspcc-dev/n3sdk/pkg/vm/emit"
)

const (
	// PublicKeySize is the size of a compressed public key.
	PublicKeySize = 33
	// SignatureLen is the size of an r||s signature.
	SignatureLen = 64

	coordSize = 32
)

// Point encoding prefixes.
const (
	prefixInfinity     = 0x00
	prefixCompressedY0 = 0x02
	prefixCompressedY1 = 0x03
	prefixUncompressed = 0x04
)

// PublicKey is an EC point, secp256r1 unless the curve is set explicitly.
// The zero value is the point at infinity.
type PublicKey ecdsa.PublicKey

// NewPublicKeyFromString decodes a hex-encoded secp256r1 key.
func NewPublicKeyFromString(s string) (*PublicKey, error) {
	b, err := util.DecodeHex(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	return NewPublicKeyFromBytes(b, elliptic.P256())
}

// NewPublicKeyFromBytes decodes an encoded point of the given curve.
func NewPublicKeyFromBytes(b []byte, curve elliptic.Curve) (*PublicKey, error) {
	p := &PublicKey{Curve: curve}
	if err := p.DecodeBytes(b); err != nil {
		return nil, err
	}
	return p, nil
}

// Equal reports whether both keys are the same point.
func (p *PublicKey) Equal(k *PublicKey) bool {
	return p.Cmp(k) == 0
}

// Cmp orders keys by X and then by Y.
func (p *PublicKey) Cmp(k *PublicKey) int {
	if c := p.X.Cmp(k.X); c != 0 {
		return c
	}
	return p.Y.Cmp(k.Y)
}

// IsInfinity checks whether the key is the point at infinity.
func (p *PublicKey) IsInfinity() bool {
	return p.X == nil && p.Y == nil
}

// Bytes returns the 33-byte compressed form of the key (a single zero byte
// for the point at infinity).
func (p *PublicKey) Bytes() []byte {
	if p.IsInfinity() {
		return []byte{prefixInfinity}
	}
	b := make([]byte, 1+coordSize)
	b[0] = prefixCompressedY0 | byte(p.Y.Bit(0))
	p.X.FillBytes(b[1:])
	return b
}

// UncompressedBytes returns the 65-byte uncompressed form of the key.
func (p *PublicKey) UncompressedBytes() []byte {
	if p.IsInfinity() {
		return []byte{prefixInfinity}
	}
	b := make([]byte, 1+2*coordSize)
	b[0] = prefixUncompressed
	p.X.FillBytes(b[1 : 1+coordSize])
	p.Y.FillBytes(b[1+coordSize:])
	return b
}

// StringCompressed returns the hex of Bytes.
func (p *PublicKey) StringCompressed() string {
	return hex.EncodeToString(p.Bytes())
}

// String implements the fmt.Stringer interface.
func (p *PublicKey) String() string {
	return p.StringCompressed()
}

// DecodeBytes decodes the key from data, trailing bytes are an error.
func (p *PublicKey) DecodeBytes(data []byte) error {
	r := io.NewBinReaderFromBuf(data)
	p.DecodeBinary(r)
	if r.Err == nil && r.Len() != 0 {
		r.Err = fmt.Errorf("%w: %d trailing bytes", ErrInvalidKey, r.Len())
	}
	return r.Err
}

// DecodeBinary implements io.Serializable. Compressed points are
// decompressed on the key's curve (secp256r1 if unset).
func (p *PublicKey) DecodeBinary(r *io.BinReader) {
	prefix := r.ReadB()
	if r.Err != nil {
		return
	}
	if p.Curve == nil {
		p.Curve = elliptic.P256()
	}
	var x, y *big.Int
	switch prefix {
	case prefixInfinity:
		p.X, p.Y = nil, nil
		return
	case prefixCompressedY0, prefixCompressedY1:
		x = readCoord(r)
		if r.Err != nil {
			return
		}
		y = decompressY(p.Curve, x, uint(prefix&1))
	case prefixUncompressed:
		x, y = readCoord(r), readCoord(r)
		if r.Err != nil {
			return
		}
	default:
		r.Err = fmt.Errorf("%w: unknown prefix %#x", ErrInvalidKey, prefix)
		return
	}
	if y == nil || !p.Curve.IsOnCurve(x, y) {
		r.Err = fmt.Errorf("%w: point is not on the curve", ErrInvalidKey)
		return
	}
	p.X, p.Y = x, y
}

func readCoord(r *io.BinReader) *big.Int {
	var b [coordSize]byte
	r.ReadBytes(b[:])
	return new(big.Int).SetBytes(b[:])
}

// decompressY solves y² = x³ + ax + b for the given parity of y. a is -3
// for secp256r1 and 0 for secp256k1. It returns nil if there is no
// solution.
func decompressY(curve elliptic.Curve, x *big.Int, odd uint) *big.Int {
	params := curve.Params()
	if x.Cmp(params.P) >= 0 {
		return nil
	}
	rhs := new(big.Int).Exp(x, big.NewInt(3), params.P)
	if _, koblitz := curve.(*secp256k1.KoblitzCurve); !koblitz {
		rhs.Sub(rhs, new(big.Int).Mul(x, big.NewInt(3)))
	}
	rhs.Add(rhs, params.B)
	rhs.Mod(rhs, params.P)
	y := new(big.Int).ModSqrt(rhs, params.P)
	if y == nil {
		return nil
	}
	if y.Bit(0) != odd {
		y.Sub(params.P, y)
	}
	return y
}

// EncodeBinary implements io.Serializable.
func (p *PublicKey) EncodeBinary(w *io.BinWriter) {
	w.WriteBytes(p.Bytes())
}

// GetVerificationScript returns the standard single-signature verification
// script of the key: PUSHDATA1 <key> SYSCALL System.Crypto.CheckSig.
func (p *PublicKey) GetVerificationScript() []byte {
	w := io.NewBufBinWriter()
	emit.CheckSig(w.BinWriter, p.Bytes())
	return w.Bytes()
}

// GetScriptHash returns the hash of the key's verification script.
func (p *PublicKey) GetScriptHash() util.Uint160 {
	return hash.Hash160(p.GetVerificationScript())
}

// Address returns the address of the key's standard account.
func (p *PublicKey) Address() string {
	return address.Uint160ToString(p.GetScriptHash())
}

// Verify checks the r||s signature of the digest.
func (p *PublicKey) Verify(signature []byte, digest []byte) bool {
	if p.IsInfinity() || len(signature) != SignatureLen {
		return false
	}
	r := new(big.Int).SetBytes(signature[:SignatureLen/2])
	s := new(big.Int).SetBytes(signature[SignatureLen/2:])
	return ecdsa.Verify((*ecdsa.PublicKey)(p), digest, r, s)
}

// VerifyHashable checks the signature of the network-bound hash of hh.
func (p *PublicKey) VerifyHashable(signature []byte, net uint32, hh hash.Hashable) bool {
	digest := hash.NetSha256(net, hh)
	return p.Verify(signature, digest[:])
}

// MarshalJSON implements the json.Marshaler interface.
func (p PublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.StringCompressed())
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (p *PublicKey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return p.decodeHex(s)
}

// MarshalYAML implements the YAML Marshaler interface.
func (p *PublicKey) MarshalYAML() (any, error) {
	return p.StringCompressed(), nil
}

// UnmarshalYAML implements the YAML Unmarshaler interface.
func (p *PublicKey) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return p.decodeHex(s)
}

func (p *PublicKey) decodeHex(s string) error {
	b, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	return p.DecodeBytes(b)
}
