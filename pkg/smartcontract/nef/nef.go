// Package nef implements the NEO Executable Format of contract state
// returned by nodes.
//
// A NEF file is laid out as follows, integers are little-endian:
//
//	magic     uint32, always Magic
//	compiler  64 bytes, zero-padded
//	source    var string, up to MaxSourceURLLength
//	reserved  1 zero byte
//	tokens    var array of MethodToken, up to 128
//	reserved  2 zero bytes
//	script    var bytes, non-empty, up to MaxScriptLength
//	checksum  uint32, first 4 bytes of double SHA-256 of everything above
package nef

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nspcc-dev/n3sdk/pkg/crypto/hash"
	"github.com/nspcc-dev/n3sdk/pkg/io"
)

const (
	// Magic is the NEF3 header signature ("NEF3").
	Magic uint32 = 0x3346454E
	// MaxScriptLength is the maximum allowed contract script length.
	MaxScriptLength = 512 * 1024
	// MaxSourceURLLength is the maximum allowed source URL length.
	MaxSourceURLLength = 256

	compilerFieldSize = 64
	maxTokens         = 128
)

var (
	// ErrInvalidMagic is returned for data not starting with Magic.
	ErrInvalidMagic = errors.New("invalid NEF magic")
	// ErrChecksum is returned when the stored checksum doesn't match the
	// contents.
	ErrChecksum = errors.New("NEF checksum mismatch")

	errReserved    = errors.New("reserved bytes must be 0")
	errEmptyScript = errors.New("empty script")
)

// File is a NEF3 contract file.
type File struct {
	Header
	Source   string        `json:"source"`
	Tokens   []MethodToken `json:"tokens"`
	Script   []byte        `json:"script"`
	Checksum uint32        `json:"checksum"`
}

// Header is the fixed-size part of File.
type Header struct {
	Magic    uint32 `json:"magic"`
	Compiler string `json:"compiler"`
}

// NewFile makes a File with no tokens for the script and fills its checksum.
func NewFile(compiler string, script []byte) (*File, error) {
	if len(compiler) > compilerFieldSize {
		return nil, fmt.Errorf("compiler name is longer than %d bytes", compilerFieldSize)
	}
	f := &File{
		Header: Header{Magic: Magic, Compiler: compiler},
		Tokens: []MethodToken{},
		Script: script,
	}
	f.Checksum = f.CalculateChecksum()
	return f, nil
}

// EncodeBinary implements the io.Serializable interface.
func (h *Header) EncodeBinary(w *io.BinWriter) {
	if len(h.Compiler) > compilerFieldSize {
		w.Err = fmt.Errorf("compiler name is longer than %d bytes", compilerFieldSize)
		return
	}
	var field [compilerFieldSize]byte
	copy(field[:], h.Compiler)
	w.WriteU32LE(h.Magic)
	w.WriteBytes(field[:])
}

// DecodeBinary implements the io.Serializable interface.
func (h *Header) DecodeBinary(r *io.BinReader) {
	h.Magic = r.ReadU32LE()
	if r.Err == nil && h.Magic != Magic {
		r.Err = ErrInvalidMagic
		return
	}
	var field [compilerFieldSize]byte
	r.ReadBytes(field[:])
	h.Compiler = string(bytes.TrimRight(field[:], "\x00"))
}

// CalculateChecksum returns the checksum of the serialized file without
// its checksum field. It panics if the file can't be serialized.
func (n *File) CalculateChecksum() uint32 {
	buf := io.NewBufBinWriter()
	n.encodeContents(buf.BinWriter)
	if buf.Err != nil {
		panic(buf.Err)
	}
	return binary.LittleEndian.Uint32(hash.Checksum(buf.Bytes()))
}

// encodeContents writes everything but the checksum.
func (n *File) encodeContents(w *io.BinWriter) {
	if len(n.Source) > MaxSourceURLLength {
		w.Err = fmt.Errorf("source URL is longer than %d bytes", MaxSourceURLLength)
		return
	}
	n.Header.EncodeBinary(w)
	w.WriteString(n.Source)
	w.WriteB(0)
	w.WriteVarUint(uint64(len(n.Tokens)))
	for i := range n.Tokens {
		n.Tokens[i].EncodeBinary(w)
	}
	w.WriteU16LE(0)
	w.WriteVarBytes(n.Script)
}

// EncodeBinary implements the io.Serializable interface.
func (n *File) EncodeBinary(w *io.BinWriter) {
	n.encodeContents(w)
	w.WriteU32LE(n.Checksum)
}

// DecodeBinary implements the io.Serializable interface.
func (n *File) DecodeBinary(r *io.BinReader) {
	n.Header.DecodeBinary(r)
	n.Source = r.ReadString(MaxSourceURLLength)
	decodeReserved(r, uint16(r.ReadB()))

	count := r.ReadVarUint()
	if r.Err == nil && count > maxTokens {
		r.Err = fmt.Errorf("too many method tokens: %d", count)
	}
	if r.Err != nil {
		return
	}
	n.Tokens = make([]MethodToken, count)
	for i := range n.Tokens {
		n.Tokens[i].DecodeBinary(r)
	}
	decodeReserved(r, r.ReadU16LE())

	n.Script = r.ReadVarBytes(MaxScriptLength)
	if r.Err == nil && len(n.Script) == 0 {
		r.Err = errEmptyScript
	}
	n.Checksum = r.ReadU32LE()
	if r.Err == nil && n.Checksum != n.CalculateChecksum() {
		r.Err = ErrChecksum
	}
}

func decodeReserved(r *io.BinReader, v uint16) {
	if r.Err == nil && v != 0 {
		r.Err = errReserved
	}
}

// Bytes returns the serialized file.
func (n File) Bytes() ([]byte, error) {
	buf := io.NewBufBinWriter()
	n.EncodeBinary(buf.BinWriter)
	if buf.Err != nil {
		return nil, buf.Err
	}
	return buf.Bytes(), nil
}

// FileFromBytes decodes a serialized file and verifies its checksum.
func FileFromBytes(data []byte) (File, error) {
	var f File
	r := io.NewBinReaderFromBuf(data)
	f.DecodeBinary(r)
	return f, r.Err
}

// UnmarshalJSON implements the json.Unmarshaler interface, the checksum is
// verified.
func (n *File) UnmarshalJSON(data []byte) error {
	type fileAux File
	var aux fileAux
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	f := File(aux)
	if f.Magic != Magic {
		return ErrInvalidMagic
	}
	if f.Tokens == nil {
		f.Tokens = []MethodToken{}
	}
	if f.Checksum != f.CalculateChecksum() {
		return ErrChecksum
	}
	*n = f
	return nil
}
