package io

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

// ErrDrained is returned on an attempt to use an already drained write buffer.
var ErrDrained = errors.New("buffer already drained")

// BinWriter writes Neo binary encoding into an io.Writer. The first write
// error is kept in Err and every subsequent write is a no-op, so callers
// check Err once after writing the whole structure.
type BinWriter struct {
	w   io.Writer
	Err error
	tmp [9]byte
}

// BufBinWriter is a BinWriter over its own buffer, the result is taken
// with Bytes.
type BufBinWriter struct {
	*BinWriter
	buf bytes.Buffer
}

// NewBinWriterFromIO makes a BinWriter from io.Writer.
func NewBinWriterFromIO(iow io.Writer) *BinWriter {
	return &BinWriter{w: iow}
}

// NewBufBinWriter makes a BufBinWriter with an empty byte buffer.
func NewBufBinWriter() *BufBinWriter {
	b := new(BufBinWriter)
	b.BinWriter = NewBinWriterFromIO(&b.buf)
	return b
}

// Len returns the number of bytes written so far.
func (bw *BufBinWriter) Len() int {
	return bw.buf.Len()
}

// Bytes returns the resulting buffer (nil if any write failed). The writer
// can't be used after this call until Reset.
func (bw *BufBinWriter) Bytes() []byte {
	if bw.Err != nil {
		return nil
	}
	bw.Err = ErrDrained
	return bw.buf.Bytes()
}

// Reset makes the writer usable again, the buffer returned by Bytes is
// reused, so it must be copied if needed.
func (bw *BufBinWriter) Reset() {
	bw.Err = nil
	bw.buf.Reset()
}

// WriteBytes writes b as is.
func (w *BinWriter) WriteBytes(b []byte) {
	if w.Err == nil {
		_, w.Err = w.w.Write(b)
	}
}

// WriteB writes a single byte.
func (w *BinWriter) WriteB(b byte) {
	w.tmp[0] = b
	w.WriteBytes(w.tmp[:1])
}

// WriteBool writes b as 0 or 1 byte.
func (w *BinWriter) WriteBool(b bool) {
	if b {
		w.WriteB(1)
	} else {
		w.WriteB(0)
	}
}

// WriteU16LE writes a little-endian uint16.
func (w *BinWriter) WriteU16LE(v uint16) {
	w.WriteBytes(binary.LittleEndian.AppendUint16(w.tmp[:0], v))
}

// WriteU32LE writes a little-endian uint32.
func (w *BinWriter) WriteU32LE(v uint32) {
	w.WriteBytes(binary.LittleEndian.AppendUint32(w.tmp[:0], v))
}

// WriteU64LE writes a little-endian uint64.
func (w *BinWriter) WriteU64LE(v uint64) {
	w.WriteBytes(binary.LittleEndian.AppendUint64(w.tmp[:0], v))
}

// WriteVarUint writes v using the variable-length integer encoding.
func (w *BinWriter) WriteVarUint(v uint64) {
	w.WriteBytes(w.tmp[:PutVarUint(w.tmp[:], v)])
}

// WriteVarBytes writes b prefixed with its length.
func (w *BinWriter) WriteVarBytes(b []byte) {
	w.WriteVarUint(uint64(len(b)))
	w.WriteBytes(b)
}

// WriteString writes s prefixed with its length.
func (w *BinWriter) WriteString(s string) {
	w.WriteVarUint(uint64(len(s)))
	if w.Err == nil {
		_, w.Err = io.WriteString(w.w, s)
	}
}

// WriteArray writes arr prefixed with its length, nil and empty slices are
// encoded the same way.
func WriteArray[Slice ~[]E, E encodable](w *BinWriter, arr Slice) {
	w.WriteVarUint(uint64(len(arr)))
	for _, e := range arr {
		e.EncodeBinary(w)
	}
}

// PutVarUint encodes v into data (which must be at least 9 bytes long) and
// returns the number of bytes used. Values below 0xfd take a single byte,
// larger ones get a 0xfd, 0xfe or 0xff marker followed by 2, 4 or 8 bytes.
func PutVarUint(data []byte, v uint64) int {
	_ = data[8]
	switch {
	case v < 0xfd:
		data[0] = byte(v)
		return 1
	case v <= 0xffff:
		data[0] = 0xfd
		binary.LittleEndian.PutUint16(data[1:], uint16(v))
		return 3
	case v <= 0xffffffff:
		data[0] = 0xfe
		binary.LittleEndian.PutUint32(data[1:], uint32(v))
		return 5
	default:
		data[0] = 0xff
		binary.LittleEndian.PutUint64(data[1:], v)
		return 9
	}
}
