// Package emit writes Neo VM instructions into a BinWriter.
package emit

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/nspcc-dev/n3sdk/pkg/core/interop/interopnames"
	"github.com/nspcc-dev/n3sdk/pkg/encoding/bigint"
	"github.com/nspcc-dev/n3sdk/pkg/io"
	"github.com/nspcc-dev/n3sdk/pkg/vm/opcode"
)

// ErrTooBigInteger is returned for integers not fitting into 256 bits.
var ErrTooBigInteger = errors.New("integer is too big to be pushed")

// Instruction writes op followed by its operand.
func Instruction(w *io.BinWriter, op opcode.Opcode, operand []byte) {
	w.WriteB(byte(op))
	w.WriteBytes(operand)
}

// Opcodes writes operand-less instructions.
func Opcodes(w *io.BinWriter, ops ...opcode.Opcode) {
	for _, op := range ops {
		w.WriteB(byte(op))
	}
}

// Bool pushes v as PUSH1 or PUSH0.
func Bool(w *io.BinWriter, v bool) {
	if v {
		Opcodes(w, opcode.PUSH1)
	} else {
		Opcodes(w, opcode.PUSH0)
	}
}

// Int pushes i in the shortest form, see BigInt.
func Int(w *io.BinWriter, i int64) {
	if op, ok := constantOp(i); ok {
		Opcodes(w, op)
		return
	}
	pushInt(w, big.NewInt(i))
}

// BigInt pushes n with PUSHM1 or PUSH0..PUSH16 when possible and with the
// narrowest of PUSHINT8..PUSHINT256 otherwise. Integers needing more than
// 32 bytes set the writer error to ErrTooBigInteger.
func BigInt(w *io.BinWriter, n *big.Int) {
	if n.IsInt64() {
		Int(w, n.Int64())
		return
	}
	pushInt(w, n)
}

func constantOp(i int64) (opcode.Opcode, bool) {
	switch {
	case i == -1:
		return opcode.PUSHM1, true
	case 0 <= i && i <= 16:
		return opcode.PUSH0 + opcode.Opcode(i), true
	}
	return 0, false
}

// pushInt writes the two's complement little-endian form of n sign-extended
// to 1, 2, 4, 8, 16 or 32 bytes.
func pushInt(w *io.BinWriter, n *big.Int) {
	if w.Err != nil {
		return
	}
	b := bigint.ToBytes(n)
	if len(b) > bigint.MaxBytesLen {
		w.Err = fmt.Errorf("%w: %s", ErrTooBigInteger, n)
		return
	}
	op, width := opcode.PUSHINT8, 1
	for width < len(b) {
		op, width = op+1, width*2
	}
	operand := make([]byte, width)
	copy(operand, b)
	if n.Sign() < 0 {
		for i := len(b); i < width; i++ {
			operand[i] = 0xff
		}
	}
	Instruction(w, op, operand)
}

// String pushes the UTF-8 bytes of s.
func String(w *io.BinWriter, s string) {
	Bytes(w, []byte(s))
}

// Bytes pushes b with the smallest of PUSHDATA1, PUSHDATA2 and PUSHDATA4.
func Bytes(w *io.BinWriter, b []byte) {
	switch n := len(b); {
	case n <= 0xff:
		Instruction(w, opcode.PUSHDATA1, []byte{byte(n)})
	case n <= 0xffff:
		w.WriteB(byte(opcode.PUSHDATA2))
		w.WriteU16LE(uint16(n))
	default:
		w.WriteB(byte(opcode.PUSHDATA4))
		w.WriteU32LE(uint32(n))
	}
	w.WriteBytes(b)
}

// Syscall writes SYSCALL with the ID of the named interop.
func Syscall(w *io.BinWriter, api string) {
	if w.Err != nil {
		return
	}
	if api == "" {
		w.Err = errors.New("empty syscall name")
		return
	}
	w.WriteB(byte(opcode.SYSCALL))
	w.WriteU32LE(interopnames.ToID([]byte(api)))
}

// CheckSig writes the standard single-signature verification script of the
// encoded public key.
func CheckSig(w *io.BinWriter, key []byte) {
	Bytes(w, key)
	Syscall(w, interopnames.SystemCryptoCheckSig)
}

// CheckMultisig writes an m-out-of-n verification script. Keys are written
// as given, they're expected to be sorted already.
func CheckMultisig(w *io.BinWriter, m int, keys [][]byte) {
	Int(w, int64(m))
	for _, k := range keys {
		Bytes(w, k)
	}
	Int(w, int64(len(keys)))
	Syscall(w, interopnames.SystemCryptoCheckMultisig)
}
