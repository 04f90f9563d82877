package smartcontract

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"

	"github.com/nspcc-dev/n3sdk/pkg/core/interop/interopnames"
	"github.com/nspcc-dev/n3sdk/pkg/io"
	"github.com/nspcc-dev/n3sdk/pkg/smartcontract/callflag"
	"github.com/nspcc-dev/n3sdk/pkg/util"
	"github.com/nspcc-dev/n3sdk/pkg/vm/emit"
	"github.com/nspcc-dev/n3sdk/pkg/vm/opcode"
)

// ScriptBuilder accumulates Neo VM bytecode. All methods return the builder
// itself so that calls can be chained. The first error encountered is kept
// and all subsequent calls are no-ops, the error is returned by Err and
// Script.
type ScriptBuilder struct {
	buf *bytes.Buffer
	w   *io.BinWriter
}

// NewScriptBuilder returns an empty ScriptBuilder.
func NewScriptBuilder() *ScriptBuilder {
	buf := new(bytes.Buffer)
	return &ScriptBuilder{buf: buf, w: io.NewBinWriterFromIO(buf)}
}

// PushInteger pushes an integer using the shortest form: PUSHM1 and
// PUSH0..PUSH16 for small values, PUSHINT8..PUSHINT256 for the rest. Values
// not fitting into 256 bits fail.
func (b *ScriptBuilder) PushInteger(i *big.Int) *ScriptBuilder {
	if b.w.Err != nil {
		return b
	}
	if i == nil {
		b.w.Err = fmt.Errorf("%w: nil integer", ErrInvalidParameter)
		return b
	}
	emit.BigInt(b.w, i)
	return b
}

// PushInt is PushInteger for int64 values.
func (b *ScriptBuilder) PushInt(i int64) *ScriptBuilder {
	if b.w.Err != nil {
		return b
	}
	emit.Int(b.w, i)
	return b
}

// PushBoolean pushes PUSH1 for true and PUSH0 for false.
func (b *ScriptBuilder) PushBoolean(v bool) *ScriptBuilder {
	if b.w.Err != nil {
		return b
	}
	emit.Bool(b.w, v)
	return b
}

// PushData pushes a byte string with PUSHDATA1, PUSHDATA2 or PUSHDATA4
// depending on its length.
func (b *ScriptBuilder) PushData(data []byte) *ScriptBuilder {
	if b.w.Err != nil {
		return b
	}
	emit.Bytes(b.w, data)
	return b
}

// PushString pushes UTF-8 bytes of s.
func (b *ScriptBuilder) PushString(s string) *ScriptBuilder {
	return b.PushData([]byte(s))
}

// PushNull pushes PUSHNULL.
func (b *ScriptBuilder) PushNull() *ScriptBuilder {
	return b.Emit(opcode.PUSHNULL)
}

// PushParameter pushes the parameter value. Arrays are pushed element by
// element in reverse order followed by the count and PACK, maps push their
// pairs in reverse order (value first, then key) followed by the count and
// PACKMAP, so that the VM reconstructs them in the original order. Any and
// Void push null, InteropInterface can't be pushed.
func (b *ScriptBuilder) PushParameter(p Parameter) *ScriptBuilder {
	if b.w.Err != nil {
		return b
	}
	if err := p.Validate(); err != nil {
		b.w.Err = err
		return b
	}
	b.pushParameter(p)
	return b
}

// pushParameter expects p to be valid.
func (b *ScriptBuilder) pushParameter(p Parameter) {
	w := b.w
	switch p.Type {
	case AnyType, VoidType:
		emit.Opcodes(w, opcode.PUSHNULL)
	case BoolType:
		emit.Bool(w, p.Value.(bool))
	case IntegerType:
		emit.BigInt(w, p.Value.(*big.Int))
	case ByteArrayType, SignatureType, PublicKeyType:
		var data, _ = p.Value.([]byte)
		emit.Bytes(w, data)
	case StringType:
		emit.String(w, p.Value.(string))
	case Hash160Type:
		emit.Bytes(w, p.Value.(util.Uint160).BytesBE())
	case Hash256Type:
		emit.Bytes(w, p.Value.(util.Uint256).BytesBE())
	case ArrayType:
		b.pushArray(p.Value.([]Parameter))
	case MapType:
		pairs := p.Value.([]ParameterPair)
		for i := len(pairs) - 1; i >= 0; i-- {
			b.pushParameter(pairs[i].Value)
			b.pushParameter(pairs[i].Key)
		}
		emit.Int(w, int64(len(pairs)))
		emit.Opcodes(w, opcode.PACKMAP)
	case InteropInterfaceType:
		w.Err = fmt.Errorf("%w: %s can't be pushed", ErrInvalidParameter, p.Type)
	default:
		w.Err = fmt.Errorf("%w: unknown type %d", ErrInvalidParameter, int(p.Type))
	}
}

func (b *ScriptBuilder) pushArray(items []Parameter) {
	if len(items) == 0 {
		emit.Opcodes(b.w, opcode.NEWARRAY0)
		return
	}
	for i := len(items) - 1; i >= 0; i-- {
		b.pushParameter(items[i])
	}
	emit.Int(b.w, int64(len(items)))
	emit.Opcodes(b.w, opcode.PACK)
}

// Emit appends the opcode followed by an optional operand.
func (b *ScriptBuilder) Emit(op opcode.Opcode, operand ...byte) *ScriptBuilder {
	if b.w.Err != nil {
		return b
	}
	emit.Instruction(b.w, op, operand)
	return b
}

// EmitSyscall appends SYSCALL with the interop ID of the given name.
func (b *ScriptBuilder) EmitSyscall(name string) *ScriptBuilder {
	if b.w.Err != nil {
		return b
	}
	emit.Syscall(b.w, name)
	return b
}

// ContractCall emits a System.Contract.Call of the given method. Arguments
// are pushed in reverse order and packed into an array, so that the first one
// becomes the first element of the array the callee receives.
func (b *ScriptBuilder) ContractCall(hash util.Uint160, method string, args []Parameter, flags callflag.CallFlag) *ScriptBuilder {
	if b.w.Err != nil {
		return b
	}
	if len(method) == 0 {
		b.w.Err = errors.New("empty method name")
		return b
	}
	if flags&^callflag.All != 0 {
		b.w.Err = fmt.Errorf("invalid call flags %d", flags)
		return b
	}
	for i := range args {
		if err := args[i].Validate(); err != nil {
			b.w.Err = fmt.Errorf("argument %d: %w", i, err)
			return b
		}
	}
	w := b.w
	for i := len(args) - 1; i >= 0; i-- {
		b.pushParameter(args[i])
	}
	emit.Int(w, int64(len(args)))
	emit.Opcodes(w, opcode.PACK)
	emit.Int(w, int64(flags))
	emit.String(w, method)
	emit.Bytes(w, hash.BytesBE())
	emit.Syscall(w, interopnames.SystemContractCall)
	return b
}

// Err returns the first error that occurred while building.
func (b *ScriptBuilder) Err() error {
	return b.w.Err
}

// Script returns a copy of the script built so far or the first error.
func (b *ScriptBuilder) Script() ([]byte, error) {
	if b.w.Err != nil {
		return nil, b.w.Err
	}
	return b.Bytes(), nil
}

// Bytes returns a copy of the script built so far. It returns nil if the
// builder is in error state.
func (b *ScriptBuilder) Bytes() []byte {
	if b.w.Err != nil {
		return nil
	}
	return bytes.Clone(b.buf.Bytes())
}

// Len returns the current script length.
func (b *ScriptBuilder) Len() int {
	return b.buf.Len()
}

// Reset clears both the script and the error.
func (b *ScriptBuilder) Reset() {
	b.buf.Reset()
	b.w.Err = nil
}
