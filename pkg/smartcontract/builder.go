package smartcontract

import (
	"github.com/nspcc-dev/n3sdk/pkg/smartcontract/callflag"
	"github.com/nspcc-dev/n3sdk/pkg/util"
	"github.com/nspcc-dev/n3sdk/pkg/vm/opcode"
)

// Builder composes entry scripts of transactions out of contract calls.
// Arguments are plain Go values (see NewParameterFromValue) and every call
// is made with callflag.All. Results of the calls stay on the stack, what
// the script does as a whole is up to the caller.
type Builder struct {
	sb *ScriptBuilder
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{sb: NewScriptBuilder()}
}

// InvokeMethod emits a call of the contract method with params packed into
// an array. Neither the parameters nor the method are checked against the
// contract.
func (b *Builder) InvokeMethod(contract util.Uint160, method string, params ...any) {
	if b.sb.Err() != nil {
		return
	}
	args, err := NewParametersFromValues(params...)
	if err != nil {
		b.sb.w.Err = err
		return
	}
	b.sb.ContractCall(contract, method, args, callflag.All)
}

// Assert emits ASSERT, the script FAULTs unless the top stack item is true.
func (b *Builder) Assert() {
	b.sb.Emit(opcode.ASSERT)
}

// InvokeWithAssert is InvokeMethod followed by Assert, for methods that
// report failure by returning false (like NEP-17 transfer). The whole
// transaction then FAULTs if the call fails.
func (b *Builder) InvokeWithAssert(contract util.Uint160, method string, params ...any) {
	b.InvokeMethod(contract, method, params...)
	b.Assert()
}

// Len returns the script length so far.
func (b *Builder) Len() int { return b.sb.Len() }

// Script returns the script or the first error met while building it.
func (b *Builder) Script() ([]byte, error) { return b.sb.Script() }

// Reset empties the Builder so it can make another script.
func (b *Builder) Reset() { b.sb.Reset() }
