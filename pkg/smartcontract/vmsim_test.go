package smartcontract

import (
	"encoding/binary"
	"math/big"
	"testing"

	"github.com/nspcc-dev/n3sdk/pkg/core/interop/interopnames"
	"github.com/nspcc-dev/n3sdk/pkg/encoding/bigint"
	"github.com/nspcc-dev/n3sdk/pkg/vm/opcode"
	"github.com/stretchr/testify/require"
)

// simPair is a map entry produced by PACKMAP.
type simPair struct {
	key   any
	value any
}

// simCall is a recorded System.Contract.Call.
type simCall struct {
	hash   []byte
	method string
	flags  int64
	args   []any
}

// simulate runs the subset of the VM needed to check builder output: pushes,
// CAT, PACK, PACKMAP, NEWARRAY0, ASSERT and System.Contract.Call, which is
// recorded instead of being executed and leaves true on the stack.
func simulate(t *testing.T, script []byte) ([]any, []simCall) {
	var (
		stack []any
		calls []simCall
	)
	push := func(v any) { stack = append(stack, v) }
	pop := func() any {
		require.NotEmpty(t, stack, "stack underflow")
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v
	}
	popInt := func() int64 {
		v, ok := pop().(*big.Int)
		require.True(t, ok, "integer expected")
		return v.Int64()
	}
	for ip := 0; ip < len(script); {
		op := opcode.Opcode(script[ip])
		ip++
		switch {
		case op >= opcode.PUSHINT8 && op <= opcode.PUSHINT256:
			n := 1 << (op - opcode.PUSHINT8)
			require.LessOrEqual(t, ip+n, len(script))
			push(bigint.FromBytes(script[ip : ip+n]))
			ip += n
		case op == opcode.PUSHM1:
			push(big.NewInt(-1))
		case op >= opcode.PUSH0 && op <= opcode.PUSH16:
			push(big.NewInt(int64(op - opcode.PUSH0)))
		case op == opcode.PUSHNULL:
			push(nil)
		case op == opcode.PUSHDATA1 || op == opcode.PUSHDATA2 || op == opcode.PUSHDATA4:
			var n int
			switch op {
			case opcode.PUSHDATA1:
				n = int(script[ip])
				ip++
			case opcode.PUSHDATA2:
				n = int(binary.LittleEndian.Uint16(script[ip:]))
				ip += 2
			default:
				n = int(binary.LittleEndian.Uint32(script[ip:]))
				ip += 4
			}
			require.LessOrEqual(t, ip+n, len(script))
			push(append([]byte{}, script[ip:ip+n]...))
			ip += n
		case op == opcode.CAT:
			b := pop().([]byte)
			a := pop().([]byte)
			push(append(append([]byte{}, a...), b...))
		case op == opcode.NEWARRAY0:
			push([]any{})
		case op == opcode.PACK:
			n := popInt()
			arr := make([]any, 0, n)
			for i := int64(0); i < n; i++ {
				arr = append(arr, pop())
			}
			push(arr)
		case op == opcode.PACKMAP:
			n := popInt()
			m := make([]simPair, 0, n)
			for i := int64(0); i < n; i++ {
				k := pop()
				v := pop()
				m = append(m, simPair{key: k, value: v})
			}
			push(m)
		case op == opcode.ASSERT:
			require.Equal(t, true, pop())
		case op == opcode.SYSCALL:
			id := binary.LittleEndian.Uint32(script[ip:])
			ip += 4
			require.Equal(t, interopnames.ToID([]byte(interopnames.SystemContractCall)), id)
			hash := pop().([]byte)
			method := pop().([]byte)
			flags := popInt()
			args := pop().([]any)
			calls = append(calls, simCall{hash: hash, method: string(method), flags: flags, args: args})
			push(true)
		default:
			t.Fatalf("unsupported opcode %s", op)
		}
	}
	return stack, calls
}
