package fee

import (
	"github.com/nspcc-dev/n3sdk/pkg/vm/opcode"
)

// Opcode returns the execution price of the specified opcodes multiplied by
// the execution fee factor. Only the opcodes standard verification and
// invocation scripts consist of are priced, SYSCALL price depends on the
// interop called and is not included.
func Opcode(base int64, opcodes ...opcode.Opcode) int64 {
	var result int64
	for _, op := range opcodes {
		result += coefficients[op]
	}
	return result * base
}

// Execution price units, a unit is multiplied by the fee factor.
const (
	priceCheap  = 1 << 0
	priceBigInt = 1 << 2
	priceData1  = 1 << 3
	priceData2  = 1 << 9
	priceData4  = 1 << 12
)

var coefficients [256]int64

func init() {
	for op := opcode.PUSHM1; op <= opcode.PUSH16; op++ {
		coefficients[op] = priceCheap
	}
	for _, op := range []opcode.Opcode{
		opcode.PUSHINT8, opcode.PUSHINT16, opcode.PUSHINT32, opcode.PUSHINT64,
		opcode.PUSHT, opcode.PUSHF, opcode.PUSHNULL, opcode.NOP, opcode.ASSERT,
	} {
		coefficients[op] = priceCheap
	}
	for _, op := range []opcode.Opcode{opcode.PUSHINT128, opcode.PUSHINT256, opcode.PUSHA} {
		coefficients[op] = priceBigInt
	}
	coefficients[opcode.PUSHDATA1] = priceData1
	coefficients[opcode.PUSHDATA2] = priceData2
	coefficients[opcode.PUSHDATA4] = priceData4
}
