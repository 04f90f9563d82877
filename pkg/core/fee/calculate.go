// Package fee contains the network fee arithmetic for standard verification
// scripts.
package fee

import (
	"github.com/nspcc-dev/n3sdk/pkg/io"
	"github.com/nspcc-dev/n3sdk/pkg/vm"
	"github.com/nspcc-dev/n3sdk/pkg/vm/emit"
	"github.com/nspcc-dev/n3sdk/pkg/vm/opcode"
)

const (
	// ECDSAVerifyPrice is a gas price of a single verification.
	ECDSAVerifyPrice = 1 << 15
	// DefaultExecFeeFactor is the execution fee factor used by public
	// networks unless the Policy contract says otherwise.
	DefaultExecFeeFactor = 30
	// DefaultFeePerByte is the per-byte network fee of public networks.
	DefaultFeePerByte = 1000
)

// Calculate returns the network fee needed to verify a witness with the given
// verification script and the size of the witness (both scripts with their
// length prefixes). Only signature and multisignature contracts are known,
// zero fee and size are returned for any other script.
func Calculate(base int64, script []byte) (int64, int) {
	var (
		netFee int64
		size   int
	)
	if vm.IsSignatureContract(script) {
		size += 67 + io.GetVarBytesSize(script)
		netFee += Opcode(base, opcode.PUSHDATA1, opcode.PUSHDATA1) + base*ECDSAVerifyPrice
	} else if m, pubs, ok := vm.ParseMultiSigContract(script); ok {
		n := len(pubs)
		sizeInv := 66 * m
		size += io.GetVarSize(uint64(sizeInv)) + sizeInv + io.GetVarBytesSize(script)
		netFee += calculateMultisig(base, m) + calculateMultisig(base, n)
		netFee += base * ECDSAVerifyPrice * int64(n)
	}
	return netFee, size
}

func calculateMultisig(base int64, n int) int64 {
	result := Opcode(base, opcode.PUSHDATA1) * int64(n)
	bw := io.NewBufBinWriter()
	emit.Int(bw.BinWriter, int64(n))
	// Small PUSH* opcodes share the same price, the first byte is enough.
	result += Opcode(base, opcode.Opcode(bw.Bytes()[0]))
	return result
}

// NetworkFee returns the full network fee of a transaction of the given size
// (witnesses included) verified by the given scripts.
func NetworkFee(feePerByte, base int64, size int, verificationScripts ...[]byte) int64 {
	fee := feePerByte * int64(size)
	for _, s := range verificationScripts {
		f, _ := Calculate(base, s)
		fee += f
	}
	return fee
}
