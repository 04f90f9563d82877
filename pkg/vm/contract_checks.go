// Package vm contains helpers recognizing standard verification scripts.
package vm

import (
	"encoding/binary"

	"github.com/nspcc-dev/n3sdk/pkg/core/interop/interopnames"
	"github.com/nspcc-dev/n3sdk/pkg/vm/opcode"
)

// MaxMultisigKeys is the maximum number of keys allowed for a correct
// multisignature contract.
const MaxMultisigKeys = 1024

var (
	verifyInteropID   = interopnames.ToID([]byte(interopnames.SystemCryptoCheckSig))
	multisigInteropID = interopnames.ToID([]byte(interopnames.SystemCryptoCheckMultisig))
)

// getNumOfThingsFromInstr parses an integer push at the beginning of script
// and returns the number and the instruction length.
func getNumOfThingsFromInstr(script []byte) (int, int, bool) {
	if len(script) == 0 {
		return 0, 0, false
	}
	var (
		nthings int
		size    = 1
		op      = opcode.Opcode(script[0])
	)

	switch {
	case opcode.PUSH1 <= op && op <= opcode.PUSH16:
		nthings = int(op-opcode.PUSH1) + 1
	case op == opcode.PUSHINT8:
		if len(script) < 2 {
			return 0, 0, false
		}
		nthings = int(script[1])
		size = 2
	case op == opcode.PUSHINT16:
		if len(script) < 3 {
			return 0, 0, false
		}
		nthings = int(binary.LittleEndian.Uint16(script[1:]))
		size = 3
	default:
		return 0, 0, false
	}
	if nthings < 1 || nthings > MaxMultisigKeys {
		return 0, 0, false
	}
	return nthings, size, true
}

// IsMultiSigContract checks whether the passed script is a multi-signature
// contract.
func IsMultiSigContract(script []byte) bool {
	_, _, ok := ParseMultiSigContract(script)
	return ok
}

// ParseMultiSigContract returns the number of signatures and a list of public keys
// from the verification script of the contract.
func ParseMultiSigContract(script []byte) (int, [][]byte, bool) {
	nsigs, ip, ok := getNumOfThingsFromInstr(script)
	if !ok {
		return 0, nil, false
	}
	var pubs [][]byte
	for ip+35 <= len(script) && script[ip] == byte(opcode.PUSHDATA1) && script[ip+1] == 33 {
		pubs = append(pubs, script[ip+2:ip+35])
		ip += 35
		if len(pubs) > MaxMultisigKeys {
			return 0, nil, false
		}
	}
	if len(pubs) < nsigs {
		return 0, nil, false
	}
	nkeys, size, ok := getNumOfThingsFromInstr(script[ip:])
	if !ok || nkeys != len(pubs) {
		return 0, nil, false
	}
	ip += size
	if len(script) != ip+5 || script[ip] != byte(opcode.SYSCALL) ||
		binary.LittleEndian.Uint32(script[ip+1:]) != multisigInteropID {
		return 0, nil, false
	}
	return nsigs, pubs, true
}

// IsSignatureContract checks whether the passed script is a signature check
// contract.
func IsSignatureContract(script []byte) bool {
	_, ok := ParseSignatureContract(script)
	return ok
}

// ParseSignatureContract parses a simple signature contract and returns
// a public key.
func ParseSignatureContract(script []byte) ([]byte, bool) {
	if len(script) != 40 {
		return nil, false
	}
	if script[0] != byte(opcode.PUSHDATA1) || script[1] != 33 ||
		script[35] != byte(opcode.SYSCALL) ||
		binary.LittleEndian.Uint32(script[36:]) != verifyInteropID {
		return nil, false
	}
	return script[2:35], true
}

// IsStandardContract checks whether the passed script is a signature or
// multi-signature contract.
func IsStandardContract(script []byte) bool {
	return IsSignatureContract(script) || IsMultiSigContract(script)
}
