package transaction

import (
	"bytes"

	"github.com/nspcc-dev/n3sdk/pkg/crypto/hash"
	"github.com/nspcc-dev/n3sdk/pkg/io"
	"github.com/nspcc-dev/n3sdk/pkg/util"
)

// Script size limits, both fit an 11-of-21 committee multisignature.
const (
	MaxInvocationScript   = 1024
	MaxVerificationScript = 1024
)

// Witness proves the signer authorized the transaction: the invocation
// script pushes signatures (or other arguments) for the verification
// script, the hash of the latter is the signer account.
type Witness struct {
	InvocationScript   []byte `json:"invocation"`
	VerificationScript []byte `json:"verification"`
}

// ScriptHash returns the account the witness verifies.
func (w Witness) ScriptHash() util.Uint160 {
	return hash.Hash160(w.VerificationScript)
}

// Size returns the length of the serialized witness.
func (w Witness) Size() int {
	return io.GetVarBytesSize(w.InvocationScript) + io.GetVarBytesSize(w.VerificationScript)
}

// Copy returns a deep copy of w.
func (w Witness) Copy() Witness {
	w.InvocationScript = bytes.Clone(w.InvocationScript)
	w.VerificationScript = bytes.Clone(w.VerificationScript)
	return w
}

// EncodeBinary implements the io.Serializable interface.
func (w *Witness) EncodeBinary(bw *io.BinWriter) {
	bw.WriteVarBytes(w.InvocationScript)
	bw.WriteVarBytes(w.VerificationScript)
}

// DecodeBinary implements the io.Serializable interface.
func (w *Witness) DecodeBinary(br *io.BinReader) {
	w.InvocationScript = br.ReadVarBytes(MaxInvocationScript)
	w.VerificationScript = br.ReadVarBytes(MaxVerificationScript)
}
