package smartcontract

import (
	"fmt"

	"github.com/nspcc-dev/n3sdk/pkg/crypto/keys"
	"github.com/nspcc-dev/n3sdk/pkg/vm/emit"
)

// MaxMultisigKeys is the maximum number of keys in a standard multisignature
// contract.
const MaxMultisigKeys = 16

// CreateSignatureRedeemScript creates a check signature script runnable by the VM.
func CreateSignatureRedeemScript(key *keys.PublicKey) []byte {
	return key.GetVerificationScript()
}

// CreateMultiSigRedeemScript creates an "m out of n" type verification script
// where n is the length of publicKeys. Keys are sorted before being written.
func CreateMultiSigRedeemScript(m int, publicKeys keys.PublicKeys) ([]byte, error) {
	if m < 1 {
		return nil, fmt.Errorf("param m cannot be smaller than 1, got %d", m)
	}
	if m > len(publicKeys) {
		return nil, fmt.Errorf("length of the signatures (%d) is higher then the number of public keys", m)
	}
	if len(publicKeys) > MaxMultisigKeys {
		return nil, fmt.Errorf("public key count %d exceeds maximum of %d", len(publicKeys), MaxMultisigKeys)
	}

	sorted := publicKeys.Sorted()
	raw := make([][]byte, len(sorted))
	for i, pub := range sorted {
		raw[i] = pub.Bytes()
	}
	script := NewScriptBuilder()
	emit.CheckMultisig(script.w, m, raw)
	return script.Script()
}

// CreateDefaultMultiSigRedeemScript creates an "m out of n" type verification script
// using publicKeys length with the default BFT assumptions of (n - (n-1)/3) for m.
func CreateDefaultMultiSigRedeemScript(publicKeys keys.PublicKeys) ([]byte, error) {
	n := len(publicKeys)
	m := GetDefaultHonestNodeCount(n)
	return CreateMultiSigRedeemScript(m, publicKeys)
}

// CreateMajorityMultiSigRedeemScript creates an "m out of n" type verification script
// using publicKeys length with m set to majority.
func CreateMajorityMultiSigRedeemScript(publicKeys keys.PublicKeys) ([]byte, error) {
	n := len(publicKeys)
	m := GetMajorityHonestNodeCount(n)
	return CreateMultiSigRedeemScript(m, publicKeys)
}

// GetDefaultHonestNodeCount returns minimum number of honest nodes
// required for network of size n.
func GetDefaultHonestNodeCount(n int) int {
	return n - (n-1)/3
}

// GetMajorityHonestNodeCount returns minimum number of honest nodes
// required for majority-style agreement.
func GetMajorityHonestNodeCount(n int) int {
	return n - (n-1)/2
}
