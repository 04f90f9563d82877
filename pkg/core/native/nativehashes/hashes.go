// Package nativehashes contains hashes of the N3 native contracts. Native
// contract hashes don't depend on the network, so they're the same for
// MainNet, TestNet and private networks.
package nativehashes

import (
	"github.com/nspcc-dev/n3sdk/pkg/util"
)

// Hashes of native contracts.
var (
	Management  = mustDecode("fffdc93764dbaddd97c48f252a53ea4643faa3fd")
	StdLib      = mustDecode("acce6fd80d44e1796aa0c2c625e9e4e0ce39efc0")
	CryptoLib   = mustDecode("726cb6e0cd8628a1350a611384688911ab75f51b")
	Ledger      = mustDecode("da65b600f7124ce6c79950c1772a36403104f2be")
	Neo         = mustDecode("ef4073a0f2b305a38ec4050e4d3d28bc40ea63f5")
	Gas         = mustDecode("d2a4cff31913016155e38e474a2c06d08be276cf")
	Policy      = mustDecode("cc5e4edd9f5f8dba8bb65734541df7a1c081c67b")
	Designation = mustDecode("49cf4e5378ffcd4dec034fd98a174c5491e395e2")
	Oracle      = mustDecode("fe924b7cfe89ddd271abaf7210a80a7e11178758")
	Notary      = mustDecode("c1e14f19c3e60d0b9244d06dd7ba9b113135ec3b")
)

func mustDecode(s string) util.Uint160 {
	u, err := util.Uint160DecodeStringLE(s)
	if err != nil {
		panic(err)
	}
	return u
}
