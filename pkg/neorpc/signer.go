package neorpc

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nspcc-dev/n3sdk/pkg/core/transaction"
	"github.com/nspcc-dev/n3sdk/pkg/encoding/address"
	"github.com/nspcc-dev/n3sdk/pkg/util"
)

// SignerWithWitness is a signer accompanied by its witness, used by
// invokecontractverify.
type SignerWithWitness struct {
	transaction.Signer
	transaction.Witness
}

// signerWithWitnessJSON flattens both parts into one object, empty scripts
// are omitted.
type signerWithWitnessJSON struct {
	transaction.Signer
	Invocation   []byte `json:"invocation,omitempty"`
	Verification []byte `json:"verification,omitempty"`
}

// MarshalJSON implements the json.Marshaler interface.
func (s *SignerWithWitness) MarshalJSON() ([]byte, error) {
	return json.Marshal(signerWithWitnessJSON{
		Signer:       s.Signer,
		Invocation:   s.InvocationScript,
		Verification: s.VerificationScript,
	})
}

// UnmarshalJSON implements the json.Unmarshaler interface. The account may
// be given as a script hash (with or without 0x) or as an address.
func (s *SignerWithWitness) UnmarshalJSON(data []byte) error {
	var aux struct {
		Account string `json:"account"`
		signerWithWitnessJSON
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("not a signer: %w", err)
	}
	acc, err := util.Uint160DecodeStringLE(strings.TrimPrefix(aux.Account, "0x"))
	if err != nil {
		if acc, err = address.StringToUint160(aux.Account); err != nil {
			return fmt.Errorf("not a signer: bad account %q", aux.Account)
		}
	}
	s.Signer = aux.Signer
	s.Account = acc
	s.Witness = transaction.Witness{
		InvocationScript:   aux.Invocation,
		VerificationScript: aux.Verification,
	}
	return nil
}
