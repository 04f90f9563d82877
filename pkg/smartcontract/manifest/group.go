package manifest

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/nspcc-dev/n3sdk/pkg/crypto/hash"
	"github.com/nspcc-dev/n3sdk/pkg/crypto/keys"
	"github.com/nspcc-dev/n3sdk/pkg/util"
)

// Group is a contract group membership proof: the group key signs the
// contract hash.
type Group struct {
	PublicKey *keys.PublicKey `json:"pubkey"`
	Signature []byte          `json:"signature"`
}

type groupAux struct {
	PublicKey string `json:"pubkey"`
	Signature []byte `json:"signature"`
}

// IsValid checks the group signature against the contract hash.
func (g *Group) IsValid(h util.Uint160) error {
	if g.PublicKey == nil || !g.PublicKey.Verify(g.Signature, hash.Sha256(h.BytesBE()).BytesBE()) {
		return fmt.Errorf("bad signature of group %s", g.keyString())
	}
	return nil
}

func (g *Group) keyString() string {
	if g.PublicKey == nil {
		return "<nil>"
	}
	return g.PublicKey.StringCompressed()
}

// MarshalJSON implements the json.Marshaler interface.
func (g Group) MarshalJSON() ([]byte, error) {
	return json.Marshal(groupAux{
		PublicKey: hex.EncodeToString(g.PublicKey.Bytes()),
		Signature: g.Signature,
	})
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (g *Group) UnmarshalJSON(data []byte) error {
	var aux groupAux
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(aux.Signature) != keys.SignatureLen {
		return fmt.Errorf("group signature is %d bytes long", len(aux.Signature))
	}
	pub, err := keys.NewPublicKeyFromString(aux.PublicKey)
	if err != nil {
		return err
	}
	g.PublicKey, g.Signature = pub, aux.Signature
	return nil
}
