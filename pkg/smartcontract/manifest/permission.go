package manifest

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nspcc-dev/n3sdk/pkg/crypto/keys"
	"github.com/nspcc-dev/n3sdk/pkg/util"
)

var wildcardJSON = []byte(`"*"`)

// Wildcard is a JSON list that can also be "*", meaning any value.
type Wildcard[T any] struct {
	Any    bool
	Values []T
}

// Permission lists methods a contract is allowed to call on other contracts.
type Permission struct {
	Contract PermissionDesc   `json:"contract"`
	Methods  Wildcard[string] `json:"methods"`
}

// PermissionDesc selects contracts either by hash or by group key, the zero
// value selects any contract.
type PermissionDesc struct {
	Hash  *util.Uint160
	Group *keys.PublicKey
}

// NewPermission returns a permission for any method of the contracts
// selected by d.
func NewPermission(d PermissionDesc) Permission {
	return Permission{Contract: d, Methods: Wildcard[string]{Any: true}}
}

// ByHash returns a descriptor selecting the contract with the given hash.
func ByHash(h util.Uint160) PermissionDesc {
	return PermissionDesc{Hash: &h}
}

// ByGroup returns a descriptor selecting the contracts of the given group.
func ByGroup(k *keys.PublicKey) PermissionDesc {
	return PermissionDesc{Group: k}
}

// IsWildcard tells whether d selects any contract.
func (d PermissionDesc) IsWildcard() bool {
	return d.Hash == nil && d.Group == nil
}

// Equals checks whether both descriptors select the same contracts.
func (d PermissionDesc) Equals(o PermissionDesc) bool {
	switch {
	case d.Hash != nil:
		return o.Hash != nil && d.Hash.Equals(*o.Hash)
	case d.Group != nil:
		return o.Group != nil && d.Group.Equal(o.Group)
	default:
		return o.IsWildcard()
	}
}

// MarshalJSON implements the json.Marshaler interface.
func (d PermissionDesc) MarshalJSON() ([]byte, error) {
	switch {
	case d.Hash != nil:
		return json.Marshal("0x" + d.Hash.StringLE())
	case d.Group != nil:
		return json.Marshal(hex.EncodeToString(d.Group.Bytes()))
	default:
		return wildcardJSON, nil
	}
}

// UnmarshalJSON implements the json.Unmarshaler interface. Hashes are
// accepted with and without the 0x prefix.
func (d *PermissionDesc) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*d = PermissionDesc{}
	if s == "*" {
		return nil
	}
	if len(s) == 2*keys.PublicKeySize {
		pub, err := keys.NewPublicKeyFromString(s)
		if err != nil {
			return fmt.Errorf("group permission: %w", err)
		}
		d.Group = pub
		return nil
	}
	if hs, ok := strings.CutPrefix(s, "0x"); ok || len(s) == 2*util.Uint160Size {
		h, err := util.Uint160DecodeStringLE(hs)
		if err != nil {
			return fmt.Errorf("hash permission: %w", err)
		}
		d.Hash = &h
		return nil
	}
	return fmt.Errorf("unknown permission %q", s)
}

// Contains checks whether v is in the list, eq compares elements.
func (w Wildcard[T]) Contains(eq func(T) bool) bool {
	if w.Any {
		return true
	}
	for _, v := range w.Values {
		if eq(v) {
			return true
		}
	}
	return false
}

// MarshalJSON implements the json.Marshaler interface.
func (w Wildcard[T]) MarshalJSON() ([]byte, error) {
	if w.Any {
		return wildcardJSON, nil
	}
	if w.Values == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(w.Values)
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (w *Wildcard[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, wildcardJSON) {
		*w = Wildcard[T]{Any: true}
		return nil
	}
	vals := []T{}
	if err := json.Unmarshal(data, &vals); err != nil {
		return err
	}
	if vals == nil {
		vals = []T{}
	}
	*w = Wildcard[T]{Values: vals}
	return nil
}

func (p Permission) isValid() error {
	seen := make(map[string]struct{}, len(p.Methods.Values))
	for _, m := range p.Methods.Values {
		if m == "" {
			return errors.New("empty method name")
		}
		if _, ok := seen[m]; ok {
			return fmt.Errorf("method %s is repeated", m)
		}
		seen[m] = struct{}{}
	}
	return nil
}
