package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/nspcc-dev/n3sdk/pkg/util"
)

const (
	// MaxManifestSize is the max length for a valid contract manifest.
	MaxManifestSize = math.MaxUint16

	// NEP17StandardName represents the name of NEP-17 smartcontract standard.
	NEP17StandardName = "NEP-17"
	// NEP11StandardName represents the name of NEP-11 smartcontract standard.
	NEP11StandardName = "NEP-11"
)

// Manifest represents contract metadata as returned by getcontractstate.
type Manifest struct {
	Name               string                   `json:"name"`
	Groups             []Group                  `json:"groups"`
	Features           json.RawMessage          `json:"features"`
	SupportedStandards []string                 `json:"supportedstandards"`
	ABI                ABI                      `json:"abi"`
	Permissions        []Permission             `json:"permissions"`
	Trusts             Wildcard[PermissionDesc] `json:"trusts"`
	// Extra is an implementation-defined user data.
	Extra json.RawMessage `json:"extra"`
}

var emptyFeatures = json.RawMessage("{}")

// NewManifest returns a manifest with every collection initialized to an
// empty one, it allows no calls.
func NewManifest(name string) *Manifest {
	return &Manifest{
		Name:               name,
		Groups:             []Group{},
		Features:           emptyFeatures,
		SupportedStandards: []string{},
		ABI:                ABI{Methods: []Method{}, Events: []Event{}},
		Permissions:        []Permission{},
		Trusts:             Wildcard[PermissionDesc]{Values: []PermissionDesc{}},
		Extra:              json.RawMessage("null"),
	}
}

// DefaultManifest returns a manifest allowing to call anything.
func DefaultManifest(name string) *Manifest {
	m := NewManifest(name)
	m.Permissions = []Permission{NewPermission(PermissionDesc{})}
	return m
}

// IsStandardSupported denotes whether the specified standard is supported by the contract.
func (m *Manifest) IsStandardSupported(standard string) bool {
	return slices.Contains(m.SupportedStandards, standard)
}

// TokenStandard returns the first token standard (NEP-17 or NEP-11) listed
// by the contract or an empty string if it's not a token.
func (m *Manifest) TokenStandard() string {
	for _, st := range m.SupportedStandards {
		if st == NEP17StandardName || st == NEP11StandardName {
			return st
		}
	}
	return ""
}

// IsValid checks that the manifest received for the contract with the given
// hash is consistent. Group signatures are verified against the hash.
func (m *Manifest) IsValid(hash util.Uint160) error {
	if m.Name == "" {
		return errors.New("no name")
	}
	standards := make(map[string]struct{}, len(m.SupportedStandards))
	for _, st := range m.SupportedStandards {
		if st == "" {
			return errors.New("nameless supported standard")
		}
		if _, ok := standards[st]; ok {
			return fmt.Errorf("standard %s is listed twice", st)
		}
		standards[st] = struct{}{}
	}
	if err := m.ABI.IsValid(); err != nil {
		return fmt.Errorf("ABI: %w", err)
	}
	for i := range m.Groups {
		if err := m.Groups[i].IsValid(hash); err != nil {
			return err
		}
		for j := 0; j < i; j++ {
			if m.Groups[j].PublicKey.Equal(m.Groups[i].PublicKey) {
				return fmt.Errorf("group %s is listed twice", m.Groups[i].keyString())
			}
		}
	}
	for i, p := range m.Permissions {
		if err := p.isValid(); err != nil {
			return fmt.Errorf("permission %d: %w", i, err)
		}
		if hasDesc(m.Permissions[:i], p.Contract) {
			return fmt.Errorf("permission %d repeats a contract", i)
		}
	}
	for i, d := range m.Trusts.Values {
		if slices.ContainsFunc(m.Trusts.Values[:i], d.Equals) {
			return errors.New("trusted contract is listed twice")
		}
	}
	return nil
}

func hasDesc(ps []Permission, d PermissionDesc) bool {
	return slices.ContainsFunc(ps, func(p Permission) bool { return p.Contract.Equals(d) })
}

// UnmarshalJSON implements the json.Unmarshaler interface. Nodes may omit
// empty collections, these are normalized to empty (non-nil) values.
func (m *Manifest) UnmarshalJSON(data []byte) error {
	type manifestAux Manifest
	if err := json.Unmarshal(data, (*manifestAux)(m)); err != nil {
		return err
	}
	if m.Features == nil {
		m.Features = emptyFeatures
	}
	if m.Groups == nil {
		m.Groups = []Group{}
	}
	if m.SupportedStandards == nil {
		m.SupportedStandards = []string{}
	}
	if m.Permissions == nil {
		m.Permissions = []Permission{}
	}
	if m.ABI.Methods == nil {
		m.ABI.Methods = []Method{}
	}
	if m.ABI.Events == nil {
		m.ABI.Events = []Event{}
	}
	if !m.Trusts.Any && m.Trusts.Values == nil {
		m.Trusts.Values = []PermissionDesc{}
	}
	return nil
}
