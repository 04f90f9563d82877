package transaction

import (
	"encoding/json"
	"fmt"
	"strings"
)

// WitnessScope represents set of witness flags for Transaction signer.
type WitnessScope byte

const (
	// None specifies that no contract was witnessed. Only sign the transaction.
	None WitnessScope = 0
	// CalledByEntry witness is only valid in entry script and ones directly
	// called by it (no crossing of other contracts).
	CalledByEntry WitnessScope = 0x01
	// CustomContracts define custom hash for contract-specific witness.
	CustomContracts WitnessScope = 0x10
	// CustomGroups define custom public key for group members.
	CustomGroups WitnessScope = 0x20
	// Rules is a set of conditions with boolean operators.
	Rules WitnessScope = 0x40
	// Global allows this witness in all contexts. This cannot be combined
	// with other flags.
	Global WitnessScope = 0x80
)

const validScopes = CalledByEntry | CustomContracts | CustomGroups | Rules | Global

var scopeNames = []struct {
	scope WitnessScope
	name  string
}{
	{CalledByEntry, "CalledByEntry"},
	{CustomContracts, "CustomContracts"},
	{CustomGroups, "CustomGroups"},
	{Rules, "WitnessRules"},
	{Global, "Global"},
}

// ScopesFromString converts string of comma-separated scopes to a set of scopes
// (case-sensitive). String can combine several scopes, e.g. be any of: 'Global',
// 'CalledByEntry,CustomGroups' etc. In case of an empty string an error will be
// returned.
func ScopesFromString(s string) (WitnessScope, error) {
	var result WitnessScope
	for _, scopeStr := range strings.Split(s, ",") {
		scopeStr = strings.TrimSpace(scopeStr)
		if scopeStr == "None" {
			continue
		}
		var found bool
		for _, sn := range scopeNames {
			if sn.name == scopeStr {
				result |= sn.scope
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("invalid witness scope: %q", scopeStr)
		}
	}
	if result&Global != 0 && result != Global {
		return 0, fmt.Errorf("%w: Global scope can not be combined with other scopes", ErrScopeViolation)
	}
	return result, nil
}

// String returns comma-separated scope names, "None" for the empty set.
func (s WitnessScope) String() string {
	if s == None {
		return "None"
	}
	var names []string
	for _, sn := range scopeNames {
		if s&sn.scope != 0 {
			names = append(names, sn.name)
		}
	}
	if rest := s &^ validScopes; rest != 0 {
		names = append(names, fmt.Sprintf("0x%02x", byte(rest)))
	}
	return strings.Join(names, ", ")
}

// MarshalJSON implements the json.Marshaler interface.
func (s WitnessScope) MarshalJSON() ([]byte, error) {
	if s&^validScopes != 0 {
		return nil, fmt.Errorf("%w: unknown scope bits 0x%02x", ErrScopeViolation, byte(s&^validScopes))
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (s *WitnessScope) UnmarshalJSON(data []byte) error {
	var js string
	if err := json.Unmarshal(data, &js); err != nil {
		return err
	}
	scopes, err := ScopesFromString(js)
	if err != nil {
		return err
	}
	*s = scopes
	return nil
}
