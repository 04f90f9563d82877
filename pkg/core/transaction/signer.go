package transaction

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/n3sdk/pkg/crypto/keys"
	"github.com/nspcc-dev/n3sdk/pkg/io"
	"github.com/nspcc-dev/n3sdk/pkg/util"
)

// The maximum number of AllowedContracts, AllowedGroups or Rules.
const maxSubitems = 16

// ErrScopeViolation is returned for signers whose scopes don't match the
// data they carry.
var ErrScopeViolation = errors.New("scope violation")

// Signer implements a Transaction signer.
type Signer struct {
	Account          util.Uint160      `json:"account"`
	Scopes           WitnessScope      `json:"scopes"`
	AllowedContracts []util.Uint160    `json:"allowedcontracts,omitempty"`
	AllowedGroups    []*keys.PublicKey `json:"allowedgroups,omitempty"`
	Rules            []WitnessRule     `json:"rules,omitempty"`
}

// Validate checks the scope flags against the lists carried by the signer.
// All errors wrap ErrScopeViolation.
func (c *Signer) Validate() error {
	if rest := c.Scopes &^ validScopes; rest != 0 {
		return fmt.Errorf("%w: unknown scope bits 0x%02x", ErrScopeViolation, byte(rest))
	}
	if c.Scopes&Global != 0 && c.Scopes != Global {
		return fmt.Errorf("%w: Global scope can not be combined with other scopes", ErrScopeViolation)
	}
	if err := checkScopeList(c.Scopes, CustomContracts, len(c.AllowedContracts)); err != nil {
		return err
	}
	if err := checkScopeList(c.Scopes, CustomGroups, len(c.AllowedGroups)); err != nil {
		return err
	}
	if err := checkScopeList(c.Scopes, Rules, len(c.Rules)); err != nil {
		return err
	}
	for i, g := range c.AllowedGroups {
		if g == nil || g.IsInfinity() {
			return fmt.Errorf("%w: allowed group %d is not a valid key", ErrScopeViolation, i)
		}
	}
	for i := range c.Rules {
		r := c.Rules[i]
		if r.Action != WitnessDeny && r.Action != WitnessAllow {
			return fmt.Errorf("%w: rule %d: unknown action %d", ErrScopeViolation, i, r.Action)
		}
		if err := validateCondition(r.Condition, MaxConditionNesting); err != nil {
			return fmt.Errorf("%w: rule %d: %w", ErrScopeViolation, i, err)
		}
	}
	return nil
}

func checkScopeList(scopes, flag WitnessScope, n int) error {
	switch {
	case scopes&flag != 0 && n == 0:
		return fmt.Errorf("%w: %s scope requires a non-empty list", ErrScopeViolation, flag)
	case scopes&flag == 0 && n != 0:
		return fmt.Errorf("%w: %d entries given without %s scope", ErrScopeViolation, n, flag)
	case n > maxSubitems:
		return fmt.Errorf("%w: too many %s entries (%d)", ErrScopeViolation, flag, n)
	}
	return nil
}

// EncodeBinary implements the Serializable interface.
func (c *Signer) EncodeBinary(bw *io.BinWriter) {
	bw.WriteBytes(c.Account[:])
	bw.WriteB(byte(c.Scopes))
	if c.Scopes&CustomContracts != 0 {
		bw.WriteVarUint(uint64(len(c.AllowedContracts)))
		for i := range c.AllowedContracts {
			bw.WriteBytes(c.AllowedContracts[i][:])
		}
	}
	if c.Scopes&CustomGroups != 0 {
		io.WriteArray(bw, c.AllowedGroups)
	}
	if c.Scopes&Rules != 0 {
		bw.WriteVarUint(uint64(len(c.Rules)))
		for i := range c.Rules {
			c.Rules[i].EncodeBinary(bw)
		}
	}
}

// DecodeBinary implements the Serializable interface.
func (c *Signer) DecodeBinary(br *io.BinReader) {
	br.ReadBytes(c.Account[:])
	c.Scopes = WitnessScope(br.ReadB())
	if br.Err != nil {
		return
	}
	if c.Scopes&^validScopes != 0 {
		br.Err = fmt.Errorf("%w: unknown witness scope", ErrScopeViolation)
		return
	}
	if c.Scopes&Global != 0 && c.Scopes != Global {
		br.Err = fmt.Errorf("%w: global scope can not be combined with other scopes", ErrScopeViolation)
		return
	}
	if c.Scopes&CustomContracts != 0 {
		n := readSubitemsCount(br)
		c.AllowedContracts = make([]util.Uint160, n)
		for i := range c.AllowedContracts {
			br.ReadBytes(c.AllowedContracts[i][:])
		}
	}
	if c.Scopes&CustomGroups != 0 {
		n := readSubitemsCount(br)
		c.AllowedGroups = make([]*keys.PublicKey, n)
		for i := range c.AllowedGroups {
			c.AllowedGroups[i] = new(keys.PublicKey)
			c.AllowedGroups[i].DecodeBinary(br)
		}
	}
	if c.Scopes&Rules != 0 {
		n := readSubitemsCount(br)
		c.Rules = make([]WitnessRule, n)
		for i := range c.Rules {
			c.Rules[i].DecodeBinary(br)
		}
	}
}

func readSubitemsCount(br *io.BinReader) int {
	n := br.ReadVarUint()
	if br.Err != nil {
		return 0
	}
	if n == 0 || n > maxSubitems {
		br.Err = fmt.Errorf("%w: %d subitems", ErrScopeViolation, n)
		return 0
	}
	return int(n)
}
