package wallet

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/nspcc-dev/n3sdk/pkg/encoding/address"
	"github.com/nspcc-dev/n3sdk/pkg/util"
)

// ErrInvalidAmount is returned when the amount string can't be represented
// with the token precision.
var ErrInvalidAmount = errors.New("invalid token amount")

// Token describes a token contract: its hash, metadata and precision used to
// convert between integer contract amounts and decimal strings.
type Token struct {
	Name     string       `json:"name"`
	Hash     util.Uint160 `json:"script_hash"`
	Decimals int64        `json:"decimals"`
	Symbol   string       `json:"symbol"`
	Standard string       `json:"standard"`
}

// NewToken returns the new token contract info.
func NewToken(tokenHash util.Uint160, name, symbol string, decimals int64, standardName string) *Token {
	return &Token{
		Name:     name,
		Hash:     tokenHash,
		Decimals: decimals,
		Symbol:   symbol,
		Standard: standardName,
	}
}

// Address returns token contract address.
func (t *Token) Address() string {
	return address.Uint160ToString(t.Hash)
}

// FormatAmount converts an integer contract amount into a decimal string,
// 150000000 GAS fractions are "1.5". Trailing fractional zeroes are dropped.
func (t *Token) FormatAmount(v *big.Int) string {
	s := new(big.Int).Abs(v).String()
	d := int(t.Decimals)
	if d <= 0 {
		return v.String()
	}
	if len(s) <= d {
		s = strings.Repeat("0", d-len(s)+1) + s
	}
	res := s[:len(s)-d]
	if frac := strings.TrimRight(s[len(s)-d:], "0"); frac != "" {
		res += "." + frac
	}
	if v.Sign() < 0 {
		res = "-" + res
	}
	return res
}

// ParseAmount converts a decimal string into an integer contract amount. The
// number of fractional digits must not exceed token decimals (trailing zeroes
// aside).
func (t *Token) ParseAmount(s string) (*big.Int, error) {
	ip, fp, dot := strings.Cut(s, ".")
	fp = strings.TrimRight(fp, "0")
	d := int(t.Decimals)
	if d < 0 {
		d = 0
	}
	switch {
	case ip == "" && fp == "" || ip == "-" || ip == "+":
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	case dot && strings.ContainsAny(fp, "+-"):
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	case len(fp) > d:
		return nil, fmt.Errorf("%w: %q has more than %d decimals", ErrInvalidAmount, s, d)
	}
	v, ok := new(big.Int).SetString(ip+fp+strings.Repeat("0", d-len(fp)), 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return v, nil
}
