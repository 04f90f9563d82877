package result

import (
	"encoding/json"
	"math/big"
	"strconv"

	"github.com/nspcc-dev/n3sdk/pkg/util"
)

// NEP17Balances is a result for the getnep17balances RPC call.
type NEP17Balances struct {
	Balances []NEP17Balance `json:"balance"`
	Address  string         `json:"address"`
}

// NEP17Balance represents balance for the single token contract.
type NEP17Balance struct {
	Asset       util.Uint160 `json:"assethash"`
	Amount      string       `json:"amount"`
	LastUpdated uint32       `json:"lastupdatedblock"`
	// Below are extensions that are not present in older node versions.
	Name     string `json:"name,omitempty"`
	Symbol   string `json:"symbol,omitempty"`
	Decimals int    `json:"-"`
}

type nep17BalanceAux NEP17Balance

type nep17BalanceJSON struct {
	*nep17BalanceAux
	Decimals json.RawMessage `json:"decimals,omitempty"`
}

// MarshalJSON implements the json.Marshaler interface. Decimals are
// represented as a string the way nodes do it.
func (b NEP17Balance) MarshalJSON() ([]byte, error) {
	aux := (nep17BalanceAux)(b)
	dec, err := json.Marshal(strconv.Itoa(b.Decimals))
	if err != nil {
		return nil, err
	}
	return json.Marshal(&nep17BalanceJSON{nep17BalanceAux: &aux, Decimals: dec})
}

// UnmarshalJSON implements the json.Unmarshaler interface. Decimals can be
// either a string or a number.
func (b *NEP17Balance) UnmarshalJSON(data []byte) error {
	aux := &nep17BalanceJSON{nep17BalanceAux: (*nep17BalanceAux)(b)}
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	if len(aux.Decimals) == 0 {
		return nil
	}
	var s string
	if err := json.Unmarshal(aux.Decimals, &s); err == nil {
		d, err := strconv.Atoi(s)
		if err != nil {
			return err
		}
		b.Decimals = d
		return nil
	}
	return json.Unmarshal(aux.Decimals, &b.Decimals)
}

// BigAmount returns the balance amount as an integer.
func (b *NEP17Balance) BigAmount() (*big.Int, bool) {
	return new(big.Int).SetString(b.Amount, 10)
}

// Find returns the balance for the asset specified or nil if there is none.
func (bs *NEP17Balances) Find(asset util.Uint160) *NEP17Balance {
	for i := range bs.Balances {
		if bs.Balances[i].Asset.Equals(asset) {
			return &bs.Balances[i]
		}
	}
	return nil
}

// FindBySymbol returns the first balance with the symbol specified or nil
// if there is none.
func (bs *NEP17Balances) FindBySymbol(symbol string) *NEP17Balance {
	for i := range bs.Balances {
		if bs.Balances[i].Symbol == symbol {
			return &bs.Balances[i]
		}
	}
	return nil
}
