package result

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/nspcc-dev/n3sdk/pkg/config/netmode"
	"github.com/nspcc-dev/n3sdk/pkg/crypto/keys"
)

// Version is the getversion answer: node identity and network settings.
type Version struct {
	TCPPort   uint16   `json:"tcpport"`
	WSPort    uint16   `json:"wsport,omitempty"`
	Nonce     uint32   `json:"nonce"`
	UserAgent string   `json:"useragent"`
	Protocol  Protocol `json:"protocol"`
	RPC       RPC      `json:"rpc"`
}

// RPC is the node's RPC server configuration.
type RPC struct {
	MaxIteratorResultItems int  `json:"maxiteratorresultitems"`
	SessionEnabled         bool `json:"sessionenabled"`
}

// Protocol holds network parameters. Transaction building relies on
// Network (signatures) and MaxValidUntilBlockIncrement (expiration).
type Protocol struct {
	AddressVersion              byte          `json:"addressversion"`
	Network                     netmode.Magic `json:"network"`
	MillisecondsPerBlock        int           `json:"msperblock"`
	MaxTraceableBlocks          uint32        `json:"maxtraceableblocks"`
	MaxValidUntilBlockIncrement uint32        `json:"maxvaliduntilblockincrement"`
	MaxTransactionsPerBlock     uint16        `json:"maxtransactionsperblock"`
	MemoryPoolMaxTransactions   int           `json:"memorypoolmaxtransactions"`
	ValidatorsCount             byte          `json:"validatorscount"`
	// InitialGasDistribution is in GAS fractions.
	InitialGasDistribution int64 `json:"-"`
	// Hardforks maps hardfork names (without the "HF_" prefix) to their
	// activation heights.
	Hardforks        map[string]uint32 `json:"-"`
	StandbyCommittee keys.PublicKeys   `json:"standbycommittee"`
	SeedList         []string          `json:"seedlist"`
}

// protocolFields is Protocol without JSON methods.
type protocolFields Protocol

type protocolJSON struct {
	protocolFields
	InitialGasDistribution json.RawMessage `json:"initialgasdistribution,omitempty"`
	Hardforks              []hardforkJSON  `json:"hardforks"`
}

type hardforkJSON struct {
	Name   string `json:"name"`
	Height uint32 `json:"blockheight"`
}

const (
	hardforkPrefix = "HF_"
	gasFactor      = 100000000
)

// MarshalJSON implements the json.Marshaler interface. Hardforks are
// ordered by height.
func (p Protocol) MarshalJSON() ([]byte, error) {
	aux := protocolJSON{
		protocolFields:         protocolFields(p),
		InitialGasDistribution: json.RawMessage(strconv.FormatInt(p.InitialGasDistribution, 10)),
		Hardforks:              make([]hardforkJSON, 0, len(p.Hardforks)),
	}
	for name, h := range p.Hardforks {
		aux.Hardforks = append(aux.Hardforks, hardforkJSON{Name: name, Height: h})
	}
	slices.SortFunc(aux.Hardforks, func(a, b hardforkJSON) int {
		if a.Height != b.Height {
			return cmp.Compare(a.Height, b.Height)
		}
		return strings.Compare(a.Name, b.Name)
	})
	return json.Marshal(aux)
}

// UnmarshalJSON implements the json.Unmarshaler interface. Older nodes
// report InitialGasDistribution as a string of whole GAS units, newer ones
// as a number of fractions.
func (p *Protocol) UnmarshalJSON(data []byte) error {
	var aux protocolJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	gas, err := parseGasDistribution(aux.InitialGasDistribution)
	if err != nil {
		return fmt.Errorf("initialgasdistribution: %w", err)
	}
	*p = Protocol(aux.protocolFields)
	p.InitialGasDistribution = gas
	p.Hardforks = make(map[string]uint32, len(aux.Hardforks))
	for _, hf := range aux.Hardforks {
		p.Hardforks[strings.TrimPrefix(hf.Name, hardforkPrefix)] = hf.Height
	}
	return nil
}

func parseGasDistribution(raw json.RawMessage) (int64, error) {
	if len(raw) == 0 {
		return 0, nil
	}
	var whole string
	if json.Unmarshal(raw, &whole) == nil {
		n, err := strconv.ParseInt(whole, 10, 64)
		return n * gasFactor, err
	}
	var fractions int64
	err := json.Unmarshal(raw, &fractions)
	return fractions, err
}
