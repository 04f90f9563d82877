package config

import (
	"errors"
	"math"
	"time"

	"github.com/nspcc-dev/n3sdk/pkg/util"
)

// Default transaction building settings.
const (
	// DefaultValidUntilBlockIncrement is the number of blocks added to the
	// current height to get the default ValidUntilBlock.
	DefaultValidUntilBlockIncrement = 1000
	// DefaultMaxValidUntilBlockIncrement is the protocol limit used when the
	// node doesn't report its own.
	DefaultMaxValidUntilBlockIncrement = 5760
	DefaultPollInterval                = time.Second
)

// Transaction is the transaction builder configuration.
type Transaction struct {
	ValidUntilBlockIncrement    uint32 `yaml:"ValidUntilBlockIncrement"`
	MaxValidUntilBlockIncrement uint32 `yaml:"MaxValidUntilBlockIncrement"`
	// GasToken is the GAS contract hash used for balance checks. When it's
	// not set the balance is looked up by the "GAS" symbol.
	GasToken util.Uint160 `yaml:"GasToken"`
	// SystemFeeMargin is a percentage added to the estimated system fee.
	SystemFeeMargin int `yaml:"SystemFeeMargin"`
	// LocalNetworkFee makes the network fee computed locally instead of
	// asking the node.
	LocalNetworkFee bool `yaml:"LocalNetworkFee"`
	// MaxScriptSize limits transaction scripts accepted by the builder, zero
	// means the protocol limit of 65535 bytes.
	MaxScriptSize int `yaml:"MaxScriptSize"`
	// SkipBalanceCheck disables the sender GAS balance check.
	SkipBalanceCheck bool          `yaml:"SkipBalanceCheck"`
	PollInterval     time.Duration `yaml:"PollInterval"`
}

// SetDefaults fills zero fields with default values.
func (t *Transaction) SetDefaults() {
	if t.ValidUntilBlockIncrement == 0 {
		t.ValidUntilBlockIncrement = DefaultValidUntilBlockIncrement
	}
	if t.MaxValidUntilBlockIncrement == 0 {
		t.MaxValidUntilBlockIncrement = DefaultMaxValidUntilBlockIncrement
	}
	if t.PollInterval == 0 {
		t.PollInterval = DefaultPollInterval
	}
}

// Validate checks Transaction for internal consistency.
func (t *Transaction) Validate() error {
	if t.ValidUntilBlockIncrement > t.MaxValidUntilBlockIncrement {
		return errors.New("ValidUntilBlockIncrement exceeds MaxValidUntilBlockIncrement")
	}
	if t.SystemFeeMargin < 0 {
		return errors.New("negative SystemFeeMargin")
	}
	if t.MaxScriptSize < 0 || t.MaxScriptSize > math.MaxUint16 {
		return errors.New("MaxScriptSize must be in [0, 65535]")
	}
	return nil
}
