/*
Package actor provides a way to change chain state via RPC client.

This layer builds on top of the basic RPC client and [invoker] package, it
simplifies creating, signing and sending transactions to the network (since
that's the only way chain state is changed). Builder is the step-by-step
transaction constructor with fee estimation, ValidUntilBlock checks and GAS
balance checks, Actor wraps it for a fixed set of signers.
*/
package actor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nspcc-dev/n3sdk/pkg/config"
	"github.com/nspcc-dev/n3sdk/pkg/config/netmode"
	"github.com/nspcc-dev/n3sdk/pkg/core/transaction"
	"github.com/nspcc-dev/n3sdk/pkg/neorpc/result"
	"github.com/nspcc-dev/n3sdk/pkg/rpcclient/invoker"
	"github.com/nspcc-dev/n3sdk/pkg/util"
	"github.com/nspcc-dev/n3sdk/pkg/wallet"
	"go.uber.org/zap"
)

// RPCActor is the part of the RPC client needed to build and relay
// transactions.
type RPCActor interface {
	invoker.RPCInvoke

	// CalculateNetworkFee must not call Hash or Size through tx since they
	// cache their results; copy the transaction first when needed.
	CalculateNetworkFee(ctx context.Context, tx *transaction.Transaction) (int64, error)
	GetBlockCount(ctx context.Context) (uint32, error)
	GetNEP17Balances(ctx context.Context, address util.Uint160) (*result.NEP17Balances, error)
	GetVersion(ctx context.Context) (*result.Version, error)
	SendRawTransaction(ctx context.Context, tx *transaction.Transaction) (util.Uint256, error)
}

// SignerAccount binds a transaction signer to the account able to witness
// for it.
type SignerAccount struct {
	Signer  transaction.Signer
	Account *wallet.Account
}

// Actor creates, signs and relays transactions for a fixed list of signers,
// the first one being the sender. Test invocations with the same signers
// are available through the embedded Invoker, waiting for acceptance
// through the embedded Waiter.
//
// Make* methods only return signed transactions, Send* ones relay them too.
// *Call methods take a contract hash, a method name and arguments, *Run
// methods take a ready script.
type Actor struct {
	invoker.Invoker
	Waiter

	client    RPCActor
	opts      Options
	signers   []SignerAccount
	txSigners []transaction.Signer
	provider  *AccountProvider
	version   *result.Version
}

// Options tune fee, expiration and checking policies of Actor and Builder.
// Zero values mean defaults.
type Options struct {
	// Attributes are added to every transaction unless a method gets its
	// own list.
	Attributes []transaction.Attribute
	// CheckerModifier inspects the test invocation of a new transaction and
	// may adjust it before signing.
	CheckerModifier TransactionCheckerModifier
	// Modifier adjusts transactions made by MakeUncheckedRun, unsigned ones
	// are left untouched.
	Modifier TransactionModifier

	// ValidUntilBlockIncrement is the default expiration distance from the
	// current height.
	ValidUntilBlockIncrement uint32
	// MaxValidUntilBlockIncrement is the limit used when the node reports
	// none.
	MaxValidUntilBlockIncrement uint32
	// GasToken is the GAS contract hash, zero means lookup by symbol.
	GasToken util.Uint160
	// SystemFeeMargin is added to the system fee, in percent.
	SystemFeeMargin int
	// FeePerByte and ExecFeeFactor are only used when LocalNetworkFee is set.
	FeePerByte    int64
	ExecFeeFactor int64
	// LocalNetworkFee disables calculatenetworkfee requests.
	LocalNetworkFee bool
	// SkipBalanceCheck disables the sender balance check.
	SkipBalanceCheck bool
	// MaxScriptSize limits scripts accepted by SetScript. Zero or values
	// above the protocol limit mean MaxScriptSize.
	MaxScriptSize int
	// PollInterval defaults to half of the block time.
	PollInterval time.Duration
	// Logger is nop when nil.
	Logger *zap.Logger
}

func (o *Options) setDefaults() {
	if o.ValidUntilBlockIncrement == 0 {
		o.ValidUntilBlockIncrement = config.DefaultValidUntilBlockIncrement
	}
	if o.MaxValidUntilBlockIncrement == 0 {
		o.MaxValidUntilBlockIncrement = config.DefaultMaxValidUntilBlockIncrement
	}
	if o.MaxScriptSize <= 0 || o.MaxScriptSize > MaxScriptSize {
		o.MaxScriptSize = MaxScriptSize
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
}

// NewDefaultOptions returns Options with DefaultCheckerModifier (HALT is
// required) and DefaultModifier (no changes).
func NewDefaultOptions() Options {
	o := Options{CheckerModifier: DefaultCheckerModifier, Modifier: DefaultModifier}
	o.setDefaults()
	return o
}

// OptionsFromConfig makes default Options tuned by the transaction section
// of the configuration.
func OptionsFromConfig(cfg config.Transaction, log *zap.Logger) Options {
	o := NewDefaultOptions()
	o.ValidUntilBlockIncrement = cfg.ValidUntilBlockIncrement
	o.MaxValidUntilBlockIncrement = cfg.MaxValidUntilBlockIncrement
	o.GasToken = cfg.GasToken
	o.SystemFeeMargin = cfg.SystemFeeMargin
	o.LocalNetworkFee = cfg.LocalNetworkFee
	o.SkipBalanceCheck = cfg.SkipBalanceCheck
	o.MaxScriptSize = cfg.MaxScriptSize
	o.PollInterval = cfg.PollInterval
	o.Logger = log
	o.setDefaults()
	return o
}

// New is NewTuned with NewDefaultOptions.
func New(ctx context.Context, ra RPCActor, signers []SignerAccount) (*Actor, error) {
	return NewTuned(ctx, ra, signers, NewDefaultOptions())
}

// NewSimple creates an Actor with acc as the only signer with the
// CalledByEntry scope.
func NewSimple(ctx context.Context, ra RPCActor, acc *wallet.Account) (*Actor, error) {
	if acc.Contract == nil {
		return nil, fmt.Errorf("empty contract for account %s", acc.Address)
	}
	return New(ctx, ra, []SignerAccount{{
		Signer:  transaction.Signer{Account: acc.Contract.ScriptHash(), Scopes: transaction.CalledByEntry},
		Account: acc,
	}})
}

// checkSigner ensures the account can witness for the signer.
func checkSigner(sa SignerAccount) error {
	acc := sa.Account
	switch {
	case acc.Contract == nil:
		return fmt.Errorf("empty contract for account %s", acc.Address)
	case !acc.Contract.Deployed && acc.Contract.ScriptHash() != sa.Signer.Account:
		return fmt.Errorf("signer account doesn't match script hash for signer %s", acc.Address)
	}
	if err := sa.Signer.Validate(); err != nil {
		return fmt.Errorf("signer %s: %w", acc.Address, err)
	}
	return nil
}

// NewTuned creates an Actor with the given options, nil callbacks are
// replaced with default ones. Node version is requested once and kept for
// the Actor lifetime.
func NewTuned(ctx context.Context, ra RPCActor, signers []SignerAccount, opts Options) (*Actor, error) {
	if len(signers) == 0 {
		return nil, errors.New("at least one signer (sender) is required")
	}
	txSigners := make([]transaction.Signer, 0, len(signers))
	accounts := make([]*wallet.Account, 0, len(signers))
	for _, sa := range signers {
		if err := checkSigner(sa); err != nil {
			return nil, err
		}
		txSigners = append(txSigners, sa.Signer)
		accounts = append(accounts, sa.Account)
	}
	if opts.CheckerModifier == nil {
		opts.CheckerModifier = DefaultCheckerModifier
	}
	if opts.Modifier == nil {
		opts.Modifier = DefaultModifier
	}
	opts.setDefaults()
	version, err := ra.GetVersion(ctx)
	if err != nil {
		return nil, err
	}
	return &Actor{
		Invoker:   *invoker.New(ra, txSigners),
		Waiter:    newWaiter(ra, version, opts),
		client:    ra,
		opts:      opts,
		signers:   signers,
		txSigners: txSigners,
		provider:  NewAccountProvider(accounts...),
		version:   version,
	}, nil
}

// NewBuilder returns a Builder with Actor signers, options and cached
// version data.
func (a *Actor) NewBuilder() *Builder {
	b := NewBuilder(a.client, a.opts)
	b.version = a.version
	return b.SetSigners(a.txSigners...)
}

// CalculateNetworkFee asks the node for the network fee of tx.
func (a *Actor) CalculateNetworkFee(ctx context.Context, tx *transaction.Transaction) (int64, error) {
	return a.client.CalculateNetworkFee(ctx, tx)
}

// GetBlockCount returns the node's block count.
func (a *Actor) GetBlockCount(ctx context.Context) (uint32, error) {
	return a.client.GetBlockCount(ctx)
}

// GetNetwork returns the network magic transactions are signed for.
func (a *Actor) GetNetwork() netmode.Magic {
	return a.version.Protocol.Network
}

// GetVersion returns the cached node version.
func (a *Actor) GetVersion() result.Version {
	return *a.version
}

// Sender is the first signer account, it pays fees.
func (a *Actor) Sender() util.Uint160 {
	return a.txSigners[0].Account
}

// Send relays tx, returning its hash and ValidUntilBlock for waiting.
func (a *Actor) Send(ctx context.Context, tx *transaction.Transaction) (util.Uint256, uint32, error) {
	h, err := a.client.SendRawTransaction(ctx, tx)
	return h, tx.ValidUntilBlock, err
}

// Sign witnesses tx with the Actor accounts, so tx signers are expected to
// match the Actor ones.
func (a *Actor) Sign(ctx context.Context, tx *transaction.Transaction) error {
	if len(tx.Signers) != len(a.signers) {
		return errors.New("incorrect number of signers in the transaction")
	}
	return addWitnesses(ctx, a.provider, a.GetNetwork(), tx)
}

// SignAndSend is Sign followed by Send.
func (a *Actor) SignAndSend(ctx context.Context, tx *transaction.Transaction) (util.Uint256, uint32, error) {
	return a.sendIfOK(ctx, tx, a.Sign(ctx, tx))
}

func (a *Actor) sendIfOK(ctx context.Context, tx *transaction.Transaction, err error) (util.Uint256, uint32, error) {
	if err != nil {
		return util.Uint256{}, 0, err
	}
	return a.Send(ctx, tx)
}

// SendCall relays the result of MakeCall.
func (a *Actor) SendCall(ctx context.Context, contract util.Uint160, method string, params ...any) (util.Uint256, uint32, error) {
	tx, err := a.MakeCall(ctx, contract, method, params...)
	return a.sendIfOK(ctx, tx, err)
}

// SendTunedCall relays the result of MakeTunedCall.
func (a *Actor) SendTunedCall(ctx context.Context, contract util.Uint160, method string, attrs []transaction.Attribute, txHook TransactionCheckerModifier, params ...any) (util.Uint256, uint32, error) {
	tx, err := a.MakeTunedCall(ctx, contract, method, attrs, txHook, params...)
	return a.sendIfOK(ctx, tx, err)
}

// SendRun relays the result of MakeRun.
func (a *Actor) SendRun(ctx context.Context, script []byte) (util.Uint256, uint32, error) {
	tx, err := a.MakeRun(ctx, script)
	return a.sendIfOK(ctx, tx, err)
}

// SendUncheckedRun relays the result of MakeUncheckedRun.
func (a *Actor) SendUncheckedRun(ctx context.Context, script []byte, sysfee int64, attrs []transaction.Attribute, txHook TransactionModifier) (util.Uint256, uint32, error) {
	tx, err := a.MakeUncheckedRun(ctx, script, sysfee, attrs, txHook)
	return a.sendIfOK(ctx, tx, err)
}
