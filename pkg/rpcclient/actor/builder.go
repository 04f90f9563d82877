package actor

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/nspcc-dev/n3sdk/pkg/config/netmode"
	"github.com/nspcc-dev/n3sdk/pkg/core/transaction"
	"github.com/nspcc-dev/n3sdk/pkg/neorpc/result"
	"github.com/nspcc-dev/n3sdk/pkg/rpcclient/estimator"
	"github.com/nspcc-dev/n3sdk/pkg/util"
)

// MaxScriptSize is the protocol limit of the transaction script length and
// the default of Options.MaxScriptSize.
const MaxScriptSize = transaction.MaxScriptLength

var (
	// ErrNoScript is returned when the transaction has no script.
	ErrNoScript = errors.New("no script")
	// ErrScriptTooLarge is returned for scripts longer than
	// Options.MaxScriptSize.
	ErrScriptTooLarge = errors.New("script is too large")
	// ErrNoSigners is returned when the transaction has no signers.
	ErrNoSigners = errors.New("no signers")
	// ErrInvalidValidUntilBlock is returned when ValidUntilBlock is already
	// passed or is too far in the future.
	ErrInvalidValidUntilBlock = errors.New("invalid ValidUntilBlock")
	// ErrAlreadySigned is returned when a signed transaction is modified
	// or signed again.
	ErrAlreadySigned = errors.New("transaction is already signed")
	// ErrNotSigned is returned from Send when there is nothing to send.
	ErrNotSigned = errors.New("transaction is not signed")
	// ErrWitnessMismatch is returned when the witness doesn't correspond
	// to its signer.
	ErrWitnessMismatch = errors.New("witness doesn't match signer")
)

// InsufficientFundsError is returned when the sender doesn't have enough GAS
// to pay the fees.
type InsufficientFundsError struct {
	Required  int64
	Available int64
}

// Error implements the error interface.
func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: %d GAS fractions required, %d available", e.Required, e.Available)
}

// State is the stage of the transaction building process.
type State byte

// Builder states.
const (
	StateEmpty State = iota
	StateScripted
	StateSigned
	StateFinalized
)

// String implements the fmt.Stringer interface.
func (s State) String() string {
	switch s {
	case StateEmpty:
		return "Empty"
	case StateScripted:
		return "Scripted"
	case StateSigned:
		return "Signed"
	case StateFinalized:
		return "Finalized"
	default:
		return fmt.Sprintf("State(%d)", byte(s))
	}
}

// Builder creates transactions step by step. Setters can be chained, the
// first error is kept and returned from Err, Sign and subsequent setters.
// Fees, ValidUntilBlock and nonce are filled in by Sign. Builder is not
// safe for concurrent use.
type Builder struct {
	client    RPCActor
	opts      Options
	estimator *estimator.Estimator
	version   *result.Version
	modifier  TransactionModifier

	state   State
	err     error
	script  []byte
	signers []transaction.Signer
	attrs   []transaction.Attribute

	vub      uint32
	vubSet   bool
	nonce    uint32
	nonceSet bool
	sysFee   int64
	sysSet   bool
	addSys   int64
	addNet   int64

	tx *transaction.Transaction
}

// NewBuilder creates a Builder using the given RPC client. Zero Options
// fields are replaced with defaults.
func NewBuilder(client RPCActor, opts Options) *Builder {
	opts.setDefaults()
	return &Builder{
		client: client,
		opts:   opts,
		estimator: estimator.New(client, estimator.Options{
			FeePerByte:    opts.FeePerByte,
			ExecFeeFactor: opts.ExecFeeFactor,
			Local:         opts.LocalNetworkFee,
		}),
		modifier: opts.Modifier,
		attrs:    opts.Attributes,
	}
}

// State returns the current builder state.
func (b *Builder) State() State {
	return b.state
}

// Err returns the first error occurred during building.
func (b *Builder) Err() error {
	return b.err
}

// Transaction returns the signed transaction or nil if it's not signed yet.
func (b *Builder) Transaction() *transaction.Transaction {
	return b.tx
}

func (b *Builder) mutable() bool {
	if b.err != nil {
		return false
	}
	if b.state >= StateSigned {
		b.err = ErrAlreadySigned
		return false
	}
	return true
}

// SetScript sets the script to execute.
func (b *Builder) SetScript(script []byte) *Builder {
	if !b.mutable() {
		return b
	}
	switch {
	case len(script) == 0:
		b.err = ErrNoScript
	case len(script) > b.opts.MaxScriptSize:
		b.err = fmt.Errorf("%w: %d bytes", ErrScriptTooLarge, len(script))
	default:
		b.script = append([]byte(nil), script...)
		b.state = StateScripted
	}
	return b
}

// SetSigners sets transaction signers, the first one is the sender paying
// the fees. Every signer is validated and duplicates are not allowed.
func (b *Builder) SetSigners(signers ...transaction.Signer) *Builder {
	if !b.mutable() {
		return b
	}
	if len(signers) == 0 {
		b.err = ErrNoSigners
		return b
	}
	for i := range signers {
		if err := signers[i].Validate(); err != nil {
			b.err = fmt.Errorf("signer %d: %w", i, err)
			return b
		}
		for j := 0; j < i; j++ {
			if signers[j].Account.Equals(signers[i].Account) {
				b.err = fmt.Errorf("%w: %s", transaction.ErrNonUniqueSigners, signers[i].Account.StringLE())
				return b
			}
		}
	}
	b.signers = append([]transaction.Signer(nil), signers...)
	return b
}

// SetValidUntilBlock sets ValidUntilBlock value. It's checked against the
// chain height by Sign and is never replaced.
func (b *Builder) SetValidUntilBlock(h uint32) *Builder {
	if b.mutable() {
		b.vub = h
		b.vubSet = true
	}
	return b
}

// SetNonce sets transaction nonce, a random one is used by default.
func (b *Builder) SetNonce(n uint32) *Builder {
	if b.mutable() {
		b.nonce = n
		b.nonceSet = true
	}
	return b
}

// SetSystemFee sets the base system fee making Sign skip the test
// invocation. It's useful when the script is already test-invoked.
func (b *Builder) SetSystemFee(fee int64) *Builder {
	if !b.mutable() {
		return b
	}
	if fee < 0 {
		b.err = transaction.ErrNegativeSystemFee
		return b
	}
	b.sysFee = fee
	b.sysSet = true
	return b
}

// SetAdditionalSystemFee sets the amount of GAS added to the estimated
// system fee.
func (b *Builder) SetAdditionalSystemFee(delta int64) *Builder {
	if !b.mutable() {
		return b
	}
	if delta < 0 {
		b.err = errors.New("negative additional system fee")
		return b
	}
	b.addSys = delta
	return b
}

// SetAdditionalNetworkFee sets the amount of GAS added to the calculated
// network fee.
func (b *Builder) SetAdditionalNetworkFee(delta int64) *Builder {
	if !b.mutable() {
		return b
	}
	if delta < 0 {
		b.err = errors.New("negative additional network fee")
		return b
	}
	b.addNet = delta
	return b
}

// SetAttributes sets transaction attributes replacing the default ones.
func (b *Builder) SetAttributes(attrs ...transaction.Attribute) *Builder {
	if b.mutable() {
		b.attrs = append([]transaction.Attribute(nil), attrs...)
	}
	return b
}

// SetModifier sets a hook called after all fees are calculated and before
// the transaction is signed.
func (b *Builder) SetModifier(m TransactionModifier) *Builder {
	if b.mutable() {
		b.modifier = m
	}
	return b
}

// Sign creates the transaction, calculates its fees, checks the sender
// balance and adds witnesses from the provider (one per signer, in signer
// order).
func (b *Builder) Sign(ctx context.Context, wp WitnessProvider) (*transaction.Transaction, error) {
	tx, net, err := b.build(ctx, wp)
	if err != nil {
		return nil, err
	}
	if err = addWitnesses(ctx, wp, net, tx); err != nil {
		return nil, err
	}
	if err = tx.Validate(); err != nil {
		return nil, err
	}
	b.tx = tx
	b.state = StateSigned
	return tx, nil
}

// Unsigned creates the transaction with all fees calculated, but without
// invocation scripts. Builder state doesn't change, such transaction can be
// signed by other parties.
func (b *Builder) Unsigned(ctx context.Context, wp WitnessProvider) (*transaction.Transaction, error) {
	tx, _, err := b.build(ctx, wp)
	return tx, err
}

// Send sends the signed transaction to the network. It's never retried on
// cancellation since the transaction might already be relayed.
func (b *Builder) Send(ctx context.Context) (util.Uint256, error) {
	if b.err != nil {
		return util.Uint256{}, b.err
	}
	if b.tx == nil {
		return util.Uint256{}, ErrNotSigned
	}
	h, err := b.client.SendRawTransaction(ctx, b.tx)
	if err != nil {
		return h, err
	}
	b.state = StateFinalized
	return h, nil
}

func (b *Builder) build(ctx context.Context, wp WitnessProvider) (*transaction.Transaction, netmode.Magic, error) {
	if b.err != nil {
		return nil, 0, b.err
	}
	if b.state >= StateSigned {
		return nil, 0, ErrAlreadySigned
	}
	if len(b.script) == 0 {
		return nil, 0, ErrNoScript
	}
	if len(b.signers) == 0 {
		return nil, 0, ErrNoSigners
	}
	if b.version == nil {
		v, err := b.client.GetVersion(ctx)
		if err != nil {
			return nil, 0, fmt.Errorf("can't get version: %w", err)
		}
		b.version = v
	}
	height, err := currentHeight(ctx, b.client)
	if err != nil {
		return nil, 0, err
	}
	maxInc := b.maxIncrement()
	vub := b.vub
	if !b.vubSet {
		inc := b.opts.ValidUntilBlockIncrement
		if inc > maxInc {
			inc = maxInc
		}
		vub = height + inc
	}
	if err = checkValidUntilBlock(vub, height, maxInc); err != nil {
		return nil, 0, err
	}
	nonce := b.nonce
	if !b.nonceSet {
		if nonce, err = randomNonce(); err != nil {
			return nil, 0, err
		}
	}

	base := b.sysFee
	if !b.sysSet {
		base, err = b.estimator.Estimate(ctx, b.script, b.signers)
		if err != nil {
			return nil, 0, err
		}
	}
	sysFee, err := estimator.ApplyMargin(base, b.opts.SystemFeeMargin)
	if err != nil {
		return nil, 0, err
	}
	if sysFee, err = addFee(sysFee, b.addSys); err != nil {
		return nil, 0, err
	}

	tx := transaction.New(b.script, sysFee)
	tx.Nonce = nonce
	tx.ValidUntilBlock = vub
	tx.Signers = b.signers
	if b.attrs != nil {
		tx.Attributes = b.attrs
	}
	tx.Scripts = make([]transaction.Witness, len(b.signers))
	for i := range b.signers {
		vs, err := wp.VerificationScript(b.signers[i].Account)
		if err != nil {
			return nil, 0, fmt.Errorf("signer %d: %w", i, err)
		}
		tx.Scripts[i].VerificationScript = vs
	}
	if err = tx.Validate(); err != nil {
		return nil, 0, err
	}
	netFee, err := b.estimator.NetworkFee(ctx, tx)
	if err != nil {
		return nil, 0, fmt.Errorf("calculating network fee: %w", err)
	}
	if tx.NetworkFee, err = addFee(netFee, b.addNet); err != nil {
		return nil, 0, err
	}

	if b.modifier != nil {
		if err = b.modifier(tx); err != nil {
			return nil, 0, err
		}
		if err = checkValidUntilBlock(tx.ValidUntilBlock, height, maxInc); err != nil {
			return nil, 0, err
		}
	}
	tx.ResetCachedHash()
	if !b.opts.SkipBalanceCheck {
		if err = b.checkBalance(ctx, tx); err != nil {
			return nil, 0, err
		}
	}
	return tx, b.version.Protocol.Network, nil
}

func (b *Builder) maxIncrement() uint32 {
	if b.version != nil && b.version.Protocol.MaxValidUntilBlockIncrement != 0 {
		return b.version.Protocol.MaxValidUntilBlockIncrement
	}
	return b.opts.MaxValidUntilBlockIncrement
}

func (b *Builder) checkBalance(ctx context.Context, tx *transaction.Transaction) error {
	balances, err := b.client.GetNEP17Balances(ctx, tx.Sender())
	if err != nil {
		return fmt.Errorf("can't get sender balance: %w", err)
	}
	var (
		required  = tx.TotalFee()
		available = new(big.Int)
	)
	for _, bal := range balances.Balances {
		if !b.isGas(bal) {
			continue
		}
		if _, ok := available.SetString(bal.Amount, 10); !ok {
			return fmt.Errorf("invalid GAS balance %q", bal.Amount)
		}
		break
	}
	if available.Cmp(required) < 0 {
		return &InsufficientFundsError{Required: required.Int64(), Available: available.Int64()}
	}
	return nil
}

func (b *Builder) isGas(bal result.NEP17Balance) bool {
	if !b.opts.GasToken.Equals(util.Uint160{}) {
		return bal.Asset.Equals(b.opts.GasToken)
	}
	return strings.EqualFold(bal.Symbol, "GAS")
}

// currentHeight returns the index of the latest block.
func currentHeight(ctx context.Context, client RPCActor) (uint32, error) {
	count, err := client.GetBlockCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("can't get block count: %w", err)
	}
	if count == 0 {
		return 0, nil
	}
	return count - 1, nil
}

func checkValidUntilBlock(vub, height, maxInc uint32) error {
	if vub <= height {
		return fmt.Errorf("%w: %d is not above the current height %d", ErrInvalidValidUntilBlock, vub, height)
	}
	if uint64(vub) > uint64(height)+uint64(maxInc) {
		return fmt.Errorf("%w: %d exceeds %d+%d", ErrInvalidValidUntilBlock, vub, height, maxInc)
	}
	return nil
}

func addFee(fee, delta int64) (int64, error) {
	if fee > math.MaxInt64-delta {
		return 0, transaction.ErrTooBigFees
	}
	return fee + delta, nil
}

func randomNonce() (uint32, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("can't generate nonce: %w", err)
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

// addWitnesses fills transaction witnesses from the given provider. Witness
// verification scripts must correspond to signer accounts, empty ones are
// allowed for contract-based witnesses.
func addWitnesses(ctx context.Context, wp WitnessProvider, net netmode.Magic, tx *transaction.Transaction) error {
	if len(tx.Scripts) != len(tx.Signers) {
		tx.Scripts = make([]transaction.Witness, len(tx.Signers))
	}
	for i := range tx.Signers {
		w, err := wp.Witness(ctx, net, tx, i)
		if err != nil {
			return fmt.Errorf("failed to add witness for signer #%d (%s): %w", i, tx.Signers[i].Account.StringLE(), err)
		}
		if len(w.VerificationScript) != 0 && !w.ScriptHash().Equals(tx.Signers[i].Account) {
			return fmt.Errorf("%w: signer #%d", ErrWitnessMismatch, i)
		}
		tx.Scripts[i] = w
	}
	tx.ResetCachedHash()
	return nil
}
