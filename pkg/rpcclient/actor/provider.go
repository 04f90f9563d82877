package actor

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/nspcc-dev/n3sdk/pkg/config/netmode"
	"github.com/nspcc-dev/n3sdk/pkg/core/transaction"
	"github.com/nspcc-dev/n3sdk/pkg/encoding/address"
	"github.com/nspcc-dev/n3sdk/pkg/util"
	"github.com/nspcc-dev/n3sdk/pkg/vm"
	"github.com/nspcc-dev/n3sdk/pkg/wallet"
)

var (
	// ErrNoAccount is returned when the provider has no account for the signer.
	ErrNoAccount = errors.New("no account for signer")
	// ErrNotEnoughSignatures is returned when a multisignature witness can't
	// be completed with the keys available.
	ErrNotEnoughSignatures = errors.New("not enough signatures")
)

// WitnessProvider creates witnesses for transaction signers.
type WitnessProvider interface {
	// VerificationScript returns the verification script of the given
	// account. It's used for network fee calculation before signing, nil
	// means a contract-based witness.
	VerificationScript(account util.Uint160) ([]byte, error)
	// Witness returns the witness for the signer with the given index. The
	// transaction is complete at this point and must not be changed.
	Witness(ctx context.Context, net netmode.Magic, tx *transaction.Transaction, signer int) (transaction.Witness, error)
}

// WitnessProviderFunc is a WitnessProvider for contract-based signers with
// no verification script, the function returns complete witnesses.
type WitnessProviderFunc func(ctx context.Context, net netmode.Magic, tx *transaction.Transaction, signer int) (transaction.Witness, error)

// VerificationScript implements WitnessProvider, it always returns nil.
func (f WitnessProviderFunc) VerificationScript(util.Uint160) ([]byte, error) {
	return nil, nil
}

// Witness implements WitnessProvider.
func (f WitnessProviderFunc) Witness(ctx context.Context, net netmode.Magic, tx *transaction.Transaction, signer int) (transaction.Witness, error) {
	return f(ctx, net, tx, signer)
}

// AccountProvider creates witnesses using wallet accounts. Standard signature
// and multisignature contracts are signed with account keys, deployed
// contracts without parameters get an empty invocation script.
type AccountProvider struct {
	accounts []*wallet.Account
}

// NewAccountProvider creates an AccountProvider. Several accounts with the
// same multisignature contract can be given, each holding its own key.
func NewAccountProvider(accounts ...*wallet.Account) *AccountProvider {
	return &AccountProvider{accounts: accounts}
}

func (p *AccountProvider) find(h util.Uint160) []*wallet.Account {
	var res []*wallet.Account
	for _, a := range p.accounts {
		if a.Contract != nil && a.ScriptHash().Equals(h) {
			res = append(res, a)
		}
	}
	return res
}

// VerificationScript implements WitnessProvider.
func (p *AccountProvider) VerificationScript(account util.Uint160) ([]byte, error) {
	accs := p.find(account)
	if len(accs) == 0 {
		return nil, fmt.Errorf("%w %s", ErrNoAccount, address.Uint160ToString(account))
	}
	if accs[0].Contract.Deployed {
		return nil, nil
	}
	return accs[0].Contract.Script, nil
}

// Witness implements WitnessProvider. For multisignature contracts signatures
// are collected in the contract key order until there are enough of them.
func (p *AccountProvider) Witness(ctx context.Context, net netmode.Magic, tx *transaction.Transaction, signer int) (transaction.Witness, error) {
	h := tx.Signers[signer].Account
	accs := p.find(h)
	if len(accs) == 0 {
		return transaction.Witness{}, fmt.Errorf("%w %s", ErrNoAccount, address.Uint160ToString(h))
	}
	contract := accs[0].Contract
	if contract.Deployed {
		if len(contract.Parameters) != 0 {
			return transaction.Witness{}, fmt.Errorf("%d parameters must be provided to construct invocation script", len(contract.Parameters))
		}
		return transaction.Witness{}, nil
	}
	if pub, ok := vm.ParseSignatureContract(contract.Script); ok {
		for _, a := range accs {
			if a.CanSign() && bytes.Equal(a.PublicKey().Bytes(), pub) {
				return transaction.Witness{
					InvocationScript:   wallet.InvocationScript(a.SignHashable(net, tx)),
					VerificationScript: contract.Script,
				}, nil
			}
		}
		return transaction.Witness{}, wallet.ErrLocked
	}
	if m, pubs, ok := vm.ParseMultiSigContract(contract.Script); ok {
		sigs := make([][]byte, 0, m)
		for _, pub := range pubs {
			for _, a := range accs {
				if a.CanSign() && bytes.Equal(a.PublicKey().Bytes(), pub) {
					sigs = append(sigs, a.SignHashable(net, tx))
					break
				}
			}
			if len(sigs) == m {
				return transaction.Witness{
					InvocationScript:   wallet.InvocationScript(sigs...),
					VerificationScript: contract.Script,
				}, nil
			}
		}
		return transaction.Witness{}, fmt.Errorf("%w: %d of %d", ErrNotEnoughSignatures, len(sigs), m)
	}
	return transaction.Witness{}, errors.New("unsupported verification script")
}
