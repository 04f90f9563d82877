/*
Package wallet contains accounts used on the transaction signing path.

An Account is either unlocked (it holds a decrypted private key) or locked
(it holds a NEP-2 encrypted key only and needs Decrypt before signing).
Wallet file management is left to applications.
*/
package wallet

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/nspcc-dev/n3sdk/pkg/config/netmode"
	"github.com/nspcc-dev/n3sdk/pkg/core/transaction"
	"github.com/nspcc-dev/n3sdk/pkg/crypto/hash"
	"github.com/nspcc-dev/n3sdk/pkg/crypto/keys"
	"github.com/nspcc-dev/n3sdk/pkg/encoding/address"
	"github.com/nspcc-dev/n3sdk/pkg/smartcontract"
	"github.com/nspcc-dev/n3sdk/pkg/util"
	"github.com/nspcc-dev/n3sdk/pkg/vm"
	"github.com/nspcc-dev/n3sdk/pkg/vm/opcode"
)

var (
	// ErrLocked is returned when a signature is requested from an account
	// with no decrypted key.
	ErrLocked = errors.New("account key is not available (need to decrypt?)")
	// ErrNoEncryptedKey is returned from Decrypt for accounts without NEP-2 key.
	ErrNoEncryptedKey = errors.New("no encrypted wif in the account")
	// ErrNotSigner is returned from SignTx when the transaction doesn't have
	// the account among its signers.
	ErrNotSigner = errors.New("transaction is not signed by this account")
)

// Account represents an N3 account. It holds the private key (when
// decrypted) along with the verification contract.
type Account struct {
	// N3 private key, nil for locked accounts.
	privateKey *keys.PrivateKey

	// Scrypt parameters EncryptedWIF was produced with.
	scrypt keys.ScryptParams

	// N3 public address.
	Address string `json:"address"`

	// Encrypted WIF of the account also known as the key.
	EncryptedWIF string `json:"key"`

	// Label is a label the user had made for this account.
	Label string `json:"label"`

	// Contract is a Contract object which describes the details of the contract.
	// This field can be null (for watch-only address).
	Contract *Contract `json:"contract"`
}

// Contract represents a subset of the smartcontract to embed in the
// Account so it's NEP-6 compliant.
type Contract struct {
	// Script of the contract deployed on the blockchain.
	Script []byte `json:"script"`

	// A list of parameters used deploying this contract.
	Parameters []ContractParam `json:"parameters"`

	// Indicates whether the contract has been deployed to the blockchain.
	Deployed bool `json:"deployed"`
}

// ContractParam is a descriptor of a contract parameter
// containing type and optional name.
type ContractParam struct {
	Name string                  `json:"name"`
	Type smartcontract.ParamType `json:"type"`
}

// ScriptHash returns the hash of contract's script.
func (c Contract) ScriptHash() util.Uint160 {
	return hash.Hash160(c.Script)
}

// NewAccount creates a new Account with a random generated PrivateKey.
func NewAccount() (*Account, error) {
	priv, err := keys.NewPrivateKey()
	if err != nil {
		return nil, err
	}
	return NewAccountFromPrivateKey(priv), nil
}

// NewAccountFromWIF creates a new Account from the given WIF.
func NewAccountFromWIF(wif string) (*Account, error) {
	privKey, err := keys.NewPrivateKeyFromWIF(wif)
	if err != nil {
		return nil, err
	}
	return NewAccountFromPrivateKey(privKey), nil
}

// NewAccountFromEncryptedWIF creates a new Account from the given encrypted WIF.
// The key stays decrypted until Close.
func NewAccountFromEncryptedWIF(wif string, pass string, scrypt keys.ScryptParams) (*Account, error) {
	priv, err := keys.NEP2Decrypt(wif, pass, scrypt)
	if err != nil {
		return nil, err
	}

	a := NewAccountFromPrivateKey(priv)
	a.EncryptedWIF = wif
	a.scrypt = scrypt

	return a, nil
}

// NewAccountFromPrivateKey creates an Account with a standard signature
// contract from the given PrivateKey.
func NewAccountFromPrivateKey(p *keys.PrivateKey) *Account {
	pubKey := p.PublicKey()

	return &Account{
		privateKey: p,
		Address:    pubKey.Address(),
		Contract: &Contract{
			Script:     pubKey.GetVerificationScript(),
			Parameters: getContractParams(1),
		},
	}
}

// Decrypt decrypts the EncryptedWIF with the given passphrase returning error
// if anything goes wrong. The key must belong to the account address.
func (a *Account) Decrypt(passphrase string, scrypt keys.ScryptParams) error {
	if a.EncryptedWIF == "" {
		return ErrNoEncryptedKey
	}
	priv, err := keys.NEP2Decrypt(a.EncryptedWIF, passphrase, scrypt)
	if err != nil {
		return err
	}
	if a.Contract != nil && !containsKey(a.Contract.Script, priv.PublicKey()) {
		priv.Destroy()
		return errors.New("decrypted key doesn't match the account contract")
	}
	a.privateKey = priv
	a.scrypt = scrypt
	return nil
}

// Encrypt encrypts the account key with the given passphrase under the
// NEP-2 standard. The decrypted key is kept, use Close to drop it.
func (a *Account) Encrypt(passphrase string, scrypt keys.ScryptParams) error {
	if a.privateKey == nil {
		return ErrLocked
	}
	wif, err := keys.NEP2Encrypt(a.privateKey, passphrase, scrypt)
	if err != nil {
		return err
	}
	a.EncryptedWIF = wif
	a.scrypt = scrypt
	return nil
}

// ScryptParams returns the parameters the key was encrypted with.
func (a *Account) ScryptParams() keys.ScryptParams {
	return a.scrypt
}

// Close zeroes the private key and makes the account locked. Accounts with
// no EncryptedWIF can't be unlocked again.
func (a *Account) Close() {
	if a.privateKey == nil {
		return
	}
	a.privateKey.Destroy()
	a.privateKey = nil
}

// CanSign returns true when account has a decrypted key.
func (a *Account) CanSign() bool {
	return a.privateKey != nil
}

// PrivateKey returns private key corresponding to the account if it's unlocked.
// Please be very careful when using it, do not copy its contents and do not
// keep a pointer to it unless you absolutely need to. Most of the time you can
// use other methods (PublicKey, ScriptHash, SignHashable) depending on your
// needs and it'll be safer this way.
func (a *Account) PrivateKey() *keys.PrivateKey {
	return a.privateKey
}

// PublicKey returns the public key associated with the private key
// corresponding to the account. It can return nil if account is locked.
func (a *Account) PublicKey() *keys.PublicKey {
	if a.privateKey == nil {
		return nil
	}
	return a.privateKey.PublicKey()
}

// ScriptHash returns the script hash (account) that the Account.Address is
// derived from. It never returns an error, so if this Account has an invalid
// Address you'll just get a zero script hash.
func (a *Account) ScriptHash() util.Uint160 {
	h, _ := address.StringToUint160(a.Address)
	return h
}

// GetVerificationScript returns account's verification script.
func (a *Account) GetVerificationScript() []byte {
	if a.Contract != nil {
		return a.Contract.Script
	}
	if a.privateKey != nil {
		return a.privateKey.PublicKey().GetVerificationScript()
	}
	return nil
}

// SignHashable signs the given Hashable item for the given network. It
// returns nil if the account is locked.
func (a *Account) SignHashable(net netmode.Magic, item hash.Hashable) []byte {
	if !a.CanSign() {
		return nil
	}
	return a.privateKey.SignHashable(uint32(net), item)
}

// SignTx signs transaction t and updates its Witnesses. Witnesses of the
// previous signers must already be in place. For multisignature contracts
// the signature is appended to the invocation script, so accounts must sign
// in the contract key order.
func (a *Account) SignTx(net netmode.Magic, t *transaction.Transaction) error {
	if a.Contract == nil {
		return errors.New("account has no contract")
	}
	var (
		sh  = a.ScriptHash()
		pos = -1
	)
	for i := range t.Signers {
		if t.Signers[i].Account.Equals(sh) {
			pos = i
			break
		}
	}
	if pos < 0 {
		return ErrNotSigner
	}
	if len(t.Scripts) < pos {
		return errors.New("transaction is not yet signed by the previous signer")
	}
	if len(t.Scripts) == pos {
		t.Scripts = append(t.Scripts, transaction.Witness{
			VerificationScript: a.Contract.Script,
		})
	}
	if a.Contract.Deployed {
		return nil
	}
	if !a.CanSign() {
		return ErrLocked
	}
	invoc := InvocationScript(a.privateKey.SignHashable(uint32(net), t))
	if len(a.Contract.Parameters) == 1 {
		t.Scripts[pos].InvocationScript = invoc
	} else {
		t.Scripts[pos].InvocationScript = append(t.Scripts[pos].InvocationScript, invoc...)
	}
	return nil
}

// InvocationScript returns a script pushing the given signatures in order.
func InvocationScript(sigs ...[]byte) []byte {
	res := make([]byte, 0, len(sigs)*66)
	for _, sig := range sigs {
		res = append(res, byte(opcode.PUSHDATA1), byte(len(sig)))
		res = append(res, sig...)
	}
	return res
}

// ConvertMultisig sets a's contract to multisig contract with m sufficient signatures.
func (a *Account) ConvertMultisig(m int, pubs []*keys.PublicKey) error {
	if a.privateKey == nil {
		return ErrLocked
	}
	return a.convertMultisig(a.privateKey.PublicKey(), m, pubs)
}

// ConvertMultisigEncrypted sets a's contract to encrypted multisig contract
// with m sufficient signatures. The encrypted private key is not modified and
// remains the same, a.Address is updated to be the hash of the new contract.
func (a *Account) ConvertMultisigEncrypted(accKey *keys.PublicKey, m int, pubs []*keys.PublicKey) error {
	return a.convertMultisig(accKey, m, pubs)
}

func (a *Account) convertMultisig(accKey *keys.PublicKey, m int, pubs []*keys.PublicKey) error {
	if !keys.PublicKeys(pubs).Contains(accKey) {
		return errors.New("own public key was not found among multisig keys")
	}

	script, err := smartcontract.CreateMultiSigRedeemScript(m, pubs)
	if err != nil {
		return err
	}

	a.Address = address.Uint160ToString(hash.Hash160(script))
	a.Contract = &Contract{
		Script:     script,
		Parameters: getContractParams(m),
	}

	return nil
}

func containsKey(script []byte, pub *keys.PublicKey) bool {
	pb := pub.Bytes()
	if pk, ok := vm.ParseSignatureContract(script); ok {
		return bytes.Equal(pk, pb)
	}
	if _, pks, ok := vm.ParseMultiSigContract(script); ok {
		for _, pk := range pks {
			if bytes.Equal(pk, pb) {
				return true
			}
		}
		return false
	}
	// Custom contracts can't be checked.
	return true
}

func getContractParams(n int) []ContractParam {
	params := make([]ContractParam, n)
	for i := range params {
		params[i].Name = fmt.Sprintf("parameter%d", i)
		params[i].Type = smartcontract.SignatureType
	}

	return params
}
