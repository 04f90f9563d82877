package state

import (
	"errors"

	"github.com/nspcc-dev/n3sdk/pkg/crypto/hash"
	"github.com/nspcc-dev/n3sdk/pkg/io"
	"github.com/nspcc-dev/n3sdk/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/n3sdk/pkg/smartcontract/nef"
	"github.com/nspcc-dev/n3sdk/pkg/util"
	"github.com/nspcc-dev/n3sdk/pkg/vm/emit"
	"github.com/nspcc-dev/n3sdk/pkg/vm/opcode"
)

// Contract holds information about a smart contract in the Neo blockchain.
type Contract struct {
	ContractBase
	UpdateCounter uint16 `json:"updatecounter"`
}

// ContractBase represents a part shared by native and user-deployed contracts.
type ContractBase struct {
	ID       int32             `json:"id"`
	Hash     util.Uint160      `json:"hash"`
	NEF      nef.File          `json:"nef"`
	Manifest manifest.Manifest `json:"manifest"`
}

// CreateContractHash creates a deployed contract hash from the transaction sender,
// contract NEF checksum and name, the way ContractManagement does it.
func CreateContractHash(sender util.Uint160, checksum uint32, name string) util.Uint160 {
	w := io.NewBufBinWriter()
	emit.Opcodes(w.BinWriter, opcode.ABORT)
	emit.Bytes(w.BinWriter, sender.BytesBE())
	emit.Int(w.BinWriter, int64(checksum))
	emit.String(w.BinWriter, name)
	if w.Err != nil {
		panic(w.Err)
	}
	return hash.Hash160(w.Bytes())
}

// IsNative checks whether the contract is one of the native ones, they
// have negative identifiers.
func (c *Contract) IsNative() bool {
	return c.ID < 0
}

// Validate checks the contract state received from the node for basic
// consistency: the manifest must be valid for the contract hash and every
// ABI method offset must point into the script.
func (c *Contract) Validate() error {
	if len(c.NEF.Script) == 0 {
		return errors.New("empty script")
	}
	if err := c.Manifest.IsValid(c.Hash); err != nil {
		return err
	}
	for _, m := range c.Manifest.ABI.Methods {
		if m.Offset >= len(c.NEF.Script) {
			return errors.New("method offset is out of script")
		}
	}
	return nil
}
