package result

import (
	"github.com/nspcc-dev/n3sdk/pkg/util"
)

// RelayResult is a result of `sendrawtransaction` or `submitblock` RPC calls.
type RelayResult struct {
	Hash util.Uint256 `json:"hash"`
}
