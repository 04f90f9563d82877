package invoker_test

import (
	"github.com/nspcc-dev/n3sdk/pkg/rpcclient"
	"github.com/nspcc-dev/n3sdk/pkg/rpcclient/invoker"
	"github.com/nspcc-dev/n3sdk/pkg/rpcclient/nep17"
	"github.com/nspcc-dev/n3sdk/pkg/rpcclient/neptoken"
)

var (
	_ invoker.RPCInvoke   = (*rpcclient.Client)(nil)
	_ invoker.RPCSessions = (*rpcclient.Client)(nil)
	_ neptoken.InfoClient = (*rpcclient.Client)(nil)
	_ nep17.Invoker       = (*invoker.Invoker)(nil)
)
