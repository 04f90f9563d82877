package actor_test

import (
	"github.com/nspcc-dev/n3sdk/pkg/rpcclient"
	"github.com/nspcc-dev/n3sdk/pkg/rpcclient/actor"
	"github.com/nspcc-dev/n3sdk/pkg/rpcclient/nep17"
)

// The client and the Actor must keep satisfying the interfaces built on top
// of them.
var (
	_ actor.RPCActor         = (*rpcclient.Client)(nil)
	_ actor.RPCPollingWaiter = (*rpcclient.Client)(nil)
	_ nep17.Actor            = (*actor.Actor)(nil)
)
