package invoker_test

import (
	"context"
	"errors"

	"github.com/nspcc-dev/n3sdk/pkg/core/native/nativehashes"
	"github.com/nspcc-dev/n3sdk/pkg/core/transaction"
	"github.com/nspcc-dev/n3sdk/pkg/encoding/address"
	"github.com/nspcc-dev/n3sdk/pkg/rpcclient"
	"github.com/nspcc-dev/n3sdk/pkg/rpcclient/invoker"
	"github.com/nspcc-dev/n3sdk/pkg/rpcclient/unwrap"
	"github.com/nspcc-dev/n3sdk/pkg/util"
)

func ExampleInvoker() {
	// Errors are ignored to keep the example short.
	ctx := context.Background()
	c, _ := rpcclient.New(ctx, "https://rpc.example.org:10331", rpcclient.Options{})
	defer c.Close()

	// Reads need no signers. Signerless invocations may be answered from
	// the client cache.
	reader := invoker.New(c, nil)
	decimals, _ := unwrap.Int64(reader.Call(ctx, nativehashes.Gas, "decimals"))
	_ = decimals

	owner, _ := address.StringToUint160("NbrUYaZgyhSkNoRo9ugRyEMdUZxrhkNaWB")
	gas, _ := unwrap.BigInt(reader.Call(ctx, nativehashes.Gas, "balanceOf", owner))
	_ = gas

	// A transfer checks the sender witness, so it needs a signer to HALT.
	payer := invoker.New(c, []transaction.Signer{{Account: owner, Scopes: transaction.CalledByEntry}})
	res, err := payer.Call(ctx, nativehashes.Gas, "transfer", owner, util.Uint160{7}, 100, nil)
	if err == nil && res.IsHalt() {
		// Script and GasConsumed are what a transaction needs to repeat the
		// call on chain.
		_, _ = res.Script, res.GasConsumed
	}

	// Iterators need node sessions, without them the values (if any) come
	// expanded in the result.
	session, iter, err := unwrap.SessionIterator(reader.Call(ctx, nativehashes.Neo, "getAllCandidates"))
	if errors.Is(err, unwrap.ErrNoSessionID) {
		_ = iter.Values
		return
	}
	for {
		batch, err := reader.TraverseIterator(ctx, session, &iter, 50)
		if err != nil || len(batch) == 0 {
			break
		}
	}
	_ = reader.TerminateSession(ctx, session)
}
