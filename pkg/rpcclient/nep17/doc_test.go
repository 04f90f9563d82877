package nep17_test

import (
	"context"
	"math/big"

	"github.com/nspcc-dev/n3sdk/pkg/core/native/nativehashes"
	"github.com/nspcc-dev/n3sdk/pkg/encoding/address"
	"github.com/nspcc-dev/n3sdk/pkg/rpcclient"
	"github.com/nspcc-dev/n3sdk/pkg/rpcclient/actor"
	"github.com/nspcc-dev/n3sdk/pkg/rpcclient/invoker"
	"github.com/nspcc-dev/n3sdk/pkg/rpcclient/nep17"
	"github.com/nspcc-dev/n3sdk/pkg/rpcclient/neptoken"
	"github.com/nspcc-dev/n3sdk/pkg/wallet"
)

func ExampleTokenReader() {
	// Errors are ignored to keep the example short.
	ctx := context.Background()
	c, _ := rpcclient.New(ctx, "https://rpc.example.org:10331", rpcclient.Options{})
	defer c.Close()

	gas := nep17.NewReader(invoker.New(c, nil), nativehashes.Gas)
	holder, _ := address.StringToUint160("NbrUYaZgyhSkNoRo9ugRyEMdUZxrhkNaWB")
	balance, _ := gas.BalanceOf(ctx, holder)

	// Balances are in token fractions, Token knows how to show them.
	tok, _ := neptoken.Info(ctx, c, nativehashes.Gas)
	_ = tok.FormatAmount(balance)
}

func ExampleToken() {
	// Errors are ignored to keep the example short.
	ctx := context.Background()
	acc, _ := wallet.NewAccountFromWIF("L1QqQJnpBwbsPGAuutuzPTac8piqvbR1HRjrY5qHup48TBCBFe4g")
	defer acc.Close()

	c, _ := rpcclient.New(ctx, "https://rpc.example.org:10331", rpcclient.Options{})
	defer c.Close()

	a, _ := actor.NewSimple(ctx, c, acc)
	gas := nep17.New(a, nativehashes.Gas)
	tok, _ := neptoken.Info(ctx, c, nativehashes.Gas)

	alice, _ := address.StringToUint160("NbrUYaZgyhSkNoRo9ugRyEMdUZxrhkNaWB")
	bob, _ := address.StringToUint160("NRdemzSxMkKXwo9jPQ3NhsCQgRyuRWTW3q")
	amount, _ := tok.ParseAmount("1.5")

	// One transaction paying both, every transfer is ASSERTed.
	txid, vub, _ := gas.MultiTransfer(ctx, []nep17.TransferParameters{
		{From: a.Sender(), To: alice, Amount: amount},
		{From: a.Sender(), To: bob, Amount: big.NewInt(1)},
	})
	aer, _ := a.Wait(ctx, txid, vub)
	_ = aer
}
