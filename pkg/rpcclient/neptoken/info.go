package neptoken

import (
	"context"
	"fmt"

	"github.com/nspcc-dev/n3sdk/pkg/core/state"
	"github.com/nspcc-dev/n3sdk/pkg/rpcclient/invoker"
	"github.com/nspcc-dev/n3sdk/pkg/util"
	"github.com/nspcc-dev/n3sdk/pkg/wallet"
	"golang.org/x/sync/errgroup"
)

// InfoClient is the part of the RPC client Info needs.
type InfoClient interface {
	invoker.RPCInvoke

	GetContractStateByHash(ctx context.Context, hash util.Uint160) (*state.Contract, error)
}

// Info describes the token deployed at hash: its name and standard come
// from the manifest, symbol and decimals are read from the contract.
func Info(ctx context.Context, c InfoClient, hash util.Uint160) (*wallet.Token, error) {
	cs, err := c.GetContractStateByHash(ctx, hash)
	if err != nil {
		return nil, err
	}
	standard := cs.Manifest.TokenStandard()
	if standard == "" {
		return nil, fmt.Errorf("contract %s is not a NEP-11/NEP-17 token", hash.StringLE())
	}

	var (
		b        = New(invoker.New(c, nil), hash)
		symbol   string
		decimals int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		symbol, err = b.Symbol(gctx)
		return err
	})
	g.Go(func() (err error) {
		decimals, err = b.Decimals(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("token %s: %w", hash.StringLE(), err)
	}
	return wallet.NewToken(hash, cs.Manifest.Name, symbol, int64(decimals), standard), nil
}
