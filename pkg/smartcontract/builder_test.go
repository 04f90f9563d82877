package smartcontract

import (
	"math/big"
	"testing"

	"github.com/nspcc-dev/n3sdk/pkg/smartcontract/callflag"
	"github.com/nspcc-dev/n3sdk/pkg/util"
	"github.com/nspcc-dev/n3sdk/pkg/vm/opcode"
	"github.com/stretchr/testify/require"
)

func TestBuilder(t *testing.T) {
	var (
		token = util.Uint160{1, 2, 3}
		from  = util.Uint160{4}
		to    = util.Uint160{5}
	)
	b := NewBuilder()
	b.InvokeWithAssert(token, "transfer", from, to, 100, nil)
	b.InvokeMethod(token, "symbol")
	require.NotZero(t, b.Len())

	script, err := b.Script()
	require.NoError(t, err)

	stack, calls := simulate(t, script)
	require.Len(t, calls, 2)
	require.Equal(t, "transfer", calls[0].method)
	require.EqualValues(t, callflag.All, calls[0].flags)
	require.Equal(t, from.BytesBE(), calls[0].args[0])
	require.Equal(t, to.BytesBE(), calls[0].args[1])
	require.Equal(t, 0, big.NewInt(100).Cmp(calls[0].args[2].(*big.Int)))
	require.Nil(t, calls[0].args[3])
	require.Equal(t, "symbol", calls[1].method)
	require.Empty(t, calls[1].args)
	// Only the symbol call result remains, the transfer one is consumed by ASSERT.
	require.Len(t, stack, 1)

	b.Reset()
	require.Zero(t, b.Len())
	b.InvokeMethod(token, "bad", struct{}{})
	_, err = b.Script()
	require.ErrorIs(t, err, ErrInvalidParameter)

	b.Reset()
	b.Assert()
	script, err = b.Script()
	require.NoError(t, err)
	require.Equal(t, []byte{byte(opcode.ASSERT)}, script)
}
