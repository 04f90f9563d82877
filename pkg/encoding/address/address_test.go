package address

import (
	"crypto/rand"
	"testing"

	"github.com/nspcc-dev/n3sdk/pkg/encoding/base58"
	"github.com/nspcc-dev/n3sdk/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUint160DecodeEncodeAddress(t *testing.T) {
	addrs := []string{
		"NQrEVKgpx2qEg6DpVMT5H8kFa7kc2DFgqS",
		"NYaVsrMV9GS8aaspRS4odXf1WHZdMmJiPC",
		"NWcpK2143ZjgzDYyQJhoKrodJUymHTxPzR",
	}
	for _, addr := range addrs {
		val, err := StringToUint160(addr)
		require.NoError(t, err)
		assert.Equal(t, addr, Uint160ToString(val))
	}
}

func TestRoundTripKnownAddress(t *testing.T) {
	const addr = "NM7Aky765FG8NhhwtxjXRx7jEL1cnw7PBP"
	u, err := StringToUint160(addr)
	require.NoError(t, err)
	require.Equal(t, addr, Uint160ToString(u))
}

func TestRoundTripRandom(t *testing.T) {
	for i := 0; i < 64; i++ {
		var u util.Uint160
		_, err := rand.Read(u[:])
		require.NoError(t, err)
		actual, err := StringToUint160(Uint160ToString(u))
		require.NoError(t, err)
		require.Equal(t, u, actual)
	}
}

func TestUint160DecodeBadBase58(t *testing.T) {
	address := "AJeAEsmeD6t279Dx4n2HWdUvUmmXQ4iJv@"

	_, err := StringToUint160(address)
	require.ErrorIs(t, err, ErrInvalidAddress)
}

func TestUint160DecodeBadPrefix(t *testing.T) {
	var u util.Uint160
	u[3] = 7
	address := EncodeWithVersion(0x18, u)

	_, err := StringToUint160(address)
	require.ErrorIs(t, err, ErrInvalidAddress)
}

func TestUint160DecodeBadLength(t *testing.T) {
	address := base58.CheckEncode([]byte{NEO3Prefix, 1, 2, 3})
	_, err := StringToUint160(address)
	require.ErrorIs(t, err, ErrInvalidAddress)
}

func TestUint160DecodeBadChecksum(t *testing.T) {
	address := "NQrEVKgpx2qEg6DpVMT5H8kFa7kc2DFgqS"
	bad := address[:len(address)-1] + "T"

	_, err := StringToUint160(bad)
	require.ErrorIs(t, err, ErrInvalidAddress)
}

func TestEncodeWithVersion(t *testing.T) {
	var u util.Uint160
	u[0] = 0x42
	s := EncodeWithVersion(NEO2Prefix, u)
	_, err := StringToUint160(s)
	require.ErrorIs(t, err, ErrInvalidAddress)
	back, err := DecodeWithVersion(NEO2Prefix, s)
	require.NoError(t, err)
	require.Equal(t, u, back)
}
