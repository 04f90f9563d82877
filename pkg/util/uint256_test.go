package util_test

import (
	"testing"

	"github.com/nspcc-dev/n3sdk/internal/testserdes"
	"github.com/nspcc-dev/n3sdk/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUint256UnmarshalJSON(t *testing.T) {
	str := "f037308fa0ab18155bccfc08485468c112409ea5064595699e98c545f245f32d"
	expected, err := util.Uint256DecodeStringLE(str)
	require.NoError(t, err)

	var u1, u2 util.Uint256
	require.NoError(t, u1.UnmarshalJSON([]byte(`"`+str+`"`)))
	assert.True(t, expected.Equals(u1))

	testserdes.MarshalUnmarshalJSON(t, &expected, &u2)
	assert.Error(t, u2.UnmarshalJSON([]byte(`123`)))
}

func TestUint256DecodeString(t *testing.T) {
	hexStr := "f037308fa0ab18155bccfc08485468c112409ea5064595699e98c545f245f32d"
	val, err := util.Uint256DecodeStringLE(hexStr)
	require.NoError(t, err)
	assert.Equal(t, hexStr, val.StringLE())

	valBE, err := util.Uint256DecodeStringBE(hexStr)
	require.NoError(t, err)
	assert.Equal(t, val, valBE.Reverse())

	_, err = util.Uint256DecodeStringLE(hexStr[1:])
	assert.Error(t, err)
}

func TestUint256CompareTo(t *testing.T) {
	var a, b util.Uint256
	b[0] = 1
	assert.Equal(t, -1, a.CompareTo(b))
	assert.Equal(t, 1, b.CompareTo(a))
	assert.Equal(t, 0, a.CompareTo(a))
}
