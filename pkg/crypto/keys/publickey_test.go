package keys

import (
	"crypto/elliptic"
	"encoding/hex"
	"encoding/json"
	"slices"
	"testing"

	"github.com/nspcc-dev/n3sdk/internal/keytestcases"
	"github.com/nspcc-dev/n3sdk/internal/testserdes"
	"github.com/stretchr/testify/require"
)

const compressedKey = "03b209fd4f53a7170ea4444e0cb0a6bb6a53c2bd016926989cf85f9b0fba17a70c"

func TestPublicKeyInfinity(t *testing.T) {
	b, err := testserdes.EncodeBinary(&PublicKey{})
	require.NoError(t, err)
	require.Equal(t, []byte{0}, b)

	k := &PublicKey{}
	require.NoError(t, k.DecodeBytes(b))
	require.True(t, k.IsInfinity())
	require.False(t, k.Verify(make([]byte, SignatureLen), make([]byte, 32)))
}

func TestPublicKeyBinary(t *testing.T) {
	for i := 0; i < 4; i++ {
		k, err := NewPrivateKey()
		require.NoError(t, err)
		testserdes.EncodeDecodeBinary(t, k.PublicKey(), new(PublicKey))
	}

	for _, b := range [][]byte{{}, {0x02}, {0x04}, {0x05, 1, 2}} {
		require.Error(t, testserdes.DecodeBinary(b, new(PublicKey)))
	}
}

func TestNewPublicKeyFromString(t *testing.T) {
	k, err := NewPublicKeyFromString(compressedKey)
	require.NoError(t, err)
	require.Equal(t, compressedKey, hex.EncodeToString(k.Bytes()))
	require.Equal(t, compressedKey, k.StringCompressed())
	require.Equal(t, compressedKey, k.String())

	bad := map[string]string{
		"no prefix":        compressedKey[2:],
		"not hex":          "zz" + compressedKey[2:],
		"trailing byte":    compressedKey + "00",
		"no square root":   "02ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
		"x above p":        "02ffffffff00000001000000000000000000000001ffffffffffffffffffffffff",
		"not on the curve": "04ffffffff00000001000000000000000000000000ffffffffffffffffffffffff0000000000000000000000000000000000000000000000000000000000000000",
	}
	for name, s := range bad {
		t.Run(name, func(t *testing.T) {
			_, err := NewPublicKeyFromString(s)
			require.ErrorIs(t, err, ErrInvalidKey)
		})
	}
}

func TestPublicKeyForms(t *testing.T) {
	t.Run("uncompressed", func(t *testing.T) {
		priv, err := NewPrivateKey()
		require.NoError(t, err)
		pub := priv.PublicKey()
		require.Len(t, pub.UncompressedBytes(), 65)
		back, err := NewPublicKeyFromBytes(pub.UncompressedBytes(), elliptic.P256())
		require.NoError(t, err)
		require.True(t, pub.Equal(back))
	})
	t.Run("secp256k1", func(t *testing.T) {
		priv, err := NewSecp256k1PrivateKey()
		require.NoError(t, err)
		pub := priv.PublicKey()
		back, err := NewPublicKeyFromBytes(pub.Bytes(), pub.Curve)
		require.NoError(t, err)
		require.Equal(t, 0, pub.Cmp(back))
	})
}

func TestPublicKeyAccount(t *testing.T) {
	for _, tc := range keytestcases.Arr {
		if tc.Invalid {
			continue
		}
		k, err := NewPublicKeyFromString(tc.PublicKey)
		require.NoError(t, err)
		require.Equal(t, tc.Address, k.Address())
	}

	k, err := NewPublicKeyFromString(keytestcases.Arr[0].PublicKey)
	require.NoError(t, err)
	script := k.GetVerificationScript()
	require.Equal(t, "0c21"+keytestcases.Arr[0].PublicKey+"4156e7b327", hex.EncodeToString(script))
}

func TestPublicKeysSorted(t *testing.T) {
	keys := make(PublicKeys, 10)
	for i := range keys {
		priv, err := NewPrivateKey()
		require.NoError(t, err)
		keys[i] = priv.PublicKey()
	}

	sorted := keys.Sorted()
	require.True(t, slices.IsSortedFunc(sorted, (*PublicKey).Cmp))
	require.Len(t, sorted, len(keys))
	for _, k := range keys {
		require.True(t, sorted.Contains(k))
	}
	require.Nil(t, PublicKeys(nil).Copy())
}

func TestPublicKeyText(t *testing.T) {
	k, err := NewPublicKeyFromString(compressedKey)
	require.NoError(t, err)

	data, err := json.Marshal(k)
	require.NoError(t, err)
	require.Equal(t, `"`+compressedKey+`"`, string(data))
	testserdes.MarshalUnmarshalJSON(t, k, new(PublicKey))
	testserdes.MarshalUnmarshalYAML(t, k, new(PublicKey))

	actual := new(PublicKey)
	require.Error(t, actual.UnmarshalJSON([]byte(`123`)))
	require.Error(t, actual.UnmarshalJSON([]byte(`"zz"`)))
}
