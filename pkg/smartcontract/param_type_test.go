package smartcontract

import (
	"encoding/json"
	"testing"

	"github.com/nspcc-dev/n3sdk/internal/testserdes"
	"github.com/nspcc-dev/n3sdk/pkg/io"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseParamType(t *testing.T) {
	for in, out := range map[string]ParamType{
		"signature":        SignatureType,
		"Signature":        SignatureType,
		"SiGnAtUrE":        SignatureType,
		"bool":             BoolType,
		"Boolean":          BoolType,
		"int":              IntegerType,
		"hash160":          Hash160Type,
		"hash256":          Hash256Type,
		"bytes":            ByteArrayType,
		"ByteString":       ByteArrayType,
		"key":              PublicKeyType,
		"string":           StringType,
		"array":            ArrayType,
		"struct":           ArrayType,
		"map":              MapType,
		"interopinterface": InteropInterfaceType,
		"void":             VoidType,
		"any":              AnyType,
	} {
		pt, err := ParseParamType(in)
		require.NoError(t, err, in)
		require.Equal(t, out, pt, in)
	}
	for _, in := range []string{"qwerty", "", "hash"} {
		_, err := ParseParamType(in)
		require.ErrorIs(t, err, ErrInvalidParameter, in)
	}
}

func TestParamTypeStringRoundTrip(t *testing.T) {
	for pt := range validParamTypes {
		back, err := ParseParamType(pt.String())
		require.NoError(t, err)
		require.Equal(t, pt, back)

		testserdes.MarshalUnmarshalJSON(t, &pt, new(ParamType))
	}
	require.Equal(t, "", UnknownType.String())
	_, err := json.Marshal(UnknownType)
	require.Error(t, err)
}

func TestParamTypeYAML(t *testing.T) {
	var pt ParamType
	require.NoError(t, yaml.Unmarshal([]byte("hash160"), &pt))
	require.Equal(t, Hash160Type, pt)

	out, err := yaml.Marshal(IntegerType)
	require.NoError(t, err)
	require.Equal(t, "Integer\n", string(out))
}

func TestParamTypeBinary(t *testing.T) {
	for pt := range validParamTypes {
		testserdes.EncodeDecodeBinary(t, &pt, new(ParamType))
	}
	r := io.NewBinReaderFromBuf([]byte{0x42})
	var pt ParamType
	pt.DecodeBinary(r)
	require.ErrorIs(t, r.Err, ErrInvalidParameter)
}

func TestConvertToParamType(t *testing.T) {
	pt, err := ConvertToParamType(0x11)
	require.NoError(t, err)
	require.Equal(t, IntegerType, pt)
	_, err = ConvertToParamType(0x42)
	require.Error(t, err)
}
