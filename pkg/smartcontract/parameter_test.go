package smartcontract

import (
	"encoding/hex"
	"encoding/json"
	"math/big"
	"testing"

	"github.com/nspcc-dev/n3sdk/pkg/crypto/keys"
	"github.com/nspcc-dev/n3sdk/pkg/util"
	"github.com/stretchr/testify/require"
)

type jsonCase struct {
	js string
	p  Parameter
}

// jsonParams are parameters with their canonical JSON form.
func jsonParams(t *testing.T) []jsonCase {
	pub, err := hex.DecodeString("03b3bf1502fbdc05449b506aaf04579724024b06542e49262bfaa3f70e200040a9")
	require.NoError(t, err)
	h160, err := util.Uint160DecodeStringLE("0bcd2978634d961c24f5aea0802297ff128724d6")
	require.NoError(t, err)
	h256, err := util.Uint256DecodeStringLE("f0744329617a84d9131b47d81a277bfb5e6ecd4b2e126da9333ffb8cf645f32d")
	require.NoError(t, err)
	huge := new(big.Int).Lsh(big.NewInt(1), 254)

	return []jsonCase{
		{`{"type":"Any"}`, NewAnyParameter()},
		{`{"type":"Signature"}`, NewParameter(SignatureType)},
		{`{"type":"Boolean","value":true}`, NewBoolParameter(true)},
		{`{"type":"Integer","value":"12345"}`, NewIntegerParameter(12345)},
		{`{"type":"Integer","value":"-1"}`, NewIntegerParameter(-1)},
		{`{"type":"Integer","value":"` + huge.String() + `"}`, NewBigIntegerParameter(huge)},
		{`{"type":"String","value":"Some string"}`, NewStringParameter("Some string")},
		{`{"type":"ByteArray","value":"AQID"}`, NewByteArrayParameter([]byte{1, 2, 3})},
		{`{"type":"PublicKey","value":"` + hex.EncodeToString(pub) + `"}`, Parameter{Type: PublicKeyType, Value: pub}},
		{`{"type":"Hash160","value":"0x` + h160.StringLE() + `"}`, NewHash160Parameter(h160)},
		{`{"type":"Hash256","value":"0x` + h256.StringLE() + `"}`, NewHash256Parameter(h256)},
		{`{"type":"Array","value":[{"type":"String","value":"a"},{"type":"Integer","value":"2"}]}`, NewArrayParameter(
			NewStringParameter("a"), NewIntegerParameter(2))},
		{`{"type":"Array","value":[{"type":"ByteArray","value":"AQI="},{"type":"Array","value":[{"type":"ByteArray","value":"AwIB"}]}]}`, NewArrayParameter(
			NewByteArrayParameter([]byte{1, 2}), NewArrayParameter(NewByteArrayParameter([]byte{3, 2, 1})))},
		{`{"type":"Map","value":[{"key":{"type":"String","value":"k"},"value":{"type":"Integer","value":"1"}}]}`, NewMapParameter(
			ParameterPair{Key: NewStringParameter("k"), Value: NewIntegerParameter(1)})},
	}
}

func TestParameterJSON(t *testing.T) {
	for _, c := range jsonParams(t) {
		js, p := c.js, c.p
		data, err := json.Marshal(p)
		require.NoError(t, err)
		require.Equal(t, js, string(data))

		var back Parameter
		require.NoError(t, json.Unmarshal(data, &back), js)
		if p.Type == IntegerType {
			require.Zero(t, p.Value.(*big.Int).Cmp(back.Value.(*big.Int)), js)
			continue
		}
		require.Equal(t, p, back, js)
	}

	for _, p := range []Parameter{
		{Type: UnknownType},
		{Type: IntegerType, Value: "12345"},
		{Type: ByteArrayType, Value: 42},
	} {
		_, err := json.Marshal(p)
		require.Error(t, err, p.Type.String())
	}
}

func TestParam_UnmarshalJSONExtra(t *testing.T) {
	var p Parameter
	require.NoError(t, json.Unmarshal([]byte(`{"type":"Integer","value":42}`), &p))
	require.Equal(t, int64(42), p.Value.(*big.Int).Int64())

	var errCases = []string{
		`{"type":"ByteArray","value":`,
		`{"type":"ByteArray","value":"not base64!"}`,
		`{"type":"Integer","value":"12e"}`,
		`{"type":"Integer","value":"` + new(big.Int).Lsh(big.NewInt(1), 300).String() + `"}`,
		`{"type":"PublicKey","value":"zz"}`,
		`{"type":"Hash160","value":"0x01"}`,
		`{"type":"Boolean","value":"yes"}`,
		`{"type":"Unknown","value":1}`,
	}
	for _, input := range errCases {
		require.Error(t, json.Unmarshal([]byte(input), &p), input)
	}
}

func TestParameterValidate(t *testing.T) {
	priv, err := keys.NewPrivateKey()
	require.NoError(t, err)

	valid := []Parameter{
		NewAnyParameter(),
		NewBoolParameter(false),
		NewIntegerParameter(-5),
		NewBigIntegerParameter(new(big.Int).Lsh(big.NewInt(1), 254)),
		NewByteArrayParameter(nil),
		NewStringParameter("ok"),
		NewHash160Parameter(util.Uint160{1}),
		NewHash256Parameter(util.Uint256{2}),
		NewPublicKeyParameter(priv.PublicKey()),
		NewSignatureParameter(make([]byte, 64)),
		NewArrayParameter(NewIntegerParameter(1), NewArrayParameter()),
		NewMapParameter(ParameterPair{Key: NewIntegerParameter(1), Value: NewArrayParameter()}),
		NewParameter(InteropInterfaceType),
	}
	for _, p := range valid {
		require.NoError(t, p.Validate(), p.Type.String())
	}

	invalid := []Parameter{
		{Type: BoolType},
		{Type: IntegerType, Value: int64(1)},
		{Type: IntegerType, Value: new(big.Int).Lsh(big.NewInt(1), 256)},
		{Type: SignatureType, Value: make([]byte, 63)},
		{Type: PublicKeyType, Value: make([]byte, 20)},
		{Type: StringType, Value: string([]byte{0xff, 0xfe})},
		{Type: Hash160Type, Value: util.Uint256{}},
		{Type: AnyType, Value: 1},
		NewArrayParameter(Parameter{Type: BoolType, Value: 1}),
		NewMapParameter(ParameterPair{Key: NewArrayParameter(), Value: NewAnyParameter()}),
		{Type: UnknownType},
	}
	for i, p := range invalid {
		require.ErrorIs(t, p.Validate(), ErrInvalidParameter, i)
	}
}

func TestNewParameterFromValue(t *testing.T) {
	priv, err := keys.NewPrivateKey()
	require.NoError(t, err)
	pub := priv.PublicKey()

	var cases = []struct {
		value    any
		expected Parameter
	}{
		{nil, Parameter{Type: AnyType}},
		{true, Parameter{Type: BoolType, Value: true}},
		{"str", Parameter{Type: StringType, Value: "str"}},
		{[]byte{1, 2}, Parameter{Type: ByteArrayType, Value: []byte{1, 2}}},
		{42, Parameter{Type: IntegerType, Value: big.NewInt(42)}},
		{uint8(7), Parameter{Type: IntegerType, Value: big.NewInt(7)}},
		{int64(-3), Parameter{Type: IntegerType, Value: big.NewInt(-3)}},
		{uint64(1 << 63), Parameter{Type: IntegerType, Value: new(big.Int).SetUint64(1 << 63)}},
		{big.NewInt(100), Parameter{Type: IntegerType, Value: big.NewInt(100)}},
		{util.Uint160{1}, Parameter{Type: Hash160Type, Value: util.Uint160{1}}},
		{&util.Uint160{2}, Parameter{Type: Hash160Type, Value: util.Uint160{2}}},
		{util.Uint256{3}, Parameter{Type: Hash256Type, Value: util.Uint256{3}}},
		{pub, Parameter{Type: PublicKeyType, Value: pub.Bytes()}},
		{NewStringParameter("p"), NewStringParameter("p")},
		{[]any{1, "a"}, NewArrayParameter(NewIntegerParameter(1), NewStringParameter("a"))},
		{[]string{"a", "b"}, NewArrayParameter(NewStringParameter("a"), NewStringParameter("b"))},
		{keys.PublicKeys{pub}, NewArrayParameter(NewPublicKeyParameter(pub))},
	}
	for _, c := range cases {
		actual, err := NewParameterFromValue(c.value)
		require.NoError(t, err, c.value)
		require.Equal(t, c.expected, actual, c.value)
	}

	_, err = NewParameterFromValue(struct{}{})
	require.ErrorIs(t, err, ErrInvalidParameter)
	_, err = NewParameterFromValue([]any{1, struct{}{}})
	require.ErrorIs(t, err, ErrInvalidParameter)

	ps, err := NewParametersFromValues(1, "two", nil)
	require.NoError(t, err)
	require.Equal(t, []Parameter{NewIntegerParameter(1), NewStringParameter("two"), NewAnyParameter()}, ps)
}
