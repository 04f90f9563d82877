package stackitem

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromToJSONWithTypes(t *testing.T) {
	m := NewMap()
	m.Add(Make("key"), Make(42))
	m.Add(Make(true), NewArray([]Item{}))

	var testCases = []struct {
		name string
		item Item
		json string
	}{
		{"Null", Null{}, `{"type":"Any"}`},
		{"Integer", Make(42), `{"type":"Integer","value":"42"}`},
		{"NegativeInteger", Make(-1), `{"type":"Integer","value":"-1"}`},
		{"ByteString", Make([]byte{1, 2, 3}), `{"type":"ByteString","value":"AQID"}`},
		{"Buffer", NewBuffer([]byte{1, 2, 3}), `{"type":"Buffer","value":"AQID"}`},
		{"BoolTrue", Make(true), `{"type":"Boolean","value":true}`},
		{"BoolFalse", Make(false), `{"type":"Boolean","value":false}`},
		{"Struct", NewStruct([]Item{Make(11)}), `{"type":"Struct","value":[{"type":"Integer","value":"11"}]}`},
		{"Array", Make([]Item{Make(1), Make("a")}), `{"type":"Array","value":[{"type":"Integer","value":"1"},{"type":"ByteString","value":"YQ=="}]}`},
		{"EmptyArray", NewArray([]Item{}), `{"type":"Array","value":[]}`},
		{"Map", m, `{"type":"Map","value":[{"key":{"type":"ByteString","value":"a2V5"},"value":{"type":"Integer","value":"42"}},` +
			`{"key":{"type":"Boolean","value":true},"value":{"type":"Array","value":[]}}]}`},
		{"Pointer", NewPointer(42), `{"type":"Pointer","value":42}`},
		{"Interop", NewInterop(InteropDescriptor{Interface: "IIterator", ID: "fcf7b800-192a-488e-8e6e-93be6f4a8ebd"}),
			`{"id":"fcf7b800-192a-488e-8e6e-93be6f4a8ebd","interface":"IIterator","type":"InteropInterface"}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			js, err := ToJSONWithTypes(tc.item)
			require.NoError(t, err)
			require.JSONEq(t, tc.json, string(js))

			actual, err := FromJSONWithTypes(js)
			require.NoError(t, err)
			require.Equal(t, tc.item.Type(), actual.Type())
			require.Equal(t, tc.item.Value(), actual.Value())
		})
	}
}

func TestFromJSONWithTypesErrors(t *testing.T) {
	var errCases = []string{
		`not json`,
		`{"type":"Unknown"}`,
		`{"type":"Integer","value":42}`,
		`{"type":"Integer","value":"4x2"}`,
		`{"type":"Integer","value":"` + new(big.Int).Lsh(big.NewInt(1), 256).String() + `"}`,
		`{"type":"ByteString","value":"!!"}`,
		`{"type":"Boolean","value":"true"}`,
		`{"type":"Array","value":{}}`,
		`{"type":"Array","value":[{"type":"Bad"}]}`,
		`{"type":"Map","value":[{"key":{"type":"Array","value":[]},"value":{"type":"Any"}}]}`,
		`{"type":"Pointer","value":"x"}`,
	}
	for _, s := range errCases {
		_, err := FromJSONWithTypes([]byte(s))
		require.Error(t, err, s)
	}
}

func TestToJSONWithTypesRecursive(t *testing.T) {
	arr := NewArray([]Item{})
	arr.value = append(arr.value, arr)
	_, err := ToJSONWithTypes(arr)
	require.ErrorIs(t, err, ErrRecursive)

	_, err = ToJSONWithTypes(nil)
	require.ErrorIs(t, err, ErrUnserializable)
}

func TestInteropWithoutDescriptor(t *testing.T) {
	item, err := FromJSONWithTypes([]byte(`{"type":"InteropInterface"}`))
	require.NoError(t, err)
	require.Equal(t, InteropT, item.Type())
	require.Nil(t, item.Value())
}
