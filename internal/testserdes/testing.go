// Package testserdes has round-trip helpers for codec tests.
package testserdes

import (
	"encoding/json"
	"testing"

	"github.com/nspcc-dev/n3sdk/pkg/io"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// MarshalUnmarshalJSON encodes expected to JSON, decodes it into actual and
// requires both to be equal.
func MarshalUnmarshalJSON(t *testing.T, expected, actual any) {
	roundTrip(t, json.Marshal, json.Unmarshal, expected, actual)
}

// MarshalUnmarshalYAML is the same as MarshalUnmarshalJSON, but for YAML.
func MarshalUnmarshalYAML(t *testing.T, expected, actual any) {
	roundTrip(t, yaml.Marshal, yaml.Unmarshal, expected, actual)
}

func roundTrip(t *testing.T, enc func(any) ([]byte, error), dec func([]byte, any) error, expected, actual any) {
	t.Helper()
	data, err := enc(expected)
	require.NoError(t, err)
	require.NoError(t, dec(data, actual), string(data))
	require.Equal(t, expected, actual)
}

// EncodeDecodeBinary does the binary round trip of expected into actual.
func EncodeDecodeBinary(t *testing.T, expected, actual io.Serializable) {
	t.Helper()
	roundTrip(t, func(v any) ([]byte, error) {
		return EncodeBinary(v.(io.Serializable))
	}, func(data []byte, v any) error {
		return DecodeBinary(data, v.(io.Serializable))
	}, expected, actual)
}

// EncodeBinary returns the binary form of a.
func EncodeBinary(a io.Serializable) ([]byte, error) {
	w := io.NewBufBinWriter()
	a.EncodeBinary(w.BinWriter)
	if w.Err != nil {
		return nil, w.Err
	}
	return w.Bytes(), nil
}

// DecodeBinary fills a from data.
func DecodeBinary(data []byte, a io.Serializable) error {
	r := io.NewBinReaderFromBuf(data)
	a.DecodeBinary(r)
	return r.Err
}
