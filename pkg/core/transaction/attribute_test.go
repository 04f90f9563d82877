package transaction

import (
	"encoding/json"
	"testing"

	"github.com/nspcc-dev/n3sdk/internal/testserdes"
	"github.com/nspcc-dev/n3sdk/pkg/util"
	"github.com/stretchr/testify/require"
)

func TestAttribute_EncodeBinary(t *testing.T) {
	t.Run("HighPriority", func(t *testing.T) {
		attr := &Attribute{Type: HighPriority}
		testserdes.EncodeDecodeBinary(t, attr, new(Attribute))
	})
	t.Run("NotValidBefore", func(t *testing.T) {
		attr := &Attribute{
			Type:  NotValidBeforeT,
			Value: &NotValidBefore{Height: 123},
		}
		testserdes.EncodeDecodeBinary(t, attr, new(Attribute))
	})
	t.Run("Conflicts", func(t *testing.T) {
		attr := &Attribute{
			Type:  ConflictsT,
			Value: &Conflicts{Hash: util.Uint256{1, 2, 3}},
		}
		data, err := testserdes.EncodeBinary(attr)
		require.NoError(t, err)
		require.Len(t, data, 1+util.Uint256Size)
		testserdes.EncodeDecodeBinary(t, attr, new(Attribute))
	})
	t.Run("unknown", func(t *testing.T) {
		_, err := testserdes.EncodeBinary(&Attribute{Type: 0x42})
		require.ErrorIs(t, err, ErrInvalidAttribute)
		require.ErrorIs(t, testserdes.DecodeBinary([]byte{0x42}, new(Attribute)), ErrInvalidAttribute)
	})
	t.Run("no value", func(t *testing.T) {
		_, err := testserdes.EncodeBinary(&Attribute{Type: ConflictsT})
		require.ErrorIs(t, err, ErrInvalidAttribute)
	})
}

func TestAttribute_MarshalJSON(t *testing.T) {
	t.Run("HighPriority", func(t *testing.T) {
		attr := &Attribute{Type: HighPriority}
		data, err := json.Marshal(attr)
		require.NoError(t, err)
		require.JSONEq(t, `{"type":"HighPriority"}`, string(data))
		testserdes.MarshalUnmarshalJSON(t, attr, new(Attribute))
	})
	t.Run("NotValidBefore", func(t *testing.T) {
		attr := &Attribute{
			Type:  NotValidBeforeT,
			Value: &NotValidBefore{Height: 123},
		}
		data, err := json.Marshal(attr)
		require.NoError(t, err)
		require.JSONEq(t, `{"type":"NotValidBefore","height":123}`, string(data))
		testserdes.MarshalUnmarshalJSON(t, attr, new(Attribute))
	})
	t.Run("Conflicts", func(t *testing.T) {
		h := util.Uint256{1, 2, 3}
		attr := &Attribute{
			Type:  ConflictsT,
			Value: &Conflicts{Hash: h},
		}
		data, err := json.Marshal(attr)
		require.NoError(t, err)
		require.JSONEq(t, `{"type":"Conflicts","hash":"0x`+h.StringLE()+`"}`, string(data))
		testserdes.MarshalUnmarshalJSON(t, attr, new(Attribute))
	})
	t.Run("unknown", func(t *testing.T) {
		require.Error(t, json.Unmarshal([]byte(`{"type":"Oracle"}`), new(Attribute)))
	})
}
