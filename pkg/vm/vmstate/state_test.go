package vmstate

import (
	"encoding/json"
	"testing"

	"github.com/nspcc-dev/n3sdk/internal/testserdes"
	"github.com/stretchr/testify/require"
)

func TestStateFromString(t *testing.T) {
	var (
		s   State
		err error
	)

	s, err = FromString("HALT")
	require.NoError(t, err)
	require.Equal(t, Halt, s)

	s, err = FromString("FAULT")
	require.NoError(t, err)
	require.Equal(t, Fault, s)

	s, err = FromString("NONE")
	require.NoError(t, err)
	require.Equal(t, None, s)

	s, err = FromString("HALT, BREAK")
	require.NoError(t, err)
	require.Equal(t, Halt|Break, s)

	s, err = FromString("FAULT, BREAK")
	require.NoError(t, err)
	require.Equal(t, Fault|Break, s)

	_, err = FromString("HALT, KEK")
	require.ErrorIs(t, err, ErrUnknownState)
}

func TestState_HasFlag(t *testing.T) {
	require.True(t, Halt.HasFlag(Halt))
	require.True(t, Break.HasFlag(Break))
	require.True(t, Fault.HasFlag(Fault))
	require.True(t, (Halt | Break).HasFlag(Halt))
	require.True(t, (Halt | Break).HasFlag(Break))

	require.False(t, Halt.HasFlag(Break))
	require.False(t, None.HasFlag(Halt))
	require.False(t, (Fault | Break).HasFlag(Halt))
}

func TestStateMarshalJSON(t *testing.T) {
	var (
		data []byte
		err  error
	)

	data, err = json.Marshal(Halt | Break)
	require.NoError(t, err)
	require.Equal(t, data, []byte(`"HALT, BREAK"`))

	data, err = json.Marshal(Fault)
	require.NoError(t, err)
	require.Equal(t, data, []byte(`"FAULT"`))

	for _, s := range []State{None, Halt, Fault, Halt | Break} {
		testserdes.MarshalUnmarshalJSON(t, &s, new(State))
	}
	var s State
	require.Error(t, json.Unmarshal([]byte(`1`), &s))
}
