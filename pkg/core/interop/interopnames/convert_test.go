package interopnames

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToID(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		id := ToID([]byte(SystemRuntimeCheckWitness))
		name, err := FromID(id)
		require.NoError(t, err)
		require.Equal(t, SystemRuntimeCheckWitness, name)
	})
	t.Run("Invalid", func(t *testing.T) {
		_, err := FromID(0x42424242)
		require.ErrorIs(t, err, errNotFound)
	})
}

func TestKnownIDs(t *testing.T) {
	require.Equal(t, uint32(0x525b7d62), ToID([]byte(SystemContractCall)))
	require.Equal(t, uint32(0x27b3e756), ToID([]byte(SystemCryptoCheckSig)))
	require.Equal(t, uint32(0x3adcd09e), ToID([]byte(SystemCryptoCheckMultisig)))
}
