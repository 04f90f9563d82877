package neorpc

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestError_Is(t *testing.T) {
	err := NewError(ErrUnknownTransactionCode, "Unknown transaction", "0x1234")
	require.ErrorIs(t, err, ErrUnknownTransaction)
	require.NotErrorIs(t, err, ErrUnknownContract)
	require.ErrorIs(t, fmt.Errorf("wrapped: %w", err), ErrUnknownTransaction)

	legacy := NewError(ErrCompatGeneric, "unknown contract", "")
	require.ErrorIs(t, legacy, ErrUnknownContract)
	require.NotErrorIs(t, legacy, ErrUnknownTransaction)
	require.False(t, errors.Is(errors.New("Unknown transaction"), ErrUnknownTransaction))
}

func TestError_Error(t *testing.T) {
	require.Equal(t, "Invalid params (-32602)", NewInvalidParamsError("").Error())
	require.Equal(t, "Method not found (-32601) - getfoo", NewMethodNotFoundError("getfoo").Error())

	wrapped := WrapErrorWithData(ErrInvalidParams, "bad hash")
	require.Equal(t, "bad hash", wrapped.Data)
	require.Equal(t, "Invalid params", ErrInvalidParams.Data)
}

func TestIsUnknownTransaction(t *testing.T) {
	for name, tc := range map[string]struct {
		err      error
		expected bool
	}{
		"nil":          {nil, false},
		"plain":        {errors.New("unknown transaction"), false},
		"code":         {NewError(ErrUnknownTransactionCode, "Unknown transaction", ""), true},
		"wrapped code": {fmt.Errorf("rpc: %w", NewError(ErrUnknownTransactionCode, "whatever", "")), true},
		"legacy":       {NewError(ErrCompatGeneric, "Unknown transaction", ""), true},
		"legacy data":  {NewError(ErrCompatGeneric, "Invalid", "unknown transaction 0xabcd"), true},
		"legacy other": {NewError(ErrCompatGeneric, "Unknown block", ""), false},
		"other code":   {NewError(ErrUnknownBlockCode, "Unknown block", ""), false},
	} {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tc.expected, IsUnknownTransaction(tc.err))
		})
	}
}
