package stackitem

import (
	"math/big"
	"testing"

	"github.com/nspcc-dev/n3sdk/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMake(t *testing.T) {
	require.Equal(t, Null{}, Make(nil))
	require.Equal(t, IntegerT, Make(5).Type())
	require.Equal(t, IntegerT, Make(uint64(5)).Type())
	require.Equal(t, ByteArrayT, Make("str").Type())
	require.Equal(t, BooleanT, Make(true).Type())
	require.Equal(t, ArrayT, Make([]int{1, 2}).Type())
	require.Equal(t, ArrayT, Make([]any{1, "x"}).Type())
	require.Equal(t, util.Uint160{1}.BytesBE(), Make(util.Uint160{1}).Value())
	require.Panics(t, func() { Make(struct{}{}) })
}

func TestTryConversions(t *testing.T) {
	t.Run("BigInteger", func(t *testing.T) {
		i := Make(-128)
		b, err := i.TryBytes()
		require.NoError(t, err)
		require.Equal(t, []byte{0x80}, b)
		ok, err := i.TryBool()
		require.NoError(t, err)
		require.True(t, ok)
		zero, _ := Make(0).TryBool()
		require.False(t, zero)
	})
	t.Run("ByteArray", func(t *testing.T) {
		i := Make([]byte{0x80})
		n, err := i.TryInteger()
		require.NoError(t, err)
		require.Equal(t, int64(-128), n.Int64())
		ok, err := i.TryBool()
		require.NoError(t, err)
		require.True(t, ok)
		ok, err = Make([]byte{0, 0}).TryBool()
		require.NoError(t, err)
		require.False(t, ok)

		_, err = Make(make([]byte, 33)).TryInteger()
		require.ErrorIs(t, err, ErrTooBig)
	})
	t.Run("Bool", func(t *testing.T) {
		n, err := Make(true).TryInteger()
		require.NoError(t, err)
		require.Equal(t, int64(1), n.Int64())
		b, err := Make(false).TryBytes()
		require.NoError(t, err)
		require.Equal(t, []byte{0}, b)
	})
	t.Run("Null", func(t *testing.T) {
		_, err := Null{}.TryBytes()
		require.ErrorIs(t, err, ErrInvalidConversion)
		_, err = Null{}.TryInteger()
		require.ErrorIs(t, err, ErrInvalidConversion)
	})
	t.Run("compound", func(t *testing.T) {
		for _, it := range []Item{NewArray(nil), NewStruct(nil), NewMap(), NewInterop(nil), NewPointer(1)} {
			_, err := it.TryBytes()
			assert.ErrorIs(t, err, ErrInvalidConversion, it.String())
			_, err = it.TryInteger()
			assert.ErrorIs(t, err, ErrInvalidConversion, it.String())
			ok, err := it.TryBool()
			assert.NoError(t, err)
			assert.True(t, ok)
		}
	})
}

func TestEquals(t *testing.T) {
	require.True(t, Make(1).Equals(Make(1)))
	require.False(t, Make(1).Equals(Make(2)))
	require.True(t, Make("a").Equals(Make([]byte("a"))))
	require.False(t, Make("a").Equals(Make(1)))
	require.True(t, Make(true).Equals(Make(true)))
	require.True(t, Null{}.Equals(Null{}))
	require.True(t, NewStruct([]Item{Make(1)}).Equals(NewStruct([]Item{Make(1)})))
	require.False(t, NewArray([]Item{Make(1)}).Equals(NewArray([]Item{Make(1)})))
	require.True(t, NewPointer(3).Equals(NewPointer(3)))
}

func TestMap(t *testing.T) {
	m := NewMap()
	m.Add(Make(1), Make("one"))
	m.Add(Make(2), Make("two"))
	m.Add(Make(1), Make("uno"))
	require.Equal(t, 2, m.Len())
	require.True(t, m.Has(Make(2)))
	require.Equal(t, 0, m.Index(Make(1)))
	require.Equal(t, []byte("uno"), m.Value().([]MapElement)[0].Value.Value())
	require.Panics(t, func() { m.Add(NewArray(nil), Null{}) })
}

func TestToString(t *testing.T) {
	s, err := ToString(Make("hello"))
	require.NoError(t, err)
	require.Equal(t, "hello", s)
	_, err = ToString(Make([]byte{0xff}))
	require.Error(t, err)
	_, err = ToString(NewMap())
	require.Error(t, err)
}

func TestCheckIntegerSize(t *testing.T) {
	require.NoError(t, CheckIntegerSize(new(big.Int).Lsh(big.NewInt(1), 254)))
	require.Error(t, CheckIntegerSize(new(big.Int).Lsh(big.NewInt(1), 255)))
}
