package unwrap

import (
	"errors"
	"math"
	"math/big"
	"testing"

	"github.com/google/uuid"
	"github.com/nspcc-dev/n3sdk/pkg/crypto/keys"
	"github.com/nspcc-dev/n3sdk/pkg/neorpc/result"
	"github.com/nspcc-dev/n3sdk/pkg/util"
	"github.com/nspcc-dev/n3sdk/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

// halt returns a successful invocation result with the given stack.
func halt(items ...any) *result.Invoke {
	r := &result.Invoke{State: "HALT"}
	for _, it := range items {
		r.Stack = append(r.Stack, stackitem.Make(it))
	}
	return r
}

func arr(items ...any) stackitem.Item {
	return stackitem.Make(items)
}

type unwrapper func(r *result.Invoke, err error) (any, error)

func wrap[T any](f func(*result.Invoke, error) (T, error)) unwrapper {
	return func(r *result.Invoke, err error) (any, error) { return f(r, err) }
}

var all = map[string]unwrapper{
	"BigInt":               wrap(BigInt),
	"Bool":                 wrap(Bool),
	"Int64":                wrap(Int64),
	"Bytes":                wrap(Bytes),
	"UTF8String":           wrap(UTF8String),
	"PrintableASCIIString": wrap(PrintableASCIIString),
	"Uint160":              wrap(Uint160),
	"Uint256":              wrap(Uint256),
	"Array":                wrap(Array),
	"ArrayOfBytes":         wrap(ArrayOfBytes),
	"ArrayOfUint160":       wrap(ArrayOfUint160),
	"ArrayOfPublicKeys":    wrap(ArrayOfPublicKeys),
	"Map":                  wrap(Map),
	"LimitedInt64": func(r *result.Invoke, err error) (any, error) {
		return LimitedInt64(r, err, 0, 1)
	},
	"SessionIterator": func(r *result.Invoke, err error) (any, error) {
		_, _, err = SessionIterator(r, err)
		return nil, err
	},
	"Nothing": func(r *result.Invoke, err error) (any, error) {
		return nil, Nothing(r, err)
	},
}

func TestCommonErrors(t *testing.T) {
	someErr := errors.New("some")
	for name, f := range all {
		t.Run(name, func(t *testing.T) {
			_, err := f(halt(42), someErr)
			require.ErrorIs(t, err, someErr)

			_, err = f(&result.Invoke{State: "FAULT", FaultException: "ASSERT is executed with false result.", Stack: halt(42).Stack}, nil)
			require.ErrorIs(t, err, ErrFault)
			require.ErrorContains(t, err, "ASSERT is executed")

			_, err = f(halt(42, 42), nil)
			require.Error(t, err)
		})
	}
	for name, f := range all {
		if name == "Nothing" {
			continue
		}
		_, err := f(halt(), nil)
		require.Error(t, err, name)
	}
}

func TestScalars(t *testing.T) {
	hash := "0x03c564ed28ba3d50beb1a52dcb751b929e1d747281566bd510363470be186bc0"

	i, err := BigInt(halt(42), nil)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(42), i)
	_, err = BigInt(halt(arr()), nil)
	require.Error(t, err)

	b, err := Bool(halt(true), nil)
	require.NoError(t, err)
	require.True(t, b)
	_, err = Bool(halt(hash), nil)
	require.Error(t, err)

	n, err := Int64(halt(42), nil)
	require.NoError(t, err)
	require.Equal(t, int64(42), n)
	_, err = Int64(halt(hash), nil)
	require.Error(t, err)
	_, err = Int64(halt(uint64(math.MaxUint64)), nil)
	require.Error(t, err)

	n, err = LimitedInt64(halt(42), nil, 0, 128)
	require.NoError(t, err)
	require.Equal(t, int64(42), n)
	for _, lim := range [][2]int64{{128, 256}, {0, 40}} {
		_, err = LimitedInt64(halt(42), nil, lim[0], lim[1])
		require.Error(t, err)
	}
	_, err = LimitedInt64(halt(uint64(math.MaxUint64)), nil, math.MinInt64, math.MaxInt64)
	require.Error(t, err)

	bs, err := Bytes(halt([]byte{1, 2, 3}), nil)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, bs)
	_, err = Bytes(halt(arr()), nil)
	require.Error(t, err)
}

func TestStrings(t *testing.T) {
	for _, f := range []func(*result.Invoke, error) (string, error){UTF8String, PrintableASCIIString} {
		s, err := f(halt("value"), nil)
		require.NoError(t, err)
		require.Equal(t, "value", s)

		_, err = f(halt("\xff"), nil)
		require.Error(t, err)
		_, err = f(halt(arr()), nil)
		require.Error(t, err)
	}
	s, err := UTF8String(halt("\n\r"), nil)
	require.NoError(t, err)
	require.Equal(t, "\n\r", s)
	_, err = PrintableASCIIString(halt("\n\r"), nil)
	require.Error(t, err)
	_, err = PrintableASCIIString(halt("тест"), nil)
	require.Error(t, err)
}

func TestHashes(t *testing.T) {
	u160, u256 := util.Uint160{1, 2, 3}, util.Uint256{1, 2, 3}

	h160, err := Uint160(halt(u160), nil)
	require.NoError(t, err)
	require.Equal(t, u160, h160)
	_, err = Uint160(halt(u256), nil)
	require.Error(t, err)

	h256, err := Uint256(halt(u256), nil)
	require.NoError(t, err)
	require.Equal(t, u256, h256)
	_, err = Uint256(halt(u160), nil)
	require.Error(t, err)
	_, err = Uint256(halt(arr()), nil)
	require.Error(t, err)
}

func TestArrays(t *testing.T) {
	k, err := keys.NewPrivateKey()
	require.NoError(t, err)
	u160 := util.Uint160{1, 2, 3}

	a, err := Array(halt(arr(42)), nil)
	require.NoError(t, err)
	require.Equal(t, []stackitem.Item{stackitem.Make(42)}, a)
	a, err = Array(halt(stackitem.NewStruct([]stackitem.Item{stackitem.Make(1)})), nil)
	require.NoError(t, err)
	require.Len(t, a, 1)

	bss, err := ArrayOfBytes(halt(arr([]byte("some"))), nil)
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("some")}, bss)

	hashes, err := ArrayOfUint160(halt(arr(u160)), nil)
	require.NoError(t, err)
	require.Equal(t, []util.Uint160{u160}, hashes)

	pks, err := ArrayOfPublicKeys(halt(arr(k.PublicKey().Bytes())), nil)
	require.NoError(t, err)
	require.Len(t, pks, 1)
	require.True(t, k.PublicKey().Equal(pks[0]))

	bad := map[string]*result.Invoke{
		"not an array":   halt(42),
		"nested array":   halt(arr(arr())),
		"wrong contents": halt(arr([]byte("some"))),
	}
	for name, r := range bad {
		if name != "wrong contents" {
			_, err = ArrayOfBytes(r, nil)
			require.Error(t, err, name)
		}
		_, err = ArrayOfUint160(r, nil)
		require.Error(t, err, name)
		_, err = ArrayOfPublicKeys(r, nil)
		require.Error(t, err, name)
	}
	_, err = Array(halt(42), nil)
	require.Error(t, err)
}

func TestMap(t *testing.T) {
	_, err := Map(halt(42), nil)
	require.Error(t, err)

	m, err := Map(halt(stackitem.NewMapWithValue([]stackitem.MapElement{{Key: stackitem.Make(42), Value: stackitem.Make("string")}})), nil)
	require.NoError(t, err)
	require.Equal(t, 1, m.Len())
	require.Equal(t, 0, m.Index(stackitem.Make(42)))
}

func TestNothing(t *testing.T) {
	require.NoError(t, Nothing(halt(), nil))
	require.NoError(t, Nothing(halt(nil), nil))
	require.Error(t, Nothing(halt(42), nil))
	require.Error(t, Nothing(halt(nil, nil), nil))
}

func TestSessionIterator(t *testing.T) {
	_, _, err := SessionIterator(halt(42), nil)
	require.Error(t, err)
	_, _, err = SessionIterator(halt(stackitem.NewInterop(42)), nil)
	require.Error(t, err)

	iid := uuid.New()
	iter := result.Iterator{ID: &iid, Values: []stackitem.Item{stackitem.Make(1)}}
	_, ri, err := SessionIterator(halt(stackitem.NewInterop(iter)), nil)
	require.ErrorIs(t, err, ErrNoSessionID)
	require.Equal(t, iter.Values, ri.Values)

	r := halt(stackitem.NewInterop(iter))
	r.Session = uuid.New()
	rs, ri, err := SessionIterator(r, nil)
	require.NoError(t, err)
	require.Equal(t, r.Session, rs)
	require.Equal(t, iter, ri)

	_, ri, err = SessionIterator(halt(stackitem.NewInterop(result.Iterator{Values: iter.Values})), nil)
	require.NoError(t, err)
	require.Nil(t, ri.ID)
}
