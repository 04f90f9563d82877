/*
Package unwrap converts invocation results into Go values.

Every function takes the (*result.Invoke, error) pair returned by invoker
methods and RPC client invocations, so calls can be wrapped directly:

	sym, err := unwrap.PrintableASCIIString(inv.Call(ctx, token, "symbol"))

An error is returned if the call failed, the VM didn't HALT, the stack has
an unexpected number of items or the item can't be converted.
*/
package unwrap

import (
	"crypto/elliptic"
	"errors"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"github.com/nspcc-dev/n3sdk/pkg/crypto/keys"
	"github.com/nspcc-dev/n3sdk/pkg/neorpc/result"
	"github.com/nspcc-dev/n3sdk/pkg/util"
	"github.com/nspcc-dev/n3sdk/pkg/vm/stackitem"
)

var (
	// ErrFault is returned (wrapped, with the exception text) when the
	// invocation didn't end in HALT state.
	ErrFault = errors.New("invocation failed")
	// ErrNoSessionID is returned from SessionIterator when the server
	// doesn't support sessions, the iterator may still contain expanded
	// values then.
	ErrNoSessionID = errors.New("server returned iterator ID, but no session ID")
)

// Item returns the only item of a successful (HALT) invocation.
func Item(r *result.Invoke, err error) (stackitem.Item, error) {
	if err = halted(r, err); err != nil {
		return nil, err
	}
	switch n := len(r.Stack); n {
	case 1:
		return r.Stack[0], nil
	case 0:
		return nil, errors.New("result stack is empty")
	default:
		return nil, fmt.Errorf("too many (%d) result items", n)
	}
}

// Nothing expects a successful invocation with either an empty stack or a
// single Null item (void methods).
func Nothing(r *result.Invoke, err error) error {
	if err = halted(r, err); err != nil {
		return err
	}
	if len(r.Stack) == 0 {
		return nil
	}
	itm, err := Item(r, nil)
	if err != nil {
		return err
	}
	if itm.Type() != stackitem.AnyT {
		return fmt.Errorf("unexpected %s result", itm.Type())
	}
	return nil
}

func halted(r *result.Invoke, err error) error {
	if err == nil && !r.IsHalt() {
		err = fmt.Errorf("%w: %s: %s", ErrFault, r.State, r.FaultException)
	}
	return err
}

// single converts the only result item with conv.
func single[T any](r *result.Invoke, err error, conv func(stackitem.Item) (T, error)) (T, error) {
	itm, err := Item(r, err)
	if err != nil {
		var zero T
		return zero, err
	}
	return conv(itm)
}

// arrayOf converts every element of the only (array) result item with conv.
func arrayOf[T any](r *result.Invoke, err error, conv func(stackitem.Item) (T, error)) ([]T, error) {
	arr, err := Array(r, err)
	if err != nil {
		return nil, err
	}
	res := make([]T, len(arr))
	for i, itm := range arr {
		if res[i], err = conv(itm); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
	}
	return res, nil
}

// BigInt returns the only result item as an integer.
func BigInt(r *result.Invoke, err error) (*big.Int, error) {
	return single(r, err, stackitem.Item.TryInteger)
}

// Bool returns the only result item as a boolean.
func Bool(r *result.Invoke, err error) (bool, error) {
	return single(r, err, stackitem.Item.TryBool)
}

// Int64 returns the only result item as an int64.
func Int64(r *result.Invoke, err error) (int64, error) {
	return single(r, err, toInt64)
}

// LimitedInt64 is Int64 that also checks the value to be in [min, max].
func LimitedInt64(r *result.Invoke, err error, min int64, max int64) (int64, error) {
	i, err := Int64(r, err)
	if err == nil && (i < min || i > max) {
		return 0, fmt.Errorf("value %d is out of [%d, %d] range", i, min, max)
	}
	return i, err
}

// Bytes returns the only result item as a byte slice.
func Bytes(r *result.Invoke, err error) ([]byte, error) {
	return single(r, err, stackitem.Item.TryBytes)
}

// UTF8String returns the only result item as a valid UTF-8 string.
func UTF8String(r *result.Invoke, err error) (string, error) {
	return single(r, err, stackitem.ToString)
}

// PrintableASCIIString is UTF8String that only accepts characters from the
// printable ASCII range (token symbols are like that).
func PrintableASCIIString(r *result.Invoke, err error) (string, error) {
	s, err := UTF8String(r, err)
	if err != nil {
		return "", err
	}
	for _, c := range s {
		if c < ' ' || c > '~' {
			return "", errors.New("not a printable ASCII string")
		}
	}
	return s, nil
}

// Uint160 returns the only result item as a script hash.
func Uint160(r *result.Invoke, err error) (util.Uint160, error) {
	return single(r, err, toUint160)
}

// Uint256 returns the only result item as a 256-bit hash.
func Uint256(r *result.Invoke, err error) (util.Uint256, error) {
	return single(r, err, func(itm stackitem.Item) (util.Uint256, error) {
		b, err := itm.TryBytes()
		if err != nil {
			return util.Uint256{}, err
		}
		return util.Uint256DecodeBytesBE(b)
	})
}

// SessionIterator returns the iterator that is the only result item along
// with the session it belongs to. ErrNoSessionID is returned (with the
// iterator) if the node gave an iterator ID without a session.
func SessionIterator(r *result.Invoke, err error) (uuid.UUID, result.Iterator, error) {
	iter, err := single(r, err, func(itm stackitem.Item) (result.Iterator, error) {
		if t := itm.Type(); t != stackitem.InteropT {
			return result.Iterator{}, fmt.Errorf("expected InteropInterface, got %s", t)
		}
		iter, ok := itm.Value().(result.Iterator)
		if !ok {
			return result.Iterator{}, errors.New("the item is InteropInterface, but not an Iterator")
		}
		return iter, nil
	})
	if err != nil {
		return uuid.UUID{}, result.Iterator{}, err
	}
	if r.Session == (uuid.UUID{}) && iter.ID != nil {
		return uuid.UUID{}, iter, ErrNoSessionID
	}
	return r.Session, iter, nil
}

// Array returns the elements of the only result item, both Array and Struct
// are accepted.
func Array(r *result.Invoke, err error) ([]stackitem.Item, error) {
	return single(r, err, func(itm stackitem.Item) ([]stackitem.Item, error) {
		arr, ok := itm.Value().([]stackitem.Item)
		if !ok {
			return nil, fmt.Errorf("%s is not an array", itm.Type())
		}
		return arr, nil
	})
}

// ArrayOfBytes returns the only result item as an array of byte slices.
func ArrayOfBytes(r *result.Invoke, err error) ([][]byte, error) {
	return arrayOf(r, err, stackitem.Item.TryBytes)
}

// ArrayOfUint160 returns the only result item as an array of script hashes.
func ArrayOfUint160(r *result.Invoke, err error) ([]util.Uint160, error) {
	return arrayOf(r, err, toUint160)
}

// ArrayOfPublicKeys returns the only result item as an array of public keys.
func ArrayOfPublicKeys(r *result.Invoke, err error) (keys.PublicKeys, error) {
	return arrayOf(r, err, func(itm stackitem.Item) (*keys.PublicKey, error) {
		b, err := itm.TryBytes()
		if err != nil {
			return nil, err
		}
		return keys.NewPublicKeyFromBytes(b, elliptic.P256())
	})
}

// Map returns the only result item as a map.
func Map(r *result.Invoke, err error) (*stackitem.Map, error) {
	return single(r, err, func(itm stackitem.Item) (*stackitem.Map, error) {
		m, ok := itm.(*stackitem.Map)
		if !ok {
			return nil, fmt.Errorf("%s is not a map", itm.Type())
		}
		return m, nil
	})
}

func toInt64(itm stackitem.Item) (int64, error) {
	i, err := itm.TryInteger()
	if err != nil {
		return 0, err
	}
	if !i.IsInt64() {
		return 0, errors.New("int64 overflow")
	}
	return i.Int64(), nil
}

func toUint160(itm stackitem.Item) (util.Uint160, error) {
	b, err := itm.TryBytes()
	if err != nil {
		return util.Uint160{}, err
	}
	return util.Uint160DecodeBytesBE(b)
}
