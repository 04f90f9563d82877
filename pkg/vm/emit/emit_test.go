package emit

import (
	"encoding/binary"
	"math"
	"math/big"
	"testing"

	"github.com/nspcc-dev/n3sdk/pkg/core/interop/interopnames"
	"github.com/nspcc-dev/n3sdk/pkg/encoding/bigint"
	"github.com/nspcc-dev/n3sdk/pkg/io"
	"github.com/nspcc-dev/n3sdk/pkg/vm/opcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitInt(t *testing.T) {
	t.Run("minimal small values", func(t *testing.T) {
		for i := int64(-1); i <= 16; i++ {
			buf := io.NewBufBinWriter()
			Int(buf.BinWriter, i)
			result := buf.Bytes()
			require.Equal(t, 1, len(result), i)
			if i == -1 {
				require.EqualValues(t, opcode.PUSHM1, result[0])
			} else {
				require.EqualValues(t, opcode.PUSH0+opcode.Opcode(i), result[0])
			}
		}
	})

	t.Run("1-byte int", func(t *testing.T) {
		buf := io.NewBufBinWriter()
		Int(buf.BinWriter, 42)
		require.Equal(t, []byte{byte(opcode.PUSHINT8), 0x2A}, buf.Bytes())
	})

	t.Run("2-byte int", func(t *testing.T) {
		buf := io.NewBufBinWriter()
		Int(buf.BinWriter, 300)
		result := buf.Bytes()
		assert.Equal(t, 3, len(result))
		assert.EqualValues(t, opcode.PUSHINT16, result[0])
		assert.EqualValues(t, 300, bigint.FromBytes(result[1:]).Int64())
	})

	t.Run("3-byte int padded to 4", func(t *testing.T) {
		buf := io.NewBufBinWriter()
		Int(buf.BinWriter, 1000000)
		result := buf.Bytes()
		assert.Equal(t, 5, len(result))
		assert.EqualValues(t, opcode.PUSHINT32, result[0])
		assert.EqualValues(t, 1000000, bigint.FromBytes(result[1:]).Int64())
	})

	t.Run("negative 3-byte int with padding", func(t *testing.T) {
		const num = -128000
		buf := io.NewBufBinWriter()
		Int(buf.BinWriter, num)
		result := buf.Bytes()
		assert.Equal(t, 5, len(result))
		assert.EqualValues(t, opcode.PUSHINT32, result[0])
		assert.EqualValues(t, num, bigint.FromBytes(result[1:]).Int64())
	})

	t.Run("MinInt64", func(t *testing.T) {
		buf := io.NewBufBinWriter()
		Int(buf.BinWriter, math.MinInt64)
		result := buf.Bytes()
		assert.Equal(t, 9, len(result))
		assert.EqualValues(t, opcode.PUSHINT64, result[0])
		assert.EqualValues(t, int64(math.MinInt64), bigint.FromBytes(result[1:]).Int64())
	})
}

func TestEmitBigInt(t *testing.T) {
	t.Run("biggest positive number", func(t *testing.T) {
		buf := io.NewBufBinWriter()
		bi := big.NewInt(1)
		bi.Lsh(bi, 255)
		bi.Sub(bi, big.NewInt(1))

		BigInt(buf.BinWriter, bi)
		require.NoError(t, buf.Err)

		res := buf.Bytes()
		require.Equal(t, byte(opcode.PUSHINT256), res[0])
		require.Equal(t, 0, bi.Cmp(bigint.FromBytes(res[1:])))
	})
	t.Run("smallest negative number", func(t *testing.T) {
		buf := io.NewBufBinWriter()
		bi := big.NewInt(-1)
		bi.Lsh(bi, 255)

		BigInt(buf.BinWriter, bi)
		require.NoError(t, buf.Err)

		res := buf.Bytes()
		require.Equal(t, byte(opcode.PUSHINT256), res[0])
		require.Equal(t, 0, bi.Cmp(bigint.FromBytes(res[1:])))
	})
	t.Run("too big", func(t *testing.T) {
		buf := io.NewBufBinWriter()
		bi := big.NewInt(1)
		bi.Lsh(bi, 255)

		BigInt(buf.BinWriter, bi)
		require.ErrorIs(t, buf.Err, ErrTooBigInteger)
	})
	t.Run("small values", func(t *testing.T) {
		buf := io.NewBufBinWriter()
		BigInt(buf.BinWriter, big.NewInt(16))
		require.Equal(t, []byte{byte(opcode.PUSH16)}, buf.Bytes())
	})
}

func TestEmitBool(t *testing.T) {
	buf := io.NewBufBinWriter()
	Bool(buf.BinWriter, true)
	Bool(buf.BinWriter, false)
	require.Equal(t, []byte{byte(opcode.PUSH1), byte(opcode.PUSH0)}, buf.Bytes())
}

func TestEmitBytes(t *testing.T) {
	t.Run("PUSHDATA1", func(t *testing.T) {
		buf := io.NewBufBinWriter()
		Bytes(buf.BinWriter, []byte{1, 2, 3})
		require.Equal(t, []byte{byte(opcode.PUSHDATA1), 3, 1, 2, 3}, buf.Bytes())
	})
	t.Run("PUSHDATA2", func(t *testing.T) {
		data := make([]byte, 0x100)
		buf := io.NewBufBinWriter()
		Bytes(buf.BinWriter, data)
		result := buf.Bytes()
		require.EqualValues(t, opcode.PUSHDATA2, result[0])
		require.EqualValues(t, 0x100, binary.LittleEndian.Uint16(result[1:3]))
		require.Equal(t, data, result[3:])
	})
	t.Run("PUSHDATA4", func(t *testing.T) {
		data := make([]byte, 0x10000)
		buf := io.NewBufBinWriter()
		Bytes(buf.BinWriter, data)
		result := buf.Bytes()
		require.EqualValues(t, opcode.PUSHDATA4, result[0])
		require.EqualValues(t, 0x10000, binary.LittleEndian.Uint32(result[1:5]))
		require.Equal(t, data, result[5:])
	})
}

func TestEmitSyscall(t *testing.T) {
	syscalls := []string{
		interopnames.SystemRuntimeLog,
		interopnames.SystemRuntimeNotify,
		"System.Runtime.Whatever",
	}

	buf := io.NewBufBinWriter()
	for _, syscall := range syscalls {
		Syscall(buf.BinWriter, syscall)
		result := buf.Bytes()
		assert.Equal(t, opcode.Opcode(result[0]), opcode.SYSCALL)
		assert.Equal(t, binary.LittleEndian.Uint32(result[1:]), interopnames.ToID([]byte(syscall)))
		buf.Reset()
	}

	t.Run("empty syscall", func(t *testing.T) {
		buf := io.NewBufBinWriter()
		Syscall(buf.BinWriter, "")
		assert.Error(t, buf.Err)
	})
}

func TestCheckSig(t *testing.T) {
	key := make([]byte, 33)
	key[0] = 0x02
	buf := io.NewBufBinWriter()
	CheckSig(buf.BinWriter, key)
	res := buf.Bytes()
	require.Equal(t, 40, len(res))
	require.Equal(t, []byte{0x0c, 0x21}, res[:2])
	require.Equal(t, []byte{0x41, 0x56, 0xe7, 0xb3, 0x27}, res[35:])
}

func TestCheckMultisig(t *testing.T) {
	k1 := make([]byte, 33)
	k1[0] = 0x02
	k2 := make([]byte, 33)
	k2[0] = 0x03
	buf := io.NewBufBinWriter()
	CheckMultisig(buf.BinWriter, 2, [][]byte{k1, k2})
	require.NoError(t, buf.Err)
	res := buf.Bytes()
	require.Equal(t, 1+2*35+1+5, len(res))
	require.EqualValues(t, opcode.PUSH2, res[0])
	require.EqualValues(t, opcode.PUSHDATA1, res[1])
	require.Equal(t, k1, res[3:36])
	require.Equal(t, k2, res[38:71])
	require.EqualValues(t, opcode.PUSH2, res[71])
	require.Equal(t, []byte{0x41, 0x9e, 0xd0, 0xdc, 0x3a}, res[72:])
}
