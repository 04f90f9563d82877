package nef

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/n3sdk/pkg/io"
	"github.com/nspcc-dev/n3sdk/pkg/smartcontract/callflag"
	"github.com/nspcc-dev/n3sdk/pkg/util"
)

// maxMethodLength limits MethodToken.Method.
const maxMethodLength = 32

var (
	errInvalidMethodName = errors.New("private method can't be a call target")
	errInvalidCallFlag   = errors.New("unknown call flags")
)

// MethodToken describes a static call of another contract made by the NEF
// script via CALLT.
type MethodToken struct {
	Hash       util.Uint160      `json:"hash"`
	Method     string            `json:"method"`
	ParamCount uint16            `json:"paramcount"`
	HasReturn  bool              `json:"hasreturnvalue"`
	CallFlag   callflag.CallFlag `json:"callflags"`
}

// EncodeBinary implements io.Serializable.
func (t *MethodToken) EncodeBinary(w *io.BinWriter) {
	w.WriteBytes(t.Hash.BytesBE())
	w.WriteString(t.Method)
	w.WriteU16LE(t.ParamCount)
	w.WriteBool(t.HasReturn)
	w.WriteB(byte(t.CallFlag))
}

// DecodeBinary implements io.Serializable.
func (t *MethodToken) DecodeBinary(r *io.BinReader) {
	r.ReadBytes(t.Hash[:])
	t.Method = r.ReadString(maxMethodLength)
	t.ParamCount = r.ReadU16LE()
	t.HasReturn = r.ReadBool()
	t.CallFlag = callflag.CallFlag(r.ReadB())
	if r.Err == nil {
		r.Err = t.check()
	}
}

func (t *MethodToken) check() error {
	if len(t.Method) > 0 && t.Method[0] == '_' {
		return fmt.Errorf("%w: %s", errInvalidMethodName, t.Method)
	}
	if t.CallFlag&^callflag.All != 0 {
		return fmt.Errorf("%w: %#x", errInvalidCallFlag, byte(t.CallFlag))
	}
	return nil
}
