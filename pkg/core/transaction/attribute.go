package transaction

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nspcc-dev/n3sdk/pkg/io"
	"github.com/nspcc-dev/n3sdk/pkg/util"
)

// AttrType represents the purpose of the attribute.
type AttrType uint8

// List of valid attribute types.
const (
	HighPriority    AttrType = 1
	NotValidBeforeT AttrType = 0x20
	ConflictsT      AttrType = 0x21
)

// ErrInvalidAttribute is returned for unknown or malformed attributes.
var ErrInvalidAttribute = errors.New("invalid attribute")

var attrNames = map[AttrType]string{
	HighPriority:    "HighPriority",
	NotValidBeforeT: "NotValidBefore",
	ConflictsT:      "Conflicts",
}

type (
	// Attribute is a transaction attribute. Value is nil for HighPriority,
	// *NotValidBefore and *Conflicts for the other types.
	Attribute struct {
		Type  AttrType
		Value io.Serializable
	}

	// NotValidBefore makes the transaction invalid before the given height.
	NotValidBefore struct {
		Height uint32
	}

	// Conflicts marks the transaction with the given hash as conflicting.
	Conflicts struct {
		Hash util.Uint256
	}

	attrAux struct {
		Type   string        `json:"type"`
		Height *uint32       `json:"height,omitempty"`
		Hash   *util.Uint256 `json:"hash,omitempty"`
	}
)

// String implements the fmt.Stringer interface.
func (t AttrType) String() string {
	if s, ok := attrNames[t]; ok {
		return s
	}
	return fmt.Sprintf("AttrType(%d)", uint8(t))
}

// allowMultiple tells whether a transaction can have several attributes of
// this type.
func (t AttrType) allowMultiple() bool {
	return t == ConflictsT
}

func (t AttrType) newValue() (io.Serializable, error) {
	switch t {
	case HighPriority:
		return nil, nil
	case NotValidBeforeT:
		return new(NotValidBefore), nil
	case ConflictsT:
		return new(Conflicts), nil
	}
	return nil, fmt.Errorf("%w: unknown type 0x%02x", ErrInvalidAttribute, uint8(t))
}

// DecodeBinary implements the io.Serializable interface.
func (attr *Attribute) DecodeBinary(br *io.BinReader) {
	attr.Type = AttrType(br.ReadB())
	if br.Err != nil {
		return
	}
	attr.Value, br.Err = attr.Type.newValue()
	if attr.Value != nil {
		attr.Value.DecodeBinary(br)
	}
}

// EncodeBinary implements the io.Serializable interface.
func (attr *Attribute) EncodeBinary(bw *io.BinWriter) {
	if _, err := attr.Type.newValue(); err != nil {
		bw.Err = err
		return
	}
	bw.WriteB(byte(attr.Type))
	if attr.Type == HighPriority {
		return
	}
	if attr.Value == nil {
		bw.Err = fmt.Errorf("%w: no value for %s", ErrInvalidAttribute, attr.Type)
		return
	}
	attr.Value.EncodeBinary(bw)
}

// MarshalJSON implements the json.Marshaler interface.
func (attr *Attribute) MarshalJSON() ([]byte, error) {
	aux := attrAux{Type: attr.Type.String()}
	switch v := attr.Value.(type) {
	case *NotValidBefore:
		aux.Height = &v.Height
	case *Conflicts:
		aux.Hash = &v.Hash
	}
	return json.Marshal(aux)
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (attr *Attribute) UnmarshalJSON(data []byte) error {
	var aux attrAux
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*attr = Attribute{}
	for t, name := range attrNames {
		if name == aux.Type {
			attr.Type = t
		}
	}
	switch attr.Type {
	case HighPriority:
	case NotValidBeforeT:
		if aux.Height == nil {
			return fmt.Errorf("%w: no height", ErrInvalidAttribute)
		}
		attr.Value = &NotValidBefore{Height: *aux.Height}
	case ConflictsT:
		if aux.Hash == nil {
			return fmt.Errorf("%w: no hash", ErrInvalidAttribute)
		}
		attr.Value = &Conflicts{Hash: *aux.Hash}
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidAttribute, aux.Type)
	}
	return nil
}

// DecodeBinary implements the io.Serializable interface.
func (n *NotValidBefore) DecodeBinary(br *io.BinReader) {
	n.Height = br.ReadU32LE()
}

// EncodeBinary implements the io.Serializable interface.
func (n *NotValidBefore) EncodeBinary(w *io.BinWriter) {
	w.WriteU32LE(n.Height)
}

// DecodeBinary implements the io.Serializable interface.
func (c *Conflicts) DecodeBinary(br *io.BinReader) {
	br.ReadBytes(c.Hash[:])
}

// EncodeBinary implements the io.Serializable interface.
func (c *Conflicts) EncodeBinary(w *io.BinWriter) {
	w.WriteBytes(c.Hash[:])
}
