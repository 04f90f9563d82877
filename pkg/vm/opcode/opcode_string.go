package opcode

import "strconv"

var names = [256]string{
	PUSHINT8:     "PUSHINT8",
	PUSHINT16:    "PUSHINT16",
	PUSHINT32:    "PUSHINT32",
	PUSHINT64:    "PUSHINT64",
	PUSHINT128:   "PUSHINT128",
	PUSHINT256:   "PUSHINT256",
	PUSHT:        "PUSHT",
	PUSHF:        "PUSHF",
	PUSHA:        "PUSHA",
	PUSHNULL:     "PUSHNULL",
	PUSHDATA1:    "PUSHDATA1",
	PUSHDATA2:    "PUSHDATA2",
	PUSHDATA4:    "PUSHDATA4",
	PUSHM1:       "PUSHM1",
	PUSH0:        "PUSH0",
	PUSH1:        "PUSH1",
	PUSH2:        "PUSH2",
	PUSH3:        "PUSH3",
	PUSH4:        "PUSH4",
	PUSH5:        "PUSH5",
	PUSH6:        "PUSH6",
	PUSH7:        "PUSH7",
	PUSH8:        "PUSH8",
	PUSH9:        "PUSH9",
	PUSH10:       "PUSH10",
	PUSH11:       "PUSH11",
	PUSH12:       "PUSH12",
	PUSH13:       "PUSH13",
	PUSH14:       "PUSH14",
	PUSH15:       "PUSH15",
	PUSH16:       "PUSH16",
	NOP:          "NOP",
	JMP:          "JMP",
	JMPL:         "JMP_L",
	JMPIF:        "JMPIF",
	JMPIFL:       "JMPIF_L",
	JMPIFNOT:     "JMPIFNOT",
	JMPIFNOTL:    "JMPIFNOT_L",
	JMPEQ:        "JMPEQ",
	JMPEQL:       "JMPEQ_L",
	JMPNE:        "JMPNE",
	JMPNEL:       "JMPNE_L",
	JMPGT:        "JMPGT",
	JMPGTL:       "JMPGT_L",
	JMPGE:        "JMPGE",
	JMPGEL:       "JMPGE_L",
	JMPLT:        "JMPLT",
	JMPLTL:       "JMPLT_L",
	JMPLE:        "JMPLE",
	JMPLEL:       "JMPLE_L",
	CALL:         "CALL",
	CALLL:        "CALL_L",
	CALLA:        "CALLA",
	CALLT:        "CALLT",
	ABORT:        "ABORT",
	ASSERT:       "ASSERT",
	THROW:        "THROW",
	TRY:          "TRY",
	TRYL:         "TRY_L",
	ENDTRY:       "ENDTRY",
	ENDTRYL:      "ENDTRY_L",
	ENDFINALLY:   "ENDFINALLY",
	RET:          "RET",
	SYSCALL:      "SYSCALL",
	DEPTH:        "DEPTH",
	DROP:         "DROP",
	NIP:          "NIP",
	XDROP:        "XDROP",
	CLEAR:        "CLEAR",
	DUP:          "DUP",
	OVER:         "OVER",
	PICK:         "PICK",
	TUCK:         "TUCK",
	SWAP:         "SWAP",
	ROT:          "ROT",
	ROLL:         "ROLL",
	REVERSE3:     "REVERSE3",
	REVERSE4:     "REVERSE4",
	REVERSEN:     "REVERSEN",
	INITSSLOT:    "INITSSLOT",
	INITSLOT:     "INITSLOT",
	LDSFLD0:      "LDSFLD0",
	LDSFLD1:      "LDSFLD1",
	LDSFLD2:      "LDSFLD2",
	LDSFLD3:      "LDSFLD3",
	LDSFLD4:      "LDSFLD4",
	LDSFLD5:      "LDSFLD5",
	LDSFLD6:      "LDSFLD6",
	LDSFLD:       "LDSFLD",
	STSFLD0:      "STSFLD0",
	STSFLD1:      "STSFLD1",
	STSFLD2:      "STSFLD2",
	STSFLD3:      "STSFLD3",
	STSFLD4:      "STSFLD4",
	STSFLD5:      "STSFLD5",
	STSFLD6:      "STSFLD6",
	STSFLD:       "STSFLD",
	LDLOC0:       "LDLOC0",
	LDLOC1:       "LDLOC1",
	LDLOC2:       "LDLOC2",
	LDLOC3:       "LDLOC3",
	LDLOC4:       "LDLOC4",
	LDLOC5:       "LDLOC5",
	LDLOC6:       "LDLOC6",
	LDLOC:        "LDLOC",
	STLOC0:       "STLOC0",
	STLOC1:       "STLOC1",
	STLOC2:       "STLOC2",
	STLOC3:       "STLOC3",
	STLOC4:       "STLOC4",
	STLOC5:       "STLOC5",
	STLOC6:       "STLOC6",
	STLOC:        "STLOC",
	LDARG0:       "LDARG0",
	LDARG1:       "LDARG1",
	LDARG2:       "LDARG2",
	LDARG3:       "LDARG3",
	LDARG4:       "LDARG4",
	LDARG5:       "LDARG5",
	LDARG6:       "LDARG6",
	LDARG:        "LDARG",
	STARG0:       "STARG0",
	STARG1:       "STARG1",
	STARG2:       "STARG2",
	STARG3:       "STARG3",
	STARG4:       "STARG4",
	STARG5:       "STARG5",
	STARG6:       "STARG6",
	STARG:        "STARG",
	NEWBUFFER:    "NEWBUFFER",
	MEMCPY:       "MEMCPY",
	CAT:          "CAT",
	SUBSTR:       "SUBSTR",
	LEFT:         "LEFT",
	RIGHT:        "RIGHT",
	INVERT:       "INVERT",
	AND:          "AND",
	OR:           "OR",
	XOR:          "XOR",
	EQUAL:        "EQUAL",
	NOTEQUAL:     "NOTEQUAL",
	SIGN:         "SIGN",
	ABS:          "ABS",
	NEGATE:       "NEGATE",
	INC:          "INC",
	DEC:          "DEC",
	ADD:          "ADD",
	SUB:          "SUB",
	MUL:          "MUL",
	DIV:          "DIV",
	MOD:          "MOD",
	POW:          "POW",
	SQRT:         "SQRT",
	MODMUL:       "MODMUL",
	MODPOW:       "MODPOW",
	SHL:          "SHL",
	SHR:          "SHR",
	NOT:          "NOT",
	BOOLAND:      "BOOLAND",
	BOOLOR:       "BOOLOR",
	NZ:           "NZ",
	NUMEQUAL:     "NUMEQUAL",
	NUMNOTEQUAL:  "NUMNOTEQUAL",
	LT:           "LT",
	LE:           "LE",
	GT:           "GT",
	GE:           "GE",
	MIN:          "MIN",
	MAX:          "MAX",
	WITHIN:       "WITHIN",
	PACKMAP:      "PACKMAP",
	PACKSTRUCT:   "PACKSTRUCT",
	PACK:         "PACK",
	UNPACK:       "UNPACK",
	NEWARRAY0:    "NEWARRAY0",
	NEWARRAY:     "NEWARRAY",
	NEWARRAYT:    "NEWARRAYT",
	NEWSTRUCT0:   "NEWSTRUCT0",
	NEWSTRUCT:    "NEWSTRUCT",
	NEWMAP:       "NEWMAP",
	SIZE:         "SIZE",
	HASKEY:       "HASKEY",
	KEYS:         "KEYS",
	VALUES:       "VALUES",
	PICKITEM:     "PICKITEM",
	APPEND:       "APPEND",
	SETITEM:      "SETITEM",
	REVERSEITEMS: "REVERSEITEMS",
	REMOVE:       "REMOVE",
	CLEARITEMS:   "CLEARITEMS",
	POPITEM:      "POPITEM",
	ISNULL:       "ISNULL",
	ISTYPE:       "ISTYPE",
	CONVERT:      "CONVERT",
	ABORTMSG:     "ABORTMSG",
	ASSERTMSG:    "ASSERTMSG",
}

// String implements the fmt.Stringer interface.
func (i Opcode) String() string {
	if s := names[i]; s != "" {
		return s
	}
	return "Opcode(" + strconv.FormatInt(int64(i), 10) + ")"
}

// IsValid returns true if the opcode passed is valid (defined in the VM).
func IsValid(op Opcode) bool {
	return names[op] != ""
}
