// Package mintops is the static descriptor table for every internal "mint"
// opcode (§4.1, component C1): one row per opcode carrying its textual name,
// operand-layout kind, pop/push counts, and length in 16-bit mint words.
//
// Grounded on src/mono/mono/mini/interp/mintops.{h,c} (original_source) for the
// shape of the table (an OPDEF-style row per opcode, generated offsets instead
// of a pointer array "to optimize away a pointer and a relocation per string")
// and on wazeroir.Operation/OperationKind (internal/wazeroir/compiler_test.go in
// the teacher) for expressing "one row per op, dispatched by an integer kind"
// as a Go enum instead of a C struct-of-arrays.
//
// Reproducing the source's exact opcode numbering is an explicit non-goal
// (spec.md §1); this table assigns its own ordinal per Opcode and is the only
// numbering mint ever uses.
package mintops

import "fmt"

// ArgKind is the operand layout of one mint opcode (§4.1).
type ArgKind byte

const (
	ArgNone ArgKind = iota
	ArgShortInt
	ArgUShortInt
	ArgInt
	ArgLongInt
	ArgFloat
	ArgDouble
	ArgBranch      // one mint-word-pair (int32) signed delta
	ArgShortBranch // one mint-word (int16) signed delta
	ArgSwitch      // {count:u32} then count x i32 deltas
	ArgMethodToken
	ArgFieldToken
	ArgClassToken
	ArgSignatureToken
	ArgTwoShorts
	ArgShortAndInt
)

// VarArgs is the pop/push sentinel used by call-family opcodes, whose operand
// count depends on the callee's signature rather than being fixed per-opcode
// (§4.1 "a sentinel 'variable' for call opcodes").
const VarArgs = -1

// Row is one static descriptor, analogous to one OPDEF(...) line in the
// source's mintops.def.
type Row struct {
	Op   Opcode
	Name string
	Arg  ArgKind
	// Len is the row's length in 16-bit mint words, not counting a
	// MintOpSwitch's embedded branch table (see SwitchLen).
	Len  int
	Pop  int // VarArgs for call-family opcodes
	Push int
}

// words converts an ArgKind into additional 16-bit words beyond the 1-word
// opcode itself.
func (a ArgKind) words() int {
	switch a {
	case ArgNone:
		return 0
	case ArgShortInt, ArgUShortInt, ArgMethodToken, ArgFieldToken, ArgClassToken, ArgSignatureToken:
		return 1
	case ArgInt, ArgFloat, ArgShortBranch, ArgBranch:
		return 2 // ArgShortBranch is 1 signed mint-word but table rows below override Len directly where needed; ArgBranch is one signed mint-word-pair (int32), not a 64-bit value
	case ArgTwoShorts:
		return 2
	case ArgShortAndInt:
		return 3
	case ArgLongInt, ArgDouble:
		return 4
	default:
		return 0
	}
}

// SwitchLen mirrors MINT_SWITCH_LEN(n): a switch header is {count:u32} (2
// mint-words) then n x i32 (2 mint-words each) branch deltas, plus the 1-word
// opcode itself.
func SwitchLen(n int) int { return 1 + 2 + n*2 }

var table []Row
var byName = map[string]Opcode{}

func define(name string, arg ArgKind, pop, push int) Opcode {
	op := Opcode(len(table))
	length := 1 + arg.words()
	if arg == ArgShortBranch {
		length = 2 // opcode word + 1 signed 16-bit delta word
	}
	table = append(table, Row{Op: op, Name: name, Arg: arg, Len: length, Pop: pop, Push: push})
	byName[name] = op
	return op
}

// Lookup returns the descriptor Row for an opcode. Panics if op is out of
// range, matching the source's g_assert_not_reached() on a corrupted stream
// (surfaced by callers as ExecutionEngineException, §7).
func Lookup(op Opcode) Row {
	if int(op) < 0 || int(op) >= len(table) {
		panic(fmt.Sprintf("mintops: opcode %d out of range", op))
	}
	return table[op]
}

// Len returns an opcode's length in mint words given its operands already in
// the stream, needed because MintOpSwitch's length depends on the embedded
// branch count (§4.1: "The length is derived from this table plus, for
// switch, the embedded branch count").
func Len(op Opcode, code []uint16, ip int) int {
	row := Lookup(op)
	if row.Arg != ArgSwitch {
		return row.Len
	}
	n := int(uint32(code[ip+1]) | uint32(code[ip+2])<<16)
	return SwitchLen(n)
}

func ByName(name string) (Opcode, bool) {
	op, ok := byName[name]
	return op, ok
}

func (r Row) String() string { return r.Name }
