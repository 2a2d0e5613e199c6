package interp

import "github.com/minterp/mint/internal/mintops"

// decodeOperand is the dispatch loop's side of transform/resolve.go's
// encodeOperand: it reconstructs the single operand value a mint instruction
// was emitted with from the raw words following its opcode at code[ip+1:].
// ArgSwitch is handled separately by the SWITCH opcode itself, since its
// shape (a branch table, not a scalar) doesn't fit this signature.
func decodeOperand(arg mintops.ArgKind, code []uint16, ip int) int64 {
	switch arg {
	case mintops.ArgNone:
		return 0
	case mintops.ArgShortInt, mintops.ArgMethodToken, mintops.ArgFieldToken,
		mintops.ArgClassToken, mintops.ArgSignatureToken:
		return int64(int16(code[ip+1]))
	case mintops.ArgUShortInt:
		return int64(code[ip+1])
	case mintops.ArgInt, mintops.ArgFloat:
		return int64(int32(uint32(code[ip+1]) | uint32(code[ip+2])<<16))
	case mintops.ArgLongInt, mintops.ArgDouble:
		u := uint64(code[ip+1]) | uint64(code[ip+2])<<16 | uint64(code[ip+3])<<32 | uint64(code[ip+4])<<48
		return int64(u)
	case mintops.ArgTwoShorts:
		return int64(int32(uint32(code[ip+1]) | uint32(code[ip+2])<<16))
	case mintops.ArgShortAndInt:
		u := uint64(code[ip+1]) | uint64(code[ip+2])<<16 | uint64(code[ip+3])<<32
		return int64(u)
	case mintops.ArgBranch:
		return int64(int32(uint32(code[ip+1]) | uint32(code[ip+2])<<16))
	case mintops.ArgShortBranch:
		return int64(int16(code[ip+1]))
	default:
		return 0
	}
}

// switchTargets reads a SWITCH instruction's embedded branch table: a u32
// count followed by that many i32 deltas, each relative to the instruction
// immediately after the whole table (mintops.SwitchLen).
func switchTargets(code []uint16, ip int) []int32 {
	n := int(uint32(code[ip+1]) | uint32(code[ip+2])<<16)
	out := make([]int32, n)
	base := ip + 3
	for i := 0; i < n; i++ {
		w := base + i*2
		out[i] = int32(uint32(code[w]) | uint32(code[w+1])<<16)
	}
	return out
}

// unsignedWord reads operand n (0-based) of a short-word-encoded operand,
// used by the field/array family opcodes whose single token operand is a
// DataItems index (ArgShortInt's encoding, but always non-negative in
// practice since resolve.go never emits a token index past int16 range
// without also widening the row -- callers treat the result as an index).
func unsignedWord(code []uint16, ip int) int { return int(code[ip+1]) }
