package interp

import (
	"math"

	"github.com/minterp/mint/internal/exception"
	"github.com/minterp/mint/internal/mintops"
	"github.com/minterp/mint/internal/moremath"
)

// execUnary handles NEG/NOT, the only opcodes that consume and produce
// exactly one value of the same static type.
func execUnary(st *evalStack, op mintops.Opcode) {
	switch op {
	case mintops.NEG_I4:
		st.pushI4(-st.popI4())
	case mintops.NEG_I8:
		st.pushI8(-st.popI8())
	case mintops.NEG_R8:
		st.pushR8(-st.popR8())
	case mintops.NOT_I4:
		st.pushI4(^st.popI4())
	case mintops.NOT_I8:
		st.pushI8(^st.popI8())
	}
}

// execBinop runs every two-operand arithmetic, bitwise, shift, and compare
// opcode except division/remainder (execDivRem handles those separately,
// since they're the only family that can trap). b is the right-hand operand,
// popped first off the stack (pushed last by the compiler), a the left.
func execBinop(d *Dispatcher, st *evalStack, op mintops.Opcode) {
	switch op {
	case mintops.DIV_I4, mintops.DIV_UN_I4, mintops.DIV_I8, mintops.DIV_UN_I8, mintops.DIV_R8,
		mintops.REM_I4, mintops.REM_UN_I4, mintops.REM_I8, mintops.REM_UN_I8, mintops.REM_R8:
		execDivRem(d, st, op)
		return
	case mintops.ADD_OVF_I4, mintops.ADD_OVF_UN_I4, mintops.SUB_OVF_I4, mintops.SUB_OVF_UN_I4,
		mintops.MUL_OVF_I4, mintops.MUL_OVF_UN_I4,
		mintops.ADD_OVF_I8, mintops.ADD_OVF_UN_I8, mintops.SUB_OVF_I8, mintops.SUB_OVF_UN_I8,
		mintops.MUL_OVF_I8, mintops.MUL_OVF_UN_I8:
		execCheckedArith(d, st, op)
		return
	}

	switch op {
	case mintops.ADD_I4:
		b, a := st.popI4(), st.popI4()
		st.pushI4(a + b)
	case mintops.SUB_I4:
		b, a := st.popI4(), st.popI4()
		st.pushI4(a - b)
	case mintops.MUL_I4:
		b, a := st.popI4(), st.popI4()
		st.pushI4(a * b)
	case mintops.ADD_I8:
		b, a := st.popI8(), st.popI8()
		st.pushI8(a + b)
	case mintops.SUB_I8:
		b, a := st.popI8(), st.popI8()
		st.pushI8(a - b)
	case mintops.MUL_I8:
		b, a := st.popI8(), st.popI8()
		st.pushI8(a * b)
	case mintops.ADD_R8:
		b, a := st.popR8(), st.popR8()
		st.pushR8(a + b)
	case mintops.SUB_R8:
		b, a := st.popR8(), st.popR8()
		st.pushR8(a - b)
	case mintops.MUL_R8:
		b, a := st.popR8(), st.popR8()
		st.pushR8(a * b)

	case mintops.AND_I4:
		b, a := st.popI4(), st.popI4()
		st.pushI4(a & b)
	case mintops.AND_I8:
		b, a := st.popI8(), st.popI8()
		st.pushI8(a & b)
	case mintops.OR_I4:
		b, a := st.popI4(), st.popI4()
		st.pushI4(a | b)
	case mintops.OR_I8:
		b, a := st.popI8(), st.popI8()
		st.pushI8(a | b)
	case mintops.XOR_I4:
		b, a := st.popI4(), st.popI4()
		st.pushI4(a ^ b)
	case mintops.XOR_I8:
		b, a := st.popI8(), st.popI8()
		st.pushI8(a ^ b)

	case mintops.SHL_I4:
		b, a := st.popI4(), st.popI4()
		st.pushI4(a << (uint32(b) & 31))
	case mintops.SHL_I8:
		b, a := st.popI4(), st.popI8()
		st.pushI8(a << (uint32(b) & 63))
	case mintops.SHR_I4:
		b, a := st.popI4(), st.popI4()
		st.pushI4(a >> (uint32(b) & 31))
	case mintops.SHR_UN_I4:
		b, a := st.popI4(), st.popI4()
		st.pushI4(int32(uint32(a) >> (uint32(b) & 31)))
	case mintops.SHR_I8:
		b, a := st.popI4(), st.popI8()
		st.pushI8(a >> (uint32(b) & 63))
	case mintops.SHR_UN_I8:
		b, a := st.popI4(), st.popI8()
		st.pushI8(int64(uint64(a) >> (uint32(b) & 63)))

	case mintops.CEQ_I4:
		b, a := st.popI4(), st.popI4()
		st.pushI4(boolI4(a == b))
	case mintops.CEQ_I8:
		b, a := st.popI8(), st.popI8()
		st.pushI4(boolI4(a == b))
	case mintops.CEQ_R8:
		b, a := st.popR8(), st.popR8()
		st.pushI4(boolI4(a == b))
	case mintops.CEQ0_I4:
		st.pushI4(boolI4(st.popI4() == 0))

	case mintops.CGT_I4:
		b, a := st.popI4(), st.popI4()
		st.pushI4(boolI4(a > b))
	case mintops.CGT_I8:
		b, a := st.popI8(), st.popI8()
		st.pushI4(boolI4(a > b))
	case mintops.CGT_R8:
		b, a := st.popR8(), st.popR8()
		st.pushI4(boolI4(a > b))
	case mintops.CGT_UN_I4:
		b, a := st.popI4(), st.popI4()
		st.pushI4(boolI4(uint32(a) > uint32(b)))
	case mintops.CGT_UN_I8:
		b, a := st.popI8(), st.popI8()
		st.pushI4(boolI4(uint64(a) > uint64(b)))
	case mintops.CGT_UN_R8:
		b, a := st.popR8(), st.popR8()
		st.pushI4(boolI4(a > b || math.IsNaN(a) || math.IsNaN(b)))

	case mintops.CLT_I4:
		b, a := st.popI4(), st.popI4()
		st.pushI4(boolI4(a < b))
	case mintops.CLT_I8:
		b, a := st.popI8(), st.popI8()
		st.pushI4(boolI4(a < b))
	case mintops.CLT_R8:
		b, a := st.popR8(), st.popR8()
		st.pushI4(boolI4(a < b))
	case mintops.CLT_UN_I4:
		b, a := st.popI4(), st.popI4()
		st.pushI4(boolI4(uint32(a) < uint32(b)))
	case mintops.CLT_UN_I8:
		b, a := st.popI8(), st.popI8()
		st.pushI4(boolI4(uint64(a) < uint64(b)))
	case mintops.CLT_UN_R8:
		b, a := st.popR8(), st.popR8()
		st.pushI4(boolI4(a < b || math.IsNaN(a) || math.IsNaN(b)))
	}
}

func boolI4(v bool) int32 {
	if v {
		return 1
	}
	return 0
}

// execDivRem implements the division and remainder opcodes (§4.6,
// §7 DivideByZero/Overflow): a zero integer divisor always traps; signed MinInt/-1
// traps as Overflow (the one case the CPU instruction itself can't produce a
// representable quotient) rather than wrapping silently.
func execDivRem(d *Dispatcher, st *evalStack, op mintops.Opcode) {
	switch op {
	case mintops.DIV_I4:
		b, a := st.popI4(), st.popI4()
		if b == 0 {
			d.Exceptions.Throw(exception.DivideByZero, "")
		}
		if a == math.MinInt32 && b == -1 {
			d.Exceptions.Throw(exception.Overflow, "")
		}
		st.pushI4(a / b)
	case mintops.DIV_UN_I4:
		b, a := st.popI4(), st.popI4()
		if b == 0 {
			d.Exceptions.Throw(exception.DivideByZero, "")
		}
		st.pushI4(int32(uint32(a) / uint32(b)))
	case mintops.DIV_I8:
		b, a := st.popI8(), st.popI8()
		if b == 0 {
			d.Exceptions.Throw(exception.DivideByZero, "")
		}
		if a == math.MinInt64 && b == -1 {
			d.Exceptions.Throw(exception.Overflow, "")
		}
		st.pushI8(a / b)
	case mintops.DIV_UN_I8:
		b, a := st.popI8(), st.popI8()
		if b == 0 {
			d.Exceptions.Throw(exception.DivideByZero, "")
		}
		st.pushI8(int64(uint64(a) / uint64(b)))
	case mintops.DIV_R8:
		b, a := st.popR8(), st.popR8()
		st.pushR8(a / b)
	case mintops.REM_I4:
		b, a := st.popI4(), st.popI4()
		if b == 0 {
			d.Exceptions.Throw(exception.DivideByZero, "")
		}
		if a == math.MinInt32 && b == -1 {
			d.Exceptions.Throw(exception.Overflow, "")
		}
		st.pushI4(a % b)
	case mintops.REM_UN_I4:
		b, a := st.popI4(), st.popI4()
		if b == 0 {
			d.Exceptions.Throw(exception.DivideByZero, "")
		}
		st.pushI4(int32(uint32(a) % uint32(b)))
	case mintops.REM_I8:
		b, a := st.popI8(), st.popI8()
		if b == 0 {
			d.Exceptions.Throw(exception.DivideByZero, "")
		}
		if a == math.MinInt64 && b == -1 {
			d.Exceptions.Throw(exception.Overflow, "")
		}
		st.pushI8(a % b)
	case mintops.REM_UN_I8:
		b, a := st.popI8(), st.popI8()
		if b == 0 {
			d.Exceptions.Throw(exception.DivideByZero, "")
		}
		st.pushI8(int64(uint64(a) % uint64(b)))
	case mintops.REM_R8:
		b, a := st.popR8(), st.popR8()
		st.pushR8(math.Mod(a, b))
	}
}

// execCheckedArith implements the ADD_OVF/SUB_OVF/MUL_OVF family (§7
// Overflow): each computes in a wider or unsigned form and traps if the
// truncated result doesn't round-trip.
func execCheckedArith(d *Dispatcher, st *evalStack, op mintops.Opcode) {
	overflow := func() { d.Exceptions.Throw(exception.Overflow, "") }
	switch op {
	case mintops.ADD_OVF_I4:
		b, a := st.popI4(), st.popI4()
		r := int64(a) + int64(b)
		if r != int64(int32(r)) {
			overflow()
		}
		st.pushI4(int32(r))
	case mintops.ADD_OVF_UN_I4:
		b, a := st.popI4(), st.popI4()
		r := uint64(uint32(a)) + uint64(uint32(b))
		if r != uint64(uint32(r)) {
			overflow()
		}
		st.pushI4(int32(uint32(r)))
	case mintops.SUB_OVF_I4:
		b, a := st.popI4(), st.popI4()
		r := int64(a) - int64(b)
		if r != int64(int32(r)) {
			overflow()
		}
		st.pushI4(int32(r))
	case mintops.SUB_OVF_UN_I4:
		b, a := st.popI4(), st.popI4()
		if uint32(a) < uint32(b) {
			overflow()
		}
		st.pushI4(int32(uint32(a) - uint32(b)))
	case mintops.MUL_OVF_I4:
		b, a := st.popI4(), st.popI4()
		r := int64(a) * int64(b)
		if r != int64(int32(r)) {
			overflow()
		}
		st.pushI4(int32(r))
	case mintops.MUL_OVF_UN_I4:
		b, a := st.popI4(), st.popI4()
		r := uint64(uint32(a)) * uint64(uint32(b))
		if r != uint64(uint32(r)) {
			overflow()
		}
		st.pushI4(int32(uint32(r)))

	case mintops.ADD_OVF_I8:
		b, a := st.popI8(), st.popI8()
		r := a + b
		if (b > 0 && r < a) || (b < 0 && r > a) {
			overflow()
		}
		st.pushI8(r)
	case mintops.ADD_OVF_UN_I8:
		b, a := st.popI8(), st.popI8()
		r := uint64(a) + uint64(b)
		if r < uint64(a) {
			overflow()
		}
		st.pushI8(int64(r))
	case mintops.SUB_OVF_I8:
		b, a := st.popI8(), st.popI8()
		r := a - b
		if (b < 0 && r < a) || (b > 0 && r > a) {
			overflow()
		}
		st.pushI8(r)
	case mintops.SUB_OVF_UN_I8:
		b, a := st.popI8(), st.popI8()
		if uint64(a) < uint64(b) {
			overflow()
		}
		st.pushI8(int64(uint64(a) - uint64(b)))
	case mintops.MUL_OVF_I8:
		b, a := st.popI8(), st.popI8()
		if a != 0 && b != 0 {
			r := a * b
			if r/b != a {
				overflow()
			}
			st.pushI8(r)
		} else {
			st.pushI8(0)
		}
	case mintops.MUL_OVF_UN_I8:
		b, a := st.popI8(), st.popI8()
		ua, ub := uint64(a), uint64(b)
		if ua != 0 && ub != 0 {
			r := ua * ub
			if r/ub != ua {
				overflow()
			}
			st.pushI8(int64(r))
		} else {
			st.pushI8(0)
		}
	}
}

// execConv implements every CONV_*/CKFINITE opcode. The CONV_OVF_* family
// consults internal/moremath's checked-truncation predicates before
// truncating (§7 Overflow).
func execConv(d *Dispatcher, st *evalStack, op mintops.Opcode) {
	switch op {
	case mintops.CONV_I4_I8:
		st.pushI8(int64(st.popI4()))
	case mintops.CONV_I8_I4:
		st.pushI4(int32(st.popI8()))
	case mintops.CONV_I4_R8:
		st.pushR8(float64(st.popI4()))
	case mintops.CONV_I8_R8:
		st.pushR8(float64(st.popI8()))
	case mintops.CONV_U4_R8:
		st.pushI4(int32(moremath.TruncToZeroAsUnsigned(st.popR8())))
	case mintops.CONV_U8_R8:
		st.pushI8(int64(uint64(st.popR8())))
	case mintops.CONV_R8_I4:
		st.pushI4(int32(st.popR8()))
	case mintops.CONV_R8_I8:
		st.pushI8(int64(st.popR8()))
	case mintops.CONV_R4_R8:
		st.pushR8(float64(float32(st.popR8())))
	case mintops.CONV_R8_R4:
		st.pushR8(float64(float32(st.popR8())))
	case mintops.CONV_I1_I4:
		st.pushI4(int32(int8(st.popI4())))
	case mintops.CONV_U1_I4:
		st.pushI4(int32(uint8(st.popI4())))
	case mintops.CONV_I2_I4:
		st.pushI4(int32(int16(st.popI4())))
	case mintops.CONV_U2_I4:
		st.pushI4(int32(uint16(st.popI4())))

	case mintops.CONV_OVF_I4_R8:
		v := st.popR8()
		if moremath.TruncOverflowsI32(v) {
			d.Exceptions.Throw(exception.Overflow, "")
		}
		st.pushI4(int32(v))
	case mintops.CONV_OVF_U4_R8:
		v := st.popR8()
		if moremath.TruncOverflowsU32(v) {
			d.Exceptions.Throw(exception.Overflow, "")
		}
		st.pushI4(int32(uint32(v)))
	case mintops.CONV_OVF_I8_R8:
		v := st.popR8()
		if moremath.TruncOverflowsI64(v) {
			d.Exceptions.Throw(exception.Overflow, "")
		}
		st.pushI8(int64(v))
	case mintops.CONV_OVF_U8_R8:
		v := st.popR8()
		if moremath.TruncOverflowsU64(v) {
			d.Exceptions.Throw(exception.Overflow, "")
		}
		st.pushI8(int64(uint64(v)))
	case mintops.CONV_OVF_I4_I8:
		v := st.popI8()
		if v != int64(int32(v)) {
			d.Exceptions.Throw(exception.Overflow, "")
		}
		st.pushI4(int32(v))
	case mintops.CONV_OVF_U4_I8:
		v := st.popI8()
		if v < 0 || v != int64(uint32(v)) {
			d.Exceptions.Throw(exception.Overflow, "")
		}
		st.pushI4(int32(uint32(v)))
	case mintops.CONV_OVF_I1_I4:
		v := st.popI4()
		if v != int32(int8(v)) {
			d.Exceptions.Throw(exception.Overflow, "")
		}
		st.pushI4(v)
	case mintops.CONV_OVF_U1_I4:
		v := st.popI4()
		if v < 0 || v != int32(uint8(v)) {
			d.Exceptions.Throw(exception.Overflow, "")
		}
		st.pushI4(v)

	case mintops.CKFINITE:
		v := st.popR8()
		if math.IsNaN(v) || math.IsInf(v, 0) {
			d.Exceptions.Throw(exception.Arithmetic, "value is not a finite number")
		}
		st.pushR8(v)
	}
}

// execBranchUnary evaluates a BRFALSE/BRTRUE's condition, popping the stack
// either way; the dispatch loop branches iff this returns true.
func execBranchUnary(st *evalStack, op mintops.Opcode) bool {
	switch op {
	case mintops.BRFALSE_I4:
		return st.popI4() == 0
	case mintops.BRTRUE_I4:
		return st.popI4() != 0
	case mintops.BRFALSE_I8:
		return st.popI8() == 0
	case mintops.BRTRUE_I8:
		return st.popI8() != 0
	case mintops.BRFALSE_R8:
		return st.popR8() == 0
	case mintops.BRTRUE_R8:
		return st.popR8() != 0
	}
	return false
}

// execBranchBinary evaluates a two-operand comparison branch, popping both
// operands either way.
func execBranchBinary(st *evalStack, op mintops.Opcode) bool {
	switch op {
	case mintops.BEQ_I4:
		b, a := st.popI4(), st.popI4()
		return a == b
	case mintops.BNE_UN_I4:
		b, a := st.popI4(), st.popI4()
		return uint32(a) != uint32(b)
	case mintops.BGE_I4:
		b, a := st.popI4(), st.popI4()
		return a >= b
	case mintops.BGT_I4:
		b, a := st.popI4(), st.popI4()
		return a > b
	case mintops.BLE_I4:
		b, a := st.popI4(), st.popI4()
		return a <= b
	case mintops.BLT_I4:
		b, a := st.popI4(), st.popI4()
		return a < b
	case mintops.BGE_UN_I4:
		b, a := st.popI4(), st.popI4()
		return uint32(a) >= uint32(b)
	case mintops.BGT_UN_I4:
		b, a := st.popI4(), st.popI4()
		return uint32(a) > uint32(b)
	case mintops.BLE_UN_I4:
		b, a := st.popI4(), st.popI4()
		return uint32(a) <= uint32(b)
	case mintops.BLT_UN_I4:
		b, a := st.popI4(), st.popI4()
		return uint32(a) < uint32(b)

	case mintops.BEQ_I8:
		b, a := st.popI8(), st.popI8()
		return a == b
	case mintops.BNE_UN_I8:
		b, a := st.popI8(), st.popI8()
		return uint64(a) != uint64(b)
	case mintops.BGE_I8:
		b, a := st.popI8(), st.popI8()
		return a >= b
	case mintops.BGT_I8:
		b, a := st.popI8(), st.popI8()
		return a > b
	case mintops.BLE_I8:
		b, a := st.popI8(), st.popI8()
		return a <= b
	case mintops.BLT_I8:
		b, a := st.popI8(), st.popI8()
		return a < b
	case mintops.BGE_UN_I8:
		b, a := st.popI8(), st.popI8()
		return uint64(a) >= uint64(b)
	case mintops.BGT_UN_I8:
		b, a := st.popI8(), st.popI8()
		return uint64(a) > uint64(b)
	case mintops.BLE_UN_I8:
		b, a := st.popI8(), st.popI8()
		return uint64(a) <= uint64(b)
	case mintops.BLT_UN_I8:
		b, a := st.popI8(), st.popI8()
		return uint64(a) < uint64(b)

	case mintops.BEQ_R8:
		b, a := st.popR8(), st.popR8()
		return a == b
	case mintops.BNE_UN_R8:
		b, a := st.popR8(), st.popR8()
		return a != b || math.IsNaN(a) || math.IsNaN(b)
	case mintops.BGE_R8:
		b, a := st.popR8(), st.popR8()
		return a >= b
	case mintops.BGT_R8:
		b, a := st.popR8(), st.popR8()
		return a > b
	case mintops.BLE_R8:
		b, a := st.popR8(), st.popR8()
		return a <= b
	case mintops.BLT_R8:
		b, a := st.popR8(), st.popR8()
		return a < b
	case mintops.BGE_UN_R8:
		b, a := st.popR8(), st.popR8()
		return a >= b || math.IsNaN(a) || math.IsNaN(b)
	case mintops.BGT_UN_R8:
		b, a := st.popR8(), st.popR8()
		return a > b || math.IsNaN(a) || math.IsNaN(b)
	case mintops.BLE_UN_R8:
		b, a := st.popR8(), st.popR8()
		return a <= b || math.IsNaN(a) || math.IsNaN(b)
	case mintops.BLT_UN_R8:
		b, a := st.popR8(), st.popR8()
		return a < b || math.IsNaN(a) || math.IsNaN(b)
	}
	return false
}
