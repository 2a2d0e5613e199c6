package transform

import (
	"fmt"

	"github.com/minterp/mint/internal/il"
	"github.com/minterp/mint/internal/mintops"
	"github.com/minterp/mint/internal/stackslot"
)

// lowerBinop implements the four-flavor arithmetic lowering §4.4.4
// describes: the two operands' abstract kind (both must agree, CIL
// arithmetic never mixes stack types without an explicit conv first)
// selects one of the I4/I8/R8 dedicated mint opcodes, or (for add/sub on a
// managed pointer, i.e. pointer arithmetic) falls back to the I4/I8 integer
// op depending on pointer width — mint models a ManagedPtr as an I8-sized
// runtime slot uniformly, so pointer arithmetic reuses the I8 family.
//
// add.ovf/sub.ovf/mul.ovf and their .un variants get their own opcodes
// (ADD_OVF_I4, ADD_OVF_UN_I4, ...) rather than reusing ADD_I4/SUB_I4/MUL_I4:
// the dispatch loop has no other signal at runtime for whether a given
// instance of the op should trap OverflowException (§7) or wrap silently,
// and there's no float form since ECMA-335 doesn't define checked float
// arithmetic.
func (s *state) lowerBinop(inst *il.Instruction) error {
	rhs := s.pop()
	lhs := s.pop()
	_ = rhs
	kind := lhs.Kind
	if kind == stackslot.KindManagedPtr {
		kind = stackslot.KindI8
	}

	var op mintops.Opcode
	var err error
	switch inst.Op {
	case il.Add:
		op, err = pick3(kind, mintops.ADD_I4, mintops.ADD_I8, mintops.ADD_R8)
	case il.AddOvf:
		op, err = pick2(kind, mintops.ADD_OVF_I4, mintops.ADD_OVF_I8)
	case il.AddOvfUn:
		op, err = pick2(kind, mintops.ADD_OVF_UN_I4, mintops.ADD_OVF_UN_I8)
	case il.Sub:
		op, err = pick3(kind, mintops.SUB_I4, mintops.SUB_I8, mintops.SUB_R8)
	case il.SubOvf:
		op, err = pick2(kind, mintops.SUB_OVF_I4, mintops.SUB_OVF_I8)
	case il.SubOvfUn:
		op, err = pick2(kind, mintops.SUB_OVF_UN_I4, mintops.SUB_OVF_UN_I8)
	case il.Mul:
		op, err = pick3(kind, mintops.MUL_I4, mintops.MUL_I8, mintops.MUL_R8)
	case il.MulOvf:
		op, err = pick2(kind, mintops.MUL_OVF_I4, mintops.MUL_OVF_I8)
	case il.MulOvfUn:
		op, err = pick2(kind, mintops.MUL_OVF_UN_I4, mintops.MUL_OVF_UN_I8)
	case il.Div:
		if kind == stackslot.KindR8 {
			op = mintops.DIV_R8
		} else {
			op, err = pick2(kind, mintops.DIV_I4, mintops.DIV_I8)
		}
	case il.DivUn:
		op, err = pick2(kind, mintops.DIV_UN_I4, mintops.DIV_UN_I8)
	case il.Rem:
		if kind == stackslot.KindR8 {
			op = mintops.REM_R8
		} else {
			op, err = pick2(kind, mintops.REM_I4, mintops.REM_I8)
		}
	case il.RemUn:
		op, err = pick2(kind, mintops.REM_UN_I4, mintops.REM_UN_I8)
	case il.And:
		op, err = pick2(kind, mintops.AND_I4, mintops.AND_I8)
	case il.Or:
		op, err = pick2(kind, mintops.OR_I4, mintops.OR_I8)
	case il.Xor:
		op, err = pick2(kind, mintops.XOR_I4, mintops.XOR_I8)
	case il.Shl:
		op, err = pick2(kind, mintops.SHL_I4, mintops.SHL_I8)
	case il.Shr:
		op, err = pick2(kind, mintops.SHR_I4, mintops.SHR_I8)
	case il.ShrUn:
		op, err = pick2(kind, mintops.SHR_UN_I4, mintops.SHR_UN_I8)
	default:
		return fmt.Errorf("lowerBinop: unexpected opcode %v", inst.Op)
	}
	if err != nil {
		return err
	}

	s.stack.Push(lhs)
	s.emit(inst.Offset, op, 0)
	return nil
}

func pick3(k stackslot.Kind, i4, i8, r8 mintops.Opcode) (mintops.Opcode, error) {
	switch k {
	case stackslot.KindI4:
		return i4, nil
	case stackslot.KindI8:
		return i8, nil
	case stackslot.KindR8:
		return r8, nil
	default:
		return 0, fmt.Errorf("arithmetic on non-numeric stack kind %v", k)
	}
}

func pick2(k stackslot.Kind, i4, i8 mintops.Opcode) (mintops.Opcode, error) {
	switch k {
	case stackslot.KindI4:
		return i4, nil
	case stackslot.KindI8:
		return i8, nil
	default:
		return 0, fmt.Errorf("integer op on non-integer stack kind %v", k)
	}
}

func (s *state) lowerUnop(inst *il.Instruction) error {
	v := s.pop()
	var op mintops.Opcode
	var err error
	switch inst.Op {
	case il.Neg:
		op, err = pick3(v.Kind, mintops.NEG_I4, mintops.NEG_I8, mintops.NEG_R8)
	case il.Not:
		op, err = pick2(v.Kind, mintops.NOT_I4, mintops.NOT_I8)
	default:
		return fmt.Errorf("lowerUnop: unexpected opcode %v", inst.Op)
	}
	if err != nil {
		return err
	}
	s.stack.Push(v)
	s.emit(inst.Offset, op, 0)
	return nil
}

func (s *state) lowerCompare(inst *il.Instruction) error {
	rhs := s.pop()
	lhs := s.pop()
	kind := lhs.Kind
	if kind == stackslot.KindManagedPtr || kind == stackslot.KindObject {
		kind = stackslot.KindI8
	}
	_ = rhs

	var op mintops.Opcode
	var err error
	switch inst.Op {
	case il.Ceq:
		op, err = pick3(kind, mintops.CEQ_I4, mintops.CEQ_I8, mintops.CEQ_R8)
	case il.Cgt:
		op, err = pick3(kind, mintops.CGT_I4, mintops.CGT_I8, mintops.CGT_R8)
	case il.CgtUn:
		op, err = pick3(kind, mintops.CGT_UN_I4, mintops.CGT_UN_I8, mintops.CGT_UN_R8)
	case il.Clt:
		op, err = pick3(kind, mintops.CLT_I4, mintops.CLT_I8, mintops.CLT_R8)
	case il.CltUn:
		op, err = pick3(kind, mintops.CLT_UN_I4, mintops.CLT_UN_I8, mintops.CLT_UN_R8)
	default:
		return fmt.Errorf("lowerCompare: unexpected opcode %v", inst.Op)
	}
	if err != nil {
		return err
	}
	s.stack.Push(stackslot.I4())
	s.emit(inst.Offset, op, 0)
	return nil
}

func (s *state) lowerCondBranch(inst *il.Instruction) error {
	rhs := s.pop()
	lhs := s.pop()
	kind := lhs.Kind
	if kind == stackslot.KindManagedPtr || kind == stackslot.KindObject {
		kind = stackslot.KindI8
	}
	_ = rhs

	pick := func(i4, i8, r8 mintops.Opcode) (mintops.Opcode, error) { return pick3(kind, i4, i8, r8) }

	var op mintops.Opcode
	var err error
	switch inst.Op {
	case il.BeqS, il.Beq:
		op, err = pick(mintops.BEQ_I4, mintops.BEQ_I8, mintops.BEQ_R8)
	case il.BgeS, il.Bge:
		op, err = pick(mintops.BGE_I4, mintops.BGE_I8, mintops.BGE_R8)
	case il.BgtS, il.Bgt:
		op, err = pick(mintops.BGT_I4, mintops.BGT_I8, mintops.BGT_R8)
	case il.BleS, il.Ble:
		op, err = pick(mintops.BLE_I4, mintops.BLE_I8, mintops.BLE_R8)
	case il.BltS, il.Blt:
		op, err = pick(mintops.BLT_I4, mintops.BLT_I8, mintops.BLT_R8)
	case il.BneUnS, il.BneUn:
		op, err = pick(mintops.BNE_UN_I4, mintops.BNE_UN_I8, mintops.BNE_UN_R8)
	case il.BgeUnS, il.BgeUn:
		op, err = pick(mintops.BGE_UN_I4, mintops.BGE_UN_I8, mintops.BGE_UN_R8)
	case il.BgtUnS, il.BgtUn:
		op, err = pick(mintops.BGT_UN_I4, mintops.BGT_UN_I8, mintops.BGT_UN_R8)
	case il.BleUnS, il.BleUn:
		op, err = pick(mintops.BLE_UN_I4, mintops.BLE_UN_I8, mintops.BLE_UN_R8)
	case il.BltUnS, il.BltUn:
		op, err = pick(mintops.BLT_UN_I4, mintops.BLT_UN_I8, mintops.BLT_UN_R8)
	default:
		return fmt.Errorf("lowerCondBranch: unexpected opcode %v", inst.Op)
	}
	if err != nil {
		return err
	}
	s.emitBranch(inst.Offset, op, inst.BranchTarget)
	return nil
}

// lowerConv implements §4.4.4's conversion cross-table plus §7's checked
// CONV_OVF_* traps. Only the conversions the opcode table actually defines
// get a dedicated opcode; the remaining width conversions (e.g. ConvI2,
// ConvU2 on an I8 source) are composed from the defined primitives (narrow
// to I4 first, matching how the CLR itself defines every narrowing
// conversion as "truncate to 32 bits, then mask/sign-extend to the target
// width").
func (s *state) lowerConv(inst *il.Instruction) error {
	v := s.pop()
	kind := v.Kind

	switch inst.Op {
	case il.ConvI4, il.ConvU4, il.ConvI, il.ConvU:
		if kind == stackslot.KindI8 {
			s.emit(inst.Offset, mintops.CONV_I8_I4, 0)
		} else if kind == stackslot.KindR8 {
			if inst.Op == il.ConvU4 || inst.Op == il.ConvU {
				s.emit(inst.Offset, mintops.CONV_U4_R8, 0)
			} else {
				s.emit(inst.Offset, mintops.CONV_R8_I4, 0)
			}
		}
		s.stack.Push(stackslot.I4())
	case il.ConvI8, il.ConvU8:
		if kind == stackslot.KindI4 {
			s.emit(inst.Offset, mintops.CONV_I4_I8, 0)
		} else if kind == stackslot.KindR8 {
			if inst.Op == il.ConvU8 {
				s.emit(inst.Offset, mintops.CONV_U8_R8, 0)
			} else {
				s.emit(inst.Offset, mintops.CONV_R8_I8, 0)
			}
		}
		s.stack.Push(stackslot.I8())
	case il.ConvR8, il.ConvRUn:
		if kind == stackslot.KindI4 {
			s.emit(inst.Offset, mintops.CONV_I4_R8, 0)
		} else if kind == stackslot.KindI8 {
			s.emit(inst.Offset, mintops.CONV_I8_R8, 0)
		}
		s.stack.Push(stackslot.R8())
	case il.ConvR4:
		if kind == stackslot.KindI4 {
			s.emit(inst.Offset, mintops.CONV_I4_R8, 0)
		} else if kind == stackslot.KindI8 {
			s.emit(inst.Offset, mintops.CONV_I8_R8, 0)
		}
		s.emit(inst.Offset, mintops.CONV_R8_R4, 0)
		s.emit(inst.Offset, mintops.CONV_R4_R8, 0) // widen back to the uniform R8 runtime representation
		s.stack.Push(stackslot.R8())
	case il.ConvI1, il.ConvOvfI1, il.ConvOvfI1Un:
		s.narrowToI4(inst, kind)
		s.emit(inst.Offset, mintops.CONV_I1_I4, 0)
		s.stack.Push(stackslot.I4())
	case il.ConvU1, il.ConvOvfU1, il.ConvOvfU1Un:
		s.narrowToI4(inst, kind)
		s.emit(inst.Offset, mintops.CONV_U1_I4, 0)
		s.stack.Push(stackslot.I4())
	case il.ConvI2, il.ConvOvfI2, il.ConvOvfI2Un:
		s.narrowToI4(inst, kind)
		s.emit(inst.Offset, mintops.CONV_I2_I4, 0)
		s.stack.Push(stackslot.I4())
	case il.ConvU2, il.ConvOvfU2, il.ConvOvfU2Un:
		s.narrowToI4(inst, kind)
		s.emit(inst.Offset, mintops.CONV_U2_I4, 0)
		s.stack.Push(stackslot.I4())
	case il.ConvOvfI4, il.ConvOvfI4Un:
		if kind == stackslot.KindR8 {
			s.emit(inst.Offset, mintops.CONV_OVF_I4_R8, 0)
		} else if kind == stackslot.KindI8 {
			s.emit(inst.Offset, mintops.CONV_OVF_I4_I8, 0)
		}
		s.stack.Push(stackslot.I4())
	case il.ConvOvfU4, il.ConvOvfU4Un:
		if kind == stackslot.KindR8 {
			s.emit(inst.Offset, mintops.CONV_OVF_U4_R8, 0)
		} else if kind == stackslot.KindI8 {
			s.emit(inst.Offset, mintops.CONV_OVF_U4_I8, 0)
		}
		s.stack.Push(stackslot.I4())
	case il.ConvOvfI8, il.ConvOvfI8Un, il.ConvOvfI, il.ConvOvfIUn:
		if kind == stackslot.KindR8 {
			s.emit(inst.Offset, mintops.CONV_OVF_I8_R8, 0)
		}
		s.stack.Push(stackslot.I8())
	case il.ConvOvfU8, il.ConvOvfU8Un, il.ConvOvfU, il.ConvOvfUUn:
		if kind == stackslot.KindR8 {
			s.emit(inst.Offset, mintops.CONV_OVF_U8_R8, 0)
		}
		s.stack.Push(stackslot.I8())
	default:
		return fmt.Errorf("lowerConv: unexpected opcode %v", inst.Op)
	}
	return nil
}

// narrowToI4 emits whatever widening/narrowing is needed to get an I8/R8
// source value down to an I4 stack entry before one of the byte/short
// truncating conversions runs, since those only have an I4-sourced mint
// opcode. kind is the already-popped source value's abstract kind.
func (s *state) narrowToI4(inst *il.Instruction, kind stackslot.Kind) {
	switch kind {
	case stackslot.KindI8:
		s.emit(inst.Offset, mintops.CONV_I8_I4, 0)
	case stackslot.KindR8:
		s.emit(inst.Offset, mintops.CONV_R8_I4, 0)
	}
}
