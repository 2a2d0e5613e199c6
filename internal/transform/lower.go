package transform

import (
	"fmt"
	"math"

	"github.com/minterp/mint/internal/abi"
	"github.com/minterp/mint/internal/il"
	"github.com/minterp/mint/internal/mintops"
	"github.com/minterp/mint/internal/stackslot"
)

// lower walks every decoded CIL instruction in offset order and appends one
// or more mint instructions to s.out, threading an abstract stack typing
// (§4.4.2) so arithmetic/conversion/branch opcodes can pick their
// type-specific mint opcode (mint has a dedicated opcode per stack-type
// flavor, §4.1, rather than one polymorphic opcode per operation).
//
// This walks the method linearly rather than block-by-block with explicit
// merge-point reconciliation: mint only ever transforms verifiable input (an
// unverifiable method is rejected by the metadata layer before it reaches
// the transformer), so every predecessor of a merge point is guaranteed by
// the CIL verification rules to agree on stack shape, and a linear walk
// reaches the same fixed point a worklist algorithm would without the extra
// bookkeeping transform.c needs only because it interleaves typing with
// native code generation.
func (s *state) lower() error {
	leaders := discoverLeaders(s)

	for i := range s.insts {
		inst := &s.insts[i]
		if leaders[inst.Offset] {
			s.trackMaxStack()
		}
		if err := s.lowerOne(inst); err != nil {
			return fmt.Errorf("transform: IL offset %d (%v): %w", inst.Offset, inst.Op, err)
		}
		s.trackMaxStack()
	}
	return nil
}

func (s *state) trackMaxStack() {
	if n := s.stack.Len(); n > s.maxStack {
		s.maxStack = n
	}
}

func (s *state) emit(ilOffset int, op mintops.Opcode, operand int64) {
	s.out = append(s.out, emitted{ilOffset: ilOffset, op: op, operand: operand})
}

func (s *state) emitBranch(ilOffset int, op mintops.Opcode, targetIL int) {
	s.out = append(s.out, emitted{ilOffset: ilOffset, op: op, isBranch: true, branchTargetIL: targetIL})
}

func (s *state) emitSwitch(ilOffset int, targets []int) {
	s.out = append(s.out, emitted{ilOffset: ilOffset, op: mintops.SWITCH, isSwitch: true, switchTargets: targets})
}

func (s *state) addDataItem(v interface{}) int64 {
	s.dataItems = append(s.dataItems, v)
	return int64(len(s.dataItems) - 1)
}

func (s *state) pop() stackslot.Abstract {
	a, err := s.stack.Pop()
	if err != nil {
		// A verified method never underflows; reaching this means either
		// corrupt input slipped past verification or a transformer bug.
		// Treat it the same as mintops.Lookup's out-of-range panic: a
		// programmer-visible bug, not a managed-code-visible exception.
		panic(fmt.Sprintf("transform: stack underflow: %v", err))
	}
	return a
}

// lowerOne translates a single CIL instruction, covering the families §4.4.4
// names explicitly: constants, four-flavor arithmetic, conversions
// (including the checked CONV_OVF_* family), branches (short and long forms,
// uniformly emitted long here — the shrink pass in resolve.go narrows BR and
// LEAVE back to short where the final mint-word distance allows; conditional
// branches stay long), switch, the call
// family (call/callvirt/calli/newobj), field access (instance and static),
// array element access, box/unbox/castclass/isinst, and throw/rethrow/leave/
// endfinally. Prefixes (unaligned./volatile./readonly./constrained./tail.)
// emit no mint opcode, and their effect on the following instruction is not
// applied.
func (s *state) lowerOne(inst *il.Instruction) error {
	switch inst.Op {
	case il.Nop:
		s.emit(inst.Offset, mintops.NOP, 0)
	case il.Dup:
		top, ok := s.stack.Peek()
		if !ok {
			return fmt.Errorf("dup on empty stack")
		}
		s.stack.Push(top)
		s.emit(inst.Offset, mintops.DUP, 0)
	case il.PopOp:
		s.pop()
		s.emit(inst.Offset, mintops.POP, 0)

	case il.LdcI4M1, il.LdcI40, il.LdcI41, il.LdcI42, il.LdcI43, il.LdcI44, il.LdcI45, il.LdcI46, il.LdcI47, il.LdcI48:
		s.stack.Push(stackslot.I4())
		s.emit(inst.Offset, ldcI4SmallOp(inst.Op), 0)
	case il.LdcI4S:
		s.stack.Push(stackslot.I4())
		s.emit(inst.Offset, mintops.LDC_I4_S, inst.IntOperand)
	case il.LdcI4:
		s.stack.Push(stackslot.I4())
		s.emit(inst.Offset, mintops.LDC_I4, inst.IntOperand)
	case il.LdcI8:
		s.stack.Push(stackslot.I8())
		s.emit(inst.Offset, mintops.LDC_I8, inst.IntOperand)
	case il.LdcR8:
		s.stack.Push(stackslot.R8())
		// ArgDouble carries the constant's raw bits inline (like ArgLongInt
		// for ldc.i8), not a data-item index: C6 decodes it straight out of
		// the code stream with no dataItems indirection.
		s.emit(inst.Offset, mintops.LDC_R8, int64(math.Float64bits(inst.FloatOperand)))
	case il.LdcR4:
		s.stack.Push(stackslot.R8())
		s.emit(inst.Offset, mintops.LDC_R4, int64(math.Float32bits(float32(inst.FloatOperand))))
	case il.LdnullOp:
		s.stack.Push(stackslot.Object())
		s.emit(inst.Offset, mintops.LDNULL, 0)

	case il.Ldarg0, il.Ldarg1, il.Ldarg2, il.Ldarg3:
		idx := int(inst.Op - il.Ldarg0)
		s.pushArg(idx)
		top, _ := s.stack.Peek()
		s.emit(inst.Offset, ldargOp(top.Kind), int64(idx))
	case il.LdargS, il.LdargOp:
		idx := int(inst.IntOperand)
		s.pushArg(idx)
		top, _ := s.stack.Peek()
		s.emit(inst.Offset, ldargOp(top.Kind), int64(idx))
	case il.LdargaS, il.LdargaOp:
		s.stack.Push(stackslot.ManagedPtr())
		s.emit(inst.Offset, mintops.LDARGA, inst.IntOperand)
	case il.StargS, il.StargOp:
		v := s.pop()
		s.emit(inst.Offset, stargOp(v.Kind), inst.IntOperand)

	case il.Ldloc0, il.Ldloc1, il.Ldloc2, il.Ldloc3:
		idx := int(inst.Op - il.Ldloc0)
		s.pushLocal(idx)
		top, _ := s.stack.Peek()
		s.emit(inst.Offset, ldlocOp(top.Kind), int64(idx))
	case il.LdlocS, il.LdlocOp:
		idx := int(inst.IntOperand)
		s.pushLocal(idx)
		top, _ := s.stack.Peek()
		s.emit(inst.Offset, ldlocOp(top.Kind), int64(idx))
	case il.LdlocaS, il.LdlocaOp:
		s.stack.Push(stackslot.ManagedPtr())
		s.emit(inst.Offset, mintops.LDLOCA, inst.IntOperand)
	case il.Stloc0, il.Stloc1, il.Stloc2, il.Stloc3:
		v := s.pop()
		s.emit(inst.Offset, stlocOp(v.Kind), int64(inst.Op-il.Stloc0))
	case il.StlocS, il.StlocOp:
		v := s.pop()
		s.emit(inst.Offset, stlocOp(v.Kind), inst.IntOperand)

	case il.Add, il.Sub, il.Mul, il.Div, il.DivUn, il.Rem, il.RemUn, il.And, il.Or, il.Xor,
		il.Shl, il.Shr, il.ShrUn, il.AddOvf, il.AddOvfUn, il.SubOvf, il.SubOvfUn, il.MulOvf, il.MulOvfUn:
		return s.lowerBinop(inst)
	case il.Neg, il.Not:
		return s.lowerUnop(inst)

	case il.Ceq, il.Cgt, il.CgtUn, il.Clt, il.CltUn:
		return s.lowerCompare(inst)

	case il.ConvI1, il.ConvI2, il.ConvI4, il.ConvU1, il.ConvU2, il.ConvU4, il.ConvI, il.ConvU,
		il.ConvI8, il.ConvU8, il.ConvR4, il.ConvR8, il.ConvRUn,
		il.ConvOvfI1, il.ConvOvfU1, il.ConvOvfI2, il.ConvOvfU2, il.ConvOvfI4, il.ConvOvfU4,
		il.ConvOvfI8, il.ConvOvfU8, il.ConvOvfI, il.ConvOvfU,
		il.ConvOvfI1Un, il.ConvOvfI2Un, il.ConvOvfI4Un, il.ConvOvfI8Un,
		il.ConvOvfU1Un, il.ConvOvfU2Un, il.ConvOvfU4Un, il.ConvOvfU8Un, il.ConvOvfIUn, il.ConvOvfUUn:
		return s.lowerConv(inst)

	case il.Ckfinite:
		top, _ := s.stack.Peek()
		if top.Kind != stackslot.KindR8 {
			return fmt.Errorf("ckfinite on non-float stack entry")
		}
		s.emit(inst.Offset, mintops.CKFINITE, 0)

	case il.BrS, il.Br:
		s.emitBranch(inst.Offset, mintops.BR, inst.BranchTarget)
	case il.BrfalseS, il.Brfalse:
		s.pop()
		s.emitBranch(inst.Offset, mintops.BRFALSE_I4, inst.BranchTarget)
	case il.BrtrueS, il.Brtrue:
		s.pop()
		s.emitBranch(inst.Offset, mintops.BRTRUE_I4, inst.BranchTarget)
	case il.BeqS, il.Beq, il.BgeS, il.Bge, il.BgtS, il.Bgt, il.BleS, il.Ble, il.BltS, il.Blt,
		il.BneUnS, il.BneUn, il.BgeUnS, il.BgeUn, il.BgtUnS, il.BgtUn, il.BleUnS, il.BleUn, il.BltUnS, il.BltUn:
		return s.lowerCondBranch(inst)
	case il.Switch:
		s.pop()
		s.emitSwitch(inst.Offset, inst.SwitchTargets)

	case il.Call, il.Callvirt, il.Calli:
		return s.lowerCall(inst)
	case il.Newobj:
		return s.lowerNewobj(inst)

	case il.Ldfld, il.Ldflda, il.Stfld:
		return s.lowerFieldInstance(inst)
	case il.Ldsfld, il.Ldsflda, il.Stsfld:
		return s.lowerFieldStatic(inst)

	case il.Newarr:
		s.pop() // length
		s.stack.Push(stackslot.Object())
		tok := s.addDataItem(inst.IntOperand)
		s.emit(inst.Offset, mintops.NEWARR, tok)
	case il.Ldlen:
		s.pop()
		s.stack.Push(stackslot.I4())
		s.emit(inst.Offset, mintops.LDLEN, 0)
	case il.Ldelema:
		s.pop()
		s.pop()
		s.stack.Push(stackslot.ManagedPtr())
		tok := s.addDataItem(inst.IntOperand)
		s.emit(inst.Offset, mintops.LDELEMA, tok)
	case il.LdelemI4, il.LdelemU4, il.LdelemI1, il.LdelemU1, il.LdelemI2, il.LdelemU2, il.LdelemI8, il.LdelemI, il.LdelemRef:
		s.pop()
		s.pop()
		if inst.Op == il.LdelemRef {
			s.stack.Push(stackslot.Object())
			s.emit(inst.Offset, mintops.LDELEM_REF, 0)
		} else if inst.Op == il.LdelemI8 {
			s.stack.Push(stackslot.I8())
			s.emit(inst.Offset, mintops.LDELEM_I8, 0)
		} else {
			s.stack.Push(stackslot.I4())
			s.emit(inst.Offset, mintops.LDELEM_I4, 0)
		}
	case il.LdelemR8, il.LdelemR4:
		s.pop()
		s.pop()
		s.stack.Push(stackslot.R8())
		s.emit(inst.Offset, mintops.LDELEM_R8, 0)
	case il.StelemI4, il.StelemI1, il.StelemI2, il.StelemI8, il.StelemI, il.StelemRef:
		s.pop()
		s.pop()
		s.pop()
		if inst.Op == il.StelemRef {
			s.emit(inst.Offset, mintops.STELEM_REF, 0)
		} else if inst.Op == il.StelemI8 {
			s.emit(inst.Offset, mintops.STELEM_I8, 0)
		} else {
			s.emit(inst.Offset, mintops.STELEM_I4, 0)
		}
	case il.StelemR8, il.StelemR4:
		s.pop()
		s.pop()
		s.pop()
		s.emit(inst.Offset, mintops.STELEM_R8, 0)

	case il.Box:
		s.pop()
		s.stack.Push(stackslot.Object())
		tok := s.addDataItem(inst.IntOperand)
		s.emit(inst.Offset, mintops.BOX, tok)
	case il.Unbox:
		s.pop()
		s.stack.Push(stackslot.ManagedPtr())
		tok := s.addDataItem(inst.IntOperand)
		s.emit(inst.Offset, mintops.UNBOX, tok)
	case il.UnboxAny:
		s.pop()
		s.stack.Push(stackslot.Object())
		tok := s.addDataItem(inst.IntOperand)
		s.emit(inst.Offset, mintops.UNBOX_ANY, tok)
	case il.Castclass:
		s.pop()
		s.stack.Push(stackslot.Object())
		tok := s.addDataItem(inst.IntOperand)
		s.emit(inst.Offset, mintops.CASTCLASS, tok)
	case il.Isinst:
		s.pop()
		s.stack.Push(stackslot.Object())
		tok := s.addDataItem(inst.IntOperand)
		s.emit(inst.Offset, mintops.ISINST, tok)

	case il.Ldstr:
		s.stack.Push(stackslot.Object())
		tok := s.addDataItem(inst.IntOperand)
		s.emit(inst.Offset, mintops.LDSTR, tok)

	case il.ThrowOp:
		s.pop()
		s.emit(inst.Offset, mintops.THROW, 0)
	case il.Rethrow:
		s.emit(inst.Offset, mintops.RETHROW, 0)
	case il.Endfinally:
		s.emit(inst.Offset, mintops.ENDFINALLY, 0)
	case il.Endfilter:
		s.pop()
		s.emit(inst.Offset, mintops.ENDFILTER, 0)
	case il.LeaveS, il.Leave:
		s.emitBranch(inst.Offset, mintops.LEAVE, inst.BranchTarget)

	case il.Ret:
		ret := s.t.Meta.Return(s.method)
		if ret.IsVoid {
			s.emit(inst.Offset, mintops.RET_VOID, 0)
		} else {
			s.pop()
			s.emit(inst.Offset, mintops.RET, 0)
		}

	case il.Unaligned, il.Volatile, il.Readonly, il.Constrained, il.Tail:
		// Prefixes modify the *next* instruction's opcode selection rather
		// than emitting a mint opcode of their own; since this lowering is
		// a direct per-instruction switch rather than a two-token lookahead
		// buffer, the refinement each of these would apply (an unaligned
		// load, a volatile barrier, a readonly array-address check elision,
		// a constrained virtual-call dispatch override, a tail-call
		// rewrite) is a documented simplification left for a follow-up
		// pass; see DESIGN.md.
	case il.Initobj:
		s.pop() // managed pointer to the storage being defaulted
		class, err := s.t.Meta.ResolveClassToken(s.method, uint32(inst.IntOperand))
		if err != nil {
			return fmt.Errorf("resolve initobj class token: %w", err)
		}
		size, _ := s.t.Meta.ValueTypeLayout(class)
		s.emit(inst.Offset, mintops.INITOBJ, int64(size))

	default:
		return fmt.Errorf("unsupported opcode %v", inst.Op)
	}
	return nil
}

func ldcI4SmallOp(op il.Opcode) mintops.Opcode {
	switch op {
	case il.LdcI4M1:
		return mintops.LDC_I4_M1
	case il.LdcI40:
		return mintops.LDC_I4_0
	case il.LdcI41:
		return mintops.LDC_I4_1
	case il.LdcI42:
		return mintops.LDC_I4_2
	case il.LdcI43:
		return mintops.LDC_I4_3
	case il.LdcI44:
		return mintops.LDC_I4_4
	case il.LdcI45:
		return mintops.LDC_I4_5
	case il.LdcI46:
		return mintops.LDC_I4_6
	case il.LdcI47:
		return mintops.LDC_I4_7
	default:
		return mintops.LDC_I4_8
	}
}

func (s *state) pushArg(idx int) {
	params := s.t.Meta.Params(s.method)
	hasThis := s.t.Meta.HasThis(s.method)
	if hasThis && idx == 0 {
		s.stack.Push(stackslot.Object())
		return
	}
	pi := idx - boolToInt(hasThis)
	if pi >= 0 && pi < len(params) {
		s.stack.Push(paramAbstract(params[pi]))
		return
	}
	s.stack.Push(stackslot.I4())
}

func (s *state) pushLocal(idx int) {
	locals := s.header.Locals
	if idx >= 0 && idx < len(locals) {
		s.stack.Push(paramAbstract(locals[idx]))
		return
	}
	s.stack.Push(stackslot.I4())
}

// slotOpcode picks one family member by abstract kind; every *_I4/_I8/_R8/
// _O/_VT quintuple the opcode table defines (LDLOC, STLOC, LDARG, STARG,
// LDFLD, STFLD, LDSFLD, STSFLD) is selected this same way, since mint has a
// dedicated opcode per stack-type flavor rather than one polymorphic opcode
// (§4.1).
func slotOpcode(k stackslot.Kind, i4, i8, r8, o, vt mintops.Opcode) mintops.Opcode {
	switch k {
	case stackslot.KindI4:
		return i4
	case stackslot.KindI8:
		return i8
	case stackslot.KindR8:
		return r8
	case stackslot.KindValueType:
		return vt
	default:
		return o
	}
}

func ldargOp(k stackslot.Kind) mintops.Opcode {
	return slotOpcode(k, mintops.LDARG_I4, mintops.LDARG_I8, mintops.LDARG_R8, mintops.LDARG_O, mintops.LDARG_VT)
}

func stargOp(k stackslot.Kind) mintops.Opcode {
	return slotOpcode(k, mintops.STARG_I4, mintops.STARG_I8, mintops.STARG_R8, mintops.STARG_O, mintops.STARG_VT)
}

func ldlocOp(k stackslot.Kind) mintops.Opcode {
	return slotOpcode(k, mintops.LDLOC_I4, mintops.LDLOC_I8, mintops.LDLOC_R8, mintops.LDLOC_O, mintops.LDLOC_VT)
}

func stlocOp(k stackslot.Kind) mintops.Opcode {
	return slotOpcode(k, mintops.STLOC_I4, mintops.STLOC_I8, mintops.STLOC_R8, mintops.STLOC_O, mintops.STLOC_VT)
}

func paramAbstract(p abi.ParamInfo) stackslot.Abstract {
	switch {
	case p.IsByRef:
		return stackslot.ManagedPtr()
	case p.IsValueType:
		return stackslot.ValueType(p.Size, "")
	default:
		switch p.Kind {
		case abi.StackKindI4:
			return stackslot.I4()
		case abi.StackKindI8:
			return stackslot.I8()
		case abi.StackKindR8:
			return stackslot.R8()
		default:
			return stackslot.Object()
		}
	}
}
