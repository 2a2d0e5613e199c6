package transform

import (
	"fmt"

	"github.com/minterp/mint/internal/abi"
	"github.com/minterp/mint/internal/il"
	"github.com/minterp/mint/internal/mintops"
	"github.com/minterp/mint/internal/stackslot"
)

// lowerFieldInstance implements ldfld/ldflda/stfld (§4.4.4): each resolves
// the field token through the metadata layer, then picks the type-specific
// LDFLD_*/STFLD_* family member the same way the slot-load/store opcodes are
// picked. A remotable field (§4.2's transparent-proxy path) goes through
// LDRMFLD/STRMFLD instead, which the dispatch loop routes through
// ObjectRuntime.RemotingLoad/RemotingStore rather than a direct offset read.
// ParamInfo's Kind field only distinguishes I4/I8/R8/object, not the
// sub-word byte/short widths mint's own LDFLD_I1/U1/I2/U2 variants carry;
// this transformer folds every narrower integer field into the I4 family,
// a simplification recorded in DESIGN.md.
func (s *state) lowerFieldInstance(inst *il.Instruction) error {
	field, err := s.t.Meta.ResolveFieldToken(s.method, uint32(inst.IntOperand))
	if err != nil {
		return fmt.Errorf("resolve field token: %w", err)
	}
	ft := s.t.Meta.FieldType(field)
	remotable := s.t.Meta.FieldIsRemotable(field)

	switch inst.Op {
	case il.Ldfld:
		s.pop() // object reference
		s.stack.Push(paramAbstract(ft))
		tok := s.addDataItem(field)
		if remotable {
			s.emit(inst.Offset, mintops.LDRMFLD, tok)
		} else {
			s.emit(inst.Offset, ldfldOp(fieldKind(ft)), tok)
		}
	case il.Ldflda:
		s.pop()
		s.stack.Push(stackslot.ManagedPtr())
		tok := s.addDataItem(field)
		s.emit(inst.Offset, mintops.LDFLDA, tok)
	case il.Stfld:
		s.pop() // value
		s.pop() // object reference
		tok := s.addDataItem(field)
		if remotable {
			s.emit(inst.Offset, mintops.STRMFLD, tok)
		} else {
			s.emit(inst.Offset, stfldOp(fieldKind(ft)), tok)
		}
	default:
		return fmt.Errorf("lowerFieldInstance: unexpected opcode %v", inst.Op)
	}
	return nil
}

// lowerFieldStatic implements ldsfld/ldsflda/stsfld (§4.4.4): static fields
// have no remotable path (remoting operates on instance state), so they
// always use the direct LDSFLD_*/STSFLD_*/LDSFLDA opcodes.
func (s *state) lowerFieldStatic(inst *il.Instruction) error {
	field, err := s.t.Meta.ResolveFieldToken(s.method, uint32(inst.IntOperand))
	if err != nil {
		return fmt.Errorf("resolve field token: %w", err)
	}
	ft := s.t.Meta.FieldType(field)

	switch inst.Op {
	case il.Ldsfld:
		s.stack.Push(paramAbstract(ft))
		tok := s.addDataItem(field)
		s.emit(inst.Offset, ldsfldOp(fieldKind(ft)), tok)
	case il.Ldsflda:
		s.stack.Push(stackslot.ManagedPtr())
		tok := s.addDataItem(field)
		s.emit(inst.Offset, mintops.LDSFLDA, tok)
	case il.Stsfld:
		s.pop()
		tok := s.addDataItem(field)
		s.emit(inst.Offset, stsfldOp(fieldKind(ft)), tok)
	default:
		return fmt.Errorf("lowerFieldStatic: unexpected opcode %v", inst.Op)
	}
	return nil
}

// fieldKind maps a field's ParamInfo to the abstract stack kind its loaded
// value takes on, matching paramAbstract's ByRef/ValueType/Kind precedence.
func fieldKind(p abi.ParamInfo) stackslot.Kind {
	return paramAbstract(p).Kind
}

func ldfldOp(k stackslot.Kind) mintops.Opcode {
	return slotOpcode(k, mintops.LDFLD_I4, mintops.LDFLD_I8, mintops.LDFLD_R8, mintops.LDFLD_O, mintops.LDFLD_VT)
}

func stfldOp(k stackslot.Kind) mintops.Opcode {
	return slotOpcode(k, mintops.STFLD_I4, mintops.STFLD_I8, mintops.STFLD_R8, mintops.STFLD_O, mintops.STFLD_VT)
}

func ldsfldOp(k stackslot.Kind) mintops.Opcode {
	return slotOpcode(k, mintops.LDSFLD_I4, mintops.LDSFLD_I8, mintops.LDSFLD_R8, mintops.LDSFLD_O, mintops.LDSFLD_VT)
}

func stsfldOp(k stackslot.Kind) mintops.Opcode {
	return slotOpcode(k, mintops.STSFLD_I4, mintops.STSFLD_I8, mintops.STSFLD_R8, mintops.STSFLD_O, mintops.STSFLD_VT)
}
