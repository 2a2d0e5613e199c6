package transform

import (
	"fmt"

	"github.com/minterp/mint/internal/abi"
	"github.com/minterp/mint/internal/il"
	"github.com/minterp/mint/internal/mintops"
	"github.com/minterp/mint/internal/stackslot"
)

// lowerCall implements the call-family lowering §4.4.4 names: call resolves
// statically (CALL), callvirt dispatches through the vtable unless the
// target is sealed/non-virtual (CALLVIRT vs. CALL — the virtual-vs-static
// choice itself is made by C6 at dispatch time using
// MetadataProvider.VTableSlot, since only the metadata layer, not the
// transformer, knows a given override's finality), and calli dispatches
// through a signature token against a function pointer already on the
// stack (CALLI). Each pops its argument list (including an implicit `this`
// for callvirt) and, for a value-type return, follows the call with
// VTRESULT bookkeeping so the dispatch loop knows where to copy the
// returned bytes in the value-type area (§4.4.4).
func (s *state) lowerCall(inst *il.Instruction) error {
	if inst.Op == il.Calli {
		sig, err := s.t.Meta.ResolveSignatureToken(s.method, uint32(inst.IntOperand))
		if err != nil {
			return fmt.Errorf("resolve calli signature token: %w", err)
		}
		s.pop() // function pointer
		for range s.t.Meta.SignatureParams(sig) {
			s.pop()
		}
		s.emit(inst.Offset, mintops.CALLI, s.addDataItem(sig))
		if ret := s.t.Meta.SignatureReturn(sig); !ret.IsVoid {
			s.stack.Push(retAbstract(ret))
		}
		return nil
	}
	method, err := s.resolveCallToken(inst)
	if err != nil {
		return err
	}

	hasThis := s.t.Meta.HasThis(method)
	params := s.t.Meta.Params(method)
	ret := s.t.Meta.Return(method)

	// Pop arguments right-to-left is irrelevant here since we only need the
	// count and the return type; the mint CALL opcode carries VarArgs pop
	// (it reads the callee's own signature at dispatch time), so the
	// transformer only needs to keep its abstract stack in sync.
	argc := len(params)
	if inst.Op == il.Callvirt {
		argc++ // implicit this
	} else if hasThis {
		argc++
	}
	for i := 0; i < argc; i++ {
		s.pop()
	}

	tok := s.addDataItem(method)
	op := mintops.CALL
	if inst.Op == il.Callvirt {
		op = mintops.CALLVIRT
	} else if inst.Op == il.Calli {
		op = mintops.CALLI
	}
	s.emit(inst.Offset, op, tok)

	if !ret.IsVoid {
		s.stack.Push(retAbstract(ret))
		if ret.IsValueType && ret.Size > 8 {
			off := s.vtArea.Alloc(ret.Size)
			s.emit(inst.Offset, mintops.VTRESULT, int64(off))
		}
	}
	return nil
}

func retAbstract(ret abi.ParamInfo) stackslot.Abstract {
	return paramAbstract(ret)
}

// lowerNewobj implements §4.4.4's newobj lowering: the constructor call
// itself (already-transformed like any other CALL) preceded by allocation of
// the new instance, specialized for two shapes a constructor target can
// have — an ordinary object (NEWOBJ allocates then calls the ctor on it),
// and String's magic constructors, which allocate the string's backing
// storage sized from their arguments rather than calling a normal managed
// ctor (NEWOBJ_STRING). A value-type constructor takes the NEWOBJ path as
// well; NEWOBJ_VT is not emitted.
func (s *state) lowerNewobj(inst *il.Instruction) error {
	method, err := s.resolveCallToken(inst)
	if err != nil {
		return err
	}
	params := s.t.Meta.Params(method)
	for range params {
		s.pop()
	}
	tok := s.addDataItem(method)

	switch {
	case s.isStringCtor(method):
		s.emit(inst.Offset, mintops.NEWOBJ_STRING, tok)
	default:
		s.emit(inst.Offset, mintops.NEWOBJ, tok)
	}
	s.stack.Push(stackslot.Object())
	return nil
}

// isStringCtor recognizes String's magic constructors (§4.4.5 intrinsic
// recognition): unlike an ordinary reference type, `new String(...)` never
// runs a normal allocate-then-call-ctor sequence, since String's backing
// storage is sized from the constructor's arguments (a char[], a char*, a
// repeat count, ...) rather than being a fixed-size instance the class
// layout already knows. A constructor belongs to String exactly when its
// declaring class equals the well-known String class the metadata layer
// names.
func (s *state) isStringCtor(method abi.MethodHandle) bool {
	str := s.t.Meta.WellKnownClass("System.String")
	if str == 0 {
		return false
	}
	return s.t.Meta.DeclaringClass(method) == str
}

func (s *state) resolveCallToken(inst *il.Instruction) (abi.MethodHandle, error) {
	m, err := s.t.Meta.ResolveMethodToken(s.method, uint32(inst.IntOperand))
	if err != nil {
		return 0, fmt.Errorf("resolve call token: %w", err)
	}
	return m, nil
}
