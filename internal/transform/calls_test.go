package transform

import (
	"testing"

	"github.com/minterp/mint/internal/abi"
	"github.com/minterp/mint/internal/il"
	"github.com/minterp/mint/internal/mintops"
	"github.com/minterp/mint/internal/stackslot"
	"github.com/minterp/mint/internal/testing/require"
)

func TestLowerCallPopsArgsAndPushesReturn(t *testing.T) {
	meta := newFakeMeta()
	callee := abi.MethodHandle(5)
	meta.params[callee] = []abi.ParamInfo{i4Param()}
	meta.ret[callee] = i4Param()

	s := &state{t: &Transformer{Meta: meta}, method: abi.MethodHandle(1), stack: stackslot.NewStack()}
	s.stack.Push(stackslot.I4()) // the one argument

	require.NoError(t, s.lowerCall(&il.Instruction{Op: il.Call, IntOperand: int64(callee)}))
	require.Equal(t, mintops.CALL, lastEmittedOp(s))
	require.Equal(t, 1, s.stack.Len())
}

func TestLowerCallVoidReturnPushesNothing(t *testing.T) {
	meta := newFakeMeta()
	callee := abi.MethodHandle(6)
	meta.ret[callee] = voidRet()

	s := &state{t: &Transformer{Meta: meta}, method: abi.MethodHandle(1), stack: stackslot.NewStack()}

	require.NoError(t, s.lowerCall(&il.Instruction{Op: il.Call, IntOperand: int64(callee)}))
	require.Equal(t, 0, s.stack.Len())
}

func TestLowerCallvirtPopsImplicitThis(t *testing.T) {
	meta := newFakeMeta()
	callee := abi.MethodHandle(7)
	meta.ret[callee] = voidRet()

	s := &state{t: &Transformer{Meta: meta}, method: abi.MethodHandle(1), stack: stackslot.NewStack()}
	s.stack.Push(stackslot.Object()) // this

	require.NoError(t, s.lowerCall(&il.Instruction{Op: il.Callvirt, IntOperand: int64(callee)}))
	require.Equal(t, mintops.CALLVIRT, lastEmittedOp(s))
	require.Equal(t, 0, s.stack.Len())
}

func TestLowerNewobjStringCtorUsesDedicatedOpcode(t *testing.T) {
	meta := newFakeMeta()
	ctor := abi.MethodHandle(9)
	str := abi.ClassHandle(42)
	meta.params[ctor] = []abi.ParamInfo{}
	meta.declClass[ctor] = str

	s := &state{t: &Transformer{Meta: meta}, method: abi.MethodHandle(1), stack: stackslot.NewStack()}
	require.NoError(t, s.lowerNewobj(&il.Instruction{Op: il.Newobj, IntOperand: int64(ctor)}))
	require.NotEqual(t, mintops.NEWOBJ_STRING, lastEmittedOp(s)) // WellKnownClass unset -> 0, never matches

	meta.wellKnown["System.String"] = str
	s2 := &state{t: &Transformer{Meta: meta}, method: abi.MethodHandle(1), stack: stackslot.NewStack()}
	require.NoError(t, s2.lowerNewobj(&il.Instruction{Op: il.Newobj, IntOperand: int64(ctor)}))
	require.Equal(t, mintops.NEWOBJ_STRING, lastEmittedOp(s2))
}

func TestLowerNewobjAllocatesAndPushesObject(t *testing.T) {
	meta := newFakeMeta()
	ctor := abi.MethodHandle(8)
	meta.params[ctor] = []abi.ParamInfo{i4Param()}

	s := &state{t: &Transformer{Meta: meta}, method: abi.MethodHandle(1), stack: stackslot.NewStack()}
	s.stack.Push(stackslot.I4()) // ctor arg

	require.NoError(t, s.lowerNewobj(&il.Instruction{Op: il.Newobj, IntOperand: int64(ctor)}))
	require.Equal(t, mintops.NEWOBJ, lastEmittedOp(s))
	top, ok := s.stack.Peek()
	require.True(t, ok)
	require.Equal(t, stackslot.KindObject, top.Kind)
}
