package transform

import (
	"testing"

	"github.com/minterp/mint/internal/il"
	"github.com/minterp/mint/internal/mintops"
	"github.com/minterp/mint/internal/stackslot"
	"github.com/minterp/mint/internal/testing/require"
)

func newBinopState() *state {
	s := &state{stack: stackslot.NewStack()}
	s.stack.Push(stackslot.I4())
	s.stack.Push(stackslot.I4())
	return s
}

func lastEmittedOp(s *state) mintops.Opcode {
	return s.out[len(s.out)-1].op
}

func TestLowerBinopUncheckedAddUsesPlainOpcode(t *testing.T) {
	s := newBinopState()
	require.NoError(t, s.lowerBinop(&il.Instruction{Op: il.Add}))
	require.Equal(t, mintops.ADD_I4, lastEmittedOp(s))
}

func TestLowerBinopCheckedAddUsesDistinctOverflowOpcode(t *testing.T) {
	s := newBinopState()
	require.NoError(t, s.lowerBinop(&il.Instruction{Op: il.AddOvf}))
	op := lastEmittedOp(s)
	require.Equal(t, mintops.ADD_OVF_I4, op)
	require.NotEqual(t, mintops.ADD_I4, op)
}

func TestLowerBinopCheckedUnsignedAddUsesOwnOpcode(t *testing.T) {
	s := newBinopState()
	require.NoError(t, s.lowerBinop(&il.Instruction{Op: il.AddOvfUn}))
	op := lastEmittedOp(s)
	require.Equal(t, mintops.ADD_OVF_UN_I4, op)
	require.NotEqual(t, mintops.ADD_OVF_I4, op)
}

func TestLowerBinopCheckedSubAndMulOnI8(t *testing.T) {
	s := &state{stack: stackslot.NewStack()}
	s.stack.Push(stackslot.I8())
	s.stack.Push(stackslot.I8())
	require.NoError(t, s.lowerBinop(&il.Instruction{Op: il.SubOvf}))
	require.Equal(t, mintops.SUB_OVF_I8, lastEmittedOp(s))

	s2 := &state{stack: stackslot.NewStack()}
	s2.stack.Push(stackslot.I8())
	s2.stack.Push(stackslot.I8())
	require.NoError(t, s2.lowerBinop(&il.Instruction{Op: il.MulOvfUn}))
	require.Equal(t, mintops.MUL_OVF_UN_I8, lastEmittedOp(s2))
}

func TestLowerBinopCheckedArithmeticRejectsFloat(t *testing.T) {
	s := &state{stack: stackslot.NewStack()}
	s.stack.Push(stackslot.R8())
	s.stack.Push(stackslot.R8())
	err := s.lowerBinop(&il.Instruction{Op: il.AddOvf})
	require.Error(t, err)
}

func TestLowerCondBranchPicksUnsignedFamily(t *testing.T) {
	s := &state{stack: stackslot.NewStack()}
	s.stack.Push(stackslot.I8())
	s.stack.Push(stackslot.I8())
	require.NoError(t, s.lowerCondBranch(&il.Instruction{Op: il.BltUn, BranchTarget: 10}))
	require.Equal(t, mintops.BLT_UN_I8, lastEmittedOp(s))
}

func TestLowerCompareSelectsR8Family(t *testing.T) {
	s := &state{stack: stackslot.NewStack()}
	s.stack.Push(stackslot.R8())
	s.stack.Push(stackslot.R8())
	require.NoError(t, s.lowerCompare(&il.Instruction{Op: il.Cgt}))
	require.Equal(t, mintops.CGT_R8, lastEmittedOp(s))
}
