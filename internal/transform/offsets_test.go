package transform

import (
	"testing"

	"github.com/minterp/mint/internal/abi"
	"github.com/minterp/mint/internal/testing/require"
)

func TestAssignOffsetsArgsThenLocalsThenExvars(t *testing.T) {
	meta := newFakeMeta()
	m := abi.MethodHandle(1)
	meta.hasThis[m] = true
	meta.params[m] = []abi.ParamInfo{i4Param(), i4Param()}

	s := &state{
		t:      &Transformer{Meta: meta},
		method: m,
		header: abi.MethodHeader{
			Locals: []abi.ParamInfo{i4Param(), i4Param()},
			Clauses: []abi.ExceptionClause{
				{Kind: abi.ClauseCatch},
			},
		},
	}
	require.NoError(t, s.assignOffsets())

	// this + 2 params = 3 arg slots at offsets 0,1,2
	require.Equal(t, []int{0, 1, 2}, s.argOffsets)
	// 2 locals follow at 3,4
	require.Equal(t, []int{3, 4}, s.localOffsets)
	// one exvar slot per clause follows at 5
	require.Equal(t, []int{5}, s.exvarOffsets)
}

func TestAssignOffsetsZeroInitFollowsHeaderFlag(t *testing.T) {
	meta := newFakeMeta()
	m := abi.MethodHandle(2)

	s := &state{
		t:      &Transformer{Meta: meta},
		method: m,
		header: abi.MethodHeader{
			Locals:     []abi.ParamInfo{i4Param()},
			InitLocals: true,
		},
	}
	require.NoError(t, s.assignOffsets())
	require.Equal(t, []bool{true}, s.zeroInit)
}

func TestAssignOffsetsOversizedValueTypeLocalReservesVTArea(t *testing.T) {
	meta := newFakeMeta()
	m := abi.MethodHandle(3)

	s := &state{
		t:      &Transformer{Meta: meta},
		method: m,
		header: abi.MethodHeader{
			Locals: []abi.ParamInfo{{IsValueType: true, Size: 16, Align: 8}},
		},
	}
	require.NoError(t, s.assignOffsets())
	require.Equal(t, 16, s.vtArea.Size())
}
