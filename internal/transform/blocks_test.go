package transform

import (
	"testing"

	"github.com/minterp/mint/internal/abi"
	"github.com/minterp/mint/internal/il"
	"github.com/minterp/mint/internal/testing/require"
)

func TestDiscoverLeadersEntryAndBranchTargets(t *testing.T) {
	// ldarg.0; brtrue.s L; ldc.i4.0; ret; L: ldc.i4.1; ret
	code := []byte{0x02, 0x2D, 0x02, 0x16, 0x2A, 0x17, 0x2A}
	insts, err := il.Decode(code)
	require.NoError(t, err)

	s := &state{insts: insts, header: abi.MethodHeader{}}
	leaders := discoverLeaders(s)

	require.True(t, leaders[0])  // entry
	require.True(t, leaders[5])  // branch target (brtrue.s L)
	require.True(t, leaders[3])  // instruction right after the branch
	require.False(t, leaders[4]) // ret, not a leader
}

func TestDiscoverLeadersIncludesClauseBoundaries(t *testing.T) {
	code := []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00} // six NOPs
	insts, err := il.Decode(code)
	require.NoError(t, err)

	s := &state{
		insts: insts,
		header: abi.MethodHeader{
			Clauses: []abi.ExceptionClause{
				{Kind: abi.ClauseCatch, TryStart: 1, TryEnd: 3, HandlerStart: 3, HandlerEnd: 5},
			},
		},
	}
	leaders := discoverLeaders(s)

	require.True(t, leaders[1])
	require.True(t, leaders[3])
	require.True(t, leaders[5])
	require.False(t, leaders[2])
}

func TestDiscoverLeadersIncludesFilterStart(t *testing.T) {
	code := make([]byte, 10)
	insts, err := il.Decode(code)
	require.NoError(t, err)

	s := &state{
		insts: insts,
		header: abi.MethodHeader{
			Clauses: []abi.ExceptionClause{
				{Kind: abi.ClauseFilter, TryStart: 0, TryEnd: 2, FilterStart: 2, HandlerStart: 4, HandlerEnd: 6},
			},
		},
	}
	leaders := discoverLeaders(s)
	require.True(t, leaders[2])
	require.True(t, leaders[4])
}
