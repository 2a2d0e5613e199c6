package mintops

import (
	"testing"

	"github.com/minterp/mint/internal/testing/require"
)

func TestLookupKnownOpcodes(t *testing.T) {
	for _, name := range []string{"LDC_I4_0", "ADD_I4", "CALL", "SWITCH", "RET"} {
		op, ok := ByName(name)
		require.True(t, ok, "expected opcode %q to be defined", name)
		row := Lookup(op)
		require.Equal(t, name, row.Name)
	}
}

func TestLookupOutOfRangePanics(t *testing.T) {
	err := require.CapturePanic(func() {
		Lookup(Opcode(len(table) + 1000))
	})
	require.NotNil(t, err)
}

func TestSwitchLenMatchesHeaderPlusTargets(t *testing.T) {
	op, ok := ByName("SWITCH")
	require.True(t, ok, "SWITCH must be defined")

	n := 3
	code := make([]uint16, 0, SwitchLen(n))
	code = append(code, uint16(op))
	code = append(code, uint16(n), 0) // count as two mint-words (low, high)
	for i := 0; i < n; i++ {
		code = append(code, 0, 0) // each target is a 2-word i32 delta
	}

	got := Len(op, code, 0)
	require.Equal(t, SwitchLen(n), got)
	require.Equal(t, 1+2+n*2, got)
}

func TestFixedLengthOpcodesIgnoreCodeStream(t *testing.T) {
	op, ok := ByName("RET")
	require.True(t, ok, "RET must be defined")
	// Len must not dereference code/ip for non-switch opcodes.
	got := Len(op, nil, 0)
	require.Equal(t, Lookup(op).Len, got)
}

func TestByNameUnknownReturnsFalse(t *testing.T) {
	_, ok := ByName("NOT_A_REAL_MINT_OP")
	require.False(t, ok)
}
