package trace

import (
	"bytes"
	"testing"

	"github.com/minterp/mint/internal/compiledmethod"
	"github.com/minterp/mint/internal/mintops"
	"github.com/minterp/mint/internal/testing/require"
)

func TestScopeStringListsEnabledScopes(t *testing.T) {
	s := ScopeCall | ScopeException
	require.Equal(t, "call|exception", s.String())
}

func TestScopeStringAll(t *testing.T) {
	require.Equal(t, "all", ScopeAll.String())
}

func TestLoggerGatesByScope(t *testing.T) {
	var b bytes.Buffer
	l := NewLogger(&b, ScopeCall)
	l.Printf(ScopeCall, "hit %d", 1)
	l.Printf(ScopeOpcode, "should not appear")
	require.Contains(t, b.String(), "hit 1")
	require.False(t, bytes.Contains(b.Bytes(), []byte("should not appear")))
}

func TestDumpMethodRendersOpcodeNames(t *testing.T) {
	ret, ok := mintops.ByName("RET")
	require.True(t, ok)
	cm := &compiledmethod.CompiledMethod{Code: []uint16{uint16(ret)}}
	var b bytes.Buffer
	err := DumpMethod(&b, cm)
	require.NoError(t, err)
	require.Contains(t, b.String(), "RET")
}
