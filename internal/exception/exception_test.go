package exception

import (
	"testing"

	"github.com/minterp/mint/internal/abi"
	"github.com/minterp/mint/internal/compiledmethod"
	"github.com/minterp/mint/internal/testing/require"
)

func TestThrownErrorFormatting(t *testing.T) {
	th := &Thrown{ClassName: string(NullReference), Message: "obj is null"}
	require.Equal(t, "System.NullReferenceException: obj is null", th.Error())

	th2 := &Thrown{ClassName: string(DivideByZero)}
	require.Equal(t, "System.DivideByZeroException", th2.Error())
}

func TestFatalError(t *testing.T) {
	f := &Fatal{Reason: "corrupted opcode table"}
	require.Contains(t, f.Error(), "corrupted opcode table")
}

func TestNotSupported(t *testing.T) {
	th := NotSupported("transparent proxy")
	require.Equal(t, string(NotSupportedName), th.ClassName)
	require.Contains(t, th.Message, "transparent proxy")
}

func TestResolverThrowPanicsWithThrown(t *testing.T) {
	r := &Resolver{}
	err := require.CapturePanic(func() {
		r.Throw(Overflow, "value %d too big", 42)
	})
	require.NotNil(t, err)
}

func TestMatchFindsInnermostCatchFirst(t *testing.T) {
	cm := &compiledmethod.CompiledMethod{
		Clauses: []compiledmethod.Clause{
			{Kind: abi.ClauseCatch, TryStart: 0, TryEnd: 100, CatchClass: 1},
			{Kind: abi.ClauseCatch, TryStart: 10, TryEnd: 20, CatchClass: 2},
		},
	}
	t1 := &Thrown{Class: 2}
	d, ok := Match(cm, 15, t1, func(to, from abi.ClassHandle) bool { return to == from })
	require.True(t, ok)
	require.Equal(t, ActionHandle, d.Action)
	require.Equal(t, abi.ClassHandle(2), d.Clause.CatchClass)
}

func TestMatchSkipsNonAssignableCatch(t *testing.T) {
	cm := &compiledmethod.CompiledMethod{
		Clauses: []compiledmethod.Clause{
			{Kind: abi.ClauseCatch, TryStart: 0, TryEnd: 100, CatchClass: 99},
		},
	}
	th := &Thrown{Class: 2}
	_, ok := Match(cm, 5, th, func(to, from abi.ClassHandle) bool { return to == from })
	require.False(t, ok)
}

func TestMatchFinallyAlwaysMatchesForRunning(t *testing.T) {
	cm := &compiledmethod.CompiledMethod{
		Clauses: []compiledmethod.Clause{
			{Kind: abi.ClauseFinally, TryStart: 0, TryEnd: 50},
		},
	}
	th := &Thrown{Class: 1}
	d, ok := Match(cm, 5, th, nil)
	require.True(t, ok)
	require.Equal(t, ActionRunFinally, d.Action)
}

func TestUnwindWalksParentChain(t *testing.T) {
	inner := &compiledmethod.CompiledMethod{Clauses: nil}
	outer := &compiledmethod.CompiledMethod{Clauses: []compiledmethod.Clause{
		{Kind: abi.ClauseCatch, TryStart: 0, TryEnd: 10, CatchClass: 5},
	}}
	parent := &compiledmethod.Frame{Method: outer, IP: 3}
	child := &compiledmethod.Frame{Method: inner, IP: 0, Parent: parent}

	th := &Thrown{Class: 5}
	f, d, ok := Unwind(child, th, func(to, from abi.ClassHandle) bool { return to == from })
	require.True(t, ok)
	require.Same(t, parent, f)
	require.Equal(t, ActionHandle, d.Action)
}

func TestCaptureTraceOrdersInnermostFirst(t *testing.T) {
	outer := &compiledmethod.CompiledMethod{Method: abi.MethodHandle(1)}
	inner := &compiledmethod.CompiledMethod{Method: abi.MethodHandle(2)}
	parent := &compiledmethod.Frame{Method: outer, IP: 7}
	child := &compiledmethod.Frame{Method: inner, IP: 3, Parent: parent}

	trace := CaptureTrace(child)
	require.Equal(t, 2, len(trace))
	require.Equal(t, abi.MethodHandle(2), trace[0].Method)
	require.Equal(t, abi.MethodHandle(1), trace[1].Method)
}
