package interp

import (
	"testing"

	"github.com/minterp/mint/internal/abi"
	"github.com/minterp/mint/internal/compiledmethod"
	"github.com/minterp/mint/internal/mintops"
	"github.com/minterp/mint/internal/testing/require"
)

func i4ParamInfo() abi.ParamInfo { return abi.ParamInfo{Kind: abi.StackKindI4} }

// TestCallAddTwoArgs runs LDARG_I4 0; LDARG_I4 1; ADD_I4; RET end-to-end
// through Dispatcher.Call, exercising the plain arithmetic path with no
// exception handling involved.
func TestCallAddTwoArgs(t *testing.T) {
	code := []uint16{}
	ldarg, _ := mintops.ByName("LDARG_I4")
	add, _ := mintops.ByName("ADD_I4")
	ret, _ := mintops.ByName("RET")
	code = append(code, uint16(ldarg), 0)
	code = append(code, uint16(ldarg), 1)
	code = append(code, uint16(add))
	code = append(code, uint16(ret))

	cm := &compiledmethod.CompiledMethod{
		Method:     abi.MethodHandle(1),
		Code:       code,
		ArgCount:   2,
		ParamTypes: []abi.ParamInfo{i4ParamInfo(), i4ParamInfo()},
		ReturnType: i4ParamInfo(),
		ArgOffsets: []int{0, 1},
		ArgsSize:   2,
		StackSize:  2,
	}

	meta := newFakeMeta()
	objs := newFakeRuntime()
	d, reg := newTestDispatcher(meta, objs)
	register(reg, cm)

	tc := &compiledmethod.ThreadContext{}
	word, thrown, err := d.Call(tc, cm.Method, []uint64{40, 2}, nil)
	require.NoError(t, err)
	require.Nil(t, thrown)
	require.Equal(t, int32(42), int32(word))
}

// TestCallDispatchesCallee builds two CompiledMethods -- a callee that doubles
// its argument, and a caller that loads a constant, calls the callee, and
// returns its result -- exercising CALL's argument-popping/result-pushing
// path (calls.go's dispatchManagedCall) rather than just arithmetic.
func TestCallDispatchesCallee(t *testing.T) {
	calleeCode := []uint16{}
	ldarg, _ := mintops.ByName("LDARG_I4")
	dup, _ := mintops.ByName("DUP")
	add, _ := mintops.ByName("ADD_I4")
	ret, _ := mintops.ByName("RET")
	calleeCode = append(calleeCode, uint16(ldarg), 0)
	calleeCode = append(calleeCode, uint16(dup))
	calleeCode = append(calleeCode, uint16(add))
	calleeCode = append(calleeCode, uint16(ret))

	callee := &compiledmethod.CompiledMethod{
		Method:     abi.MethodHandle(2),
		Code:       calleeCode,
		ArgCount:   1,
		ParamTypes: []abi.ParamInfo{i4ParamInfo()},
		ReturnType: i4ParamInfo(),
		ArgOffsets: []int{0},
		ArgsSize:   1,
		StackSize:  2,
	}

	ldcI4S, _ := mintops.ByName("LDC_I4_S")
	call, _ := mintops.ByName("CALL")

	callerCode := []uint16{}
	callerCode = append(callerCode, uint16(ldcI4S), 9)
	callerCode = append(callerCode, uint16(call), 0) // DataItems[0] == callee
	callerCode = append(callerCode, uint16(ret))

	caller := &compiledmethod.CompiledMethod{
		Method:     abi.MethodHandle(1),
		Code:       callerCode,
		DataItems:  []interface{}{callee.Method},
		ReturnType: i4ParamInfo(),
		ArgsSize:   0,
		StackSize:  1,
	}

	meta := newFakeMeta()
	objs := newFakeRuntime()
	d, reg := newTestDispatcher(meta, objs)
	register(reg, caller)
	register(reg, callee)

	tc := &compiledmethod.ThreadContext{}
	word, thrown, err := d.Call(tc, caller.Method, nil, nil)
	require.NoError(t, err)
	require.Nil(t, thrown)
	require.Equal(t, int32(18), int32(word))
}

// TestDivideByZeroCaughtByHandler builds a try/catch around DIV_I4: a zero
// divisor traps DivideByZeroException, and the catch clause (matched via
// fakeMeta's default to==from assignability) runs its handler instead of
// propagating the panic out of Dispatcher.Call.
func TestDivideByZeroCaughtByHandler(t *testing.T) {
	ldarg, _ := mintops.ByName("LDARG_I4")
	div, _ := mintops.ByName("DIV_I4")
	ldcI4_1, _ := mintops.ByName("LDC_I4_1")
	ret, _ := mintops.ByName("RET")

	code := []uint16{}
	code = append(code, uint16(ldarg), 0) // ip0-1
	code = append(code, uint16(ldarg), 1) // ip2-3
	code = append(code, uint16(div))      // ip4
	handlerStart := len(code)
	code = append(code, uint16(ldcI4_1)) // ip5: handler body
	code = append(code, uint16(ret))     // ip6

	meta := newFakeMeta()
	dbzClass := abi.ClassHandle(77)
	meta.wellKnown["System.DivideByZeroException"] = dbzClass

	cm := &compiledmethod.CompiledMethod{
		Method:     abi.MethodHandle(1),
		Code:       code,
		ArgCount:   2,
		ParamTypes: []abi.ParamInfo{i4ParamInfo(), i4ParamInfo()},
		ReturnType: i4ParamInfo(),
		ArgOffsets: []int{0, 1},
		ArgsSize:   2,
		StackSize:  2,
		Clauses: []compiledmethod.Clause{
			{
				Kind:         abi.ClauseCatch,
				TryStart:     0,
				TryEnd:       4 + 1,
				HandlerStart: handlerStart,
				HandlerEnd:   len(code),
				CatchClass:   dbzClass,
			},
		},
		ExvarOffsets: []int{0},
	}

	objs := newFakeRuntime()
	d, reg := newTestDispatcher(meta, objs)
	register(reg, cm)

	tc := &compiledmethod.ThreadContext{}
	word, thrown, err := d.Call(tc, cm.Method, []uint64{10, 0}, nil)
	require.NoError(t, err)
	require.Nil(t, thrown)
	require.Equal(t, int32(1), int32(word))
}

// TestLeaveRunsFinally builds a try/finally whose body increments an argument
// slot via STARG, and a LEAVE past the try region; the finally must run
// before control reaches the RET that follows it.
func TestLeaveRunsFinally(t *testing.T) {
	ldarg, _ := mintops.ByName("LDARG_I4")
	starg, _ := mintops.ByName("STARG_I4")
	ldcI4_1, _ := mintops.ByName("LDC_I4_1")
	add, _ := mintops.ByName("ADD_I4")
	leave, _ := mintops.ByName("LEAVE")
	endfinally, _ := mintops.ByName("ENDFINALLY")
	ret, _ := mintops.ByName("RET")

	// ip0: LEAVE <delta to after-finally>
	// ip3: finally body: LDARG_I4 0; LDC_I4_1; ADD_I4; STARG_I4 0; ENDFINALLY
	// ip10: RET-side: LDARG_I4 0; RET
	leaveLen := mintops.Lookup(leave).Len // 3: opcode + 2-word delta
	finallyStart := leaveLen
	finallyBody := []uint16{
		uint16(ldarg), 0,
		uint16(ldcI4_1),
		uint16(add),
		uint16(starg), 0,
		uint16(endfinally),
	}
	afterFinally := finallyStart + len(finallyBody)

	code := make([]uint16, 0, afterFinally+3)
	code = append(code, uint16(leave), 0, 0) // delta patched below
	code = append(code, finallyBody...)
	code = append(code, uint16(ldarg), 0)
	code = append(code, uint16(ret))

	delta := int32(afterFinally - leaveLen)
	code[1] = uint16(uint32(delta))
	code[2] = uint16(uint32(delta) >> 16)

	cm := &compiledmethod.CompiledMethod{
		Method:     abi.MethodHandle(1),
		Code:       code,
		ArgCount:   1,
		ParamTypes: []abi.ParamInfo{i4ParamInfo()},
		ReturnType: i4ParamInfo(),
		ArgOffsets: []int{0},
		ArgsSize:   1,
		StackSize:  2,
		Clauses: []compiledmethod.Clause{
			{
				Kind:         abi.ClauseFinally,
				TryStart:     0,
				TryEnd:       leaveLen,
				HandlerStart: finallyStart,
				HandlerEnd:   afterFinally,
			},
		},
		ExvarOffsets: []int{0},
	}

	meta := newFakeMeta()
	objs := newFakeRuntime()
	d, reg := newTestDispatcher(meta, objs)
	register(reg, cm)

	tc := &compiledmethod.ThreadContext{}
	word, thrown, err := d.Call(tc, cm.Method, []uint64{5}, nil)
	require.NoError(t, err)
	require.Nil(t, thrown)
	require.Equal(t, int32(6), int32(word))
}
