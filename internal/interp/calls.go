package interp

import (
	"github.com/minterp/mint/internal/abi"
	"github.com/minterp/mint/internal/compiledmethod"
	"github.com/minterp/mint/internal/exception"
	"github.com/minterp/mint/internal/mintops"
)

// execCall implements CALL/CALLVIRT/VCALL/CALLI/JIT_CALL (§4.6 call
// dispatch, §4.7 call bridge). Every variant pops its argument words off the
// eval stack in declaration order (receiver first, if any), recursively
// dispatches the callee, and pushes its scalar/object/managed-pointer result
// -- an oversized value-type result is instead left for the following
// VTRESULT instruction the transformer always emits right after a call
// whose return is an oversized value type.
func execCall(d *Dispatcher, tc *compiledmethod.ThreadContext, f *compiledmethod.Frame, st *evalStack, op mintops.Opcode, row mintops.Row, code []uint16, ip int) {
	switch op {
	case mintops.CALLI:
		execCalli(d, tc, f, st, row, code, ip)
		return
	case mintops.JIT_CALL:
		execJitCall(d, tc, f, st, row, code, ip)
		return
	}

	tok := unsignedWord(code, ip)
	target := f.Method.DataItems[tok].(abi.MethodHandle)

	if op == mintops.CALLVIRT || op == mintops.VCALL {
		hasThis := d.Meta.HasThis(target)
		argc := len(d.Meta.Params(target)) + boolToInt(hasThis)
		receiver := st.peekRaw(argc - 1)
		if receiver == 0 {
			d.Exceptions.Throw(exception.NullReference, "")
		}
		resolved, err := d.Meta.ResolveVirtualMethod(target, d.Meta.ClassOf(uintptr(receiver)))
		if err != nil {
			d.Exceptions.Throw(exception.MissingMethod, "%v", err)
		}
		target = resolved
	}

	dispatchManagedCall(d, tc, st, target)
}

// dispatchManagedCall pops target's argument words, recursively dispatches
// it, and pushes its result (or leaves the VT-area offset for VTRESULT).
func dispatchManagedCall(d *Dispatcher, tc *compiledmethod.ThreadContext, st *evalStack, target abi.MethodHandle) {
	cm, err := d.resolve(target)
	if err != nil {
		d.Exceptions.Throw(exception.MissingMethod, "%v", err)
	}
	if err := cm.EnsureTransformed(); err != nil {
		d.Exceptions.Throw(exception.MissingMethod, "%v", err)
	}

	args := make([]uint64, cm.ArgsSize)
	for i := cm.ArgsSize - 1; i >= 0; i-- {
		args[i] = st.popRaw()
	}

	if pending, cls := d.Objs.PollInterruption(); pending {
		panic(&exception.Thrown{Class: cls, ClassName: "System.Threading.ThreadInterruptedException"})
	}

	var vtDst []byte
	oversizedVT := cm.ReturnType.IsValueType && cm.ReturnType.Size > 8
	if oversizedVT {
		vtDst = make([]byte, cm.ReturnType.Size)
	}

	word, thrown, err := d.Call(tc, target, args, vtDst)
	if err != nil {
		d.Exceptions.Throw(exception.ExecutionEngine, "%v", err)
	}
	if thrown != nil {
		panic(thrown)
	}

	switch {
	case cm.ReturnType.IsVoid:
		// no push
	case oversizedVT:
		off := allocVT(st.f, len(vtDst))
		copy(st.f.VTArea[off:off+len(vtDst)], vtDst)
		st.pushRaw(uint64(off))
	default:
		st.pushRaw(word)
	}
}

// execCalli implements the calli opcode: the callee address is resolved
// through the given signature rather than a fixed MethodHandle, using the
// newly-described SignatureParams/SignatureReturn accessors (§4.6).
func execCalli(d *Dispatcher, tc *compiledmethod.ThreadContext, f *compiledmethod.Frame, st *evalStack, row mintops.Row, code []uint16, ip int) {
	tok := unsignedWord(code, ip)
	sig := f.Method.DataItems[tok].(abi.SignatureHandle)
	fnPtr := st.popPtr()

	params := d.Meta.SignatureParams(sig)
	ret := d.Meta.SignatureReturn(sig)

	// A calli target is native code reached through the call bridge (§4.7),
	// not a managed CompiledMethod the registry knows about; mint has no
	// managed method identity for it at all, only the raw function pointer
	// and signature the metadata layer resolved.
	info := &abi.NativeCallInfo{FuncPtr: fnPtr}
	info.IntArgs = make([]uint64, 0, len(params))
	for range params {
		info.IntArgs = append(info.IntArgs, 0)
	}
	for i := len(params) - 1; i >= 0; i-- {
		info.IntArgs[i] = st.popRaw()
	}
	info.IsFloatRet = ret.Kind == abi.StackKindR8

	thrownObj, err := d.Objs.InvokeNative(info)
	if err != nil {
		d.Exceptions.Throw(exception.ExecutionEngine, "%v", err)
	}
	if thrownObj != 0 {
		panic(&exception.Thrown{Object: thrownObj, Class: d.Meta.ClassOf(thrownObj)})
	}
	if !ret.IsVoid {
		st.pushRaw(info.RetWord)
	}
}

// execJitCall implements the jit_call opcode (§4.7): a native-code method
// dispatched through the same call bridge as calli, but with a resolved
// MethodHandle (and therefore a real signature) instead of a calli's
// runtime-computed SignatureHandle.
func execJitCall(d *Dispatcher, tc *compiledmethod.ThreadContext, f *compiledmethod.Frame, st *evalStack, row mintops.Row, code []uint16, ip int) {
	tok := unsignedWord(code, ip)
	target := f.Method.DataItems[tok].(abi.MethodHandle)
	params := d.Meta.Params(target)
	hasThis := d.Meta.HasThis(target)
	ret := d.Meta.Return(target)

	argc := len(params) + boolToInt(hasThis)
	info := &abi.NativeCallInfo{IntArgs: make([]uint64, argc)}
	for i := argc - 1; i >= 0; i-- {
		info.IntArgs[i] = st.popRaw()
	}
	info.IsFloatRet = ret.Kind == abi.StackKindR8

	thrownObj, err := d.Objs.InvokeNative(info)
	if err != nil {
		d.Exceptions.Throw(exception.ExecutionEngine, "%v", err)
	}
	if thrownObj != 0 {
		panic(&exception.Thrown{Object: thrownObj, Class: d.Meta.ClassOf(thrownObj)})
	}
	if !ret.IsVoid {
		st.pushRaw(info.RetWord)
	}
}

// execVTResult implements VTRESULT: the transformer always emits exactly one
// of these right after a call whose return is an oversized value type,
// carrying a VT-area offset it pre-allocated (transform/calls.go's
// lowerCall). That operand is not read: dispatchManagedCall already copied
// the returned bytes into a region it bump-allocated with allocVT and pushed
// that region's offset as the call's "result" word, so VTRESULT leaves the
// stack as it is.
func execVTResult(f *compiledmethod.Frame, st *evalStack, row mintops.Row, code []uint16, ip int) {
	// The offset is already sitting on top of the stack from the preceding
	// call; VTRESULT's own operand exists for a jit_call/calli path that
	// bypasses dispatchManagedCall and therefore never computed one, but
	// mint's recursive managed-call path always goes through
	// dispatchManagedCall, so there is nothing further to do here.
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
