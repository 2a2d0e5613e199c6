// Package interp implements C6, the dispatch loop: the big switch that walks
// one CompiledMethod's mint-word stream and actually executes it (§4.5-§4.9).
//
// Grounded on the teacher's callEngine.callNativeFunc (internal/engine/
// interpreter/interpreter.go): a callEngine{stack, frames} thread-local pair,
// a callFrame{pc, f} per activation, one big switch on op.kind advancing pc
// and pushing/popping ce.stack, and trap propagation as a Go panic recovered
// at the outermost call boundary. mint generalizes that shape to mint's own
// opcode table (internal/mintops) and layers CIL's catch/filter/finally/fault
// state machine on top via internal/exception, grounded on transform.h's
// clause definitions and interp.c's handle_exception/handle_finally/
// handle_fault labels (original_source).
package interp

import (
	"math"

	"github.com/minterp/mint/internal/abi"
	"github.com/minterp/mint/internal/compiledmethod"
	"github.com/minterp/mint/internal/exception"
	"github.com/minterp/mint/internal/mintops"
)

// Dispatcher owns every external collaborator the dispatch loop calls
// through (§1's external interfaces) plus the registry it resolves callees
// against. It carries no per-call state itself — that all lives on the
// Frame/ThreadContext the caller threads through Call.
type Dispatcher struct {
	Meta       abi.MetadataProvider
	Objs       abi.ObjectRuntime
	Registry   *compiledmethod.Registry
	Exceptions *exception.Resolver

	// Transform builds a CompiledMethod for a method the registry hasn't
	// seen yet (normally internal/transform.Transformer.Transform, wired by
	// the host at Domain construction so this package has no import of
	// internal/transform itself -- C6 depends on C4's output type, never on
	// C4's code, matching §1's component boundary).
	Transform func(abi.MethodHandle) (*compiledmethod.CompiledMethod, error)
}

// haltReason is why one dispatchOnce invocation stopped running mint words.
type haltReason byte

const (
	haltRet haltReason = iota
	haltRetVoid
	haltEndFinally
	haltEndFilter
	haltThrown
)

const defaultMaxCallDepth = 4096

// resolve looks up or lazily transforms m's CompiledMethod.
func (d *Dispatcher) resolve(m abi.MethodHandle) (*compiledmethod.CompiledMethod, error) {
	return d.Registry.GetOrCreate(m, func() (*compiledmethod.CompiledMethod, error) {
		return d.Transform(m)
	})
}

// Call is mint's one entry point for running managed code (§6 RuntimeInvoke
// and every recursive CALL/CALLVIRT/VCALL dispatch funnel through here):
// args is the callee's argument words in declaration order (this first, if
// any), already laid out the way ArgOffsets expects. For an oversized
// value-type return, vtDst receives the copied return payload and retWord is
// unused; otherwise retWord is the scalar/object/managed-pointer result.
func (d *Dispatcher) Call(tc *compiledmethod.ThreadContext, method abi.MethodHandle, args []uint64, vtDst []byte) (retWord uint64, thrown *exception.Thrown, err error) {
	cm, err := d.resolve(method)
	if err != nil {
		return 0, nil, err
	}
	if err := cm.EnsureTransformed(); err != nil {
		return 0, nil, err
	}

	maxDepth := tc.MaxCallDepth
	if maxDepth == 0 {
		maxDepth = defaultMaxCallDepth
	}
	if tc.CallDepth >= maxDepth {
		return 0, d.Exceptions.New(exception.ExecutionEngine, "call stack overflow"), nil
	}

	frame := compiledmethod.NewFrame(cm, tc.Top)
	copy(frame.Slots[:cm.ArgsSize], args)

	tc.CallDepth++
	tc.Top = frame
	cm.CallCount++
	defer func() {
		tc.Top = frame.Parent
		tc.CallDepth--
	}()

	reason, word, t := d.runSegment(tc, frame, 0, len(cm.Clauses))
	if reason == haltThrown {
		return 0, t, nil
	}

	if cm.ReturnType.IsValueType && cm.ReturnType.Size > 8 && vtDst != nil {
		off := int(word)
		copy(vtDst, frame.VTArea[off:off+cm.ReturnType.Size])
		return 0, nil, nil
	}
	return word, nil, nil
}

// runSegment runs frame starting at ip, driving dispatchOnce and integrating
// its result with the exception engine's clause search (§4.8). limit bounds
// how far out MatchFrom is allowed to search in this frame -- the full
// clause table on first entry, narrowed to one clause's own index whenever a
// finally/fault just ran or a filter just rejected, so the same clause is
// never matched twice for the same in-flight exception.
func (d *Dispatcher) runSegment(tc *compiledmethod.ThreadContext, frame *compiledmethod.Frame, ip, limit int) (haltReason, uint64, *exception.Thrown) {
	cm := frame.Method
	for {
		reason, word, atIP, t := d.dispatchOnce(tc, frame, ip)
		if t == nil {
			return reason, word, nil
		}

		frame.IP = atIP
		disp, ok := exception.MatchFrom(cm, atIP, t, d.Meta.IsAssignableFrom, limit)
		if !ok {
			// Nothing left in this frame; the caller (Call, or this
			// function's own nested finally/filter invocation) propagates t
			// to the enclosing frame.
			return haltThrown, 0, t
		}

		switch disp.Action {
		case exception.ActionHandle:
			if disp.Clause.Kind == abi.ClauseFilter {
				accepted, filterThrown := d.runFilter(tc, frame, disp.Clause, t)
				if filterThrown != nil {
					t = filterThrown
					limit = len(cm.Clauses)
					ip = 0
					continue
				}
				if !accepted {
					limit = disp.ExvarIx
					ip = atIP
					continue
				}
			}
			frame.ExVars[disp.ExvarIx] = t.Object
			ip = disp.Clause.HandlerStart
			limit = len(cm.Clauses)
			continue

		case exception.ActionRunFinally:
			frame.ExVars[disp.ExvarIx] = t.Object
			if finallyThrown := d.runFinally(tc, frame, disp.Clause); finallyThrown != nil {
				t = finallyThrown
				limit = len(cm.Clauses)
				ip = 0
				continue
			}
			limit = disp.ExvarIx
			ip = atIP
			continue
		}
	}
}

// runFilter runs a filter clause's body (seeded with the in-flight
// exception as the clause's exvar) to ENDFILTER and reports whether it
// accepted the exception (a nonzero top-of-stack value, §4.8).
func (d *Dispatcher) runFilter(tc *compiledmethod.ThreadContext, frame *compiledmethod.Frame, c compiledmethod.Clause, t *exception.Thrown) (bool, *exception.Thrown) {
	reason, word, _, nested := d.dispatchOnce(tc, frame, c.FilterStart)
	if nested != nil {
		return false, nested
	}
	if reason != haltEndFilter {
		return false, nil
	}
	return word != 0, nil
}

// runFinally runs a finally/fault clause's body to ENDFINALLY. A panic
// propagating out of the finally itself (a new throw, or the original
// rethrown) supersedes the exception being unwound, per §4.8.
func (d *Dispatcher) runFinally(tc *compiledmethod.ThreadContext, frame *compiledmethod.Frame, c compiledmethod.Clause) *exception.Thrown {
	_, _, _, nested := d.dispatchOnce(tc, frame, c.HandlerStart)
	return nested
}

// dispatchOnce runs frame's code starting at ip until it halts (RET/RET_VOID,
// ENDFINALLY, ENDFILTER) or a managed/trap exception is thrown. Exactly one
// defer/recover wraps the whole instruction loop, matching the teacher's
// trap-as-panic propagation (moduleEngine.Call's recover site) generalized to
// recover a *exception.Thrown specifically -- any other recovered value is an
// engine bug, re-panicked rather than silently swallowed.
func (d *Dispatcher) dispatchOnce(tc *compiledmethod.ThreadContext, frame *compiledmethod.Frame, ip int) (reason haltReason, word uint64, atIP int, thrown *exception.Thrown) {
	cm := frame.Method
	code := cm.Code
	st := &evalStack{f: frame, sp: cm.ArgsSize + cm.LocalsSize}

	defer func() {
		if r := recover(); r == nil {
			return
		} else if t, ok := r.(*exception.Thrown); ok {
			thrown = t
			reason = haltThrown
			atIP = ip
		} else {
			panic(r)
		}
	}()

	for {
		op := mintops.Opcode(code[ip])
		row := mintops.Lookup(op)
		frame.IP = ip

		switch op {
		case mintops.NOP, mintops.SDB_SEQ_POINT:
			// no-ops at the execution level.
		case mintops.SDB_INTR_LOC, mintops.SAFEPOINT:
			if pending, cls := d.Objs.PollInterruption(); pending {
				panic(&exception.Thrown{Class: cls, ClassName: "System.Threading.ThreadInterruptedException"})
			}
		case mintops.BREAK, mintops.SDB_BREAKPOINT:
			// mint has no debugger attachment; these execute as NOP.

		case mintops.LDNULL:
			st.pushPtr(0)
		case mintops.LDC_I4_M1, mintops.LDC_I4_0, mintops.LDC_I4_1, mintops.LDC_I4_2,
			mintops.LDC_I4_3, mintops.LDC_I4_4, mintops.LDC_I4_5, mintops.LDC_I4_6,
			mintops.LDC_I4_7, mintops.LDC_I4_8:
			st.pushI4(int32(op) - int32(mintops.LDC_I4_0))
		case mintops.LDC_I4_S:
			st.pushI4(int32(decodeOperand(row.Arg, code, ip)))
		case mintops.LDC_I4:
			st.pushI4(int32(decodeOperand(row.Arg, code, ip)))
		case mintops.LDC_I8_0:
			st.pushI8(0)
		case mintops.LDC_I8:
			st.pushI8(decodeOperand(row.Arg, code, ip))
		case mintops.LDC_R4:
			bits := uint32(decodeOperand(row.Arg, code, ip))
			st.pushR8(float64(math.Float32frombits(bits)))
		case mintops.LDC_R8:
			bits := uint64(decodeOperand(row.Arg, code, ip))
			st.pushR8(math.Float64frombits(bits))

		case mintops.DUP:
			st.dup()
		case mintops.POP:
			st.popRaw()
		case mintops.SWAP:
			a, b := st.popRaw(), st.popRaw()
			st.pushRaw(a)
			st.pushRaw(b)
		case mintops.PICK:
			depth := int(decodeOperand(row.Arg, code, ip))
			st.pushRaw(st.peekRaw(depth))

		case mintops.LDLOC_I4, mintops.LDLOC_I8, mintops.LDLOC_R8, mintops.LDLOC_O, mintops.LDLOC_VT,
			mintops.LDARG_I4, mintops.LDARG_I8, mintops.LDARG_R8, mintops.LDARG_O, mintops.LDARG_VT,
			mintops.STLOC_I4, mintops.STLOC_I8, mintops.STLOC_R8, mintops.STLOC_O, mintops.STLOC_VT,
			mintops.STARG_I4, mintops.STARG_I8, mintops.STARG_R8, mintops.STARG_O, mintops.STARG_VT,
			mintops.LDARGA, mintops.LDLOCA,
			mintops.STINARG_I4, mintops.STINARG_I8, mintops.STINARG_R8, mintops.STINARG_O, mintops.STINARG_VT,
			mintops.INITLOCAL:
			execSlot(frame, st, op, row, code, ip)

		case mintops.INITOBJ:
			execInitobj(d, frame, st, row, code, ip)

		case mintops.CONV_I4_I8, mintops.CONV_I8_I4, mintops.CONV_I4_R8, mintops.CONV_I8_R8,
			mintops.CONV_U4_R8, mintops.CONV_U8_R8, mintops.CONV_R8_I4, mintops.CONV_R8_I8,
			mintops.CONV_R4_R8, mintops.CONV_R8_R4, mintops.CONV_I1_I4, mintops.CONV_U1_I4,
			mintops.CONV_I2_I4, mintops.CONV_U2_I4,
			mintops.CONV_OVF_I4_R8, mintops.CONV_OVF_U4_R8, mintops.CONV_OVF_I4_I8, mintops.CONV_OVF_U4_I8,
			mintops.CONV_OVF_I8_R8, mintops.CONV_OVF_U8_R8, mintops.CONV_OVF_I1_I4, mintops.CONV_OVF_U1_I4,
			mintops.CKFINITE:
			execConv(d, st, op)

		case mintops.NEG_I4, mintops.NEG_I8, mintops.NEG_R8, mintops.NOT_I4, mintops.NOT_I8:
			execUnary(st, op)

		case mintops.ADD_I4, mintops.SUB_I4, mintops.MUL_I4,
			mintops.ADD_I8, mintops.SUB_I8, mintops.MUL_I8,
			mintops.ADD_R8, mintops.SUB_R8, mintops.MUL_R8,
			mintops.ADD_OVF_I4, mintops.ADD_OVF_UN_I4, mintops.SUB_OVF_I4, mintops.SUB_OVF_UN_I4,
			mintops.MUL_OVF_I4, mintops.MUL_OVF_UN_I4,
			mintops.ADD_OVF_I8, mintops.ADD_OVF_UN_I8, mintops.SUB_OVF_I8, mintops.SUB_OVF_UN_I8,
			mintops.MUL_OVF_I8, mintops.MUL_OVF_UN_I8,
			mintops.DIV_I4, mintops.DIV_UN_I4, mintops.DIV_I8, mintops.DIV_UN_I8, mintops.DIV_R8,
			mintops.REM_I4, mintops.REM_UN_I4, mintops.REM_I8, mintops.REM_UN_I8, mintops.REM_R8,
			mintops.AND_I4, mintops.AND_I8, mintops.OR_I4, mintops.OR_I8, mintops.XOR_I4, mintops.XOR_I8,
			mintops.SHL_I4, mintops.SHL_I8, mintops.SHR_I4, mintops.SHR_UN_I4, mintops.SHR_I8, mintops.SHR_UN_I8,
			mintops.CEQ_I4, mintops.CEQ_I8, mintops.CEQ_R8,
			mintops.CGT_I4, mintops.CGT_I8, mintops.CGT_R8,
			mintops.CGT_UN_I4, mintops.CGT_UN_I8, mintops.CGT_UN_R8,
			mintops.CLT_I4, mintops.CLT_I8, mintops.CLT_R8,
			mintops.CLT_UN_I4, mintops.CLT_UN_I8, mintops.CLT_UN_R8,
			mintops.CEQ0_I4:
			execBinop(d, st, op)

		case mintops.MONO_MEMORY_BARRIER:
			// A full fence has no observable effect under Go's own memory
			// model guarantees for single-goroutine frame execution; kept
			// as an explicit opcode case so a future concurrent dispatch
			// design has a place to hook a real barrier.

		case mintops.BR, mintops.BR_S:
			ip += row.Len + int(decodeOperand(row.Arg, code, ip))
			continue
		case mintops.BRFALSE_I4, mintops.BRTRUE_I4, mintops.BRFALSE_I8, mintops.BRTRUE_I8,
			mintops.BRFALSE_R8, mintops.BRTRUE_R8:
			if execBranchUnary(st, op) {
				ip += row.Len + int(decodeOperand(row.Arg, code, ip))
				continue
			}
		case mintops.BEQ_I4, mintops.BNE_UN_I4, mintops.BGE_I4, mintops.BGT_I4, mintops.BLE_I4, mintops.BLT_I4,
			mintops.BGE_UN_I4, mintops.BGT_UN_I4, mintops.BLE_UN_I4, mintops.BLT_UN_I4,
			mintops.BEQ_I8, mintops.BNE_UN_I8, mintops.BGE_I8, mintops.BGT_I8, mintops.BLE_I8, mintops.BLT_I8,
			mintops.BGE_UN_I8, mintops.BGT_UN_I8, mintops.BLE_UN_I8, mintops.BLT_UN_I8,
			mintops.BEQ_R8, mintops.BNE_UN_R8, mintops.BGE_R8, mintops.BGT_R8, mintops.BLE_R8, mintops.BLT_R8,
			mintops.BGE_UN_R8, mintops.BGT_UN_R8, mintops.BLE_UN_R8, mintops.BLT_UN_R8:
			if execBranchBinary(st, op) {
				ip += row.Len + int(decodeOperand(row.Arg, code, ip))
				continue
			}
		case mintops.SWITCH:
			targets := switchTargets(code, ip)
			v := int(st.popI4())
			n := mintops.Len(op, code, ip)
			if v >= 0 && v < len(targets) {
				ip += int(targets[v]) + n
				continue
			}
			ip += n
			continue

		case mintops.CALL, mintops.CALLVIRT, mintops.VCALL, mintops.CALLI, mintops.JIT_CALL:
			execCall(d, tc, frame, st, op, row, code, ip)
		case mintops.VTRESULT:
			execVTResult(frame, st, row, code, ip)

		case mintops.NEWOBJ, mintops.NEWOBJ_VT, mintops.NEWOBJ_STRING, mintops.NEWOBJ_ARRAY, mintops.NEWARR:
			execNew(d, tc, frame, st, op, row, code, ip)

		case mintops.LDFLD_I1, mintops.LDFLD_U1, mintops.LDFLD_I2, mintops.LDFLD_U2, mintops.LDFLD_I4,
			mintops.LDFLD_I8, mintops.LDFLD_R8, mintops.LDFLD_O, mintops.LDFLD_VT,
			mintops.STFLD_I1, mintops.STFLD_I2, mintops.STFLD_I4, mintops.STFLD_I8, mintops.STFLD_R8,
			mintops.STFLD_O, mintops.STFLD_VT, mintops.LDFLDA, mintops.LDRMFLD, mintops.STRMFLD,
			mintops.LDSFLD_I4, mintops.LDSFLD_I8, mintops.LDSFLD_R8, mintops.LDSFLD_O, mintops.LDSFLD_VT,
			mintops.STSFLD_I4, mintops.STSFLD_I8, mintops.STSFLD_R8, mintops.STSFLD_O, mintops.STSFLD_VT,
			mintops.LDSFLDA:
			execField(d, frame, st, op, row, code, ip)

		case mintops.LDELEM_I1, mintops.LDELEM_U1, mintops.LDELEM_I2, mintops.LDELEM_U2, mintops.LDELEM_I4,
			mintops.LDELEM_I8, mintops.LDELEM_R8, mintops.LDELEM_REF, mintops.LDELEM_VT,
			mintops.STELEM_I1, mintops.STELEM_I2, mintops.STELEM_I4, mintops.STELEM_I8, mintops.STELEM_R8,
			mintops.STELEM_REF, mintops.STELEM_VT,
			mintops.LDELEMA, mintops.LDELEMA_TC, mintops.LDLEN, mintops.ARRAY_RANK, mintops.GETCHR, mintops.STRLEN:
			execArray(d, frame, st, op, row, code, ip)

		case mintops.LDIND_I1, mintops.LDIND_U1, mintops.LDIND_I2, mintops.LDIND_U2, mintops.LDIND_I4,
			mintops.LDIND_I8, mintops.LDIND_R8, mintops.LDIND_O,
			mintops.STIND_I1, mintops.STIND_I2, mintops.STIND_I4, mintops.STIND_I8, mintops.STIND_R8, mintops.STIND_O:
			execIndirect(d, st, op)

		case mintops.BOX, mintops.UNBOX, mintops.UNBOX_ANY, mintops.CASTCLASS, mintops.ISINST:
			execTypeOp(d, frame, st, op, row, code, ip)

		case mintops.THROW, mintops.RETHROW:
			execThrow(d, frame, st, op)

		case mintops.LEAVE, mintops.LEAVE_S, mintops.LEAVE_CHECK, mintops.LEAVE_S_CHECK:
			target := ip + int(decodeOperand(row.Arg, code, ip)) + mintops.Lookup(op).Len
			ip = d.runLeave(tc, frame, ip, target)
			continue

		case mintops.ENDFINALLY:
			return haltEndFinally, 0, ip, nil
		case mintops.ENDFILTER:
			v := st.popI4()
			return haltEndFilter, uint64(uint32(v)), ip, nil
		case mintops.CALL_HANDLER:
			d.Exceptions.Throw(exception.ExecutionEngine, "CALL_HANDLER is never emitted by the transformer")

		case mintops.RET:
			return haltRet, st.popRaw(), ip, nil
		case mintops.RET_VOID:
			return haltRetVoid, 0, ip, nil
		case mintops.RET_VT:
			off := decodeOperand(row.Arg, code, ip)
			return haltRet, uint64(off), ip, nil

		default:
			d.Exceptions.Throw(exception.ExecutionEngine, "unimplemented or unemitted opcode %s", row.Name)
		}

		ip += mintops.Len(op, code, ip)
	}
}

// runLeave executes the finally clauses LEAVE must run on its way from ip to
// target (§4.8 Leave: every finally clause whose try region contains ip but
// whose handler range does not contain target, innermost first). It returns
// the ip dispatch should resume at: target itself once every intervening
// finally has run cleanly, or a propagated throw if one of them threw.
func (d *Dispatcher) runLeave(tc *compiledmethod.ThreadContext, frame *compiledmethod.Frame, ip, target int) int {
	cm := frame.Method
	for i := len(cm.Clauses) - 1; i >= 0; i-- {
		c := cm.Clauses[i]
		if c.Kind != abi.ClauseFinally {
			continue
		}
		if !c.Contains(ip) || c.Contains(target) {
			continue
		}
		if t := d.runFinally(tc, frame, c); t != nil {
			// A finally run during Leave threw: propagate it the same way
			// any other trap does, caught by dispatchOnce's own
			// defer/recover and handed to runSegment's MatchFrom search.
			panic(t)
		}
	}
	return target
}
