package interp

import (
	"github.com/minterp/mint/internal/abi"
	"github.com/minterp/mint/internal/compiledmethod"
	"github.com/minterp/mint/internal/exception"
	"github.com/minterp/mint/internal/mintops"
)

// execThrow implements THROW and RETHROW (§4.8). THROW resolves the popped
// object's runtime class and captures a fresh stack trace at the throw site;
// RETHROW reuses the in-flight exception bound to the catch clause
// lexically enclosing the current instruction pointer, preserving its
// original class and trace rather than starting a new one.
func execThrow(d *Dispatcher, f *compiledmethod.Frame, st *evalStack, op mintops.Opcode) {
	switch op {
	case mintops.THROW:
		obj := st.popPtr()
		if obj == 0 {
			d.Exceptions.Throw(exception.NullReference, "")
		}
		t := &exception.Thrown{
			Object: obj,
			Class:  d.Meta.ClassOf(obj),
			Frames: exception.CaptureTrace(f),
		}
		panic(t)

	case mintops.RETHROW:
		ix, ok := enclosingCatch(f.Method, f.IP)
		if !ok || f.ExVars[ix] == 0 {
			d.Exceptions.Throw(exception.ExecutionEngine, "RETHROW outside a catch handler")
		}
		obj := f.ExVars[ix]
		panic(&exception.Thrown{
			Object: obj,
			Class:  d.Meta.ClassOf(obj),
			Frames: exception.CaptureTrace(f),
		})
	}
}

// enclosingCatch finds the innermost catch/filter clause whose handler range
// contains ip, the clause RETHROW implicitly refers to.
func enclosingCatch(cm *compiledmethod.CompiledMethod, ip int) (int, bool) {
	best := -1
	for i, c := range cm.Clauses {
		if c.Kind != abi.ClauseCatch && c.Kind != abi.ClauseFilter {
			continue
		}
		if ip >= c.HandlerStart && ip < c.HandlerEnd {
			if best == -1 || cm.Clauses[best].HandlerEnd-cm.Clauses[best].HandlerStart > c.HandlerEnd-c.HandlerStart {
				best = i
			}
		}
	}
	if best == -1 {
		return 0, false
	}
	return best, true
}
