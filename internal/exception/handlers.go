package exception

import (
	"github.com/minterp/mint/internal/abi"
	"github.com/minterp/mint/internal/compiledmethod"
)

// Action tells the dispatch loop what to do after the exception engine has
// examined one frame during unwinding (§4.8: handle_exception/handle_finally/
// handle_fault/leave/rethrow).
type Action byte

const (
	// ActionUnwind means no clause in this frame matched; pop the frame and
	// keep walking the caller chain.
	ActionUnwind Action = iota
	// ActionHandle means a catch/filter clause matched; resume dispatch at
	// HandlerStart in this frame with the exception bound to its exvar slot.
	ActionHandle
	// ActionRunFinally means a finally/fault clause's body must run before
	// unwinding continues (the clause itself never "catches"; once it
	// completes via ENDFINALLY, unwinding resumes).
	ActionRunFinally
)

// Disposition is the result of matching one frame's clause table against an
// in-flight Thrown.
type Disposition struct {
	Action  Action
	Clause  compiledmethod.Clause
	ExvarIx int
}

// Match walks frame's clause table from its end, which is innermost-first in
// transform-rewritten order (§4.4.8 stores nested clauses outermost-first), and
// returns the first clause whose try region contains ip and whose handler
// would accept t — catch clauses require an assignable CatchClass, filter
// clauses are reported as a match for the caller to run the filter body and
// decide, finally/fault clauses always match for running (never "catch").
//
// isAssignable is the host's MetadataProvider.IsAssignableFrom, passed in
// rather than stored on Match so this package never needs a live
// MetadataProvider reference just to unwind.
func Match(cm *compiledmethod.CompiledMethod, ip int, t *Thrown, isAssignable func(to, from abi.ClassHandle) bool) (Disposition, bool) {
	return MatchFrom(cm, ip, t, isAssignable, len(cm.Clauses))
}

// MatchFrom is Match restricted to clause indices below before: the dispatch
// loop uses this to resume an outward clause search in the same frame after
// running a finally/fault whose own clause it must not re-match, or after a
// filter that rejected (§4.8 handle_exception's continued walk). Match is
// MatchFrom with before set to the full clause table.
func MatchFrom(cm *compiledmethod.CompiledMethod, ip int, t *Thrown, isAssignable func(to, from abi.ClassHandle) bool, before int) (Disposition, bool) {
	if before < 0 || before > len(cm.Clauses) {
		before = len(cm.Clauses)
	}
	for i := before - 1; i >= 0; i-- {
		c := cm.Clauses[i]
		if !c.Contains(ip) {
			continue
		}
		switch c.Kind {
		case abi.ClauseFinally, abi.ClauseFault:
			return Disposition{Action: ActionRunFinally, Clause: c, ExvarIx: i}, true
		case abi.ClauseCatch:
			if isAssignable == nil || isAssignable(c.CatchClass, t.Class) {
				return Disposition{Action: ActionHandle, Clause: c, ExvarIx: i}, true
			}
		case abi.ClauseFilter:
			// The filter body itself decides accept/reject at runtime (it
			// is mint code, not a static predicate); the dispatch loop runs
			// it and calls MatchFrom again, capped below this index, only if
			// the filter rejects.
			return Disposition{Action: ActionHandle, Clause: c, ExvarIx: i}, true
		}
	}
	return Disposition{}, false
}

// Unwind walks a frame chain starting at frame looking for the first clause
// in the first frame that either handles or must run a finally/fault for t,
// at the instruction pointer each frame was suspended at. It does not mutate
// any frame; the dispatch loop uses the returned frame+disposition to set up
// the resume state (§6 setResumeState) and actually transfer control.
func Unwind(frame *compiledmethod.Frame, t *Thrown, isAssignable func(to, from abi.ClassHandle) bool) (*compiledmethod.Frame, Disposition, bool) {
	for f := frame; f != nil; f = f.Parent {
		if f.Method == nil {
			continue
		}
		if d, ok := Match(f.Method, f.IP, t, isAssignable); ok {
			return f, d, true
		}
	}
	return nil, Disposition{}, false
}

// CaptureTrace walks frame.Parent links to build a Thrown's stack trace at
// the throw site (§4.8 "Throw ... captures a stack trace by walking
// frame.parent").
func CaptureTrace(frame *compiledmethod.Frame) []Frame {
	var out []Frame
	for f := frame; f != nil; f = f.Parent {
		if f.Method == nil {
			continue
		}
		out = append(out, Frame{Method: f.Method.Method, IP: f.IP})
	}
	return out
}
