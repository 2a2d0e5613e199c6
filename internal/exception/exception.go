// Package exception implements the exception engine (C8): the managed
// throw/catch/filter/finally/fault state machine, its mapping onto Go's
// panic/recover, and the well-known trap taxonomy (§7).
//
// Grounded on the teacher's own trap-propagation mechanism
// (internal/engine/interpreter/interpreter.go: moduleEngine.Call recovers a
// panic raised deep in callNativeFunc and turns it back into an error at the
// host boundary) generalized to a real catch/filter/finally/fault state
// machine, since wasm itself has no handler clauses to drive one — that part
// is grounded instead on transform.h's clause definitions and interp.c's
// handle_exception/handle_finally/handle_fault labels (original_source).
package exception

import (
	"fmt"

	"github.com/minterp/mint/internal/abi"
)

// Thrown is a managed exception in flight: it carries the managed object
// handle (resolved through ObjectRuntime/MetadataProvider) plus the mint
// stack trace captured at the throw site (§4.8 "Throw ... captures a stack
// trace by walking frame.parent").
//
// mint propagates this exactly the way the teacher propagates a wasm trap:
// as a panic value, recovered by internal/interp's Dispatcher.dispatchOnce,
// which then searches the frame's clauses for a matching catch/filter.
type Thrown struct {
	Object    uintptr
	Class     abi.ClassHandle
	ClassName string
	Message   string
	Frames    []Frame
}

func (t *Thrown) Error() string {
	if t.Message != "" {
		return fmt.Sprintf("%s: %s", t.ClassName, t.Message)
	}
	return t.ClassName
}

// Frame is one entry of a captured stack trace: a method identity plus the
// mint instruction pointer active in that frame at capture time.
type Frame struct {
	Method abi.MethodHandle
	IP     int
}

// Fatal represents internal engine corruption mint cannot recover from
// (opcode-table corruption, allocator failure) — distinguished from Thrown
// because it is never subject to managed catch/filter matching and always
// surfaces to the host as ExecutionEngineException (§7).
type Fatal struct {
	Reason string
}

func (f *Fatal) Error() string { return "mint: fatal engine error: " + f.Reason }

// WellKnown names the exception taxonomy §7 requires mint itself to be able
// to raise without any managed code ever executing a throw instruction —
// traps the dispatch loop (C6) and transformer (C4) detect directly.
type WellKnown string

const (
	NullReference      WellKnown = "System.NullReferenceException"
	IndexOutOfRange     WellKnown = "System.IndexOutOfRangeException"
	ArrayTypeMismatch   WellKnown = "System.ArrayTypeMismatchException"
	InvalidCast         WellKnown = "System.InvalidCastException"
	DivideByZero        WellKnown = "System.DivideByZeroException"
	Overflow            WellKnown = "System.OverflowException"
	Arithmetic          WellKnown = "System.ArithmeticException"
	ExecutionEngine     WellKnown = "System.ExecutionEngineException"
	NotSupportedName    WellKnown = "System.NotSupportedException"
	TypeLoad            WellKnown = "System.TypeLoadException"
	MissingMethod       WellKnown = "System.MissingMethodException"
)

// Resolver looks a well-known exception class up through the host's metadata
// provider and allocates an instance of it through the object runtime — the
// same MetadataProvider.WellKnownClass + ObjectRuntime.AllocObject pair the
// transformer and dispatch loop both need, bundled here so every trap site
// constructs a Thrown the same way.
type Resolver struct {
	Meta abi.MetadataProvider
	Objs abi.ObjectRuntime
}

// New allocates and returns a Thrown for a well-known runtime exception,
// ready to be panicked by the caller (C6/C7 trap sites all do this at the
// point of detection, matching the teacher's "panic(ErrSomething)" call
// sites in callNativeFunc).
func (r *Resolver) New(kind WellKnown, message string) *Thrown {
	t := &Thrown{ClassName: string(kind), Message: message}
	if r.Meta != nil {
		t.Class = r.Meta.WellKnownClass(string(kind))
	}
	if r.Objs != nil && t.Class != 0 {
		if obj, err := r.Objs.AllocObject(t.Class); err == nil {
			t.Object = obj
		}
	}
	return t
}

// Throw panics with a freshly-resolved well-known exception. Call sites use
// this directly instead of constructing Thrown by hand so every trap shares
// one allocation/class-resolution path.
func (r *Resolver) Throw(kind WellKnown, format string, args ...interface{}) {
	panic(r.New(kind, fmt.Sprintf(format, args...)))
}

// NotSupported is a convenience constructor for the §9-licensed
// "unimplemented on purpose" paths (remoting transparent proxy, etc.), kept
// distinct from Throw so call sites that merely refuse a feature don't need
// a live Resolver.
func NotSupported(what string) *Thrown {
	return &Thrown{ClassName: string(NotSupportedName), Message: what + " is not supported"}
}
