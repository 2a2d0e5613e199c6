// Package abi declares the collaborator interfaces mint consumes but never
// implements: the metadata loader, the object/GC runtime, and the identities
// (method, class, field, signature handles) they hand back. Everything here is
// "external" per spec §1 — a real host wires a concrete metadata/class-layout
// engine and a concrete GC behind these interfaces; mint's engine only calls them.
package abi

// MethodHandle is an opaque identity for a managed method, as produced by the
// metadata layer. mint never inspects its bits; it is a map key and an argument
// to MetadataProvider methods.
type MethodHandle uintptr

// ClassHandle is an opaque identity for a managed class/type.
type ClassHandle uintptr

// FieldHandle is an opaque identity for a managed field.
type FieldHandle uintptr

// SignatureHandle is an opaque identity for a calli call-site signature.
type SignatureHandle uintptr

// StringHandle is an opaque identity for a metadata string token's interned
// managed string object.
type StringHandle uintptr

// MethodAttrs mirrors the subset of a method's metadata attributes the
// transformer and registry need to decide on wrapper synthesis (§4.2).
type MethodAttrs struct {
	Synchronized bool
	PInvokeImpl  bool
	DelegateInvoke bool
	Virtual      bool
	Sealed       bool
	Static       bool
	Generic      bool
}

// ExceptionClauseKind is the kind of one exception-handling region (§3 clauses).
type ExceptionClauseKind byte

const (
	ClauseCatch ExceptionClauseKind = iota
	ClauseFilter
	ClauseFinally
	ClauseFault
)

// ExceptionClause describes one IL-offset exception region, exactly as the
// metadata loader enumerates it (§3 CompiledMethod.clauses, pre mint-offset
// rewrite — internal/transform rewrites TryStart..HandlerEnd into mint-word
// offsets per §4.4.8).
type ExceptionClause struct {
	Kind         ExceptionClauseKind
	TryStart     int // IL offset
	TryEnd       int
	HandlerStart int
	HandlerEnd   int
	FilterStart  int         // valid iff Kind == ClauseFilter
	CatchClass   ClassHandle // valid iff Kind == ClauseCatch
}

// MethodHeader is everything the transformer needs about a method body before
// it can start basic-block discovery (§4.4.1).
type MethodHeader struct {
	Method      MethodHandle
	Code        []byte // raw CIL bytes
	MaxStack    int
	LocalsToken ClassHandle // token for the local-variable signature, 0 if none
	Locals      []ParamInfo // the resolved local-variable signature, in declaration order
	Clauses     []ExceptionClause
	InitLocals  bool // IL header flag: zero the locals area on entry
}

// StackKind is the transformer-facing static type of a non-value-type,
// non-byref parameter, local, or field: object, I4, I8 or R8, the scalar
// subset of internal/stackslot.Kind, duplicated here (as plain byte
// constants) so abi has no dependency on stackslot.
type StackKind byte

const (
	StackKindObject StackKind = iota
	StackKindI4
	StackKindI8
	StackKindR8
)

// ParamInfo describes one formal parameter, local variable, or field's type,
// enough for §4.4.3 offset assignment, §4.6 boxing/unboxing, and the
// transformer's arithmetic/conversion opcode selection (§4.4.4, which needs
// to know whether a given stack entry is I4/I8/R8/object before it can pick
// a type-specific mint opcode).
type ParamInfo struct {
	IsValueType bool
	Size        int // managed size in bytes, 0 if not a value type
	Align       int // natural alignment in bytes, 0 if not a value type
	IsByRef     bool
	Kind        StackKind // valid when !IsValueType && !IsByRef
	// IsVoid is meaningful only on the ParamInfo MetadataProvider.Return
	// returns: a scalar return (Kind StackKindObject, say) and "no return
	// value at all" both have IsValueType==false and Size==0, so this is
	// the one bit that actually distinguishes void from "returns a
	// reference type". Never set on a parameter, local, or field's
	// ParamInfo.
	IsVoid bool
}

// MetadataProvider is the external metadata loader, class-layout engine, and
// generic-instantiation engine (§1 OUT OF SCOPE). mint's transformer (C4) and
// registry (C2) resolve every token, layout size, and vtable slot through it.
type MetadataProvider interface {
	// ResolveMethodHeader returns the IL body and clause table for a method.
	ResolveMethodHeader(m MethodHandle) (MethodHeader, error)

	// HasThis, Params, Return and Attrs describe the method's calling
	// convention shape.
	HasThis(m MethodHandle) bool
	Params(m MethodHandle) []ParamInfo
	Return(m MethodHandle) ParamInfo // IsVoid==true means the method returns nothing
	Attrs(m MethodHandle) MethodAttrs

	// DeclaringClass returns the class a method is declared on, used for
	// intrinsic recognition (§4.4.5, e.g. telling a String constructor apart
	// from an ordinary newobj target) and diagnostics.
	DeclaringClass(m MethodHandle) ClassHandle

	// VTableSlot returns the vtable slot index for a virtual method, and the
	// interface offset to add to it when dispatching through an interface
	// (§4.2 resolveVirtual). ifaceOffset is 0 for non-interface dispatch.
	VTableSlot(m MethodHandle, onClass ClassHandle) (slot int, ifaceOffset int, err error)

	// ResolveVirtualMethod returns the method that actually runs for a
	// CALLVIRT/VCALL dispatched against m on an object of class
	// receiverClass (§4.2 resolveVirtual): the override the receiver's own
	// vtable slot holds, not necessarily m itself. This is the seam between
	// mint's opcode-level dispatch and the host's vtable representation,
	// which VTableSlot alone doesn't expose (a slot index means nothing
	// without something to index).
	ResolveVirtualMethod(m MethodHandle, receiverClass ClassHandle) (MethodHandle, error)

	// ClassOf returns the runtime class of an object handle, used for virtual
	// dispatch, castclass/isinst, and array-store covariance checks.
	ClassOf(obj uintptr) ClassHandle

	// IsAssignableFrom reports whether a value of class `from` may be stored
	// where `to` is expected (castclass/isinst/array covariance, §4.6).
	IsAssignableFrom(to, from ClassHandle) bool

	// ValueTypeLayout returns the managed size/alignment of a value-type class,
	// used for §4.4.3 local/arg offset assignment and §4.5 vt-area sizing.
	ValueTypeLayout(c ClassHandle) (size, align int)

	// FieldOffset returns a field's byte offset within its declaring class
	// (or -1 if the field is static, in which case StaticFieldOffset applies).
	FieldOffset(f FieldHandle) int
	// StaticFieldOffset returns a static field's offset into its class's
	// static-storage block.
	StaticFieldOffset(f FieldHandle) int
	FieldType(f FieldHandle) ParamInfo
	FieldIsRemotable(f FieldHandle) bool

	// ArrayRank returns an array class's rank (1 for single-dim SZArray).
	ArrayRank(c ClassHandle) int
	ElementClass(c ClassHandle) ClassHandle

	// The Resolve*Token methods resolve a data-item token embedded in the IL
	// stream to the handle the mint opcode's data item should hold.
	ResolveMethodToken(m MethodHandle, token uint32) (MethodHandle, error)
	ResolveFieldToken(m MethodHandle, token uint32) (FieldHandle, error)
	ResolveClassToken(m MethodHandle, token uint32) (ClassHandle, error)
	ResolveStringToken(m MethodHandle, token uint32) (StringHandle, error)
	ResolveSignatureToken(m MethodHandle, token uint32) (SignatureHandle, error)

	// SignatureParams and SignatureReturn describe a calli call-site
	// signature's shape, needed by CALLI the same way Params/Return describe
	// an ordinary method (§4.6 Call dispatch: calli has no MethodHandle to
	// ask, only the resolved SignatureHandle).
	SignatureParams(s SignatureHandle) []ParamInfo
	SignatureReturn(s SignatureHandle) ParamInfo

	// WellKnownClass resolves the well-known exception classes mint raises
	// for traps (§7), e.g. "NullReferenceException".
	WellKnownClass(name string) ClassHandle

	// IsTransparentProxy reports whether obj is a remoting transparent proxy
	// (§4.2, §9 — mint supports omitting this path entirely).
	IsTransparentProxy(obj uintptr) bool

	// WrapperFor synthesizes (or returns a cached) wrapper method for
	// SYNCHRONIZED / PINVOKE_IMPL / delegate-invoke attributes (§4.2 step 1).
	// This is the seam into the marshalling-wrapper subsystem that §1 places
	// out of scope.
	WrapperFor(m MethodHandle, attrs MethodAttrs) (MethodHandle, error)
}

// NativeCallInfo describes a platform ABI classification of one argument for
// the call bridge (§4.7 step 1).
type NativeCallInfo struct {
	FuncPtr    uintptr
	IntArgs    []uint64
	FloatArgs  []uint64
	IsFloatRet bool
	RetWord    uint64 // populated by ObjectRuntime after the call
}

// ObjectRuntime is the external GC/allocator (§1 OUT OF SCOPE). mint never
// allocates, scans, or collects memory itself; every allocation, write, and
// interruption poll is a call through this interface.
type ObjectRuntime interface {
	AllocObject(c ClassHandle) (uintptr, error)
	AllocBoxed(c ClassHandle, payload []byte) (uintptr, error)
	AllocArray(elem ClassHandle, lengths []int, lowerBounds []int) (uintptr, error)
	AllocValueTypeArea(size int) uintptr

	// WriteBarrier records a reference store for the GC (managed object field,
	// array element, or static). mint calls this instead of writing the
	// pointer directly whenever the target may be GC-tracked.
	WriteBarrier(target uintptr, offset int, value uintptr)

	// ArrayLength and ArrayLowerBound support §4.6's bounds checks.
	ArrayLength(arr uintptr, dim int) int
	ArrayLowerBound(arr uintptr, dim int) int
	ArrayElementAddr(arr uintptr, indices []int) (uintptr, error)

	// RemotingLoad/RemotingStore implement LDRMFLD/STRMFLD (§4.4.4) for
	// remotable classes; mint calls these instead of direct field access.
	RemotingLoad(obj uintptr, f FieldHandle) (uintptr, error)
	RemotingStore(obj uintptr, f FieldHandle, value uintptr) error

	// StaticFieldBase returns the base address of the static-storage block a
	// static field lives in (FieldOffset/StaticFieldOffset give the byte
	// offset within it). Static storage is per-class, not per-object, so
	// LDSFLD/STSFLD need this instead of an object handle to compute an
	// address.
	StaticFieldBase(f FieldHandle) uintptr

	// PollInterruption reports whether the current OS thread has a pending
	// thread-abort/interrupt request (§4.6 "Suspension and interruption",
	// §5). mint polls this after call-family opcodes and at safepoints.
	PollInterruption() (pending bool, exceptionClass ClassHandle)

	// InvokeNative performs the actual native call for the call bridge
	// (§4.7 step 4), filling in info.RetWord and reporting whether the
	// callee threw a managed exception that must be propagated.
	InvokeNative(info *NativeCallInfo) (thrown uintptr, err error)
}
