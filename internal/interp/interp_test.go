package interp

import (
	"fmt"

	"github.com/minterp/mint/internal/abi"
	"github.com/minterp/mint/internal/compiledmethod"
	"github.com/minterp/mint/internal/exception"
)

// fakeMeta is a minimal abi.MetadataProvider stand-in for dispatch-loop
// tests: most methods return zero values, since a given test only exercises
// the handful the opcodes under test actually call.
type fakeMeta struct {
	wellKnown map[string]abi.ClassHandle
	classOf   map[uintptr]abi.ClassHandle
	assign    func(to, from abi.ClassHandle) bool
}

func newFakeMeta() *fakeMeta {
	return &fakeMeta{
		wellKnown: map[string]abi.ClassHandle{},
		classOf:   map[uintptr]abi.ClassHandle{},
		assign:    func(to, from abi.ClassHandle) bool { return to == from },
	}
}

func (f *fakeMeta) ResolveMethodHeader(m abi.MethodHandle) (abi.MethodHeader, error) {
	return abi.MethodHeader{}, nil
}
func (f *fakeMeta) HasThis(m abi.MethodHandle) bool           { return false }
func (f *fakeMeta) Params(m abi.MethodHandle) []abi.ParamInfo { return nil }
func (f *fakeMeta) Return(m abi.MethodHandle) abi.ParamInfo   { return abi.ParamInfo{IsVoid: true} }
func (f *fakeMeta) Attrs(m abi.MethodHandle) abi.MethodAttrs  { return abi.MethodAttrs{} }

func (f *fakeMeta) DeclaringClass(m abi.MethodHandle) abi.ClassHandle { return 0 }

func (f *fakeMeta) VTableSlot(m abi.MethodHandle, onClass abi.ClassHandle) (int, int, error) {
	return 0, 0, nil
}
func (f *fakeMeta) ResolveVirtualMethod(m abi.MethodHandle, receiverClass abi.ClassHandle) (abi.MethodHandle, error) {
	return m, nil
}
func (f *fakeMeta) ClassOf(obj uintptr) abi.ClassHandle { return f.classOf[obj] }
func (f *fakeMeta) IsAssignableFrom(to, from abi.ClassHandle) bool {
	return f.assign(to, from)
}
func (f *fakeMeta) ValueTypeLayout(c abi.ClassHandle) (int, int) { return 0, 0 }

func (f *fakeMeta) FieldOffset(fld abi.FieldHandle) int         { return 0 }
func (f *fakeMeta) StaticFieldOffset(fld abi.FieldHandle) int   { return 0 }
func (f *fakeMeta) FieldType(fld abi.FieldHandle) abi.ParamInfo { return abi.ParamInfo{} }
func (f *fakeMeta) FieldIsRemotable(fld abi.FieldHandle) bool   { return false }

func (f *fakeMeta) ArrayRank(c abi.ClassHandle) int               { return 1 }
func (f *fakeMeta) ElementClass(c abi.ClassHandle) abi.ClassHandle { return 0 }

func (f *fakeMeta) ResolveMethodToken(m abi.MethodHandle, token uint32) (abi.MethodHandle, error) {
	return abi.MethodHandle(token), nil
}
func (f *fakeMeta) ResolveFieldToken(m abi.MethodHandle, token uint32) (abi.FieldHandle, error) {
	return abi.FieldHandle(token), nil
}
func (f *fakeMeta) ResolveClassToken(m abi.MethodHandle, token uint32) (abi.ClassHandle, error) {
	return abi.ClassHandle(token), nil
}
func (f *fakeMeta) ResolveStringToken(m abi.MethodHandle, token uint32) (abi.StringHandle, error) {
	return abi.StringHandle(token), nil
}
func (f *fakeMeta) ResolveSignatureToken(m abi.MethodHandle, token uint32) (abi.SignatureHandle, error) {
	return abi.SignatureHandle(token), nil
}

func (f *fakeMeta) SignatureParams(s abi.SignatureHandle) []abi.ParamInfo { return nil }
func (f *fakeMeta) SignatureReturn(s abi.SignatureHandle) abi.ParamInfo {
	return abi.ParamInfo{IsVoid: true}
}

func (f *fakeMeta) WellKnownClass(name string) abi.ClassHandle { return f.wellKnown[name] }
func (f *fakeMeta) IsTransparentProxy(obj uintptr) bool        { return false }
func (f *fakeMeta) WrapperFor(m abi.MethodHandle, attrs abi.MethodAttrs) (abi.MethodHandle, error) {
	return m, nil
}

var _ abi.MetadataProvider = (*fakeMeta)(nil)

// fakeRuntime is a minimal abi.ObjectRuntime stand-in: allocation just hands
// back an incrementing fake handle, since no test in this package needs real
// managed-object layout (field/array opcodes are exercised with their own
// narrower fakes where needed).
type fakeRuntime struct {
	next uintptr
}

func newFakeRuntime() *fakeRuntime { return &fakeRuntime{next: 1} }

func (r *fakeRuntime) AllocObject(c abi.ClassHandle) (uintptr, error) {
	r.next++
	return r.next, nil
}
func (r *fakeRuntime) AllocBoxed(c abi.ClassHandle, payload []byte) (uintptr, error) {
	r.next++
	return r.next, nil
}
func (r *fakeRuntime) AllocArray(elem abi.ClassHandle, lengths []int, lowerBounds []int) (uintptr, error) {
	r.next++
	return r.next, nil
}
func (r *fakeRuntime) AllocValueTypeArea(size int) uintptr { return 0 }

func (r *fakeRuntime) WriteBarrier(target uintptr, offset int, value uintptr) {}

func (r *fakeRuntime) ArrayLength(arr uintptr, dim int) int     { return 0 }
func (r *fakeRuntime) ArrayLowerBound(arr uintptr, dim int) int { return 0 }
func (r *fakeRuntime) ArrayElementAddr(arr uintptr, indices []int) (uintptr, error) {
	return 0, nil
}

func (r *fakeRuntime) RemotingLoad(obj uintptr, f abi.FieldHandle) (uintptr, error)  { return 0, nil }
func (r *fakeRuntime) RemotingStore(obj uintptr, f abi.FieldHandle, value uintptr) error {
	return nil
}

func (r *fakeRuntime) StaticFieldBase(f abi.FieldHandle) uintptr { return 0 }

func (r *fakeRuntime) PollInterruption() (bool, abi.ClassHandle) { return false, 0 }

func (r *fakeRuntime) InvokeNative(info *abi.NativeCallInfo) (uintptr, error) { return 0, nil }

var _ abi.ObjectRuntime = (*fakeRuntime)(nil)

// newTestDispatcher wires a Dispatcher against the fakes above plus a fresh
// Registry. Transform always fails -- tests register every CompiledMethod
// they need directly into the registry via Registry.GetOrCreate, exactly
// like a host that has already run internal/transform ahead of time.
func newTestDispatcher(meta *fakeMeta, objs *fakeRuntime) (*Dispatcher, *compiledmethod.Registry) {
	reg := compiledmethod.NewRegistry()
	d := &Dispatcher{
		Meta:       meta,
		Objs:       objs,
		Registry:   reg,
		Exceptions: &exception.Resolver{Meta: meta, Objs: objs},
		Transform: func(m abi.MethodHandle) (*compiledmethod.CompiledMethod, error) {
			return nil, fmt.Errorf("method %v not registered in test registry", m)
		},
	}
	return d, reg
}

// register installs cm directly into reg under its own Method handle; cm
// has no transform function, so EnsureTransformed has nothing to run -- tests
// build CompiledMethod literals by hand instead of running them through
// internal/transform.
func register(reg *compiledmethod.Registry, cm *compiledmethod.CompiledMethod) {
	reg.GetOrCreate(cm.Method, func() (*compiledmethod.CompiledMethod, error) { return cm, nil })
}
