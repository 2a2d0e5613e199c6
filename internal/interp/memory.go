package interp

import (
	"math"
	"unsafe"

	"github.com/minterp/mint/internal/abi"
	"github.com/minterp/mint/internal/compiledmethod"
	"github.com/minterp/mint/internal/exception"
	"github.com/minterp/mint/internal/mintops"
)

// execSlot handles the whole LDLOC/STLOC/LDARG/STARG/LDARGA/LDLOCA/STINARG/
// INITLOCAL family (§4.5): every one of these addresses a single fixed
// Slots index via ArgOffsets/LocalOffsets, resolved from the operand the
// opcode's own mintops.ArgKind already decodes as a plain local/arg index.
func execSlot(f *compiledmethod.Frame, st *evalStack, op mintops.Opcode, row mintops.Row, code []uint16, ip int) {
	cm := f.Method
	idx := int(decodeOperand(row.Arg, code, ip))

	switch op {
	case mintops.LDLOC_I4, mintops.LDLOC_I8, mintops.LDLOC_R8, mintops.LDLOC_O, mintops.LDLOC_VT:
		st.pushRaw(f.Slots[cm.LocalOffsets[idx]])
	case mintops.STLOC_I4, mintops.STLOC_I8, mintops.STLOC_R8, mintops.STLOC_O, mintops.STLOC_VT:
		f.Slots[cm.LocalOffsets[idx]] = st.popRaw()
	case mintops.LDARG_I4, mintops.LDARG_I8, mintops.LDARG_R8, mintops.LDARG_O, mintops.LDARG_VT:
		st.pushRaw(f.Slots[cm.ArgOffsets[idx]])
	case mintops.STARG_I4, mintops.STARG_I8, mintops.STARG_R8, mintops.STARG_O, mintops.STARG_VT:
		f.Slots[cm.ArgOffsets[idx]] = st.popRaw()
	case mintops.LDARGA:
		st.pushPtr(uintptr(unsafe.Pointer(&f.Slots[cm.ArgOffsets[idx]])))
	case mintops.LDLOCA:
		st.pushPtr(uintptr(unsafe.Pointer(&f.Slots[cm.LocalOffsets[idx]])))
	case mintops.STINARG_I4, mintops.STINARG_I8, mintops.STINARG_R8, mintops.STINARG_O, mintops.STINARG_VT:
		// Dispatcher.Call already lays args out directly at their final
		// ArgOffsets position, so the prologue copy this opcode performs in
		// a register-based interpreter has nothing left to do here.
	case mintops.INITLOCAL:
		// ArgTwoShorts packs {startLocal, count}; zero every local's
		// Slots word in [start, start+count).
		packed := decodeOperand(row.Arg, code, ip)
		start, count := int(int16(uint32(packed))), int(int16(uint32(packed)>>16))
		for i := start; i < start+count && i < len(cm.LocalOffsets); i++ {
			f.Slots[cm.LocalOffsets[i]] = 0
		}
	}
}

// execInitobj zero-fills a value type's footprint (INITOBJ, §4.5): the
// popped address is a managed pointer (LDLOCA/LDARGA/LDFLDA/... result), the
// operand is the byte count the transformer took from the class layout. A
// zero count (INITOBJ on a reference-type local) zeroes one pointer word
// instead, matching CIL's "initobj on a reference type nulls it" rule.
func execInitobj(d *Dispatcher, f *compiledmethod.Frame, st *evalStack, row mintops.Row, code []uint16, ip int) {
	addr := st.popPtr()
	size := int(decodeOperand(row.Arg, code, ip))
	if size == 0 {
		size = int(unsafe.Sizeof(uintptr(0)))
	}
	dst := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
	for i := range dst {
		dst[i] = 0
	}
}

// execField implements the whole LDFLD/STFLD/LDSFLD/STSFLD/LDFLDA/LDSFLDA/
// LDRMFLD/STRMFLD family (§4.4.4, §4.6). Every opcode's token operand is a
// DataItems index holding the resolved abi.FieldHandle.
func execField(d *Dispatcher, f *compiledmethod.Frame, st *evalStack, op mintops.Opcode, row mintops.Row, code []uint16, ip int) {
	cm := f.Method
	tok := unsignedWord(code, ip)
	fld := cm.DataItems[tok].(abi.FieldHandle)
	ft := d.Meta.FieldType(fld)

	switch op {
	case mintops.LDRMFLD:
		obj := st.popPtr()
		checkNull(d, obj)
		v, err := d.Objs.RemotingLoad(obj, fld)
		if err != nil {
			d.Exceptions.Throw(exception.MissingMethod, "%v", err)
		}
		st.pushPtr(v)
		return
	case mintops.STRMFLD:
		v, obj := st.popPtr(), st.popPtr()
		checkNull(d, obj)
		if err := d.Objs.RemotingStore(obj, fld, v); err != nil {
			d.Exceptions.Throw(exception.MissingMethod, "%v", err)
		}
		return
	}

	switch op {
	case mintops.LDSFLD_I4, mintops.LDSFLD_I8, mintops.LDSFLD_R8, mintops.LDSFLD_O, mintops.LDSFLD_VT:
		base := d.Objs.StaticFieldBase(fld)
		off := d.Meta.StaticFieldOffset(fld)
		loadField(st, base, off, ft, op == mintops.LDSFLD_VT)
		return
	case mintops.STSFLD_I4, mintops.STSFLD_I8, mintops.STSFLD_R8, mintops.STSFLD_O, mintops.STSFLD_VT:
		base := d.Objs.StaticFieldBase(fld)
		off := d.Meta.StaticFieldOffset(fld)
		storeField(d, st, base, off, ft, op == mintops.STSFLD_VT)
		return
	case mintops.LDSFLDA:
		base := d.Objs.StaticFieldBase(fld)
		off := d.Meta.StaticFieldOffset(fld)
		st.pushPtr(base + uintptr(off))
		return
	}

	switch op {
	case mintops.LDFLDA:
		obj := st.popPtr()
		checkNull(d, obj)
		st.pushPtr(obj + uintptr(d.Meta.FieldOffset(fld)))
	case mintops.LDFLD_I1, mintops.LDFLD_U1, mintops.LDFLD_I2, mintops.LDFLD_U2, mintops.LDFLD_I4,
		mintops.LDFLD_I8, mintops.LDFLD_R8, mintops.LDFLD_O, mintops.LDFLD_VT:
		obj := st.popPtr()
		checkNull(d, obj)
		loadNarrowField(st, op, obj, d.Meta.FieldOffset(fld), ft)
	case mintops.STFLD_I1, mintops.STFLD_I2, mintops.STFLD_I4, mintops.STFLD_I8, mintops.STFLD_R8,
		mintops.STFLD_O, mintops.STFLD_VT:
		storeNarrowField(d, st, op, d.Meta.FieldOffset(fld), ft)
	}
}

func checkNull(d *Dispatcher, obj uintptr) {
	if obj == 0 {
		d.Exceptions.Throw(exception.NullReference, "")
	}
}

func loadField(st *evalStack, base uintptr, off int, ft abi.ParamInfo, isVT bool) {
	addr := base + uintptr(off)
	if isVT {
		st.pushPtr(addr) // VT static fields are addressed in place, not copied onto the stack
		return
	}
	st.pushRaw(*(*uint64)(unsafe.Pointer(addr)))
}

func storeField(d *Dispatcher, st *evalStack, base uintptr, off int, ft abi.ParamInfo, isVT bool) {
	v := st.popRaw()
	addr := base + uintptr(off)
	if !isVT && ft.Kind == abi.StackKindObject {
		d.Objs.WriteBarrier(base, off, uintptr(v))
	}
	*(*uint64)(unsafe.Pointer(addr)) = v
}

func loadNarrowField(st *evalStack, op mintops.Opcode, obj uintptr, off int, ft abi.ParamInfo) {
	addr := obj + uintptr(off)
	switch op {
	case mintops.LDFLD_I1:
		st.pushI4(int32(*(*int8)(unsafe.Pointer(addr))))
	case mintops.LDFLD_U1:
		st.pushI4(int32(*(*uint8)(unsafe.Pointer(addr))))
	case mintops.LDFLD_I2:
		st.pushI4(int32(*(*int16)(unsafe.Pointer(addr))))
	case mintops.LDFLD_U2:
		st.pushI4(int32(*(*uint16)(unsafe.Pointer(addr))))
	case mintops.LDFLD_I4:
		st.pushI4(*(*int32)(unsafe.Pointer(addr)))
	case mintops.LDFLD_I8:
		st.pushI8(*(*int64)(unsafe.Pointer(addr)))
	case mintops.LDFLD_R8:
		st.pushR8(math.Float64frombits(*(*uint64)(unsafe.Pointer(addr))))
	case mintops.LDFLD_O:
		st.pushPtr(*(*uintptr)(unsafe.Pointer(addr)))
	case mintops.LDFLD_VT:
		st.pushPtr(addr) // in-place value-type fields are addressed, not copied
	}
}

func storeNarrowField(d *Dispatcher, st *evalStack, op mintops.Opcode, off int, ft abi.ParamInfo) {
	switch op {
	case mintops.STFLD_I1:
		v, obj := st.popI4(), st.popPtr()
		checkNull(d, obj)
		*(*int8)(unsafe.Pointer(obj + uintptr(off))) = int8(v)
	case mintops.STFLD_I2:
		v, obj := st.popI4(), st.popPtr()
		checkNull(d, obj)
		*(*int16)(unsafe.Pointer(obj + uintptr(off))) = int16(v)
	case mintops.STFLD_I4:
		v, obj := st.popI4(), st.popPtr()
		checkNull(d, obj)
		*(*int32)(unsafe.Pointer(obj + uintptr(off))) = v
	case mintops.STFLD_I8:
		v, obj := st.popI8(), st.popPtr()
		checkNull(d, obj)
		*(*int64)(unsafe.Pointer(obj + uintptr(off))) = v
	case mintops.STFLD_R8:
		v, obj := st.popR8(), st.popPtr()
		checkNull(d, obj)
		*(*uint64)(unsafe.Pointer(obj + uintptr(off))) = math.Float64bits(v)
	case mintops.STFLD_O:
		v, obj := st.popPtr(), st.popPtr()
		checkNull(d, obj)
		d.Objs.WriteBarrier(obj, off, v)
		*(*uintptr)(unsafe.Pointer(obj + uintptr(off))) = v
	case mintops.STFLD_VT:
		src, obj := st.popPtr(), st.popPtr()
		checkNull(d, obj)
		dstAddr := obj + uintptr(off)
		dst := unsafe.Slice((*byte)(unsafe.Pointer(dstAddr)), ft.Size)
		srcBytes := unsafe.Slice((*byte)(unsafe.Pointer(src)), ft.Size)
		copy(dst, srcBytes)
	}
}

// execArray implements LDELEM/STELEM/LDELEMA/LDLEN/ARRAY_RANK/GETCHR/STRLEN
// (§4.6): every access null-checks the array and bounds-checks the index
// through ObjectRuntime, which owns the actual array layout.
func execArray(d *Dispatcher, f *compiledmethod.Frame, st *evalStack, op mintops.Opcode, row mintops.Row, code []uint16, ip int) {
	switch op {
	case mintops.LDLEN:
		arr := st.popPtr()
		checkNull(d, arr)
		st.pushI4(int32(d.Objs.ArrayLength(arr, 0)))
		return
	case mintops.ARRAY_RANK:
		arr := st.popPtr()
		checkNull(d, arr)
		st.pushI4(int32(d.Meta.ArrayRank(d.Meta.ClassOf(arr))))
		return
	case mintops.STRLEN:
		s := st.popPtr()
		checkNull(d, s)
		st.pushI4(int32(d.Objs.ArrayLength(s, 0)))
		return
	case mintops.GETCHR:
		idx, s := st.popI4(), st.popPtr()
		checkNull(d, s)
		addr, err := d.Objs.ArrayElementAddr(s, []int{int(idx)})
		if err != nil {
			d.Exceptions.Throw(exception.IndexOutOfRange, "")
		}
		st.pushI4(int32(*(*uint16)(unsafe.Pointer(addr))))
		return
	}

	switch op {
	case mintops.LDELEMA, mintops.LDELEMA_TC:
		idx, arr := st.popI4(), st.popPtr()
		checkNull(d, arr)
		addr, err := d.Objs.ArrayElementAddr(arr, []int{int(idx)})
		if err != nil {
			d.Exceptions.Throw(exception.IndexOutOfRange, "")
		}
		st.pushPtr(addr)
		return
	}

	switch op {
	case mintops.STELEM_I1, mintops.STELEM_I2, mintops.STELEM_I4, mintops.STELEM_I8,
		mintops.STELEM_R8, mintops.STELEM_REF, mintops.STELEM_VT:
		execStelem(d, st, op)
		return
	}
	execLdelem(d, st, op)
}

func execLdelem(d *Dispatcher, st *evalStack, op mintops.Opcode) {
	idx, arr := st.popI4(), st.popPtr()
	checkNull(d, arr)
	addr, err := d.Objs.ArrayElementAddr(arr, []int{int(idx)})
	if err != nil {
		d.Exceptions.Throw(exception.IndexOutOfRange, "")
	}
	switch op {
	case mintops.LDELEM_I1:
		st.pushI4(int32(*(*int8)(unsafe.Pointer(addr))))
	case mintops.LDELEM_U1:
		st.pushI4(int32(*(*uint8)(unsafe.Pointer(addr))))
	case mintops.LDELEM_I2:
		st.pushI4(int32(*(*int16)(unsafe.Pointer(addr))))
	case mintops.LDELEM_U2:
		st.pushI4(int32(*(*uint16)(unsafe.Pointer(addr))))
	case mintops.LDELEM_I4:
		st.pushI4(*(*int32)(unsafe.Pointer(addr)))
	case mintops.LDELEM_I8:
		st.pushI8(*(*int64)(unsafe.Pointer(addr)))
	case mintops.LDELEM_R8:
		st.pushR8(math.Float64frombits(*(*uint64)(unsafe.Pointer(addr))))
	case mintops.LDELEM_REF:
		st.pushPtr(*(*uintptr)(unsafe.Pointer(addr)))
	case mintops.LDELEM_VT:
		st.pushPtr(addr)
	}
}

func execStelem(d *Dispatcher, st *evalStack, op mintops.Opcode) {
	switch op {
	case mintops.STELEM_I1:
		v, idx, arr := st.popI4(), st.popI4(), st.popPtr()
		checkNull(d, arr)
		addr := elemAddr(d, arr, idx)
		*(*int8)(unsafe.Pointer(addr)) = int8(v)
	case mintops.STELEM_I2:
		v, idx, arr := st.popI4(), st.popI4(), st.popPtr()
		checkNull(d, arr)
		addr := elemAddr(d, arr, idx)
		*(*int16)(unsafe.Pointer(addr)) = int16(v)
	case mintops.STELEM_I4:
		v, idx, arr := st.popI4(), st.popI4(), st.popPtr()
		checkNull(d, arr)
		addr := elemAddr(d, arr, idx)
		*(*int32)(unsafe.Pointer(addr)) = v
	case mintops.STELEM_I8:
		v, idx, arr := st.popI8(), st.popI4(), st.popPtr()
		checkNull(d, arr)
		addr := elemAddr(d, arr, idx)
		*(*int64)(unsafe.Pointer(addr)) = v
	case mintops.STELEM_R8:
		v, idx, arr := st.popR8(), st.popI4(), st.popPtr()
		checkNull(d, arr)
		addr := elemAddr(d, arr, idx)
		*(*uint64)(unsafe.Pointer(addr)) = math.Float64bits(v)
	case mintops.STELEM_REF:
		v, idx, arr := st.popPtr(), st.popI4(), st.popPtr()
		checkNull(d, arr)
		if v != 0 {
			elemClass := d.Meta.ElementClass(d.Meta.ClassOf(arr))
			if !d.Meta.IsAssignableFrom(elemClass, d.Meta.ClassOf(v)) {
				d.Exceptions.Throw(exception.ArrayTypeMismatch, "")
			}
		}
		addr := elemAddr(d, arr, idx)
		d.Objs.WriteBarrier(arr, int(addr-arr), v)
		*(*uintptr)(unsafe.Pointer(addr)) = v
	case mintops.STELEM_VT:
		src, idx, arr := st.popPtr(), st.popI4(), st.popPtr()
		checkNull(d, arr)
		addr := elemAddr(d, arr, idx)
		elemClass := d.Meta.ElementClass(d.Meta.ClassOf(arr))
		size, _ := d.Meta.ValueTypeLayout(elemClass)
		dst := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
		srcBytes := unsafe.Slice((*byte)(unsafe.Pointer(src)), size)
		copy(dst, srcBytes)
	}
}

func elemAddr(d *Dispatcher, arr uintptr, idx int32) uintptr {
	addr, err := d.Objs.ArrayElementAddr(arr, []int{int(idx)})
	if err != nil {
		d.Exceptions.Throw(exception.IndexOutOfRange, "")
	}
	return addr
}

// execIndirect implements LDIND/STIND (§4.6): a raw managed-pointer
// dereference, null-checked the same as any field access.
func execIndirect(d *Dispatcher, st *evalStack, op mintops.Opcode) {
	switch op {
	case mintops.LDIND_I1:
		addr := st.popPtr()
		checkNull(d, addr)
		st.pushI4(int32(*(*int8)(unsafe.Pointer(addr))))
	case mintops.LDIND_U1:
		addr := st.popPtr()
		checkNull(d, addr)
		st.pushI4(int32(*(*uint8)(unsafe.Pointer(addr))))
	case mintops.LDIND_I2:
		addr := st.popPtr()
		checkNull(d, addr)
		st.pushI4(int32(*(*int16)(unsafe.Pointer(addr))))
	case mintops.LDIND_U2:
		addr := st.popPtr()
		checkNull(d, addr)
		st.pushI4(int32(*(*uint16)(unsafe.Pointer(addr))))
	case mintops.LDIND_I4:
		addr := st.popPtr()
		checkNull(d, addr)
		st.pushI4(*(*int32)(unsafe.Pointer(addr)))
	case mintops.LDIND_I8:
		addr := st.popPtr()
		checkNull(d, addr)
		st.pushI8(*(*int64)(unsafe.Pointer(addr)))
	case mintops.LDIND_R8:
		addr := st.popPtr()
		checkNull(d, addr)
		st.pushR8(math.Float64frombits(*(*uint64)(unsafe.Pointer(addr))))
	case mintops.LDIND_O:
		addr := st.popPtr()
		checkNull(d, addr)
		st.pushPtr(*(*uintptr)(unsafe.Pointer(addr)))
	case mintops.STIND_I1:
		v, addr := st.popI4(), st.popPtr()
		checkNull(d, addr)
		*(*int8)(unsafe.Pointer(addr)) = int8(v)
	case mintops.STIND_I2:
		v, addr := st.popI4(), st.popPtr()
		checkNull(d, addr)
		*(*int16)(unsafe.Pointer(addr)) = int16(v)
	case mintops.STIND_I4:
		v, addr := st.popI4(), st.popPtr()
		checkNull(d, addr)
		*(*int32)(unsafe.Pointer(addr)) = v
	case mintops.STIND_I8:
		v, addr := st.popI8(), st.popPtr()
		checkNull(d, addr)
		*(*int64)(unsafe.Pointer(addr)) = v
	case mintops.STIND_R8:
		v, addr := st.popR8(), st.popPtr()
		checkNull(d, addr)
		*(*uint64)(unsafe.Pointer(addr)) = math.Float64bits(v)
	case mintops.STIND_O:
		v, addr := st.popPtr(), st.popPtr()
		checkNull(d, addr)
		*(*uintptr)(unsafe.Pointer(addr)) = v
	}
}

// execTypeOp implements BOX/UNBOX/UNBOX_ANY/CASTCLASS/ISINST (§4.6).
func execTypeOp(d *Dispatcher, f *compiledmethod.Frame, st *evalStack, op mintops.Opcode, row mintops.Row, code []uint16, ip int) {
	tok := unsignedWord(code, ip)
	class := f.Method.DataItems[tok].(abi.ClassHandle)

	switch op {
	case mintops.BOX:
		v := st.popRaw()
		payload := (*[8]byte)(unsafe.Pointer(&v))[:]
		obj, err := d.Objs.AllocBoxed(class, payload)
		if err != nil {
			d.Exceptions.Throw(exception.ExecutionEngine, "%v", err)
		}
		st.pushPtr(obj)
	case mintops.UNBOX:
		obj := st.popPtr()
		checkNull(d, obj)
		if !d.Meta.IsAssignableFrom(class, d.Meta.ClassOf(obj)) {
			d.Exceptions.Throw(exception.InvalidCast, "")
		}
		st.pushPtr(obj + unsafe.Sizeof(uintptr(0))) // payload follows the object header
	case mintops.UNBOX_ANY:
		obj := st.popPtr()
		checkNull(d, obj)
		if !d.Meta.IsAssignableFrom(class, d.Meta.ClassOf(obj)) {
			d.Exceptions.Throw(exception.InvalidCast, "")
		}
		st.pushPtr(obj + unsafe.Sizeof(uintptr(0)))
	case mintops.CASTCLASS:
		obj := st.popPtr()
		if obj != 0 && !d.Meta.IsAssignableFrom(class, d.Meta.ClassOf(obj)) {
			d.Exceptions.Throw(exception.InvalidCast, "")
		}
		st.pushPtr(obj)
	case mintops.ISINST:
		obj := st.popPtr()
		if obj != 0 && !d.Meta.IsAssignableFrom(class, d.Meta.ClassOf(obj)) {
			st.pushPtr(0)
		} else {
			st.pushPtr(obj)
		}
	}
}

// execNew implements NEWOBJ/NEWOBJ_VT/NEWOBJ_STRING/NEWOBJ_ARRAY/NEWARR
// (§4.6). A plain NEWOBJ allocates the instance then recursively dispatches
// its constructor the same way CALL dispatches an ordinary method.
func execNew(d *Dispatcher, tc *compiledmethod.ThreadContext, f *compiledmethod.Frame, st *evalStack, op mintops.Opcode, row mintops.Row, code []uint16, ip int) {
	switch op {
	case mintops.NEWARR:
		tok := unsignedWord(code, ip)
		elem := f.Method.DataItems[tok].(abi.ClassHandle)
		n := st.popI4()
		if n < 0 {
			d.Exceptions.Throw(exception.Overflow, "")
		}
		arr, err := d.Objs.AllocArray(elem, []int{int(n)}, []int{0})
		if err != nil {
			d.Exceptions.Throw(exception.ExecutionEngine, "%v", err)
		}
		st.pushPtr(arr)
	case mintops.NEWOBJ_ARRAY:
		tok := unsignedWord(code, ip)
		class := f.Method.DataItems[tok].(abi.ClassHandle)
		n := st.popI4()
		arr, err := d.Objs.AllocArray(class, []int{int(n)}, []int{0})
		if err != nil {
			d.Exceptions.Throw(exception.ExecutionEngine, "%v", err)
		}
		st.pushPtr(arr)
	case mintops.NEWOBJ, mintops.NEWOBJ_VT:
		execNewobj(d, tc, f, st, row, code, ip)
	case mintops.NEWOBJ_STRING:
		execNewobj(d, tc, f, st, row, code, ip)
	}
}

func execNewobj(d *Dispatcher, tc *compiledmethod.ThreadContext, f *compiledmethod.Frame, st *evalStack, row mintops.Row, code []uint16, ip int) {
	tok := unsignedWord(code, ip)
	ctor := f.Method.DataItems[tok].(abi.MethodHandle)
	class := d.Meta.DeclaringClass(ctor)

	obj, err := d.Objs.AllocObject(class)
	if err != nil {
		d.Exceptions.Throw(exception.ExecutionEngine, "%v", err)
	}

	params := d.Meta.Params(ctor)
	args := make([]uint64, 1+len(params))
	args[0] = uint64(obj)
	for i := len(params); i >= 1; i-- {
		args[i] = st.popRaw()
	}

	_, thrown, err := d.Call(tc, ctor, args, nil)
	if err != nil {
		d.Exceptions.Throw(exception.ExecutionEngine, "%v", err)
	}
	if thrown != nil {
		panic(thrown)
	}
	st.pushPtr(obj)
}
