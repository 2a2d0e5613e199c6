package transform

import (
	"fmt"
	"testing"

	"github.com/minterp/mint/internal/abi"
	"github.com/minterp/mint/internal/mintops"
	"github.com/minterp/mint/internal/testing/require"
)

// fakeMeta is a minimal abi.MetadataProvider stand-in: every test method is
// keyed by its abi.MethodHandle and carries its own header/signature, so one
// fakeMeta instance can serve several independent test cases.
type fakeMeta struct {
	headers map[abi.MethodHandle]abi.MethodHeader
	hasThis map[abi.MethodHandle]bool
	params  map[abi.MethodHandle][]abi.ParamInfo
	ret     map[abi.MethodHandle]abi.ParamInfo

	fieldTypes     map[abi.FieldHandle]abi.ParamInfo
	fieldRemotable map[abi.FieldHandle]bool

	classLayout map[abi.ClassHandle][2]int // size, align
	declClass   map[abi.MethodHandle]abi.ClassHandle
	wellKnown   map[string]abi.ClassHandle
}

func newFakeMeta() *fakeMeta {
	return &fakeMeta{
		headers:        map[abi.MethodHandle]abi.MethodHeader{},
		hasThis:        map[abi.MethodHandle]bool{},
		params:         map[abi.MethodHandle][]abi.ParamInfo{},
		ret:            map[abi.MethodHandle]abi.ParamInfo{},
		fieldTypes:     map[abi.FieldHandle]abi.ParamInfo{},
		fieldRemotable: map[abi.FieldHandle]bool{},
		classLayout:    map[abi.ClassHandle][2]int{},
		declClass:      map[abi.MethodHandle]abi.ClassHandle{},
		wellKnown:      map[string]abi.ClassHandle{},
	}
}

func (f *fakeMeta) ResolveMethodHeader(m abi.MethodHandle) (abi.MethodHeader, error) {
	h, ok := f.headers[m]
	if !ok {
		return abi.MethodHeader{}, fmt.Errorf("fakeMeta: no header for %v", m)
	}
	return h, nil
}

func (f *fakeMeta) HasThis(m abi.MethodHandle) bool            { return f.hasThis[m] }
func (f *fakeMeta) Params(m abi.MethodHandle) []abi.ParamInfo  { return f.params[m] }
func (f *fakeMeta) Return(m abi.MethodHandle) abi.ParamInfo    { return f.ret[m] }
func (f *fakeMeta) Attrs(m abi.MethodHandle) abi.MethodAttrs   { return abi.MethodAttrs{} }

func (f *fakeMeta) DeclaringClass(m abi.MethodHandle) abi.ClassHandle { return f.declClass[m] }

func (f *fakeMeta) VTableSlot(m abi.MethodHandle, onClass abi.ClassHandle) (int, int, error) {
	return 0, 0, nil
}
func (f *fakeMeta) ResolveVirtualMethod(m abi.MethodHandle, receiverClass abi.ClassHandle) (abi.MethodHandle, error) {
	return m, nil
}
func (f *fakeMeta) ClassOf(obj uintptr) abi.ClassHandle                  { return 0 }
func (f *fakeMeta) IsAssignableFrom(to, from abi.ClassHandle) bool       { return true }
func (f *fakeMeta) ValueTypeLayout(c abi.ClassHandle) (int, int) {
	sz := f.classLayout[c]
	return sz[0], sz[1]
}

func (f *fakeMeta) FieldOffset(fld abi.FieldHandle) int       { return 0 }
func (f *fakeMeta) StaticFieldOffset(fld abi.FieldHandle) int { return 0 }
func (f *fakeMeta) FieldType(fld abi.FieldHandle) abi.ParamInfo {
	return f.fieldTypes[fld]
}
func (f *fakeMeta) FieldIsRemotable(fld abi.FieldHandle) bool { return f.fieldRemotable[fld] }

func (f *fakeMeta) ArrayRank(c abi.ClassHandle) int             { return 1 }
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
func (f *fakeMeta) SignatureReturn(s abi.SignatureHandle) abi.ParamInfo  { return abi.ParamInfo{IsVoid: true} }

func (f *fakeMeta) WellKnownClass(name string) abi.ClassHandle { return f.wellKnown[name] }
func (f *fakeMeta) IsTransparentProxy(obj uintptr) bool        { return false }
func (f *fakeMeta) WrapperFor(m abi.MethodHandle, attrs abi.MethodAttrs) (abi.MethodHandle, error) {
	return m, nil
}

var _ abi.MetadataProvider = (*fakeMeta)(nil)

func i4Param() abi.ParamInfo { return abi.ParamInfo{Kind: abi.StackKindI4} }
func voidRet() abi.ParamInfo { return abi.ParamInfo{IsVoid: true} }

// TestTransformAddTwoArgs exercises the full pipeline on int Add(int a, int
// b) { return a + b; }: ldarg.0; ldarg.1; add; ret.
func TestTransformAddTwoArgs(t *testing.T) {
	meta := newFakeMeta()
	m := abi.MethodHandle(100)
	meta.params[m] = []abi.ParamInfo{i4Param(), i4Param()}
	meta.ret[m] = i4Param()
	meta.headers[m] = abi.MethodHeader{
		Code:     []byte{0x02, 0x03, 0x58, 0x2A},
		MaxStack: 2,
	}

	tr := &Transformer{Meta: meta}
	cm, err := tr.Transform(m)
	require.NoError(t, err)

	require.Equal(t, 2, cm.ArgCount)
	require.False(t, cm.HasThis)
	require.Equal(t, []int{0, 1}, cm.ArgOffsets)
	require.Equal(t, 0, len(cm.LocalOffsets))
	require.Equal(t, 2, cm.StackSize)

	want := []uint16{
		uint16(mintops.SDB_SEQ_POINT),
		uint16(mintops.LDARG_I4), 0,
		uint16(mintops.LDARG_I4), 1,
		uint16(mintops.ADD_I4),
		uint16(mintops.RET),
	}
	require.Equal(t, want, cm.Code)
}

// TestTransformConditionalBranchResolvesDelta exercises int Max(int a, int
// b) { if (a <= b) return b; return a; }, checking that block discovery,
// sequence-point insertion, and branch-delta resolution line up across
// three basic blocks:
//
//	0: ldarg.0      4: ldarg.0      6: ldarg.1
//	1: ldarg.1      5: ret          7: ret
//	2: ble.s -> 6
func TestTransformConditionalBranchResolvesDelta(t *testing.T) {
	meta := newFakeMeta()
	m := abi.MethodHandle(101)
	meta.params[m] = []abi.ParamInfo{i4Param(), i4Param()}
	meta.ret[m] = i4Param()
	meta.headers[m] = abi.MethodHeader{
		Code:     []byte{0x02, 0x03, 0x31, 0x02, 0x02, 0x2A, 0x03, 0x2A},
		MaxStack: 2,
	}

	tr := &Transformer{Meta: meta}
	cm, err := tr.Transform(m)
	require.NoError(t, err)

	// Three basic blocks (offsets 0, 4, 6) each get exactly one leading
	// sequence point.
	seqPoints := 0
	for _, w := range cm.Code {
		if w == uint16(mintops.SDB_SEQ_POINT) {
			seqPoints++
		}
	}
	require.Equal(t, 3, seqPoints)

	// BLE_I4 keeps its long (ArgBranch) form -- the shrink pass only ever
	// narrows BR/LEAVE, never a conditional branch.
	found := false
	for _, w := range cm.Code {
		if w == uint16(mintops.BLE_I4) {
			found = true
		}
	}
	require.True(t, found)
}

func TestTransformVoidReturnEmitsRetVoid(t *testing.T) {
	meta := newFakeMeta()
	m := abi.MethodHandle(102)
	meta.ret[m] = voidRet()
	meta.headers[m] = abi.MethodHeader{Code: []byte{0x2A}} // ret

	tr := &Transformer{Meta: meta}
	cm, err := tr.Transform(m)
	require.NoError(t, err)

	want := []uint16{uint16(mintops.SDB_SEQ_POINT), uint16(mintops.RET_VOID)}
	require.Equal(t, want, cm.Code)
}

func TestTransformClausesRewrittenToMintWordOffsets(t *testing.T) {
	meta := newFakeMeta()
	m := abi.MethodHandle(103)
	meta.ret[m] = voidRet()
	// nop; nop; leave.s L; nop; L: ret
	meta.headers[m] = abi.MethodHeader{
		Code: []byte{0x00, 0x00, 0xDE, 0x01, 0x00, 0x2A},
		Clauses: []abi.ExceptionClause{
			{Kind: abi.ClauseFinally, TryStart: 0, TryEnd: 2, HandlerStart: 2, HandlerEnd: 4},
		},
	}

	tr := &Transformer{Meta: meta}
	cm, err := tr.Transform(m)
	require.NoError(t, err)

	require.Equal(t, 1, len(cm.Clauses))
	c := cm.Clauses[0]
	require.Equal(t, 0, c.TryStart)
	require.True(t, c.TryEnd > 0)
	require.True(t, c.HandlerEnd > c.HandlerStart)
}
