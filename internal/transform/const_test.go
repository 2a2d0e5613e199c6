package transform

import (
	"math"
	"testing"

	"github.com/minterp/mint/internal/abi"
	"github.com/minterp/mint/internal/il"
	"github.com/minterp/mint/internal/mintops"
	"github.com/minterp/mint/internal/testing/require"
)

// ldc.r8 1.5; ret (float return)
func TestTransformLdcR8EncodesRawBitsInline(t *testing.T) {
	meta := newFakeMeta()
	m := abi.MethodHandle(200)
	meta.ret[m] = abi.ParamInfo{Kind: abi.StackKindR8}
	code := []byte{byte(il.LdcR8), 0, 0, 0, 0, 0, 0, 0xF8, 0x3F, byte(il.Ret)}
	meta.headers[m] = abi.MethodHeader{Code: code}

	tr := &Transformer{Meta: meta}
	cm, err := tr.Transform(m)
	require.NoError(t, err)

	// word layout: SDB_SEQ_POINT, LDC_R8, lo16, lo16>>16... (4 words), RET
	require.Equal(t, uint16(mintops.LDC_R8), cm.Code[1])
	bits := uint64(cm.Code[2]) | uint64(cm.Code[3])<<16 | uint64(cm.Code[4])<<32 | uint64(cm.Code[5])<<48
	require.Equal(t, 1.5, math.Float64frombits(bits))
}
