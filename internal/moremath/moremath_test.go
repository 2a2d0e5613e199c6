package moremath

import (
	"math"
	"testing"

	"github.com/minterp/mint/internal/testing/require"
)

func TestCompatMin(t *testing.T) {
	require.Equal(t, -1.1, CompatMin(-1.1, 123))
	require.Equal(t, -1.1, CompatMin(-1.1, math.Inf(1)))
	require.Equal(t, math.Inf(-1), CompatMin(math.Inf(-1), 123))
	require.True(t, math.IsNaN(CompatMin(math.NaN(), 1.0)))
	require.True(t, math.IsNaN(CompatMin(1.0, math.NaN())))
}

func TestCompatMax(t *testing.T) {
	require.Equal(t, 123.1, CompatMax(-1.1, 123.1))
	require.Equal(t, math.Inf(1), CompatMax(-1.1, math.Inf(1)))
	require.True(t, math.IsNaN(CompatMax(math.NaN(), 1.0)))
}

func TestTruncOverflowsI32(t *testing.T) {
	require.False(t, TruncOverflowsI32(2147483647.0))
	require.True(t, TruncOverflowsI32(2147483648.0))
	require.True(t, TruncOverflowsI32(math.NaN()))
	require.True(t, TruncOverflowsI32(math.Inf(1)))
}

func TestTruncOverflowsU32(t *testing.T) {
	require.False(t, TruncOverflowsU32(0))
	require.False(t, TruncOverflowsU32(4294967295.0))
	require.True(t, TruncOverflowsU32(-1))
	require.True(t, TruncOverflowsU32(4294967296.0))
}

func TestTruncOverflowsI64(t *testing.T) {
	require.False(t, TruncOverflowsI64(0))
	require.True(t, TruncOverflowsI64(math.Inf(1)))
}

func TestTruncToZeroAsUnsignedPreservesZeroOnInf(t *testing.T) {
	require.Equal(t, uint32(0), TruncToZeroAsUnsigned(math.Inf(1)))
	require.Equal(t, uint32(5), TruncToZeroAsUnsigned(5.9))
}
