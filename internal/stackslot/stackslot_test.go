package stackslot

import (
	"testing"

	"github.com/minterp/mint/internal/testing/require"
)

func TestPushPopRoundTrip(t *testing.T) {
	s := NewStack()
	s.Push(I4())
	s.Push(Object())
	top, err := s.Pop()
	require.NoError(t, err)
	require.Equal(t, KindObject, top.Kind)
	top, err = s.Pop()
	require.NoError(t, err)
	require.Equal(t, KindI4, top.Kind)
	require.Equal(t, 0, s.Len())
}

func TestPopEmptyErrors(t *testing.T) {
	s := NewStack()
	_, err := s.Pop()
	require.Error(t, err)
}

func TestPeekAtDepth(t *testing.T) {
	s := NewStack()
	s.Push(I4())
	s.Push(I8())
	s.Push(R8())
	top, ok := s.PeekAt(0)
	require.True(t, ok)
	require.Equal(t, KindR8, top.Kind)
	mid, ok := s.PeekAt(1)
	require.True(t, ok)
	require.Equal(t, KindI8, mid.Kind)
	_, ok = s.PeekAt(5)
	require.False(t, ok)
}

func TestEqualIgnoresClassNameButNotVTSize(t *testing.T) {
	a := []Abstract{ValueType(12, "Point")}
	b := []Abstract{ValueType(12, "OtherName")}
	require.True(t, Equal(a, b))

	c := []Abstract{ValueType(24, "Point")}
	require.False(t, Equal(a, c))
}

func TestEqualDifferentLengths(t *testing.T) {
	require.False(t, Equal([]Abstract{I4()}, []Abstract{I4(), I8()}))
}

func TestValueTypeAlignsSizeTo8(t *testing.T) {
	vt := ValueType(5, "Small")
	require.Equal(t, 8, vt.VTSize)
	vt2 := ValueType(16, "Exact")
	require.Equal(t, 16, vt2.VTSize)
}

func TestAreaAllocBumpsAndAligns(t *testing.T) {
	var area Area
	off0 := area.Alloc(4)
	off1 := area.Alloc(10)
	require.Equal(t, 0, off0)
	require.Equal(t, 8, off1)
	require.Equal(t, 24, area.Size())
}

func TestSnapshotIsDefensiveCopy(t *testing.T) {
	s := NewStack()
	s.Push(I4())
	snap := s.Snapshot()
	s.Push(I8())
	require.Equal(t, 1, len(snap))
	require.Equal(t, 2, s.Len())
}
