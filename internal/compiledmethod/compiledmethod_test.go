package compiledmethod

import (
	"errors"
	"sync"
	"testing"

	"github.com/minterp/mint/internal/abi"
	"github.com/minterp/mint/internal/testing/require"
)

func TestRegistryGetOrCreateBuildsOnce(t *testing.T) {
	r := NewRegistry()
	calls := 0
	m := abi.MethodHandle(1)

	build := func() (*CompiledMethod, error) {
		calls++
		return &CompiledMethod{Method: m}, nil
	}

	cm1, err := r.GetOrCreate(m, build)
	require.NoError(t, err)
	cm2, err := r.GetOrCreate(m, build)
	require.NoError(t, err)
	require.Same(t, cm1, cm2)
	require.Equal(t, 1, calls)
	require.Equal(t, 1, r.Len())
}

func TestRegistryGetOrCreateConcurrentBuildsOnce(t *testing.T) {
	r := NewRegistry()
	var calls int32Counter
	m := abi.MethodHandle(7)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.GetOrCreate(m, func() (*CompiledMethod, error) {
				calls.inc()
				return &CompiledMethod{Method: m}, nil
			})
			require.NoError(t, err)
		}()
	}
	wg.Wait()
	require.Equal(t, 1, calls.get())
}

type int32Counter struct {
	mu sync.Mutex
	n  int
}

func (c *int32Counter) inc() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
}

func (c *int32Counter) get() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

func TestRegistryGetOrCreatePropagatesBuildError(t *testing.T) {
	r := NewRegistry()
	wantErr := errors.New("boom")
	_, err := r.GetOrCreate(abi.MethodHandle(2), func() (*CompiledMethod, error) {
		return nil, wantErr
	})
	require.ErrorIs(t, err, wantErr)
	require.Equal(t, 0, r.Len())
}

func TestRegistryRemove(t *testing.T) {
	r := NewRegistry()
	m := abi.MethodHandle(3)
	_, err := r.GetOrCreate(m, func() (*CompiledMethod, error) { return &CompiledMethod{Method: m}, nil })
	require.NoError(t, err)
	r.Remove(m)
	_, ok := r.Lookup(m)
	require.False(t, ok)
}

func TestEnsureTransformedRunsOnce(t *testing.T) {
	calls := 0
	cm := &CompiledMethod{transformFn: func() error { calls++; return nil }}
	require.NoError(t, cm.EnsureTransformed())
	require.NoError(t, cm.EnsureTransformed())
	require.Equal(t, 1, calls)
}

func TestNewFrameZeroesOnlyFlaggedLocals(t *testing.T) {
	cm := &CompiledMethod{
		ArgsSize:     1,
		LocalsSize:   2,
		StackSize:    1,
		LocalOffsets: []int{1, 2},
		ZeroInit:     []bool{true, false},
	}
	f := NewFrame(cm, nil)
	require.Equal(t, 4, len(f.Slots))
	require.Equal(t, uint64(0), f.Slots[1])
}

func TestClauseContains(t *testing.T) {
	c := Clause{TryStart: 10, TryEnd: 20}
	require.True(t, c.Contains(10))
	require.True(t, c.Contains(19))
	require.False(t, c.Contains(20))
	require.False(t, c.Contains(9))
}
