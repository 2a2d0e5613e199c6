package interp

import (
	"math"

	"github.com/minterp/mint/internal/compiledmethod"
)

// The runtime stack slot representation mirrors the teacher's own
// ce.stack []uint64 (internal/engine/interpreter/interpreter.go): every
// value, regardless of its static type, is a plain untagged 64-bit word.
// I4 sign-extends into the low 32 bits on read and is stored zero-extended;
// R8 is the IEEE-754 bit pattern; object references and managed pointers are
// raw uintptr values the object runtime handed back.

func readI4(f *compiledmethod.Frame, idx int) int32   { return int32(uint32(f.Slots[idx])) }
func writeI4(f *compiledmethod.Frame, idx int, v int32) { f.Slots[idx] = uint64(uint32(v)) }

func readI8(f *compiledmethod.Frame, idx int) int64    { return int64(f.Slots[idx]) }
func writeI8(f *compiledmethod.Frame, idx int, v int64) { f.Slots[idx] = uint64(v) }

func readR8(f *compiledmethod.Frame, idx int) float64 { return math.Float64frombits(f.Slots[idx]) }
func writeR8(f *compiledmethod.Frame, idx int, v float64) {
	f.Slots[idx] = math.Float64bits(v)
}

func readPtr(f *compiledmethod.Frame, idx int) uintptr   { return uintptr(f.Slots[idx]) }
func writePtr(f *compiledmethod.Frame, idx int, v uintptr) { f.Slots[idx] = uint64(v) }

// evalStack is a thin cursor over a frame's eval-stack region (the words
// after its args+locals, §4.5): sp is a plain Go local, reset fresh on every
// recursive Call rather than shared across frames the way the teacher
// threads one growable ce.stack through its whole call chain — mint gives
// every activation its own backing Slots array (compiledmethod.NewFrame), so
// there is no cross-frame stack to share in the first place.
type evalStack struct {
	f  *compiledmethod.Frame
	sp int
}

func (s *evalStack) pushI4(v int32)     { writeI4(s.f, s.sp, v); s.sp++ }
func (s *evalStack) pushI8(v int64)     { writeI8(s.f, s.sp, v); s.sp++ }
func (s *evalStack) pushR8(v float64)   { writeR8(s.f, s.sp, v); s.sp++ }
func (s *evalStack) pushPtr(v uintptr)  { writePtr(s.f, s.sp, v); s.sp++ }
func (s *evalStack) pushRaw(v uint64)   { s.f.Slots[s.sp] = v; s.sp++ }

func (s *evalStack) popI4() int32    { s.sp--; return readI4(s.f, s.sp) }
func (s *evalStack) popI8() int64    { s.sp--; return readI8(s.f, s.sp) }
func (s *evalStack) popR8() float64  { s.sp--; return readR8(s.f, s.sp) }
func (s *evalStack) popPtr() uintptr { s.sp--; return readPtr(s.f, s.sp) }
func (s *evalStack) popRaw() uint64  { s.sp--; return s.f.Slots[s.sp] }

func (s *evalStack) peekRaw(depth int) uint64 { return s.f.Slots[s.sp-1-depth] }
func (s *evalStack) dup()                     { s.pushRaw(s.peekRaw(0)) }
