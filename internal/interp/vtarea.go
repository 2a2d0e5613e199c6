package interp

import "github.com/minterp/mint/internal/compiledmethod"

// align8 matches internal/stackslot's own rounding so a VT area offset the
// transformer allocated and one the dispatch loop allocates at runtime never
// disagree on alignment.
func align8(n int) int { return (n + 7) &^ 7 }

// allocVT reserves size bytes for a value-type temporary the transformer
// could not pre-size at compile time — LDFLD_VT/LDELEM_VT results, UNBOX_ANY,
// an oversized value-type argument being marshalled for a call. It bump-
// allocates from f.VTTop, the cursor left sitting just past the transformer's
// own fixed region (locals, VTRESULT targets) by compiledmethod.NewFrame, and
// grows f.VTArea with append when the fixed capacity runs out.
func allocVT(f *compiledmethod.Frame, size int) int {
	off := f.VTTop
	need := off + align8(size)
	if need > len(f.VTArea) {
		f.VTArea = append(f.VTArea, make([]byte, need-len(f.VTArea))...)
	}
	f.VTTop = need
	return off
}

// freeVT retracts a temporary allocVT gave out, LIFO-style, when the caller
// is done with it. It only actually shrinks VTTop when off really is the
// array's current tail (the common case, since the eval stack that drives
// these allocations is itself LIFO); anything else is left in place and
// reclaimed in bulk the next time this frame is discarded.
func freeVT(f *compiledmethod.Frame, off, size int) {
	if end := off + align8(size); end == f.VTTop {
		f.VTTop = off
	}
}
