package transform

// assignOffsets implements §4.4.3's ordering: args first, then locals, then
// one exvar slot per exception clause, leaving the eval-stack region (sized
// later, once the typing pass knows the method's max stack depth) and the
// value-type overflow area (sized as value-type temporaries are discovered
// during lowering) to follow.
func (s *state) assignOffsets() error {
	params := s.t.Meta.Params(s.method)
	hasThis := s.t.Meta.HasThis(s.method)

	argCount := len(params) + boolToInt(hasThis)
	s.argOffsets = make([]int, argCount)
	off := 0
	if hasThis {
		s.argOffsets[0] = off
		off++
	}
	for i, p := range params {
		idx := i + boolToInt(hasThis)
		s.argOffsets[idx] = off
		if p.IsValueType && p.Size > 8 {
			// Oversized value-type args are passed by an area offset held
			// in one StackSlot word; the byte payload itself lives in the
			// caller-allocated value-type area, copied in by the call
			// bridge (§4.7).
			off++
		} else {
			off++
		}
	}

	// Local count and per-local value-type sizing come straight from the
	// resolved locals signature the metadata layer already decoded into
	// MethodHeader.Locals (the owner of the local-variable signature is the
	// metadata layer, not the IL stream itself).
	locals := s.header.Locals
	s.localOffsets = make([]int, len(locals))
	s.localVTOffsets = make([]int, len(locals))
	s.zeroInit = make([]bool, len(locals))
	for i, l := range locals {
		s.localOffsets[i] = off
		off++
		s.localVTOffsets[i] = -1
		if l.IsValueType && l.Size > 8 {
			// The local's StackSlot word never holds the value itself; it
			// holds this fixed byte offset into the frame's value-type area,
			// seeded by compiledmethod.NewFrame before the method runs.
			s.localVTOffsets[i] = s.vtArea.Alloc(l.Size)
		}
		// A conservative transformer zero-inits every local whose IL header
		// sets InitLocals; §4.4.3's "INITLOCAL bulk-zeroing" liveness
		// refinement (narrowing this to only locals observably read before
		// assignment) is a supplemental optimization left undone here — see
		// DESIGN.md.
		s.zeroInit[i] = s.header.InitLocals
	}

	s.exvarOffsets = make([]int, len(s.header.Clauses))
	for i := range s.exvarOffsets {
		s.exvarOffsets[i] = off
		off++
	}

	return nil
}
