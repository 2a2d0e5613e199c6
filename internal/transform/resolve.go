package transform

import "github.com/minterp/mint/internal/mintops"

// resolveBranchesFixedPoint turns s.out (mint instructions addressed by IL
// offset) into the final mint-word code stream, fixing up every branch and
// switch target to a mint-word-relative delta. It also runs the short-branch
// shrink pass: BR and LEAVE are emitted in their long (ArgBranch) form by
// lower.go uniformly, and this pass narrows each one to its short (_S) form
// whenever the final distance fits a signed 16-bit delta, iterating to a
// fixed point since shrinking one branch can bring a later one's target
// close enough to shrink too (§4.4.4 "branch relocation as a shrink-to-
// fixed-point worklist").
func (s *state) resolveBranchesFixedPoint() ([]uint16, map[int]int) {
	n := len(s.out)
	ops := make([]mintops.Opcode, n)
	for i, e := range s.out {
		ops[i] = e.op
	}

	// leaderIndex maps an IL byte offset to the index of the first emitted
	// mint instruction lowered from it — the only offsets branch/switch
	// targets ever name, since block discovery only marks leader
	// instructions (§4.4.1).
	leaderIndex := map[int]int{}
	for i, e := range s.out {
		if e.ilOffset < 0 {
			continue
		}
		if _, ok := leaderIndex[e.ilOffset]; !ok {
			leaderIndex[e.ilOffset] = i
		}
	}

	offsets := make([]int, n+1)
	recompute := func() {
		cur := 0
		for i, e := range s.out {
			offsets[i] = cur
			cur += wordLen(ops[i], e)
		}
		offsets[n] = cur
	}
	recompute()

	for iter := 0; iter < n+4; iter++ {
		changed := false
		recompute()
		for i, e := range s.out {
			if !e.isBranch {
				continue
			}
			target, ok := leaderIndex[e.branchTargetIL]
			if !ok {
				continue // dangling target: leave in long form, C6 will fault loudly if ever reached
			}
			delta := offsets[target] - (offsets[i] + wordLen(ops[i], e))
			switch ops[i] {
			case mintops.BR:
				if fitsInt16(delta) {
					ops[i] = mintops.BR_S
					changed = true
				}
			case mintops.BR_S:
				if !fitsInt16(delta) {
					ops[i] = mintops.BR
					changed = true
				}
			case mintops.LEAVE:
				if fitsInt16(delta) {
					ops[i] = mintops.LEAVE_S
					changed = true
				}
			case mintops.LEAVE_S:
				if !fitsInt16(delta) {
					ops[i] = mintops.LEAVE
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}
	recompute()

	code := make([]uint16, 0, offsets[n])
	for i, e := range s.out {
		op := ops[i]
		switch {
		case e.isSwitch:
			code = append(code, uint16(op))
			nTargets := len(e.switchTargets)
			code = append(code, uint16(uint32(nTargets)), uint16(uint32(nTargets)>>16))
			for _, tIL := range e.switchTargets {
				target := leaderIndex[tIL]
				delta := offsets[target] - (offsets[i] + wordLen(op, e))
				code = append(code, uint16(uint32(delta)), uint16(uint32(delta)>>16))
			}
		case e.isBranch:
			target, ok := leaderIndex[e.branchTargetIL]
			delta := 0
			if ok {
				delta = offsets[target] - (offsets[i] + wordLen(op, e))
			}
			code = append(code, uint16(op))
			code = append(code, encodeBranchDelta(op, delta)...)
		default:
			code = append(code, uint16(op))
			code = append(code, encodeOperand(op, e.operand)...)
		}
	}

	offsetOfInst := make(map[int]int, len(leaderIndex)+1)
	for ilOff, idx := range leaderIndex {
		offsetOfInst[ilOff] = offsets[idx]
	}
	// A clause boundary may sit exactly at the method's end (a try/handler
	// region that runs to the last instruction); no instruction starts
	// there, so the one-past-the-end IL offset gets its own sentinel entry
	// pointing at the one-past-the-end mint-word offset.
	offsetOfInst[s.codeLen] = offsets[n]
	return code, offsetOfInst
}

func fitsInt16(delta int) bool { return delta >= -32768 && delta <= 32767 }

// wordLen is an emitted instruction's length in mint words given its
// (possibly just-shrunk) opcode.
func wordLen(op mintops.Opcode, e emitted) int {
	if e.isSwitch {
		return mintops.SwitchLen(len(e.switchTargets))
	}
	return mintops.Lookup(op).Len
}

func encodeBranchDelta(op mintops.Opcode, delta int) []uint16 {
	if mintops.Lookup(op).Arg == mintops.ArgShortBranch {
		return []uint16{uint16(int16(delta))}
	}
	return []uint16{uint16(uint32(delta)), uint16(uint32(delta) >> 16)}
}

// encodeOperand lays out a single emitted operand value according to its
// opcode's ArgKind, matching mintops.ArgKind.words' word counts.
func encodeOperand(op mintops.Opcode, operand int64) []uint16 {
	row := mintops.Lookup(op)
	switch row.Arg {
	case mintops.ArgNone:
		return nil
	case mintops.ArgShortInt, mintops.ArgUShortInt, mintops.ArgMethodToken,
		mintops.ArgFieldToken, mintops.ArgClassToken, mintops.ArgSignatureToken:
		return []uint16{uint16(operand)}
	case mintops.ArgInt, mintops.ArgFloat:
		return []uint16{uint16(uint32(operand)), uint16(uint32(operand) >> 16)}
	case mintops.ArgLongInt, mintops.ArgDouble:
		u := uint64(operand)
		return []uint16{uint16(u), uint16(u >> 16), uint16(u >> 32), uint16(u >> 48)}
	case mintops.ArgTwoShorts:
		return []uint16{uint16(uint32(operand)), uint16(uint32(operand) >> 16)}
	case mintops.ArgShortAndInt:
		u := uint64(operand)
		return []uint16{uint16(u), uint16(u >> 16), uint16(u >> 32)}
	default:
		return nil
	}
}
