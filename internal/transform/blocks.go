package transform

import (
	"github.com/minterp/mint/internal/abi"
	"github.com/minterp/mint/internal/il"
)

// discoverLeaders returns the IL byte offsets that start a basic block
// (§4.4.1): offset 0, every branch/switch target, every exception-clause
// boundary (a handler/filter/finally body is always entered out of normal
// fall-through order), and the instruction right after any
// branch/switch/ret/throw/leave/endfinally/rethrow, since control never
// falls through past those.
func discoverLeaders(s *state) map[int]bool {
	insts := s.insts
	leaders := map[int]bool{}
	if len(insts) == 0 {
		return leaders
	}
	leaders[insts[0].Offset] = true
	for i, inst := range insts {
		switch inst.Op {
		case il.BrS, il.BrfalseS, il.BrtrueS, il.BeqS, il.BgeS, il.BgtS, il.BleS, il.BltS,
			il.BneUnS, il.BgeUnS, il.BgtUnS, il.BleUnS, il.BltUnS, il.LeaveS,
			il.Br, il.Brfalse, il.Brtrue, il.Beq, il.Bge, il.Bgt, il.Ble, il.Blt,
			il.BneUn, il.BgeUn, il.BgtUn, il.BleUn, il.BltUn, il.Leave:
			leaders[inst.BranchTarget] = true
			if i+1 < len(insts) {
				leaders[insts[i+1].Offset] = true
			}
		case il.Switch:
			for _, target := range inst.SwitchTargets {
				leaders[target] = true
			}
			if i+1 < len(insts) {
				leaders[insts[i+1].Offset] = true
			}
		case il.Ret, il.ThrowOp, il.Rethrow, il.Endfinally, il.Endfilter:
			if i+1 < len(insts) {
				leaders[insts[i+1].Offset] = true
			}
		}
	}
	for _, c := range s.header.Clauses {
		leaders[c.TryStart] = true
		leaders[c.TryEnd] = true
		leaders[c.HandlerStart] = true
		leaders[c.HandlerEnd] = true
		if c.Kind == abi.ClauseFilter {
			leaders[c.FilterStart] = true
		}
	}
	return leaders
}
