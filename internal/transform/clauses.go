package transform

import (
	"github.com/minterp/mint/internal/abi"
	"github.com/minterp/mint/internal/compiledmethod"
)

// rewriteClauses implements §4.4.8: converts every abi.ExceptionClause (IL
// byte offsets, as the metadata layer enumerates them) into a
// compiledmethod.Clause (mint-word offsets, as internal/exception's Match/
// Unwind walk them against a running Frame.IP) using the offset map
// resolveBranchesFixedPoint produced. The metadata layer enumerates nested
// clauses innermost-first; this reverses that order, so that
// internal/exception's Match and the dispatch loop's LEAVE handling, which
// walk the table from its end, visit the innermost clause first (§4.8).
func (s *state) rewriteClauses(offsetOfInst map[int]int) []compiledmethod.Clause {
	clauses := make([]compiledmethod.Clause, len(s.header.Clauses))
	for i, c := range s.header.Clauses {
		out := compiledmethod.Clause{
			Kind:         c.Kind,
			TryStart:     offsetOfInst[c.TryStart],
			TryEnd:       offsetOfInst[c.TryEnd],
			HandlerStart: offsetOfInst[c.HandlerStart],
			HandlerEnd:   offsetOfInst[c.HandlerEnd],
			CatchClass:   c.CatchClass,
		}
		if c.Kind == abi.ClauseFilter {
			out.FilterStart = offsetOfInst[c.FilterStart]
		}
		clauses[len(clauses)-1-i] = out
	}
	return clauses
}
