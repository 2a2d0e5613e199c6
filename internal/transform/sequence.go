package transform

import "github.com/minterp/mint/internal/mintops"

// emitSequencePoints inserts an SDB_SEQ_POINT marker ahead of every basic
// block's first instruction (§4.4.6): entry, every branch/switch target, and
// every exception-clause boundary, exactly the leader set block discovery
// already computed. The dispatch loop executes these markers as no-ops. This
// folds "symbol offset" and "loop header"
// sequence points into one pass keyed off leaders rather than maintaining a
// separate symbol table, a simplification recorded in DESIGN.md.
func (s *state) emitSequencePoints() {
	leaders := discoverLeaders(s)
	out := make([]emitted, 0, len(s.out)+len(leaders))
	inserted := map[int]bool{}
	for _, e := range s.out {
		if e.ilOffset >= 0 && leaders[e.ilOffset] && !inserted[e.ilOffset] {
			out = append(out, emitted{ilOffset: e.ilOffset, op: mintops.SDB_SEQ_POINT})
			inserted[e.ilOffset] = true
		}
		out = append(out, e)
	}
	s.out = out
}
