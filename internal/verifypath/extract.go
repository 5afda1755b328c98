// Package verifypath implements spec.md §4.G: decomposing a flattened,
// annotated CFG into the finite set of basic paths the SMT backend
// consumes, one verification condition per path.
package verifypath

import (
	"iter"

	"github.com/orizon-lang/orizon-verify/internal/verifyexpr"
	"github.com/orizon-lang/orizon-verify/internal/verifyir"
)

// BasicPath is one loop-free route between two cut blocks (spec.md §4.G).
// HeadCondition/TailCondition are the head/tail cut block's own assertion
// lists — conjunctive, per spec.md, but left as a list here since nothing
// downstream of this package needs them pre-ANDed. Statements is the
// interior basic blocks' statements interleaved with the Assume guard of
// every edge the walk took, in traversal order, opening with Head's own
// \old(·) snapshot assignments (if any) so a TailCondition referencing a
// ghost variable is never a free variable in the resulting VC; Head == Tail
// marks a loop back-edge, the case where the consumer emits TailRanking ≺
// HeadRanking.
type BasicPath struct {
	Head, Tail                   *verifyir.Block
	HeadCondition, TailCondition []verifyexpr.PredNode
	HeadRanking, TailRanking     []verifyexpr.TermNode
	Statements                   []verifyir.Stmt
}

// Extract enumerates every basic path of fn lazily, one per (h, t) route
// whose interior contains only non-cut blocks. Iteration order is a DFS
// over Blocks in creation order, then over each block's outgoing Succs in
// the order they were added during CFG construction — deterministic, but
// not otherwise meaningful; spec.md §4.G explicitly does not deduplicate
// walks that produce the same statement list.
func Extract(fn *verifyir.Function) iter.Seq[BasicPath] {
	return func(yield func(BasicPath) bool) {
		for _, h := range fn.Blocks {
			if !h.Kind.IsCut() {
				continue
			}
			if !walk(h, h, ghostAssignStmts(h), yield) {
				return
			}
		}
	}
}

// ghostAssignStmts converts head's \old(·) snapshot assignments (spec.md
// §4.E) into the Stmt list every basic path rooted at head must open with —
// they run before any of head's own outgoing edges, so every path out of a
// precondition or loop head observes the snapshot rather than treating the
// ghost variable as a free variable in the VC handed to the SMT backend.
func ghostAssignStmts(head *verifyir.Block) []verifyir.Stmt {
	if len(head.GhostAssigns) == 0 {
		return nil
	}
	stmts := make([]verifyir.Stmt, len(head.GhostAssigns))
	for i, a := range head.GhostAssigns {
		stmts[i] = a
	}
	return stmts
}

// walk extends the path rooted at head through cur's outgoing edges,
// closing off a path (and calling yield) the moment it reaches another cut
// block, or descending further when it lands on an interior basic block.
// stmts is never mutated in place: every branch gets its own copy, since
// sibling edges out of the same block must not see each other's tail.
func walk(head, cur *verifyir.Block, stmts []verifyir.Stmt, yield func(BasicPath) bool) bool {
	for _, e := range cur.Succs {
		next := e.To
		seg := clone(stmts)
		if e.Guard != nil {
			seg = append(seg, &verifyir.Assume{Pred: e.Guard})
		}

		if next.Kind.IsCut() {
			path := BasicPath{
				Head:          head,
				Tail:          next,
				HeadCondition: head.Assertions,
				TailCondition: next.Assertions,
				HeadRanking:   head.Rankings,
				TailRanking:   next.Rankings,
				Statements:    seg,
			}
			if !yield(path) {
				return false
			}
			continue
		}

		seg = append(seg, next.Stmts...)
		if !walk(head, next, seg, yield) {
			return false
		}
	}
	return true
}

// clone copies s so a branch's own tail never aliases a sibling branch's —
// DFS backtracking across cur.Succs depends on that isolation.
func clone(s []verifyir.Stmt) []verifyir.Stmt {
	out := make([]verifyir.Stmt, len(s))
	copy(out, s)
	return out
}
