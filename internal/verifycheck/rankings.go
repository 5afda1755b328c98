// Package verifycheck implements spec.md §4.H: the global consistency
// checks that run once a function's IR is fully built and flattened, before
// its basic paths are extracted.
package verifycheck

import (
	"github.com/orizon-lang/orizon-verify/internal/position"
	"github.com/orizon-lang/orizon-verify/internal/verifyerrors"
	"github.com/orizon-lang/orizon-verify/internal/verifyir"
)

// CheckRankingCardinality enforces spec.md §4.H: a function's ranking
// functions are either present, with the same arity, on every cut point
// (the precondition block and every loop head) or absent everywhere. A
// function may legitimately declare zero ranking functions — that just
// means no termination check is expected of it — but it may not declare
// one on its precondition and a different number (including zero) on a
// loop head, since the prover threads a single lexicographic measure
// through the whole function.
//
// Well-foundedness of the ranking terms themselves is left to the SMT
// backend; this check only ever looks at list lengths.
func CheckRankingCardinality(fn *verifyir.Function) *verifyerrors.Error {
	want := fn.RankingCardinality
	for _, blk := range fn.Blocks {
		if blk.Kind != verifyir.KindLoopHead {
			continue
		}
		if got := len(blk.Rankings); got != want {
			return verifyerrors.InconsistentRankings(position.Span{}, fn.Name, want, got)
		}
	}
	return nil
}

// CheckProgram runs every §4.H check over every function in prog, per
// spec.md §7's per-definition recovery policy: one function's ranking
// mismatch does not stop the others from being checked.
func CheckProgram(prog *verifyir.Program) *verifyerrors.List {
	var errs verifyerrors.List
	for _, fn := range prog.Functions {
		if err := CheckRankingCardinality(fn); err != nil {
			err.Def = fn.Name
			errs.Add(err)
		}
	}
	return &errs
}
