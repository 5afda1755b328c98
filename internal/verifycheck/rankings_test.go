package verifycheck

import (
	"testing"

	"github.com/orizon-lang/orizon-verify/internal/verifyexpr"
	"github.com/orizon-lang/orizon-verify/internal/verifyir"
)

func rankings(n int) []verifyexpr.TermNode {
	return make([]verifyexpr.TermNode, n)
}

func TestCheckRankingCardinalityUniformPasses(t *testing.T) {
	pre := &verifyir.Block{Kind: verifyir.KindPrecondition, Rankings: rankings(1)}
	head := &verifyir.Block{Kind: verifyir.KindLoopHead, Rankings: rankings(1)}
	fn := &verifyir.Function{
		Name:               "countdown",
		Pre:                pre,
		Blocks:             []*verifyir.Block{pre, head},
		RankingCardinality: 1,
	}
	if err := CheckRankingCardinality(fn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckRankingCardinalityZeroEverywherePasses(t *testing.T) {
	pre := &verifyir.Block{Kind: verifyir.KindPrecondition}
	head := &verifyir.Block{Kind: verifyir.KindLoopHead}
	fn := &verifyir.Function{
		Name:               "sumTo",
		Pre:                pre,
		Blocks:             []*verifyir.Block{pre, head},
		RankingCardinality: 0,
	}
	if err := CheckRankingCardinality(fn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckRankingCardinalityMismatchFails(t *testing.T) {
	pre := &verifyir.Block{Kind: verifyir.KindPrecondition, Rankings: rankings(1)}
	head := &verifyir.Block{Kind: verifyir.KindLoopHead, Rankings: rankings(2)}
	fn := &verifyir.Function{
		Name:               "badMeasure",
		Pre:                pre,
		Blocks:             []*verifyir.Block{pre, head},
		RankingCardinality: 1,
	}
	if err := CheckRankingCardinality(fn); err == nil {
		t.Fatal("expected an InconsistentRankings error")
	}
}

func TestCheckRankingCardinalityMissingOnSecondLoopHeadFails(t *testing.T) {
	pre := &verifyir.Block{Kind: verifyir.KindPrecondition, Rankings: rankings(1)}
	head1 := &verifyir.Block{Kind: verifyir.KindLoopHead, Rankings: rankings(1)}
	head2 := &verifyir.Block{Kind: verifyir.KindLoopHead} // second loop forgot its variant
	fn := &verifyir.Function{
		Name:               "nestedLoops",
		Pre:                pre,
		Blocks:             []*verifyir.Block{pre, head1, head2},
		RankingCardinality: 1,
	}
	if err := CheckRankingCardinality(fn); err == nil {
		t.Fatal("expected the second loop head's missing ranking function to be flagged")
	}
}

func TestCheckProgramStampsDefAndKeepsCheckingOtherFunctions(t *testing.T) {
	good := &verifyir.Function{
		Name:               "good",
		Blocks:             []*verifyir.Block{{Kind: verifyir.KindLoopHead}},
		RankingCardinality: 0,
	}
	bad := &verifyir.Function{
		Name:               "bad",
		Blocks:             []*verifyir.Block{{Kind: verifyir.KindLoopHead, Rankings: rankings(1)}},
		RankingCardinality: 0,
	}

	errs := CheckProgram(&verifyir.Program{Functions: []*verifyir.Function{good, bad}})
	if !errs.HasErrors() {
		t.Fatal("expected the bad function to be reported")
	}
	if len(errs.Errs()) != 1 {
		t.Fatalf("expected exactly 1 error, got %d", len(errs.Errs()))
	}
	if errs.Errs()[0].Def != "bad" {
		t.Errorf("Def = %q, want %q", errs.Errs()[0].Def, "bad")
	}
}
