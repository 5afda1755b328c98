package verifyserver

import (
	"testing"

	"github.com/orizon-lang/orizon-verify/internal/verifyir"
	"github.com/orizon-lang/orizon-verify/internal/verifypath"
	"github.com/orizon-lang/orizon-verify/internal/verifysym"
	"github.com/orizon-lang/orizon-verify/internal/verifytypes"
)

func TestEncodeBasicPathProjectsShapeNotTrees(t *testing.T) {
	reg := verifytypes.NewRegistry()

	pre := &verifyir.Block{Handle: 0, Kind: verifyir.KindPrecondition}
	post := &verifyir.Block{Handle: 1, Kind: verifyir.KindPostcondition, Rankings: nil}

	n := verifysym.NewLocal("n", reg.Int)
	path := verifypath.BasicPath{
		Head: pre,
		Tail: post,
		Statements: []verifyir.Stmt{
			&verifyir.Assign{LHS: n},
			&verifyir.Assume{},
		},
	}

	wire := encodeBasicPath(path)
	if wire.HeadHandle != 0 || wire.TailHandle != 1 {
		t.Fatalf("handles = %d/%d, want 0/1", wire.HeadHandle, wire.TailHandle)
	}
	if wire.HeadKind != "precondition" || wire.TailKind != "postcondition" {
		t.Fatalf("kinds = %s/%s", wire.HeadKind, wire.TailKind)
	}
	if wire.IsBackEdge {
		t.Error("distinct head/tail blocks should not be reported as a back-edge")
	}
	if len(wire.Statements) != 2 {
		t.Fatalf("expected 2 rendered statements, got %d", len(wire.Statements))
	}
	if wire.Statements[0] != "assign n = <expr>" {
		t.Errorf("Statements[0] = %q, want the n assign rendering", wire.Statements[0])
	}
}

func TestEncodeBasicPathDetectsBackEdge(t *testing.T) {
	head := &verifyir.Block{Handle: 3, Kind: verifyir.KindLoopHead}
	path := verifypath.BasicPath{Head: head, Tail: head}

	if !encodeBasicPath(path).IsBackEdge {
		t.Error("Head == Tail should report as a back-edge")
	}
}
