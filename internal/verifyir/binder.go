package verifyir

import "github.com/orizon-lang/orizon-verify/internal/verifyexpr"
import "github.com/orizon-lang/orizon-verify/internal/verifysym"

// Binder implements spec.md §4.E: rewriting \old(·) occurrences in a
// postcondition or loop invariant/variant into references to ghost
// snapshot variables, and materializing the snapshot assignments on the
// cut block the annotation is attached to. Each cut block owns its own
// snapshot namespace, since \old inside a postcondition means "at
// function entry" while \old inside a given loop's invariant means "at
// that loop head", not the same state.
type Binder struct {
	snapshots map[*Block]map[*verifysym.Variable]*verifysym.Variable
}

func (bd *Binder) snapshot(block *Block, key *verifysym.Variable, read verifyexpr.ExprNode) *verifysym.Variable {
	if bd.snapshots == nil {
		bd.snapshots = make(map[*Block]map[*verifysym.Variable]*verifysym.Variable)
	}
	m := bd.snapshots[block]
	if m == nil {
		m = make(map[*verifysym.Variable]*verifysym.Variable)
		bd.snapshots[block] = m
	}
	if sv, ok := m[key]; ok {
		return sv
	}
	sv := verifysym.NewLocal(key.SourceName+"$old", key.Type)
	m[key] = sv
	block.GhostAssigns = append(block.GhostAssigns, &Assign{LHS: sv, RHS: read})
	return sv
}

// BindPred rewrites every \old within p, attaching the ghost snapshots it
// needs to block, and returns the rewritten tree.
func (bd *Binder) BindPred(block *Block, p verifyexpr.PredNode) verifyexpr.PredNode {
	switch n := p.(type) {
	case *verifyexpr.POld:
		return bd.snapshotPred(block, n.X)
	case *verifyexpr.PCmp:
		return &verifyexpr.PCmp{Sp: n.Sp, Op: n.Op, L: bd.BindTerm(block, n.L), R: bd.BindTerm(block, n.R)}
	case *verifyexpr.PApp:
		args := make([]verifyexpr.TermNode, len(n.Args))
		for i, a := range n.Args {
			args[i] = bd.BindTerm(block, a)
		}
		return &verifyexpr.PApp{Sp: n.Sp, Pred: n.Pred, Args: args}
	case *verifyexpr.PConj:
		n.L, n.R = bd.BindPred(block, n.L), bd.BindPred(block, n.R)
		return n
	case *verifyexpr.PDisj:
		n.L, n.R = bd.BindPred(block, n.L), bd.BindPred(block, n.R)
		return n
	case *verifyexpr.PImpl:
		n.L, n.R = bd.BindPred(block, n.L), bd.BindPred(block, n.R)
		return n
	case *verifyexpr.PIff:
		n.L, n.R = bd.BindPred(block, n.L), bd.BindPred(block, n.R)
		return n
	case *verifyexpr.PXor:
		n.L, n.R = bd.BindPred(block, n.L), bd.BindPred(block, n.R)
		return n
	case *verifyexpr.PNeg:
		n.X = bd.BindPred(block, n.X)
		return n
	case *verifyexpr.PQuant:
		n.Body = bd.BindPred(block, n.Body)
		return n
	default:
		return p // PTrue, PFalse, PGuard: no nested \old possible
	}
}

// BindTerm is BindPred's counterpart for the ranking-function language
// (decreases/loop variant), which may itself reference \old in principle.
func (bd *Binder) BindTerm(block *Block, t verifyexpr.TermNode) verifyexpr.TermNode {
	switch n := t.(type) {
	case *verifyexpr.TOld:
		return bd.snapshotTerm(block, n.X)
	case *verifyexpr.TUnary:
		n.X = bd.BindTerm(block, n.X)
		return n
	case *verifyexpr.TBinary:
		n.L, n.R = bd.BindTerm(block, n.L), bd.BindTerm(block, n.R)
		return n
	case *verifyexpr.TCall:
		for i := range n.Args {
			n.Args[i] = bd.BindTerm(block, n.Args[i])
		}
		return n
	case *verifyexpr.TLength:
		n.Arr = bd.BindTerm(block, n.Arr)
		return n
	case *verifyexpr.TArrayUpdate:
		n.Base = bd.BindTerm(block, n.Base)
		n.Idx = bd.BindTerm(block, n.Idx)
		n.Val = bd.BindTerm(block, n.Val)
		return n
	default:
		return t // TVar, TConst, TMember, TResult
	}
}

// snapshotPred walks below a \old marker, rewriting every free variable
// reference it finds into its snapshot. Since predicates carry terms
// rather than variables directly, the actual rewriting happens in
// snapshotTerm; snapshotPred just recurses through the connectives a term
// could be nested under.
func (bd *Binder) snapshotPred(block *Block, p verifyexpr.PredNode) verifyexpr.PredNode {
	switch n := p.(type) {
	case *verifyexpr.PCmp:
		return &verifyexpr.PCmp{Sp: n.Sp, Op: n.Op, L: bd.snapshotTerm(block, n.L), R: bd.snapshotTerm(block, n.R)}
	case *verifyexpr.PApp:
		args := make([]verifyexpr.TermNode, len(n.Args))
		for i, a := range n.Args {
			args[i] = bd.snapshotTerm(block, a)
		}
		return &verifyexpr.PApp{Sp: n.Sp, Pred: n.Pred, Args: args}
	case *verifyexpr.PConj:
		return &verifyexpr.PConj{Sp: n.Sp, L: bd.snapshotPred(block, n.L), R: bd.snapshotPred(block, n.R)}
	case *verifyexpr.PDisj:
		return &verifyexpr.PDisj{Sp: n.Sp, L: bd.snapshotPred(block, n.L), R: bd.snapshotPred(block, n.R)}
	case *verifyexpr.PImpl:
		return &verifyexpr.PImpl{Sp: n.Sp, L: bd.snapshotPred(block, n.L), R: bd.snapshotPred(block, n.R)}
	case *verifyexpr.PIff:
		return &verifyexpr.PIff{Sp: n.Sp, L: bd.snapshotPred(block, n.L), R: bd.snapshotPred(block, n.R)}
	case *verifyexpr.PXor:
		return &verifyexpr.PXor{Sp: n.Sp, L: bd.snapshotPred(block, n.L), R: bd.snapshotPred(block, n.R)}
	case *verifyexpr.PNeg:
		return &verifyexpr.PNeg{Sp: n.Sp, X: bd.snapshotPred(block, n.X)}
	case *verifyexpr.PQuant:
		return &verifyexpr.PQuant{Sp: n.Sp, Kind: n.Kind, Binders: n.Binders, Body: bd.snapshotPred(block, n.Body)}
	case *verifyexpr.POld:
		return bd.snapshotPred(block, n.X) // nested \old already collapsed at lowering time
	default:
		return p
	}
}

func (bd *Binder) snapshotTerm(block *Block, t verifyexpr.TermNode) verifyexpr.TermNode {
	switch n := t.(type) {
	case *verifyexpr.TVar:
		sv := bd.snapshot(block, n.Var, &verifyexpr.EVar{Sp: n.Sp, Var: n.Var})
		return &verifyexpr.TVar{Sp: n.Sp, Var: sv}
	case *verifyexpr.TMember:
		sv := bd.snapshot(block, n.Member, &verifyexpr.EMember{Sp: n.Sp, Struct: n.Struct, Member: n.Member})
		return &verifyexpr.TVar{Sp: n.Sp, Var: sv}
	case *verifyexpr.TUnary:
		return &verifyexpr.TUnary{Sp: n.Sp, Op: n.Op, X: bd.snapshotTerm(block, n.X), T: n.T}
	case *verifyexpr.TBinary:
		return &verifyexpr.TBinary{Sp: n.Sp, Op: n.Op, L: bd.snapshotTerm(block, n.L), R: bd.snapshotTerm(block, n.R), T: n.T}
	case *verifyexpr.TCall:
		args := make([]verifyexpr.TermNode, len(n.Args))
		for i, a := range n.Args {
			args[i] = bd.snapshotTerm(block, a)
		}
		return &verifyexpr.TCall{Sp: n.Sp, Fn: n.Fn, Args: args, T: n.T}
	case *verifyexpr.TLength:
		return &verifyexpr.TLength{Sp: n.Sp, Arr: bd.snapshotTerm(block, n.Arr), T: n.T}
	case *verifyexpr.TArrayUpdate:
		return &verifyexpr.TArrayUpdate{
			Sp: n.Sp, Base: bd.snapshotTerm(block, n.Base), Idx: bd.snapshotTerm(block, n.Idx),
			Val: bd.snapshotTerm(block, n.Val), T: n.T,
		}
	case *verifyexpr.TOld:
		return bd.snapshotTerm(block, n.X) // nested \old already collapsed at lowering time
	default:
		return t // TConst, TResult: no variable to snapshot
	}
}
