package verifyversion

import "github.com/orizon-lang/orizon-verify/internal/verifyast"

// FeaturesUsed walks every contract, loop annotation, assertion, and
// predicate body in prog and reports which gated grammar features it
// exercises (deduplicated, first-seen order), so a Gate can reject a file
// that outruns this build's grammar before the IR builder ever sees it.
func FeaturesUsed(prog *verifyast.Program) []Feature {
	w := &featureWalker{seen: map[Feature]bool{}}
	for _, fn := range prog.Functions {
		for _, e := range fn.Contract.Requires {
			w.walkExpr(e)
		}
		for _, e := range fn.Contract.Decreases {
			w.walkExpr(e)
		}
		for _, e := range fn.Contract.Ensures {
			w.walkExpr(e)
		}
		w.walkStmt(fn.Body)
	}
	for _, pred := range prog.Predicates {
		w.walkExpr(pred.Body)
	}
	return w.list
}

type featureWalker struct {
	seen map[Feature]bool
	list []Feature
}

func (w *featureWalker) mark(f Feature) {
	if !w.seen[f] {
		w.seen[f] = true
		w.list = append(w.list, f)
	}
}

func (w *featureWalker) walkStmt(s verifyast.Stmt) {
	if s == nil {
		return
	}
	switch n := s.(type) {
	case *verifyast.BlockStmt:
		for _, st := range n.Stmts {
			w.walkStmt(st)
		}
	case *verifyast.ExprStmt:
		w.walkExpr(n.X)
	case *verifyast.Assign:
		w.walkExpr(n.Target)
		w.walkExpr(n.Value)
	case *verifyast.IfStmt:
		w.walkExpr(n.Cond)
		w.walkStmt(n.Then)
		if n.Else != nil {
			w.walkStmt(n.Else)
		}
	case *verifyast.WhileStmt:
		w.walkAnnotation(n.Annotation)
		w.walkExpr(n.Cond)
		w.walkStmt(n.Body)
	case *verifyast.DoWhileStmt:
		w.walkAnnotation(n.Annotation)
		w.walkStmt(n.Body)
		w.walkExpr(n.Cond)
	case *verifyast.ForStmt:
		w.walkAnnotation(n.Annotation)
		w.walkStmt(n.Init)
		w.walkExpr(n.Cond)
		w.walkStmt(n.Post)
		w.walkStmt(n.Body)
	case *verifyast.ReturnStmt:
		for _, e := range n.Values {
			w.walkExpr(e)
		}
	case *verifyast.AssertStmt:
		w.walkExpr(n.Pred)
	}
}

func (w *featureWalker) walkAnnotation(a verifyast.LoopAnnotation) {
	for _, e := range a.Invariants {
		w.walkExpr(e)
	}
	for _, e := range a.Variant {
		w.walkExpr(e)
	}
}

func (w *featureWalker) walkExpr(e verifyast.Expr) {
	if e == nil {
		return
	}
	switch n := e.(type) {
	case *verifyast.Call:
		for _, a := range n.Args {
			w.walkExpr(a)
		}
	case *verifyast.Index:
		w.walkExpr(n.Arr)
		w.walkExpr(n.Idx)
	case *verifyast.Field:
		w.walkExpr(n.X)
	case *verifyast.Unary:
		w.walkExpr(n.X)
	case *verifyast.Binary:
		w.walkExpr(n.L)
		w.walkExpr(n.R)
	case *verifyast.Chain:
		w.mark(FeatureChainedCompare)
		for _, o := range n.Operands {
			w.walkExpr(o)
		}
	case *verifyast.Old:
		w.walkExpr(n.X)
	case *verifyast.Length:
		w.mark(FeatureLength)
		w.walkExpr(n.Arr)
	case *verifyast.ArrayUpdate:
		w.mark(FeatureArrayUpdate)
		w.walkExpr(n.Base)
		w.walkExpr(n.Idx)
		w.walkExpr(n.Val)
	case *verifyast.Quant:
		w.mark(FeatureQuantifiers)
		w.walkExpr(n.Body)
	case *verifyast.Impl:
		w.walkExpr(n.L)
		w.walkExpr(n.R)
	case *verifyast.Iff:
		w.walkExpr(n.L)
		w.walkExpr(n.R)
	case *verifyast.Xor:
		w.walkExpr(n.L)
		w.walkExpr(n.R)
	}
}
