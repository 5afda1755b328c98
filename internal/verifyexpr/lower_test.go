package verifyexpr

import (
	"testing"

	"github.com/orizon-lang/orizon-verify/internal/verifyast"
	"github.com/orizon-lang/orizon-verify/internal/verifyerrors"
	"github.com/orizon-lang/orizon-verify/internal/verifysym"
	"github.com/orizon-lang/orizon-verify/internal/verifytypes"
)

func newLowering() (*Lowering, *verifytypes.Registry) {
	reg := verifytypes.NewRegistry()
	env := verifysym.NewEnv()
	return &Lowering{Reg: reg, Env: env}, reg
}

func errKind(t *testing.T, err error) verifyerrors.Kind {
	t.Helper()
	ve, ok := err.(*verifyerrors.Error)
	if !ok {
		t.Fatalf("expected *verifyerrors.Error, got %T (%v)", err, err)
	}
	return ve.Kind
}

func TestLowerExprArithmeticAndComparison(t *testing.T) {
	lo, reg := newLowering()
	x := verifysym.NewLocal("x", reg.Int)
	lo.Env.Declare(x)

	e := &verifyast.Binary{Op: "+", L: &verifyast.Ident{Name: "x"}, R: &verifyast.IntLit{Value: 1}}
	n, err := lo.LowerExpr(e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Type() != reg.Int {
		t.Errorf("x+1 should have type int")
	}

	cmp := &verifyast.Binary{Op: "<", L: &verifyast.Ident{Name: "x"}, R: &verifyast.IntLit{Value: 1}}
	cn, err := lo.LowerExpr(cmp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cn.Type() != reg.Bool {
		t.Errorf("x<1 should have type bool")
	}
}

func TestLowerExprUnknownIdentifier(t *testing.T) {
	lo, _ := newLowering()
	_, err := lo.LowerExpr(&verifyast.Ident{Name: "missing"})
	if err == nil || errKind(t, err) != verifyerrors.KindUnknownName {
		t.Fatalf("want UnknownName, got %v", err)
	}
}

func TestLowerExprCallWithZeroReturnsIsIllegalInValuePosition(t *testing.T) {
	lo, _ := newLowering()
	lo.Env.DeclareFunction(&verifysym.FuncSig{Name: "log", Params: nil, Returns: nil})

	_, err := lo.LowerExpr(&verifyast.Binary{
		Op: "+",
		L:  &verifyast.Call{Callee: "log"},
		R:  &verifyast.IntLit{Value: 1},
	})
	if err == nil || errKind(t, err) != verifyerrors.KindTypeMismatch {
		t.Fatalf("want TypeMismatch for void call in value position, got %v", err)
	}
}

func TestLowerExprCallAcceptsStructArgumentByFlatteningMembers(t *testing.T) {
	lo, reg := newLowering()
	pointType, _ := reg.DeclareStruct("Point", []verifytypes.Member{
		{Name: "x", Type: reg.Int}, {Name: "y", Type: reg.Int},
	})
	lo.Env.DeclareFunction(&verifysym.FuncSig{
		Name:    "sum",
		Params:  []*verifysym.Variable{verifysym.NewStruct("p", pointType)},
		Returns: []*verifysym.Variable{verifysym.NewLocal("\\result", reg.Int)},
	})
	q := verifysym.NewStruct("q", pointType)
	lo.Env.Declare(q)

	n, err := lo.LowerExpr(&verifyast.Call{Callee: "sum", Args: []verifyast.Expr{&verifyast.Ident{Name: "q"}}})
	if err != nil {
		t.Fatalf("passing a struct-typed local as a call argument should be legal, got: %v", err)
	}
	call, ok := n.(*ECall)
	if !ok {
		t.Fatalf("expected *ECall, got %T", n)
	}
	if len(call.Args) != 2 {
		t.Fatalf("expected the struct argument to flatten to 2 members, got %d", len(call.Args))
	}
	for i, want := range q.Members {
		v, ok := call.Args[i].(*EVar)
		if !ok || v.Var != want {
			t.Errorf("arg %d should be the flattened member %s, got %+v", i, want.SourceName, call.Args[i])
		}
	}
}

func TestLowerExprBareStructIdentOutsideCallOrReturnIsTypeMismatch(t *testing.T) {
	lo, reg := newLowering()
	pointType, _ := reg.DeclareStruct("Point", []verifytypes.Member{
		{Name: "x", Type: reg.Int}, {Name: "y", Type: reg.Int},
	})
	q := verifysym.NewStruct("q", pointType)
	lo.Env.Declare(q)

	_, err := lo.LowerExpr(&verifyast.Ident{Name: "q"})
	if err == nil || errKind(t, err) != verifyerrors.KindTypeMismatch {
		t.Fatalf("a bare struct value outside a return/call-argument position must be TypeMismatch, not an internal invariant, got %v", err)
	}
}

func TestLowerExprCallArgumentStructShapeMismatchIsTypeMismatch(t *testing.T) {
	lo, reg := newLowering()
	pointType, _ := reg.DeclareStruct("Point", []verifytypes.Member{
		{Name: "x", Type: reg.Int}, {Name: "y", Type: reg.Int},
	})
	lineType, _ := reg.DeclareStruct("Line", []verifytypes.Member{
		{Name: "len", Type: reg.Int},
	})
	lo.Env.DeclareFunction(&verifysym.FuncSig{
		Name:    "sum",
		Params:  []*verifysym.Variable{verifysym.NewStruct("p", pointType)},
		Returns: []*verifysym.Variable{verifysym.NewLocal("\\result", reg.Int)},
	})
	l := verifysym.NewStruct("l", lineType)
	lo.Env.Declare(l)

	_, err := lo.LowerExpr(&verifyast.Call{Callee: "sum", Args: []verifyast.Expr{&verifyast.Ident{Name: "l"}}})
	if err == nil || errKind(t, err) != verifyerrors.KindTypeMismatch {
		t.Fatalf("passing a differently-shaped struct should be TypeMismatch, got %v", err)
	}
}

func TestLowerExprRejectsAnnotationOnlyForms(t *testing.T) {
	lo, _ := newLowering()
	_, err := lo.LowerExpr(&verifyast.Result{})
	if err == nil || errKind(t, err) != verifyerrors.KindIllegalAnnotationForm {
		t.Fatalf("want IllegalAnnotationForm for \\result in an executable expression, got %v", err)
	}
}

func TestLowerTermResultOutsidePostconditionIsIllegal(t *testing.T) {
	lo, _ := newLowering()
	_, err := lo.LowerTerm(&verifyast.Result{})
	if err == nil || errKind(t, err) != verifyerrors.KindIllegalAnnotationForm {
		t.Fatalf("want IllegalAnnotationForm, got %v", err)
	}
}

func TestLowerTermResultAtomicResolves(t *testing.T) {
	lo, reg := newLowering()
	lo.AllowResult = true
	lo.ReturnVar = verifysym.NewLocal("\\result", reg.Int)

	n, err := lo.LowerTerm(&verifyast.Result{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Type() != reg.Int {
		t.Errorf("\\result should carry the return variable's type")
	}
}

func TestLowerTermResultStructIsAmbiguousUnlessMemberSelected(t *testing.T) {
	lo, reg := newLowering()
	pointType, _ := reg.DeclareStruct("Point", []verifytypes.Member{
		{Name: "x", Type: reg.Int}, {Name: "y", Type: reg.Int},
	})
	lo.AllowResult = true
	lo.ReturnVar = verifysym.NewStruct("\\result", pointType)

	_, err := lo.LowerTerm(&verifyast.Result{})
	if err == nil || errKind(t, err) != verifyerrors.KindAmbiguousResult {
		t.Fatalf("want AmbiguousResult for bare struct \\result, got %v", err)
	}

	// \result.x must still resolve, since Field lowering goes through the
	// synthesized member variables directly rather than through \result.
	lo.Env.Declare(lo.ReturnVar)
	fieldNode, err := lo.LowerTerm(&verifyast.Field{X: &verifyast.Ident{Name: "\\result"}, Name: "x"})
	if err != nil {
		t.Fatalf("unexpected error selecting \\result.x: %v", err)
	}
	if fieldNode.Type() != reg.Int {
		t.Errorf("\\result.x should have type int")
	}
}

func TestLowerTermCallAcceptsStructArgumentByFlatteningMembers(t *testing.T) {
	lo, reg := newLowering()
	pointType, _ := reg.DeclareStruct("Point", []verifytypes.Member{
		{Name: "x", Type: reg.Int}, {Name: "y", Type: reg.Int},
	})
	lo.Env.DeclareFunction(&verifysym.FuncSig{
		Name:    "sum",
		Params:  []*verifysym.Variable{verifysym.NewStruct("p", pointType)},
		Returns: []*verifysym.Variable{verifysym.NewLocal("\\result", reg.Int)},
	})
	q := verifysym.NewStruct("q", pointType)
	lo.Env.Declare(q)

	n, err := lo.LowerTerm(&verifyast.Call{Callee: "sum", Args: []verifyast.Expr{&verifyast.Ident{Name: "q"}}})
	if err != nil {
		t.Fatalf("a struct-typed term argument to a user function should be legal, got: %v", err)
	}
	call, ok := n.(*TCall)
	if !ok {
		t.Fatalf("expected *TCall, got %T", n)
	}
	if len(call.Args) != 2 {
		t.Fatalf("expected the struct argument to flatten to 2 members, got %d", len(call.Args))
	}
	for i, want := range q.Members {
		v, ok := call.Args[i].(*TVar)
		if !ok || v.Var != want {
			t.Errorf("arg %d should be the flattened member %s, got %+v", i, want.SourceName, call.Args[i])
		}
	}
}

func TestLowerPredApplicationAcceptsStructArgumentByFlatteningMembers(t *testing.T) {
	lo, reg := newLowering()
	pointType, _ := reg.DeclareStruct("Point", []verifytypes.Member{
		{Name: "x", Type: reg.Int}, {Name: "y", Type: reg.Int},
	})
	lo.Env.DeclarePredicate(&verifysym.PredSig{
		Name:   "onAxis",
		Params: []*verifysym.Variable{verifysym.NewStruct("p", pointType)},
	})
	q := verifysym.NewStruct("q", pointType)
	lo.Env.Declare(q)

	n, err := lo.LowerPred(&verifyast.Call{Callee: "onAxis", Args: []verifyast.Expr{&verifyast.Ident{Name: "q"}}})
	if err != nil {
		t.Fatalf("a struct-typed term argument to a predicate application should be legal, got: %v", err)
	}
	app, ok := n.(*PApp)
	if !ok {
		t.Fatalf("expected *PApp, got %T", n)
	}
	if len(app.Args) != 2 {
		t.Fatalf("expected the struct argument to flatten to 2 members, got %d", len(app.Args))
	}
}

func TestLowerTermBareStructIdentOutsideCallIsTypeMismatchNotAmbiguousResult(t *testing.T) {
	lo, reg := newLowering()
	pointType, _ := reg.DeclareStruct("Point", []verifytypes.Member{
		{Name: "x", Type: reg.Int}, {Name: "y", Type: reg.Int},
	})
	q := verifysym.NewStruct("q", pointType)
	lo.Env.Declare(q)

	_, err := lo.LowerTerm(&verifyast.Ident{Name: "q"})
	if err == nil || errKind(t, err) != verifyerrors.KindTypeMismatch {
		t.Fatalf("a bare struct term outside a call argument must be TypeMismatch, not AmbiguousResult (that's reserved for \\result), got %v", err)
	}
}

func TestLowerTermOldNestedCollapses(t *testing.T) {
	lo, reg := newLowering()
	lo.AllowOld = true
	x := verifysym.NewLocal("x", reg.Int)
	lo.Env.Declare(x)

	nested := &verifyast.Old{X: &verifyast.Old{X: &verifyast.Ident{Name: "x"}}}
	n, err := lo.LowerTerm(nested)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	old, ok := n.(*TOld)
	if !ok {
		t.Fatalf("expected a single TOld wrapper, got %T", n)
	}
	if _, isOld := old.X.(*TOld); isOld {
		t.Error("nested \\old must collapse to a single wrapper (outer wins)")
	}
}

func TestLowerTermOldOutsideScopeIsIllegal(t *testing.T) {
	lo, reg := newLowering()
	x := verifysym.NewLocal("x", reg.Int)
	lo.Env.Declare(x)
	_, err := lo.LowerTerm(&verifyast.Old{X: &verifyast.Ident{Name: "x"}})
	if err == nil || errKind(t, err) != verifyerrors.KindIllegalAnnotationForm {
		t.Fatalf("want IllegalAnnotationForm, got %v", err)
	}
}

func TestLowerTermLengthRequiresArray(t *testing.T) {
	lo, reg := newLowering()
	arr := verifysym.NewLocal("a", reg.GetArray(reg.Int, verifytypes.UnknownLength))
	lo.Env.Declare(arr)

	n, err := lo.LowerTerm(&verifyast.Length{Arr: &verifyast.Ident{Name: "a"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Type() != reg.Int {
		t.Error("\\length must have type int")
	}

	x := verifysym.NewLocal("x", reg.Int)
	lo.Env.Declare(x)
	_, err = lo.LowerTerm(&verifyast.Length{Arr: &verifyast.Ident{Name: "x"}})
	if err == nil || errKind(t, err) != verifyerrors.KindTypeMismatch {
		t.Fatalf("want TypeMismatch for \\length of a non-array, got %v", err)
	}
}

func TestLowerPredCallToFunctionIsIllegal(t *testing.T) {
	lo, reg := newLowering()
	lo.Env.DeclareFunction(&verifysym.FuncSig{
		Name:    "abs",
		Params:  []*verifysym.Variable{verifysym.NewLocal("n", reg.Int)},
		Returns: []*verifysym.Variable{verifysym.NewLocal("\\result", reg.Int)},
	})
	_, err := lo.LowerPred(&verifyast.Call{Callee: "abs", Args: []verifyast.Expr{&verifyast.IntLit{Value: 1}}})
	if err == nil || errKind(t, err) != verifyerrors.KindIllegalAnnotationForm {
		t.Fatalf("want IllegalAnnotationForm for function call in predicate body, got %v", err)
	}
}

func TestLowerPredSelfReferenceIsUnknown(t *testing.T) {
	lo, reg := newLowering()
	// Mirrors spec.md §8 scenario 5: a predicate's own body is lowered
	// before the predicate is registered, so a self-call is UnknownName;
	// the enforcement point is call-site registration order in verifyir,
	// this test exercises LowerPred's half of that contract directly.
	_, err := lo.LowerPred(&verifyast.Call{Callee: "evenLen", Args: []verifyast.Expr{&verifyast.IntLit{Value: 1}}})
	_ = reg
	if err == nil || errKind(t, err) != verifyerrors.KindUnknownName {
		t.Fatalf("want UnknownName for an unregistered self-reference, got %v", err)
	}
}

func TestLowerPredChainedComparisonSharesInteriorTerm(t *testing.T) {
	lo, reg := newLowering()
	a := verifysym.NewLocal("a", reg.Int)
	b := verifysym.NewLocal("b", reg.Int)
	c := verifysym.NewLocal("c", reg.Int)
	lo.Env.Declare(a)
	lo.Env.Declare(b)
	lo.Env.Declare(c)

	chain := &verifyast.Chain{
		Operands: []verifyast.Expr{&verifyast.Ident{Name: "a"}, &verifyast.Ident{Name: "b"}, &verifyast.Ident{Name: "c"}},
		Ops:      []string{"<", "<"},
	}
	n, err := lo.LowerPred(chain)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	conj, ok := n.(*PConj)
	if !ok {
		t.Fatalf("expected a PConj, got %T", n)
	}
	left, ok := conj.L.(*PCmp)
	if !ok {
		t.Fatalf("expected left conjunct to be a PCmp, got %T", conj.L)
	}
	right, ok := conj.R.(*PCmp)
	if !ok {
		t.Fatalf("expected right conjunct to be a PCmp, got %T", conj.R)
	}
	if left.R.(*TVar).Var != right.L.(*TVar).Var {
		t.Error("the shared interior operand b must be the same variable on both sides")
	}
}

func TestLowerPredQuantifierRejectedInExecutableExpression(t *testing.T) {
	lo, _ := newLowering()
	q := &verifyast.Quant{Kind: verifyast.Forall, Binders: []verifyast.Binder{{Name: "i", Sort: "int"}}, Body: &verifyast.TrueLit{}}
	_, err := lo.LowerExpr(q)
	if err == nil || errKind(t, err) != verifyerrors.KindIllegalAnnotationForm {
		t.Fatalf("want IllegalAnnotationForm for a quantifier in an executable expression, got %v", err)
	}
}

func TestLowerPredQuantifierBindsFreshVariable(t *testing.T) {
	lo, reg := newLowering()
	arr := verifysym.NewLocal("a", reg.GetArray(reg.Int, verifytypes.UnknownLength))
	lo.Env.Declare(arr)

	q := &verifyast.Quant{
		Kind:    verifyast.Forall,
		Binders: []verifyast.Binder{{Name: "i", Sort: "int"}},
		Body: &verifyast.Binary{
			Op: "<",
			L:  &verifyast.Ident{Name: "i"},
			R:  &verifyast.Length{Arr: &verifyast.Ident{Name: "a"}},
		},
	}
	n, err := lo.LowerPred(q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pq, ok := n.(*PQuant)
	if !ok {
		t.Fatalf("expected PQuant, got %T", n)
	}
	if pq.Kind != verifyast.Forall {
		t.Error("quantifier kind must survive lowering")
	}
	if len(pq.Binders) != 1 || pq.Binders[0].Sort != verifysym.SortInt {
		t.Error("binder i must be bound with sort int")
	}
	if _, stillVisible := lo.Env.Resolve("i"); stillVisible {
		t.Error("the quantifier binder must not leak into the enclosing scope")
	}
}
