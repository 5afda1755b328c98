package verifyexpr

import (
	"github.com/orizon-lang/orizon-verify/internal/position"
	"github.com/orizon-lang/orizon-verify/internal/verifyast"
	"github.com/orizon-lang/orizon-verify/internal/verifyerrors"
	"github.com/orizon-lang/orizon-verify/internal/verifysym"
	"github.com/orizon-lang/orizon-verify/internal/verifytypes"
)

// LowerPred type-checks e as a predicate: the truth sub-language of the
// annotation grammar (spec.md §3 "Predicates"). Predicates may call other
// predicates and quantify over the three logical sorts; they never carry a
// verifytypes.Type of their own.
func (lo *Lowering) LowerPred(e verifyast.Expr) (PredNode, error) {
	switch n := e.(type) {
	case *verifyast.TrueLit:
		return &PTrue{Sp: n.Sp}, nil
	case *verifyast.FalseLit:
		return &PFalse{Sp: n.Sp}, nil

	case *verifyast.BoolLit:
		if n.Value {
			return &PTrue{Sp: n.Sp}, nil
		}
		return &PFalse{Sp: n.Sp}, nil

	case *verifyast.Binary:
		return lo.lowerBinaryPred(n)

	case *verifyast.Chain:
		return lo.lowerChainPred(n)

	case *verifyast.Unary:
		if n.Op != "!" {
			return nil, verifyerrors.IllegalAnnotationForm(n.Sp, "'-' is not a predicate operator")
		}
		x, err := lo.LowerPred(n.X)
		if err != nil {
			return nil, err
		}
		return &PNeg{Sp: n.Sp, X: x}, nil

	case *verifyast.Impl:
		l, err := lo.LowerPred(n.L)
		if err != nil {
			return nil, err
		}
		r, err := lo.LowerPred(n.R)
		if err != nil {
			return nil, err
		}
		return &PImpl{Sp: n.Sp, L: l, R: r}, nil

	case *verifyast.Iff:
		l, err := lo.LowerPred(n.L)
		if err != nil {
			return nil, err
		}
		r, err := lo.LowerPred(n.R)
		if err != nil {
			return nil, err
		}
		return &PIff{Sp: n.Sp, L: l, R: r}, nil

	case *verifyast.Xor:
		l, err := lo.LowerPred(n.L)
		if err != nil {
			return nil, err
		}
		r, err := lo.LowerPred(n.R)
		if err != nil {
			return nil, err
		}
		return &PXor{Sp: n.Sp, L: l, R: r}, nil

	case *verifyast.Call:
		return lo.lowerPredApp(n)

	case *verifyast.Old:
		return lo.lowerOldPred(n)

	case *verifyast.Quant:
		return lo.lowerQuant(n)

	default:
		return nil, verifyerrors.IllegalAnnotationForm(e.Span(), "this form is not a valid predicate")
	}
}

// lowerBinaryPred handles the relational comparisons (which lower to PCmp
// over terms) and the boolean connectives spelled as Binary("&&"/"||") by
// the shared grammar.
func (lo *Lowering) lowerBinaryPred(n *verifyast.Binary) (PredNode, error) {
	switch n.Op {
	case "<", "<=", ">", ">=", "==", "!=":
		l, err := lo.LowerTerm(n.L)
		if err != nil {
			return nil, err
		}
		r, err := lo.LowerTerm(n.R)
		if err != nil {
			return nil, err
		}
		if l.Type() != r.Type() {
			return nil, verifyerrors.TypeMismatch(n.Sp, l.Type().String(), r.Type().String())
		}
		return &PCmp{Sp: n.Sp, Op: n.Op, L: l, R: r}, nil
	case "&&":
		l, err := lo.LowerPred(n.L)
		if err != nil {
			return nil, err
		}
		r, err := lo.LowerPred(n.R)
		if err != nil {
			return nil, err
		}
		return &PConj{Sp: n.Sp, L: l, R: r}, nil
	case "||":
		l, err := lo.LowerPred(n.L)
		if err != nil {
			return nil, err
		}
		r, err := lo.LowerPred(n.R)
		if err != nil {
			return nil, err
		}
		return &PDisj{Sp: n.Sp, L: l, R: r}, nil
	default:
		return nil, verifyerrors.IllegalAnnotationForm(n.Sp, "'"+n.Op+"' cannot appear at predicate top level")
	}
}

// lowerChainPred desugars a chained comparison into a conjunction of
// adjacent PCmp atoms sharing the interior term (spec.md §4.C edge case),
// the predicate-position counterpart of lowerChainExpr.
func (lo *Lowering) lowerChainPred(n *verifyast.Chain) (PredNode, error) {
	operands := make([]TermNode, len(n.Operands))
	for i, o := range n.Operands {
		t, err := lo.LowerTerm(o)
		if err != nil {
			return nil, err
		}
		operands[i] = t
	}
	var result PredNode
	for i, op := range n.Ops {
		l, r := operands[i], operands[i+1]
		if l.Type() != r.Type() {
			return nil, verifyerrors.TypeMismatch(n.Sp, l.Type().String(), r.Type().String())
		}
		cmp := &PCmp{Sp: n.Sp, Op: op, L: l, R: r}
		if result == nil {
			result = cmp
		} else {
			result = &PConj{Sp: n.Sp, L: result, R: cmp}
		}
	}
	return result, nil
}

// lowerPredApp handles a Call in predicate position. A call to a function
// (rather than a declared predicate) is the canonical IllegalAnnotationForm
// case spec.md §7 names explicitly.
func (lo *Lowering) lowerPredApp(n *verifyast.Call) (PredNode, error) {
	pred, ok := lo.Env.LookupPredicate(n.Callee)
	if !ok {
		if _, isFn := lo.Env.LookupFunction(n.Callee); isFn {
			return nil, verifyerrors.IllegalAnnotationForm(n.Sp, "function "+n.Callee+" cannot be called from a predicate body; only predicates may")
		}
		return nil, verifyerrors.UnknownName(n.Sp, n.Callee)
	}
	if len(n.Args) != len(pred.Params) {
		return nil, verifyerrors.TypeMismatch(n.Sp, "matching argument count", "mismatched argument count")
	}
	args, err := lo.LowerTermCallArgs(pred.Params, n.Args)
	if err != nil {
		return nil, err
	}
	return &PApp{Sp: n.Sp, Pred: pred, Args: args}, nil
}

func (lo *Lowering) lowerOldPred(n *verifyast.Old) (PredNode, error) {
	if !lo.AllowOld {
		return nil, verifyerrors.IllegalAnnotationForm(n.Sp, "\\old is only legal inside a postcondition or loop invariant")
	}
	if lo.insideOld {
		return lo.LowerPred(n.X)
	}
	lo.insideOld = true
	x, err := lo.LowerPred(n.X)
	lo.insideOld = false
	if err != nil {
		return nil, err
	}
	return &POld{Sp: n.Sp, X: x}, nil
}

// lowerQuant binds fresh quantified variables into a scope pushed for the
// body only, per spec.md §4.B's ordinary nested-scope discipline.
func (lo *Lowering) lowerQuant(n *verifyast.Quant) (PredNode, error) {
	lo.Env.Push()
	defer lo.Env.Pop()

	binders := make([]*verifysym.Variable, len(n.Binders))
	for i, b := range n.Binders {
		sort, sortType, err := lo.quantSort(n.Sp, b.Sort)
		if err != nil {
			return nil, err
		}
		v := verifysym.NewQuantified(b.Name, sort)
		v.Type = sortType
		if !lo.Env.Declare(v) {
			return nil, verifyerrors.DuplicateName(n.Sp, b.Name)
		}
		binders[i] = v
	}

	body, err := lo.LowerPred(n.Body)
	if err != nil {
		return nil, err
	}

	return &PQuant{Sp: n.Sp, Kind: n.Kind, Binders: binders, Body: body}, nil
}

// quantSort maps a binder's written sort name to the internal QuantSort
// enum and, where the sort has an arithmetic counterpart, the registry
// type a term referencing the bound variable will carry.
func (lo *Lowering) quantSort(sp position.Span, name string) (verifysym.QuantSort, *verifytypes.Type, error) {
	switch name {
	case "bool":
		return verifysym.SortBool, lo.Reg.Bool, nil
	case "int":
		return verifysym.SortInt, lo.Reg.Int, nil
	case "real":
		return verifysym.SortReal, lo.Reg.Float, nil
	default:
		return 0, nil, verifyerrors.IllegalAnnotationForm(sp, "unknown quantifier sort "+name)
	}
}
