package verifyexpr

import (
	"github.com/orizon-lang/orizon-verify/internal/position"
	"github.com/orizon-lang/orizon-verify/internal/verifyast"
	"github.com/orizon-lang/orizon-verify/internal/verifyerrors"
	"github.com/orizon-lang/orizon-verify/internal/verifysym"
	"github.com/orizon-lang/orizon-verify/internal/verifytypes"
)

// LowerTerm type-checks e as a logical term: the arithmetic sub-language
// of the annotation grammar, extended with \result, \length, \old and the
// functional array-update form (spec.md §4.C).
func (lo *Lowering) LowerTerm(e verifyast.Expr) (TermNode, error) {
	switch n := e.(type) {
	case *verifyast.Ident:
		v, ok := lo.Env.Resolve(n.Name)
		if !ok {
			return nil, verifyerrors.UnknownName(n.Sp, n.Name)
		}
		if v.Kind == verifysym.VarStruct {
			// AmbiguousResult is reserved for bare \result of a
			// struct-returning function (lowerResult below); \result never
			// reaches this Ident case at all (it is its own AST node), so a
			// struct-typed name arriving here is some other illegal bare
			// use — everywhere legal (a call/predicate argument) is
			// special-cased in LowerTermCallArgs before LowerTerm is ever
			// called on the Ident.
			return nil, verifyerrors.TypeMismatch(n.Sp, "scalar value", "whole-struct value "+n.Name)
		}
		return &TVar{Sp: n.Sp, Var: v}, nil

	case *verifyast.IntLit:
		return &TConst{Sp: n.Sp, Kind: ConstInt, Int: n.Value, T: lo.Reg.Int}, nil
	case *verifyast.FloatLit:
		return &TConst{Sp: n.Sp, Kind: ConstFloat, Float: n.Value, T: lo.Reg.Float}, nil

	case *verifyast.BoolLit:
		return nil, verifyerrors.IllegalAnnotationForm(n.Sp, "booleans are not terms; use \\true/\\false in a predicate context")

	case *verifyast.Call:
		return lo.lowerCallTerm(n)

	case *verifyast.Field:
		return lo.lowerFieldTerm(n)

	case *verifyast.Unary:
		return lo.lowerUnaryTerm(n)

	case *verifyast.Binary:
		return lo.lowerBinaryTerm(n)

	case *verifyast.Result:
		return lo.lowerResult(n.Sp)

	case *verifyast.Old:
		return lo.lowerOldTerm(n)

	case *verifyast.Length:
		return lo.lowerLength(n)

	case *verifyast.ArrayUpdate:
		return lo.lowerArrayUpdate(n)

	case *verifyast.Index:
		return nil, verifyerrors.IllegalAnnotationForm(n.Sp, "array subscript is not a term form; use \\length or a functional update")

	default:
		return nil, verifyerrors.IllegalAnnotationForm(e.Span(), "this form is not a valid term")
	}
}

// lowerCallTerm handles a term-position call. Per spec.md §3, terms may
// call user functions (treated as pure) but not predicates; the open
// question over recursive term-level calls (§9) is resolved conservatively
// by requiring the callee to already be declared. A function's signature
// is registered before its contract is lowered, so a function may still
// name itself inside its own contract.
func (lo *Lowering) lowerCallTerm(n *verifyast.Call) (TermNode, error) {
	fn, ok := lo.Env.LookupFunction(n.Callee)
	if !ok {
		if _, isPred := lo.Env.LookupPredicate(n.Callee); isPred {
			return nil, verifyerrors.IllegalAnnotationForm(n.Sp, "predicate "+n.Callee+" cannot be called from a term; only user functions are callable here")
		}
		return nil, verifyerrors.UnknownName(n.Sp, n.Callee)
	}
	if len(n.Args) != len(fn.Params) {
		return nil, verifyerrors.TypeMismatch(n.Sp, "matching argument count", "mismatched argument count")
	}
	args, err := lo.LowerTermCallArgs(fn.Params, n.Args)
	if err != nil {
		return nil, err
	}
	if len(fn.Returns) != 1 {
		return nil, verifyerrors.TypeMismatch(n.Sp, "a single-valued function", n.Callee)
	}
	return &TCall{Sp: n.Sp, Fn: fn, Args: args, T: fn.Returns[0].Type}, nil
}

// LowerTermCallArgs is LowerCallArgs's term-position counterpart, used by
// lowerCallTerm above and lowerPredApp (lower_pred.go) for a predicate
// application's arguments. Struct-typed parameters expand to one TVar per
// member using the same resolveStructArg shape check LowerCallArgs uses.
func (lo *Lowering) LowerTermCallArgs(params []*verifysym.Variable, argExprs []verifyast.Expr) ([]TermNode, error) {
	var args []TermNode
	for i, a := range argExprs {
		p := params[i]
		if p.Kind == verifysym.VarStruct {
			sv, err := lo.resolveStructArg(a, p)
			if err != nil {
				return nil, err
			}
			for _, m := range sv.Members {
				args = append(args, &TVar{Sp: a.Span(), Var: m})
			}
			continue
		}
		lowered, err := lo.LowerTerm(a)
		if err != nil {
			return nil, err
		}
		if lowered.Type() != p.Type {
			return nil, verifyerrors.TypeMismatch(a.Span(), p.Type.String(), lowered.Type().String())
		}
		args = append(args, lowered)
	}
	return args, nil
}

func (lo *Lowering) lowerFieldTerm(n *verifyast.Field) (TermNode, error) {
	if _, isResult := n.X.(*verifyast.Result); isResult {
		if !lo.AllowResult || lo.ReturnVar == nil {
			return nil, verifyerrors.IllegalAnnotationForm(n.Sp, "\\result is only legal inside a postcondition of a non-void function")
		}
		if lo.ReturnVar.Kind != verifysym.VarStruct {
			return nil, verifyerrors.TypeMismatch(n.Sp, "struct", typeName(lo.ReturnVar.Type))
		}
		for _, m := range lo.ReturnVar.Members {
			if m.SourceName == n.Name {
				return &TMember{Sp: n.Sp, Struct: lo.ReturnVar, Member: m}, nil
			}
		}
		return nil, verifyerrors.UnknownName(n.Sp, "\\result."+n.Name)
	}
	sv, mv, err := lo.resolveMember(n.X, n.Name, n.Sp)
	if err != nil {
		return nil, err
	}
	return &TMember{Sp: n.Sp, Struct: sv, Member: mv}, nil
}

func (lo *Lowering) lowerUnaryTerm(n *verifyast.Unary) (TermNode, error) {
	if n.Op != "-" {
		return nil, verifyerrors.IllegalAnnotationForm(n.Sp, "'!' is not a term operator; negate a predicate instead")
	}
	x, err := lo.LowerTerm(n.X)
	if err != nil {
		return nil, err
	}
	if x.Type() != lo.Reg.Int && x.Type() != lo.Reg.Float {
		return nil, verifyerrors.TypeMismatch(n.Sp, "int or float", x.Type().String())
	}
	return &TUnary{Sp: n.Sp, Op: n.Op, X: x, T: x.Type()}, nil
}

func (lo *Lowering) lowerBinaryTerm(n *verifyast.Binary) (TermNode, error) {
	switch n.Op {
	case "+", "-", "*", "/", "%":
		l, err := lo.LowerTerm(n.L)
		if err != nil {
			return nil, err
		}
		r, err := lo.LowerTerm(n.R)
		if err != nil {
			return nil, err
		}
		if n.Op == "%" {
			if l.Type() != lo.Reg.Int || r.Type() != lo.Reg.Int {
				return nil, verifyerrors.TypeMismatch(n.Sp, "int", l.Type().String()+" and "+r.Type().String())
			}
			return &TBinary{Sp: n.Sp, Op: n.Op, L: l, R: r, T: lo.Reg.Int}, nil
		}
		if l.Type() != r.Type() || (l.Type() != lo.Reg.Int && l.Type() != lo.Reg.Float) {
			return nil, verifyerrors.TypeMismatch(n.Sp, "matching int or float operands", l.Type().String()+" and "+r.Type().String())
		}
		return &TBinary{Sp: n.Sp, Op: n.Op, L: l, R: r, T: l.Type()}, nil
	default:
		return nil, verifyerrors.IllegalAnnotationForm(n.Sp, "'"+n.Op+"' is a predicate-level operator, not a term operator")
	}
}

// lowerResult binds \result. Legal only inside a postcondition scope
// (AllowResult); the ambiguity rule (spec.md §4.E, decided in DESIGN.md) is
// fully decidable here from the raw return-type-list shape, before struct
// flattening ever runs:
//   - zero returns: \result is meaningless in a void function.
//   - one atomic return: resolves directly to that return variable.
//   - one struct return, referenced bare: AmbiguousResult — the caller
//     must select a member instead; lowerFieldTerm resolves `\result.field`
//     to that member of the synthetic struct return variable.
func (lo *Lowering) lowerResult(sp position.Span) (TermNode, error) {
	if !lo.AllowResult {
		return nil, verifyerrors.IllegalAnnotationForm(sp, "\\result is only legal inside a postcondition")
	}
	if lo.ReturnVar == nil {
		return nil, verifyerrors.IllegalAnnotationForm(sp, "\\result is not defined for a void function")
	}
	if lo.ReturnVar.Kind == verifysym.VarStruct {
		return nil, verifyerrors.AmbiguousResult(sp)
	}
	return &TResult{Sp: sp, Var: lo.ReturnVar}, nil
}

// lowerOldTerm rewrites the free variables of a nested \old to their entry
// snapshots later, in the annotation binder (spec.md §4.E); here it only
// enforces legality and the "outer \old wins" collapse rule (spec.md §4.C
// edge case) by suppressing re-wrapping while already inside one.
func (lo *Lowering) lowerOldTerm(n *verifyast.Old) (TermNode, error) {
	if !lo.AllowOld {
		return nil, verifyerrors.IllegalAnnotationForm(n.Sp, "\\old is only legal inside a postcondition or loop invariant")
	}
	if lo.insideOld {
		return lo.LowerTerm(n.X)
	}
	lo.insideOld = true
	x, err := lo.LowerTerm(n.X)
	lo.insideOld = false
	if err != nil {
		return nil, err
	}
	return &TOld{Sp: n.Sp, X: x}, nil
}

func (lo *Lowering) lowerLength(n *verifyast.Length) (TermNode, error) {
	arr, err := lo.LowerTerm(n.Arr)
	if err != nil {
		return nil, err
	}
	if arr.Type() == nil || arr.Type().Kind != verifytypes.KindArray {
		return nil, verifyerrors.TypeMismatch(n.Sp, "array", arr.Type().String())
	}
	return &TLength{Sp: n.Sp, Arr: arr, T: lo.Reg.Int}, nil
}

func (lo *Lowering) lowerArrayUpdate(n *verifyast.ArrayUpdate) (TermNode, error) {
	base, err := lo.LowerTerm(n.Base)
	if err != nil {
		return nil, err
	}
	if base.Type() == nil || base.Type().Kind != verifytypes.KindArray {
		return nil, verifyerrors.TypeMismatch(n.Base.Span(), "array", base.Type().String())
	}
	idx, err := lo.LowerTerm(n.Idx)
	if err != nil {
		return nil, err
	}
	if idx.Type() != lo.Reg.Int {
		return nil, verifyerrors.TypeMismatch(n.Idx.Span(), "int", idx.Type().String())
	}
	val, err := lo.LowerTerm(n.Val)
	if err != nil {
		return nil, err
	}
	if val.Type() != base.Type().Elem {
		return nil, verifyerrors.TypeMismatch(n.Val.Span(), base.Type().Elem.String(), val.Type().String())
	}
	return &TArrayUpdate{Sp: n.Sp, Base: base, Idx: idx, Val: val, T: base.Type()}, nil
}
