package verifyexpr

import (
	"strconv"

	"github.com/orizon-lang/orizon-verify/internal/position"
	"github.com/orizon-lang/orizon-verify/internal/verifyast"
	"github.com/orizon-lang/orizon-verify/internal/verifyerrors"
	"github.com/orizon-lang/orizon-verify/internal/verifysym"
	"github.com/orizon-lang/orizon-verify/internal/verifytypes"
)

// Lowering holds the shared state of the three mutually recursive
// visitors: a type registry, a symbol environment, and the annotation
// context flags that decide which \old/\result/quantifier forms are
// legal at the current point (spec.md §4.C).
type Lowering struct {
	Reg *verifytypes.Registry
	Env *verifysym.Env

	// AllowResult/AllowOld mirror spec.md §4.C: \result is only legal while
	// lowering a postcondition; \old while lowering a postcondition or a
	// loop invariant/variant.
	AllowResult bool
	AllowOld    bool

	// ReturnVar is the (possibly struct) return variable \result denotes,
	// nil for a void function.
	ReturnVar *verifysym.Variable

	insideOld bool // nested \old collapses to the outermost occurrence
}

// LowerExpr type-checks e as an executable expression.
func (lo *Lowering) LowerExpr(e verifyast.Expr) (ExprNode, error) {
	switch n := e.(type) {
	case *verifyast.Ident:
		v, ok := lo.Env.Resolve(n.Name)
		if !ok {
			return nil, verifyerrors.UnknownName(n.Sp, n.Name)
		}
		if v.Kind == verifysym.VarStruct {
			// A bare struct-typed name reaches here only when it is used
			// somewhere other than a return value or a call argument
			// (both handled before ever calling LowerExpr on the struct
			// Ident itself, see lowerReturn and LowerCallArgs) — a source
			// error, not a front-end bug, since the grammar has no way to
			// project a struct into a scalar expression directly.
			return nil, verifyerrors.TypeMismatch(n.Sp, "scalar value", "whole-struct value "+n.Name)
		}
		return &EVar{Sp: n.Sp, Var: v}, nil

	case *verifyast.IntLit:
		return &EConst{Sp: n.Sp, Kind: ConstInt, Int: n.Value, T: lo.Reg.Int}, nil
	case *verifyast.FloatLit:
		return &EConst{Sp: n.Sp, Kind: ConstFloat, Float: n.Value, T: lo.Reg.Float}, nil
	case *verifyast.BoolLit:
		return &EConst{Sp: n.Sp, Kind: ConstBool, Bool: n.Value, T: lo.Reg.Bool}, nil

	case *verifyast.Call:
		return lo.lowerCallExpr(n)

	case *verifyast.Index:
		return lo.lowerIndex(n)

	case *verifyast.Field:
		return lo.lowerFieldExpr(n)

	case *verifyast.Unary:
		return lo.lowerUnaryExpr(n)

	case *verifyast.Binary:
		return lo.lowerBinaryExpr(n)

	case *verifyast.Chain:
		return lo.lowerChainExpr(n)

	case *verifyast.Result, *verifyast.Old, *verifyast.Length, *verifyast.ArrayUpdate,
		*verifyast.Quant, *verifyast.Impl, *verifyast.Iff, *verifyast.Xor,
		*verifyast.TrueLit, *verifyast.FalseLit:
		return nil, verifyerrors.IllegalAnnotationForm(e.Span(), "this form is only legal inside an annotation, not an executable expression")

	default:
		return nil, verifyerrors.InternalInvariant(e.Span(), "unhandled expression node in LowerExpr")
	}
}

func (lo *Lowering) lowerCallExpr(n *verifyast.Call) (ExprNode, error) {
	fn, ok := lo.Env.LookupFunction(n.Callee)
	if !ok {
		if _, isPred := lo.Env.LookupPredicate(n.Callee); isPred {
			return nil, verifyerrors.IllegalAnnotationForm(n.Sp, "predicate "+n.Callee+" cannot be called from an executable expression")
		}
		return nil, verifyerrors.UnknownName(n.Sp, n.Callee)
	}
	if len(n.Args) != len(fn.Params) {
		return nil, verifyerrors.TypeMismatch(n.Sp, strconv.Itoa(len(fn.Params))+" argument(s)", strconv.Itoa(len(n.Args))+" argument(s)")
	}
	args, err := lo.LowerCallArgs(fn.Params, n.Args)
	if err != nil {
		return nil, err
	}
	if len(fn.Returns) == 0 {
		return nil, verifyerrors.TypeMismatch(n.Sp, "a value", "void (call to "+n.Callee+" used in value position)")
	}
	return &ECall{Sp: n.Sp, Fn: fn, Args: args, T: fn.Returns[0].Type}, nil
}

// resolveStructArg validates that argument expression a names a declared
// struct variable whose members line up 1:1 with dst's (dst is the
// callee's unflattened struct-typed parameter). This is the
// call-argument counterpart of lowerReturn's struct-return handling
// (verifyir/builder.go) — the grammar has no struct-literal form, so
// naming a variable is the only way to pass a struct value anywhere.
func (lo *Lowering) resolveStructArg(a verifyast.Expr, dst *verifysym.Variable) (*verifysym.Variable, error) {
	id, ok := a.(*verifyast.Ident)
	if !ok {
		return nil, verifyerrors.IllegalAnnotationForm(a.Span(), "a struct-typed argument must name a declared struct variable")
	}
	sv, ok := lo.Env.Resolve(id.Name)
	if !ok {
		return nil, verifyerrors.UnknownName(id.Sp, id.Name)
	}
	if sv.Kind != verifysym.VarStruct || len(sv.Members) != len(dst.Members) {
		return nil, verifyerrors.TypeMismatch(a.Span(), "matching struct type", "mismatched struct shape")
	}
	for i, dm := range dst.Members {
		if sv.Members[i].Type != dm.Type {
			return nil, verifyerrors.TypeMismatch(a.Span(), dm.Type.String(), sv.Members[i].Type.String())
		}
	}
	return sv, nil
}

// LowerCallArgs lowers a call's argument expressions against the callee's
// declared (pre-flatten) parameter list, expanding any struct-typed
// argument into one ExprNode per member in place — the executable
// side of the same struct-by-name-only rule resolveStructArg documents.
// Callers (lowerCallExpr here, verifyir.lowerExprStmt for a bare call
// statement) are expected to have already checked len(argExprs) ==
// len(params).
func (lo *Lowering) LowerCallArgs(params []*verifysym.Variable, argExprs []verifyast.Expr) ([]ExprNode, error) {
	var args []ExprNode
	for i, a := range argExprs {
		p := params[i]
		if p.Kind == verifysym.VarStruct {
			sv, err := lo.resolveStructArg(a, p)
			if err != nil {
				return nil, err
			}
			for _, m := range sv.Members {
				args = append(args, &EVar{Sp: a.Span(), Var: m})
			}
			continue
		}
		lowered, err := lo.LowerExpr(a)
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

func (lo *Lowering) lowerIndex(n *verifyast.Index) (ExprNode, error) {
	id, ok := n.Arr.(*verifyast.Ident)
	if !ok {
		return nil, verifyerrors.IllegalAnnotationForm(n.Sp, "array subscript base must be a declared array variable")
	}
	v, ok := lo.Env.Resolve(id.Name)
	if !ok {
		return nil, verifyerrors.UnknownName(id.Sp, id.Name)
	}
	if v.Type == nil || v.Type.Kind != verifytypes.KindArray {
		return nil, verifyerrors.TypeMismatch(n.Sp, "array", typeName(v.Type))
	}
	idx, err := lo.LowerExpr(n.Idx)
	if err != nil {
		return nil, err
	}
	if idx.Type() != lo.Reg.Int {
		return nil, verifyerrors.TypeMismatch(n.Idx.Span(), "int", idx.Type().String())
	}
	return &ESubscript{Sp: n.Sp, Arr: v, Idx: idx, T: v.Type.Elem}, nil
}

func (lo *Lowering) resolveMember(x verifyast.Expr, name string, span position.Span) (*verifysym.Variable, *verifysym.Variable, error) {
	id, ok := x.(*verifyast.Ident)
	if !ok {
		return nil, nil, verifyerrors.IllegalAnnotationForm(span, "member access base must be a struct-typed variable")
	}
	v, ok := lo.Env.Resolve(id.Name)
	if !ok {
		return nil, nil, verifyerrors.UnknownName(id.Sp, id.Name)
	}
	if v.Kind != verifysym.VarStruct {
		return nil, nil, verifyerrors.TypeMismatch(span, "struct", typeName(v.Type))
	}
	for _, m := range v.Members {
		if m.SourceName == name {
			return v, m, nil
		}
	}
	return nil, nil, verifyerrors.UnknownName(span, id.Name+"."+name)
}

func (lo *Lowering) lowerFieldExpr(n *verifyast.Field) (ExprNode, error) {
	sv, mv, err := lo.resolveMember(n.X, n.Name, n.Sp)
	if err != nil {
		return nil, err
	}
	return &EMember{Sp: n.Sp, Struct: sv, Member: mv}, nil
}

func (lo *Lowering) lowerUnaryExpr(n *verifyast.Unary) (ExprNode, error) {
	x, err := lo.LowerExpr(n.X)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case "-":
		if x.Type() != lo.Reg.Int && x.Type() != lo.Reg.Float {
			return nil, verifyerrors.TypeMismatch(n.Sp, "int or float", x.Type().String())
		}
		return &EUnary{Sp: n.Sp, Op: n.Op, X: x, T: x.Type()}, nil
	case "!":
		if x.Type() != lo.Reg.Bool {
			return nil, verifyerrors.TypeMismatch(n.Sp, "bool", x.Type().String())
		}
		return &EUnary{Sp: n.Sp, Op: n.Op, X: x, T: lo.Reg.Bool}, nil
	default:
		return nil, verifyerrors.InternalInvariant(n.Sp, "unknown unary operator "+n.Op)
	}
}

func (lo *Lowering) lowerBinaryExpr(n *verifyast.Binary) (ExprNode, error) {
	l, err := lo.LowerExpr(n.L)
	if err != nil {
		return nil, err
	}
	r, err := lo.LowerExpr(n.R)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case "+", "-", "*", "/":
		if l.Type() != r.Type() || (l.Type() != lo.Reg.Int && l.Type() != lo.Reg.Float) {
			return nil, verifyerrors.TypeMismatch(n.Sp, "matching int or float operands", l.Type().String()+" and "+r.Type().String())
		}
		return &EBinary{Sp: n.Sp, Op: n.Op, L: l, R: r, T: l.Type()}, nil
	case "%":
		if l.Type() != lo.Reg.Int || r.Type() != lo.Reg.Int {
			return nil, verifyerrors.TypeMismatch(n.Sp, "int", l.Type().String()+" and "+r.Type().String())
		}
		return &EBinary{Sp: n.Sp, Op: n.Op, L: l, R: r, T: lo.Reg.Int}, nil
	case "<", "<=", ">", ">=":
		if l.Type() != r.Type() || (l.Type() != lo.Reg.Int && l.Type() != lo.Reg.Float) {
			return nil, verifyerrors.TypeMismatch(n.Sp, "matching int or float operands", l.Type().String()+" and "+r.Type().String())
		}
		return &EBinary{Sp: n.Sp, Op: n.Op, L: l, R: r, T: lo.Reg.Bool}, nil
	case "==", "!=":
		if l.Type() != r.Type() {
			return nil, verifyerrors.TypeMismatch(n.Sp, l.Type().String(), r.Type().String())
		}
		return &EBinary{Sp: n.Sp, Op: n.Op, L: l, R: r, T: lo.Reg.Bool}, nil
	case "&&", "||":
		if l.Type() != lo.Reg.Bool || r.Type() != lo.Reg.Bool {
			return nil, verifyerrors.TypeMismatch(n.Sp, "bool", l.Type().String()+" and "+r.Type().String())
		}
		return &EBinary{Sp: n.Sp, Op: n.Op, L: l, R: r, T: lo.Reg.Bool}, nil
	default:
		return nil, verifyerrors.InternalInvariant(n.Sp, "unknown binary operator "+n.Op)
	}
}

// lowerChainExpr desugars a<b<c into (a<b) && (b<c), sharing the interior
// operand `b` as a single lowered node rather than re-lowering it
// (spec.md §4.C edge case).
func (lo *Lowering) lowerChainExpr(n *verifyast.Chain) (ExprNode, error) {
	operands := make([]ExprNode, len(n.Operands))
	for i, o := range n.Operands {
		lowered, err := lo.LowerExpr(o)
		if err != nil {
			return nil, err
		}
		operands[i] = lowered
	}
	var result ExprNode
	for i, op := range n.Ops {
		cmp := &EBinary{Sp: n.Sp, Op: op, L: operands[i], R: operands[i+1]}
		if err := lo.typeCmp(cmp); err != nil {
			return nil, err
		}
		if result == nil {
			result = cmp
		} else {
			result = &EBinary{Sp: n.Sp, Op: "&&", L: result, R: cmp, T: lo.Reg.Bool}
		}
	}
	return result, nil
}

func (lo *Lowering) typeCmp(cmp *EBinary) error {
	if cmp.L.Type() != cmp.R.Type() || (cmp.L.Type() != lo.Reg.Int && cmp.L.Type() != lo.Reg.Float) {
		return verifyerrors.TypeMismatch(cmp.Sp, "matching int or float operands", cmp.L.Type().String()+" and "+cmp.R.Type().String())
	}
	cmp.T = lo.Reg.Bool
	return nil
}

func typeName(t *verifytypes.Type) string {
	if t == nil {
		return "struct"
	}
	return t.String()
}
