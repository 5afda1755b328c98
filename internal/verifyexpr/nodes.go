// Package verifyexpr implements spec.md §4.C: three mutually recursive
// lowering visitors that type-check a shared syntax tree (verifyast.Expr)
// into three parallel, disjoint IR trees — executable expressions, logical
// terms, and predicates — sharing no node kinds, so "a predicate appeared
// where an expression was required" is a construction-time impossibility
// (spec.md §9).
package verifyexpr

import (
	"github.com/orizon-lang/orizon-verify/internal/position"
	"github.com/orizon-lang/orizon-verify/internal/verifyast"
	"github.com/orizon-lang/orizon-verify/internal/verifysym"
	"github.com/orizon-lang/orizon-verify/internal/verifytypes"
)

// ExprNode is the executable-expression tree.
type ExprNode interface {
	Type() *verifytypes.Type
	Span() position.Span
	exprNode()
}

// TermNode is the logical-term tree.
type TermNode interface {
	Type() *verifytypes.Type
	Span() position.Span
	termNode()
}

// PredNode is the predicate tree. Predicates have no verifytypes.Type of
// their own (spec.md §3: "booleans are not terms"); they are the truth
// sub-language, not a value sub-language.
type PredNode interface {
	Span() position.Span
	predNode()
}

// ---- Executable expressions ----

type EVar struct {
	Sp  position.Span
	Var *verifysym.Variable
}

func (e *EVar) Type() *verifytypes.Type { return e.Var.Type }
func (e *EVar) Span() position.Span     { return e.Sp }
func (*EVar) exprNode()                 {}

// ConstKind discriminates a literal's atomic type without needing a
// pointer comparison against a registry that might not be in scope.
type ConstKind int

const (
	ConstInt ConstKind = iota
	ConstFloat
	ConstBool
)

type EConst struct {
	Sp    position.Span
	Kind  ConstKind
	Int   int64
	Float float64
	Bool  bool
	T     *verifytypes.Type
}

func (e *EConst) Type() *verifytypes.Type { return e.T }
func (e *EConst) Span() position.Span     { return e.Sp }
func (*EConst) exprNode()                 {}

type ECall struct {
	Sp   position.Span
	Fn   *verifysym.FuncSig
	Args []ExprNode
	T    *verifytypes.Type // element type of Fn.Returns[0]; nil if void
}

func (e *ECall) Type() *verifytypes.Type { return e.T }
func (e *ECall) Span() position.Span     { return e.Sp }
func (*ECall) exprNode()                 {}

type ESubscript struct {
	Sp  position.Span
	Arr *verifysym.Variable // the array-typed local/parameter
	Idx ExprNode
	T   *verifytypes.Type
}

func (e *ESubscript) Type() *verifytypes.Type { return e.T }
func (e *ESubscript) Span() position.Span     { return e.Sp }
func (*ESubscript) exprNode()                 {}

type EMember struct {
	Sp     position.Span
	Struct *verifysym.Variable // VarStruct
	Member *verifysym.Variable // VarMember, one of Struct.Members
}

func (e *EMember) Type() *verifytypes.Type { return e.Member.Type }
func (e *EMember) Span() position.Span     { return e.Sp }
func (*EMember) exprNode()                 {}

type EUnary struct {
	Sp position.Span
	Op string
	X  ExprNode
	T  *verifytypes.Type
}

func (e *EUnary) Type() *verifytypes.Type { return e.T }
func (e *EUnary) Span() position.Span     { return e.Sp }
func (*EUnary) exprNode()                 {}

type EBinary struct {
	Sp   position.Span
	Op   string
	L, R ExprNode
	T    *verifytypes.Type
}

func (e *EBinary) Type() *verifytypes.Type { return e.T }
func (e *EBinary) Span() position.Span     { return e.Sp }
func (*EBinary) exprNode()                 {}

// ---- Logical terms ----

type TVar struct {
	Sp  position.Span
	Var *verifysym.Variable
}

func (t *TVar) Type() *verifytypes.Type { return t.Var.Type }
func (t *TVar) Span() position.Span     { return t.Sp }
func (*TVar) termNode()                 {}

type TConst struct {
	Sp    position.Span
	Kind  ConstKind // ConstInt or ConstFloat only; booleans are not terms
	Int   int64
	Float float64
	T     *verifytypes.Type
}

func (t *TConst) Type() *verifytypes.Type { return t.T }
func (t *TConst) Span() position.Span     { return t.Sp }
func (*TConst) termNode()                 {}

type TCall struct {
	Sp   position.Span
	Fn   *verifysym.FuncSig
	Args []TermNode
	T    *verifytypes.Type
}

func (t *TCall) Type() *verifytypes.Type { return t.T }
func (t *TCall) Span() position.Span     { return t.Sp }
func (*TCall) termNode()                 {}

type TMember struct {
	Sp     position.Span
	Struct *verifysym.Variable
	Member *verifysym.Variable
}

func (t *TMember) Type() *verifytypes.Type { return t.Member.Type }
func (t *TMember) Span() position.Span     { return t.Sp }
func (*TMember) termNode()                 {}

type TUnary struct {
	Sp position.Span
	Op string
	X  TermNode
	T  *verifytypes.Type
}

func (t *TUnary) Type() *verifytypes.Type { return t.T }
func (t *TUnary) Span() position.Span     { return t.Sp }
func (*TUnary) termNode()                 {}

type TBinary struct {
	Sp   position.Span
	Op   string
	L, R TermNode
	T    *verifytypes.Type
}

func (t *TBinary) Type() *verifytypes.Type { return t.T }
func (t *TBinary) Span() position.Span     { return t.Sp }
func (*TBinary) termNode()                 {}

// TResult is \result, legal only inside a postcondition's term scope.
type TResult struct {
	Sp  position.Span
	Var *verifysym.Variable // the (atomic) return variable \result denotes
}

func (t *TResult) Type() *verifytypes.Type { return t.Var.Type }
func (t *TResult) Span() position.Span     { return t.Sp }
func (*TResult) termNode()                 {}

// TLength is \length(a) for an array-typed term.
type TLength struct {
	Sp  position.Span
	Arr TermNode
	T   *verifytypes.Type // always Int
}

func (t *TLength) Type() *verifytypes.Type { return t.T }
func (t *TLength) Span() position.Span     { return t.Sp }
func (*TLength) termNode()                 {}

// TOld is \old(t). The annotation binder (spec.md §4.E) rewrites the free
// variables inside X into their `$old` snapshot variables once the
// enclosing precondition/loop-head ghost assignments have been
// materialized; at lowering time X is simply the raw term.
type TOld struct {
	Sp position.Span
	X  TermNode
}

func (t *TOld) Type() *verifytypes.Type { return t.X.Type() }
func (t *TOld) Span() position.Span     { return t.Sp }
func (*TOld) termNode()                 {}

// TArrayUpdate is the functional update `{t \with [i] = v}`.
type TArrayUpdate struct {
	Sp             position.Span
	Base, Idx, Val TermNode
	T              *verifytypes.Type // == Base.Type()
}

func (t *TArrayUpdate) Type() *verifytypes.Type { return t.T }
func (t *TArrayUpdate) Span() position.Span     { return t.Sp }
func (*TArrayUpdate) termNode()                 {}

// ---- Predicates ----

type PTrue struct{ Sp position.Span }
type PFalse struct{ Sp position.Span }

func (p *PTrue) Span() position.Span  { return p.Sp }
func (*PTrue) predNode()              {}
func (p *PFalse) Span() position.Span { return p.Sp }
func (*PFalse) predNode()             {}

// PCmp is one relational comparison between two terms; a chained
// comparison desugars into a Conj of these (spec.md §4.C).
type PCmp struct {
	Sp   position.Span
	Op   string
	L, R TermNode
}

func (p *PCmp) Span() position.Span { return p.Sp }
func (*PCmp) predNode()             {}

// PApp is an application of a named predicate.
type PApp struct {
	Sp   position.Span
	Pred *verifysym.PredSig
	Args []TermNode
}

func (p *PApp) Span() position.Span { return p.Sp }
func (*PApp) predNode()             {}

type POld struct {
	Sp position.Span
	X  PredNode
}

func (p *POld) Span() position.Span { return p.Sp }
func (*POld) predNode()             {}

type PConj struct {
	Sp   position.Span
	L, R PredNode
}

func (p *PConj) Span() position.Span { return p.Sp }
func (*PConj) predNode()             {}

type PDisj struct {
	Sp   position.Span
	L, R PredNode
}

func (p *PDisj) Span() position.Span { return p.Sp }
func (*PDisj) predNode()             {}

type PImpl struct {
	Sp   position.Span
	L, R PredNode
}

func (p *PImpl) Span() position.Span { return p.Sp }
func (*PImpl) predNode()             {}

type PIff struct {
	Sp   position.Span
	L, R PredNode
}

func (p *PIff) Span() position.Span { return p.Sp }
func (*PIff) predNode()             {}

type PXor struct {
	Sp   position.Span
	L, R PredNode
}

func (p *PXor) Span() position.Span { return p.Sp }
func (*PXor) predNode()             {}

type PNeg struct {
	Sp position.Span
	X  PredNode
}

func (p *PNeg) Span() position.Span { return p.Sp }
func (*PNeg) predNode()             {}

type PQuant struct {
	Sp      position.Span
	Kind    verifyast.QuantKind
	Binders []*verifysym.Variable
	Body    PredNode
}

func (p *PQuant) Span() position.Span { return p.Sp }
func (*PQuant) predNode()             {}

// PGuard lifts a boolean-typed executable expression into predicate
// position, for use as a branch guard on a CFG edge (spec.md §4.D: "Edge
// current → thenBlock guarded by Assume(cond)"). Branch conditions live in
// the executable sub-language, not the annotation grammar, so this is the
// one predicate node allowed to hold an ExprNode; it never occurs inside a
// requires/ensures/invariant clause.
type PGuard struct {
	Sp   position.Span
	Cond ExprNode
	Neg  bool // true for the negated branch, Assume(¬cond)
}

func (p *PGuard) Span() position.Span { return p.Sp }
func (*PGuard) predNode()             {}
