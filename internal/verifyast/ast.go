// Package verifyast is the minimal syntax-tree contract the concrete-syntax
// front end (lexing and parsing are explicitly out of scope, spec.md §1)
// hands to the lowering stages. One shared grammar of expression nodes
// covers both executable expressions and the annotation language's terms
// and predicates; verifyexpr decides, per lowering context, which node
// kinds are legal and what they mean.
package verifyast

import "github.com/orizon-lang/orizon-verify/internal/position"

// Expr is any node of the shared expression syntax.
type Expr interface {
	Span() position.Span
	exprNode()
}

type base struct{ Sp position.Span }

func (b base) Span() position.Span { return b.Sp }
func (base) exprNode()             {}

// SetSpan lets an external front end (internal/verifyparse) attach a real
// source position after constructing a node, since a keyed composite
// literal from outside this package can never name the unexported
// embedded base field directly.
func (b *base) SetSpan(sp position.Span) { b.Sp = sp }

// Ident references a variable, a nullary function/predicate application
// site is disambiguated from a bare identifier by parentheses, so a bare
// Ident is always a variable reference.
type Ident struct {
	base
	Name string
}

type IntLit struct {
	base
	Value int64
}

type FloatLit struct {
	base
	Value float64
}

type BoolLit struct {
	base
	Value bool
}

// Call covers both function calls (executable/term position) and
// predicate applications (predicate position); which is meant is decided
// by which lowering visitor processes it.
type Call struct {
	base
	Callee string
	Args   []Expr
}

// Index is array subscripting, `a[i]`. Legal only in executable
// expressions per spec.md §4.C ("terms ... adds ArrayUpdate" rather than
// subscript, and the grammar restricts arrays to declared variables).
type Index struct {
	base
	Arr Expr
	Idx Expr
}

// Field is struct member access, `s.field`.
type Field struct {
	base
	X    Expr
	Name string
}

type Unary struct {
	base
	Op string // "-", "!"
	X  Expr
}

type Binary struct {
	base
	Op   string // "+","-","*","/","%","<","<=",">",">=","==","!=","&&","||"
	L, R Expr
}

// Chain is a chained comparison `a ⊙1 b ⊙2 c ...`, desugared during
// lowering into a conjunction of adjacent comparisons sharing the
// interior operands (spec.md §4.C edge case).
type Chain struct {
	base
	Operands []Expr   // len(Operands) == len(Ops)+1
	Ops      []string // relational operators
}

// Result is \result. Legal only inside a postcondition's term scope.
type Result struct{ base }

// Old is \old(e). Legal only inside a postcondition or loop-invariant
// scope; nested \old collapses to the outermost occurrence (spec.md §4.C).
type Old struct {
	base
	X Expr
}

// Length is \length(a) for an array-typed term a.
type Length struct {
	base
	Arr Expr
}

// ArrayUpdate is the functional update term `{t \with [i] = v}`.
type ArrayUpdate struct {
	base
	Base, Idx, Val Expr
}

// QuantKind distinguishes universal from existential quantification.
type QuantKind int

const (
	Forall QuantKind = iota
	Exists
)

// Binder introduces one quantified variable and its logical sort.
type Binder struct {
	Name string
	Sort string // "bool" | "int" | "real"
}

// Quant is a quantifier over one of the three logical sorts, legal only
// in predicate position.
type Quant struct {
	base
	Kind    QuantKind
	Binders []Binder
	Body    Expr
}

// Predicate-only logical connectives that have no arithmetic/executable
// counterpart. Conj/Disj/Neg reuse Binary/Unary with Op "&&"/"||"/"!"
// when both operands are already predicates; Impl/Iff/Xor need dedicated
// nodes since they exist only in the predicate sub-language (spec.md
// §3 "Predicates").
type Impl struct {
	base
	L, R Expr
}

type Iff struct {
	base
	L, R Expr
}

type Xor struct {
	base
	L, R Expr
}

// TrueLit / FalseLit are the predicate-language nullary constants
// `\true` / `\false`, kept distinct from BoolLit so predicate lowering
// doesn't need to special-case a lifted boolean constant (spec.md §4.C:
// "Constant booleans have sort Bool in expressions and Pred in
// predicates via lifting" — TrueLit/FalseLit are what the annotation
// grammar actually emits for `\true`/`\false`, while BoolLit is what the
// executable-expression grammar emits for `true`/`false`).
type TrueLit struct{ base }
type FalseLit struct{ base }
