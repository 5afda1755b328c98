package verifyast

import "github.com/orizon-lang/orizon-verify/internal/position"

// Stmt is any statement-level syntax node fed to the CFG builder
// (spec.md §4.D).
type Stmt interface {
	Span() position.Span
	stmtNode()
}

type sbase struct{ Sp position.Span }

func (b sbase) Span() position.Span { return b.Sp }
func (sbase) stmtNode()             {}

// SetSpan mirrors base.SetSpan for statement nodes; see its doc comment.
func (b *sbase) SetSpan(sp position.Span) { b.Sp = sp }

// EmptyStmt is a bare `;`.
type EmptyStmt struct{ sbase }

// ExprStmt is an expression evaluated for effect and discarded (only
// function calls have any effect in this side-effect-free language, so in
// practice this is always a call statement).
type ExprStmt struct {
	sbase
	X Expr
}

// Assign covers all three assignment forms; the node kind of Target
// (Ident, Index or Field) distinguishes `x = e` / `a[i] = e` / `s.f = e`.
type Assign struct {
	sbase
	Target Expr // Ident, Index, or Field
	Value  Expr
}

type IfStmt struct {
	sbase
	Cond       Expr
	Then       *BlockStmt
	Else       *BlockStmt // nil if no else clause
}

// LoopAnnotation carries a loop's invariants and optional variant,
// attached to the LoopHeadBlock synthesized for the loop (spec.md §4.E).
type LoopAnnotation struct {
	Invariants []Expr
	Variant    []Expr // ranking-function terms; empty if `loop variant` absent
}

type WhileStmt struct {
	sbase
	Annotation LoopAnnotation
	Cond       Expr
	Body       *BlockStmt
}

// DoWhileStmt: the first iteration bypasses the test (spec.md §4.D).
type DoWhileStmt struct {
	sbase
	Annotation LoopAnnotation
	Body       *BlockStmt
	Cond       Expr
}

// ForStmt: Init lowers before the loop head, Post lowers just before the
// back-edge (spec.md §4.D).
type ForStmt struct {
	sbase
	Annotation LoopAnnotation
	Init       Stmt // may be nil
	Cond       Expr // may be nil (treated as \true)
	Post       Stmt // may be nil
	Body       *BlockStmt
}

type BreakStmt struct{ sbase }
type ContinueStmt struct{ sbase }

// ReturnStmt: Values is empty for a void return.
type ReturnStmt struct {
	sbase
	Values []Expr
}

// AssertStmt is a statement-position `assert pred;` inside an annotation
// comment.
type AssertStmt struct {
	sbase
	Pred Expr
}

// BlockStmt pushes a new symbol scope on entry, pops it on exit
// (spec.md §4.D "Block").
type BlockStmt struct {
	sbase
	Stmts []Stmt
}
