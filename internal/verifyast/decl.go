package verifyast

import "github.com/orizon-lang/orizon-verify/internal/position"

// TypeExpr names a type as written in source: an atomic keyword, a
// declared struct name, or an array of one of those with an optional
// compile-time-constant length (spec.md §6: array length is a compile-time
// constant for locals, unspecified for parameters).
type TypeExpr struct {
	Name      string // "int" | "float" | "bool" | a struct name
	IsArray   bool
	ArrayLen  int  // -1 (verifytypes.UnknownLength) if unspecified
	HasLength bool
}

// Param is one function/predicate parameter.
type Param struct {
	Name string
	Type TypeExpr
	Span position.Span
}

// Contract is the `/*@ ... */` clause set attached to a function
// definition (spec.md §6): zero or more requires, an optional decreases,
// zero or more ensures.
type Contract struct {
	Requires  []Expr
	Decreases []Expr // ranking-function terms; empty if `decreases` absent
	Ensures   []Expr
}

// FunctionDecl is a top-level function definition: contract + signature +
// body.
type FunctionDecl struct {
	Name     string
	Params   []Param
	Returns  []TypeExpr // empty for a void function
	Contract Contract
	Body     *BlockStmt
	Span     position.Span
}

// StructDecl is a top-level struct definition; fields are atomic
// (spec.md §6).
type StructDecl struct {
	Name   string
	Fields []Param
	Span   position.Span
}

// PredicateDecl is a top-level predicate definition: `predicate P(params)
// = body;`. Predicates carry no CFG — their body is a single Pred tree.
type PredicateDecl struct {
	Name   string
	Params []Param
	Body   Expr
	Span   position.Span
}

// Program is a sequence of top-level definitions in source order
// (spec.md §6).
type Program struct {
	Functions  []*FunctionDecl
	Structs    []*StructDecl
	Predicates []*PredicateDecl

	// VersionPragma is the file's own `//@ orizon-verify: <constraint>`
	// header, or "" if the file declares none and defers to the project
	// config's default (internal/verifyversion).
	VersionPragma string
}
