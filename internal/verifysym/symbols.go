// Package verifysym implements the variable model and symbol environment
// of spec.md §3/§4.B: a nested scope stack of local variables plus flat,
// cross-kind-checked top-level tables for functions, structs and
// predicates.
package verifysym

import (
	"fmt"

	"github.com/orizon-lang/orizon-verify/internal/verifytypes"
)

// VarKind discriminates the disjoint sum of spec.md §3 "Variables".
type VarKind int

const (
	VarLocal VarKind = iota
	VarStruct
	VarMember
	VarQuantified
)

// QuantSort restricts QuantifiedVariable to the three logical sorts a
// predicate quantifier may range over.
type QuantSort int

const (
	SortBool QuantSort = iota
	SortInt
	SortReal
)

// Variable is the common view over the four variable forms. AlphaName is
// filled in by the renamer once the variable's defining occurrence is
// processed by the CFG builder (spec.md §3 "α-renaming" / §9); until then
// it equals SourceName.
type Variable struct {
	Kind       VarKind
	SourceName string // as written by the user, kept for diagnostics
	AlphaName  string // globally unique within the enclosing function

	Type *verifytypes.Type // nil for VarStruct (transient, erased by the flattener)

	// VarStruct only: ordered member sub-variables, in struct declaration
	// order. Erased once the struct flattener runs (spec.md §4.F).
	Members []*Variable

	// VarMember only: the struct-typed variable this member belongs to.
	Owner *Variable

	// VarQuantified only.
	Sort QuantSort
}

func NewLocal(name string, t *verifytypes.Type) *Variable {
	return &Variable{Kind: VarLocal, SourceName: name, AlphaName: name, Type: t}
}

func NewStruct(name string, structType *verifytypes.Type) *Variable {
	v := &Variable{Kind: VarStruct, SourceName: name, AlphaName: name}
	v.Members = make([]*Variable, len(structType.Members))
	for i, m := range structType.Members {
		mv := &Variable{Kind: VarMember, SourceName: m.Name, AlphaName: m.Name, Type: m.Type, Owner: v}
		v.Members[i] = mv
	}
	return v
}

func NewQuantified(name string, sort QuantSort) *Variable {
	return &Variable{Kind: VarQuantified, SourceName: name, AlphaName: name, Sort: sort}
}

// Renamer produces globally-fresh alpha names within one function, per
// spec.md §9: "a monotonic counter per function produces globally fresh
// variable names at every definition site."
type Renamer struct {
	counter int
}

// Rename assigns v a fresh AlphaName derived from its source name.
func (r *Renamer) Rename(v *Variable) {
	r.counter++
	v.AlphaName = fmt.Sprintf("%s$%d", v.SourceName, r.counter)
}

// Reset starts a fresh counter for a new function, matching the teacher's
// per-function reset of value/block counters in HIRToMIRTransformer.
func (r *Renamer) Reset() { r.counter = 0 }

// scope is one frame of the nested scope stack: pushed at function entry
// and at each nested statement block, popped on exit.
type scope struct {
	vars map[string]*Variable
}

// Env is the symbol environment: a scope stack of locals plus the three
// flat, cross-kind-checked top-level tables.
type Env struct {
	frames []*scope

	names     map[string]NameKind // cross-kind collision guard
	functions map[string]*FuncSig
	structs   map[string]*verifytypes.Type
	predicates map[string]*PredSig
}

// NameKind is the top-level namespace a name has been claimed under.
type NameKind int

const (
	NameFunction NameKind = iota
	NameStruct
	NamePredicate
)

// FuncSig is what the environment remembers about a declared function.
type FuncSig struct {
	Name    string
	Params  []*Variable
	Returns []*Variable
	Type    *verifytypes.Type
}

// PredSig is what the environment remembers about a declared predicate.
type PredSig struct {
	Name   string
	Params []*Variable
	Type   *verifytypes.Type
}

func NewEnv() *Env {
	e := &Env{
		names:      make(map[string]NameKind),
		functions:  make(map[string]*FuncSig),
		structs:    make(map[string]*verifytypes.Type),
		predicates: make(map[string]*PredSig),
	}
	e.Push()
	return e
}

// Push opens a new local scope frame (function entry or block entry).
func (e *Env) Push() {
	e.frames = append(e.frames, &scope{vars: make(map[string]*Variable)})
}

// Pop closes the innermost local scope frame.
func (e *Env) Pop() {
	if len(e.frames) == 0 {
		panic("verifysym: Pop on empty scope stack")
	}
	e.frames = e.frames[:len(e.frames)-1]
}

// Declare adds v to the current (innermost) frame. It reports whether the
// declaration succeeded; false means the name already exists in this exact
// frame (a DuplicateName in the caller's terms — the caller has the span).
func (e *Env) Declare(v *Variable) bool {
	top := e.frames[len(e.frames)-1]
	if _, exists := top.vars[v.SourceName]; exists {
		return false
	}
	top.vars[v.SourceName] = v
	return true
}

// Resolve searches frames innermost-first, outermost-last, per spec.md
// §4.B. It does not see the top-level function/struct/predicate tables —
// those are separate namespaces resolved via
// LookupFunction/LookupStruct/LookupPredicate — nor \result, which is its
// own grammar production (verifyast.Result) resolved directly by
// verifyexpr.Lowering.ReturnVar rather than through the scope stack.
func (e *Env) Resolve(name string) (*Variable, bool) {
	for i := len(e.frames) - 1; i >= 0; i-- {
		if v, ok := e.frames[i].vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// DeclareFunction registers fn in the top-level namespace, rejecting a
// name already claimed by a struct or predicate.
func (e *Env) DeclareFunction(fn *FuncSig) bool {
	if !e.claimName(fn.Name, NameFunction) {
		return false
	}
	e.functions[fn.Name] = fn
	return true
}

func (e *Env) DeclareStructName(name string, t *verifytypes.Type) bool {
	if !e.claimName(name, NameStruct) {
		return false
	}
	e.structs[name] = t
	return true
}

func (e *Env) DeclarePredicate(pred *PredSig) bool {
	if !e.claimName(pred.Name, NamePredicate) {
		return false
	}
	e.predicates[pred.Name] = pred
	return true
}

func (e *Env) claimName(name string, kind NameKind) bool {
	if _, exists := e.names[name]; exists {
		return false
	}
	e.names[name] = kind
	return true
}

func (e *Env) LookupFunction(name string) (*FuncSig, bool) {
	fn, ok := e.functions[name]
	return fn, ok
}

func (e *Env) LookupStruct(name string) (*verifytypes.Type, bool) {
	t, ok := e.structs[name]
	return t, ok
}

func (e *Env) LookupPredicate(name string) (*PredSig, bool) {
	p, ok := e.predicates[name]
	return p, ok
}
