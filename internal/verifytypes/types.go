// Package verifytypes implements the type registry of spec.md §3/§4.A:
// canonical, interned atomic, array, function, predicate and struct types.
// Atomic, array, function and predicate types compare by structural
// identity (achieved here through interning, so `==` on a *Type is
// pointer equality); struct types compare nominally, by name, through the
// registry's struct table.
package verifytypes

import (
	"fmt"
	"strings"
)

// Kind discriminates the type variants of spec.md §3.
type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindBool
	KindArray
	KindStruct
	KindFun
	KindPred
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindArray:
		return "array"
	case KindStruct:
		return "struct"
	case KindFun:
		return "fun"
	case KindPred:
		return "pred"
	default:
		return "unknown"
	}
}

// UnknownLength marks an array whose length is not a compile-time
// constant (a declared array parameter, per spec.md §6).
const UnknownLength = -1

// Type is an interned, canonical type. Two *Type values denote the same
// type iff they are the same pointer — Registry is solely responsible for
// producing Type values, so nothing outside this package ever constructs
// one directly.
type Type struct {
	Kind Kind

	// KindArray
	Elem   *Type
	Length int // UnknownLength if unspecified

	// KindStruct
	StructName string
	Members    []Member // ordered, declaration order

	// KindFun / KindPred
	Returns []*Type // empty for KindPred and for void KindFun
	Params  []*Type
}

// Member is one scalar field of a struct, in declaration order.
type Member struct {
	Name string
	Type *Type // always atomic, per spec.md §3 invariant
}

func (t *Type) IsAtomic() bool {
	return t != nil && (t.Kind == KindInt || t.Kind == KindFloat || t.Kind == KindBool)
}

func (t *Type) String() string {
	switch t.Kind {
	case KindArray:
		if t.Length == UnknownLength {
			return fmt.Sprintf("%s[]", t.Elem)
		}
		return fmt.Sprintf("%s[%d]", t.Elem, t.Length)
	case KindStruct:
		return t.StructName
	case KindFun:
		return fmt.Sprintf("fun(%s) -> %s", joinTypes(t.Params), joinTypes(t.Returns))
	case KindPred:
		return fmt.Sprintf("pred(%s)", joinTypes(t.Params))
	default:
		return t.Kind.String()
	}
}

func joinTypes(ts []*Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}

// Registry interns every type produced during lowering, exposing the four
// constructors spec.md §4.A names. It also owns the struct table, since
// struct identity is nominal and must be looked up rather than interned
// structurally.
type Registry struct {
	Int   *Type
	Float *Type
	Bool  *Type

	arrays  map[arrayKey]*Type
	funs    map[string]*Type
	preds   map[string]*Type
	structs map[string]*Type // name -> KindStruct Type
}

type arrayKey struct {
	elem   *Type
	length int
}

// NewRegistry creates a registry with the three atomic singletons already
// interned.
func NewRegistry() *Registry {
	return &Registry{
		Int:     &Type{Kind: KindInt},
		Float:   &Type{Kind: KindFloat},
		Bool:    &Type{Kind: KindBool},
		arrays:  make(map[arrayKey]*Type),
		funs:    make(map[string]*Type),
		preds:   make(map[string]*Type),
		structs: make(map[string]*Type),
	}
}

// GetArray interns an array type. elem must be atomic (spec.md §3
// invariant); callers are expected to have already checked this during
// lowering, so a violation here is an internal error rather than a user
// error.
func (r *Registry) GetArray(elem *Type, length int) *Type {
	if !elem.IsAtomic() {
		panic("verifytypes: array element type must be atomic")
	}
	key := arrayKey{elem: elem, length: length}
	if t, ok := r.arrays[key]; ok {
		return t
	}
	t := &Type{Kind: KindArray, Elem: elem, Length: length}
	r.arrays[key] = t
	return t
}

// GetFun interns a function type by its structural signature.
func (r *Registry) GetFun(returns, params []*Type) *Type {
	key := signatureKey("fun", returns, params)
	if t, ok := r.funs[key]; ok {
		return t
	}
	t := &Type{Kind: KindFun, Returns: cloneTypes(returns), Params: cloneTypes(params)}
	r.funs[key] = t
	return t
}

// GetPred interns a predicate type by its parameter signature.
func (r *Registry) GetPred(params []*Type) *Type {
	key := signatureKey("pred", nil, params)
	if t, ok := r.preds[key]; ok {
		return t
	}
	t := &Type{Kind: KindPred, Params: cloneTypes(params)}
	r.preds[key] = t
	return t
}

// DeclareStruct registers a new struct layout by name. It fails (returns
// false) if the name is already taken, leaving DuplicateName detection to
// the caller, which has the source span.
func (r *Registry) DeclareStruct(name string, members []Member) (*Type, bool) {
	if _, exists := r.structs[name]; exists {
		return nil, false
	}
	for _, m := range members {
		if !m.Type.IsAtomic() {
			panic("verifytypes: struct member type must be atomic")
		}
	}
	t := &Type{Kind: KindStruct, StructName: name, Members: append([]Member(nil), members...)}
	r.structs[name] = t
	return t, true
}

// GetStruct looks up a struct type by name; nil if undeclared.
func (r *Registry) GetStruct(name string) *Type {
	return r.structs[name]
}

// Member looks up a member by name within a struct type, returning its
// declaration index alongside it so the struct flattener can preserve
// declaration order (spec.md §4.F.1).
func (t *Type) Member(name string) (Member, int, bool) {
	for i, m := range t.Members {
		if m.Name == name {
			return m, i, true
		}
	}
	return Member{}, -1, false
}

func cloneTypes(ts []*Type) []*Type {
	if ts == nil {
		return nil
	}
	return append([]*Type(nil), ts...)
}

func signatureKey(tag string, returns, params []*Type) string {
	var b strings.Builder
	b.WriteString(tag)
	b.WriteByte('(')
	for i, p := range params {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(fmt.Sprintf("%p", p))
	}
	b.WriteString(")->(")
	for i, rtn := range returns {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(fmt.Sprintf("%p", rtn))
	}
	b.WriteByte(')')
	return b.String()
}
