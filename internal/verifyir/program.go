package verifyir

import (
	"github.com/orizon-lang/orizon-verify/internal/position"
	"github.com/orizon-lang/orizon-verify/internal/verifyast"
	"github.com/orizon-lang/orizon-verify/internal/verifyerrors"
	"github.com/orizon-lang/orizon-verify/internal/verifysym"
	"github.com/orizon-lang/orizon-verify/internal/verifytypes"
)

// BuildProgram lowers a whole parsed program into its IR, applying spec.md
// §7's per-definition recovery policy: an error inside one definition
// discards that definition and processing moves on to the rest, so the
// caller sees as many diagnostics as possible in one pass rather than
// stopping at the first.
//
// Declaration order follows spec.md §3's lifecycle rule: structs first
// (struct members are atomic, so declaration order among structs never
// matters), then predicates in source order — a predicate's body is
// lowered before its own name is registered, so it can never call itself
// — then functions in source order. A function's *signature* is
// registered before its body is lowered (so a function may call itself),
// but the function is only added to the output if the body lowers
// cleanly; a function whose body fails after its signature was already
// registered still occupies its name for the rest of this pass, matching
// how a single bad definition is discarded without unwinding the whole
// symbol table.
func BuildProgram(prog *verifyast.Program, reg *verifytypes.Registry, env *verifysym.Env) (*Program, *verifyerrors.List) {
	out := &Program{}
	var errs verifyerrors.List

	for _, sd := range prog.Structs {
		if err := declareStruct(sd, reg, env); err != nil {
			err.Def = sd.Name
			errs.Add(err)
		}
	}

	b := NewBuilder(reg, env)

	for _, pd := range prog.Predicates {
		pred, err := b.BuildPredicate(pd)
		if err != nil {
			errs.Add(withDef(err, pd.Name))
			continue
		}
		sig := &verifysym.PredSig{
			Name:   pred.Name,
			Params: pred.Params,
			Type:   reg.GetPred(flattenTypes(pred.Params)),
		}
		if !env.DeclarePredicate(sig) {
			e := verifyerrors.DuplicateName(pd.Span, pd.Name)
			e.Def = pd.Name
			errs.Add(e)
			continue
		}
		FlattenPredicate(pred)
		out.Predicates = append(out.Predicates, pred)
	}

	for _, fd := range prog.Functions {
		params, returns, err := b.signatureVars(fd.Params, fd.Returns, fd.Span)
		if err != nil {
			err.Def = fd.Name
			errs.Add(err)
			continue
		}
		sig := &verifysym.FuncSig{
			Name:    fd.Name,
			Params:  params,
			Returns: returns,
			Type:    reg.GetFun(flattenTypes(returns), flattenTypes(params)),
		}
		if !env.DeclareFunction(sig) {
			e := verifyerrors.DuplicateName(fd.Span, fd.Name)
			e.Def = fd.Name
			errs.Add(e)
			continue
		}
		fn, buildErr := b.BuildFunction(fd)
		if buildErr != nil {
			errs.Add(withDef(buildErr, fd.Name))
			continue
		}
		Flatten(fn)
		out.Functions = append(out.Functions, fn)
	}

	return out, &errs
}

func declareStruct(sd *verifyast.StructDecl, reg *verifytypes.Registry, env *verifysym.Env) *verifyerrors.Error {
	members := make([]verifytypes.Member, len(sd.Fields))
	for i, f := range sd.Fields {
		ft, err := atomicFieldType(f.Type, f.Span, reg)
		if err != nil {
			return err
		}
		members[i] = verifytypes.Member{Name: f.Name, Type: ft}
	}
	st, ok := reg.DeclareStruct(sd.Name, members)
	if !ok {
		return verifyerrors.DuplicateName(sd.Span, sd.Name)
	}
	if !env.DeclareStructName(sd.Name, st) {
		return verifyerrors.DuplicateName(sd.Span, sd.Name)
	}
	return nil
}

// atomicFieldType resolves a struct field's declared type, rejecting
// anything non-atomic (spec.md §3 invariant: "struct members are atomic").
func atomicFieldType(t verifyast.TypeExpr, sp position.Span, reg *verifytypes.Registry) (*verifytypes.Type, *verifyerrors.Error) {
	if t.IsArray {
		return nil, verifyerrors.TypeMismatch(sp, "atomic struct field", "array")
	}
	switch t.Name {
	case "int":
		return reg.Int, nil
	case "float":
		return reg.Float, nil
	case "bool":
		return reg.Bool, nil
	default:
		return nil, verifyerrors.TypeMismatch(sp, "atomic struct field", t.Name)
	}
}

// signatureVars resolves a declared parameter/return-type list into fresh
// Variables carrying only type information, for registering a FuncSig
// before the function's body (and its own, separately-scoped parameter
// Variables) is built — this is what lets a function's body call itself.
func (b *Builder) signatureVars(params []verifyast.Param, returns []verifyast.TypeExpr, sp position.Span) ([]*verifysym.Variable, []*verifysym.Variable, *verifyerrors.Error) {
	ps := make([]*verifysym.Variable, len(params))
	for i, p := range params {
		pt, err := b.resolveType(p.Type, p.Span)
		if err != nil {
			return nil, nil, err.(*verifyerrors.Error)
		}
		ps[i] = signatureVar(p.Name, pt)
	}

	switch len(returns) {
	case 0:
		return ps, nil, nil
	case 1:
		rt, err := b.resolveType(returns[0], sp)
		if err != nil {
			return nil, nil, err.(*verifyerrors.Error)
		}
		return ps, []*verifysym.Variable{signatureVar("\\result", rt)}, nil
	default:
		return nil, nil, verifyerrors.InternalInvariant(sp, "function declared with more than one direct return value")
	}
}

// withDef stamps the enclosing definition's name onto an error for the
// §7 recovery report, tolerating the (never-expected) case of some other
// error type escaping a builder call.
func withDef(err error, def string) *verifyerrors.Error {
	ve, ok := err.(*verifyerrors.Error)
	if !ok {
		ve = verifyerrors.InternalInvariant(position.Span{}, err.Error())
	}
	ve.Def = def
	return ve
}

func signatureVar(name string, t *verifytypes.Type) *verifysym.Variable {
	if t.Kind == verifytypes.KindStruct {
		return verifysym.NewStruct(name, t)
	}
	return verifysym.NewLocal(name, t)
}

// flattenTypes is flattenVars's type-only counterpart, used to compute a
// FuncSig/PredSig's structural Type per spec.md §4.F item 3 ("the
// function/predicate type is recomputed from the flattened lists") without
// disturbing the unflattened Variable list callers type-check arguments
// against one struct-typed argument at a time.
func flattenTypes(vars []*verifysym.Variable) []*verifytypes.Type {
	flat := flattenVars(vars)
	types := make([]*verifytypes.Type, len(flat))
	for i, v := range flat {
		types[i] = v.Type
	}
	return types
}
