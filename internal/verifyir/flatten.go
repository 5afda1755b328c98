package verifyir

import "github.com/orizon-lang/orizon-verify/internal/verifysym"

// Flatten implements spec.md §4.F for a function's IR: rewrite Params and
// Returns in place so a struct-typed entry is replaced by its ordered
// scalar members. This runs after CFG construction and after the
// annotation binder, and before the §4.H consistency check.
//
// The CFG's own statements never need touching here: every struct member
// access inside a block or predicate was already resolved directly to its
// MemberVariable at lowering time (§4.C), so a struct-typed Params/Returns
// entry never appears anywhere except in these two signature lists.
func Flatten(fn *Function) {
	fn.Params = flattenVars(fn.Params)
	fn.Returns = flattenVars(fn.Returns)
}

// FlattenPredicate applies the same rewrite to a predicate's parameter
// list; predicates have no return slot to flatten.
func FlattenPredicate(pred *Predicate) {
	pred.Params = flattenVars(pred.Params)
}

func flattenVars(vars []*verifysym.Variable) []*verifysym.Variable {
	flat := make([]*verifysym.Variable, 0, len(vars))
	for _, v := range vars {
		if v.Kind == verifysym.VarStruct {
			flat = append(flat, v.Members...)
		} else {
			flat = append(flat, v)
		}
	}
	return flat
}
