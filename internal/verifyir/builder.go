package verifyir

import (
	"github.com/orizon-lang/orizon-verify/internal/position"
	"github.com/orizon-lang/orizon-verify/internal/verifyast"
	"github.com/orizon-lang/orizon-verify/internal/verifyerrors"
	"github.com/orizon-lang/orizon-verify/internal/verifyexpr"
	"github.com/orizon-lang/orizon-verify/internal/verifysym"
	"github.com/orizon-lang/orizon-verify/internal/verifytypes"
)

// Builder is the CFG builder of spec.md §4.D, grounded on the teacher's
// HIRToMIRTransformer: the same cursor quartet
// (currentFunction/currentBlock/breakTarget/continueTarget), the same
// create-then-append basic block helper, and the same continue-past-error
// accumulation discipline (spec.md §7's "attempt to continue with
// subsequent definitions").
type Builder struct {
	Reg *verifytypes.Registry
	Env *verifysym.Env

	renamer verifysym.Renamer
	binder  Binder

	currentFunction *Function
	currentBlock    *Block

	// breakTarget/continueTarget are valid only inside a loop; nested
	// loops save/restore them around the recursive lowering call
	// (spec.md §5/§9).
	breakTarget    *Block
	continueTarget *Block

	blockCounter int
}

func NewBuilder(reg *verifytypes.Registry, env *verifysym.Env) *Builder {
	return &Builder{Reg: reg, Env: env}
}

func (b *Builder) newBlock(kind BlockKind) *Block {
	blk := &Block{Handle: b.blockCounter, Kind: kind}
	b.blockCounter++
	b.currentFunction.Blocks = append(b.currentFunction.Blocks, blk)
	return blk
}

func (b *Builder) addEdge(from, to *Block, guard verifyexpr.PredNode) {
	e := &Edge{From: from, To: to, Guard: guard}
	from.Succs = append(from.Succs, e)
	to.Preds = append(to.Preds, e)
}

// resolveType maps a source-level verifyast.TypeExpr to its interned
// verifytypes.Type, using the registry's atomic singletons, GetArray for
// declared array shapes, and GetStruct for a nominal struct name.
func (b *Builder) resolveType(t verifyast.TypeExpr, sp position.Span) (*verifytypes.Type, error) {
	var elemOrScalar *verifytypes.Type
	switch t.Name {
	case "int":
		elemOrScalar = b.Reg.Int
	case "float":
		elemOrScalar = b.Reg.Float
	case "bool":
		elemOrScalar = b.Reg.Bool
	default:
		st := b.Reg.GetStruct(t.Name)
		if st == nil {
			return nil, verifyerrors.UnknownName(sp, t.Name)
		}
		elemOrScalar = st
	}
	if !t.IsArray {
		return elemOrScalar, nil
	}
	if !elemOrScalar.IsAtomic() {
		return nil, verifyerrors.TypeMismatch(sp, "atomic array element", t.Name)
	}
	length := verifytypes.UnknownLength
	if t.HasLength {
		length = t.ArrayLen
	}
	return b.Reg.GetArray(elemOrScalar, length), nil
}

// declareVariable produces the *verifysym.Variable for one parameter and
// declares it (and, for a struct parameter, its flattened members) in the
// current scope frame, assigning fresh alpha names as it goes.
func (b *Builder) declareVariable(name string, t *verifytypes.Type, sp position.Span) (*verifysym.Variable, error) {
	var v *verifysym.Variable
	if t.Kind == verifytypes.KindStruct {
		v = verifysym.NewStruct(name, t)
	} else {
		v = verifysym.NewLocal(name, t)
	}
	if !b.Env.Declare(v) {
		return nil, verifyerrors.DuplicateName(sp, name)
	}
	b.renamer.Rename(v)
	for _, m := range v.Members {
		b.renamer.Rename(m)
	}
	return v, nil
}

// BuildFunction lowers one function declaration into its CFG, per
// spec.md §4.D (statement lowering) and §4.E (contract attachment). A
// non-nil error means the definition is discarded per spec.md §7's
// local-recovery policy; the caller moves on to the next declaration.
func (b *Builder) BuildFunction(decl *verifyast.FunctionDecl) (*Function, error) {
	b.renamer.Reset()
	b.Env.Push()
	defer b.Env.Pop()

	fn := &Function{Name: decl.Name}
	b.currentFunction = fn
	b.blockCounter = 0
	b.breakTarget, b.continueTarget = nil, nil

	for _, p := range decl.Params {
		pt, err := b.resolveType(p.Type, p.Span)
		if err != nil {
			return nil, err
		}
		v, err := b.declareVariable(p.Name, pt, p.Span)
		if err != nil {
			return nil, err
		}
		fn.Params = append(fn.Params, v)
	}

	var returnVar *verifysym.Variable
	switch len(decl.Returns) {
	case 0:
		// void function
	case 1:
		rt, err := b.resolveType(decl.Returns[0], decl.Span)
		if err != nil {
			return nil, err
		}
		if rt.Kind == verifytypes.KindStruct {
			returnVar = verifysym.NewStruct("\\result", rt)
			b.renamer.Rename(returnVar)
			for _, m := range returnVar.Members {
				b.renamer.Rename(m)
			}
			if !b.Env.Declare(returnVar) {
				return nil, verifyerrors.InternalInvariant(decl.Span, "\\result already declared")
			}
		} else {
			returnVar = verifysym.NewLocal("\\result", rt)
			b.renamer.Rename(returnVar)
		}
		// fn.Returns keeps the pre-flatten shape (a single struct entry for
		// a struct return) until the §4.F Flatten pass runs, matching how
		// fn.Params stores struct parameters unflattened; this is also the
		// shape callers' FuncSig lookups compare against, since a call site
		// still passes one argument per declared parameter.
		fn.Returns = append(fn.Returns, returnVar)
	default:
		return nil, verifyerrors.InternalInvariant(decl.Span, "function declared with more than one direct return value")
	}

	fn.Pre = &Block{Handle: b.blockCounter, Kind: KindPrecondition}
	b.blockCounter++
	fn.Post = &Block{Handle: b.blockCounter, Kind: KindPostcondition}
	b.blockCounter++
	fn.Blocks = append(fn.Blocks, fn.Pre, fn.Post)

	entry := b.newBlock(KindBasic)
	b.addEdge(fn.Pre, entry, nil)
	b.currentBlock = entry

	if err := b.lowerBlock(decl.Body); err != nil {
		return nil, err
	}

	if b.currentBlock != nil {
		if returnVar == nil {
			b.addEdge(b.currentBlock, fn.Post, nil)
		} else {
			return nil, verifyerrors.MissingReturn(decl.Span, decl.Name)
		}
	}

	reqLo := &verifyexpr.Lowering{Reg: b.Reg, Env: b.Env}
	for _, req := range decl.Contract.Requires {
		p, err := reqLo.LowerPred(req)
		if err != nil {
			return nil, err
		}
		fn.Pre.Assertions = append(fn.Pre.Assertions, p)
	}
	for _, dec := range decl.Contract.Decreases {
		term, err := reqLo.LowerTerm(dec)
		if err != nil {
			return nil, err
		}
		fn.Pre.Rankings = append(fn.Pre.Rankings, term)
	}
	fn.RankingCardinality = len(fn.Pre.Rankings)

	postLo := &verifyexpr.Lowering{Reg: b.Reg, Env: b.Env, AllowResult: true, AllowOld: true, ReturnVar: returnVar}
	for _, ens := range decl.Contract.Ensures {
		p, err := postLo.LowerPred(ens)
		if err != nil {
			return nil, err
		}
		fn.Post.Assertions = append(fn.Post.Assertions, b.binder.BindPred(fn.Pre, p))
	}

	return fn, nil
}

// BuildPredicate lowers a predicate declaration (spec.md §4.C/§6). Per the
// self-reference decision recorded in DESIGN.md, the body is lowered
// before the predicate is registered into Env, so a self-call resolves as
// UnknownName rather than being silently permitted.
func (b *Builder) BuildPredicate(decl *verifyast.PredicateDecl) (*Predicate, error) {
	b.Env.Push()
	defer b.Env.Pop()

	pred := &Predicate{Name: decl.Name}
	for _, p := range decl.Params {
		pt, err := b.resolveType(p.Type, p.Span)
		if err != nil {
			return nil, err
		}
		// Struct-typed predicate parameters flatten too (spec.md §6: "Each
		// Predicate exposes ... flattened parameters"), so this mirrors
		// declareVariable's VarStruct-vs-VarLocal split; predicates have no
		// CFG of their own, so no alpha-renaming pass runs over them.
		var v *verifysym.Variable
		if pt.Kind == verifytypes.KindStruct {
			v = verifysym.NewStruct(p.Name, pt)
		} else {
			v = verifysym.NewLocal(p.Name, pt)
		}
		if !b.Env.Declare(v) {
			return nil, verifyerrors.DuplicateName(p.Span, p.Name)
		}
		pred.Params = append(pred.Params, v)
	}

	lo := &verifyexpr.Lowering{Reg: b.Reg, Env: b.Env}
	body, err := lo.LowerPred(decl.Body)
	if err != nil {
		return nil, err
	}
	pred.Body = body
	return pred, nil
}

// lowerBlock implements spec.md §4.D "Block": push scope, recurse, pop
// scope.
func (b *Builder) lowerBlock(blk *verifyast.BlockStmt) error {
	b.Env.Push()
	defer b.Env.Pop()
	for _, s := range blk.Stmts {
		if err := b.lowerStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) lowerStmt(s verifyast.Stmt) error {
	switch n := s.(type) {
	case *verifyast.EmptyStmt:
		return nil
	case *verifyast.ExprStmt:
		return b.lowerExprStmt(n)
	case *verifyast.Assign:
		return b.lowerAssign(n)
	case *verifyast.IfStmt:
		return b.lowerIf(n)
	case *verifyast.WhileStmt:
		return b.lowerWhile(n)
	case *verifyast.DoWhileStmt:
		return b.lowerDoWhile(n)
	case *verifyast.ForStmt:
		return b.lowerFor(n)
	case *verifyast.BreakStmt:
		return b.lowerBreak(n)
	case *verifyast.ContinueStmt:
		return b.lowerContinue(n)
	case *verifyast.ReturnStmt:
		return b.lowerReturn(n)
	case *verifyast.AssertStmt:
		return b.lowerAssert(n)
	case *verifyast.BlockStmt:
		return b.lowerBlock(n)
	default:
		return verifyerrors.InternalInvariant(s.Span(), "unhandled statement kind in CFG builder")
	}
}

func (b *Builder) ensureBlock() *Block {
	if b.currentBlock == nil {
		b.currentBlock = b.newBlock(KindBasic)
	}
	return b.currentBlock
}

// lowerExprStmt lowers a bare call statement, the only executable
// expression form with an observable effect (spec.md §4.D "Empty /
// expression statement").
func (b *Builder) lowerExprStmt(n *verifyast.ExprStmt) error {
	call, ok := n.X.(*verifyast.Call)
	if !ok {
		return verifyerrors.IllegalAnnotationForm(n.Sp, "an expression statement must be a function call")
	}
	lo := &verifyexpr.Lowering{Reg: b.Reg, Env: b.Env}
	fn, ok := b.Env.LookupFunction(call.Callee)
	if !ok {
		return verifyerrors.UnknownName(n.Sp, call.Callee)
	}
	if len(call.Args) != len(fn.Params) {
		return verifyerrors.TypeMismatch(n.Sp, "matching argument count", "mismatched argument count")
	}
	args, err := lo.LowerCallArgs(fn.Params, call.Args)
	if err != nil {
		return err
	}
	blk := b.ensureBlock()
	blk.Stmts = append(blk.Stmts, &Call{Callee: fn, Args: args})
	return nil
}

func (b *Builder) lowerAssign(n *verifyast.Assign) error {
	lo := &verifyexpr.Lowering{Reg: b.Reg, Env: b.Env}
	blk := b.ensureBlock()
	switch target := n.Target.(type) {
	case *verifyast.Ident:
		v, ok := b.Env.Resolve(target.Name)
		if !ok {
			return verifyerrors.UnknownName(target.Sp, target.Name)
		}
		rhs, err := lo.LowerExpr(n.Value)
		if err != nil {
			return err
		}
		if rhs.Type() != v.Type {
			return verifyerrors.TypeMismatch(n.Sp, v.Type.String(), rhs.Type().String())
		}
		blk.Stmts = append(blk.Stmts, &Assign{LHS: v, RHS: rhs})
		return nil

	case *verifyast.Index:
		id, ok := target.Arr.(*verifyast.Ident)
		if !ok {
			return verifyerrors.IllegalAnnotationForm(target.Sp, "array assignment target must be a declared array variable")
		}
		arr, ok := b.Env.Resolve(id.Name)
		if !ok {
			return verifyerrors.UnknownName(id.Sp, id.Name)
		}
		if arr.Type == nil || arr.Type.Kind != verifytypes.KindArray {
			return verifyerrors.TypeMismatch(target.Sp, "array", "non-array")
		}
		idx, err := lo.LowerExpr(target.Idx)
		if err != nil {
			return err
		}
		if idx.Type() != b.Reg.Int {
			return verifyerrors.TypeMismatch(target.Idx.Span(), "int", idx.Type().String())
		}
		rhs, err := lo.LowerExpr(n.Value)
		if err != nil {
			return err
		}
		if rhs.Type() != arr.Type.Elem {
			return verifyerrors.TypeMismatch(n.Sp, arr.Type.Elem.String(), rhs.Type().String())
		}
		blk.Stmts = append(blk.Stmts, &ArrayAssign{Arr: arr, Idx: idx, RHS: rhs})
		return nil

	case *verifyast.Field:
		id, ok := target.X.(*verifyast.Ident)
		if !ok {
			return verifyerrors.IllegalAnnotationForm(target.Sp, "member assignment target must be a struct-typed variable")
		}
		sv, ok := b.Env.Resolve(id.Name)
		if !ok {
			return verifyerrors.UnknownName(id.Sp, id.Name)
		}
		if sv.Kind != verifysym.VarStruct {
			return verifyerrors.TypeMismatch(target.Sp, "struct", "non-struct")
		}
		var mv *verifysym.Variable
		for _, m := range sv.Members {
			if m.SourceName == target.Name {
				mv = m
				break
			}
		}
		if mv == nil {
			return verifyerrors.UnknownName(target.Sp, id.Name+"."+target.Name)
		}
		rhs, err := lo.LowerExpr(n.Value)
		if err != nil {
			return err
		}
		if rhs.Type() != mv.Type {
			return verifyerrors.TypeMismatch(n.Sp, mv.Type.String(), rhs.Type().String())
		}
		blk.Stmts = append(blk.Stmts, &MemberAssign{Struct: sv, Member: mv, RHS: rhs})
		return nil

	default:
		return verifyerrors.IllegalAnnotationForm(n.Sp, "unsupported assignment target")
	}
}

// execToGuardPair lifts a boolean-typed executable condition into the
// PGuard/PGuard(¬) pair used as the two outgoing edge guards of a branch.
func execToGuardPair(sp position.Span, cond verifyexpr.ExprNode) (verifyexpr.PredNode, verifyexpr.PredNode) {
	return &verifyexpr.PGuard{Sp: sp, Cond: cond}, &verifyexpr.PGuard{Sp: sp, Cond: cond, Neg: true}
}

// lowerIf implements spec.md §4.D "If".
func (b *Builder) lowerIf(n *verifyast.IfStmt) error {
	lo := &verifyexpr.Lowering{Reg: b.Reg, Env: b.Env}
	condExec, err := lo.LowerExpr(n.Cond)
	if err != nil {
		return err
	}
	if condExec.Type() != b.Reg.Bool {
		return verifyerrors.TypeMismatch(n.Cond.Span(), "bool", condExec.Type().String())
	}
	cond, negCond := execToGuardPair(n.Sp, condExec)

	cur := b.ensureBlock()
	thenBlock := b.newBlock(KindBasic)
	b.addEdge(cur, thenBlock, cond)

	var elseBlock *Block
	if n.Else != nil {
		elseBlock = b.newBlock(KindBasic)
		b.addEdge(cur, elseBlock, negCond)
	}
	joinBlock := b.newBlock(KindBasic)

	b.currentBlock = thenBlock
	if err := b.lowerBlock(n.Then); err != nil {
		return err
	}
	thenEnded := b.currentBlock == nil
	if !thenEnded {
		b.addEdge(b.currentBlock, joinBlock, nil)
	}

	elseEnded := false
	if n.Else != nil {
		b.currentBlock = elseBlock
		if err := b.lowerBlock(n.Else); err != nil {
			return err
		}
		elseEnded = b.currentBlock == nil
		if !elseEnded {
			b.addEdge(b.currentBlock, joinBlock, nil)
		}
	} else {
		b.addEdge(cur, joinBlock, negCond)
	}

	if thenEnded && elseEnded {
		b.currentBlock = nil
	} else {
		b.currentBlock = joinBlock
	}
	return nil
}

// lowerLoopAnnotation lowers a loop's invariants/variant into head,
// allowing \old (rewritten against head itself) but not \result.
func (b *Builder) lowerLoopAnnotation(ann verifyast.LoopAnnotation, head *Block) error {
	lo := &verifyexpr.Lowering{Reg: b.Reg, Env: b.Env, AllowOld: true}
	for _, inv := range ann.Invariants {
		p, err := lo.LowerPred(inv)
		if err != nil {
			return err
		}
		head.Assertions = append(head.Assertions, b.binder.BindPred(head, p))
	}
	for _, v := range ann.Variant {
		term, err := lo.LowerTerm(v)
		if err != nil {
			return err
		}
		head.Rankings = append(head.Rankings, b.binder.BindTerm(head, term))
	}
	return nil
}

// lowerWhile implements spec.md §4.D "While / do-while / for".
func (b *Builder) lowerWhile(n *verifyast.WhileStmt) error {
	cur := b.ensureBlock()
	head := b.newBlock(KindLoopHead)
	b.addEdge(cur, head, nil)

	if err := b.lowerLoopAnnotation(n.Annotation, head); err != nil {
		return err
	}

	lo := &verifyexpr.Lowering{Reg: b.Reg, Env: b.Env}
	condExec, err := lo.LowerExpr(n.Cond)
	if err != nil {
		return err
	}
	if condExec.Type() != b.Reg.Bool {
		return verifyerrors.TypeMismatch(n.Cond.Span(), "bool", condExec.Type().String())
	}
	cond, negCond := execToGuardPair(n.Sp, condExec)

	body := b.newBlock(KindBasic)
	after := b.newBlock(KindBasic)
	b.addEdge(head, body, cond)
	b.addEdge(head, after, negCond)

	savedBreak, savedContinue := b.breakTarget, b.continueTarget
	b.breakTarget, b.continueTarget = after, head

	b.currentBlock = body
	if err := b.lowerBlock(n.Body); err != nil {
		return err
	}
	if b.currentBlock != nil {
		b.addEdge(b.currentBlock, head, nil)
	}

	b.breakTarget, b.continueTarget = savedBreak, savedContinue
	b.currentBlock = after
	return nil
}

// lowerDoWhile: the first iteration bypasses the test.
func (b *Builder) lowerDoWhile(n *verifyast.DoWhileStmt) error {
	cur := b.ensureBlock()
	head := b.newBlock(KindLoopHead)
	body := b.newBlock(KindBasic)
	after := b.newBlock(KindBasic)

	b.addEdge(cur, body, nil)
	if err := b.lowerLoopAnnotation(n.Annotation, head); err != nil {
		return err
	}

	savedBreak, savedContinue := b.breakTarget, b.continueTarget
	b.breakTarget, b.continueTarget = after, head

	b.currentBlock = body
	if err := b.lowerBlock(n.Body); err != nil {
		return err
	}
	if b.currentBlock != nil {
		b.addEdge(b.currentBlock, head, nil)
	}

	b.breakTarget, b.continueTarget = savedBreak, savedContinue

	lo := &verifyexpr.Lowering{Reg: b.Reg, Env: b.Env}
	condExec, err := lo.LowerExpr(n.Cond)
	if err != nil {
		return err
	}
	if condExec.Type() != b.Reg.Bool {
		return verifyerrors.TypeMismatch(n.Cond.Span(), "bool", condExec.Type().String())
	}
	cond, negCond := execToGuardPair(n.Sp, condExec)
	b.addEdge(head, body, cond)
	b.addEdge(head, after, negCond)

	b.currentBlock = after
	return nil
}

// lowerFor: initialization lowers before the loop head, the iter step
// lowers just before the back-edge to the loop head. A nil Cond means an
// unconditional back-edge; after is then reachable only via break.
func (b *Builder) lowerFor(n *verifyast.ForStmt) error {
	b.Env.Push()
	defer b.Env.Pop()

	if n.Init != nil {
		if err := b.lowerStmt(n.Init); err != nil {
			return err
		}
	}

	cur := b.ensureBlock()
	head := b.newBlock(KindLoopHead)
	b.addEdge(cur, head, nil)

	if err := b.lowerLoopAnnotation(n.Annotation, head); err != nil {
		return err
	}

	body := b.newBlock(KindBasic)
	after := b.newBlock(KindBasic)

	if n.Cond != nil {
		lo := &verifyexpr.Lowering{Reg: b.Reg, Env: b.Env}
		condExec, err := lo.LowerExpr(n.Cond)
		if err != nil {
			return err
		}
		if condExec.Type() != b.Reg.Bool {
			return verifyerrors.TypeMismatch(n.Cond.Span(), "bool", condExec.Type().String())
		}
		cond, negCond := execToGuardPair(n.Sp, condExec)
		b.addEdge(head, body, cond)
		b.addEdge(head, after, negCond)
	} else {
		b.addEdge(head, body, nil)
	}

	savedBreak, savedContinue := b.breakTarget, b.continueTarget
	b.breakTarget, b.continueTarget = after, head

	b.currentBlock = body
	if err := b.lowerBlock(n.Body); err != nil {
		return err
	}
	if b.currentBlock != nil && n.Post != nil {
		if err := b.lowerStmt(n.Post); err != nil {
			return err
		}
	}
	if b.currentBlock != nil {
		b.addEdge(b.currentBlock, head, nil)
	}

	b.breakTarget, b.continueTarget = savedBreak, savedContinue
	b.currentBlock = after
	return nil
}

func (b *Builder) lowerBreak(n *verifyast.BreakStmt) error {
	if b.breakTarget == nil {
		return verifyerrors.IllegalAnnotationForm(n.Sp, "break outside a loop")
	}
	b.addEdge(b.ensureBlock(), b.breakTarget, nil)
	b.currentBlock = nil
	return nil
}

func (b *Builder) lowerContinue(n *verifyast.ContinueStmt) error {
	if b.continueTarget == nil {
		return verifyerrors.IllegalAnnotationForm(n.Sp, "continue outside a loop")
	}
	b.addEdge(b.ensureBlock(), b.continueTarget, nil)
	b.currentBlock = nil
	return nil
}

// lowerReturn implements spec.md §4.D "Return". A struct-typed return
// (fn.Returns[0] still an unflattened VarStruct at this point — the §4.F
// flattener runs after the whole function is built) must name a declared
// struct-typed variable whose members line up 1:1 with the destination's,
// since the grammar has no struct-literal expression form.
func (b *Builder) lowerReturn(n *verifyast.ReturnStmt) error {
	fn := b.currentFunction
	void := len(fn.Returns) == 0

	if void {
		if len(n.Values) != 0 {
			return verifyerrors.ReturnInVoid(n.Sp)
		}
		b.addEdge(b.ensureBlock(), fn.Post, nil)
		b.currentBlock = nil
		return nil
	}

	if len(n.Values) == 0 {
		return verifyerrors.ReturnMissingValue(n.Sp)
	}
	if len(n.Values) != 1 {
		return verifyerrors.TypeMismatch(n.Sp, "a single return expression", "multiple")
	}

	blk := b.ensureBlock()

	if fn.Returns[0].Kind == verifysym.VarStruct {
		dstStruct := fn.Returns[0]
		id, ok := n.Values[0].(*verifyast.Ident)
		if !ok {
			return verifyerrors.IllegalAnnotationForm(n.Sp, "a struct-valued return must name a declared struct variable")
		}
		sv, ok := b.Env.Resolve(id.Name)
		if !ok {
			return verifyerrors.UnknownName(id.Sp, id.Name)
		}
		if sv.Kind != verifysym.VarStruct || len(sv.Members) != len(dstStruct.Members) {
			return verifyerrors.TypeMismatch(n.Sp, "matching struct type", "mismatched struct shape")
		}
		for i, dst := range dstStruct.Members {
			src := sv.Members[i]
			if src.Type != dst.Type {
				return verifyerrors.TypeMismatch(n.Sp, dst.Type.String(), src.Type.String())
			}
			blk.Stmts = append(blk.Stmts, &Assign{LHS: dst, RHS: &verifyexpr.EVar{Sp: n.Sp, Var: src}})
		}
		b.addEdge(blk, fn.Post, nil)
		b.currentBlock = nil
		return nil
	}

	lo := &verifyexpr.Lowering{Reg: b.Reg, Env: b.Env}
	val, err := lo.LowerExpr(n.Values[0])
	if err != nil {
		return err
	}
	if val.Type() != fn.Returns[0].Type {
		return verifyerrors.TypeMismatch(n.Sp, fn.Returns[0].Type.String(), val.Type().String())
	}
	blk.Stmts = append(blk.Stmts, &Assign{LHS: fn.Returns[0], RHS: val})
	b.addEdge(blk, fn.Post, nil)
	b.currentBlock = nil
	return nil
}

func (b *Builder) lowerAssert(n *verifyast.AssertStmt) error {
	lo := &verifyexpr.Lowering{Reg: b.Reg, Env: b.Env}
	p, err := lo.LowerPred(n.Pred)
	if err != nil {
		return err
	}
	blk := b.ensureBlock()
	blk.Stmts = append(blk.Stmts, &Assert{Pred: p})
	return nil
}
