package verifyparse

import (
	"fmt"

	"github.com/orizon-lang/orizon-verify/internal/position"
	"github.com/orizon-lang/orizon-verify/internal/verifyast"
)

// parseError aborts the current top-level definition; parseProgram recovers
// from it and resynchronizes at the next definition keyword, mirroring the
// per-definition discard-and-continue policy spec.md §7 already applies at
// the IR-building stage.
type parseError struct{ err error }

type parser struct {
	toks []token
	pos  int
	errs []error
}

func newParser(toks []token) *parser {
	return &parser{toks: toks}
}

func (p *parser) peek() token         { return p.toks[p.pos] }
func (p *parser) at(k tokenKind) bool { return p.peek().kind == k }

func (p *parser) advance() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) fail(sp position.Span, format string, args ...interface{}) {
	panic(parseError{fmt.Errorf("%s: %s", sp.String(), fmt.Sprintf(format, args...))})
}

func (p *parser) expect(k tokenKind, what string) token {
	if !p.at(k) {
		t := p.peek()
		p.fail(t.span, "expected %s, found %q", what, t.text)
	}
	return p.advance()
}

func (p *parser) expectIdent() (string, position.Span) {
	t := p.expect(tokIdent, "identifier")
	return t.text, t.span
}

// spannable is any verifyast node that exposes a post-construction span
// setter. base and sbase (both unexported types embedded inside every
// concrete verifyast node) promote SetSpan to the node, but a keyed
// composite literal built from this package can never set their `Sp` field
// directly — a promoted field is only reachable by naming the embedding
// field itself, and both base and sbase are unexported. sp wraps
// construction so every call site still reads as one expression instead of
// a construct-then-assign pair.
type spannable interface {
	SetSpan(position.Span)
}

func sp[T spannable](n T, s position.Span) T {
	n.SetSpan(s)
	return n
}

// Parse lexes and parses src into a verifyast.Program. Errors from either
// stage are returned together; a definition that fails to parse is dropped
// from the result and parsing resumes at the next top-level keyword, the
// same recovery shape verifyir.BuildProgram uses one stage up.
func Parse(filename, src string) (*verifyast.Program, []error) {
	lx := newLexer(filename, src)
	toks, lexErrs := lx.tokenize()

	p := newParser(toks)
	prog := &verifyast.Program{VersionPragma: lx.versionPragma}

	for !p.at(tokEOF) {
		if !p.parseOneDefinition(prog) {
			p.resync()
		}
	}

	allErrs := append(lexErrs, p.errs...)
	return prog, allErrs
}

// parseOneDefinition parses exactly one top-level definition (with its
// leading contract, if any) into prog, returning false if it had to bail
// out via a parseError.
func (p *parser) parseOneDefinition(prog *verifyast.Program) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			pe, isParseErr := r.(parseError)
			if !isParseErr {
				panic(r)
			}
			p.errs = append(p.errs, pe.err)
			ok = false
		}
	}()

	contract := p.parseLeadingContract()

	switch {
	case p.at(tokFunc):
		prog.Functions = append(prog.Functions, p.parseFunction(contract))
	case p.at(tokStruct):
		if !contractEmpty(contract) {
			p.fail(p.peek().span, "a struct definition cannot carry a contract")
		}
		prog.Structs = append(prog.Structs, p.parseStruct())
	case p.at(tokPredicate):
		if !contractEmpty(contract) {
			p.fail(p.peek().span, "a predicate definition cannot carry a contract")
		}
		prog.Predicates = append(prog.Predicates, p.parsePredicate())
	default:
		t := p.peek()
		p.fail(t.span, "expected func, struct, or predicate, found %q", t.text)
	}
	return true
}

func contractEmpty(c verifyast.Contract) bool {
	return len(c.Requires) == 0 && len(c.Decreases) == 0 && len(c.Ensures) == 0
}

// resync skips tokens until the next plausible definition start, so one
// malformed definition doesn't cascade into spurious errors for the rest
// of the file.
func (p *parser) resync() {
	for !p.at(tokEOF) && !p.at(tokFunc) && !p.at(tokStruct) && !p.at(tokPredicate) {
		p.advance()
	}
}

func (p *parser) parseLeadingContract() verifyast.Contract {
	var c verifyast.Contract
	for {
		switch {
		case p.at(tokRequires):
			p.advance()
			c.Requires = append(c.Requires, p.parseExpr())
			p.expect(tokSemi, `";"`)
		case p.at(tokDecreases):
			p.advance()
			c.Decreases = append(c.Decreases, p.parseExprList()...)
			p.expect(tokSemi, `";"`)
		case p.at(tokEnsures):
			p.advance()
			c.Ensures = append(c.Ensures, p.parseExpr())
			p.expect(tokSemi, `";"`)
		default:
			return c
		}
	}
}

func (p *parser) parseType() verifyast.TypeExpr {
	name, _ := p.expectIdent()
	t := verifyast.TypeExpr{Name: name, ArrayLen: -1}
	if p.at(tokLBracket) {
		p.advance()
		t.IsArray = true
		if p.at(tokInt) {
			lit := p.advance()
			n, err := parseIntLiteral(lit.text)
			if err != nil {
				p.fail(lit.span, "malformed array length %q", lit.text)
			}
			t.ArrayLen = int(n)
			t.HasLength = true
		}
		p.expect(tokRBracket, `"]"`)
	}
	return t
}

// parseParam constructs verifyast.Param directly since its Span is a plain,
// non-embedded field — no spannable indirection needed here.
func (p *parser) parseParam() verifyast.Param {
	start := p.peek().span
	typ := p.parseType()
	name, nameSp := p.expectIdent()
	return verifyast.Param{Name: name, Type: typ, Span: position.Span{Start: start.Start, End: nameSp.End}}
}

func (p *parser) parseFunction(contract verifyast.Contract) *verifyast.FunctionDecl {
	start := p.expect(tokFunc, "func").span
	name, _ := p.expectIdent()
	p.expect(tokLParen, `"("`)
	var params []verifyast.Param
	for !p.at(tokRParen) {
		params = append(params, p.parseParam())
		if p.at(tokComma) {
			p.advance()
			continue
		}
		break
	}
	p.expect(tokRParen, `")"`)

	var returns []verifyast.TypeExpr
	if p.at(tokArrow) {
		p.advance()
		returns = append(returns, p.parseType())
	}

	body := p.parseBlock()
	return &verifyast.FunctionDecl{
		Name:     name,
		Params:   params,
		Returns:  returns,
		Contract: contract,
		Body:     body,
		Span:     position.Span{Start: start.Start, End: body.Span().End},
	}
}

func (p *parser) parseStruct() *verifyast.StructDecl {
	start := p.expect(tokStruct, "struct").span
	name, _ := p.expectIdent()
	p.expect(tokLBrace, `"{"`)
	var fields []verifyast.Param
	for !p.at(tokRBrace) {
		f := p.parseParam()
		p.expect(tokSemi, `";"`)
		fields = append(fields, f)
	}
	end := p.expect(tokRBrace, `"}"`).span
	return &verifyast.StructDecl{Name: name, Fields: fields, Span: position.Span{Start: start.Start, End: end.End}}
}

// parsePredicate implements `predicate NAME(params) = body;` (see
// DESIGN.md). The lexer erases the difference between the `/*@ ... */`
// block form and the `//@` line form, so a predicate written in either
// form is accepted here; no check distinguishes the two.
func (p *parser) parsePredicate() *verifyast.PredicateDecl {
	start := p.expect(tokPredicate, "predicate").span
	name, _ := p.expectIdent()
	p.expect(tokLParen, `"("`)
	var params []verifyast.Param
	for !p.at(tokRParen) {
		params = append(params, p.parseParam())
		if p.at(tokComma) {
			p.advance()
			continue
		}
		break
	}
	p.expect(tokRParen, `")"`)
	p.expect(tokAssign, `"="`)
	body := p.parseExpr()
	end := p.expect(tokSemi, `";"`).span
	return &verifyast.PredicateDecl{Name: name, Params: params, Body: body, Span: position.Span{Start: start.Start, End: end.End}}
}

func (p *parser) parseBlock() *verifyast.BlockStmt {
	start := p.expect(tokLBrace, `"{"`).span
	var stmts []verifyast.Stmt
	for !p.at(tokRBrace) && !p.at(tokEOF) {
		stmts = append(stmts, p.parseStatement())
	}
	end := p.expect(tokRBrace, `"}"`).span
	return sp(&verifyast.BlockStmt{Stmts: stmts}, position.Span{Start: start.Start, End: end.End})
}

func (p *parser) parseLoopAnnotation() verifyast.LoopAnnotation {
	var ann verifyast.LoopAnnotation
	for p.at(tokLoop) {
		p.advance()
		switch {
		case p.at(tokInvariant):
			p.advance()
			ann.Invariants = append(ann.Invariants, p.parseExpr())
			p.expect(tokSemi, `";"`)
		case p.at(tokVariant):
			p.advance()
			ann.Variant = append(ann.Variant, p.parseExprList()...)
			p.expect(tokSemi, `";"`)
		default:
			t := p.peek()
			p.fail(t.span, "expected invariant or variant after loop, found %q", t.text)
		}
	}
	return ann
}

func (p *parser) parseStatement() verifyast.Stmt {
	ann := p.parseLoopAnnotation()
	if !loopAnnotationEmpty(ann) {
		switch {
		case p.at(tokWhile):
			return p.parseWhile(ann)
		case p.at(tokDo):
			return p.parseDoWhile(ann)
		case p.at(tokFor):
			return p.parseFor(ann)
		default:
			t := p.peek()
			p.fail(t.span, "a loop annotation must be immediately followed by while/do/for")
		}
	}

	switch {
	case p.at(tokWhile):
		return p.parseWhile(verifyast.LoopAnnotation{})
	case p.at(tokDo):
		return p.parseDoWhile(verifyast.LoopAnnotation{})
	case p.at(tokFor):
		return p.parseFor(verifyast.LoopAnnotation{})
	case p.at(tokIf):
		return p.parseIf()
	case p.at(tokReturn):
		return p.parseReturn()
	case p.at(tokBreak):
		t := p.advance()
		p.expect(tokSemi, `";"`)
		return sp(&verifyast.BreakStmt{}, t.span)
	case p.at(tokContinue):
		t := p.advance()
		p.expect(tokSemi, `";"`)
		return sp(&verifyast.ContinueStmt{}, t.span)
	case p.at(tokAssert):
		start := p.advance().span
		pred := p.parseExpr()
		end := p.expect(tokSemi, `";"`).span
		return sp(&verifyast.AssertStmt{Pred: pred}, position.Span{Start: start.Start, End: end.End})
	case p.at(tokLBrace):
		return p.parseBlock()
	case p.at(tokSemi):
		t := p.advance()
		return sp(&verifyast.EmptyStmt{}, t.span)
	default:
		s := p.parseSimpleStmt()
		p.expect(tokSemi, `";"`)
		return s
	}
}

func loopAnnotationEmpty(a verifyast.LoopAnnotation) bool {
	return len(a.Invariants) == 0 && len(a.Variant) == 0
}

// parseSimpleStmt parses an assignment or a bare call expression, without
// consuming the trailing statement terminator — used both for ordinary
// statements (caller expects a `;`) and for a for-loop's init/post clauses
// (caller expects `;` or `)` instead).
func (p *parser) parseSimpleStmt() verifyast.Stmt {
	start := p.peek().span
	target := p.parseExpr()
	if p.at(tokAssign) {
		p.advance()
		val := p.parseExpr()
		return sp(&verifyast.Assign{Target: target, Value: val}, position.Span{Start: start.Start, End: val.Span().End})
	}
	return sp(&verifyast.ExprStmt{X: target}, target.Span())
}

func (p *parser) parseIf() verifyast.Stmt {
	start := p.expect(tokIf, "if").span
	p.expect(tokLParen, `"("`)
	cond := p.parseExpr()
	p.expect(tokRParen, `")"`)
	then := p.parseBlock()
	end := then.Span()

	var els *verifyast.BlockStmt
	if p.at(tokElse) {
		p.advance()
		if p.at(tokIf) {
			inner := p.parseIf()
			els = sp(&verifyast.BlockStmt{Stmts: []verifyast.Stmt{inner}}, inner.Span())
		} else {
			els = p.parseBlock()
		}
		end = els.Span()
	}

	return sp(&verifyast.IfStmt{Cond: cond, Then: then, Else: els}, position.Span{Start: start.Start, End: end.End})
}

func (p *parser) parseWhile(ann verifyast.LoopAnnotation) verifyast.Stmt {
	start := p.expect(tokWhile, "while").span
	p.expect(tokLParen, `"("`)
	cond := p.parseExpr()
	p.expect(tokRParen, `")"`)
	body := p.parseBlock()
	return sp(&verifyast.WhileStmt{Annotation: ann, Cond: cond, Body: body}, position.Span{Start: start.Start, End: body.Span().End})
}

func (p *parser) parseDoWhile(ann verifyast.LoopAnnotation) verifyast.Stmt {
	start := p.expect(tokDo, "do").span
	body := p.parseBlock()
	p.expect(tokWhile, "while")
	p.expect(tokLParen, `"("`)
	cond := p.parseExpr()
	end := p.expect(tokRParen, `")"`).span
	p.expect(tokSemi, `";"`)
	return sp(&verifyast.DoWhileStmt{Annotation: ann, Body: body, Cond: cond}, position.Span{Start: start.Start, End: end.End})
}

func (p *parser) parseFor(ann verifyast.LoopAnnotation) verifyast.Stmt {
	start := p.expect(tokFor, "for").span
	p.expect(tokLParen, `"("`)

	var init verifyast.Stmt
	if !p.at(tokSemi) {
		init = p.parseSimpleStmt()
	}
	p.expect(tokSemi, `";"`)

	var cond verifyast.Expr
	if !p.at(tokSemi) {
		cond = p.parseExpr()
	}
	p.expect(tokSemi, `";"`)

	var post verifyast.Stmt
	if !p.at(tokRParen) {
		post = p.parseSimpleStmt()
	}
	p.expect(tokRParen, `")"`)

	body := p.parseBlock()
	return sp(&verifyast.ForStmt{
		Annotation: ann, Init: init, Cond: cond, Post: post, Body: body,
	}, position.Span{Start: start.Start, End: body.Span().End})
}

func (p *parser) parseReturn() verifyast.Stmt {
	start := p.expect(tokReturn, "return").span
	var vals []verifyast.Expr
	if !p.at(tokSemi) {
		vals = p.parseExprList()
	}
	end := p.expect(tokSemi, `";"`).span
	return sp(&verifyast.ReturnStmt{Values: vals}, position.Span{Start: start.Start, End: end.End})
}

// --- expressions, loosest to tightest binding ---

func (p *parser) parseExprList() []verifyast.Expr {
	list := []verifyast.Expr{p.parseExpr()}
	for p.at(tokComma) {
		p.advance()
		list = append(list, p.parseExpr())
	}
	return list
}

func (p *parser) parseExpr() verifyast.Expr { return p.parseIff() }

func (p *parser) parseIff() verifyast.Expr {
	l := p.parseImplies()
	for p.at(tokIff) {
		start := l.Span()
		p.advance()
		r := p.parseImplies()
		l = sp(&verifyast.Iff{L: l, R: r}, position.Span{Start: start.Start, End: r.Span().End})
	}
	return l
}

func (p *parser) parseImplies() verifyast.Expr {
	l := p.parseXor()
	for p.at(tokImplies) {
		start := l.Span()
		p.advance()
		r := p.parseXor()
		l = sp(&verifyast.Impl{L: l, R: r}, position.Span{Start: start.Start, End: r.Span().End})
	}
	return l
}

func (p *parser) parseXor() verifyast.Expr {
	l := p.parseOr()
	for p.at(tokXor) {
		start := l.Span()
		p.advance()
		r := p.parseOr()
		l = sp(&verifyast.Xor{L: l, R: r}, position.Span{Start: start.Start, End: r.Span().End})
	}
	return l
}

func (p *parser) parseOr() verifyast.Expr {
	l := p.parseAnd()
	for p.at(tokOr) {
		start := l.Span()
		p.advance()
		r := p.parseAnd()
		l = sp(&verifyast.Binary{Op: "||", L: l, R: r}, position.Span{Start: start.Start, End: r.Span().End})
	}
	return l
}

func (p *parser) parseAnd() verifyast.Expr {
	l := p.parseCompare()
	for p.at(tokAnd) {
		start := l.Span()
		p.advance()
		r := p.parseCompare()
		l = sp(&verifyast.Binary{Op: "&&", L: l, R: r}, position.Span{Start: start.Start, End: r.Span().End})
	}
	return l
}

func compareOp(k tokenKind) (string, bool) {
	switch k {
	case tokLt:
		return "<", true
	case tokLe:
		return "<=", true
	case tokGt:
		return ">", true
	case tokGe:
		return ">=", true
	case tokEq:
		return "==", true
	case tokNe:
		return "!=", true
	default:
		return "", false
	}
}

// parseCompare also handles the two quantifier forms, since they occupy
// the same syntactic slot as a primary comparison operand and their body
// recurses back into parseExpr (spec.md §4.C: quantifiers are legal only
// in predicate position, but that legality check happens at lowering
// time, not parse time — verifyexpr rejects a Quant found where a term or
// executable expression was expected).
func (p *parser) parseCompare() verifyast.Expr {
	if p.at(tokForall) || p.at(tokExists) {
		return p.parseQuantifier()
	}

	first := p.parseAdditive()
	_, ok := compareOp(p.peek().kind)
	if !ok {
		return first
	}

	operands := []verifyast.Expr{first}
	var ops []string
	for {
		op, ok := compareOp(p.peek().kind)
		if !ok {
			break
		}
		p.advance()
		operands = append(operands, p.parseAdditive())
		ops = append(ops, op)
	}

	span := position.Span{Start: operands[0].Span().Start, End: operands[len(operands)-1].Span().End}
	if len(ops) == 1 {
		return sp(&verifyast.Binary{Op: ops[0], L: operands[0], R: operands[1]}, span)
	}
	return sp(&verifyast.Chain{Operands: operands, Ops: ops}, span)
}

func (p *parser) parseQuantifier() verifyast.Expr {
	start := p.peek().span
	kind := verifyast.Forall
	if p.at(tokExists) {
		kind = verifyast.Exists
	}
	p.advance()

	var binders []verifyast.Binder
	for {
		name, _ := p.expectIdent()
		p.expect(tokColon, `":"`)
		sort, _ := p.expectIdent()
		binders = append(binders, verifyast.Binder{Name: name, Sort: sort})
		if p.at(tokComma) {
			p.advance()
			continue
		}
		break
	}
	p.expect(tokColonColon, `"::"`)
	body := p.parseExpr()
	return sp(&verifyast.Quant{Kind: kind, Binders: binders, Body: body}, position.Span{Start: start.Start, End: body.Span().End})
}

func (p *parser) parseAdditive() verifyast.Expr {
	l := p.parseMultiplicative()
	for p.at(tokPlus) || p.at(tokMinus) {
		op := "+"
		if p.at(tokMinus) {
			op = "-"
		}
		start := l.Span()
		p.advance()
		r := p.parseMultiplicative()
		l = sp(&verifyast.Binary{Op: op, L: l, R: r}, position.Span{Start: start.Start, End: r.Span().End})
	}
	return l
}

func (p *parser) parseMultiplicative() verifyast.Expr {
	l := p.parseUnary()
	for p.at(tokStar) || p.at(tokSlash) || p.at(tokPercent) {
		var op string
		switch {
		case p.at(tokStar):
			op = "*"
		case p.at(tokSlash):
			op = "/"
		default:
			op = "%"
		}
		start := l.Span()
		p.advance()
		r := p.parseUnary()
		l = sp(&verifyast.Binary{Op: op, L: l, R: r}, position.Span{Start: start.Start, End: r.Span().End})
	}
	return l
}

func (p *parser) parseUnary() verifyast.Expr {
	if p.at(tokMinus) || p.at(tokNot) {
		t := p.advance()
		op := "-"
		if t.kind == tokNot {
			op = "!"
		}
		x := p.parseUnary()
		return sp(&verifyast.Unary{Op: op, X: x}, position.Span{Start: t.span.Start, End: x.Span().End})
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() verifyast.Expr {
	x := p.parsePrimary()
	for {
		switch {
		case p.at(tokDot):
			p.advance()
			name, nameSp := p.expectIdent()
			x = sp(&verifyast.Field{X: x, Name: name}, position.Span{Start: x.Span().Start, End: nameSp.End})
		case p.at(tokLBracket):
			p.advance()
			idx := p.parseExpr()
			end := p.expect(tokRBracket, `"]"`).span
			x = sp(&verifyast.Index{Arr: x, Idx: idx}, position.Span{Start: x.Span().Start, End: end.End})
		default:
			return x
		}
	}
}

func (p *parser) parsePrimary() verifyast.Expr {
	t := p.peek()
	switch t.kind {
	case tokInt:
		p.advance()
		v, err := parseIntLiteral(t.text)
		if err != nil {
			p.fail(t.span, "malformed integer literal %q", t.text)
		}
		return sp(&verifyast.IntLit{Value: v}, t.span)
	case tokFloat:
		p.advance()
		v, err := parseFloatLiteral(t.text)
		if err != nil {
			p.fail(t.span, "malformed float literal %q", t.text)
		}
		return sp(&verifyast.FloatLit{Value: v}, t.span)
	case tokTrue:
		p.advance()
		return sp(&verifyast.BoolLit{Value: true}, t.span)
	case tokFalse:
		p.advance()
		return sp(&verifyast.BoolLit{Value: false}, t.span)
	case tokBackslashTrue:
		p.advance()
		return sp(&verifyast.TrueLit{}, t.span)
	case tokBackslashFalse:
		p.advance()
		return sp(&verifyast.FalseLit{}, t.span)
	case tokBackslashResult:
		p.advance()
		return sp(&verifyast.Result{}, t.span)
	case tokBackslashOld:
		p.advance()
		p.expect(tokLParen, `"("`)
		x := p.parseExpr()
		end := p.expect(tokRParen, `")"`).span
		return sp(&verifyast.Old{X: x}, position.Span{Start: t.span.Start, End: end.End})
	case tokBackslashLength:
		p.advance()
		p.expect(tokLParen, `"("`)
		x := p.parseExpr()
		end := p.expect(tokRParen, `")"`).span
		return sp(&verifyast.Length{Arr: x}, position.Span{Start: t.span.Start, End: end.End})
	case tokLParen:
		p.advance()
		x := p.parseExpr()
		p.expect(tokRParen, `")"`)
		return x
	case tokLBrace:
		return p.parseArrayUpdate()
	case tokIdent:
		p.advance()
		if p.at(tokLParen) {
			p.advance()
			var args []verifyast.Expr
			if !p.at(tokRParen) {
				args = p.parseExprList()
			}
			end := p.expect(tokRParen, `")"`).span
			return sp(&verifyast.Call{Callee: t.text, Args: args}, position.Span{Start: t.span.Start, End: end.End})
		}
		return sp(&verifyast.Ident{Name: t.text}, t.span)
	default:
		p.fail(t.span, "expected an expression, found %q", t.text)
		panic("unreachable")
	}
}

// parseArrayUpdate parses the functional-update term `{ base \with [idx] =
// val }` (spec.md §3 "Terms").
func (p *parser) parseArrayUpdate() verifyast.Expr {
	start := p.expect(tokLBrace, `"{"`).span
	base := p.parseExpr()
	p.expect(tokBackslashWith, `"\with"`)
	p.expect(tokLBracket, `"["`)
	idx := p.parseExpr()
	p.expect(tokRBracket, `"]"`)
	p.expect(tokAssign, `"="`)
	val := p.parseExpr()
	end := p.expect(tokRBrace, `"}"`).span
	return sp(&verifyast.ArrayUpdate{Base: base, Idx: idx, Val: val}, position.Span{Start: start.Start, End: end.End})
}
