package verifyserver

import (
	"fmt"

	"github.com/orizon-lang/orizon-verify/internal/verifyir"
	"github.com/orizon-lang/orizon-verify/internal/verifypath"
)

// VerifyRequest is the msgpack-encoded body of a POST /verify request: one
// source file, checked in full. Filename only affects diagnostics; it
// never touches the local filesystem.
type VerifyRequest struct {
	Filename string
	Source   string
}

// VerifyResponse is what a request gets back: a fresh per-request job id
// (a UUID), the errors that stopped the whole file short of per-function
// checking, and each function's check errors or extracted basic paths.
type VerifyResponse struct {
	JobID        string
	SourceErrors []string
	Functions    []FunctionResult
}

// FunctionResult carries one function's basic paths, or the check errors
// that kept it from producing any.
type FunctionResult struct {
	Function   string
	Errors     []string
	BasicPaths []WireBasicPath
}

// WireBasicPath is the wire projection of verifypath.BasicPath: the full
// verifyexpr trees don't cross the wire (an SMT-backend process on the
// other end reasons over its own IR, not this one), so a path is
// flattened down to its shape and a best-effort textual rendering of its
// statements, enough for a remote log or a debugging client to make sense
// of what was decomposed without re-lowering anything itself.
type WireBasicPath struct {
	HeadHandle, TailHandle int
	HeadKind, TailKind     string
	IsBackEdge             bool
	HeadConditionCount     int
	TailConditionCount     int
	HeadRankingCount       int
	TailRankingCount       int
	Statements             []string
}

// encodeBasicPath projects one extracted path into its wire form.
func encodeBasicPath(p verifypath.BasicPath) WireBasicPath {
	stmts := make([]string, len(p.Statements))
	for i, s := range p.Statements {
		stmts[i] = renderStmt(s)
	}
	return WireBasicPath{
		HeadHandle:         p.Head.Handle,
		TailHandle:         p.Tail.Handle,
		HeadKind:           p.Head.Kind.String(),
		TailKind:           p.Tail.Kind.String(),
		IsBackEdge:         p.Head == p.Tail,
		HeadConditionCount: len(p.HeadCondition),
		TailConditionCount: len(p.TailCondition),
		HeadRankingCount:   len(p.HeadRanking),
		TailRankingCount:   len(p.TailRanking),
		Statements:         stmts,
	}
}

// renderStmt gives a one-line human-readable rendering of an IR statement
// for the wire response; it names the statement's shape and left-hand
// side rather than fully pretty-printing the verifyexpr trees it carries.
func renderStmt(s verifyir.Stmt) string {
	switch v := s.(type) {
	case *verifyir.Assign:
		return fmt.Sprintf("assign %s = <expr>", v.LHS.SourceName)
	case *verifyir.ArrayAssign:
		return fmt.Sprintf("arrayassign %s[<idx>] = <expr>", v.Arr.SourceName)
	case *verifyir.MemberAssign:
		return fmt.Sprintf("memberassign %s.%s = <expr>", v.Struct.SourceName, v.Member.SourceName)
	case *verifyir.Assume:
		return "assume <pred>"
	case *verifyir.Assert:
		return "assert <pred>"
	case *verifyir.Call:
		return fmt.Sprintf("call %s(...)", v.Callee.Name)
	default:
		return fmt.Sprintf("stmt %T", v)
	}
}
