// Package verifypipeline wires the front end and IR packages into the
// single sequence every entry point (cmd/orizon-verify, internal/verifyserver)
// runs a source file through: parse, lower to IR, run the §4.H consistency
// checks, then extract every function's basic paths. It exists so the CLI
// and the daemon can't drift into two different orderings of the same five
// packages.
package verifypipeline

import (
	"fmt"

	"github.com/orizon-lang/orizon-verify/internal/verifyast"
	"github.com/orizon-lang/orizon-verify/internal/verifycheck"
	"github.com/orizon-lang/orizon-verify/internal/verifyir"
	"github.com/orizon-lang/orizon-verify/internal/verifyparse"
	"github.com/orizon-lang/orizon-verify/internal/verifypath"
	"github.com/orizon-lang/orizon-verify/internal/verifysym"
	"github.com/orizon-lang/orizon-verify/internal/verifytypes"
	"github.com/orizon-lang/orizon-verify/internal/verifyversion"
)

// FunctionOutcome is one function's basic paths, or the errors that kept
// it from reaching extraction (per spec.md §7's discard-and-continue
// recovery policy — a bad function never stops its siblings).
type FunctionOutcome struct {
	Name       string
	Errors     []error
	BasicPaths []verifypath.BasicPath
}

// Outcome is a whole source file's result.
type Outcome struct {
	// ParseErrors and BuildErrors stop the whole file short of per-function
	// checking, since neither the AST nor the IR was usable at all.
	ParseErrors []error
	BuildErrors []error
	Functions   []FunctionOutcome
}

// OK reports whether the file produced zero errors anywhere in the
// pipeline, across every stage and every function.
func (o Outcome) OK() bool {
	if len(o.ParseErrors) != 0 || len(o.BuildErrors) != 0 {
		return false
	}
	for _, f := range o.Functions {
		if len(f.Errors) != 0 {
			return false
		}
	}
	return true
}

// Run parses src (as filename, for diagnostics only), lowers it, checks
// it, and extracts basic paths for every function whose IR and checks
// came back clean. defaultVersionConstraint is the project config's
// `verifierVersion` (internal/verifyconfig.Config.VerifierVersion),
// applied when the file declares no `//@ orizon-verify: <constraint>`
// header of its own; pass "" from a caller with no project config.
func Run(filename, src, defaultVersionConstraint string) Outcome {
	prog, perrs := verifyparse.Parse(filename, src)
	if len(perrs) != 0 {
		return Outcome{ParseErrors: perrs}
	}

	if err := checkVersionGate(prog, defaultVersionConstraint); err != nil {
		return Outcome{ParseErrors: []error{err}}
	}

	reg := verifytypes.NewRegistry()
	env := verifysym.NewEnv()
	irProg, errs := verifyir.BuildProgram(prog, reg, env)
	if errs.HasErrors() {
		return Outcome{BuildErrors: toErrors(errs.Errs())}
	}

	checkErrs := verifycheck.CheckProgram(irProg)
	failed := make(map[string]bool, len(checkErrs.Errs()))
	perFunc := make(map[string][]error)
	for _, e := range checkErrs.Errs() {
		failed[e.Def] = true
		perFunc[e.Def] = append(perFunc[e.Def], e)
	}

	out := Outcome{Functions: make([]FunctionOutcome, 0, len(irProg.Functions))}
	for _, fn := range irProg.Functions {
		fo := FunctionOutcome{Name: fn.Name, Errors: perFunc[fn.Name]}
		if !failed[fn.Name] {
			for p := range verifypath.Extract(fn) {
				fo.BasicPaths = append(fo.BasicPaths, p)
			}
		}
		out.Functions = append(out.Functions, fo)
	}
	return out
}

// checkVersionGate resolves this build's Gate (internal/verifyversion)
// and rejects prog before it ever reaches the IR builder if either the
// resolved `orizon-verify:` constraint excludes this build, or prog uses
// an annotation-grammar feature this build predates — the "front-end
// bug" InternalInvariant path is for constructs the grammar can't
// produce at all, not for ones a byte-identical older build simply
// doesn't parse yet.
func checkVersionGate(prog *verifyast.Program, defaultVersionConstraint string) error {
	gate, err := verifyversion.NewGate(verifyversion.BuildVersion)
	if err != nil {
		return fmt.Errorf("resolve verifier build version: %w", err)
	}

	constraint := prog.VersionPragma
	if constraint == "" {
		constraint = defaultVersionConstraint
	}
	if constraint != "" {
		ok, err := gate.Admits(constraint)
		if err != nil {
			return fmt.Errorf("orizon-verify version pragma: %w", err)
		}
		if !ok {
			return fmt.Errorf("this build (verifier %s) does not satisfy the orizon-verify: %s version constraint", gate.String(), constraint)
		}
	}

	for _, f := range verifyversion.FeaturesUsed(prog) {
		if !gate.Supports(f) {
			return fmt.Errorf("this build (verifier %s) does not support the %q annotation feature used in this file", gate.String(), f)
		}
	}
	return nil
}

func toErrors[T error](in []T) []error {
	out := make([]error, len(in))
	for i, e := range in {
		out[i] = e
	}
	return out
}

// Summary renders a one-line, colorless count for logs: how many
// functions checked clean out of how many were found.
func Summary(o Outcome) string {
	clean := 0
	for _, f := range o.Functions {
		if len(f.Errors) == 0 {
			clean++
		}
	}
	return fmt.Sprintf("%d/%d functions clean", clean, len(o.Functions))
}
