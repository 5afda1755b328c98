// Package verifyreport renders a run's accumulated verifyerrors.Error values
// as a colorized, source-annotated CLI report, and aggregates them across a
// whole program the way the teacher's internal/diagnostics.DiagnosticManager
// aggregates compiler diagnostics before printing — sorted by file, then
// position, with a per-run summary line.
package verifyreport

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/orizon-lang/orizon-verify/internal/position"
	"github.com/orizon-lang/orizon-verify/internal/verifyerrors"
)

var (
	kindColor   = color.New(color.FgRed, color.Bold)
	locColor    = color.New(color.FgCyan)
	defColor    = color.New(color.FgYellow)
	caretColor  = color.New(color.FgRed, color.Bold)
	summaryGood = color.New(color.FgGreen, color.Bold)
	summaryBad  = color.New(color.FgRed, color.Bold)
)

// Report aggregates every error surfaced while checking a program, in the
// order finding them across top-level definitions naturally produces —
// Sort brings them into display order.
type Report struct {
	errs []*verifyerrors.Error
}

// Add appends every error in l to the report; a nil or empty l is a no-op,
// so callers can call this unconditionally after checking each definition.
func (r *Report) Add(l *verifyerrors.List) {
	if l == nil {
		return
	}
	r.errs = append(r.errs, l.Errs()...)
}

// AddError appends a single error, for callers (like verifycheck.CheckProgram
// results) that don't already have a verifyerrors.List handy.
func (r *Report) AddError(e *verifyerrors.Error) {
	if e != nil {
		r.errs = append(r.errs, e)
	}
}

// HasErrors reports whether anything was ever added.
func (r *Report) HasErrors() bool {
	return len(r.errs) > 0
}

// Count returns the number of accumulated errors.
func (r *Report) Count() int {
	return len(r.errs)
}

// Sort orders the accumulated errors by file, then line, then column,
// falling back to the defining name, matching the teacher's
// DiagnosticManager.SortDiagnostics ordering.
func (r *Report) Sort() {
	sort.SliceStable(r.errs, func(i, j int) bool {
		a, b := r.errs[i], r.errs[j]
		if a.Span.Start.Filename != b.Span.Start.Filename {
			return a.Span.Start.Filename < b.Span.Start.Filename
		}
		if a.Span.Start.Line != b.Span.Start.Line {
			return a.Span.Start.Line < b.Span.Start.Line
		}
		if a.Span.Start.Column != b.Span.Start.Column {
			return a.Span.Start.Column < b.Span.Start.Column
		}
		return a.Def < b.Def
	})
}

// Print writes every accumulated error to w, sorted, followed by a one-line
// summary. source, if non-nil, supplies the offending line's text so each
// error gets a caret pointing at its span; a nil source (or a span outside
// its line count) just omits that line.
func (r *Report) Print(w io.Writer, source *position.SourceFile, colorize bool) {
	r.Sort()
	for _, e := range r.errs {
		writeError(w, e, source, colorize)
	}
	writeSummary(w, len(r.errs), colorize)
}

func writeError(w io.Writer, e *verifyerrors.Error, source *position.SourceFile, colorize bool) {
	kind := string(e.Kind)
	loc := e.Span.String()
	if colorize {
		kind = kindColor.Sprint(kind)
		loc = locColor.Sprint(loc)
	}

	fmt.Fprintf(w, "%s: %s: %s\n", loc, kind, e.Message)
	if e.Def != "" {
		def := e.Def
		if colorize {
			def = defColor.Sprint(def)
		}
		fmt.Fprintf(w, "  in %s\n", def)
	}

	if source == nil {
		return
	}
	line := source.GetLine(e.Span.Start.Line)
	if line == "" {
		return
	}
	fmt.Fprintf(w, "  %4d | %s\n", e.Span.Start.Line, line)
	fmt.Fprintf(w, "       | %s\n", caretLine(line, e.Span, colorize))
}

// caretLine builds the "       | ^^^^" line beneath a source line, measuring
// columns in display cells rather than bytes so a caret under a wide or
// multi-byte identifier still lands under it, not to its left or right.
func caretLine(line string, span position.Span, colorize bool) string {
	prefix := line
	if span.Start.Column-1 <= len(line) {
		prefix = line[:span.Start.Column-1]
	}
	pad := runewidth.StringWidth(prefix)

	width := 1
	if span.End.Line == span.Start.Line && span.End.Column > span.Start.Column {
		end := span.End.Column - 1
		if end > len(line) {
			end = len(line)
		}
		width = runewidth.StringWidth(line[span.Start.Column-1 : end])
		if width < 1 {
			width = 1
		}
	}

	carets := strings.Repeat("^", width)
	if colorize {
		carets = caretColor.Sprint(carets)
	}
	return strings.Repeat(" ", pad) + carets
}

func writeSummary(w io.Writer, n int, colorize bool) {
	if n == 0 {
		msg := "no errors"
		if colorize {
			msg = summaryGood.Sprint(msg)
		}
		fmt.Fprintf(w, "%s\n", msg)
		return
	}
	plural := "s"
	if n == 1 {
		plural = ""
	}
	msg := fmt.Sprintf("%d error%s", n, plural)
	if colorize {
		msg = summaryBad.Sprint(msg)
	}
	fmt.Fprintf(w, "%s\n", msg)
}
