package verifyreport

import (
	"bytes"
	"strings"
	"testing"

	"github.com/orizon-lang/orizon-verify/internal/position"
	"github.com/orizon-lang/orizon-verify/internal/verifyerrors"
)

func span(file string, line, startCol, endCol int) position.Span {
	return position.Span{
		Start: position.Position{Filename: file, Line: line, Column: startCol, Offset: startCol},
		End:   position.Position{Filename: file, Line: line, Column: endCol, Offset: endCol},
	}
}

func TestPrintEmptyReportSaysNoErrors(t *testing.T) {
	var r Report
	var buf bytes.Buffer
	r.Print(&buf, nil, false)

	if !strings.Contains(buf.String(), "no errors") {
		t.Errorf("output = %q, want it to mention no errors", buf.String())
	}
}

func TestSortOrdersByFileThenLineThenColumn(t *testing.T) {
	var r Report
	r.AddError(&verifyerrors.Error{Kind: verifyerrors.KindUnknownName, Span: span("b.oriz", 1, 1, 2), Def: "g"})
	r.AddError(&verifyerrors.Error{Kind: verifyerrors.KindUnknownName, Span: span("a.oriz", 5, 1, 2), Def: "f"})
	r.AddError(&verifyerrors.Error{Kind: verifyerrors.KindUnknownName, Span: span("a.oriz", 2, 9, 10), Def: "e"})

	r.Sort()

	got := []string{r.errs[0].Def, r.errs[1].Def, r.errs[2].Def}
	want := []string{"e", "f", "g"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sorted defs = %v, want %v", got, want)
		}
	}
}

func TestAddFromListAndAddErrorBothAccumulate(t *testing.T) {
	var r Report
	var list verifyerrors.List
	list.Add(verifyerrors.UnknownName(span("f.oriz", 1, 1, 2), "x"))
	list.Add(verifyerrors.TypeMismatch(span("f.oriz", 2, 1, 2), "int", "bool"))

	r.Add(&list)
	r.AddError(verifyerrors.MissingReturn(span("f.oriz", 3, 1, 1), "g"))

	if r.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", r.Count())
	}
	if !r.HasErrors() {
		t.Error("HasErrors() should be true")
	}
}

func TestAddNilListIsNoop(t *testing.T) {
	var r Report
	r.Add(nil)
	if r.HasErrors() {
		t.Error("adding a nil list should not produce any errors")
	}
}

func TestPrintIncludesSourceLineAndCaret(t *testing.T) {
	var r Report
	r.AddError(verifyerrors.UnknownName(span("f.oriz", 1, 5, 8), "abc"))

	src := position.NewSourceFile("f.oriz", "int abc = 1;")

	var buf bytes.Buffer
	r.Print(&buf, src, false)

	out := buf.String()
	if !strings.Contains(out, "int abc = 1;") {
		t.Errorf("output missing source line: %q", out)
	}
	if !strings.Contains(out, "    ^^^") {
		t.Errorf("output missing aligned caret run: %q", out)
	}
}

func TestPrintPluralizesSummaryCorrectly(t *testing.T) {
	var r Report
	r.AddError(verifyerrors.UnknownName(span("f.oriz", 1, 1, 2), "x"))

	var buf bytes.Buffer
	r.Print(&buf, nil, false)
	if !strings.Contains(buf.String(), "1 error\n") {
		t.Errorf("singular summary wrong: %q", buf.String())
	}

	r.AddError(verifyerrors.UnknownName(span("f.oriz", 2, 1, 2), "y"))
	buf.Reset()
	r.Print(&buf, nil, false)
	if !strings.Contains(buf.String(), "2 errors\n") {
		t.Errorf("plural summary wrong: %q", buf.String())
	}
}
