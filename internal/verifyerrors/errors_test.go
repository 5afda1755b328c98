package verifyerrors

import (
	"strings"
	"testing"

	"github.com/orizon-lang/orizon-verify/internal/position"
)

func TestErrorString(t *testing.T) {
	span := position.Span{
		Start: position.Position{Filename: "abs.oriz", Line: 3, Column: 2, Offset: 20},
		End:   position.Position{Filename: "abs.oriz", Line: 3, Column: 10, Offset: 28},
	}

	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"duplicate name", DuplicateName(span, "x"), "DuplicateName"},
		{"unknown name", UnknownName(span, "y"), "UnknownName"},
		{"type mismatch", TypeMismatch(span, "int", "bool"), "TypeMismatch"},
		{"missing return", MissingReturn(span, "f"), "MissingReturn"},
		{"inconsistent rankings", InconsistentRankings(span, "f", 1, 0), "InconsistentRankings"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(tt.err.Error(), tt.want) {
				t.Errorf("Error() = %q, want to contain %q", tt.err.Error(), tt.want)
			}
			if !strings.Contains(tt.err.Error(), "abs.oriz:3:2-10") {
				t.Errorf("Error() = %q, want span prefix", tt.err.Error())
			}
		})
	}
}

func TestListAccumulatesAndContinues(t *testing.T) {
	var l List
	if l.HasErrors() {
		t.Fatal("empty list should report no errors")
	}

	l.Add(UnknownName(position.Span{}, "foo"))
	l.Add(nil) // nil errors are ignored, mirroring the teacher's append-if-non-nil style
	l.Add(MissingReturn(position.Span{}, "bar"))

	if !l.HasErrors() {
		t.Fatal("expected HasErrors() true")
	}
	if len(l.Errs()) != 2 {
		t.Fatalf("Errs() len = %d, want 2", len(l.Errs()))
	}
	if !strings.Contains(l.Error(), "and 1 more error") {
		t.Errorf("Error() = %q, want summary of remaining errors", l.Error())
	}
}
