package verifysmt

import (
	"context"
	"testing"
)

func TestMockSatisfiesSMTBackend(t *testing.T) {
	var backend SMTBackend = &SMTBackendMock{
		CheckFunc: func(ctx context.Context, cs ConditionSet) (Verdict, error) {
			if cs.Goal == "" {
				t.Fatal("goal should not be empty")
			}
			return Valid, nil
		},
	}

	v, err := backend.Check(context.Background(), ConditionSet{
		Assumptions: []string{"n >= 0"},
		Goal:        "n + 1 > 0",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != Valid {
		t.Fatalf("Verdict = %v, want Valid", v)
	}
}

func TestMockPanicsWhenUnset(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic when CheckFunc is unset")
		}
	}()
	(&SMTBackendMock{}).Check(context.Background(), ConditionSet{})
}
