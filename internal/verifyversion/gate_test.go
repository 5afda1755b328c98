package verifyversion

import "testing"

func TestAdmitsCaretConstraint(t *testing.T) {
	g, err := NewGate("1.2.3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ok, err := g.Admits("^1.2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("1.2.3 should satisfy ^1.2")
	}

	ok, err = g.Admits("^1.3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("1.2.3 should not satisfy ^1.3")
	}
}

func TestAdmitsRejectsMalformedConstraint(t *testing.T) {
	g, _ := NewGate("1.0.0")
	if _, err := g.Admits("not a constraint"); err == nil {
		t.Error("expected an error for a malformed pragma")
	}
}

func TestSupportsGatesNewerFeaturesBehindOlderBuilds(t *testing.T) {
	old, _ := NewGate("1.0.0")
	if !old.Supports(FeatureLength) {
		t.Error("1.0.0 should support \\length, present since the first cut")
	}
	if old.Supports(FeatureArrayUpdate) {
		t.Error("1.0.0 should not support the functional array-update form added in 1.1")
	}
	if old.Supports(FeatureQuantifiers) {
		t.Error("1.0.0 should not support quantifiers added in 1.2")
	}

	current, _ := NewGate("1.2.0")
	if !current.Supports(FeatureArrayUpdate) || !current.Supports(FeatureQuantifiers) {
		t.Error("1.2.0 should support every feature introduced up to and including 1.2")
	}
}

func TestSupportsRejectsUnknownFeature(t *testing.T) {
	g, _ := NewGate("9.9.9")
	if g.Supports(Feature("made-up-feature")) {
		t.Error("an unrecognized feature should never be reported as supported")
	}
}

func TestNewGateRejectsInvalidVersion(t *testing.T) {
	if _, err := NewGate("not-a-version"); err == nil {
		t.Error("expected an error for an invalid build version")
	}
}
