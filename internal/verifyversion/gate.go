// Package verifyversion resolves the contract header's
// `//@ orizon-verify: <constraint>` version pragma against this build's own
// version, gating which annotation-grammar features a program may use.
//
// The grammar has grown incrementally (`\length`, functional array update,
// quantifiers were all added after the first cut), so an older build
// rejects newer syntax rather than silently misinterpreting it.
package verifyversion

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// Feature is one annotation-grammar addition gated behind a minimum
// verifier version.
type Feature string

const (
	FeatureLength         Feature = "length"         // \length(a)
	FeatureArrayUpdate    Feature = "array-update"    // {t \with [i] = v}
	FeatureQuantifiers    Feature = "quantifiers"     // forall/exists
	FeatureChainedCompare Feature = "chained-compare" // a < b < c
)

// requirements is the minimum semver constraint each Feature needs,
// checked the same way outdated.go checks a dependency's allowed range
// against a candidate version.
var requirements = map[Feature]string{
	FeatureLength:         ">=1.0.0",
	FeatureChainedCompare: ">=1.0.0",
	FeatureArrayUpdate:    ">=1.1.0",
	FeatureQuantifiers:    ">=1.2.0",
}

// Gate is this build's resolved version, ready to check pragmas and
// features against.
type Gate struct {
	version *semver.Version
}

// NewGate parses this build's own version string (e.g. injected via
// -ldflags at release time) into a Gate.
func NewGate(buildVersion string) (*Gate, error) {
	v, err := semver.NewVersion(buildVersion)
	if err != nil {
		return nil, fmt.Errorf("invalid build version %q: %w", buildVersion, err)
	}
	return &Gate{version: v}, nil
}

// Admits reports whether this build satisfies a program's declared
// `//@ orizon-verify: <constraint>` pragma, e.g. "^1.2" or ">=1.0, <2.0".
func (g *Gate) Admits(constraint string) (bool, error) {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false, fmt.Errorf("invalid orizon-verify pragma %q: %w", constraint, err)
	}
	return c.Check(g.version), nil
}

// Supports reports whether this build's version is new enough for f. A
// Feature missing from the requirements table is never supported.
func (g *Gate) Supports(f Feature) bool {
	req, ok := requirements[f]
	if !ok {
		return false
	}
	c, err := semver.NewConstraint(req)
	if err != nil {
		return false // requirements is a compile-time table; unreachable in practice
	}
	return c.Check(g.version)
}

// String returns this build's resolved version.
func (g *Gate) String() string {
	return g.version.String()
}
