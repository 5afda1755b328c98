// orizon-verify-mockgen generates a settable stub for a Go interface found
// by loading source packages, for use in tests that need to stand in for
// an external collaborator (its default target is
// internal/verifysmt.SMTBackend) without linking a real implementation.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/orizon-lang/orizon-verify/internal/verifycache/mockgen"
)

func main() {
	var (
		iface   string
		genPkg  string
		out     string
		sources string
	)
	flag.StringVar(&iface, "interface", "SMTBackend", "interface name to mock")
	flag.StringVar(&genPkg, "pkg", "", "generated package name (default: <source pkg>mock)")
	flag.StringVar(&out, "out", "", "destination file path (writes to file when set; otherwise prints to stdout)")
	flag.StringVar(&sources, "source", "./internal/verifysmt", "source package patterns (comma-separated)")
	flag.Parse()

	if strings.TrimSpace(iface) == "" {
		fmt.Fprintln(os.Stderr, "Error: -interface is required")
		os.Exit(2)
	}

	var patterns []string
	for _, p := range strings.Split(sources, ",") {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}

	code, err := mockgen.Generate(mockgen.Options{
		InterfaceName:  iface,
		PackageName:    genPkg,
		Destination:    out,
		SourcePatterns: patterns,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	if out != "" {
		fmt.Fprintln(os.Stdout, "Mock generated:", out)
		return
	}
	fmt.Fprintln(os.Stdout, code)
}
