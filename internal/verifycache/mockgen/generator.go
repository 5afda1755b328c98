// Package mockgen generates a stub implementation of an interface found
// by loading Go packages with go/packages, the same approach the
// teacher's internal/testrunner/mockgen uses to mock interfaces for its
// own tests: load the target package's types, find the named interface in
// its scope, and print a struct with one settable func field per method.
//
// Its one caller in this module is generating a stand-in for
// internal/verifysmt.SMTBackend so internal/verifysmt's tests can
// supply a canned Verdict without linking a real solver.
package mockgen

import (
	"bytes"
	"errors"
	"fmt"
	"go/format"
	"go/types"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"
)

// Options controls what gets generated and where it goes.
type Options struct {
	InterfaceName  string
	PackageName    string // default: <source package name>mock
	Destination    string // empty means Generate only returns the source
	SourcePatterns []string
}

// Generate loads opts.SourcePatterns, finds opts.InterfaceName among the
// loaded packages' exported types, and renders a mock struct for it.
func Generate(opts Options) (string, error) {
	if strings.TrimSpace(opts.InterfaceName) == "" {
		return "", errors.New("mockgen: InterfaceName is required")
	}
	patterns := opts.SourcePatterns
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles |
			packages.NeedTypes | packages.NeedTypesInfo | packages.NeedSyntax,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return "", fmt.Errorf("mockgen: load %v: %w", patterns, err)
	}
	if packages.PrintErrors(pkgs) > 0 {
		return "", errors.New("mockgen: one or more source packages failed to load")
	}

	var (
		found   *packages.Package
		obj     types.Object
		iface   *types.Interface
	)
	for _, p := range pkgs {
		if p.Types == nil || p.Types.Scope() == nil {
			continue
		}
		o := p.Types.Scope().Lookup(opts.InterfaceName)
		if o == nil {
			continue
		}
		t, ok := o.Type().Underlying().(*types.Interface)
		if !ok {
			continue
		}
		found, obj, iface = p, o, t.Complete()
		break
	}
	if found == nil {
		return "", fmt.Errorf("mockgen: interface %q not found in %v", opts.InterfaceName, patterns)
	}

	pkgName := opts.PackageName
	if pkgName == "" {
		pkgName = found.Name + "mock"
	}

	src, err := render(pkgName, obj, iface)
	if err != nil {
		return "", err
	}

	if opts.Destination != "" {
		if err := os.MkdirAll(filepath.Dir(opts.Destination), 0o755); err != nil {
			return "", fmt.Errorf("mockgen: mkdir %s: %w", filepath.Dir(opts.Destination), err)
		}
		if err := os.WriteFile(opts.Destination, []byte(src), 0o644); err != nil {
			return "", fmt.Errorf("mockgen: write %s: %w", opts.Destination, err)
		}
	}
	return src, nil
}

// render prints a mock type named <InterfaceName>Mock with one exported
// func field per method — a caller sets only the methods its test cares
// about and panics on the rest, the cheapest possible stand-in for an
// interface with a handful of methods.
func render(pkgName string, obj types.Object, iface *types.Interface) (string, error) {
	name := obj.Name()
	qual := func(p *types.Package) string {
		if p == nil {
			return ""
		}
		return p.Name()
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "// Code generated by internal/verifycache/mockgen. DO NOT EDIT.\n\n")
	fmt.Fprintf(&buf, "package %s\n\n", pkgName)

	imports := collectImports(iface, qual)
	if len(imports) > 0 {
		fmt.Fprintf(&buf, "import (\n")
		for _, path := range imports {
			fmt.Fprintf(&buf, "\t%q\n", path)
		}
		fmt.Fprintf(&buf, ")\n\n")
	}

	methods := make([]methodSig, iface.NumMethods())
	for i := range methods {
		methods[i] = describeMethod(iface.Method(i).Type().(*types.Signature), qual)
	}

	fmt.Fprintf(&buf, "// %sMock is a settable stand-in for %s.\n", name, name)
	fmt.Fprintf(&buf, "type %sMock struct {\n", name)
	for i := 0; i < iface.NumMethods(); i++ {
		fmt.Fprintf(&buf, "\t%sFunc func(%s) %s\n", iface.Method(i).Name(), methods[i].paramTypes, methods[i].results)
	}
	fmt.Fprintf(&buf, "}\n\n")

	for i := 0; i < iface.NumMethods(); i++ {
		mname := iface.Method(i).Name()
		m := methods[i]
		fmt.Fprintf(&buf, "func (mk *%sMock) %s(%s) %s {\n", name, mname, m.paramDecls, m.results)
		fmt.Fprintf(&buf, "\tif mk.%sFunc == nil {\n", mname)
		fmt.Fprintf(&buf, "\t\tpanic(\"%sMock.%s called with no %sFunc set\")\n", name, mname, mname)
		fmt.Fprintf(&buf, "\t}\n")
		fmt.Fprintf(&buf, "\treturn mk.%sFunc(%s)\n", mname, m.paramNames)
		fmt.Fprintf(&buf, "}\n\n")
	}

	out, err := format.Source(buf.Bytes())
	if err != nil {
		return "", fmt.Errorf("mockgen: format generated source: %w", err)
	}
	return string(out), nil
}

type methodSig struct {
	paramDecls, paramTypes, paramNames, results string
}

func describeMethod(sig *types.Signature, qual types.Qualifier) methodSig {
	params := sig.Params()
	decls := make([]string, params.Len())
	typs := make([]string, params.Len())
	names := make([]string, params.Len())
	for i := 0; i < params.Len(); i++ {
		nm := fmt.Sprintf("p%d", i)
		t := types.TypeString(params.At(i).Type(), qual)
		decls[i] = nm + " " + t
		typs[i] = t
		names[i] = nm
	}

	res := sig.Results()
	resParts := make([]string, res.Len())
	for i := 0; i < res.Len(); i++ {
		resParts[i] = types.TypeString(res.At(i).Type(), qual)
	}
	results := ""
	switch len(resParts) {
	case 0:
	case 1:
		results = resParts[0]
	default:
		results = "(" + strings.Join(resParts, ", ") + ")"
	}

	return methodSig{
		paramDecls: strings.Join(decls, ", "),
		paramTypes: strings.Join(typs, ", "),
		paramNames: strings.Join(names, ", "),
		results:    results,
	}
}

// collectImports walks every method's parameter and result types looking
// for named types from other packages, so the generated file imports
// exactly what it references — nothing more.
func collectImports(iface *types.Interface, qual types.Qualifier) []string {
	seen := map[string]bool{}
	var add func(t types.Type)
	add = func(t types.Type) {
		switch v := t.(type) {
		case *types.Named:
			if pkg := v.Obj().Pkg(); pkg != nil {
				seen[pkg.Path()] = true
			}
		case *types.Pointer:
			add(v.Elem())
		case *types.Slice:
			add(v.Elem())
		case *types.Array:
			add(v.Elem())
		case *types.Map:
			add(v.Key())
			add(v.Elem())
		}
	}
	for i := 0; i < iface.NumMethods(); i++ {
		sig := iface.Method(i).Type().(*types.Signature)
		for j := 0; j < sig.Params().Len(); j++ {
			add(sig.Params().At(j).Type())
		}
		for j := 0; j < sig.Results().Len(); j++ {
			add(sig.Results().At(j).Type())
		}
	}
	out := make([]string, 0, len(seen))
	for path := range seen {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}
