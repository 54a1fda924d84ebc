package compile

import (
	"fmt"

	"github.com/SamJeffrey8/helios/ast"
	"github.com/SamJeffrey8/helios/parser"
	"github.com/SamJeffrey8/helios/source"
)

// ResolveImports textually inlines every `import { Name1, Name2 } from
// module` declaration in prog, replacing it with the named declarations
// (or all top-level declarations if Names is empty) parsed out of the
// loaded unit, recursively resolving that unit's own imports first.
// Declarations keep their original Site, so diagnostics still point at
// the imported file, not the importing one.
func ResolveImports(prog *ast.Program, load source.Loader, seen map[string]bool) error {
	if seen == nil {
		seen = map[string]bool{}
	}
	var merged []ast.Stmt
	for _, decl := range prog.Decls {
		imp, ok := decl.(*ast.ImportDecl)
		if !ok {
			merged = append(merged, decl)
			continue
		}
		if seen[imp.Module] {
			return fmt.Errorf("compile: import cycle on module %q", imp.Module)
		}
		seen[imp.Module] = true

		u, err := load(imp.Module)
		if err != nil {
			return err
		}
		sub, err := parser.Parse(u)
		if err != nil {
			return fmt.Errorf("compile: parsing imported module %q: %w", imp.Module, err)
		}
		if err := ResolveImports(sub, load, seen); err != nil {
			return err
		}
		merged = append(merged, filterExports(sub.Decls, imp.Names)...)
	}
	prog.Decls = merged
	return nil
}

func filterExports(decls []ast.Stmt, names []string) []ast.Stmt {
	if len(names) == 0 {
		return decls
	}
	want := map[string]bool{}
	for _, n := range names {
		want[n] = true
	}
	var out []ast.Stmt
	for _, d := range decls {
		if want[declName(d)] {
			out = append(out, d)
		}
	}
	return out
}

func declName(d ast.Stmt) string {
	switch v := d.(type) {
	case *ast.ConstDecl:
		return v.Name
	case *ast.FuncDecl:
		return v.Name
	case *ast.StructDecl:
		return v.Name
	case *ast.EnumDecl:
		return v.Name
	}
	return ""
}
