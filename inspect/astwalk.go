package inspect

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"go/ast"
	"go/format"
	"go/token"
	"sort"

	"github.com/kordless/mystic/types"
)

// collectDependencies walks decl's body collecting called names and
// read-side identifiers not declared locally (approximate globals).
// Go has no decorator syntax, so Decorators stays empty for vocabulary
// parity with spec.md §4.F; Closures stays empty too, since a *ast.FuncDecl
// has no closure cells the way a Go func *value* created by a literal
// does — only reflect on the running value could enumerate those, and by
// the time Inspect has a value to reflect on it has already lost the
// associated source position needed to re-walk an outer scope.
func collectDependencies(file *ast.File, decl *ast.FuncDecl) types.Dependencies {
	deps := types.Dependencies{}

	importsByName := map[string]string{}
	for _, imp := range file.Imports {
		path := trimQuotes(imp.Path.Value)
		name := path
		if imp.Name != nil {
			name = imp.Name.Name
		} else if idx := lastSlash(path); idx >= 0 {
			name = path[idx+1:]
		}
		importsByName[name] = path
	}

	calls := map[string]struct{}{}
	globals := map[string]struct{}{}
	usedImports := map[string]struct{}{}
	locals := localNames(decl)

	if decl.Body == nil {
		deps.Imports = sortedKeys(usedImports)
		deps.Calls = sortedKeys(calls)
		deps.Globals = sortedKeys(globals)
		return deps
	}

	ast.Inspect(decl.Body, func(n ast.Node) bool {
		switch expr := n.(type) {
		case *ast.CallExpr:
			if name := callName(expr.Fun); name != "" {
				calls[name] = struct{}{}
			}
		case *ast.SelectorExpr:
			if ident, ok := expr.X.(*ast.Ident); ok {
				if path, ok := importsByName[ident.Name]; ok {
					usedImports[path] = struct{}{}
				}
			}
		case *ast.Ident:
			if !locals[expr.Name] && !isKeywordIdent(expr.Name) && token.IsExported(expr.Name) {
				globals[expr.Name] = struct{}{}
			}
		}
		return true
	})

	deps.Imports = sortedKeys(usedImports)
	deps.Calls = sortedKeys(calls)
	deps.Globals = sortedKeys(globals)
	return deps
}

func callName(fn ast.Expr) string {
	switch e := fn.(type) {
	case *ast.Ident:
		return e.Name
	case *ast.SelectorExpr:
		if ident, ok := e.X.(*ast.Ident); ok {
			return ident.Name + "." + e.Sel.Name
		}
		return e.Sel.Name
	default:
		return ""
	}
}

// localNames collects every identifier declared within decl (params,
// receiver, named returns, short var decls, range vars) so collectDependencies
// doesn't mistake a local for a global reference.
func localNames(decl *ast.FuncDecl) map[string]bool {
	locals := map[string]bool{}
	addField := func(fl *ast.FieldList) {
		if fl == nil {
			return
		}
		for _, f := range fl.List {
			for _, n := range f.Names {
				locals[n.Name] = true
			}
		}
	}
	addField(decl.Recv)
	addField(decl.Type.Params)
	addField(decl.Type.Results)

	ast.Inspect(decl, func(n ast.Node) bool {
		switch s := n.(type) {
		case *ast.AssignStmt:
			if s.Tok == token.DEFINE {
				for _, lhs := range s.Lhs {
					if id, ok := lhs.(*ast.Ident); ok {
						locals[id.Name] = true
					}
				}
			}
		case *ast.RangeStmt:
			if id, ok := s.Key.(*ast.Ident); ok {
				locals[id.Name] = true
			}
			if id, ok := s.Value.(*ast.Ident); ok {
				locals[id.Name] = true
			}
		}
		return true
	})
	return locals
}

func isKeywordIdent(name string) bool {
	switch name {
	case "true", "false", "nil", "iota", "_":
		return true
	}
	return false
}

func sortedKeys(m map[string]struct{}) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func trimQuotes(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

func lastSlash(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '/' {
			return i
		}
	}
	return -1
}

// astHash is a hex digest of the canonically-printed function declaration,
// used for cache invalidation per spec.md §4.F ("computes an AST hash for
// change detection"). Printing via go/format.Node canonicalizes whitespace
// and comment placement so unrelated formatting-only edits don't appear as
// a hash change the way comparing raw source bytes would.
func astHash(fset *token.FileSet, decl *ast.FuncDecl) string {
	var buf bytes.Buffer
	if err := format.Node(&buf, fset, decl); err != nil {
		return ""
	}
	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:])
}
