package inspect

import (
	"go/ast"
	"go/token"

	"github.com/kordless/mystic/types"
)

// performanceHints derives a cheap static read of decl's body per
// spec.md §4.F: recursion (self-reference in source), loop presence,
// cyclomatic complexity, and the body's line count from its opening to its
// closing brace. Blank and comment lines are counted too; they are not
// excluded.
func performanceHints(fset *token.FileSet, decl *ast.FuncDecl) types.PerformanceHints {
	hints := types.PerformanceHints{CyclomaticComplexity: 1}
	selfName := decl.Name.Name

	ast.Inspect(decl, func(n ast.Node) bool {
		switch s := n.(type) {
		case *ast.IfStmt:
			hints.CyclomaticComplexity++
		case *ast.ForStmt:
			hints.CyclomaticComplexity++
			hints.HasLoops = true
		case *ast.RangeStmt:
			hints.CyclomaticComplexity++
			hints.HasLoops = true
		case *ast.CaseClause:
			hints.CyclomaticComplexity++
		case *ast.CommClause:
			hints.CyclomaticComplexity++
		case *ast.BinaryExpr:
			if s.Op == token.LAND || s.Op == token.LOR {
				hints.CyclomaticComplexity++
			}
		case *ast.CallExpr:
			if callName(s.Fun) == selfName {
				hints.Recursive = true
			}
		}
		return true
	})

	if decl.Body != nil {
		start := fset.Position(decl.Body.Lbrace).Line
		end := fset.Position(decl.Body.Rbrace).Line
		if end >= start {
			hints.LinesOfCode = end - start + 1
		}
	}
	return hints
}

// dangerousCalls maps a call name fragment (as produced by callName, e.g.
// "exec.Command") to the SecurityHints field it sets. Go has no eval/pickle
// builtin; os/exec + unsafe + plugin are the closest analogues to
// spec.md §4.F's "dangerous construct" list for a compiled language: a
// subprocess launch, unchecked pointer conversion, and dynamic code
// loading respectively.
var dangerousCalls = map[string]func(*types.SecurityHints){
	"exec.Command":      func(h *types.SecurityHints) { h.UsesSubprocess = true },
	"exec.CommandContext": func(h *types.SecurityHints) { h.UsesSubprocess = true },
	"os.StartProcess":   func(h *types.SecurityHints) { h.UsesOSSystem = true },
	"syscall.Exec":      func(h *types.SecurityHints) { h.UsesOSSystem = true },
	"gob.NewDecoder":    func(h *types.SecurityHints) { h.UsesPickle = true },
	"gob.Register":      func(h *types.SecurityHints) { h.UsesPickle = true },
	"plugin.Open":       func(h *types.SecurityHints) { h.UsesEval = true },
}

// securityHints flags dangerous constructs observed in decl's body.
func securityHints(decl *ast.FuncDecl) types.SecurityHints {
	var hints types.SecurityHints
	ast.Inspect(decl, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		name := callName(call.Fun)
		if set, ok := dangerousCalls[name]; ok {
			set(&hints)
		}
		if sel, ok := call.Fun.(*ast.SelectorExpr); ok {
			if ident, ok := sel.X.(*ast.Ident); ok && ident.Name == "unsafe" {
				hints.UsesEval = true
			}
		}
		return true
	})
	return hints
}
