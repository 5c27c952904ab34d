// Package inspect is the Inspector (spec.md §4.F): it derives a
// FunctionAnalysis for any Go func value — signature, parsed doc comment,
// AST-derived dependencies, a JSON-Schema view of its parameters, and
// performance/security hints — caching the result by FunctionIdentity and
// invalidating on source mtime or AST hash change. It is a ground-up
// rewrite for Go of the teacher's cli/reader parsing layer: the shape
// (a cache in front of an expensive parse, cheap invalidation checks run
// on every call) survives, the content does not, since quarry's reader
// parses metrics records, not Go source.
package inspect

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"reflect"
	"runtime"
	"strings"
	"sync"

	"github.com/kordless/mystic/types"
)

// Inspector derives and caches FunctionAnalysis values.
type Inspector struct {
	mu    sync.Mutex
	cache map[types.FunctionIdentity]cacheEntry
}

type cacheEntry struct {
	analysis types.FunctionAnalysis
	mtime    int64
	astHash  string
}

// New builds an empty Inspector.
func New() *Inspector {
	return &Inspector{cache: make(map[types.FunctionIdentity]cacheEntry)}
}

// Inspect derives a FunctionAnalysis for fn, serving a cached result when
// the source file's mtime and AST hash are unchanged since the last call.
func (i *Inspector) Inspect(fn any) (types.FunctionAnalysis, error) {
	identity, err := types.IdentityOf(fn)
	if err != nil {
		return types.FunctionAnalysis{}, fmt.Errorf("inspect: %w", err)
	}

	sig := signatureOf(fn, identity)

	src, srcErr := locateSource(fn)
	if srcErr != nil {
		// Source unavailable (builtin, linker-stripped, or synthesized via
		// reflect.MakeFunc): produce a signature-only analysis per
		// spec.md §4.F's edge case.
		return types.FunctionAnalysis{Signature: sig}, nil
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if cached, ok := i.cache[identity]; ok && cached.mtime == src.mtime {
		decl, hashErr := findFuncDecl(src, identity)
		if hashErr == nil {
			if hash := astHash(src.fset, decl); hash == cached.astHash {
				return cached.analysis, nil
			}
		}
	}

	decl, err := findFuncDecl(src, identity)
	if err != nil {
		return types.FunctionAnalysis{Signature: sig}, nil
	}
	refineParamNames(&sig, decl)

	analysis := types.FunctionAnalysis{
		Signature:    sig,
		Doc:          parseDocComment(decl.Doc),
		Dependencies: collectDependencies(src.file, decl),
		Schema:       schemaOf(sig),
		ReturnSchema: returnSchemaOf(sig),
		Performance:  performanceHints(src.fset, decl),
		Security:     securityHints(decl),
		ASTHash:      astHash(src.fset, decl),
		SourceMTime:  src.mtime,
	}

	i.cache[identity] = cacheEntry{analysis: analysis, mtime: src.mtime, astHash: analysis.ASTHash}
	return analysis, nil
}

// Reset clears every cached analysis, forcing the next Inspect to reparse.
func (i *Inspector) Reset() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.cache = make(map[types.FunctionIdentity]cacheEntry)
}

type sourceFile struct {
	fset  *token.FileSet
	file  *ast.File
	path  string
	mtime int64
}

// locateSource resolves fn's program counter to a file and parses it.
func locateSource(fn any) (*sourceFile, error) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return nil, fmt.Errorf("inspect: not an inspectable func value")
	}
	rf := runtime.FuncForPC(v.Pointer())
	if rf == nil {
		return nil, fmt.Errorf("inspect: no runtime.Func for value")
	}
	path, _ := rf.FileLine(v.Pointer())
	if path == "" {
		return nil, fmt.Errorf("inspect: no source file (builtin or synthesized)")
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("inspect: stat %s: %w", path, err)
	}

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("inspect: parse %s: %w", path, err)
	}
	return &sourceFile{fset: fset, file: file, path: path, mtime: info.ModTime().UnixNano()}, nil
}

// findFuncDecl finds the ast.FuncDecl matching identity's qualified name,
// stripping a "(*Type)." or "Type." receiver prefix if present.
func findFuncDecl(src *sourceFile, identity types.FunctionIdentity) (*ast.FuncDecl, error) {
	name := bareFuncName(identity.QualifiedName)
	for _, decl := range src.file.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok {
			continue
		}
		if fd.Name.Name == name {
			return fd, nil
		}
	}
	return nil, fmt.Errorf("inspect: no func decl named %q in %s", name, src.path)
}

func bareFuncName(qualified string) string {
	// "(*Type).Method" or "Type.Method" -> "Method"; plain "Func" -> "Func".
	// A bound method value (e.g. "w.Increment" passed as a func argument)
	// compiles to a synthetic "-fm" wrapper function; strip that suffix so
	// it still matches the *ast.FuncDecl name in source.
	qualified = strings.TrimSuffix(qualified, "-fm")
	lastDot := -1
	for i := len(qualified) - 1; i >= 0; i-- {
		if qualified[i] == '.' {
			lastDot = i
			break
		}
	}
	if lastDot < 0 {
		return qualified
	}
	return qualified[lastDot+1:]
}
