package inspect

import (
	"go/ast"
	"reflect"

	"github.com/kordless/mystic/types"
)

// signatureOf derives a Signature from fn's reflect.Type. Go has no
// defaults, keyword args, or async/generator/method-kind distinctions at
// the type level, so Flags mostly stays false except HasVarargs — kept
// for vocabulary parity with spec.md §4.F.
func signatureOf(fn any, identity types.FunctionIdentity) types.Signature {
	t := reflect.TypeOf(fn)
	sig := types.Signature{
		Name:     bareFuncName(identity.QualifiedName),
		Module:   identity.Module,
		QualName: identity.QualifiedName,
	}
	if t == nil || t.Kind() != reflect.Func {
		return sig
	}

	numIn := t.NumIn()
	for idx := 0; idx < numIn; idx++ {
		variadic := t.IsVariadic() && idx == numIn-1
		kind := types.ParamKindPositional
		if variadic {
			kind = types.ParamKindVariadic
		}
		sig.Parameters = append(sig.Parameters, types.Parameter{
			Name: paramName(idx),
			Kind: kind,
			Type: t.In(idx).String(),
		})
	}
	sig.Flags.HasVarargs = t.IsVariadic()

	switch t.NumOut() {
	case 0:
		sig.ReturnType = ""
	case 1:
		sig.ReturnType = t.Out(0).String()
	default:
		rt := "("
		for idx := 0; idx < t.NumOut(); idx++ {
			if idx > 0 {
				rt += ", "
			}
			rt += t.Out(idx).String()
		}
		rt += ")"
		sig.ReturnType = rt
	}
	return sig
}

// refineParamNames overwrites the reflect-derived positional arga/argb/...
// placeholders with the real parameter names from the source, including
// receivers (kept separate with ParamKindReceiver); fields declared
// together ("a, b int") each get their own name.
func refineParamNames(sig *types.Signature, decl *ast.FuncDecl) {
	if decl.Recv != nil && len(decl.Recv.List) == 1 && len(sig.Parameters) >= 0 {
		recv := decl.Recv.List[0]
		recvName := "_"
		if len(recv.Names) > 0 {
			recvName = recv.Names[0].Name
		}
		sig.Flags.IsMethod = true
		recvParam := types.Parameter{Name: recvName, Kind: types.ParamKindReceiver, Type: exprString(recv.Type)}
		sig.Parameters = append([]types.Parameter{recvParam}, sig.Parameters...)
	}

	if decl.Type.Params == nil {
		return
	}
	names := make([]string, 0, len(sig.Parameters))
	for _, field := range decl.Type.Params.List {
		if len(field.Names) == 0 {
			names = append(names, "_")
			continue
		}
		for _, n := range field.Names {
			names = append(names, n.Name)
		}
	}

	offset := 0
	if decl.Recv != nil {
		offset = 1
	}
	for i, name := range names {
		idx := offset + i
		if idx < len(sig.Parameters) {
			sig.Parameters[idx].Name = name
		}
	}
}

func exprString(e ast.Expr) string {
	switch t := e.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return "*" + exprString(t.X)
	default:
		return ""
	}
}

// paramName synthesizes a positional name; reflect.Type carries no
// parameter names, only types, so "arga", "argb", ... "argz" (and the
// literal "argN" past the 26th) is the best Go can offer without parsing
// the source's func literal parameter list separately.
func paramName(idx int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	if idx < len(letters) {
		return "arg" + string(letters[idx])
	}
	return "argN"
}
