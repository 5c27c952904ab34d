package inspect

import (
	"strings"

	"github.com/kordless/mystic/types"
)

// schemaOf derives a JSON-Schema object from sig's parameters, per
// spec.md §4.F. A trailing variadic parameter is omitted from properties
// and reflected via AdditionalProperties, matching the spec's *args/**kwargs
// treatment; the receiver (if any) is never part of the public schema.
func schemaOf(sig types.Signature) types.Schema {
	schema := types.Schema{Type: "object", Properties: map[string]types.SchemaProperty{}}

	for _, p := range sig.Parameters {
		if p.Kind == types.ParamKindReceiver {
			continue
		}
		if p.Kind == types.ParamKindVariadic {
			schema.AdditionalProperties = true
			continue
		}
		prop := jsonSchemaType(p.Type)
		if p.HasDefault {
			prop.Default = p.Default
		} else {
			schema.Required = append(schema.Required, p.Name)
		}
		schema.Properties[p.Name] = prop
	}
	return schema
}

// returnSchemaOf derives the separate return-value schema per spec.md §4.F.
func returnSchemaOf(sig types.Signature) types.ReturnSchema {
	if sig.ReturnType == "" {
		return types.ReturnSchema{}
	}
	return jsonSchemaType(sig.ReturnType)
}

// jsonSchemaType maps a Go type's string form (as produced by
// reflect.Type.String) onto a JSON-Schema property. error and "ok" bool
// second-return idioms aren't special-cased: they render as their literal
// Go kind, since an Inspector client that needs Go semantics can read
// Signature.ReturnType directly.
func jsonSchemaType(goType string) types.SchemaProperty {
	optional := false
	t := goType
	if strings.HasPrefix(t, "*") {
		optional = true
		t = t[1:]
	}

	prop := types.SchemaProperty{Type: scalarJSONType(t)}
	switch {
	case strings.HasPrefix(t, "[]"):
		elem := jsonSchemaType(t[2:])
		prop = types.SchemaProperty{Type: "array", Items: &elem}
	case strings.HasPrefix(t, "map["):
		prop = types.SchemaProperty{Type: "object"}
	}

	if optional {
		return types.SchemaProperty{AnyOf: []types.SchemaProperty{prop, {Type: "null"}}}
	}
	return prop
}

func scalarJSONType(t string) string {
	switch {
	case t == "string":
		return "string"
	case t == "bool":
		return "boolean"
	case strings.HasPrefix(t, "int"), strings.HasPrefix(t, "uint"):
		return "integer"
	case strings.HasPrefix(t, "float"):
		return "number"
	case t == "error":
		return "string"
	case t == "any", t == "interface {}":
		return ""
	default:
		return "object"
	}
}
