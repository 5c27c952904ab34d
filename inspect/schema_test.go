package inspect

import (
	"testing"

	"github.com/kordless/mystic/types"
)

func TestJSONSchemaType_Scalars(t *testing.T) {
	cases := map[string]string{
		"string":  "string",
		"bool":    "boolean",
		"int":     "integer",
		"int64":   "integer",
		"uint32":  "integer",
		"float64": "number",
	}
	for goType, want := range cases {
		got := jsonSchemaType(goType)
		if got.Type != want {
			t.Fatalf("%s: got %q want %q", goType, got.Type, want)
		}
	}
}

func TestJSONSchemaType_Slice(t *testing.T) {
	got := jsonSchemaType("[]string")
	if got.Type != "array" || got.Items == nil || got.Items.Type != "string" {
		t.Fatalf("unexpected slice schema: %+v", got)
	}
}

func TestJSONSchemaType_Pointer(t *testing.T) {
	got := jsonSchemaType("*int")
	if len(got.AnyOf) != 2 {
		t.Fatalf("expected anyOf with 2 branches for pointer type, got %+v", got)
	}
	hasNull := false
	for _, branch := range got.AnyOf {
		if branch.Type == "null" {
			hasNull = true
		}
	}
	if !hasNull {
		t.Fatal("expected a null branch for pointer/optional type")
	}
}

func TestSchemaOf_RequiredParams(t *testing.T) {
	sig := types.Signature{
		Parameters: []types.Parameter{
			{Name: "a", Kind: types.ParamKindPositional, Type: "int"},
			{Name: "b", Kind: types.ParamKindPositional, Type: "string", HasDefault: true, Default: "z"},
		},
	}
	schema := schemaOf(sig)
	if len(schema.Required) != 1 || schema.Required[0] != "a" {
		t.Fatalf("expected only 'a' required, got %+v", schema.Required)
	}
	prop, ok := schema.Properties["b"]
	if !ok {
		t.Fatal("expected 'b' present in properties even though not required")
	}
	if prop.Default != "z" {
		t.Fatalf("expected defaulted parameter's value to appear in the schema, got %+v", prop.Default)
	}
}

func TestSchemaOf_ReceiverExcluded(t *testing.T) {
	sig := types.Signature{
		Parameters: []types.Parameter{
			{Name: "w", Kind: types.ParamKindReceiver, Type: "*widget"},
			{Name: "delta", Kind: types.ParamKindPositional, Type: "int"},
		},
	}
	schema := schemaOf(sig)
	if _, ok := schema.Properties["w"]; ok {
		t.Fatal("receiver must not appear in the schema")
	}
	if _, ok := schema.Properties["delta"]; !ok {
		t.Fatal("expected delta in schema")
	}
}
