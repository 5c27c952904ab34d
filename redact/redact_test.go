package redact

import (
	"regexp"
	"testing"
)

func TestRedact_Password(t *testing.T) {
	got := RedactAny("connecting with password=hunter2 now")
	want := "connecting with password=**** now"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRedact_APIKeyVariants(t *testing.T) {
	cases := []string{
		"api_key=abc123",
		"api-key=abc123",
		"apikey=abc123",
	}
	for _, in := range cases {
		got := RedactAny(in)
		if got == in {
			t.Errorf("expected %q to be redacted", in)
		}
	}
}

func TestRedact_TokenAndSecret(t *testing.T) {
	got := RedactAny("token=abc, secret=xyz")
	want := "token=****, secret=****"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRedact_CardNumber(t *testing.T) {
	got := RedactAny("card on file: 4111111111111111")
	want := "card on file: ****"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRedact_SSN(t *testing.T) {
	got := RedactAny("ssn 123-45-6789 on record")
	want := "ssn **** on record"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRedact_MapRecursesValuesNotKeys(t *testing.T) {
	in := map[string]any{"password": "password=hunter2"}
	out := RedactAny(in).(map[string]any)
	if _, ok := out["password"]; !ok {
		t.Fatal("expected key to survive unrewritten")
	}
	if out["password"] != "password=****" {
		t.Errorf("got %v", out["password"])
	}
}

func TestRedact_SliceElementwise(t *testing.T) {
	in := []any{"token=abc", "plain text"}
	out := RedactAny(in).([]any)
	if out[0] != "token=****" {
		t.Errorf("got %v", out[0])
	}
	if out[1] != "plain text" {
		t.Errorf("got %v", out[1])
	}
}

func TestRedact_NonStringPassthrough(t *testing.T) {
	if got := RedactAny(42); got != 42 {
		t.Errorf("expected int to pass through unchanged, got %v", got)
	}
}

func TestRedact_UserPatternsBeforeBuiltins(t *testing.T) {
	r := New(WithPatterns(regexp.MustCompile(`(custom\s*=\s*)\S+`)))
	got := r.Redact("custom=foo token=bar")
	want := "custom=**** token=****"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRedact_NeverPanics(t *testing.T) {
	defer func() {
		if p := recover(); p != nil {
			t.Fatalf("Redact panicked: %v", p)
		}
	}()
	r := New()
	_ = r.Redact(nil)
	_ = r.Redact(map[string]any{"a": map[string]any{"b": "token=x"}})
}
