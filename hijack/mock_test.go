package hijack

import (
	"context"
	"testing"
)

func TestMock_FixedValue(t *testing.T) {
	m := NewMock(42, "development")
	result := m.Handle(context.Background(), testHC(), noopOriginal)
	if !result.Executed || result.Value != 42 {
		t.Fatalf("expected Executed=true Value=42, got %+v", result)
	}
}

func TestMock_CallableData(t *testing.T) {
	m := NewMock(func(args []any) any { return len(args) }, "development")
	result := m.Handle(context.Background(), testHC(), noopOriginal)
	if result.Value != 2 {
		t.Fatalf("expected Value=2 (len(args)), got %v", result.Value)
	}
}

func TestMock_ShouldInterceptDefaultEnvironments(t *testing.T) {
	cases := []struct {
		env  string
		want bool
	}{
		{"development", true},
		{"testing", true},
		{"production", false},
	}
	for _, c := range cases {
		m := NewMock("x", c.env)
		if got := m.ShouldIntercept(context.Background(), testHC()); got != c.want {
			t.Errorf("env=%q: expected ShouldIntercept=%v, got %v", c.env, c.want, got)
		}
	}
}

func TestMock_ShouldInterceptCustomEnvironments(t *testing.T) {
	m := NewMock("x", "staging", "staging", "qa")
	if !m.ShouldIntercept(context.Background(), testHC()) {
		t.Fatal("expected staging to be allowed")
	}
	m2 := NewMock("x", "development", "staging", "qa")
	if m2.ShouldIntercept(context.Background(), testHC()) {
		t.Fatal("expected development to no longer be allowed once Environments is set explicitly")
	}
}
