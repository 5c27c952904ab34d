package hijack

import (
	"testing"

	"github.com/kordless/mystic/types"
)

func addTwoForRegistry(a, b int) int { return a + b }

func TestRegistry_RegisterAndLookup(t *testing.T) {
	defer UnhijackAll()

	w, err := Hijack(addTwoForRegistry)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok := Lookup(w.Identity())
	if !ok || got != w {
		t.Fatalf("expected Lookup to return the same wrapper, got %v ok=%v", got, ok)
	}
}

func TestRegistry_List(t *testing.T) {
	defer UnhijackAll()

	w, err := Hijack(addTwoForRegistry)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, wr := range List() {
		if wr == w {
			found = true
		}
	}
	if !found {
		t.Fatal("expected List to include the registered wrapper")
	}
}

func TestRegistry_Unhijack(t *testing.T) {
	defer UnhijackAll()

	w, err := Hijack(addTwoForRegistry)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Unhijack(w.Identity()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := Lookup(w.Identity()); ok {
		t.Fatal("expected identity to be gone after Unhijack")
	}
}

func TestRegistry_UnhijackUnknownIdentityErrors(t *testing.T) {
	err := Unhijack(types.FunctionIdentity{Module: "nowhere", QualifiedName: "Nothing"})
	if err == nil {
		t.Fatal("expected error for an identity that was never hijacked")
	}
}

func TestRegistry_UnhijackAll(t *testing.T) {
	if _, err := Hijack(addTwoForRegistry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	UnhijackAll()
	if len(List()) != 0 {
		t.Fatal("expected UnhijackAll to clear the registry")
	}
}
