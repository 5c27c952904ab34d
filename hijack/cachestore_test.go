package hijack

import (
	"context"
	"testing"
	"time"

	"github.com/kordless/mystic/types"
)

func TestStubCacheStore_StoreLoadDelete(t *testing.T) {
	s := NewStubCacheStore()
	ctx := context.Background()
	entry := types.CacheEntry{Value: 42, CreatedAt: time.Now()}

	if err := s.Store(ctx, "k", entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok := s.Load(ctx, "k")
	if !ok || got.Value != 42 {
		t.Fatalf("expected cached value 42, got %+v ok=%v", got, ok)
	}

	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := s.Load(ctx, "k"); ok {
		t.Fatal("expected entry to be gone after Delete")
	}
}

func TestFileCacheStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileCacheStore(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()
	entry := types.CacheEntry{Value: "hello", CreatedAt: time.Now(), TTL: time.Minute}

	if err := s.Store(ctx, "greeting", entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reloaded, err := NewFileCacheStore(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok := reloaded.Load(ctx, "greeting")
	if !ok {
		t.Fatal("expected entry to survive across store instances")
	}
	if got.Value != "hello" {
		t.Fatalf("expected %q, got %v", "hello", got.Value)
	}
}

func TestFileCacheStore_LoadMissReturnsFalse(t *testing.T) {
	s, err := NewFileCacheStore(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := s.Load(context.Background(), "nope"); ok {
		t.Fatal("expected miss for unknown key")
	}
}

func TestFileCacheStore_Delete(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileCacheStore(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()
	_ = s.Store(ctx, "k", types.CacheEntry{Value: 1, CreatedAt: time.Now()})
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := s.Load(ctx, "k"); ok {
		t.Fatal("expected entry removed")
	}
	// deleting again is a no-op, not an error
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("expected idempotent delete, got error: %v", err)
	}
}
