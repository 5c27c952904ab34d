package hijack

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/kordless/mystic/types"
)

// CacheStore persists types.CacheEntry values outside a Cache strategy's
// in-memory map, the way lode.Client persists run events outside a
// policy.BufferedPolicy's in-memory queue: an interface plus a stub,
// with the real implementation writing to disk rather than a remote
// service, per spec.md §4.G's cache_dir option.
type CacheStore interface {
	// Load reads a persisted entry for key, reporting ok=false if none
	// exists or it could not be decoded.
	Load(ctx context.Context, key string) (entry types.CacheEntry, ok bool)
	// Store persists entry for key, overwriting any prior value.
	Store(ctx context.Context, key string, entry types.CacheEntry) error
	// Delete removes any persisted entry for key.
	Delete(ctx context.Context, key string) error
}

// FileCacheStore persists cache entries as msgpack-encoded files under a
// directory, one file per key at <dir>/<sha256(key)>.cache.
type FileCacheStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileCacheStore builds a FileCacheStore rooted at dir, creating it
// if necessary.
func NewFileCacheStore(dir string) (*FileCacheStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCacheStore{dir: dir}, nil
}

func (s *FileCacheStore) pathFor(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:])+".cache")
}

func (s *FileCacheStore) Load(_ context.Context, key string) (types.CacheEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.pathFor(key))
	if err != nil {
		return types.CacheEntry{}, false
	}
	var entry types.CacheEntry
	if err := msgpack.Unmarshal(data, &entry); err != nil {
		return types.CacheEntry{}, false
	}
	return entry, true
}

func (s *FileCacheStore) Store(_ context.Context, key string, entry types.CacheEntry) error {
	data, err := msgpack.Marshal(entry)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return os.WriteFile(s.pathFor(key), data, 0o644)
}

func (s *FileCacheStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.pathFor(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

var _ CacheStore = (*FileCacheStore)(nil)

// StubCacheStore is an in-memory CacheStore for tests, mirroring
// lode.StubClient's role: it satisfies the interface without touching
// disk.
type StubCacheStore struct {
	mu      sync.Mutex
	entries map[string]types.CacheEntry
}

// NewStubCacheStore builds an empty StubCacheStore.
func NewStubCacheStore() *StubCacheStore {
	return &StubCacheStore{entries: make(map[string]types.CacheEntry)}
}

func (s *StubCacheStore) Load(_ context.Context, key string) (types.CacheEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	return entry, ok
}

func (s *StubCacheStore) Store(_ context.Context, key string, entry types.CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry
	return nil
}

func (s *StubCacheStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

var _ CacheStore = (*StubCacheStore)(nil)
