package hijack

import (
	"container/list"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/kordless/mystic/types"
)

// Cache memoizes the original's result per distinct argument set, per
// spec.md §4.G. The in-memory layer is a bounded LRU (container/list +
// map, the same shape laplaque's anonymizer s3fifo_cache.go uses to pair
// a list-ordered eviction queue with a backing store); when Store is set
// to a persistent CacheStore (e.g. a FileCacheStore), entries also survive
// process restarts.
type Cache struct {
	TTL        time.Duration
	MaxEntries int
	Store      CacheStore

	mu      sync.Mutex
	ll      *list.List
	entries map[string]*list.Element
}

type cacheNode struct {
	key   string
	entry types.CacheEntry
}

// NewCache builds a Cache strategy. ttl of 0 means entries never expire
// on their own (still subject to LRU eviction under maxEntries); store,
// if non-nil, mirrors writes to disk (or wherever CacheStore persists).
func NewCache(ttl time.Duration, maxEntries int, store CacheStore) *Cache {
	return &Cache{
		TTL:        ttl,
		MaxEntries: maxEntries,
		Store:      store,
		ll:         list.New(),
		entries:    make(map[string]*list.Element),
	}
}

func (*Cache) Name() string             { return "cache" }
func (*Cache) Priority() types.Priority { return types.PriorityNormal }

// ShouldIntercept is always true: a cache strategy participates in every
// call, falling through to original itself on a miss rather than
// declining and leaving a later strategy (or the wrapper's own
// fallback) to run the original a second time.
func (c *Cache) ShouldIntercept(context.Context, *types.HijackContext) bool { return true }

func (c *Cache) Handle(ctx context.Context, hc *types.HijackContext, original types.Original) types.HijackResult {
	key := c.keyFor(hc)

	if entry, ok := c.peek(key); ok {
		return types.HijackResult{Executed: true, Value: entry.Value, Metadata: map[string]any{"cache_hit": true}}
	}

	value, err := original(ctx, hc.Args)
	if err != nil {
		// Failed calls are never cached, per spec.md's cache-serialization
		// failure semantics: a cached error would otherwise mask a
		// transient failure behind the TTL window.
		return types.HijackResult{Executed: true, Err: err, Metadata: map[string]any{"cache_hit": false}}
	}

	c.put(key, types.CacheEntry{Value: value, CreatedAt: time.Now(), TTL: c.TTL})
	return types.HijackResult{Executed: true, Value: value, Metadata: map[string]any{"cache_hit": false}}
}

// HasCachedValue reports whether hc's argument set currently has a live,
// unexpired entry, without touching LRU recency order or invoking the
// original — spec.md §4.G's has_cached_value read-only check.
func (c *Cache) HasCachedValue(ctx context.Context, hc *types.HijackContext) bool {
	key := c.keyFor(hc)

	c.mu.Lock()
	if elem, ok := c.entries[key]; ok {
		node := elem.Value.(*cacheNode)
		live := !node.entry.Expired(time.Now())
		c.mu.Unlock()
		if live {
			return true
		}
	} else {
		c.mu.Unlock()
	}

	if c.Store == nil {
		return false
	}
	entry, ok := c.Store.Load(ctx, key)
	return ok && !entry.Expired(time.Now())
}

func (c *Cache) keyFor(hc *types.HijackContext) string {
	payload, err := msgpack.Marshal(hc.Args)
	if err != nil {
		payload = []byte(hc.Identity.String())
	}
	sum := sha256.Sum256(append([]byte(hc.Identity.String()+"\x00"), payload...))
	return hex.EncodeToString(sum[:])
}

// peek returns a live cached value, promoting it to most-recently-used.
// It also reconciles from Store when the in-memory map has no entry,
// re-warming the hot set the way s3fifo_cache.go falls back to its
// backing store on a memory miss.
func (c *Cache) peek(key string) (types.CacheEntry, bool) {
	c.mu.Lock()
	if elem, ok := c.entries[key]; ok {
		node := elem.Value.(*cacheNode)
		if node.entry.Expired(time.Now()) {
			c.removeLocked(elem)
			c.mu.Unlock()
			if c.Store != nil {
				_ = c.Store.Delete(context.Background(), key)
			}
			return types.CacheEntry{}, false
		}
		c.ll.MoveToFront(elem)
		entry := node.entry
		c.mu.Unlock()
		return entry, true
	}
	c.mu.Unlock()

	if c.Store == nil {
		return types.CacheEntry{}, false
	}
	entry, ok := c.Store.Load(context.Background(), key)
	if !ok || entry.Expired(time.Now()) {
		return types.CacheEntry{}, false
	}
	c.putMemory(key, entry)
	return entry, true
}

func (c *Cache) put(key string, entry types.CacheEntry) {
	c.putMemory(key, entry)
	if c.Store != nil {
		_ = c.Store.Store(context.Background(), key, entry)
	}
}

func (c *Cache) putMemory(key string, entry types.CacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		elem.Value.(*cacheNode).entry = entry
		c.ll.MoveToFront(elem)
		return
	}

	elem := c.ll.PushFront(&cacheNode{key: key, entry: entry})
	c.entries[key] = elem

	if c.MaxEntries > 0 {
		for c.ll.Len() > c.MaxEntries {
			oldest := c.ll.Back()
			if oldest == nil {
				break
			}
			c.removeLocked(oldest)
		}
	}
}

func (c *Cache) removeLocked(elem *list.Element) {
	node := elem.Value.(*cacheNode)
	delete(c.entries, node.key)
	c.ll.Remove(elem)
}

var _ types.Strategy = (*Cache)(nil)
