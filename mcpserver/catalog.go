package mcpserver

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/kordless/mystic/types"
)

// Catalog is the set of functions this process has opted into exposing
// over the MCP surface. Go has no runtime facility to enumerate "every
// function defined in a module" the way a dynamic host language can walk
// a module's dict — reflect and go/ast can describe a func value once you
// have one, but neither can discover one from a package path alone. The
// host program registers each function it wants discoverable, trading
// spec.md §6's implicit module-wide discovery for an explicit allow-list;
// this is recorded as an Open Question resolution rather than a
// limitation worked around silently.
type Catalog struct {
	mu      sync.RWMutex
	entries map[string]catalogEntry
}

type catalogEntry struct {
	fn       any
	identity types.FunctionIdentity
}

// NewCatalog builds an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{entries: make(map[string]catalogEntry)}
}

// Register adds fn to the catalog, keyed by its derived identity's
// full name ("module.QualifiedName"). Re-registering the same func is
// idempotent.
func (c *Catalog) Register(fn any) (types.FunctionIdentity, error) {
	identity, err := types.IdentityOf(fn)
	if err != nil {
		return types.FunctionIdentity{}, fmt.Errorf("mcpserver: catalog: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[identity.String()] = catalogEntry{fn: fn, identity: identity}
	return identity, nil
}

// Lookup returns the registered func value and identity for fullName.
func (c *Catalog) Lookup(fullName string) (any, types.FunctionIdentity, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[fullName]
	if !ok {
		return nil, types.FunctionIdentity{}, false
	}
	return entry.fn, entry.identity, true
}

// List returns catalog entries matching moduleFilter (a substring of the
// module path; empty matches everything) and includePrivate (whether to
// include functions whose unqualified name starts with a lowercase
// letter), sorted by full name for stable output.
func (c *Catalog) List(moduleFilter string, includePrivate bool) []types.FunctionIdentity {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]types.FunctionIdentity, 0, len(c.entries))
	for _, entry := range c.entries {
		if moduleFilter != "" && !strings.Contains(entry.identity.Module, moduleFilter) {
			continue
		}
		if !includePrivate && !isExportedName(entry.identity.QualifiedName) {
			continue
		}
		out = append(out, entry.identity)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// isExportedName reports whether a qualified name's last path segment
// (after stripping any receiver, e.g. "(*Tracker).snapshot" -> "snapshot")
// starts with an uppercase letter, Go's own visibility rule.
func isExportedName(qualifiedName string) bool {
	name := qualifiedName
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}
	for _, r := range name {
		return unicode.IsUpper(r)
	}
	return false
}
