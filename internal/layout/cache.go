package layout

import (
	"sync"

	"cinder/internal/types"
)

// cache memoizes computed layouts. The driver lowers functions on separate
// goroutines over one shared Engine, so access is guarded; the lock is held
// only around the map, never across a computation, because computeLayout
// recurses back through LayoutOf for element types. Two workers may compute
// the same layout once each; the results are identical and the second put
// is a no-op overwrite.
type cache struct {
	mu      sync.RWMutex
	entries map[types.TypeID]TypeLayout
}

func newCache() *cache {
	return &cache{entries: make(map[types.TypeID]TypeLayout, 64)}
}

func (c *cache) get(id types.TypeID) (TypeLayout, bool) {
	c.mu.RLock()
	l, ok := c.entries[id]
	c.mu.RUnlock()
	return l, ok
}

func (c *cache) put(id types.TypeID, l TypeLayout) {
	c.mu.Lock()
	c.entries[id] = l
	c.mu.Unlock()
}
