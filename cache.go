package sheetdb

import (
	"strings"
	"sync"
)

// HeaderCache memoizes discovered column headers per table so repeated
// operations skip the header read. Entries are keyed by backend identity
// plus table name, so two media sharing a table name never collide. The
// cache is never invalidated automatically; callers who know the schema
// changed out-of-band use Invalidate.
type HeaderCache struct {
	mu      sync.RWMutex
	headers map[string][]string
}

// NewHeaderCache creates an empty HeaderCache.
func NewHeaderCache() *HeaderCache {
	return &HeaderCache{headers: make(map[string][]string)}
}

func cacheKey(backendID, table string) string {
	return backendID + "\x00" + table
}

// Get returns the cached headers for a table, or false on a miss.
func (c *HeaderCache) Get(backendID, table string) ([]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	headers, ok := c.headers[cacheKey(backendID, table)]
	if !ok {
		return nil, false
	}

	out := make([]string, len(headers))
	copy(out, headers)
	return out, true
}

// Set stores the headers for a table.
func (c *HeaderCache) Set(backendID, table string, headers []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := make([]string, len(headers))
	copy(stored, headers)
	c.headers[cacheKey(backendID, table)] = stored
}

// Invalidate drops the cached headers for one table.
func (c *HeaderCache) Invalidate(backendID, table string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.headers, cacheKey(backendID, table))
}

// InvalidateBackend drops all cached headers belonging to one backend.
func (c *HeaderCache) InvalidateBackend(backendID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prefix := backendID + "\x00"
	for key := range c.headers {
		if strings.HasPrefix(key, prefix) {
			delete(c.headers, key)
		}
	}
}

// InvalidateAll drops every cached entry.
func (c *HeaderCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.headers = make(map[string][]string)
}

// Len returns the number of cached tables.
func (c *HeaderCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.headers)
}
