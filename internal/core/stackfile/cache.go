package stackfile

import (
	"github.com/cespare/xxhash/v2"
)

// =============================================================================
// Parse Cache
// =============================================================================

// Cache memoizes parsed Documents keyed by a content hash of the source, so
// repeated compilations of identical input skip the grammar entirely.
//
// The cache hands out deep clones: the analyzer mutates documents in place,
// and a shared entry would be corrupted by the first analysis run. Access is
// not synchronized; concurrent callers must serialize externally.
type Cache struct {
	entries map[uint64]*Document
	hits    int
	misses  int
}

// NewCache creates an empty parse cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[uint64]*Document)}
}

// Parse returns a Document for the source, reusing a cached parse when the
// content hash matches. Failed parses are never cached.
func (c *Cache) Parse(filename, source string) (*Document, error) {
	key := xxhash.Sum64String(source)
	if doc, ok := c.entries[key]; ok {
		c.hits++
		return doc.Clone(), nil
	}

	doc, err := Parse(filename, source)
	if err != nil {
		return nil, err
	}
	c.misses++
	c.entries[key] = doc
	return doc.Clone(), nil
}

// Stats reports cache hits and misses since creation.
func (c *Cache) Stats() (hits, misses int) {
	return c.hits, c.misses
}

// Len returns the number of cached documents.
func (c *Cache) Len() int {
	return len(c.entries)
}
