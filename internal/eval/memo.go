package eval

import "sync"

// memoCache caches evaluation results for the current state
// fingerprint only. A stale entry would be a correctness bug, not a
// performance one, so the cache is invalidated wholesale the moment a
// different fingerprint is seen. Reachability search typically
// evaluates many rules against one snapshot before advancing, which is
// exactly the access pattern this serves.
type memoCache struct {
	mu          sync.Mutex
	fingerprint string
	results     map[string]bool // tree hash -> result
}

func newMemoCache() *memoCache {
	return &memoCache{results: make(map[string]bool)}
}

func (c *memoCache) get(treeHash, fingerprint string) (bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fingerprint != fingerprint {
		return false, false
	}
	result, hit := c.results[treeHash]
	return result, hit
}

func (c *memoCache) put(treeHash, fingerprint string, result bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fingerprint != fingerprint {
		// New snapshot: drop everything cached for the old one.
		c.fingerprint = fingerprint
		c.results = make(map[string]bool)
	}
	c.results[treeHash] = result
}

// size returns the number of cached results. Test hook.
func (c *memoCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.results)
}
