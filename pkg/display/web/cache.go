package web

// cache remembers the hashes of recently sent messages, so that a
// repeated frame can be replayed by index rather than sent again.
type cache struct {
	hashes []uint64
	idx    int
	used   int
}

func newCache(size int) *cache {
	return &cache{hashes: make([]uint64, size)}
}

// index returns the index of hash, or -1 if it isn't cached.
func (c *cache) index(hash uint64) int {
	for i := 0; i < c.used; i++ {
		if c.hashes[i] == hash {
			return i
		}
	}

	return -1
}

// add adds hash to the cache, evicting the oldest entry once full,
// and returns its index.
func (c *cache) add(hash uint64) int {
	i := c.idx
	c.hashes[i] = hash
	c.idx = (c.idx + 1) % len(c.hashes)
	if c.used < len(c.hashes) {
		c.used++
	}
	return i
}

// reset empties the cache.
func (c *cache) reset() {
	c.idx, c.used = 0, 0
}
