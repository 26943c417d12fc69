package rng

// SeedHashCache holds the partially-computed hash state for one batch.
//
// The reversed seed occupies logical positions 0..Length-1 of every hash,
// so its per-lane fold is computed once and every stream creation resumes
// from it, paying only for the key's characters. Full key hashes are
// additionally memoized so that filters re-creating the same stream (the
// common case across chained filters) pay nothing after the first time.
//
// The cache is valid for exactly one batch and must be rebuilt when the
// batch advances.
type SeedHashCache struct {
	batch     *SeedBatch
	seedState Vec8
	keys      map[string]Vec8
}

// NewSeedHashCache computes the shared seed fold for the batch.
func NewSeedHashCache(batch *SeedBatch) *SeedHashCache {
	return &SeedHashCache{
		batch:     batch,
		seedState: batch.seedState(),
		keys:      make(map[string]Vec8, 32),
	}
}

// Batch returns the batch this cache was built for.
func (c *SeedHashCache) Batch() *SeedBatch { return c.batch }

// SeedHash returns pseudohash("", seed) for every lane. It is the hash
// state after the bare seed and feeds every pseudo-seed computation.
func (c *SeedHashCache) SeedHash() Vec8 { return c.seedState }

// Hash computes the per-lane pseudo-hash for key without touching the memo
// table. Cost is proportional to len(key) only.
func (c *SeedHashCache) Hash(key string) Vec8 {
	return extendHash(c.seedState, key, c.batch.length)
}

// HashCached is Hash with per-key memoization. The first call for a key
// computes and stores the state; later calls return the stored copy.
func (c *SeedHashCache) HashCached(key string) Vec8 {
	if v, ok := c.keys[key]; ok {
		return v
	}
	v := c.Hash(key)
	c.keys[key] = v
	return v
}
