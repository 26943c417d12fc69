// Package rng implements the deterministic random number layer of the
// search engine: the game's pseudo-hash, the 13-digit rounded PRNG step,
// and a Lua-compatible math.random, all operating on 8 seed lanes in
// parallel.
//
// # Streams
//
// Every stream is derived from a (key, seed) pair by pseudo-hashing. A
// stream created with the same key from the same seed always replays the
// same draw sequence:
//
//	cache := rng.NewSeedHashCache(batch)
//	voucher := rng.NewStream(cache, "Voucher1")
//	roll := voucher.Random(rng.MaskAll)
//
// That replay property is what makes independent filters composable: each
// filter re-creates the streams it needs and observes the same items.
//
// # Lanes
//
// A batch carries 8 candidate seeds that share every character except a
// short varying prefix. All hash and PRNG state is held as Vec8, one
// float64 per lane, and every operation advances all 8 lanes with
// identical work. Masks select which lanes commit an advance; lanes
// outside the mask keep their state and receive throwaway (but
// deterministic) draw values.
//
// # Thread safety
//
// Streams, caches and batches are not thread-safe. Each worker owns its
// batch and everything derived from it.
package rng
