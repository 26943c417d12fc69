package rng

import "math"

// PRNG step constants. The state walk is state*mul + add, fractional part,
// rounded to 13 decimal digits to match the game's arithmetic.
const (
	prngMul = 1.72431234
	prngAdd = 2.134453429141
)

// round13 reproduces the game's rounding: floor(x*1e13 + 0.5) / 1e13.
func round13(x float64) float64 {
	return math.Floor(x*1e13+0.5) / 1e13
}

// Stream is an 8-lane PRNG stream bound to one batch. Its state starts at
// the pseudo-hash of (key, seed) per lane and is stepped deterministically;
// the same key on the same batch always replays the same sequence.
type Stream struct {
	key      string
	state    Vec8
	seedHash Vec8
}

// NewStream creates a stream for key, computing the key fold directly.
func NewStream(c *SeedHashCache, key string) *Stream {
	return &Stream{key: key, state: c.Hash(key), seedHash: c.SeedHash()}
}

// NewStreamCached creates a stream for key through the cache's per-key
// memo table. Use it for keys that are re-created many times per batch.
func NewStreamCached(c *SeedHashCache, key string) *Stream {
	return &Stream{key: key, state: c.HashCached(key), seedHash: c.SeedHash()}
}

// Key returns the derivation key this stream was created with.
func (s *Stream) Key() string { return s.key }

// step advances the masked lanes and returns the candidate next state for
// all 8 lanes. Lanes outside the mask keep their committed state; their
// returned values are deterministic garbage, per the cost model all lanes
// do identical work.
func (s *Stream) step(mask Mask8) Vec8 {
	var next Vec8
	for lane := 0; lane < Lanes; lane++ {
		next[lane] = round13(fract(s.state[lane]*prngMul + prngAdd))
	}
	s.state = Select(mask, next, s.state)
	return next
}

// PseudoSeed advances the masked lanes and returns the per-draw seed,
// (state + seedHash) / 2.
func (s *Stream) PseudoSeed(mask Mask8) Vec8 {
	next := s.step(mask)
	var out Vec8
	for lane := 0; lane < Lanes; lane++ {
		out[lane] = (next[lane] + s.seedHash[lane]) / 2
	}
	return out
}

// Random advances the masked lanes and returns one uniform draw in [0, 1)
// per lane, using the Lua-compatible generator reseeded from the
// pseudo-seed exactly as the game reseeds math.random on every draw.
func (s *Stream) Random(mask Mask8) Vec8 {
	ps := s.PseudoSeed(mask)
	var out Vec8
	for lane := 0; lane < Lanes; lane++ {
		out[lane] = luaRandom(ps[lane])
	}
	return out
}

// RandomInt advances the masked lanes and returns one integer draw in
// [lo, hi) per lane: floor(random()*(hi-lo)) + lo.
func (s *Stream) RandomInt(mask Mask8, lo, hi int) [Lanes]int {
	r := s.Random(mask)
	var out [Lanes]int
	for lane := 0; lane < Lanes; lane++ {
		out[lane] = int(r[lane]*float64(hi-lo)) + lo
	}
	return out
}

// Choice advances the masked lanes and returns one index draw in [0, n)
// per lane.
func (s *Stream) Choice(mask Mask8, n int) [Lanes]int {
	return s.RandomInt(mask, 0, n)
}
