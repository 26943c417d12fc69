package rng

import "math"

// Lua-compatible math.random: a Tausworthe generator over four 64-bit
// shift-register words, reconstructed from a double seed the way the
// game's runtime does it. The game reseeds on every draw, so the seeding
// path is the hot path and is kept allocation-free.

// Per-word minimum seeds: word i must start at or above 1<<luaSeedShift[i].
var luaSeedShift = [4]uint{1, 6, 9, 17}

// luaWarmup is the number of generator steps run after seeding before the
// first value is taken.
const luaWarmup = 5

// luaState is the four-word shift-register state.
type luaState struct {
	u [4]uint64
}

// newLuaState seeds the generator from a double. Each word folds the seed
// through d = d*pi + e, bit-casts it, and bumps values below the word's
// minimum so the register never collapses to a degenerate cycle.
func newLuaState(d float64) luaState {
	var st luaState
	for i := 0; i < 4; i++ {
		d = d*math.Pi + math.E
		u := math.Float64bits(d)
		m := uint64(1) << luaSeedShift[i]
		if u < m {
			u += m
		}
		st.u[i] = u
	}
	for i := 0; i < luaWarmup; i++ {
		st.step()
	}
	return st
}

// twGen advances word i with its (k, q, s) constants and xors the
// contribution into r.
func (st *luaState) twGen(r uint64, i int, k, q, s uint) uint64 {
	z := st.u[i]
	z = (((z << q) ^ z) >> (k - s)) ^ ((z &^ (^uint64(0) >> k)) << s)
	st.u[i] = z
	return r ^ z
}

// step advances all four words and returns their xor.
func (st *luaState) step() uint64 {
	var r uint64
	r = st.twGen(r, 0, 63, 31, 18)
	r = st.twGen(r, 1, 58, 19, 28)
	r = st.twGen(r, 2, 55, 24, 7)
	r = st.twGen(r, 3, 47, 21, 8)
	return r
}

// random returns the next uniform double in [0, 1): the xor fold is packed
// into the mantissa of a double in [1, 2) and shifted down.
func (st *luaState) random() float64 {
	r := st.step()
	bits := (r & 0x000fffffffffffff) | 0x3ff0000000000000
	return math.Float64frombits(bits) - 1.0
}

// luaRandom seeds a fresh state from d and takes one uniform draw.
func luaRandom(d float64) float64 {
	st := newLuaState(d)
	return st.random()
}

// LuaRandom exposes the seeded single draw for tests and scalar callers.
func LuaRandom(seed float64) float64 { return luaRandom(seed) }

// LuaRandomInt is the seeded integer draw in [lo, hi).
func LuaRandomInt(seed float64, lo, hi int) int {
	return int(luaRandom(seed)*float64(hi-lo)) + lo
}
