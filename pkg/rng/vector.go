package rng

// Lanes is the number of seeds processed together in one batch.
const Lanes = 8

// Vec8 holds one float64 per lane. All PRNG state is kept in this shape so
// the per-lane loops below compile to straight-line code over a fixed-size
// array; there is a single code path, so scalar and "vector" results are
// identical by construction.
type Vec8 [Lanes]float64

// Mask8 is a bitmask over the 8 lanes. Bit i corresponds to lane i.
type Mask8 uint8

const (
	// MaskAll keeps every lane.
	MaskAll Mask8 = 0xFF

	// MaskNone keeps no lane.
	MaskNone Mask8 = 0
)

// Lane reports whether lane i is set.
func (m Mask8) Lane(i int) bool { return m&(1<<uint(i)) != 0 }

// With returns m with lane i set.
func (m Mask8) With(i int) Mask8 { return m | 1<<uint(i) }

// Without returns m with lane i cleared.
func (m Mask8) Without(i int) Mask8 { return m &^ (1 << uint(i)) }

// None reports whether no lane is set.
func (m Mask8) None() bool { return m == 0 }

// Count returns the number of set lanes.
func (m Mask8) Count() int {
	n := 0
	for i := 0; i < Lanes; i++ {
		if m.Lane(i) {
			n++
		}
	}
	return n
}

// Select returns a Vec8 taking lane values from a where the mask is set and
// from b elsewhere.
func Select(m Mask8, a, b Vec8) Vec8 {
	var out Vec8
	for i := 0; i < Lanes; i++ {
		if m.Lane(i) {
			out[i] = a[i]
		} else {
			out[i] = b[i]
		}
	}
	return out
}
