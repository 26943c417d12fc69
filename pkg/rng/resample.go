package rng

import "strconv"

// inlineSiblings is how many sibling streams live inside the ResampleStream
// value itself; deeper ladders spill to the heap. Collisions past depth 16
// are vanishingly rare for real pool sizes.
const inlineSiblings = 16

// ResampleStream wraps an initial PRNG stream with a lazily-built ladder of
// sibling streams used when a draw is rejected (a duplicate in a pack, a
// voucher already active). Sibling k is derived from key+"_resample"+(k+2);
// the +2 matches the game's numbering, whose first resample stream is "2".
//
// Siblings are independent streams once constructed and never interact.
// When lanes need different resample depths, callers advance each depth
// with a mask of only the lanes that reached it.
type ResampleStream struct {
	Initial Stream

	key      string
	cache    *SeedHashCache
	depth    int
	inline   [inlineSiblings]Stream
	overflow []*Stream
}

// NewResampleStream creates the initial stream for key. No sibling is
// constructed until a caller first rejects a draw.
func NewResampleStream(c *SeedHashCache, key string) ResampleStream {
	return ResampleStream{
		Initial: *NewStreamCached(c, key),
		key:     key,
		cache:   c,
	}
}

// siblingKey returns the derivation key of sibling k.
func (r *ResampleStream) siblingKey(k int) string {
	return r.key + "_resample" + strconv.Itoa(k+2)
}

// Sibling returns the k-th sibling stream, constructing it and any shallower
// siblings on first access. Depth grows one rejection at a time, so
// construction is effectively in order.
func (r *ResampleStream) Sibling(k int) *Stream {
	for r.depth <= k {
		s := NewStream(r.cache, r.siblingKey(r.depth))
		if r.depth < inlineSiblings {
			r.inline[r.depth] = *s
		} else {
			r.overflow = append(r.overflow, s)
		}
		r.depth++
	}
	if k < inlineSiblings {
		return &r.inline[k]
	}
	return r.overflow[k-inlineSiblings]
}

// Depth returns how many siblings have been constructed.
func (r *ResampleStream) Depth() int { return r.depth }
