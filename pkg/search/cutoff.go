package search

import "sync/atomic"

// Cutoff filters low-scoring seeds before they reach the output channel.
// A nil Cutoff admits everything; the zero value admits every score at
// or above 0. A fixed cutoff admits scores at or
// above the bound; an auto cutoff tracks the high-water mark seen so far
// and admits anything at or above it, tightening as better seeds appear.
//
// Auto mode is shared across workers, so admission is monotone but the
// exact set of early low scores that slip through before the mark rises
// depends on arrival order. The final high-water mark does not.
type Cutoff struct {
	fixed int64
	auto  bool
	mark  atomic.Int64
}

// FixedCutoff admits scores >= bound.
func FixedCutoff(bound int) *Cutoff {
	c := &Cutoff{fixed: int64(bound)}
	c.mark.Store(int64(bound))
	return c
}

// AutoCutoff admits scores at or above the best seen so far.
func AutoCutoff() *Cutoff {
	return &Cutoff{auto: true}
}

// Admit decides whether a score passes, updating the auto mark.
func (c *Cutoff) Admit(score int) bool {
	if c == nil {
		return true
	}
	s := int64(score)
	if !c.auto {
		return s >= c.fixed
	}
	for {
		cur := c.mark.Load()
		if s < cur {
			return false
		}
		if s == cur || c.mark.CompareAndSwap(cur, s) {
			return true
		}
	}
}

// Mark returns the current admission bound.
func (c *Cutoff) Mark() int {
	if c == nil {
		return 0
	}
	return int(c.mark.Load())
}
