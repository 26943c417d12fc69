package search

import (
	"fmt"
	"sync"

	"github.com/OptimusPi/motely/pkg/rng"
)

// BatchSource produces the candidate seed batches of a search. A source
// is drained by concurrent workers; implementations must be safe for
// concurrent NextBatch calls.
//
// A source constructed from the same parameters produces the exact same
// sequence of (batch, index) pairs, which is what makes searches
// resumable by batch range.
type BatchSource interface {
	// NextBatch returns the next batch and its index. ok is false when
	// the source is exhausted.
	NextBatch() (batch *rng.SeedBatch, index uint64, ok bool, err error)
}

// Sequential enumerates fixed-length seeds in lexicographic order of the
// seed alphabet. The first VarCount reversed characters advance across
// lanes within a batch; the remaining characters advance between batch
// groups. Start and end bound the enumeration by batch index, end
// exclusive (0 = no bound).
type Sequential struct {
	length   int
	varCount int
	end      uint64

	prefixSpace      uint64
	batchesPerSuffix uint64
	totalBatches     uint64

	mu   sync.Mutex
	next uint64
}

// NewSequential creates a sequential source over all seeds of the given
// length. batchChars is how many reversed characters vary across lanes
// (the CLI's batch size, 1-8).
func NewSequential(length, batchChars int, startBatch, endBatch uint64) (*Sequential, error) {
	if length < 1 || length > rng.MaxSeedLen {
		return nil, fmt.Errorf("seed length %d out of range [1, %d]", length, rng.MaxSeedLen)
	}
	if batchChars < 1 || batchChars > length {
		return nil, fmt.Errorf("batch size %d out of range [1, %d]", batchChars, length)
	}

	prefixSpace := uint64(1)
	for i := 0; i < batchChars; i++ {
		prefixSpace *= uint64(rng.AlphabetSize)
	}
	suffixSpace := uint64(1)
	for i := batchChars; i < length; i++ {
		suffixSpace *= uint64(rng.AlphabetSize)
	}
	batchesPerSuffix := (prefixSpace + rng.Lanes - 1) / rng.Lanes
	total := batchesPerSuffix * suffixSpace

	if endBatch == 0 || endBatch > total {
		endBatch = total
	}
	if startBatch > endBatch {
		return nil, fmt.Errorf("start batch %d past end batch %d", startBatch, endBatch)
	}

	return &Sequential{
		length:           length,
		varCount:         batchChars,
		end:              endBatch,
		prefixSpace:      prefixSpace,
		batchesPerSuffix: batchesPerSuffix,
		totalBatches:     total,
		next:             startBatch,
	}, nil
}

// TotalBatches returns the number of batches in the unbounded enumeration.
func (s *Sequential) TotalBatches() uint64 { return s.totalBatches }

// NextBatch claims the next batch index and materializes it.
func (s *Sequential) NextBatch() (*rng.SeedBatch, uint64, bool, error) {
	s.mu.Lock()
	index := s.next
	if index >= s.end {
		s.mu.Unlock()
		return nil, 0, false, nil
	}
	s.next++
	s.mu.Unlock()

	batch, err := s.Batch(index)
	return batch, index, err == nil, err
}

// Batch materializes the batch at an index. The mapping is pure: the same
// index always yields the same 8 seeds.
func (s *Sequential) Batch(index uint64) (*rng.SeedBatch, error) {
	if index >= s.totalBatches {
		return nil, fmt.Errorf("batch index %d past end of enumeration %d", index, s.totalBatches)
	}
	suffixIndex := index / s.batchesPerSuffix
	within := index % s.batchesPerSuffix

	// Decode the shared suffix once, reversed positions varCount.. .
	suffix := make([]byte, s.length-s.varCount)
	v := suffixIndex
	for i := range suffix {
		suffix[i] = rng.SeedAlphabet[v%uint64(rng.AlphabetSize)]
		v /= uint64(rng.AlphabetSize)
	}

	seeds := make([]string, 0, rng.Lanes)
	for lane := 0; lane < rng.Lanes; lane++ {
		prefixValue := within*rng.Lanes + uint64(lane)
		if prefixValue >= s.prefixSpace {
			break // tail of a partial batch; NewSeedBatch pads and masks
		}
		buf := make([]byte, s.length)
		p := prefixValue
		for pos := 0; pos < s.varCount; pos++ {
			buf[s.length-1-pos] = rng.SeedAlphabet[p%uint64(rng.AlphabetSize)]
			p /= uint64(rng.AlphabetSize)
		}
		for pos := s.varCount; pos < s.length; pos++ {
			buf[s.length-1-pos] = suffix[pos-s.varCount]
		}
		seeds = append(seeds, string(buf))
	}
	return rng.NewSeedBatch(seeds, s.varCount)
}

// List enumerates an explicit seed list in order, 8 per batch, padding
// the final batch by replicating its last seed with the tail masked.
type List struct {
	seeds []string

	mu   sync.Mutex
	next uint64
}

// NewList validates and normalizes the seeds. All seeds must share one
// length; list batches vary in every position.
func NewList(seeds []string) (*List, error) {
	if len(seeds) == 0 {
		return nil, fmt.Errorf("seed list must not be empty")
	}
	norm := make([]string, len(seeds))
	for i, s := range seeds {
		norm[i] = rng.NormalizeSeed(s)
		if err := rng.ValidateSeed(norm[i]); err != nil {
			return nil, err
		}
		if len(norm[i]) != len(norm[0]) {
			return nil, fmt.Errorf("seed %q length differs from %q; list seeds must share a length", s, seeds[0])
		}
	}
	return &List{seeds: norm}, nil
}

// TotalBatches returns the number of batches the list yields.
func (l *List) TotalBatches() uint64 {
	return (uint64(len(l.seeds)) + rng.Lanes - 1) / rng.Lanes
}

// NextBatch claims and materializes the next chunk of 8 seeds.
func (l *List) NextBatch() (*rng.SeedBatch, uint64, bool, error) {
	l.mu.Lock()
	index := l.next
	if index >= l.TotalBatches() {
		l.mu.Unlock()
		return nil, 0, false, nil
	}
	l.next++
	l.mu.Unlock()

	lo := index * rng.Lanes
	hi := lo + rng.Lanes
	if hi > uint64(len(l.seeds)) {
		hi = uint64(len(l.seeds))
	}
	batch, err := rng.NewSeedBatch(l.seeds[lo:hi], len(l.seeds[0]))
	return batch, index, err == nil, err
}

// Provider adapts a caller-supplied pull function to a BatchSource. The
// function returns the next up-to-8 seeds, or ok=false at exhaustion.
type Provider struct {
	pull func() (seeds []string, ok bool)

	mu   sync.Mutex
	next uint64
}

// NewProvider wraps a pull function.
func NewProvider(pull func() ([]string, bool)) *Provider {
	return &Provider{pull: pull}
}

// NextBatch pulls the next seeds and frames them as a batch.
func (p *Provider) NextBatch() (*rng.SeedBatch, uint64, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	seeds, ok := p.pull()
	if !ok {
		return nil, 0, false, nil
	}
	if len(seeds) == 0 {
		return nil, 0, false, fmt.Errorf("seed provider returned an empty batch")
	}
	norm := make([]string, len(seeds))
	for i, s := range seeds {
		norm[i] = rng.NormalizeSeed(s)
	}
	index := p.next
	p.next++
	batch, err := rng.NewSeedBatch(norm, len(norm[0]))
	return batch, index, err == nil, err
}
