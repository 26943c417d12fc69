package search

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/OptimusPi/motely/pkg/rng"
)

func TestSequentialDeterministicBatches(t *testing.T) {
	a, err := NewSequential(4, 2, 0, 100)
	if err != nil {
		t.Fatalf("NewSequential: %v", err)
	}
	b, _ := NewSequential(4, 2, 0, 100)

	for {
		ba, ia, oka, erra := a.NextBatch()
		bb, ib, okb, errb := b.NextBatch()
		if erra != nil || errb != nil {
			t.Fatalf("NextBatch errors: %v, %v", erra, errb)
		}
		if oka != okb || ia != ib {
			t.Fatalf("sources diverged: ok %v/%v index %d/%d", oka, okb, ia, ib)
		}
		if !oka {
			break
		}
		for lane := 0; lane < rng.Lanes; lane++ {
			if ba.Seed(lane) != bb.Seed(lane) {
				t.Fatalf("batch %d lane %d: %q vs %q", ia, lane, ba.Seed(lane), bb.Seed(lane))
			}
		}
	}
}

func TestSequentialSeedsAreUniqueAndInOrder(t *testing.T) {
	s, err := NewSequential(2, 1, 0, 0)
	if err != nil {
		t.Fatalf("NewSequential: %v", err)
	}

	// 2-char seeds over a 35-symbol alphabet: 35 prefixes per suffix in
	// ceil(35/8)=5 batches, 35 suffixes.
	if got, want := s.TotalBatches(), uint64(5*35); got != want {
		t.Fatalf("TotalBatches() = %d, want %d", got, want)
	}

	seen := make(map[string]bool)
	prev := ""
	for {
		batch, _, ok, err := s.NextBatch()
		if err != nil {
			t.Fatalf("NextBatch: %v", err)
		}
		if !ok {
			break
		}
		for lane := 0; lane < rng.Lanes; lane++ {
			if !batch.Live().Lane(lane) {
				continue
			}
			seed := batch.Seed(lane)
			if seen[seed] {
				t.Fatalf("seed %q enumerated twice", seed)
			}
			if seed <= prev {
				t.Fatalf("seed %q enumerated after %q, want ascending order", seed, prev)
			}
			seen[seed] = true
			prev = seed
		}
	}
	if got, want := len(seen), 35*35; got != want {
		t.Fatalf("enumerated %d distinct seeds, want %d", got, want)
	}
}

// Resumability: [a, b) then [b, c) covers the same seeds as [a, c).
func TestSequentialResumable(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		full, err := NewSequential(3, 2, 0, 0)
		if err != nil {
			rt.Fatalf("NewSequential: %v", err)
		}
		total := full.TotalBatches()
		// Bounds start at 1: a zero end means "unbounded" to the
		// constructor, so the split point must stay positive.
		a := rapid.Uint64Range(1, total-2).Draw(rt, "a")
		c := rapid.Uint64Range(a+1, total).Draw(rt, "c")
		b := rapid.Uint64Range(a, c).Draw(rt, "b")

		collect := func(start, end uint64) map[string]bool {
			src, err := NewSequential(3, 2, start, end)
			if err != nil {
				rt.Fatalf("NewSequential(%d, %d): %v", start, end, err)
			}
			out := make(map[string]bool)
			for {
				batch, _, ok, err := src.NextBatch()
				if err != nil {
					rt.Fatalf("NextBatch: %v", err)
				}
				if !ok {
					return out
				}
				for lane := 0; lane < rng.Lanes; lane++ {
					if batch.Live().Lane(lane) {
						out[batch.Seed(lane)] = true
					}
				}
			}
		}

		whole := collect(a, c)
		first := collect(a, b)
		second := collect(b, c)
		if len(first)+len(second) != len(whole) {
			rt.Fatalf("split run sizes %d+%d != %d", len(first), len(second), len(whole))
		}
		for seed := range whole {
			if !first[seed] && !second[seed] {
				rt.Fatalf("seed %q missing from split runs", seed)
			}
		}
	})
}

func TestSequentialRejectsBadBounds(t *testing.T) {
	if _, err := NewSequential(0, 1, 0, 0); err == nil {
		t.Error("length 0 must be rejected")
	}
	if _, err := NewSequential(4, 5, 0, 0); err == nil {
		t.Error("batch chars beyond length must be rejected")
	}
	if _, err := NewSequential(4, 2, 10, 5); err == nil {
		t.Error("start past end must be rejected")
	}
}

func TestListPadsFinalBatch(t *testing.T) {
	l, err := NewList([]string{"aleeb", "P1793QII"[:5], "SEEDZ"})
	if err != nil {
		t.Fatalf("NewList: %v", err)
	}

	batch, index, ok, err := l.NextBatch()
	if err != nil || !ok {
		t.Fatalf("NextBatch = %v, %v", ok, err)
	}
	if index != 0 {
		t.Errorf("index = %d, want 0", index)
	}
	if got := batch.Live().Count(); got != 3 {
		t.Errorf("live lanes = %d, want 3", got)
	}
	if got := batch.Seed(0); got != "ALEEB" {
		t.Errorf("lane 0 seed = %q, want normalized ALEEB", got)
	}

	if _, _, ok, _ := l.NextBatch(); ok {
		t.Error("second NextBatch must report exhaustion")
	}
}

func TestListRejectsMixedLengths(t *testing.T) {
	if _, err := NewList([]string{"ALEEB", "ABC"}); err == nil {
		t.Error("mixed-length list must be rejected")
	}
	if _, err := NewList(nil); err == nil {
		t.Error("empty list must be rejected")
	}
}

func TestProviderFramesPulls(t *testing.T) {
	chunks := [][]string{{"AAAAA", "BBBBB"}, {"CCCCC"}}
	i := 0
	p := NewProvider(func() ([]string, bool) {
		if i >= len(chunks) {
			return nil, false
		}
		c := chunks[i]
		i++
		return c, true
	})

	var indices []uint64
	var seeds []string
	for {
		batch, index, ok, err := p.NextBatch()
		if err != nil {
			t.Fatalf("NextBatch: %v", err)
		}
		if !ok {
			break
		}
		indices = append(indices, index)
		for lane := 0; lane < rng.Lanes; lane++ {
			if batch.Live().Lane(lane) {
				seeds = append(seeds, batch.Seed(lane))
			}
		}
	}
	if len(indices) != 2 || indices[0] != 0 || indices[1] != 1 {
		t.Errorf("indices = %v, want [0 1]", indices)
	}
	if len(seeds) != 3 {
		t.Errorf("seeds = %v, want 3 entries", seeds)
	}
}
