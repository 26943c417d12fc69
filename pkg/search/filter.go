package search

import (
	"fmt"

	"github.com/OptimusPi/motely/pkg/rng"
)

// Filter is one vector predicate over a batch. Filters must be pure
// functions of the seeds and the search's tables: no state may survive a
// batch, and a filter never observes which lanes other filters kept.
type Filter interface {
	// OnBatchStart runs once per batch before Filter, for per-batch
	// precomputation such as warming the hash cache for the filter's
	// keys.
	OnBatchStart(ctx *Context)

	// Filter returns the mask of lanes whose seed satisfies the
	// predicate. Only lanes inside the live mask it is evaluated under
	// matter; bits outside are ignored.
	Filter(ctx *Context) rng.Mask8
}

// FilterFunc adapts a plain function to a Filter with a no-op batch hook.
type FilterFunc func(ctx *Context) rng.Mask8

// OnBatchStart implements Filter.
func (FilterFunc) OnBatchStart(*Context) {}

// Filter implements Filter.
func (f FilterFunc) Filter(ctx *Context) rng.Mask8 { return f(ctx) }

// Chain is an ordered, non-empty sequence of filters evaluated with AND
// semantics. Later filters only see batches whose running mask is still
// non-zero; evaluation short-circuits as soon as every lane is dead.
type Chain struct {
	filters []Filter
}

// NewChain builds a chain. At least one filter is required; a caller with
// no predicates passes an explicit pass-through.
func NewChain(filters ...Filter) (*Chain, error) {
	if len(filters) == 0 {
		return nil, fmt.Errorf("filter chain must hold at least one filter")
	}
	return &Chain{filters: filters}, nil
}

// Len returns the number of filters in the chain.
func (ch *Chain) Len() int { return len(ch.filters) }

// Evaluate runs the chain over one batch and returns the surviving lanes.
// The AND of all filter masks is computed here, once; individual filters
// never see each other's decisions.
func (ch *Chain) Evaluate(ctx *Context) rng.Mask8 {
	mask := ctx.Live()
	for _, f := range ch.filters {
		if mask.None() {
			return mask
		}
		f.OnBatchStart(ctx)
		mask &= f.Filter(ctx)
	}
	return mask
}

// PassThrough is the filter a zero-clause configuration compiles to: it
// keeps every live lane. It must never return the empty mask.
func PassThrough() Filter {
	return FilterFunc(func(ctx *Context) rng.Mask8 { return ctx.Live() })
}

// Score is a scored lane: the total and the per-clause sub-scores in
// clause order.
type Score struct {
	Total int
	Parts []int
}

// Scorer assigns a score to one surviving lane.
type Scorer interface {
	// Score runs against the lane's seed in the batch context.
	Score(ctx *Context, lane int) Score
}

// ScorerFunc adapts a plain function to a Scorer.
type ScorerFunc func(ctx *Context, lane int) Score

// Score implements Scorer.
func (f ScorerFunc) Score(ctx *Context, lane int) Score { return f(ctx, lane) }

// Match is one surviving seed with its score.
type Match struct {
	Seed  string
	Score int
	Parts []int
}
