// Package search is the harness that drives the engine: it enumerates
// candidate seed batches, hands each batch to a worker, evaluates the
// filter chain over a per-batch context, and emits surviving seeds with
// their scores.
//
// The result set of a search is deterministic for a fixed (source, chain,
// scorer) triple; the order results arrive on the channel is not.
package search
