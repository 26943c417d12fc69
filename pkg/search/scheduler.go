package search

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/shirou/gopsutil/v3/cpu"

	"github.com/OptimusPi/motely/pkg/game"
	"github.com/OptimusPi/motely/pkg/rng"
)

// DefaultThreads returns the default worker count: the machine's logical
// core count.
func DefaultThreads() int {
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// Stats are the live counters of a running search. All fields are safe to
// read from other goroutines while the search runs.
type Stats struct {
	SeedsSearched atomic.Uint64
	Matches       atomic.Uint64

	// lastBatch tracks the highest completed batch index plus one; it is
	// monotone and safe to checkpoint for resumption.
	lastBatch atomic.Uint64

	failed atomic.Bool
}

// LastBatch returns the highest completed batch index plus one.
func (s *Stats) LastBatch() uint64 { return s.lastBatch.Load() }

// Failed reports whether a worker hit a runtime fault.
func (s *Stats) Failed() bool { return s.failed.Load() }

func (s *Stats) observeBatch(index uint64) {
	for {
		cur := s.lastBatch.Load()
		if index+1 <= cur || s.lastBatch.CompareAndSwap(cur, index+1) {
			return
		}
	}
}

// Config parameterizes an Engine.
type Config struct {
	// Tables are the item tables; nil selects the embedded defaults.
	Tables *game.Tables

	// Deck and Stake identify the run being searched.
	Deck  game.Deck
	Stake game.Stake

	// Chain is the filter chain. Required.
	Chain *Chain

	// Scorer scores surviving lanes. Optional.
	Scorer Scorer

	// Cutoff drops low-scoring matches. Optional; nil admits all.
	Cutoff *Cutoff

	// Threads is the worker count; 0 selects DefaultThreads.
	Threads int

	// Logger receives per-search diagnostics. nil discards them. The
	// handle is owned by this search; the engine never touches global
	// logging state.
	Logger *slog.Logger
}

// Engine runs searches. The chain and scorer are immutable after New and
// shared read-only across workers; each worker owns its context, cache
// and stream state.
type Engine struct {
	tables  *game.Tables
	deck    game.Deck
	stake   game.Stake
	chain   *Chain
	scorer  Scorer
	cutoff  *Cutoff
	threads int
	log     *slog.Logger

	stats Stats
}

// New validates the configuration and builds an engine.
func New(cfg Config) (*Engine, error) {
	if cfg.Chain == nil {
		return nil, fmt.Errorf("search config needs a filter chain")
	}
	tables := cfg.Tables
	if tables == nil {
		var err error
		if tables, err = game.Default(); err != nil {
			return nil, fmt.Errorf("loading default tables: %w", err)
		}
	}
	threads := cfg.Threads
	if threads <= 0 {
		threads = DefaultThreads()
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		tables:  tables,
		deck:    cfg.Deck,
		stake:   cfg.Stake,
		chain:   cfg.Chain,
		scorer:  cfg.Scorer,
		cutoff:  cfg.Cutoff,
		threads: threads,
		log:     log,
	}, nil
}

// Stats exposes the live counters.
func (e *Engine) Stats() *Stats { return &e.stats }

// Run drains the batch source with the configured worker count and
// returns the matches channel. The channel closes when the source is
// exhausted, the context is cancelled, or a worker faults. Matches
// within one batch arrive in lane order; across batches order is
// undefined.
func (e *Engine) Run(ctx context.Context, src BatchSource) <-chan Match {
	out := make(chan Match, 256)

	var wg sync.WaitGroup
	for w := 0; w < e.threads; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			e.worker(ctx, worker, src, out)
		}(w)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// worker owns one batch at a time from dequeue to completion.
// Cancellation and the failure flag are polled between batches only; no
// lock is held across the poll.
func (e *Engine) worker(ctx context.Context, worker int, src BatchSource, out chan<- Match) {
	for {
		if ctx.Err() != nil || e.stats.failed.Load() {
			return
		}
		batch, index, ok, err := src.NextBatch()
		if err != nil {
			e.log.Error("batch source failed", "worker", worker, "err", err)
			e.stats.failed.Store(true)
			return
		}
		if !ok {
			return
		}
		if err := e.runBatch(ctx, batch, index, out); err != nil {
			e.log.Error("batch aborted", "worker", worker, "batch", index, "err", err)
			e.stats.failed.Store(true)
			return
		}
	}
}

// runBatch evaluates one batch. A panic in a filter indicates corrupted
// engine state; the batch is abandoned and the fault propagates as an
// error so the whole search stops.
func (e *Engine) runBatch(ctx context.Context, batch *rng.SeedBatch, index uint64, out chan<- Match) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("filter fault on batch %d: %v", index, r)
		}
	}()

	sctx := NewContext(e.tables, e.deck, e.stake, batch)
	mask := e.chain.Evaluate(sctx)

	e.stats.SeedsSearched.Add(uint64(batch.Live().Count()))

	// Survivors emit in lane order.
	for lane := 0; lane < rng.Lanes; lane++ {
		if !mask.Lane(lane) || !batch.Live().Lane(lane) {
			continue
		}
		m := Match{Seed: batch.Seed(lane)}
		if e.scorer != nil {
			s := e.scorer.Score(sctx, lane)
			m.Score = s.Total
			m.Parts = s.Parts
		}
		if !e.cutoff.Admit(m.Score) {
			continue
		}
		select {
		case out <- m:
			e.stats.Matches.Add(1)
		case <-ctx.Done():
			return nil
		}
	}

	e.stats.observeBatch(index)
	return nil
}
