package search

import (
	"github.com/OptimusPi/motely/pkg/game"
	"github.com/OptimusPi/motely/pkg/rng"
	"github.com/OptimusPi/motely/pkg/stream"
)

// Context is the per-batch environment a filter sees: the 8 seeds under
// test, the seed-hash cache, and constructors for every item stream.
// A Context lives exactly as long as its batch and is owned by one worker.
type Context struct {
	env   stream.Env
	batch *rng.SeedBatch
}

// NewContext builds the context for one batch. The scheduler calls it
// once per dequeued batch; tests and custom harnesses may build their
// own.
func NewContext(tables *game.Tables, deck game.Deck, stake game.Stake, batch *rng.SeedBatch) *Context {
	return &Context{
		env: stream.Env{
			Cache:  rng.NewSeedHashCache(batch),
			Tables: tables,
			Deck:   deck,
			Stake:  stake,
		},
		batch: batch,
	}
}

// Batch returns the current seed batch.
func (c *Context) Batch() *rng.SeedBatch { return c.batch }

// Live returns the mask of lanes holding real seeds.
func (c *Context) Live() rng.Mask8 { return c.batch.Live() }

// Seed materializes lane i as a scalar seed string.
func (c *Context) Seed(lane int) string { return c.batch.Seed(lane) }

// Env exposes the stream environment for direct stream construction.
func (c *Context) Env() stream.Env { return c.env }

// Tables returns the item tables of this search.
func (c *Context) Tables() *game.Tables { return c.env.Tables }

// Deck returns the search's starting deck.
func (c *Context) Deck() game.Deck { return c.env.Deck }

// Stake returns the search's stake.
func (c *Context) Stake() game.Stake { return c.env.Stake }

// Stream creates a raw PRNG stream for key, hashing the key directly.
func (c *Context) Stream(key string) *rng.Stream {
	return rng.NewStream(c.env.Cache, key)
}

// StreamCached creates a raw PRNG stream for key through the per-batch
// key memo; use it for keys recreated many times per batch.
func (c *Context) StreamCached(key string) *rng.Stream {
	return rng.NewStreamCached(c.env.Cache, key)
}

// Item stream constructors. Streams are single-use: every call returns a
// fresh producer positioned at the start of its sequence.

// Shop returns the shop slot producer for an ante.
func (c *Context) Shop(ante int) *stream.ShopStream {
	return stream.NewShopStream(c.env, ante)
}

// Jokers returns the joker producer for a (source, ante) pair.
func (c *Context) Jokers(ante int, src stream.Source) *stream.JokerStream {
	return stream.NewJokerStream(c.env, ante, src)
}

// SoulJokers returns the soul-channel legendary producer.
func (c *Context) SoulJokers(ante int, src stream.Source) *stream.SoulJokerStream {
	return stream.NewSoulJokerStream(c.env, ante, src)
}

// Tarots returns the tarot producer for a (source, ante) pair.
func (c *Context) Tarots(ante int, src stream.Source) *stream.ConsumableStream {
	return stream.NewTarotStream(c.env, ante, src)
}

// Planets returns the planet producer for a (source, ante) pair.
func (c *Context) Planets(ante int, src stream.Source) *stream.ConsumableStream {
	return stream.NewPlanetStream(c.env, ante, src)
}

// Spectrals returns the spectral producer for a (source, ante) pair.
func (c *Context) Spectrals(ante int, src stream.Source) *stream.ConsumableStream {
	return stream.NewSpectralStream(c.env, ante, src)
}

// PlayingCards returns the playing-card producer for a (source, ante) pair.
func (c *Context) PlayingCards(ante int, src stream.Source) *stream.PlayingCardStream {
	return stream.NewPlayingCardStream(c.env, ante, src)
}

// Vouchers returns the voucher producer for an ante.
func (c *Context) Vouchers(ante int) *stream.VoucherStream {
	return stream.NewVoucherStream(c.env, ante)
}

// Tags returns the tag producer for an ante.
func (c *Context) Tags(ante int) *stream.TagStream {
	return stream.NewTagStream(c.env, ante)
}

// Bosses returns the boss producer for the batch.
func (c *Context) Bosses() *stream.BossStream {
	return stream.NewBossStream(c.env)
}

// Boosters returns the booster pack producer for an ante.
func (c *Context) Boosters(ante int) *stream.BoosterStream {
	return stream.NewBoosterStream(c.env, ante)
}

// Packs returns the pack contents expander for an ante.
func (c *Context) Packs(ante int) *stream.PackGenerator {
	return stream.NewPackGenerator(c.env, ante)
}

// SearchIndividualSeeds materializes each masked lane as a single-seed
// context and runs a scalar predicate over it. Use it when a filter's
// work cannot be expressed lane-parallel, such as variable-depth
// soul-joker chasing. The returned mask keeps the lanes the predicate
// accepted.
func (c *Context) SearchIndividualSeeds(mask rng.Mask8, pred func(lane int, scalar *Context) bool) rng.Mask8 {
	out := rng.MaskNone
	for lane := 0; lane < rng.Lanes; lane++ {
		if !mask.Lane(lane) {
			continue
		}
		solo, err := rng.NewSeedBatch([]string{c.Seed(lane)}, 1)
		if err != nil {
			continue
		}
		scalar := NewContext(c.env.Tables, c.env.Deck, c.env.Stake, solo)
		if pred(lane, scalar) {
			out = out.With(lane)
		}
	}
	return out
}
