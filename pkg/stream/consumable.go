package stream

import (
	"github.com/OptimusPi/motely/pkg/game"
	"github.com/OptimusPi/motely/pkg/rng"
)

// consumableBase maps a consumable category to its index stream base key.
func consumableBase(cat game.Category) string {
	switch cat {
	case game.CategoryTarot:
		return "Tarot"
	case game.CategoryPlanet:
		return "Planet"
	case game.CategorySpectral:
		return "Spectral"
	}
	return ""
}

// ConsumableStream produces tarot, planet or spectral cards for one
// (source, ante) pair: uniform index over the category pool, resampled
// against the current pack contents.
//
// Pack sources additionally run the special-item trials before the index
// draw. The trials always consume one RNG value per draw whether or not
// they fire, so downstream stream state advances identically on every
// lane:
//
//   - Arcana packs roll Soul on "soul_Tarot"+ante.
//   - Celestial packs roll Black Hole on "soul_Planet"+ante.
//   - Spectral packs roll both: Soul first on "soul_Spectral"+ante, then
//     Black Hole on "soul_Planet"+ante. A pack already holding Soul skips
//     the Black-Hole substitution but the trial still draws.
type ConsumableStream struct {
	env  Env
	cat  game.Category
	ante int
	src  Source

	index rng.ResampleStream
	soul  *rng.Stream
	black *rng.Stream
}

// NewTarotStream creates the tarot producer for one (source, ante).
func NewTarotStream(env Env, ante int, src Source) *ConsumableStream {
	return newConsumable(env, game.CategoryTarot, ante, src)
}

// NewPlanetStream creates the planet producer for one (source, ante).
func NewPlanetStream(env Env, ante int, src Source) *ConsumableStream {
	return newConsumable(env, game.CategoryPlanet, ante, src)
}

// NewSpectralStream creates the spectral producer for one (source, ante).
func NewSpectralStream(env Env, ante int, src Source) *ConsumableStream {
	return newConsumable(env, game.CategorySpectral, ante, src)
}

func newConsumable(env Env, cat game.Category, ante int, src Source) *ConsumableStream {
	c := &ConsumableStream{
		env:   env,
		cat:   cat,
		ante:  ante,
		src:   src,
		index: rng.NewResampleStream(env.Cache, keyFor(consumableBase(cat), src, ante)),
	}
	switch src {
	case SourceArcanaPack:
		c.soul = rng.NewStreamCached(env.Cache, anteKey("soul_Tarot", ante))
	case SourceCelestialPack:
		c.black = rng.NewStreamCached(env.Cache, anteKey("soul_Planet", ante))
	case SourceSpectralPack:
		c.soul = rng.NewStreamCached(env.Cache, anteKey("soul_Spectral", ante))
		c.black = rng.NewStreamCached(env.Cache, anteKey("soul_Planet", ante))
	}
	return c
}

// poolSize returns the category pool length.
func (c *ConsumableStream) poolSize() int {
	switch c.cat {
	case game.CategoryTarot:
		return len(c.env.Tables.Tarots)
	case game.CategoryPlanet:
		return len(c.env.Tables.Planets)
	case game.CategorySpectral:
		return len(c.env.Tables.Spectrals)
	}
	return 0
}

// Next draws the next consumable for every masked lane, deduplicating
// against the per-lane pack contents when packs is non-nil.
func (c *ConsumableStream) Next(mask rng.Mask8, packs *[rng.Lanes]game.ItemSet) [rng.Lanes]game.Item {
	var out [rng.Lanes]game.Item
	settled := rng.MaskNone

	if c.soul != nil {
		roll := c.soul.Random(mask)
		for lane := 0; lane < rng.Lanes; lane++ {
			if !mask.Lane(lane) {
				continue
			}
			if roll[lane] > 1-specialItemRate && !containsInLane(packs, lane, game.ItemSoul) {
				out[lane] = game.ItemSoul
				settled = settled.With(lane)
			}
		}
	}
	if c.black != nil {
		// The trial draws for every masked lane even where Soul already
		// settled the slot or the pack rules the Black Hole out. A pack
		// holding Soul in any earlier slot skips the substitution, pack
		// wide, but still consumes the roll.
		roll := c.black.Random(mask)
		for lane := 0; lane < rng.Lanes; lane++ {
			if !mask.Lane(lane) || settled.Lane(lane) {
				continue
			}
			if roll[lane] > 1-specialItemRate &&
				!containsInLane(packs, lane, game.ItemSoul) &&
				!containsInLane(packs, lane, game.ItemBlackHole) {
				out[lane] = game.ItemBlackHole
				settled = settled.With(lane)
			}
		}
	}

	normal := mask &^ settled
	if !normal.None() {
		cat := c.cat
		drawn := drawDeduped(&c.index, normal, c.poolSize(),
			func(idx int) game.Item { return game.NewItem(cat, idx) },
			rejectInPack(packs))
		for lane := 0; lane < rng.Lanes; lane++ {
			if normal.Lane(lane) {
				out[lane] = drawn[lane]
			}
		}
	}
	return out
}

// containsInLane reports whether lane's pack already holds the item.
func containsInLane(packs *[rng.Lanes]game.ItemSet, lane int, it game.Item) bool {
	if packs == nil {
		return false
	}
	return packs[lane].Contains(it)
}
