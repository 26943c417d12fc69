package stream

import (
	"github.com/OptimusPi/motely/pkg/game"
	"github.com/OptimusPi/motely/pkg/rng"
)

// PackContents holds the generated contents of one pack per lane.
type PackContents struct {
	Items  [rng.Lanes][game.ItemSetCap]game.Item
	Counts [rng.Lanes]int
}

// Item returns slot i of a lane's pack, or ItemNone past its end.
func (c *PackContents) Item(lane, i int) game.Item {
	if i >= c.Counts[lane] {
		return game.ItemNone
	}
	return c.Items[lane][i]
}

// PackGenerator expands booster packs into their contents. The per-kind
// content streams persist across packs of the same ante, so the second
// Arcana pack of an ante continues the sequence the first one started,
// exactly as a single-seed derivation would.
type PackGenerator struct {
	env  Env
	ante int

	tarots    *ConsumableStream
	planets   *ConsumableStream
	spectrals *ConsumableStream
	jokers    *JokerStream
	cards     *PlayingCardStream

	soulArcana   *SoulJokerStream
	soulSpectral *SoulJokerStream
}

// NewPackGenerator creates the expander for one ante.
func NewPackGenerator(env Env, ante int) *PackGenerator {
	return &PackGenerator{env: env, ante: ante}
}

// Contents generates each lane's contents for the packs the booster
// stream drew. With resolveSoul set, a Soul card is followed by the
// soul-channel joker draw and reported as that legendary joker; without
// it the Soul card itself is reported and the soul channel stays
// untouched.
func (g *PackGenerator) Contents(mask rng.Mask8, packs [rng.Lanes]game.Item, resolveSoul bool) PackContents {
	var out PackContents

	// Group lanes by pack kind; each kind's streams advance only with
	// the lanes holding that kind.
	kinds := make(map[string]rng.Mask8)
	maxCards := 0
	for lane := 0; lane < rng.Lanes; lane++ {
		if !mask.Lane(lane) {
			continue
		}
		def := g.env.Tables.Packs[packs[lane].Index()]
		kinds[def.Kind] = kinds[def.Kind].With(lane)
		out.Counts[lane] = def.Cards
		if def.Cards > maxCards {
			maxCards = def.Cards
		}
	}

	var sets [rng.Lanes]game.ItemSet
	for kind, kindMask := range kinds {
		g.fillKind(kind, kindMask, packs, &out, &sets, resolveSoul)
	}
	return out
}

// fillKind draws every slot of one pack kind. Slot i only advances the
// lanes whose pack is still that long.
func (g *PackGenerator) fillKind(kind string, kindMask rng.Mask8, packs [rng.Lanes]game.Item, out *PackContents, sets *[rng.Lanes]game.ItemSet, resolveSoul bool) {
	for slot := 0; ; slot++ {
		slotMask := rng.MaskNone
		for lane := 0; lane < rng.Lanes; lane++ {
			if kindMask.Lane(lane) && slot < out.Counts[lane] {
				slotMask = slotMask.With(lane)
			}
		}
		if slotMask.None() {
			return
		}

		var items [rng.Lanes]game.Item
		switch kind {
		case "Arcana":
			if g.tarots == nil {
				g.tarots = NewTarotStream(g.env, g.ante, SourceArcanaPack)
			}
			items = g.tarots.Next(slotMask, sets)
		case "Celestial":
			if g.planets == nil {
				g.planets = NewPlanetStream(g.env, g.ante, SourceCelestialPack)
			}
			items = g.planets.Next(slotMask, sets)
		case "Spectral":
			if g.spectrals == nil {
				g.spectrals = NewSpectralStream(g.env, g.ante, SourceSpectralPack)
			}
			items = g.spectrals.Next(slotMask, sets)
		case "Buffoon":
			if g.jokers == nil {
				g.jokers = NewJokerStream(g.env, g.ante, SourceBuffoonPack)
			}
			items = g.jokers.Next(slotMask, sets)
		case "Standard":
			if g.cards == nil {
				g.cards = NewPlayingCardStream(g.env, g.ante, SourceStandardPack)
			}
			items = g.cards.Next(slotMask)
		default:
			for lane := 0; lane < rng.Lanes; lane++ {
				if slotMask.Lane(lane) {
					items[lane] = game.ItemExcluded
				}
			}
		}

		// Record the raw identities before any soul resolution: later
		// slots of the same pack must see the Soul sentinel so their
		// Black-Hole trials skip pack-wide.
		for lane := 0; lane < rng.Lanes; lane++ {
			if slotMask.Lane(lane) {
				sets[lane].Add(items[lane])
			}
		}

		resolved := items
		if resolveSoul {
			resolved = g.resolveSouls(kind, slotMask, items, sets)
		}

		for lane := 0; lane < rng.Lanes; lane++ {
			if !slotMask.Lane(lane) {
				continue
			}
			out.Items[lane][slot] = resolved[lane]
			if resolved[lane] != items[lane] {
				sets[lane].Add(resolved[lane])
			}
		}
	}
}

// resolveSouls replaces Soul draws with the legendary joker the soul
// channel reveals. The channel only advances on lanes that actually drew
// a Soul.
func (g *PackGenerator) resolveSouls(kind string, mask rng.Mask8, items [rng.Lanes]game.Item, sets *[rng.Lanes]game.ItemSet) [rng.Lanes]game.Item {
	soulMask := rng.MaskNone
	for lane := 0; lane < rng.Lanes; lane++ {
		if mask.Lane(lane) && items[lane].Identity() == game.ItemSoul {
			soulMask = soulMask.With(lane)
		}
	}
	if soulMask.None() {
		return items
	}

	var soul *SoulJokerStream
	switch kind {
	case "Arcana":
		if g.soulArcana == nil {
			g.soulArcana = NewSoulJokerStream(g.env, g.ante, SourceArcanaPack)
		}
		soul = g.soulArcana
	case "Spectral":
		if g.soulSpectral == nil {
			g.soulSpectral = NewSoulJokerStream(g.env, g.ante, SourceSpectralPack)
		}
		soul = g.soulSpectral
	default:
		return items
	}

	legendaries := soul.Next(soulMask, sets)
	for lane := 0; lane < rng.Lanes; lane++ {
		if soulMask.Lane(lane) {
			items[lane] = legendaries[lane]
		}
	}
	return items
}
