package stream

import (
	"github.com/OptimusPi/motely/pkg/game"
	"github.com/OptimusPi/motely/pkg/rng"
)

// ShopStream interleaves jokers, consumables and playing cards into the
// ante's shop slots at the deck-dependent category weights of
// Tables.ShopWeightsFor; the stake does not change the weights. Slot
// order is the draw order; callers bound how many slots they inspect.
type ShopStream struct {
	env  Env
	ante int

	cdt     *rng.Stream
	weights game.ShopWeights

	jokers    *JokerStream
	tarots    *ConsumableStream
	planets   *ConsumableStream
	spectrals *ConsumableStream
	cards     *PlayingCardStream
}

// NewShopStream creates the shop producer for one ante.
func NewShopStream(env Env, ante int) *ShopStream {
	return &ShopStream{
		env:     env,
		ante:    ante,
		cdt:     rng.NewStreamCached(env.Cache, anteKey("cdt", ante)),
		weights: env.Tables.ShopWeightsFor(env.Deck),
	}
}

// shopCategory is the cumulative-weight order of the category roll. The
// order is fixed; the weights decide how much of the roll space each
// category owns.
type shopCategory uint8

const (
	shopJoker shopCategory = iota
	shopTarot
	shopPlanet
	shopPlayingCard
	shopSpectral
)

// categoryFor maps one uniform roll to a shop category.
func (s *ShopStream) categoryFor(roll float64) shopCategory {
	target := roll * s.weights.Total()
	cumulative := s.weights.Joker
	if target < cumulative {
		return shopJoker
	}
	cumulative += s.weights.Tarot
	if target < cumulative {
		return shopTarot
	}
	cumulative += s.weights.Planet
	if target < cumulative {
		return shopPlanet
	}
	cumulative += s.weights.PlayingCard
	if target < cumulative {
		return shopPlayingCard
	}
	return shopSpectral
}

// Next draws the next shop slot for every masked lane. Sub-streams only
// advance on the lanes that rolled their category, so lanes stay
// position-exact with a scalar derivation of the same seed.
func (s *ShopStream) Next(mask rng.Mask8) [rng.Lanes]game.Item {
	roll := s.cdt.Random(mask)

	var catMask [shopSpectral + 1]rng.Mask8
	for lane := 0; lane < rng.Lanes; lane++ {
		if !mask.Lane(lane) {
			continue
		}
		catMask[s.categoryFor(roll[lane])] = catMask[s.categoryFor(roll[lane])].With(lane)
	}

	var out [rng.Lanes]game.Item
	s.drawCategory(&out, catMask[shopJoker], func(m rng.Mask8) [rng.Lanes]game.Item {
		if s.jokers == nil {
			s.jokers = NewJokerStream(s.env, s.ante, SourceShop)
		}
		return s.jokers.Next(m, nil)
	})
	s.drawCategory(&out, catMask[shopTarot], func(m rng.Mask8) [rng.Lanes]game.Item {
		if s.tarots == nil {
			s.tarots = NewTarotStream(s.env, s.ante, SourceShop)
		}
		return s.tarots.Next(m, nil)
	})
	s.drawCategory(&out, catMask[shopPlanet], func(m rng.Mask8) [rng.Lanes]game.Item {
		if s.planets == nil {
			s.planets = NewPlanetStream(s.env, s.ante, SourceShop)
		}
		return s.planets.Next(m, nil)
	})
	s.drawCategory(&out, catMask[shopPlayingCard], func(m rng.Mask8) [rng.Lanes]game.Item {
		if s.cards == nil {
			s.cards = NewPlayingCardStream(s.env, s.ante, SourceShop)
		}
		return s.cards.Next(m)
	})
	s.drawCategory(&out, catMask[shopSpectral], func(m rng.Mask8) [rng.Lanes]game.Item {
		if s.spectrals == nil {
			s.spectrals = NewSpectralStream(s.env, s.ante, SourceShop)
		}
		return s.spectrals.Next(m, nil)
	})
	return out
}

func (s *ShopStream) drawCategory(out *[rng.Lanes]game.Item, m rng.Mask8, draw func(rng.Mask8) [rng.Lanes]game.Item) {
	if m.None() {
		return
	}
	items := draw(m)
	for lane := 0; lane < rng.Lanes; lane++ {
		if m.Lane(lane) {
			out[lane] = items[lane]
		}
	}
}
