package stream

import (
	"github.com/OptimusPi/motely/pkg/game"
	"github.com/OptimusPi/motely/pkg/rng"
)

// jokerIndexBases maps a rarity tier to its index stream base key.
var jokerIndexBases = [...]string{"Joker1", "Joker2", "Joker3", "Joker4"}

// JokerStream produces jokers for one (source, ante) pair: rarity poll,
// index draw on the rarity's own stream, edition poll, then the
// stake-gated sticker polls.
type JokerStream struct {
	env  Env
	ante int
	src  Source

	rarity  *rng.Stream
	edition *rng.Stream

	index     [4]rng.ResampleStream
	haveIndex [4]bool

	eternal    *rng.Stream
	perishable *rng.Stream
	rental     *rng.Stream
}

// NewJokerStream creates the stream. Only the rarity and edition streams
// are derived up front; index streams appear when a tier is first drawn.
func NewJokerStream(env Env, ante int, src Source) *JokerStream {
	return &JokerStream{
		env:     env,
		ante:    ante,
		src:     src,
		rarity:  rng.NewStreamCached(env.Cache, keyFor("rarity", src, ante)),
		edition: rng.NewStreamCached(env.Cache, keyFor("edi", src, ante)),
	}
}

func (j *JokerStream) indexStream(r game.Rarity) *rng.ResampleStream {
	if !j.haveIndex[r] {
		j.index[r] = rng.NewResampleStream(j.env.Cache, keyFor(jokerIndexBases[r], j.src, j.ante))
		j.haveIndex[r] = true
	}
	return &j.index[r]
}

// Next draws the next joker for every masked lane. When packs is non-nil
// the draw deduplicates against each lane's pack contents on the rarity
// index stream's resample ladder.
func (j *JokerStream) Next(mask rng.Mask8, packs *[rng.Lanes]game.ItemSet) [rng.Lanes]game.Item {
	poll := j.rarity.Random(mask)

	// Partition lanes by rarity tier, then draw each tier's index stream
	// with only its lanes advancing.
	var tierMask [3]rng.Mask8
	for lane := 0; lane < rng.Lanes; lane++ {
		if !mask.Lane(lane) {
			continue
		}
		switch {
		case poll[lane] > rarityRareMin:
			tierMask[game.RarityRare] = tierMask[game.RarityRare].With(lane)
		case poll[lane] > rarityUncommonMin:
			tierMask[game.RarityUncommon] = tierMask[game.RarityUncommon].With(lane)
		default:
			tierMask[game.RarityCommon] = tierMask[game.RarityCommon].With(lane)
		}
	}

	var out [rng.Lanes]game.Item
	for r := game.RarityCommon; r <= game.RarityRare; r++ {
		if tierMask[r].None() {
			continue
		}
		n := j.env.Tables.JokerPoolSize(r)
		tier := r
		drawn := drawDeduped(j.indexStream(r), tierMask[r], n,
			func(idx int) game.Item { return game.NewJoker(tier, idx) },
			rejectInPack(packs))
		for lane := 0; lane < rng.Lanes; lane++ {
			if tierMask[r].Lane(lane) {
				out[lane] = drawn[lane]
			}
		}
	}

	out = j.applyEditions(mask, out, editionTableFor(j.src))
	out = j.applyStickers(mask, out)
	return out
}

// applyEditions polls the edition stream once for the masked lanes and
// packs the winning edition into each item.
func (j *JokerStream) applyEditions(mask rng.Mask8, items [rng.Lanes]game.Item, tab editionThresholds) [rng.Lanes]game.Item {
	poll := j.edition.Random(mask)
	for lane := 0; lane < rng.Lanes; lane++ {
		if !mask.Lane(lane) || items[lane].Excluded() {
			continue
		}
		items[lane] = items[lane].WithEdition(editionFromPoll(poll[lane], tab))
	}
	return items
}

// editionFromPoll maps one uniform draw through a threshold table.
func editionFromPoll(p float64, tab editionThresholds) game.Edition {
	switch {
	case p > tab.Negative:
		return game.EditionNegative
	case p > tab.Polychrome:
		return game.EditionPolychrome
	case p > tab.Holographic:
		return game.EditionHolographic
	case p > tab.Foil:
		return game.EditionFoil
	}
	return game.EditionNone
}

// applyStickers runs the sticker polls. The three polls always execute in
// eternal, perishable, rental order once the stake admits any sticker, so
// the streams advance identically whether or not a given sticker can
// appear; below that stake the whole block is skipped.
func (j *JokerStream) applyStickers(mask rng.Mask8, items [rng.Lanes]game.Item) [rng.Lanes]game.Item {
	if !j.env.Stake.AtLeast(game.StickerMinStake) {
		return items
	}
	if j.eternal == nil {
		j.eternal = rng.NewStreamCached(j.env.Cache, anteKey("stake_shop_joker_eternal", j.ante))
		j.perishable = rng.NewStreamCached(j.env.Cache, anteKey("ssjp", j.ante))
		j.rental = rng.NewStreamCached(j.env.Cache, anteKey("ssjr", j.ante))
	}

	et := j.eternal.Random(mask)
	pe := j.perishable.Random(mask)
	re := j.rental.Random(mask)

	for lane := 0; lane < rng.Lanes; lane++ {
		if !mask.Lane(lane) || items[lane].Excluded() {
			continue
		}
		it := items[lane]
		if et[lane] > 1-eternalRate && game.StickerAvailable(game.StickerEternal, j.env.Stake) {
			it = it.WithSticker(game.StickerEternal)
		}
		// Perishable never lands on an eternal joker; the poll above
		// still consumed its draw.
		if pe[lane] > 1-perishableRate && game.StickerAvailable(game.StickerPerishable, j.env.Stake) &&
			!it.HasSticker(game.StickerEternal) {
			it = it.WithSticker(game.StickerPerishable)
		}
		if re[lane] > 1-rentalRate && game.StickerAvailable(game.StickerRental, j.env.Stake) {
			it = it.WithSticker(game.StickerRental)
		}
		items[lane] = it
	}
	return items
}

// SoulJokerStream produces the legendary joker revealed by a Soul card.
// It bypasses the rarity poll and draws the legendary index stream
// directly, with the soul-channel edition table.
type SoulJokerStream struct {
	env     Env
	ante    int
	src     Source
	index   rng.ResampleStream
	edition *rng.Stream
}

// NewSoulJokerStream creates the soul channel for one (source, ante).
func NewSoulJokerStream(env Env, ante int, src Source) *SoulJokerStream {
	return &SoulJokerStream{
		env:     env,
		ante:    ante,
		src:     src,
		index:   rng.NewResampleStream(env.Cache, keyFor(jokerIndexBases[game.RarityLegendary], src, ante)),
		edition: rng.NewStreamCached(env.Cache, anteKey("edisou", ante)),
	}
}

// Next draws the legendary joker for every masked lane, deduplicating
// against the per-lane sets when non-nil.
func (s *SoulJokerStream) Next(mask rng.Mask8, packs *[rng.Lanes]game.ItemSet) [rng.Lanes]game.Item {
	n := s.env.Tables.JokerPoolSize(game.RarityLegendary)
	out := drawDeduped(&s.index, mask, n,
		func(idx int) game.Item { return game.NewJoker(game.RarityLegendary, idx) },
		rejectInPack(packs))

	poll := s.edition.Random(mask)
	for lane := 0; lane < rng.Lanes; lane++ {
		if !mask.Lane(lane) || out[lane].Excluded() {
			continue
		}
		out[lane] = out[lane].WithEdition(editionFromPoll(poll[lane], editionSoul))
	}
	return out
}

// rejectInPack adapts per-lane ItemSets to a rejection predicate; a nil
// packs pointer rejects nothing.
func rejectInPack(packs *[rng.Lanes]game.ItemSet) func(lane int, it game.Item) bool {
	if packs == nil {
		return nil
	}
	return func(lane int, it game.Item) bool {
		return packs[lane].Contains(it)
	}
}

// maxResampleDepth caps the dedup ladder: a pool can force at most one
// resample per duplicate, so anything deeper signals an exhausted pool.
func maxResampleDepth(poolSize int) int { return poolSize + 2*rng.Lanes }

// drawDeduped draws one item per masked lane from the resample ladder,
// advancing a sibling only with the lanes whose previous draw was
// rejected. Lanes that exhaust the ladder get ItemExcluded.
func drawDeduped(rs *rng.ResampleStream, mask rng.Mask8, n int, build func(idx int) game.Item, reject func(lane int, it game.Item) bool) [rng.Lanes]game.Item {
	var out [rng.Lanes]game.Item
	remaining := mask
	limit := maxResampleDepth(n)

	for k := -1; !remaining.None(); k++ {
		if k >= limit {
			for lane := 0; lane < rng.Lanes; lane++ {
				if remaining.Lane(lane) {
					out[lane] = game.ItemExcluded
				}
			}
			break
		}
		s := &rs.Initial
		if k >= 0 {
			s = rs.Sibling(k)
		}
		idx := s.Choice(remaining, n)

		next := rng.MaskNone
		for lane := 0; lane < rng.Lanes; lane++ {
			if !remaining.Lane(lane) {
				continue
			}
			it := build(idx[lane])
			if reject != nil && reject(lane, it) {
				next = next.With(lane)
				continue
			}
			out[lane] = it
		}
		remaining = next
	}
	return out
}
