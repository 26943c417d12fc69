package stream

// Poll thresholds. A poll is a uniform draw compared against these bounds;
// the tables are per-source because the game hands packs and the soul
// channel different odds than the shop.

// Rarity poll bounds: p > rare -> Rare, p > uncommon -> Uncommon, else
// Common.
const (
	rarityRareMin     = 0.95
	rarityUncommonMin = 0.70
)

// editionThresholds orders the edition poll bounds from rarest down. A
// draw is compared top to bottom; the first bound it exceeds wins.
type editionThresholds struct {
	Negative    float64
	Polychrome  float64
	Holographic float64
	Foil        float64
}

// The shop table carries the base odds; pack contents roll at doubled
// odds and the soul channel at quadrupled odds. The pack and soul values
// are provisional until a golden capture pins them against the game; the
// tables are asserted distinct in tests so a refactor cannot quietly
// collapse the source contexts back into one.
var (
	// editionShop applies to shop slots.
	editionShop = editionThresholds{Negative: 0.997, Polychrome: 0.994, Holographic: 0.98, Foil: 0.96}

	// editionPack applies to booster pack contents.
	editionPack = editionThresholds{Negative: 0.994, Polychrome: 0.988, Holographic: 0.96, Foil: 0.92}

	// editionSoul applies to soul-channel legendary jokers.
	editionSoul = editionThresholds{Negative: 0.988, Polychrome: 0.976, Holographic: 0.92, Foil: 0.84}
)

// editionTableFor selects the threshold table for a source.
func editionTableFor(src Source) editionThresholds {
	if src == SourceShop {
		return editionShop
	}
	return editionPack
}

// Playing-card poll bounds.
const (
	// sealMin gates the seal poll: a draw above it assigns a seal.
	sealMin = 0.80

	// enhancementMin gates the enhancement poll.
	enhancementMin = 0.60
)

// specialItemRate is the Bernoulli rate of the Soul and Black Hole trials.
const specialItemRate = 0.003

// Sticker poll rates, one per sticker; a sticker only lands at or above
// its own stake gate.
const (
	eternalRate    = 0.30
	perishableRate = 0.30
	rentalRate     = 0.30
)

// bossRecencyWindow is how many of the most recent boss draws are excluded
// from the pool.
const bossRecencyWindow = 2
