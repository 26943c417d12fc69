package stream

import (
	"github.com/OptimusPi/motely/pkg/game"
	"github.com/OptimusPi/motely/pkg/rng"
)

// PacksPerAnte returns how many booster packs an ante offers.
func PacksPerAnte(ante int) int {
	if ante == 1 {
		return 4
	}
	return 6
}

// BoosterStream produces the ante's booster packs: each draw picks a
// (kind, size) row from the weighted pack table. The returned Items carry
// CategoryBooster with the table row as index.
type BoosterStream struct {
	env   Env
	s     *rng.Stream
	total float64
}

// NewBoosterStream creates the pack producer for one ante.
func NewBoosterStream(env Env, ante int) *BoosterStream {
	total := 0.0
	for _, p := range env.Tables.Packs {
		total += p.Weight
	}
	return &BoosterStream{
		env:   env,
		s:     rng.NewStreamCached(env.Cache, anteKey("shop_pack", ante)),
		total: total,
	}
}

// Next draws the next pack for every masked lane.
func (b *BoosterStream) Next(mask rng.Mask8) [rng.Lanes]game.Item {
	roll := b.s.Random(mask)
	var out [rng.Lanes]game.Item
	for lane := 0; lane < rng.Lanes; lane++ {
		target := roll[lane] * b.total
		cumulative := 0.0
		idx := len(b.env.Tables.Packs) - 1
		for i, p := range b.env.Tables.Packs {
			cumulative += p.Weight
			if target < cumulative {
				idx = i
				break
			}
		}
		out[lane] = game.NewItem(game.CategoryBooster, idx)
	}
	return out
}

// PackDef resolves a booster Item back to its table row.
func (b *BoosterStream) PackDef(it game.Item) game.PackDef {
	return b.env.Tables.Packs[it.Index()]
}

// PackSource maps a pack kind to the source tag its contents generate
// under.
func PackSource(kind string) (Source, bool) {
	switch kind {
	case "Arcana":
		return SourceArcanaPack, true
	case "Celestial":
		return SourceCelestialPack, true
	case "Spectral":
		return SourceSpectralPack, true
	case "Buffoon":
		return SourceBuffoonPack, true
	case "Standard":
		return SourceStandardPack, true
	}
	return 0, false
}
