package stream

import (
	"github.com/OptimusPi/motely/pkg/game"
	"github.com/OptimusPi/motely/pkg/rng"
)

// BossStream produces boss blinds. One stream spans all antes: each ante
// takes the next draw from the shared sequence, restricted to the ante's
// pool (finishers at multiples of 8) and excluding each lane's most
// recent draws.
type BossStream struct {
	env    Env
	index  rng.ResampleStream
	recent [rng.Lanes][]int
}

// NewBossStream creates the boss producer for a batch. Call NextForAnte
// in ascending ante order; the recency exclusion depends on it.
func NewBossStream(env Env) *BossStream {
	return &BossStream{env: env, index: rng.NewResampleStream(env.Cache, "boss")}
}

// NextForAnte draws the boss of the given ante for every masked lane.
func (b *BossStream) NextForAnte(mask rng.Mask8, ante int) [rng.Lanes]game.Item {
	pool := b.env.Tables.BossPool(ante)

	out := drawDeduped(&b.index, mask, len(pool),
		func(idx int) game.Item { return game.NewItem(game.CategoryBoss, pool[idx]) },
		func(lane int, it game.Item) bool { return b.seenRecently(lane, it.Index()) })

	for lane := 0; lane < rng.Lanes; lane++ {
		if !mask.Lane(lane) || out[lane].Excluded() {
			continue
		}
		b.recent[lane] = append(b.recent[lane], out[lane].Index())
		if len(b.recent[lane]) > bossRecencyWindow {
			b.recent[lane] = b.recent[lane][1:]
		}
	}
	return out
}

func (b *BossStream) seenRecently(lane, bossIndex int) bool {
	for _, r := range b.recent[lane] {
		if r == bossIndex {
			return true
		}
	}
	return false
}
