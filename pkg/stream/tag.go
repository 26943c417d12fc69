package stream

import (
	"github.com/OptimusPi/motely/pkg/game"
	"github.com/OptimusPi/motely/pkg/rng"
)

// TagStream produces the two skip tags of one ante: the first draw is the
// small-blind tag, the second the big-blind tag. Tags never resample.
type TagStream struct {
	env Env
	s   *rng.Stream
}

// NewTagStream creates the tag producer for one ante.
func NewTagStream(env Env, ante int) *TagStream {
	return &TagStream{env: env, s: rng.NewStreamCached(env.Cache, anteKey("Tag", ante))}
}

// Next draws the next tag for every masked lane.
func (t *TagStream) Next(mask rng.Mask8) [rng.Lanes]game.Item {
	idx := t.s.Choice(mask, len(t.env.Tables.Tags))
	var out [rng.Lanes]game.Item
	for lane := 0; lane < rng.Lanes; lane++ {
		out[lane] = game.NewItem(game.CategoryTag, idx[lane])
	}
	return out
}
