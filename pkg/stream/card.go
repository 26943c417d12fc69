package stream

import (
	"github.com/OptimusPi/motely/pkg/game"
	"github.com/OptimusPi/motely/pkg/rng"
)

// PlayingCardStream produces playing cards for Standard packs and for
// shop slots that roll the playing-card category; no voucher is
// consulted, and the default shop table gives that category zero
// weight. The draw order is fixed: suit,
// rank, seal poll, enhancement poll, edition poll; every poll consumes
// its draw whether or not it fires so the stream state is position-exact.
type PlayingCardStream struct {
	env  Env
	ante int
	src  Source

	suit        *rng.Stream
	rank        *rng.Stream
	seal        *rng.Stream
	sealKind    *rng.Stream
	enhancement *rng.Stream
	enhKind     *rng.Stream
	edition     *rng.Stream
}

// NewPlayingCardStream creates the card producer for one (source, ante).
func NewPlayingCardStream(env Env, ante int, src Source) *PlayingCardStream {
	return &PlayingCardStream{
		env:         env,
		ante:        ante,
		src:         src,
		suit:        rng.NewStreamCached(env.Cache, keyFor("suit", src, ante)),
		rank:        rng.NewStreamCached(env.Cache, keyFor("rank", src, ante)),
		seal:        rng.NewStreamCached(env.Cache, keyFor("seal", src, ante)),
		sealKind:    rng.NewStreamCached(env.Cache, keyFor("sealkind", src, ante)),
		enhancement: rng.NewStreamCached(env.Cache, keyFor("enh", src, ante)),
		enhKind:     rng.NewStreamCached(env.Cache, keyFor("enhkind", src, ante)),
		edition:     rng.NewStreamCached(env.Cache, keyFor("edi", src, ante)),
	}
}

// Next draws the next playing card for every masked lane.
func (p *PlayingCardStream) Next(mask rng.Mask8) [rng.Lanes]game.Item {
	suits := p.suit.Choice(mask, game.NumSuits)
	ranks := p.rank.Choice(mask, game.RanksPerSuit)

	var out [rng.Lanes]game.Item
	for lane := 0; lane < rng.Lanes; lane++ {
		out[lane] = game.NewPlayingCard(game.Suit(suits[lane]), game.Rank(ranks[lane]))
	}

	// Seal: gate poll, then kind choice. Both streams advance on every
	// draw regardless of the gate so later cards land on the same state.
	sealPoll := p.seal.Random(mask)
	sealKind := p.sealKind.Choice(mask, 4)
	for lane := 0; lane < rng.Lanes; lane++ {
		if mask.Lane(lane) && sealPoll[lane] > sealMin {
			out[lane] = out[lane].WithSeal(game.Seal(sealKind[lane] + 1))
		}
	}

	enhPoll := p.enhancement.Random(mask)
	enhKind := p.enhKind.Choice(mask, 8)
	for lane := 0; lane < rng.Lanes; lane++ {
		if mask.Lane(lane) && enhPoll[lane] > enhancementMin {
			out[lane] = out[lane].WithEnhancement(game.Enhancement(enhKind[lane] + 1))
		}
	}

	edPoll := p.edition.Random(mask)
	tab := editionTableFor(p.src)
	for lane := 0; lane < rng.Lanes; lane++ {
		if mask.Lane(lane) {
			out[lane] = out[lane].WithEdition(editionFromPoll(edPoll[lane], tab))
		}
	}
	return out
}
