package filterdsl

import (
	"fmt"
	"strings"

	"github.com/OptimusPi/motely/pkg/game"
	"github.com/OptimusPi/motely/pkg/rng"
	"github.com/OptimusPi/motely/pkg/search"
	"github.com/OptimusPi/motely/pkg/stream"
)

// Enum name tables for clause parsing. Rank and suit indices equal the
// game package's enum values; seal and enhancement indices are one below
// them, because those game enums reserve 0 for None.

func rankNames() []string {
	return []string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "Jack", "Queen", "King", "Ace"}
}

func suitNames() []string {
	return []string{"Spades", "Hearts", "Clubs", "Diamonds"}
}

func sealNames() []string {
	return []string{"Gold", "Red", "Blue", "Purple"}
}

func enhancementNames() []string {
	return []string{"Bonus", "Mult", "Wild", "Glass", "Steel", "Stone", "Gold", "Lucky"}
}

func indexOfName(name string, names []string) (int, error) {
	for i, n := range names {
		if strings.EqualFold(n, name) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("unrecognised value %q", name)
}

func parseEdition(name string) (game.Edition, error) {
	editions := []string{"None", "Foil", "Holographic", "Polychrome", "Negative"}
	i, err := indexOfName(name, editions)
	if err != nil {
		return game.EditionNone, err
	}
	return game.Edition(i), nil
}

// mask reduces per-lane match counts to the clause's lane mask.
func (cc *compiledClause) mask(ctx *search.Context) rng.Mask8 {
	switch cc.op {
	case catCompositeOr:
		out := rng.MaskNone
		for _, ch := range cc.children {
			out |= ch.mask(ctx)
			if out == ctx.Live() {
				break
			}
		}
		return out & ctx.Live()
	case catCompositeAnd:
		out := ctx.Live()
		for _, ch := range cc.children {
			out &= ch.mask(ctx)
			if out.None() {
				break
			}
		}
		return out
	}

	counts := cc.counts(ctx)
	out := rng.MaskNone
	for lane := 0; lane < rng.Lanes; lane++ {
		if ctx.Live().Lane(lane) && counts[lane] >= cc.min {
			out = out.With(lane)
		}
	}
	return out
}

// counts walks the clause's positions and tallies matches per lane.
func (cc *compiledClause) counts(ctx *search.Context) [rng.Lanes]int {
	var total [rng.Lanes]int

	if cc.op != "" {
		for _, ch := range cc.children {
			c := ch.counts(ctx)
			for lane := 0; lane < rng.Lanes; lane++ {
				total[lane] += c[lane]
			}
		}
		return total
	}

	switch cc.cat {
	case catBoss:
		cc.countBosses(ctx, &total)
	default:
		for _, ante := range cc.antes {
			cc.countAnte(ctx, ante, &total)
		}
	}
	return total
}

// countAnte scans one ante's shop slots and pack slots.
func (cc *compiledClause) countAnte(ctx *search.Context, ante int, total *[rng.Lanes]int) {
	live := ctx.Live()

	switch cc.cat {
	case catVoucher:
		items := ctx.Vouchers(ante).Next(live, cc.eligible)
		cc.tally(live, items, total)
		return
	case catTag, catSmallBlind, catBigBlind:
		tags := ctx.Tags(ante)
		small := tags.Next(live)
		big := tags.Next(live)
		if cc.cat != catBigBlind {
			cc.tally(live, small, total)
		}
		if cc.cat != catSmallBlind {
			cc.tally(live, big, total)
		}
		return
	}

	if cc.shopSlotMask != 0 {
		shop := ctx.Shop(ante)
		for slot := 0; slot <= cc.maxShopSlot; slot++ {
			items := shop.Next(live)
			if cc.shopSlotMask&(1<<uint(slot)) != 0 {
				cc.tally(live, items, total)
			}
		}
	}

	if cc.packSlotMask != 0 {
		// Packs beyond what the ante offers do not exist; the scan caps
		// at the ante's pack count even when the clause lists more.
		limit := stream.PacksPerAnte(ante)
		boosters := ctx.Boosters(ante)
		gen := ctx.Packs(ante)
		for p := 0; p < limit && p <= cc.maxPackSlot; p++ {
			packs := boosters.Next(live)
			contents := gen.Contents(live, packs, true)
			if cc.packSlotMask&(1<<uint(p)) == 0 {
				continue
			}
			for lane := 0; lane < rng.Lanes; lane++ {
				if !live.Lane(lane) {
					continue
				}
				for i := 0; i < contents.Counts[lane]; i++ {
					if cc.matchItem(contents.Item(lane, i)) {
						total[lane]++
					}
				}
			}
		}
	}
}

// countBosses draws the boss sequence from ante 1 so the recency
// exclusion is positioned exactly, counting only the clause's antes.
func (cc *compiledClause) countBosses(ctx *search.Context, total *[rng.Lanes]int) {
	live := ctx.Live()
	maxAnte := 0
	for _, a := range cc.antes {
		if a > maxAnte {
			maxAnte = a
		}
	}
	bosses := ctx.Bosses()
	for ante := stream.MinAnte; ante <= maxAnte; ante++ {
		items := bosses.NextForAnte(live, ante)
		if cc.anteMask&(1<<uint(ante)) != 0 {
			cc.tally(live, items, total)
		}
	}
}

func (cc *compiledClause) tally(live rng.Mask8, items [rng.Lanes]game.Item, total *[rng.Lanes]int) {
	for lane := 0; lane < rng.Lanes; lane++ {
		if live.Lane(lane) && cc.matchItem(items[lane]) {
			total[lane]++
		}
	}
}

// matchItem decides whether one generated item satisfies the clause.
func (cc *compiledClause) matchItem(it game.Item) bool {
	if it.Excluded() || it == game.ItemNone {
		return false
	}
	want := gameCategory[cc.cat]
	if it.Category() != want {
		return false
	}
	if cc.cat == catSoulJoker && game.JokerRarity(it) != game.RarityLegendary {
		return false
	}
	if cc.cat == catJoker && game.JokerRarity(it) == game.RarityLegendary {
		// Plain joker clauses target the rarity-poll pools; legendaries
		// belong to SoulJoker clauses.
		return false
	}
	if cc.targets != nil && !cc.targets[it.Identity()] {
		return false
	}
	if cc.editionS && it.Edition() != cc.edition {
		return false
	}
	if cc.rank >= 0 && int(game.CardRank(it)) != cc.rank {
		return false
	}
	if cc.suit >= 0 && int(game.CardSuit(it)) != cc.suit {
		return false
	}
	if cc.seal >= 0 && int(it.Seal()) != cc.seal+1 {
		return false
	}
	if cc.enh >= 0 && int(it.Enhancement()) != cc.enh+1 {
		return false
	}
	return true
}
