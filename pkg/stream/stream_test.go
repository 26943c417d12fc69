package stream

import (
	"testing"

	"github.com/OptimusPi/motely/pkg/game"
	"github.com/OptimusPi/motely/pkg/rng"
)

// testEnv builds an Env over a batch of 8 sibling seeds.
func testEnv(t *testing.T, suffix string, deck game.Deck, stake game.Stake) Env {
	t.Helper()
	seeds := make([]string, rng.Lanes)
	for i := range seeds {
		seeds[i] = suffix + string(rng.SeedAlphabet[i])
	}
	batch, err := rng.NewSeedBatch(seeds, 1)
	if err != nil {
		t.Fatalf("NewSeedBatch: %v", err)
	}
	tables, err := game.Default()
	if err != nil {
		t.Fatalf("game.Default: %v", err)
	}
	return Env{
		Cache:  rng.NewSeedHashCache(batch),
		Tables: tables,
		Deck:   deck,
		Stake:  stake,
	}
}

func TestSourceCodes(t *testing.T) {
	cases := map[Source]string{
		SourceShop:          "sho",
		SourceArcanaPack:    "ar1",
		SourceCelestialPack: "pl1",
		SourceSpectralPack:  "spe",
		SourceBuffoonPack:   "buf",
		SourceStandardPack:  "sta",
	}
	for src, want := range cases {
		if got := src.Code(); got != want {
			t.Errorf("%v.Code() = %q, want %q", src, got, want)
		}
	}
}

func TestJokerStreamDeterministic(t *testing.T) {
	env := testEnv(t, "JOKDET1", game.DeckRed, game.StakeWhite)

	a := NewJokerStream(env, 2, SourceShop)
	b := NewJokerStream(env, 2, SourceShop)
	for i := 0; i < 16; i++ {
		if got, want := a.Next(rng.MaskAll, nil), b.Next(rng.MaskAll, nil); got != want {
			t.Fatalf("draw %d diverged: %v vs %v", i, got, want)
		}
	}
}

func TestJokerStreamProducesValidJokers(t *testing.T) {
	env := testEnv(t, "JOKVAL1", game.DeckRed, game.StakeWhite)

	js := NewJokerStream(env, 1, SourceShop)
	for i := 0; i < 32; i++ {
		items := js.Next(rng.MaskAll, nil)
		for lane, it := range items {
			if it.Category() != game.CategoryJoker {
				t.Fatalf("draw %d lane %d: category %v, want Joker", i, lane, it.Category())
			}
			r := game.JokerRarity(it)
			if r == game.RarityLegendary {
				t.Fatalf("draw %d lane %d: legendary joker from the rarity poll path", i, lane)
			}
			if idx := game.JokerPoolIndex(it); idx >= env.Tables.JokerPoolSize(r) {
				t.Fatalf("draw %d lane %d: pool index %d out of range for %v", i, lane, idx, r)
			}
		}
	}
}

func TestJokerStreamNoStickersBelowBlackStake(t *testing.T) {
	env := testEnv(t, "JOKSTK1", game.DeckRed, game.StakeRed)
	js := NewJokerStream(env, 1, SourceShop)
	for i := 0; i < 16; i++ {
		for lane, it := range js.Next(rng.MaskAll, nil) {
			for _, st := range []game.Sticker{game.StickerEternal, game.StickerPerishable, game.StickerRental} {
				if it.HasSticker(st) {
					t.Fatalf("draw %d lane %d has sticker %d at Red stake", i, lane, st)
				}
			}
		}
	}
}

func TestJokerStreamStickerExclusivity(t *testing.T) {
	env := testEnv(t, "JOKSTK2", game.DeckRed, game.StakeGold)
	js := NewJokerStream(env, 3, SourceShop)
	for i := 0; i < 64; i++ {
		for lane, it := range js.Next(rng.MaskAll, nil) {
			if it.HasSticker(game.StickerEternal) && it.HasSticker(game.StickerPerishable) {
				t.Fatalf("draw %d lane %d is both eternal and perishable", i, lane)
			}
		}
	}
}

func TestSoulJokerStreamLegendaryOnly(t *testing.T) {
	env := testEnv(t, "SOULJK1", game.DeckRed, game.StakeWhite)
	ss := NewSoulJokerStream(env, 1, SourceArcanaPack)
	for lane, it := range ss.Next(rng.MaskAll, nil) {
		if game.JokerRarity(it) != game.RarityLegendary {
			t.Errorf("lane %d: rarity %v, want Legendary", lane, game.JokerRarity(it))
		}
	}
}

// Pack dedup: a pack of size k from a pool of size n >= k yields k
// distinct items per lane.
func TestConsumableDeduplicatesWithinPack(t *testing.T) {
	env := testEnv(t, "DEDUPE1", game.DeckRed, game.StakeWhite)

	ts := NewTarotStream(env, 1, SourceArcanaPack)
	var sets [rng.Lanes]game.ItemSet
	const k = 5

	for slot := 0; slot < k; slot++ {
		items := ts.Next(rng.MaskAll, &sets)
		for lane, it := range items {
			if sets[lane].Contains(it) && it.Identity() != game.ItemSoul {
				t.Fatalf("slot %d lane %d: duplicate %v", slot, lane, it)
			}
			sets[lane].Add(items[lane])
		}
	}
	for lane := 0; lane < rng.Lanes; lane++ {
		if sets[lane].Len() != k {
			t.Errorf("lane %d: %d items, want %d", lane, sets[lane].Len(), k)
		}
	}
}

// The special-item trials always consume a draw: a stream whose pack
// already holds Soul must keep its trial streams in lockstep with one
// that does not.
func TestSpectralSoulTrialAlwaysDraws(t *testing.T) {
	env := testEnv(t, "SOULBAL", game.DeckRed, game.StakeWhite)

	a := NewSpectralStream(env, 1, SourceSpectralPack)
	b := NewSpectralStream(env, 1, SourceSpectralPack)

	var empty [rng.Lanes]game.ItemSet
	var seeded [rng.Lanes]game.ItemSet
	for lane := range seeded {
		seeded[lane].Add(game.ItemSoul)
		seeded[lane].Add(game.ItemBlackHole)
	}

	for i := 0; i < 8; i++ {
		a.Next(rng.MaskAll, &empty)
		b.Next(rng.MaskAll, &seeded)
		if *a.soul != *b.soul {
			t.Fatalf("draw %d: soul trial streams diverged", i)
		}
		if *a.black != *b.black {
			t.Fatalf("draw %d: black-hole trial streams diverged", i)
		}
	}
}

// The edition threshold tables are per-source. Pin every value and hold
// the tables pairwise distinct so a refactor cannot fold the source
// contexts back into one shared table.
func TestEditionTablesPinnedPerSource(t *testing.T) {
	cases := []struct {
		name string
		tab  editionThresholds
		want editionThresholds
	}{
		{"shop", editionShop, editionThresholds{Negative: 0.997, Polychrome: 0.994, Holographic: 0.98, Foil: 0.96}},
		{"pack", editionPack, editionThresholds{Negative: 0.994, Polychrome: 0.988, Holographic: 0.96, Foil: 0.92}},
		{"soul", editionSoul, editionThresholds{Negative: 0.988, Polychrome: 0.976, Holographic: 0.92, Foil: 0.84}},
	}
	for _, c := range cases {
		if c.tab != c.want {
			t.Errorf("%s edition table = %+v, want %+v", c.name, c.tab, c.want)
		}
	}
	for i := range cases {
		for j := i + 1; j < len(cases); j++ {
			if cases[i].tab == cases[j].tab {
				t.Errorf("%s and %s edition tables are identical; sources must differ", cases[i].name, cases[j].name)
			}
		}
	}

	if got := editionTableFor(SourceShop); got != editionShop {
		t.Errorf("editionTableFor(Shop) = %+v, want the shop table", got)
	}
	for _, src := range []Source{SourceArcanaPack, SourceCelestialPack, SourceSpectralPack, SourceBuffoonPack, SourceStandardPack} {
		if got := editionTableFor(src); got != editionPack {
			t.Errorf("editionTableFor(%v) = %+v, want the pack table", src, got)
		}
	}
}

// A pack already holding Soul skips the Black-Hole substitution pack
// wide: run two spectral streams in lockstep, one over an empty pack and
// one over a pack seeded with Soul, and demand the seeded one never
// yields a Black Hole even on draws where the empty one does.
func TestBlackHoleSkipsWhenPackHoldsSoul(t *testing.T) {
	env := testEnv(t, "SOULBH2", game.DeckRed, game.StakeWhite)

	a := NewSpectralStream(env, 1, SourceSpectralPack)
	b := NewSpectralStream(env, 1, SourceSpectralPack)

	var empty [rng.Lanes]game.ItemSet
	var soulOnly [rng.Lanes]game.ItemSet
	for lane := range soulOnly {
		soulOnly[lane].Add(game.ItemSoul)
	}

	fired := 0
	for i := 0; i < 500; i++ {
		got := a.Next(rng.MaskAll, &empty)
		seeded := b.Next(rng.MaskAll, &soulOnly)
		for lane := 0; lane < rng.Lanes; lane++ {
			if seeded[lane].Identity() == game.ItemBlackHole {
				t.Fatalf("draw %d lane %d: Black Hole in a pack that holds Soul", i, lane)
			}
			if got[lane].Identity() == game.ItemBlackHole {
				fired++
				if seeded[lane].Category() != game.CategorySpectral {
					t.Fatalf("draw %d lane %d: skipped Black Hole became %v, want a normal spectral", i, lane, seeded[lane])
				}
			}
		}
		// The trial streams stay in lockstep whether or not the
		// substitution was skipped.
		if *a.soul != *b.soul || *a.black != *b.black {
			t.Fatalf("draw %d: trial streams diverged", i)
		}
	}
	if fired == 0 {
		t.Log("no Black-Hole trial fired in 4000 draws; guard unexercised this run")
	}
}

// Soul resolution must not disturb pack derivation: contents generated
// with and without soul resolution agree slot for slot, except that a
// raw Soul becomes its legendary joker. Before raw identities were
// recorded in the dedup sets, the two modes could diverge on any slot
// after a Soul.
func TestPackContentsRawResolvedEquivalence(t *testing.T) {
	env := testEnv(t, "SOULEQ1", game.DeckRed, game.StakeWhite)

	// Hand every lane the largest spectral pack so multi-slot packs are
	// exercised on all lanes.
	jumbo := -1
	for i, p := range env.Tables.Packs {
		if p.Kind == "Spectral" && p.Size == "Jumbo" {
			jumbo = i
		}
	}
	if jumbo < 0 {
		t.Fatal("no Jumbo Spectral pack in the tables")
	}
	var packs [rng.Lanes]game.Item
	for lane := range packs {
		packs[lane] = game.NewItem(game.CategoryBooster, jumbo)
	}

	for ante := MinAnte; ante <= MaxAnte; ante++ {
		rawGen := NewPackGenerator(env, ante)
		resGen := NewPackGenerator(env, ante)
		for p := 0; p < PacksPerAnte(ante); p++ {
			raw := rawGen.Contents(rng.MaskAll, packs, false)
			resolved := resGen.Contents(rng.MaskAll, packs, true)
			for lane := 0; lane < rng.Lanes; lane++ {
				for i := 0; i < raw.Counts[lane]; i++ {
					r, v := raw.Item(lane, i), resolved.Item(lane, i)
					if r.Identity() == game.ItemSoul {
						if v.Category() != game.CategoryJoker || game.JokerRarity(v) != game.RarityLegendary {
							t.Fatalf("ante %d pack %d lane %d slot %d: Soul resolved to %v, want a legendary joker", ante, p, lane, i, v)
						}
						continue
					}
					if r != v {
						t.Fatalf("ante %d pack %d lane %d slot %d: raw %v != resolved %v", ante, p, lane, i, r, v)
					}
				}
			}
		}
	}
}

func TestVoucherDefaultEligibility(t *testing.T) {
	env := testEnv(t, "VOUELI1", game.DeckRed, game.StakeWhite)

	eligible := VoucherEligibility(env.Tables, nil)
	base, _ := env.Tables.Resolve(game.CategoryVoucher, "Hieroglyph")
	upgrade, _ := env.Tables.Resolve(game.CategoryVoucher, "Petroglyph")

	if !eligible(base) {
		t.Error("base voucher must be eligible with no purchases")
	}
	if eligible(upgrade) {
		t.Error("upgrade voucher must not be eligible with no purchases")
	}
}

func TestVoucherAssumedPurchaseUnlocksSuccessor(t *testing.T) {
	env := testEnv(t, "VOUELI2", game.DeckRed, game.StakeWhite)

	base, _ := env.Tables.Resolve(game.CategoryVoucher, "Hieroglyph")
	upgrade, _ := env.Tables.Resolve(game.CategoryVoucher, "Petroglyph")
	eligible := VoucherEligibility(env.Tables, []game.Item{base})

	if eligible(base) {
		t.Error("an assumed-purchased voucher must not be offered again")
	}
	if !eligible(upgrade) {
		t.Error("the successor of an assumed purchase must be eligible")
	}
}

func TestVoucherStreamHonorsEligibility(t *testing.T) {
	env := testEnv(t, "VOUSTR1", game.DeckRed, game.StakeWhite)

	for ante := MinAnte; ante <= MaxAnte; ante++ {
		vs := NewVoucherStream(env, ante)
		items := vs.Next(rng.MaskAll, nil)
		for lane, it := range items {
			if it.Category() != game.CategoryVoucher {
				t.Fatalf("ante %d lane %d: category %v", ante, lane, it.Category())
			}
			if env.Tables.VoucherSuccessor(it) == game.ItemNone {
				t.Errorf("ante %d lane %d: upgrade voucher %s offered with no purchases", ante, lane, env.Tables.Name(it))
			}
		}
	}
}

func TestTagStreamTwoDrawsPerAnte(t *testing.T) {
	env := testEnv(t, "TAGSTR1", game.DeckRed, game.StakeWhite)

	ts := NewTagStream(env, 4)
	small := ts.Next(rng.MaskAll)
	big := ts.Next(rng.MaskAll)
	for lane := 0; lane < rng.Lanes; lane++ {
		for _, it := range []game.Item{small[lane], big[lane]} {
			if it.Category() != game.CategoryTag {
				t.Fatalf("lane %d: category %v, want Tag", lane, it.Category())
			}
			if it.Index() >= len(env.Tables.Tags) {
				t.Fatalf("lane %d: tag index %d out of range", lane, it.Index())
			}
		}
	}

	replay := NewTagStream(env, 4)
	if got := replay.Next(rng.MaskAll); got != small {
		t.Error("tag stream replay diverged on the small-blind draw")
	}
}

func TestBossStreamRecencyAndFinishers(t *testing.T) {
	env := testEnv(t, "BOSSTR1", game.DeckRed, game.StakeWhite)

	bs := NewBossStream(env)
	var history [rng.Lanes][]game.Item
	for ante := MinAnte; ante <= MaxAnte; ante++ {
		items := bs.NextForAnte(rng.MaskAll, ante)
		for lane, it := range items {
			if it.Category() != game.CategoryBoss {
				t.Fatalf("ante %d lane %d: category %v", ante, lane, it.Category())
			}
			finisher := env.Tables.Bosses[it.Index()].Finisher
			if wantFinisher := ante%8 == 0; finisher != wantFinisher {
				t.Errorf("ante %d lane %d: finisher=%v, want %v", ante, lane, finisher, wantFinisher)
			}
			h := history[lane]
			start := len(h) - bossRecencyWindow
			if start < 0 {
				start = 0
			}
			for _, prev := range h[start:] {
				if prev.Identity() == it.Identity() {
					t.Errorf("ante %d lane %d: boss %s repeats within the recency window", ante, lane, env.Tables.Name(it))
				}
			}
			history[lane] = append(history[lane], it)
		}
	}
}

func TestBoosterStreamWeightsAndCounts(t *testing.T) {
	env := testEnv(t, "BOOSTR1", game.DeckRed, game.StakeWhite)

	if got := PacksPerAnte(1); got != 4 {
		t.Errorf("PacksPerAnte(1) = %d, want 4", got)
	}
	if got := PacksPerAnte(2); got != 6 {
		t.Errorf("PacksPerAnte(2) = %d, want 6", got)
	}

	bs := NewBoosterStream(env, 2)
	for i := 0; i < PacksPerAnte(2); i++ {
		for lane, it := range bs.Next(rng.MaskAll) {
			if it.Category() != game.CategoryBooster {
				t.Fatalf("pack %d lane %d: category %v", i, lane, it.Category())
			}
			if it.Index() >= len(env.Tables.Packs) {
				t.Fatalf("pack %d lane %d: index %d out of range", i, lane, it.Index())
			}
		}
	}
}

func TestPackContentsSizesMatchDefs(t *testing.T) {
	env := testEnv(t, "PACKCT1", game.DeckRed, game.StakeWhite)

	bs := NewBoosterStream(env, 1)
	gen := NewPackGenerator(env, 1)
	packs := bs.Next(rng.MaskAll)
	contents := gen.Contents(rng.MaskAll, packs, true)

	for lane := 0; lane < rng.Lanes; lane++ {
		def := env.Tables.Packs[packs[lane].Index()]
		if contents.Counts[lane] != def.Cards {
			t.Errorf("lane %d: %d items, want %d for %s %s", lane, contents.Counts[lane], def.Cards, def.Size, def.Kind)
		}
		for i := 0; i < contents.Counts[lane]; i++ {
			if contents.Item(lane, i) == game.ItemNone {
				t.Errorf("lane %d slot %d: empty item", lane, i)
			}
		}
	}
}

func TestPackContentsDistinctWithinPack(t *testing.T) {
	env := testEnv(t, "PACKCT2", game.DeckRed, game.StakeWhite)

	bs := NewBoosterStream(env, 3)
	gen := NewPackGenerator(env, 3)
	for p := 0; p < PacksPerAnte(3); p++ {
		packs := bs.Next(rng.MaskAll)
		contents := gen.Contents(rng.MaskAll, packs, true)
		for lane := 0; lane < rng.Lanes; lane++ {
			if env.Tables.Packs[packs[lane].Index()].Kind == "Standard" {
				continue // standard packs may repeat cards
			}
			seen := make(map[game.Item]bool)
			for i := 0; i < contents.Counts[lane]; i++ {
				id := contents.Item(lane, i).Identity()
				if seen[id] {
					t.Errorf("pack %d lane %d: duplicate %v", p, lane, id)
				}
				seen[id] = true
			}
		}
	}
}

// Mega Buffoon packs roll editions per slot: across enough packs some
// slots must come up plain, which a guaranteed-edition rule would forbid.
func TestBuffoonPackMegaEditionsPerSlot(t *testing.T) {
	env := testEnv(t, "MEGABF1", game.DeckRed, game.StakeWhite)

	js := NewJokerStream(env, 2, SourceBuffoonPack)
	plain := 0
	for i := 0; i < 32; i++ {
		for _, it := range js.Next(rng.MaskAll, nil) {
			if it.Edition() == game.EditionNone {
				plain++
			}
		}
	}
	if plain == 0 {
		t.Error("no plain joker in 256 buffoon draws; editions look guaranteed")
	}
}

func TestShopStreamCategories(t *testing.T) {
	env := testEnv(t, "SHOPST1", game.DeckRed, game.StakeWhite)

	ss := NewShopStream(env, 2)
	counts := make(map[game.Category]int)
	for slot := 0; slot < MaxShopSlotsJoker; slot++ {
		for lane, it := range ss.Next(rng.MaskAll) {
			switch it.Category() {
			case game.CategoryJoker, game.CategoryTarot, game.CategoryPlanet:
				counts[it.Category()]++
			default:
				t.Fatalf("slot %d lane %d: category %v in a Red-deck shop", slot, lane, it.Category())
			}
		}
	}
	if counts[game.CategoryJoker] == 0 {
		t.Error("no jokers in 128 shop slots; weights look wrong")
	}
}

func TestShopStreamReplay(t *testing.T) {
	env := testEnv(t, "SHOPST2", game.DeckRed, game.StakeWhite)

	a := NewShopStream(env, 1)
	b := NewShopStream(env, 1)
	for slot := 0; slot < 8; slot++ {
		if got, want := a.Next(rng.MaskAll), b.Next(rng.MaskAll); got != want {
			t.Fatalf("slot %d diverged", slot)
		}
	}
}

// Lane independence at stream level: lane i of an 8-way batch sees the
// items a single-seed batch of that seed sees in lane 0.
func TestStreamLaneIndependence(t *testing.T) {
	env := testEnv(t, "LANEIND", game.DeckRed, game.StakeWhite)

	batchItems := NewShopStream(env, 1)
	var wide [8][rng.Lanes]game.Item
	for slot := 0; slot < 8; slot++ {
		wide[slot] = batchItems.Next(rng.MaskAll)
	}

	for lane := 0; lane < rng.Lanes; lane++ {
		seed := env.Cache.Batch().Seed(lane)
		solo, err := rng.NewSeedBatch([]string{seed}, 1)
		if err != nil {
			t.Fatalf("solo batch for %s: %v", seed, err)
		}
		soloEnv := env
		soloEnv.Cache = rng.NewSeedHashCache(solo)
		ss := NewShopStream(soloEnv, 1)
		for slot := 0; slot < 8; slot++ {
			items := ss.Next(rng.MaskAll)
			if items[0] != wide[slot][lane] {
				t.Fatalf("seed %s slot %d: solo %v != batched %v", seed, slot, items[0], wide[slot][lane])
			}
		}
	}
}
