package game

import "testing"

func TestItemPackingRoundTrip(t *testing.T) {
	it := NewJoker(RarityRare, 8).
		WithEdition(EditionNegative).
		WithSticker(StickerEternal).
		WithSticker(StickerRental)

	if got := it.Category(); got != CategoryJoker {
		t.Errorf("Category() = %v, want Joker", got)
	}
	if got := JokerRarity(it); got != RarityRare {
		t.Errorf("JokerRarity() = %v, want Rare", got)
	}
	if got := JokerPoolIndex(it); got != 8 {
		t.Errorf("JokerPoolIndex() = %d, want 8", got)
	}
	if got := it.Edition(); got != EditionNegative {
		t.Errorf("Edition() = %v, want Negative", got)
	}
	if !it.HasSticker(StickerEternal) || !it.HasSticker(StickerRental) {
		t.Error("expected eternal and rental stickers set")
	}
	if it.HasSticker(StickerPerishable) {
		t.Error("perishable sticker must not be set")
	}
}

func TestItemIdentityIgnoresModifiers(t *testing.T) {
	plain := NewItem(CategoryTarot, 5)
	dressed := plain.WithEdition(EditionFoil).WithSeal(SealRed)
	if plain.Identity() != dressed.Identity() {
		t.Error("Identity() must ignore modifiers")
	}

	other := NewItem(CategoryTarot, 6)
	if plain.Identity() == other.Identity() {
		t.Error("distinct indices must have distinct identities")
	}
}

func TestItemEditionReplace(t *testing.T) {
	it := NewItem(CategorySpectral, 3).WithEdition(EditionFoil)
	it = it.WithEdition(EditionPolychrome)
	if got := it.Edition(); got != EditionPolychrome {
		t.Errorf("Edition() = %v, want Polychrome after replace", got)
	}
	if got := it.Index(); got != 3 {
		t.Errorf("Index() = %d, want 3 after edition replace", got)
	}
}

func TestPlayingCardPacking(t *testing.T) {
	for s := SuitSpades; s <= SuitDiamonds; s++ {
		for r := Rank(0); r < RanksPerSuit; r++ {
			it := NewPlayingCard(s, r)
			if CardSuit(it) != s || CardRank(it) != r {
				t.Fatalf("card (%v, %v) round-tripped to (%v, %v)", s, r, CardSuit(it), CardRank(it))
			}
		}
	}
}

func TestJokerRarityDistinctIndices(t *testing.T) {
	// Position 0 of each rarity pool must pack to distinct Items.
	seen := make(map[Item]Rarity)
	for _, r := range []Rarity{RarityCommon, RarityUncommon, RarityRare, RarityLegendary} {
		it := NewJoker(r, 0)
		if prev, ok := seen[it.Identity()]; ok {
			t.Fatalf("rarity %v and %v collide on identity %v", prev, r, it)
		}
		seen[it.Identity()] = r
	}
}

func TestSentinels(t *testing.T) {
	if !ItemExcluded.Excluded() {
		t.Error("ItemExcluded must report Excluded()")
	}
	if ItemSoul.Excluded() || ItemBlackHole.Excluded() {
		t.Error("special items must not report Excluded()")
	}
	if ItemSoul.Identity() == ItemBlackHole.Identity() {
		t.Error("Soul and Black Hole must be distinct")
	}
	if ItemSoul.Category() != CategorySpecial {
		t.Errorf("ItemSoul category = %v, want Special", ItemSoul.Category())
	}
}

func TestItemSetDeduplicatesOnIdentity(t *testing.T) {
	var set ItemSet
	base := NewItem(CategoryTarot, 7)

	if !set.Add(base) {
		t.Fatal("Add failed on empty set")
	}
	if !set.Contains(base.WithEdition(EditionFoil)) {
		t.Error("Contains must match on identity, ignoring edition")
	}
	if set.Contains(NewItem(CategoryTarot, 8)) {
		t.Error("Contains must not match a different index")
	}
}

func TestItemSetCapacity(t *testing.T) {
	var set ItemSet
	for i := 0; i < ItemSetCap; i++ {
		if !set.Add(NewItem(CategoryPlanet, i)) {
			t.Fatalf("Add %d failed before capacity", i)
		}
	}
	if set.Add(NewItem(CategoryPlanet, ItemSetCap)) {
		t.Error("Add must fail at capacity")
	}
	if set.Len() != ItemSetCap {
		t.Errorf("Len() = %d, want %d", set.Len(), ItemSetCap)
	}
}
