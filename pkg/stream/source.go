package stream

import (
	"fmt"
	"strconv"

	"github.com/OptimusPi/motely/pkg/game"
	"github.com/OptimusPi/motely/pkg/rng"
)

// Source tags where an item is generated. The code strings feed PRNG key
// derivation and must never change.
type Source uint8

const (
	SourceShop Source = iota
	SourceArcanaPack
	SourceCelestialPack
	SourceSpectralPack
	SourceBuffoonPack
	SourceStandardPack
)

var sourceCodes = [...]string{"sho", "ar1", "pl1", "spe", "buf", "sta"}
var sourceNames = [...]string{"Shop", "ArcanaPack", "CelestialPack", "SpectralPack", "BuffoonPack", "StandardPack"}

// Code returns the short code mixed into PRNG keys.
func (s Source) Code() string { return sourceCodes[s] }

func (s Source) String() string {
	if int(s) < len(sourceNames) {
		return sourceNames[s]
	}
	return fmt.Sprintf("Source(%d)", uint8(s))
}

// MinAnte and MaxAnte bound the antes the engine derives events for.
const (
	MinAnte = 1
	MaxAnte = 8
)

// Shop slot bounds. The shop can reroll far beyond what a filter ever
// inspects; the per-category defaults bound how many slots a filter scans
// when the clause gives no explicit range.
const (
	// ShopSlotCap is the absolute number of reachable shop slots.
	ShopSlotCap = 50

	// MaxShopSlotsJoker is the default scan depth for joker clauses.
	MaxShopSlotsJoker = 16

	// MaxShopSlotsConsumable is the default scan depth for tarot,
	// planet and spectral clauses.
	MaxShopSlotsConsumable = 8

	// MaxShopSlotsDefault is the default scan depth for everything else.
	MaxShopSlotsDefault = 6
)

// keyFor builds the canonical derivation key: base + source code + ante.
func keyFor(base string, src Source, ante int) string {
	return base + src.Code() + strconv.Itoa(ante)
}

// anteKey builds a derivation key without a source component.
func anteKey(base string, ante int) string {
	return base + strconv.Itoa(ante)
}

// Env carries the per-batch parameters every stream needs: the seed-hash
// cache of the current batch and the run identity (tables, deck, stake).
type Env struct {
	Cache  *rng.SeedHashCache
	Tables *game.Tables
	Deck   game.Deck
	Stake  game.Stake
}
