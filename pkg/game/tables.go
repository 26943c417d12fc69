package game

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var defaultTablesYAML []byte

// VoucherDef names a voucher and the upgraded voucher its purchase unlocks.
// Base vouchers have a successor; upgrade vouchers leave it empty.
type VoucherDef struct {
	Name      string `yaml:"name" json:"name"`
	Successor string `yaml:"successor,omitempty" json:"successor,omitempty"`
}

// BossDef names a boss blind. Finisher bosses only appear at antes that
// are multiples of 8.
type BossDef struct {
	Name     string `yaml:"name" json:"name"`
	Finisher bool   `yaml:"finisher,omitempty" json:"finisher,omitempty"`
}

// PackDef is one row of the weighted booster table.
type PackDef struct {
	Kind   string  `yaml:"kind" json:"kind"`
	Size   string  `yaml:"size" json:"size"`
	Weight float64 `yaml:"weight" json:"weight"`
	Cards  int     `yaml:"cards" json:"cards"`
}

// ShopWeights is the relative frequency of each category in shop slots.
// Spectral is zero outside the Ghost deck.
type ShopWeights struct {
	Joker       float64 `yaml:"joker" json:"joker"`
	Tarot       float64 `yaml:"tarot" json:"tarot"`
	Planet      float64 `yaml:"planet" json:"planet"`
	PlayingCard float64 `yaml:"playing_card" json:"playing_card"`
	Spectral    float64 `yaml:"spectral" json:"spectral"`
}

// Total sums all weights.
func (w ShopWeights) Total() float64 {
	return w.Joker + w.Tarot + w.Planet + w.PlayingCard + w.Spectral
}

// Tables holds the per-item pools the streams draw from. Order within each
// pool is load-bearing: the index draw selects by position.
type Tables struct {
	JokersCommon    []string `yaml:"jokers_common" json:"jokers_common"`
	JokersUncommon  []string `yaml:"jokers_uncommon" json:"jokers_uncommon"`
	JokersRare      []string `yaml:"jokers_rare" json:"jokers_rare"`
	JokersLegendary []string `yaml:"jokers_legendary" json:"jokers_legendary"`

	Tarots    []string     `yaml:"tarots" json:"tarots"`
	Planets   []string     `yaml:"planets" json:"planets"`
	Spectrals []string     `yaml:"spectrals" json:"spectrals"`
	Vouchers  []VoucherDef `yaml:"vouchers" json:"vouchers"`
	Tags      []string     `yaml:"tags" json:"tags"`
	Bosses    []BossDef    `yaml:"bosses" json:"bosses"`

	Packs       []PackDef   `yaml:"packs" json:"packs"`
	ShopWeights ShopWeights `yaml:"shop_weights" json:"shop_weights"`

	// nameIndex resolves "category/name" to a packed Item.
	nameIndex map[string]Item
}

var (
	defaultTables     *Tables
	defaultTablesOnce sync.Once
	defaultTablesErr  error
)

// Default returns the embedded base-game tables, parsed once.
func Default() (*Tables, error) {
	defaultTablesOnce.Do(func() {
		defaultTables, defaultTablesErr = parseTables(defaultTablesYAML)
	})
	return defaultTables, defaultTablesErr
}

// LoadTables reads and validates an alternate table set from a YAML file.
func LoadTables(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tables file: %w", err)
	}
	return parseTables(data)
}

func parseTables(data []byte) (*Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing tables YAML: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	t.buildNameIndex()
	return &t, nil
}

// Validate checks pool shapes. Returns the first failure.
func (t *Tables) Validate() error {
	pools := []struct {
		name string
		n    int
	}{
		{"jokers_common", len(t.JokersCommon)},
		{"jokers_uncommon", len(t.JokersUncommon)},
		{"jokers_rare", len(t.JokersRare)},
		{"jokers_legendary", len(t.JokersLegendary)},
		{"tarots", len(t.Tarots)},
		{"planets", len(t.Planets)},
		{"spectrals", len(t.Spectrals)},
		{"tags", len(t.Tags)},
	}
	for _, p := range pools {
		if p.n == 0 {
			return fmt.Errorf("table %s must not be empty", p.name)
		}
	}
	if len(t.Vouchers) == 0 {
		return errors.New("vouchers table must not be empty")
	}
	voucherNames := make(map[string]bool, len(t.Vouchers))
	for _, v := range t.Vouchers {
		if v.Name == "" {
			return errors.New("voucher name must not be empty")
		}
		voucherNames[v.Name] = true
	}
	for _, v := range t.Vouchers {
		if v.Successor != "" && !voucherNames[v.Successor] {
			return fmt.Errorf("voucher %q names unknown successor %q", v.Name, v.Successor)
		}
	}
	if len(t.Bosses) == 0 {
		return errors.New("bosses table must not be empty")
	}
	finishers := 0
	for _, b := range t.Bosses {
		if b.Finisher {
			finishers++
		}
	}
	if finishers == 0 || finishers == len(t.Bosses) {
		return errors.New("bosses table needs both regular and finisher entries")
	}
	if len(t.Packs) == 0 {
		return errors.New("packs table must not be empty")
	}
	for i, p := range t.Packs {
		if p.Weight <= 0 {
			return fmt.Errorf("packs[%d]: weight must be positive, got %v", i, p.Weight)
		}
		if p.Cards < 1 || p.Cards > ItemSetCap {
			return fmt.Errorf("packs[%d]: cards must be in [1, %d], got %d", i, ItemSetCap, p.Cards)
		}
	}
	if t.ShopWeights.Total() <= 0 {
		return errors.New("shop weights must sum to a positive value")
	}
	return nil
}

func (t *Tables) buildNameIndex() {
	t.nameIndex = make(map[string]Item, 256)
	add := func(cat Category, it Item, name string) {
		t.nameIndex[fmt.Sprintf("%s/%s", cat, name)] = it
	}
	jokerPools := []struct {
		r     Rarity
		names []string
	}{
		{RarityCommon, t.JokersCommon},
		{RarityUncommon, t.JokersUncommon},
		{RarityRare, t.JokersRare},
		{RarityLegendary, t.JokersLegendary},
	}
	for _, p := range jokerPools {
		for i, name := range p.names {
			add(CategoryJoker, NewJoker(p.r, i), name)
		}
	}
	for i, name := range t.Tarots {
		add(CategoryTarot, NewItem(CategoryTarot, i), name)
	}
	for i, name := range t.Planets {
		add(CategoryPlanet, NewItem(CategoryPlanet, i), name)
	}
	for i, name := range t.Spectrals {
		add(CategorySpectral, NewItem(CategorySpectral, i), name)
	}
	for i, v := range t.Vouchers {
		add(CategoryVoucher, NewItem(CategoryVoucher, i), v.Name)
	}
	for i, name := range t.Tags {
		add(CategoryTag, NewItem(CategoryTag, i), name)
	}
	for i, b := range t.Bosses {
		add(CategoryBoss, NewItem(CategoryBoss, i), b.Name)
	}
}

// Resolve maps a category and item name to its packed Item.
func (t *Tables) Resolve(cat Category, name string) (Item, error) {
	if it, ok := t.nameIndex[fmt.Sprintf("%s/%s", cat, name)]; ok {
		return it, nil
	}
	return ItemNone, fmt.Errorf("unknown %s item %q", cat, name)
}

// Name returns the display name of an item, or its packed form when the
// item does not come from a named pool.
func (t *Tables) Name(it Item) string {
	switch it.Category() {
	case CategoryJoker:
		pool := t.jokerPool(JokerRarity(it))
		if i := JokerPoolIndex(it); i < len(pool) {
			return pool[i]
		}
	case CategoryTarot:
		if i := it.Index(); i < len(t.Tarots) {
			return t.Tarots[i]
		}
	case CategoryPlanet:
		if i := it.Index(); i < len(t.Planets) {
			return t.Planets[i]
		}
	case CategorySpectral:
		if i := it.Index(); i < len(t.Spectrals) {
			return t.Spectrals[i]
		}
	case CategoryVoucher:
		if i := it.Index(); i < len(t.Vouchers) {
			return t.Vouchers[i].Name
		}
	case CategoryTag:
		if i := it.Index(); i < len(t.Tags) {
			return t.Tags[i]
		}
	case CategoryBoss:
		if i := it.Index(); i < len(t.Bosses) {
			return t.Bosses[i].Name
		}
	case CategoryPlayingCard:
		return fmt.Sprintf("%s of %s", CardRank(it), CardSuit(it))
	case CategorySpecial:
		switch it.Identity() {
		case ItemSoul:
			return "The Soul"
		case ItemBlackHole:
			return "Black Hole"
		}
	}
	return fmt.Sprintf("Item(%#x)", uint32(it))
}

func (t *Tables) jokerPool(r Rarity) []string {
	switch r {
	case RarityCommon:
		return t.JokersCommon
	case RarityUncommon:
		return t.JokersUncommon
	case RarityRare:
		return t.JokersRare
	case RarityLegendary:
		return t.JokersLegendary
	}
	return nil
}

// JokerPoolSize returns the size of a rarity pool.
func (t *Tables) JokerPoolSize(r Rarity) int { return len(t.jokerPool(r)) }

// VoucherSuccessor returns the upgrade unlocked by purchasing v, or
// ItemNone when v has none.
func (t *Tables) VoucherSuccessor(v Item) Item {
	if v.Category() != CategoryVoucher {
		return ItemNone
	}
	i := v.Index()
	if i >= len(t.Vouchers) || t.Vouchers[i].Successor == "" {
		return ItemNone
	}
	succ, err := t.Resolve(CategoryVoucher, t.Vouchers[i].Successor)
	if err != nil {
		return ItemNone
	}
	return succ
}

// BossPool returns the indices of bosses eligible at the given ante:
// finishers at antes divisible by 8, regular bosses otherwise.
func (t *Tables) BossPool(ante int) []int {
	finisher := ante%8 == 0
	pool := make([]int, 0, len(t.Bosses))
	for i, b := range t.Bosses {
		if b.Finisher == finisher {
			pool = append(pool, i)
		}
	}
	return pool
}

// ShopWeightsFor returns the shop category weights adjusted for the deck.
// The Ghost deck adds spectral cards to the shop pool.
func (t *Tables) ShopWeightsFor(deck Deck) ShopWeights {
	w := t.ShopWeights
	if deck == DeckGhost {
		w.Spectral = 2
	}
	return w
}
