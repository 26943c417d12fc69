package filterdsl

import (
	"fmt"
	"strings"

	"github.com/OptimusPi/motely/pkg/game"
	"github.com/OptimusPi/motely/pkg/rng"
	"github.com/OptimusPi/motely/pkg/search"
	"github.com/OptimusPi/motely/pkg/stream"
)

// category is a normalized clause type.
type category string

const (
	catJoker        category = "joker"
	catSoulJoker    category = "souljoker"
	catTarot        category = "tarot"
	catPlanet       category = "planet"
	catSpectral     category = "spectral"
	catPlayingCard  category = "playingcard"
	catVoucher      category = "voucher"
	catTag          category = "tag"
	catSmallBlind   category = "smallblindtag"
	catBigBlind     category = "bigblindtag"
	catBoss         category = "boss"
	catCompositeAnd category = "and"
	catCompositeOr  category = "or"
)

// gameCategory maps a clause category to the item category it inspects.
var gameCategory = map[category]game.Category{
	catJoker:       game.CategoryJoker,
	catSoulJoker:   game.CategoryJoker,
	catTarot:       game.CategoryTarot,
	catPlanet:      game.CategoryPlanet,
	catSpectral:    game.CategorySpectral,
	catPlayingCard: game.CategoryPlayingCard,
	catVoucher:     game.CategoryVoucher,
	catTag:         game.CategoryTag,
	catSmallBlind:  game.CategoryTag,
	catBigBlind:    game.CategoryTag,
	catBoss:        game.CategoryBoss,
}

// parseCategory normalizes a clause type string.
func parseCategory(s string) (category, error) {
	c := category(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case catJoker, catSoulJoker, catTarot, catPlanet, catSpectral, catPlayingCard,
		catVoucher, catTag, catSmallBlind, catBigBlind, catBoss,
		catCompositeAnd, catCompositeOr:
		return c, nil
	}
	return "", fmt.Errorf("unrecognised clause type %q", s)
}

// compiledClause is the executable form of one clause. Position sets are
// kept as 64-bit masks so the hot path never walks a slice to test
// membership.
type compiledClause struct {
	cat category

	targets  map[game.Item]bool
	edition  game.Edition
	editionS bool

	antes    []int
	anteMask uint64

	shopSlots    []int
	shopSlotMask uint64
	maxShopSlot  int

	packSlots    []int
	packSlotMask uint64
	maxPackSlot  int

	min int

	rank, suit, seal, enh int // -1 when unset

	eligible func(game.Item) bool

	op       category // composite operator, or ""
	children []*compiledClause
}

// compileClause validates and lowers one clause. inherited carries a
// composite helper's ante list down to children that set none.
func compileClause(c *Clause, tables *game.Tables, inherited []int, inheritedSet bool) (*compiledClause, error) {
	cat, err := parseCategory(c.Type)
	if err != nil {
		return nil, err
	}

	antes := c.Antes
	switch {
	case c.AntesExplicitlySet():
	case inheritedSet:
		antes = inherited
	default:
		antes = nil
	}
	if antes == nil {
		for a := stream.MinAnte; a <= stream.MaxAnte; a++ {
			antes = append(antes, a)
		}
	}
	var anteMask uint64
	for _, a := range antes {
		if a < stream.MinAnte || a > stream.MaxAnte {
			return nil, fmt.Errorf("clause %q: ante %d out of range [%d, %d]", c.Type, a, stream.MinAnte, stream.MaxAnte)
		}
		anteMask |= 1 << uint(a)
	}

	if cat == catCompositeAnd || cat == catCompositeOr {
		if len(c.Clauses) == 0 {
			return nil, fmt.Errorf("composite %q clause needs children", c.Type)
		}
		cc := &compiledClause{cat: cat, op: cat, antes: antes, anteMask: anteMask, min: 1}
		childInherited := inherited
		childSet := inheritedSet
		if c.AntesExplicitlySet() {
			childInherited = c.Antes
			childSet = true
		}
		for i := range c.Clauses {
			child, err := compileClause(&c.Clauses[i], tables, childInherited, childSet)
			if err != nil {
				return nil, err
			}
			cc.children = append(cc.children, child)
		}
		return cc, nil
	}

	cc := &compiledClause{
		cat:      cat,
		antes:    antes,
		anteMask: anteMask,
		min:      c.Min,
		rank:     -1,
		suit:     -1,
		seal:     -1,
		enh:      -1,
	}
	if cc.min < 1 {
		cc.min = 1
	}

	// Resolve target names against the tables; a wildcard leaves the
	// target set empty.
	for _, name := range c.TargetNames() {
		it, err := tables.Resolve(gameCategory[cat], name)
		if err != nil {
			return nil, fmt.Errorf("clause %q: %w", c.Type, err)
		}
		if cat == catSoulJoker && game.JokerRarity(it) != game.RarityLegendary {
			return nil, fmt.Errorf("clause %q: %s is not a legendary joker", c.Type, name)
		}
		if cc.targets == nil {
			cc.targets = make(map[game.Item]bool, 4)
		}
		cc.targets[it.Identity()] = true
	}

	if c.Edition != "" {
		ed, err := parseEdition(c.Edition)
		if err != nil {
			return nil, fmt.Errorf("clause %q: %w", c.Type, err)
		}
		cc.edition = ed
		cc.editionS = true
	}

	if err := cc.compileCardQualifiers(c); err != nil {
		return nil, err
	}
	if err := cc.compileSlots(c); err != nil {
		return nil, err
	}

	if cat == catVoucher {
		assumed := make([]game.Item, 0, len(c.AssumedVouchers))
		for _, name := range c.AssumedVouchers {
			it, err := tables.Resolve(game.CategoryVoucher, name)
			if err != nil {
				return nil, fmt.Errorf("clause %q assumedVouchers: %w", c.Type, err)
			}
			assumed = append(assumed, it)
		}
		cc.eligible = stream.VoucherEligibility(tables, assumed)
	}
	return cc, nil
}

func (cc *compiledClause) compileCardQualifiers(c *Clause) error {
	if c.Rank == "" && c.Suit == "" && c.Seal == "" && c.Enhancement == "" {
		return nil
	}
	if cc.cat != catPlayingCard {
		return fmt.Errorf("clause %q: rank/suit/seal/enhancement only apply to PlayingCard clauses", c.Type)
	}
	var err error
	if c.Rank != "" {
		if cc.rank, err = indexOfName(c.Rank, rankNames()); err != nil {
			return fmt.Errorf("rank: %w", err)
		}
	}
	if c.Suit != "" {
		if cc.suit, err = indexOfName(c.Suit, suitNames()); err != nil {
			return fmt.Errorf("suit: %w", err)
		}
	}
	if c.Seal != "" {
		if cc.seal, err = indexOfName(c.Seal, sealNames()); err != nil {
			return fmt.Errorf("seal: %w", err)
		}
	}
	if c.Enhancement != "" {
		if cc.enh, err = indexOfName(c.Enhancement, enhancementNames()); err != nil {
			return fmt.Errorf("enhancement: %w", err)
		}
	}
	return nil
}

// compileSlots resolves which positions the clause inspects. Explicit
// sources restrict scanning to exactly those positions; with no sources
// the clause scans the category's default shop depth plus every pack.
func (cc *compiledClause) compileSlots(c *Clause) error {
	explicit := false
	if c.Sources != nil && len(c.Sources.ShopSlots) > 0 {
		cc.shopSlots = c.Sources.ShopSlots
		explicit = true
	}
	if c.MinShopSlot != nil || c.MaxShopSlot != nil {
		lo, hi := 0, defaultShopDepth(cc.cat)-1
		if c.MinShopSlot != nil {
			lo = *c.MinShopSlot
		}
		if c.MaxShopSlot != nil {
			hi = *c.MaxShopSlot
		}
		if lo < 0 || hi >= stream.ShopSlotCap || lo > hi {
			return fmt.Errorf("clause %q: shop slot range [%d, %d] invalid", c.Type, lo, hi)
		}
		for s := lo; s <= hi; s++ {
			cc.shopSlots = append(cc.shopSlots, s)
		}
		explicit = true
	}
	if c.Sources != nil && len(c.Sources.PackSlots) > 0 {
		cc.packSlots = c.Sources.PackSlots
		explicit = true
	}

	if !explicit {
		if shopCapable(cc.cat) {
			for s := 0; s < defaultShopDepth(cc.cat); s++ {
				cc.shopSlots = append(cc.shopSlots, s)
			}
		}
		if packCapable(cc.cat) {
			for p := 0; p < stream.PacksPerAnte(2); p++ {
				cc.packSlots = append(cc.packSlots, p)
			}
		}
	}

	for _, s := range cc.shopSlots {
		if s < 0 || s >= stream.ShopSlotCap {
			return fmt.Errorf("clause %q: shop slot %d out of range [0, %d)", c.Type, s, stream.ShopSlotCap)
		}
		if !shopCapable(cc.cat) {
			return fmt.Errorf("clause %q: %s items never appear in shop slots", c.Type, cc.cat)
		}
		cc.shopSlotMask |= 1 << uint(s)
		if s > cc.maxShopSlot {
			cc.maxShopSlot = s
		}
	}
	for _, p := range cc.packSlots {
		if p < 0 || p >= stream.PacksPerAnte(2) {
			return fmt.Errorf("clause %q: pack slot %d out of range [0, %d)", c.Type, p, stream.PacksPerAnte(2))
		}
		if !packCapable(cc.cat) {
			return fmt.Errorf("clause %q: %s items never appear in packs", c.Type, cc.cat)
		}
		cc.packSlotMask |= 1 << uint(p)
		if p > cc.maxPackSlot {
			cc.maxPackSlot = p
		}
	}
	return nil
}

// shopCapable reports whether the category occupies shop slots.
func shopCapable(cat category) bool {
	switch cat {
	case catJoker, catTarot, catPlanet, catSpectral, catPlayingCard:
		return true
	}
	return false
}

// packCapable reports whether the category appears inside booster packs.
func packCapable(cat category) bool {
	switch cat {
	case catJoker, catSoulJoker, catTarot, catPlanet, catSpectral, catPlayingCard:
		return true
	}
	return false
}

// defaultShopDepth is the per-category default scan depth when a clause
// names no slots.
func defaultShopDepth(cat category) int {
	switch cat {
	case catJoker:
		return stream.MaxShopSlotsJoker
	case catTarot, catPlanet, catSpectral:
		return stream.MaxShopSlotsConsumable
	}
	return stream.MaxShopSlotsDefault
}

// selectivity estimates the fraction of seeds an atomic clause keeps;
// smaller is more restrictive. Composites take the loosest child for Or
// and the tightest for And. The estimate only ranks filter groups, so a
// coarse model is fine.
func (cc *compiledClause) selectivity(tables *game.Tables) float64 {
	switch cc.op {
	case catCompositeOr:
		worst := 0.0
		for _, ch := range cc.children {
			if s := ch.selectivity(tables); s > worst {
				worst = s
			}
		}
		return worst
	case catCompositeAnd:
		best := 1.0
		for _, ch := range cc.children {
			if s := ch.selectivity(tables); s < best {
				best = s
			}
		}
		return best
	}

	pool := 1.0
	switch cc.cat {
	case catJoker:
		pool = float64(tables.JokerPoolSize(game.RarityCommon) + tables.JokerPoolSize(game.RarityUncommon) + tables.JokerPoolSize(game.RarityRare))
	case catSoulJoker:
		pool = float64(tables.JokerPoolSize(game.RarityLegendary)) / 0.009 // soul itself is rare
	case catTarot:
		pool = float64(len(tables.Tarots))
	case catPlanet:
		pool = float64(len(tables.Planets))
	case catSpectral:
		pool = float64(len(tables.Spectrals))
	case catPlayingCard:
		pool = float64(game.NumSuits * game.RanksPerSuit)
	case catVoucher:
		pool = float64(len(tables.Vouchers))
	case catTag, catSmallBlind, catBigBlind:
		pool = float64(len(tables.Tags))
	case catBoss:
		pool = float64(len(tables.Bosses))
	}

	targets := float64(len(cc.targets))
	if targets == 0 {
		return 1 // wildcard keeps nearly everything
	}
	perPosition := targets / pool
	if cc.editionS && cc.edition != game.EditionNone {
		perPosition *= 0.02
	}
	positions := float64(len(cc.shopSlots)+len(cc.packSlots)) * float64(len(cc.antes))
	if positions < 1 {
		positions = float64(len(cc.antes))
	}
	p := 1 - pow1m(perPosition, positions)
	return p
}

// pow1m computes (1-p)^n without importing math for a hot-free path.
func pow1m(p, n float64) float64 {
	out := 1.0
	for i := 0.0; i < n; i++ {
		out *= 1 - p
	}
	return out
}

// Compiled is the executable form of a filter document.
type Compiled struct {
	Doc   *Document
	Deck  game.Deck
	Stake game.Stake

	Chain  *search.Chain
	Scorer search.Scorer

	// Columns are the CSV column labels derived from the SHOULD clauses
	// in input order.
	Columns []string
}

// Compile lowers a document to a filter chain, a scorer and the output
// column set. Clause errors abort compilation and name the clause.
func Compile(doc *Document, tables *game.Tables) (*Compiled, error) {
	if tables == nil {
		var err error
		if tables, err = game.Default(); err != nil {
			return nil, err
		}
	}
	deck, err := game.ParseDeck(doc.Deck)
	if err != nil {
		return nil, err
	}
	stake, err := game.ParseStake(doc.Stake)
	if err != nil {
		return nil, err
	}

	out := &Compiled{Doc: doc, Deck: deck, Stake: stake}

	var must []*compiledClause
	for i := range doc.Must {
		cc, err := compileClause(&doc.Must[i], tables, nil, false)
		if err != nil {
			return nil, fmt.Errorf("must[%d]: %w", i, err)
		}
		must = append(must, cc)
	}
	var mustNot []*compiledClause
	for i := range doc.MustNot {
		cc, err := compileClause(&doc.MustNot[i], tables, nil, false)
		if err != nil {
			return nil, fmt.Errorf("mustNot[%d]: %w", i, err)
		}
		mustNot = append(mustNot, cc)
	}
	var should []*compiledClause
	for i := range doc.Should {
		cc, err := compileClause(&doc.Should[i], tables, nil, false)
		if err != nil {
			return nil, fmt.Errorf("should[%d]: %w", i, err)
		}
		should = append(should, cc)
		out.Columns = append(out.Columns, doc.Should[i].ColumnLabel())
	}

	filters := buildFilters(must, mustNot, tables)
	chain, err := search.NewChain(filters...)
	if err != nil {
		return nil, err
	}
	out.Chain = chain

	if len(should) > 0 {
		scores := make([]int, len(should))
		for i := range doc.Should {
			scores[i] = doc.Should[i].Score
			if scores[i] == 0 {
				scores[i] = 1
			}
		}
		out.Scorer = &clauseScorer{clauses: should, scores: scores}
	}
	return out, nil
}

// buildFilters groups must clauses by category, promotes the most
// selective group to the front, chains the rest, and appends the mustNot
// group. Zero clauses compile to the pass-through filter, never to an
// all-zeros mask.
func buildFilters(must, mustNot []*compiledClause, tables *game.Tables) []search.Filter {
	groups := make(map[category][]*compiledClause)
	var order []category
	for _, cc := range must {
		key := cc.groupKey()
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], cc)
	}

	// Most selective group first: it kills the most lanes before the
	// costlier groups run.
	for i := 0; i < len(order); i++ {
		for j := i + 1; j < len(order); j++ {
			if groupSelectivity(groups[order[j]], tables) < groupSelectivity(groups[order[i]], tables) {
				order[i], order[j] = order[j], order[i]
			}
		}
	}

	var filters []search.Filter
	for _, key := range order {
		filters = append(filters, &groupFilter{clauses: groups[key]})
	}
	if len(mustNot) > 0 {
		filters = append(filters, &groupFilter{clauses: mustNot, invert: true})
	}
	if len(filters) == 0 {
		filters = append(filters, search.PassThrough())
	}
	return filters
}

// groupKey buckets a clause for chain construction: composites group
// under their first atomic descendant's category.
func (cc *compiledClause) groupKey() category {
	if cc.op == "" {
		return cc.cat
	}
	if len(cc.children) > 0 {
		return cc.children[0].groupKey()
	}
	return cc.cat
}

func groupSelectivity(clauses []*compiledClause, tables *game.Tables) float64 {
	best := 1.0
	for _, cc := range clauses {
		if s := cc.selectivity(tables); s < best {
			best = s
		}
	}
	return best
}

// groupFilter is one chained filter: the AND of its clauses' masks,
// inverted for mustNot groups.
type groupFilter struct {
	clauses []*compiledClause
	invert  bool
}

// OnBatchStart implements search.Filter.
func (g *groupFilter) OnBatchStart(*search.Context) {}

// Filter implements search.Filter.
func (g *groupFilter) Filter(ctx *search.Context) rng.Mask8 {
	mask := ctx.Live()
	for _, cc := range g.clauses {
		m := cc.mask(ctx)
		if g.invert {
			m = ctx.Live() &^ m
		}
		mask &= m
		if mask.None() {
			break
		}
	}
	return mask
}

// clauseScorer awards each SHOULD clause's points per match.
type clauseScorer struct {
	clauses []*compiledClause
	scores  []int
}

// Score implements search.Scorer.
func (s *clauseScorer) Score(ctx *search.Context, lane int) search.Score {
	parts := make([]int, len(s.clauses))
	total := 0
	for i, cc := range s.clauses {
		counts := cc.counts(ctx)
		parts[i] = counts[lane] * s.scores[i]
		total += parts[i]
	}
	return search.Score{Total: total, Parts: parts}
}
