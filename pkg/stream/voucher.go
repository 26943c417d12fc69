package stream

import (
	"github.com/OptimusPi/motely/pkg/game"
	"github.com/OptimusPi/motely/pkg/rng"
)

// VoucherStream produces the one voucher offered per ante, resampled
// against vouchers that cannot appear: already-active ones and upgrades
// whose base has not been purchased.
//
// The engine does not simulate purchases. By default nothing is active
// and only base vouchers are eligible; a filter may assume purchases,
// which activates those vouchers and makes their successors eligible.
type VoucherStream struct {
	env   Env
	ante  int
	index rng.ResampleStream
}

// NewVoucherStream creates the voucher producer for one ante.
func NewVoucherStream(env Env, ante int) *VoucherStream {
	return &VoucherStream{
		env:   env,
		ante:  ante,
		index: rng.NewResampleStream(env.Cache, keyFor("Voucher", SourceShop, ante)),
	}
}

// Next draws the ante's voucher for every masked lane. eligible decides
// which vouchers may appear; a nil predicate admits only base vouchers.
func (v *VoucherStream) Next(mask rng.Mask8, eligible func(game.Item) bool) [rng.Lanes]game.Item {
	if eligible == nil {
		eligible = VoucherEligibility(v.env.Tables, nil)
	}
	n := len(v.env.Tables.Vouchers)
	return drawDeduped(&v.index, mask, n,
		func(idx int) game.Item { return game.NewItem(game.CategoryVoucher, idx) },
		func(_ int, it game.Item) bool { return !eligible(it) })
}

// VoucherEligibility builds the eligibility predicate from a set of
// assumed-purchased vouchers. Assumed vouchers are active (so they cannot
// be offered again) and their successors become eligible.
func VoucherEligibility(t *game.Tables, assumed []game.Item) func(game.Item) bool {
	upgrade := make(map[game.Item]bool, len(t.Vouchers))
	for i := range t.Vouchers {
		base := game.NewItem(game.CategoryVoucher, i)
		if succ := t.VoucherSuccessor(base); succ != game.ItemNone {
			upgrade[succ.Identity()] = true
		}
	}

	active := make(map[game.Item]bool, len(assumed))
	unlocked := make(map[game.Item]bool, len(assumed))
	for _, a := range assumed {
		active[a.Identity()] = true
		if succ := t.VoucherSuccessor(a); succ != game.ItemNone {
			unlocked[succ.Identity()] = true
		}
	}

	return func(it game.Item) bool {
		id := it.Identity()
		if active[id] {
			return false
		}
		if upgrade[id] {
			return unlocked[id]
		}
		return true
	}
}
