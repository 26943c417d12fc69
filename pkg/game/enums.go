package game

import (
	"fmt"
	"strings"
)

// Deck is a starting deck identity.
type Deck string

const (
	DeckRed       Deck = "Red"
	DeckBlue      Deck = "Blue"
	DeckYellow    Deck = "Yellow"
	DeckGreen     Deck = "Green"
	DeckBlack     Deck = "Black"
	DeckMagic     Deck = "Magic"
	DeckNebula    Deck = "Nebula"
	DeckGhost     Deck = "Ghost"
	DeckAbandoned Deck = "Abandoned"
	DeckCheckered Deck = "Checkered"
	DeckZodiac    Deck = "Zodiac"
	DeckPainted   Deck = "Painted"
	DeckAnaglyph  Deck = "Anaglyph"
	DeckPlasma    Deck = "Plasma"
	DeckErratic   Deck = "Erratic"
)

// ValidDecks lists every deck, in unlock order.
var ValidDecks = []Deck{
	DeckRed, DeckBlue, DeckYellow, DeckGreen, DeckBlack,
	DeckMagic, DeckNebula, DeckGhost, DeckAbandoned, DeckCheckered,
	DeckZodiac, DeckPainted, DeckAnaglyph, DeckPlasma, DeckErratic,
}

// ParseDeck resolves a deck name case-insensitively. The "Deck" suffix is
// optional so that "ghost" and "Ghost Deck" both resolve.
func ParseDeck(name string) (Deck, error) {
	trimmed := strings.TrimSpace(name)
	trimmed = strings.TrimSuffix(strings.ToLower(trimmed), " deck")
	for _, d := range ValidDecks {
		if strings.ToLower(string(d)) == trimmed {
			return d, nil
		}
	}
	return "", fmt.Errorf("unrecognised deck %q", name)
}

// Stake is a difficulty stake identity, ordered by severity.
type Stake uint8

const (
	StakeWhite Stake = iota
	StakeRed
	StakeGreen
	StakeBlack
	StakeBlue
	StakePurple
	StakeOrange
	StakeGold
)

var stakeNames = [...]string{"White", "Red", "Green", "Black", "Blue", "Purple", "Orange", "Gold"}

func (s Stake) String() string {
	if int(s) < len(stakeNames) {
		return stakeNames[s]
	}
	return fmt.Sprintf("Stake(%d)", uint8(s))
}

// ParseStake resolves a stake name case-insensitively, with an optional
// "Stake" suffix.
func ParseStake(name string) (Stake, error) {
	trimmed := strings.TrimSpace(name)
	trimmed = strings.TrimSuffix(strings.ToLower(trimmed), " stake")
	for i, n := range stakeNames {
		if strings.ToLower(n) == trimmed {
			return Stake(i), nil
		}
	}
	return 0, fmt.Errorf("unrecognised stake %q", name)
}

// AtLeast reports whether s is at or above the given stake.
func (s Stake) AtLeast(min Stake) bool { return s >= min }

// Sticker availability gates. The polls themselves run whenever the stake
// admits any sticker; these gates only decide whether a successful poll
// produces the sticker.
const (
	// StickerMinStake is the lowest stake at which any sticker exists.
	StickerMinStake = StakeBlack

	stakeEternalMin    = StakeBlack
	stakePerishableMin = StakeOrange
	stakeRentalMin     = StakeGold
)

// StickerAvailable reports whether sticker st can appear at stake s.
func StickerAvailable(st Sticker, s Stake) bool {
	switch st {
	case StickerEternal:
		return s.AtLeast(stakeEternalMin)
	case StickerPerishable:
		return s.AtLeast(stakePerishableMin)
	case StickerRental:
		return s.AtLeast(stakeRentalMin)
	}
	return false
}
