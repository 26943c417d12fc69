package rng

import (
	"fmt"
	"math"
	"strings"
)

// SeedAlphabet is the 35-character seed alphabet, in enumeration order.
// The digit 0 is the only excluded ASCII alphanumeric.
const SeedAlphabet = "123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// AlphabetSize is the radix of the seed space.
const AlphabetSize = len(SeedAlphabet)

// MaxSeedLen is the maximum number of characters in a seed.
const MaxSeedLen = 8

// hashMagic is the game's pseudo-hash multiplier.
const hashMagic = 1.1239285023

// alphabetIndex maps an alphabet character to its enumeration index, or -1.
var alphabetIndex [256]int

func init() {
	for i := range alphabetIndex {
		alphabetIndex[i] = -1
	}
	for i := 0; i < AlphabetSize; i++ {
		alphabetIndex[SeedAlphabet[i]] = i
	}
}

// ValidateSeed checks that s is a legal seed: 1 to 8 characters, all drawn
// from the seed alphabet. Lowercase input is not accepted; callers
// normalize before validating.
func ValidateSeed(s string) error {
	if len(s) == 0 {
		return fmt.Errorf("seed must not be empty")
	}
	if len(s) > MaxSeedLen {
		return fmt.Errorf("seed %q exceeds %d characters", s, MaxSeedLen)
	}
	for i := 0; i < len(s); i++ {
		if alphabetIndex[s[i]] < 0 {
			return fmt.Errorf("seed %q has invalid character %q at position %d", s, s[i], i)
		}
	}
	return nil
}

// NormalizeSeed uppercases s so that user input round-trips through
// ValidateSeed.
func NormalizeSeed(s string) string { return strings.ToUpper(s) }

// SeedBatch is a frame of 8 candidate seeds sharing every character except
// the first varCount positions of the reversed representation. Characters
// are stored reversed: position 0 holds the highest-varying character.
type SeedBatch struct {
	chars    [Lanes][MaxSeedLen]byte
	length   int
	varCount int
	live     Mask8
}

// NewSeedBatch builds a batch from up to 8 seeds. All seeds must share the
// same length and agree on every reversed position at index varCount and
// beyond. Fewer than 8 seeds are padded by replicating the last one, with
// the padding lanes masked out of Live.
func NewSeedBatch(seeds []string, varCount int) (*SeedBatch, error) {
	if len(seeds) == 0 {
		return nil, fmt.Errorf("batch needs at least one seed")
	}
	if len(seeds) > Lanes {
		return nil, fmt.Errorf("batch holds at most %d seeds, got %d", Lanes, len(seeds))
	}
	length := len(seeds[0])
	if varCount < 1 || varCount > length {
		return nil, fmt.Errorf("varCount %d out of range [1, %d]", varCount, length)
	}

	b := &SeedBatch{length: length, varCount: varCount}
	for lane := 0; lane < Lanes; lane++ {
		s := seeds[len(seeds)-1]
		if lane < len(seeds) {
			s = seeds[lane]
			b.live = b.live.With(lane)
		}
		if err := ValidateSeed(s); err != nil {
			return nil, err
		}
		if len(s) != length {
			return nil, fmt.Errorf("seed %q length %d does not match batch length %d", s, len(s), length)
		}
		for pos := 0; pos < length; pos++ {
			b.chars[lane][pos] = s[length-1-pos]
		}
	}

	// The shared suffix must actually be shared; the hash cache depends on it.
	for pos := varCount; pos < length; pos++ {
		for lane := 1; lane < Lanes; lane++ {
			if b.chars[lane][pos] != b.chars[0][pos] {
				return nil, fmt.Errorf("seeds differ at reversed position %d, outside the %d varying characters", pos, varCount)
			}
		}
	}
	return b, nil
}

// Live returns the mask of lanes holding real (non-padding) seeds.
func (b *SeedBatch) Live() Mask8 { return b.live }

// Length returns the seed length shared by all lanes.
func (b *SeedBatch) Length() int { return b.length }

// VarCount returns the number of reversed positions that vary across lanes.
func (b *SeedBatch) VarCount() int { return b.varCount }

// Seed materializes lane i as a scalar seed string in natural order.
func (b *SeedBatch) Seed(lane int) string {
	buf := make([]byte, b.length)
	for pos := 0; pos < b.length; pos++ {
		buf[b.length-1-pos] = b.chars[lane][pos]
	}
	return string(buf)
}

// fract returns the fractional part of x for x >= 0.
func fract(x float64) float64 { return x - math.Floor(x) }

// hashStep folds one character at logical position pos into the hash state.
func hashStep(n float64, c byte, pos int) float64 {
	return fract((hashMagic/n)*float64(c)*math.Pi + math.Pi*float64(pos+1))
}

// seedState folds the full reversed seed of every lane, producing the hash
// state at logical position Length. Because the seed occupies positions
// 0..Length-1 regardless of the key, this state is shared by every stream
// created for the batch; it also IS pseudohash("", seed).
func (b *SeedBatch) seedState() Vec8 {
	var state Vec8
	for lane := 0; lane < Lanes; lane++ {
		state[lane] = 1
	}
	for pos := 0; pos < b.length; pos++ {
		for lane := 0; lane < Lanes; lane++ {
			state[lane] = hashStep(state[lane], b.chars[lane][pos], pos)
		}
	}
	return state
}

// extendHash folds the reversed key into state, with the key's characters
// occupying logical positions offset, offset+1, ....
func extendHash(state Vec8, key string, offset int) Vec8 {
	for j := len(key) - 1; j >= 0; j-- {
		pos := offset + (len(key) - 1 - j)
		c := key[j]
		for lane := 0; lane < Lanes; lane++ {
			state[lane] = hashStep(state[lane], c, pos)
		}
	}
	return state
}

// PseudoHash computes the game's hash of a (key, seed) pair on a single
// lane: state 1 folded over reverse(seed) then reverse(key). The vector
// path is this exact computation run on 8 lanes; tests hold them equal.
func PseudoHash(key, seed string) float64 {
	n := 1.0
	pos := 0
	for j := len(seed) - 1; j >= 0; j-- {
		n = hashStep(n, seed[j], pos)
		pos++
	}
	for j := len(key) - 1; j >= 0; j-- {
		n = hashStep(n, key[j], pos)
		pos++
	}
	return n
}
