// Package stream implements the typed item producers: one stateful stream
// per game category, composing the PRNG layer with category-specific rules
// (rarity polls, editions, in-pack deduplication, special-item trials).
//
// Every stream derives its PRNG keys from the category and, where they
// apply, the source code and the ante (tag, shop-category, booster and
// sticker keys carry no source; the boss stream has one key for the whole
// run), so filters that re-create a stream from the same inputs observe
// the identical item sequence. Streams are single-use per batch:
// create, draw in order, drop.
package stream
