// Package game defines the data model shared by the item streams and the
// filter layer: the packed Item value, category and modifier enums, deck
// and stake identities, and the item tables that parameterize generation.
//
// Item tables are data, not code. The embedded defaults cover the base
// game; alternate table sets (mods, future game versions) load from YAML
// without touching the engine.
package game
