// Package filterdsl translates JSON clause documents into filter chains.
//
// A document names a deck and stake and carries three clause lists: must
// (every clause required), should (scored, never filtering) and mustNot
// (inverted). Atomic clauses target one item category; And/Or composites
// nest. The compiler groups must clauses by category, promotes the most
// selective group to the base filter, and chains the rest behind it.
package filterdsl
