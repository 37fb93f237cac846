// Package browse holds the lazily-populated content mirror of one peer:
// a tree of players, folders and media items addressed by stable node IDs.
//
// The tree is an arena keyed by NodeID; parent and child links are IDs,
// not pointers. Invalidation clears cached listings but never recycles an
// ID, so references held by the host stay valid across re-fetches.
package browse
