// Package events defines the typed stack event variants and the serialized
// queue they are delivered on.
//
// The queue is the concurrency boundary of a profile scope: native callbacks
// arrive on arbitrary goroutines, are converted into immutable Event values
// by the hal bridges, and are consumed by exactly one service loop. All
// session, browse-tree and registration state is mutated on that loop only.
package events
