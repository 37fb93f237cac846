// Package controller implements the remote-control profile engine: one
// state machine per remote peer, the active-session registry and the
// command façade.
//
// A session's connection state only ever advances
// Disconnected -> Connecting -> Connected -> Disconnecting -> Disconnected,
// with the transient states never observable across queue items: commands
// and stack events apply atomically on the single Run loop. Events that
// match no transition are logged and dropped, which makes duplicate and
// late stack notifications harmless.
package controller
