package controller

import (
	"go.uber.org/zap"

	"github.com/avremote/avremote/internal/browse"
	"github.com/avremote/avremote/internal/events"
	"github.com/avremote/avremote/internal/types"
)

// session is the live per-peer state bundle: connection state, browse cache
// and pending-fetch bookkeeping. All fields are owned by the service loop;
// the service read-lock covers snapshot accessors.
type session struct {
	peer     types.Peer
	state    types.ConnectionState
	playback types.PlaybackStatus
	tree     *browse.Tree

	// fetching maps a listing scope to the node whose window is in flight.
	fetching map[types.Scope]browse.NodeID
	// switching is the node awaiting browsed-scope confirmation.
	switching browse.NodeID
	// browsedPlayer is the player the stack currently browses, 0 for none;
	// browsedNode is that player's tree node.
	browsedPlayer int
	browsedNode   browse.NodeID

	svc *Service
}

func newSession(svc *Service, peer types.Peer) *session {
	return &session{
		peer:     peer,
		state:    types.StateDisconnected,
		fetching: make(map[types.Scope]browse.NodeID),
		svc:      svc,
	}
}

// transition advances the connection state, emitting exactly one host
// notification per change. Same-state transitions are no-ops.
func (s *session) transition(to types.ConnectionState) {
	prev := s.state
	if prev == to {
		return
	}
	s.state = to
	s.svc.log.Info("session state changed",
		zap.String("peer", s.peer.String()),
		zap.String("from", prev.String()),
		zap.String("to", to.String()),
	)
	if s.svc.metrics != nil {
		s.svc.metrics.RecordTransition(prev.String(), to.String())
	}
	s.svc.sink.ConnectionStateChanged(s.peer, prev, to)
}

// enterConnected completes the connect handshake and synthesizes the
// browse root when the peer exposes navigable content.
func (s *session) enterConnected(browsable bool) {
	s.transition(types.StateConnected)
	if browsable && s.tree == nil {
		s.tree = browse.New(s.peer)
	}
}

// teardown runs the Disconnecting -> Disconnected tail of the lifecycle and
// discards the browse cache and all pending requests. Events still in the
// queue that reference this session resolve as stale afterwards.
func (s *session) teardown() {
	s.transition(types.StateDisconnecting)
	s.transition(types.StateDisconnected)
	s.tree = nil
	s.fetching = make(map[types.Scope]browse.NodeID)
	s.switching = ""
	s.browsedPlayer = 0
	s.browsedNode = ""
}

// requestContents issues a paginated fetch for the node unless its contents
// are already cached or a request is outstanding. Returns false only when
// the node cannot be fetched at all (unknown node, not connected).
func (s *session) requestContents(id browse.NodeID) bool {
	if s.state != types.StateConnected || s.tree == nil {
		return false
	}
	n, ok := s.tree.Find(id)
	if !ok {
		return false
	}
	if n.Cached {
		s.svc.sink.ContentAvailable(s.peer, id)
		return true
	}
	if _, pending := s.tree.Pending(id); pending {
		// At most one outstanding request per node.
		return true
	}

	if n.Item != nil && n.Item.Kind == types.ItemPlayer && s.browsedPlayer != n.PlayerID {
		// Folder listings are only valid for the browsed player; switch
		// scope first and fetch once the stack confirms.
		if !s.tree.MarkScopeSwitch(id) {
			return false
		}
		s.switching = id
		s.svc.hal.SetBrowsedScope(s.peer, n.PlayerID)
		return true
	}

	w, ok := s.tree.OpenWindow(id, s.svc.pageSize)
	if !ok {
		return false
	}
	s.fetching[n.Scope] = id
	s.svc.hal.FetchContents(s.peer, n.Scope, w.Start, w.End)
	if s.svc.metrics != nil {
		s.svc.metrics.RecordFetch(n.Scope.String())
	}
	return true
}

func (s *session) handleContentList(ev events.ContentList) {
	if s.tree == nil {
		s.dropStale("content list without browse tree", ev.Scope)
		return
	}
	id, ok := s.fetching[ev.Scope]
	if !ok {
		s.dropStale("content list without pending request", ev.Scope)
		return
	}
	delete(s.fetching, ev.Scope)

	res := s.tree.ApplyList(id, ev.Start, ev.Total, ev.Items)
	switch res {
	case browse.ResultCompleted:
		if s.svc.metrics != nil {
			s.svc.metrics.RecordNodeCached()
		}
		s.svc.sink.ContentAvailable(s.peer, id)
	case browse.ResultAppended:
		s.svc.log.Debug("content window applied",
			zap.String("peer", s.peer.String()),
			zap.String("node", string(id)),
			zap.Int("items", len(ev.Items)),
		)
	case browse.ResultMismatch:
		s.svc.log.Warn("content list window mismatch, clearing request",
			zap.String("peer", s.peer.String()),
			zap.String("node", string(id)),
			zap.Int("start", ev.Start),
		)
		if s.svc.metrics != nil {
			s.svc.metrics.RecordViolation()
		}
	case browse.ResultStale:
		s.dropStale("content list for settled node", ev.Scope)
	}
}

func (s *session) handleBrowsedScopeChanged(ev events.BrowsedScopeChanged) {
	if s.tree == nil || s.switching == "" {
		s.dropStale("scope change without pending switch", types.ScopeFolder)
		return
	}
	id := s.switching
	s.switching = ""
	s.tree.ClearPending(id)

	n, ok := s.tree.Find(id)
	if !ok {
		return
	}
	s.browsedPlayer = n.PlayerID
	s.browsedNode = id
	s.tree.SetExpectedTotal(id, ev.ItemCount)

	w, ok := s.tree.OpenWindow(id, s.svc.pageSize)
	if !ok {
		return
	}
	s.fetching[types.ScopeFolder] = id
	s.svc.hal.FetchContents(s.peer, types.ScopeFolder, w.Start, w.End)
	if s.svc.metrics != nil {
		s.svc.metrics.RecordFetch(types.ScopeFolder.String())
	}
}

// handleContentChanged invalidates the affected node and immediately
// re-fetches it so the mirror converges without host intervention. Node
// identities survive the invalidation.
func (s *session) handleContentChanged(ev events.ContentChanged) {
	if s.tree == nil {
		return
	}
	id, ok := s.nodeForScope(ev.Scope)
	if !ok {
		s.dropStale("content change for unknown scope", ev.Scope)
		return
	}
	delete(s.fetching, ev.Scope)
	s.tree.Invalidate(id)
	s.requestContents(id)
}

func (s *session) handlePlaybackChanged(ev events.PlaybackChanged) {
	s.playback = ev.Status
	s.svc.sink.PlaybackChanged(s.peer, ev.Status)
}

// sendKey issues a pass-through key command while connected.
func (s *session) sendKey(key types.KeyCode, state types.KeyState) bool {
	if s.state != types.StateConnected {
		return false
	}
	return s.svc.hal.SendPassThrough(s.peer, key, state)
}

func (s *session) nodeForScope(scope types.Scope) (browse.NodeID, bool) {
	switch scope {
	case types.ScopePlayers:
		return s.tree.RootID(), true
	case types.ScopeNowPlaying:
		return s.tree.NowPlayingID(), true
	case types.ScopeFolder:
		if s.browsedNode == "" {
			return "", false
		}
		return s.browsedNode, true
	default:
		return "", false
	}
}

func (s *session) dropStale(reason string, scope types.Scope) {
	s.svc.log.Debug("dropping stale event",
		zap.String("peer", s.peer.String()),
		zap.String("reason", reason),
		zap.String("scope", scope.String()),
	)
	if s.svc.metrics != nil {
		s.svc.metrics.RecordStale()
	}
}
