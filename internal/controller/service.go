package controller

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/avremote/avremote/internal/browse"
	"github.com/avremote/avremote/internal/events"
	"github.com/avremote/avremote/internal/hal"
	"github.com/avremote/avremote/internal/logging"
	"github.com/avremote/avremote/internal/monitoring"
	"github.com/avremote/avremote/internal/types"
)

// DefaultPageSize is the fallback content fetch window size.
const DefaultPageSize = 20

// Sink receives host-side notifications. Implementations must not call back
// into the Service from within a notification; hand off to another
// goroutine instead.
type Sink interface {
	ConnectionStateChanged(peer types.Peer, prev, next types.ConnectionState)
	ContentAvailable(peer types.Peer, node browse.NodeID)
	PlaybackChanged(peer types.Peer, status types.PlaybackStatus)
}

// Service is the remote-control profile engine: it owns the active-session
// registry and consumes the serialized queue of stack events and host
// commands. All session and tree mutation happens on the Run loop.
type Service struct {
	log      *logging.Logger
	hal      hal.Controller
	sink     Sink
	queue    *events.Queue
	metrics  *monitoring.Metrics
	pageSize int

	mu       sync.RWMutex
	sessions map[types.Peer]*session
}

// New creates the profile engine. The queue must be dedicated to this
// service; Run is its only consumer.
func New(h hal.Controller, sink Sink, queue *events.Queue, log *logging.Logger) *Service {
	if log == nil {
		log = logging.NewNop()
	}
	return &Service{
		log:      log,
		hal:      h,
		sink:     sink,
		queue:    queue,
		pageSize: DefaultPageSize,
		sessions: make(map[types.Peer]*session),
	}
}

// WithMetrics attaches a metrics collector.
func (s *Service) WithMetrics(m *monitoring.Metrics) *Service {
	s.metrics = m
	return s
}

// WithPageSize overrides the content fetch window size.
func (s *Service) WithPageSize(n int) *Service {
	if n > 0 {
		s.pageSize = n
	}
	return s
}

// Run consumes the serialized queue until the context is cancelled. It must
// be called exactly once, on its own goroutine.
func (s *Service) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.queue.Events():
			s.dispatch(ev)
		}
	}
}

// Connect asks the engine to establish a session with the peer. It returns
// false when a session already exists; completion is reported through the
// sink, not the return value.
func (s *Service) Connect(peer types.Peer) bool {
	s.mu.RLock()
	_, exists := s.sessions[peer]
	s.mu.RUnlock()
	if exists {
		return false
	}
	return s.queue.Post(connectCmd{peer: peer})
}

// Disconnect asks the engine to tear down the peer's session. False means
// the peer is unknown.
func (s *Service) Disconnect(peer types.Peer) bool {
	if !s.knows(peer) {
		return false
	}
	return s.queue.Post(disconnectCmd{peer: peer})
}

// RequestContents asks the engine to materialize the contents of a browse
// node. False means the peer is unknown; fetch suppression for cached or
// already-pending nodes happens on the loop.
func (s *Service) RequestContents(peer types.Peer, node browse.NodeID) bool {
	if !s.knows(peer) {
		return false
	}
	return s.queue.Post(requestContentsCmd{peer: peer, node: node})
}

// SendKey issues a pass-through key command to a connected peer.
func (s *Service) SendKey(peer types.Peer, key types.KeyCode, state types.KeyState) bool {
	if !s.knows(peer) {
		return false
	}
	return s.queue.Post(keyCmd{peer: peer, key: key, state: state})
}

// ConnectionState reports the peer's current state; unknown peers are
// Disconnected.
func (s *Service) ConnectionState(peer types.Peer) types.ConnectionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sess, ok := s.sessions[peer]; ok {
		return sess.state
	}
	return types.StateDisconnected
}

// FindNode returns the browse node for the ID if the peer's tree knows it.
// No side effects; a miss means the caller should request contents of the
// nearest known ancestor.
func (s *Service) FindNode(peer types.Peer, id browse.NodeID) (browse.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[peer]
	if !ok || sess.tree == nil {
		return browse.Node{}, false
	}
	return sess.tree.Find(id)
}

// RootNode returns the peer's synthesized browse root.
func (s *Service) RootNode(peer types.Peer) (browse.Node, bool) {
	return s.FindNode(peer, browse.RootID(peer))
}

// ConnectedPeers lists peers with a session in the given states; with no
// states it lists every active session.
func (s *Service) ConnectedPeers(states ...types.ConnectionState) []types.Peer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var peers []types.Peer
	for peer, sess := range s.sessions {
		if len(states) == 0 {
			peers = append(peers, peer)
			continue
		}
		for _, st := range states {
			if sess.state == st {
				peers = append(peers, peer)
				break
			}
		}
	}
	return peers
}

func (s *Service) knows(peer types.Peer) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[peer]
	return ok
}

// dispatch applies one queue item. It runs on the loop goroutine only.
func (s *Service) dispatch(ev events.Event) {
	if s.metrics != nil {
		s.metrics.RecordEvent(ev.Kind().String())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev := ev.(type) {
	case connectCmd:
		s.handleConnect(ev.peer)
	case disconnectCmd:
		s.handleDisconnect(ev.peer)
	case requestContentsCmd:
		if sess, ok := s.sessions[ev.peer]; ok {
			sess.requestContents(ev.node)
		}
	case keyCmd:
		if sess, ok := s.sessions[ev.peer]; ok {
			sess.sendKey(ev.key, ev.state)
		}
	case events.ConnectionChanged:
		s.handleConnectionChanged(ev)
	case events.ContentList:
		if sess, ok := s.sessions[ev.Peer]; ok {
			sess.handleContentList(ev)
		} else {
			s.dropUnknown("content list", ev.Peer)
		}
	case events.ContentChanged:
		if sess, ok := s.sessions[ev.Peer]; ok {
			sess.handleContentChanged(ev)
		} else {
			s.dropUnknown("content change", ev.Peer)
		}
	case events.BrowsedScopeChanged:
		if sess, ok := s.sessions[ev.Peer]; ok {
			sess.handleBrowsedScopeChanged(ev)
		} else {
			s.dropUnknown("scope change", ev.Peer)
		}
	case events.PlaybackChanged:
		if sess, ok := s.sessions[ev.Peer]; ok {
			sess.handlePlaybackChanged(ev)
		} else {
			s.dropUnknown("playback change", ev.Peer)
		}
	default:
		s.log.Warn("unhandled event", zap.String("kind", ev.Kind().String()))
	}
}

func (s *Service) handleConnect(peer types.Peer) {
	if _, exists := s.sessions[peer]; exists {
		// Lost the race with another connect or a peer-initiated session.
		s.log.Debug("connect ignored, session exists", zap.String("peer", peer.String()))
		return
	}
	sess := newSession(s, peer)
	s.sessions[peer] = sess
	s.updateSessionGauge()

	sess.transition(types.StateConnecting)
	if !s.hal.Connect(peer) {
		s.log.Warn("stack rejected connect", zap.String("peer", peer.String()))
		sess.transition(types.StateDisconnected)
		s.removeSession(peer)
	}
}

func (s *Service) handleDisconnect(peer types.Peer) {
	sess, ok := s.sessions[peer]
	if !ok || sess.state != types.StateConnected {
		s.dropUnknown("disconnect", peer)
		return
	}
	sess.transition(types.StateDisconnecting)
	s.hal.Disconnect(peer)
	sess.teardown()
	s.removeSession(peer)
}

func (s *Service) handleConnectionChanged(ev events.ConnectionChanged) {
	sess, exists := s.sessions[ev.Peer]

	switch ev.State {
	case types.StateConnected:
		if !exists {
			// Peer-initiated connection: no local Connecting phase.
			sess = newSession(s, ev.Peer)
			s.sessions[ev.Peer] = sess
			s.updateSessionGauge()
			sess.enterConnected(ev.Browsable)
			return
		}
		if sess.state == types.StateConnecting {
			sess.enterConnected(ev.Browsable)
			return
		}
		s.dropOutOfState(ev.Peer, sess.state, "connected")

	case types.StateDisconnected:
		if !exists {
			s.dropUnknown("disconnected event", ev.Peer)
			return
		}
		switch sess.state {
		case types.StateConnecting:
			// Connect failed.
			sess.transition(types.StateDisconnected)
			s.removeSession(ev.Peer)
		case types.StateConnected:
			// Peer-initiated disconnect.
			sess.teardown()
			s.removeSession(ev.Peer)
		default:
			s.dropOutOfState(ev.Peer, sess.state, "disconnected")
		}

	default:
		// The stack's own transient states carry no transition for us.
		s.log.Debug("ignoring transient stack state",
			zap.String("peer", ev.Peer.String()),
			zap.String("state", ev.State.String()),
		)
	}
}

func (s *Service) removeSession(peer types.Peer) {
	delete(s.sessions, peer)
	s.updateSessionGauge()
}

func (s *Service) updateSessionGauge() {
	if s.metrics != nil {
		s.metrics.SetSessionsActive(len(s.sessions))
	}
}

func (s *Service) dropUnknown(what string, peer types.Peer) {
	s.log.Debug("dropping event for unknown peer",
		zap.String("event", what),
		zap.String("peer", peer.String()),
	)
	if s.metrics != nil {
		s.metrics.RecordStale()
	}
}

func (s *Service) dropOutOfState(peer types.Peer, state types.ConnectionState, event string) {
	s.log.Debug("dropping out-of-state event",
		zap.String("peer", peer.String()),
		zap.String("state", state.String()),
		zap.String("event", event),
	)
	if s.metrics != nil {
		s.metrics.RecordStale()
	}
}

// Host commands share the serialized queue with stack events so that
// commands and notifications apply in one global order.

type connectCmd struct{ peer types.Peer }

func (connectCmd) Kind() events.Kind { return events.KindCommand }

type disconnectCmd struct{ peer types.Peer }

func (disconnectCmd) Kind() events.Kind { return events.KindCommand }

type requestContentsCmd struct {
	peer types.Peer
	node browse.NodeID
}

func (requestContentsCmd) Kind() events.Kind { return events.KindCommand }

type keyCmd struct {
	peer  types.Peer
	key   types.KeyCode
	state types.KeyState
}

func (keyCmd) Kind() events.Kind { return events.KindCommand }
