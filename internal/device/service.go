package device

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/avremote/avremote/internal/events"
	"github.com/avremote/avremote/internal/hal"
	"github.com/avremote/avremote/internal/liveness"
	"github.com/avremote/avremote/internal/logging"
	"github.com/avremote/avremote/internal/monitoring"
	"github.com/avremote/avremote/internal/types"
)

// AppConfig is the registration descriptor handed out to the host
// application. Registrations are matched by descriptor identity, so the
// same *AppConfig must be passed to RegisterApp and UnregisterApp.
type AppConfig struct {
	SDP types.AppSDP
}

// Callback is the remote client registered for the device role. Done
// reports the liveness of the callback endpoint: when the returned channel
// closes, the client is considered dead and the registration is torn down.
// Callbacks run on the service loop and must not call back into the
// Service; hand off to another goroutine instead.
type Callback interface {
	OnAppStateChanged(peer types.Peer, registered bool)
	OnConnectionStateChanged(peer types.Peer, state types.ConnectionState)
	OnGetReport(peer types.Peer, reportType types.ReportType, id byte, bufferSize int)
	OnSetReport(peer types.Peer, reportType types.ReportType, id byte, data []byte)
	OnSetProtocol(peer types.Peer, protocol types.Protocol)
	OnInterruptData(peer types.Peer, id byte, data []byte)
	OnVirtualCableUnplug(peer types.Peer)
	Done() <-chan struct{}
}

// Sink receives host-side connection notifications, mirroring the
// controller profile's sink. Must not call back into the Service.
type Sink interface {
	ConnectionStateChanged(peer types.Peer, prev, next types.ConnectionState)
}

// Service is the device-role profile engine. It owns the single
// registration slot, the single tracked peer and the report exchange.
// Command methods are synchronous and return false on precondition
// failures; stack events are consumed from the serialized queue by Run.
type Service struct {
	log     *logging.Logger
	hal     hal.Device
	sink    Sink
	queue   *events.Queue
	metrics *monitoring.Metrics

	mu       sync.Mutex
	app      *AppConfig
	callback Callback
	watch    *liveness.Watch
	peer     types.Peer
	state    types.ConnectionState
}

// New creates the device-role engine. The queue must be dedicated to this
// service; Run is its only consumer.
func New(h hal.Device, sink Sink, queue *events.Queue, log *logging.Logger) *Service {
	if log == nil {
		log = logging.NewNop()
	}
	return &Service{
		log:   log,
		hal:   h,
		sink:  sink,
		queue: queue,
		state: types.StateDisconnected,
	}
}

// WithMetrics attaches a metrics collector.
func (s *Service) WithMetrics(m *monitoring.Metrics) *Service {
	s.metrics = m
	return s
}

// Run consumes the serialized queue until the context is cancelled.
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

// RegisterApp claims the single registration slot. It returns false when a
// registration already exists. The outcome of the stack call arrives as an
// application-state-changed event, which attaches the liveness watch on
// success or clears the slot on failure.
func (s *Service) RegisterApp(cfg *AppConfig, inQoS, outQoS *types.QoS, cb Callback) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cfg == nil || cb == nil {
		return false
	}
	if s.app != nil {
		s.log.Warn("register failed, application already registered",
			zap.String("name", s.app.SDP.Name),
		)
		return false
	}

	s.app = cfg
	s.callback = cb
	if s.metrics != nil {
		s.metrics.SetRegistrationActive(true)
	}
	return s.hal.RegisterApplication(cfg.SDP, inQoS, outQoS)
}

// UnregisterApp releases the registration slot. The supplied descriptor
// must be the one that registered. The liveness watch is detached before
// the stack call so a racing death notification cannot tear down twice.
func (s *Service) UnregisterApp(cfg *AppConfig) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cfg == nil {
		s.log.Warn("unregister failed, nil descriptor")
		return false
	}
	if s.app == nil || s.app != cfg {
		s.log.Warn("unregister failed, descriptor does not match registration")
		return false
	}

	if s.watch != nil {
		cancelled := s.watch.Cancel()
		s.watch = nil
		if !cancelled {
			// The watch already fired: the death cleanup owns the
			// teardown and will issue the stack unregister itself.
			return true
		}
	}
	return s.hal.UnregisterApplication()
}

// SendReport sends an input report to the connected peer.
func (s *Service) SendReport(peer types.Peer, id byte, data []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.checkPeer(peer) {
		return false
	}
	if s.metrics != nil {
		s.metrics.RecordReport("out", "send")
	}
	return s.hal.SendReport(id, data)
}

// ReplyReport answers a get-report request from the connected peer.
func (s *Service) ReplyReport(peer types.Peer, reportType types.ReportType, id byte, data []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.checkPeer(peer) {
		return false
	}
	if s.metrics != nil {
		s.metrics.RecordReport("out", "reply")
	}
	return s.hal.ReplyReport(reportType, id, data)
}

// ReportError rejects a report request with a handshake error code.
func (s *Service) ReportError(peer types.Peer, code types.HandshakeError) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.checkPeer(peer) {
		return false
	}
	return s.hal.ReportError(code)
}

// Unplug issues a virtual cable unplug to the connected peer.
func (s *Service) Unplug(peer types.Peer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.checkPeer(peer) {
		return false
	}
	return s.hal.VirtualUnplug()
}

// Connect asks the stack to connect to the peer.
func (s *Service) Connect(peer types.Peer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hal.Connect(peer)
}

// Disconnect asks the stack to disconnect the connected peer.
func (s *Service) Disconnect(peer types.Peer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.checkPeer(peer) {
		return false
	}
	return s.hal.Disconnect()
}

// ConnectionState reports the peer's state; peers other than the tracked
// one are Disconnected.
func (s *Service) ConnectionState(peer types.Peer) types.ConnectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.peer != "" && s.peer == peer {
		return s.state
	}
	return types.StateDisconnected
}

// PeersInStates lists peers whose state matches any of the given states.
// The device role tracks at most one peer.
func (s *Service) PeersInStates(states ...types.ConnectionState) []types.Peer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.peer == "" {
		return nil
	}
	for _, st := range states {
		if s.state == st {
			return []types.Peer{s.peer}
		}
	}
	return nil
}

// Registered reports whether the registration slot is occupied.
func (s *Service) Registered() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.app != nil
}

// checkPeer validates that the addressed peer is the tracked one. Callers
// must hold s.mu.
func (s *Service) checkPeer(peer types.Peer) bool {
	if s.peer == "" || s.peer != peer {
		s.log.Warn("unknown peer", zap.String("peer", peer.String()))
		return false
	}
	return true
}

// dispatch applies one stack event. It runs on the loop goroutine only.
func (s *Service) dispatch(ev events.Event) {
	if s.metrics != nil {
		s.metrics.RecordEvent(ev.Kind().String())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev := ev.(type) {
	case events.AppStateChanged:
		s.handleAppStateChanged(ev)
	case events.ConnectionChanged:
		s.handleConnectionChanged(ev)
	case events.GetReport:
		if s.callback == nil {
			return
		}
		if s.metrics != nil {
			s.metrics.RecordReport("in", "get")
		}
		s.callback.OnGetReport(s.peer, ev.Type, ev.ID, ev.BufferSize)
	case events.SetReport:
		if s.callback == nil {
			return
		}
		if s.metrics != nil {
			s.metrics.RecordReport("in", "set")
		}
		s.callback.OnSetReport(s.peer, ev.Type, ev.ID, ev.Data)
	case events.SetProtocol:
		if s.callback == nil {
			return
		}
		s.callback.OnSetProtocol(s.peer, ev.Protocol)
	case events.InterruptData:
		if s.callback == nil {
			return
		}
		if s.metrics != nil {
			s.metrics.RecordReport("in", "interrupt")
		}
		s.callback.OnInterruptData(s.peer, ev.ID, ev.Data)
	case events.VirtualUnplug:
		if s.callback != nil {
			s.callback.OnVirtualCableUnplug(s.peer)
		}
		s.peer = ""
	default:
		s.log.Warn("unhandled event", zap.String("kind", ev.Kind().String()))
	}
}

func (s *Service) handleAppStateChanged(ev events.AppStateChanged) {
	if ev.Registered {
		s.peer = ev.Peer
	} else {
		s.peer = ""
	}

	if s.callback != nil {
		s.callback.OnAppStateChanged(ev.Peer, ev.Registered)
	}

	if ev.Registered {
		if s.callback != nil && s.watch == nil {
			app := s.app
			s.watch = liveness.New(s.callback.Done(), func() {
				s.onCallbackDeath(app)
			}, s.log)
			s.log.Info("liveness watch attached", zap.String("watch_id", s.watch.ID()))
		}
		return
	}

	// Registration ended (voluntary unregister completing, or the stack
	// rejecting the register call): release the slot.
	if s.watch != nil {
		s.watch.Cancel()
		s.watch = nil
	}
	s.app = nil
	s.callback = nil
	if s.metrics != nil {
		s.metrics.SetRegistrationActive(false)
	}
}

func (s *Service) handleConnectionChanged(ev events.ConnectionChanged) {
	// Only one peer is tracked at a time, but a peer in the Disconnected
	// state holds no claim on the slot: the next peer to come up takes it.
	if s.peer != "" && s.peer != ev.Peer && s.state != types.StateDisconnected {
		// Protocol-level inconsistency, not fatal.
		s.log.Warn("connection state changed for unknown peer, ignoring",
			zap.String("peer", ev.Peer.String()),
			zap.String("tracked", s.peer.String()),
		)
		return
	}
	if ev.State == types.StateDisconnected {
		s.peer = ""
	} else {
		s.peer = ev.Peer
	}

	prev := s.state
	s.state = ev.State
	if prev == ev.State {
		return
	}
	s.log.Info("device connection state changed",
		zap.String("peer", ev.Peer.String()),
		zap.String("from", prev.String()),
		zap.String("to", ev.State.String()),
	)
	if s.metrics != nil {
		s.metrics.RecordTransition(prev.String(), ev.State.String())
	}
	if s.sink != nil {
		s.sink.ConnectionStateChanged(ev.Peer, prev, ev.State)
	}
	if s.callback != nil {
		s.callback.OnConnectionStateChanged(ev.Peer, ev.State)
	}
}

// onCallbackDeath runs when the liveness watch fires: the registration is
// cleared synchronously so a new RegisterApp can succeed immediately, and
// the stack is told to unregister.
func (s *Service) onCallbackDeath(app *AppConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RecordWatchFired()
	}
	if s.app == nil || s.app != app {
		// A newer registration took the slot; nothing to clean up.
		return
	}
	s.log.Warn("registered client died, unregistering",
		zap.String("name", app.SDP.Name),
	)
	s.watch = nil
	s.app = nil
	s.callback = nil
	if s.metrics != nil {
		s.metrics.SetRegistrationActive(false)
	}
	s.hal.UnregisterApplication()
}
