package hal

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/avremote/avremote/internal/logging"
	"github.com/avremote/avremote/internal/types"
)

// Loopback is an in-process stack simulator implementing both outbound
// surfaces. It answers every command with the matching asynchronous event,
// serving content from a small canned catalog. It exists for the daemon's
// simulation mode and for end-to-end experiments without real hardware.
type Loopback struct {
	log *logging.Logger

	mu         sync.Mutex
	controller *ControllerBridge
	device     *DeviceBridge
	devPeer    types.Peer

	players    []types.ContentItem
	folder     []types.ContentItem
	nowPlaying []types.ContentItem
}

// NewLoopback creates a simulator with a canned content catalog.
func NewLoopback(log *logging.Logger) *Loopback {
	if log == nil {
		log = logging.NewNop()
	}
	l := &Loopback{
		log: log,
		players: []types.ContentItem{
			{Kind: types.ItemPlayer, PlayerID: 1, Name: "Loopback Player"},
		},
	}
	for i := 1; i <= 5; i++ {
		l.folder = append(l.folder, types.ContentItem{
			Kind:     types.ItemMedia,
			UID:      fmt.Sprintf("track-%d", i),
			Name:     fmt.Sprintf("Track %d", i),
			Playable: true,
		})
	}
	l.nowPlaying = append([]types.ContentItem{}, l.folder[:2]...)
	return l
}

// BindController attaches the remote-control event bridge.
func (l *Loopback) BindController(b *ControllerBridge) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.controller = b
}

// BindDevice attaches the device-role event bridge.
func (l *Loopback) BindDevice(b *DeviceBridge) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.device = b
}

// Connect implements Controller.
func (l *Loopback) Connect(peer types.Peer) bool {
	l.log.Debug("loopback connect", zap.String("peer", peer.String()))
	go l.controller.OnConnectionStateChanged(peer, RawConnected, true)
	return true
}

// Disconnect implements Controller.
func (l *Loopback) Disconnect(peer types.Peer) bool {
	go l.controller.OnConnectionStateChanged(peer, RawDisconnected, false)
	return true
}

// FetchContents implements Controller, serving a window of the catalog.
func (l *Loopback) FetchContents(peer types.Peer, scope types.Scope, start, end int) bool {
	listing := l.listing(scope)
	window := []types.ContentItem{}
	if start < len(listing) {
		last := end + 1
		if last > len(listing) {
			last = len(listing)
		}
		window = listing[start:last]
	}
	go l.controller.OnContentListReceived(peer, scope, start, len(listing), window)
	return true
}

// SetBrowsedScope implements Controller.
func (l *Loopback) SetBrowsedScope(peer types.Peer, playerID int) bool {
	go l.controller.OnBrowsedScopeChanged(peer, 0, len(l.folder))
	return true
}

// SendPassThrough implements Controller, reflecting key commands as
// playback status changes on key release.
func (l *Loopback) SendPassThrough(peer types.Peer, key types.KeyCode, state types.KeyState) bool {
	if state != types.KeyReleased {
		return true
	}
	switch key {
	case types.KeyPlay:
		go l.controller.OnPlaybackStatusChanged(peer, types.PlaybackPlaying)
	case types.KeyPause:
		go l.controller.OnPlaybackStatusChanged(peer, types.PlaybackPaused)
	case types.KeyStop:
		go l.controller.OnPlaybackStatusChanged(peer, types.PlaybackStopped)
	}
	return true
}

// LoopbackDevice is the device-role face of the simulator.
type LoopbackDevice struct {
	l *Loopback
}

// DeviceSide returns the simulator's Device implementation.
func (l *Loopback) DeviceSide() *LoopbackDevice {
	return &LoopbackDevice{l: l}
}

// Connect implements Device.
func (d *LoopbackDevice) Connect(peer types.Peer) bool {
	d.l.mu.Lock()
	d.l.devPeer = peer
	d.l.mu.Unlock()
	go d.l.device.OnConnectionStateChanged(peer, RawConnected)
	return true
}

// Disconnect implements Device.
func (d *LoopbackDevice) Disconnect() bool {
	go d.l.device.OnConnectionStateChanged(d.l.peer(), RawDisconnected)
	return true
}

// RegisterApplication implements Device.
func (d *LoopbackDevice) RegisterApplication(sdp types.AppSDP, inQoS, outQoS *types.QoS) bool {
	d.l.log.Debug("loopback register application", zap.String("name", sdp.Name))
	go d.l.device.OnApplicationStateChanged(d.l.peer(), true)
	return true
}

// UnregisterApplication implements Device.
func (d *LoopbackDevice) UnregisterApplication() bool {
	go d.l.device.OnApplicationStateChanged(d.l.peer(), false)
	return true
}

// SendReport implements Device.
func (d *LoopbackDevice) SendReport(id byte, data []byte) bool {
	return true
}

// ReplyReport implements Device.
func (d *LoopbackDevice) ReplyReport(reportType types.ReportType, id byte, data []byte) bool {
	return true
}

// VirtualUnplug implements Device.
func (d *LoopbackDevice) VirtualUnplug() bool {
	go d.l.device.OnVirtualCableUnplug()
	return true
}

// ReportError implements Device.
func (d *LoopbackDevice) ReportError(code types.HandshakeError) bool {
	return true
}

func (l *Loopback) listing(scope types.Scope) []types.ContentItem {
	switch scope {
	case types.ScopePlayers:
		return l.players
	case types.ScopeNowPlaying:
		return l.nowPlaying
	default:
		return l.folder
	}
}

func (l *Loopback) peer() types.Peer {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.devPeer
}
