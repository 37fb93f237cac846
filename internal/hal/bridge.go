package hal

import (
	"github.com/avremote/avremote/internal/events"
	"github.com/avremote/avremote/internal/types"
)

// ControllerBridge converts raw remote-control stack callbacks into typed
// events and posts them to the profile's serialized queue. It is safe to
// call from any goroutine and never blocks the caller; it mutates no
// session or tree state itself.
type ControllerBridge struct {
	queue *events.Queue
}

// NewControllerBridge creates a bridge posting to the given queue.
func NewControllerBridge(queue *events.Queue) *ControllerBridge {
	return &ControllerBridge{queue: queue}
}

// OnConnectionStateChanged reports a peer connection transition.
func (b *ControllerBridge) OnConnectionStateChanged(peer types.Peer, state RawState, browsable bool) {
	b.queue.Post(events.ConnectionChanged{
		Peer:      peer,
		State:     state.ConnectionState(),
		Browsable: browsable,
	})
}

// OnContentListReceived reports one window of a content listing. The item
// slice is copied so later reuse by the caller cannot mutate the event.
func (b *ControllerBridge) OnContentListReceived(peer types.Peer, scope types.Scope, start, total int, items []types.ContentItem) {
	copied := make([]types.ContentItem, len(items))
	copy(copied, items)
	b.queue.Post(events.ContentList{
		Peer:  peer,
		Scope: scope,
		Start: start,
		Total: total,
		Items: copied,
	})
}

// OnContentChanged reports that a peer-side listing was modified.
func (b *ControllerBridge) OnContentChanged(peer types.Peer, scope types.Scope) {
	b.queue.Post(events.ContentChanged{Peer: peer, Scope: scope})
}

// OnPlaybackStatusChanged reports the peer's playback status.
func (b *ControllerBridge) OnPlaybackStatusChanged(peer types.Peer, status types.PlaybackStatus) {
	b.queue.Post(events.PlaybackChanged{Peer: peer, Status: status})
}

// OnBrowsedScopeChanged confirms a browsed-scope switch.
func (b *ControllerBridge) OnBrowsedScopeChanged(peer types.Peer, depth, itemCount int) {
	b.queue.Post(events.BrowsedScopeChanged{Peer: peer, Depth: depth, ItemCount: itemCount})
}

// DeviceBridge converts raw device-role stack callbacks into typed events.
// Same contract as ControllerBridge: marshal and enqueue only.
type DeviceBridge struct {
	queue *events.Queue
}

// NewDeviceBridge creates a bridge posting to the given queue.
func NewDeviceBridge(queue *events.Queue) *DeviceBridge {
	return &DeviceBridge{queue: queue}
}

// OnApplicationStateChanged reports the outcome of a registration call.
func (b *DeviceBridge) OnApplicationStateChanged(peer types.Peer, registered bool) {
	b.queue.Post(events.AppStateChanged{Peer: peer, Registered: registered})
}

// OnConnectionStateChanged reports a peer connection transition.
func (b *DeviceBridge) OnConnectionStateChanged(peer types.Peer, state RawState) {
	b.queue.Post(events.ConnectionChanged{Peer: peer, State: state.ConnectionState()})
}

// OnGetReport asks the registered application for a report.
func (b *DeviceBridge) OnGetReport(reportType types.ReportType, id byte, bufferSize int) {
	b.queue.Post(events.GetReport{Type: reportType, ID: id, BufferSize: bufferSize})
}

// OnSetReport delivers a report written by the peer.
func (b *DeviceBridge) OnSetReport(reportType types.ReportType, id byte, data []byte) {
	b.queue.Post(events.SetReport{Type: reportType, ID: id, Data: cloneBytes(data)})
}

// OnSetProtocol switches the report protocol mode.
func (b *DeviceBridge) OnSetProtocol(protocol types.Protocol) {
	b.queue.Post(events.SetProtocol{Protocol: protocol})
}

// OnInterruptData delivers interrupt-channel data from the peer.
func (b *DeviceBridge) OnInterruptData(id byte, data []byte) {
	b.queue.Post(events.InterruptData{ID: id, Data: cloneBytes(data)})
}

// OnVirtualCableUnplug reports a virtual cable unplug.
func (b *DeviceBridge) OnVirtualCableUnplug() {
	b.queue.Post(events.VirtualUnplug{})
}

func cloneBytes(data []byte) []byte {
	if data == nil {
		return nil
	}
	copied := make([]byte, len(data))
	copy(copied, data)
	return copied
}
