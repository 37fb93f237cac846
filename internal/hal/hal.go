package hal

import "github.com/avremote/avremote/internal/types"

// RawState is a connection state as delivered by the native stack.
type RawState int

const (
	RawConnected RawState = iota
	RawConnecting
	RawDisconnected
	RawDisconnecting
)

// ConnectionState maps a raw stack state onto the session state enum.
// Unknown values map to Disconnected.
func (s RawState) ConnectionState() types.ConnectionState {
	switch s {
	case RawConnected:
		return types.StateConnected
	case RawConnecting:
		return types.StateConnecting
	case RawDisconnected:
		return types.StateDisconnected
	case RawDisconnecting:
		return types.StateDisconnecting
	default:
		return types.StateDisconnected
	}
}

// Controller is the outbound command surface of the remote-control profile.
// Implementations wrap the native stack bindings; every call is
// fire-and-forget from the engine's perspective and the boolean only
// reflects whether the stack accepted the command.
type Controller interface {
	Connect(peer types.Peer) bool
	Disconnect(peer types.Peer) bool
	FetchContents(peer types.Peer, scope types.Scope, start, end int) bool
	SetBrowsedScope(peer types.Peer, playerID int) bool
	SendPassThrough(peer types.Peer, key types.KeyCode, state types.KeyState) bool
}

// Device is the outbound command surface of the device-role profile.
// The stack tracks a single registered application and a single connected
// peer, so report commands carry no peer address.
type Device interface {
	Connect(peer types.Peer) bool
	Disconnect() bool
	RegisterApplication(sdp types.AppSDP, inQoS, outQoS *types.QoS) bool
	UnregisterApplication() bool
	SendReport(id byte, data []byte) bool
	ReplyReport(reportType types.ReportType, id byte, data []byte) bool
	VirtualUnplug() bool
	ReportError(code types.HandshakeError) bool
}
