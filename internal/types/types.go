package types

// Peer is the opaque stable address of a remote device. It is assigned by
// the stack and never changes for the lifetime of a session.
type Peer string

func (p Peer) String() string {
	return string(p)
}

// ConnectionState tracks the lifecycle of a peer session.
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
	StateDisconnecting
)

// String returns the string representation of the state
func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnecting:
		return "disconnecting"
	default:
		return "unknown"
	}
}

// Scope identifies which peer-side listing a content operation addresses.
type Scope int

const (
	ScopePlayers Scope = iota
	ScopeFolder
	ScopeNowPlaying
)

func (s Scope) String() string {
	switch s {
	case ScopePlayers:
		return "players"
	case ScopeFolder:
		return "folder"
	case ScopeNowPlaying:
		return "now_playing"
	default:
		return "unknown"
	}
}

// ItemKind classifies a content listing entry.
type ItemKind int

const (
	ItemPlayer ItemKind = iota
	ItemFolder
	ItemMedia
)

// ContentItem is one entry of a peer content listing. UID is the
// stack-assigned identifier for folders and media; PlayerID is set for
// player entries only.
type ContentItem struct {
	Kind     ItemKind
	UID      string
	PlayerID int
	Name     string
	Playable bool
}

// PlaybackStatus mirrors the peer-reported playback state.
type PlaybackStatus int

const (
	PlaybackStopped PlaybackStatus = iota
	PlaybackPlaying
	PlaybackPaused
)

func (s PlaybackStatus) String() string {
	switch s {
	case PlaybackStopped:
		return "stopped"
	case PlaybackPlaying:
		return "playing"
	case PlaybackPaused:
		return "paused"
	default:
		return "unknown"
	}
}

// KeyCode is a pass-through remote-control key.
type KeyCode byte

const (
	KeyPlay     KeyCode = 0x44
	KeyStop     KeyCode = 0x45
	KeyPause    KeyCode = 0x46
	KeyRewind   KeyCode = 0x48
	KeyFastFwd  KeyCode = 0x49
	KeyForward  KeyCode = 0x4B
	KeyBackward KeyCode = 0x4C
)

// KeyState is the press phase of a pass-through key command.
type KeyState int

const (
	KeyPressed KeyState = iota
	KeyReleased
)

// ReportType classifies a device-role report.
type ReportType byte

const (
	ReportInput   ReportType = 1
	ReportOutput  ReportType = 2
	ReportFeature ReportType = 3
)

// Protocol selects the device-role report protocol mode.
type Protocol byte

const (
	ProtocolBoot   Protocol = 0
	ProtocolReport Protocol = 1
)

// AppSDP describes the device-role application advertised to peers.
type AppSDP struct {
	Name        string
	Description string
	Provider    string
	Subclass    byte
	Descriptors []byte
}

// QoS holds quality-of-service parameters for one direction of the
// device-role transport.
type QoS struct {
	ServiceType     int
	TokenRate       int
	TokenBucketSize int
	PeakBandwidth   int
	Latency         int
	DelayVariation  int
}

// HandshakeError is sent back to the peer when a report request cannot be
// served.
type HandshakeError byte

const (
	HandshakeErrNotReady       HandshakeError = 1
	HandshakeErrInvalidReport  HandshakeError = 2
	HandshakeErrUnsupportedReq HandshakeError = 3
	HandshakeErrInvalidParam   HandshakeError = 4
	HandshakeErrUnknown        HandshakeError = 14
)
