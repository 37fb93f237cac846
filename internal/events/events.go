package events

import "github.com/avremote/avremote/internal/types"

// Kind tags every queue item so handlers can dispatch exhaustively and
// metrics can label by event type.
type Kind int

const (
	KindConnectionChanged Kind = iota
	KindContentList
	KindContentChanged
	KindPlaybackChanged
	KindBrowsedScopeChanged
	KindGetReport
	KindSetReport
	KindSetProtocol
	KindInterruptData
	KindVirtualUnplug
	KindAppStateChanged
	KindCommand
)

func (k Kind) String() string {
	switch k {
	case KindConnectionChanged:
		return "connection_changed"
	case KindContentList:
		return "content_list"
	case KindContentChanged:
		return "content_changed"
	case KindPlaybackChanged:
		return "playback_changed"
	case KindBrowsedScopeChanged:
		return "browsed_scope_changed"
	case KindGetReport:
		return "get_report"
	case KindSetReport:
		return "set_report"
	case KindSetProtocol:
		return "set_protocol"
	case KindInterruptData:
		return "interrupt_data"
	case KindVirtualUnplug:
		return "virtual_unplug"
	case KindAppStateChanged:
		return "app_state_changed"
	case KindCommand:
		return "command"
	default:
		return "unknown"
	}
}

// Event is one item on a profile's serialized queue: either a typed stack
// notification or an internal command wrapped by the dispatch façade.
// Variants are immutable values; byte payloads are copied at construction.
type Event interface {
	Kind() Kind
}

// ConnectionChanged reports a peer connection state transition from the
// stack. Browsable is set when the peer also exposes navigable content.
type ConnectionChanged struct {
	Peer      types.Peer
	State     types.ConnectionState
	Browsable bool
}

func (ConnectionChanged) Kind() Kind { return KindConnectionChanged }

// ContentList carries one window of a paginated content listing.
// Start is the index of the first returned item; Total is the advertised
// item count for the listing, zero when the stack did not report one.
type ContentList struct {
	Peer  types.Peer
	Scope types.Scope
	Start int
	Total int
	Items []types.ContentItem
}

func (ContentList) Kind() Kind { return KindContentList }

// ContentChanged signals that a peer-side listing was modified and any
// cached mirror of it is out of date.
type ContentChanged struct {
	Peer  types.Peer
	Scope types.Scope
}

func (ContentChanged) Kind() Kind { return KindContentChanged }

// PlaybackChanged reports the peer's playback status.
type PlaybackChanged struct {
	Peer   types.Peer
	Status types.PlaybackStatus
}

func (PlaybackChanged) Kind() Kind { return KindPlaybackChanged }

// BrowsedScopeChanged confirms a browsed-scope switch and reports the item
// count of the newly browsed folder.
type BrowsedScopeChanged struct {
	Peer      types.Peer
	ItemCount int
	Depth     int
}

func (BrowsedScopeChanged) Kind() Kind { return KindBrowsedScopeChanged }

// GetReport asks the registered application for a report.
type GetReport struct {
	Type       types.ReportType
	ID         byte
	BufferSize int
}

func (GetReport) Kind() Kind { return KindGetReport }

// SetReport delivers a report written by the connected peer.
type SetReport struct {
	Type types.ReportType
	ID   byte
	Data []byte
}

func (SetReport) Kind() Kind { return KindSetReport }

// SetProtocol switches the report protocol mode.
type SetProtocol struct {
	Protocol types.Protocol
}

func (SetProtocol) Kind() Kind { return KindSetProtocol }

// InterruptData delivers data received on the interrupt channel.
type InterruptData struct {
	ID   byte
	Data []byte
}

func (InterruptData) Kind() Kind { return KindInterruptData }

// VirtualUnplug reports a virtual cable unplug from the peer.
type VirtualUnplug struct{}

func (VirtualUnplug) Kind() Kind { return KindVirtualUnplug }

// AppStateChanged reports the asynchronous outcome of an application
// registration or unregistration.
type AppStateChanged struct {
	Peer       types.Peer
	Registered bool
}

func (AppStateChanged) Kind() Kind { return KindAppStateChanged }
