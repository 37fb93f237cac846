package hal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avremote/avremote/internal/events"
	"github.com/avremote/avremote/internal/types"
)

func TestRawStateConversion(t *testing.T) {
	tests := []struct {
		raw  RawState
		want types.ConnectionState
	}{
		{RawConnected, types.StateConnected},
		{RawConnecting, types.StateConnecting},
		{RawDisconnected, types.StateDisconnected},
		{RawDisconnecting, types.StateDisconnecting},
		{RawState(42), types.StateDisconnected},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.raw.ConnectionState())
	}
}

func TestControllerBridgePostsTypedEvents(t *testing.T) {
	q := events.NewQueue(8, nil)
	b := NewControllerBridge(q)

	b.OnConnectionStateChanged("peer", RawConnected, true)
	b.OnPlaybackStatusChanged("peer", types.PlaybackPaused)

	ev := <-q.Events()
	cc, ok := ev.(events.ConnectionChanged)
	require.True(t, ok)
	assert.Equal(t, types.Peer("peer"), cc.Peer)
	assert.Equal(t, types.StateConnected, cc.State)
	assert.True(t, cc.Browsable)

	ev = <-q.Events()
	pc, ok := ev.(events.PlaybackChanged)
	require.True(t, ok)
	assert.Equal(t, types.PlaybackPaused, pc.Status)
}

func TestControllerBridgeCopiesListings(t *testing.T) {
	q := events.NewQueue(8, nil)
	b := NewControllerBridge(q)

	items := []types.ContentItem{{Kind: types.ItemMedia, UID: "t1", Name: "Track 1"}}
	b.OnContentListReceived("peer", types.ScopeNowPlaying, 0, 1, items)

	// Mutating the caller's slice must not affect the queued event.
	items[0].Name = "mutated"

	ev := <-q.Events()
	cl, ok := ev.(events.ContentList)
	require.True(t, ok)
	require.Len(t, cl.Items, 1)
	assert.Equal(t, "Track 1", cl.Items[0].Name)
	assert.Equal(t, 1, cl.Total)
}

func TestDeviceBridgeCopiesReportData(t *testing.T) {
	q := events.NewQueue(8, nil)
	b := NewDeviceBridge(q)

	data := []byte{0x01, 0x02}
	b.OnSetReport(types.ReportOutput, 7, data)
	data[0] = 0xFF

	ev := <-q.Events()
	sr, ok := ev.(events.SetReport)
	require.True(t, ok)
	assert.Equal(t, byte(7), sr.ID)
	assert.Equal(t, []byte{0x01, 0x02}, sr.Data)
}

func TestDeviceBridgeEventKinds(t *testing.T) {
	q := events.NewQueue(8, nil)
	b := NewDeviceBridge(q)

	b.OnApplicationStateChanged("peer", true)
	b.OnGetReport(types.ReportInput, 1, 64)
	b.OnSetProtocol(types.ProtocolReport)
	b.OnInterruptData(2, []byte{0xAB})
	b.OnVirtualCableUnplug()

	wantKinds := []events.Kind{
		events.KindAppStateChanged,
		events.KindGetReport,
		events.KindSetProtocol,
		events.KindInterruptData,
		events.KindVirtualUnplug,
	}
	for _, want := range wantKinds {
		ev := <-q.Events()
		assert.Equal(t, want, ev.Kind())
	}
}
