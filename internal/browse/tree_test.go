package browse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avremote/avremote/internal/types"
)

func TestNewTreeSynthesizesRoots(t *testing.T) {
	tr := New("AA:BB")

	assert.Equal(t, RootID("AA:BB"), tr.RootID())
	assert.Equal(t, 2, tr.Len())

	root, ok := tr.Find(tr.RootID())
	require.True(t, ok)
	assert.Equal(t, types.ScopePlayers, root.Scope)
	assert.False(t, root.Cached)

	np, ok := tr.Find(tr.NowPlayingID())
	require.True(t, ok)
	assert.Equal(t, types.ScopeNowPlaying, np.Scope)
	assert.Equal(t, tr.RootID(), np.Parent)
}

func TestRootIDDeterministic(t *testing.T) {
	assert.Equal(t, RootID("X"), RootID("X"))
	assert.NotEqual(t, RootID("X"), RootID("Y"))
	assert.NotEqual(t, RootID("X"), NowPlayingID("X"))
}

func TestOpenWindowInitial(t *testing.T) {
	tr := New("AA")

	w, ok := tr.OpenWindow(tr.RootID(), 20)
	require.True(t, ok)
	assert.Equal(t, Window{Start: 0, End: 19}, w)

	// One outstanding request per node.
	_, ok = tr.OpenWindow(tr.RootID(), 20)
	assert.False(t, ok)
}

func TestOpenWindowUnknownNode(t *testing.T) {
	tr := New("AA")
	_, ok := tr.OpenWindow("nope", 20)
	assert.False(t, ok)
}

// A short first window implies a listing smaller than the page; the next
// window shrinks to the apparent remainder and an empty response confirms
// completion.
func TestShortListingWithoutAdvertisedTotal(t *testing.T) {
	tr := New("AA")
	root := tr.RootID()

	w, ok := tr.OpenWindow(root, 20)
	require.True(t, ok)
	require.Equal(t, Window{Start: 0, End: 19}, w)

	res := tr.ApplyList(root, 0, 0, []types.ContentItem{
		{Kind: types.ItemPlayer, PlayerID: 1, Name: "Player One"},
	})
	assert.Equal(t, ResultAppended, res)
	assert.False(t, tr.Cached(root))

	w, ok = tr.OpenWindow(root, 20)
	require.True(t, ok)
	assert.Equal(t, Window{Start: 1, End: 0}, w)

	res = tr.ApplyList(root, 1, 0, nil)
	assert.Equal(t, ResultCompleted, res)
	assert.True(t, tr.Cached(root))

	node, ok := tr.Find(root)
	require.True(t, ok)
	require.Len(t, node.Children, 1)

	child, ok := tr.Find(node.Children[0])
	require.True(t, ok)
	assert.Equal(t, 1, child.PlayerID)
	assert.Equal(t, types.ScopeFolder, child.Scope)
}

func TestAdvertisedTotalCompletesEagerly(t *testing.T) {
	tr := New("AA")
	np := tr.NowPlayingID()

	_, ok := tr.OpenWindow(np, 20)
	require.True(t, ok)

	items := []types.ContentItem{
		{Kind: types.ItemMedia, UID: "t1", Name: "Track 1"},
		{Kind: types.ItemMedia, UID: "t2", Name: "Track 2"},
	}
	res := tr.ApplyList(np, 0, 2, items)
	assert.Equal(t, ResultCompleted, res)
	assert.True(t, tr.Cached(np))

	node, _ := tr.Find(np)
	assert.Len(t, node.Children, 2)

	// Media entries are leaves.
	leaf, ok := tr.Find(node.Children[0])
	require.True(t, ok)
	assert.True(t, leaf.Cached)
	assert.Equal(t, "Track 1", leaf.Item.Name)
}

func TestAdvertisedTotalSpansWindows(t *testing.T) {
	tr := New("AA")
	np := tr.NowPlayingID()

	w, ok := tr.OpenWindow(np, 2)
	require.True(t, ok)
	require.Equal(t, Window{Start: 0, End: 1}, w)

	res := tr.ApplyList(np, 0, 3, []types.ContentItem{
		{Kind: types.ItemMedia, UID: "t1"},
		{Kind: types.ItemMedia, UID: "t2"},
	})
	assert.Equal(t, ResultAppended, res)

	w, ok = tr.OpenWindow(np, 2)
	require.True(t, ok)
	assert.Equal(t, Window{Start: 2, End: 2}, w)

	res = tr.ApplyList(np, 2, 3, []types.ContentItem{
		{Kind: types.ItemMedia, UID: "t3"},
	})
	assert.Equal(t, ResultCompleted, res)
	assert.True(t, tr.Cached(np))
}

func TestApplyListStartMismatch(t *testing.T) {
	tr := New("AA")
	root := tr.RootID()

	_, ok := tr.OpenWindow(root, 20)
	require.True(t, ok)

	res := tr.ApplyList(root, 5, 0, []types.ContentItem{
		{Kind: types.ItemPlayer, PlayerID: 9},
	})
	assert.Equal(t, ResultMismatch, res)
	assert.False(t, tr.Cached(root))

	node, _ := tr.Find(root)
	assert.Empty(t, node.Children)

	// The request slot is released; a retry can open a fresh window.
	w, ok := tr.OpenWindow(root, 20)
	require.True(t, ok)
	assert.Equal(t, Window{Start: 0, End: 19}, w)
}

func TestApplyListWithoutPendingIsStale(t *testing.T) {
	tr := New("AA")
	res := tr.ApplyList(tr.RootID(), 0, 0, nil)
	assert.Equal(t, ResultStale, res)
}

func TestScopeSwitchHoldsRequestSlot(t *testing.T) {
	tr := New("AA")
	root := tr.RootID()

	require.True(t, tr.MarkScopeSwitch(root))
	assert.False(t, tr.MarkScopeSwitch(root))
	_, ok := tr.OpenWindow(root, 20)
	assert.False(t, ok)

	// A listing arriving during the switch contradicts the marker.
	res := tr.ApplyList(root, 0, 0, []types.ContentItem{{Kind: types.ItemMedia, UID: "x"}})
	assert.Equal(t, ResultMismatch, res)

	require.True(t, tr.MarkScopeSwitch(root))
	tr.ClearPending(root)
	_, ok = tr.OpenWindow(root, 20)
	assert.True(t, ok)
}

func TestSetExpectedTotalBoundsWindow(t *testing.T) {
	tr := New("AA")
	root := tr.RootID()

	tr.SetExpectedTotal(root, 5)
	w, ok := tr.OpenWindow(root, 20)
	require.True(t, ok)
	assert.Equal(t, Window{Start: 0, End: 4}, w)
}

func TestInvalidateKeepsNodeIdentities(t *testing.T) {
	tr := New("AA")
	np := tr.NowPlayingID()

	_, ok := tr.OpenWindow(np, 20)
	require.True(t, ok)
	res := tr.ApplyList(np, 0, 1, []types.ContentItem{
		{Kind: types.ItemMedia, UID: "t1", Name: "Track 1"},
	})
	require.Equal(t, ResultCompleted, res)

	node, _ := tr.Find(np)
	require.Len(t, node.Children, 1)
	childID := node.Children[0]
	before := tr.Len()

	require.True(t, tr.Invalidate(np))
	assert.False(t, tr.Cached(np))

	node, _ = tr.Find(np)
	assert.Empty(t, node.Children)

	// The child entry survives invalidation under the same ID.
	assert.Equal(t, before, tr.Len())
	_, ok = tr.Find(childID)
	assert.True(t, ok)

	// Re-fetching relinks the same child.
	_, ok = tr.OpenWindow(np, 20)
	require.True(t, ok)
	res = tr.ApplyList(np, 0, 1, []types.ContentItem{
		{Kind: types.ItemMedia, UID: "t1", Name: "Track 1"},
	})
	require.Equal(t, ResultCompleted, res)
	node, _ = tr.Find(np)
	require.Len(t, node.Children, 1)
	assert.Equal(t, childID, node.Children[0])
}

func TestRepeatedUIDKeepsSingleChildLink(t *testing.T) {
	tr := New("AA")
	np := tr.NowPlayingID()

	w, ok := tr.OpenWindow(np, 2)
	require.True(t, ok)
	require.Equal(t, Window{Start: 0, End: 1}, w)
	res := tr.ApplyList(np, 0, 3, []types.ContentItem{
		{Kind: types.ItemMedia, UID: "t1"},
		{Kind: types.ItemMedia, UID: "t2"},
	})
	require.Equal(t, ResultAppended, res)

	// The peer repeats t1 in the next window; the link must not double.
	_, ok = tr.OpenWindow(np, 2)
	require.True(t, ok)
	res = tr.ApplyList(np, 2, 3, []types.ContentItem{
		{Kind: types.ItemMedia, UID: "t1"},
	})
	require.Equal(t, ResultCompleted, res)

	node, okFind := tr.Find(np)
	require.True(t, okFind)
	assert.Equal(t, []NodeID{"t1@AA", "t2@AA"}, node.Children)
}

func TestInvalidateUnknownNode(t *testing.T) {
	tr := New("AA")
	assert.False(t, tr.Invalidate("nope"))
}
