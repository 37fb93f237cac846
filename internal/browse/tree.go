package browse

import (
	"fmt"

	"github.com/avremote/avremote/internal/types"
)

// NodeID addresses one entry of a browse tree. IDs embed the peer identity
// so they stay unique across trees and stable across cache invalidation.
type NodeID string

// RootID derives the synthesized root node ID for a peer. The derivation is
// deterministic so repeated lookups are idempotent.
func RootID(peer types.Peer) NodeID {
	return NodeID("root@" + peer.String())
}

// NowPlayingID derives the synthesized now-playing node ID for a peer.
func NowPlayingID(peer types.Peer) NodeID {
	return NodeID("nowplaying@" + peer.String())
}

// Window is one pagination window of an outstanding fetch, inclusive on
// both ends. A negative Start marks a browsed-scope switch in flight.
type Window struct {
	Start int
	End   int
}

// Result classifies the application of a content-list response.
type Result int

const (
	// ResultStale means no matching pending request exists; the response
	// is dropped without effect.
	ResultStale Result = iota
	// ResultMismatch means the response window contradicts the pending
	// request; the request is cleared and the node stays uncached.
	ResultMismatch
	// ResultAppended means items were applied but the listing is not yet
	// complete; a further request opens the next window.
	ResultAppended
	// ResultCompleted means the listing is fully retrieved and the node
	// is now cached.
	ResultCompleted
)

func (r Result) String() string {
	switch r {
	case ResultStale:
		return "stale"
	case ResultMismatch:
		return "mismatch"
	case ResultAppended:
		return "appended"
	case ResultCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Node is a read-only snapshot of one tree entry.
type Node struct {
	ID       NodeID
	Parent   NodeID
	Children []NodeID
	Cached   bool
	Scope    types.Scope
	PlayerID int
	Item     *types.ContentItem
}

// entry is the arena representation. Parent and children are stored as
// keys, never as pointers, so there is no ownership cycle.
type entry struct {
	id            NodeID
	parent        NodeID
	children      []NodeID
	cached        bool
	pending       *Window
	scope         types.Scope
	playerID      int
	item          *types.ContentItem
	expectedTotal int
}

// Tree is the lazily-populated content cache of one peer session. It is a
// passive structure: the owning session drives all mutation from its
// serialized loop, so the tree itself takes no locks.
type Tree struct {
	peer  types.Peer
	root  NodeID
	nodes map[NodeID]*entry
}

// New creates a tree holding the synthesized root and now-playing nodes.
// Neither is fetched from the peer; the root lists players, the now-playing
// node mirrors the active queue.
func New(peer types.Peer) *Tree {
	t := &Tree{
		peer:  peer,
		root:  RootID(peer),
		nodes: make(map[NodeID]*entry),
	}
	t.nodes[t.root] = &entry{
		id:    t.root,
		scope: types.ScopePlayers,
	}
	npID := NowPlayingID(peer)
	t.nodes[npID] = &entry{
		id:     npID,
		parent: t.root,
		scope:  types.ScopeNowPlaying,
	}
	return t
}

// Peer returns the peer this tree mirrors.
func (t *Tree) Peer() types.Peer {
	return t.peer
}

// RootID returns the synthesized root node ID.
func (t *Tree) RootID() NodeID {
	return t.root
}

// NowPlayingID returns the synthesized now-playing node ID.
func (t *Tree) NowPlayingID() NodeID {
	return NowPlayingID(t.peer)
}

// Find returns a snapshot of the node, or ok=false on a miss. No side
// effects; callers request contents to materialize missing children.
func (t *Tree) Find(id NodeID) (Node, bool) {
	e, ok := t.nodes[id]
	if !ok {
		return Node{}, false
	}
	children := make([]NodeID, len(e.children))
	copy(children, e.children)
	return Node{
		ID:       e.id,
		Parent:   e.parent,
		Children: children,
		Cached:   e.cached,
		Scope:    e.scope,
		PlayerID: e.playerID,
		Item:     e.item,
	}, true
}

// Cached reports whether the node's children list is authoritative.
func (t *Tree) Cached(id NodeID) bool {
	e, ok := t.nodes[id]
	return ok && e.cached
}

// Pending returns the node's outstanding fetch window, if any.
func (t *Tree) Pending(id NodeID) (Window, bool) {
	e, ok := t.nodes[id]
	if !ok || e.pending == nil {
		return Window{}, false
	}
	return *e.pending, true
}

// OpenWindow registers a pending fetch for the node and returns the window
// to request. It returns ok=false when the node is unknown, already cached,
// or already has a request outstanding.
func (t *Tree) OpenWindow(id NodeID, pageSize int) (Window, bool) {
	e, ok := t.nodes[id]
	if !ok || e.cached || e.pending != nil {
		return Window{}, false
	}
	start := len(e.children)
	end := start + pageSize - 1
	if e.expectedTotal > 0 && e.expectedTotal-1 < end {
		end = e.expectedTotal - 1
	}
	w := Window{Start: start, End: end}
	e.pending = &w
	return w, true
}

// MarkScopeSwitch registers a pending browsed-scope switch for the node,
// holding its request slot until the stack confirms the switch. Same
// exclusivity rules as OpenWindow.
func (t *Tree) MarkScopeSwitch(id NodeID) bool {
	e, ok := t.nodes[id]
	if !ok || e.cached || e.pending != nil {
		return false
	}
	e.pending = &Window{Start: -1, End: -1}
	return true
}

// SetExpectedTotal records the advertised item count for the node's
// listing, used to bound subsequent windows.
func (t *Tree) SetExpectedTotal(id NodeID, total int) {
	if e, ok := t.nodes[id]; ok {
		e.expectedTotal = total
	}
}

// ClearPending drops the node's outstanding request, if any.
func (t *Tree) ClearPending(id NodeID) {
	if e, ok := t.nodes[id]; ok {
		e.pending = nil
	}
}

// ApplyList applies one content-list response to the node. The caller
// routes the response here only after matching peer and scope; ApplyList
// validates the pagination window against the pending request.
func (t *Tree) ApplyList(id NodeID, start, total int, items []types.ContentItem) Result {
	e, ok := t.nodes[id]
	if !ok || e.pending == nil {
		return ResultStale
	}
	w := *e.pending
	if w.Start < 0 || start != w.Start {
		// Window contradicts the outstanding request: protocol violation,
		// retryable by the caller.
		e.pending = nil
		return ResultMismatch
	}
	e.pending = nil

	if len(items) == 0 {
		// Listing exhausted at the expected offset.
		e.cached = true
		return ResultCompleted
	}

	for i := range items {
		t.addChild(e, items[i])
	}

	next := start + len(items)
	if total > 0 {
		e.expectedTotal = total
		if next >= total {
			e.cached = true
			return ResultCompleted
		}
	} else if len(items) < w.End-w.Start+1 {
		// Short window with no advertised total: remember the apparent
		// count, confirmed by the next (empty) fetch.
		e.expectedTotal = next
	}
	return ResultAppended
}

// Invalidate clears the cached flag and children of the node while keeping
// every node entry alive, so external references by ID stay valid across
// re-fetches. The outstanding request, if any, is dropped.
func (t *Tree) Invalidate(id NodeID) bool {
	e, ok := t.nodes[id]
	if !ok {
		return false
	}
	e.cached = false
	e.children = nil
	e.pending = nil
	e.expectedTotal = 0
	return true
}

// Len reports the number of node entries in the arena.
func (t *Tree) Len() int {
	return len(t.nodes)
}

func (t *Tree) addChild(parent *entry, item types.ContentItem) {
	id := t.childID(item)
	child, exists := t.nodes[id]
	if !exists {
		child = &entry{id: id}
		t.nodes[id] = child
	}
	child.parent = parent.id
	itemCopy := item
	child.item = &itemCopy
	switch item.Kind {
	case types.ItemPlayer:
		child.scope = types.ScopeFolder
		child.playerID = item.PlayerID
	case types.ItemFolder:
		child.scope = types.ScopeFolder
	case types.ItemMedia:
		// Leaf: nothing to list beneath a media item.
		child.cached = true
	}
	// Peers may repeat a UID across pagination windows; keep one link.
	for _, existing := range parent.children {
		if existing == id {
			return
		}
	}
	parent.children = append(parent.children, id)
}

func (t *Tree) childID(item types.ContentItem) NodeID {
	if item.Kind == types.ItemPlayer {
		return NodeID(fmt.Sprintf("player:%d@%s", item.PlayerID, t.peer))
	}
	return NodeID(fmt.Sprintf("%s@%s", item.UID, t.peer))
}
