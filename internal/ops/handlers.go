package ops

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avremote/avremote/internal/browse"
	"github.com/avremote/avremote/internal/types"
)

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"controller": gin.H{
			"peers": len(s.controller.ConnectedPeers()),
		},
		"device": gin.H{
			"registered": s.device.Registered(),
		},
	})
}

func (s *Server) listPeers(c *gin.Context) {
	peers := s.controller.ConnectedPeers()
	out := make([]gin.H, 0, len(peers))
	for _, p := range peers {
		out = append(out, gin.H{
			"peer":  p.String(),
			"state": s.controller.ConnectionState(p).String(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"peers": out, "count": len(out)})
}

func (s *Server) peerState(c *gin.Context) {
	peer := types.Peer(c.Param("peer"))
	c.JSON(http.StatusOK, gin.H{
		"peer":  peer.String(),
		"state": s.controller.ConnectionState(peer).String(),
	})
}

func (s *Server) connectPeer(c *gin.Context) {
	peer := types.Peer(c.Param("peer"))
	if !s.controller.Connect(peer) {
		c.JSON(http.StatusConflict, gin.H{"error": "session already exists"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"peer": peer.String()})
}

func (s *Server) disconnectPeer(c *gin.Context) {
	peer := types.Peer(c.Param("peer"))
	if !s.controller.Disconnect(peer) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown peer"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"peer": peer.String()})
}

type keyRequest struct {
	Key   uint8  `json:"key" binding:"required"`
	State string `json:"state" binding:"required,oneof=down up"`
}

func (s *Server) sendKey(c *gin.Context) {
	peer := types.Peer(c.Param("peer"))
	var req keyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	state := types.KeyPressed
	if req.State == "up" {
		state = types.KeyReleased
	}
	if !s.controller.SendKey(peer, types.KeyCode(req.Key), state) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown peer"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"peer": peer.String(), "key": req.Key})
}

func (s *Server) getNode(c *gin.Context) {
	peer := types.Peer(c.Param("peer"))
	id := browse.NodeID(c.Param("node"))
	if c.Param("node") == "root" {
		id = browse.RootID(peer)
	}
	n, ok := s.controller.FindNode(peer, id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown node"})
		return
	}
	children := make([]string, len(n.Children))
	for i, ch := range n.Children {
		children[i] = string(ch)
	}
	resp := gin.H{
		"id":       string(n.ID),
		"cached":   n.Cached,
		"scope":    n.Scope.String(),
		"children": children,
	}
	if n.Item != nil {
		resp["name"] = n.Item.Name
		resp["kind"] = int(n.Item.Kind)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) fetchNode(c *gin.Context) {
	peer := types.Peer(c.Param("peer"))
	id := browse.NodeID(c.Param("node"))
	if c.Param("node") == "root" {
		id = browse.RootID(peer)
	}
	if !s.controller.RequestContents(peer, id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown peer"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"node": string(id)})
}

func (s *Server) deviceState(c *gin.Context) {
	peers := s.device.PeersInStates(
		types.StateConnecting,
		types.StateConnected,
		types.StateDisconnecting,
	)
	out := make([]string, len(peers))
	for i, p := range peers {
		out[i] = p.String()
	}
	c.JSON(http.StatusOK, gin.H{
		"registered": s.device.Registered(),
		"peers":      out,
	})
}
