// Package ops exposes the operational HTTP surface: health, Prometheus
// metrics and a small command API over the profile engines.
package ops

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/avremote/avremote/internal/config"
	"github.com/avremote/avremote/internal/controller"
	"github.com/avremote/avremote/internal/device"
	"github.com/avremote/avremote/internal/logging"
)

// Server wraps the HTTP router and the engines it fronts.
type Server struct {
	router     *gin.Engine
	controller *controller.Service
	device     *device.Service
	log        *logging.Logger
	addr       string
}

// New creates the ops server and registers its routes.
func New(cfg config.OpsConfig, ctl *controller.Service, dev *device.Service, log *logging.Logger) *Server {
	if log == nil {
		log = logging.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		router:     router,
		controller: ctl,
		device:     dev,
		log:        log,
		addr:       fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
	}

	router.GET("/health", s.health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/peers", s.listPeers)
	router.GET("/peers/:peer", s.peerState)
	router.POST("/peers/:peer/connect", s.connectPeer)
	router.POST("/peers/:peer/disconnect", s.disconnectPeer)
	router.POST("/peers/:peer/keys", s.sendKey)
	router.GET("/peers/:peer/nodes/:node", s.getNode)
	router.POST("/peers/:peer/nodes/:node/fetch", s.fetchNode)

	router.GET("/device", s.deviceState)

	return s
}

// Run serves HTTP until the listener fails.
func (s *Server) Run() error {
	s.log.Info("ops server listening", zap.String("addr", s.addr))
	return http.ListenAndServe(s.addr, s.router)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
