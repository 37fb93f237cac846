package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/avremote/avremote/internal/browse"
	"github.com/avremote/avremote/internal/config"
	"github.com/avremote/avremote/internal/controller"
	"github.com/avremote/avremote/internal/device"
	"github.com/avremote/avremote/internal/events"
	"github.com/avremote/avremote/internal/hal"
	"github.com/avremote/avremote/internal/logging"
	"github.com/avremote/avremote/internal/monitoring"
	"github.com/avremote/avremote/internal/ops"
	"github.com/avremote/avremote/internal/types"
)

func main() {
	cfg := config.LoadOrDefault()

	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		OutputPaths: []string{"stdout"},
	})
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	metrics := monitoring.NewMetrics()

	// One serialized queue per profile role.
	ctlQueue := events.NewQueue(cfg.Engine.QueueCapacity, logger.Named("controller.queue")).WithMetrics(metrics)
	devQueue := events.NewQueue(cfg.Engine.QueueCapacity, logger.Named("device.queue")).WithMetrics(metrics)

	// Loopback stack: a simulated peer for running without real hardware.
	stack := hal.NewLoopback(logger.Named("loopback"))
	stack.BindController(hal.NewControllerBridge(ctlQueue))
	stack.BindDevice(hal.NewDeviceBridge(devQueue))

	ctl := controller.New(stack, &loggingSink{log: logger.Named("controller.sink")}, ctlQueue, logger.Named("controller")).
		WithMetrics(metrics).
		WithPageSize(cfg.Engine.BrowsePageSize)
	dev := device.New(stack.DeviceSide(), &deviceSink{log: logger.Named("device.sink")}, devQueue, logger.Named("device")).
		WithMetrics(metrics)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ctl.Run(ctx)
	go dev.Run(ctx)

	errChan := make(chan error, 1)
	if cfg.Ops.Enabled {
		srv := ops.New(cfg.Ops, ctl, dev, logger.Named("ops"))
		go func() {
			if err := srv.Run(); err != nil {
				errChan <- err
			}
		}()
	}

	logger.Info("engine started",
		zap.String("ops_port", cfg.Ops.Port),
		zap.Int("queue_capacity", cfg.Engine.QueueCapacity),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Info("shutting down")
	case err := <-errChan:
		logger.Error("ops server failed", zap.Error(err))
	}
}

// loggingSink reports controller notifications to the log. A real host
// would fan these out to its UI layer.
type loggingSink struct {
	log *logging.Logger
}

func (s *loggingSink) ConnectionStateChanged(peer types.Peer, prev, next types.ConnectionState) {
	s.log.Info("connection state changed",
		zap.String("peer", peer.String()),
		zap.String("from", prev.String()),
		zap.String("to", next.String()),
	)
}

func (s *loggingSink) ContentAvailable(peer types.Peer, node browse.NodeID) {
	s.log.Info("content available",
		zap.String("peer", peer.String()),
		zap.String("node", string(node)),
	)
}

func (s *loggingSink) PlaybackChanged(peer types.Peer, status types.PlaybackStatus) {
	s.log.Info("playback changed",
		zap.String("peer", peer.String()),
		zap.Int("status", int(status)),
	)
}

type deviceSink struct {
	log *logging.Logger
}

func (s *deviceSink) ConnectionStateChanged(peer types.Peer, prev, next types.ConnectionState) {
	s.log.Info("device connection state changed",
		zap.String("peer", peer.String()),
		zap.String("from", prev.String()),
		zap.String("to", next.String()),
	)
}
