package liveness

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/avremote/avremote/internal/logging"
)

// Watch observes an external liveness handle and runs a cleanup function
// exactly once when the handle reports death. A watch is revocable: after
// Cancel returns true the cleanup function will never run.
type Watch struct {
	id  string
	log *logging.Logger

	mu       sync.Mutex
	resolved bool
	cancel   chan struct{}
}

// New starts watching done and invokes fn when it closes. The done channel
// is typically the remote callback endpoint's closed-connection signal.
func New(done <-chan struct{}, fn func(), log *logging.Logger) *Watch {
	if log == nil {
		log = logging.NewNop()
	}
	w := &Watch{
		id:     uuid.NewString(),
		log:    log,
		cancel: make(chan struct{}),
	}

	go func() {
		select {
		case <-done:
			w.mu.Lock()
			if w.resolved {
				w.mu.Unlock()
				return
			}
			w.resolved = true
			w.mu.Unlock()

			w.log.Warn("remote callback endpoint died, running cleanup",
				zap.String("watch_id", w.id),
			)
			fn()
		case <-w.cancel:
		}
	}()

	return w
}

// ID returns the watch token, used for log correlation.
func (w *Watch) ID() string {
	return w.id
}

// Cancel revokes the watch. It returns false when the watch already fired
// (or was already cancelled), in which case the cleanup ran or is running.
func (w *Watch) Cancel() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.resolved {
		return false
	}
	w.resolved = true
	close(w.cancel)
	return true
}
