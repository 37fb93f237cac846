package liveness

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWatchFiresOnDeath(t *testing.T) {
	done := make(chan struct{})
	var fired atomic.Int32

	w := New(done, func() { fired.Add(1) }, nil)
	assert.NotEmpty(t, w.ID())

	close(done)

	assert.Eventually(t, func() bool {
		return fired.Load() == 1
	}, time.Second, 5*time.Millisecond)

	// Cancel after the fact reports that cleanup already ran.
	assert.False(t, w.Cancel())
	assert.Equal(t, int32(1), fired.Load())
}

func TestWatchCancelPreventsCleanup(t *testing.T) {
	done := make(chan struct{})
	var fired atomic.Int32

	w := New(done, func() { fired.Add(1) }, nil)
	assert.True(t, w.Cancel())

	close(done)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())

	// Second cancel is a no-op.
	assert.False(t, w.Cancel())
}

func TestWatchIDsUnique(t *testing.T) {
	done := make(chan struct{})
	defer close(done)

	a := New(done, func() {}, nil)
	b := New(done, func() {}, nil)
	assert.NotEqual(t, a.ID(), b.ID())

	a.Cancel()
	b.Cancel()
}
