package scheduler

import (
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	s := New(log)
	t.Cleanup(s.Stop)
	return s
}

func TestDeferFiresOnce(t *testing.T) {
	s := newTestScheduler(t)
	var fired int32
	done := make(chan struct{})

	s.Defer(FlowRegistration, 1, 10*time.Millisecond, func() {
		atomic.AddInt32(&fired, 1)
		close(done)
	})
	assert.Equal(t, 1, s.Pending())

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("deferred check never fired")
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&fired))
	assert.Equal(t, 0, s.Pending())
}

func TestDeferReplacesSameKey(t *testing.T) {
	s := newTestScheduler(t)
	var first, second int32
	done := make(chan struct{})

	s.Defer(FlowCoupon, 7, 10*time.Millisecond, func() {
		atomic.AddInt32(&first, 1)
	})
	s.Defer(FlowCoupon, 7, 20*time.Millisecond, func() {
		atomic.AddInt32(&second, 1)
		close(done)
	})
	assert.Equal(t, 1, s.Pending())

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("replacement timer never fired")
	}

	assert.Equal(t, int32(0), atomic.LoadInt32(&first))
	assert.Equal(t, int32(1), atomic.LoadInt32(&second))
}

func TestDifferentFlowsDoNotCollide(t *testing.T) {
	s := newTestScheduler(t)

	s.Defer(FlowRegistration, 7, time.Hour, func() {})
	s.Defer(FlowCoupon, 7, time.Hour, func() {})

	assert.Equal(t, 2, s.Pending())
}

func TestCancelStopsTimer(t *testing.T) {
	s := newTestScheduler(t)
	var fired int32

	s.Defer(FlowRegistration, 2, 20*time.Millisecond, func() {
		atomic.AddInt32(&fired, 1)
	})

	require.True(t, s.Cancel(FlowRegistration, 2))
	assert.False(t, s.Cancel(FlowRegistration, 2))

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&fired))
	assert.Equal(t, 0, s.Pending())
}

func TestStopCancelsEverything(t *testing.T) {
	s := newTestScheduler(t)
	var fired int32

	s.Defer(FlowRegistration, 3, 20*time.Millisecond, func() {
		atomic.AddInt32(&fired, 1)
	})
	s.Stop()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&fired))

	// Scheduling after Stop is a no-op.
	s.Defer(FlowCoupon, 4, time.Millisecond, func() {
		atomic.AddInt32(&fired, 1)
	})
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&fired))
}

func TestEveryRunsUntilStop(t *testing.T) {
	s := newTestScheduler(t)
	var ticks int32

	s.Every(10*time.Millisecond, func() {
		atomic.AddInt32(&ticks, 1)
	})

	time.Sleep(55 * time.Millisecond)
	s.Stop()
	// Allow an in-flight tick to land before measuring.
	time.Sleep(20 * time.Millisecond)
	seen := atomic.LoadInt32(&ticks)
	assert.GreaterOrEqual(t, seen, int32(2))

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, seen, atomic.LoadInt32(&ticks))
}
