package schedule_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/toolshed/pkg/schedule"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestAfter_FiresOnce(t *testing.T) {
	clock := clockwork.NewFakeClock()
	var calls atomic.Int32

	task := schedule.After(clock, 100*time.Millisecond, func() { calls.Add(1) })

	clock.Advance(99 * time.Millisecond)
	assert.False(t, task.Done(), "task should still be pending before its deadline")

	clock.Advance(time.Millisecond)
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	assert.True(t, task.Fired())

	clock.Advance(time.Second)
	assert.False(t, task.Cancel(), "a fired task cannot be cancelled")
	assert.Equal(t, int32(1), calls.Load())
}

func TestAfter_CancelPreventsCallback(t *testing.T) {
	clock := clockwork.NewFakeClock()
	var calls atomic.Int32

	task := schedule.After(clock, 50*time.Millisecond, func() { calls.Add(1) })
	assert.True(t, task.Cancel())
	assert.False(t, task.Cancel(), "second cancel is a no-op")
	assert.True(t, task.Done())
	assert.False(t, task.Fired())

	clock.Advance(time.Second)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestAfter_NonPositiveDelayIsDeferred(t *testing.T) {
	clock := clockwork.NewFakeClock()
	var calls atomic.Int32

	task := schedule.After(clock, 0, func() { calls.Add(1) })
	assert.Equal(t, int32(0), calls.Load(), "callback must not run inside After")

	clock.Advance(schedule.MinDelay)
	assert.Eventually(t, task.Fired, time.Second, time.Millisecond)
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
}

func TestAfter_RealClock(t *testing.T) {
	done := make(chan struct{})
	schedule.After(clockwork.NewRealClock(), 5*time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task did not fire on the real clock")
	}
}
