// Package schedule runs deferred callbacks that can be cancelled.
//
// It replaces raw timers for simulated latency (payment settlement, toast
// expiry): the clock is injected so tests drive time with a fake clock.
package schedule

import (
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/atomic"
)

const (
	statePending int32 = iota
	stateFired
	stateCancelled
)

// MinDelay is the smallest delay a task is scheduled with. Non-positive delays
// are raised to it so a callback never runs inside the scheduling call.
const MinDelay = time.Nanosecond

// Task is a callback scheduled on a clock.
type Task struct {
	timer clockwork.Timer
	state atomic.Int32
}

// After schedules fn to run once after d on the given clock.
func After(clock clockwork.Clock, d time.Duration, fn func()) *Task {
	if d < MinDelay {
		d = MinDelay
	}
	t := &Task{}
	t.timer = clock.AfterFunc(d, func() {
		if t.state.CompareAndSwap(statePending, stateFired) {
			fn()
		}
	})
	return t
}

// Cancel prevents the callback from running.
// It returns false if the callback already started or the task was already cancelled.
// After a successful Cancel the callback never runs, even if the timer fired concurrently.
func (t *Task) Cancel() bool {
	if !t.state.CompareAndSwap(statePending, stateCancelled) {
		return false
	}
	t.timer.Stop()
	return true
}

// Done reports whether the task fired or was cancelled.
func (t *Task) Done() bool {
	return t.state.Load() != statePending
}

// Fired reports whether the callback ran (or is running).
func (t *Task) Fired() bool {
	return t.state.Load() == stateFired
}
