package sched

import "sync/atomic"

// Before reports whether a is earlier than b on a wrapping u64 clock.
// Valid while the two values are within 2^63 of each other.
func Before(a, b uint64) bool {
	return int64(a-b) < 0
}

// After reports whether a is later than b on a wrapping u64 clock.
func After(a, b uint64) bool {
	return int64(a-b) > 0
}

// VirtualClock is the global fairness clock. It only moves forward.
type VirtualClock struct {
	now atomic.Uint64
}

// Now returns the current clock value.
func (c *VirtualClock) Now() uint64 {
	return c.now.Load()
}

// Advance moves the clock to v if v is later than the current value.
// Concurrent callers race through compare-and-swap; a caller that loses to a
// later value gives up. It reports whether this call moved the clock.
func (c *VirtualClock) Advance(v uint64) bool {
	for {
		cur := c.now.Load()
		if !After(v, cur) {
			return false
		}
		if c.now.CompareAndSwap(cur, v) {
			return true
		}
	}
}

// Reset puts the clock back to zero. Only used on (re)activation.
func (c *VirtualClock) Reset() {
	c.now.Store(0)
}

// ClampVTime limits the credit a long-idle task can bank to one slice
// behind now.
func ClampVTime(vtime, now, slice uint64) uint64 {
	floor := now - slice
	if Before(vtime, floor) {
		return floor
	}
	return vtime
}

// Charge returns the virtual time owed by a task that stopped with
// remaining ns left out of a slice ns grant.
func Charge(slice, remaining, scale uint64, weight uint32) uint64 {
	if remaining >= slice {
		return 0
	}
	if weight == 0 {
		weight = 1
	}
	return (slice - remaining) * scale / uint64(weight)
}

// LotterySlice splits the queue budget across the tasks already queued.
func LotterySlice(budget uint64, queued int) uint64 {
	if queued < 1 {
		queued = 1
	}
	return budget / uint64(queued)
}
