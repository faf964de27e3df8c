// internal/sim/clock.go

package sim

import (
	"sync/atomic"
)

// TickClock advances simulated time in fixed ticks and counts them atomically.
type TickClock struct {
	tick  uint64
	now   atomic.Uint64
	count atomic.Int64
}

// NewTickClock creates a clock at time zero. A zero tick is treated as 1ns.
func NewTickClock(tickNS uint64) *TickClock {
	if tickNS == 0 {
		tickNS = 1
	}
	return &TickClock{tick: tickNS}
}

// Advance moves the clock forward by one tick and returns the new time.
func (c *TickClock) Advance() uint64 {
	c.count.Add(1)
	return c.now.Add(c.tick)
}

// Tick returns the tick length in ns.
func (c *TickClock) Tick() uint64 { return c.tick }

// Now returns the simulated time in ns.
func (c *TickClock) Now() uint64 { return c.now.Load() }

// Count returns the current tick count atomically.
func (c *TickClock) Count() int64 {
	return c.count.Load()
}
