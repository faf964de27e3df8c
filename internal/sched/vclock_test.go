package sched

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBeforeAfter(t *testing.T) {
	tests := []struct {
		name   string
		a, b   uint64
		before bool
		after  bool
	}{
		{"equal", 5, 5, false, false},
		{"smaller", 1, 2, true, false},
		{"larger", 2, 1, false, true},
		{"across wrap", math.MaxUint64 - 10, 10, true, false},
		{"after wrap", 10, math.MaxUint64 - 10, false, true},
		// 0 - 2^63 reinterprets as MinInt64, so 0 is earlier
		{"half range", 0, 1 << 63, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.before, Before(tt.a, tt.b))
			assert.Equal(t, tt.after, After(tt.a, tt.b))
		})
	}
}

func TestClampVTime(t *testing.T) {
	assert.Equal(t, uint64(800), ClampVTime(500, 1000, 200))
	assert.Equal(t, uint64(900), ClampVTime(900, 1000, 200))
	assert.Equal(t, uint64(800), ClampVTime(800, 1000, 200))
	assert.Equal(t, uint64(5000), ClampVTime(5000, 1000, 200))

	// now < slice: the floor wraps below zero and a zero vtime is not behind it
	assert.Equal(t, uint64(0), ClampVTime(0, 0, 200))
	assert.Equal(t, uint64(50), ClampVTime(50, 100, 200))
}

func TestCharge(t *testing.T) {
	assert.Equal(t, uint64(150), Charge(200, 50, 100, 100))
	assert.Equal(t, uint64(75), Charge(200, 50, 100, 200))
	assert.Equal(t, uint64(0), Charge(200, 200, 100, 100), "untouched slice")
	assert.Equal(t, uint64(0), Charge(200, 500, 100, 100), "slice larger than default")
	assert.Equal(t, uint64(200), Charge(200, 0, 100, 100), "whole slice used")
	assert.Equal(t, uint64(15000), Charge(200, 50, 100, 0), "zero weight treated as 1")
	assert.Equal(t, uint64(300), Charge(200, 50, 200, 100), "non-default scale")
}

func TestLotterySlice(t *testing.T) {
	for n := 1; n <= 16; n++ {
		assert.Equal(t, DefaultBudgetNS/uint64(n), LotterySlice(DefaultBudgetNS, n))
	}
	assert.Equal(t, DefaultBudgetNS, LotterySlice(DefaultBudgetNS, 0))
	assert.Equal(t, DefaultBudgetNS, LotterySlice(DefaultBudgetNS, -3))
}

func TestVirtualClock_Advance(t *testing.T) {
	var c VirtualClock
	assert.True(t, c.Advance(10))
	assert.False(t, c.Advance(5))
	assert.False(t, c.Advance(10))
	assert.Equal(t, uint64(10), c.Now())

	c.Reset()
	assert.Equal(t, uint64(0), c.Now())
}

func TestVirtualClock_ConcurrentMonotonic(t *testing.T) {
	var c VirtualClock
	const workers = 8
	const perWorker = 1000

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			last := uint64(0)
			for i := 0; i < perWorker; i++ {
				v := uint64(i*workers + w + 1)
				c.Advance(v)
				now := c.Now()
				if now < v || now < last {
					t.Errorf("clock moved back: now=%d v=%d last=%d", now, v, last)
					return
				}
				last = now
			}
		}(w)
	}
	wg.Wait()
	assert.Equal(t, uint64(workers*perWorker), c.Now())
}
