package sched

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedTicket(ticket int) LotteryOption {
	return WithIntN(func(n int) int { return ticket % n })
}

func TestLottery_Init(t *testing.T) {
	h := newFakeHost()
	p := NewLotteryPolicy(h, DefaultConfig())
	require.NoError(t, p.Init())
	assert.Equal(t, []DSQID{SharedDSQ}, h.created)

	h = newFakeHost()
	h.createErr = errors.New("no memory")
	p = NewLotteryPolicy(h, DefaultConfig())
	err := p.Init()

	var initErr *InitError
	require.ErrorAs(t, err, &initErr)
	assert.Equal(t, SharedDSQ, initErr.Queue)
	assert.ErrorIs(t, err, h.createErr)
}

func TestLottery_EnqueueSlice(t *testing.T) {
	h := newFakeHost()
	p := NewLotteryPolicy(h, DefaultConfig())

	// the slice divides the budget by the tasks already queued
	want := []uint64{
		DefaultBudgetNS, // empty queue, denominator clamps to 1
		DefaultBudgetNS,
		DefaultBudgetNS / 2,
		DefaultBudgetNS / 3,
		DefaultBudgetNS / 4,
	}
	for i, task := range tasks(len(want)) {
		require.NoError(t, p.Enqueue(task, EnqWakeup))
		assert.Equal(t, want[i], task.Slice, "task %d", i)
	}
	assert.Len(t, h.queue, len(want))
}

func TestLottery_EnqueueCustomBudget(t *testing.T) {
	h := newFakeHost(tasks(4)...)
	p := NewLotteryPolicy(h, Config{BudgetNS: 1000})
	task := NewTask(99, "late", 100)
	require.NoError(t, p.Enqueue(task, 0))
	assert.Equal(t, uint64(250), task.Slice)
}

func TestLottery_EnqueueQueueFull(t *testing.T) {
	h := newFakeHost()
	h.insertErr = ErrQueueFull
	p := NewLotteryPolicy(h, DefaultConfig())

	err := p.Enqueue(NewTask(7, "", 100), 0)
	var admission *AdmissionError
	require.ErrorAs(t, err, &admission)
	assert.Equal(t, TaskID(7), admission.Task)
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestLottery_DispatchEmpty(t *testing.T) {
	h := newFakeHost()
	drawn := false
	p := NewLotteryPolicy(h, DefaultConfig(), WithIntN(func(n int) int {
		drawn = true
		return 0
	}))

	for i := 0; i < 3; i++ {
		p.Dispatch(0, nil)
	}
	assert.False(t, drawn, "no draw on an empty queue")
	assert.Zero(t, h.iters)
	assert.Empty(t, h.local)
}

func TestLottery_DispatchPicksTicket(t *testing.T) {
	for ticket := 0; ticket < 4; ticket++ {
		ts := tasks(4)
		h := newFakeHost(ts...)
		p := NewLotteryPolicy(h, DefaultConfig(), fixedTicket(ticket))

		p.Dispatch(2, nil)
		require.Len(t, h.local[2], 1)
		assert.Same(t, ts[ticket], h.local[2][0], "ticket %d", ticket)
		assert.Equal(t, []EnqFlags{EnqPreempt}, h.flags)
		assert.Len(t, h.queue, 3)
		assert.Equal(t, TaskID(ticket+1), ts[ticket].ID, "caller slice untouched")
	}
}

func TestLottery_DispatchLostClaim(t *testing.T) {
	ts := tasks(3)
	h := newFakeHost(ts...)
	h.race = true
	p := NewLotteryPolicy(h, DefaultConfig(), fixedTicket(1))

	p.Dispatch(0, nil)
	assert.Len(t, h.flags, 1, "one claim attempt, no retry")
	assert.Equal(t, 1, h.iters, "scan not restarted")
	assert.Empty(t, h.local[0])
}

func TestLottery_DispatchUniform(t *testing.T) {
	const n = 5
	const draws = 10000

	ts := tasks(n)
	h := newFakeHost(ts...)
	h.keep = true
	p := NewLotteryPolicy(h, DefaultConfig())

	for i := 0; i < draws; i++ {
		p.Dispatch(0, nil)
	}
	require.Len(t, h.claimed, draws)

	counts := make(map[TaskID]int)
	for _, task := range h.claimed {
		counts[task.ID]++
	}
	expected := float64(draws) / n
	chi := 0.0
	for _, task := range ts {
		d := float64(counts[task.ID]) - expected
		chi += d * d / expected
	}
	// 4 degrees of freedom; 18.47 is the p=0.001 critical value
	assert.Less(t, chi, 25.0, "counts %v", counts)
}
