package sched

import (
	"iter"
	"slices"
)

// fakeHost is a single-queue Host for exercising policies in isolation.
type fakeHost struct {
	createErr error
	insertErr error
	created   []DSQID

	queue []*Task
	local map[int32][]*Task

	// race makes MoveTaskToLocal lose every claim to another CPU.
	race bool
	// keep leaves claimed tasks queued so a test can draw repeatedly.
	keep    bool
	claimed []*Task
	flags   []EnqFlags
	iters   int

	idleCPU int32
	idle    bool
}

func newFakeHost(tasks ...*Task) *fakeHost {
	return &fakeHost{queue: slices.Clone(tasks), local: make(map[int32][]*Task)}
}

func (h *fakeHost) CreateDSQ(id DSQID) error {
	if h.createErr != nil {
		return h.createErr
	}
	h.created = append(h.created, id)
	return nil
}

func (h *fakeHost) NrQueued(id DSQID) int { return len(h.queue) }

func (h *fakeHost) Insert(t *Task, id DSQID, slice uint64, flags EnqFlags) error {
	if h.insertErr != nil {
		return h.insertErr
	}
	t.Slice = slice
	h.queue = append(h.queue, t)
	return nil
}

func (h *fakeHost) InsertVTime(t *Task, id DSQID, slice, vtime uint64, flags EnqFlags) error {
	if h.insertErr != nil {
		return h.insertErr
	}
	t.Slice = slice
	t.VTime = vtime
	i, _ := slices.BinarySearchFunc(h.queue, vtime, func(q *Task, v uint64) int {
		if q.VTime <= v {
			return -1
		}
		return 1
	})
	h.queue = slices.Insert(h.queue, i, t)
	return nil
}

func (h *fakeHost) InsertLocal(t *Task, cpu int32, slice uint64, flags EnqFlags) {
	t.Slice = slice
	h.local[cpu] = append(h.local[cpu], t)
}

func (h *fakeHost) Iterate(id DSQID) iter.Seq[*Task] {
	h.iters++
	return slices.Values(slices.Clone(h.queue))
}

func (h *fakeHost) MoveToLocal(id DSQID, cpu int32) bool {
	if len(h.queue) == 0 {
		return false
	}
	t := h.queue[0]
	h.queue = h.queue[1:]
	h.local[cpu] = append(h.local[cpu], t)
	return true
}

func (h *fakeHost) MoveTaskToLocal(t *Task, id DSQID, cpu int32, flags EnqFlags) bool {
	h.flags = append(h.flags, flags)
	i := slices.Index(h.queue, t)
	if i < 0 {
		return false
	}
	if h.race {
		h.queue = slices.Delete(h.queue, i, i+1)
		return false
	}
	h.claimed = append(h.claimed, t)
	if h.keep {
		return true
	}
	h.queue = slices.Delete(h.queue, i, i+1)
	h.local[cpu] = append(h.local[cpu], t)
	return true
}

func (h *fakeHost) SelectCPUDefault(t *Task, prevCPU int32, wakeFlags uint64) (int32, bool) {
	return h.idleCPU, h.idle
}

func tasks(n int) []*Task {
	out := make([]*Task, n)
	for i := range out {
		out[i] = NewTask(TaskID(i+1), "", DefaultWeight)
	}
	return out
}
