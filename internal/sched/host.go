package sched

import "iter"

// DSQID names a dispatch queue owned by the host.
type DSQID uint64

// SharedDSQ is the single global queue both policies use.
const SharedDSQ DSQID = 0

// EnqFlags are opaque enqueue flags forwarded to the host.
type EnqFlags uint64

const (
	// EnqWakeup marks an enqueue caused by a wakeup.
	EnqWakeup EnqFlags = 1 << 0
	// EnqPreempt asks the host to displace whatever runs on the target CPU.
	EnqPreempt EnqFlags = 1 << 32
)

// Host is the scheduling framework a policy plugs into. It owns the queues,
// the tasks and the CPUs; policies only call these operations.
type Host interface {
	// CreateDSQ creates an empty queue.
	CreateDSQ(id DSQID) error
	// NrQueued returns the number of tasks in the queue.
	NrQueued(id DSQID) int
	// Insert appends t to a FIFO queue and grants it slice ns.
	Insert(t *Task, id DSQID, slice uint64, flags EnqFlags) error
	// InsertVTime inserts t into a queue ordered by ascending vtime and
	// records vtime as t.VTime.
	InsertVTime(t *Task, id DSQID, slice, vtime uint64, flags EnqFlags) error
	// InsertLocal places t directly on cpu's local run slot.
	InsertLocal(t *Task, cpu int32, slice uint64, flags EnqFlags)
	// Iterate yields the tasks queued at call time, in queue order.
	Iterate(id DSQID) iter.Seq[*Task]
	// MoveToLocal moves the first task of the queue to cpu's local slot.
	MoveToLocal(id DSQID, cpu int32) bool
	// MoveTaskToLocal moves a task previously seen through Iterate to cpu's
	// local slot. It fails when another CPU claimed the task first.
	MoveTaskToLocal(t *Task, id DSQID, cpu int32, flags EnqFlags) bool
	// SelectCPUDefault is the host's idle CPU heuristic.
	SelectCPUDefault(t *Task, prevCPU int32, wakeFlags uint64) (cpu int32, idle bool)
}
