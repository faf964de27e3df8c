package sim

import (
	"iter"
	"slices"

	"dsqsched/internal/sched"
)

var _ sched.Host = (*Simulator)(nil)

func (s *Simulator) CreateDSQ(id sched.DSQID) error {
	_, err := s.queues.Create(id)
	return err
}

func (s *Simulator) NrQueued(id sched.DSQID) int {
	return s.queues.Len(id)
}

func (s *Simulator) Insert(t *sched.Task, id sched.DSQID, slice uint64, flags sched.EnqFlags) error {
	q, err := s.queues.Get(id)
	if err != nil {
		return err
	}
	return q.Insert(t, slice)
}

func (s *Simulator) InsertVTime(t *sched.Task, id sched.DSQID, slice, vtime uint64, flags sched.EnqFlags) error {
	q, err := s.queues.Get(id)
	if err != nil {
		return err
	}
	return q.InsertVTime(t, slice, vtime)
}

func (s *Simulator) InsertLocal(t *sched.Task, cpu int32, slice uint64, flags sched.EnqFlags) {
	c := s.cpu(cpu)
	if c == nil {
		s.logger.Warn("insert on invalid cpu", "cpu", cpu, "task", t.ID)
		return
	}
	if err := c.local.Insert(t, slice); err != nil {
		s.logger.Warn("local insert failed", "cpu", cpu, "task", t.ID, "err", err)
	}
}

// Iterate yields a snapshot of the queue taken at call time.
func (s *Simulator) Iterate(id sched.DSQID) iter.Seq[*sched.Task] {
	q, err := s.queues.Get(id)
	if err != nil {
		return func(func(*sched.Task) bool) {}
	}
	return slices.Values(q.Snapshot())
}

func (s *Simulator) MoveToLocal(id sched.DSQID, cpu int32) bool {
	q, err := s.queues.Get(id)
	if err != nil {
		return false
	}
	c := s.cpu(cpu)
	if c == nil {
		return false
	}
	t := q.PopFirst()
	if t == nil {
		return false
	}
	if err := c.local.Insert(t, t.Slice); err != nil {
		s.logger.Warn("local insert failed", "cpu", cpu, "task", t.ID, "err", err)
		return false
	}
	return true
}

// MoveTaskToLocal queues t behind whatever cpu runs. Dispatch only runs on
// idle CPUs here, so EnqPreempt never has a task to displace.
func (s *Simulator) MoveTaskToLocal(t *sched.Task, id sched.DSQID, cpu int32, flags sched.EnqFlags) bool {
	q, err := s.queues.Get(id)
	if err != nil {
		return false
	}
	c := s.cpu(cpu)
	if c == nil || !q.Remove(t) {
		return false
	}
	if err := c.local.Insert(t, t.Slice); err != nil {
		s.logger.Warn("local insert failed", "cpu", cpu, "task", t.ID, "err", err)
		return false
	}
	return true
}

// SelectCPUDefault prefers the previous CPU when idle, then the next idle
// CPU after it. With no idle CPU it stays on the previous one.
func (s *Simulator) SelectCPUDefault(t *sched.Task, prevCPU int32, wakeFlags uint64) (int32, bool) {
	if s.cpu(prevCPU) == nil {
		prevCPU = 0
	}
	n := len(s.cpus)
	for i := 0; i < n; i++ {
		c := s.cpus[(int(prevCPU)+i)%n]
		if c.idle() {
			return c.id, true
		}
	}
	return prevCPU, false
}
