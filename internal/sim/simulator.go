// internal/sim/simulator.go

package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"dsqsched/internal/dsq"
	"dsqsched/internal/job"
	"dsqsched/internal/logging"
	"dsqsched/internal/sched"
)

// ErrAlreadyRun is returned when Run is called twice on one Simulator.
var ErrAlreadyRun = errors.New("simulator already ran")

type taskState int

const (
	stateSleeping taskState = iota
	stateQueued
	stateRunning
	stateDone
)

type simTask struct {
	*sched.Task
	work     *job.Workload
	state    taskState
	enabled  bool
	prevCPU  int32
	wakeAt   uint64 // when sleeping
	readyAt  uint64 // when it last became runnable
	ranSince uint64 // ns run since last dispatch
	stats    TaskStats
}

type cpu struct {
	id     int32
	local  *dsq.Queue
	curr   *simTask
	prev   *simTask
	busyNS uint64
	idleNS uint64
}

func (c *cpu) idle() bool {
	return c.curr == nil && c.local.Len() == 0
}

// Simulator is a host for scheduling policies: it owns simulated CPUs and
// tasks and drives the policy callbacks tick by tick.
type Simulator struct {
	cfg      Config
	schedCfg sched.Config
	policy   sched.Policy
	queues   *dsq.Set
	clock    *TickClock
	cpus     []*cpu
	tasks    []*simTask
	byID     map[sched.TaskID]*simTask
	sinks    []Sink
	logger   *slog.Logger
	ran      bool
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithSink adds an event sink. Sinks are closed when Run returns.
func WithSink(sink Sink) Option {
	return func(s *Simulator) { s.sinks = append(s.sinks, sink) }
}

// PolicyFactory builds a policy bound to the simulator's host interface.
type PolicyFactory func(host sched.Host) (sched.Policy, error)

// ByName returns a factory for a registered policy.
func ByName(name string, cfg sched.Config, logger *slog.Logger) PolicyFactory {
	return func(host sched.Host) (sched.Policy, error) {
		return sched.New(name, host, cfg, logger)
	}
}

// New creates a simulator running the given workloads under the policy
// built by factory.
func New(cfg Config, schedCfg sched.Config, factory PolicyFactory, specs []job.Spec, logger *slog.Logger, opts ...Option) (*Simulator, error) {
	cfg = cfg.Normalize()
	schedCfg = schedCfg.Normalize()
	s := &Simulator{
		cfg:      cfg,
		schedCfg: schedCfg,
		queues:   dsq.NewSet(schedCfg.MaxQueued),
		clock:    NewTickClock(cfg.TickNS),
		byID:     make(map[sched.TaskID]*simTask),
		logger:   logging.Component(logger, "sim"),
	}
	for _, opt := range opts {
		opt(s)
	}

	for i := 0; i < cfg.CPUs; i++ {
		s.cpus = append(s.cpus, &cpu{
			id:    int32(i),
			local: dsq.New(sched.DSQID(1<<32|i), 0),
		})
	}

	var rng *rand.Rand
	if cfg.Seed != 0 {
		rng = rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	}
	var id sched.TaskID
	for _, spec := range specs {
		spec = spec.Normalize()
		for n := 0; n < spec.Count; n++ {
			id++
			name := spec.Name
			if spec.Count > 1 {
				name = fmt.Sprintf("%s-%d", spec.Name, n)
			}
			st := &simTask{
				Task:    sched.NewTask(id, name, spec.Weight),
				work:    spec.Build(rng),
				prevCPU: int32(int(id-1) % cfg.CPUs),
			}
			s.tasks = append(s.tasks, st)
			s.byID[id] = st
		}
	}
	if len(s.tasks) == 0 {
		return nil, errors.New("simulator: no tasks")
	}

	policy, err := factory(s)
	if err != nil {
		return nil, err
	}
	s.policy = policy
	s.logger = s.logger.With("policy", policy.Name())
	return s, nil
}

// Policy returns the policy under simulation.
func (s *Simulator) Policy() sched.Policy { return s.policy }

// Run activates the policy, wakes every task at time zero and simulates
// until the configured duration elapses or ctx is canceled.
func (s *Simulator) Run(ctx context.Context) (*Report, error) {
	if s.ran {
		return nil, ErrAlreadyRun
	}
	s.ran = true
	defer s.closeSinks()

	if err := s.policy.Init(); err != nil {
		return nil, fmt.Errorf("activate %s: %w", s.policy.Name(), err)
	}
	s.logger.Info("policy activated", "cpus", len(s.cpus), "tasks", len(s.tasks))

	for s.clock.Now() < s.cfg.DurationNS {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		now := s.clock.Now()
		if err := s.wakeDue(now); err != nil {
			return nil, err
		}
		for _, c := range s.cpus {
			if err := s.step(c, now); err != nil {
				return nil, err
			}
		}
		s.clock.Advance()
	}

	r := s.report()
	s.logger.Info("run finished",
		"ticks", r.Ticks,
		"busy_ns", r.BusyNS,
		"idle_ns", r.IdleNS,
		"fairness", r.Fairness)
	return r, nil
}

func (s *Simulator) wakeDue(now uint64) error {
	for _, st := range s.tasks {
		if st.state != stateSleeping || st.wakeAt > now {
			continue
		}
		if err := s.wake(st, now); err != nil {
			return err
		}
	}
	return nil
}

func (s *Simulator) wake(st *simTask, now uint64) error {
	st.stats.Wakeups++
	if !st.enabled {
		if en, ok := s.policy.(sched.Enabler); ok {
			en.Enable(st.Task)
		}
		st.enabled = true
	}
	s.emit(StatusWake, st.prevCPU, st)

	target := s.selectCPU(st)
	if c := s.cpu(target); c != nil && c.local.Contains(st.Task) {
		st.state = stateQueued
		st.readyAt = now
		s.emit(StatusDirect, target, st)
		return nil
	}
	return s.enqueue(st, now, sched.EnqWakeup)
}

func (s *Simulator) selectCPU(st *simTask) int32 {
	if sel, ok := s.policy.(sched.CPUSelector); ok {
		target := sel.SelectCPU(st.Task, st.prevCPU, 0)
		if s.cpu(target) == nil {
			s.logger.Warn("policy picked invalid cpu", "cpu", target, "task", st.ID)
			return st.prevCPU
		}
		return target
	}
	// built-in idle tracking for policies without select_cpu
	target, idle := s.SelectCPUDefault(st.Task, st.prevCPU, 0)
	if idle {
		s.InsertLocal(st.Task, target, s.schedCfg.SliceNS, 0)
	}
	return target
}

func (s *Simulator) enqueue(st *simTask, now uint64, flags sched.EnqFlags) error {
	st.state = stateQueued
	st.readyAt = now
	if err := s.policy.Enqueue(st.Task, flags); err != nil {
		return fmt.Errorf("policy %s: %w", s.policy.Name(), err)
	}
	s.emit(StatusEnqueue, -1, st)
	return nil
}

func (s *Simulator) step(c *cpu, now uint64) error {
	if c.curr == nil {
		s.pick(c, now)
	}
	if c.curr == nil {
		c.idleNS += s.clock.Tick()
		return nil
	}
	return s.runTick(c, now)
}

func (s *Simulator) pick(c *cpu, now uint64) {
	if c.local.Len() == 0 {
		var prev *sched.Task
		if c.prev != nil {
			prev = c.prev.Task
		}
		s.policy.Dispatch(c.id, prev)
	}
	t := c.local.PopFirst()
	if t == nil {
		return
	}
	st := s.byID[t.ID]
	c.curr = st
	st.state = stateRunning
	st.prevCPU = c.id
	st.ranSince = 0
	st.stats.Dispatches++
	st.stats.WaitNS += now - st.readyAt
	if obs, ok := s.policy.(sched.RunObserver); ok {
		obs.Running(st.Task)
	}
	s.emit(StatusDispatch, c.id, st)
}

func (s *Simulator) runTick(c *cpu, now uint64) error {
	st := c.curr
	tick := s.clock.Tick()

	budget := min(tick, st.Slice)
	var used uint64
	state := job.Runnable
	if budget > 0 {
		used, state = st.work.Run(budget)
	}
	st.Slice -= used
	st.ranSince += used
	st.stats.RuntimeNS += used
	c.busyNS += used
	c.idleNS += tick - used

	switch {
	case state == job.Done:
		s.stop(c, false)
		st.state = stateDone
		s.emit(StatusFinish, c.id, st)
	case state == job.Blocked:
		s.stop(c, false)
		st.state = stateSleeping
		st.wakeAt = now + tick + st.work.SleepNS()
		s.emit(StatusSleep, c.id, st)
	case st.Slice == 0:
		s.stop(c, true)
		s.emit(StatusExpire, c.id, st)
		return s.enqueue(st, now+tick, 0)
	}
	return nil
}

func (s *Simulator) stop(c *cpu, runnable bool) {
	if obs, ok := s.policy.(sched.RunObserver); ok {
		obs.Stopping(c.curr.Task, runnable)
	}
	c.prev = c.curr
	c.curr = nil
}

func (s *Simulator) cpu(id int32) *cpu {
	if id < 0 || int(id) >= len(s.cpus) {
		return nil
	}
	return s.cpus[id]
}

func (s *Simulator) emit(kind StatusKind, cpu int32, st *simTask) {
	ev := StatusEvent{
		Time:   s.clock.Now(),
		Tick:   s.clock.Count(),
		Kind:   kind,
		CPU:    cpu,
		TaskID: st.ID,
		Task:   st.Name,
		VTime:  st.VTime,
		Slice:  st.Slice,
		Ran:    st.ranSince,
	}
	s.logger.Debug("event",
		"kind", kind.String(),
		"cpu", cpu,
		"task", st.Name,
		"vtime", st.VTime,
		"slice", st.Slice)
	for _, sink := range s.sinks {
		if err := sink.Handle(ev); err != nil {
			s.logger.Warn("sink failed", "err", err)
		}
	}
}

func (s *Simulator) closeSinks() {
	for _, sink := range s.sinks {
		if err := sink.Close(); err != nil {
			s.logger.Warn("close sink", "err", err)
		}
	}
}
