package sched

import "log/slog"

// VirtualTimePolicy orders the shared queue by weighted virtual time, so the
// task that consumed the least weighted CPU time runs first.
type VirtualTimePolicy struct {
	host   Host
	cfg    Config
	clock  VirtualClock
	logger *slog.Logger
}

// NewVirtualTimePolicy creates a vtime policy bound to host.
func NewVirtualTimePolicy(host Host, cfg Config, logger *slog.Logger) *VirtualTimePolicy {
	if logger == nil {
		logger = discardLogger()
	}
	p := &VirtualTimePolicy{
		host: host,
		cfg:  cfg.Normalize(),
	}
	p.logger = logger.With("policy", p.Name())
	return p
}

func (p *VirtualTimePolicy) Name() string { return "vtime_scheduler" }

// Now exposes the global fairness clock.
func (p *VirtualTimePolicy) Now() uint64 { return p.clock.Now() }

func (p *VirtualTimePolicy) Init() error {
	p.clock.Reset()
	if err := p.host.CreateDSQ(SharedDSQ); err != nil {
		return &InitError{Queue: SharedDSQ, Err: err}
	}
	return nil
}

// SelectCPU uses the host's idle heuristic and dispatches straight to the
// picked CPU when it is idle.
func (p *VirtualTimePolicy) SelectCPU(t *Task, prevCPU int32, wakeFlags uint64) int32 {
	cpu, idle := p.host.SelectCPUDefault(t, prevCPU, wakeFlags)
	if idle {
		p.host.InsertLocal(t, cpu, p.cfg.SliceNS, 0)
	}
	return cpu
}

// Enqueue inserts t keyed by its vtime, clamped to at most one slice behind
// the global clock.
func (p *VirtualTimePolicy) Enqueue(t *Task, flags EnqFlags) error {
	vtime := ClampVTime(t.VTime, p.clock.Now(), p.cfg.SliceNS)
	if err := p.host.InsertVTime(t, SharedDSQ, p.cfg.SliceNS, vtime, flags); err != nil {
		return &AdmissionError{Task: t.ID, Queue: SharedDSQ, Err: err}
	}
	return nil
}

func (p *VirtualTimePolicy) Dispatch(cpu int32, prev *Task) {
	p.host.MoveToLocal(SharedDSQ, cpu)
}

// Running advances the global clock to t's vtime if t is ahead of it.
func (p *VirtualTimePolicy) Running(t *Task) {
	p.clock.Advance(t.VTime)
}

// Stopping charges t for the part of its slice it used, scaled by weight.
func (p *VirtualTimePolicy) Stopping(t *Task, runnable bool) {
	t.VTime += Charge(p.cfg.SliceNS, t.Slice, p.cfg.FairnessScale, t.Weight)
}

// Enable starts a new task at the current fairness level.
func (p *VirtualTimePolicy) Enable(t *Task) {
	t.VTime = p.clock.Now()
}
