package sched

import (
	"log/slog"
	"math/rand/v2"
)

// LotteryPolicy admits tasks into one unordered FIFO queue and hands each
// idle CPU a uniformly random queued task. Slices shrink as the queue grows.
type LotteryPolicy struct {
	host   Host
	cfg    Config
	intN   func(n int) int
	logger *slog.Logger
}

// LotteryOption configures a LotteryPolicy.
type LotteryOption func(*LotteryPolicy)

// WithIntN replaces the random source. f must return a value in [0, n).
func WithIntN(f func(n int) int) LotteryOption {
	return func(p *LotteryPolicy) { p.intN = f }
}

// WithLogger sets the policy logger.
func WithLogger(logger *slog.Logger) LotteryOption {
	return func(p *LotteryPolicy) { p.logger = logger }
}

// NewLotteryPolicy creates a lottery policy bound to host.
func NewLotteryPolicy(host Host, cfg Config, opts ...LotteryOption) *LotteryPolicy {
	p := &LotteryPolicy{
		host:   host,
		cfg:    cfg.Normalize(),
		intN:   rand.IntN,
		logger: discardLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("policy", p.Name())
	return p
}

func (p *LotteryPolicy) Name() string { return "lottery_scheduler" }

func (p *LotteryPolicy) Init() error {
	if err := p.host.CreateDSQ(SharedDSQ); err != nil {
		return &InitError{Queue: SharedDSQ, Err: err}
	}
	return nil
}

// Enqueue inserts t with a slice of budget / queued tasks.
func (p *LotteryPolicy) Enqueue(t *Task, flags EnqFlags) error {
	slice := LotterySlice(p.cfg.BudgetNS, p.host.NrQueued(SharedDSQ))
	if err := p.host.Insert(t, SharedDSQ, slice, flags); err != nil {
		return &AdmissionError{Task: t.ID, Queue: SharedDSQ, Err: err}
	}
	return nil
}

// Dispatch draws a ticket in [0, queued) and moves the task holding it to
// cpu. A lost claim is not retried; the host dispatches again on its next
// idle event.
func (p *LotteryPolicy) Dispatch(cpu int32, prev *Task) {
	n := p.host.NrQueued(SharedDSQ)
	if n <= 0 {
		return
	}
	ticket := p.intN(n)
	visited := 0
	for t := range p.host.Iterate(SharedDSQ) {
		if visited == n {
			return
		}
		visited++
		if ticket > 0 {
			ticket--
			continue
		}
		if !p.host.MoveTaskToLocal(t, SharedDSQ, cpu, EnqPreempt) {
			p.logger.Debug("lost claim", "cpu", cpu, "task", t.ID)
		}
		return
	}
}
