package sched

import (
	"fmt"
	"io"
	"log/slog"
)

// Policy is the set of callbacks every scheduling policy implements.
type Policy interface {
	Name() string
	// Init is called once at activation and must create the shared queue.
	Init() error
	// Enqueue is called when t becomes runnable.
	Enqueue(t *Task, flags EnqFlags) error
	// Dispatch is called when cpu has nothing to run.
	Dispatch(cpu int32, prev *Task)
}

// CPUSelector is implemented by policies that pick the CPU of a waking task.
// Hosts fall back to their default idle selection otherwise.
type CPUSelector interface {
	SelectCPU(t *Task, prevCPU int32, wakeFlags uint64) int32
}

// RunObserver is implemented by policies that track run start and stop.
type RunObserver interface {
	Running(t *Task)
	Stopping(t *Task, runnable bool)
}

// Enabler is implemented by policies that initialize newly admitted tasks.
type Enabler interface {
	Enable(t *Task)
}

// Policy names accepted by New.
const (
	Lottery     = "lottery"
	VirtualTime = "vtime"
)

// Names lists the registered policies.
func Names() []string { return []string{Lottery, VirtualTime} }

// New builds the named policy on top of host.
func New(name string, host Host, cfg Config, logger *slog.Logger) (Policy, error) {
	if logger == nil {
		logger = discardLogger()
	}
	switch name {
	case Lottery:
		return NewLotteryPolicy(host, cfg, WithLogger(logger)), nil
	case VirtualTime:
		return NewVirtualTimePolicy(host, cfg, logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
