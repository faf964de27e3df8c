// internal/sim/event.go

package sim

import "dsqsched/internal/sched"

// StatusKind represents the type of scheduler event
type StatusKind int

const (
	StatusIdle StatusKind = iota
	StatusWake
	StatusEnqueue
	StatusDirect
	StatusDispatch
	StatusExpire
	StatusSleep
	StatusFinish
)

// StatusEvent is emitted on every callback-visible transition.
type StatusEvent struct {
	Time   uint64 // simulated ns
	Tick   int64
	Kind   StatusKind
	CPU    int32
	TaskID sched.TaskID
	Task   string
	VTime  uint64
	Slice  uint64
	Ran    uint64 // ns run since the task was last dispatched
}

func (sk StatusKind) String() string {
	switch sk {
	case StatusIdle:
		return "Idle"
	case StatusWake:
		return "Wake"
	case StatusEnqueue:
		return "Enqueued"
	case StatusDirect:
		return "Direct"
	case StatusDispatch:
		return "Dispatch"
	case StatusExpire:
		return "Expire"
	case StatusSleep:
		return "Sleep"
	case StatusFinish:
		return "Finish"
	default:
		return "Unknown"
	}
}

// Sink consumes scheduler events.
type Sink interface {
	Handle(ev StatusEvent) error
	Close() error
}
