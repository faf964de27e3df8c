package sched

import "fmt"

// TaskID uniquely identifies a task known to the host.
type TaskID uint64

// Weight bounds and the default weight of a "normal" task.
const (
	MinWeight     = 1
	MaxWeight     = 10000
	DefaultWeight = 100
)

// Task is the policy's view of a host-owned task. The host owns the struct;
// policies only read Weight and write VTime and Slice.
type Task struct {
	ID     TaskID
	Name   string
	Weight uint32 // priority weight, 100 is normal; never zero
	VTime  uint64 // weight-scaled virtual time consumed (vtime policy only)
	Slice  uint64 // remaining slice in ns, decremented by the host while running
}

// NewTask creates a task with its weight clamped into [MinWeight, MaxWeight].
// NOTE: VTime and Slice start at zero. Policies set them on enable and enqueue.
func NewTask(id TaskID, name string, weight int) *Task {
	return &Task{
		ID:     id,
		Name:   name,
		Weight: ClampWeight(weight),
	}
}

// ClampWeight keeps a weight within the legal region.
func ClampWeight(weight int) uint32 {
	if weight < MinWeight {
		return MinWeight
	}
	if weight > MaxWeight {
		return MaxWeight
	}
	return uint32(weight)
}

func (t *Task) String() string {
	if t.Name != "" {
		return fmt.Sprintf("%s[%d]", t.Name, t.ID)
	}
	return fmt.Sprintf("task[%d]", t.ID)
}
