// Package job describes the synthetic workloads run by the simulator.
package job

import (
	"math/rand/v2"
	"time"
)

// Profile selects how a task alternates between running and sleeping.
type Profile string

const (
	// ProfileCPU never blocks; it runs until its work is done.
	ProfileCPU Profile = "cpu"
	// ProfileInteractive runs for a burst, then sleeps.
	ProfileInteractive Profile = "interactive"
)

// Spec mirrors one entry of the `tasks` list in the config file.
type Spec struct {
	Name    string  `yaml:"name"`
	Weight  int     `yaml:"weight"`   // 100 (by default)
	Count   int     `yaml:"count"`    // 1 (by default)
	Profile Profile `yaml:"profile"`  // cpu (by default)
	BurstNS uint64  `yaml:"burst_ns"` // interactive only
	SleepNS uint64  `yaml:"sleep_ns"` // interactive only
	WorkNS  uint64  `yaml:"work_ns"`  // total work, 0 = never finishes
	Jitter  float64 `yaml:"jitter"`   // 0..1, fraction of burst/sleep randomized
}

// Normalize applies sanity clamps.
func (s Spec) Normalize() Spec {
	if s.Name == "" {
		s.Name = string(s.profileOrDefault())
	}
	if s.Weight <= 0 {
		s.Weight = 100
	}
	if s.Count <= 0 {
		s.Count = 1
	}
	s.Profile = s.profileOrDefault()
	if s.Profile == ProfileInteractive {
		if s.BurstNS == 0 {
			s.BurstNS = uint64(2 * time.Millisecond)
		}
		if s.SleepNS == 0 {
			s.SleepNS = uint64(8 * time.Millisecond)
		}
	}
	if s.Jitter < 0 {
		s.Jitter = 0
	} else if s.Jitter > 1 {
		s.Jitter = 1
	}
	return s
}

func (s Spec) profileOrDefault() Profile {
	switch s.Profile {
	case ProfileCPU, ProfileInteractive:
		return s.Profile
	default:
		return ProfileCPU
	}
}

// State is what a workload wants after running.
type State int

const (
	Runnable State = iota
	Blocked
	Done
)

// Workload is the execution state of one simulated task.
type Workload struct {
	spec      Spec
	rng       *rand.Rand
	burstLeft uint64
	done      uint64
}

// Build creates a workload. rng may be nil, which disables jitter.
func (s Spec) Build(rng *rand.Rand) *Workload {
	w := &Workload{spec: s.Normalize(), rng: rng}
	w.burstLeft = w.nextBurst()
	return w
}

// Run consumes up to budget ns of CPU and reports how much was used.
func (w *Workload) Run(budget uint64) (used uint64, state State) {
	used = budget
	if w.spec.WorkNS > 0 && w.spec.WorkNS-w.done < used {
		used = w.spec.WorkNS - w.done
	}
	if w.spec.Profile == ProfileInteractive && w.burstLeft < used {
		used = w.burstLeft
	}
	w.done += used

	if w.spec.WorkNS > 0 && w.done >= w.spec.WorkNS {
		return used, Done
	}
	if w.spec.Profile == ProfileInteractive {
		w.burstLeft -= used
		if w.burstLeft == 0 {
			w.burstLeft = w.nextBurst()
			return used, Blocked
		}
	}
	return used, Runnable
}

// SleepNS returns how long the task sleeps after a burst.
func (w *Workload) SleepNS() uint64 {
	return w.jitter(w.spec.SleepNS)
}

// DoneNS returns the CPU time consumed so far.
func (w *Workload) DoneNS() uint64 { return w.done }

func (w *Workload) nextBurst() uint64 {
	if w.spec.Profile != ProfileInteractive {
		return 0
	}
	if b := w.jitter(w.spec.BurstNS); b > 0 {
		return b
	}
	return 1
}

func (w *Workload) jitter(ns uint64) uint64 {
	if w.rng == nil || w.spec.Jitter == 0 || ns == 0 {
		return ns
	}
	// scale by a factor in [1-jitter, 1+jitter)
	f := 1 + w.spec.Jitter*(2*w.rng.Float64()-1)
	return uint64(float64(ns) * f)
}
