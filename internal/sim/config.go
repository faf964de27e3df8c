package sim

import "time"

// Config controls the simulated machine.
type Config struct {
	CPUs       int    `yaml:"cpus"`        // 4 (by default)
	TickNS     uint64 `yaml:"tick_ns"`     // 1ms (by default)
	DurationNS uint64 `yaml:"duration_ns"` // 1s (by default)
	Seed       uint64 `yaml:"seed"`        // 0 = no workload jitter
}

// DefaultConfig returns a four CPU machine simulated for one second.
func DefaultConfig() Config {
	return Config{
		CPUs:       4,
		TickNS:     uint64(time.Millisecond),
		DurationNS: uint64(time.Second),
	}
}

// Normalize applies sanity clamps.
func (c Config) Normalize() Config {
	def := DefaultConfig()
	if c.CPUs <= 0 {
		c.CPUs = def.CPUs
	}
	if c.TickNS == 0 {
		c.TickNS = def.TickNS
	}
	if c.DurationNS == 0 {
		c.DurationNS = def.DurationNS
	}
	return c
}
