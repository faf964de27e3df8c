package sched

import "time"

// Config holds the policy constants. Zero values are replaced by defaults
// through Normalize.
type Config struct {
	BudgetNS      uint64 `yaml:"budget_ns"`      // 5ms lottery queue budget (by default)
	SliceNS       uint64 `yaml:"slice_ns"`       // 20ms default slice (by default)
	FairnessScale uint64 `yaml:"fairness_scale"` // 100 (by default)
	MaxQueued     int    `yaml:"max_queued"`     // 0 = unbounded shared queue
}

const (
	DefaultBudgetNS      = uint64(5 * time.Millisecond)
	DefaultSliceNS       = uint64(20 * time.Millisecond)
	DefaultFairnessScale = 100
)

// DefaultConfig returns the reference constants.
func DefaultConfig() Config {
	return Config{
		BudgetNS:      DefaultBudgetNS,
		SliceNS:       DefaultSliceNS,
		FairnessScale: DefaultFairnessScale,
	}
}

// Normalize applies sanity clamps: unset or invalid values fall back to defaults.
func (c Config) Normalize() Config {
	if c.BudgetNS == 0 {
		c.BudgetNS = DefaultBudgetNS
	}
	if c.SliceNS == 0 {
		c.SliceNS = DefaultSliceNS
	}
	if c.FairnessScale == 0 {
		c.FairnessScale = DefaultFairnessScale
	}
	if c.MaxQueued < 0 {
		c.MaxQueued = 0
	}
	return c
}
