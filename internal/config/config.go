// Package config loads the simulation config file.
package config

import (
	"fmt"
	"os"

	yaml "github.com/goccy/go-yaml"

	"dsqsched/internal/job"
	"dsqsched/internal/sched"
	"dsqsched/internal/sim"
)

// Config mirrors config.yml.
type Config struct {
	Policy string       `yaml:"policy"` // vtime (by default)
	Sched  sched.Config `yaml:"sched"`
	Sim    sim.Config   `yaml:"sim"`
	Tasks  []job.Spec   `yaml:"tasks"`
	Log    LogConfig    `yaml:"log"`
	CSV    string       `yaml:"csv"` // event trace path, empty = off
	DB     string       `yaml:"db"`  // sqlite path for run summaries, empty = off
}

// LogConfig selects the logger level and format.
type LogConfig struct {
	Level  string `yaml:"level"`  // info (by default)
	Format string `yaml:"format"` // text (by default)
}

// Default returns the configuration used when no file is given: a mixed
// workload of CPU hogs at two weights and one interactive task.
func Default() Config {
	return Config{
		Policy: sched.VirtualTime,
		Sched:  sched.DefaultConfig(),
		Sim:    sim.DefaultConfig(),
		Tasks: []job.Spec{
			{Name: "hog", Weight: 100, Count: 4, Profile: job.ProfileCPU},
			{Name: "heavy", Weight: 200, Count: 2, Profile: job.ProfileCPU},
			{Name: "shell", Weight: 100, Count: 1, Profile: job.ProfileInteractive},
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads YAML and overrides defaults; empty path = defaults only.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and applies sanity clamps.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	cfg.Tasks = nil // a tasks list in the file replaces the defaults
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg.normalize()
}

func (c Config) normalize() (Config, error) {
	if c.Policy == "" {
		c.Policy = sched.VirtualTime
	}
	known := false
	for _, name := range sched.Names() {
		if c.Policy == name {
			known = true
		}
	}
	if !known {
		return Config{}, fmt.Errorf("%w: %q", sched.ErrUnknownPolicy, c.Policy)
	}

	c.Sched = c.Sched.Normalize()
	c.Sim = c.Sim.Normalize()
	if len(c.Tasks) == 0 {
		c.Tasks = Default().Tasks
	}
	for i := range c.Tasks {
		c.Tasks[i] = c.Tasks[i].Normalize()
		c.Tasks[i].Weight = int(sched.ClampWeight(c.Tasks[i].Weight))
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	return c, nil
}
