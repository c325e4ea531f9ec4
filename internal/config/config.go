package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/behaviortree/internal/core/observability/log"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config is the daemon configuration, usually read from a YAML file.
type Config struct {
	LogLevel string `json:"log_level" yaml:"log_level"`

	// TickInterval is the period of the agent loop.
	TickInterval time.Duration `json:"tick_interval" yaml:"tick_interval"`
	// MaxTicks stops the loop after that many ticks. Zero runs until interrupted.
	MaxTicks uint64 `json:"max_ticks,omitempty" yaml:"max_ticks,omitempty"`
	// Workers bounds parallel agent ticks. Zero means one goroutine per agent.
	Workers int `json:"workers" yaml:"workers"`
	// Seed makes every agent's random choices reproducible.
	Seed       uint64 `json:"seed" yaml:"seed"`
	NodeEvents bool   `json:"node_events" yaml:"node_events"`

	Agents []AgentConfig `json:"agents" yaml:"agents"`

	Monitor MonitorConfig `json:"monitor" yaml:"monitor"`
}

type AgentConfig struct {
	ID   string `json:"id" yaml:"id"`
	Tree string `json:"tree" yaml:"tree"`
	// Count spawns that many agents named ID-0, ID-1, ... when greater than one.
	Count int `json:"count,omitempty" yaml:"count,omitempty"`
	// Data seeds the agent's blackboard.
	Data map[string]any `json:"data,omitempty" yaml:"data,omitempty"`
}

type MonitorConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Addr    string `json:"addr" yaml:"addr"`
	// Buffer is the per-client outgoing queue length.
	Buffer int `json:"buffer" yaml:"buffer"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		LogLevel:     "info",
		TickInterval: 100 * time.Millisecond,
		Agents: []AgentConfig{
			{ID: "counter", Tree: "counter"},
			{ID: "wanderer", Tree: "wander"},
			{ID: "patrol", Tree: "patrol"},
		},
		Monitor: MonitorConfig{Addr: ":8080", Buffer: 256},
	}
}

// Load decodes YAML from r over the defaults and validates the result.
func Load(r io.Reader) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Load(f)
}

// Validate reports every problem found, joined.
func (c *Config) Validate() error {
	var errs []error
	if c.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("%w: tick_interval must be positive", ErrInvalidConfig))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("%w: workers must not be negative", ErrInvalidConfig))
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalidConfig, err))
	}
	seen := make(map[string]struct{}, len(c.Agents))
	for i, a := range c.Agents {
		if a.ID == "" {
			errs = append(errs, fmt.Errorf("%w: agents[%d]: id is required", ErrInvalidConfig, i))
		}
		if a.Tree == "" {
			errs = append(errs, fmt.Errorf("%w: agents[%d]: tree is required", ErrInvalidConfig, i))
		}
		if a.Count < 0 {
			errs = append(errs, fmt.Errorf("%w: agents[%d]: count must not be negative", ErrInvalidConfig, i))
		}
		if a.ID == "" {
			continue
		}
		for _, id := range a.AgentIDs() {
			if _, dup := seen[id]; dup {
				errs = append(errs, fmt.Errorf("%w: agents[%d]: duplicate agent id %q", ErrInvalidConfig, i, id))
			}
			seen[id] = struct{}{}
		}
	}
	if c.Monitor.Enabled && c.Monitor.Addr == "" {
		errs = append(errs, fmt.Errorf("%w: monitor.addr is required when the monitor is enabled", ErrInvalidConfig))
	}
	if c.Monitor.Buffer < 0 {
		errs = append(errs, fmt.Errorf("%w: monitor.buffer must not be negative", ErrInvalidConfig))
	}
	return errors.Join(errs...)
}

// Level returns the parsed log level, falling back to info.
func (c *Config) Level() log.Level {
	l, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.LevelInfo
	}
	return l
}

// AgentIDs expands Count into the concrete agent ids of a.
func (a AgentConfig) AgentIDs() []string {
	if a.Count <= 1 {
		return []string{a.ID}
	}
	ids := make([]string, a.Count)
	for i := range ids {
		ids[i] = fmt.Sprintf("%s-%d", a.ID, i)
	}
	return ids
}
