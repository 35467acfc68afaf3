// Package config loads executor settings from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Swind/go-thread-pool/core"
)

// Config is the top-level YAML document.
type Config struct {
	Pool    PoolConfig    `yaml:"pool"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     LogConfig     `yaml:"log"`
}

// PoolConfig holds the executor sizing and worker naming.
type PoolConfig struct {
	Name             string        `yaml:"name"`
	CoreSize         int           `yaml:"core_size"`
	MaxSize          int           `yaml:"max_size"`
	QueueCapacity    int           `yaml:"queue_capacity"`
	KeepAlive        time.Duration `yaml:"keep_alive"`
	ThreadNamePrefix string        `yaml:"thread_name_prefix"`
	ThreadPriority   string        `yaml:"thread_priority"`
}

// MetricsConfig controls the Prometheus exporter.
type MetricsConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Namespace    string        `yaml:"namespace"`
	Listen       string        `yaml:"listen"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// LogConfig controls the DefaultLogger level.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns a configuration that passes Validate.
func Default() *Config {
	c := &Config{}
	c.ApplyDefaults()
	return c
}

// Load reads and parses a YAML file, applies defaults and validates it.
func Load(path string) (*Config, error) {
	// #nosec G304 -- path comes from the operator.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse is Load without the file read.
func Parse(data []byte) (*Config, error) {
	c := &Config{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Save writes c as YAML.
func Save(path string, c *Config) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

// ApplyDefaults fills zero values. Negative values are left for Validate.
func (c *Config) ApplyDefaults() {
	if c.Pool.CoreSize == 0 {
		c.Pool.CoreSize = 2
	}
	if c.Pool.MaxSize == 0 {
		c.Pool.MaxSize = c.Pool.CoreSize
	}
	if c.Pool.QueueCapacity == 0 {
		c.Pool.QueueCapacity = 100
	}
	if c.Pool.KeepAlive == 0 {
		c.Pool.KeepAlive = 60 * time.Second
	}
	if c.Pool.ThreadPriority == "" {
		c.Pool.ThreadPriority = core.PriorityUserVisible.String()
	}

	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "threadpool"
	}
	if c.Metrics.Listen == "" {
		c.Metrics.Listen = ":2112"
	}
	if c.Metrics.PollInterval <= 0 {
		c.Metrics.PollInterval = time.Second
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate applies the same sizing rules as core.NewExecutor.
func (c *Config) Validate() error {
	p := c.Pool
	if err := core.ValidateSizing(p.CoreSize, p.MaxSize, p.QueueCapacity, p.KeepAlive); err != nil {
		return fmt.Errorf("pool: %w", err)
	}
	if _, ok := core.ParsePriority(p.ThreadPriority); !ok {
		return fmt.Errorf("pool: %w: unknown thread_priority %q", core.ErrInvalidArgument, p.ThreadPriority)
	}
	if _, err := core.ParseLogLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}

// Priority returns the parsed thread priority.
func (p PoolConfig) Priority() core.Priority {
	priority, _ := core.ParsePriority(p.ThreadPriority)
	return priority
}

// Options converts the pool section into executor options.
// Logger, metrics and panic handler are left to the caller.
func (p PoolConfig) Options() []core.Option {
	opts := []core.Option{}
	if p.Name != "" {
		opts = append(opts, core.WithName(p.Name))
	}
	if p.ThreadNamePrefix != "" || p.ThreadPriority != "" {
		prefix := p.ThreadNamePrefix
		if prefix == "" {
			prefix = p.Name
		}
		opts = append(opts, core.WithThreadFactory(core.NewThreadFactory(prefix, p.Priority())))
	}
	return opts
}

// NewExecutor builds an executor from the pool section.
func (p PoolConfig) NewExecutor(extra ...core.Option) (*core.Executor, error) {
	opts := append(p.Options(), extra...)
	return core.NewExecutor(p.CoreSize, p.MaxSize, p.QueueCapacity, p.KeepAlive, opts...)
}
