// Package config provides unified configuration loading for serialtemp.
// It supports loading from YAML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/nvandessel/serialtemp/internal/constants"
	"github.com/nvandessel/serialtemp/internal/models"
	"github.com/nvandessel/serialtemp/internal/pulse"
	"github.com/nvandessel/serialtemp/internal/render"
	"github.com/nvandessel/serialtemp/internal/sequence"
	"gopkg.in/yaml.v3"
)

// Config contains all serialtemp configuration settings.
type Config struct {
	// Generation controls the temperature sequence.
	Generation GenerationConfig `json:"generation" yaml:"generation"`

	// Timing holds the serial pulse slot durations.
	Timing pulse.Timing `json:"timing" yaml:"timing"`

	// Output selects how runs are rendered.
	Output OutputConfig `json:"output" yaml:"output"`

	// Logging contains settings for operational and decision logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// GenerationConfig configures the sequence generator.
type GenerationConfig struct {
	// Count is the number of samples generated when none is requested.
	Count int `json:"count" yaml:"count"`

	// Seed makes runs reproducible. Zero seeds from the clock.
	Seed uint64 `json:"seed" yaml:"seed"`

	// WarmupSamples is the last sample index that never carries an anomaly.
	WarmupSamples int `json:"warmup_samples" yaml:"warmup_samples"`

	// AnomalyThreshold is the uniform draw above which an anomaly is injected.
	AnomalyThreshold float64 `json:"anomaly_threshold" yaml:"anomaly_threshold"`
}

// Sequence returns the generator settings.
func (g GenerationConfig) Sequence() sequence.Config {
	return sequence.Config{
		WarmupSamples:    g.WarmupSamples,
		AnomalyThreshold: g.AnomalyThreshold,
	}
}

// OutputConfig configures rendering.
type OutputConfig struct {
	// Format is "calls" (default), "verilog", or "json".
	Format string `json:"format" yaml:"format"`
}

// LoggingConfig configures logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "warn", "info" (default), "debug", or "trace".
	// "debug" enables decision logging to .serialtemp/decisions.jsonl.
	Level string `json:"level" yaml:"level"`
}

// Default returns a Config with the standard generation and timing values.
func Default() *Config {
	return &Config{
		Generation: GenerationConfig{
			Count:            constants.DefaultSampleCount,
			Seed:             0,
			WarmupSamples:    constants.DefaultWarmupSamples,
			AnomalyThreshold: constants.DefaultAnomalyThreshold,
		},
		Timing: pulse.DefaultTiming(),
		Output: OutputConfig{
			Format: string(render.FormatCalls),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns ~/.serialtemp/config.yaml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".serialtemp", "config.yaml"), nil
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.serialtemp/config.yaml -> environment variables
func Load() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		config := Default()
		applyEnvOverrides(config)
		return config, nil
	}
	return LoadPath(path)
}

// LoadPath is Load with the config file at path instead of the default
// location. Environment variables still override the file.
func LoadPath(path string) (*Config, error) {
	config, err := LoadStored(path)
	if err != nil {
		return nil, err
	}
	applyEnvOverrides(config)
	return config, nil
}

// LoadStored returns only what is persisted at path: defaults overlaid with
// the file, if it exists. Environment overrides are not applied, so the
// result is safe to modify and Save back.
func LoadStored(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	config, err := LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading config file: %w", err)
	}
	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file. Keys missing
// from the file keep their defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	config.normalize()

	return config, nil
}

// Save writes the configuration as YAML to path, creating its directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Generation.Count < 0 {
		return fmt.Errorf("%w: count must be non-negative, got %d", models.ErrConfiguration, c.Generation.Count)
	}

	if err := c.Generation.Sequence().Validate(); err != nil {
		return err
	}

	if err := c.Timing.Validate(); err != nil {
		return err
	}

	if _, err := render.ParseFormat(c.Output.Format); err != nil {
		return fmt.Errorf("%w: invalid output format: %s (valid: calls, verilog, json)", models.ErrConfiguration, c.Output.Format)
	}

	validLevels := map[string]bool{"warn": true, "info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("%w: invalid log level: %s (valid: warn, info, debug, trace, or empty for default)", models.ErrConfiguration, c.Logging.Level)
	}

	return nil
}

// getters maps each dot-notation key to its value.
var getters = map[string]func(*Config) any{
	"generation.count":             func(c *Config) any { return c.Generation.Count },
	"generation.seed":              func(c *Config) any { return c.Generation.Seed },
	"generation.warmup_samples":    func(c *Config) any { return c.Generation.WarmupSamples },
	"generation.anomaly_threshold": func(c *Config) any { return c.Generation.AnomalyThreshold },
	"timing.delay_per_pulse":       func(c *Config) any { return c.Timing.DelayPerPulse },
	"timing.delay_data_set":        func(c *Config) any { return c.Timing.DelayDataSet },
	"output.format":                func(c *Config) any { return c.Output.Format },
	"logging.level":                func(c *Config) any { return c.Logging.Level },
}

// Keys returns every settable key in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(getters))
	for k := range getters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get retrieves a configuration value by dot-notation key.
func (c *Config) Get(key string) (any, bool) {
	get, ok := getters[key]
	if !ok {
		return nil, false
	}
	return get(c), true
}

// Set parses value and assigns it to the dot-notation key. The result is
// validated; on failure the config is left unchanged.
func (c *Config) Set(key, value string) error {
	next := *c
	switch key {
	case "generation.count":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid count: %s", value)
		}
		next.Generation.Count = n
	case "generation.seed":
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid seed: %s (must be a non-negative integer)", value)
		}
		next.Generation.Seed = n
	case "generation.warmup_samples":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid warmup_samples: %s", value)
		}
		next.Generation.WarmupSamples = n
	case "generation.anomaly_threshold":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid threshold: %s (must be a number between 0 and 1)", value)
		}
		next.Generation.AnomalyThreshold = f
	case "timing.delay_per_pulse":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid delay_per_pulse: %s", value)
		}
		next.Timing.DelayPerPulse = n
	case "timing.delay_data_set":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid delay_data_set: %s", value)
		}
		next.Timing.DelayDataSet = n
	case "output.format":
		next.Output.Format = strings.ToLower(value)
	case "logging.level":
		next.Logging.Level = strings.ToLower(value)
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}

	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Unparseable numbers are ignored.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("SERIALTEMP_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Generation.Count = n
		}
	}
	if v := os.Getenv("SERIALTEMP_SEED"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			config.Generation.Seed = n
		}
	}
	if v := os.Getenv("SERIALTEMP_DELAY_PER_PULSE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Timing.DelayPerPulse = n
		}
	}
	if v := os.Getenv("SERIALTEMP_DELAY_DATA_SET"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Timing.DelayDataSet = n
		}
	}
	if v := os.Getenv("SERIALTEMP_FORMAT"); v != "" {
		config.Output.Format = v
	}
	if v := os.Getenv("SERIALTEMP_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	config.normalize()
}

// normalize lower-cases the name-valued settings.
func (c *Config) normalize() {
	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
}
