package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/Veraticus/splice/pkg/types"
)

// Config holds all configuration for splice
type Config struct {
	// Region delimiters
	Start string `yaml:"-"`
	Stop  string `yaml:"-"`

	// Behavior flags
	Repeated   bool `yaml:"repeated" env:"SPLICE_REPEATED"`
	IgnoreCase bool `yaml:"ignore_case" env:"SPLICE_IGNORE_CASE"`
	Follow     bool `yaml:"follow"`
	Stats      bool `yaml:"stats" env:"SPLICE_STATS"`

	// Named start/stop pairs selectable with --profile
	Profiles map[string]Profile `yaml:"profiles"`

	// Input selection; at most one of these is set
	Input   string   `yaml:"-"`
	Command []string `yaml:"-"`

	start *types.Pattern
	stop  *types.Pattern
}

// Profile is a reusable start/stop pair
type Profile struct {
	Start       string `yaml:"start"`
	Stop        string `yaml:"stop"`
	Description string `yaml:"description"`
	Repeated    *bool  `yaml:"repeated"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Profiles: map[string]Profile{},
	}
}

// Load loads configuration from file and environment. Patterns and input
// come from the command line and are resolved by the caller.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	// Try to load from config file
	configPath := getConfigPath()
	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil && !os.IsNotExist(err) {
			return nil, &types.Error{Kind: types.KindConfig, Subject: configPath, Err: err}
		}
		if Debug() {
			fmt.Fprintf(os.Stderr, "splice: config file: %s\n", configPath)
		}
	}

	// Override with environment variables
	if err := loadFromEnv(cfg); err != nil {
		return nil, &types.Error{Kind: types.KindConfig, Err: err}
	}

	return cfg, nil
}

// getConfigPath returns the config file path
func getConfigPath() string {
	// Check for explicit config path
	if path := os.Getenv("SPLICE_CONFIG"); path != "" {
		return path
	}

	// Check XDG config directory
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "splice", "config.yaml")
	}

	// Fall back to home directory
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "splice", "config.yaml")
	}

	return ""
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(cfg *Config, path string) error {
	// #nosec G304 - The config file path comes from trusted sources (env var or standard locations)
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// loadFromEnv loads configuration from environment variables
func loadFromEnv(cfg *Config) error {
	for _, v := range []struct {
		name   string
		target *bool
	}{
		{"SPLICE_REPEATED", &cfg.Repeated},
		{"SPLICE_IGNORE_CASE", &cfg.IgnoreCase},
		{"SPLICE_STATS", &cfg.Stats},
	} {
		raw := os.Getenv(v.name)
		if raw == "" {
			continue
		}
		b, err := parseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid %s value: %q (use true/false)", v.name, raw)
		}
		*v.target = b
	}

	return nil
}

func parseBool(s string) (bool, error) {
	switch s {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	default:
		return false, fmt.Errorf("not a boolean: %q", s)
	}
}

// Debug reports whether SPLICE_DEBUG asks for diagnostic output
func Debug() bool {
	v := os.Getenv("SPLICE_DEBUG")
	return v == "1" || v == "true"
}

// ApplyProfile copies the named profile's patterns into cfg. A profile's
// repeated setting overrides the file and environment, not the flags.
func (c *Config) ApplyProfile(name string) error {
	p, ok := c.Profiles[name]
	if !ok {
		return types.ConfigError("unknown profile %q (available: %v)", name, c.ProfileNames())
	}
	if p.Start == "" || p.Stop == "" {
		return types.ConfigError("profile %q must define both start and stop", name)
	}
	c.Start = p.Start
	c.Stop = p.Stop
	if p.Repeated != nil {
		c.Repeated = *p.Repeated
	}
	return nil
}

// ProfileNames returns the configured profile names in sorted order
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Compile compiles the start and stop patterns
func (c *Config) Compile() error {
	start, err := types.CompilePattern("start", c.Start, c.IgnoreCase)
	if err != nil {
		return err
	}
	stop, err := types.CompilePattern("stop", c.Stop, c.IgnoreCase)
	if err != nil {
		return err
	}
	c.start, c.stop = start, stop
	return nil
}

// StartPattern returns the compiled start pattern
func (c *Config) StartPattern() *types.Pattern {
	return c.start
}

// StopPattern returns the compiled stop pattern
func (c *Config) StopPattern() *types.Pattern {
	return c.stop
}

// Validate validates the configuration
func Validate(cfg *Config) error {
	if cfg.start == nil || cfg.stop == nil {
		return types.ConfigError("start and stop patterns must be compiled before use")
	}

	if cfg.Input != "" && len(cfg.Command) > 0 {
		return types.ConfigError("an input file and a command cannot both be given")
	}

	if cfg.Follow && len(cfg.Command) > 0 {
		return types.ConfigError("--follow cannot be used with a command")
	}

	if cfg.Follow && (cfg.Input == "" || cfg.Input == "-") {
		return types.ConfigError("--follow requires an input file")
	}

	return nil
}
