package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the top-level simulator configuration.
type Config struct {
	Simulation SimulationConfig `mapstructure:"simulation"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
	Scenario   ScenarioConfig   `mapstructure:"scenario"`
}

type SimulationConfig struct {
	MaxSteps     int    `mapstructure:"max_steps"`
	TimeQuantum  int    `mapstructure:"time_quantum"`
	DefaultBurst int    `mapstructure:"default_burst"`
	Algorithm    string `mapstructure:"algorithm"`
	Strategy     string `mapstructure:"strategy"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	OutputFile  string `mapstructure:"output_file"`
	ServiceName string `mapstructure:"service_name"`
}

type ScenarioConfig struct {
	URL     string `mapstructure:"url"`
	Builtin int    `mapstructure:"builtin"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("simulation.max_steps", 1000)
	v.SetDefault("simulation.time_quantum", 2)
	v.SetDefault("simulation.default_burst", 10)
	v.SetDefault("simulation.algorithm", "fcfs")
	v.SetDefault("simulation.strategy", "termination")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.output_file", "")
	v.SetDefault("tracing.service_name", "deadsched")

	v.SetDefault("scenario.url", "")
	v.SetDefault("scenario.builtin", 1)
}

// Load reads configuration from file, environment (DEADSCHED_ prefix) and defaults. A missing
// config file is not an error when no explicit path is given.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetEnvPrefix("DEADSCHED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("deadsched")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".deadsched"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Simulation.MaxSteps <= 0 {
		return fmt.Errorf("simulation.max_steps must be positive, got %d", c.Simulation.MaxSteps)
	}
	if c.Simulation.TimeQuantum <= 0 {
		return fmt.Errorf("simulation.time_quantum must be positive, got %d", c.Simulation.TimeQuantum)
	}
	if c.Simulation.DefaultBurst <= 0 {
		return fmt.Errorf("simulation.default_burst must be positive, got %d", c.Simulation.DefaultBurst)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	if c.Scenario.URL == "" && c.Scenario.Builtin <= 0 {
		return fmt.Errorf("scenario.builtin must be positive when no scenario.url is set")
	}
	return nil
}
