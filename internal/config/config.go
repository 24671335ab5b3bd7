// Package config handles loading and validating bridge configuration from YAML files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	App       AppConfig       `yaml:"app"`
	Bridge    BridgeConfig    `yaml:"bridge"`
	API       APIConfig       `yaml:"api"`
	Tracing   TracingConfig   `yaml:"tracing"`
	Profiling ProfilingConfig `yaml:"profiling"`
	Demo      DemoConfig      `yaml:"demo"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Env      string `yaml:"env"`
	LogLevel string `yaml:"logLevel"`
	LogFile  string `yaml:"logFile"`
}

// BridgeConfig sizes the session table.
type BridgeConfig struct {
	MaxSessions  int `yaml:"maxSessions"`
	TickCapacity int `yaml:"tickCapacity"`

	// KeepReadFlagOnSend leaves the mailbox read flag set when a new
	// response is sent, so it is reported as "NONE" until reset.
	KeepReadFlagOnSend bool `yaml:"keepReadFlagOnSend"`
}

// APIConfig holds REST API server settings.
type APIConfig struct {
	ListenAddress     string        `yaml:"listenAddress"`
	ReadHeaderTimeout time.Duration `yaml:"readHeaderTimeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdownTimeout"`
	AllowedOrigins    []string      `yaml:"allowedOrigins"`
}

// TracingConfig configures the jaeger exporter.
type TracingConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"serviceName"`
	AgentHost   string `yaml:"agentHost"`
	AgentPort   int    `yaml:"agentPort"`
}

// ProfilingConfig configures continuous profiling.
type ProfilingConfig struct {
	Enabled         bool   `yaml:"enabled"`
	ServerAddress   string `yaml:"serverAddress"`
	ApplicationName string `yaml:"applicationName"`
}

// DemoConfig seeds a session and simulates quotes when no terminal is attached.
type DemoConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Account        int64  `yaml:"account"`
	Handle         int64  `yaml:"handle"`
	Symbol         string `yaml:"symbol"`
	TickIntervalMs int    `yaml:"tickIntervalMs"`
}

// TickInterval returns the demo quote interval.
func (d DemoConfig) TickInterval() time.Duration {
	return time.Duration(d.TickIntervalMs) * time.Millisecond
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads path when it is set and falls back to Default otherwise.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// SaveToFile writes the configuration as YAML, creating parent directories.
func (c *Config) SaveToFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config YAML: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file %s: %w", path, err)
	}
	return nil
}

// setDefaults applies sensible defaults for optional fields.
func (c *Config) setDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.App.LogFile == "" {
		c.App.LogFile = "logs/mtbridge.log"
	}
	if c.Bridge.MaxSessions == 0 {
		c.Bridge.MaxSessions = 50
	}
	if c.Bridge.TickCapacity == 0 {
		c.Bridge.TickCapacity = 100
	}
	if c.API.ListenAddress == "" {
		c.API.ListenAddress = ":3000"
	}
	if c.API.ReadHeaderTimeout == 0 {
		c.API.ReadHeaderTimeout = 10 * time.Second
	}
	if c.API.ShutdownTimeout == 0 {
		c.API.ShutdownTimeout = 5 * time.Second
	}
	if len(c.API.AllowedOrigins) == 0 {
		c.API.AllowedOrigins = []string{"*"}
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "mtbridge"
	}
	if c.Tracing.AgentHost == "" {
		c.Tracing.AgentHost = "localhost"
	}
	if c.Tracing.AgentPort == 0 {
		c.Tracing.AgentPort = 6831
	}
	if c.Profiling.ApplicationName == "" {
		c.Profiling.ApplicationName = "mtbridge"
	}
	if c.Profiling.ServerAddress == "" {
		c.Profiling.ServerAddress = "http://localhost:4040"
	}
	if c.Demo.Account == 0 {
		c.Demo.Account = 25289974
	}
	if c.Demo.Handle == 0 {
		c.Demo.Handle = 132852
	}
	if c.Demo.Symbol == "" {
		c.Demo.Symbol = "EURUSD"
	}
	if c.Demo.TickIntervalMs == 0 {
		c.Demo.TickIntervalMs = 500
	}
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	switch c.App.Env {
	case "dev", "staging", "prod":
	default:
		errs = append(errs, fmt.Errorf("app.env %q must be one of dev, staging, prod", c.App.Env))
	}
	switch c.App.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("app.logLevel %q must be one of debug, info, warn, error", c.App.LogLevel))
	}
	if c.Bridge.MaxSessions < 1 {
		errs = append(errs, fmt.Errorf("bridge.maxSessions must be positive, got %d", c.Bridge.MaxSessions))
	}
	if c.Bridge.TickCapacity < 1 {
		errs = append(errs, fmt.Errorf("bridge.tickCapacity must be positive, got %d", c.Bridge.TickCapacity))
	}
	if c.API.ShutdownTimeout < 0 || c.API.ReadHeaderTimeout < 0 {
		errs = append(errs, errors.New("api timeouts must not be negative"))
	}
	if c.Tracing.Enabled && (c.Tracing.AgentPort < 1 || c.Tracing.AgentPort > 65535) {
		errs = append(errs, fmt.Errorf("tracing.agentPort %d out of range", c.Tracing.AgentPort))
	}
	if c.Demo.Enabled && c.Demo.TickIntervalMs < 1 {
		errs = append(errs, fmt.Errorf("demo.tickIntervalMs must be positive, got %d", c.Demo.TickIntervalMs))
	}
	return errors.Join(errs...)
}
