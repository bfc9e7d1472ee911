// Package config loads replay tool settings with viper: arena thresholds,
// logging and replay concurrency, from a YAML/TOML/JSON file and GESTURE_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/phanxgames/gesture"
)

// Config is the root configuration of the replay tool.
type Config struct {
	Arena   gesture.Config `mapstructure:"arena" yaml:"arena"`
	Logging LoggingConfig  `mapstructure:"logging" yaml:"logging"`
	Replay  ReplayConfig   `mapstructure:"replay" yaml:"replay"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// ReplayConfig holds replay runner settings.
type ReplayConfig struct {
	// Parallel caps how many scripts replay at once.
	Parallel int `mapstructure:"parallel" yaml:"parallel"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Arena:   gesture.DefaultConfig(),
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Replay:  ReplayConfig{Parallel: 4},
	}
}

// Manager handles configuration loading, watching, and reloading.
type Manager struct {
	config    *Config
	viper     *viper.Viper
	mu        sync.RWMutex
	callbacks []func(*Config)
	watching  bool
}

// NewManager creates a configuration manager. An empty path searches for
// gesture.{yaml,toml,json} in the working directory.
func NewManager(path string) *Manager {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("gesture")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("GESTURE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Manager{viper: v, config: DefaultConfig()}
}

// Load reads the config file, if any, and the environment.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.setDefaults()
	if err := m.viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return m.reload()
}

// reload must be called with the lock held for write.
func (m *Manager) reload() error {
	cfg := &Config{}
	if err := m.viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validateConfig(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	m.config = cfg
	return nil
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// File returns the config file in use, or "" when running on defaults.
func (m *Manager) File() string {
	return m.viper.ConfigFileUsed()
}

// Watch starts watching the config file for changes and reloads automatically.
func (m *Manager) Watch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.watching || m.viper.ConfigFileUsed() == "" {
		return
	}

	m.viper.OnConfigChange(func(_ fsnotify.Event) {
		m.mu.Lock()
		if err := m.reload(); err != nil {
			m.mu.Unlock()
			return
		}
		m.notifyCallbacksLocked()
	})
	m.viper.WatchConfig()
	m.watching = true
}

// notifyCallbacksLocked copies callbacks and config, releases lock, then notifies.
// Must be called with m.mu held for write.
func (m *Manager) notifyCallbacksLocked() {
	cfg := m.config
	callbacks := make([]func(*Config), len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.mu.Unlock()

	for _, cb := range callbacks {
		cb(cfg)
	}
}

// OnConfigChange registers a callback function to be called when config changes.
func (m *Manager) OnConfigChange(cb func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, cb)
}

func (m *Manager) setDefaults() {
	d := DefaultConfig()
	m.viper.SetDefault("arena.fling_velocity_threshold", d.Arena.FlingVelocityThreshold)
	m.viper.SetDefault("arena.fling_duration", d.Arena.FlingDuration)
	m.viper.SetDefault("arena.pan_min_distance", d.Arena.PanMinDistance)
	m.viper.SetDefault("arena.tap_max_distance", d.Arena.TapMaxDistance)
	m.viper.SetDefault("arena.tap_max_duration", d.Arena.TapMaxDuration)
	m.viper.SetDefault("arena.long_press_min_duration", d.Arena.LongPressMinDuration)
	m.viper.SetDefault("arena.long_press_max_distance", d.Arena.LongPressMaxDistance)
	m.viper.SetDefault("arena.velocity_window", d.Arena.VelocityWindow)

	m.viper.SetDefault("logging.level", d.Logging.Level)
	m.viper.SetDefault("logging.format", d.Logging.Format)

	m.viper.SetDefault("replay.parallel", d.Replay.Parallel)
}

func validateConfig(cfg *Config) error {
	var errs []error
	if _, err := cfg.Arena.Validate(); err != nil {
		errs = append(errs, err)
	}
	switch cfg.Logging.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be console or json, got %q", cfg.Logging.Format))
	}
	if cfg.Replay.Parallel < 1 {
		errs = append(errs, fmt.Errorf("replay.parallel must be at least 1, got %d", cfg.Replay.Parallel))
	}
	return errors.Join(errs...)
}
