package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Timer   TimerConfig   `toml:"timer"`
	Loop    LoopConfig    `toml:"loop"`
	Roster  RosterConfig  `toml:"roster"`
	Logging LoggingConfig `toml:"logging"`
}

type TimerConfig struct {
	Seconds   float64 `toml:"seconds"`
	Repeating bool    `toml:"repeating"`
}

type LoopConfig struct {
	TickRate time.Duration `toml:"tick_rate"`
	MaxTicks uint64        `toml:"max_ticks"` // 0 = run until interrupted
}

type RosterConfig struct {
	Path string `toml:"path"` // YAML file; empty = built-in names
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// Load reads a TOML file over the defaults. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Default() *Config {
	return &Config{
		Timer: TimerConfig{
			Seconds:   2.0,
			Repeating: true,
		},
		Loop: LoopConfig{
			TickRate: 16 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate rejects values the app cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Timer.Seconds <= 0 {
		errs = append(errs, fmt.Errorf("timer.seconds must be positive, got %v", c.Timer.Seconds))
	}
	if c.Loop.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("loop.tick_rate must be positive, got %s", c.Loop.TickRate))
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be \"json\" or \"console\", got %q", c.Logging.Format))
	}
	return errors.Join(errs...)
}

// Interval is the timer duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Timer.Seconds * float64(time.Second))
}
