// Package config loads runtime settings for the beepboop command.
//
// Values come from, in increasing precedence: field defaults, the process environment
// (after loading a .env file from the working directory when one exists), and an
// optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/comalice/beepboop"
	"github.com/comalice/beepboop/internal/logger"
)

// Config holds the runtime settings.
type Config struct {
	LogLevel      string `env:"BEEPBOOP_LOG_LEVEL" envDefault:"info" yaml:"log_level"`
	MaxMicrosteps int    `env:"BEEPBOOP_MAX_MICROSTEPS" envDefault:"1000" yaml:"max_microsteps"`
	Addr          string `env:"BEEPBOOP_ADDR" envDefault:":8080" yaml:"addr"`
	ValidateModel bool   `env:"BEEPBOOP_VALIDATE_MODEL" envDefault:"false" yaml:"validate_model"`
}

var dotenvLoaded sync.Once

// Load reads the configuration. path names an optional YAML file; an empty path skips
// it. The result is validated.
func Load(path string) (Config, error) {
	dotenvLoaded.Do(func() {
		// A missing .env is fine.
		_ = godotenv.Load()
	})

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	if path != "" {
		if err := cfg.overlay(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) overlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Join(ErrReadingFile, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.Join(ErrReadingFile, fmt.Errorf("%s: %w", path, err))
	}
	return nil
}

// Validate reports the first unusable setting.
func (c Config) Validate() error {
	if _, ok := logger.ParseLogLevel(c.LogLevel); !ok {
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.LogLevel)
	}
	if c.MaxMicrosteps < 1 {
		return fmt.Errorf("%w: max microsteps must be positive, got %d", ErrInvalidConfig, c.MaxMicrosteps)
	}
	if c.Addr == "" {
		return fmt.Errorf("%w: listen address is empty", ErrInvalidConfig)
	}
	return nil
}

// Logger builds a logger at the configured level.
func (c Config) Logger() *zap.SugaredLogger {
	level, _ := logger.ParseLogLevel(c.LogLevel)
	return logger.New(level)
}

// ActorOptions translates the settings into actor options.
func (c Config) ActorOptions() []beepboop.Option {
	opts := []beepboop.Option{beepboop.WithMaxMicrosteps(c.MaxMicrosteps)}
	if c.ValidateModel {
		opts = append(opts, beepboop.WithModelValidation())
	}
	return opts
}
