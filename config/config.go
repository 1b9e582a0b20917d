// Package config loads watplay settings from YAML and builds the logger.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/watplay/errors"
	"github.com/wippyai/watplay/playground"
)

// Log configures the zap logger.
type Log struct {
	// Level is a zap level name: debug, info, warn, error.
	Level string `yaml:"level"`
	// File receives log output. Empty means stderr.
	File        string `yaml:"file"`
	Development bool   `yaml:"development"`
}

// Config is the root of the configuration file.
type Config struct {
	Log               Log `yaml:"log"`
	playground.Config `yaml:",inline"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Config: playground.DefaultConfig(),
		Log:    Log{Level: "info"},
	}
}

// Load reads path over the defaults. Keys absent from the file keep their
// default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Path(path).
			Detail("read config").
			Cause(err).
			Build()
	}
	if err := Parse(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Parse decodes YAML into cfg, rejecting unknown keys, and validates the
// result.
func Parse(data []byte, cfg *Config) error {
	if err := yaml.UnmarshalWithOptions(data, cfg, yaml.Strict()); err != nil {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Detail("parse config").
			Cause(fmt.Errorf("%s", yaml.FormatError(err, false, false))).
			Build()
	}
	return cfg.Validate()
}

// Validate checks every section.
func (c Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("unknown log level %q", c.Log.Level))
	}
	return c.Config.Validate()
}

// Marshal renders c as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Logger builds a zap logger from the log section.
func (l Log) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(l.Level)
	if err != nil {
		return nil, err
	}

	zc := zap.NewProductionConfig()
	if l.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	if l.File != "" {
		zc.OutputPaths = []string{l.File}
		zc.ErrorOutputPaths = []string{l.File}
	}
	return zc.Build()
}
