package playground

import (
	"time"

	"github.com/wippyai/watplay/engine"
	"github.com/wippyai/watplay/errors"
	"github.com/wippyai/watplay/hostenv"
	"github.com/wippyai/watplay/wasm"
	"github.com/wippyai/watplay/wat"
)

// ASTConfig controls the structure pane.
type ASTConfig struct {
	Format wasm.Format `yaml:"format"`
	Color  bool        `yaml:"color"`
	// Guard drops structure pane writes from superseded runs. Off by
	// default: the pane reflects whichever run decoded last.
	Guard bool `yaml:"guard"`
}

// Config configures a Playground.
type Config struct {
	Compiler wat.Config     `yaml:"compiler"`
	Host     hostenv.Config `yaml:"host"`
	AST      ASTConfig      `yaml:"ast"`
	Engine   engine.Config  `yaml:"engine"`
	// Timeout bounds a single run. Zero leaves runs unbounded.
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		Compiler: wat.Config{Backend: wat.BackendAuto},
		Host:     hostenv.Config{Binding: hostenv.DefaultBinding},
		AST:      ASTConfig{Format: wasm.FormatJSON},
		Engine:   engine.Config{CloseOnContextDone: true},
	}
}

// Validate checks cfg without creating anything.
func (c Config) Validate() error {
	if err := c.Compiler.Validate(); err != nil {
		return err
	}
	if !c.AST.Format.Valid() {
		return errors.InvalidInput(errors.PhaseConfig, "unknown ast format "+string(c.AST.Format))
	}
	if c.Timeout < 0 {
		return errors.InvalidInput(errors.PhaseConfig, "timeout must not be negative")
	}
	return nil
}
