package wat

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/watplay/errors"
)

// Backend names a compilation engine.
type Backend string

const (
	BackendAuto     Backend = "auto"
	BackendWasmtime Backend = "wasmtime"
	BackendWabt     Backend = "wabt"
)

// Compiler turns WAT source into a wasm binary.
type Compiler interface {
	Compile(ctx context.Context, source string) ([]byte, error)
}

// CompilerFunc adapts a function to the Compiler interface.
type CompilerFunc func(ctx context.Context, source string) ([]byte, error)

// Compile calls f.
func (f CompilerFunc) Compile(ctx context.Context, source string) ([]byte, error) {
	return f(ctx, source)
}

// Config selects and configures the compilation backend.
type Config struct {
	// Backend is one of auto, wasmtime or wabt. Empty means auto.
	Backend Backend `yaml:"backend"`

	// WabtPath is the wat2wasm executable. Empty means "wat2wasm" on PATH.
	WabtPath string `yaml:"wabt_path"`

	// WabtFlags are extra flags passed to wat2wasm, e.g. --enable-threads.
	WabtFlags []string `yaml:"wabt_flags,omitempty"`
}

// Validate reports configuration errors without touching the filesystem.
func (c Config) Validate() error {
	switch c.Backend {
	case "", BackendAuto, BackendWabt:
		return nil
	case BackendWasmtime:
		if !haveWasmtime {
			return errors.Unsupported(errors.PhaseConfig, "wasmtime backend requires a cgo build")
		}
		return nil
	default:
		return errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("unknown compiler backend %q", c.Backend))
	}
}

// New returns the compiler selected by cfg.
func New(cfg Config) (Compiler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	backend := cfg.Backend
	if backend == "" || backend == BackendAuto {
		backend = BackendWabt
		if haveWasmtime {
			backend = BackendWasmtime
		}
	}

	var c Compiler
	if backend == BackendWasmtime {
		c = newWasmtime()
	} else {
		c = &WabtCompiler{Path: cfg.WabtPath, Flags: cfg.WabtFlags}
	}
	Logger().Debug("compiler selected", zap.String("backend", string(backend)))
	return wrap(c), nil
}

// wrap normalises backend failures into compile-phase errors.
func wrap(c Compiler) Compiler {
	return CompilerFunc(func(ctx context.Context, source string) ([]byte, error) {
		if strings.TrimSpace(source) == "" {
			return nil, errors.CompileFailed(errors.InvalidInput(errors.PhaseCompile, "empty source"))
		}
		if err := ctx.Err(); err != nil {
			return nil, errors.CompileFailed(err)
		}
		bin, err := c.Compile(ctx, source)
		if err != nil {
			if errors.KindOf(err) == errors.KindCompile {
				return nil, err
			}
			return nil, errors.CompileFailed(err)
		}
		return bin, nil
	})
}
