package engine

import (
	"bufio"
	"context"
	"strings"

	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"

	"github.com/wippyai/watplay/errors"
)

// Config holds configuration for the execution engine
type Config struct {
	// MemoryLimitPages sets the maximum memory per instance in pages (64KB each).
	// 0 means default (65536 pages = 4GB).
	MemoryLimitPages uint32 `yaml:"memory_limit_pages"`

	// CloseOnContextDone makes running guest code observe context
	// cancellation, at some cost in call overhead.
	CloseOnContextDone bool `yaml:"close_on_context_done"`

	// Interpreter forces wazero's interpreter instead of the compiler.
	Interpreter bool `yaml:"interpreter"`
}

// Engine instantiates modules. It is safe for concurrent use.
type Engine struct {
	cache wazero.CompilationCache
	cfg   Config
}

// New creates an engine.
func New(cfg Config) *Engine {
	return &Engine{
		cfg:   cfg,
		cache: wazero.NewCompilationCache(),
	}
}

// Close releases the compilation cache. Instances must be closed first.
func (e *Engine) Close(ctx context.Context) error {
	return e.cache.Close(ctx)
}

func (e *Engine) runtimeConfig() wazero.RuntimeConfig {
	cfg := wazero.NewRuntimeConfig()
	if e.cfg.Interpreter {
		cfg = wazero.NewRuntimeConfigInterpreter()
	}
	cfg = cfg.WithCompilationCache(e.cache)
	if e.cfg.MemoryLimitPages > 0 {
		cfg = cfg.WithMemoryLimitPages(e.cfg.MemoryLimitPages)
	}
	if e.cfg.CloseOnContextDone {
		cfg = cfg.WithCloseOnContextDone(true)
	}
	return cfg
}

// Instantiate compiles bin in a fresh runtime, links it against imports and
// instantiates it. Start functions named by WASI convention are not run; a
// start section is.
func (e *Engine) Instantiate(ctx context.Context, bin []byte, imports Imports) (*Instance, error) {
	rt := wazero.NewRuntimeWithConfig(ctx, e.runtimeConfig())

	compiled, err := rt.CompileModule(ctx, bin)
	if err != nil {
		rt.Close(ctx)
		return nil, errors.Instantiation(firstLine(err))
	}

	if err := bindImports(ctx, rt, compiled, imports); err != nil {
		rt.Close(ctx)
		return nil, err
	}

	modCfg := wazero.NewModuleConfig().WithName("").WithStartFunctions()
	mod, err := rt.InstantiateModule(ctx, compiled, modCfg)
	if err != nil {
		rt.Close(ctx)
		return nil, errors.Instantiation(firstLine(err))
	}

	Logger().Debug("module instantiated",
		zap.Int("size", len(bin)),
		zap.Int("exports", len(compiled.ExportedFunctions())))

	return &Instance{runtime: rt, module: mod}, nil
}

// lineError keeps only the first line of a wazero error; the rest is a wasm
// stack trace that does not fit a console line.
type lineError struct {
	err error
	msg string
}

func (e *lineError) Error() string { return e.msg }
func (e *lineError) Unwrap() error { return e.err }

func firstLine(err error) error {
	msg := err.Error()
	sc := bufio.NewScanner(strings.NewReader(msg))
	if sc.Scan() && sc.Text() != msg {
		return &lineError{err: err, msg: sc.Text()}
	}
	return err
}
