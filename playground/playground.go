package playground

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/watplay/engine"
	"github.com/wippyai/watplay/errors"
	"github.com/wippyai/watplay/hostenv"
	"github.com/wippyai/watplay/wasm"
	"github.com/wippyai/watplay/wat"
)

const (
	// EntryPoint is the export called after instantiation.
	EntryPoint = "main"

	returnedPrefix = "WASM function returned:"
	noEntryPoint   = `No "main" function exported in WASM module`
	noValue        = "(no value)"
)

var tracer = otel.Tracer("github.com/wippyai/watplay/playground")

// Option customises a Playground.
type Option func(*Playground)

// WithCompiler replaces the compiler selected by Config.Compiler.
func WithCompiler(c wat.Compiler) Option {
	return func(p *Playground) { p.compiler = c }
}

// WithOnChange registers fn to run after either pane changes. It is called
// from the goroutine running Trigger, without locks held.
func WithOnChange(fn func()) Option {
	return func(p *Playground) { p.console.onChange = fn }
}

// Playground evaluates source pairs and holds the two output panes.
// Trigger may be called concurrently; the latest call owns the console.
type Playground struct {
	compiler wat.Compiler
	decoder  *wasm.Decoder
	engine   *engine.Engine
	host     *hostenv.Builder
	console  *Transcript
	ast      string
	cfg      Config
	astMu    sync.Mutex
}

// New creates a Playground.
func New(ctx context.Context, cfg Config, opts ...Option) (*Playground, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Playground{
		cfg:     cfg,
		console: &Transcript{},
		host:    hostenv.NewBuilder(cfg.Host),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.compiler == nil {
		c, err := wat.New(cfg.Compiler)
		if err != nil {
			return nil, err
		}
		p.compiler = c
	}

	p.decoder = wasm.NewDecoder(ctx)
	p.engine = engine.New(cfg.Engine)
	return p, nil
}

// Close releases the decoder and engine. Runs in flight must have returned.
func (p *Playground) Close(ctx context.Context) error {
	return multierr.Combine(
		p.decoder.Close(ctx),
		p.engine.Close(ctx),
	)
}

// Console returns the console pane lines.
func (p *Playground) Console() []string {
	return p.console.Lines()
}

// Transcript exposes the console pane.
func (p *Playground) Transcript() *Transcript {
	return p.console
}

// AST returns the structure pane text.
func (p *Playground) AST() string {
	p.astMu.Lock()
	defer p.astMu.Unlock()
	return p.ast
}

func (p *Playground) setAST(tok Token, text string) {
	p.astMu.Lock()
	if p.cfg.AST.Guard && !p.console.IsCurrent(tok) {
		p.astMu.Unlock()
		return
	}
	p.ast = text
	p.astMu.Unlock()
	p.console.changed()
}

// run carries one evaluation's token and result through the stages.
type run struct {
	p      *Playground
	span   trace.Span
	log    *zap.Logger
	res    *Result
	binary []byte
}

func (r *run) enter(ctx context.Context, s State) (context.Context, trace.Span) {
	r.res.State = s
	return tracer.Start(ctx, "playground."+s.String())
}

// print writes to the console if the run is still current.
func (r *run) print(line string) {
	if !r.p.console.Append(r.res.Token, line) {
		r.log.Debug("dropped stale output", zap.String("line", line))
	}
}

func (r *run) fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	r.res.FailedAt = r.res.State
	r.res.State = StateFailed
	r.res.Err = err
	r.print(err.Error())
}

// Trigger starts a run for src and returns when it finishes. A later Trigger
// supersedes this one: it keeps executing but can no longer print.
func (p *Playground) Trigger(ctx context.Context, src SourcePair) (res *Result) {
	start := time.Now()
	r := &run{
		p:   p,
		res: &Result{Token: p.console.begin(), State: StateStarted},
	}
	r.log = Logger().With(zap.Uint64("token", uint64(r.res.Token)))

	ctx, r.span = tracer.Start(ctx, "playground.Trigger",
		trace.WithAttributes(attribute.Int64("watplay.token", int64(r.res.Token))))
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	defer func() {
		if v := recover(); v != nil {
			r.log.Error("run panicked", zap.Any("panic", v), zap.Stringer("state", r.res.State))
			r.fail(r.span, errors.Panic(phaseOf(r.res.State), v))
		}
		r.res.Duration = time.Since(start)
		res = r.res
		r.span.SetAttributes(attribute.String("watplay.state", r.res.State.String()))
		r.span.End()
		r.log.Debug("run finished",
			zap.Stringer("state", r.res.State),
			zap.Duration("duration", r.res.Duration),
			zap.Error(r.res.Err))
	}()

	p.console.Clear(r.res.Token)
	r.evaluate(ctx, src)
	return r.res
}

func (r *run) evaluate(ctx context.Context, src SourcePair) {
	if !r.compile(ctx, src.WAT) {
		return
	}
	if !r.decode(ctx) {
		return
	}
	env, ok := r.buildEnv(ctx, src.Host)
	if !ok {
		return
	}
	inst, ok := r.instantiate(ctx, env)
	if !ok {
		return
	}
	defer func() {
		if err := inst.Close(context.WithoutCancel(ctx)); err != nil {
			r.log.Warn("close instance", zap.Error(err))
		}
	}()
	r.call(ctx, inst)
}

func (r *run) compile(ctx context.Context, source string) bool {
	ctx, span := r.enter(ctx, StateCompiling)
	defer span.End()

	bin, err := r.p.compiler.Compile(ctx, source)
	if err != nil {
		r.fail(span, err)
		return false
	}
	r.binary = bin
	span.SetAttributes(attribute.Int("watplay.binary_size", len(bin)))
	return true
}

func (r *run) decode(ctx context.Context) bool {
	ctx, span := r.enter(ctx, StateDecoding)
	defer span.End()

	mod, err := r.p.decoder.Decode(ctx, r.binary)
	if err != nil {
		r.fail(span, err)
		return false
	}
	text, err := wasm.Render(mod, r.p.cfg.AST.Format, r.p.cfg.AST.Color)
	if err != nil {
		r.fail(span, err)
		return false
	}
	r.p.setAST(r.res.Token, text)
	return true
}

func (r *run) buildEnv(ctx context.Context, source string) (*hostenv.Env, bool) {
	ctx, span := r.enter(ctx, StateBuildingEnv)
	defer span.End()

	env, err := r.p.host.Build(ctx, source, runConsole{t: r.p.console, tok: r.res.Token})
	if err != nil {
		r.fail(span, err)
		return nil, false
	}
	span.SetAttributes(attribute.StringSlice("watplay.bindings", env.Names()))
	return env, true
}

func (r *run) instantiate(ctx context.Context, env *hostenv.Env) (*engine.Instance, bool) {
	ctx, span := r.enter(ctx, StateInstantiating)
	defer span.End()

	inst, err := r.p.engine.Instantiate(ctx, r.binary, env)
	if err != nil {
		r.fail(span, err)
		return nil, false
	}
	return inst, true
}

func (r *run) call(ctx context.Context, inst *engine.Instance) {
	ctx, span := r.enter(ctx, StateRunning)
	defer span.End()

	fn, ok := inst.Func(EntryPoint)
	if !ok {
		r.print(noEntryPoint)
		r.res.State = StateDone
		return
	}

	out, err := fn.Call(ctx)
	if err != nil {
		r.fail(span, err)
		return
	}

	vals := make([]string, len(out))
	for i, v := range out {
		vals[i] = v.String()
	}
	r.res.Returned = vals
	r.print(returnedLine(vals))
	r.res.State = StateDone
}

func returnedLine(vals []string) string {
	if len(vals) == 0 {
		return returnedPrefix + " " + noValue
	}
	return returnedPrefix + " " + strings.Join(vals, " ")
}

func phaseOf(s State) errors.Phase {
	switch s {
	case StateCompiling:
		return errors.PhaseCompile
	case StateDecoding:
		return errors.PhaseDecode
	case StateBuildingEnv:
		return errors.PhaseHost
	case StateInstantiating:
		return errors.PhaseInstantiate
	default:
		return errors.PhaseRuntime
	}
}

// String summarises the result for logs and batch output.
func (r *Result) String() string {
	if r.Err != nil {
		return fmt.Sprintf("run %d %s at %s in %s: %v", r.Token, r.State, r.FailedAt, r.Duration, r.Err)
	}
	return fmt.Sprintf("run %d %s in %s", r.Token, r.State, r.Duration)
}
