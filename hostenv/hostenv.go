package hostenv

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
	"go.starlark.net/syntax"

	"github.com/wippyai/watplay/engine"
	"github.com/wippyai/watplay/errors"
)

// DefaultBinding is the global the host script must define, and the wasm
// import namespace it serves.
const DefaultBinding = "env"

// Filename appears in positions of host script errors.
const Filename = "host.star"

// Config controls host script evaluation.
type Config struct {
	// Binding is the global holding the bindings. Empty means "env".
	Binding string `yaml:"binding"`

	// MaxSteps bounds Starlark execution steps per run, covering both the
	// script body and every host call. 0 means unlimited.
	MaxSteps uint64 `yaml:"max_steps"`
}

func (c Config) binding() string {
	if c.Binding == "" {
		return DefaultBinding
	}
	return c.Binding
}

// Console receives host output.
type Console interface {
	Log(msg string)
	Clear()
}

var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
	Recursion:       true,
}

// Builder evaluates host scripts.
type Builder struct {
	cfg Config
}

// NewBuilder creates a Builder.
func NewBuilder(cfg Config) *Builder {
	return &Builder{cfg: cfg}
}

// Build executes source and extracts its bindings. Output produced while the
// script runs, and later during host calls, goes to console.
func (b *Builder) Build(ctx context.Context, source string, console Console) (*Env, error) {
	thread := &starlark.Thread{
		Name:  "host",
		Print: func(_ *starlark.Thread, msg string) { console.Log(msg) },
		Load: func(_ *starlark.Thread, module string) (starlark.StringDict, error) {
			return nil, fmt.Errorf("load(%q): modules are not available", module)
		},
	}
	if b.cfg.MaxSteps > 0 {
		thread.SetMaxExecutionSteps(b.cfg.MaxSteps)
	}

	stop := context.AfterFunc(ctx, func() { thread.Cancel(context.Cause(ctx).Error()) })
	defer stop()

	globals, err := starlark.ExecFileOptions(fileOptions, thread, Filename, source, predeclared(console))
	if err != nil {
		return nil, errors.HostEvalFailed(describe(err))
	}

	name := b.cfg.binding()
	v, ok := globals[name]
	if !ok || v == starlark.None {
		return nil, errors.MissingBindings(name)
	}

	funcs, err := members(name, v)
	if err != nil {
		return nil, err
	}

	return &Env{name: name, thread: thread, funcs: funcs}, nil
}

func members(name string, v starlark.Value) (map[string]starlark.Value, error) {
	funcs := make(map[string]starlark.Value)
	switch v := v.(type) {
	case *starlark.Dict:
		for _, item := range v.Items() {
			key, ok := starlark.AsString(item[0])
			if !ok {
				return nil, errors.New(errors.PhaseHost, errors.KindInvalidBindings).
					Path(name).
					Detail("keys must be strings, got %s", item[0].Type()).
					Build()
			}
			funcs[key] = item[1]
		}
	case starlark.HasAttrs:
		for _, attr := range v.AttrNames() {
			member, err := v.Attr(attr)
			if err != nil || member == nil {
				continue
			}
			funcs[attr] = member
		}
	default:
		return nil, errors.InvalidBindings(name, v.Type())
	}
	return funcs, nil
}

func predeclared(console Console) starlark.StringDict {
	log := starlark.NewBuiltin("log", func(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		if len(kwargs) > 0 {
			return nil, fmt.Errorf("log: unexpected keyword arguments")
		}
		parts := make([]string, len(args))
		for i, a := range args {
			if s, ok := starlark.AsString(a); ok {
				parts[i] = s
			} else {
				parts[i] = a.String()
			}
		}
		console.Log(strings.Join(parts, " "))
		return starlark.None, nil
	})
	clearFn := starlark.NewBuiltin("clear", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 0); err != nil {
			return nil, err
		}
		console.Clear()
		return starlark.None, nil
	})

	return starlark.StringDict{
		"console": starlarkstruct.FromStringDict(starlark.String("console"), starlark.StringDict{
			"log":   log,
			"clear": clearFn,
		}),
		"struct": starlark.NewBuiltin("struct", starlarkstruct.Make),
	}
}

// Env is the evaluated bindings object. It implements engine.Imports.
type Env struct {
	thread *starlark.Thread
	funcs  map[string]starlark.Value
	name   string
}

var _ engine.Imports = (*Env)(nil)

// Namespace returns the binding name, used as the wasm import module.
func (e *Env) Namespace() string { return e.name }

// Names lists the bound members, sorted.
func (e *Env) Names() []string {
	names := make([]string, 0, len(e.funcs))
	for name := range e.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns a host function for a callable member. Non-callable members
// are reported as absent, which surfaces as a missing import.
func (e *Env) Lookup(name string) (engine.HostFunc, bool) {
	v, ok := e.funcs[name]
	if !ok {
		return nil, false
	}
	fn, ok := v.(starlark.Callable)
	if !ok {
		return nil, false
	}
	path := []string{e.name, name}

	return func(ctx context.Context, args []engine.Value, results []apiValueType) ([]engine.Value, error) {
		stop := context.AfterFunc(ctx, func() { e.thread.Cancel(context.Cause(ctx).Error()) })
		defer stop()

		sargs := make(starlark.Tuple, len(args))
		for i, a := range args {
			sargs[i] = toStarlark(a)
		}
		ret, err := starlark.Call(e.thread, fn, sargs, nil)
		if err != nil {
			return nil, errors.New(errors.PhaseHost, errors.KindHostEval).
				Path(path...).
				Detail("host function failed").
				Cause(describe(err)).
				Build()
		}
		return fromStarlark(ret, results, path)
	}, true
}

// positionedError renders a Starlark failure on one line with its innermost
// source position.
type positionedError struct {
	err error
	msg string
}

func (e *positionedError) Error() string { return e.msg }
func (e *positionedError) Unwrap() error { return e.err }

func describe(err error) error {
	var evalErr *starlark.EvalError
	if !stderrors.As(err, &evalErr) {
		return err
	}
	for i := 0; i < len(evalErr.CallStack); i++ {
		frame := evalErr.CallStack.At(i)
		if frame.Pos.IsValid() {
			return &positionedError{err: err, msg: fmt.Sprintf("%s: %s", frame.Pos, evalErr.Msg)}
		}
	}
	return &positionedError{err: err, msg: evalErr.Msg}
}
