package engine

import (
	"context"
	"sort"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/multierr"

	"github.com/wippyai/watplay/errors"
)

// Instance is an instantiated module with its private runtime.
// Instance is NOT thread-safe.
type Instance struct {
	runtime wazero.Runtime
	module  api.Module
}

// Func returns the exported function name.
func (i *Instance) Func(name string) (*Function, bool) {
	fn := i.module.ExportedFunction(name)
	if fn == nil {
		return nil, false
	}
	def := fn.Definition()
	return &Function{
		name:    name,
		fn:      fn,
		params:  def.ParamTypes(),
		results: def.ResultTypes(),
	}, true
}

// Exports returns the exported function names, sorted.
func (i *Instance) Exports() []string {
	defs := i.module.ExportedFunctionDefinitions()
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close releases the module and its runtime.
func (i *Instance) Close(ctx context.Context) error {
	return multierr.Combine(i.module.Close(ctx), i.runtime.Close(ctx))
}

// Function is an exported function bound to its instance.
type Function struct {
	fn      api.Function
	name    string
	params  []api.ValueType
	results []api.ValueType
}

// Name returns the export name.
func (f *Function) Name() string { return f.name }

// Params returns the parameter types.
func (f *Function) Params() []api.ValueType { return f.params }

// Results returns the result types.
func (f *Function) Results() []api.ValueType { return f.results }

// Call invokes the function. Parameters beyond len(args) are zero; extra args
// are ignored.
func (f *Function) Call(ctx context.Context, args ...Value) ([]Value, error) {
	raw := make([]uint64, len(f.params))
	for i := range raw {
		if i < len(args) {
			raw[i] = args[i].Raw
		}
	}

	out, err := f.fn.Call(ctx, raw...)
	if err != nil {
		return nil, errors.Trap(f.name, firstLine(err))
	}

	values := make([]Value, len(f.results))
	for i, t := range f.results {
		values[i] = Value{Type: t, Raw: out[i]}
	}
	return values, nil
}
