package engine

import (
	"context"
	"strconv"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/watplay/errors"
)

// HostFunc implements an imported function. results lists the types the
// guest expects back; the returned slice must match it in length.
type HostFunc func(ctx context.Context, args []Value, results []api.ValueType) ([]Value, error)

// Imports resolves host functions for one import namespace.
type Imports interface {
	Namespace() string
	Lookup(name string) (HostFunc, bool)
}

// bindImports instantiates the host module the compiled module needs.
func bindImports(ctx context.Context, rt wazero.Runtime, compiled wazero.CompiledModule, imports Imports) error {
	ns := ""
	if imports != nil {
		ns = imports.Namespace()
	}

	var missing []string
	var builder wazero.HostModuleBuilder
	bound := 0

	for _, def := range compiled.ImportedFunctions() {
		module, name, _ := def.Import()
		if imports == nil || module != ns {
			missing = append(missing, errors.ImportKey(module, name))
			continue
		}
		hf, ok := imports.Lookup(name)
		if !ok {
			missing = append(missing, errors.ImportKey(module, name))
			continue
		}
		if builder == nil {
			builder = rt.NewHostModuleBuilder(ns)
		}
		params, results := def.ParamTypes(), def.ResultTypes()
		builder.NewFunctionBuilder().
			WithGoModuleFunction(hostFunction(module, name, hf, params, results), params, results).
			WithName(name).
			Export(name)
		bound++
	}

	if len(missing) > 0 {
		return errors.NewMissingImportsError(missing)
	}
	if builder == nil {
		return nil
	}
	if _, err := builder.Instantiate(ctx); err != nil {
		return errors.Instantiation(err)
	}
	Logger().Debug("host module bound", zap.String("namespace", ns), zap.Int("functions", bound))
	return nil
}

// hostFunction adapts hf to wazero's stack calling convention. Failures panic;
// wazero recovers them and fails the guest call that reached the import.
func hostFunction(module, name string, hf HostFunc, params, results []api.ValueType) api.GoModuleFunc {
	return func(ctx context.Context, _ api.Module, stack []uint64) {
		args := make([]Value, len(params))
		for i, t := range params {
			args[i] = Value{Type: t, Raw: stack[i]}
		}

		out, err := hf(ctx, args, results)
		if err != nil {
			panic(err)
		}
		if len(out) != len(results) {
			panic(errors.New(errors.PhaseRuntime, errors.KindTypeMismatch).
				Path(module, name).
				Detail("returned %d value(s), want %d", len(out), len(results)).
				Build())
		}
		for i, t := range results {
			if out[i].Type != t {
				panic(errors.TypeMismatch(errors.PhaseRuntime, []string{module, name, strconv.Itoa(i)},
					api.ValueTypeName(out[i].Type), api.ValueTypeName(t)))
			}
			stack[i] = out[i].Raw
		}
	}
}

// FuncImports is a map-backed Imports, mostly useful for tests and embedding.
type FuncImports struct {
	Name  string
	Funcs map[string]HostFunc
}

// Namespace returns the import module name.
func (f *FuncImports) Namespace() string { return f.Name }

// Lookup returns the named function.
func (f *FuncImports) Lookup(name string) (HostFunc, bool) {
	hf, ok := f.Funcs[name]
	return hf, ok
}

var _ Imports = (*FuncImports)(nil)
