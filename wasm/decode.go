package wasm

import (
	"context"
	"sort"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/watplay/errors"
)

// Decoder describes binaries using a dedicated wazero runtime.
// It is safe for concurrent use.
type Decoder struct {
	runtime wazero.Runtime
}

// NewDecoder creates a decoder. The interpreter is used because decoding
// never executes code.
func NewDecoder(ctx context.Context) *Decoder {
	cfg := wazero.NewRuntimeConfigInterpreter().WithCustomSections(true)
	return &Decoder{runtime: wazero.NewRuntimeWithConfig(ctx, cfg)}
}

// Close releases the decoder's runtime.
func (d *Decoder) Close(ctx context.Context) error {
	return d.runtime.Close(ctx)
}

// Decode validates bin and returns its structure.
func (d *Decoder) Decode(ctx context.Context, bin []byte) (*Module, error) {
	compiled, err := d.runtime.CompileModule(ctx, bin)
	if err != nil {
		return nil, errors.DecodeFailed(err)
	}
	defer compiled.Close(ctx)

	return describe(compiled, len(bin)), nil
}

func describe(compiled wazero.CompiledModule, size int) *Module {
	mod := &Module{
		Name:      compiled.Name(),
		Size:      size,
		Imports:   []Import{},
		Exports:   []Export{},
		Functions: []Function{},
	}

	funcs := make(map[uint32]*Function)
	funcAt := func(def api.FunctionDefinition) *Function {
		if f, ok := funcs[def.Index()]; ok {
			return f
		}
		f := &Function{
			Index:   def.Index(),
			Name:    def.Name(),
			Params:  params(def),
			Results: typeNames(def.ResultTypes()),
			Exports: def.ExportNames(),
		}
		funcs[def.Index()] = f
		return f
	}

	for _, def := range compiled.ImportedFunctions() {
		f := funcAt(def)
		if module, name, ok := def.Import(); ok {
			imp := Import{Module: module, Name: name, Kind: api.ExternTypeName(api.ExternTypeFunc), Index: def.Index()}
			f.Import = &imp
			mod.Imports = append(mod.Imports, imp)
		}
	}
	for name, def := range compiled.ExportedFunctions() {
		funcAt(def)
		mod.Exports = append(mod.Exports, Export{Name: name, Kind: api.ExternTypeName(api.ExternTypeFunc), Index: def.Index()})
	}

	mems := make(map[uint32]*Memory)
	memAt := func(def api.MemoryDefinition) *Memory {
		if m, ok := mems[def.Index()]; ok {
			return m
		}
		m := &Memory{Index: def.Index(), Min: def.Min(), Exports: def.ExportNames()}
		if limit, ok := def.Max(); ok {
			m.Max = &limit
		}
		mems[def.Index()] = m
		return m
	}
	for _, def := range compiled.ImportedMemories() {
		m := memAt(def)
		if module, name, ok := def.Import(); ok {
			imp := Import{Module: module, Name: name, Kind: api.ExternTypeName(api.ExternTypeMemory), Index: def.Index()}
			m.Import = &imp
			mod.Imports = append(mod.Imports, imp)
		}
	}
	for name, def := range compiled.ExportedMemories() {
		memAt(def)
		mod.Exports = append(mod.Exports, Export{Name: name, Kind: api.ExternTypeName(api.ExternTypeMemory), Index: def.Index()})
	}

	for _, f := range funcs {
		mod.Functions = append(mod.Functions, *f)
	}
	sort.Slice(mod.Functions, func(i, j int) bool { return mod.Functions[i].Index < mod.Functions[j].Index })
	for _, m := range mems {
		mod.Memories = append(mod.Memories, *m)
	}
	sort.Slice(mod.Memories, func(i, j int) bool { return mod.Memories[i].Index < mod.Memories[j].Index })

	sort.SliceStable(mod.Imports, func(i, j int) bool {
		if mod.Imports[i].Kind != mod.Imports[j].Kind {
			return mod.Imports[i].Kind < mod.Imports[j].Kind
		}
		return mod.Imports[i].Index < mod.Imports[j].Index
	})
	sort.Slice(mod.Exports, func(i, j int) bool {
		a, b := mod.Exports[i], mod.Exports[j]
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Index != b.Index {
			return a.Index < b.Index
		}
		return a.Name < b.Name
	})

	for _, cs := range compiled.CustomSections() {
		mod.CustomSections = append(mod.CustomSections, CustomSection{Name: cs.Name(), Size: len(cs.Data())})
	}
	return mod
}

func params(def api.FunctionDefinition) []Param {
	types := def.ParamTypes()
	names := def.ParamNames()
	out := make([]Param, len(types))
	for i, t := range types {
		out[i] = Param{Type: api.ValueTypeName(t)}
		if i < len(names) {
			out[i].Name = names[i]
		}
	}
	return out
}

func typeNames(types []api.ValueType) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = api.ValueTypeName(t)
	}
	return out
}
