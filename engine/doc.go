// Package engine instantiates and runs core WebAssembly modules on wazero.
//
// Every Instantiate call gets its own wazero runtime so that runs never share
// module namespaces; compiled code is shared through a compilation cache.
//
// # Imports
//
// Host functions are supplied through the Imports interface, which covers a
// single namespace (conventionally "env"). The host module is generated from
// the signatures the guest declares, so a binding only needs a name:
//
//	inst, err := eng.Instantiate(ctx, bin, imports)
//	if err != nil {
//		return err
//	}
//	defer inst.Close(ctx)
//
//	if fn, ok := inst.Func("main"); ok {
//		results, err := fn.Call(ctx)
//	}
//
// Imports the bindings do not define, and imports from any other namespace,
// fail instantiation with *errors.MissingImportsError.
//
// # Values
//
// Value carries a raw wasm value with its type. Calls zero-fill parameters the
// caller leaves out.
package engine
