// Package wat compiles WebAssembly Text into binary modules.
//
// Compilation is delegated to an external engine. Two backends exist:
//
//   - wasmtime: links wasmtime through cgo (github.com/bytecodealliance/wasmtime-go)
//   - wabt: runs the wat2wasm executable from the WebAssembly Binary Toolkit
//
// The "auto" backend picks wasmtime when the binary was built with cgo and
// falls back to wabt otherwise.
//
// Basic usage:
//
//	c, err := wat.New(wat.Config{})
//	if err != nil {
//		return err
//	}
//	bin, err := c.Compile(ctx, `(module
//		(func (export "add") (param i32 i32) (result i32)
//			(i32.add (local.get 0) (local.get 1)))
//	)`)
//
// Compile failures are returned as *errors.Error in the compile phase.
package wat
