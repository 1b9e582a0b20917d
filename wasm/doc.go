// Package wasm decodes WebAssembly binaries into a displayable structure.
//
// Decoding is delegated to wazero: the binary is compiled (and therefore
// validated) by an interpreter-configured runtime and the resulting function
// and memory definitions are copied into plain Go values that marshal to
// JSON or YAML.
//
//	d := wasm.NewDecoder(ctx)
//	defer d.Close(ctx)
//
//	mod, err := d.Decode(ctx, bin)
//	if err != nil {
//		return err
//	}
//	text, err := wasm.Render(mod, wasm.FormatJSON, false)
package wasm
