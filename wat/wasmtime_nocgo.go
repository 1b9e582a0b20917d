//go:build !cgo

package wat

const haveWasmtime = false

func newWasmtime() Compiler {
	panic("wat: wasmtime backend requires cgo")
}
