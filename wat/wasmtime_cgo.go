//go:build cgo

package wat

import (
	"context"

	"github.com/bytecodealliance/wasmtime-go/v41"
)

const haveWasmtime = true

type wasmtimeCompiler struct{}

func newWasmtime() Compiler {
	return wasmtimeCompiler{}
}

// Compile runs wasmtime's in-process WAT parser. It does not observe ctx once
// started; parsing is bounded by input size.
func (wasmtimeCompiler) Compile(_ context.Context, source string) ([]byte, error) {
	return wasmtime.Wat2Wasm(source)
}
