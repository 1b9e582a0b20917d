// Package fixture holds hand-assembled wasm binaries for tests that must not
// depend on a WAT compiler being installed.
package fixture

var header = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

func module(sections ...[]byte) []byte {
	out := append([]byte{}, header...)
	for _, s := range sections {
		out = append(out, s...)
	}
	return out
}

// Default is the binary form of watplay.DefaultWAT:
//
//	(module
//	  (import "env" "consoleLog" (func $console_log (param i32)))
//	  (func (export "main") (result i32) (local $result i32)
//	    i32.const 100
//	    i32.const 50
//	    i32.add
//	    local.set $result
//	    local.get $result
//	    call $console_log
//	    local.get $result))
var Default = module(
	// types: (i32) -> (), () -> (i32)
	[]byte{0x01, 0x09, 0x02, 0x60, 0x01, 0x7f, 0x00, 0x60, 0x00, 0x01, 0x7f},
	// import env.consoleLog type 0
	[]byte{0x02, 0x12, 0x01,
		0x03, 'e', 'n', 'v',
		0x0a, 'c', 'o', 'n', 's', 'o', 'l', 'e', 'L', 'o', 'g',
		0x00, 0x00},
	// one function of type 1
	[]byte{0x03, 0x02, 0x01, 0x01},
	// export "main" func 1
	[]byte{0x07, 0x08, 0x01, 0x04, 'm', 'a', 'i', 'n', 0x00, 0x01},
	// code
	[]byte{0x0a, 0x14, 0x01, 0x12,
		0x01, 0x01, 0x7f, // one i32 local
		0x41, 0xe4, 0x00, // i32.const 100
		0x41, 0x32, // i32.const 50
		0x6a,       // i32.add
		0x21, 0x00, // local.set 0
		0x20, 0x00, // local.get 0
		0x10, 0x00, // call 0
		0x20, 0x00, // local.get 0
		0x0b},
)

// NoMain is Default with its entry point exported as "run" instead of "main".
var NoMain = module(
	[]byte{0x01, 0x09, 0x02, 0x60, 0x01, 0x7f, 0x00, 0x60, 0x00, 0x01, 0x7f},
	[]byte{0x02, 0x12, 0x01,
		0x03, 'e', 'n', 'v',
		0x0a, 'c', 'o', 'n', 's', 'o', 'l', 'e', 'L', 'o', 'g',
		0x00, 0x00},
	[]byte{0x03, 0x02, 0x01, 0x01},
	[]byte{0x07, 0x07, 0x01, 0x03, 'r', 'u', 'n', 0x00, 0x01},
	[]byte{0x0a, 0x14, 0x01, 0x12,
		0x01, 0x01, 0x7f,
		0x41, 0xe4, 0x00,
		0x41, 0x32,
		0x6a,
		0x21, 0x00,
		0x20, 0x00,
		0x10, 0x00,
		0x20, 0x00,
		0x0b},
)

// Trap exports a "main" that executes unreachable:
//
//	(module (func (export "main") unreachable))
var Trap = module(
	[]byte{0x01, 0x04, 0x01, 0x60, 0x00, 0x00},
	[]byte{0x03, 0x02, 0x01, 0x00},
	[]byte{0x07, 0x08, 0x01, 0x04, 'm', 'a', 'i', 'n', 0x00, 0x00},
	[]byte{0x0a, 0x05, 0x01, 0x03, 0x00, 0x00, 0x0b},
)

// ForeignImport imports a function from a namespace other than env:
//
//	(module (import "other" "f" (func)))
var ForeignImport = module(
	[]byte{0x01, 0x04, 0x01, 0x60, 0x00, 0x00},
	[]byte{0x02, 0x0b, 0x01,
		0x05, 'o', 't', 'h', 'e', 'r',
		0x01, 'f',
		0x00, 0x00},
)

// Add exports a "main" taking two i32 params and returning their sum:
//
//	(module (func (export "main") (param i32 i32) (result i32)
//	  local.get 0 local.get 1 i32.add))
var Add = module(
	[]byte{0x01, 0x07, 0x01, 0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7f},
	[]byte{0x03, 0x02, 0x01, 0x00},
	[]byte{0x07, 0x08, 0x01, 0x04, 'm', 'a', 'i', 'n', 0x00, 0x00},
	[]byte{0x0a, 0x09, 0x01, 0x07, 0x00, 0x20, 0x00, 0x20, 0x01, 0x6a, 0x0b},
)

// Memory declares and exports one page of memory:
//
//	(module (memory (export "mem") 1 2))
var Memory = module(
	[]byte{0x05, 0x04, 0x01, 0x01, 0x01, 0x02},
	[]byte{0x07, 0x07, 0x01, 0x03, 'm', 'e', 'm', 0x02, 0x00},
)

// Garbage is not a wasm binary.
var Garbage = []byte("not wasm")
