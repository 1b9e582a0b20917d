package engine

import (
	"fmt"
	"math"
	"strconv"

	"github.com/tetratelabs/wazero/api"
)

// ValueTypeFuncref is the funcref value type byte.
const ValueTypeFuncref api.ValueType = 0x70

// Value is a typed wasm value in its raw stack encoding.
type Value struct {
	Type api.ValueType
	Raw  uint64
}

func I32(v int32) Value   { return Value{Type: api.ValueTypeI32, Raw: api.EncodeI32(v)} }
func I64(v int64) Value   { return Value{Type: api.ValueTypeI64, Raw: api.EncodeI64(v)} }
func F32(v float32) Value { return Value{Type: api.ValueTypeF32, Raw: api.EncodeF32(v)} }
func F64(v float64) Value { return Value{Type: api.ValueTypeF64, Raw: api.EncodeF64(v)} }

// Zero returns the zero value of t.
func Zero(t api.ValueType) Value {
	return Value{Type: t}
}

// IsFloat reports whether v is an f32 or f64.
func (v Value) IsFloat() bool {
	return v.Type == api.ValueTypeF32 || v.Type == api.ValueTypeF64
}

// Int64 returns v as a signed integer. Floats are truncated.
func (v Value) Int64() int64 {
	switch v.Type {
	case api.ValueTypeI32:
		return int64(api.DecodeI32(v.Raw))
	case api.ValueTypeF32, api.ValueTypeF64:
		return int64(v.Float64())
	default:
		return int64(v.Raw)
	}
}

// Float64 returns v as a float.
func (v Value) Float64() float64 {
	switch v.Type {
	case api.ValueTypeF32:
		return float64(api.DecodeF32(v.Raw))
	case api.ValueTypeF64:
		return api.DecodeF64(v.Raw)
	default:
		return float64(v.Int64())
	}
}

// String formats v the way the console prints it.
func (v Value) String() string {
	switch v.Type {
	case api.ValueTypeI32, api.ValueTypeI64:
		return strconv.FormatInt(v.Int64(), 10)
	case api.ValueTypeF32:
		return formatFloat(float64(api.DecodeF32(v.Raw)), 32)
	case api.ValueTypeF64:
		return formatFloat(api.DecodeF64(v.Raw), 64)
	case api.ValueTypeExternref, ValueTypeFuncref:
		if v.Raw == 0 {
			return "null"
		}
		return fmt.Sprintf("ref(%#x)", v.Raw)
	default:
		return fmt.Sprintf("%s(%#x)", api.ValueTypeName(v.Type), v.Raw)
	}
}

func formatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'g', -1, bits)
}
