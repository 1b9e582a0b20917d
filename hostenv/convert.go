package hostenv

import (
	"math"

	"github.com/tetratelabs/wazero/api"
	"go.starlark.net/starlark"

	"github.com/wippyai/watplay/engine"
	"github.com/wippyai/watplay/errors"
)

type apiValueType = api.ValueType

func toStarlark(v engine.Value) starlark.Value {
	switch v.Type {
	case api.ValueTypeI32, api.ValueTypeI64:
		return starlark.MakeInt64(v.Int64())
	case api.ValueTypeF32, api.ValueTypeF64:
		return starlark.Float(v.Float64())
	default:
		return starlark.MakeUint64(v.Raw)
	}
}

func fromStarlark(v starlark.Value, results []api.ValueType, path []string) ([]engine.Value, error) {
	switch len(results) {
	case 0:
		return nil, nil
	case 1:
		out, err := convert(v, results[0], path)
		if err != nil {
			return nil, err
		}
		return []engine.Value{out}, nil
	}

	seq, ok := v.(starlark.Indexable)
	if !ok || seq.Len() != len(results) {
		return nil, errors.New(errors.PhaseHost, errors.KindTypeMismatch).
			Path(path...).
			Detail("want a sequence of %d results, got %s", len(results), v.Type()).
			Build()
	}
	out := make([]engine.Value, len(results))
	for i, t := range results {
		val, err := convert(seq.Index(i), t, path)
		if err != nil {
			return nil, err
		}
		out[i] = val
	}
	return out, nil
}

// convert coerces a Starlark value the way a JavaScript host would: None is
// zero, booleans are 0/1, floats truncate towards zero for integer results.
func convert(v starlark.Value, t api.ValueType, path []string) (engine.Value, error) {
	switch v := v.(type) {
	case starlark.NoneType:
		return engine.Zero(t), nil
	case starlark.Bool:
		if v {
			return fromInt(1, t), nil
		}
		return engine.Zero(t), nil
	case starlark.Int:
		if i, ok := v.Int64(); ok {
			return fromInt(i, t), nil
		}
		if u, ok := v.Uint64(); ok {
			return fromInt(int64(u), t), nil
		}
		return engine.Value{}, errors.TypeMismatch(errors.PhaseHost, path, "out-of-range int", api.ValueTypeName(t))
	case starlark.Float:
		return fromFloat(float64(v), t), nil
	}
	return engine.Value{}, errors.TypeMismatch(errors.PhaseHost, path, v.Type(), api.ValueTypeName(t))
}

func fromInt(i int64, t api.ValueType) engine.Value {
	switch t {
	case api.ValueTypeI32:
		return engine.I32(int32(i))
	case api.ValueTypeF32:
		return engine.F32(float32(i))
	case api.ValueTypeF64:
		return engine.F64(float64(i))
	default:
		return engine.Value{Type: t, Raw: uint64(i)}
	}
}

func fromFloat(f float64, t api.ValueType) engine.Value {
	switch t {
	case api.ValueTypeF32:
		return engine.F32(float32(f))
	case api.ValueTypeF64:
		return engine.F64(f)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return engine.Zero(t)
	}
	return fromInt(int64(f), t)
}
