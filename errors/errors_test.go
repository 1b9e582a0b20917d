package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseHost,
				Kind:   KindTypeMismatch,
				Path:   []string{"env", "consoleLog"},
				Detail: "cannot convert",
			},
			contains: []string{"[host]", "type_mismatch", "env.consoleLog", "cannot convert"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseDecode,
				Kind:  KindDecode,
			},
			contains: []string{"[decode]", "decode_error"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseRuntime,
				Kind:   KindTrap,
				Detail: "function trapped",
				Cause:  errors.New("unreachable"),
			},
			contains: []string{"[runtime]", "runtime_trap", "function trapped", "caused by", "unreachable"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
			if strings.Contains(msg, "\n") {
				t.Errorf("error message %q spans multiple lines", msg)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := CompileFailed(cause)

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is did not find cause through chain")
	}
}

func TestError_Is(t *testing.T) {
	err := Trap("main", errors.New("boom"))

	if !errors.Is(err, &Error{Phase: PhaseRuntime, Kind: KindTrap}) {
		t.Error("expected match on phase and kind")
	}
	if errors.Is(err, &Error{Phase: PhaseRuntime, Kind: KindPanic}) {
		t.Error("unexpected match on different kind")
	}
	if errors.Is(err, &Error{Phase: PhaseCompile, Kind: KindTrap}) {
		t.Error("unexpected match on different phase")
	}
}

func TestBuilder(t *testing.T) {
	err := New(PhaseHost, KindTypeMismatch).
		Path("env", "add").
		Value("str").
		Detail("cannot convert %s to %s", "string", "i32").
		Cause(errors.New("inner")).
		Build()

	if err.Phase != PhaseHost || err.Kind != KindTypeMismatch {
		t.Fatalf("unexpected phase/kind: %s/%s", err.Phase, err.Kind)
	}
	if err.Detail != "cannot convert string to i32" {
		t.Errorf("Detail = %q", err.Detail)
	}
	if err.Value != "str" {
		t.Errorf("Value = %v", err.Value)
	}
	if len(err.Path) != 2 || err.Path[1] != "add" {
		t.Errorf("Path = %v", err.Path)
	}
}

func TestTaxonomy(t *testing.T) {
	cause := errors.New("x")
	tests := []struct {
		err   *Error
		phase Phase
		kind  Kind
	}{
		{CompileFailed(cause), PhaseCompile, KindCompile},
		{DecodeFailed(cause), PhaseDecode, KindDecode},
		{HostEvalFailed(cause), PhaseHost, KindHostEval},
		{MissingBindings("env"), PhaseHost, KindMissingBindings},
		{InvalidBindings("env", "int"), PhaseHost, KindInvalidBindings},
		{Instantiation(cause), PhaseInstantiate, KindInstantiation},
		{Trap("main", cause), PhaseRuntime, KindTrap},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if tt.err.Phase != tt.phase {
				t.Errorf("Phase = %s, want %s", tt.err.Phase, tt.phase)
			}
			if got := KindOf(fmt.Errorf("wrapped: %w", tt.err)); got != tt.kind {
				t.Errorf("KindOf = %s, want %s", got, tt.kind)
			}
		})
	}
}

func TestMissingBindingsMessage(t *testing.T) {
	msg := MissingBindings("env").Error()
	if !strings.Contains(msg, "no 'env' object defined") {
		t.Errorf("message %q does not mention missing env", msg)
	}
}

func TestPanic(t *testing.T) {
	cause := errors.New("nil map")
	if err := Panic(PhaseRuntime, cause); !errors.Is(err, cause) {
		t.Error("panic with error value should wrap it")
	}
	err := Panic(PhaseRuntime, "oops")
	if err.Detail != "oops" || err.Cause != nil {
		t.Errorf("unexpected panic error: %+v", err)
	}
}

func TestMissingImportsError(t *testing.T) {
	err := NewMissingImportsError([]string{
		ImportKey("env", "log"),
		ImportKey("other", "f"),
		ImportKey("env", "abort"),
	})

	if len(err.Imports) != 3 {
		t.Fatalf("got %d imports", len(err.Imports))
	}
	if err.Imports[1].Namespace != "other" || err.Imports[1].Function != "f" {
		t.Errorf("unexpected import: %+v", err.Imports[1])
	}

	msg := err.Error()
	for _, want := range []string{"3 host function(s)", "env: abort, log", "other: f"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q does not contain %q", msg, want)
		}
	}
	if KindOf(err) != KindMissingImport {
		t.Errorf("KindOf = %s", KindOf(err))
	}
	if !errors.Is(fmt.Errorf("wrap: %w", err), &MissingImportsError{}) {
		t.Error("errors.Is should match MissingImportsError")
	}
}

func TestMissingImportsError_Empty(t *testing.T) {
	err := NewMissingImportsError(nil)
	if !strings.Contains(err.Error(), "no imports specified") {
		t.Errorf("unexpected message: %s", err.Error())
	}
}
