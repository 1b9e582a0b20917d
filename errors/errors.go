package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

// Phase indicates which evaluation stage produced the error
type Phase string

const (
	PhaseCompile     Phase = "compile"     // WAT to binary
	PhaseDecode      Phase = "decode"      // binary to structure
	PhaseHost        Phase = "host"        // host bindings evaluation
	PhaseInstantiate Phase = "instantiate" // linking against env
	PhaseRuntime     Phase = "runtime"     // entry point execution
	PhaseConfig      Phase = "config"      // configuration loading
)

// Kind categorizes the error
type Kind string

const (
	KindCompile         Kind = "compile_error"
	KindDecode          Kind = "decode_error"
	KindHostEval        Kind = "host_eval_error"
	KindMissingBindings Kind = "missing_bindings"
	KindInvalidBindings Kind = "invalid_bindings"
	KindInstantiation   Kind = "instantiation_error"
	KindMissingImport   Kind = "missing_import"
	KindTrap            Kind = "runtime_trap"
	KindTypeMismatch    Kind = "type_mismatch"
	KindInvalidInput    Kind = "invalid_input"
	KindUnsupported     Kind = "unsupported"
	KindPanic           Kind = "panic"
)

// Error is the structured error type surfaced to the console pane
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the binding or import path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	var m *MissingImportsError
	if stderrors.As(err, &m) {
		return KindMissingImport
	}
	return ""
}

// Evaluation taxonomy constructors

// CompileFailed wraps a WAT compiler failure
func CompileFailed(cause error) *Error {
	return &Error{
		Phase:  PhaseCompile,
		Kind:   KindCompile,
		Detail: "compile WAT",
		Cause:  cause,
	}
}

// DecodeFailed wraps a binary decoder failure
func DecodeFailed(cause error) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindDecode,
		Detail: "decode module",
		Cause:  cause,
	}
}

// HostEvalFailed wraps a failure raised while evaluating host source
func HostEvalFailed(cause error) *Error {
	return &Error{
		Phase:  PhaseHost,
		Kind:   KindHostEval,
		Detail: "evaluate host code",
		Cause:  cause,
	}
}

// MissingBindings reports that host source produced no bindings object
func MissingBindings(name string) *Error {
	return &Error{
		Phase:  PhaseHost,
		Kind:   KindMissingBindings,
		Detail: fmt.Sprintf("no '%s' object defined in host code", name),
	}
}

// InvalidBindings reports a bindings value of the wrong shape
func InvalidBindings(name, typ string) *Error {
	return &Error{
		Phase:  PhaseHost,
		Kind:   KindInvalidBindings,
		Path:   []string{name},
		Detail: fmt.Sprintf("want dict or struct of functions, got %s", typ),
		Value:  typ,
	}
}

// Instantiation wraps a module instantiation failure
func Instantiation(cause error) *Error {
	return &Error{
		Phase:  PhaseInstantiate,
		Kind:   KindInstantiation,
		Detail: "instantiate module",
		Cause:  cause,
	}
}

// Trap wraps a failure raised while running an exported function
func Trap(function string, cause error) *Error {
	return &Error{
		Phase:  PhaseRuntime,
		Kind:   KindTrap,
		Path:   []string{function},
		Detail: "function trapped",
		Cause:  cause,
	}
}

// TypeMismatch reports a host value that cannot become the expected wasm type
func TypeMismatch(phase Phase, path []string, got, want string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Path:   path,
		Detail: fmt.Sprintf("cannot convert %s to %s", got, want),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// Panic converts a recovered panic value into an error
func Panic(phase Phase, v any) *Error {
	e := &Error{
		Phase: phase,
		Kind:  KindPanic,
		Value: v,
	}
	if err, ok := v.(error); ok {
		e.Cause = err
	} else {
		e.Detail = fmt.Sprint(v)
	}
	return e
}

// MissingImport represents a single unresolved import
type MissingImport struct {
	Namespace string // e.g., "env"
	Function  string // e.g., "consoleLog"
}

// MissingImportsError is returned when instantiation fails because the host
// bindings do not cover every function the module imports
type MissingImportsError struct {
	Imports []MissingImport
}

// NewMissingImportsError creates an error from a list of "namespace#function" strings
func NewMissingImportsError(imports []string) *MissingImportsError {
	result := &MissingImportsError{
		Imports: make([]MissingImport, 0, len(imports)),
	}
	for _, imp := range imports {
		ns, fn := parseImportKey(imp)
		result.Imports = append(result.Imports, MissingImport{
			Namespace: ns,
			Function:  fn,
		})
	}
	return result
}

// ImportKey formats a namespace and function as accepted by NewMissingImportsError
func ImportKey(namespace, function string) string {
	return namespace + "#" + function
}

func parseImportKey(key string) (namespace, function string) {
	ns, fn, found := strings.Cut(key, "#")
	if found {
		return ns, fn
	}
	return key, ""
}

func (e *MissingImportsError) Error() string {
	if len(e.Imports) == 0 {
		return "[instantiate] missing_import: no imports specified"
	}

	byNS := make(map[string][]string)
	var nsOrder []string
	for _, imp := range e.Imports {
		if _, exists := byNS[imp.Namespace]; !exists {
			nsOrder = append(nsOrder, imp.Namespace)
		}
		byNS[imp.Namespace] = append(byNS[imp.Namespace], imp.Function)
	}

	// One line per namespace keeps the console pane readable
	parts := make([]string, 0, len(nsOrder))
	for _, ns := range nsOrder {
		fns := byNS[ns]
		sort.Strings(fns)
		parts = append(parts, fmt.Sprintf("%s: %s", ns, strings.Join(fns, ", ")))
	}

	return fmt.Sprintf("[instantiate] missing_import: %d host function(s) not defined (%s)",
		len(e.Imports), strings.Join(parts, "; "))
}

// Is reports whether target matches this error type
func (e *MissingImportsError) Is(target error) bool {
	_, ok := target.(*MissingImportsError)
	return ok
}
