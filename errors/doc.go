// Package errors provides the structured error type rendered by the playground.
//
// Errors are categorized by Phase (which evaluation stage failed) and Kind
// (error category). Every failure of an evaluation run ends up as one of these
// and is printed to the console pane as a single line.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseHost, errors.KindTypeMismatch).
//		Path("env", "consoleLog").
//		Detail("cannot convert string to i32").
//		Build()
//
// Or use convenience constructors for the evaluation taxonomy:
//
//	err := errors.CompileFailed(cause)
//	err := errors.MissingBindings("env")
//	err := errors.Trap("main", cause)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
