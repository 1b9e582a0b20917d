// Package hostenv builds host bindings from Starlark source.
//
// The host pane of the playground holds a Starlark script. Evaluating it must
// leave a global named "env" (a dict or struct of functions); each function
// becomes a wasm import in the "env" namespace:
//
//	def console_log(value):
//	    print(value)
//
//	env = {"consoleLog": console_log}
//
// Scripts run in a sandbox: Starlark has no ambient I/O, load() is disabled,
// and Config.MaxSteps bounds execution. Output reaches the caller only
// through the Console given to Build, via print() or the predeclared
// console.log() and console.clear().
package hostenv
